package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "List the configured rooms and command templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		_, loader := newLoader(cfg)
		dir, err := loader.Load(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Rooms (%d):\n", dir.RoomCount())
		for i, room := range dir.Rooms() {
			fmt.Fprintf(out, "  %d  %s\n", i, room)
		}
		fmt.Fprintf(out, "Commands (%d):\n", dir.TemplateCount())
		for i, tmpl := range dir.Templates() {
			fmt.Fprintf(out, "  %d  %s\n", i, tmpl)
		}
		return nil
	},
}
