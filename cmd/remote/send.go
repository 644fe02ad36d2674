package main

import (
	"fmt"
	"speaker-remote/internal/adapters/output/speakerapi"
	"speaker-remote/internal/domain/model"
	"speaker-remote/internal/domain/service"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	sendTemplate int
	sendDryRun   bool
)

var sendCmd = &cobra.Command{
	Use:   "send <room>",
	Short: "Send one command for a room, by name or index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		_, loader := newLoader(cfg)
		dir, err := loader.Load(ctx)
		if err != nil {
			return err
		}
		room, err := findRoom(dir, args[0])
		if err != nil {
			return err
		}

		link, err := newLink(ctx, cfg, loader)
		if err != nil {
			return err
		}
		d := service.NewDispatcher(dir, link, speakerapi.NewClient(cfg.Dispatch.HTTPTimeout),
			cfg.Dispatch.Placeholder, cfg.Dispatch.MaxURLLength)

		if sendDryRun {
			url, err := d.Resolve(room, sendTemplate)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		}
		url, err := d.Dispatch(ctx, room, sendTemplate)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "sent", url)
		return nil
	},
}

func init() {
	sendCmd.Flags().IntVarP(&sendTemplate, "template", "t", 0, "command template index")
	sendCmd.Flags().BoolVar(&sendDryRun, "dry-run", false, "print the URL without sending it")
}

func findRoom(dir *model.Directory, arg string) (int, error) {
	for i, room := range dir.Rooms() {
		if room == arg {
			return i, nil
		}
	}
	if i, err := strconv.Atoi(arg); err == nil {
		if _, ok := dir.Room(i); ok {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown room %q", arg)
}
