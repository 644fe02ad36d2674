package main

import (
	"context"
	"os"
	"os/signal"
	"speaker-remote/internal/domain/service"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Boot the remote and run the control loop",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.loop(ctx)
	},
}

// loop boots a controller and runs it until it sleeps. Every wake boots a
// fresh controller from persisted state, until ctx ends.
func (a *app) loop(ctx context.Context) error {
	for {
		remote := service.NewRemote(a.deps, a.strategy, a.options())
		if a.panel != nil {
			a.panel.Attach(remote)
		}
		if err := remote.Boot(ctx); err != nil {
			return err
		}
		if err := remote.Run(ctx); err != nil {
			return err
		}
		if ctx.Err() != nil {
			log.Info("shutting down")
			return nil
		}
		log.Info("woken, rebooting controller")
	}
}
