// Command remote runs the two-button speaker remote control loop.
//
// Usage:
//
//	remote [--config file] run     - boot and run the control loop
//	remote [--config file] rooms   - list configured rooms and commands
//	remote [--config file] send    - send one command for a room
//	remote [--config file] init    - write a default config file
//
// Configuration is read from a YAML file and REMOTE_* environment variables.
// LOGLEVEL selects the log level.
package main

import (
	"fmt"
	"os"
	"speaker-remote/internal/config"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "remote",
	Short:         "Two-button remote for a networked speaker system",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setLogLevel(os.Getenv("LOGLEVEL"))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "/etc/speaker-remote/remote.yaml", "config file")
	rootCmd.AddCommand(runCmd, roomsCmd, sendCmd, initCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log.WithField("flash_dir", cfg.Paths.FlashDir).Debug("config loaded")
	return cfg, nil
}

func setLogLevel(level string) {
	switch level {
	case "panic":
		log.SetLevel(log.PanicLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "trace":
		log.SetLevel(log.TraceLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}
