package main

import (
	"os"

	"github.com/Shivanand-hulikatti/event-registration/internal/config"
	"github.com/Shivanand-hulikatti/event-registration/internal/logger"
	"github.com/spf13/cobra"
)

// rootOptions carries the global flags shared by every subcommand.
type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "eventreg",
		Short: "Event registration service",
		Long: `eventreg runs the event registration API.
Registrations are admitted under a per-event lock, so an event never holds
more registrations than its capacity and no user registers twice.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("EVENTREG_CONFIG"),
		"path to a YAML config file (env EVENTREG_CONFIG)")

	root.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newNoticesCmd(opts),
	)
	return root
}

// load reads the configuration and builds the logger it names.
func (o *rootOptions) load() (config.Config, *logger.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}
