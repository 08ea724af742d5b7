package main

import (
	"fmt"

	"github.com/Shivanand-hulikatti/event-registration/internal/database"
	"github.com/Shivanand-hulikatti/event-registration/migrations"
	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			defer log.Sync()

			pool, err := database.NewPool(cmd.Context(), cfg.Database, log)
			if err != nil {
				return fmt.Errorf("database: %w", err)
			}
			defer pool.Close()

			applied, err := migrations.Apply(cmd.Context(), pool)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
				return nil
			}
			for _, name := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
			}
			return nil
		},
	}
}
