package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shivanand-hulikatti/event-registration/internal/notify"
	"github.com/spf13/cobra"
)

func newNoticesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "notices",
		Short: "Print registration notices published on the Redis channel",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			defer log.Sync()
			if cfg.Redis.Addr == "" {
				return errors.New("notices: REDIS_ADDR is not set")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			pub, err := notify.NewRedisPublisher(ctx, cfg.Redis)
			if err != nil {
				return err
			}
			defer pub.Close()

			log.Info("listening for notices", "channel", cfg.Redis.Channel)
			err = pub.Subscribe(ctx, func(n notify.Notice) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s event=%s user=%s\n",
					n.At.Format(time.RFC3339), n.Type, n.EventID, n.UserID)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
