package main

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/event-registration/internal/config"
	"github.com/Shivanand-hulikatti/event-registration/internal/database"
	"github.com/Shivanand-hulikatti/event-registration/internal/logger"
	"github.com/Shivanand-hulikatti/event-registration/internal/notify"
	"github.com/Shivanand-hulikatti/event-registration/internal/repository"
	"github.com/Shivanand-hulikatti/event-registration/internal/repository/memory"
	"github.com/Shivanand-hulikatti/event-registration/internal/service"
	"github.com/Shivanand-hulikatti/event-registration/migrations"
)

// openStores connects the configured backend. The returned cleanup releases
// its resources and is never nil.
func openStores(ctx context.Context, cfg config.Config, log *logger.Logger) (service.Stores, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		log.Warn("using in-memory store; data is lost on exit")
		store := memory.New(memory.Options{
			Timeout:     cfg.Store.TxTimeout,
			LockTimeout: cfg.Store.LockTimeout,
		})
		return service.Stores{
			Tx:            store,
			Events:        store.Events(),
			Users:         store.Users(),
			Registrations: store.Registrations(),
		}, func() {}, nil

	case config.StoreDriverPostgres:
		pool, err := database.NewPool(ctx, cfg.Database, log)
		if err != nil {
			return service.Stores{}, func() {}, fmt.Errorf("database: %w", err)
		}
		applied, err := migrations.Apply(ctx, pool)
		if err != nil {
			pool.Close()
			return service.Stores{}, func() {}, err
		}
		if len(applied) > 0 {
			log.Info("applied migrations", "files", applied)
		}
		return service.Stores{
			Tx: repository.NewTransactor(pool, repository.TxOptions{
				Timeout:     cfg.Store.TxTimeout,
				LockTimeout: cfg.Store.LockTimeout,
			}),
			Events:        repository.NewEventRepository(pool),
			Users:         repository.NewUserRepository(pool),
			Registrations: repository.NewRegistrationRepository(pool),
		}, pool.Close, nil

	default:
		return service.Stores{}, func() {}, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// openPublisher returns the Redis publisher when one is configured and the
// no-op publisher otherwise.
func openPublisher(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (notify.Publisher, func(), error) {
	if cfg.Addr == "" {
		return notify.Nop{}, func() {}, nil
	}
	pub, err := notify.NewRedisPublisher(ctx, cfg)
	if err != nil {
		return nil, func() {}, err
	}
	log.Info("publishing registration notices", "addr", cfg.Addr, "channel", cfg.Channel)
	return pub, func() { _ = pub.Close() }, nil
}
