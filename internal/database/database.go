// Package database provides PostgreSQL connection management using pgx.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/event-registration/internal/config"
	"github.com/Shivanand-hulikatti/event-registration/internal/logger"
	"github.com/felixgeelhaar/fortify/retry"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool creates and validates a pgxpool connection pool. Connect and ping
// are retried with exponential backoff to accommodate containers starting up.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	r := retry.New[*pgxpool.Pool](retry.Config{
		MaxAttempts:   cfg.ConnectAttempts,
		InitialDelay:  cfg.ConnectDelay,
		BackoffPolicy: retry.BackoffExponential,
	})

	attempt := 0
	pool, err := r.Do(ctx, func(ctx context.Context) (*pgxpool.Pool, error) {
		attempt++
		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			log.Warn("db connect attempt failed", "attempt", attempt, "max_attempts", cfg.ConnectAttempts, "error", err)
			return nil, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			log.Warn("db ping failed", "attempt", attempt, "max_attempts", cfg.ConnectAttempts, "error", err)
			return nil, err
		}
		return pool, nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	log.Info("connected to postgres", "host", poolCfg.ConnConfig.Host, "database", poolCfg.ConnConfig.Database)
	return pool, nil
}
