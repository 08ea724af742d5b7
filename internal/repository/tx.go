package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type txKey struct{}

const rollbackTimeout = 5 * time.Second

// TxOptions bounds every unit of work started by a Transactor.
type TxOptions struct {
	// Timeout supervises the whole transaction. When it fires the
	// transaction is rolled back and its locks released.
	Timeout time.Duration
	// LockTimeout caps how long a statement waits for a row lock.
	LockTimeout time.Duration
}

// Transactor starts units of work on a pool.
type Transactor struct {
	pool *pgxpool.Pool
	opts TxOptions
}

// NewTransactor constructs a Transactor.
func NewTransactor(pool *pgxpool.Pool, opts TxOptions) *Transactor {
	return &Transactor{pool: pool, opts: opts}
}

// WithTx runs fn in a read-committed read-write transaction. Row locks taken
// inside fn are held until fn returns. A nil error commits; anything else,
// including a panic, rolls back.
//
// The unit of work is detached from cancellation of ctx: a caller that goes
// away mid-request does not leave the transaction half-open. It runs to commit
// or rollback under the supervising Timeout instead.
func (t *Transactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.run(ctx, pgx.TxOptions{}, fn)
}

// WithSnapshot runs fn in a read-only repeatable-read transaction, so every
// query in fn observes the same committed state.
func (t *Transactor) WithSnapshot(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.run(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, fn)
}

func (t *Transactor) run(ctx context.Context, txOpts pgx.TxOptions, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	txCtx := context.WithoutCancel(ctx)
	if t.opts.Timeout > 0 {
		var cancel context.CancelFunc
		txCtx, cancel = context.WithTimeout(txCtx, t.opts.Timeout)
		defer cancel()
	}

	tx, err := t.pool.BeginTx(txCtx, txOpts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		rbCtx, cancel := context.WithTimeout(context.Background(), rollbackTimeout)
		defer cancel()
		_ = tx.Rollback(rbCtx)
	}()

	if t.opts.LockTimeout > 0 {
		ms := fmt.Sprintf("%dms", t.opts.LockTimeout.Milliseconds())
		if _, err := tx.Exec(txCtx, `SELECT set_config('lock_timeout', $1, true)`, ms); err != nil {
			return fmt.Errorf("set lock_timeout: %w", err)
		}
	}

	if err := fn(context.WithValue(txCtx, txKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(txCtx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}

func txFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}
