package memory

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/event-registration/internal/model"
)

type txKey struct{}

// tx is one unit of work. Writes are staged here and become visible to
// other units of work only on commit. A nil registration marks a staged delete.
type tx struct {
	snap   *data
	events map[string]model.Event
	users  map[string]model.User
	regs   map[regKey]*model.Registration
	locked map[string]chan struct{}
}

func txFromContext(ctx context.Context) *tx {
	t, _ := ctx.Value(txKey{}).(*tx)
	return t
}

func (t *tx) writable() error {
	if t != nil && t.snap != nil {
		return errReadOnly
	}
	return nil
}

func (t *tx) release() {
	for id, ch := range t.locked {
		<-ch
		delete(t.locked, id)
	}
}

// WithTx runs fn as a unit of work. Event locks taken inside fn are held
// until fn returns; a nil error commits the staged writes, anything else
// (including a panic) discards them. Like the PostgreSQL transactor, the
// unit of work ignores cancellation of ctx and is bounded by Options.Timeout.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	txCtx := context.WithoutCancel(ctx)
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		txCtx, cancel = context.WithTimeout(txCtx, s.opts.Timeout)
		defer cancel()
	}

	t := &tx{
		events: make(map[string]model.Event),
		users:  make(map[string]model.User),
		regs:   make(map[regKey]*model.Registration),
		locked: make(map[string]chan struct{}),
	}
	defer t.release()

	if err := fn(context.WithValue(txCtx, txKey{}, t)); err != nil {
		return err
	}
	if err := txCtx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return s.commit(t)
}

// WithSnapshot runs fn against a frozen copy of the committed state. Writes
// inside fn fail.
func (s *Store) WithSnapshot(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}
	s.mu.RLock()
	snap := s.committed.clone()
	s.mu.RUnlock()

	return fn(context.WithValue(ctx, txKey{}, &tx{snap: snap}))
}

// lockEvent acquires the row lock for id on behalf of t, waiting at most
// Options.LockTimeout. Taking a lock t already holds is a no-op.
func (s *Store) lockEvent(ctx context.Context, t *tx, id string) error {
	if _, held := t.locked[id]; held {
		return nil
	}
	lockCtx := ctx
	if s.opts.LockTimeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, s.opts.LockTimeout)
		defer cancel()
	}

	ch := s.rowLock(id)
	select {
	case ch <- struct{}{}:
		t.locked[id] = ch
		return nil
	case <-lockCtx.Done():
		return fmt.Errorf("lock event row %s: %w", id, lockCtx.Err())
	}
}

func (s *Store) unlockEvent(t *tx, id string) {
	if ch, held := t.locked[id]; held {
		<-ch
		delete(t.locked, id)
	}
}
