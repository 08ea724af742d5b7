package memory

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/event-registration/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

var future = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

func seed(t *testing.T, s *Store, capacity int) (model.Event, model.User) {
	t.Helper()
	ctx := context.Background()
	e := model.Event{ID: uuid.NewString(), Title: "Go meetup", Date: future, Location: "Austin", Capacity: capacity}
	u := model.User{ID: uuid.NewString(), Name: "Ada", Email: uuid.NewString() + "@example.com"}
	require.NoError(t, s.Events().Create(ctx, &e))
	require.NoError(t, s.Users().Create(ctx, &u))
	return e, u
}

func TestStore_CommitAndRollback(t *testing.T) {
	t.Parallel()
	s := New(Options{})
	e, u := seed(t, s, 5)
	ctx := context.Background()
	regs := s.Registrations()

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(txCtx context.Context) error {
		require.NoError(t, regs.Insert(txCtx, model.Registration{EventID: e.ID, UserID: u.ID}))
		n, err := regs.Count(txCtx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, n, "a unit of work sees its own writes")

		outside, err := regs.Count(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, outside, "staged writes are invisible outside")
		return boom
	})
	require.ErrorIs(t, err, boom)

	n, err := regs.Count(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, s.WithTx(ctx, func(txCtx context.Context) error {
		return regs.Insert(txCtx, model.Registration{EventID: e.ID, UserID: u.ID})
	}))
	n, err = regs.Count(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_InsertChecks(t *testing.T) {
	t.Parallel()
	s := New(Options{})
	e, u := seed(t, s, 5)
	ctx := context.Background()
	regs := s.Registrations()

	require.NoError(t, regs.Insert(ctx, model.Registration{EventID: e.ID, UserID: u.ID}))
	assert.ErrorIs(t, regs.Insert(ctx, model.Registration{EventID: e.ID, UserID: u.ID}), model.ErrAlreadyRegistered)
	assert.ErrorIs(t, regs.Insert(ctx, model.Registration{EventID: e.ID, UserID: uuid.NewString()}), model.ErrUserNotFound)
	assert.ErrorIs(t, regs.Insert(ctx, model.Registration{EventID: uuid.NewString(), UserID: u.ID}), model.ErrEventNotFound)
	assert.ErrorIs(t, regs.Insert(ctx, model.Registration{EventID: "nope", UserID: u.ID}), model.ErrInvalidID)

	err := s.WithTx(ctx, func(txCtx context.Context) error {
		return regs.Insert(txCtx, model.Registration{EventID: e.ID, UserID: u.ID})
	})
	assert.ErrorIs(t, err, model.ErrAlreadyRegistered)
}

func TestStore_DeleteAndEmails(t *testing.T) {
	t.Parallel()
	s := New(Options{})
	e, u := seed(t, s, 5)
	ctx := context.Background()
	regs := s.Registrations()

	assert.ErrorIs(t, regs.Delete(ctx, e.ID, u.ID), model.ErrRegistrationNotFound)
	require.NoError(t, regs.Insert(ctx, model.Registration{EventID: e.ID, UserID: u.ID}))
	require.NoError(t, regs.Delete(ctx, e.ID, u.ID))

	dup := model.User{ID: uuid.NewString(), Name: "Imposter", Email: u.Email}
	assert.ErrorIs(t, s.Users().Create(ctx, &dup), model.ErrEmailTaken)
}

func TestStore_LockSerialisesUnitsOfWork(t *testing.T) {
	t.Parallel()
	s := New(Options{})
	e, _ := seed(t, s, 5)
	ctx := context.Background()

	var inside, maxInside atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < 20; i++ {
		g.Go(func() error {
			return s.WithTx(gctx, func(txCtx context.Context) error {
				if _, err := s.Events().LockForUpdate(txCtx, e.ID); err != nil {
					return err
				}
				n := inside.Add(1)
				for {
					m := maxInside.Load()
					if n <= m || maxInside.CompareAndSwap(m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				inside.Add(-1)
				return nil
			})
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int32(1), maxInside.Load())
}

func TestStore_LockTimeout(t *testing.T) {
	t.Parallel()
	s := New(Options{LockTimeout: 20 * time.Millisecond})
	e, _ := seed(t, s, 5)
	ctx := context.Background()

	err := s.WithTx(ctx, func(txCtx context.Context) error {
		_, err := s.Events().LockForUpdate(txCtx, e.ID)
		require.NoError(t, err)

		otherErr := s.WithTx(ctx, func(otherCtx context.Context) error {
			_, err := s.Events().LockForUpdate(otherCtx, e.ID)
			return err
		})
		assert.ErrorIs(t, otherErr, context.DeadlineExceeded)
		return nil
	})
	require.NoError(t, err)

	// Released on commit.
	require.NoError(t, s.WithTx(ctx, func(txCtx context.Context) error {
		_, err := s.Events().LockForUpdate(txCtx, e.ID)
		return err
	}))
}

func TestStore_LockRequiresWritableTx(t *testing.T) {
	t.Parallel()
	s := New(Options{})
	e, _ := seed(t, s, 5)
	ctx := context.Background()

	_, err := s.Events().LockForUpdate(ctx, e.ID)
	require.Error(t, err)

	err = s.WithSnapshot(ctx, func(snapCtx context.Context) error {
		_, err := s.Events().LockForUpdate(snapCtx, e.ID)
		return err
	})
	require.ErrorIs(t, err, errReadOnly)

	err = s.WithTx(ctx, func(txCtx context.Context) error {
		_, err := s.Events().LockForUpdate(txCtx, uuid.NewString())
		return err
	})
	require.ErrorIs(t, err, model.ErrEventNotFound)
}

func TestStore_SnapshotIsFrozen(t *testing.T) {
	t.Parallel()
	s := New(Options{})
	e, u := seed(t, s, 5)
	ctx := context.Background()
	regs := s.Registrations()

	err := s.WithSnapshot(ctx, func(snapCtx context.Context) error {
		require.NoError(t, regs.Insert(ctx, model.Registration{EventID: e.ID, UserID: u.ID}))

		n, err := regs.Count(snapCtx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		return regs.Insert(snapCtx, model.Registration{EventID: e.ID, UserID: u.ID})
	})
	require.ErrorIs(t, err, errReadOnly)
}

func TestStore_ListUpcoming(t *testing.T) {
	t.Parallel()
	s := New(Options{})
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, e := range []model.Event{
		{Location: "Berlin", Date: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		{Location: "Boston", Date: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)},
		{Location: "Austin", Date: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)},
		{Location: "Past", Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{Location: "Now", Date: now},
	} {
		e.ID = uuid.NewString()
		e.Capacity = 1
		require.NoError(t, s.Events().Create(ctx, &e))
	}

	got, err := s.Events().ListUpcoming(ctx, now)
	require.NoError(t, err)
	var locations []string
	for _, e := range got {
		locations = append(locations, e.Location)
	}
	assert.Equal(t, []string{"Austin", "Boston", "Berlin"}, locations)
}

func TestStore_ListUpcomingTiesOrderByID(t *testing.T) {
	t.Parallel()
	s := New(Options{})
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	var want []string
	for range 4 {
		e := model.Event{ID: uuid.NewString(), Title: "Go", Date: future, Location: "Austin", Capacity: 1}
		require.NoError(t, s.Events().Create(ctx, &e))
		want = append(want, e.ID)
	}
	sort.Strings(want)

	got, err := s.Events().ListUpcoming(ctx, now)
	require.NoError(t, err)
	var ids []string
	for _, e := range got {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, want, ids)
}
