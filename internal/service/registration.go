package service

import (
	"context"
	"time"

	"github.com/Shivanand-hulikatti/event-registration/internal/model"
	"github.com/Shivanand-hulikatti/event-registration/internal/notify"
)

const publishTimeout = 2 * time.Second

// Register admits userID to eventID or rejects the attempt with a reason.
//
// ─────────────────────────────────────────────────────────────────────────────
// CONCURRENCY
// ─────────────────────────────────────────────────────────────────────────────
//
// The capacity check is read-then-write. Without a lock two attempts on a
// 10-seat event holding 9 registrations both count 9, both insert, and the
// event ends with 11. LockForUpdate (SELECT ... FOR UPDATE) makes every
// attempt on the same event wait for the previous one to commit or roll back,
// so the count below is exact for the whole transaction. Attempts on different
// events never contend.
//
// Duplicates are not pre-checked. The (event, user) uniqueness constraint
// decides them at insert time.
//
// ─────────────────────────────────────────────────────────────────────────────
func (s *EventService) Register(ctx context.Context, eventID, userID string) (*model.Registration, error) {
	if eventID == "" || userID == "" {
		return nil, model.InvalidInput("event id and user id are required")
	}

	// One evaluation instant per attempt; never re-read mid-transaction.
	now := s.clock.Now()
	reg := model.Registration{EventID: eventID, UserID: userID, CreatedAt: now}

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		// ── Step 1: lock the event row; a missing row means no event. ──────
		event, err := s.events.LockForUpdate(ctx, eventID)
		if err != nil {
			return err
		}

		// ── Step 2: the registration window closes at the event's date. ────
		if !event.IsUpcoming(now) {
			return model.ErrEventExpired
		}

		// ── Step 3: count under the lock and guard against overbooking. ────
		registered, err := s.registrations.Count(ctx, eventID)
		if err != nil {
			return err
		}
		if event.IsFull(registered) {
			return model.ErrEventFull
		}

		// ── Step 4: insert; constraints report duplicates and unknown users.
		return s.registrations.Insert(ctx, reg)
	})
	if err != nil {
		s.logRejection("registration rejected", eventID, userID, err)
		return nil, wrapInternal("register for event", err)
	}

	s.log.Debug("registration admitted", "event_id", eventID, "user_id", userID)
	s.publish(ctx, notify.TypeRegistrationCreated, eventID, userID, now)
	return &reg, nil
}

// Cancel removes the registration for the pair. It takes no event lock:
// deleting can only free capacity, never exceed it.
func (s *EventService) Cancel(ctx context.Context, eventID, userID string) error {
	if eventID == "" || userID == "" {
		return model.InvalidInput("event id and user id are required")
	}

	if err := s.registrations.Delete(ctx, eventID, userID); err != nil {
		s.logRejection("cancellation rejected", eventID, userID, err)
		return wrapInternal("cancel registration", err)
	}

	s.log.Debug("registration cancelled", "event_id", eventID, "user_id", userID)
	s.publish(ctx, notify.TypeRegistrationCancelled, eventID, userID, s.clock.Now())
	return nil
}

func (s *EventService) logRejection(msg, eventID, userID string, err error) {
	kind := model.KindOf(err)
	if kind == model.KindInternal {
		s.log.Error(msg, "event_id", eventID, "user_id", userID, "error", err)
		return
	}
	s.log.Info(msg, "event_id", eventID, "user_id", userID, "reason", kind.String(), "error", err)
}

// publish runs after commit. It outlives a cancelled request briefly so a
// committed change is still announced, and a failure only gets logged.
func (s *EventService) publish(ctx context.Context, typ, eventID, userID string, at time.Time) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	n := notify.Notice{Type: typ, EventID: eventID, UserID: userID, At: at}
	if err := s.publisher.Publish(pubCtx, n); err != nil {
		s.log.Warn("publish notice failed", "type", typ, "event_id", eventID, "error", err)
	}
}
