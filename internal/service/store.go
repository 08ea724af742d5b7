package service

import (
	"context"
	"time"

	"github.com/Shivanand-hulikatti/event-registration/internal/model"
)

// Transactor opens units of work. Store calls made with the context passed to
// fn join that unit of work.
type Transactor interface {
	// WithTx commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	// WithSnapshot gives fn a consistent read-only view.
	WithSnapshot(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventStore reads and locks events.
type EventStore interface {
	Create(ctx context.Context, e *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	// LockForUpdate takes an exclusive lock on the event held until the
	// unit of work in ctx ends.
	LockForUpdate(ctx context.Context, id string) (*model.Event, error)
	ListUpcoming(ctx context.Context, now time.Time) ([]model.Event, error)
}

// UserStore persists users.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
}

// RegistrationStore counts, inserts and removes registrations for an event.
type RegistrationStore interface {
	Count(ctx context.Context, eventID string) (int, error)
	// Insert reports model.ErrAlreadyRegistered and model.ErrUserNotFound
	// from the store's own constraints.
	Insert(ctx context.Context, reg model.Registration) error
	Delete(ctx context.Context, eventID, userID string) error
	ListRegistrants(ctx context.Context, eventID string) ([]model.Registrant, error)
}

// Stores bundles the collaborators of EventService. All four must share the
// same backend so that calls join one another's units of work.
type Stores struct {
	Tx            Transactor
	Events        EventStore
	Users         UserStore
	Registrations RegistrationStore
}
