// Package notify publishes registration notices after they are committed.
// Delivery is best effort: a lost notice never changes a registration outcome.
package notify

import (
	"context"
	"time"
)

// Notice types.
const (
	TypeRegistrationCreated   = "registration.created"
	TypeRegistrationCancelled = "registration.cancelled"
)

// Notice describes a committed change to an event's registrations.
type Notice struct {
	Type    string    `json:"type"`
	EventID string    `json:"event_id"`
	UserID  string    `json:"user_id"`
	At      time.Time `json:"at"`
}

// Publisher delivers notices to interested parties.
type Publisher interface {
	Publish(ctx context.Context, n Notice) error
}

// Nop discards every notice.
type Nop struct{}

// Publish does nothing.
func (Nop) Publish(context.Context, Notice) error { return nil }
