// Package model defines the core domain types for the event registration system.
package model

import "time"

// Event is a capacity-bounded, time-bounded activity that users register for.
// Events are immutable once created.
type Event struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Date      time.Time `json:"date"`
	Location  string    `json:"location"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
}

// IsUpcoming reports whether the event is still open at the given instant.
// An event dated exactly now is treated as already past.
func (e *Event) IsUpcoming(now time.Time) bool {
	return e.Date.After(now)
}

// IsFull returns true when registered has reached the capacity.
func (e *Event) IsFull(registered int) bool {
	return registered >= e.Capacity
}

// User is a person who can hold seats at events.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Registration asserts that a user holds one seat at an event.
type Registration struct {
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Registrant is a user joined with the time they registered for an event.
type Registrant struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registered_at"`
}

// EventDetails is an event together with everyone registered for it.
type EventDetails struct {
	Event
	Registrations []Registrant `json:"registrations"`
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Title    string    `json:"title" validate:"required"`
	Date     time.Time `json:"date" validate:"required"`
	Location string    `json:"location" validate:"required"`
	Capacity int       `json:"capacity" validate:"min=1,max=1000"`
}

// CreateUserRequest is the payload for creating a new user.
type CreateUserRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// RegisterRequest is the payload for registering for, or cancelling, an event.
type RegisterRequest struct {
	UserID string `json:"user_id"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}
