package model

import (
	"errors"
	"fmt"
)

// Error kinds. Every specific error below wraps exactly one of these, so callers
// can match either the precise reason or the broad category with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
)

var (
	ErrEventNotFound        = fmt.Errorf("event %w", ErrNotFound)
	ErrUserNotFound         = fmt.Errorf("user %w", ErrNotFound)
	ErrRegistrationNotFound = fmt.Errorf("registration %w", ErrNotFound)

	ErrEventExpired = fmt.Errorf("%w: event has already taken place", ErrInvalidState)

	ErrEventFull         = fmt.Errorf("%w: event is full", ErrConflict)
	ErrAlreadyRegistered = fmt.Errorf("%w: user is already registered for this event", ErrConflict)
	ErrEmailTaken        = fmt.Errorf("%w: email already exists", ErrConflict)

	ErrInvalidID = fmt.Errorf("%w: malformed id", ErrInvalidInput)
)

// Kind is the category of a failure as seen by the calling layer.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalidState
	KindConflict
	KindInvalidInput
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidState:
		return "invalid_state"
	case KindConflict:
		return "conflict"
	case KindInvalidInput:
		return "invalid_input"
	default:
		return "internal"
	}
}

// KindOf classifies err. Anything that does not wrap a known kind is internal,
// meaning the request could not be evaluated rather than being rejected.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidState):
		return KindInvalidState
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	default:
		return KindInternal
	}
}

// InvalidInput wraps a validation message so it matches ErrInvalidInput.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
