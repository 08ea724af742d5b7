package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/Shivanand-hulikatti/event-registration/internal/model"
	"github.com/google/uuid"
)

func checkID(ids ...string) error {
	for _, id := range ids {
		if uuid.Validate(id) != nil {
			return model.ErrInvalidID
		}
	}
	return nil
}

// EventRepository handles events.
type EventRepository struct {
	s *Store
}

// Create stores e, staged in the unit of work when ctx carries one.
func (r *EventRepository) Create(ctx context.Context, e *model.Event) error {
	if err := checkID(e.ID); err != nil {
		return err
	}
	t := txFromContext(ctx)
	if err := t.writable(); err != nil {
		return err
	}
	if t != nil {
		t.events[e.ID] = *e
		return nil
	}
	return r.s.commit(&tx{events: map[string]model.Event{e.ID: *e}})
}

// GetByID returns a copy of the event or model.ErrEventNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.eventLocked(txFromContext(ctx), id)
	if !ok {
		return nil, model.ErrEventNotFound
	}
	return &e, nil
}

// LockForUpdate reads the event and takes its exclusive row lock for the rest
// of the unit of work in ctx.
func (r *EventRepository) LockForUpdate(ctx context.Context, id string) (*model.Event, error) {
	t := txFromContext(ctx)
	if t == nil {
		return nil, errors.New("lock event: no transaction in context")
	}
	if err := t.writable(); err != nil {
		return nil, err
	}
	if err := checkID(id); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	_, ok := r.s.eventLocked(t, id)
	r.s.mu.RUnlock()
	if !ok {
		return nil, model.ErrEventNotFound
	}

	if err := r.s.lockEvent(ctx, t, id); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	e, ok := r.s.eventLocked(t, id)
	r.s.mu.RUnlock()
	if !ok {
		r.s.unlockEvent(t, id)
		return nil, model.ErrEventNotFound
	}
	return &e, nil
}

// ListUpcoming returns events dated strictly after now, by date then location.
func (r *EventRepository) ListUpcoming(ctx context.Context, now time.Time) ([]model.Event, error) {
	t := txFromContext(ctx)

	r.s.mu.RLock()
	var out []model.Event
	for _, e := range r.s.view(t).events {
		if e.Date.After(now) {
			out = append(out, e)
		}
	}
	if t != nil && t.snap == nil {
		for _, e := range t.events {
			if e.Date.After(now) {
				out = append(out, e)
			}
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		if out[i].Location != out[j].Location {
			return out[i].Location < out[j].Location
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// UserRepository handles users.
type UserRepository struct {
	s *Store
}

// Create stores u or returns model.ErrEmailTaken if the email is already in use.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	if err := checkID(u.ID); err != nil {
		return err
	}
	t := txFromContext(ctx)
	if err := t.writable(); err != nil {
		return err
	}
	if t == nil {
		return r.s.commit(&tx{users: map[string]model.User{u.ID: *u}})
	}

	r.s.mu.RLock()
	taken := r.s.emailTakenLocked(t, u.Email)
	r.s.mu.RUnlock()
	if taken {
		return model.ErrEmailTaken
	}
	t.users[u.ID] = *u
	return nil
}

// RegistrationRepository handles registrations.
type RegistrationRepository struct {
	s *Store
}

// Count includes writes staged in the unit of work in ctx.
func (r *RegistrationRepository) Count(ctx context.Context, eventID string) (int, error) {
	if err := checkID(eventID); err != nil {
		return 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.registrationsLocked(txFromContext(ctx), eventID)), nil
}

// Insert checks uniqueness of the pair first and the user and event
// references second, matching the order PostgreSQL reports violations in.
func (r *RegistrationRepository) Insert(ctx context.Context, reg model.Registration) error {
	if err := checkID(reg.EventID, reg.UserID); err != nil {
		return err
	}
	t := txFromContext(ctx)
	if err := t.writable(); err != nil {
		return err
	}
	if t == nil {
		return r.s.commit(&tx{regs: map[regKey]*model.Registration{{reg.EventID, reg.UserID}: &reg}})
	}

	k := regKey{eventID: reg.EventID, userID: reg.UserID}
	r.s.mu.RLock()
	_, dup := r.s.registrationLocked(t, k)
	_, userOK := r.s.userLocked(t, reg.UserID)
	_, eventOK := r.s.eventLocked(t, reg.EventID)
	r.s.mu.RUnlock()

	switch {
	case dup:
		return model.ErrAlreadyRegistered
	case !userOK:
		return model.ErrUserNotFound
	case !eventOK:
		return model.ErrEventNotFound
	}
	t.regs[k] = &reg
	return nil
}

// Delete removes the pair or returns model.ErrRegistrationNotFound.
func (r *RegistrationRepository) Delete(ctx context.Context, eventID, userID string) error {
	if err := checkID(eventID, userID); err != nil {
		return err
	}
	t := txFromContext(ctx)
	if err := t.writable(); err != nil {
		return err
	}
	k := regKey{eventID: eventID, userID: userID}

	if t != nil {
		r.s.mu.RLock()
		_, ok := r.s.registrationLocked(t, k)
		r.s.mu.RUnlock()
		if !ok {
			return model.ErrRegistrationNotFound
		}
		t.regs[k] = nil
		return nil
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.committed.regs[k]; !ok {
		return model.ErrRegistrationNotFound
	}
	delete(r.s.committed.regs, k)
	return nil
}

// ListRegistrants returns the users registered for an event in registration order.
func (r *RegistrationRepository) ListRegistrants(ctx context.Context, eventID string) ([]model.Registrant, error) {
	if err := checkID(eventID); err != nil {
		return nil, err
	}
	t := txFromContext(ctx)

	r.s.mu.RLock()
	regs := r.s.registrationsLocked(t, eventID)
	out := make([]model.Registrant, 0, len(regs))
	for _, reg := range regs {
		u, ok := r.s.userLocked(t, reg.UserID)
		if !ok {
			continue
		}
		out = append(out, model.Registrant{ID: u.ID, Name: u.Name, Email: u.Email, RegisteredAt: reg.CreatedAt})
	}
	r.s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].RegisteredAt.Equal(out[j].RegisteredAt) {
			return out[i].RegisteredAt.Before(out[j].RegisteredAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
