// Package memory is an in-process store with the same contract as the
// PostgreSQL repositories: units of work that commit or roll back as a whole,
// exclusive per-event row locks held until the unit of work ends, and
// uniqueness and reference checks that report the same domain errors.
//
// It backs demos (store driver "memory") and the admission controller's
// concurrency tests.
package memory

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/event-registration/internal/model"
)

var errReadOnly = errors.New("cannot write in a read-only transaction")

type regKey struct {
	eventID string
	userID  string
}

// data is one version of the committed state.
type data struct {
	events map[string]model.Event
	users  map[string]model.User
	emails map[string]string
	regs   map[regKey]model.Registration
}

func newData() *data {
	return &data{
		events: make(map[string]model.Event),
		users:  make(map[string]model.User),
		emails: make(map[string]string),
		regs:   make(map[regKey]model.Registration),
	}
}

func (d *data) clone() *data {
	c := newData()
	for k, v := range d.events {
		c.events[k] = v
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.emails {
		c.emails[k] = v
	}
	for k, v := range d.regs {
		c.regs[k] = v
	}
	return c
}

// Options bounds units of work the same way repository.TxOptions does.
type Options struct {
	Timeout     time.Duration
	LockTimeout time.Duration
}

// Store holds all state. The zero value is not usable; call New.
type Store struct {
	opts Options

	mu        sync.RWMutex
	committed *data

	locksMu sync.Mutex
	locks   map[string]chan struct{}
}

// New returns an empty store.
func New(opts Options) *Store {
	return &Store{
		opts:      opts,
		committed: newData(),
		locks:     make(map[string]chan struct{}),
	}
}

// Events returns the event repository view of the store.
func (s *Store) Events() *EventRepository { return &EventRepository{s: s} }

// Users returns the user repository view of the store.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Registrations returns the registration repository view of the store.
func (s *Store) Registrations() *RegistrationRepository { return &RegistrationRepository{s: s} }

// rowLock returns the lock channel for an event, creating it on first use.
// A send acquires the lock; a receive releases it.
func (s *Store) rowLock(eventID string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	ch, ok := s.locks[eventID]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[eventID] = ch
	}
	return ch
}

// view returns the committed state as seen by tx. Callers hold s.mu.
func (s *Store) view(t *tx) *data {
	if t != nil && t.snap != nil {
		return t.snap
	}
	return s.committed
}

func (s *Store) eventLocked(t *tx, id string) (model.Event, bool) {
	if t != nil && t.snap == nil {
		if e, ok := t.events[id]; ok {
			return e, true
		}
	}
	e, ok := s.view(t).events[id]
	return e, ok
}

func (s *Store) userLocked(t *tx, id string) (model.User, bool) {
	if t != nil && t.snap == nil {
		if u, ok := t.users[id]; ok {
			return u, true
		}
	}
	u, ok := s.view(t).users[id]
	return u, ok
}

func (s *Store) registrationLocked(t *tx, k regKey) (model.Registration, bool) {
	if t != nil && t.snap == nil {
		if r, staged := t.regs[k]; staged {
			if r == nil {
				return model.Registration{}, false
			}
			return *r, true
		}
	}
	r, ok := s.view(t).regs[k]
	return r, ok
}

func (s *Store) registrationsLocked(t *tx, eventID string) []model.Registration {
	var out []model.Registration
	for k, r := range s.view(t).regs {
		if k.eventID != eventID {
			continue
		}
		if t != nil && t.snap == nil {
			if _, staged := t.regs[k]; staged {
				continue
			}
		}
		out = append(out, r)
	}
	if t != nil && t.snap == nil {
		for k, r := range t.regs {
			if k.eventID == eventID && r != nil {
				out = append(out, *r)
			}
		}
	}
	return out
}

func (s *Store) emailTakenLocked(t *tx, email string) bool {
	if _, ok := s.view(t).emails[email]; ok {
		return true
	}
	if t != nil {
		for _, u := range t.users {
			if u.Email == email {
				return true
			}
		}
	}
	return false
}

// commit validates the staged writes of t against the latest committed state
// and applies them atomically, or applies nothing.
func (s *Store) commit(t *tx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.committed
	for id, u := range t.users {
		if _, ok := c.emails[u.Email]; ok {
			return model.ErrEmailTaken
		}
		if _, ok := c.users[id]; ok {
			return fmt.Errorf("insert user: duplicate id %s", id)
		}
	}
	for id := range t.events {
		if _, ok := c.events[id]; ok {
			return fmt.Errorf("insert event: duplicate id %s", id)
		}
	}
	for k, r := range t.regs {
		if r == nil {
			continue
		}
		if _, ok := c.regs[k]; ok {
			return model.ErrAlreadyRegistered
		}
		if _, ok := c.users[k.userID]; !ok {
			if _, staged := t.users[k.userID]; !staged {
				return model.ErrUserNotFound
			}
		}
		if _, ok := c.events[k.eventID]; !ok {
			if _, staged := t.events[k.eventID]; !staged {
				return model.ErrEventNotFound
			}
		}
	}

	for id, u := range t.users {
		c.users[id] = u
		c.emails[u.Email] = id
	}
	for id, e := range t.events {
		c.events[id] = e
	}
	for k, r := range t.regs {
		if r == nil {
			delete(c.regs, k)
			continue
		}
		c.regs[k] = *r
	}
	return nil
}
