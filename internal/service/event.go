// Package service implements business logic, validation and orchestration
// between HTTP handlers and the store. EventService is the admission
// controller: it alone decides whether a registration is admitted.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Shivanand-hulikatti/event-registration/internal/clock"
	"github.com/Shivanand-hulikatti/event-registration/internal/logger"
	"github.com/Shivanand-hulikatti/event-registration/internal/model"
	"github.com/Shivanand-hulikatti/event-registration/internal/notify"
	"github.com/google/uuid"
)

// EventService orchestrates event and registration operations.
type EventService struct {
	tx            Transactor
	events        EventStore
	registrations RegistrationStore
	clock         clock.Clock
	publisher     notify.Publisher
	log           *logger.Logger
}

// Option configures an EventService.
type Option func(*EventService)

// WithPublisher sends a notice after every committed registration change.
func WithPublisher(p notify.Publisher) Option {
	return func(s *EventService) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithLogger replaces the default no-op logger. A nil logger is ignored.
func WithLogger(l *logger.Logger) Option {
	return func(s *EventService) {
		if l != nil {
			s.log = l.With("service", "EventService")
		}
	}
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(stores Stores, clk clock.Clock, opts ...Option) *EventService {
	s := &EventService{
		tx:            stores.Tx,
		events:        stores.Events,
		registrations: stores.Registrations,
		clock:         clk,
		publisher:     notify.Nop{},
		log:           logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateEvent validates the request and stores a new event.
func (s *EventService) CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Location = strings.TrimSpace(req.Location)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	event := &model.Event{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Date:      req.Date.UTC(),
		Location:  req.Location,
		Capacity:  req.Capacity,
		CreatedAt: s.clock.Now(),
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.log.Info("event created", "event_id", event.ID, "capacity", event.Capacity, "date", event.Date)
	return event, nil
}

// GetEvent returns the event joined with its registrants, read from a single
// snapshot so the list is consistent with the event.
func (s *EventService) GetEvent(ctx context.Context, id string) (*model.EventDetails, error) {
	if id == "" {
		return nil, model.InvalidInput("event id is required")
	}

	var details model.EventDetails
	err := s.tx.WithSnapshot(ctx, func(ctx context.Context) error {
		event, err := s.events.GetByID(ctx, id)
		if err != nil {
			return err
		}
		registrants, err := s.registrations.ListRegistrants(ctx, id)
		if err != nil {
			return err
		}
		details = model.EventDetails{Event: *event, Registrations: registrants}
		return nil
	})
	if err != nil {
		return nil, wrapInternal("get event", err)
	}
	if details.Registrations == nil {
		details.Registrations = []model.Registrant{}
	}
	return &details, nil
}

// ListRegistrations returns everyone registered for an event.
func (s *EventService) ListRegistrations(ctx context.Context, eventID string) ([]model.Registrant, error) {
	details, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return details.Registrations, nil
}

// UpcomingEvents lists events dated after now, earliest first, ties broken by
// location.
func (s *EventService) UpcomingEvents(ctx context.Context) ([]model.Event, error) {
	events, err := s.events.ListUpcoming(ctx, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	if events == nil {
		events = []model.Event{}
	}
	return events, nil
}

// Stats reports seat usage. It takes no lock: the figures may already be
// stale when returned, which is acceptable for telemetry.
func (s *EventService) Stats(ctx context.Context, eventID string) (*model.EventStats, error) {
	if eventID == "" {
		return nil, model.InvalidInput("event id is required")
	}

	var stats model.EventStats
	err := s.tx.WithSnapshot(ctx, func(ctx context.Context) error {
		event, err := s.events.GetByID(ctx, eventID)
		if err != nil {
			return err
		}
		registered, err := s.registrations.Count(ctx, eventID)
		if err != nil {
			return err
		}
		stats = model.NewEventStats(event.ID, event.Capacity, registered)
		return nil
	})
	if err != nil {
		return nil, wrapInternal("event stats", err)
	}
	return &stats, nil
}

// wrapInternal adds context to unexpected failures and passes domain errors
// through untouched.
func wrapInternal(op string, err error) error {
	if model.KindOf(err) != model.KindInternal {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
