package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/event-registration/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const eventColumns = `id, title, date, location, capacity, created_at`

// EventRepository handles persistence for events.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts a fully populated event.
func (r *EventRepository) Create(ctx context.Context, e *model.Event) error {
	_, err := conn(ctx, r.db).Exec(ctx,
		`INSERT INTO events (id, title, date, location, capacity, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.Title, e.Date, e.Location, e.Capacity, e.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return model.ErrInvalidID
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// GetByID returns a single event or model.ErrEventNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	row := conn(ctx, r.db).QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	e, err := scanEvent(row)
	if err != nil {
		return nil, eventLookupError("get event", err)
	}
	return e, nil
}

// LockForUpdate reads the event and takes an exclusive row lock on it with
// SELECT ... FOR UPDATE. The lock lives until the surrounding transaction ends,
// so every other LockForUpdate on the same event blocks until then. Calling it
// outside a transaction is an error: the lock would be released immediately.
func (r *EventRepository) LockForUpdate(ctx context.Context, id string) (*model.Event, error) {
	tx := txFromContext(ctx)
	if tx == nil {
		return nil, errors.New("lock event: no transaction in context")
	}
	row := tx.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id)
	e, err := scanEvent(row)
	if err != nil {
		return nil, eventLookupError("lock event row", err)
	}
	return e, nil
}

// ListUpcoming returns events dated strictly after now, ordered by date, then
// by location, then by id. COLLATE "C" makes the location order byte-wise rather
// than locale-dependent.
func (r *EventRepository) ListUpcoming(ctx context.Context, now time.Time) ([]model.Event, error) {
	rows, err := conn(ctx, r.db).Query(ctx,
		`SELECT `+eventColumns+`
		 FROM events
		 WHERE date > $1
		 ORDER BY date ASC, location COLLATE "C" ASC, id ASC`,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	if err := row.Scan(&e.ID, &e.Title, &e.Date, &e.Location, &e.Capacity, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Date = e.Date.UTC()
	e.CreatedAt = e.CreatedAt.UTC()
	return &e, nil
}

func eventLookupError(op string, err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return model.ErrEventNotFound
	case isInvalidUUID(err):
		return model.ErrInvalidID
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
