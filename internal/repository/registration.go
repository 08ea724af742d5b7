package repository

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/event-registration/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegistrationRepository handles persistence for registrations.
type RegistrationRepository struct {
	db *pgxpool.Pool
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(db *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Count returns the number of registrations for an event. Inside a
// transaction that holds the event's row lock the result cannot go stale
// before commit, because every writer of that event takes the same lock.
func (r *RegistrationRepository) Count(ctx context.Context, eventID string) (int, error) {
	var n int
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1`, eventID,
	).Scan(&n)
	if err != nil {
		if isInvalidUUID(err) {
			return 0, model.ErrInvalidID
		}
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return n, nil
}

// Insert creates a registration. The primary key on (event_id, user_id) is
// the authority on duplicates; the user foreign key is the authority on
// whether the user exists.
func (r *RegistrationRepository) Insert(ctx context.Context, reg model.Registration) error {
	_, err := conn(ctx, r.db).Exec(ctx,
		`INSERT INTO registrations (event_id, user_id, created_at) VALUES ($1, $2, $3)`,
		reg.EventID, reg.UserID, reg.CreatedAt,
	)
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return model.ErrAlreadyRegistered
	}
	if constraint, ok := foreignKeyViolation(err); ok {
		switch constraint {
		case constraintRegistrationsUser:
			return model.ErrUserNotFound
		case constraintRegistrationsEvent:
			return model.ErrEventNotFound
		}
	}
	if isInvalidUUID(err) {
		return model.ErrInvalidID
	}
	return fmt.Errorf("insert registration: %w", err)
}

// Delete removes the registration for the pair, or returns
// model.ErrRegistrationNotFound when there is none.
func (r *RegistrationRepository) Delete(ctx context.Context, eventID, userID string) error {
	tag, err := conn(ctx, r.db).Exec(ctx,
		`DELETE FROM registrations WHERE event_id = $1 AND user_id = $2`,
		eventID, userID,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return model.ErrInvalidID
		}
		return fmt.Errorf("delete registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrRegistrationNotFound
	}
	return nil
}

// ListRegistrants returns the users registered for an event in registration order.
func (r *RegistrationRepository) ListRegistrants(ctx context.Context, eventID string) ([]model.Registrant, error) {
	rows, err := conn(ctx, r.db).Query(ctx,
		`SELECT u.id, u.name, u.email, r.created_at
		 FROM registrations r
		 JOIN users u ON u.id = r.user_id
		 WHERE r.event_id = $1
		 ORDER BY r.created_at ASC, u.id ASC`,
		eventID,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, model.ErrInvalidID
		}
		return nil, fmt.Errorf("list registrants: %w", err)
	}
	defer rows.Close()

	var out []model.Registrant
	for rows.Next() {
		var rg model.Registrant
		if err := rows.Scan(&rg.ID, &rg.Name, &rg.Email, &rg.RegisteredAt); err != nil {
			return nil, fmt.Errorf("scan registrant: %w", err)
		}
		rg.RegisteredAt = rg.RegisteredAt.UTC()
		out = append(out, rg)
	}
	return out, rows.Err()
}
