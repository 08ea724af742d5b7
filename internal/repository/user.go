package repository

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/event-registration/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles persistence for users.
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user. A duplicate email yields model.ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	_, err := conn(ctx, r.db).Exec(ctx,
		`INSERT INTO users (id, name, email, created_at) VALUES ($1, $2, $3, $4)`,
		u.ID, u.Name, u.Email, u.CreatedAt,
	)
	if err != nil {
		if pgErr, ok := pgError(err); ok && pgErr.Code == codeUniqueViolation && pgErr.ConstraintName == constraintUsersEmail {
			return model.ErrEmailTaken
		}
		if isInvalidUUID(err) {
			return model.ErrInvalidID
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}
