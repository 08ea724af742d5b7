// Package repository implements the PostgreSQL store for the event registration
// system. It uses pgx directly (no ORM) so every lock and constraint is visible
// in the SQL.
//
// Repository methods join the transaction carried by their context, if any, so
// a service can compose several calls into one unit of work via Transactor.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQL error codes the store translates into domain errors.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeInvalidTextRepresent = "22P02"
)

const (
	constraintUsersEmail         = "users_email_key"
	constraintRegistrationsEvent = "registrations_event_id_fkey"
	constraintRegistrationsUser  = "registrations_user_id_fkey"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// conn returns the transaction in ctx, or the pool when there is none.
func conn(ctx context.Context, pool *pgxpool.Pool) querier {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

func isUniqueViolation(err error) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == codeUniqueViolation
}

// foreignKeyViolation reports the violated constraint name, if err is one.
func foreignKeyViolation(err error) (string, bool) {
	pgErr, ok := pgError(err)
	if !ok || pgErr.Code != codeForeignKeyViolation {
		return "", false
	}
	return pgErr.ConstraintName, true
}

func isInvalidUUID(err error) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == codeInvalidTextRepresent
}
