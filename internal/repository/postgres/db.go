package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"carrier/internal/repository"
)

// Querier is an interface satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Ensure interfaces are satisfied.
var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// Postgres error codes this subsystem cares about.
const (
	pgUndefinedTable  = "42P01"
	pgUniqueViolation = "23505"
)

// mapError translates driver-level errors into repository sentinels.
// An undefined table means the carrier data model is not provisioned in
// this deployment; a unique violation means a concurrent writer won the
// create race and the caller should re-read.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pgUndefinedTable:
			return repository.ErrNotProvisioned
		case pgUniqueViolation:
			return repository.ErrDuplicate
		}
	}
	return err
}
