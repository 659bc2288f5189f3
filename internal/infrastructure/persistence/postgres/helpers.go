package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Jonathan-321/congenial-eureka/internal/domain/valueobject"
)

// scannable covers pgx.Row and pgx.Rows so scan helpers work with both.
type scannable interface {
	Scan(dest ...any) error
}

const (
	pgLockNotAvailable    = "55P03"
	pgDeadlockDetected    = "40P01"
	pgSerializationFailed = "40001"
)

// mapError translates driver errors into domain errors. Row absence becomes
// ErrNotFound; lock contention becomes ErrConcurrencyConflict so callers can
// retry or surface a conflict instead of a raw driver failure.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return valueobject.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgLockNotAvailable, pgDeadlockDetected, pgSerializationFailed:
			return valueobject.ErrConcurrencyConflict
		}
	}
	return err
}
