package postgres

import (
	"database/sql"
	"errors"

	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/lib/pq"
)

const (
	pqUniqueViolation     = "23505"
	pqSerializationFail   = "40001"
	pqDeadlockDetected    = "40P01"
	pqLockNotAvailable    = "55P03"
	pqForeignKeyViolation = "23503"
)

// mapSQLError translates driver errors into the domain error taxonomy.
func mapSQLError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ierr.WithError(err).
			WithMessage(msg).
			Mark(ierr.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			return ierr.WithError(err).
				WithMessage(msg).
				Mark(ierr.ErrAlreadyExists)
		case pqSerializationFail, pqDeadlockDetected, pqLockNotAvailable:
			return ierr.WithError(err).
				WithMessage(msg).
				Mark(ierr.ErrTransientConflict)
		case pqForeignKeyViolation:
			return ierr.WithError(err).
				WithMessage(msg).
				Mark(ierr.ErrValidation)
		}
	}
	return ierr.WithError(err).
		WithMessage(msg).
		Mark(ierr.ErrDatabase)
}
