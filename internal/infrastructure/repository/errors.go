package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sangkips/studio-ledger/pkg/apperror"
)

// PostgreSQL error codes the ledger reacts to
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// translateError maps driver errors to application error kinds. Errors that
// already carry a kind and context errors pass through unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if apperror.IsAppError(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return apperror.NewConcurrentModificationError(err)
		case pgUniqueViolation:
			return apperror.NewConflictError("Duplicate value: " + pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return apperror.NewBadRequestError("Referenced record does not exist or is still in use")
		}
		return apperror.NewPersistenceFailureError(err)
	}

	// SQLite reports writer contention as SQLITE_BUSY
	msg := err.Error()
	if strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY") {
		return apperror.NewConcurrentModificationError(err)
	}
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return apperror.NewConflictError("Duplicate value")
	}
	return apperror.NewPersistenceFailureError(err)
}

// isUniqueViolation reports whether err is a unique constraint violation
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
