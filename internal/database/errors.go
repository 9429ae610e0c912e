package database

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	apperrors "goldsphere/internal/errors"
)

// Postgres SQLSTATE codes that signal contention rather than a broken invariant.
const (
	pgLockNotAvailable     = "55P03"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgQueryCanceled        = "57014"
)

// IsContention reports whether err is a lock timeout, serialization failure,
// deadlock or expired deadline, i.e. something a retry can fix.
func IsContention(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgLockNotAvailable, pgSerializationFailure, pgDeadlockDetected, pgQueryCanceled:
			return true
		}
		return false
	}
	// sqlite reports contention as SQLITE_BUSY / SQLITE_LOCKED text
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked")
}

// ClassifyError turns a raw persistence error into an AppError. AppErrors pass
// through unchanged so business and state errors raised inside a transaction
// keep their identity.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if IsContention(err) {
		return apperrors.Wrap(apperrors.ErrLockTimeout, err)
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
