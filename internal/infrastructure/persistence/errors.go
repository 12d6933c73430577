package persistence

import (
	"errors"
	"strings"

	"github.com/buildstock/backend/internal/domain/shared"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// SQLSTATE codes the repositories react to
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// pgCode returns the SQLSTATE carried by a pgx or lib/pq error, or ""
func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// isUniqueViolation reports a duplicate key from any of the supported drivers
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return pgCode(err) == pgUniqueViolation
}

// isTransientConflict reports a failure that goes away when the transaction
// is retried: Postgres serialization failures and deadlocks, and SQLite
// lock contention.
func isTransientConflict(err error) bool {
	if err == nil {
		return false
	}
	switch pgCode(err) {
	case pgSerializationFailure, pgDeadlockDetected:
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "sqlite_busy")
}

// notFoundOr maps gorm.ErrRecordNotFound to a not found error for resource,
// everything else to a persistence error
func notFoundOr(op, resource string, id any, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFoundError(resource, id)
	}
	return shared.NewPersistenceError(op, err)
}

// conflictOr maps a duplicate key or a transient lock failure to a
// concurrency conflict, everything else to a persistence error
func conflictOr(op string, err error) error {
	if isUniqueViolation(err) {
		return shared.ErrConcurrencyConflict.WithMessage("%s: document number already taken", op)
	}
	if isTransientConflict(err) {
		return shared.ErrConcurrencyConflict.WithMessage("%s: %v", op, err)
	}
	return shared.NewPersistenceError(op, err)
}
