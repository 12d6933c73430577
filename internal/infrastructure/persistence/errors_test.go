package persistence

import (
	"errors"
	"fmt"
	"testing"

	"github.com/buildstock/backend/internal/domain/shared"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm duplicated key", gorm.ErrDuplicatedKey, true},
		{"wrapped gorm duplicated key", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), true},
		{"pgx unique violation", &pgconn.PgError{Code: "23505"}, true},
		{"pgx other error", &pgconn.PgError{Code: "23503"}, false},
		{"pq unique violation", &pq.Error{Code: "23505"}, true},
		{"plain error", assert.AnError, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueViolation(tt.err))
		})
	}
}

func TestIsTransientConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"pgx serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"pgx deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"pq serialization failure", &pq.Error{Code: "40001"}, true},
		{"pq deadlock", &pq.Error{Code: "40P01"}, true},
		{"wrapped pgx deadlock", fmt.Errorf("update sequence: %w", &pgconn.PgError{Code: "40P01"}), true},
		{"sqlite locked", errors.New("database is locked"), true},
		{"sqlite table locked", errors.New("database table is locked: receipt_lots"), true},
		{"sqlite busy", errors.New("database is locked (5) (SQLITE_BUSY)"), true},
		{"pgx unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"plain error", assert.AnError, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isTransientConflict(tt.err))
		})
	}
}

func TestNotFoundOr(t *testing.T) {
	err := notFoundOr("find material", "Material", "abc", gorm.ErrRecordNotFound)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Contains(t, err.Error(), "Material")

	err = notFoundOr("find material", "Material", "abc", assert.AnError)
	assert.Equal(t, shared.CategoryPersistence, shared.CategoryOf(err))
	assert.ErrorIs(t, err, assert.AnError)
}

func TestConflictOr(t *testing.T) {
	err := conflictOr("create issue", &pgconn.PgError{Code: pgUniqueViolation})
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	for _, cause := range []error{
		&pgconn.PgError{Code: pgSerializationFailure},
		&pgconn.PgError{Code: pgDeadlockDetected},
		&pq.Error{Code: pgSerializationFailure},
		&pq.Error{Code: pgDeadlockDetected},
		errors.New("database is locked"),
	} {
		err = conflictOr("create issue", cause)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict, "%v", cause)
		assert.Equal(t, shared.CategoryConcurrencyConflict, shared.CategoryOf(err))
	}

	err = conflictOr("create issue", assert.AnError)
	assert.NotErrorIs(t, err, shared.ErrConcurrencyConflict)
	assert.ErrorIs(t, err, shared.ErrPersistence)
}
