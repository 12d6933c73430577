package shared

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	err := NewNotFoundError("material", "abc")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "material abc not found", err.Error())
	assert.True(t, errors.Is(fmt.Errorf("lookup: %w", err), ErrNotFound))
}

func TestNewPersistenceError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, NewPersistenceError("op", nil))
	})

	t.Run("domain errors pass through", func(t *testing.T) {
		err := NewPersistenceError("op", ErrConcurrencyConflict)
		assert.Same(t, ErrConcurrencyConflict, err)
	})

	t.Run("raw errors are wrapped", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := NewPersistenceError("save issue", cause)

		var persistErr *PersistenceError
		assert.True(t, errors.As(err, &persistErr))
		assert.Equal(t, "save issue", persistErr.Op)
		assert.ErrorIs(t, err, cause)
		assert.ErrorIs(t, err, ErrPersistence)
		assert.Equal(t, "save issue: connection reset", err.Error())
	})
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"nil", nil, CategoryNone},
		{"validation", NewValidationError("quantity must be positive"), CategoryValidation},
		{"invalid input", ErrInvalidInput, CategoryValidation},
		{"duplicate", ErrAlreadyExists, CategoryValidation},
		{"not found", fmt.Errorf("wrap: %w", ErrNotFound), CategoryNotFound},
		{"conflict", ErrConcurrencyConflict, CategoryConcurrencyConflict},
		{"insufficient", ErrInsufficientStock, CategoryInsufficientStock},
		{"storage", NewPersistenceError("load", errors.New("boom")), CategoryPersistence},
		{"unknown", errors.New("boom"), CategoryPersistence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryOf(tt.err))
		})
	}
}

func TestDateRange(t *testing.T) {
	from := mustDate("2025-01-05")
	to := mustDate("2025-01-10")
	r := DateRange{From: &from, To: &to}

	assert.True(t, r.Contains(from))
	assert.True(t, r.Contains(to))
	assert.False(t, r.Contains(mustDate("2025-01-11")))
	assert.True(t, DateRange{}.Contains(mustDate("1999-01-01")))
	assert.NoError(t, r.Validate())

	inverted := DateRange{From: &to, To: &from}
	assert.ErrorIs(t, inverted.Validate(), ErrValidation)
}

func TestFilter_Offset(t *testing.T) {
	assert.Equal(t, 0, DefaultFilter().Offset())
	assert.Equal(t, 40, Filter{Page: 3, PageSize: 20}.Offset())
}

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
