package shared

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same code, so wrapped copies created
// with WithMessage still match their sentinel.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// WithMessage returns a copy of the error with a more specific message
func (e *DomainError) WithMessage(format string, args ...any) *DomainError {
	return &DomainError{Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeNotFound            = "NOT_FOUND"
	CodeAlreadyExists       = "ALREADY_EXISTS"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodePersistence         = "PERSISTENCE_ERROR"
)

// Common domain errors
var (
	ErrValidation          = NewDomainError(CodeValidation, "Validation failed")
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput        = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrInsufficientStock   = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrPersistence         = NewDomainError(CodePersistence, "Storage operation failed")
)

// NewValidationError creates a validation error with the given message
func NewValidationError(format string, args ...any) *DomainError {
	return ErrValidation.WithMessage(format, args...)
}

// NewNotFoundError creates a not found error naming the missing resource
func NewNotFoundError(resource string, id any) *DomainError {
	return ErrNotFound.WithMessage("%s %v not found", resource, id)
}

// PersistenceError wraps a storage failure. The cause is kept for logging and
// is never shown to API callers.
type PersistenceError struct {
	Op  string
	Err error
}

// NewPersistenceError wraps err unless it is nil or already a domain error
func NewPersistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	var persistErr *PersistenceError
	if errors.As(err, &persistErr) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrPersistence) true for any PersistenceError
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// ErrorCategory is the user-facing failure class of an operation
type ErrorCategory string

const (
	CategoryNone                ErrorCategory = ""
	CategoryValidation          ErrorCategory = "validation"
	CategoryInsufficientStock   ErrorCategory = "insufficient_stock"
	CategoryNotFound            ErrorCategory = "not_found"
	CategoryConcurrencyConflict ErrorCategory = "concurrency_conflict"
	CategoryPersistence         ErrorCategory = "persistence"
)

// CategoryOf classifies err. Unknown errors are treated as persistence
// failures since they can only come from the storage layer.
func CategoryOf(err error) ErrorCategory {
	switch {
	case err == nil:
		return CategoryNone
	case errors.Is(err, ErrInsufficientStock):
		return CategoryInsufficientStock
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidInput), errors.Is(err, ErrAlreadyExists):
		return CategoryValidation
	case errors.Is(err, ErrNotFound):
		return CategoryNotFound
	case errors.Is(err, ErrConcurrencyConflict):
		return CategoryConcurrencyConflict
	default:
		return CategoryPersistence
	}
}
