package dto

import (
	"net/http"

	"github.com/buildstock/backend/internal/domain/shared"
)

// API error codes, ERR_<WHAT>
const (
	ErrCodeInternal    = "ERR_INTERNAL"
	ErrCodePersistence = "ERR_PERSISTENCE" // details stay in the server log

	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"

	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"

	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeInsufficientStock   = "ERR_INSUFFICIENT_STOCK"
)

// Error categories reported in ErrorInfo.Category
const (
	CategoryValidation          = "validation"
	CategoryInsufficientStock   = "insufficient_stock"
	CategoryNotFound            = "not_found"
	CategoryConcurrencyConflict = "concurrency_conflict"
	CategoryPersistence         = "persistence"
)

// ErrorCodeHTTPStatus is the response status for each API error code
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodePersistence: http.StatusInternalServerError,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeInsufficientStock:   http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the status for code, 500 when the code is unknown
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainCodeMapping translates shared.DomainError codes to API codes
var DomainCodeMapping = map[string]string{
	shared.CodeValidation:          ErrCodeValidation,
	shared.CodeInvalidInput:        ErrCodeInvalidInput,
	shared.CodeNotFound:            ErrCodeNotFound,
	shared.CodeAlreadyExists:       ErrCodeAlreadyExists,
	shared.CodeConcurrencyConflict: ErrCodeConcurrencyConflict,
	shared.CodeInsufficientStock:   ErrCodeInsufficientStock,
	shared.CodePersistence:         ErrCodePersistence,
}

// NormalizeErrorCode maps a domain code to its API code. API codes and
// unknown codes pass through unchanged.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
