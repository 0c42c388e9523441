package dto

import (
	"net/http"

	"github.com/retailpos/backend/internal/domain/shared"
)

// Transport-level error codes. Domain codes come from the shared package;
// these cover failures that never reach a workflow.
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeInternal:     http.StatusInternalServerError,

	shared.CodeValidation: http.StatusBadRequest,

	shared.CodeNotFound:      http.StatusNotFound,
	shared.CodeAlreadyExists: http.StatusConflict,

	// Concurrency conflicts are retryable -> 409 Conflict
	shared.CodeConcurrencyConflict: http.StatusConflict,

	// Business rule violations -> 422 Unprocessable Entity
	shared.CodeInvalidStateTransition: http.StatusUnprocessableEntity,
	shared.CodeInsufficientStock:      http.StatusUnprocessableEntity,
	shared.CodeNoInventoryRecord:      http.StatusUnprocessableEntity,
	shared.CodePaymentExceedsDue:      http.StatusUnprocessableEntity,
	shared.CodeDepositBelowMinimum:    http.StatusUnprocessableEntity,
	shared.CodeEditWindowExpired:      http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500 Internal Server Error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
