package shared

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-level error surfaced to callers as a
// typed failure with a stable code and a human-readable message.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorf creates a new domain error with a formatted message.
func NewDomainErrorf(code, format string, args ...any) *DomainError {
	return &DomainError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Error codes used across the transaction and cash-reconciliation engine.
const (
	CodeNotFound               = "NOT_FOUND"
	CodeAlreadyExists          = "ALREADY_EXISTS"
	CodeValidation             = "VALIDATION_ERROR"
	CodeInvalidStateTransition = "INVALID_STATE_TRANSITION"
	CodeInsufficientStock      = "INSUFFICIENT_STOCK"
	CodeNoInventoryRecord      = "NO_INVENTORY_RECORD"
	CodePaymentExceedsDue      = "PAYMENT_EXCEEDS_DUE"
	CodeDepositBelowMinimum    = "DEPOSIT_BELOW_MINIMUM"
	CodeEditWindowExpired      = "EDIT_WINDOW_EXPIRED"
	CodeConcurrencyConflict    = "CONCURRENCY_CONFLICT"
)

// Common domain errors.
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
)

// IsDomainError returns the DomainError if err is or wraps one, or nil.
func IsDomainError(err error) *DomainError {
	var de *DomainError
	if errors.As(err, &de) {
		return de
	}
	return nil
}

// HasCode reports whether err is a DomainError carrying the given code.
func HasCode(err error, code string) bool {
	de := IsDomainError(err)
	return de != nil && de.Code == code
}
