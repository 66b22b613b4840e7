package shared

import "errors"

// ErrorKind classifies a domain error for propagation and HTTP mapping.
type ErrorKind string

const (
	// KindValidation marks malformed or out-of-range input; never retried.
	KindValidation ErrorKind = "validation"
	// KindBusinessRule marks time-dependent rule failures (e.g. same-day window).
	KindBusinessRule ErrorKind = "business_rule"
	// KindConflict marks lock contention or concurrent modification; safe to retry.
	KindConflict ErrorKind = "conflict"
	// KindInvariant marks internal consistency failures; fatal, never corrected silently.
	KindInvariant ErrorKind = "invariant"
	// KindNotFound marks missing-resource lookups.
	KindNotFound ErrorKind = "not_found"
)

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new validation-kind domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Kind: KindValidation, Code: code, Message: message}
}

// NewValidationError creates a validation error
func NewValidationError(code, message string) *DomainError {
	return &DomainError{Kind: KindValidation, Code: code, Message: message}
}

// NewBusinessRuleError creates a business-rule error
func NewBusinessRuleError(code, message string) *DomainError {
	return &DomainError{Kind: KindBusinessRule, Code: code, Message: message}
}

// NewConflictError creates a retryable conflict error
func NewConflictError(code, message string) *DomainError {
	return &DomainError{Kind: KindConflict, Code: code, Message: message}
}

// NewInvariantViolation creates an invariant-violation error
func NewInvariantViolation(code, message string) *DomainError {
	return &DomainError{Kind: KindInvariant, Code: code, Message: message}
}

// KindOf returns the kind of a domain error, or empty string for other errors
func KindOf(err error) ErrorKind {
	var derr *DomainError
	if errors.As(err, &derr) {
		return derr.Kind
	}
	return ""
}

// IsConflict reports whether the error is a retryable conflict
func IsConflict(err error) bool {
	return KindOf(err) == KindConflict
}

// Common domain errors
var (
	ErrNotFound            = &DomainError{Kind: KindNotFound, Code: "NOT_FOUND", Message: "Resource not found"}
	ErrAlreadyExists       = &DomainError{Kind: KindConflict, Code: "ALREADY_EXISTS", Message: "Resource already exists"}
	ErrInvalidInput        = &DomainError{Kind: KindValidation, Code: "INVALID_INPUT", Message: "Invalid input provided"}
	ErrConcurrencyConflict = &DomainError{Kind: KindConflict, Code: "CONCURRENCY_CONFLICT", Message: "Resource was modified by another process"}
	ErrForbidden           = &DomainError{Kind: KindBusinessRule, Code: "FORBIDDEN", Message: "Access to this resource is forbidden"}
	ErrInvalidState        = &DomainError{Kind: KindBusinessRule, Code: "INVALID_STATE", Message: "Operation not allowed in current state"}
	ErrInsufficientStock   = &DomainError{Kind: KindValidation, Code: "INSUFFICIENT_STOCK", Message: "Insufficient stock available"}
)
