package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound          = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists     = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput      = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState      = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrNoActiveStrategy  = NewDomainError("NO_ACTIVE_STRATEGY", "No active allocation strategy configured")
	ErrLockTimeout       = NewDomainError("LOCK_TIMEOUT", "Could not acquire row lock, retry the operation")
)

// IsRetryable reports whether the caller may safely retry the whole
// operation from scratch. Only lock-wait failures qualify; every other
// domain error requires caller action first.
func IsRetryable(err error) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == ErrLockTimeout.Code
	}
	return false
}
