package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain errors so the transport layer can map them
// to status codes without inspecting message strings.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindInvalidState ErrorKind = "invalid_state"
	KindConflict     ErrorKind = "conflict"
	KindForbidden    ErrorKind = "forbidden"
	KindUnauthorized ErrorKind = "unauthorized"
	KindUnavailable  ErrorKind = "unavailable"
)

// Error is the common error type returned by domain and application code.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// NewValidationError creates a validation error for malformed input.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewNotFoundError creates a not-found error for a missing entity.
func NewNotFoundError(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// NewInvalidStateError creates an error for an illegal state transition.
func NewInvalidStateError(from, to string) *Error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf("cannot transition from %s to %s", from, to)}
}

// NewTerminalStateError creates an error for a mutation attempted on an
// entity already in a terminal state.
func NewTerminalStateError(status string) *Error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf("cannot modify a %s booking", status)}
}

// NewConflictError creates an error for a concurrent-modification conflict.
func NewConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NewForbiddenError creates an error for an action the caller may not perform.
func NewForbiddenError(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NewUnauthorizedError creates an error for a missing or invalid identity.
func NewUnauthorizedError(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// NewUnavailableError wraps a persistence or infrastructure failure.
func NewUnavailableError(message string, cause error) *Error {
	return &Error{Kind: KindUnavailable, Message: message, cause: cause}
}

// KindOf returns the ErrorKind of err, or an empty string for non-domain
// errors. Wrapped domain errors are still classified.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
