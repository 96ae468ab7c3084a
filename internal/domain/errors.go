package domain

import (
	"errors"
	"fmt"
)

// Error kinds shared by every layer. Callers check them with errors.Is;
// the transport shell maps each one to a status code.
var (
	// ErrUnauthorized is returned when the caller has no valid identity.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when a valid identity lacks privilege for the target resource.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound is returned when a referenced task or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned when input is malformed.
	// It is usually wrapped by a *ValidationError naming the field.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition is returned when the status state machine rejects a transition.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrConflict is returned when a write collides with existing data, e.g. a duplicate id.
	ErrConflict = errors.New("conflict")
)

// ErrorKind names an error category without exposing the sentinel itself.
type ErrorKind string

// Known error kinds, in the order KindOf checks them.
const (
	KindUnauthorized      ErrorKind = "unauthorized"
	KindForbidden         ErrorKind = "forbidden"
	KindNotFound          ErrorKind = "not_found"
	KindValidation        ErrorKind = "validation"
	KindInvalidTransition ErrorKind = "invalid_transition"
	KindConflict          ErrorKind = "conflict"
	KindInternal          ErrorKind = "internal"
)

var kindSentinels = []struct {
	kind ErrorKind
	err  error
}{
	{KindUnauthorized, ErrUnauthorized},
	{KindForbidden, ErrForbidden},
	{KindInvalidTransition, ErrInvalidTransition},
	{KindValidation, ErrValidation},
	{KindNotFound, ErrNotFound},
	{KindConflict, ErrConflict},
}

// KindOf classifies err. Errors that match none of the sentinels are KindInternal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	for _, ks := range kindSentinels {
		if errors.Is(err, ks.err) {
			return ks.kind
		}
	}
	return KindInternal
}

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	if e.Err == nil {
		return ErrValidation
	}
	return e.Err
}

// NewValidationError creates a ValidationError for field.
// err defaults to ErrValidation when nil; any other value should itself wrap ErrValidation.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// InvalidTransitionError reports a status change the state machine does not allow.
type InvalidTransitionError struct {
	From Status
	To   Status
}

// Error implements the error interface for InvalidTransitionError.
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

// Unwrap lets errors.Is match ErrInvalidTransition.
func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}
