package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors
	// (e.g., ErrUserNotFound, ErrTaskNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a task with an id already in use).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when the backing store rejects an entity,
	// for example on a constraint violation.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrReferenced is returned when a delete would orphan rows that
	// reference the entity.
	ErrReferenced = errors.New("entity is still referenced")

	// ErrInvalidPage is returned by Query for a negative offset or limit.
	ErrInvalidPage = errors.New("invalid page bounds")

	// ErrTaskNotFound indicates that the requested task does not exist in the store.
	ErrTaskNotFound = fmt.Errorf("%w: task", ErrNotFound)

	// ErrUserNotFound indicates that the requested user does not exist in the store.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrTaskIDExists indicates that a task with the supplied id already exists.
	ErrTaskIDExists = fmt.Errorf("%w: task id", ErrDuplicate)

	// ErrUserNameExists indicates that a user with the given name already exists.
	ErrUserNameExists = fmt.Errorf("%w: user name", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError records which entity and operation a backend failure came
// from. Err is the store sentinel for the failure when one applies, so
// errors.Is still matches ErrTaskNotFound and friends through it.
type StoreError struct {
	Entity    string
	Operation string
	Message   string
	Err       error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation on %s failed: %s: %v", e.Operation, e.Entity, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err with the failing entity and operation.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{Entity: entity, Operation: operation, Message: message, Err: err}
}
