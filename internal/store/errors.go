package store

import (
	"errors"
	"fmt"
)

// Base sentinels. Implementations wrap one of the specific errors below so
// callers can test either the family or the exact case with errors.Is.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrDuplicate     = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")
)

// Not found, per entity.
var (
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrTaskNotFound also covers tasks that exist but belong to someone else.
	ErrTaskNotFound = fmt.Errorf("%w: task", ErrNotFound)

	// ErrTokenNotFound means the token is not in the user's active set.
	ErrTokenNotFound = fmt.Errorf("%w: token", ErrNotFound)

	ErrAvatarNotFound = fmt.Errorf("%w: avatar", ErrNotFound)
)

// ErrEmailExists is returned when creating or updating a user would reuse
// an email address already taken by another user.
var ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)

// IsNotFoundError reports whether err belongs to the ErrNotFound family.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err belongs to the ErrDuplicate family.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError annotates a driver failure with the entity and operation that
// produced it.
type StoreError struct {
	Entity    string
	Operation string
	Message   string
	Err       error
}

func (e *StoreError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Entity, e.Operation, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError builds a StoreError.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{Entity: entity, Operation: operation, Message: message, Err: err}
}
