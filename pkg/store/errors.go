package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a requested record does not exist in its
	// collection. This is an expected, recoverable outcome.
	ErrNotFound = errors.New("store: entity not found")

	// ErrClosed is returned when an operation is attempted on a closed store.
	ErrClosed = errors.New("store: closed")

	// ErrUnknownDriver is returned by Open for an unrecognized driver name.
	ErrUnknownDriver = errors.New("store: unknown driver")
)

// NotFoundError reports which identity was missing from which collection.
// It matches ErrNotFound under errors.Is.
type NotFoundError struct {
	Collection string
	ID         uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("store: entity %s not found in collection %q", e.ID, e.Collection)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
