package db

import (
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound indicates the referenced application does not exist.
type ErrNotFound struct {
	ID uuid.UUID
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("application not found: %s", e.ID)
}

// ErrConcurrentModification indicates an optimistic-lock miss: the persisted
// status no longer matches the status the caller read. Callers may retry the
// whole read-transition-save cycle; the losing write changed nothing.
type ErrConcurrentModification struct {
	ID             uuid.UUID
	ExpectedStatus string
}

func (e *ErrConcurrentModification) Error() string {
	return fmt.Sprintf("application %s was modified concurrently (expected status %q)", e.ID, e.ExpectedStatus)
}
