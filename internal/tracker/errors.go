package tracker

import (
	"fmt"

	"github.com/google/uuid"
)

// ErrDuplicateApplication indicates the candidate duplicates an application
// the user already tracks.
type ErrDuplicateApplication struct {
	MatchedID uuid.UUID
	Score     float64
}

func (e *ErrDuplicateApplication) Error() string {
	return fmt.Sprintf("application duplicates existing application %s (score %.2f)", e.MatchedID, e.Score)
}

// ErrApplicationNotFound indicates the referenced application does not exist.
type ErrApplicationNotFound struct {
	ID uuid.UUID
}

func (e *ErrApplicationNotFound) Error() string {
	return fmt.Sprintf("application not found: %s", e.ID)
}
