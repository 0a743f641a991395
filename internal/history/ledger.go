// Package history provides the append-only transition ledger for
// applications and the pure helpers that read it. Entries are immutable and
// sequence numbers are gapless per application, starting at 1.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/types"
)

// Store persists ledger entries. Implementations assign the sequence number
// atomically on insert; callers never supply one.
type Store interface {
	AppendHistory(ctx context.Context, entry types.HistoryEntry) (types.HistoryEntry, error)
	ListHistory(ctx context.Context, applicationID uuid.UUID, since, until *time.Time) ([]types.HistoryEntry, error)
}

// Ledger is the engine's read/append surface over a history store. The
// ledger is the only writer of sequence numbers; Append discards any
// caller-supplied value before delegating to the store.
type Ledger struct {
	store Store
}

// New creates a Ledger over the given store.
func New(store Store) *Ledger {
	return &Ledger{store: store}
}

// Append records a new entry and returns it with its assigned sequence
// number.
func (l *Ledger) Append(ctx context.Context, entry types.HistoryEntry) (types.HistoryEntry, error) {
	entry.SequenceNumber = 0
	stored, err := l.store.AppendHistory(ctx, entry)
	if err != nil {
		return types.HistoryEntry{}, fmt.Errorf("failed to append history entry: %w", err)
	}
	return stored, nil
}

// List returns an application's entries in ascending sequence order,
// optionally bounded by changed_at timestamps.
func (l *Ledger) List(ctx context.Context, applicationID uuid.UUID, since, until *time.Time) ([]types.HistoryEntry, error) {
	entries, err := l.store.ListHistory(ctx, applicationID, since, until)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return entries, nil
}

// NextSequence returns the sequence number the next entry should carry given
// an application's current entries.
func NextSequence(entries []types.HistoryEntry) int {
	max := 0
	for _, entry := range entries {
		if entry.SequenceNumber > max {
			max = entry.SequenceNumber
		}
	}
	return max + 1
}

// Reached reports whether the application passed through status at least
// once, per its ledger rather than its current status.
func Reached(entries []types.HistoryEntry, status string) bool {
	for _, entry := range entries {
		if entry.NewStatus == status {
			return true
		}
	}
	return false
}

// FirstNonPending returns the earliest entry that moved the application out
// of pending, or nil if it never left.
func FirstNonPending(entries []types.HistoryEntry) *types.HistoryEntry {
	for i := range entries {
		if entries[i].NewStatus != types.StatusPending {
			return &entries[i]
		}
	}
	return nil
}

// ValidateOrdering checks the ledger invariant: sequence numbers strictly
// increasing and gapless from 1.
func ValidateOrdering(entries []types.HistoryEntry) error {
	for i, entry := range entries {
		if entry.SequenceNumber != i+1 {
			return fmt.Errorf("ledger entry %d has sequence number %d, want %d",
				i, entry.SequenceNumber, i+1)
		}
	}
	return nil
}
