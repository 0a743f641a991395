// Package trackertest provides an in-memory Storage implementation for
// engine and handler tests. It mirrors the PostgreSQL store's semantics:
// atomic transition+append, optimistic concurrency on Save, and ledger
// sequence assignment.
package trackertest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/db"
	"github.com/jonathan/job-tracker/internal/history"
	"github.com/jonathan/job-tracker/internal/types"
)

// MemStore is a thread-safe in-memory tracker.Storage.
type MemStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]*types.ApplicationRecord
	entries map[uuid.UUID][]types.HistoryEntry

	// FailSaveWith, when set, is returned by the next Save call. Used to
	// exercise concurrent-modification handling.
	FailSaveWith error
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		records: make(map[uuid.UUID]*types.ApplicationRecord),
		entries: make(map[uuid.UUID][]types.HistoryEntry),
	}
}

// Get returns a copy of the record, or nil when absent.
func (s *MemStore) Get(_ context.Context, id uuid.UUID) (*types.ApplicationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(id), nil
}

// ListByUser returns copies of the user's records matching the filter, most
// recent first, with history attached.
func (s *MemStore) ListByUser(_ context.Context, userID uuid.UUID, filter types.ListFilter) ([]types.ApplicationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.ApplicationRecord
	for id, record := range s.records {
		if record.UserID != userID {
			continue
		}
		if filter.Status != "" && record.Status != filter.Status {
			continue
		}
		if filter.Company != "" &&
			!strings.Contains(strings.ToLower(record.Job.CompanyName), strings.ToLower(filter.Company)) {
			continue
		}
		out = append(out, *s.load(id))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Create stores the record together with its creation ledger entry.
func (s *MemStore) Create(_ context.Context, record *types.ApplicationRecord, entry types.HistoryEntry) (*types.ApplicationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = record.Clone()
	s.appendLocked(entry)
	return s.load(record.ID), nil
}

// Save applies the updated record if the persisted status still matches
// expectedOldStatus, appending the ledger entry in the same step. A stale
// read fails with db.ErrConcurrentModification and changes nothing.
func (s *MemStore) Save(_ context.Context, record *types.ApplicationRecord, expectedOldStatus string, entry types.HistoryEntry) (*types.ApplicationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSaveWith != nil {
		err := s.FailSaveWith
		s.FailSaveWith = nil
		return nil, err
	}

	current, ok := s.records[record.ID]
	if !ok {
		return nil, &db.ErrNotFound{ID: record.ID}
	}
	if current.Status != expectedOldStatus {
		return nil, &db.ErrConcurrentModification{ID: record.ID, ExpectedStatus: expectedOldStatus}
	}

	s.records[record.ID] = record.Clone()
	s.appendLocked(entry)
	return s.load(record.ID), nil
}

// AppendNote appends a note entry to the record.
func (s *MemStore) AppendNote(_ context.Context, id uuid.UUID, note types.NoteEntry) (*types.ApplicationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return nil, &db.ErrNotFound{ID: id}
	}
	record.Notes = append(record.Notes, note)
	return s.load(id), nil
}

// SetFollowUp sets the follow-up date on the record.
func (s *MemStore) SetFollowUp(_ context.Context, id uuid.UUID, at time.Time) (*types.ApplicationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return nil, &db.ErrNotFound{ID: id}
	}
	followUp := at
	record.FollowUpDate = &followUp
	return s.load(id), nil
}

// AppendHistory assigns the next sequence number and stores the entry.
func (s *MemStore) AppendHistory(_ context.Context, entry types.HistoryEntry) (types.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(entry), nil
}

// ListHistory returns the application's entries in ascending sequence order.
func (s *MemStore) ListHistory(_ context.Context, applicationID uuid.UUID, since, until *time.Time) ([]types.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.HistoryEntry
	for _, entry := range s.entries[applicationID] {
		if since != nil && entry.ChangedAt.Before(*since) {
			continue
		}
		if until != nil && entry.ChangedAt.After(*until) {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *MemStore) appendLocked(entry types.HistoryEntry) types.HistoryEntry {
	entry.SequenceNumber = history.NextSequence(s.entries[entry.ApplicationID])
	s.entries[entry.ApplicationID] = append(s.entries[entry.ApplicationID], entry)
	return entry
}

// load returns a copy with history attached; callers hold the lock.
func (s *MemStore) load(id uuid.UUID) *types.ApplicationRecord {
	record, ok := s.records[id]
	if !ok {
		return nil
	}
	out := record.Clone()
	out.History = append([]types.HistoryEntry(nil), s.entries[id]...)
	return out
}
