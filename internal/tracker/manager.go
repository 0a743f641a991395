// Package tracker is the application lifecycle engine. It composes the
// duplicate detector, status state machine, history ledger, and statistics
// aggregator over an injected storage collaborator. The engine is stateless:
// it performs no I/O except through Storage, and it neither retries nor
// swallows errors.
package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/dedup"
	"github.com/jonathan/job-tracker/internal/history"
	"github.com/jonathan/job-tracker/internal/lifecycle"
	"github.com/jonathan/job-tracker/internal/stats"
	"github.com/jonathan/job-tracker/internal/types"
)

// Storage is the persistence collaborator. Get returns nil without error
// when the record is absent. Create and Save persist the record and its
// ledger entry in one atomic unit; Save additionally enforces optimistic
// concurrency against expectedOldStatus and fails with a
// db.ErrConcurrentModification-style error on a stale read.
type Storage interface {
	Get(ctx context.Context, id uuid.UUID) (*types.ApplicationRecord, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filter types.ListFilter) ([]types.ApplicationRecord, error)
	Create(ctx context.Context, record *types.ApplicationRecord, entry types.HistoryEntry) (*types.ApplicationRecord, error)
	Save(ctx context.Context, record *types.ApplicationRecord, expectedOldStatus string, entry types.HistoryEntry) (*types.ApplicationRecord, error)
	AppendNote(ctx context.Context, id uuid.UUID, note types.NoteEntry) (*types.ApplicationRecord, error)
	SetFollowUp(ctx context.Context, id uuid.UUID, at time.Time) (*types.ApplicationRecord, error)
	AppendHistory(ctx context.Context, entry types.HistoryEntry) (types.HistoryEntry, error)
	ListHistory(ctx context.Context, applicationID uuid.UUID, since, until *time.Time) ([]types.HistoryEntry, error)
}

// Clock supplies the current time; injected for deterministic tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Config bundles the engine components' configuration.
type Config struct {
	Dedup dedup.Config
	Stats stats.Config
}

// Manager is the engine facade exposing the tracking operations.
type Manager struct {
	store      Storage
	clock      Clock
	detector   *dedup.Detector
	ledger     *history.Ledger
	aggregator *stats.Aggregator
}

// NewManager creates a Manager over the given storage and clock.
func NewManager(store Storage, clock Clock, cfg Config) *Manager {
	return &Manager{
		store:      store,
		clock:      clock,
		detector:   dedup.NewDetector(cfg.Dedup),
		ledger:     history.New(store),
		aggregator: stats.New(cfg.Stats),
	}
}

// CheckDuplicate classifies a candidate job reference against the user's
// tracked applications without creating anything.
func (m *Manager) CheckDuplicate(ctx context.Context, userID uuid.UUID, candidate types.JobReference) (dedup.Match, error) {
	existing, err := m.store.ListByUser(ctx, userID, types.ListFilter{})
	if err != nil {
		return dedup.Match{}, fmt.Errorf("failed to list applications for user %s: %w", userID, err)
	}
	return m.detector.Check(existing, candidate)
}

// Create tracks a new application: a successful duplicate pass, initial
// status pending, and the creation ledger entry, persisted atomically.
func (m *Manager) Create(ctx context.Context, req types.CreateApplicationRequest) (*types.ApplicationRecord, error) {
	match, err := m.CheckDuplicate(ctx, req.UserID, req.Job)
	if err != nil {
		return nil, err
	}
	if match.Duplicate {
		return nil, &ErrDuplicateApplication{MatchedID: match.MatchedID, Score: match.Score}
	}

	now := m.clock.Now()
	record := &types.ApplicationRecord{
		ID:        uuid.New(),
		UserID:    req.UserID,
		Job:       req.Job,
		Status:    types.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Notes != "" {
		record.Notes = []types.NoteEntry{{Text: req.Notes, AddedAt: now}}
	}

	entry := lifecycle.CreationEntry(record.ID, req.ActorID, req.Notes, now)
	created, err := m.store.Create(ctx, record, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	return created, nil
}

// UpdateStatus applies one state-machine transition. The status mutation and
// its ledger entry are persisted as one atomic unit; a concurrent writer that
// changed the status since our read surfaces as a retryable
// ConcurrentModificationError from storage, never a silent overwrite.
func (m *Manager) UpdateStatus(ctx context.Context, id uuid.UUID, req types.UpdateStatusRequest) (*types.ApplicationRecord, error) {
	record, err := m.get(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, entry, err := lifecycle.Apply(record, req.NewStatus, req.ActorID, req.Payload, m.clock.Now())
	if err != nil {
		return nil, err
	}

	saved, err := m.store.Save(ctx, updated, record.Status, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to save transition %s -> %s for %s: %w",
			record.Status, req.NewStatus, id, err)
	}
	return saved, nil
}

// Archive soft-deletes an application by transitioning it into the terminal
// archived status. The ledger is preserved; the engine has no hard delete.
func (m *Manager) Archive(ctx context.Context, id, actorID uuid.UUID, notes string) (*types.ApplicationRecord, error) {
	return m.UpdateStatus(ctx, id, types.UpdateStatusRequest{
		ActorID:   actorID,
		NewStatus: types.StatusArchived,
		Payload:   types.TransitionPayload{Notes: notes},
	})
}

// History returns the application's ledger entries in ascending sequence
// order, optionally bounded by changed_at timestamps.
func (m *Manager) History(ctx context.Context, id uuid.UUID, since, until *time.Time) ([]types.HistoryEntry, error) {
	if _, err := m.get(ctx, id); err != nil {
		return nil, err
	}
	return m.ledger.List(ctx, id, since, until)
}

// AddNote appends a timestamped note; existing notes are never rewritten.
func (m *Manager) AddNote(ctx context.Context, id uuid.UUID, text string) (*types.ApplicationRecord, error) {
	if _, err := m.get(ctx, id); err != nil {
		return nil, err
	}
	record, err := m.store.AppendNote(ctx, id, types.NoteEntry{Text: text, AddedAt: m.clock.Now()})
	if err != nil {
		return nil, fmt.Errorf("failed to append note to %s: %w", id, err)
	}
	return record, nil
}

// SetFollowUp sets the follow-up date, independent of status.
func (m *Manager) SetFollowUp(ctx context.Context, id uuid.UUID, at time.Time) (*types.ApplicationRecord, error) {
	if _, err := m.get(ctx, id); err != nil {
		return nil, err
	}
	record, err := m.store.SetFollowUp(ctx, id, at)
	if err != nil {
		return nil, fmt.Errorf("failed to set follow-up on %s: %w", id, err)
	}
	return record, nil
}

// Get returns a single application record.
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*types.ApplicationRecord, error) {
	return m.get(ctx, id)
}

// List returns all of a user's applications.
func (m *Manager) List(ctx context.Context, userID uuid.UUID) ([]types.ApplicationRecord, error) {
	return m.ListFiltered(ctx, userID, types.ListFilter{})
}

// ListFiltered returns the user's applications matching the filter.
func (m *Manager) ListFiltered(ctx context.Context, userID uuid.UUID, filter types.ListFilter) ([]types.ApplicationRecord, error) {
	records, err := m.store.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications for user %s: %w", userID, err)
	}
	return records, nil
}

// Statistics aggregates metrics over the user's applications created within
// windowDays before now (0 selects the configured default window).
func (m *Manager) Statistics(ctx context.Context, userID uuid.UUID, windowDays int) (types.Stats, error) {
	records, err := m.store.ListByUser(ctx, userID, types.ListFilter{})
	if err != nil {
		return types.Stats{}, fmt.Errorf("failed to list applications for user %s: %w", userID, err)
	}
	return m.aggregator.Aggregate(records, windowDays, m.clock.Now()), nil
}

// DuplicateReport runs pairwise duplicate analysis over the user's
// applications.
func (m *Manager) DuplicateReport(ctx context.Context, userID uuid.UUID) (dedup.Report, error) {
	records, err := m.store.ListByUser(ctx, userID, types.ListFilter{})
	if err != nil {
		return dedup.Report{}, fmt.Errorf("failed to list applications for user %s: %w", userID, err)
	}
	return m.detector.Analyze(records), nil
}

func (m *Manager) get(ctx context.Context, id uuid.UUID) (*types.ApplicationRecord, error) {
	record, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get application %s: %w", id, err)
	}
	if record == nil {
		return nil, &ErrApplicationNotFound{ID: id}
	}
	return record, nil
}
