package history

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is a minimal in-memory Store assigning gapless sequence numbers.
type fakeStore struct {
	entries map[uuid.UUID][]types.HistoryEntry
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[uuid.UUID][]types.HistoryEntry)}
}

func (s *fakeStore) AppendHistory(_ context.Context, entry types.HistoryEntry) (types.HistoryEntry, error) {
	entry.SequenceNumber = NextSequence(s.entries[entry.ApplicationID])
	s.entries[entry.ApplicationID] = append(s.entries[entry.ApplicationID], entry)
	return entry, nil
}

func (s *fakeStore) ListHistory(_ context.Context, applicationID uuid.UUID, since, until *time.Time) ([]types.HistoryEntry, error) {
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

func TestLedger_AppendAssignsGaplessSequence(t *testing.T) {
	ctx := context.Background()
	ledger := New(newFakeStore())
	appID := uuid.New()
	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		entry := types.HistoryEntry{
			ApplicationID:  appID,
			SequenceNumber: 99, // caller-supplied values are discarded
			NewStatus:      types.StatusPending,
			ChangedAt:      base.Add(time.Duration(i) * time.Hour),
			ChangedBy:      uuid.New(),
		}
		stored, err := ledger.Append(ctx, entry)
		require.NoError(t, err)
		assert.Equal(t, i+1, stored.SequenceNumber)
	}

	entries, err := ledger.List(ctx, appID, nil, nil)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.NoError(t, ValidateOrdering(entries))
}

func TestLedger_ListRepeatedReadsIdentical(t *testing.T) {
	ctx := context.Background()
	ledger := New(newFakeStore())
	appID := uuid.New()

	_, err := ledger.Append(ctx, types.HistoryEntry{ApplicationID: appID, NewStatus: types.StatusPending, ChangedAt: time.Now()})
	require.NoError(t, err)
	_, err = ledger.Append(ctx, types.HistoryEntry{ApplicationID: appID, OldStatus: types.StatusPending, NewStatus: types.StatusRejected, ChangedAt: time.Now()})
	require.NoError(t, err)

	first, err := ledger.List(ctx, appID, nil, nil)
	require.NoError(t, err)
	second, err := ledger.List(ctx, appID, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestLedger_ListTimeWindow(t *testing.T) {
	ctx := context.Background()
	ledger := New(newFakeStore())
	appID := uuid.New()
	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := ledger.Append(ctx, types.HistoryEntry{
			ApplicationID: appID,
			NewStatus:     types.StatusPending,
			ChangedAt:     base.AddDate(0, 0, i),
		})
		require.NoError(t, err)
	}

	since := base.AddDate(0, 0, 1)
	entries, err := ledger.List(ctx, appID, &since, nil)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	until := base
	entries, err = ledger.List(ctx, appID, nil, &until)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestNextSequence(t *testing.T) {
	assert.Equal(t, 1, NextSequence(nil))
	assert.Equal(t, 3, NextSequence([]types.HistoryEntry{
		{SequenceNumber: 1},
		{SequenceNumber: 2},
	}))
}

func TestReached(t *testing.T) {
	entries := []types.HistoryEntry{
		{SequenceNumber: 1, NewStatus: types.StatusPending},
		{SequenceNumber: 2, OldStatus: types.StatusPending, NewStatus: types.StatusInterviewScheduled},
		{SequenceNumber: 3, OldStatus: types.StatusInterviewScheduled, NewStatus: types.StatusRejected},
	}

	// Rejected now, but it reached the interview stage once.
	assert.True(t, Reached(entries, types.StatusInterviewScheduled))
	assert.True(t, Reached(entries, types.StatusRejected))
	assert.False(t, Reached(entries, types.StatusOfferReceived))
}

func TestFirstNonPending(t *testing.T) {
	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	entries := []types.HistoryEntry{
		{SequenceNumber: 1, NewStatus: types.StatusPending, ChangedAt: base},
		{SequenceNumber: 2, NewStatus: types.StatusInterviewScheduled, ChangedAt: base.AddDate(0, 0, 3)},
		{SequenceNumber: 3, NewStatus: types.StatusRejected, ChangedAt: base.AddDate(0, 0, 9)},
	}

	first := FirstNonPending(entries)
	require.NotNil(t, first)
	assert.Equal(t, 2, first.SequenceNumber)

	assert.Nil(t, FirstNonPending(entries[:1]))
	assert.Nil(t, FirstNonPending(nil))
}

func TestValidateOrdering(t *testing.T) {
	assert.NoError(t, ValidateOrdering(nil))
	assert.NoError(t, ValidateOrdering([]types.HistoryEntry{{SequenceNumber: 1}, {SequenceNumber: 2}}))
	assert.Error(t, ValidateOrdering([]types.HistoryEntry{{SequenceNumber: 2}}))
	assert.Error(t, ValidateOrdering([]types.HistoryEntry{{SequenceNumber: 1}, {SequenceNumber: 3}}))
}
