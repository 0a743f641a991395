package lifecycle

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 2, 10, 12, 0, 0, 0, time.UTC)

func pendingRecord() *types.ApplicationRecord {
	return &types.ApplicationRecord{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Job:       types.JobReference{URL: "https://a.com/job1"},
		Status:    types.StatusPending,
		CreatedAt: testNow.Add(-24 * time.Hour),
		UpdatedAt: testNow.Add(-24 * time.Hour),
	}
}

// allowedPairs enumerates every permitted from/to pair.
var allowedPairs = map[[2]string]bool{
	{types.StatusPending, types.StatusInterviewScheduled}:            true,
	{types.StatusPending, types.StatusOfferReceived}:                 true,
	{types.StatusPending, types.StatusRejected}:                      true,
	{types.StatusPending, types.StatusWithdrawn}:                     true,
	{types.StatusPending, types.StatusArchived}:                      true,
	{types.StatusInterviewScheduled, types.StatusOfferReceived}:      true,
	{types.StatusInterviewScheduled, types.StatusRejected}:           true,
	{types.StatusInterviewScheduled, types.StatusWithdrawn}:          true,
	{types.StatusInterviewScheduled, types.StatusArchived}:           true,
	{types.StatusOfferReceived, types.StatusWithdrawn}:               true,
	{types.StatusOfferReceived, types.StatusArchived}:                true,
	{types.StatusRejected, types.StatusArchived}:                     true,
	{types.StatusWithdrawn, types.StatusArchived}:                    true,
}

func TestCanTransition_FullGridClosure(t *testing.T) {
	// Every (old, new) pair over the full status grid must agree with the
	// table; everything not listed is invalid, including self-transitions.
	for _, from := range types.Statuses {
		for _, to := range types.Statuses {
			expected := allowedPairs[[2]string{from, to}]
			assert.Equal(t, expected, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestApply_InvalidPairsLeaveRecordUnchanged(t *testing.T) {
	for _, from := range types.Statuses {
		for _, to := range types.Statuses {
			if allowedPairs[[2]string{from, to}] {
				continue
			}
			record := pendingRecord()
			record.Status = from
			before := *record

			updated, _, err := Apply(record, to, uuid.New(), types.TransitionPayload{}, testNow)

			var invalidErr *ErrInvalidTransition
			require.ErrorAs(t, err, &invalidErr, "%s -> %s", from, to)
			assert.Nil(t, updated)
			assert.Equal(t, before, *record, "record mutated on invalid %s -> %s", from, to)
		}
	}
}

func TestApply_SelfTransitionRejected(t *testing.T) {
	record := pendingRecord()

	_, _, err := Apply(record, types.StatusPending, uuid.New(), types.TransitionPayload{}, testNow)

	var invalidErr *ErrInvalidTransition
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, types.StatusPending, invalidErr.From)
	assert.Equal(t, types.StatusPending, invalidErr.To)
}

func TestApply_FromArchivedAlwaysRejected(t *testing.T) {
	record := pendingRecord()
	record.Status = types.StatusArchived

	_, _, err := Apply(record, types.StatusOfferReceived, uuid.New(), types.TransitionPayload{}, testNow)

	var invalidErr *ErrInvalidTransition
	assert.ErrorAs(t, err, &invalidErr)
}

func TestApply_UnknownStatusRejected(t *testing.T) {
	record := pendingRecord()

	_, _, err := Apply(record, "on_hold", uuid.New(), types.TransitionPayload{}, testNow)

	var invalidErr *ErrInvalidTransition
	assert.ErrorAs(t, err, &invalidErr)
}

func TestApply_InterviewRequiresDate(t *testing.T) {
	record := pendingRecord()

	_, _, err := Apply(record, types.StatusInterviewScheduled, uuid.New(), types.TransitionPayload{}, testNow)

	var missingErr *ErrMissingField
	require.ErrorAs(t, err, &missingErr)
	assert.Equal(t, "interview_date", missingErr.Field)
}

func TestApply_InterviewSetsDateAndAuditEntry(t *testing.T) {
	record := pendingRecord()
	actor := uuid.New()
	interviewDate := time.Date(2025, 2, 20, 9, 0, 0, 0, time.UTC)

	updated, entry, err := Apply(record, types.StatusInterviewScheduled, actor,
		types.TransitionPayload{InterviewDate: &interviewDate, Notes: "recruiter call"}, testNow)

	require.NoError(t, err)
	assert.Equal(t, types.StatusInterviewScheduled, updated.Status)
	require.NotNil(t, updated.InterviewDate)
	assert.Equal(t, interviewDate, *updated.InterviewDate)
	assert.Equal(t, testNow, updated.UpdatedAt)

	assert.Equal(t, record.ID, entry.ApplicationID)
	assert.Equal(t, types.StatusPending, entry.OldStatus)
	assert.Equal(t, types.StatusInterviewScheduled, entry.NewStatus)
	assert.Equal(t, actor, entry.ChangedBy)
	assert.Equal(t, testNow, entry.ChangedAt)
	assert.Equal(t, "recruiter call", entry.Notes)
	assert.Zero(t, entry.SequenceNumber, "sequence numbers belong to the ledger")

	// Input record untouched.
	assert.Equal(t, types.StatusPending, record.Status)
	assert.Nil(t, record.InterviewDate)
}

func TestApply_OptionalPayloadFields(t *testing.T) {
	salary := 120000
	reason := "position filled"

	t.Run("offer without salary", func(t *testing.T) {
		updated, _, err := Apply(pendingRecord(), types.StatusOfferReceived, uuid.New(), types.TransitionPayload{}, testNow)
		require.NoError(t, err)
		assert.Nil(t, updated.SalaryOffered)
	})

	t.Run("offer with salary", func(t *testing.T) {
		updated, _, err := Apply(pendingRecord(), types.StatusOfferReceived, uuid.New(),
			types.TransitionPayload{SalaryOffered: &salary}, testNow)
		require.NoError(t, err)
		require.NotNil(t, updated.SalaryOffered)
		assert.Equal(t, 120000, *updated.SalaryOffered)
	})

	t.Run("rejection with reason", func(t *testing.T) {
		updated, _, err := Apply(pendingRecord(), types.StatusRejected, uuid.New(),
			types.TransitionPayload{RejectionReason: &reason}, testNow)
		require.NoError(t, err)
		require.NotNil(t, updated.RejectionReason)
		assert.Equal(t, reason, *updated.RejectionReason)
	})

	t.Run("withdrawal with reason", func(t *testing.T) {
		updated, _, err := Apply(pendingRecord(), types.StatusWithdrawn, uuid.New(),
			types.TransitionPayload{WithdrawalReason: &reason}, testNow)
		require.NoError(t, err)
		require.NotNil(t, updated.WithdrawalReason)
	})
}

func TestApply_StatusFieldsAreSticky(t *testing.T) {
	record := pendingRecord()
	interviewDate := time.Date(2025, 2, 20, 9, 0, 0, 0, time.UTC)

	scheduled, _, err := Apply(record, types.StatusInterviewScheduled, uuid.New(),
		types.TransitionPayload{InterviewDate: &interviewDate}, testNow)
	require.NoError(t, err)

	rejected, _, err := Apply(scheduled, types.StatusRejected, uuid.New(), types.TransitionPayload{}, testNow.Add(time.Hour))
	require.NoError(t, err)

	// Interview date survives leaving interview_scheduled.
	require.NotNil(t, rejected.InterviewDate)
	assert.Equal(t, interviewDate, *rejected.InterviewDate)
	assert.Equal(t, types.StatusRejected, rejected.Status)
}

func TestTerminal(t *testing.T) {
	assert.True(t, Terminal(types.StatusArchived))
	assert.False(t, Terminal(types.StatusPending))
	assert.False(t, Terminal(types.StatusRejected))
	assert.False(t, Terminal("on_hold"))
}

func TestCreationEntry(t *testing.T) {
	appID := uuid.New()
	actor := uuid.New()

	entry := CreationEntry(appID, actor, "found via referral", testNow)

	assert.Equal(t, appID, entry.ApplicationID)
	assert.Empty(t, entry.OldStatus)
	assert.Equal(t, types.StatusPending, entry.NewStatus)
	assert.Equal(t, actor, entry.ChangedBy)
	assert.Equal(t, "found via referral", entry.Notes)
}
