// Package lifecycle implements the application status state machine. It
// validates transitions against a fixed table, applies status-specific
// payload fields, and produces the audit entry for the history ledger.
package lifecycle

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/types"
)

// transitions is the allowed status graph. A status absent from a row's
// targets is unreachable from it; archived has no outgoing edges.
var transitions = map[string][]string{
	types.StatusPending: {
		types.StatusInterviewScheduled,
		types.StatusOfferReceived,
		types.StatusRejected,
		types.StatusWithdrawn,
		types.StatusArchived,
	},
	types.StatusInterviewScheduled: {
		types.StatusOfferReceived,
		types.StatusRejected,
		types.StatusWithdrawn,
		types.StatusArchived,
	},
	types.StatusOfferReceived: {
		types.StatusWithdrawn,
		types.StatusArchived,
	},
	types.StatusRejected: {
		types.StatusArchived,
	},
	types.StatusWithdrawn: {
		types.StatusArchived,
	},
	types.StatusArchived: {},
}

// CanTransition reports whether old -> new is in the transition table.
// Self-transitions are never allowed; callers add notes through a dedicated
// operation instead of no-op status churn.
func CanTransition(oldStatus, newStatus string) bool {
	if oldStatus == newStatus {
		return false
	}
	for _, allowed := range transitions[oldStatus] {
		if newStatus == allowed {
			return true
		}
	}
	return false
}

// Terminal reports whether no transitions leave the given status.
func Terminal(status string) bool {
	return types.KnownStatus(status) && len(transitions[status]) == 0
}

// Apply validates and performs a status transition on a copy of record,
// returning the updated copy and the ledger entry describing the change. The
// entry's sequence number is unset; the ledger assigns it. The input record
// is never mutated, so a failed transition leaves no partial state.
func Apply(record *types.ApplicationRecord, newStatus string, actorID uuid.UUID, payload types.TransitionPayload, now time.Time) (*types.ApplicationRecord, types.HistoryEntry, error) {
	if !CanTransition(record.Status, newStatus) {
		return nil, types.HistoryEntry{}, &ErrInvalidTransition{From: record.Status, To: newStatus}
	}

	updated := record.Clone()
	switch newStatus {
	case types.StatusInterviewScheduled:
		if payload.InterviewDate == nil {
			return nil, types.HistoryEntry{}, &ErrMissingField{Field: "interview_date", Status: newStatus}
		}
		date := *payload.InterviewDate
		updated.InterviewDate = &date
	case types.StatusOfferReceived:
		if payload.SalaryOffered != nil {
			salary := *payload.SalaryOffered
			updated.SalaryOffered = &salary
		}
	case types.StatusRejected:
		if payload.RejectionReason != nil {
			reason := *payload.RejectionReason
			updated.RejectionReason = &reason
		}
	case types.StatusWithdrawn:
		if payload.WithdrawalReason != nil {
			reason := *payload.WithdrawalReason
			updated.WithdrawalReason = &reason
		}
	}

	updated.Status = newStatus
	updated.UpdatedAt = now

	entry := types.HistoryEntry{
		ApplicationID: record.ID,
		OldStatus:     record.Status,
		NewStatus:     newStatus,
		ChangedAt:     now,
		ChangedBy:     actorID,
		Notes:         payload.Notes,
	}

	return updated, entry, nil
}

// CreationEntry builds the ledger entry recorded when an application is
// first tracked in status pending.
func CreationEntry(applicationID, actorID uuid.UUID, notes string, now time.Time) types.HistoryEntry {
	return types.HistoryEntry{
		ApplicationID: applicationID,
		NewStatus:     types.StatusPending,
		ChangedAt:     now,
		ChangedBy:     actorID,
		Notes:         notes,
	}
}
