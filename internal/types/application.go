// Package types provides type definitions for structured data used throughout the job-tracker system.
package types

import (
	"time"

	"github.com/google/uuid"
)

// Application status constants. An application starts in StatusPending and
// moves through the lifecycle package's transition table.
const (
	StatusPending            = "pending"
	StatusInterviewScheduled = "interview_scheduled"
	StatusOfferReceived      = "offer_received"
	StatusRejected           = "rejected"
	StatusWithdrawn          = "withdrawn"
	StatusArchived           = "archived"
)

// Statuses lists every known application status.
var Statuses = []string{
	StatusPending,
	StatusInterviewScheduled,
	StatusOfferReceived,
	StatusRejected,
	StatusWithdrawn,
	StatusArchived,
}

// KnownStatus reports whether s is one of the defined status constants.
func KnownStatus(s string) bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// JobReference identifies a job posting for duplicate-detection purposes.
// At least URL, or both CompanyName and JobTitle, must be present.
type JobReference struct {
	URL         string `json:"url,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	JobTitle    string `json:"job_title,omitempty"`
}

// IsEmpty reports whether the reference carries too little information to
// identify a posting: no URL and an incomplete company/title pair.
func (r JobReference) IsEmpty() bool {
	return r.URL == "" && (r.CompanyName == "" || r.JobTitle == "")
}

// ListFilter narrows application listings. Zero values mean "no filter";
// Company matches as a case-insensitive substring.
type ListFilter struct {
	Status  string
	Company string
	Limit   int
	Offset  int
}

// IsZero reports whether no filter criteria are set.
func (f ListFilter) IsZero() bool {
	return f == ListFilter{}
}

// NoteEntry is a single timestamped free-text note on an application.
// Notes are append-only; existing entries are never rewritten.
type NoteEntry struct {
	Text    string    `json:"text"`
	AddedAt time.Time `json:"added_at"`
}

// ApplicationRecord is a tracked job application. Status changes only through
// the lifecycle state machine; status-specific fields are set when the
// corresponding state is first entered and persist afterwards.
type ApplicationRecord struct {
	ID           uuid.UUID    `json:"id"`
	UserID       uuid.UUID    `json:"user_id"`
	Job          JobReference `json:"job_reference"`
	Status       string       `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	FollowUpDate *time.Time   `json:"follow_up_date,omitempty"`
	Notes        []NoteEntry  `json:"notes,omitempty"`

	// Status-specific fields. Non-nil iff the record has passed through the
	// corresponding state at least once.
	InterviewDate    *time.Time `json:"interview_date,omitempty"`
	SalaryOffered    *int       `json:"salary_offered,omitempty"`
	RejectionReason  *string    `json:"rejection_reason,omitempty"`
	WithdrawalReason *string    `json:"withdrawal_reason,omitempty"`

	// History is the loaded view of this record's ledger entries in ascending
	// sequence order. Populated by storage reads; never written directly.
	History []HistoryEntry `json:"history,omitempty"`
}

// Clone returns a deep copy of the record. Transitions operate on a copy so a
// failed validation never leaves partial mutation behind.
func (r *ApplicationRecord) Clone() *ApplicationRecord {
	out := *r
	if r.FollowUpDate != nil {
		t := *r.FollowUpDate
		out.FollowUpDate = &t
	}
	if r.InterviewDate != nil {
		t := *r.InterviewDate
		out.InterviewDate = &t
	}
	if r.SalaryOffered != nil {
		v := *r.SalaryOffered
		out.SalaryOffered = &v
	}
	if r.RejectionReason != nil {
		s := *r.RejectionReason
		out.RejectionReason = &s
	}
	if r.WithdrawalReason != nil {
		s := *r.WithdrawalReason
		out.WithdrawalReason = &s
	}
	out.Notes = append([]NoteEntry(nil), r.Notes...)
	out.History = append([]HistoryEntry(nil), r.History...)
	return &out
}

// HistoryEntry is one immutable transition record in an application's ledger.
// SequenceNumber is assigned by the ledger, starting at 1, gapless.
type HistoryEntry struct {
	ApplicationID  uuid.UUID `json:"application_id"`
	SequenceNumber int       `json:"sequence_number"`
	OldStatus      string    `json:"old_status,omitempty"`
	NewStatus      string    `json:"new_status"`
	ChangedAt      time.Time `json:"changed_at"`
	ChangedBy      uuid.UUID `json:"changed_by"`
	Notes          string    `json:"notes,omitempty"`
}

// TransitionPayload carries the status-specific fields supplied with a
// transition. Which fields are required or allowed depends on the target
// status; everything else is rejected by the state machine.
type TransitionPayload struct {
	InterviewDate    *time.Time `json:"interview_date,omitempty"`
	SalaryOffered    *int       `json:"salary_offered,omitempty"`
	RejectionReason  *string    `json:"rejection_reason,omitempty"`
	WithdrawalReason *string    `json:"withdrawal_reason,omitempty"`
	Notes            string     `json:"notes,omitempty"`
}
