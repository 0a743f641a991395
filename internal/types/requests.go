package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// CreateApplicationRequest represents the request to track a new application.
// The job reference itself is checked by the duplicate detector; validator
// tags cover the surrounding identifiers.
type CreateApplicationRequest struct {
	UserID  uuid.UUID    `json:"user_id" validate:"required"`
	ActorID uuid.UUID    `json:"actor_id" validate:"required"`
	Job     JobReference `json:"job_reference"`
	Notes   string       `json:"notes,omitempty"`
}

// UpdateStatusRequest represents a status-transition request.
type UpdateStatusRequest struct {
	ActorID   uuid.UUID         `json:"actor_id" validate:"required"`
	NewStatus string            `json:"new_status" validate:"required"`
	Payload   TransitionPayload `json:"payload"`
}

// AddNoteRequest appends a timestamped note to an application.
type AddNoteRequest struct {
	Text string `json:"text" validate:"required,min=1"`
}

// SetFollowUpRequest sets the follow-up date on an application.
type SetFollowUpRequest struct {
	FollowUpDate time.Time `json:"follow_up_date" validate:"required"`
}

// DuplicateCheckRequest asks whether a job reference duplicates one of the
// user's tracked applications.
type DuplicateCheckRequest struct {
	UserID uuid.UUID    `json:"user_id" validate:"required"`
	Job    JobReference `json:"job_reference"`
}

// BulkCreateRequest carries a batch of creation requests for the intake pool.
type BulkCreateRequest struct {
	Requests []CreateApplicationRequest `json:"requests" validate:"required,min=1,dive"`
}

// Validate validates the CreateApplicationRequest using the validator.
func (r *CreateApplicationRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the UpdateStatusRequest using the validator.
func (r *UpdateStatusRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the AddNoteRequest using the validator.
func (r *AddNoteRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the SetFollowUpRequest using the validator.
func (r *SetFollowUpRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the DuplicateCheckRequest using the validator.
func (r *DuplicateCheckRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the BulkCreateRequest using the validator.
func (r *BulkCreateRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
