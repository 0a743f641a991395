package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/db"
	"github.com/jonathan/job-tracker/internal/dedup"
	"github.com/jonathan/job-tracker/internal/lifecycle"
	"github.com/jonathan/job-tracker/internal/tracker"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid job reference", &dedup.ErrInvalidJobReference{}, http.StatusBadRequest},
		{"missing payload field", &lifecycle.ErrMissingField{Field: "interview_date", Status: "interview_scheduled"}, http.StatusBadRequest},
		{"invalid transition", &lifecycle.ErrInvalidTransition{From: "pending", To: "offer_received"}, http.StatusUnprocessableEntity},
		{"self transition", &lifecycle.ErrInvalidTransition{From: "pending", To: "pending"}, http.StatusUnprocessableEntity},
		{"duplicate application", &tracker.ErrDuplicateApplication{MatchedID: id, Score: 0.92}, http.StatusConflict},
		{"concurrent modification", &db.ErrConcurrentModification{ID: id, ExpectedStatus: "pending"}, http.StatusConflict},
		{"application not found", &tracker.ErrApplicationNotFound{ID: id}, http.StatusNotFound},
		{"store not found", &db.ErrNotFound{ID: id}, http.StatusNotFound},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

// Engine errors reach the handlers wrapped; the mapping must see through
// the wrapping.
func TestHTTPStatus_WrappedErrors(t *testing.T) {
	err := fmt.Errorf("failed to save transition pending -> rejected: %w",
		&db.ErrConcurrentModification{ID: uuid.New(), ExpectedStatus: "pending"})
	assert.Equal(t, http.StatusConflict, HTTPStatus(err))

	err = fmt.Errorf("failed to get application: %w", &tracker.ErrApplicationNotFound{ID: uuid.New()})
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
}
