// Package server provides the HTTP REST API for the application tracker.
package server

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/job-tracker/internal/db"
	"github.com/jonathan/job-tracker/internal/dedup"
	"github.com/jonathan/job-tracker/internal/lifecycle"
	"github.com/jonathan/job-tracker/internal/tracker"
)

// HTTPStatus returns the appropriate HTTP status code for an error. Engine
// errors may arrive wrapped, so matching is by errors.As rather than a type
// switch.
func HTTPStatus(err error) int {
	var (
		invalidJob     *dedup.ErrInvalidJobReference
		missingField   *lifecycle.ErrMissingField
		validationErrs validator.ValidationErrors

		invalidTransition *lifecycle.ErrInvalidTransition

		duplicate  *tracker.ErrDuplicateApplication
		concurrent *db.ErrConcurrentModification

		notFound      *tracker.ErrApplicationNotFound
		storeNotFound *db.ErrNotFound
	)

	switch {
	case errors.As(err, &invalidJob), errors.As(err, &missingField), errors.As(err, &validationErrs):
		return http.StatusBadRequest
	case errors.As(err, &invalidTransition):
		return http.StatusUnprocessableEntity
	case errors.As(err, &duplicate), errors.As(err, &concurrent):
		return http.StatusConflict
	case errors.As(err, &notFound), errors.As(err, &storeNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
