package lifecycle

import "fmt"

// ErrInvalidTransition indicates a status change not permitted by the
// transition table, including self-transitions.
type ErrInvalidTransition struct {
	From string
	To   string
}

func (e *ErrInvalidTransition) Error() string {
	if e.From == e.To {
		return fmt.Sprintf("invalid transition: status is already %q", e.From)
	}
	return fmt.Sprintf("invalid transition: %q -> %q", e.From, e.To)
}

// ErrMissingField indicates a required payload field was absent for the
// target status.
type ErrMissingField struct {
	Field  string
	Status string
}

func (e *ErrMissingField) Error() string {
	return fmt.Sprintf("field %q is required when entering status %q", e.Field, e.Status)
}
