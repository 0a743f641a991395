// Package dedup classifies candidate applications as duplicates of already
// tracked ones, combining exact URL matching with fuzzy similarity scoring.
package dedup

import (
	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/similarity"
	"github.com/jonathan/job-tracker/internal/types"
)

// DefaultThreshold is the similarity score at or above which a candidate is
// considered a duplicate.
const DefaultThreshold = 0.85

// Config holds duplicate-detection settings. Thresholds are explicit
// constructor configuration rather than ambient globals so tests can vary
// them deterministically.
type Config struct {
	// Threshold in (0,1]; zero means DefaultThreshold.
	Threshold float64
	// IncludeClosed also checks withdrawn and archived records. By default a
	// user may reapply after withdrawing, so those are skipped.
	IncludeClosed bool
}

// Match is the outcome of a duplicate check.
type Match struct {
	Duplicate bool      `json:"duplicate"`
	MatchedID uuid.UUID `json:"matched_id,omitempty"`
	Score     float64   `json:"score"`
}

// Detector checks candidate job references against a user's existing
// applications. It is a pure query component: it never mutates state and the
// caller supplies the existing records.
type Detector struct {
	cfg Config
}

// NewDetector creates a Detector with the given configuration.
func NewDetector(cfg Config) *Detector {
	if cfg.Threshold == 0 {
		cfg.Threshold = DefaultThreshold
	}
	return &Detector{cfg: cfg}
}

// Threshold returns the configured similarity threshold.
func (d *Detector) Threshold() float64 {
	return d.cfg.Threshold
}

// Check classifies candidate against the given existing applications.
// Exact URL equality is a duplicate immediately; otherwise the best fuzzy
// score across eligible records decides, with ties at the maximum broken in
// favor of the most recently created application.
func (d *Detector) Check(existing []types.ApplicationRecord, candidate types.JobReference) (Match, error) {
	if candidate.IsEmpty() {
		return Match{}, &ErrInvalidJobReference{}
	}

	candidateURL := similarity.NormalizeURL(candidate.URL)

	best := Match{}
	var bestCreatedAt int64
	for i := range existing {
		record := &existing[i]
		if !d.cfg.IncludeClosed && closed(record.Status) {
			continue
		}

		if candidateURL != "" && similarity.NormalizeURL(record.Job.URL) == candidateURL {
			return Match{Duplicate: true, MatchedID: record.ID, Score: 1.0}, nil
		}

		score := similarity.Score(record.Job, candidate)
		createdAt := record.CreatedAt.UnixNano()
		if score > best.Score || (score == best.Score && score > 0 && createdAt > bestCreatedAt) {
			best = Match{MatchedID: record.ID, Score: score}
			bestCreatedAt = createdAt
		}
	}

	if best.Score >= d.cfg.Threshold {
		best.Duplicate = true
		return best, nil
	}
	return Match{Score: best.Score}, nil
}

// closed reports whether a record no longer blocks reapplication.
func closed(status string) bool {
	return status == types.StatusWithdrawn || status == types.StatusArchived
}
