package dedup

import (
	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/similarity"
	"github.com/jonathan/job-tracker/internal/types"
)

// nearMargin is how far below the threshold a pair still counts as a
// near-duplicate in analysis reports.
const nearMargin = 0.1

// Pair is one scored pairing of two applications in a duplicate report.
type Pair struct {
	FirstID  uuid.UUID `json:"first_id"`
	SecondID uuid.UUID `json:"second_id"`
	Score    float64   `json:"score"`
}

// Report summarizes pairwise duplicate analysis over a user's applications.
type Report struct {
	TotalApplications int     `json:"total_applications"`
	Threshold         float64 `json:"threshold"`
	Duplicates        []Pair  `json:"duplicates"`
	NearDuplicates    []Pair  `json:"near_duplicates"`
}

// Analyze scores every pair of records and buckets them into duplicates
// (score at or above the threshold) and near-duplicates (within nearMargin
// below it). Pure over the provided records.
func (d *Detector) Analyze(records []types.ApplicationRecord) Report {
	report := Report{
		TotalApplications: len(records),
		Threshold:         d.cfg.Threshold,
	}

	for i := range records {
		for j := i + 1; j < len(records); j++ {
			score := similarity.Score(records[i].Job, records[j].Job)
			pair := Pair{FirstID: records[i].ID, SecondID: records[j].ID, Score: score}
			switch {
			case score >= d.cfg.Threshold:
				report.Duplicates = append(report.Duplicates, pair)
			case score >= d.cfg.Threshold-nearMargin:
				report.NearDuplicates = append(report.NearDuplicates, pair)
			}
		}
	}
	return report
}
