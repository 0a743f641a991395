// Package intake runs bulk application creation through a bounded worker
// pool. Per-item failures (duplicates, validation) are collected as results
// rather than aborting the batch; only context cancellation stops the run.
package intake

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/tracker"
	"github.com/jonathan/job-tracker/internal/types"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the pool size used when none is configured.
const DefaultWorkers = 4

// Creator is the engine operation the pool drives. Satisfied by
// *tracker.Manager.
type Creator interface {
	Create(ctx context.Context, req types.CreateApplicationRequest) (*types.ApplicationRecord, error)
}

// Result is the outcome of one batch item, in input order.
type Result struct {
	Index         int        `json:"index"`
	ApplicationID uuid.UUID  `json:"application_id,omitempty"`
	Status        string     `json:"status"`
	Duplicate     bool       `json:"duplicate,omitempty"`
	MatchedID     *uuid.UUID `json:"matched_id,omitempty"`
	Error         string     `json:"error,omitempty"`
}

// Summary reports a completed batch.
type Summary struct {
	Total      int           `json:"total"`
	Created    int           `json:"created"`
	Duplicates int           `json:"duplicates"`
	Failed     int           `json:"failed"`
	Elapsed    time.Duration `json:"elapsed_ns"`
	Results    []Result      `json:"results"`
}

// Pool is a bounded-concurrency bulk creator.
type Pool struct {
	creator Creator
	workers int
}

// NewPool creates a Pool over the given creator with the given worker count
// (0 selects DefaultWorkers).
func NewPool(creator Creator, workers int) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Pool{creator: creator, workers: workers}
}

// Run creates every request in the batch, at most workers at a time, and
// returns per-item results in input order.
func (p *Pool) Run(ctx context.Context, requests []types.CreateApplicationRequest) (Summary, error) {
	start := time.Now()
	results := make([]Result, len(requests))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, req := range requests {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = p.createOne(gCtx, i, req)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	summary := Summary{
		Total:   len(requests),
		Elapsed: time.Since(start),
		Results: results,
	}
	for _, r := range results {
		switch {
		case r.Duplicate:
			summary.Duplicates++
		case r.Error != "":
			summary.Failed++
		default:
			summary.Created++
		}
	}
	return summary, nil
}

func (p *Pool) createOne(ctx context.Context, index int, req types.CreateApplicationRequest) Result {
	result := Result{Index: index}

	if err := req.Validate(); err != nil {
		result.Status = "invalid"
		result.Error = err.Error()
		return result
	}

	record, err := p.creator.Create(ctx, req)
	if err != nil {
		var dupErr *tracker.ErrDuplicateApplication
		if errors.As(err, &dupErr) {
			result.Status = "duplicate"
			result.Duplicate = true
			result.MatchedID = &dupErr.MatchedID
			return result
		}
		result.Status = "failed"
		result.Error = err.Error()
		return result
	}

	result.Status = "created"
	result.ApplicationID = record.ID
	return result
}
