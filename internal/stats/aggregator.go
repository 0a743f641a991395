// Package stats derives point-in-time application metrics from records and
// their ledgers. Aggregation is read-only and pure over the provided data.
package stats

import (
	"sort"
	"time"

	"github.com/jonathan/job-tracker/internal/history"
	"github.com/jonathan/job-tracker/internal/types"
)

// Defaults used when the corresponding Config field is zero.
const (
	DefaultWindowDays   = 30
	DefaultTopCompanies = 5
)

// Config holds aggregation settings, passed in explicitly so tests can vary
// windows without global state.
type Config struct {
	// WindowDays is the default analysis window when the caller passes 0.
	WindowDays int
	// TopCompanies is how many companies the ranking includes.
	TopCompanies int
}

// Aggregator computes Stats over a set of application records.
type Aggregator struct {
	cfg Config
}

// New creates an Aggregator with the given configuration.
func New(cfg Config) *Aggregator {
	if cfg.WindowDays == 0 {
		cfg.WindowDays = DefaultWindowDays
	}
	if cfg.TopCompanies == 0 {
		cfg.TopCompanies = DefaultTopCompanies
	}
	return &Aggregator{cfg: cfg}
}

// Aggregate computes statistics over applications created within windowDays
// before now (0 selects the configured default). Records must carry their
// loaded History; "reached at least once" is answered from the ledger, not
// the current status. Zero applications produce zero rates, never an error.
func (a *Aggregator) Aggregate(applications []types.ApplicationRecord, windowDays int, now time.Time) types.Stats {
	if windowDays <= 0 {
		windowDays = a.cfg.WindowDays
	}
	windowStart := now.AddDate(0, 0, -windowDays)

	stats := types.Stats{
		WindowDays:      windowDays,
		WindowStart:     windowStart,
		StatusBreakdown: make(map[string]int),
		TopCompanies:    []types.CompanyCount{},
	}

	var inWindow []types.ApplicationRecord
	for _, app := range applications {
		if app.CreatedAt.Before(windowStart) {
			continue
		}
		inWindow = append(inWindow, app)
	}

	stats.Total = len(inWindow)
	if stats.Total == 0 {
		return stats
	}

	responded := 0
	interviewed := 0
	offered := 0
	responseDays := 0
	respondedWithEntry := 0
	for _, app := range inWindow {
		stats.StatusBreakdown[app.Status]++
		if app.Status != types.StatusPending {
			responded++
		}
		if history.Reached(app.History, types.StatusInterviewScheduled) {
			interviewed++
		}
		if history.Reached(app.History, types.StatusOfferReceived) {
			offered++
		}
		if first := history.FirstNonPending(app.History); first != nil {
			responseDays += int(first.ChangedAt.Sub(app.CreatedAt).Hours() / 24)
			respondedWithEntry++
		}
	}

	total := float64(stats.Total)
	stats.ResponseRate = float64(responded) / total
	stats.InterviewRate = float64(interviewed) / total
	stats.OfferRate = float64(offered) / total
	if respondedWithEntry > 0 {
		stats.AverageResponseTimeDays = float64(responseDays) / float64(respondedWithEntry)
	}
	stats.TopCompanies = a.topCompanies(inWindow)

	return stats
}

// topCompanies ranks companies by application count, breaking ties in favor
// of the company whose earliest application is oldest.
func (a *Aggregator) topCompanies(applications []types.ApplicationRecord) []types.CompanyCount {
	counts := make(map[string]int)
	earliest := make(map[string]time.Time)
	for _, app := range applications {
		company := app.Job.CompanyName
		if company == "" {
			continue
		}
		counts[company]++
		if first, ok := earliest[company]; !ok || app.CreatedAt.Before(first) {
			earliest[company] = app.CreatedAt
		}
	}

	ranked := make([]types.CompanyCount, 0, len(counts))
	for company, count := range counts {
		ranked = append(ranked, types.CompanyCount{Company: company, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return earliest[ranked[i].Company].Before(earliest[ranked[j].Company])
	})

	if len(ranked) > a.cfg.TopCompanies {
		ranked = ranked[:a.cfg.TopCompanies]
	}
	return ranked
}
