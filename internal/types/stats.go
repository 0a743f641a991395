package types

import "time"

// CompanyCount is one entry in the top-companies ranking.
type CompanyCount struct {
	Company string `json:"company"`
	Count   int    `json:"count"`
}

// Stats holds point-in-time application metrics derived from records and
// their ledgers. Rates are fractions in [0,1], not percentages.
type Stats struct {
	WindowDays      int            `json:"window_days"`
	WindowStart     time.Time      `json:"window_start"`
	Total           int            `json:"total"`
	StatusBreakdown map[string]int `json:"status_breakdown"`

	// ResponseRate counts applications whose current status is not pending.
	ResponseRate float64 `json:"response_rate"`
	// InterviewRate counts applications that reached interview_scheduled at
	// least once, determined from history rather than current status.
	InterviewRate float64 `json:"interview_rate"`
	// OfferRate counts applications that reached offer_received at least once.
	OfferRate float64 `json:"offer_rate"`

	TopCompanies []CompanyCount `json:"top_companies"`

	// AverageResponseTimeDays is the mean, over applications that left
	// pending, of whole days between creation and the first non-pending
	// ledger entry.
	AverageResponseTimeDays float64 `json:"average_response_time_days"`
}
