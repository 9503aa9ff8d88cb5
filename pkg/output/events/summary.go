package events

import "time"

// SummaryEvent represents the final digest of a run: how many pages were
// scanned, how many exposed auth UI, and the per-category breakdown.
type SummaryEvent struct {
	BaseEvent
	Version    string         `json:"version"`
	Totals     SummaryTotals  `json:"totals"`
	ByCategory map[string]int `json:"by_category,omitempty"`
	Timing     SummaryTiming  `json:"timing"`
}

// SummaryTotals contains aggregate counts for the whole run.
type SummaryTotals struct {
	Scanned       int `json:"scanned"`
	SitesWithAuth int `json:"sites_with_auth"`
	Components    int `json:"components"`
	Errors        int `json:"errors"`
}

// SummaryTiming contains timing information for the run.
type SummaryTiming struct {
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DurationSec float64   `json:"duration_sec"`
}
