package events

import "time"

// ProgressEvent represents a progress update during a batch run.
type ProgressEvent struct {
	BaseEvent
	Progress ProgressInfo `json:"progress"`
	Stats    StatsInfo    `json:"stats"`
	Timing   TimingInfo   `json:"timing"`
}

// ProgressInfo tracks how far through the target list the run is.
type ProgressInfo struct {
	Current    int     `json:"current"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// StatsInfo contains cumulative counts for the run so far.
type StatsInfo struct {
	SitesWithAuth int `json:"sites_with_auth"`
	Components    int `json:"components"`
	Errors        int `json:"errors"`
}

// TimingInfo contains timing metrics for the run so far.
type TimingInfo struct {
	StartedAt  time.Time `json:"started_at"`
	ElapsedSec int64     `json:"elapsed_sec"`
}
