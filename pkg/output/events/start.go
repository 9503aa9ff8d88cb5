package events

// StartEvent is emitted when a scan run begins. It records the target list
// and the effective settings so output files are self-describing.
type StartEvent struct {
	BaseEvent
	Targets []string   `json:"targets"`
	Config  ScanConfig `json:"config"`
}

// ScanConfig echoes the settings the run executes with.
type ScanConfig struct {
	Concurrency int      `json:"concurrency"`
	TimeoutSec  int      `json:"timeout_sec"`
	Fallback    string   `json:"fallback_policy"`
	Providers   []string `json:"providers,omitempty"`
	Renderer    string   `json:"renderer"`
	RatePerSec  float64  `json:"rate_per_sec,omitempty"`
}
