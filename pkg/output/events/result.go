package events

// ResultEvent represents one completed page scan: where the fetch landed,
// whether it worked, and what the detection layers found.
type ResultEvent struct {
	BaseEvent
	Target TargetInfo `json:"target"`
	Fetch  FetchInfo  `json:"fetch"`
	Auth   *AuthInfo  `json:"auth,omitempty"`
}

// TargetInfo identifies the scanned page.
type TargetInfo struct {
	URL      string `json:"url"`
	FinalURL string `json:"final_url,omitempty"`
	Title    string `json:"title,omitempty"`
}

// FetchInfo describes the snapshot stage. A failed fetch carries the
// user-facing reason; a successful one carries the main document status.
type FetchInfo struct {
	Success    bool    `json:"success"`
	StatusCode int     `json:"status_code,omitempty"`
	Error      string  `json:"error,omitempty"`
	Renderer   string  `json:"renderer,omitempty"`
	ElapsedSec float64 `json:"elapsed_sec"`
}

// AuthInfo carries the detection outcome for a successfully fetched page.
type AuthInfo struct {
	Found      bool            `json:"found"`
	Total      int             `json:"total_found"`
	Summary    string          `json:"summary,omitempty"`
	Counts     map[string]int  `json:"counts,omitempty"`
	Components []ComponentInfo `json:"components,omitempty"`
}

// ComponentInfo is one detected fragment, snippet already clipped.
type ComponentInfo struct {
	Category    string `json:"category"`
	Label       string `json:"label,omitempty"`
	Context     string `json:"context,omitempty"`
	Fingerprint uint32 `json:"fingerprint,omitempty"`
	HTML        string `json:"html,omitempty"`
}
