package scan

import (
	"errors"

	"github.com/authscope/authscope/pkg/browser"
	"github.com/authscope/authscope/pkg/detect"
	"github.com/authscope/authscope/pkg/output/events"
)

// Result is one page's scan outcome, shaped for the API. A failed fetch is
// still a Result: Success false, the user-facing reason in Error, Auth nil.
type Result struct {
	// ScanID identifies this page scan. Concurrent requests for the same
	// target share one scan and therefore one ID.
	ScanID string `json:"scan_id,omitempty"`

	// URL is the normalized target that was scanned.
	URL string `json:"url"`

	// FinalURL is where redirects landed, when it differs from URL.
	FinalURL string `json:"final_url,omitempty"`

	// Title is the page title, "No title" when the page has none.
	Title string `json:"page_title,omitempty"`

	// Success reports whether the page was fetched and parsed.
	Success bool `json:"success"`

	// Error is the user-facing failure reason for unsuccessful scans.
	Error string `json:"error,omitempty"`

	// StatusCode is the main document's HTTP status, 0 if it never arrived.
	StatusCode int `json:"status_code,omitempty"`

	// Renderer names the snapshot provider that fetched the page.
	Renderer string `json:"renderer,omitempty"`

	// ScanTime is the fetch+detect wall time in seconds, two decimals.
	ScanTime float64 `json:"scan_time"`

	// Auth is the detection report. Nil for failed fetches; Found false
	// with empty components for clean pages.
	Auth *detect.Report `json:"auth_result,omitempty"`

	// Failure classifies unsuccessful scans with one of the
	// events.ErrorType identifiers. Empty on success.
	Failure string `json:"-"`
}

// Outcome maps the result to its console outcome token: "error", "found",
// or "none".
func (r *Result) Outcome() string {
	switch {
	case !r.Success:
		return "error"
	case r.Auth != nil && r.Auth.Found:
		return "found"
	default:
		return "none"
	}
}

// Event shapes the result as a ResultEvent for the dispatcher, scoped to
// the run that produced it.
func (r *Result) Event(runID string) *events.ResultEvent {
	ev := &events.ResultEvent{
		BaseEvent: events.NewBase(events.EventTypeResult, runID),
		Target: events.TargetInfo{
			URL:      r.URL,
			FinalURL: r.FinalURL,
			Title:    r.Title,
		},
		Fetch: events.FetchInfo{
			Success:    r.Success,
			StatusCode: r.StatusCode,
			Error:      r.Error,
			Renderer:   r.Renderer,
			ElapsedSec: r.ScanTime,
		},
	}
	if r.Auth != nil {
		auth := &events.AuthInfo{
			Found:   r.Auth.Found,
			Total:   r.Auth.Total,
			Summary: r.Auth.Summary,
			Counts:  r.Auth.Counts,
		}
		for _, c := range r.Auth.Components {
			auth.Components = append(auth.Components, events.ComponentInfo{
				Category:    c.Category.String(),
				Label:       c.Label,
				Context:     c.Context,
				Fingerprint: c.Fingerprint,
				HTML:        c.HTML,
			})
		}
		ev.Auth = auth
	}
	return ev
}

// ErrorEvent shapes a failed result as a non-fatal ErrorEvent. Returns nil
// for successful scans.
func (r *Result) ErrorEvent(runID string) *events.ErrorEvent {
	if r.Success || r.Failure == "" {
		return nil
	}
	return &events.ErrorEvent{
		BaseEvent: events.NewBase(events.EventTypeError, runID),
		Target:    r.URL,
		ErrorType: r.Failure,
		Message:   r.Error,
	}
}

// failureType maps a fetch error onto the event error taxonomy.
func failureType(err error) string {
	var statusErr *browser.StatusError
	switch {
	case errors.As(err, &statusErr):
		return events.ErrorTypeHTTPStatus
	case errors.Is(err, browser.ErrTimeout):
		return events.ErrorTypeTimeout
	case errors.Is(err, browser.ErrNavigation):
		return events.ErrorTypeNavigation
	default:
		return events.ErrorTypeInternal
	}
}

// BatchResult is the batch response envelope.
type BatchResult struct {
	Results       []*Result `json:"results"`
	TotalScanned  int       `json:"total_scanned"`
	SitesWithAuth int       `json:"sites_with_auth"`
}
