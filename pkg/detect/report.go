package detect

import (
	"fmt"
	"strings"
)

// Report is the per-page detection result as carried on the wire and shown
// in the UI.
type Report struct {
	// Found is true when at least one component was detected. An empty page
	// is a successful scan with Found false, never an error.
	Found bool `json:"found"`

	// Components holds the deduplicated detections in layer order. Always
	// non-nil so an empty result serializes as [] rather than null.
	Components []Detection `json:"components"`

	// Summary is a one-line human-readable digest of the findings.
	Summary string `json:"summary"`

	// Total is the number of components after deduplication.
	Total int `json:"total_found"`

	// Counts maps category wire names to the number of findings per category.
	Counts map[string]int `json:"counts"`
}

// BuildReport assembles a Report from raw engine output.
func BuildReport(dets []Detection) *Report {
	r := &Report{
		Components: make([]Detection, 0, len(dets)),
		Counts:     make(map[string]int),
	}
	var order []Category
	seen := make(map[Category]bool)
	for _, d := range dets {
		r.Components = append(r.Components, d)
		r.Counts[d.Category.String()]++
		if !seen[d.Category] {
			seen[d.Category] = true
			order = append(order, d.Category)
		}
	}
	r.Total = len(r.Components)
	r.Found = r.Total > 0
	r.Summary = summarize(r.Total, order)
	return r
}

// summarize renders the one-line digest. Category names appear in first-seen
// order, which follows layer order, so repeated scans phrase the summary
// identically.
func summarize(total int, order []Category) string {
	if total == 0 {
		return "No authentication components detected on this page."
	}
	names := make([]string, len(order))
	for i, c := range order {
		names[i] = c.Display()
	}
	return fmt.Sprintf("Found %d auth component(s): %s", total, strings.Join(names, ", "))
}
