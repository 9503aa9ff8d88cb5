package writers

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/authscope/authscope/pkg/detect"
	"github.com/authscope/authscope/pkg/output/dispatcher"
	"github.com/authscope/authscope/pkg/output/events"
)

// Compile-time interface check.
var _ dispatcher.Writer = (*TableWriter)(nil)

// colorEnabled controls whether ANSI color codes are emitted.
var colorEnabled = true

// ansiSprint wraps text in an ANSI escape code, respecting colorEnabled.
func ansiSprint(code string, a ...interface{}) string {
	s := fmt.Sprint(a...)
	if !colorEnabled {
		return s
	}
	return code + s + "\033[0m"
}

// Color helpers for terminal output.
var (
	fmtOK    = func(a ...interface{}) string { return ansiSprint("\033[32m", a...) }
	fmtFail  = func(a ...interface{}) string { return ansiSprint("\033[1;91m", a...) }
	fmtFound = func(a ...interface{}) string { return ansiSprint("\033[1;36m", a...) }
	fmtBold  = func(a ...interface{}) string { return ansiSprint("\033[1m", a...) }
	fmtDim   = func(a ...interface{}) string { return ansiSprint("\033[2m", a...) }
)

// boxChars contains Unicode box-drawing characters.
var boxChars = struct {
	TopLeft, TopRight, BottomLeft, BottomRight, Horizontal, Vertical string
}{
	"┌", "┐", "└", "┘", "─", "│",
}

// asciiChars contains ASCII fallback characters for box drawing.
var asciiChars = struct {
	TopLeft, TopRight, BottomLeft, BottomRight, Horizontal, Vertical string
}{
	"+", "+", "+", "+", "-", "|",
}

// TableConfig configures the table writer behavior.
type TableConfig struct {
	// Mode controls the output detail level: "summary" buffers pages and
	// prints one report on Close, "streaming" prints each page as it
	// finishes, "minimal" prints only the closing summary.
	Mode string

	// ColorEnabled enables ANSI color output.
	// If not explicitly set, auto-detected from the terminal.
	ColorEnabled bool

	// NoColor forces color output off, overriding ColorEnabled and
	// auto-detection.
	NoColor bool

	// DisableUnicode forces the ASCII box-drawing fallback.
	DisableUnicode bool

	// OnlyFindings hides pages where nothing was detected.
	OnlyFindings bool

	// MaxResults limits the number of page rows displayed (0 = unlimited).
	MaxResults int

	// Width sets the table width (0 = auto-detect from terminal).
	Width int
}

// TableWriter renders scan results as a formatted terminal report.
// It buffers page results and prints them with a summary on Close;
// streaming mode prints each page immediately instead.
// The writer is safe for concurrent use.
type TableWriter struct {
	w       io.Writer
	mu      sync.Mutex
	config  TableConfig
	results []*events.ResultEvent
	summary *events.SummaryEvent
	chars   *struct {
		TopLeft, TopRight, BottomLeft, BottomRight, Horizontal, Vertical string
	}
	resultCount int
	width       int
}

// NewTableWriter creates a table writer with the given configuration.
// If ColorEnabled is not explicitly set, terminal support is auto-detected.
func NewTableWriter(w io.Writer, config TableConfig) *TableWriter {
	if config.NoColor {
		config.ColorEnabled = false
	} else if !config.ColorEnabled {
		config.ColorEnabled = detectColorSupport(w)
	}
	colorEnabled = config.ColorEnabled

	if config.Mode == "" {
		config.Mode = "summary"
	}

	chars := &boxChars
	if config.DisableUnicode || !unicodeSupported(w) {
		chars = &asciiChars
	}

	return &TableWriter{
		w:       w,
		config:  config,
		results: make([]*events.ResultEvent, 0),
		chars:   chars,
		width:   detectWidth(w, config.Width),
	}
}

// detectColorSupport checks if the writer supports ANSI colors.
func detectColorSupport(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// detectWidth resolves the rendering width, preferring the explicit
// configuration, then the terminal, then a conservative default.
func detectWidth(w io.Writer, configured int) int {
	if configured > 0 {
		return configured
	}
	if f, ok := w.(*os.File); ok {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 40 {
			if cols > 120 {
				return 120
			}
			return cols
		}
	}
	return 100
}

// Write processes an event according to the configured mode.
func (tw *TableWriter) Write(event events.Event) error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	switch e := event.(type) {
	case *events.ResultEvent:
		return tw.handleResult(e)
	case *events.SummaryEvent:
		tw.summary = e
	}
	return nil
}

// handleResult buffers or streams one page result.
func (tw *TableWriter) handleResult(e *events.ResultEvent) error {
	if tw.config.OnlyFindings && (e.Auth == nil || !e.Auth.Found) && e.Fetch.Success {
		return nil
	}
	if tw.config.MaxResults > 0 && tw.resultCount >= tw.config.MaxResults {
		return nil
	}
	tw.resultCount++

	if tw.config.Mode == "streaming" {
		_, err := fmt.Fprintln(tw.w, tw.pageRow(e))
		return err
	}

	tw.results = append(tw.results, e)
	return nil
}

// pageRow renders one page as a single line.
func (tw *TableWriter) pageRow(e *events.ResultEvent) string {
	status := fmtOK("OK  ")
	detail := ""
	if !e.Fetch.Success {
		status = fmtFail("FAIL")
		detail = fmtDim(e.Fetch.Error)
	} else {
		detail = fmtDim(e.Target.Title)
	}

	count := fmtDim("  -")
	if e.Auth != nil && e.Auth.Total > 0 {
		count = fmtFound(fmt.Sprintf("%3d", e.Auth.Total))
	}

	url := truncateField(e.Target.URL, tw.urlWidth())
	return fmt.Sprintf("  %s %s  %-*s %s", status, count, tw.urlWidth(), url, detail)
}

// urlWidth reserves space for status and count columns.
func (tw *TableWriter) urlWidth() int {
	w := tw.width - 44
	if w < 24 {
		w = 24
	}
	return w
}

// Flush is a no-op; the report is rendered on Close.
func (tw *TableWriter) Flush() error {
	return nil
}

// Close renders the buffered report.
func (tw *TableWriter) Close() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.config.Mode == "summary" && len(tw.results) > 0 {
		tw.printBanner("Scan Results")
		for _, e := range tw.results {
			if _, err := fmt.Fprintln(tw.w, tw.pageRow(e)); err != nil {
				return err
			}
		}
		fmt.Fprintln(tw.w)
		tw.printCategories()
	}

	tw.printSummaryLine()

	if closer, ok := tw.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// printBanner draws a titled box across the table width.
func (tw *TableWriter) printBanner(title string) {
	inner := tw.width - 2
	if inner < len(title)+2 {
		inner = len(title) + 2
	}
	bar := strings.Repeat(tw.chars.Horizontal, inner)
	fmt.Fprintf(tw.w, "%s%s%s\n", tw.chars.TopLeft, bar, tw.chars.TopRight)
	fmt.Fprintf(tw.w, "%s %s%s%s\n", tw.chars.Vertical, fmtBold(title),
		strings.Repeat(" ", inner-len(title)-1), tw.chars.Vertical)
	fmt.Fprintf(tw.w, "%s%s%s\n", tw.chars.BottomLeft, bar, tw.chars.BottomRight)
}

// printCategories renders the per-category breakdown in detection order.
func (tw *TableWriter) printCategories() {
	counts := make(map[string]int)
	for _, e := range tw.results {
		if e.Auth == nil {
			continue
		}
		for cat, n := range e.Auth.Counts {
			counts[cat] += n
		}
	}
	if len(counts) == 0 {
		return
	}

	fmt.Fprintln(tw.w, fmtBold(" Categories:"))
	for _, cat := range detect.Categories() {
		if n, ok := counts[cat.String()]; ok {
			fmt.Fprintf(tw.w, "   %-26s %s\n", cat.Display(), fmtFound(fmt.Sprintf("%d", n)))
			delete(counts, cat.String())
		}
	}
	// Anything left over (future categories) in name order.
	rest := make([]string, 0, len(counts))
	for cat := range counts {
		rest = append(rest, cat)
	}
	sort.Strings(rest)
	for _, cat := range rest {
		fmt.Fprintf(tw.w, "   %-26s %s\n", cat, fmtFound(fmt.Sprintf("%d", counts[cat])))
	}
	fmt.Fprintln(tw.w)
}

// printSummaryLine renders the closing one-liner from the summary event.
func (tw *TableWriter) printSummaryLine() {
	if tw.summary == nil {
		return
	}
	t := tw.summary.Totals
	line := fmt.Sprintf(" Scanned %d page(s) in %.1fs: %d with auth components, %d error(s)",
		t.Scanned, tw.summary.Timing.DurationSec, t.SitesWithAuth, t.Errors)
	if t.SitesWithAuth > 0 {
		fmt.Fprintln(tw.w, fmtBold(line))
	} else {
		fmt.Fprintln(tw.w, fmtDim(line))
	}
}

// SupportsEvent returns true for result and summary events.
func (tw *TableWriter) SupportsEvent(eventType events.EventType) bool {
	return eventType == events.EventTypeResult || eventType == events.EventTypeSummary
}
