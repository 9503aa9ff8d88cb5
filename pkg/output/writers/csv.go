package writers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/authscope/authscope/pkg/output/dispatcher"
	"github.com/authscope/authscope/pkg/output/events"
	"github.com/authscope/authscope/pkg/strutil"
)

// Compile-time interface check.
var _ dispatcher.Writer = (*CSVWriter)(nil)

// UTF-8 BOM for Excel compatibility.
const utf8BOM = "\xEF\xBB\xBF"

// Default timestamp format (RFC3339).
const defaultTimestampFormat = "2006-01-02T15:04:05Z07:00"

// CSVWriter writes detected components as CSV rows, one row per component
// with its page context repeated, which is the shape spreadsheet pivots
// and pandas imports want.
//
// Features:
//   - Excel compatibility with UTF-8 BOM
//   - CSV injection prevention (formula sanitization)
//   - Summary section appended on Close
type CSVWriter struct {
	w             io.Writer
	csvWriter     *csv.Writer
	mu            sync.Mutex
	opts          CSVOptions
	headerWritten bool
	summary       *events.SummaryEvent
}

// CSVOptions configures the CSV writer behavior.
type CSVOptions struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool

	// IncludeMisses writes a row for scanned pages with no detected
	// components, so the file covers the whole target list.
	IncludeMisses bool

	// Delimiter sets the field delimiter character.
	// Default is comma when zero value.
	Delimiter rune

	// ExcelCompatible adds a UTF-8 BOM so Excel renders Unicode
	// page titles and snippets correctly.
	ExcelCompatible bool

	// SanitizeFormulas prevents CSV injection by prefixing dangerous
	// leading characters: = + - @ TAB CR
	SanitizeFormulas bool

	// TimestampFormat sets the timestamp format (default: RFC3339).
	TimestampFormat string

	// TruncateAt limits field length (0 = no limit).
	TruncateAt int
}

// csvColumns defines the CSV column headers, page context first, then
// the component fields.
var csvColumns = []string{
	"timestamp",
	"url",
	"final_url",
	"page_title",
	"status_code",
	"renderer",
	"elapsed_sec",
	"category",
	"label",
	"context",
	"fingerprint",
	"snippet",
}

// sanitizeForCSV prevents CSV injection by prefixing dangerous characters.
// Spreadsheets execute cells starting with formula triggers.
func sanitizeForCSV(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

// truncateField cuts a field to maxLen runes, "..." included; 0 means
// no limit.
func truncateField(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	return strutil.Truncate(s, maxLen)
}

// NewCSVWriter creates a CSV writer.
// If IncludeHeader is true, a header row is written immediately.
// The writer is safe for concurrent use.
func NewCSVWriter(w io.Writer, opts CSVOptions) *CSVWriter {
	if opts.TimestampFormat == "" {
		opts.TimestampFormat = defaultTimestampFormat
	}

	if opts.ExcelCompatible {
		_, _ = w.Write([]byte(utf8BOM))
	}

	csvWriter := csv.NewWriter(w)
	if opts.Delimiter != 0 {
		csvWriter.Comma = opts.Delimiter
	}

	cw := &CSVWriter{
		w:         w,
		csvWriter: csvWriter,
		opts:      opts,
	}

	if opts.IncludeHeader {
		_ = csvWriter.Write(csvColumns)
		csvWriter.Flush()
		cw.headerWritten = true
	}

	return cw
}

// Write writes a result event as one CSV row per detected component.
// Summary events are captured for output on Close. Other event types
// are silently skipped.
func (cw *CSVWriter) Write(event events.Event) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	switch e := event.(type) {
	case *events.ResultEvent:
		return cw.writeResult(e)
	case *events.SummaryEvent:
		cw.summary = e
		return nil
	default:
		return nil
	}
}

// writeResult emits the rows for one scanned page.
func (cw *CSVWriter) writeResult(re *events.ResultEvent) error {
	page := []string{
		re.Timestamp().Format(cw.opts.TimestampFormat),
		re.Target.URL,
		re.Target.FinalURL,
		re.Target.Title,
		strconv.Itoa(re.Fetch.StatusCode),
		re.Fetch.Renderer,
		strconv.FormatFloat(re.Fetch.ElapsedSec, 'f', 2, 64),
	}

	if re.Auth == nil || len(re.Auth.Components) == 0 {
		if !cw.opts.IncludeMisses {
			return nil
		}
		row := append(append([]string{}, page...), "", "", "", "", "")
		return cw.csvWriter.Write(cw.cleanRow(row))
	}

	for _, c := range re.Auth.Components {
		row := append(append([]string{}, page...),
			c.Category,
			c.Label,
			c.Context,
			strconv.FormatUint(uint64(c.Fingerprint), 10),
			c.HTML,
		)
		if err := cw.csvWriter.Write(cw.cleanRow(row)); err != nil {
			return err
		}
	}
	return nil
}

// cleanRow applies sanitization and truncation to every field.
func (cw *CSVWriter) cleanRow(row []string) []string {
	for i, field := range row {
		if cw.opts.SanitizeFormulas {
			field = sanitizeForCSV(field)
		}
		if cw.opts.TruncateAt > 0 {
			field = truncateField(field, cw.opts.TruncateAt)
		}
		row[i] = field
	}
	return row
}

// Flush flushes the CSV writer's internal buffer.
func (cw *CSVWriter) Flush() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	cw.csvWriter.Flush()
	return cw.csvWriter.Error()
}

// Close flushes the CSV writer, appending the summary section when one
// was captured. If the underlying writer implements io.Closer, it is
// closed as well.
func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.summary != nil {
		cw.writeSummaryLocked()
	}

	cw.csvWriter.Flush()
	if err := cw.csvWriter.Error(); err != nil {
		return fmt.Errorf("csv: flush: %w", err)
	}

	if closer, ok := cw.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// writeSummaryLocked appends a summary section. Must be called with mu held.
func (cw *CSVWriter) writeSummaryLocked() {
	_ = cw.csvWriter.Write([]string{})
	_ = cw.csvWriter.Write([]string{"# SUMMARY"})
	_ = cw.csvWriter.Write([]string{"Scanned", strconv.Itoa(cw.summary.Totals.Scanned)})
	_ = cw.csvWriter.Write([]string{"Sites With Auth", strconv.Itoa(cw.summary.Totals.SitesWithAuth)})
	_ = cw.csvWriter.Write([]string{"Components", strconv.Itoa(cw.summary.Totals.Components)})
	_ = cw.csvWriter.Write([]string{"Errors", strconv.Itoa(cw.summary.Totals.Errors)})
	_ = cw.csvWriter.Write([]string{"Duration", fmt.Sprintf("%.1fs", cw.summary.Timing.DurationSec)})
}

// SupportsEvent returns true for result and summary events.
func (cw *CSVWriter) SupportsEvent(eventType events.EventType) bool {
	return eventType == events.EventTypeResult || eventType == events.EventTypeSummary
}
