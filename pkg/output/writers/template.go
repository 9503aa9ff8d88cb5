package writers

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"

	"github.com/authscope/authscope/pkg/jsonutil"
	"github.com/authscope/authscope/pkg/output/dispatcher"
	"github.com/authscope/authscope/pkg/output/events"
	"github.com/authscope/authscope/templates"
)

// Compile-time interface check.
var _ dispatcher.Writer = (*TemplateWriter)(nil)

// TemplateConfig configures the template writer.
type TemplateConfig struct {
	// TemplatePath is the path to a custom template file.
	TemplatePath string

	// TemplateString is an inline template string (alternative to TemplatePath).
	TemplateString string

	// BuiltIn is the name of a built-in template: "csv", "auth-urls",
	// "text-summary".
	BuiltIn string
}

// TemplateWriter renders scan output through a Go template, so scripts can
// shape results without post-processing JSON. It buffers events in memory
// and renders once on Close. Sprig functions are available in templates.
type TemplateWriter struct {
	w       io.Writer
	mu      sync.Mutex
	config  TemplateConfig
	tmpl    *template.Template
	results []*events.ResultEvent
	summary *events.SummaryEvent
	scanID  string
}

// NewTemplateWriter creates a template writer. The template is parsed
// immediately so invalid templates fail before the scan starts.
func NewTemplateWriter(w io.Writer, config TemplateConfig) (*TemplateWriter, error) {
	tw := &TemplateWriter{
		w:       w,
		config:  config,
		results: make([]*events.ResultEvent, 0),
	}
	if err := tw.parseTemplate(); err != nil {
		return nil, fmt.Errorf("template parse error: %w", err)
	}
	return tw, nil
}

// parseTemplate resolves the template source (path, string, or built-in).
func (tw *TemplateWriter) parseTemplate() error {
	var templateContent string

	switch {
	case tw.config.TemplatePath != "":
		content, err := os.ReadFile(tw.config.TemplatePath)
		if err != nil {
			return fmt.Errorf("failed to read template file: %w", err)
		}
		templateContent = string(content)

	case tw.config.TemplateString != "":
		templateContent = tw.config.TemplateString

	case tw.config.BuiltIn != "":
		content, err := templates.Output(tw.config.BuiltIn)
		if err != nil {
			return err
		}
		templateContent = content

	default:
		return fmt.Errorf("no template specified: set TemplatePath, TemplateString, or BuiltIn")
	}

	funcMap := sprig.TxtFuncMap()
	funcMap["escapeCSV"] = tmplEscapeCSV
	funcMap["json"] = tmplToJSON

	tmpl, err := template.New("output").Funcs(funcMap).Parse(templateContent)
	if err != nil {
		return fmt.Errorf("parse output template: %w", err)
	}

	tw.tmpl = tmpl
	return nil
}

// Write buffers an event for later template rendering.
func (tw *TemplateWriter) Write(event events.Event) error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.scanID == "" {
		tw.scanID = event.ScanID()
	}

	switch e := event.(type) {
	case *events.ResultEvent:
		tw.results = append(tw.results, e)
	case *events.SummaryEvent:
		tw.summary = e
	}
	return nil
}

// Flush is a no-op; the template renders on Close.
func (tw *TemplateWriter) Flush() error {
	return nil
}

// Close renders the template with all buffered events.
func (tw *TemplateWriter) Close() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	data := tw.buildData()

	var buf bytes.Buffer
	if err := tw.tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}
	if _, err := tw.w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write error: %w", err)
	}

	if closer, ok := tw.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// SupportsEvent returns true for result and summary events.
func (tw *TemplateWriter) SupportsEvent(eventType events.EventType) bool {
	switch eventType {
	case events.EventTypeResult, events.EventTypeSummary:
		return true
	default:
		return false
	}
}

// tmplData is the root object templates execute against. The run totals
// are flattened for convenience and fall back to recomputing from results
// when no summary event arrived.
type tmplData struct {
	ScanID      string
	GeneratedAt string
	Results     []*events.ResultEvent
	Summary     *events.SummaryEvent

	Scanned       int
	SitesWithAuth int
	Components    int
	Errors        int
	Duration      float64
}

// buildData assembles the template input from buffered events.
func (tw *TemplateWriter) buildData() *tmplData {
	data := &tmplData{
		ScanID:      tw.scanID,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Results:     tw.results,
		Summary:     tw.summary,
	}

	if tw.summary != nil {
		data.Scanned = tw.summary.Totals.Scanned
		data.SitesWithAuth = tw.summary.Totals.SitesWithAuth
		data.Components = tw.summary.Totals.Components
		data.Errors = tw.summary.Totals.Errors
		data.Duration = tw.summary.Timing.DurationSec
		return data
	}

	for _, re := range tw.results {
		data.Scanned++
		if !re.Fetch.Success {
			data.Errors++
			continue
		}
		if re.Auth != nil && re.Auth.Found {
			data.SitesWithAuth++
			data.Components += re.Auth.Total
		}
	}
	return data
}

// tmplEscapeCSV quotes a value for CSV cells when needed.
func tmplEscapeCSV(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// tmplToJSON renders any value as compact JSON for embedding in templates.
func tmplToJSON(v interface{}) string {
	b, err := jsonutil.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
