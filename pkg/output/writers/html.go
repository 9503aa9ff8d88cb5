package writers

import (
	"fmt"
	"html/template"
	"io"
	"sync"
	"time"

	"github.com/Masterminds/sprig/v3"

	"github.com/authscope/authscope/pkg/defaults"
	"github.com/authscope/authscope/pkg/detect"
	"github.com/authscope/authscope/pkg/output/dispatcher"
	"github.com/authscope/authscope/pkg/output/events"
)

// Compile-time interface check.
var _ dispatcher.Writer = (*HTMLWriter)(nil)

// HTMLConfig configures the HTML report writer.
type HTMLConfig struct {
	// Title is the report title (default: "Authscope Report").
	Title string

	// IncludeSnippets embeds the detected HTML fragments in the report.
	// Snippets are always rendered escaped.
	IncludeSnippets bool

	// Theme sets the color scheme: "dark" or "light" (default: "dark").
	Theme string
}

// HTMLWriter renders scan results as a self-contained HTML report.
// Events are buffered and the document is generated on Close, so the
// report can include totals and the per-category breakdown up top.
type HTMLWriter struct {
	w       io.Writer
	mu      sync.Mutex
	config  HTMLConfig
	results []*events.ResultEvent
	summary *events.SummaryEvent
}

// NewHTMLWriter creates an HTML report writer.
func NewHTMLWriter(w io.Writer, config HTMLConfig) *HTMLWriter {
	if config.Title == "" {
		config.Title = "Authscope Report"
	}
	if config.Theme == "" {
		config.Theme = "dark"
	}
	return &HTMLWriter{
		w:       w,
		config:  config,
		results: make([]*events.ResultEvent, 0),
	}
}

// Write buffers an event for later HTML output.
func (hw *HTMLWriter) Write(event events.Event) error {
	hw.mu.Lock()
	defer hw.mu.Unlock()

	switch e := event.(type) {
	case *events.ResultEvent:
		hw.results = append(hw.results, e)
	case *events.SummaryEvent:
		hw.summary = e
	}
	return nil
}

// Flush is a no-op; the document is generated on Close.
func (hw *HTMLWriter) Flush() error {
	return nil
}

// Close renders and writes the complete HTML report.
func (hw *HTMLWriter) Close() error {
	hw.mu.Lock()
	defer hw.mu.Unlock()

	data := hw.prepareData()
	if err := hw.render(data); err != nil {
		return err
	}

	if closer, ok := hw.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// SupportsEvent returns true for result and summary events.
func (hw *HTMLWriter) SupportsEvent(eventType events.EventType) bool {
	switch eventType {
	case events.EventTypeResult, events.EventTypeSummary:
		return true
	default:
		return false
	}
}

// htmlReportData holds everything the report template needs.
type htmlReportData struct {
	Config      HTMLConfig
	Version     string
	GeneratedAt string
	Totals      htmlTotals
	Categories  []htmlCategory
	Pages       []htmlPage
	Failures    []htmlFailure
}

type htmlTotals struct {
	Scanned       int
	SitesWithAuth int
	Components    int
	Errors        int
	DurationSec   float64
	HasSummary    bool
}

type htmlCategory struct {
	Display string
	Class   string
	Count   int
}

type htmlPage struct {
	URL        string
	FinalURL   string
	Title      string
	StatusCode int
	ElapsedSec float64
	Summary    string
	Components []htmlComponent
}

type htmlComponent struct {
	Category string
	Class    string
	Label    string
	Context  string
	Snippet  string
}

type htmlFailure struct {
	URL   string
	Error string
}

// categoryClass maps a category identifier to its CSS class.
func categoryClass(category string) string {
	switch category {
	case "password_field_form":
		return "cat-password"
	case "auth_form":
		return "cat-form"
	case "auth_container":
		return "cat-container"
	case "oauth_button":
		return "cat-oauth"
	case "auth_link":
		return "cat-link"
	default:
		return "cat-other"
	}
}

// prepareData flattens buffered events into template input.
func (hw *HTMLWriter) prepareData() *htmlReportData {
	data := &htmlReportData{
		Config:      hw.config,
		Version:     defaults.Version,
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05 MST"),
	}

	categoryCounts := make(map[string]int)
	for _, re := range hw.results {
		if !re.Fetch.Success {
			data.Failures = append(data.Failures, htmlFailure{
				URL:   re.Target.URL,
				Error: re.Fetch.Error,
			})
			continue
		}

		page := htmlPage{
			URL:        re.Target.URL,
			FinalURL:   re.Target.FinalURL,
			Title:      re.Target.Title,
			StatusCode: re.Fetch.StatusCode,
			ElapsedSec: re.Fetch.ElapsedSec,
		}
		if re.Auth != nil {
			page.Summary = re.Auth.Summary
			for _, c := range re.Auth.Components {
				categoryCounts[c.Category]++
				display := c.Category
				if cat, err := detect.ParseCategory(c.Category); err == nil {
					display = cat.Display()
				}
				comp := htmlComponent{
					Category: display,
					Class:    categoryClass(c.Category),
					Label:    c.Label,
					Context:  c.Context,
				}
				if hw.config.IncludeSnippets {
					comp.Snippet = c.HTML
				}
				page.Components = append(page.Components, comp)
			}
		}
		data.Pages = append(data.Pages, page)
	}

	for _, cat := range detect.Categories() {
		if n := categoryCounts[cat.String()]; n > 0 {
			data.Categories = append(data.Categories, htmlCategory{
				Display: cat.Display(),
				Class:   categoryClass(cat.String()),
				Count:   n,
			})
		}
	}

	if hw.summary != nil {
		data.Totals = htmlTotals{
			Scanned:       hw.summary.Totals.Scanned,
			SitesWithAuth: hw.summary.Totals.SitesWithAuth,
			Components:    hw.summary.Totals.Components,
			Errors:        hw.summary.Totals.Errors,
			DurationSec:   hw.summary.Timing.DurationSec,
			HasSummary:    true,
		}
	}

	return data
}

// render executes the report template against the prepared data.
func (hw *HTMLWriter) render(data *htmlReportData) error {
	tmpl, err := template.New("report").Funcs(sprig.HtmlFuncMap()).Parse(htmlReportTemplate)
	if err != nil {
		return fmt.Errorf("html: parse template: %w", err)
	}
	if err := tmpl.Execute(hw.w, data); err != nil {
		return fmt.Errorf("html: render: %w", err)
	}
	return nil
}

// htmlReportTemplate is the self-contained report document. All dynamic
// content passes through html/template escaping; snippets are shown as
// text, never injected as markup.
const htmlReportTemplate = `<!DOCTYPE html>
<html lang="en" data-theme="{{ .Config.Theme }}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{ .Config.Title }}</title>
<style>
:root { --bg: #0f172a; --panel: #1e293b; --text: #e2e8f0; --muted: #94a3b8; --accent: #38bdf8; --ok: #4ade80; --warn: #facc15; --fail: #f87171; }
html[data-theme="light"] { --bg: #f8fafc; --panel: #ffffff; --text: #0f172a; --muted: #64748b; --accent: #0284c7; --ok: #16a34a; --warn: #ca8a04; --fail: #dc2626; }
* { box-sizing: border-box; }
body { margin: 0; padding: 2rem; background: var(--bg); color: var(--text); font: 15px/1.6 -apple-system, "Segoe UI", Roboto, sans-serif; }
main { max-width: 960px; margin: 0 auto; }
header h1 { margin: 0 0 .25rem; font-size: 1.6rem; }
header p { margin: 0; color: var(--muted); font-size: .85rem; }
.cards { display: grid; grid-template-columns: repeat(auto-fit, minmax(140px, 1fr)); gap: 1rem; margin: 1.5rem 0; }
.card { background: var(--panel); border-radius: 10px; padding: 1rem; text-align: center; }
.card .num { font-size: 1.8rem; font-weight: 700; color: var(--accent); }
.card .label { color: var(--muted); font-size: .8rem; text-transform: uppercase; letter-spacing: .05em; }
.chips { display: flex; flex-wrap: wrap; gap: .5rem; margin: 1rem 0 2rem; }
.chip { padding: .25rem .75rem; border-radius: 999px; font-size: .8rem; background: var(--panel); }
.chip b { color: var(--accent); }
section.page { background: var(--panel); border-radius: 10px; padding: 1.25rem; margin-bottom: 1.25rem; }
section.page h2 { margin: 0 0 .25rem; font-size: 1.05rem; word-break: break-all; }
section.page .meta { color: var(--muted); font-size: .8rem; margin-bottom: .75rem; }
.component { border-left: 3px solid var(--accent); padding: .5rem .75rem; margin: .6rem 0; background: rgba(148, 163, 184, .07); border-radius: 0 8px 8px 0; }
.component .cat { font-weight: 600; font-size: .85rem; }
.component .ctx { color: var(--muted); font-size: .8rem; }
.component pre { margin: .5rem 0 0; padding: .6rem; background: var(--bg); border-radius: 6px; overflow-x: auto; font-size: .75rem; }
.cat-password { border-color: var(--fail); }
.cat-form { border-color: var(--warn); }
.cat-container { border-color: var(--accent); }
.cat-oauth { border-color: var(--ok); }
.cat-link { border-color: var(--muted); }
.failure { border-left: 3px solid var(--fail); padding: .5rem .75rem; margin: .6rem 0; background: rgba(248, 113, 113, .08); border-radius: 0 8px 8px 0; }
.failure .url { font-weight: 600; word-break: break-all; }
.failure .err { color: var(--fail); font-size: .85rem; }
.none { color: var(--muted); font-style: italic; }
footer { margin-top: 2rem; color: var(--muted); font-size: .75rem; text-align: center; }
</style>
</head>
<body>
<main>
<header>
<h1>{{ .Config.Title }}</h1>
<p>Generated {{ .GeneratedAt }} by authscope v{{ .Version }}</p>
</header>

{{ if .Totals.HasSummary }}
<div class="cards">
<div class="card"><div class="num">{{ .Totals.Scanned }}</div><div class="label">Pages Scanned</div></div>
<div class="card"><div class="num">{{ .Totals.SitesWithAuth }}</div><div class="label">With Auth UI</div></div>
<div class="card"><div class="num">{{ .Totals.Components }}</div><div class="label">Components</div></div>
<div class="card"><div class="num">{{ .Totals.Errors }}</div><div class="label">Errors</div></div>
<div class="card"><div class="num">{{ printf "%.1fs" .Totals.DurationSec }}</div><div class="label">Duration</div></div>
</div>
{{ end }}

{{ if .Categories }}
<div class="chips">
{{ range .Categories }}<span class="chip {{ .Class }}">{{ .Display }} <b>{{ .Count }}</b></span>
{{ end }}</div>
{{ end }}

{{ range .Pages }}
<section class="page">
<h2>{{ .URL }}</h2>
<div class="meta">{{ .Title | default "(untitled)" }} · HTTP {{ .StatusCode }} · {{ printf "%.1fs" .ElapsedSec }}{{ if and .FinalURL (ne .FinalURL .URL) }} · landed on {{ .FinalURL | trunc 80 }}{{ end }}</div>
{{ if .Components }}
{{ range .Components }}
<div class="component {{ .Class }}">
<div class="cat">{{ .Category }}{{ if .Label }} · {{ .Label }}{{ end }}</div>
{{ if .Context }}<div class="ctx">{{ .Context }}</div>{{ end }}
{{ if .Snippet }}<pre><code>{{ .Snippet }}</code></pre>{{ end }}
</div>
{{ end }}
{{ else }}
<div class="none">No authentication components detected.</div>
{{ end }}
</section>
{{ end }}

{{ if .Failures }}
<section class="page">
<h2>Failed Pages</h2>
{{ range .Failures }}
<div class="failure"><div class="url">{{ .URL }}</div><div class="err">{{ .Error }}</div></div>
{{ end }}
</section>
{{ end }}

<footer>authscope v{{ .Version }}</footer>
</main>
</body>
</html>
`
