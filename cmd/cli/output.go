// This file contains unified output flag handling for the scan commands.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/authscope/authscope/pkg/config"
	"github.com/authscope/authscope/pkg/defaults"
	"github.com/authscope/authscope/pkg/output"
	"github.com/authscope/authscope/pkg/output/dispatcher"
	"github.com/authscope/authscope/pkg/output/events"
	"github.com/authscope/authscope/pkg/scan"
)

// OutputFlags defines the report and gating flags shared by the scan and
// defaults commands.
type OutputFlags struct {
	// File exports
	JSONExport     string
	JSONLExport    string
	CSVExport      string
	HTMLExport     string
	PDFExport      string
	TemplateExport string
	TemplateName   string

	// Content
	OmitSnippets bool
	OnlyFindings bool

	// Console
	JSONMode   bool
	StreamMode bool
	MaxResults int

	// Report cosmetics
	ReportTitle string
	Theme       string

	// CI gates
	FailOnFound bool
	MaxErrors   int
}

// registerOutputFlags binds the shared output flags on fs and returns the
// struct the parsed values land in.
func registerOutputFlags(fs *flag.FlagSet) *OutputFlags {
	o := &OutputFlags{}

	// === FILE EXPORTS ===
	fs.StringVar(&o.JSONExport, "o", "", "Export results to JSON file")
	fs.StringVar(&o.JSONExport, "json-export", "", "Export results to JSON file (alias)")
	fs.StringVar(&o.JSONLExport, "jsonl-export", "", "Export results to JSONL file (streaming)")
	fs.StringVar(&o.CSVExport, "csv-export", "", "Export results to CSV file")
	fs.StringVar(&o.HTMLExport, "html-export", "", "Export results to HTML report")
	fs.StringVar(&o.PDFExport, "pdf-export", "", "Export results to PDF report")
	fs.StringVar(&o.TemplateExport, "template-export", "", "Export results through a Go template")
	fs.StringVar(&o.TemplateName, "template", "", "Template file path or built-in name (csv, auth-urls, text-summary)")

	// === CONTENT ===
	fs.BoolVar(&o.OmitSnippets, "omit-snippets", false, "Omit HTML snippets from reports")
	fs.BoolVar(&o.OnlyFindings, "only-findings", false, "Report only pages with auth components")

	// === CONSOLE ===
	fs.BoolVar(&o.JSONMode, "json", false, "JSONL to stdout instead of the result table")
	fs.BoolVar(&o.JSONMode, "j", false, "JSONL to stdout (alias)")
	fs.BoolVar(&o.StreamMode, "stream", false, "Print results as they finish instead of a final table")
	fs.IntVar(&o.MaxResults, "max-results", 0, "Cap result table rows (0 = no cap)")

	// === REPORT COSMETICS ===
	fs.StringVar(&o.ReportTitle, "report-title", "", "Title for HTML and PDF reports")
	fs.StringVar(&o.Theme, "theme", "", "HTML report theme: dark or light")

	// === CI GATES ===
	fs.BoolVar(&o.FailOnFound, "fail-on-found", false, "Exit 1 when auth components are detected")
	fs.IntVar(&o.MaxErrors, "max-errors", 0, "Exit 3 after this many failed fetches (0 = off)")

	return o
}

// outputConfig maps the parsed flags onto the dispatcher builder config.
// -template accepts either a file path or a built-in name; an existing
// file wins.
func (o *OutputFlags) outputConfig(cfg *config.Config, logger *slog.Logger) output.Config {
	oc := output.Config{
		JSONExport:     o.JSONExport,
		JSONLExport:    o.JSONLExport,
		CSVExport:      o.CSVExport,
		HTMLExport:     o.HTMLExport,
		PDFExport:      o.PDFExport,
		TemplateExport: o.TemplateExport,

		OmitSnippets: o.OmitSnippets,
		OnlyFindings: o.OnlyFindings,

		Silent:     cfg.Silent,
		JSONMode:   o.JSONMode,
		StreamMode: o.StreamMode,
		NoColor:    cfg.NoColor,
		MaxResults: o.MaxResults,

		ReportTitle: o.ReportTitle,
		Theme:       o.Theme,

		Logger:       logger,
		MetricsPort:  cfg.MetricsPort,
		OTelEndpoint: cfg.OTelEndpoint,
		OTelInsecure: cfg.OTelInsecure,
	}
	if o.TemplateName != "" {
		if _, err := os.Stat(o.TemplateName); err == nil {
			oc.TemplateFile = o.TemplateName
		} else {
			oc.TemplateBuiltIn = o.TemplateName
		}
	}
	return oc
}

// DispatcherContext pairs a dispatcher with the run it reports on, and
// gives commands typed emit helpers. A nil context or nil dispatcher turns
// every emit into a no-op so callers never branch.
type DispatcherContext struct {
	Dispatcher *dispatcher.Dispatcher
	RunID      string
}

// Close shuts down the dispatcher, flushing writers and waiting for hooks.
func (dc *DispatcherContext) Close() error {
	if dc == nil || dc.Dispatcher == nil {
		return nil
	}
	return dc.Dispatcher.Close()
}

func (dc *DispatcherContext) dispatch(ctx context.Context, event events.Event) {
	if dc == nil || dc.Dispatcher == nil {
		return
	}
	_ = dc.Dispatcher.Dispatch(ctx, event)
}

func (dc *DispatcherContext) runID() string {
	if dc == nil {
		return ""
	}
	return dc.RunID
}

// EmitStart announces the run, its target list, and the effective settings
// so output files are self-describing.
func (dc *DispatcherContext) EmitStart(ctx context.Context, targets []string, cfg *config.Config, renderer string) {
	if dc == nil || dc.Dispatcher == nil {
		return
	}
	dc.dispatch(ctx, &events.StartEvent{
		BaseEvent: events.NewBase(events.EventTypeStart, dc.RunID),
		Targets:   targets,
		Config: events.ScanConfig{
			Concurrency: cfg.Concurrency,
			TimeoutSec:  int(cfg.Timeout().Seconds()),
			Fallback:    cfg.Fallback,
			Providers:   cfg.Providers,
			Renderer:    renderer,
			RatePerSec:  cfg.RatePerSec,
		},
	})
}

// EmitResult forwards one page result and returns the event, so the caller
// can feed it to the exit code gate synchronously instead of racing the
// async hook goroutines.
func (dc *DispatcherContext) EmitResult(ctx context.Context, res *scan.Result) *events.ResultEvent {
	event := res.Event(dc.runID())
	dc.dispatch(ctx, event)
	return event
}

// EmitError forwards the failure classification for an unsuccessful
// result. Returns nil when the result succeeded.
func (dc *DispatcherContext) EmitError(ctx context.Context, res *scan.Result) *events.ErrorEvent {
	event := res.ErrorEvent(dc.runID())
	if event != nil {
		dc.dispatch(ctx, event)
	}
	return event
}

// EmitProgress reports batch progress after a completed page.
func (dc *DispatcherContext) EmitProgress(ctx context.Context, current, total int, stats events.StatsInfo, startedAt time.Time) {
	if dc == nil || dc.Dispatcher == nil {
		return
	}
	var pct float64
	if total > 0 {
		pct = float64(current) / float64(total) * 100
	}
	dc.dispatch(ctx, &events.ProgressEvent{
		BaseEvent: events.NewBase(events.EventTypeProgress, dc.RunID),
		Progress:  events.ProgressInfo{Current: current, Total: total, Percentage: pct},
		Stats:     stats,
		Timing: events.TimingInfo{
			StartedAt:  startedAt,
			ElapsedSec: int64(time.Since(startedAt).Seconds()),
		},
	})
}

// EmitSummary aggregates the finished batch into the final digest and
// returns it for the complete event.
func (dc *DispatcherContext) EmitSummary(ctx context.Context, batch *scan.BatchResult, startedAt time.Time) *events.SummaryEvent {
	if dc == nil || dc.Dispatcher == nil {
		return nil
	}

	byCategory := make(map[string]int)
	var components, errored int
	for _, r := range batch.Results {
		if !r.Success {
			errored++
			continue
		}
		if r.Auth == nil {
			continue
		}
		components += r.Auth.Total
		for cat, n := range r.Auth.Counts {
			byCategory[cat] += n
		}
	}

	completed := time.Now().UTC()
	event := &events.SummaryEvent{
		BaseEvent: events.NewBase(events.EventTypeSummary, dc.RunID),
		Version:   defaults.Version,
		Totals: events.SummaryTotals{
			Scanned:       batch.TotalScanned,
			SitesWithAuth: batch.SitesWithAuth,
			Components:    components,
			Errors:        errored,
		},
		ByCategory: byCategory,
		Timing: events.SummaryTiming{
			StartedAt:   startedAt,
			CompletedAt: completed,
			DurationSec: completed.Sub(startedAt).Seconds(),
		},
	}
	dc.dispatch(ctx, event)
	return event
}

// EmitComplete closes the event stream with the final verdict.
func (dc *DispatcherContext) EmitComplete(ctx context.Context, code int, reason string, summary *events.SummaryEvent) {
	if dc == nil || dc.Dispatcher == nil {
		return
	}
	dc.dispatch(ctx, &events.CompleteEvent{
		BaseEvent:  events.NewBase(events.EventTypeComplete, dc.RunID),
		Success:    code == defaults.ExitSuccess,
		ExitCode:   code,
		ExitReason: reason,
		Summary:    summary,
	})
}
