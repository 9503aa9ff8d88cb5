// Package output wires up scan output: it builds a dispatcher with the
// writers and hooks the CLI flags ask for.
package output

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/authscope/authscope/pkg/output/dispatcher"
	"github.com/authscope/authscope/pkg/output/hooks"
	"github.com/authscope/authscope/pkg/output/writers"
)

// Config selects the writers and hooks a scan run emits through.
// The zero value produces console output only.
type Config struct {
	// File exports; empty path = disabled.
	JSONExport     string
	JSONLExport    string
	CSVExport      string
	HTMLExport     string
	PDFExport      string
	TemplateExport string

	// Template source for TemplateExport: a file path or a built-in name
	// (csv, auth-urls, text-summary). When both are empty, text-summary
	// is used.
	TemplateFile    string
	TemplateBuiltIn string

	// Content shaping
	OmitSnippets bool
	OnlyFindings bool

	// Console output
	Silent     bool
	JSONMode   bool // JSONL to stdout instead of the table
	StreamMode bool // table prints pages as they finish
	NoColor    bool
	MaxResults int

	// Report cosmetics
	ReportTitle string
	Theme       string

	// Hooks
	Logger       *slog.Logger
	MetricsPort  int
	OTelEndpoint string
	OTelInsecure bool
}

// BuildDispatcher creates a dispatcher configured with writers and hooks
// based on the config. It opens all output files up front so path problems
// surface before the scan starts. The caller owns Close().
func BuildDispatcher(cfg Config) (*dispatcher.Dispatcher, error) {
	d := dispatcher.New(dispatcher.Config{
		Async: true,
	})

	// Track opened files for cleanup on error.
	var openedFiles []*os.File
	cleanup := func() {
		for _, f := range openedFiles {
			f.Close()
		}
	}

	openFile := func(path string) (*os.File, error) {
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file %s: %w", path, err)
		}
		openedFiles = append(openedFiles, f)
		return f, nil
	}

	// === FILE WRITERS ===

	if cfg.JSONExport != "" {
		f, err := openFile(cfg.JSONExport)
		if err != nil {
			cleanup()
			return nil, err
		}
		d.RegisterWriter(writers.NewJSONWriter(f, writers.JSONOptions{
			OmitSnippets: cfg.OmitSnippets,
			Pretty:       true,
		}))
	}

	if cfg.JSONLExport != "" {
		f, err := openFile(cfg.JSONLExport)
		if err != nil {
			cleanup()
			return nil, err
		}
		d.RegisterWriter(writers.NewJSONLWriter(f, writers.JSONLOptions{
			OmitSnippets: cfg.OmitSnippets,
			OnlyFindings: cfg.OnlyFindings,
		}))
	}

	if cfg.CSVExport != "" {
		f, err := openFile(cfg.CSVExport)
		if err != nil {
			cleanup()
			return nil, err
		}
		d.RegisterWriter(writers.NewCSVWriter(f, writers.CSVOptions{
			IncludeHeader:    true,
			SanitizeFormulas: true,
			IncludeMisses:    !cfg.OnlyFindings,
		}))
	}

	if cfg.HTMLExport != "" {
		f, err := openFile(cfg.HTMLExport)
		if err != nil {
			cleanup()
			return nil, err
		}
		d.RegisterWriter(writers.NewHTMLWriter(f, writers.HTMLConfig{
			Title:           cfg.ReportTitle,
			Theme:           cfg.Theme,
			IncludeSnippets: !cfg.OmitSnippets,
		}))
	}

	if cfg.PDFExport != "" {
		f, err := openFile(cfg.PDFExport)
		if err != nil {
			cleanup()
			return nil, err
		}
		d.RegisterWriter(writers.NewPDFWriter(f, writers.PDFConfig{
			Title:           cfg.ReportTitle,
			IncludeSnippets: !cfg.OmitSnippets,
		}))
	}

	if cfg.TemplateExport != "" {
		f, err := openFile(cfg.TemplateExport)
		if err != nil {
			cleanup()
			return nil, err
		}
		tmplCfg := writers.TemplateConfig{
			TemplatePath: cfg.TemplateFile,
			BuiltIn:      cfg.TemplateBuiltIn,
		}
		if tmplCfg.TemplatePath == "" && tmplCfg.BuiltIn == "" {
			tmplCfg.BuiltIn = "text-summary"
		}
		w, err := writers.NewTemplateWriter(f, tmplCfg)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("template writer: %w", err)
		}
		d.RegisterWriter(w)
	}

	// === CONSOLE OUTPUT ===

	if !cfg.Silent && !cfg.JSONMode {
		mode := "summary"
		if cfg.StreamMode {
			mode = "streaming"
		}
		d.RegisterWriter(writers.NewTableWriter(os.Stdout, writers.TableConfig{
			Mode:         mode,
			NoColor:      cfg.NoColor,
			OnlyFindings: cfg.OnlyFindings,
			MaxResults:   cfg.MaxResults,
		}))
	}

	if cfg.JSONMode {
		d.RegisterWriter(writers.NewJSONLWriter(os.Stdout, writers.JSONLOptions{
			OmitSnippets: cfg.OmitSnippets,
			OnlyFindings: cfg.OnlyFindings,
		}))
	}

	// === HOOKS ===

	if cfg.Logger != nil {
		d.RegisterHook(hooks.NewLoggerHook(cfg.Logger))
	}

	if cfg.MetricsPort > 0 {
		hook, err := hooks.NewPrometheusHook(hooks.PrometheusOptions{
			Port: cfg.MetricsPort,
		})
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("failed to create Prometheus hook: %w", err)
		}
		d.RegisterHook(hook)
	}

	if cfg.OTelEndpoint != "" {
		hook, err := hooks.NewOTelHook(hooks.OTelOptions{
			Endpoint: cfg.OTelEndpoint,
			Insecure: cfg.OTelInsecure,
		})
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("failed to create OpenTelemetry hook: %w", err)
		}
		d.RegisterHook(hook)
	}

	return d, nil
}
