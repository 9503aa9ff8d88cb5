package hooks

import (
	"context"
	"log/slog"

	"github.com/authscope/authscope/pkg/output/dispatcher"
	"github.com/authscope/authscope/pkg/output/events"
)

// orDefault returns l if non-nil, otherwise slog.Default().
func orDefault(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}

// Compile-time interface check.
var _ dispatcher.Hook = (*LoggerHook)(nil)

// LoggerHook mirrors scan events into a slog.Logger so runs leave a
// structured trail regardless of which writers are configured.
type LoggerHook struct {
	logger *slog.Logger
}

// NewLoggerHook creates a logging hook. A nil logger falls back to
// slog.Default().
func NewLoggerHook(logger *slog.Logger) *LoggerHook {
	return &LoggerHook{logger: orDefault(logger)}
}

// OnEvent logs each event at a level matching its weight: results and
// summaries at Info, per-target failures at Warn, fatal errors at Error,
// progress ticks at Debug.
func (h *LoggerHook) OnEvent(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case *events.StartEvent:
		h.logger.InfoContext(ctx, "scan started",
			slog.String("scan_id", e.ScanID()),
			slog.Int("targets", len(e.Targets)),
			slog.Int("concurrency", e.Config.Concurrency),
			slog.String("renderer", e.Config.Renderer),
		)

	case *events.ResultEvent:
		attrs := []any{
			slog.String("url", e.Target.URL),
			slog.Int("status", e.Fetch.StatusCode),
			slog.Float64("elapsed_sec", e.Fetch.ElapsedSec),
		}
		if !e.Fetch.Success {
			attrs = append(attrs, slog.String("error", e.Fetch.Error))
			h.logger.WarnContext(ctx, "page scan failed", attrs...)
			return nil
		}
		if e.Auth != nil {
			attrs = append(attrs, slog.Int("components", e.Auth.Total))
		}
		h.logger.InfoContext(ctx, "page scanned", attrs...)

	case *events.ProgressEvent:
		h.logger.DebugContext(ctx, "batch progress",
			slog.Int("current", e.Progress.Current),
			slog.Int("total", e.Progress.Total),
			slog.Int("sites_with_auth", e.Stats.SitesWithAuth),
			slog.Int("errors", e.Stats.Errors),
		)

	case *events.ErrorEvent:
		level := slog.LevelWarn
		if e.Fatal {
			level = slog.LevelError
		}
		h.logger.Log(ctx, level, "scan error",
			slog.String("target", e.Target),
			slog.String("type", e.ErrorType),
			slog.String("error", e.Message),
		)

	case *events.SummaryEvent:
		h.logger.InfoContext(ctx, "scan summary",
			slog.Int("scanned", e.Totals.Scanned),
			slog.Int("sites_with_auth", e.Totals.SitesWithAuth),
			slog.Int("components", e.Totals.Components),
			slog.Int("errors", e.Totals.Errors),
			slog.Float64("duration_sec", e.Timing.DurationSec),
		)

	case *events.CompleteEvent:
		h.logger.InfoContext(ctx, "scan complete",
			slog.Bool("success", e.Success),
			slog.Int("exit_code", e.ExitCode),
		)
	}

	return nil
}

// EventTypes returns nil so the hook receives every event.
func (h *LoggerHook) EventTypes() []events.EventType { return nil }
