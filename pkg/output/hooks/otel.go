package hooks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/authscope/authscope/pkg/defaults"
	"github.com/authscope/authscope/pkg/duration"
	"github.com/authscope/authscope/pkg/output/dispatcher"
	"github.com/authscope/authscope/pkg/output/events"
)

// Compile-time interface check.
var _ dispatcher.Hook = (*OTelHook)(nil)

// OTelHook exports scan telemetry to an OpenTelemetry collector.
// Each run becomes one root span; per-page results, progress updates, and
// errors are recorded as span events with attributes.
type OTelHook struct {
	opts           OTelOptions
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer

	// Active span tracking
	mu       sync.Mutex
	rootSpan trace.Span
	rootCtx  context.Context
	closed   bool

	scanID    string
	startTime time.Time
}

// OTelOptions configures the OpenTelemetry hook behavior.
type OTelOptions struct {
	// Endpoint is the OTLP endpoint (e.g., "localhost:4317").
	Endpoint string

	// ServiceName is the service name for traces (default: "authscope").
	ServiceName string

	// Insecure uses an insecure connection (no TLS).
	Insecure bool

	// Headers contains additional headers for the OTLP exporter.
	Headers map[string]string

	// ShutdownTimeout is the timeout for graceful shutdown (default: 5s).
	ShutdownTimeout time.Duration

	// ConnectionTimeout is the timeout for establishing the connection (default: 10s).
	ConnectionTimeout time.Duration
}

// NewOTelHook creates an OpenTelemetry hook that exports traces to the
// configured endpoint. The exporter connects immediately but handles
// collector outages gracefully without blocking scans.
func NewOTelHook(opts OTelOptions) (*OTelHook, error) {
	if opts.ServiceName == "" {
		opts.ServiceName = defaults.ToolName
	}
	if opts.Endpoint == "" {
		opts.Endpoint = "localhost:4317"
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = duration.TelemetryShutdown
	}
	if opts.ConnectionTimeout == 0 {
		opts.ConnectionTimeout = duration.TelemetryConnect
	}

	grpcOpts := []grpc.DialOption{}
	if opts.Insecure {
		grpcOpts = append(grpcOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	exporterOpts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(opts.Endpoint),
		otlptracegrpc.WithDialOption(grpcOpts...),
	}
	if opts.Insecure {
		exporterOpts = append(exporterOpts, otlptracegrpc.WithInsecure())
	}
	if len(opts.Headers) > 0 {
		exporterOpts = append(exporterOpts, otlptracegrpc.WithHeaders(opts.Headers))
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectionTimeout)
	defer cancel()

	exporter, err := otlptracegrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, err
	}

	// Standalone resource; merging with Default can raise schema conflicts.
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(opts.ServiceName),
		semconv.ServiceVersion(defaults.Version),
		attribute.String("service.component", "scanner"),
	)

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tracerProvider)

	return &OTelHook{
		opts:           opts,
		tracerProvider: tracerProvider,
		tracer:         tracerProvider.Tracer("authscope/scanner"),
		startTime:      time.Now(),
	}, nil
}

// OnEvent processes events and exports telemetry.
func (h *OTelHook) OnEvent(ctx context.Context, event events.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}

	switch e := event.(type) {
	case *events.StartEvent:
		return h.handleStart(ctx, e)
	case *events.ProgressEvent:
		return h.handleProgress(e)
	case *events.ResultEvent:
		return h.handleResult(e)
	case *events.ErrorEvent:
		return h.handleError(e)
	case *events.SummaryEvent:
		return h.handleSummary(e)
	case *events.CompleteEvent:
		return h.handleComplete(e)
	default:
		return nil
	}
}

// handleStart opens the root span for the run.
func (h *OTelHook) handleStart(ctx context.Context, start *events.StartEvent) error {
	h.scanID = start.ScanID()
	h.startTime = start.Timestamp()

	spanCtx, span := h.tracer.Start(ctx, "authscope.scan",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("scan_id", h.scanID),
			attribute.Int("targets", len(start.Targets)),
			attribute.Int("concurrency", start.Config.Concurrency),
			attribute.Int("timeout_sec", start.Config.TimeoutSec),
			attribute.String("fallback_policy", start.Config.Fallback),
			attribute.String("renderer", start.Config.Renderer),
		),
	)

	h.rootSpan = span
	h.rootCtx = spanCtx

	span.AddEvent("scan_started", trace.WithAttributes(
		attribute.StringSlice("targets", start.Targets),
	))

	return nil
}

// handleProgress adds span events for batch progress updates.
func (h *OTelHook) handleProgress(progress *events.ProgressEvent) error {
	if h.rootSpan == nil {
		return nil
	}

	h.rootSpan.AddEvent("progress_update", trace.WithAttributes(
		attribute.Int("current", progress.Progress.Current),
		attribute.Int("total", progress.Progress.Total),
		attribute.Float64("percentage", progress.Progress.Percentage),
		attribute.Int("sites_with_auth", progress.Stats.SitesWithAuth),
		attribute.Int("components", progress.Stats.Components),
		attribute.Int("errors", progress.Stats.Errors),
	))

	return nil
}

// handleResult records one page scan as a span event.
func (h *OTelHook) handleResult(result *events.ResultEvent) error {
	if h.rootSpan == nil {
		return nil
	}

	eventName := "page_scanned"
	if result.Auth != nil && result.Auth.Found {
		eventName = "auth_detected"
	}

	attrs := []attribute.KeyValue{
		attribute.String("scan_id", h.scanID),
		attribute.String("url", result.Target.URL),
		attribute.Bool("success", result.Fetch.Success),
		attribute.Int("status_code", result.Fetch.StatusCode),
		attribute.String("renderer", result.Fetch.Renderer),
		attribute.Float64("elapsed_sec", result.Fetch.ElapsedSec),
	}
	if result.Auth != nil {
		attrs = append(attrs,
			attribute.Int("total_found", result.Auth.Total),
			attribute.Bool("auth_found", result.Auth.Found),
		)
	}

	h.rootSpan.AddEvent(eventName, trace.WithAttributes(attrs...))
	return nil
}

// handleError records scan failures; fatal errors mark the span.
func (h *OTelHook) handleError(errEvent *events.ErrorEvent) error {
	if h.rootSpan == nil {
		return nil
	}

	h.rootSpan.AddEvent("scan_error", trace.WithAttributes(
		attribute.String("target", errEvent.Target),
		attribute.String("error_type", errEvent.ErrorType),
		attribute.String("message", errEvent.Message),
		attribute.Bool("fatal", errEvent.Fatal),
	))

	if errEvent.Fatal {
		h.rootSpan.SetStatus(codes.Error, errEvent.Message)
	}

	return nil
}

// handleSummary adds run totals to the root span.
func (h *OTelHook) handleSummary(summary *events.SummaryEvent) error {
	if h.rootSpan == nil {
		return nil
	}

	h.rootSpan.SetAttributes(
		attribute.Int("totals.scanned", summary.Totals.Scanned),
		attribute.Int("totals.sites_with_auth", summary.Totals.SitesWithAuth),
		attribute.Int("totals.components", summary.Totals.Components),
		attribute.Int("totals.errors", summary.Totals.Errors),
		attribute.Float64("timing.duration_sec", summary.Timing.DurationSec),
	)

	h.rootSpan.AddEvent("scan_summary", trace.WithAttributes(
		attribute.Int("scanned", summary.Totals.Scanned),
		attribute.Int("sites_with_auth", summary.Totals.SitesWithAuth),
		attribute.Int("components", summary.Totals.Components),
		attribute.Float64("duration_sec", summary.Timing.DurationSec),
	))

	return nil
}

// handleComplete finalizes the run span and releases it.
func (h *OTelHook) handleComplete(complete *events.CompleteEvent) error {
	if h.rootSpan == nil {
		return nil
	}

	h.rootSpan.AddEvent("scan_completed", trace.WithAttributes(
		attribute.Bool("success", complete.Success),
		attribute.Int("exit_code", complete.ExitCode),
		attribute.String("exit_reason", complete.ExitReason),
	))

	if complete.Success {
		h.rootSpan.SetStatus(codes.Ok, "Scan completed")
	} else {
		h.rootSpan.SetStatus(codes.Error, complete.ExitReason)
	}

	h.rootSpan.End()
	h.rootSpan = nil

	return nil
}

// EventTypes returns the event types this hook handles.
func (h *OTelHook) EventTypes() []events.EventType {
	return []events.EventType{
		events.EventTypeStart,
		events.EventTypeProgress,
		events.EventTypeResult,
		events.EventTypeError,
		events.EventTypeSummary,
		events.EventTypeComplete,
	}
}

// Close shuts down the tracer provider and flushes pending telemetry.
func (h *OTelHook) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	if h.rootSpan != nil {
		h.rootSpan.End()
		h.rootSpan = nil
	}

	if h.tracerProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), h.opts.ShutdownTimeout)
		defer cancel()
		if err := h.tracerProvider.Shutdown(ctx); err != nil {
			return fmt.Errorf("otel: shutdown tracer provider: %w", err)
		}
	}

	return nil
}

// Endpoint returns the OTLP endpoint being used.
func (h *OTelHook) Endpoint() string {
	return h.opts.Endpoint
}

// ServiceName returns the service name being used.
func (h *OTelHook) ServiceName() string {
	return h.opts.ServiceName
}
