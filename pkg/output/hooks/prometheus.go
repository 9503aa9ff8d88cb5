package hooks

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/authscope/authscope/pkg/duration"
	"github.com/authscope/authscope/pkg/output/dispatcher"
	"github.com/authscope/authscope/pkg/output/events"
)

// Compile-time interface check.
var _ dispatcher.Hook = (*PrometheusHook)(nil)

// PrometheusHook exposes scan metrics for Prometheus scraping.
// Metrics include counters for scanned pages, detected components, and
// errors, gauges for the latest batch outcome, and a histogram for page
// fetch latency. The hook can either run its own metrics server or hand
// its Handler to an existing mux via WithoutServer.
type PrometheusHook struct {
	server   *http.Server
	registry *prometheus.Registry
	opts     PrometheusOptions

	// Counters
	scansTotal      *prometheus.CounterVec
	componentsTotal *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec

	// Gauges
	batchSitesWithAuth prometheus.Gauge
	batchDuration      prometheus.Gauge

	// Histograms
	fetchSeconds *prometheus.HistogramVec

	mu     sync.Mutex
	closed bool
}

// PrometheusOptions configures the Prometheus hook behavior.
type PrometheusOptions struct {
	// Port for the metrics server (default: 9090).
	Port int

	// Path for the metrics endpoint (default: "/metrics").
	Path string

	// WithoutServer skips starting a standalone metrics server.
	// Use Handler to mount the endpoint on an existing mux instead.
	WithoutServer bool

	// ReadTimeout for the HTTP server (default: 5s).
	ReadTimeout time.Duration

	// WriteTimeout for the HTTP server (default: 10s).
	WriteTimeout time.Duration
}

// NewPrometheusHook creates a Prometheus hook with its own registry so
// repeated constructions never collide with the default registry. Unless
// WithoutServer is set, the metrics server starts immediately and runs
// until Close is called.
func NewPrometheusHook(opts PrometheusOptions) (*PrometheusHook, error) {
	if opts.Port == 0 {
		opts.Port = 9090
	}
	if opts.Path == "" {
		opts.Path = "/metrics"
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = duration.MetricsRead
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = duration.MetricsWrite
	}

	hook := &PrometheusHook{
		registry: prometheus.NewRegistry(),
		opts:     opts,
	}

	if err := hook.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	if !opts.WithoutServer {
		hook.startServer()
	}

	return hook, nil
}

// initMetrics creates and registers all Prometheus metrics.
func (h *PrometheusHook) initMetrics() error {
	h.scansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authscope_scans_total",
			Help: "Total number of page scans executed",
		},
		[]string{"target", "outcome"},
	)

	h.componentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authscope_components_total",
			Help: "Total number of auth components detected",
		},
		[]string{"target", "category"},
	)

	h.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authscope_errors_total",
			Help: "Total number of scan errors by type",
		},
		[]string{"target", "type"},
	)

	h.batchSitesWithAuth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "authscope_batch_sites_with_auth",
			Help: "Sites exposing auth components in the latest batch",
		},
	)

	h.batchDuration = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "authscope_batch_duration_seconds",
			Help: "Duration of the latest batch scan in seconds",
		},
	)

	h.fetchSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "authscope_fetch_seconds",
			Help:    "Page fetch latency distribution in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 15.0, 30.0},
		},
		[]string{"renderer", "outcome"},
	)

	collectors := []prometheus.Collector{
		h.scansTotal,
		h.componentsTotal,
		h.errorsTotal,
		h.batchSitesWithAuth,
		h.batchDuration,
		h.fetchSeconds,
	}
	for _, c := range collectors {
		if err := h.registry.Register(c); err != nil {
			return err
		}
	}

	return nil
}

// startServer starts the standalone HTTP server for metrics.
func (h *PrometheusHook) startServer() {
	mux := http.NewServeMux()
	mux.Handle(h.opts.Path, h.Handler())

	h.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", h.opts.Port),
		Handler:      mux,
		ReadTimeout:  h.opts.ReadTimeout,
		WriteTimeout: h.opts.WriteTimeout,
	}

	go func() {
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("prometheus: metrics server error: %v", err)
		}
	}()
}

// Handler returns the scrape handler for this hook's registry, for mounting
// on an existing mux when the standalone server is disabled.
func (h *PrometheusHook) Handler() http.Handler {
	return promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// OnEvent processes events and updates Prometheus metrics.
func (h *PrometheusHook) OnEvent(ctx context.Context, event events.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}

	switch e := event.(type) {
	case *events.ResultEvent:
		h.handleResult(e)
	case *events.ErrorEvent:
		h.handleError(e)
	case *events.SummaryEvent:
		h.handleSummary(e)
	}
	return nil
}

// handleResult updates per-page counters and the fetch latency histogram.
func (h *PrometheusHook) handleResult(result *events.ResultEvent) {
	target := extractHost(result.Target.URL)
	outcome := "success"
	if !result.Fetch.Success {
		outcome = "error"
	}

	h.scansTotal.WithLabelValues(target, outcome).Inc()

	if result.Fetch.ElapsedSec > 0 {
		renderer := result.Fetch.Renderer
		if renderer == "" {
			renderer = "unknown"
		}
		h.fetchSeconds.WithLabelValues(renderer, outcome).Observe(result.Fetch.ElapsedSec)
	}

	if result.Auth != nil {
		for category, n := range result.Auth.Counts {
			h.componentsTotal.WithLabelValues(target, category).Add(float64(n))
		}
	}
}

// handleError counts failures by error type.
func (h *PrometheusHook) handleError(errEvent *events.ErrorEvent) {
	h.errorsTotal.WithLabelValues(extractHost(errEvent.Target), errEvent.ErrorType).Inc()
}

// handleSummary sets the latest-batch gauges.
func (h *PrometheusHook) handleSummary(summary *events.SummaryEvent) {
	h.batchSitesWithAuth.Set(float64(summary.Totals.SitesWithAuth))
	h.batchDuration.Set(summary.Timing.DurationSec)
}

// EventTypes returns the event types this hook handles.
func (h *PrometheusHook) EventTypes() []events.EventType {
	return []events.EventType{
		events.EventTypeResult,
		events.EventTypeError,
		events.EventTypeSummary,
	}
}

// Close shuts down the metrics server, if one was started.
func (h *PrometheusHook) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	if h.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), duration.ServerShutdown)
		defer cancel()
		return h.server.Shutdown(ctx)
	}
	return nil
}

// MetricsAddr returns the address where metrics are served.
func (h *PrometheusHook) MetricsAddr() string {
	return fmt.Sprintf("http://localhost:%d%s", h.opts.Port, h.opts.Path)
}

// extractHost pulls the host out of a URL for use as a metric label.
// Returns "unknown" for empty or unparseable input.
func extractHost(rawURL string) string {
	if rawURL == "" {
		return "unknown"
	}

	rest := rawURL
	if idx := strings.Index(rest, "://"); idx >= 0 {
		rest = rest[idx+3:]
	}
	if idx := strings.IndexAny(rest, "/?#"); idx >= 0 {
		rest = rest[:idx]
	}
	if rest == "" {
		return "unknown"
	}
	return rest
}
