// Package duration provides canonical time constants for the entire codebase.
// This is the SINGLE SOURCE OF TRUTH for all time-based configuration.
//
// Usage:
//
//	ctx, cancel := context.WithTimeout(ctx, duration.FetchDefault)
//	ReadTimeout: duration.ServerRead,
//
// DO NOT use hardcoded time.Duration values like `15 * time.Second` anywhere.
// Instead, reference the appropriate constant from this package.
package duration

import "time"

// ============================================================================
// PAGE FETCH TIMEOUTS
// ============================================================================
//
// Bounds for retrieving a rendered page. FetchDefault matches the original
// deployment's per-page budget; FetchMax is the hard ceiling accepted by
// configuration validation.
// ============================================================================

const (
	// FetchMin is the lowest accepted page fetch timeout (5s)
	FetchMin = 5 * time.Second

	// FetchDefault is the standard page fetch timeout (15s)
	FetchDefault = 15 * time.Second

	// FetchMax is the hard upper bound for a page fetch (30s)
	FetchMax = 30 * time.Second

	// RenderSettle is the wait after the load event so client-side
	// frameworks can finish painting login widgets (2s)
	RenderSettle = 2 * time.Second

	// BrowserStop is how long a misbehaving browser gets to shut down
	// before its process is killed (5s)
	BrowserStop = 5 * time.Second
)

// ============================================================================
// HTTP SERVER TIMEOUTS
// ============================================================================
//
// Use these for the API server. WriteTimeout must exceed FetchMax because a
// scan response cannot be written before its page fetch completes.
// ============================================================================

const (
	// ServerRead bounds request header+body reads (10s)
	ServerRead = 10 * time.Second

	// ServerWrite bounds response writes, sized for a full batch scan (3min)
	ServerWrite = 3 * time.Minute

	// ServerIdle bounds keep-alive connections (120s)
	ServerIdle = 120 * time.Second

	// ServerShutdown is the graceful drain window on SIGINT (5s)
	ServerShutdown = 5 * time.Second

	// MetricsRead bounds metrics scrape request reads (5s)
	MetricsRead = 5 * time.Second

	// MetricsWrite bounds metrics scrape response writes (10s)
	MetricsWrite = 10 * time.Second
)

// ============================================================================
// BATCH/WORKER INTERVALS
// ============================================================================

const (
	// BatchOverall bounds a whole default-sites batch scan (3min)
	BatchOverall = 3 * time.Minute

	// FetchSpacing is the minimum gap between fetch starts when pacing
	// a batch, so one batch does not hammer the browser pool (500ms)
	FetchSpacing = 500 * time.Millisecond

	// ProgressInterval is how often batch progress events are emitted (1s)
	ProgressInterval = 1 * time.Second
)

// ============================================================================
// CONSOLE DISPLAY
// ============================================================================

const (
	// SpinnerFrame is the redraw interval for the Unicode spinner (80ms)
	SpinnerFrame = 80 * time.Millisecond

	// SpinnerFrameASCII is the redraw interval for the ASCII fallback
	// spinner, slightly slower because it has fewer frames (100ms)
	SpinnerFrameASCII = 100 * time.Millisecond

	// StreamRefresh is how often streaming progress prints a line when
	// output is piped, kept slow so CI logs stay readable (2s)
	StreamRefresh = 2 * time.Second
)

// ============================================================================
// TELEMETRY
// ============================================================================

const (
	// TelemetryConnect bounds the OTLP exporter connection (10s)
	TelemetryConnect = 10 * time.Second

	// TelemetryShutdown bounds the flush of pending spans on close (5s)
	TelemetryShutdown = 5 * time.Second
)

// ============================================================================
// NETWORK/TRANSPORT
// ============================================================================
//
// Use these for the static fallback fetcher's transport.
// ============================================================================

const (
	// DialTimeout is for establishing TCP connections (10s)
	DialTimeout = 10 * time.Second

	// KeepAlive is for TCP keep-alive interval (30s)
	KeepAlive = 30 * time.Second

	// IdleConnTimeout is for idle connection pool timeout (90s)
	IdleConnTimeout = 90 * time.Second

	// TLSHandshake is for TLS handshake timeout (10s)
	TLSHandshake = 10 * time.Second
)
