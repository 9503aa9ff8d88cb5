// Package defaults provides canonical default values for the entire codebase.
// This is the SINGLE SOURCE OF TRUTH for all runtime configuration defaults.
//
// Usage:
//
//	config.Concurrency = defaults.ConcurrencyBatch
//	req.Header.Set("Content-Type", defaults.ContentTypeJSON)
//
// DO NOT use hardcoded values like `Concurrency: 5` anywhere.
// Instead, reference the appropriate constant from this package.
package defaults

import "fmt"

// Version is the current authscope version
const Version = "1.2.0"

// ToolName identifies the scanner in telemetry and user agents
const ToolName = "authscope"

// ============================================================================
// NETWORK LISTEN
// ============================================================================

const (
	// ListenAddr is the default API listen address
	ListenAddr = ":5000"
)

// ============================================================================
// CONCURRENCY SETTINGS
// ============================================================================
//
// Use these for worker pools and parallel page fetches. Each in-flight fetch
// costs a browser tab, so batch parallelism stays deliberately small.
// ============================================================================

const (
	// ConcurrencySerial is for one-at-a-time operation (1)
	ConcurrencySerial = 1

	// ConcurrencyBatch is the default-sites batch pool size (5)
	ConcurrencyBatch = 5

	// ConcurrencyMax is the highest accepted batch pool size (10)
	ConcurrencyMax = 10
)

// ============================================================================
// BUFFER SIZES
// ============================================================================

const (
	// BufferSmall is for typical reads (4KB)
	BufferSmall = 4 * 1024

	// BufferMedium is for larger reads (32KB)
	BufferMedium = 32 * 1024

	// BufferMax is the maximum page body size accepted from a fetch (10MB)
	BufferMax = 10 * 1024 * 1024
)

// ============================================================================
// CHANNEL SIZES
// ============================================================================

const (
	// ChannelTiny is for small buffers (10)
	ChannelTiny = 10

	// ChannelSmall is for typical buffers (100)
	ChannelSmall = 100
)

// ============================================================================
// SNIPPET LIMITS
// ============================================================================
//
// Detection snippets are clipped so one giant form cannot bloat a response.
// ============================================================================

const (
	// SnippetMax is the maximum serialized snippet length in bytes (3000)
	SnippetMax = 3000

	// SnippetMarker is appended to a clipped snippet
	SnippetMarker = "\n<!-- ... truncated ... -->"

	// FingerprintPrefix is how many snippet bytes feed the fingerprint (200)
	FingerprintPrefix = 200

	// LabelMax is the maximum rune length of a control label (120)
	LabelMax = 120
)

// ============================================================================
// HTTP CONTENT TYPES
// ============================================================================

const (
	// ContentTypeJSON is application/json
	ContentTypeJSON = "application/json"

	// ContentTypeHTML is text/html
	ContentTypeHTML = "text/html"

	// ContentTypePlain is text/plain
	ContentTypePlain = "text/plain"
)

// ============================================================================
// HTTP ACCEPT HEADERS
// ============================================================================

const (
	// AcceptAll accepts any content type
	AcceptAll = "*/*"

	// AcceptHTML accepts HTML and related types (standard browser)
	AcceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

// ============================================================================
// BROWSER PROFILE
// ============================================================================
//
// The fetch profile presented to scanned sites. Matches a stock Mac Chrome
// so login pages serve their normal markup.
// ============================================================================

const (
	// UAChrome is the Chrome user agent presented by the renderer
	UAChrome = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// UAMinimal is a minimal user agent for tool-identified requests
	UAMinimal = ToolName + "/" + Version

	// ViewportWidth is the rendered page width (1280)
	ViewportWidth = 1280

	// ViewportHeight is the rendered page height (800)
	ViewportHeight = 800

	// Locale is the Accept-Language/browser locale
	Locale = "en-US"
)

// UserAgent returns the authscope user agent with context
func UserAgent(context string) string {
	if context == "" {
		return UAMinimal
	}
	return fmt.Sprintf("%s/%s (%s)", ToolName, Version, context)
}

// ============================================================================
// RATE LIMITING
// ============================================================================
//
// Use these for pacing batch fetch starts.
// ============================================================================

const (
	// RateLimitNone disables rate limiting (0)
	RateLimitNone = 0

	// RateLimitBatch is the default fetch starts per second in a batch (2)
	RateLimitBatch = 2
)

// ============================================================================
// THRESHOLDS
// ============================================================================

const (
	// MaxURLLength is the maximum accepted target URL length
	MaxURLLength = 8192

	// MaxBatchTargets is the maximum URLs accepted per batch scan
	MaxBatchTargets = 25
)
