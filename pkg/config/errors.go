package config

import "errors"

// Sentinel errors for configuration failure modes. Callers check them
// with errors.Is; the wrapped message carries the offending key/value.
var (
	// ErrInvalidConfig marks a configuration that parsed but cannot be
	// used: unknown renderer, negative rate limit, out-of-range metrics
	// port, or an AUTHSCOPE_* variable that fails type conversion.
	ErrInvalidConfig = errors.New("config: invalid configuration")

	// ErrMissingRequired marks a run with no scan targets. A target must
	// arrive via -u, -l, stdin, or a profile's site list.
	ErrMissingRequired = errors.New("config: missing required field")
)
