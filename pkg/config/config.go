// Package config resolves scanner settings through a fixed precedence
// chain: built-in defaults, then a YAML config file, then AUTHSCOPE_*
// environment variables, then command-line flags. Each layer only
// overrides what it sets.
package config

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/authscope/authscope/pkg/defaults"
	"github.com/authscope/authscope/pkg/detect"
	"github.com/authscope/authscope/pkg/duration"
	"github.com/authscope/authscope/pkg/input"
)

// envPrefix namespaces every environment variable this package reads.
const envPrefix = "AUTHSCOPE_"

// Duration is a time.Duration that unmarshals from YAML scalars written
// either in Go duration syntax ("20s") or as bare seconds (20).
type Duration time.Duration

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if dur, err := time.ParseDuration(raw); err == nil {
		*d = Duration(dur)
		return nil
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		*d = Duration(time.Duration(secs * float64(time.Second)))
		return nil
	}
	return fmt.Errorf("invalid duration %q", raw)
}

// Config holds every scanner setting.
type Config struct {
	// Target settings
	Targets     input.StringSliceFlag `yaml:"targets"`
	TargetsFile string                `yaml:"targets_file"`
	Stdin       bool                  `yaml:"-"`

	// Fetch settings
	FetchTimeout Duration `yaml:"fetch_timeout"`
	Renderer     string   `yaml:"renderer"` // chrome, static, or auto
	Headless     bool     `yaml:"headless"`
	ChromePath   string   `yaml:"chrome_path"`
	Proxy        string   `yaml:"proxy"`

	// Detection settings
	Fallback  string                `yaml:"fallback_policy"`
	Providers input.StringSliceFlag `yaml:"providers"`

	// DefaultSites overrides the embedded batch site list. YAML only.
	DefaultSites []string `yaml:"default_sites"`

	// Batch settings
	Concurrency int     `yaml:"concurrency"`
	RatePerSec  float64 `yaml:"rate_per_sec"`

	// Server settings
	Listen string `yaml:"listen"`

	// Telemetry settings
	MetricsPort  int    `yaml:"metrics_port"`
	OTelEndpoint string `yaml:"otel_endpoint"`
	OTelInsecure bool   `yaml:"otel_insecure"`

	// Console and logging settings
	Verbose bool `yaml:"verbose"`
	JSONLog bool `yaml:"json_log"`
	Silent  bool `yaml:"silent"`
	NoColor bool `yaml:"no_color"`

	// ConfigFile is the -config flag value; never read from YAML.
	ConfigFile string `yaml:"-"`
}

// Default returns a Config with built-in defaults applied.
func Default() *Config {
	return &Config{
		FetchTimeout: Duration(duration.FetchDefault),
		Renderer:     "chrome",
		Headless:     true,
		Fallback:     detect.FallbackElement.String(),
		Providers:    append(input.StringSliceFlag(nil), detect.DefaultProviders...),
		Concurrency:  defaults.ConcurrencyBatch,
		RatePerSec:   defaults.RateLimitBatch,
		Listen:       defaults.ListenAddr,
	}
}

// Load builds a Config through the full precedence chain and validates it.
// path may be empty (no config file). args are the flag arguments, without
// the program name.
func Load(path string, fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays settings from a YAML file.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := c.LoadBytes(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	c.ConfigFile = path
	return nil
}

// LoadBytes overlays settings from raw YAML, as read from a config file or
// an embedded profile. Unknown keys are rejected so typos fail loudly
// instead of silently scanning with defaults.
func (c *Config) LoadBytes(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ApplyEnv overlays AUTHSCOPE_* environment variables. List-valued
// variables (targets, providers) replace the current value rather than
// appending to it.
func (c *Config) ApplyEnv() error {
	if v, ok := lookup("TARGETS"); ok {
		c.Targets = nil
		_ = c.Targets.Set(v)
	}
	envString("TARGETS_FILE", &c.TargetsFile)
	if err := envDuration("TIMEOUT", (*time.Duration)(&c.FetchTimeout)); err != nil {
		return err
	}
	envString("RENDERER", &c.Renderer)
	if err := envBool("HEADLESS", &c.Headless); err != nil {
		return err
	}
	envString("CHROME_PATH", &c.ChromePath)
	envString("PROXY", &c.Proxy)
	envString("FALLBACK", &c.Fallback)
	if v, ok := lookup("PROVIDERS"); ok {
		c.Providers = nil
		_ = c.Providers.Set(v)
	}
	if err := envInt("CONCURRENCY", &c.Concurrency); err != nil {
		return err
	}
	if err := envFloat("RATE", &c.RatePerSec); err != nil {
		return err
	}
	envString("LISTEN", &c.Listen)
	if err := envInt("METRICS_PORT", &c.MetricsPort); err != nil {
		return err
	}
	envString("OTEL_ENDPOINT", &c.OTelEndpoint)
	if err := envBool("OTEL_INSECURE", &c.OTelInsecure); err != nil {
		return err
	}
	if err := envBool("VERBOSE", &c.Verbose); err != nil {
		return err
	}
	if err := envBool("JSON_LOG", &c.JSONLog); err != nil {
		return err
	}
	if err := envBool("SILENT", &c.Silent); err != nil {
		return err
	}
	return envBool("NO_COLOR", &c.NoColor)
}

// RegisterFlags binds every flag to this Config on fs. Flag defaults are
// the Config's current values, so flags override only what the user passes.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	// === TARGETS ===
	// One shared wrapper so -u and -target accumulate into the same list.
	targets := newReplaceSlice(&c.Targets)
	fs.Var(targets, "u", "Target URL(s), comma-separated or repeated")
	fs.Var(targets, "target", "Target URL(s) (alias)")
	fs.StringVar(&c.TargetsFile, "l", c.TargetsFile, "File containing target URLs, one per line")
	fs.StringVar(&c.TargetsFile, "list", c.TargetsFile, "Targets file (alias)")
	fs.BoolVar(&c.Stdin, "stdin", c.Stdin, "Read targets from stdin")

	// === FETCH ===
	fs.DurationVar((*time.Duration)(&c.FetchTimeout), "timeout", time.Duration(c.FetchTimeout), "Page fetch timeout (clamped to 5s-30s)")
	fs.StringVar(&c.Renderer, "renderer", c.Renderer, "Renderer: chrome, static, or auto")
	fs.BoolVar(&c.Headless, "headless", c.Headless, "Run Chrome headless")
	fs.StringVar(&c.ChromePath, "chrome-path", c.ChromePath, "Chrome executable path (empty = auto-discover)")
	fs.StringVar(&c.Proxy, "proxy", c.Proxy, "HTTP/SOCKS5 proxy for page fetches")
	fs.StringVar(&c.Proxy, "x", c.Proxy, "Proxy (alias)")

	// === DETECTION ===
	fs.StringVar(&c.Fallback, "fallback", c.Fallback, "Password fallback policy: element or suppress")
	fs.Var(newReplaceSlice(&c.Providers), "providers", "OAuth provider allow-list, comma-separated")

	// === BATCH ===
	fs.IntVar(&c.Concurrency, "concurrency", c.Concurrency, "Concurrent page scans")
	fs.IntVar(&c.Concurrency, "c", c.Concurrency, "Concurrent page scans (alias)")
	fs.Float64Var(&c.RatePerSec, "rate", c.RatePerSec, "Max fetch starts per second (0 = unpaced)")

	// === SERVER ===
	fs.StringVar(&c.Listen, "listen", c.Listen, "API server listen address")

	// === TELEMETRY ===
	fs.IntVar(&c.MetricsPort, "metrics-port", c.MetricsPort, "Standalone Prometheus scrape port (0 = disabled)")
	fs.StringVar(&c.OTelEndpoint, "otel-endpoint", c.OTelEndpoint, "OTLP gRPC endpoint for tracing")
	fs.BoolVar(&c.OTelInsecure, "otel-insecure", c.OTelInsecure, "Plaintext OTLP connection")

	// === CONSOLE ===
	fs.BoolVar(&c.Verbose, "verbose", c.Verbose, "Debug logging")
	fs.BoolVar(&c.Verbose, "v", c.Verbose, "Verbose (alias)")
	fs.BoolVar(&c.JSONLog, "json-log", c.JSONLog, "JSON log lines instead of text")
	fs.BoolVar(&c.Silent, "silent", c.Silent, "Suppress banner and progress output")
	fs.BoolVar(&c.Silent, "s", c.Silent, "Silent (alias)")
	fs.BoolVar(&c.NoColor, "no-color", c.NoColor, "Disable colored output")
	fs.BoolVar(&c.NoColor, "nc", c.NoColor, "No color (alias)")

	fs.StringVar(&c.ConfigFile, "config", c.ConfigFile, "YAML config file")
}

// Validate clamps tunable values into their accepted ranges and rejects
// settings with no sane correction.
func (c *Config) Validate() error {
	if c.FetchTimeout < Duration(duration.FetchMin) {
		c.FetchTimeout = Duration(duration.FetchMin)
	}
	if c.FetchTimeout > Duration(duration.FetchMax) {
		c.FetchTimeout = Duration(duration.FetchMax)
	}
	if c.Concurrency < defaults.ConcurrencySerial {
		c.Concurrency = defaults.ConcurrencySerial
	}
	if c.Concurrency > defaults.ConcurrencyMax {
		c.Concurrency = defaults.ConcurrencyMax
	}

	switch c.Renderer {
	case "chrome", "static", "auto":
	default:
		return fmt.Errorf("%w: renderer %q (want chrome, static, or auto)", ErrInvalidConfig, c.Renderer)
	}
	if _, err := detect.ParseFallbackPolicy(c.Fallback); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.RatePerSec < 0 {
		return fmt.Errorf("%w: rate_per_sec must be non-negative, got %g", ErrInvalidConfig, c.RatePerSec)
	}
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		return fmt.Errorf("%w: metrics_port %d out of range", ErrInvalidConfig, c.MetricsPort)
	}
	return nil
}

// FallbackPolicy returns the parsed fallback policy. Call after Validate
// has accepted the configuration.
func (c *Config) FallbackPolicy() detect.FallbackPolicy {
	p, _ := detect.ParseFallbackPolicy(c.Fallback)
	return p
}

// Timeout returns the page fetch timeout as a time.Duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.FetchTimeout)
}

// ResolveFile locates the config file before flags are parsed: an explicit
// -config argument wins, then AUTHSCOPE_CONFIG, then authscope.yaml in the
// working directory when present. Returns "" when there is none.
func ResolveFile(args []string) string {
	for i := 0; i < len(args); i++ {
		for _, name := range []string{"-config", "--config"} {
			if args[i] == name && i+1 < len(args) {
				return args[i+1]
			}
			if strings.HasPrefix(args[i], name+"=") {
				return strings.TrimPrefix(args[i], name+"=")
			}
		}
	}
	if v := os.Getenv(envPrefix + "CONFIG"); v != "" {
		return v
	}
	if _, err := os.Stat("authscope.yaml"); err == nil {
		return "authscope.yaml"
	}
	return ""
}

// replaceSlice adapts a StringSliceFlag so the first flag occurrence
// replaces the current value instead of appending to it. Without this,
// -providers google would extend the default allow-list rather than
// narrow it.
type replaceSlice struct {
	slice *input.StringSliceFlag
	set   bool
}

func newReplaceSlice(s *input.StringSliceFlag) *replaceSlice {
	return &replaceSlice{slice: s}
}

func (r *replaceSlice) String() string {
	if r.slice == nil {
		return ""
	}
	return r.slice.String()
}

func (r *replaceSlice) Set(v string) error {
	if !r.set {
		*r.slice = nil
		r.set = true
	}
	return r.slice.Set(v)
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + key)
	return v, ok && v != ""
}

func envString(key string, dst *string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func envBool(key string, dst *bool) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%w: %s%s=%q is not a boolean", ErrInvalidConfig, envPrefix, key, v)
	}
	*dst = parsed
	return nil
}

func envInt(key string, dst *int) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%w: %s%s=%q is not an integer", ErrInvalidConfig, envPrefix, key, v)
	}
	*dst = parsed
	return nil
}

func envFloat(key string, dst *float64) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%w: %s%s=%q is not a number", ErrInvalidConfig, envPrefix, key, v)
	}
	*dst = parsed
	return nil
}

// envDuration accepts Go duration syntax ("20s") or bare seconds ("20").
func envDuration(key string, dst *time.Duration) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
		return nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(secs) * time.Second
		return nil
	}
	return fmt.Errorf("%w: %s%s=%q is not a duration", ErrInvalidConfig, envPrefix, key, v)
}
