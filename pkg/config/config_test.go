package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/authscope/authscope/pkg/defaults"
	"github.com/authscope/authscope/pkg/detect"
)

// newFlagSet returns a throwaway FlagSet so tests never touch the global
// flag.CommandLine.
func newFlagSet() *flag.FlagSet {
	return flag.NewFlagSet("test", flag.ContinueOnError)
}

// TestConfigDefaults verifies the built-in defaults
func TestConfigDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Timeout() != 15*time.Second {
		t.Errorf("FetchTimeout default: got %v, want 15s", cfg.Timeout())
	}
	if cfg.Renderer != "chrome" {
		t.Errorf("Renderer default: got %q, want 'chrome'", cfg.Renderer)
	}
	if !cfg.Headless {
		t.Error("Headless should default to true")
	}
	if cfg.Fallback != "element" {
		t.Errorf("Fallback default: got %q, want 'element'", cfg.Fallback)
	}
	if len(cfg.Providers) != len(detect.DefaultProviders) {
		t.Errorf("Providers default: got %d entries, want %d", len(cfg.Providers), len(detect.DefaultProviders))
	}
	if cfg.Concurrency != defaults.ConcurrencyBatch {
		t.Errorf("Concurrency default: got %d, want %d", cfg.Concurrency, defaults.ConcurrencyBatch)
	}
	if cfg.RatePerSec != defaults.RateLimitBatch {
		t.Errorf("RatePerSec default: got %g, want %d", cfg.RatePerSec, defaults.RateLimitBatch)
	}
	if cfg.Listen != defaults.ListenAddr {
		t.Errorf("Listen default: got %q, want %q", cfg.Listen, defaults.ListenAddr)
	}
}

// TestConfigLoadFile verifies YAML overlay on top of defaults
func TestConfigLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authscope.yaml")
	yaml := `fetch_timeout: 20s
renderer: static
concurrency: 8
providers:
  - google
  - apple
silent: true
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := cfg.LoadFile(path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Timeout() != 20*time.Second {
		t.Errorf("FetchTimeout: got %v, want 20s", cfg.Timeout())
	}
	if cfg.Renderer != "static" {
		t.Errorf("Renderer: got %q, want 'static'", cfg.Renderer)
	}
	if cfg.Concurrency != 8 {
		t.Errorf("Concurrency: got %d, want 8", cfg.Concurrency)
	}
	if len(cfg.Providers) != 2 || cfg.Providers[0] != "google" {
		t.Errorf("Providers: got %v, want [google apple]", cfg.Providers)
	}
	if !cfg.Silent {
		t.Error("Silent should be true from file")
	}
	// Keys the file does not set keep their defaults.
	if cfg.Listen != defaults.ListenAddr {
		t.Errorf("Listen should keep default, got %q", cfg.Listen)
	}
	if cfg.ConfigFile != path {
		t.Errorf("ConfigFile: got %q, want %q", cfg.ConfigFile, path)
	}
}

// TestConfigLoadFileBareSeconds verifies numeric timeouts are read as seconds
func TestConfigLoadFileBareSeconds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authscope.yaml")
	if err := os.WriteFile(path, []byte("fetch_timeout: 20\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := cfg.LoadFile(path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Timeout() != 20*time.Second {
		t.Errorf("FetchTimeout: got %v, want 20s", cfg.Timeout())
	}
}

// TestConfigLoadFileUnknownKey verifies typos fail instead of being ignored
func TestConfigLoadFileUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authscope.yaml")
	if err := os.WriteFile(path, []byte("concurency: 9\n"), 0644); err != nil {
		t.Fatal(err)
	}

	err := Default().LoadFile(path)
	if err == nil {
		t.Fatal("LoadFile should reject unknown keys")
	}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("error should wrap ErrInvalidConfig, got %v", err)
	}
}

// TestConfigLoadFileMissing verifies a clear error for absent files
func TestConfigLoadFileMissing(t *testing.T) {
	err := Default().LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("LoadFile should fail for a missing file")
	}
}

// TestConfigApplyEnv verifies AUTHSCOPE_* variables overlay the config
func TestConfigApplyEnv(t *testing.T) {
	t.Setenv("AUTHSCOPE_RENDERER", "static")
	t.Setenv("AUTHSCOPE_TIMEOUT", "25s")
	t.Setenv("AUTHSCOPE_CONCURRENCY", "3")
	t.Setenv("AUTHSCOPE_PROVIDERS", "google,apple")
	t.Setenv("AUTHSCOPE_SILENT", "true")

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}

	if cfg.Renderer != "static" {
		t.Errorf("Renderer: got %q, want 'static'", cfg.Renderer)
	}
	if cfg.Timeout() != 25*time.Second {
		t.Errorf("FetchTimeout: got %v, want 25s", cfg.Timeout())
	}
	if cfg.Concurrency != 3 {
		t.Errorf("Concurrency: got %d, want 3", cfg.Concurrency)
	}
	if len(cfg.Providers) != 2 {
		t.Errorf("Providers should be replaced, not extended: got %v", cfg.Providers)
	}
	if !cfg.Silent {
		t.Error("Silent should be true from env")
	}
}

// TestConfigApplyEnvBareSeconds verifies AUTHSCOPE_TIMEOUT=20 means 20 seconds
func TestConfigApplyEnvBareSeconds(t *testing.T) {
	t.Setenv("AUTHSCOPE_TIMEOUT", "20")

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if cfg.Timeout() != 20*time.Second {
		t.Errorf("FetchTimeout: got %v, want 20s", cfg.Timeout())
	}
}

// TestConfigApplyEnvBadValue verifies malformed variables are rejected
func TestConfigApplyEnvBadValue(t *testing.T) {
	t.Setenv("AUTHSCOPE_HEADLESS", "maybe")

	err := Default().ApplyEnv()
	if err == nil {
		t.Fatal("ApplyEnv should reject a non-boolean AUTHSCOPE_HEADLESS")
	}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("error should wrap ErrInvalidConfig, got %v", err)
	}
}

// TestConfigFlagOverridesEnv verifies the precedence chain end to end
func TestConfigFlagOverridesEnv(t *testing.T) {
	t.Setenv("AUTHSCOPE_CONCURRENCY", "3")
	t.Setenv("AUTHSCOPE_RENDERER", "static")

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}

	fs := newFlagSet()
	cfg.RegisterFlags(fs)
	if err := fs.Parse([]string{"-c", "7"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Concurrency != 7 {
		t.Errorf("flag should beat env: got %d, want 7", cfg.Concurrency)
	}
	// A setting only env touched keeps the env value.
	if cfg.Renderer != "static" {
		t.Errorf("Renderer should keep env value, got %q", cfg.Renderer)
	}
}

// TestConfigFlagAliases verifies short and long spellings bind the same field
func TestConfigFlagAliases(t *testing.T) {
	testCases := []struct {
		name  string
		args  []string
		check func(*Config) bool
	}{
		{"concurrency short", []string{"-c", "9"}, func(c *Config) bool { return c.Concurrency == 9 }},
		{"concurrency long", []string{"-concurrency", "9"}, func(c *Config) bool { return c.Concurrency == 9 }},
		{"verbose short", []string{"-v"}, func(c *Config) bool { return c.Verbose }},
		{"verbose long", []string{"-verbose"}, func(c *Config) bool { return c.Verbose }},
		{"silent short", []string{"-s"}, func(c *Config) bool { return c.Silent }},
		{"no-color short", []string{"-nc"}, func(c *Config) bool { return c.NoColor }},
		{"list long", []string{"-list", "targets.txt"}, func(c *Config) bool { return c.TargetsFile == "targets.txt" }},
		{"timeout", []string{"-timeout", "25s"}, func(c *Config) bool { return c.Timeout() == 25*time.Second }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			fs := newFlagSet()
			cfg.RegisterFlags(fs)
			if err := fs.Parse(tc.args); err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if !tc.check(cfg) {
				t.Errorf("flag %v did not apply", tc.args)
			}
		})
	}
}

// TestConfigTargetAliasesShareList verifies -u and -target accumulate together
func TestConfigTargetAliasesShareList(t *testing.T) {
	cfg := Default()
	fs := newFlagSet()
	cfg.RegisterFlags(fs)

	err := fs.Parse([]string{"-u", "https://a.example/login", "-target", "https://b.example/login"})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(cfg.Targets) != 2 {
		t.Errorf("expected 2 targets from mixed aliases, got %v", cfg.Targets)
	}
}

// TestConfigProvidersFlagReplaces verifies -providers narrows the allow-list
func TestConfigProvidersFlagReplaces(t *testing.T) {
	cfg := Default()
	fs := newFlagSet()
	cfg.RegisterFlags(fs)

	if err := fs.Parse([]string{"-providers", "google"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(cfg.Providers) != 1 || cfg.Providers[0] != "google" {
		t.Errorf("Providers should be replaced by the flag, got %v", cfg.Providers)
	}
}

// TestConfigValidateClampsTimeout verifies the 5s-30s fetch window
func TestConfigValidateClampsTimeout(t *testing.T) {
	testCases := []struct {
		name string
		in   time.Duration
		want time.Duration
	}{
		{"below minimum", 1 * time.Second, 5 * time.Second},
		{"zero", 0, 5 * time.Second},
		{"in range", 15 * time.Second, 15 * time.Second},
		{"above maximum", 45 * time.Second, 30 * time.Second},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.FetchTimeout = Duration(tc.in)
			if err := cfg.Validate(); err != nil {
				t.Fatalf("Validate failed: %v", err)
			}
			if cfg.Timeout() != tc.want {
				t.Errorf("got %v, want %v", cfg.Timeout(), tc.want)
			}
		})
	}
}

// TestConfigValidateClampsConcurrency verifies the 1..max worker window
func TestConfigValidateClampsConcurrency(t *testing.T) {
	testCases := []struct {
		name string
		in   int
		want int
	}{
		{"zero", 0, 1},
		{"negative", -3, 1},
		{"in range", 7, 7},
		{"above maximum", 50, defaults.ConcurrencyMax},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.Concurrency = tc.in
			if err := cfg.Validate(); err != nil {
				t.Fatalf("Validate failed: %v", err)
			}
			if cfg.Concurrency != tc.want {
				t.Errorf("got %d, want %d", cfg.Concurrency, tc.want)
			}
		})
	}
}

// TestConfigValidateRejects verifies settings with no sane correction fail
func TestConfigValidateRejects(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad renderer", func(c *Config) { c.Renderer = "firefox" }},
		{"bad fallback", func(c *Config) { c.Fallback = "ignore" }},
		{"negative rate", func(c *Config) { c.RatePerSec = -1 }},
		{"metrics port out of range", func(c *Config) { c.MetricsPort = 70000 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate should have failed")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error should wrap ErrInvalidConfig, got %v", err)
			}
		})
	}
}

// TestConfigFallbackPolicy verifies the parsed-policy accessor
func TestConfigFallbackPolicy(t *testing.T) {
	cfg := Default()
	if cfg.FallbackPolicy() != detect.FallbackElement {
		t.Errorf("default policy: got %v, want element", cfg.FallbackPolicy())
	}

	cfg.Fallback = "suppress"
	if cfg.FallbackPolicy() != detect.FallbackSuppress {
		t.Errorf("suppress policy: got %v, want suppress", cfg.FallbackPolicy())
	}
}

// TestConfigResolveFile verifies config file discovery order
func TestConfigResolveFile(t *testing.T) {
	t.Setenv("AUTHSCOPE_CONFIG", "")

	if got := ResolveFile([]string{"-config", "from-flag.yaml"}); got != "from-flag.yaml" {
		t.Errorf("explicit -config: got %q", got)
	}
	if got := ResolveFile([]string{"--config=eq.yaml"}); got != "eq.yaml" {
		t.Errorf("--config= form: got %q", got)
	}

	t.Setenv("AUTHSCOPE_CONFIG", "from-env.yaml")
	if got := ResolveFile(nil); got != "from-env.yaml" {
		t.Errorf("env fallback: got %q", got)
	}
	if got := ResolveFile([]string{"-config", "flag-wins.yaml"}); got != "flag-wins.yaml" {
		t.Errorf("flag should beat env: got %q", got)
	}

	t.Setenv("AUTHSCOPE_CONFIG", "")
	if got := ResolveFile(nil); got != "" {
		t.Errorf("no config anywhere: got %q, want empty", got)
	}
}

// TestConfigLoadFullChain verifies defaults, file, env, and flags compose
func TestConfigLoadFullChain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authscope.yaml")
	yaml := "renderer: static\nconcurrency: 8\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("AUTHSCOPE_RATE", "4.5")

	cfg, err := Load(path, newFlagSet(), []string{"-timeout", "25s"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Renderer != "static" {
		t.Errorf("file layer lost: Renderer %q", cfg.Renderer)
	}
	if cfg.Concurrency != 8 {
		t.Errorf("file layer lost: Concurrency %d", cfg.Concurrency)
	}
	if cfg.RatePerSec != 4.5 {
		t.Errorf("env layer lost: RatePerSec %g", cfg.RatePerSec)
	}
	if cfg.Timeout() != 25*time.Second {
		t.Errorf("flag layer lost: FetchTimeout %v", cfg.Timeout())
	}
	// Untouched settings keep their defaults.
	if cfg.Fallback != "element" {
		t.Errorf("default layer lost: Fallback %q", cfg.Fallback)
	}
}
