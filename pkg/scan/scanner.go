// Package scan orchestrates the pipeline: snapshot the page, parse the
// markup, run detection, shape the result. It owns target normalization,
// per-target de-duplication of concurrent scans, and batch fan-out.
package scan

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/authscope/authscope/pkg/browser"
	"github.com/authscope/authscope/pkg/config"
	"github.com/authscope/authscope/pkg/defaults"
	"github.com/authscope/authscope/pkg/detect"
	"github.com/authscope/authscope/pkg/dom"
	"github.com/authscope/authscope/pkg/output/events"
	"github.com/authscope/authscope/presets"
)

// ErrInvalidTarget marks a target that cannot become a scannable URL.
var ErrInvalidTarget = errors.New("scan: invalid target URL")

// Scanner runs the fetch, parse, detect pipeline. Safe for concurrent use;
// concurrent scans of the same normalized target collapse into one.
type Scanner struct {
	renderer     browser.Renderer
	rendererName string
	engine       *detect.Engine
	timeout      time.Duration
	sites        []string
	group        singleflight.Group
}

// Option configures a Scanner beyond what config carries.
type Option func(*Scanner)

// WithRenderer injects a snapshot provider. Tests use this to stub out the
// network; name annotates results.
func WithRenderer(name string, r browser.Renderer) Option {
	return func(s *Scanner) {
		s.rendererName = name
		s.renderer = r
	}
}

// New builds a Scanner from configuration. A nil config uses the defaults.
func New(cfg *config.Config, opts ...Option) *Scanner {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Scanner{
		timeout: cfg.Timeout(),
		engine: detect.New(
			detect.WithFallback(cfg.FallbackPolicy()),
			detect.WithProviders(cfg.Providers),
		),
		sites: presets.DefaultSites(),
	}
	if len(cfg.DefaultSites) > 0 {
		s.sites = append([]string(nil), cfg.DefaultSites...)
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.renderer == nil {
		s.rendererName, s.renderer = buildRenderer(cfg)
	}
	return s
}

// buildRenderer maps the configured renderer mode to a snapshot provider.
// "auto" probes for a Chrome binary and falls back to the static fetcher.
func buildRenderer(cfg *config.Config) (string, browser.Renderer) {
	bcfg := &browser.Config{
		Timeout:    cfg.Timeout(),
		Headless:   cfg.Headless,
		ChromePath: cfg.ChromePath,
		Proxy:      cfg.Proxy,
		UserAgent:  defaults.UAChrome,
	}
	mode := cfg.Renderer
	if mode == "auto" {
		if browser.Available(cfg.ChromePath) {
			mode = "chrome"
		} else {
			mode = "static"
		}
	}
	if mode == "chrome" {
		return "chrome", browser.NewChrome(bcfg)
	}
	return "static", browser.NewStatic(bcfg)
}

// RendererName reports which snapshot provider this scanner fetches with.
func (s *Scanner) RendererName() string {
	return s.rendererName
}

// DefaultSites returns the batch site list this scanner was built with:
// the config override when present, else the embedded preset.
func (s *Scanner) DefaultSites() []string {
	return append([]string(nil), s.sites...)
}

// NormalizeTarget trims the raw target, defaults the scheme to https://,
// and requires a host component.
func NormalizeTarget(raw string) (string, error) {
	t := strings.TrimSpace(raw)
	if t == "" {
		return "", fmt.Errorf("%w: empty target", ErrInvalidTarget)
	}
	if !strings.HasPrefix(t, "http://") && !strings.HasPrefix(t, "https://") {
		t = "https://" + t
	}
	u, err := url.Parse(t)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidTarget, raw)
	}
	return t, nil
}

// ScanPage scans one target. The error return covers only targets that
// cannot be normalized; fetch and detection failures land inside the
// Result. Concurrent calls for the same normalized target share a single
// scan, so callers must treat the Result as read-only.
func (s *Scanner) ScanPage(ctx context.Context, rawURL string) (*Result, error) {
	target, err := NormalizeTarget(rawURL)
	if err != nil {
		return nil, err
	}
	v, _, _ := s.group.Do(target, func() (interface{}, error) {
		return s.scanOnce(ctx, target), nil
	})
	return v.(*Result), nil
}

// scanOnce runs the pipeline for one normalized target under the per-page
// fetch window.
func (s *Scanner) scanOnce(ctx context.Context, target string) *Result {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res := &Result{
		ScanID:   uuid.NewString(),
		URL:      target,
		Renderer: s.rendererName,
	}
	start := time.Now()
	defer func() { res.ScanTime = roundSeconds(time.Since(start)) }()

	page, err := s.renderer.Render(ctx, target)
	if err != nil {
		res.Error = browser.Reason(err)
		res.Failure = failureType(err)
		if page != nil {
			res.StatusCode = page.StatusCode
			res.FinalURL = finalURL(target, page.FinalURL)
		}
		return res
	}

	res.StatusCode = page.StatusCode
	res.FinalURL = finalURL(target, page.FinalURL)

	doc, err := dom.ParseString(page.HTML)
	if err != nil {
		res.Error = "Error: " + err.Error()
		res.Failure = events.ErrorTypeInternal
		return res
	}
	doc.Clean()

	res.Success = true
	res.Title = page.Title
	if res.Title == "" {
		res.Title = doc.Title()
	}
	if res.Title == "" {
		res.Title = "No title"
	}

	res.Auth = detect.BuildReport(s.engine.Detect(doc))
	return res
}

// finalURL keeps the redirect destination only when it differs from the
// requested target.
func finalURL(target, final string) string {
	if final == "" || final == target {
		return ""
	}
	return final
}

// roundSeconds converts wall time to seconds with two decimals.
func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}
