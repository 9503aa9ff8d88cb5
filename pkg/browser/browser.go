// Package browser is the page snapshot provider. It drives a headless Chrome
// via chromedp to retrieve fully rendered HTML after JavaScript has settled,
// with a plain HTTP fallback for environments without a browser binary.
//
// Rendering is the only slow, failure-prone stage of a scan, so everything
// here is bounded: navigation runs under the configured fetch timeout and
// browser teardown is force-killed if it hangs.
package browser

import (
	"context"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/authscope/authscope/pkg/defaults"
	"github.com/authscope/authscope/pkg/duration"
)

// Page is one rendered snapshot of a target URL.
type Page struct {
	// URL is the requested target.
	URL string `json:"url"`

	// FinalURL is the address after redirects settled.
	FinalURL string `json:"final_url,omitempty"`

	// HTML is the serialized document after rendering.
	HTML string `json:"-"`

	// Title is the document title as reported by the browser. Empty for the
	// static fetcher, which leaves title extraction to the parser.
	Title string `json:"title,omitempty"`

	// StatusCode is the main document's HTTP status, 0 if it never arrived.
	StatusCode int `json:"status_code,omitempty"`

	// ContentType is the main document's MIME type.
	ContentType string `json:"content_type,omitempty"`

	// Elapsed is wall time spent fetching and rendering.
	Elapsed time.Duration `json:"elapsed"`
}

// Renderer turns a target URL into a rendered Page. Implementations must
// honor context cancellation and return a classified error (see errors.go)
// on failure.
type Renderer interface {
	Render(ctx context.Context, target string) (*Page, error)
}

// Config holds snapshot provider settings.
type Config struct {
	// Timeout bounds one full fetch+render. Applied only when the caller's
	// context carries no deadline of its own.
	Timeout time.Duration `json:"timeout"`

	// Headless hides the browser window. Off only for local debugging.
	Headless bool `json:"headless"`

	// ChromePath overrides browser binary discovery.
	ChromePath string `json:"chrome_path,omitempty"`

	// Proxy routes browser traffic through an HTTP/SOCKS5 proxy.
	Proxy string `json:"proxy,omitempty"`

	// UserAgent is presented to scanned sites.
	UserAgent string `json:"user_agent"`
}

// DefaultConfig returns the stock rendering profile: headless, default fetch
// window, desktop Chrome identity.
func DefaultConfig() *Config {
	return &Config{
		Timeout:   duration.FetchDefault,
		Headless:  true,
		UserAgent: defaults.UAChrome,
	}
}

// Chrome renders pages with a real browser engine. Each Render launches a
// fresh browser context so scans never share cookies or cache.
type Chrome struct {
	cfg *Config
}

var _ Renderer = (*Chrome)(nil)

// NewChrome builds a Chrome renderer. A nil config uses DefaultConfig.
func NewChrome(cfg *Config) *Chrome {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Chrome{cfg: cfg}
}

// Render navigates to target, waits for the load event plus a settle delay so
// script-driven login widgets finish mounting, and captures the resulting
// document.
func (c *Chrome) Render(ctx context.Context, target string) (*Page, error) {
	if c.cfg.Timeout > 0 {
		if _, hasDeadline := ctx.Deadline(); !hasDeadline {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
			defer cancel()
		}
	}

	start := time.Now()

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, c.options()...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer stopBrowser(browserCtx, browserCancel, allocCancel)

	// Capture the main document's response out of the network event stream.
	// The first document-type response is the top frame: sub-frame documents
	// arrive only after the main document exists.
	var (
		mu          sync.Mutex
		status      int
		contentType string
	)
	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		e, ok := ev.(*network.EventResponseReceived)
		if !ok || e.Type != network.ResourceTypeDocument {
			return
		}
		mu.Lock()
		if status == 0 {
			status = int(e.Response.Status)
			contentType = e.Response.MimeType
		}
		mu.Unlock()
	})

	page := &Page{URL: target}
	err := chromedp.Run(browserCtx,
		network.Enable(),
		chromedp.ActionFunc(func(ctx context.Context) error {
			headers := network.Headers{
				"Accept-Language": defaults.Locale + ",en;q=0.9",
			}
			return network.SetExtraHTTPHeaders(headers).Do(ctx)
		}),
		chromedp.Navigate(target),
		chromedp.Sleep(duration.RenderSettle),
		chromedp.Title(&page.Title),
		chromedp.Location(&page.FinalURL),
		chromedp.OuterHTML("html", &page.HTML, chromedp.ByQuery),
	)
	page.Elapsed = time.Since(start)
	if err != nil {
		return nil, classify(err)
	}

	mu.Lock()
	page.StatusCode = status
	page.ContentType = contentType
	mu.Unlock()

	if page.StatusCode >= 400 {
		return page, &StatusError{Code: page.StatusCode}
	}
	return page, nil
}

// options assembles the Chrome launch flags. Starts from chromedp's defaults
// and layers the container-safe flags login pages tolerate; for a visible
// browser the stock Headless option is skipped, since
// DefaultExecAllocatorOptions bakes it in at a fixed position.
func (c *Chrome) options() []chromedp.ExecAllocatorOption {
	var opts []chromedp.ExecAllocatorOption
	if c.cfg.Headless {
		opts = append(opts, chromedp.DefaultExecAllocatorOptions[:]...)
	} else {
		defaultOpts := chromedp.DefaultExecAllocatorOptions[:]
		opts = append(opts, defaultOpts[0], defaultOpts[1])
		opts = append(opts, defaultOpts[3:]...)
	}

	opts = append(opts,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("lang", defaults.Locale),
		chromedp.WindowSize(defaults.ViewportWidth, defaults.ViewportHeight),
		chromedp.UserAgent(c.cfg.userAgent()),
	)

	if c.cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(c.cfg.ChromePath))
	}
	if c.cfg.Proxy != "" {
		opts = append(opts, chromedp.ProxyServer(c.cfg.Proxy))
	}
	return opts
}

func (c *Config) userAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return defaults.UAChrome
}

// parseProxy validates a proxy address, defaulting bare host:port to http.
func parseProxy(raw string) (*url.URL, error) {
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	return url.Parse(raw)
}

// stopBrowser cancels chromedp contexts with a deadline. Allocator cancel can
// block waiting for Chrome child processes (GPU, renderer) to exit; when it
// does, the whole process tree is force-killed instead.
func stopBrowser(browserCtx context.Context, cancels ...context.CancelFunc) {
	// Capture the browser process before cancelling; afterwards the
	// reference may be nil.
	var proc *os.Process
	if c := chromedp.FromContext(browserCtx); c != nil && c.Browser != nil {
		proc = c.Browser.Process()
	}

	done := make(chan struct{})
	go func() {
		for _, cancel := range cancels {
			cancel()
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(duration.BrowserStop):
		killProcessTree(proc)
	}
}

// chromeNames are binary names probed on PATH, most specific first.
var chromeNames = []string{
	"google-chrome-stable",
	"google-chrome",
	"chromium-browser",
	"chromium",
	"chrome",
}

// chromePaths are well-known install locations probed when PATH lookup fails.
var chromePaths = []string{
	"/usr/bin/google-chrome",
	"/usr/bin/chromium-browser",
	"/usr/bin/chromium",
	"/snap/bin/chromium",
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Chromium.app/Contents/MacOS/Chromium",
	`C:\Program Files\Google\Chrome\Application\chrome.exe`,
	`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
}

// Available reports whether a Chrome/Chromium binary can be found, checking
// an explicit path first, then PATH, then well-known install locations.
func Available(explicit string) bool {
	if explicit != "" {
		_, err := os.Stat(explicit)
		return err == nil
	}
	for _, name := range chromeNames {
		if path, err := exec.LookPath(name); err == nil && path != "" {
			return true
		}
	}
	for _, path := range chromePaths {
		if _, err := os.Stat(path); err == nil {
			return true
		}
	}
	return false
}
