package browser

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/authscope/authscope/pkg/defaults"
	"github.com/authscope/authscope/pkg/duration"
	"github.com/authscope/authscope/pkg/iohelper"
)

// Static fetches pages over plain HTTP without JavaScript execution. Used
// when no browser binary is available and for sites known to serve login
// markup statically. Non-UTF-8 documents are transcoded from their declared
// charset before parsing.
type Static struct {
	cfg    *Config
	client *http.Client
}

var _ Renderer = (*Static)(nil)

// NewStatic builds a Static fetcher. A nil config uses DefaultConfig.
func NewStatic(cfg *Config) *Static {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   duration.DialTimeout,
			KeepAlive: duration.KeepAlive,
		}).DialContext,
		TLSHandshakeTimeout: duration.TLSHandshake,
		IdleConnTimeout:     duration.IdleConnTimeout,
	}
	if cfg.Proxy != "" {
		if proxyURL, err := parseProxy(cfg.Proxy); err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}
	return &Static{
		cfg:    cfg,
		client: &http.Client{Transport: transport},
	}
}

// Render fetches the target without rendering. The Title field stays empty;
// the parser extracts it from markup instead.
func (s *Static) Render(ctx context.Context, target string) (*Page, error) {
	if s.cfg.Timeout > 0 {
		if _, hasDeadline := ctx.Deadline(); !hasDeadline {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
			defer cancel()
		}
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNavigation, err)
	}
	req.Header.Set("User-Agent", s.cfg.userAgent())
	req.Header.Set("Accept", defaults.AcceptHTML)
	req.Header.Set("Accept-Language", defaults.Locale+",en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer iohelper.DrainAndClose(resp.Body)

	mediaType, charset := splitContentType(resp.Header.Get("Content-Type"))
	page := &Page{
		URL:         target,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: mediaType,
	}
	if resp.StatusCode >= 400 {
		page.Elapsed = time.Since(start)
		return page, &StatusError{Code: resp.StatusCode}
	}

	body, err := decodeBody(iohelper.LimitPage(resp.Body), charset)
	if err != nil {
		return nil, classify(err)
	}
	page.HTML = body
	page.Elapsed = time.Since(start)
	return page, nil
}

// splitContentType separates the media type from its charset parameter.
func splitContentType(header string) (mediaType, charset string) {
	if header == "" {
		return "", ""
	}
	mt, params, err := mime.ParseMediaType(header)
	if err != nil {
		return header, ""
	}
	return mt, params["charset"]
}

// decodeBody reads the body, transcoding to UTF-8 when the charset names a
// known non-UTF-8 encoding. Unknown labels fall through undecoded rather
// than failing the fetch.
func decodeBody(r io.Reader, charset string) (string, error) {
	if charset != "" && !strings.EqualFold(charset, "utf-8") {
		if enc, err := htmlindex.Get(charset); err == nil && enc != nil {
			r = transform.NewReader(r, enc.NewDecoder())
		}
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
