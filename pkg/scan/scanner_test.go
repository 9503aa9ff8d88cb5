package scan

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authscope/authscope/pkg/browser"
	"github.com/authscope/authscope/pkg/config"
	"github.com/authscope/authscope/pkg/output/events"
)

const loginPage = `<!DOCTYPE html>
<html>
<head><title>Sign in</title></head>
<body>
<form id="login-form" action="/session" method="post">
  <input type="text" name="login" placeholder="Username">
  <input type="password" name="password">
  <button type="submit">Sign in</button>
</form>
</body>
</html>`

const plainPage = `<!DOCTYPE html>
<html>
<head><title>Pricing</title></head>
<body><main><h1>Plans</h1><p>Monthly or yearly.</p></main></body>
</html>`

const barePasswordPage = `<html><body><div class="content"><input type="password" name="pw"></div></body></html>`

const oauthPage = `<html><head><title>Welcome</title></head><body><button>Sign in with Globex</button></body></html>`

// renderFunc adapts a function to browser.Renderer for tests.
type renderFunc func(ctx context.Context, target string) (*browser.Page, error)

func (f renderFunc) Render(ctx context.Context, target string) (*browser.Page, error) {
	return f(ctx, target)
}

// stubScanner builds a Scanner whose renderer serves pages from a map.
// Targets missing from the map fail with a navigation error.
func stubScanner(t *testing.T, cfg *config.Config, pages map[string]string) *Scanner {
	t.Helper()
	rf := renderFunc(func(_ context.Context, target string) (*browser.Page, error) {
		html, ok := pages[target]
		if !ok {
			return nil, fmt.Errorf("%w: no route to host", browser.ErrNavigation)
		}
		return &browser.Page{URL: target, HTML: html, StatusCode: 200}, nil
	})
	return New(cfg, WithRenderer("stub", rf))
}

func TestScanPageSuccess(t *testing.T) {
	s := stubScanner(t, nil, map[string]string{"https://example.com/login": loginPage})

	res, err := s.ScanPage(context.Background(), "https://example.com/login")
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Empty(t, res.Error)
	assert.Equal(t, "https://example.com/login", res.URL)
	assert.Equal(t, 200, res.StatusCode)
	assert.Equal(t, "Sign in", res.Title)
	assert.Equal(t, "stub", res.Renderer)
	assert.NotEmpty(t, res.ScanID)
	assert.GreaterOrEqual(t, res.ScanTime, 0.0)

	require.NotNil(t, res.Auth)
	assert.True(t, res.Auth.Found)
	assert.Equal(t, 1, res.Auth.Counts["password_field_form"])
}

func TestScanPageNormalizesTarget(t *testing.T) {
	var got string
	rf := renderFunc(func(_ context.Context, target string) (*browser.Page, error) {
		got = target
		return &browser.Page{URL: target, HTML: plainPage, StatusCode: 200}, nil
	})
	s := New(nil, WithRenderer("stub", rf))

	res, err := s.ScanPage(context.Background(), "  example.com/login  ")
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/login", got)
	assert.Equal(t, "https://example.com/login", res.URL)
}

func TestScanPageInvalidTarget(t *testing.T) {
	s := stubScanner(t, nil, nil)

	for _, raw := range []string{"", "   ", "https://", "https://exa mple.com"} {
		t.Run(fmt.Sprintf("%q", raw), func(t *testing.T) {
			res, err := s.ScanPage(context.Background(), raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTarget))
			assert.Nil(t, res)
		})
	}
}

func TestScanPageFetchTimeout(t *testing.T) {
	rf := renderFunc(func(_ context.Context, _ string) (*browser.Page, error) {
		return nil, fmt.Errorf("%w: context deadline exceeded", browser.ErrTimeout)
	})
	s := New(nil, WithRenderer("stub", rf))

	res, err := s.ScanPage(context.Background(), "https://slow.example")
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, "Request timed out — site took too long to respond.", res.Error)
	assert.Equal(t, events.ErrorTypeTimeout, res.Failure)
	assert.Nil(t, res.Auth)
	assert.Equal(t, "error", res.Outcome())
}

func TestScanPageHTTPError(t *testing.T) {
	rf := renderFunc(func(_ context.Context, target string) (*browser.Page, error) {
		return &browser.Page{URL: target, StatusCode: 403}, &browser.StatusError{Code: 403}
	})
	s := New(nil, WithRenderer("stub", rf))

	res, err := s.ScanPage(context.Background(), "https://blocked.example")
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, "HTTP error: 403", res.Error)
	assert.Equal(t, events.ErrorTypeHTTPStatus, res.Failure)
	assert.Equal(t, 403, res.StatusCode)
	assert.Nil(t, res.Auth)
}

func TestScanPageNoTitle(t *testing.T) {
	s := stubScanner(t, nil, map[string]string{
		"https://untitled.example": `<html><body><p>hello</p></body></html>`,
	})

	res, err := s.ScanPage(context.Background(), "https://untitled.example")
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, "No title", res.Title)
	require.NotNil(t, res.Auth)
	assert.False(t, res.Auth.Found)
	assert.Equal(t, 0, res.Auth.Total)
	assert.Equal(t, "none", res.Outcome())
}

func TestScanPageBrowserTitleWins(t *testing.T) {
	rf := renderFunc(func(_ context.Context, target string) (*browser.Page, error) {
		return &browser.Page{URL: target, HTML: loginPage, Title: "Rendered Title", StatusCode: 200}, nil
	})
	s := New(nil, WithRenderer("stub", rf))

	res, err := s.ScanPage(context.Background(), "https://titled.example")
	require.NoError(t, err)
	assert.Equal(t, "Rendered Title", res.Title)
}

func TestScanPageFinalURL(t *testing.T) {
	rf := renderFunc(func(_ context.Context, target string) (*browser.Page, error) {
		return &browser.Page{
			URL:        target,
			FinalURL:   "https://sso.example/login?from=app",
			HTML:       loginPage,
			StatusCode: 200,
		}, nil
	})
	s := New(nil, WithRenderer("stub", rf))

	res, err := s.ScanPage(context.Background(), "https://app.example")
	require.NoError(t, err)
	assert.Equal(t, "https://sso.example/login?from=app", res.FinalURL)
}

func TestScanPageFinalURLDroppedWhenSame(t *testing.T) {
	rf := renderFunc(func(_ context.Context, target string) (*browser.Page, error) {
		return &browser.Page{URL: target, FinalURL: target, HTML: plainPage, StatusCode: 200}, nil
	})
	s := New(nil, WithRenderer("stub", rf))

	res, err := s.ScanPage(context.Background(), "https://steady.example")
	require.NoError(t, err)
	assert.Empty(t, res.FinalURL)
}

func TestScanPageCollapsesConcurrentDuplicates(t *testing.T) {
	var calls int32
	gate := make(chan struct{})
	rf := renderFunc(func(_ context.Context, target string) (*browser.Page, error) {
		atomic.AddInt32(&calls, 1)
		<-gate
		return &browser.Page{URL: target, HTML: plainPage, StatusCode: 200}, nil
	})
	s := New(nil, WithRenderer("stub", rf))

	const n = 3
	resCh := make(chan *Result, n)
	for i := 0; i < n; i++ {
		go func() {
			res, _ := s.ScanPage(context.Background(), "https://dup.example")
			resCh <- res
		}()
	}
	// let every caller join the in-flight scan before releasing it
	time.Sleep(100 * time.Millisecond)
	close(gate)

	first := <-resCh
	require.NotNil(t, first)
	for i := 1; i < n; i++ {
		assert.Same(t, first, <-resCh)
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestScanPageSequentialScansAreFresh(t *testing.T) {
	var calls int32
	rf := renderFunc(func(_ context.Context, target string) (*browser.Page, error) {
		atomic.AddInt32(&calls, 1)
		return &browser.Page{URL: target, HTML: plainPage, StatusCode: 200}, nil
	})
	s := New(nil, WithRenderer("stub", rf))

	first, err := s.ScanPage(context.Background(), "https://again.example")
	require.NoError(t, err)
	second, err := s.ScanPage(context.Background(), "https://again.example")
	require.NoError(t, err)

	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
	assert.NotEqual(t, first.ScanID, second.ScanID)
}

func TestScannerFallbackPolicy(t *testing.T) {
	pages := map[string]string{"https://bare.example": barePasswordPage}

	res, err := stubScanner(t, nil, pages).ScanPage(context.Background(), "https://bare.example")
	require.NoError(t, err)
	require.NotNil(t, res.Auth)
	assert.True(t, res.Auth.Found, "default policy should emit the bare password input")
	assert.Equal(t, 1, res.Auth.Counts["password_field_form"])

	cfg := config.Default()
	cfg.Fallback = "suppress"
	res, err = stubScanner(t, cfg, pages).ScanPage(context.Background(), "https://bare.example")
	require.NoError(t, err)
	require.NotNil(t, res.Auth)
	assert.False(t, res.Auth.Found, "suppress policy should drop the bare input")
}

func TestScannerProviderAllowList(t *testing.T) {
	pages := map[string]string{"https://oauth.example": oauthPage}

	res, err := stubScanner(t, nil, pages).ScanPage(context.Background(), "https://oauth.example")
	require.NoError(t, err)
	assert.False(t, res.Auth.Found, "Globex is not in the default allow-list")

	cfg := config.Default()
	cfg.Providers = []string{"globex"}
	res, err = stubScanner(t, cfg, pages).ScanPage(context.Background(), "https://oauth.example")
	require.NoError(t, err)
	assert.True(t, res.Auth.Found)
	assert.Equal(t, 1, res.Auth.Counts["oauth_button"])
}

func TestNormalizeTarget(t *testing.T) {
	testCases := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"bare host gets https", "github.com/login", "https://github.com/login", false},
		{"padding trimmed", "  https://a.example/x  ", "https://a.example/x", false},
		{"explicit http kept", "http://legacy.example", "http://legacy.example", false},
		{"empty", "", "", true},
		{"blank", "   ", "", true},
		{"scheme without host", "https://", "", true},
		{"unparsable", "https://exa mple.com", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeTarget(tc.raw)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidTarget))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResultEvent(t *testing.T) {
	s := stubScanner(t, nil, map[string]string{"https://example.com/login": loginPage})
	res, err := s.ScanPage(context.Background(), "https://example.com/login")
	require.NoError(t, err)

	ev := res.Event("run-42")
	assert.Equal(t, events.EventTypeResult, ev.EventType())
	assert.Equal(t, "run-42", ev.ScanID())
	assert.Equal(t, "https://example.com/login", ev.Target.URL)
	assert.Equal(t, "Sign in", ev.Target.Title)
	assert.True(t, ev.Fetch.Success)
	assert.Equal(t, 200, ev.Fetch.StatusCode)
	assert.Equal(t, "stub", ev.Fetch.Renderer)

	require.NotNil(t, ev.Auth)
	assert.Equal(t, res.Auth.Total, ev.Auth.Total)
	require.NotEmpty(t, ev.Auth.Components)
	assert.Equal(t, "password_field_form", ev.Auth.Components[0].Category)
}

func TestResultEventFailedFetch(t *testing.T) {
	rf := renderFunc(func(_ context.Context, _ string) (*browser.Page, error) {
		return nil, fmt.Errorf("%w: refused", browser.ErrNavigation)
	})
	s := New(nil, WithRenderer("stub", rf))

	res, err := s.ScanPage(context.Background(), "https://down.example")
	require.NoError(t, err)

	ev := res.Event("run-43")
	assert.False(t, ev.Fetch.Success)
	assert.Equal(t, "Connection error — could not reach the website.", ev.Fetch.Error)
	assert.Nil(t, ev.Auth)

	errEv := res.ErrorEvent("run-43")
	require.NotNil(t, errEv)
	assert.Equal(t, events.ErrorTypeNavigation, errEv.ErrorType)
	assert.Equal(t, res.Error, errEv.Message)
	assert.False(t, errEv.Fatal)
}

func TestResultErrorEventNilOnSuccess(t *testing.T) {
	s := stubScanner(t, nil, map[string]string{"https://fine.example": plainPage})
	res, err := s.ScanPage(context.Background(), "https://fine.example")
	require.NoError(t, err)
	assert.Nil(t, res.ErrorEvent("run-44"))
}
