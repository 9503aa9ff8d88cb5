package hooks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/authscope/authscope/pkg/output/events"
)

// testPromHook builds a hook without the standalone server so tests never
// bind ports.
func testPromHook(t *testing.T) *PrometheusHook {
	t.Helper()
	hook, err := NewPrometheusHook(PrometheusOptions{WithoutServer: true})
	if err != nil {
		t.Fatalf("NewPrometheusHook: %v", err)
	}
	t.Cleanup(func() { _ = hook.Close() })
	return hook
}

// scrape renders the hook's registry through its HTTP handler.
func scrape(t *testing.T, h *PrometheusHook) string {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	h.Handler().ServeHTTP(rec, req)
	return rec.Body.String()
}

func TestPrometheusHook_CountsScans(t *testing.T) {
	hook := testPromHook(t)
	ctx := context.Background()

	_ = hook.OnEvent(ctx, newTestResultEvent(true))
	_ = hook.OnEvent(ctx, newTestFailedResultEvent())

	body := scrape(t, hook)
	if !strings.Contains(body, "authscope_scans_total") {
		t.Fatalf("missing scans counter in scrape:\n%s", body)
	}
	if !strings.Contains(body, `target="github.com"`) {
		t.Error("expected host label from the scanned URL")
	}
	if !strings.Contains(body, `outcome="error"`) {
		t.Error("expected error outcome from the failed fetch")
	}
}

func TestPrometheusHook_CountsComponentsByCategory(t *testing.T) {
	hook := testPromHook(t)

	_ = hook.OnEvent(context.Background(), newTestResultEvent(true))

	body := scrape(t, hook)
	if !strings.Contains(body, "authscope_components_total") {
		t.Fatalf("missing components counter in scrape:\n%s", body)
	}
	for _, category := range []string{"password_field_form", "auth_form", "auth_link"} {
		if !strings.Contains(body, `category="`+category+`"`) {
			t.Errorf("expected category label %q", category)
		}
	}
}

func TestPrometheusHook_CountsErrorsByType(t *testing.T) {
	hook := testPromHook(t)

	_ = hook.OnEvent(context.Background(), newTestErrorEvent(false))

	body := scrape(t, hook)
	if !strings.Contains(body, "authscope_errors_total") {
		t.Fatalf("missing errors counter in scrape:\n%s", body)
	}
	if !strings.Contains(body, `type="timeout"`) {
		t.Error("expected timeout error type label")
	}
}

func TestPrometheusHook_SummarySetsGauges(t *testing.T) {
	hook := testPromHook(t)

	_ = hook.OnEvent(context.Background(), newTestSummaryEvent())

	body := scrape(t, hook)
	if !strings.Contains(body, "authscope_batch_sites_with_auth 2") {
		t.Errorf("expected sites-with-auth gauge set to 2:\n%s", body)
	}
	if !strings.Contains(body, "authscope_batch_duration_seconds 42") {
		t.Errorf("expected batch duration gauge set to 42:\n%s", body)
	}
}

func TestPrometheusHook_ObservesFetchLatency(t *testing.T) {
	hook := testPromHook(t)

	_ = hook.OnEvent(context.Background(), newTestResultEvent(false))

	body := scrape(t, hook)
	if !strings.Contains(body, "authscope_fetch_seconds") {
		t.Fatalf("missing fetch latency histogram in scrape:\n%s", body)
	}
	if !strings.Contains(body, `renderer="chrome"`) {
		t.Error("expected renderer label on fetch histogram")
	}
}

func TestPrometheusHook_IgnoresEventsAfterClose(t *testing.T) {
	hook := testPromHook(t)
	_ = hook.Close()

	if err := hook.OnEvent(context.Background(), newTestResultEvent(true)); err != nil {
		t.Fatalf("OnEvent after Close: %v", err)
	}

	body := scrape(t, hook)
	if strings.Contains(body, `target="github.com"`) {
		t.Error("metrics updated after Close")
	}
}

func TestPrometheusHook_CloseIdempotent(t *testing.T) {
	hook := testPromHook(t)
	if err := hook.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := hook.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestPrometheusHook_EventTypes(t *testing.T) {
	hook := testPromHook(t)

	want := map[events.EventType]bool{
		events.EventTypeResult:  false,
		events.EventTypeError:   false,
		events.EventTypeSummary: false,
	}
	for _, et := range hook.EventTypes() {
		if _, ok := want[et]; !ok {
			t.Errorf("unexpected event type %s", et)
			continue
		}
		want[et] = true
	}
	for et, seen := range want {
		if !seen {
			t.Errorf("missing event type %s", et)
		}
	}
}

func TestPrometheusHook_MetricsAddr(t *testing.T) {
	hook, err := NewPrometheusHook(PrometheusOptions{WithoutServer: true, Port: 9191, Path: "/stats"})
	if err != nil {
		t.Fatalf("NewPrometheusHook: %v", err)
	}
	defer hook.Close()

	if got := hook.MetricsAddr(); got != "http://localhost:9191/stats" {
		t.Errorf("MetricsAddr = %q", got)
	}
}

func TestExtractHost(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"full url", "https://example.com/login", "example.com"},
		{"url with query", "https://example.com/path?x=1", "example.com"},
		{"url with fragment", "https://example.com#top", "example.com"},
		{"url with port", "http://localhost:8080/scan", "localhost:8080"},
		{"bare host", "example.com/signin", "example.com"},
		{"empty", "", "unknown"},
		{"scheme only", "https://", "unknown"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractHost(tc.url); got != tc.want {
				t.Errorf("extractHost(%q) = %q, want %q", tc.url, got, tc.want)
			}
		})
	}
}
