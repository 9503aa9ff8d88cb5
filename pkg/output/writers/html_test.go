package writers

import (
	"bytes"
	"strings"
	"testing"

	"github.com/authscope/authscope/pkg/output/events"
)

func renderHTML(t *testing.T, config HTMLConfig, evs ...events.Event) string {
	t.Helper()
	buf := &bytes.Buffer{}
	w := NewHTMLWriter(buf, config)
	for _, ev := range evs {
		if err := w.Write(ev); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return buf.String()
}

func TestHTMLWriter_RendersReport(t *testing.T) {
	out := renderHTML(t, HTMLConfig{},
		pageResult("https://github.com/login", passwordFormComponent(), oauthComponent()),
		fetchFailure("https://down.example", "Connection error — could not reach the website."),
		runSummary(),
	)

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>Authscope Report</title>",
		"Pages Scanned",
		"https://github.com/login",
		"Login Form (contains password field)",
		"OAuth / SSO Button",
		`class="chip cat-password"`,
		"Failed Pages",
		"could not reach the website",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestHTMLWriter_SnippetsEscaped(t *testing.T) {
	comp := passwordFormComponent()
	comp.HTML = `<script>alert(1)</script>`

	out := renderHTML(t, HTMLConfig{IncludeSnippets: true},
		pageResult("https://github.com/login", comp))

	if strings.Contains(out, "<script>alert") {
		t.Error("snippet injected as raw markup")
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Error("expected escaped snippet text")
	}
}

func TestHTMLWriter_NoSnippetsByDefault(t *testing.T) {
	out := renderHTML(t, HTMLConfig{},
		pageResult("https://github.com/login", passwordFormComponent()))

	if strings.Contains(out, "&lt;form") {
		t.Error("snippets rendered without IncludeSnippets")
	}
}

func TestHTMLWriter_UntitledFallback(t *testing.T) {
	ev := pageResult("https://blank.example", passwordFormComponent())
	ev.Target.Title = ""

	out := renderHTML(t, HTMLConfig{}, ev)
	if !strings.Contains(out, "(untitled)") {
		t.Error("expected untitled placeholder for empty page title")
	}
}

func TestHTMLWriter_RedirectTargetShown(t *testing.T) {
	ev := pageResult("https://github.com/login", passwordFormComponent())
	ev.Target.FinalURL = "https://github.com/session/new"

	out := renderHTML(t, HTMLConfig{}, ev)
	if !strings.Contains(out, "landed on") {
		t.Error("expected redirect destination in page meta")
	}
}

func TestHTMLWriter_ThemeAndTitle(t *testing.T) {
	out := renderHTML(t, HTMLConfig{Title: "Weekly Auth Sweep", Theme: "light"})

	if !strings.Contains(out, "<title>Weekly Auth Sweep</title>") {
		t.Error("custom title not rendered")
	}
	if !strings.Contains(out, `data-theme="light"`) {
		t.Error("theme attribute not rendered")
	}
}

func TestHTMLWriter_SupportsEvent(t *testing.T) {
	w := NewHTMLWriter(&bytes.Buffer{}, HTMLConfig{})
	if !w.SupportsEvent(events.EventTypeResult) || !w.SupportsEvent(events.EventTypeSummary) {
		t.Error("expected result and summary support")
	}
	if w.SupportsEvent(events.EventTypeError) {
		t.Error("error events should be rejected")
	}
}
