package writers

import (
	"bytes"
	"strings"
	"testing"

	"github.com/authscope/authscope/pkg/output/events"
)

// newTestTableWriter builds a table writer with color detection pinned off
// so output is byte-stable. t.Setenv also keeps these tests serial, which
// matters because color handling is process-wide.
func newTestTableWriter(t *testing.T, config TableConfig) (*TableWriter, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	if config.Width == 0 {
		config.Width = 100
	}
	buf := &bytes.Buffer{}
	return NewTableWriter(buf, config), buf
}

func TestTableWriter_SummaryReport(t *testing.T) {
	w, buf := newTestTableWriter(t, TableConfig{})

	_ = w.Write(pageResult("https://github.com/login", passwordFormComponent(), oauthComponent()))
	_ = w.Write(fetchFailure("https://down.example", "Connection error — could not reach the website."))
	_ = w.Write(runSummary())
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Scan Results",
		"OK",
		"FAIL",
		"https://github.com/login",
		"could not reach the website",
		"Categories:",
		"Login Form (contains password field)",
		"OAuth / SSO Button",
		"Scanned 3 page(s) in 7.5s: 1 with auth components, 1 error(s)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTableWriter_NoColorOutput(t *testing.T) {
	w, buf := newTestTableWriter(t, TableConfig{})

	_ = w.Write(pageResult("https://github.com/login", passwordFormComponent()))
	_ = w.Write(runSummary())
	_ = w.Close()

	if strings.Contains(buf.String(), "\033[") {
		t.Error("ANSI escapes emitted with NO_COLOR set")
	}
}

func TestTableWriter_NoColorOverridesDetection(t *testing.T) {
	t.Setenv("FORCE_COLOR", "1")
	buf := &bytes.Buffer{}
	w := NewTableWriter(buf, TableConfig{NoColor: true, Width: 100})

	_ = w.Write(pageResult("https://github.com/login", passwordFormComponent()))
	_ = w.Close()

	if strings.Contains(buf.String(), "\033[") {
		t.Error("NoColor should win over FORCE_COLOR")
	}
}

func TestTableWriter_StreamingMode(t *testing.T) {
	w, buf := newTestTableWriter(t, TableConfig{Mode: "streaming"})

	_ = w.Write(pageResult("https://github.com/login", passwordFormComponent()))
	if !strings.Contains(buf.String(), "github.com/login") {
		t.Error("streaming mode should print pages before Close")
	}

	_ = w.Close()
	if strings.Contains(buf.String(), "Scan Results") {
		t.Error("streaming mode should not print the banner")
	}
}

func TestTableWriter_OnlyFindings(t *testing.T) {
	w, buf := newTestTableWriter(t, TableConfig{OnlyFindings: true})

	_ = w.Write(pageResult("https://quiet.example"))
	_ = w.Write(pageResult("https://github.com/login", passwordFormComponent()))
	_ = w.Write(fetchFailure("https://down.example", "Request timed out — site took too long to respond."))
	_ = w.Close()

	out := buf.String()
	if strings.Contains(out, "quiet.example") {
		t.Error("page without findings should be hidden")
	}
	if !strings.Contains(out, "github.com/login") {
		t.Error("page with findings should be shown")
	}
	if !strings.Contains(out, "down.example") {
		t.Error("failures should be shown even with OnlyFindings")
	}
}

func TestTableWriter_MaxResults(t *testing.T) {
	w, buf := newTestTableWriter(t, TableConfig{MaxResults: 2})

	_ = w.Write(pageResult("https://one.example", passwordFormComponent()))
	_ = w.Write(pageResult("https://two.example", oauthComponent()))
	_ = w.Write(pageResult("https://three.example", passwordFormComponent()))
	_ = w.Close()

	out := buf.String()
	if !strings.Contains(out, "one.example") || !strings.Contains(out, "two.example") {
		t.Error("first two pages should be shown")
	}
	if strings.Contains(out, "three.example") {
		t.Error("pages past MaxResults should be dropped")
	}
}

func TestTableWriter_MinimalMode(t *testing.T) {
	w, buf := newTestTableWriter(t, TableConfig{Mode: "minimal"})

	_ = w.Write(pageResult("https://github.com/login", passwordFormComponent()))
	_ = w.Write(runSummary())
	_ = w.Close()

	out := buf.String()
	if strings.Contains(out, "github.com/login") {
		t.Error("minimal mode should not print page rows")
	}
	if !strings.Contains(out, "Scanned 3 page(s)") {
		t.Errorf("minimal mode should still print the summary line:\n%s", out)
	}
}

func TestTableWriter_AsciiFallback(t *testing.T) {
	w, buf := newTestTableWriter(t, TableConfig{DisableUnicode: true})

	_ = w.Write(pageResult("https://github.com/login", passwordFormComponent()))
	_ = w.Close()

	out := buf.String()
	if !strings.Contains(out, "+--") {
		t.Errorf("expected ASCII box drawing:\n%s", out)
	}
	if strings.Contains(out, "┌") {
		t.Error("Unicode box characters emitted with DisableUnicode")
	}
}

func TestTableWriter_NoSummaryEventNoSummaryLine(t *testing.T) {
	w, buf := newTestTableWriter(t, TableConfig{})

	_ = w.Write(pageResult("https://github.com/login", passwordFormComponent()))
	_ = w.Close()

	if strings.Contains(buf.String(), "Scanned") {
		t.Error("summary line requires a summary event")
	}
}

func TestTableWriter_SupportsEvent(t *testing.T) {
	w, _ := newTestTableWriter(t, TableConfig{})

	if !w.SupportsEvent(events.EventTypeResult) || !w.SupportsEvent(events.EventTypeSummary) {
		t.Error("expected result and summary support")
	}
	if w.SupportsEvent(events.EventTypeStart) || w.SupportsEvent(events.EventTypeProgress) {
		t.Error("lifecycle chatter should be rejected")
	}
}
