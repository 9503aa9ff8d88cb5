package hooks

import (
	"time"

	"github.com/authscope/authscope/pkg/output/events"
)

// Shared event fixtures for hook tests.

func newTestStartEvent() *events.StartEvent {
	return &events.StartEvent{
		BaseEvent: events.NewBase(events.EventTypeStart, "scan-test"),
		Targets:   []string{"https://github.com/login", "https://gitlab.com/users/sign_in"},
		Config: events.ScanConfig{
			Concurrency: 4,
			TimeoutSec:  15,
			Fallback:    "element",
			Renderer:    "chrome",
		},
	}
}

func newTestResultEvent(found bool) *events.ResultEvent {
	ev := &events.ResultEvent{
		BaseEvent: events.NewBase(events.EventTypeResult, "scan-test"),
		Target:    events.TargetInfo{URL: "https://github.com/login", Title: "Sign in to GitHub"},
		Fetch:     events.FetchInfo{Success: true, StatusCode: 200, Renderer: "chrome", ElapsedSec: 1.8},
	}
	if found {
		ev.Auth = &events.AuthInfo{
			Found: true,
			Total: 3,
			Counts: map[string]int{
				"password_field_form": 1,
				"auth_form":           1,
				"auth_link":           1,
			},
		}
	}
	return ev
}

func newTestFailedResultEvent() *events.ResultEvent {
	return &events.ResultEvent{
		BaseEvent: events.NewBase(events.EventTypeResult, "scan-test"),
		Target:    events.TargetInfo{URL: "https://down.example"},
		Fetch: events.FetchInfo{
			Success:    false,
			Error:      "Connection error — could not reach the website.",
			Renderer:   "chrome",
			ElapsedSec: 0.4,
		},
	}
}

func newTestProgressEvent() *events.ProgressEvent {
	return &events.ProgressEvent{
		BaseEvent: events.NewBase(events.EventTypeProgress, "scan-test"),
		Progress:  events.ProgressInfo{Current: 2, Total: 5, Percentage: 40.0},
		Stats:     events.StatsInfo{SitesWithAuth: 1, Components: 3, Errors: 0},
		Timing:    events.TimingInfo{StartedAt: time.Now().Add(-3 * time.Second), ElapsedSec: 3},
	}
}

func newTestErrorEvent(fatal bool) *events.ErrorEvent {
	return &events.ErrorEvent{
		BaseEvent: events.NewBase(events.EventTypeError, "scan-test"),
		Target:    "https://down.example/login",
		ErrorType: events.ErrorTypeTimeout,
		Message:   "Request timed out — site took too long to respond.",
		Fatal:     fatal,
	}
}

func newTestSummaryEvent() *events.SummaryEvent {
	started := time.Now().Add(-42 * time.Second)
	return &events.SummaryEvent{
		BaseEvent: events.NewBase(events.EventTypeSummary, "scan-test"),
		Version:   "test",
		Totals:    events.SummaryTotals{Scanned: 5, SitesWithAuth: 2, Components: 7, Errors: 1},
		ByCategory: map[string]int{
			"password_field_form": 2,
			"auth_form":           2,
			"oauth_button":        1,
			"auth_link":           2,
		},
		Timing: events.SummaryTiming{
			StartedAt:   started,
			CompletedAt: time.Now(),
			DurationSec: 42.0,
		},
	}
}

func newTestCompleteEvent(success bool) *events.CompleteEvent {
	ev := &events.CompleteEvent{
		BaseEvent: events.NewBase(events.EventTypeComplete, "scan-test"),
		Success:   success,
		ExitCode:  0,
	}
	if !success {
		ev.ExitCode = 1
		ev.ExitReason = "fatal scan error"
	}
	return ev
}
