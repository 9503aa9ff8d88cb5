package hooks

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
)

// logRecorder captures slog.Record entries for assertions.
type logRecorder struct {
	mu      sync.Mutex
	records []slog.Record
}

func (r *logRecorder) Enabled(context.Context, slog.Level) bool { return true }

func (r *logRecorder) Handle(_ context.Context, rec slog.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

func (r *logRecorder) WithAttrs([]slog.Attr) slog.Handler { return r }
func (r *logRecorder) WithGroup(string) slog.Handler      { return r }

func (r *logRecorder) getRecords() []slog.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	dst := make([]slog.Record, len(r.records))
	copy(dst, r.records)
	return dst
}

func (r *logRecorder) findMessage(msg string) (slog.Record, bool) {
	for _, rec := range r.getRecords() {
		if rec.Message == msg {
			return rec, true
		}
	}
	return slog.Record{}, false
}

func recordHasAttr(rec slog.Record, key string) bool {
	found := false
	rec.Attrs(func(a slog.Attr) bool {
		if a.Key == key {
			found = true
			return false
		}
		return true
	})
	return found
}

func TestOrDefault_NilReturnsDefault(t *testing.T) {
	if orDefault(nil) != slog.Default() {
		t.Error("expected slog.Default() for nil input")
	}
}

func TestOrDefault_NonNilReturnsInput(t *testing.T) {
	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if orDefault(custom) != custom {
		t.Error("expected custom logger to be returned")
	}
}

func TestLoggerHook_NilLoggerNoPanic(t *testing.T) {
	hook := NewLoggerHook(nil)
	if err := hook.OnEvent(context.Background(), newTestResultEvent(true)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoggerHook_ReceivesAllEvents(t *testing.T) {
	hook := NewLoggerHook(nil)
	if hook.EventTypes() != nil {
		t.Error("expected nil filter so the hook sees every event")
	}
}

func TestLoggerHook_ResultLogsInfo(t *testing.T) {
	rec := &logRecorder{}
	hook := NewLoggerHook(slog.New(rec))

	_ = hook.OnEvent(context.Background(), newTestResultEvent(true))

	logged, ok := rec.findMessage("page scanned")
	if !ok {
		t.Fatal("expected 'page scanned' log entry")
	}
	if logged.Level != slog.LevelInfo {
		t.Errorf("expected Info level, got %v", logged.Level)
	}
	if !recordHasAttr(logged, "components") {
		t.Error("expected components attribute on successful result")
	}
}

func TestLoggerHook_FailedResultLogsWarn(t *testing.T) {
	rec := &logRecorder{}
	hook := NewLoggerHook(slog.New(rec))

	_ = hook.OnEvent(context.Background(), newTestFailedResultEvent())

	logged, ok := rec.findMessage("page scan failed")
	if !ok {
		t.Fatal("expected 'page scan failed' log entry")
	}
	if logged.Level != slog.LevelWarn {
		t.Errorf("expected Warn level, got %v", logged.Level)
	}
	if !recordHasAttr(logged, "error") {
		t.Error("expected error attribute on failed result")
	}
}

func TestLoggerHook_ErrorLevels(t *testing.T) {
	tests := []struct {
		name  string
		fatal bool
		level slog.Level
	}{
		{"per-target failure logs warn", false, slog.LevelWarn},
		{"fatal error logs error", true, slog.LevelError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := &logRecorder{}
			hook := NewLoggerHook(slog.New(rec))

			_ = hook.OnEvent(context.Background(), newTestErrorEvent(tc.fatal))

			logged, ok := rec.findMessage("scan error")
			if !ok {
				t.Fatal("expected 'scan error' log entry")
			}
			if logged.Level != tc.level {
				t.Errorf("expected %v level, got %v", tc.level, logged.Level)
			}
		})
	}
}

func TestLoggerHook_LifecycleEvents(t *testing.T) {
	rec := &logRecorder{}
	hook := NewLoggerHook(slog.New(rec))
	ctx := context.Background()

	_ = hook.OnEvent(ctx, newTestStartEvent())
	_ = hook.OnEvent(ctx, newTestSummaryEvent())
	_ = hook.OnEvent(ctx, newTestCompleteEvent(true))

	for _, msg := range []string{"scan started", "scan summary", "scan complete"} {
		if _, ok := rec.findMessage(msg); !ok {
			t.Errorf("expected %q log entry", msg)
		}
	}
}

func TestLoggerHook_ProgressLogsDebug(t *testing.T) {
	rec := &logRecorder{}
	hook := NewLoggerHook(slog.New(rec))

	_ = hook.OnEvent(context.Background(), newTestProgressEvent())

	logged, ok := rec.findMessage("batch progress")
	if !ok {
		t.Fatal("expected 'batch progress' log entry")
	}
	if logged.Level != slog.LevelDebug {
		t.Errorf("expected Debug level, got %v", logged.Level)
	}
}
