// Package exitcode derives the CLI exit code from scan outcomes, so CI
// pipelines can gate on what a run found. It plugs into the dispatcher as a
// hook and watches result and error events; the CLI asks for the verdict
// after the dispatcher is closed.
//
// Exit codes (see pkg/defaults):
//   - 0: scan completed
//   - 1: auth components detected (only with FailOnFound)
//   - 2: invalid configuration
//   - 3: every target failed, or the error threshold was crossed
//   - 4: internal error
package exitcode

import (
	"context"
	"fmt"
	"sync"

	"github.com/authscope/authscope/pkg/defaults"
	"github.com/authscope/authscope/pkg/output/dispatcher"
	"github.com/authscope/authscope/pkg/output/events"
)

// Compile-time interface check.
var _ dispatcher.Hook = (*Manager)(nil)

// descriptions explains each exit code for logs and -help output.
var descriptions = map[int]string{
	defaults.ExitSuccess:       "scan completed",
	defaults.ExitAuthFound:     "auth components detected",
	defaults.ExitUserError:     "invalid configuration",
	defaults.ExitNetworkError:  "targets unreachable or too many fetch errors",
	defaults.ExitInternalError: "internal error",
}

// Config holds the gating rules for the exit code manager.
type Config struct {
	// FailOnFound exits nonzero when any page exposes auth components.
	// Off by default: findings are the product of a scan, not a failure.
	FailOnFound bool

	// ErrorThreshold is the number of failed fetches that turns a partial
	// batch into a failed run. Zero disables the threshold; all-targets-
	// failed still fails regardless.
	ErrorThreshold int
}

// Manager tracks scan outcomes and decides the process exit code.
type Manager struct {
	mu  sync.Mutex
	cfg Config

	scanned  int
	found    int
	errors   int
	internal bool
	badConf  bool
}

// New creates an exit code manager with the given gating rules.
func New(cfg Config) *Manager {
	return &Manager{cfg: cfg}
}

// OnEvent records one scan event. Part of the dispatcher.Hook interface.
func (m *Manager) OnEvent(_ context.Context, event events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch e := event.(type) {
	case *events.ResultEvent:
		m.scanned++
		if !e.Fetch.Success {
			m.errors++
			break
		}
		if e.Auth != nil && e.Auth.Found {
			m.found++
		}
	case *events.ErrorEvent:
		if e.Fatal || e.ErrorType == events.ErrorTypeInternal {
			m.internal = true
		}
	}
	return nil
}

// EventTypes limits the hook to result and error events.
func (m *Manager) EventTypes() []events.EventType {
	return []events.EventType{events.EventTypeResult, events.EventTypeError}
}

// SetConfigError marks that the run never started because of bad input.
// Called directly by the CLI; config errors happen before any dispatcher
// exists.
func (m *Manager) SetConfigError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.badConf = true
}

// SetInternalError marks an unexpected failure outside the fetch taxonomy.
func (m *Manager) SetInternalError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.internal = true
}

// Stats returns the pages scanned, pages with findings, and failed fetches
// recorded so far.
func (m *Manager) Stats() (scanned, found, errors int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scanned, m.found, m.errors
}

// ExitCode returns the exit code and a human-readable reason.
//
// Priority order (highest to lowest): configuration error, internal error,
// all targets failed, error threshold crossed, findings gate, success.
func (m *Manager) ExitCode() (int, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.badConf {
		return defaults.ExitUserError, descriptions[defaults.ExitUserError]
	}
	if m.internal {
		return defaults.ExitInternalError, descriptions[defaults.ExitInternalError]
	}
	if m.scanned > 0 && m.errors == m.scanned {
		return defaults.ExitNetworkError, fmt.Sprintf("all %d target(s) unreachable", m.errors)
	}
	if m.cfg.ErrorThreshold > 0 && m.errors >= m.cfg.ErrorThreshold {
		return defaults.ExitNetworkError, fmt.Sprintf("%d fetch error(s), threshold %d", m.errors, m.cfg.ErrorThreshold)
	}
	if m.cfg.FailOnFound && m.found > 0 {
		return defaults.ExitAuthFound, fmt.Sprintf("auth components on %d page(s)", m.found)
	}
	return defaults.ExitSuccess, descriptions[defaults.ExitSuccess]
}

// Describe returns the canonical description for an exit code.
func Describe(code int) string {
	if s, ok := descriptions[code]; ok {
		return s
	}
	return fmt.Sprintf("unknown exit code %d", code)
}
