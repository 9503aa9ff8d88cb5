// Package dispatcher routes scan events to registered writers and hooks.
// Writers persist events to output formats (JSON, JSONL, CSV, HTML, PDF),
// while hooks fan events out to live consumers such as structured logging,
// Prometheus metrics, or OpenTelemetry traces.
//
// All scanner output flows through a single Dispatcher, decoupling event
// producers from event consumers.
package dispatcher

import (
	"context"
	"sync"

	"github.com/authscope/authscope/pkg/output/events"
)

// Writer is the interface for all output writers.
// Writers persist events to a destination such as a JSON report file,
// a CSV export, or the terminal.
type Writer interface {
	// Write writes an event to the output.
	Write(event events.Event) error

	// Flush ensures all buffered events are written.
	Flush() error

	// Close closes the writer and releases any resources.
	Close() error

	// SupportsEvent returns true if the writer handles this event type.
	SupportsEvent(eventType events.EventType) bool
}

// Hook is the interface for event hooks.
// Hooks receive events as they happen and are used for side channels
// such as logging, metrics, and tracing.
type Hook interface {
	// OnEvent is called for each matching event.
	OnEvent(ctx context.Context, event events.Event) error

	// EventTypes returns the event types this hook handles.
	// Return nil or an empty slice to receive all events.
	EventTypes() []events.EventType
}

// Dispatcher routes events to writers and hooks.
// It is safe for concurrent use.
type Dispatcher struct {
	mu      sync.RWMutex
	writers []Writer
	hooks   []Hook
	closed  bool

	async  bool
	hookWg sync.WaitGroup
}

// Config configures the dispatcher behavior.
type Config struct {
	// Async runs hooks in goroutines instead of inline with Dispatch.
	// Close waits for all in-flight hook goroutines before returning.
	Async bool
}

// New creates a new event dispatcher with the given configuration.
func New(cfg Config) *Dispatcher {
	return &Dispatcher{
		writers: make([]Writer, 0),
		hooks:   make([]Hook, 0),
		async:   cfg.Async,
	}
}

// RegisterWriter adds a writer to the dispatcher.
// Writers receive events that match their SupportsEvent filter.
func (d *Dispatcher) RegisterWriter(w Writer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writers = append(d.writers, w)
}

// RegisterHook adds a hook to the dispatcher.
// Hooks receive events that match their EventTypes filter.
func (d *Dispatcher) RegisterHook(h Hook) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hooks = append(d.hooks, h)
}

// Dispatch sends an event to all registered writers and hooks.
// It returns nil even when individual writers or hooks fail, so that
// every consumer gets a chance to see the event. Dispatch after Close
// is a no-op.
func (d *Dispatcher) Dispatch(ctx context.Context, event events.Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return nil
	}

	for _, w := range d.writers {
		if !w.SupportsEvent(event.EventType()) {
			continue
		}
		// A failing writer must not starve the rest.
		_ = w.Write(event)
	}

	for _, h := range d.hooks {
		if !hookSupports(h, event.EventType()) {
			continue
		}
		if d.async {
			// Add happens under the read lock, so it cannot race with the
			// Wait in Close: Close flips closed under the write lock first.
			d.hookWg.Add(1)
			go func(hook Hook) {
				defer d.hookWg.Done()
				_ = hook.OnEvent(ctx, event)
			}(h)
		} else {
			_ = h.OnEvent(ctx, event)
		}
	}

	return nil
}

// hookSupports checks whether a hook handles the given event type.
// An empty filter means the hook receives every event.
func hookSupports(h Hook, eventType events.EventType) bool {
	types := h.EventTypes()
	if len(types) == 0 {
		return true
	}
	for _, et := range types {
		if et == eventType {
			return true
		}
	}
	return false
}

// Flush flushes all registered writers.
func (d *Dispatcher) Flush() error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, w := range d.writers {
		_ = w.Flush()
	}

	return nil
}

// Close waits for in-flight async hooks, then flushes and closes all
// writers. After Close the dispatcher drops further events. Close is
// idempotent.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	d.hookWg.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, w := range d.writers {
		_ = w.Flush()
		_ = w.Close()
	}

	return nil
}
