// Package events defines the output event vocabulary for scans. Every
// consumer of scan output — file writers, the logger, metrics, tracing —
// receives these types through the dispatcher, so the scan pipeline never
// knows who is listening.
//
// All events are designed for JSON serialization. BaseEvent is embedded in
// each concrete event type.
package events

import "time"

// EventType represents the type of output event.
type EventType string

const (
	// EventTypeStart indicates a scan run has started.
	EventTypeStart EventType = "start"
	// EventTypeResult indicates one target page finished scanning.
	EventTypeResult EventType = "result"
	// EventTypeProgress indicates a batch progress update.
	EventTypeProgress EventType = "progress"
	// EventTypeError indicates a failure, per-target or fatal.
	EventTypeError EventType = "error"
	// EventTypeSummary indicates the final digest of a run.
	EventTypeSummary EventType = "summary"
	// EventTypeComplete indicates the run has finished.
	EventTypeComplete EventType = "complete"
)

// Event is the base interface for all events.
type Event interface {
	EventType() EventType
	Timestamp() time.Time
	ScanID() string
}

// BaseEvent contains common fields for all events.
// It is designed to be embedded in specific event types.
type BaseEvent struct {
	Type EventType `json:"type"`
	Time time.Time `json:"timestamp"`
	Scan string    `json:"scan_id"`
}

// NewBase stamps a BaseEvent with the current UTC time.
func NewBase(t EventType, scanID string) BaseEvent {
	return BaseEvent{Type: t, Time: time.Now().UTC(), Scan: scanID}
}

// EventType returns the type of this event.
func (e BaseEvent) EventType() EventType { return e.Type }

// Timestamp returns when this event occurred.
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// ScanID returns the unique identifier for the run that produced this event.
func (e BaseEvent) ScanID() string { return e.Scan }
