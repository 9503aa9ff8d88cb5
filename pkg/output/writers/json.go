// Package writers provides output writers for scan results.
package writers

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/authscope/authscope/pkg/jsonutil"
	"github.com/authscope/authscope/pkg/output/dispatcher"
	"github.com/authscope/authscope/pkg/output/events"
)

// Compile-time interface check.
var _ dispatcher.Writer = (*JSONWriter)(nil)

// JSONWriter writes events as a JSON array.
// Unlike JSONLWriter which streams events one per line, this writer
// buffers all events in memory and writes them as a single JSON array
// when Close is called. This is the format report files use.
type JSONWriter struct {
	w      io.Writer
	mu     sync.Mutex
	opts   JSONOptions
	buffer []events.Event
}

// JSONOptions configures the JSON writer behavior.
type JSONOptions struct {
	// OmitSnippets strips HTML snippets from result events to keep
	// report files small.
	OmitSnippets bool

	// Pretty enables indented JSON output.
	Pretty bool

	// IndentSize sets the number of spaces for indentation (default 2).
	IndentSize int
}

// NewJSONWriter creates a JSON array writer that writes to w.
// The writer buffers all events and writes them as a JSON array on Close.
// The writer is safe for concurrent use.
func NewJSONWriter(w io.Writer, opts JSONOptions) *JSONWriter {
	if opts.IndentSize == 0 {
		opts.IndentSize = 2
	}
	return &JSONWriter{
		w:      w,
		opts:   opts,
		buffer: make([]events.Event, 0),
	}
}

// Write buffers an event for later JSON array output.
func (jw *JSONWriter) Write(event events.Event) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()
	jw.buffer = append(jw.buffer, stripSnippets(event, jw.opts.OmitSnippets))
	return nil
}

// Flush is a no-op; all events are written as a single array on Close.
func (jw *JSONWriter) Flush() error {
	return nil
}

// Close writes all buffered events as a JSON array.
// If the underlying writer implements io.Closer, it is closed as well.
func (jw *JSONWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	encoder := jsonutil.NewStreamEncoder(jw.w)
	if jw.opts.Pretty {
		encoder.SetIndent("", strings.Repeat(" ", jw.opts.IndentSize))
	}

	if err := encoder.Encode(jw.buffer); err != nil {
		return fmt.Errorf("json: encode: %w", err)
	}

	if closer, ok := jw.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// SupportsEvent returns true for result and summary events, the two
// event types a batch report file is made of.
func (jw *JSONWriter) SupportsEvent(eventType events.EventType) bool {
	switch eventType {
	case events.EventTypeResult, events.EventTypeSummary:
		return true
	default:
		return false
	}
}

// stripSnippets returns a snippet-free copy of result events when strip
// is set; all other events pass through untouched.
func stripSnippets(event events.Event, strip bool) events.Event {
	if !strip {
		return event
	}
	re, ok := event.(*events.ResultEvent)
	if !ok || re.Auth == nil || len(re.Auth.Components) == 0 {
		return event
	}

	trimmed := *re
	auth := *re.Auth
	auth.Components = make([]events.ComponentInfo, len(re.Auth.Components))
	for i, c := range re.Auth.Components {
		c.HTML = ""
		auth.Components[i] = c
	}
	trimmed.Auth = &auth
	return &trimmed
}
