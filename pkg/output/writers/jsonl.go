package writers

import (
	"io"
	"sync"

	"github.com/authscope/authscope/pkg/jsonutil"
	"github.com/authscope/authscope/pkg/output/dispatcher"
	"github.com/authscope/authscope/pkg/output/events"
)

// Compile-time interface check.
var _ dispatcher.Writer = (*JSONLWriter)(nil)

// JSONLWriter writes events as newline-delimited JSON (JSONL).
// Each event is serialized as a complete JSON object on a single line,
// so tools like jq and streaming parsers can process scans in real time.
type JSONLWriter struct {
	w       io.Writer
	mu      sync.Mutex
	opts    JSONLOptions
	encoder *jsonutil.Encoder
}

// JSONLOptions configures the JSONL writer behavior.
type JSONLOptions struct {
	// OnlyFindings filters output to pages where auth components were
	// detected. Lifecycle events (start, summary, complete) still pass.
	OnlyFindings bool

	// OmitSnippets strips HTML snippets from result events.
	OmitSnippets bool

	// Pretty enables indented JSON output.
	// Note: not JSONL compliant, but useful for debugging.
	Pretty bool
}

// NewJSONLWriter creates a JSONL writer that writes to w.
// The writer is safe for concurrent use.
func NewJSONLWriter(w io.Writer, opts JSONLOptions) *JSONLWriter {
	encoder := jsonutil.NewStreamEncoder(w)
	if opts.Pretty {
		encoder.SetIndent("", "  ")
	}
	return &JSONLWriter{
		w:       w,
		opts:    opts,
		encoder: encoder,
	}
}

// Write writes an event as a single JSON line.
// Returns nil when the event was filtered out by options.
func (jw *JSONLWriter) Write(event events.Event) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if jw.opts.OnlyFindings {
		if re, ok := event.(*events.ResultEvent); ok {
			if re.Auth == nil || !re.Auth.Found {
				return nil
			}
		}
	}

	return jw.encoder.Encode(stripSnippets(event, jw.opts.OmitSnippets))
}

// Flush is a no-op; JSONL lines are written immediately.
func (jw *JSONLWriter) Flush() error {
	return nil
}

// Close closes the underlying writer when it implements io.Closer.
func (jw *JSONLWriter) Close() error {
	if closer, ok := jw.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// SupportsEvent returns true for all event types.
func (jw *JSONLWriter) SupportsEvent(_ events.EventType) bool {
	return true
}
