// Package jsonutil wraps github.com/go-json-experiment/json behind an
// encoding/json-shaped API. All JSON in the codebase flows through here so
// the underlying library can move without touching call sites.
package jsonutil

import (
	"io"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Unmarshal parses JSON-encoded data into v.
func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Marshal returns the JSON encoding of v.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// MarshalIndent returns the JSON encoding of v indented with indent.
// The prefix argument exists for encoding/json symmetry and is ignored.
func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return json.Marshal(v, jsontext.WithIndent(indent))
}

// Valid reports whether data is well-formed JSON.
func Valid(data []byte) bool {
	return jsontext.Value(data).IsValid()
}

// Encoder streams values to w, one JSON document per line.
type Encoder struct {
	w      io.Writer
	indent string
}

// NewStreamEncoder returns an encoder writing to w.
func NewStreamEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes v followed by a newline, matching encoding/json.Encoder.
func (e *Encoder) Encode(v any) error {
	var err error
	if e.indent != "" {
		err = json.MarshalWrite(e.w, v, jsontext.WithIndent(e.indent))
	} else {
		err = json.MarshalWrite(e.w, v)
	}
	if err != nil {
		return err
	}
	_, err = e.w.Write([]byte{'\n'})
	return err
}

// SetIndent switches subsequent Encode calls to indented output.
func (e *Encoder) SetIndent(prefix, indent string) {
	e.indent = indent
}

// Decoder streams values from r.
type Decoder struct {
	r io.Reader
}

// NewStreamDecoder returns a decoder reading from r.
func NewStreamDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Decode reads the next JSON value from the stream into v.
func (d *Decoder) Decode(v any) error {
	return json.UnmarshalRead(d.r, v)
}
