// Package iohelper provides helper functions for I/O operations,
// particularly for safely reading HTTP bodies with limits.
package iohelper

import (
	"io"

	"github.com/authscope/authscope/pkg/defaults"
)

// Body size limits for the two kinds of reads a scan performs
const (
	// RequestMaxBodySize bounds API request bodies (32KB). A scan request
	// is one small JSON object; anything bigger is garbage.
	RequestMaxBodySize int64 = defaults.BufferMedium

	// PageMaxBodySize bounds fetched page bodies (10MB). Login pages are
	// small, but the fetcher has no say in what a misconfigured target
	// streams back.
	PageMaxBodySize int64 = defaults.BufferMax
)

// ReadBody reads from an io.Reader with a size limit.
// If r is nil, returns empty slice and no error.
// This prevents memory exhaustion from maliciously large responses.
//
// Usage:
//
//	body, err := iohelper.ReadBody(resp.Body, iohelper.PageMaxBodySize)
//	defer resp.Body.Close()
func ReadBody(r io.Reader, maxSize int64) ([]byte, error) {
	if r == nil {
		return []byte{}, nil
	}
	return io.ReadAll(io.LimitReader(r, maxSize))
}

// ReadRequestBody reads an API request body under the request limit.
// Convenience wrapper around ReadBody with RequestMaxBodySize.
func ReadRequestBody(r io.Reader) ([]byte, error) {
	return ReadBody(r, RequestMaxBodySize)
}

// LimitPage wraps a fetched page body so downstream decoding never reads
// past the page limit. Returns r unchanged only in the nil case.
func LimitPage(r io.Reader) io.Reader {
	if r == nil {
		return r
	}
	return io.LimitReader(r, PageMaxBodySize)
}

// DrainAndClose reads any remaining data from r and closes it if it's a ReadCloser.
// This ensures the connection can be reused for HTTP keep-alive.
// Always returns nil error to allow use in defer.
func DrainAndClose(r io.Reader) error {
	if r == nil {
		return nil
	}

	// Drain remaining data (limited to one medium buffer to prevent DoS)
	_, _ = io.Copy(io.Discard, io.LimitReader(r, defaults.BufferMedium))

	// Close if possible
	if rc, ok := r.(io.ReadCloser); ok {
		rc.Close()
	}
	return nil
}
