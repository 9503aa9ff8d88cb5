package browser

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Fetch failures fall into a small taxonomy the scan layer reports per URL:
// timeouts, unreachable hosts, and HTTP-level rejections. Anything else
// surfaces with its raw message.
var (
	// ErrTimeout marks a render that outran the fetch window.
	ErrTimeout = errors.New("browser: render timed out")

	// ErrNavigation marks DNS, connection, and protocol-level failures.
	ErrNavigation = errors.New("browser: navigation failed")
)

// StatusError reports a main document that arrived with an error status.
// The rendered page may still be attached to the result for diagnostics.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("browser: http status %d", e.Code)
}

// classify folds raw chromedp/net errors into the fetch taxonomy while
// keeping the underlying message in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s", ErrTimeout, err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%w: %s", ErrNavigation, err)
	}
	msg := err.Error()
	// chromedp surfaces Chrome's network layer as net::ERR_* strings
	if strings.Contains(msg, "net::ERR") ||
		strings.Contains(msg, "page load error") ||
		strings.Contains(msg, "connection refused") {
		return fmt.Errorf("%w: %s", ErrNavigation, err)
	}
	return err
}

// Reason renders a fetch error as the user-facing failure string carried in
// scan results. Returns "" for nil.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrTimeout) {
		return "Request timed out — site took too long to respond."
	}
	if errors.Is(err, ErrNavigation) {
		return "Connection error — could not reach the website."
	}
	var se *StatusError
	if errors.As(err, &se) {
		return fmt.Sprintf("HTTP error: %d", se.Code)
	}
	return "Error: " + err.Error()
}
