package events

// ErrorEvent is emitted when a fetch or the run itself fails. Per-target
// fetch failures are not fatal; the batch keeps going.
type ErrorEvent struct {
	BaseEvent
	Target    string `json:"target,omitempty"`
	ErrorType string `json:"error_type"`
	Message   string `json:"message"`
	Fatal     bool   `json:"fatal"`
}

// Error type identifiers carried in ErrorEvent.ErrorType, matching the fetch
// error taxonomy.
const (
	ErrorTypeTimeout       = "timeout"
	ErrorTypeNavigation    = "navigation"
	ErrorTypeHTTPStatus    = "http_status"
	ErrorTypeInvalidTarget = "invalid_target"
	ErrorTypeInternal      = "internal"
)
