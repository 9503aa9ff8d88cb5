package defaults

// Exit codes for the CLI.
const (
	ExitSuccess       = 0 // Clean exit, scan completed
	ExitAuthFound     = 1 // Auth components detected (with -fail-on-found)
	ExitUserError     = 2 // Invalid arguments or configuration
	ExitNetworkError  = 3 // Fetch/connection failure
	ExitInternalError = 4 // Unexpected internal error
)
