// Package output provides JSON/YAML output formatting and error handling.
package output

// Exit codes.
const (
	ExitOK        = 0 // Success
	ExitUsage     = 1 // Invalid arguments or flags
	ExitNotFound  = 2 // Resource not found
	ExitAuth      = 3 // Not authenticated / session ended
	ExitForbidden = 4 // Access denied (role or scope issue)
	ExitRateLimit = 5 // Rate limited (429)
	ExitNetwork   = 6 // Connection/DNS/timeout error
	ExitAPI       = 7 // Server returned error
)

// Error codes for the JSON envelope.
const (
	CodeUsage        = "usage"
	CodeNotFound     = "not_found"
	CodeAuth         = "auth_required"
	CodeCredentials  = "bad_credentials"
	CodeRole         = "role_not_permitted"
	CodeSessionEnded = "session_ended"
	CodeForbidden    = "forbidden"
	CodeRateLimit    = "rate_limit"
	CodeNetwork      = "network"
	CodeAPI          = "api_error"
)

// ExitCodeFor returns the exit code for a given error code.
func ExitCodeFor(code string) int {
	switch code {
	case CodeUsage:
		return ExitUsage
	case CodeNotFound:
		return ExitNotFound
	case CodeAuth, CodeCredentials, CodeSessionEnded:
		return ExitAuth
	case CodeForbidden, CodeRole:
		return ExitForbidden
	case CodeRateLimit:
		return ExitRateLimit
	case CodeNetwork:
		return ExitNetwork
	case CodeAPI:
		return ExitAPI
	default:
		return ExitAPI
	}
}
