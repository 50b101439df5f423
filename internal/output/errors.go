package output

import (
	"errors"
	"fmt"
)

// Error is a structured error with code, message, and optional hint.
type Error struct {
	Code       string
	Message    string
	Hint       string
	HTTPStatus int
	Retryable  bool
	Cause      error
}

func (e *Error) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Hint)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *Error) ExitCode() int {
	return ExitCodeFor(e.Code)
}

// Error constructors for common cases.

func ErrUsage(msg string) *Error {
	return &Error{Code: CodeUsage, Message: msg}
}

func ErrUsageHint(msg, hint string) *Error {
	return &Error{Code: CodeUsage, Message: msg, Hint: hint}
}

func ErrNotFound(resource, identifier string) *Error {
	return &Error{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found: %s", resource, identifier),
		HTTPStatus: 404,
	}
}

func ErrAuth(msg string) *Error {
	return &Error{
		Code:       CodeAuth,
		Message:    msg,
		Hint:       "Run: curio auth login",
		HTTPStatus: 401,
	}
}

// ErrBadCredentials is a login rejection for wrong email/password.
// Recoverable input error: no session state is mutated.
func ErrBadCredentials() *Error {
	return &Error{
		Code:       CodeCredentials,
		Message:    "Invalid email or password",
		HTTPStatus: 401,
	}
}

// ErrRoleNotPermitted is returned when the authenticated identity lacks the
// role a surface requires (e.g. a non-admin hitting an admin command).
func ErrRoleNotPermitted(role string) *Error {
	return &Error{
		Code:       CodeRole,
		Message:    fmt.Sprintf("Account role %q is not permitted here", role),
		Hint:       "Sign in with an administrator account",
		HTTPStatus: 401,
	}
}

// ErrSessionEnded is the authoritative signal feature code receives when the
// session could not be kept alive. It never wraps a raw transport error.
func ErrSessionEnded() *Error {
	return &Error{
		Code:       CodeSessionEnded,
		Message:    "Session ended",
		Hint:       "Run: curio auth login",
		HTTPStatus: 401,
	}
}

func ErrForbidden(msg string) *Error {
	return &Error{
		Code:       CodeForbidden,
		Message:    msg,
		HTTPStatus: 403,
	}
}

func ErrRateLimit(retryAfter int) *Error {
	hint := "Try again later"
	if retryAfter > 0 {
		hint = fmt.Sprintf("Try again in %d seconds", retryAfter)
	}
	return &Error{
		Code:       CodeRateLimit,
		Message:    "Rate limited",
		Hint:       hint,
		HTTPStatus: 429,
		Retryable:  true,
	}
}

func ErrNetwork(cause error) *Error {
	return &Error{
		Code:      CodeNetwork,
		Message:   "Network error",
		Hint:      cause.Error(),
		Retryable: true,
		Cause:     cause,
	}
}

func ErrAPI(status int, msg string) *Error {
	return &Error{
		Code:       CodeAPI,
		Message:    msg,
		HTTPStatus: status,
	}
}

// AsError converts any error to an *Error, wrapping unknown errors as API errors.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Code: CodeAPI, Message: err.Error(), Cause: err}
}
