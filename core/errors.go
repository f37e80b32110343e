package core

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies failures for boundary translation. Verification and
// signing failures are never retried here; they are classified once and
// returned immediately.
type Kind int

const (
	// KindInternal is an unexpected failure; callers see a generic message.
	KindInternal Kind = iota
	// KindClientInput is a malformed or unacceptable request input, such as
	// a failed assertion verification. 400-equivalent.
	KindClientInput
	// KindUnauthorized is a missing or invalid session token. 401-equivalent.
	KindUnauthorized
	// KindServerConfig is missing deployment configuration (secret,
	// allow-list, signing key). 500-equivalent; the message names the gap but
	// never leaks secret values.
	KindServerConfig
)

// Error is the boundary error envelope.
type Error struct {
	Kind Kind
	Code string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Message returns the caller-facing message, including the underlying reason
// for client/unauthorized errors where the spec requires surfacing it.
func (e *Error) Message() string {
	if e.Err != nil && (e.Kind == KindClientInput || e.Kind == KindUnauthorized) {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func ClientInput(code, msg string, err error) *Error {
	return &Error{Kind: KindClientInput, Code: code, Msg: msg, Err: err}
}

func Unauthorized(msg string, err error) *Error {
	return &Error{Kind: KindUnauthorized, Code: "unauthorized", Msg: msg, Err: err}
}

func ServerConfig(msg string, err error) *Error {
	return &Error{Kind: KindServerConfig, Code: "server_misconfigured", Msg: msg, Err: err}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Code: "internal", Msg: "internal error", Err: err}
}

// AsError unwraps err to the boundary envelope, if it carries one.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf extracts the kind of any error; non-core errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps a kind to its transport status.
func HTTPStatus(k Kind) int {
	switch k {
	case KindClientInput:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindServerConfig, KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
