// ABOUTME: Error taxonomy shared by the remote access layer, stores and views
// ABOUTME: Normalizes failures into a single error type carrying a human-readable message
package crmerr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies where a failure originated.
type Kind int

const (
	KindUnknown Kind = iota
	// KindNetwork means the request never reached the server.
	KindNetwork
	// KindServer means the server answered with a non-2xx status.
	KindServer
	// KindValidation means client-side validation rejected the input.
	KindValidation
	// KindNotFound means the addressed record does not exist.
	KindNotFound
	// KindConfiguration means the request could not be set up.
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConfiguration:
		return "configuration"
	}
	return "unknown"
}

// Fixed user-facing messages.
const (
	MsgNetwork       = "Network error - please check your connection"
	MsgServerDefault = "An error occurred"
	MsgConfiguration = "Request configuration error"
)

// Error is the normalized failure returned across layers.
// Error() yields Message alone so it can be shown to a user verbatim.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Status  int
	Field   string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return MsgServerDefault
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap creates an error of the given kind around a cause.
func Wrap(kind Kind, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// Network wraps a transport failure.
func Network(op string, err error) *Error {
	return Wrap(KindNetwork, op, MsgNetwork, err)
}

// Configuration wraps a request setup failure.
func Configuration(op string, err error) *Error {
	return Wrap(KindConfiguration, op, MsgConfiguration, err)
}

// Server builds an error from a non-2xx response. An empty message falls back to MsgServerDefault.
func Server(op string, status int, message string) *Error {
	if message == "" {
		message = MsgServerDefault
	}
	return &Error{Kind: KindServer, Op: op, Status: status, Message: message}
}

// Validation reports a rejected field.
func Validation(field, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: "validate", Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing record.
func NotFound(op, message string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Status: http.StatusNotFound, Message: message}
}

// KindOf returns the Kind of err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsNotFound reports a missing record, including a 404 surfaced by the REST backend as a server error.
func IsNotFound(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == KindNotFound || (e.Kind == KindServer && e.Status == http.StatusNotFound)
}

// Message returns the text to show a user for err, using fallback when err carries none.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
