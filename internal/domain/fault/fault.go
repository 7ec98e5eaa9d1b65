// Package fault defines the failure taxonomy shared by the gateway and the
// backend workers. Domain errors travel as values, never as panics, so every
// failure path is visible in function signatures and can cross the broker
// as a plain status/message pair.
package fault

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind categorizes a failure.
type Kind string

const (
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindNotFound     Kind = "NOT_FOUND"
	KindValidation   Kind = "VALIDATION"
	KindConflict     Kind = "CONFLICT"
	KindTransport    Kind = "TRANSPORT"
	KindUnknown      Kind = "UNKNOWN"
)

// Fault is a failure with an HTTP-equivalent status and a client-safe message.
type Fault struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", f.Kind, f.Message, f.Err)
	}
	return fmt.Sprintf("[%s] %s", f.Kind, f.Message)
}

// Unwrap returns the underlying error.
func (f *Fault) Unwrap() error {
	return f.Err
}

// Business reports whether the fault is a handler-reported domain error
// rather than a transport or unexpected failure.
func (f *Fault) Business() bool {
	switch f.Kind {
	case KindTransport, KindUnknown:
		return false
	}
	return true
}

// New builds a fault of the given kind with the default status for that kind.
func New(kind Kind, message string) *Fault {
	return &Fault{Kind: kind, Status: StatusFor(kind), Message: message}
}

func Unauthorized(message string) *Fault { return New(KindUnauthorized, message) }
func Forbidden(message string) *Fault    { return New(KindForbidden, message) }
func NotFound(message string) *Fault     { return New(KindNotFound, message) }
func Validation(message string) *Fault   { return New(KindValidation, message) }
func Conflict(message string) *Fault     { return New(KindConflict, message) }

// Transport wraps a broker-level failure (unreachable backend, timeout).
func Transport(err error, message string) *Fault {
	return &Fault{Kind: KindTransport, Status: http.StatusBadGateway, Message: message, Err: err}
}

// Unknown wraps an unexpected failure.
func Unknown(err error, message string) *Fault {
	return &Fault{Kind: KindUnknown, Status: http.StatusInternalServerError, Message: message, Err: err}
}

// FromStatus rebuilds a fault from a wire-level status/message pair, as
// received in an RPC error reply.
func FromStatus(status int, message string) *Fault {
	return &Fault{Kind: KindFor(status), Status: status, Message: message}
}

// From coerces any error into a fault. Non-fault errors become Unknown with
// a generic message so internals never leak to clients.
func From(err error) *Fault {
	var f *Fault
	if errors.As(err, &f) {
		return f
	}
	return Unknown(err, "Internal Server Error")
}

// StatusFor maps a kind to its HTTP-equivalent status code.
func StatusFor(kind Kind) int {
	switch kind {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// KindFor maps an HTTP-equivalent status code back to a kind.
func KindFor(status int) Kind {
	switch status {
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusConflict:
		return KindConflict
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return KindTransport
	default:
		return KindUnknown
	}
}

// StatusWord returns the client-facing status word for the error envelope:
// "fail" for 4xx, "error" for everything else.
func StatusWord(status int) string {
	if status >= 400 && status < 500 {
		return "fail"
	}
	return "error"
}
