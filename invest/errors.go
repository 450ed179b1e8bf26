package invest

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure the client can surface, so calling
// code can branch (retry on transport, abort on validation, and so on).
type ErrorKind string

const (
	KindAuthentication    ErrorKind = "authentication"
	KindValidation        ErrorKind = "validation"
	KindNotFound          ErrorKind = "not_found"
	KindInsufficientFunds ErrorKind = "insufficient_funds"
	KindTransport         ErrorKind = "transport"
	KindService           ErrorKind = "service"
)

// Error is the single error type returned by the client. Kind is always
// set; the remaining fields are filled in when the failure came from the
// remote service.
type Error struct {
	Kind       ErrorKind
	StatusCode int    // HTTP status, 0 for local and transport failures
	Code       string // remote service error code, when present
	Message    string
	TrackingID string // x-tracking-id response header, when present
	cause      error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0 && e.Code != "":
		return fmt.Sprintf("%s: %s (http %d, code %s)", e.Kind, e.Message, e.StatusCode, e.Code)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: %s (http %d)", e.Kind, e.Message, e.StatusCode)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newValidationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func newAuthenticationError(format string, args ...any) *Error {
	return &Error{Kind: KindAuthentication, Message: fmt.Sprintf(format, args...)}
}

func newTransportError(msg string, cause error) *Error {
	return &Error{Kind: KindTransport, Message: msg, cause: cause}
}

func newServiceError(format string, args ...any) *Error {
	return &Error{Kind: KindService, Message: fmt.Sprintf(format, args...)}
}

func newNotFoundError(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// kindOf extracts the ErrorKind from err, or "" when err is not a client error.
func kindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsAuthentication reports whether err is a bad/expired credential failure.
func IsAuthentication(err error) bool { return kindOf(err) == KindAuthentication }

// IsValidation reports whether err is a malformed request caught before any
// network call.
func IsValidation(err error) bool { return kindOf(err) == KindValidation }

// IsNotFound reports whether err means an unknown ticker or order handle.
func IsNotFound(err error) bool { return kindOf(err) == KindNotFound }

// IsInsufficientFunds reports whether the service rejected an order for
// lack of balance.
func IsInsufficientFunds(err error) bool { return kindOf(err) == KindInsufficientFunds }

// IsTransport reports whether err is a network-level failure.
func IsTransport(err error) bool { return kindOf(err) == KindTransport }

// IsService reports whether err is any other non-success service response.
func IsService(err error) bool { return kindOf(err) == KindService }
