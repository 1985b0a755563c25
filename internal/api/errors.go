package api

import (
	"context"
	"errors"
	"net"
)

// TransportError wraps a network or HTTP failure from the backend. The poll
// loop treats these as recoverable: it flips the connection status and keeps
// scheduling, never surfacing them as fatal.
type TransportError struct {
	Op         string // endpoint name, e.g. "poll"
	StatusCode int    // zero when the request never completed
	Message    string
	Cause      error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return "api: " + e.Op + ": " + e.Message + ": " + e.Cause.Error()
	}
	return "api: " + e.Op + ": " + e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// Unreachable reports whether the failure looks like the backend being down
// rather than a request-level rejection. User-facing notifications use this to
// hint at the likely cause.
func (e *TransportError) Unreachable() bool {
	if e.StatusCode >= 500 {
		return true
	}
	if e.StatusCode > 0 {
		return false
	}
	var netErr net.Error
	if errors.As(e.Cause, &netErr) {
		return true
	}
	return errors.Is(e.Cause, context.DeadlineExceeded)
}

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
