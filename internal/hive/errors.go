package hive

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// APIError means the provider responded but signaled failure (non-2xx).
type APIError struct {
	StatusCode int
	StatusText string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hive api error: %d %s", e.StatusCode, e.StatusText)
}

// NetworkError means the provider could not be reached at all.
type NetworkError struct {
	Code string // Node-style code, e.g. ECONNREFUSED, ENOTFOUND
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error (%s): %v", e.Code, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// TimeoutError means the configured request bound elapsed before the
// provider responded.
type TimeoutError struct {
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out: %v", e.Err)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// classifyTransportError sorts a failed outbound call into the timeout /
// network / unknown variants. Anything unrecognized passes through
// unchanged so its message survives verbatim.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Err: err}
	}

	if code := networkCode(err); code != "" {
		return &NetworkError{Code: code, Err: err}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &NetworkError{Code: "EUNKNOWN", Err: err}
	}

	return err
}

func networkCode(err error) string {
	var dnsErr *net.DNSError
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return "ECONNREFUSED"
	case errors.Is(err, syscall.ECONNRESET):
		return "ECONNRESET"
	case errors.Is(err, syscall.EHOSTUNREACH):
		return "EHOSTUNREACH"
	case errors.Is(err, syscall.ENETUNREACH):
		return "ENETUNREACH"
	case errors.As(err, &dnsErr):
		return "ENOTFOUND"
	}
	return ""
}
