package providers

import (
	"errors"
	"net"
	"net/http"
)

// ErrorKind classifies a provider failure for retry decisions.
type ErrorKind string

const (
	ErrKindRateLimit  ErrorKind = "rate_limit"  // 429 / quota exhaustion
	ErrKindServer     ErrorKind = "server"      // 5xx / transient backend fault
	ErrKindBadRequest ErrorKind = "bad_request" // malformed request, rejected input
	ErrKindAuth       ErrorKind = "auth"        // missing/invalid credential
	ErrKindParse      ErrorKind = "parse"       // structured response failed to parse
)

// CallError is a typed provider failure. The Message field holds the
// provider's diagnostic text verbatim so it survives to user-facing errors.
type CallError struct {
	Provider   string
	Op         string // "extract", "redraw", "audit"
	StatusCode int
	Kind       ErrorKind
	Message    string
}

func (e *CallError) Error() string {
	return e.Message
}

// Transient reports whether retrying this error can reasonably succeed.
func (e *CallError) Transient() bool {
	return e.Kind == ErrKindRateLimit || e.Kind == ErrKindServer
}

// IsTransient classifies an error for the retry controller: provider
// rate-limit/server faults and network timeouts retry, everything else
// propagates immediately.
func IsTransient(err error) bool {
	var callErr *CallError
	if errors.As(err, &callErr) {
		return callErr.Transient()
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

// kindForStatus maps an HTTP status code to an error kind.
func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrKindRateLimit
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ErrKindAuth
	case status >= 500:
		return ErrKindServer
	default:
		return ErrKindBadRequest
	}
}
