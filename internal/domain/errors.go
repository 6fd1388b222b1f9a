package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the gateway error taxonomy.
var (
	// ErrInvalidRequest indicates a malformed SearchRequest or poll request (BAD_REQUEST).
	ErrInvalidRequest = errors.New("invalid request")

	// ErrLiveUnavailable indicates the upstream rejected our credentials (401/403).
	// Callers show a "not yet available" state instead of a generic failure.
	ErrLiveUnavailable = errors.New("live search unavailable")

	// ErrUpstream is the parent of every non-auth upstream failure.
	ErrUpstream = errors.New("upstream error")

	// ErrSessionNotFound indicates a poll for a search the gateway knows nothing about.
	ErrSessionNotFound = errors.New("search session not found")
)

// UpstreamErrorKind classifies an upstream failure.
type UpstreamErrorKind string

// Upstream failure kinds. All of them are retryable by the user.
const (
	KindUpstream UpstreamErrorKind = "UPSTREAM_ERROR"
	KindNetwork  UpstreamErrorKind = "NETWORK_ERROR"
	KindParse    UpstreamErrorKind = "PARSE_ERROR"
)

// UpstreamError carries the status code and kind of a failed upstream call.
type UpstreamError struct {
	Kind       UpstreamErrorKind
	StatusCode int
	Op         string
	Err        error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Is makes every UpstreamError match ErrUpstream.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// NewUpstreamStatusError creates an UPSTREAM_ERROR for a non-2xx response.
func NewUpstreamStatusError(op string, status int) *UpstreamError {
	return &UpstreamError{Kind: KindUpstream, StatusCode: status, Op: op}
}

// NewNetworkError creates a NETWORK_ERROR for a transport failure.
func NewNetworkError(op string, err error) *UpstreamError {
	return &UpstreamError{Kind: KindNetwork, Op: op, Err: err}
}

// NewParseError creates a PARSE_ERROR for an unparseable upstream body.
func NewParseError(op string, status int, err error) *UpstreamError {
	return &UpstreamError{Kind: KindParse, StatusCode: status, Op: op, Err: err}
}

// UpstreamStatus returns the upstream status code carried by err, or 0.
func UpstreamStatus(err error) int {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.StatusCode
	}
	return 0
}

// IsLiveUnavailable reports whether err means the live feature is not active yet.
func IsLiveUnavailable(err error) bool {
	return errors.Is(err, ErrLiveUnavailable)
}
