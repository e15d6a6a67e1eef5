package provider

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is.
var (
	ErrNotAvailable  = errors.New("data not available")
	ErrRateLimited   = errors.New("rate limited")
	ErrUpstream      = errors.New("upstream error")
	ErrMisconfigured = errors.New("provider misconfigured")
)

// Error is a failure reported by a market data source.
type Error struct {
	Provider   string
	Kind       error
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Provider, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func newError(provider string, kind error, status int, format string, args ...any) *Error {
	return &Error{Provider: provider, Kind: kind, StatusCode: status, Message: fmt.Sprintf(format, args...)}
}

func wrapError(provider string, kind error, err error) *Error {
	return &Error{Provider: provider, Kind: kind, Err: err}
}
