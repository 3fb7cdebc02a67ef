package locationlog

import (
	"errors"
	"fmt"
)

// Kind classifies a failed append.
type Kind string

const (
	KindInvalidInput        Kind = "invalid_input"
	KindCorruptLog          Kind = "corrupt_log"
	KindConflict            Kind = "conflict"
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	KindNotConfigured       Kind = "not_configured"
)

// Error is the structured failure returned by the writer and the layers above it.
type Error struct {
	Kind    Kind
	Message string
	// Status is the upstream HTTP status, when one was observed.
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an Error of the given kind.
func NewError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the Kind carried by err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// StatusError is returned by stores backed by an HTTP API for unexpected responses.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Message)
}

// upstreamError maps a store failure that is neither not-found nor a version
// mismatch to an Error.
func upstreamError(message string, err error) *Error {
	if errors.Is(err, ErrNotConfigured) {
		return NewError(KindNotConfigured, "store is not configured", err)
	}

	e := NewError(KindUpstreamUnavailable, message, err)
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		e.Status = statusErr.StatusCode
	}
	return e
}
