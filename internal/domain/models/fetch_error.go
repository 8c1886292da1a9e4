package models

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	ErrNetwork    ErrorKind = "network"
	ErrHTTPStatus ErrorKind = "http_status"
	ErrDecode     ErrorKind = "decode"
	ErrCancelled  ErrorKind = "cancelled"
	ErrStale      ErrorKind = "stale"
)

// FetchError is the only error type a fetch reports.
type FetchError struct {
	Kind       ErrorKind
	Source     SourceID
	StatusCode int // set for ErrHTTPStatus
	Err        error
}

func NewFetchError(kind ErrorKind, source SourceID, err error) *FetchError {
	return &FetchError{Kind: kind, Source: source, Err: err}
}

func (e *FetchError) Error() string {
	switch {
	case e.Kind == ErrHTTPStatus:
		return fmt.Sprintf("%s: http status %d: %v", e.Source, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Source, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Source, e.Kind)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Surfaced reports whether the error belongs on connectivity metadata.
// Cancelled and stale results are bookkeeping only.
func (e *FetchError) Surfaced() bool {
	return e.Kind != ErrCancelled && e.Kind != ErrStale
}

// IsKind reports whether err is a FetchError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == kind
}
