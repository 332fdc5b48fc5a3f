package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingLocale        = errors.New("missing locale")
	ErrInvalidApplicationID = errors.New("invalid application id")
)

// FailureKind classifies why a price could not be fetched.
type FailureKind string

const (
	KindStatus      FailureKind = "status"
	KindContentType FailureKind = "content_type"
	KindTransport   FailureKind = "transport"
	KindMalformed   FailureKind = "malformed_payload"
	KindTimeout     FailureKind = "timeout"
)

type FetchError struct {
	Kind        FailureKind
	Ticker      TickerSymbol
	StatusCode  int
	ContentType string
	Err         error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("fetching %s: unexpected status code %d", e.Ticker, e.StatusCode)
	case KindContentType:
		return fmt.Sprintf("fetching %s: expected application/json but received %q", e.Ticker, e.ContentType)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetching %s: %s: %v", e.Ticker, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetching %s: %s", e.Ticker, e.Kind)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
