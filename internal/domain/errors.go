package domain

import (
	"errors"
	"fmt"
)

var (
	// Submitted address was blank after normalization.
	ErrEmptyInput = errors.New("address must not be empty")
	// Neither address nor keyword search matched.
	ErrNotFound = errors.New("no geocode match")
	// A submission for the same session is still resolving.
	ErrBusy = errors.New("a search is already in progress")
)

// Classification of upstream failures.
type UpstreamKind int

const (
	UpstreamTransport UpstreamKind = iota
	UpstreamStatus
	UpstreamNonJSON
	UpstreamMalformed
)

func (k UpstreamKind) String() string {
	switch k {
	case UpstreamTransport:
		return "transport"
	case UpstreamStatus:
		return "status"
	case UpstreamNonJSON:
		return "non_json"
	case UpstreamMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// UpstreamError reports a geocoding provider that could not be reached or
// returned something unusable.
type UpstreamError struct {
	Op     string
	Kind   UpstreamKind
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	msg := e.Op + ": " + e.Kind.String()
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// CompanyLookupError aborts a resolution when the fixed company address
// cannot be geocoded.
type CompanyLookupError struct {
	Address string
	Err     error
}

func (e *CompanyLookupError) Error() string {
	return fmt.Sprintf("company address %q could not be geocoded: %v", e.Address, e.Err)
}

func (e *CompanyLookupError) Unwrap() error { return e.Err }
