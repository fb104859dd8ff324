package fetcher

import (
	"errors"
	"fmt"
)

var (
	// ErrIncompleteState is returned for a state vector with fewer than 17 fields
	ErrIncompleteState = errors.New("incomplete state vector")
	// ErrFieldType is returned when a state vector field has an unexpected JSON type
	ErrFieldType = errors.New("unexpected field type")
)

// TransportError is a failure to get a usable response from the API:
// the request could not be sent, the status was not 200, or the body could not be read.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("opensky request %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("opensky request %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError means the response body was not the expected JSON document
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// StateError points at the state vector (and field, if known) that failed normalization
type StateError struct {
	Index int
	Field string
	Err   error
}

func (e *StateError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("state %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("state %d: field %s: %v", e.Index, e.Field, e.Err)
}

func (e *StateError) Unwrap() error {
	return e.Err
}
