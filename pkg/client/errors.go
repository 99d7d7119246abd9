package client

import (
	"fmt"
)

// FetchError reports a non-2xx response from an upstream endpoint.
type FetchError struct {
	URL        string
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("upstream returned HTTP %d", e.StatusCode)
}

// NetworkError reports a transport failure: no response was received.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ParseError reports a response body that is not a well-formed payload.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
