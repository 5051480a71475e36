package apiclient

import (
	"errors"
	"fmt"
)

// RequestError is returned when the transport fails or the backend answers
// with a non-success status. StatusCode is zero for transport failures.
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API %s %s failed: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("API %s %s failed: %v", e.Method, e.Path, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Transport reports whether the request never produced an HTTP response
func (e *RequestError) Transport() bool {
	return e.StatusCode == 0
}

// DecodeError is returned when a success response does not have the expected JSON shape
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("API %s returned malformed JSON: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsRequestError reports whether err carries a RequestError
func IsRequestError(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr)
}
