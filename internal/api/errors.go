package api

import (
	"errors"
	"fmt"
)

// TransportError covers failures where no HTTP status is available:
// connection errors, timeouts and body encode/decode failures.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: transport: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError is a non-2xx response from the service.
type StatusError struct {
	Method  string
	Path    string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: remote status %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("%s %s: remote status %d: %s", e.Method, e.Path, e.Code, e.Message)
}

// StatusCode extracts the remote status code from err, if it carries one.
func StatusCode(err error) (int, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code, true
	}
	return 0, false
}

func IsStatus(err error, code int) bool {
	got, ok := StatusCode(err)
	return ok && got == code
}

func IsTransport(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}
