package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrAuthenticationExpired is returned when the backend answers 401.
	ErrAuthenticationExpired = errors.New("authentication expired")
	// ErrNetworkOrTimeout is returned for transport level failures.
	ErrNetworkOrTimeout = errors.New("network error or timeout")
	// ErrTimeout is returned when the request deadline expires. It matches ErrNetworkOrTimeout.
	ErrTimeout = fmt.Errorf("%w: request timed out", ErrNetworkOrTimeout)
	// ErrMalformedResponse is returned when the body is not a JSON envelope.
	ErrMalformedResponse = errors.New("malformed backend response")
	// ErrMalformedLoginResponse is returned when no bearer token can be extracted from a
	// successful login reply.
	ErrMalformedLoginResponse = errors.New("malformed login response")
	// ErrMissingData is returned when a successful envelope carries no data.
	ErrMissingData = errors.New("backend response has no data")
)

// BackendError is a failure reported by the backend, either through a non-2xx HTTP
// status or through a non-200 envelope code.
type BackendError struct {
	Status  int
	Code    string
	Message string
	Method  string
	Path    string
}

func (e *BackendError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "server error"
	}
	if e.Code != "" {
		return fmt.Sprintf("%s %s: code %s: %s", e.Method, e.Path, e.Code, msg)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, msg)
}

// Forbidden reports whether the backend refused the call for lack of permission.
func (e *BackendError) Forbidden() bool {
	return e.Status == http.StatusForbidden || e.Code == "403"
}

// NotFound reports whether the backend could not find the resource.
func (e *BackendError) NotFound() bool {
	return e.Status == http.StatusNotFound || e.Code == "404"
}

// AsBackendError unwraps err into a *BackendError.
func AsBackendError(err error) (*BackendError, bool) {
	var be *BackendError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}
