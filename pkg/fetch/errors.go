package fetch

import (
	"errors"
	"net/http"
)

var (
	// ErrStatus marks a non-2xx response.
	ErrStatus = errors.New("fetch: unexpected status")
	// ErrNoURL is returned when the fetcher has no endpoint.
	ErrNoURL = errors.New("fetch: url is required")
)

// HTTPError is implemented by errors carrying an HTTP status.
type HTTPError interface {
	error
	StatusCode() int
}

// StatusError reports the status of a failed list request.
type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error() + ": " + http.StatusText(e.Code)
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusBadGateway
	}
	return e.Code
}
