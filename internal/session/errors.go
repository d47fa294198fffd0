package session

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPage is returned when an operation needs a current page but
	// nothing has been opened yet.
	ErrNoPage = errors.New("no page loaded")

	// ErrFormNotFound is returned when the current page has no form with the requested name.
	ErrFormNotFound = errors.New("form not found")

	// ErrLinkNotFound is returned when the current page has no link with the requested href.
	ErrLinkNotFound = errors.New("link not found")

	// ErrNoHistory is returned by Back when there is no previous page.
	ErrNoHistory = errors.New("no previous page in history")
)

// StatusError is returned when the server answers with an HTTP error status.
// The session state is left unchanged.
type StatusError struct {
	// Method is the HTTP method of the failed request.
	Method string

	// URL is the requested URL.
	URL string

	// StatusCode is the HTTP status code (>= 400).
	StatusCode int

	// Status is the status line text, e.g. "404 Not Found".
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected HTTP status %s", e.Method, e.URL, e.Status)
}
