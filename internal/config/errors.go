package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() so callers can match them
// with errors.Is().
var (
	// ErrNoInput is returned when no GO list file is given.
	ErrNoInput = errors.New("no input specified: provide the path of a GO term list file")

	// ErrInvalidServiceURL is returned when the REVIGO URL is not an absolute http(s) URL.
	ErrInvalidServiceURL = errors.New("invalid service URL: must be an absolute http or https URL")

	// ErrEmptyRCommand is returned when the R command is blank.
	ErrEmptyRCommand = errors.New("invalid R command: must not be empty")

	// ErrInvalidTimeout is returned when the timeout is negative.
	// Zero disables the timeout.
	ErrInvalidTimeout = errors.New("invalid timeout: must be non-negative")

	// ErrInvalidHistoryLimit is returned when the history listing limit is not positive.
	ErrInvalidHistoryLimit = errors.New("invalid history limit: must be positive")
)
