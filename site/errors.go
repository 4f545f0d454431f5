package site

import "errors"

var (
	// ErrNotFound is returned when a site does not exist.
	ErrNotFound = errors.New("folio: site not found")

	// ErrInvalidAPIKey is returned when an API key does not authenticate
	// an active site.
	ErrInvalidAPIKey = errors.New("folio: invalid API key")
)
