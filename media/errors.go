package media

import "errors"

var (
	// ErrNotFound is returned when a media record does not exist.
	ErrNotFound = errors.New("folio: media not found")

	// ErrMimeMismatch is returned when the declared content type
	// contradicts the detected one.
	ErrMimeMismatch = errors.New("folio: declared content type does not match file content")

	// ErrTooLarge is returned for uploads above the size limit.
	ErrTooLarge = errors.New("folio: file too large")

	// ErrTypeNotAllowed is returned for content types outside the
	// allow-list.
	ErrTypeNotAllowed = errors.New("folio: file type not allowed")
)
