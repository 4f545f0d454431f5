package contenttype

import "errors"

// Errors returned by content type operations. The root package
// re-exports them.
var (
	// ErrNotFound is returned when a content type cannot be found.
	ErrNotFound = errors.New("folio: content type not found")

	// ErrDuplicateSlug is returned when a slug is already taken.
	ErrDuplicateSlug = errors.New("folio: duplicate slug")
)
