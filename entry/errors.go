package entry

import "errors"

// ErrNotFound is returned when an entry cannot be found. The root package
// re-exports it.
var ErrNotFound = errors.New("folio: entry not found")
