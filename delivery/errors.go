package delivery

import "errors"

// ErrNotFound is returned when a delivery task does not exist.
var ErrNotFound = errors.New("folio: delivery task not found")
