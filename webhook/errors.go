package webhook

import "errors"

// ErrNotFound is returned when a webhook does not exist.
var ErrNotFound = errors.New("folio: webhook not found")
