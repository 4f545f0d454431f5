package entry

import (
	"errors"
	"time"

	"github.com/xraph/folio/validate"
)

// ErrNotPublished is returned when unpublishing an entry that is not
// published.
var ErrNotPublished = errors.New("only published entries can be unpublished")

// ErrValidation matches every *ValidationFailedError via errors.Is.
var ErrValidation = errors.New("entry validation failed")

// ValidationFailedError carries the complete list of problems that
// rejected a write or a publish.
type ValidationFailedError struct {
	Errors validate.Errors
}

func (e *ValidationFailedError) Error() string {
	return e.Errors.Error()
}

// Is makes errors.Is(err, ErrValidation) hold.
func (e *ValidationFailedError) Is(target error) bool {
	return target == ErrValidation
}

// Publish moves e to PUBLISHED if res is valid. The first publish stamps
// PublishedAt; publishing an entry that already carries a timestamp keeps
// it. On an invalid result e is left untouched.
func Publish(e *Entry, res validate.Result, now time.Time) error {
	if !res.Valid {
		return &ValidationFailedError{Errors: res.Errors}
	}
	e.Status = StatusPublished
	if e.PublishedAt == nil {
		t := now.UTC()
		e.PublishedAt = &t
	}
	return nil
}

// Unpublish moves a PUBLISHED entry back to DRAFT and clears its
// timestamp. Any other state is rejected without change.
func Unpublish(e *Entry) error {
	if e.Status != StatusPublished {
		return ErrNotPublished
	}
	e.Status = StatusDraft
	e.PublishedAt = nil
	return nil
}

// Archive moves e to ARCHIVED from any state, keeping PublishedAt.
func Archive(e *Entry) {
	e.Status = StatusArchived
}

// ApplyStatus performs a direct status write. The caller must have gated
// PUBLISHED on a valid validation result.
func ApplyStatus(e *Entry, s Status, now time.Time) {
	switch s {
	case StatusDraft:
		e.Status = StatusDraft
		e.PublishedAt = nil
	case StatusPublished:
		e.Status = StatusPublished
		if e.PublishedAt == nil {
			t := now.UTC()
			e.PublishedAt = &t
		}
	case StatusArchived:
		Archive(e)
	}
}
