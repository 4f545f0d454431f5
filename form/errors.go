package form

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a form does not exist.
	ErrNotFound = errors.New("folio: form not found")

	// ErrSubmissionNotFound is returned when a submission does not exist.
	ErrSubmissionNotFound = errors.New("folio: submission not found")

	// ErrDuplicateSlug is returned when a form slug is already taken.
	ErrDuplicateSlug = errors.New("folio: duplicate form slug")

	// ErrFormInactive is returned when submitting to a disabled form.
	ErrFormInactive = errors.New("contact form is not active")
)

// SubmissionError lists every problem found in a submission.
type SubmissionError struct {
	Problems []string
}

func (e *SubmissionError) Error() string {
	return strings.Join(e.Problems, "; ")
}
