package form

import (
	"context"

	"github.com/xraph/folio/id"
)

// Store defines the persistence contract for forms and submissions.
type Store interface {
	// CreateForm persists a new form.
	CreateForm(ctx context.Context, f *Form) error

	// GetForm returns a form by ID.
	GetForm(ctx context.Context, formID id.ID) (*Form, error)

	// GetFormBySlug returns a form by slug.
	GetFormBySlug(ctx context.Context, slug string) (*Form, error)

	// UpdateForm modifies an existing form. SubmissionCount is owned by
	// CreateSubmission and is left untouched.
	UpdateForm(ctx context.Context, f *Form) error

	// DeleteForm removes a form together with its submissions.
	DeleteForm(ctx context.Context, formID id.ID) error

	// ListForms returns forms, optionally filtered.
	ListForms(ctx context.Context, opts ListOpts) ([]*Form, error)

	// CreateSubmission persists a submission and increments the owning
	// form's SubmissionCount.
	CreateSubmission(ctx context.Context, s *Submission) error

	// GetSubmission returns a submission by ID.
	GetSubmission(ctx context.Context, subID id.ID) (*Submission, error)

	// UpdateSubmission modifies an existing submission.
	UpdateSubmission(ctx context.Context, s *Submission) error

	// ListSubmissions returns the submissions of a form, newest first.
	ListSubmissions(ctx context.Context, formID id.ID, opts SubmissionListOpts) ([]*Submission, error)
}
