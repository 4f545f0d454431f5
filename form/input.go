package form

import "github.com/xraph/folio/internal/validation"

// Input is the creation payload for forms.
type Input struct {
	Name           string  `json:"name" validate:"required,max=100"`
	Slug           string  `json:"slug" validate:"required,max=100,slug"`
	Description    string  `json:"description,omitempty" validate:"max=500"`
	Fields         []Field `json:"fields" validate:"min=1,dive"`
	RecipientEmail string  `json:"recipientEmail" validate:"required,email"`
	SiteID         string  `json:"siteId,omitempty"`
	IsActive       *bool   `json:"isActive,omitempty"`
	CreatedBy      string  `json:"-"`
}

// UpdateInput modifies a form. Nil fields are left unchanged.
type UpdateInput struct {
	Name           *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Slug           *string `json:"slug,omitempty" validate:"omitempty,max=100,slug"`
	Description    *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Fields         []Field `json:"fields,omitempty" validate:"omitempty,min=1,dive"`
	RecipientEmail *string `json:"recipientEmail,omitempty" validate:"omitempty,email"`
	SiteID         *string `json:"siteId,omitempty"`
	IsActive       *bool   `json:"isActive,omitempty"`
}

// ListOpts configures filtering and pagination for form listing.
type ListOpts struct {
	Offset   int
	Limit    int
	SiteID   string
	IsActive *bool
}

// SubmissionListOpts configures filtering and pagination for submissions.
type SubmissionListOpts struct {
	Offset int
	Limit  int
	Status *SubmissionStatus
}

// Meta describes who sent a submission.
type Meta struct {
	IP        string
	UserAgent string
}

// ValidationError indicates invalid input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "form validation: " + e.Field + ": " + e.Message
}

func check(in any) error {
	if f := validation.Check(in); f != nil {
		return &ValidationError{Field: f.Field, Message: f.Message}
	}
	return nil
}
