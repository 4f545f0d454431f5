// Package form manages contact forms and their submissions.
package form

import (
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/internal/entity"
)

// FieldType is the input type of a form field.
type FieldType string

const (
	FieldText     FieldType = "TEXT"
	FieldEmail    FieldType = "EMAIL"
	FieldTextarea FieldType = "TEXTAREA"
	FieldSelect   FieldType = "SELECT"
	FieldNumber   FieldType = "NUMBER"
	FieldCheckbox FieldType = "CHECKBOX"
	FieldDate     FieldType = "DATE"
)

// Form is a public contact form.
type Form struct {
	entity.Entity

	// ID is the unique TypeID for this form.
	ID id.ID `json:"id"`

	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description string  `json:"description,omitempty"`
	Fields      []Field `json:"fields"`

	// RecipientEmail receives a notification for every submission.
	RecipientEmail string `json:"recipientEmail"`

	// SiteID scopes the form to one site.
	SiteID string `json:"siteId,omitempty"`

	IsActive        bool  `json:"isActive"`
	SubmissionCount int64 `json:"submissionCount"`

	CreatedBy string `json:"createdBy,omitempty"`
}

// Field is one input of a form.
type Field struct {
	Name        string     `json:"name" validate:"required,max=100"`
	Type        FieldType  `json:"type" validate:"required,oneof=TEXT EMAIL TEXTAREA SELECT NUMBER CHECKBOX DATE"`
	Label       string     `json:"label" validate:"required,max=200"`
	Placeholder string     `json:"placeholder,omitempty"`
	Required    bool       `json:"required"`
	Options     []string   `json:"options,omitempty"`
	Validation  *FieldRule `json:"validation,omitempty"`
}

// FieldRule holds optional constraints on a form field.
type FieldRule struct {
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
}

// Clone returns a copy of f that shares no slices with it.
func (f *Form) Clone() *Form {
	cp := *f
	cp.Fields = append([]Field(nil), f.Fields...)
	return &cp
}

// SubmissionStatus tracks the triage state of a submission.
type SubmissionStatus string

const (
	SubmissionUnread   SubmissionStatus = "UNREAD"
	SubmissionRead     SubmissionStatus = "READ"
	SubmissionArchived SubmissionStatus = "ARCHIVED"
)

// Valid reports whether s is a known status.
func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionUnread, SubmissionRead, SubmissionArchived:
		return true
	}
	return false
}

// Submission is one filled-in form.
type Submission struct {
	entity.Entity

	// ID is the unique TypeID for this submission.
	ID id.ID `json:"id"`

	FormID id.ID            `json:"formId"`
	Data   map[string]any   `json:"data"`
	Status SubmissionStatus `json:"status"`

	SubmitterIP        string `json:"submitterIp,omitempty"`
	SubmitterUserAgent string `json:"submitterUserAgent,omitempty"`

	EmailSent  bool   `json:"emailSent"`
	EmailError string `json:"emailError,omitempty"`
}

// Clone returns a shallow copy of s with its own data map.
func (s *Submission) Clone() *Submission {
	cp := *s
	cp.Data = make(map[string]any, len(s.Data))
	for k, v := range s.Data {
		cp.Data[k] = v
	}
	return &cp
}
