package contenttype

import (
	"regexp"
	"unicode/utf8"

	"github.com/xraph/folio/field"
)

// Input is the creation payload for content types.
type Input struct {
	Name        string             `json:"name"`
	Slug        string             `json:"slug"`
	Description string             `json:"description,omitempty"`
	Fields      []field.Definition `json:"fields"`
	CreatedBy   string             `json:"-"`
}

// UpdateInput modifies a content type. Nil fields are left unchanged.
type UpdateInput struct {
	Name        *string            `json:"name,omitempty"`
	Slug        *string            `json:"slug,omitempty"`
	Description *string            `json:"description,omitempty"`
	Fields      []field.Definition `json:"fields,omitempty"`
}

// ValidationError indicates invalid input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "content type validation: " + e.Field + ": " + e.Message
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidSlug reports whether s is a lowercase kebab-case slug.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

func validateName(name string) error {
	if n := utf8.RuneCountInString(name); n < 2 || n > 100 {
		return &ValidationError{Field: "name", Message: "must be between 2 and 100 characters"}
	}
	return nil
}

func validateSlug(slug string) error {
	if !ValidSlug(slug) {
		return &ValidationError{Field: "slug", Message: "must contain only lowercase letters, numbers and hyphens"}
	}
	return nil
}

func validateDescription(desc string) error {
	if utf8.RuneCountInString(desc) > 500 {
		return &ValidationError{Field: "description", Message: "must be at most 500 characters"}
	}
	return nil
}

func validateFields(defs []field.Definition) error {
	if err := field.ValidateDefinitions(defs); err != nil {
		return &ValidationError{Field: "fields", Message: err.Error()}
	}
	return nil
}

func (in Input) validate() error {
	if err := validateName(in.Name); err != nil {
		return err
	}
	if err := validateSlug(in.Slug); err != nil {
		return err
	}
	if err := validateDescription(in.Description); err != nil {
		return err
	}
	return validateFields(in.Fields)
}
