// Package field defines the field schema of content types: the field
// types, their validation rules and the values entries carry.
package field

import (
	"fmt"
	"regexp"
	"time"
)

// Type is the data type of a content type field.
type Type string

const (
	TypeText     Type = "TEXT"
	TypeRichText Type = "RICH_TEXT"
	TypeNumber   Type = "NUMBER"
	TypeDate     Type = "DATE"
	TypeBoolean  Type = "BOOLEAN"
	TypeMedia    Type = "MEDIA"
	TypeRelation Type = "RELATION"
)

// Types lists every field type in declaration order.
var Types = []Type{TypeText, TypeRichText, TypeNumber, TypeDate, TypeBoolean, TypeMedia, TypeRelation}

// Valid reports whether t is a known field type.
func (t Type) Valid() bool {
	return ZeroRules(t) != nil
}

// Definition describes one field of a content type.
type Definition struct {
	// Name is the data key. Unique within a content type.
	Name string

	// Label is the human-readable name used in validation messages.
	Label string

	Description string
	Required    bool
	Unique      bool

	// DefaultValue is applied on entry creation when the key is absent.
	DefaultValue Value

	// Rules holds the type-specific validation rules and determines the
	// field type.
	Rules Rules
}

// Type returns the field type, derived from the rule variant.
func (d Definition) Type() Type {
	if d.Rules == nil {
		return ""
	}
	return d.Rules.Type()
}

// Find returns the definition named name.
func Find(defs []Definition, name string) (Definition, bool) {
	for _, d := range defs {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}

// DefinitionError reports an invalid field definition.
type DefinitionError struct {
	Field   string
	Message string
}

func (e *DefinitionError) Error() string {
	if e.Field == "" {
		return "field definition: " + e.Message
	}
	return "field definition: " + e.Field + ": " + e.Message
}

var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateDefinitions checks a field list for structural problems and
// returns the first one found.
func ValidateDefinitions(defs []Definition) error {
	if len(defs) == 0 {
		return &DefinitionError{Message: "at least one field is required"}
	}

	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		if !namePattern.MatchString(d.Name) {
			return &DefinitionError{Field: d.Name, Message: "name must start with a letter or underscore and contain only letters, digits and underscores"}
		}
		if seen[d.Name] {
			return &DefinitionError{Field: d.Name, Message: "duplicate field name"}
		}
		seen[d.Name] = true

		if d.Label == "" {
			return &DefinitionError{Field: d.Name, Message: "label is required"}
		}
		if d.Rules == nil {
			return &DefinitionError{Field: d.Name, Message: "type is required"}
		}
		if err := validateRules(d.Rules); err != nil {
			return &DefinitionError{Field: d.Name, Message: err.Error()}
		}
	}
	return nil
}

func validateRules(r Rules) error {
	switch r := r.(type) {
	case TextRules:
		if err := checkLengths(r.MinLength, r.MaxLength); err != nil {
			return err
		}
		if r.Pattern != "" {
			if _, err := regexp.Compile(r.Pattern); err != nil {
				return fmt.Errorf("invalid pattern: %w", err)
			}
		}
	case RichTextRules:
		return checkLengths(r.MinLength, r.MaxLength)
	case NumberRules:
		if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
			return fmt.Errorf("min must not exceed max")
		}
	case DateRules:
		if r.MinDate != nil && r.MaxDate != nil && r.MinDate.After(*r.MaxDate) {
			return fmt.Errorf("minDate must not be after maxDate")
		}
	case MediaRules:
		if r.MaxFileSize < 0 {
			return fmt.Errorf("maxFileSize must not be negative")
		}
	case BooleanRules, RelationRules:
	}
	return nil
}

func checkLengths(lo, hi *int) error {
	if lo != nil && *lo < 0 {
		return fmt.Errorf("minLength must not be negative")
	}
	if hi != nil && *hi < 0 {
		return fmt.Errorf("maxLength must not be negative")
	}
	if lo != nil && hi != nil && *lo > *hi {
		return fmt.Errorf("minLength must not exceed maxLength")
	}
	return nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses the date formats accepted for DATE fields. Strings
// without a zone are read as UTC.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("field: unrecognized date %q", s)
}

// FormatISO formats t the way dates appear in messages and payloads:
// UTC with millisecond precision.
func FormatISO(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
