package field

import "time"

// Rules is the type-specific validation rule set of a field definition.
// The set of implementations is closed: one variant per field Type.
type Rules interface {
	// Type returns the field type the rules belong to.
	Type() Type

	rules()
}

// TextRules constrain TEXT fields.
type TextRules struct {
	MinLength *int   `json:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty"`
	Pattern   string `json:"pattern,omitempty"`
}

// RichTextRules constrain RICH_TEXT fields.
type RichTextRules struct {
	MinLength *int `json:"minLength,omitempty"`
	MaxLength *int `json:"maxLength,omitempty"`
}

// NumberRules constrain NUMBER fields.
type NumberRules struct {
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Integer bool     `json:"integer,omitempty"`
}

// DateRules constrain DATE fields. Both bounds are inclusive.
type DateRules struct {
	MinDate *time.Time `json:"minDate,omitempty"`
	MaxDate *time.Time `json:"maxDate,omitempty"`
}

// BooleanRules constrain BOOLEAN fields. There are none.
type BooleanRules struct{}

// MediaRules constrain MEDIA reference fields.
type MediaRules struct {
	Multiple         bool     `json:"multiple,omitempty"`
	AllowedMimeTypes []string `json:"allowedMimeTypes,omitempty"`
	MaxFileSize      int64    `json:"maxFileSize,omitempty"`
}

// RelationRules constrain RELATION reference fields.
type RelationRules struct {
	Multiple bool `json:"multiple,omitempty"`

	// TargetContentType optionally restricts referenced entries to a
	// content type, matched by ID or slug.
	TargetContentType string `json:"targetContentType,omitempty"`
}

func (TextRules) Type() Type     { return TypeText }
func (RichTextRules) Type() Type { return TypeRichText }
func (NumberRules) Type() Type   { return TypeNumber }
func (DateRules) Type() Type     { return TypeDate }
func (BooleanRules) Type() Type  { return TypeBoolean }
func (MediaRules) Type() Type    { return TypeMedia }
func (RelationRules) Type() Type { return TypeRelation }

func (TextRules) rules()     {}
func (RichTextRules) rules() {}
func (NumberRules) rules()   {}
func (DateRules) rules()     {}
func (BooleanRules) rules()  {}
func (MediaRules) rules()    {}
func (RelationRules) rules() {}

// ZeroRules returns the empty rule set for a field type, or nil if the
// type is unknown.
func ZeroRules(t Type) Rules {
	switch t {
	case TypeText:
		return TextRules{}
	case TypeRichText:
		return RichTextRules{}
	case TypeNumber:
		return NumberRules{}
	case TypeDate:
		return DateRules{}
	case TypeBoolean:
		return BooleanRules{}
	case TypeMedia:
		return MediaRules{}
	case TypeRelation:
		return RelationRules{}
	default:
		return nil
	}
}

// IntPtr returns a pointer to n. Handy for building rule literals.
func IntPtr(n int) *int { return &n }

// FloatPtr returns a pointer to f.
func FloatPtr(f float64) *float64 { return &f }
