// Package validate checks entry data against the field schema of its
// content type.
//
// Validation is pure: it reads the data and the field definitions and
// returns every problem it finds, in a deterministic order. Required
// fields are reported first, in schema order, followed by per-key checks
// in data order.
package validate

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"sync"
	"unicode/utf8"

	"github.com/xraph/folio/field"
)

// Entry validates data against fields.
func Entry(data field.Data, fields []field.Definition) Result {
	var errs Errors

	for _, f := range fields {
		if !f.Required {
			continue
		}
		if v, ok := data.Get(f.Name); !ok || v.IsNull() {
			errs = append(errs, Error{
				Field:   f.Name,
				Code:    CodeRequired,
				Message: label(f) + " is required",
			})
		}
	}

	byName := make(map[string]field.Definition, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}

	data.Range(func(key string, v field.Value) bool {
		f, ok := byName[key]
		if !ok {
			errs = append(errs, Error{
				Field:   key,
				Code:    CodeUnknownField,
				Message: fmt.Sprintf("Field %q is not defined in content type", key),
			})
			return true
		}
		if v.IsNull() && !f.Required {
			return true
		}
		errs = append(errs, Field(f, v)...)
		return true
	})

	return Result{Valid: len(errs) == 0, Errors: errs}
}

// Field runs the type-specific checks for a single value.
func Field(f field.Definition, v field.Value) Errors {
	switch r := f.Rules.(type) {
	case field.TextRules:
		return checkText(f, r, v)
	case field.RichTextRules:
		return checkRichText(f, r, v)
	case field.NumberRules:
		return checkNumber(f, r, v)
	case field.DateRules:
		return checkDate(f, r, v)
	case field.BooleanRules:
		return checkBoolean(f, v)
	case field.MediaRules:
		return checkReference(f, r.Multiple, "media ID", v)
	case field.RelationRules:
		return checkReference(f, r.Multiple, "content entry ID", v)
	default:
		return Errors{{Field: f.Name, Code: CodeInvalidType, Message: label(f) + " has no type"}}
	}
}

func checkText(f field.Definition, r field.TextRules, v field.Value) Errors {
	s, ok := v.AsString()
	if !ok {
		return Errors{{Field: f.Name, Code: CodeInvalidType, Message: label(f) + " must be a string"}}
	}
	errs := checkLength(f, s, r.MinLength, r.MaxLength)
	if r.Pattern != "" {
		re, err := compilePattern(r.Pattern)
		if err != nil || !re.MatchString(s) {
			errs = append(errs, Error{Field: f.Name, Code: CodePattern, Message: label(f) + " does not match the required pattern"})
		}
	}
	return errs
}

func checkRichText(f field.Definition, r field.RichTextRules, v field.Value) Errors {
	s, ok := v.AsString()
	if !ok {
		return Errors{{Field: f.Name, Code: CodeInvalidType, Message: label(f) + " must be a string (HTML/Markdown)"}}
	}
	return checkLength(f, s, r.MinLength, r.MaxLength)
}

func checkLength(f field.Definition, s string, lo, hi *int) Errors {
	var errs Errors
	n := utf8.RuneCountInString(s)
	if lo != nil && n < *lo {
		errs = append(errs, Error{
			Field:   f.Name,
			Code:    CodeMinLength,
			Message: fmt.Sprintf("%s must be at least %d characters", label(f), *lo),
		})
	}
	if hi != nil && n > *hi {
		errs = append(errs, Error{
			Field:   f.Name,
			Code:    CodeMaxLength,
			Message: fmt.Sprintf("%s must be at most %d characters", label(f), *hi),
		})
	}
	return errs
}

func checkNumber(f field.Definition, r field.NumberRules, v field.Value) Errors {
	n, ok := v.AsNumber()
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
		return Errors{{Field: f.Name, Code: CodeInvalidType, Message: label(f) + " must be a valid number"}}
	}

	var errs Errors
	if r.Integer && n != math.Trunc(n) {
		errs = append(errs, Error{Field: f.Name, Code: CodeInteger, Message: label(f) + " must be an integer"})
	}
	if r.Min != nil && n < *r.Min {
		errs = append(errs, Error{
			Field:   f.Name,
			Code:    CodeMinValue,
			Message: fmt.Sprintf("%s must be at least %s", label(f), formatNumber(*r.Min)),
		})
	}
	if r.Max != nil && n > *r.Max {
		errs = append(errs, Error{
			Field:   f.Name,
			Code:    CodeMaxValue,
			Message: fmt.Sprintf("%s must be at most %s", label(f), formatNumber(*r.Max)),
		})
	}
	return errs
}

func checkDate(f field.Definition, r field.DateRules, v field.Value) Errors {
	t, ok := v.AsDate()
	if !ok {
		s, isStr := v.AsString()
		if !isStr {
			return Errors{{Field: f.Name, Code: CodeInvalidType, Message: label(f) + " must be a valid date"}}
		}
		parsed, err := field.ParseDate(s)
		if err != nil {
			return Errors{{Field: f.Name, Code: CodeInvalidDate, Message: label(f) + " must be a valid date"}}
		}
		t = parsed
	}

	var errs Errors
	if r.MinDate != nil && t.Before(*r.MinDate) {
		errs = append(errs, Error{
			Field:   f.Name,
			Code:    CodeMinDate,
			Message: fmt.Sprintf("%s must be on or after %s", label(f), field.FormatISO(*r.MinDate)),
		})
	}
	if r.MaxDate != nil && t.After(*r.MaxDate) {
		errs = append(errs, Error{
			Field:   f.Name,
			Code:    CodeMaxDate,
			Message: fmt.Sprintf("%s must be on or before %s", label(f), field.FormatISO(*r.MaxDate)),
		})
	}
	return errs
}

func checkBoolean(f field.Definition, v field.Value) Errors {
	if _, ok := v.AsBool(); !ok {
		return Errors{{Field: f.Name, Code: CodeInvalidType, Message: label(f) + " must be a boolean"}}
	}
	return nil
}

// checkReference validates the shape of MEDIA and RELATION values. It
// does not look the identifiers up.
func checkReference(f field.Definition, multiple bool, noun string, v field.Value) Errors {
	if !multiple {
		if s, ok := v.AsString(); !ok || s == "" {
			return Errors{{Field: f.Name, Code: CodeInvalidType, Message: fmt.Sprintf("%s must be a valid %s", label(f), noun)}}
		}
		return nil
	}

	items, ok := v.AsList()
	if !ok {
		return Errors{{Field: f.Name, Code: CodeInvalidType, Message: fmt.Sprintf("%s must be an array of %ss", label(f), noun)}}
	}
	var errs Errors
	for i, item := range items {
		if s, isStr := item.AsString(); !isStr || s == "" {
			errs = append(errs, Error{
				Field:   f.Name,
				Code:    CodeInvalidID,
				Message: fmt.Sprintf("%s[%d] must be a valid %s", label(f), i, noun),
			})
		}
	}
	return errs
}

// ReferenceIDs returns the identifiers held by a MEDIA or RELATION value.
// Non-string items are skipped.
func ReferenceIDs(v field.Value) []string {
	if s, ok := v.AsString(); ok {
		if s == "" {
			return nil
		}
		return []string{s}
	}
	items, _ := v.AsList()
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.AsString(); ok && s != "" {
			ids = append(ids, s)
		}
	}
	return ids
}

func label(f field.Definition) string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

var patterns sync.Map // pattern string -> *regexp.Regexp

func compilePattern(p string) (*regexp.Regexp, error) {
	if re, ok := patterns.Load(p); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(p)
	if err != nil {
		return nil, err
	}
	patterns.Store(p, re)
	return re, nil
}
