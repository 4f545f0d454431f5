package form

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xraph/folio/field"
	"github.com/xraph/folio/internal/validation"
)

// blank reports whether a submitted value counts as missing.
func blank(v any, present bool) bool {
	if !present || v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

// checkSubmission returns every problem with data, in form field order.
func checkSubmission(fields []Field, data map[string]any) []string {
	var problems []string
	for _, f := range fields {
		v, present := data[f.Name]
		if blank(v, present) {
			if f.Required {
				problems = append(problems, fmt.Sprintf("Field %q is required", f.Label))
			}
			continue
		}
		if p := checkValue(f, v); p != "" {
			problems = append(problems, fmt.Sprintf("Field %q %s", f.Label, p))
		}
	}
	return problems
}

func checkValue(f Field, v any) string {
	rule := f.Validation
	if rule == nil {
		rule = &FieldRule{}
	}

	switch f.Type {
	case FieldEmail:
		s, ok := v.(string)
		if !ok || !validation.IsEmail(s) {
			return "must be a valid email address"
		}

	case FieldNumber:
		n, ok := toNumber(v)
		if !ok {
			return "must be a number"
		}
		if rule.Min != nil && n < *rule.Min {
			return "must be at least " + strconv.FormatFloat(*rule.Min, 'f', -1, 64)
		}
		if rule.Max != nil && n > *rule.Max {
			return "must be at most " + strconv.FormatFloat(*rule.Max, 'f', -1, 64)
		}

	case FieldText, FieldTextarea:
		s, ok := v.(string)
		if !ok {
			return "must be a string"
		}
		n := utf8.RuneCountInString(s)
		if rule.MinLength != nil && n < *rule.MinLength {
			return fmt.Sprintf("must be at least %d characters", *rule.MinLength)
		}
		if rule.MaxLength != nil && n > *rule.MaxLength {
			return fmt.Sprintf("must be at most %d characters", *rule.MaxLength)
		}
		if rule.Pattern != "" {
			re, err := regexp.Compile(rule.Pattern)
			if err == nil && !re.MatchString(s) {
				return "does not match the required pattern"
			}
		}

	case FieldSelect:
		s, ok := v.(string)
		if !ok {
			return "must be a string"
		}
		if len(f.Options) > 0 && !contains(f.Options, s) {
			return "must be one of the available options"
		}

	case FieldCheckbox:
		if _, ok := v.(bool); !ok {
			return "must be a boolean"
		}

	case FieldDate:
		s, ok := v.(string)
		if !ok {
			return "must be a valid date"
		}
		if _, err := field.ParseDate(s); err != nil {
			return "must be a valid date"
		}
	}
	return ""
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func contains(list []string, s string) bool {
	for _, o := range list {
		if o == s {
			return true
		}
	}
	return false
}

// stringify renders a submitted value for notifications.
func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
