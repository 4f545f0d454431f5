// Package validation wraps go-playground/validator for Folio input types.
// Field names are reported by their JSON names.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/xraph/folio/event"
)

// Failure describes the first field that failed validation.
type Failure struct {
	Field   string
	Message string
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator instance.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("webhook_event", func(fl validator.FieldLevel) bool {
			return event.Valid(fl.Field().String())
		})
		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		})
		instance = v
	})
	return instance
}

// Check validates a tagged struct and returns the first failing field, or
// nil when in is valid.
func Check(in any) *Failure {
	err := Validator().Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &Failure{Message: err.Error()}
	}
	fe := fieldErrs[0]
	name, _, _ := strings.Cut(fe.Field(), "[")
	return &Failure{Field: name, Message: describe(fe)}
}

// IsEmail reports whether s is a syntactically valid email address.
func IsEmail(s string) bool {
	return Validator().Var(s, "required,email") == nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "http_url":
		return "must be a valid http or https URL"
	case "email":
		return "must be a valid email address"
	case "hostname", "fqdn":
		return "must be a valid domain"
	case "slug":
		return "must contain only lowercase letters, numbers and hyphens"
	case "webhook_event":
		return fmt.Sprintf("unknown event %q", fe.Value())
	case "oneof":
		return "must be one of " + fe.Param()
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must contain at least " + fe.Param() + " item(s)"
		}
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	}
	return "invalid"
}
