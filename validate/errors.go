package validate

import "strings"

// Code classifies a validation error.
type Code string

const (
	CodeRequired     Code = "required"
	CodeInvalidType  Code = "invalid_type"
	CodeMinLength    Code = "min_length"
	CodeMaxLength    Code = "max_length"
	CodePattern      Code = "pattern"
	CodeMinValue     Code = "min_value"
	CodeMaxValue     Code = "max_value"
	CodeInteger      Code = "integer"
	CodeMinDate      Code = "min_date"
	CodeMaxDate      Code = "max_date"
	CodeInvalidDate  Code = "invalid_date"
	CodeInvalidID    Code = "invalid_id"
	CodeUnknownField Code = "unknown_field"
)

// Error is a single field-level validation problem.
type Error struct {
	Field   string `json:"field"`
	Code    Code   `json:"type"`
	Message string `json:"message"`
}

func (e Error) Error() string {
	return e.Field + ": " + e.Message
}

// Errors is an ordered list of validation problems.
type Errors []Error

func (es Errors) Error() string {
	if len(es) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Has reports whether es contains an error with the given field and code.
func (es Errors) Has(fieldName string, code Code) bool {
	for _, e := range es {
		if e.Field == fieldName && e.Code == code {
			return true
		}
	}
	return false
}

// Result is the outcome of validating entry data.
type Result struct {
	Valid  bool   `json:"valid"`
	Errors Errors `json:"errors"`
}

// Err returns nil for a valid result and the error list otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return r.Errors
}

// Merge appends extra errors and recomputes validity.
func (r Result) Merge(extra Errors) Result {
	if len(extra) == 0 {
		return r
	}
	errs := make(Errors, 0, len(r.Errors)+len(extra))
	errs = append(errs, r.Errors...)
	errs = append(errs, extra...)
	return Result{Valid: false, Errors: errs}
}
