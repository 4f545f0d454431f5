package site

import (
	"strings"

	"github.com/xraph/folio/internal/validation"
)

// Input is the creation payload for sites.
type Input struct {
	Name           string   `json:"name" validate:"required,max=100"`
	Domain         string   `json:"domain" validate:"required,max=255"`
	Description    string   `json:"description,omitempty" validate:"max=500"`
	AllowedOrigins []string `json:"allowedOrigins,omitempty" validate:"omitempty,dive,url|eq=*"`
	CreatedBy      string   `json:"-"`
}

// UpdateInput modifies a site. Nil fields are left unchanged.
type UpdateInput struct {
	Name           *string  `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Domain         *string  `json:"domain,omitempty" validate:"omitempty,min=1,max=255"`
	Description    *string  `json:"description,omitempty" validate:"omitempty,max=500"`
	AllowedOrigins []string `json:"allowedOrigins,omitempty" validate:"omitempty,dive,url|eq=*"`
	IsActive       *bool    `json:"isActive,omitempty"`
}

// ListOpts configures filtering and pagination for site listing.
type ListOpts struct {
	Offset   int
	Limit    int
	IsActive *bool
}

// ValidationError indicates invalid input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "site validation: " + e.Field + ": " + e.Message
}

func check(in any) error {
	if f := validation.Check(in); f != nil {
		return &ValidationError{Field: f.Field, Message: f.Message}
	}
	return nil
}

func normalizeDomain(d string) string {
	return strings.ToLower(strings.TrimSpace(d))
}
