package webhook

import "github.com/xraph/folio/internal/validation"

// Input is the creation payload for webhooks.
type Input struct {
	Name        string   `json:"name" validate:"required,max=100"`
	URL         string   `json:"url" validate:"required,http_url"`
	Description string   `json:"description,omitempty" validate:"max=500"`
	Events      []string `json:"events" validate:"min=1,dive,webhook_event"`

	// Secret is the HMAC signing secret. Auto-generated if empty.
	Secret string `json:"secret,omitempty"`

	// IsActive defaults to true.
	IsActive *bool  `json:"isActive,omitempty"`
	SiteID   string `json:"siteId,omitempty"`

	// MaxRetries defaults to 3.
	MaxRetries *int `json:"maxRetries,omitempty" validate:"omitempty,min=0,max=10"`

	// RetryDelay defaults to 5000 ms.
	RetryDelay *int `json:"retryDelay,omitempty" validate:"omitempty,min=1000,max=300000"`

	CreatedBy string `json:"-"`
}

// UpdateInput modifies a webhook. Nil fields are left unchanged.
type UpdateInput struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	URL         *string  `json:"url,omitempty" validate:"omitempty,http_url"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=500"`
	Events      []string `json:"events,omitempty" validate:"omitempty,min=1,dive,webhook_event"`
	IsActive    *bool    `json:"isActive,omitempty"`
	SiteID      *string  `json:"siteId,omitempty"`
	MaxRetries  *int     `json:"maxRetries,omitempty" validate:"omitempty,min=0,max=10"`
	RetryDelay  *int     `json:"retryDelay,omitempty" validate:"omitempty,min=1000,max=300000"`
}

// ListOpts configures filtering and pagination for webhook listing.
type ListOpts struct {
	Offset   int
	Limit    int
	SiteID   string
	IsActive *bool
}

// ValidationError indicates invalid input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "webhook validation: " + e.Field + ": " + e.Message
}

// check validates a tagged input struct and reports the first problem as
// a *ValidationError.
func check(in any) error {
	if f := validation.Check(in); f != nil {
		return &ValidationError{Field: f.Field, Message: f.Message}
	}
	return nil
}
