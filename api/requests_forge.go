package api

import (
	"github.com/xraph/folio/field"
	"github.com/xraph/folio/form"
)

// ---------------------------------------------------------------------------
// Content type requests
// ---------------------------------------------------------------------------

// CreateContentTypeForgeRequest binds the body for POST /content-types.
type CreateContentTypeForgeRequest struct {
	Name        string             `description:"Display name (2-100 characters)"     json:"name"`
	Slug        string             `description:"Unique kebab-case slug"              json:"slug"`
	Description string             `description:"Optional description"                json:"description,omitempty"`
	Fields      []field.Definition `description:"Ordered field schema"                json:"fields"`
}

// ListContentTypesForgeRequest binds query parameters for GET /content-types.
type ListContentTypesForgeRequest struct {
	Search string `description:"Match name or slug"     query:"search"`
	Offset int    `description:"Pagination offset"      query:"offset"`
	Limit  int    `description:"Page size (default 50)" query:"limit"`
}

// ContentTypeForgeRequest binds the path for content type routes.
type ContentTypeForgeRequest struct {
	ContentTypeID string `description:"Content type identifier" path:"contentTypeId"`
}

// ContentTypeBySlugForgeRequest binds the path for GET /content-types/slug/:slug.
type ContentTypeBySlugForgeRequest struct {
	Slug string `description:"Content type slug" path:"slug"`
}

// UpdateContentTypeForgeRequest binds path + body for PUT /content-types/:contentTypeId.
type UpdateContentTypeForgeRequest struct {
	ContentTypeID string             `description:"Content type identifier" path:"contentTypeId"`
	Name          *string            `description:"Display name"            json:"name,omitempty"`
	Slug          *string            `description:"Unique kebab-case slug"  json:"slug,omitempty"`
	Description   *string            `description:"Optional description"    json:"description,omitempty"`
	Fields        []field.Definition `description:"Replacement schema"      json:"fields,omitempty"`
}

// ---------------------------------------------------------------------------
// Entry requests
// ---------------------------------------------------------------------------

// CreateEntryForgeRequest binds the body for POST /entries.
type CreateEntryForgeRequest struct {
	ContentTypeID string     `description:"Content type identifier"        json:"contentTypeId"`
	Data          field.Data `description:"Field values keyed by name"     json:"data"`
	Status        string     `description:"Initial status (default DRAFT)" json:"status,omitempty"`
}

// ValidateEntryForgeRequest binds the body for POST /entries/validate.
type ValidateEntryForgeRequest struct {
	ContentTypeID string     `description:"Content type identifier"    json:"contentTypeId"`
	Data          field.Data `description:"Field values keyed by name" json:"data"`
}

// ListEntriesForgeRequest binds query parameters for GET /entries.
type ListEntriesForgeRequest struct {
	ContentTypeID string `description:"Filter by content type"               query:"contentTypeId"`
	Status        string `description:"Filter by status"                     query:"status"`
	Search        string `description:"Match any text value"                 query:"search"`
	SortBy        string `description:"createdAt, updatedAt or publishedAt"  query:"sortBy"`
	Order         string `description:"asc or desc (default desc)"          query:"order"`
	Offset        int    `description:"Pagination offset"                    query:"offset"`
	Limit         int    `description:"Page size (default 50)"               query:"limit"`
}

// EntryForgeRequest binds the path for entry routes and transitions.
type EntryForgeRequest struct {
	EntryID string `description:"Entry identifier" path:"entryId"`
}

// UpdateEntryForgeRequest binds path + body for PUT /entries/:entryId.
type UpdateEntryForgeRequest struct {
	EntryID string      `description:"Entry identifier"           path:"entryId"`
	Data    *field.Data `description:"Replacement field values"   json:"data,omitempty"`
	Status  *string     `description:"Target status"              json:"status,omitempty"`
}

// ---------------------------------------------------------------------------
// Webhook requests
// ---------------------------------------------------------------------------

// CreateWebhookForgeRequest binds the body for POST /webhooks.
type CreateWebhookForgeRequest struct {
	Name        string   `description:"Display name"                       json:"name"`
	URL         string   `description:"Delivery URL"                       json:"url"`
	Description string   `description:"Optional description"               json:"description,omitempty"`
	Events      []string `description:"Subscribed event names"             json:"events"`
	Secret      string   `description:"Signing secret (generated if empty)" json:"secret,omitempty"`
	IsActive    *bool    `description:"Active flag (default true)"         json:"isActive,omitempty"`
	SiteID      string   `description:"Restrict to one site"               json:"siteId,omitempty"`
	MaxRetries  *int     `description:"Total attempts (default 3)"         json:"maxRetries,omitempty"`
	RetryDelay  *int     `description:"Base retry delay in ms"             json:"retryDelay,omitempty"`
}

// ListWebhooksForgeRequest binds query parameters for GET /webhooks.
type ListWebhooksForgeRequest struct {
	SiteID string `description:"Filter by site"         query:"siteId"`
	Offset int    `description:"Pagination offset"      query:"offset"`
	Limit  int    `description:"Page size (default 50)" query:"limit"`
}

// WebhookForgeRequest binds the path for webhook routes.
type WebhookForgeRequest struct {
	WebhookID string `description:"Webhook identifier" path:"webhookId"`
}

// UpdateWebhookForgeRequest binds path + body for PUT /webhooks/:webhookId.
type UpdateWebhookForgeRequest struct {
	WebhookID   string   `description:"Webhook identifier"     path:"webhookId"`
	Name        *string  `description:"Display name"           json:"name,omitempty"`
	URL         *string  `description:"Delivery URL"           json:"url,omitempty"`
	Description *string  `description:"Optional description"   json:"description,omitempty"`
	Events      []string `description:"Subscribed event names" json:"events,omitempty"`
	IsActive    *bool    `description:"Active flag"            json:"isActive,omitempty"`
	SiteID      *string  `description:"Restrict to one site"   json:"siteId,omitempty"`
	MaxRetries  *int     `description:"Total attempts"         json:"maxRetries,omitempty"`
	RetryDelay  *int     `description:"Base retry delay in ms" json:"retryDelay,omitempty"`
}

// WebhookLogsForgeRequest binds path + query for GET /webhooks/:webhookId/logs.
type WebhookLogsForgeRequest struct {
	WebhookID string `description:"Webhook identifier"           path:"webhookId"`
	Limit     int    `description:"Number of attempts (max 50)" query:"limit"`
}

// ---------------------------------------------------------------------------
// Site requests
// ---------------------------------------------------------------------------

// CreateSiteForgeRequest binds the body for POST /sites.
type CreateSiteForgeRequest struct {
	Name           string   `description:"Display name"             json:"name"`
	Domain         string   `description:"Site domain"              json:"domain"`
	Description    string   `description:"Optional description"     json:"description,omitempty"`
	AllowedOrigins []string `description:"Allowed browser origins"  json:"allowedOrigins,omitempty"`
}

// ListSitesForgeRequest binds query parameters for GET /sites.
type ListSitesForgeRequest struct {
	Offset int `description:"Pagination offset"      query:"offset"`
	Limit  int `description:"Page size (default 50)" query:"limit"`
}

// SiteForgeRequest binds the path for site routes.
type SiteForgeRequest struct {
	SiteID string `description:"Site identifier" path:"siteId"`
}

// UpdateSiteForgeRequest binds path + body for PUT /sites/:siteId.
type UpdateSiteForgeRequest struct {
	SiteID         string   `description:"Site identifier"         path:"siteId"`
	Name           *string  `description:"Display name"            json:"name,omitempty"`
	Domain         *string  `description:"Site domain"             json:"domain,omitempty"`
	Description    *string  `description:"Optional description"    json:"description,omitempty"`
	AllowedOrigins []string `description:"Allowed browser origins" json:"allowedOrigins,omitempty"`
	IsActive       *bool    `description:"Active flag"             json:"isActive,omitempty"`
}

// ---------------------------------------------------------------------------
// Form requests
// ---------------------------------------------------------------------------

// CreateFormForgeRequest binds the body for POST /forms.
type CreateFormForgeRequest struct {
	Name           string       `description:"Display name"                 json:"name"`
	Slug           string       `description:"Unique kebab-case slug"       json:"slug"`
	Description    string       `description:"Optional description"         json:"description,omitempty"`
	Fields         []form.Field `description:"Form inputs"                  json:"fields"`
	RecipientEmail string       `description:"Notification recipient"       json:"recipientEmail"`
	SiteID         string       `description:"Restrict to one site"         json:"siteId,omitempty"`
	IsActive       *bool        `description:"Active flag (default true)"   json:"isActive,omitempty"`
}

// ListFormsForgeRequest binds query parameters for GET /forms.
type ListFormsForgeRequest struct {
	SiteID string `description:"Filter by site"         query:"siteId"`
	Offset int    `description:"Pagination offset"      query:"offset"`
	Limit  int    `description:"Page size (default 50)" query:"limit"`
}

// FormForgeRequest binds the path for form routes.
type FormForgeRequest struct {
	FormID string `description:"Form identifier" path:"formId"`
}

// UpdateFormForgeRequest binds path + body for PUT /forms/:formId.
type UpdateFormForgeRequest struct {
	FormID         string       `description:"Form identifier"        path:"formId"`
	Name           *string      `description:"Display name"           json:"name,omitempty"`
	Slug           *string      `description:"Unique kebab-case slug" json:"slug,omitempty"`
	Description    *string      `description:"Optional description"   json:"description,omitempty"`
	Fields         []form.Field `description:"Form inputs"            json:"fields,omitempty"`
	RecipientEmail *string      `description:"Notification recipient" json:"recipientEmail,omitempty"`
	SiteID         *string      `description:"Restrict to one site"   json:"siteId,omitempty"`
	IsActive       *bool        `description:"Active flag"            json:"isActive,omitempty"`
}

// ListSubmissionsForgeRequest binds path + query for GET /forms/:formId/submissions.
type ListSubmissionsForgeRequest struct {
	FormID string `description:"Form identifier"             path:"formId"`
	Status string `description:"UNREAD, READ or ARCHIVED"    query:"status"`
	Offset int    `description:"Pagination offset"           query:"offset"`
	Limit  int    `description:"Page size (default 50)"      query:"limit"`
}

// SubmissionForgeRequest binds the path for GET /submissions/:submissionId.
type SubmissionForgeRequest struct {
	SubmissionID string `description:"Submission identifier" path:"submissionId"`
}

// UpdateSubmissionForgeRequest binds path + body for PATCH /submissions/:submissionId.
type UpdateSubmissionForgeRequest struct {
	SubmissionID string `description:"Submission identifier"    path:"submissionId"`
	Status       string `description:"UNREAD, READ or ARCHIVED" json:"status"`
}

// ---------------------------------------------------------------------------
// Media requests
// ---------------------------------------------------------------------------

// ListMediaForgeRequest binds query parameters for GET /media.
type ListMediaForgeRequest struct {
	MimeType string `description:"Exact MIME type"                      query:"mimeType"`
	Category string `description:"image, video, audio or document"      query:"category"`
	Tag      string `description:"Filter by tag"                        query:"tag"`
	Search   string `description:"Match file names and alt text"        query:"search"`
	Offset   int    `description:"Pagination offset"                    query:"offset"`
	Limit    int    `description:"Page size (default 50)"               query:"limit"`
}

// MediaForgeRequest binds the path for media routes.
type MediaForgeRequest struct {
	MediaID string `description:"Media identifier" path:"mediaId"`
}

// UpdateMediaForgeRequest binds path + body for PUT /media/:mediaId.
type UpdateMediaForgeRequest struct {
	MediaID     string   `description:"Media identifier"     path:"mediaId"`
	AltText     *string  `description:"Alternative text"     json:"altText,omitempty"`
	Description *string  `description:"Optional description"  json:"description,omitempty"`
	Tags        []string `description:"Replacement tags"      json:"tags,omitempty"`
}

// ---------------------------------------------------------------------------
// Responses
// ---------------------------------------------------------------------------

// SecretForgeResponse is the response for POST /webhooks/:webhookId/rotate-secret.
type SecretForgeResponse struct {
	Secret string `json:"secret"`
}

// APIKeyForgeResponse is the response for POST /sites/:siteId/rotate-key.
type APIKeyForgeResponse struct {
	APIKey string `json:"apiKey"`
}

// StatsForgeRequest is empty: GET /stats has no parameters.
type StatsForgeRequest struct{}

// StatsForgeResponse is the response for GET /stats.
type StatsForgeResponse struct {
	PendingDeliveries int64 `json:"pendingDeliveries"`
}
