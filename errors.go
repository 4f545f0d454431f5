package folio

import (
	"errors"

	"github.com/xraph/folio/contenttype"
	"github.com/xraph/folio/delivery"
	"github.com/xraph/folio/entry"
	"github.com/xraph/folio/form"
	"github.com/xraph/folio/media"
	"github.com/xraph/folio/site"
	"github.com/xraph/folio/webhook"
)

// Sentinel errors returned by Folio operations. Not-found and conflict
// errors are defined by the owning subsystem and re-exported here, so
// errors.Is works against either name.
var (
	// ErrNoStore is returned when a Folio is created without a store.
	ErrNoStore = errors.New("folio: store is required")

	// ErrContentTypeNotFound is returned when a content type cannot be found.
	ErrContentTypeNotFound = contenttype.ErrNotFound

	// ErrEntryNotFound is returned when an entry cannot be found.
	ErrEntryNotFound = entry.ErrNotFound

	// ErrWebhookNotFound is returned when a webhook cannot be found.
	ErrWebhookNotFound = webhook.ErrNotFound

	// ErrTaskNotFound is returned when a delivery task cannot be found.
	ErrTaskNotFound = delivery.ErrNotFound

	// ErrSiteNotFound is returned when a site cannot be found.
	ErrSiteNotFound = site.ErrNotFound

	// ErrFormNotFound is returned when a contact form cannot be found.
	ErrFormNotFound = form.ErrNotFound

	// ErrSubmissionNotFound is returned when a form submission cannot be found.
	ErrSubmissionNotFound = form.ErrSubmissionNotFound

	// ErrMediaNotFound is returned when a media record cannot be found.
	ErrMediaNotFound = media.ErrNotFound

	// ErrDuplicateSlug is returned when a content type slug is already taken.
	ErrDuplicateSlug = contenttype.ErrDuplicateSlug

	// ErrDuplicateFormSlug is returned when a form slug is already taken.
	ErrDuplicateFormSlug = form.ErrDuplicateSlug

	// ErrInvalidAPIKey is returned when an API key does not authenticate a site.
	ErrInvalidAPIKey = site.ErrInvalidAPIKey

	// ErrStoreClosed is returned when a store operation is attempted after the store is closed.
	ErrStoreClosed = errors.New("folio: store is closed")

	// ErrMigrationFailed is returned when a database migration fails.
	ErrMigrationFailed = errors.New("folio: migration failed")
)
