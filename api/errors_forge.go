package api

import (
	"errors"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/folio"
	"github.com/xraph/folio/entry"
	"github.com/xraph/folio/form"
	"github.com/xraph/folio/media"
)

// mapError converts folio errors to Forge HTTP errors.
func mapError(err error) error {
	switch {
	case errors.Is(err, folio.ErrContentTypeNotFound),
		errors.Is(err, folio.ErrEntryNotFound),
		errors.Is(err, folio.ErrWebhookNotFound),
		errors.Is(err, folio.ErrSiteNotFound),
		errors.Is(err, folio.ErrFormNotFound),
		errors.Is(err, folio.ErrSubmissionNotFound),
		errors.Is(err, folio.ErrMediaNotFound):
		return forge.NotFound(err.Error())
	case errors.Is(err, folio.ErrDuplicateSlug),
		errors.Is(err, folio.ErrDuplicateFormSlug),
		errors.Is(err, entry.ErrNotPublished):
		return forge.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, form.ErrFormInactive):
		return forge.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, entry.ErrInvalidStatus),
		errors.Is(err, media.ErrMimeMismatch):
		return forge.BadRequest(err.Error())
	case errors.Is(err, media.ErrTooLarge):
		return forge.NewHTTPError(http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, media.ErrTypeNotAllowed):
		return forge.NewHTTPError(http.StatusUnsupportedMediaType, err.Error())
	case isValidation(err):
		return forge.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, folio.ErrStoreClosed),
		errors.Is(err, folio.ErrMigrationFailed):
		return forge.InternalError(err)
	default:
		return forge.InternalError(err)
	}
}
