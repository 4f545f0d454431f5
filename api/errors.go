package api

import (
	"errors"
	"net/http"

	"github.com/xraph/folio"
	"github.com/xraph/folio/contenttype"
	"github.com/xraph/folio/entry"
	"github.com/xraph/folio/form"
	"github.com/xraph/folio/media"
	"github.com/xraph/folio/site"
	"github.com/xraph/folio/webhook"
)

// validationResponse is the body of a 422 caused by entry data or a form
// submission. Errors holds either field-level problems or messages.
type validationResponse struct {
	Error  string `json:"error"`
	Errors any    `json:"errors"`
}

// statusOf maps a service error to its HTTP status. Unknown errors are 500.
func statusOf(err error) int {
	switch {
	case errors.Is(err, folio.ErrContentTypeNotFound),
		errors.Is(err, folio.ErrEntryNotFound),
		errors.Is(err, folio.ErrWebhookNotFound),
		errors.Is(err, folio.ErrTaskNotFound),
		errors.Is(err, folio.ErrSiteNotFound),
		errors.Is(err, folio.ErrFormNotFound),
		errors.Is(err, folio.ErrSubmissionNotFound),
		errors.Is(err, folio.ErrMediaNotFound):
		return http.StatusNotFound
	case errors.Is(err, folio.ErrDuplicateSlug),
		errors.Is(err, folio.ErrDuplicateFormSlug),
		errors.Is(err, entry.ErrNotPublished):
		return http.StatusConflict
	case errors.Is(err, form.ErrFormInactive):
		return http.StatusForbidden
	case errors.Is(err, folio.ErrInvalidAPIKey):
		return http.StatusUnauthorized
	case errors.Is(err, entry.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, media.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, media.ErrTypeNotAllowed):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, media.ErrMimeMismatch):
		return http.StatusBadRequest
	case isValidation(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func isValidation(err error) bool {
	var (
		ctErr   *contenttype.ValidationError
		whErr   *webhook.ValidationError
		siteErr *site.ValidationError
		formErr *form.ValidationError
		subErr  *form.SubmissionError
	)
	return errors.Is(err, entry.ErrValidation) ||
		errors.As(err, &ctErr) ||
		errors.As(err, &whErr) ||
		errors.As(err, &siteErr) ||
		errors.As(err, &formErr) ||
		errors.As(err, &subErr)
}

// writeServiceError writes err with the status statusOf assigns it.
// Internal errors are logged and reported without detail.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		failed *entry.ValidationFailedError
		subErr *form.SubmissionError
	)
	switch {
	case errors.As(err, &failed):
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{Error: "validation failed", Errors: failed.Errors})
		return
	case errors.As(err, &subErr):
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{Error: "validation failed", Errors: subErr.Problems})
		return
	}

	status := statusOf(err)
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}
