package api

import (
	"net/http"

	"github.com/xraph/folio/contenttype"
	"github.com/xraph/folio/id"
)

func (h *Handler) createContentType(w http.ResponseWriter, r *http.Request) {
	var in contenttype.Input
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	in.CreatedBy = actor(r)

	ct, err := h.folio.ContentTypes().Create(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, ct)
}

func (h *Handler) listContentTypes(w http.ResponseWriter, r *http.Request) {
	opts := contenttype.ListOpts{
		Offset: queryInt(r, "offset", 0),
		Limit:  queryInt(r, "limit", 50),
		Search: queryParam(r, "search"),
	}

	types, err := h.folio.ContentTypes().List(r.Context(), opts)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types)
}

func (h *Handler) getContentType(w http.ResponseWriter, r *http.Request) {
	ctID, err := id.ParseContentTypeID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid content type ID")
		return
	}

	ct, getErr := h.folio.ContentTypes().Get(r.Context(), ctID)
	if getErr != nil {
		h.writeServiceError(w, r, getErr)
		return
	}

	writeJSON(w, http.StatusOK, ct)
}

func (h *Handler) getContentTypeBySlug(w http.ResponseWriter, r *http.Request) {
	ct, err := h.folio.ContentTypes().GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ct)
}

func (h *Handler) updateContentType(w http.ResponseWriter, r *http.Request) {
	ctID, err := id.ParseContentTypeID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid content type ID")
		return
	}

	var in contenttype.UpdateInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ct, updateErr := h.folio.ContentTypes().Update(r.Context(), ctID, in)
	if updateErr != nil {
		h.writeServiceError(w, r, updateErr)
		return
	}

	writeJSON(w, http.StatusOK, ct)
}

func (h *Handler) deleteContentType(w http.ResponseWriter, r *http.Request) {
	ctID, err := id.ParseContentTypeID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid content type ID")
		return
	}

	if deleteErr := h.folio.ContentTypes().Delete(r.Context(), ctID); deleteErr != nil {
		h.writeServiceError(w, r, deleteErr)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
