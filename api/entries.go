package api

import (
	"context"
	"net/http"

	"github.com/xraph/folio/entry"
	"github.com/xraph/folio/field"
	"github.com/xraph/folio/id"
)

type validateEntryRequest struct {
	ContentTypeID id.ID      `json:"contentTypeId"`
	Data          field.Data `json:"data"`
}

func (h *Handler) createEntry(w http.ResponseWriter, r *http.Request) {
	var in entry.CreateInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.ContentTypeID.IsNil() {
		writeError(w, http.StatusBadRequest, "contentTypeId is required")
		return
	}
	in.CreatedBy = actor(r)

	e, err := h.folio.Entries().Create(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, e)
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	opts := entry.ListOpts{
		Offset:    queryInt(r, "offset", 0),
		Limit:     queryInt(r, "limit", 50),
		Search:    queryParam(r, "search"),
		SortBy:    entry.SortField(queryParam(r, "sortBy")),
		Ascending: queryParam(r, "order") == "asc",
	}

	if v := queryParam(r, "contentTypeId"); v != "" {
		ctID, err := id.ParseContentTypeID(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid content type ID")
			return
		}
		opts.ContentTypeID = ctID
	}
	if v := queryParam(r, "status"); v != "" {
		status := entry.Status(v)
		if !status.Valid() {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		opts.Status = &status
	}

	entries, err := h.folio.Entries().List(r.Context(), opts)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) validateEntry(w http.ResponseWriter, r *http.Request) {
	var req validateEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.folio.Entries().Validate(r.Context(), req.ContentTypeID, req.Data)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) getEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := id.ParseEntryID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry ID")
		return
	}

	e, getErr := h.folio.Entries().Get(r.Context(), entryID)
	if getErr != nil {
		h.writeServiceError(w, r, getErr)
		return
	}

	writeJSON(w, http.StatusOK, e)
}

func (h *Handler) updateEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := id.ParseEntryID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry ID")
		return
	}

	var in entry.UpdateInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	in.UpdatedBy = actor(r)

	e, updateErr := h.folio.Entries().Update(r.Context(), entryID, in)
	if updateErr != nil {
		h.writeServiceError(w, r, updateErr)
		return
	}

	writeJSON(w, http.StatusOK, e)
}

func (h *Handler) deleteEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := id.ParseEntryID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry ID")
		return
	}

	if deleteErr := h.folio.Entries().Delete(r.Context(), entryID); deleteErr != nil {
		h.writeServiceError(w, r, deleteErr)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) publishEntry(w http.ResponseWriter, r *http.Request) {
	h.transitionEntry(w, r, h.folio.Entries().Publish)
}

func (h *Handler) unpublishEntry(w http.ResponseWriter, r *http.Request) {
	h.transitionEntry(w, r, h.folio.Entries().Unpublish)
}

func (h *Handler) archiveEntry(w http.ResponseWriter, r *http.Request) {
	h.transitionEntry(w, r, h.folio.Entries().Archive)
}

type transitionFunc func(ctx context.Context, entryID id.ID, actor string) (*entry.Entry, error)

func (h *Handler) transitionEntry(w http.ResponseWriter, r *http.Request, fn transitionFunc) {
	entryID, err := id.ParseEntryID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry ID")
		return
	}

	e, transErr := fn(r.Context(), entryID, actor(r))
	if transErr != nil {
		h.writeServiceError(w, r, transErr)
		return
	}

	writeJSON(w, http.StatusOK, e)
}
