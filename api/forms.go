package api

import (
	"net/http"

	"github.com/xraph/folio/form"
	"github.com/xraph/folio/id"
)

type submissionStatusRequest struct {
	Status form.SubmissionStatus `json:"status"`
}

func (h *Handler) createForm(w http.ResponseWriter, r *http.Request) {
	var in form.Input
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	in.CreatedBy = actor(r)

	f, err := h.folio.Forms().Create(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, f)
}

func (h *Handler) listForms(w http.ResponseWriter, r *http.Request) {
	opts := form.ListOpts{
		Offset:   queryInt(r, "offset", 0),
		Limit:    queryInt(r, "limit", 50),
		SiteID:   queryParam(r, "siteId"),
		IsActive: queryBool(r, "isActive"),
	}

	forms, err := h.folio.Forms().List(r.Context(), opts)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, forms)
}

func (h *Handler) getForm(w http.ResponseWriter, r *http.Request) {
	formID, err := id.ParseFormID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid form ID")
		return
	}

	f, getErr := h.folio.Forms().Get(r.Context(), formID)
	if getErr != nil {
		h.writeServiceError(w, r, getErr)
		return
	}

	writeJSON(w, http.StatusOK, f)
}

func (h *Handler) updateForm(w http.ResponseWriter, r *http.Request) {
	formID, err := id.ParseFormID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid form ID")
		return
	}

	var in form.UpdateInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	f, updateErr := h.folio.Forms().Update(r.Context(), formID, in)
	if updateErr != nil {
		h.writeServiceError(w, r, updateErr)
		return
	}

	writeJSON(w, http.StatusOK, f)
}

func (h *Handler) deleteForm(w http.ResponseWriter, r *http.Request) {
	formID, err := id.ParseFormID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid form ID")
		return
	}

	if deleteErr := h.folio.Forms().Delete(r.Context(), formID); deleteErr != nil {
		h.writeServiceError(w, r, deleteErr)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listSubmissions(w http.ResponseWriter, r *http.Request) {
	formID, err := id.ParseFormID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid form ID")
		return
	}

	opts := form.SubmissionListOpts{
		Offset: queryInt(r, "offset", 0),
		Limit:  queryInt(r, "limit", 50),
	}
	if v := queryParam(r, "status"); v != "" {
		status := form.SubmissionStatus(v)
		if !status.Valid() {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		opts.Status = &status
	}

	subs, listErr := h.folio.Forms().ListSubmissions(r.Context(), formID, opts)
	if listErr != nil {
		h.writeServiceError(w, r, listErr)
		return
	}

	writeJSON(w, http.StatusOK, subs)
}

func (h *Handler) getSubmission(w http.ResponseWriter, r *http.Request) {
	subID, err := id.ParseSubmissionID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid submission ID")
		return
	}

	sub, getErr := h.folio.Forms().GetSubmission(r.Context(), subID)
	if getErr != nil {
		h.writeServiceError(w, r, getErr)
		return
	}

	writeJSON(w, http.StatusOK, sub)
}

func (h *Handler) updateSubmission(w http.ResponseWriter, r *http.Request) {
	subID, err := id.ParseSubmissionID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid submission ID")
		return
	}

	var req submissionStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Status.Valid() {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	sub, updateErr := h.folio.Forms().UpdateSubmissionStatus(r.Context(), subID, req.Status)
	if updateErr != nil {
		h.writeServiceError(w, r, updateErr)
		return
	}

	writeJSON(w, http.StatusOK, sub)
}
