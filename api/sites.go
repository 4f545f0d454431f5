package api

import (
	"net/http"

	"github.com/xraph/folio/id"
	"github.com/xraph/folio/site"
)

// siteCreated reveals the plaintext API key once, on creation.
type siteCreated struct {
	Site   *site.Site `json:"site"`
	APIKey string     `json:"apiKey"`
}

type apiKeyResponse struct {
	APIKey string `json:"apiKey"`
}

func (h *Handler) createSite(w http.ResponseWriter, r *http.Request) {
	var in site.Input
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	in.CreatedBy = actor(r)

	s, key, err := h.folio.Sites().Create(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, siteCreated{Site: s, APIKey: key})
}

func (h *Handler) listSites(w http.ResponseWriter, r *http.Request) {
	opts := site.ListOpts{
		Offset:   queryInt(r, "offset", 0),
		Limit:    queryInt(r, "limit", 50),
		IsActive: queryBool(r, "isActive"),
	}

	sites, err := h.folio.Sites().List(r.Context(), opts)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sites)
}

func (h *Handler) getSite(w http.ResponseWriter, r *http.Request) {
	siteID, err := id.ParseSiteID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid site ID")
		return
	}

	s, getErr := h.folio.Sites().Get(r.Context(), siteID)
	if getErr != nil {
		h.writeServiceError(w, r, getErr)
		return
	}

	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) updateSite(w http.ResponseWriter, r *http.Request) {
	siteID, err := id.ParseSiteID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid site ID")
		return
	}

	var in site.UpdateInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s, updateErr := h.folio.Sites().Update(r.Context(), siteID, in)
	if updateErr != nil {
		h.writeServiceError(w, r, updateErr)
		return
	}

	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) deleteSite(w http.ResponseWriter, r *http.Request) {
	siteID, err := id.ParseSiteID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid site ID")
		return
	}

	if deleteErr := h.folio.Sites().Delete(r.Context(), siteID); deleteErr != nil {
		h.writeServiceError(w, r, deleteErr)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) rotateSiteKey(w http.ResponseWriter, r *http.Request) {
	siteID, err := id.ParseSiteID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid site ID")
		return
	}

	key, rotateErr := h.folio.Sites().RotateAPIKey(r.Context(), siteID)
	if rotateErr != nil {
		h.writeServiceError(w, r, rotateErr)
		return
	}

	writeJSON(w, http.StatusOK, apiKeyResponse{APIKey: key})
}
