package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/xraph/folio/id"
	"github.com/xraph/folio/media"
)

// multipartMemory is how much of a multipart upload is held in memory
// before spilling to temporary files.
const multipartMemory = 8 << 20

func (h *Handler) uploadMedia(w http.ResponseWriter, r *http.Request) {
	if limit := h.folio.Config().MaxUploadSize; limit > 0 {
		// Room for the multipart envelope and the text fields.
		r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, media.ErrTooLarge.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck // temp files only

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	in := media.UploadInput{
		Name:         header.Filename,
		Content:      file,
		DeclaredType: header.Header.Get("Content-Type"),
		AltText:      r.FormValue("altText"),
		Description:  r.FormValue("description"),
		Tags:         splitTags(r.FormValue("tags")),
		UploadedBy:   actor(r),
	}

	m, uploadErr := h.folio.Media().Upload(r.Context(), in)
	if uploadErr != nil {
		h.writeServiceError(w, r, uploadErr)
		return
	}

	writeJSON(w, http.StatusCreated, m)
}

func (h *Handler) listMedia(w http.ResponseWriter, r *http.Request) {
	opts := media.ListOpts{
		Offset:   queryInt(r, "offset", 0),
		Limit:    queryInt(r, "limit", 50),
		MimeType: queryParam(r, "mimeType"),
		Category: media.Category(queryParam(r, "category")),
		Tag:      queryParam(r, "tag"),
		Search:   queryParam(r, "search"),
	}

	items, err := h.folio.Media().List(r.Context(), opts)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) getMedia(w http.ResponseWriter, r *http.Request) {
	mediaID, err := id.ParseMediaID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid media ID")
		return
	}

	m, getErr := h.folio.Media().Get(r.Context(), mediaID)
	if getErr != nil {
		h.writeServiceError(w, r, getErr)
		return
	}

	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) updateMedia(w http.ResponseWriter, r *http.Request) {
	mediaID, err := id.ParseMediaID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid media ID")
		return
	}

	var in media.UpdateInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, updateErr := h.folio.Media().Update(r.Context(), mediaID, in)
	if updateErr != nil {
		h.writeServiceError(w, r, updateErr)
		return
	}

	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) deleteMedia(w http.ResponseWriter, r *http.Request) {
	mediaID, err := id.ParseMediaID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid media ID")
		return
	}

	if deleteErr := h.folio.Media().Delete(r.Context(), mediaID); deleteErr != nil {
		h.writeServiceError(w, r, deleteErr)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
