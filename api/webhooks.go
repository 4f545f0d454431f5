package api

import (
	"net/http"

	"github.com/xraph/folio/id"
	"github.com/xraph/folio/webhook"
)

// webhookCreated reveals the signing secret once, on creation.
type webhookCreated struct {
	webhook.View
	Secret string `json:"secret"`
}

type secretResponse struct {
	Secret string `json:"secret"`
}

func (h *Handler) createWebhook(w http.ResponseWriter, r *http.Request) {
	var in webhook.Input
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	in.CreatedBy = actor(r)

	wh, err := h.folio.Webhooks().Create(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, webhookCreated{View: webhook.NewView(wh), Secret: wh.Secret})
}

func (h *Handler) listWebhooks(w http.ResponseWriter, r *http.Request) {
	opts := webhook.ListOpts{
		Offset:   queryInt(r, "offset", 0),
		Limit:    queryInt(r, "limit", 50),
		SiteID:   queryParam(r, "siteId"),
		IsActive: queryBool(r, "isActive"),
	}

	hooks, err := h.folio.Webhooks().List(r.Context(), opts)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	views := make([]webhook.View, len(hooks))
	for i, wh := range hooks {
		views[i] = webhook.NewView(wh)
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) getWebhook(w http.ResponseWriter, r *http.Request) {
	whID, err := id.ParseWebhookID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid webhook ID")
		return
	}

	wh, getErr := h.folio.Webhooks().Get(r.Context(), whID)
	if getErr != nil {
		h.writeServiceError(w, r, getErr)
		return
	}

	writeJSON(w, http.StatusOK, webhook.NewView(wh))
}

func (h *Handler) updateWebhook(w http.ResponseWriter, r *http.Request) {
	whID, err := id.ParseWebhookID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid webhook ID")
		return
	}

	var in webhook.UpdateInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	wh, updateErr := h.folio.Webhooks().Update(r.Context(), whID, in)
	if updateErr != nil {
		h.writeServiceError(w, r, updateErr)
		return
	}

	writeJSON(w, http.StatusOK, webhook.NewView(wh))
}

func (h *Handler) deleteWebhook(w http.ResponseWriter, r *http.Request) {
	whID, err := id.ParseWebhookID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid webhook ID")
		return
	}

	if deleteErr := h.folio.Webhooks().Delete(r.Context(), whID); deleteErr != nil {
		h.writeServiceError(w, r, deleteErr)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) rotateWebhookSecret(w http.ResponseWriter, r *http.Request) {
	whID, err := id.ParseWebhookID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid webhook ID")
		return
	}

	secret, rotateErr := h.folio.Webhooks().RotateSecret(r.Context(), whID)
	if rotateErr != nil {
		h.writeServiceError(w, r, rotateErr)
		return
	}

	writeJSON(w, http.StatusOK, secretResponse{Secret: secret})
}

func (h *Handler) testWebhook(w http.ResponseWriter, r *http.Request) {
	whID, err := id.ParseWebhookID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid webhook ID")
		return
	}

	res, testErr := h.folio.TestWebhook(r.Context(), whID)
	if testErr != nil {
		h.writeServiceError(w, r, testErr)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) webhookLogs(w http.ResponseWriter, r *http.Request) {
	whID, err := id.ParseWebhookID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid webhook ID")
		return
	}

	logs, logErr := h.folio.Webhooks().DeliveryLogs(r.Context(), whID, queryInt(r, "limit", 0))
	if logErr != nil {
		h.writeServiceError(w, r, logErr)
		return
	}

	writeJSON(w, http.StatusOK, logs)
}
