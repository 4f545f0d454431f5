// Package api provides the HTTP surface of Folio: the admin API for
// content types, entries, webhooks, sites, forms and media, and the
// public delivery API authenticated by site API keys.
//
// Handler mounts every route at the root; embed it under a prefix with
// http.StripPrefix.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/xraph/folio"
	"github.com/xraph/folio/ratelimit"
)

// HeaderActor carries the opaque identifier of the admin user making a
// request. Authentication itself is left to the embedding application.
const HeaderActor = "X-Actor-Id"

// Handler is the root HTTP handler for the Folio API.
type Handler struct {
	folio   *folio.Folio
	limiter *ratelimit.Limiter
	logger  *slog.Logger
	mux     *http.ServeMux
}

// NewHandler creates a new API handler backed by f.
func NewHandler(f *folio.Folio, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = f.Logger()
	}

	h := &Handler{
		folio:   f,
		limiter: ratelimit.New(),
		logger:  logger,
		mux:     http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.health)
	h.mux.HandleFunc("GET /stats", h.stats)

	// Content types
	h.mux.HandleFunc("POST /content-types", h.createContentType)
	h.mux.HandleFunc("GET /content-types", h.listContentTypes)
	h.mux.HandleFunc("GET /content-types/slug/{slug}", h.getContentTypeBySlug)
	h.mux.HandleFunc("GET /content-types/{id}", h.getContentType)
	h.mux.HandleFunc("PUT /content-types/{id}", h.updateContentType)
	h.mux.HandleFunc("DELETE /content-types/{id}", h.deleteContentType)

	// Entries
	h.mux.HandleFunc("POST /entries", h.createEntry)
	h.mux.HandleFunc("GET /entries", h.listEntries)
	h.mux.HandleFunc("POST /entries/validate", h.validateEntry)
	h.mux.HandleFunc("GET /entries/{id}", h.getEntry)
	h.mux.HandleFunc("PUT /entries/{id}", h.updateEntry)
	h.mux.HandleFunc("DELETE /entries/{id}", h.deleteEntry)
	h.mux.HandleFunc("POST /entries/{id}/publish", h.publishEntry)
	h.mux.HandleFunc("POST /entries/{id}/unpublish", h.unpublishEntry)
	h.mux.HandleFunc("POST /entries/{id}/archive", h.archiveEntry)

	// Webhooks
	h.mux.HandleFunc("POST /webhooks", h.createWebhook)
	h.mux.HandleFunc("GET /webhooks", h.listWebhooks)
	h.mux.HandleFunc("GET /webhooks/{id}", h.getWebhook)
	h.mux.HandleFunc("PUT /webhooks/{id}", h.updateWebhook)
	h.mux.HandleFunc("DELETE /webhooks/{id}", h.deleteWebhook)
	h.mux.HandleFunc("POST /webhooks/{id}/rotate-secret", h.rotateWebhookSecret)
	h.mux.HandleFunc("POST /webhooks/{id}/test", h.testWebhook)
	h.mux.HandleFunc("GET /webhooks/{id}/logs", h.webhookLogs)

	// Sites
	h.mux.HandleFunc("POST /sites", h.createSite)
	h.mux.HandleFunc("GET /sites", h.listSites)
	h.mux.HandleFunc("GET /sites/{id}", h.getSite)
	h.mux.HandleFunc("PUT /sites/{id}", h.updateSite)
	h.mux.HandleFunc("DELETE /sites/{id}", h.deleteSite)
	h.mux.HandleFunc("POST /sites/{id}/rotate-key", h.rotateSiteKey)

	// Forms
	h.mux.HandleFunc("POST /forms", h.createForm)
	h.mux.HandleFunc("GET /forms", h.listForms)
	h.mux.HandleFunc("GET /forms/{id}", h.getForm)
	h.mux.HandleFunc("PUT /forms/{id}", h.updateForm)
	h.mux.HandleFunc("DELETE /forms/{id}", h.deleteForm)
	h.mux.HandleFunc("GET /forms/{id}/submissions", h.listSubmissions)
	h.mux.HandleFunc("GET /submissions/{id}", h.getSubmission)
	h.mux.HandleFunc("PATCH /submissions/{id}", h.updateSubmission)

	// Media
	h.mux.HandleFunc("POST /media", h.uploadMedia)
	h.mux.HandleFunc("GET /media", h.listMedia)
	h.mux.HandleFunc("GET /media/{id}", h.getMedia)
	h.mux.HandleFunc("PUT /media/{id}", h.updateMedia)
	h.mux.HandleFunc("DELETE /media/{id}", h.deleteMedia)

	// Public delivery API
	h.mux.Handle("GET /public/content-types", h.public(h.publicContentTypes))
	h.mux.Handle("GET /public/content-types/{slug}", h.public(h.publicContentType))
	h.mux.Handle("GET /public/content/{typeSlug}", h.public(h.publicEntries))
	h.mux.Handle("GET /public/content/{typeSlug}/{id}", h.public(h.publicEntry))
	h.mux.Handle("GET /public/search", h.public(h.publicSearch))
	h.mux.Handle("POST /public/forms/{slug}/submit", h.public(h.publicSubmitForm))
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.withMiddleware(h.mux).ServeHTTP(w, r)
}

func (h *Handler) withMiddleware(next http.Handler) http.Handler {
	return h.panicRecovery(h.logging(next))
}

func (h *Handler) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		h.logger.Info("api request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (h *Handler) panicRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.logger.Error("panic recovered",
					"error", rec,
					"stack", string(debug.Stack()),
				)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.folio.Ping(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "health check failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	pending, err := h.folio.PendingDeliveries(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"pendingDeliveries": pending})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// JSON helpers.

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best effort
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func actor(r *http.Request) string {
	return r.Header.Get(HeaderActor)
}

// queryParam returns a query parameter value, or empty string if not present.
func queryParam(r *http.Request, key string) string {
	return r.URL.Query().Get(key)
}

// queryInt returns a non-negative query parameter as int or a default value.
func queryInt(r *http.Request, key string, defaultVal int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 0 {
		return defaultVal
	}
	return n
}

// queryBool returns a pointer to a boolean query parameter, or nil when
// absent or unparsable.
func queryBool(r *http.Request, key string) *bool {
	b, err := strconv.ParseBool(r.URL.Query().Get(key))
	if err != nil {
		return nil
	}
	return &b
}
