package api

import (
	"context"
	"errors"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/xraph/folio"
	"github.com/xraph/folio/contenttype"
	"github.com/xraph/folio/entry"
	"github.com/xraph/folio/form"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/ratelimit"
	"github.com/xraph/folio/site"
)

// HeaderAPIKey carries the site API key on public requests.
const HeaderAPIKey = "X-API-Key"

const (
	defaultPublicLimit = 20
	maxPublicLimit     = 100
)

type siteKey struct{}

// SiteFromContext returns the site that authenticated a public request.
func SiteFromContext(ctx context.Context) (*site.Site, bool) {
	s, ok := ctx.Value(siteKey{}).(*site.Site)
	return s, ok
}

// Pagination describes one page of a public listing.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type entryPage struct {
	Data       []*entry.Entry `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

type submitResponse struct {
	ID      id.ID  `json:"id"`
	Message string `json:"message"`
}

// public authenticates the site API key, enforces its allowed origins and
// its rate limit, and counts the request.
func (h *Handler) public(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(HeaderAPIKey)
		if key == "" {
			writeError(w, http.StatusUnauthorized, "API key is required")
			return
		}

		s, err := h.folio.Sites().Authenticate(r.Context(), key)
		if err != nil {
			if errors.Is(err, folio.ErrInvalidAPIKey) {
				writeError(w, http.StatusUnauthorized, "invalid API key")
				return
			}
			h.writeServiceError(w, r, err)
			return
		}

		origin := r.Header.Get("Origin")
		if !site.OriginAllowed(s, origin) {
			writeError(w, http.StatusForbidden, "origin not allowed")
			return
		}
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}

		if !h.allow(w, "site:"+s.ID.String(), h.folio.Config().PublicRateLimit) {
			return
		}

		go func(ctx context.Context) {
			_ = h.folio.Sites().RecordRequest(ctx, s.ID)
		}(context.WithoutCancel(r.Context()))

		next(w, r.WithContext(context.WithValue(r.Context(), siteKey{}, s)))
	})
}

// allow takes a token for key or writes a 429 with Retry-After.
func (h *Handler) allow(w http.ResponseWriter, key string, limit ratelimit.Limit) bool {
	ok, retryAfter := h.limiter.Reserve(key, limit)
	if ok {
		return true
	}
	secs := int(math.Ceil(retryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
	return false
}

func (h *Handler) publicContentTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.folio.ContentTypes().List(r.Context(), contenttype.ListOpts{})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types)
}

func (h *Handler) publicContentType(w http.ResponseWriter, r *http.Request) {
	ct, err := h.folio.ContentTypes().GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ct)
}

func (h *Handler) publicEntries(w http.ResponseWriter, r *http.Request) {
	ct, err := h.folio.ContentTypes().GetBySlug(r.Context(), r.PathValue("typeSlug"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	published := entry.StatusPublished
	h.writeEntryPage(w, r, entry.ListOpts{
		ContentTypeID: ct.ID,
		Status:        &published,
	})
}

func (h *Handler) publicEntry(w http.ResponseWriter, r *http.Request) {
	ct, err := h.folio.ContentTypes().GetBySlug(r.Context(), r.PathValue("typeSlug"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	entryID, err := id.ParseEntryID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, folio.ErrEntryNotFound.Error())
		return
	}

	e, err := h.folio.Entries().Get(r.Context(), entryID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if e.Status != entry.StatusPublished || e.ContentTypeID.String() != ct.ID.String() {
		writeError(w, http.StatusNotFound, folio.ErrEntryNotFound.Error())
		return
	}

	writeJSON(w, http.StatusOK, e)
}

func (h *Handler) publicSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(queryParam(r, "q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	published := entry.StatusPublished
	opts := entry.ListOpts{
		Status: &published,
		Search: q,
	}
	if slug := queryParam(r, "type"); slug != "" {
		ct, err := h.folio.ContentTypes().GetBySlug(r.Context(), slug)
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		opts.ContentTypeID = ct.ID
	}

	h.writeEntryPage(w, r, opts)
}

// writeEntryPage lists one page of entries, newest publication first.
func (h *Handler) writeEntryPage(w http.ResponseWriter, r *http.Request, opts entry.ListOpts) {
	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := queryInt(r, "limit", defaultPublicLimit)
	if limit < 1 {
		limit = defaultPublicLimit
	}
	if limit > maxPublicLimit {
		limit = maxPublicLimit
	}

	opts.SortBy = entry.SortPublishedAt
	opts.Offset = (page - 1) * limit
	opts.Limit = limit

	entries, err := h.folio.Entries().List(r.Context(), opts)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	total, err := h.folio.Entries().Count(r.Context(), opts)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if entries == nil {
		entries = []*entry.Entry{}
	}

	writeJSON(w, http.StatusOK, entryPage{
		Data: entries,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: int((total + int64(limit) - 1) / int64(limit)),
		},
	})
}

func (h *Handler) publicSubmitForm(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	if !h.allow(w, "form:"+ip, h.folio.Config().FormRateLimit) {
		return
	}

	f, err := h.folio.Forms().Resolve(r.Context(), r.PathValue("slug"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if s, ok := SiteFromContext(r.Context()); ok && f.SiteID != "" && f.SiteID != s.ID.String() {
		writeError(w, http.StatusNotFound, folio.ErrFormNotFound.Error())
		return
	}

	var data map[string]any
	if err := decodeJSON(r, &data); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sub, err := h.folio.Forms().Submit(r.Context(), f.ID.String(), data, form.Meta{
		IP:        ip,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, submitResponse{ID: sub.ID, Message: "Form submitted successfully"})
}

// clientIP returns the first X-Forwarded-For hop, then X-Real-IP, then
// the connection address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
