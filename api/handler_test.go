package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/xraph/folio"
	"github.com/xraph/folio/api"
	"github.com/xraph/folio/ratelimit"
	"github.com/xraph/folio/store/memory"
)

// testServer creates a Handler backed by a memory store and returns the test server.
func testServer(t *testing.T, opts ...folio.Option) *httptest.Server {
	t.Helper()

	opts = append([]folio.Option{
		folio.WithStore(memory.New()),
		folio.WithMediaDir(t.TempDir(), "https://cdn.example.com/uploads"),
	}, opts...)
	f, err := folio.New(opts...)
	if err != nil {
		t.Fatalf("new folio: %v", err)
	}

	srv := httptest.NewServer(api.NewHandler(f, nil))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	return doJSONWithHeaders(t, method, url, body, nil)
}

func doJSONWithHeaders(t *testing.T, method, url string, body any, headers map[string]string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, url, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func expectStatus(t *testing.T, resp *http.Response, want int, what string) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("%s: expected %d, got %d: %s", what, want, resp.StatusCode, body)
	}
}

// createArticleType registers a content type with a required title.
func createArticleType(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp := doJSON(t, "POST", srv.URL+"/content-types", map[string]any{
		"name": "Article",
		"slug": "article",
		"fields": []map[string]any{
			{"name": "title", "type": "TEXT", "label": "Title", "required": true, "validation": map[string]any{"maxLength": 20}},
			{"name": "body", "type": "RICH_TEXT", "label": "Body"},
		},
	})
	expectStatus(t, resp, http.StatusCreated, "create content type")
	var ct map[string]any
	decodeBody(t, resp, &ct)
	return ct["id"].(string)
}

func createEntry(t *testing.T, srv *httptest.Server, ctID, title string) string {
	t.Helper()
	resp := doJSON(t, "POST", srv.URL+"/entries", map[string]any{
		"contentTypeId": ctID,
		"data":          map[string]any{"title": title},
	})
	expectStatus(t, resp, http.StatusCreated, "create entry")
	var e map[string]any
	decodeBody(t, resp, &e)
	return e["id"].(string)
}

func createSite(t *testing.T, srv *httptest.Server, body map[string]any) string {
	t.Helper()
	resp := doJSON(t, "POST", srv.URL+"/sites", body)
	expectStatus(t, resp, http.StatusCreated, "create site")
	var out struct {
		APIKey string `json:"apiKey"`
	}
	decodeBody(t, resp, &out)
	if out.APIKey == "" {
		t.Fatal("expected API key in creation response")
	}
	return out.APIKey
}

// --- Health ---

func TestHealth(t *testing.T) {
	srv := testServer(t)

	resp := doJSON(t, "GET", srv.URL+"/health", nil)
	expectStatus(t, resp, http.StatusOK, "health")
	resp.Body.Close()
}

// --- Content types ---

func TestContentTypes_CRUD(t *testing.T) {
	srv := testServer(t)

	ctID := createArticleType(t, srv)

	resp := doJSON(t, "GET", srv.URL+"/content-types/"+ctID, nil)
	expectStatus(t, resp, http.StatusOK, "get")
	var got map[string]any
	decodeBody(t, resp, &got)
	if got["slug"] != "article" {
		t.Errorf("expected slug article, got %v", got["slug"])
	}
	fields, _ := got["fields"].([]any)
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}

	resp = doJSON(t, "GET", srv.URL+"/content-types/slug/article", nil)
	expectStatus(t, resp, http.StatusOK, "get by slug")
	resp.Body.Close()

	resp = doJSON(t, "PUT", srv.URL+"/content-types/"+ctID, map[string]any{"name": "Blog Article"})
	expectStatus(t, resp, http.StatusOK, "update")
	decodeBody(t, resp, &got)
	if got["name"] != "Blog Article" {
		t.Errorf("expected updated name, got %v", got["name"])
	}

	resp = doJSON(t, "GET", srv.URL+"/content-types", nil)
	expectStatus(t, resp, http.StatusOK, "list")
	var list []map[string]any
	decodeBody(t, resp, &list)
	if len(list) != 1 {
		t.Errorf("expected 1 content type, got %d", len(list))
	}

	resp = doJSON(t, "DELETE", srv.URL+"/content-types/"+ctID, nil)
	expectStatus(t, resp, http.StatusNoContent, "delete")
	resp.Body.Close()

	resp = doJSON(t, "GET", srv.URL+"/content-types/"+ctID, nil)
	expectStatus(t, resp, http.StatusNotFound, "get after delete")
	resp.Body.Close()
}

func TestContentTypes_DuplicateSlug(t *testing.T) {
	srv := testServer(t)
	createArticleType(t, srv)

	resp := doJSON(t, "POST", srv.URL+"/content-types", map[string]any{
		"name":   "Another",
		"slug":   "article",
		"fields": []map[string]any{{"name": "title", "type": "TEXT", "label": "Title"}},
	})
	expectStatus(t, resp, http.StatusConflict, "duplicate slug")
	resp.Body.Close()
}

func TestContentTypes_InvalidID(t *testing.T) {
	srv := testServer(t)

	resp := doJSON(t, "GET", srv.URL+"/content-types/not-an-id", nil)
	expectStatus(t, resp, http.StatusBadRequest, "invalid id")
	resp.Body.Close()
}

// --- Entries ---

func TestEntries_Lifecycle(t *testing.T) {
	srv := testServer(t)
	ctID := createArticleType(t, srv)
	entryID := createEntry(t, srv, ctID, "Hello")

	resp := doJSON(t, "GET", srv.URL+"/entries/"+entryID, nil)
	expectStatus(t, resp, http.StatusOK, "get")
	var e map[string]any
	decodeBody(t, resp, &e)
	if e["status"] != "DRAFT" {
		t.Errorf("expected DRAFT, got %v", e["status"])
	}

	resp = doJSONWithHeaders(t, "POST", srv.URL+"/entries/"+entryID+"/publish", nil,
		map[string]string{api.HeaderActor: "editor-1"})
	expectStatus(t, resp, http.StatusOK, "publish")
	decodeBody(t, resp, &e)
	if e["status"] != "PUBLISHED" {
		t.Errorf("expected PUBLISHED, got %v", e["status"])
	}
	if e["publishedAt"] == nil {
		t.Error("expected publishedAt to be set")
	}
	if e["updatedBy"] != "editor-1" {
		t.Errorf("expected updatedBy editor-1, got %v", e["updatedBy"])
	}

	resp = doJSON(t, "GET", srv.URL+"/entries?status=PUBLISHED&contentTypeId="+ctID, nil)
	expectStatus(t, resp, http.StatusOK, "list")
	var list []map[string]any
	decodeBody(t, resp, &list)
	if len(list) != 1 {
		t.Errorf("expected 1 published entry, got %d", len(list))
	}

	resp = doJSON(t, "POST", srv.URL+"/entries/"+entryID+"/unpublish", nil)
	expectStatus(t, resp, http.StatusOK, "unpublish")
	decodeBody(t, resp, &e)
	if e["status"] != "DRAFT" {
		t.Errorf("expected DRAFT after unpublish, got %v", e["status"])
	}

	resp = doJSON(t, "POST", srv.URL+"/entries/"+entryID+"/unpublish", nil)
	expectStatus(t, resp, http.StatusConflict, "unpublish draft")
	resp.Body.Close()

	resp = doJSON(t, "POST", srv.URL+"/entries/"+entryID+"/archive", nil)
	expectStatus(t, resp, http.StatusOK, "archive")
	decodeBody(t, resp, &e)
	if e["status"] != "ARCHIVED" {
		t.Errorf("expected ARCHIVED, got %v", e["status"])
	}

	resp = doJSON(t, "DELETE", srv.URL+"/entries/"+entryID, nil)
	expectStatus(t, resp, http.StatusNoContent, "delete")
	resp.Body.Close()

	resp = doJSON(t, "GET", srv.URL+"/entries/"+entryID, nil)
	expectStatus(t, resp, http.StatusNotFound, "get after delete")
	resp.Body.Close()
}

func TestEntries_ValidationErrors(t *testing.T) {
	srv := testServer(t)
	ctID := createArticleType(t, srv)

	resp := doJSON(t, "POST", srv.URL+"/entries", map[string]any{
		"contentTypeId": ctID,
		"data":          map[string]any{"body": "<p>no title</p>"},
	})
	expectStatus(t, resp, http.StatusUnprocessableEntity, "create without title")

	var body struct {
		Error  string `json:"error"`
		Errors []struct {
			Field   string `json:"field"`
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	decodeBody(t, resp, &body)
	if body.Error != "validation failed" {
		t.Errorf("expected validation failed, got %q", body.Error)
	}
	if len(body.Errors) != 1 || body.Errors[0].Field != "title" || body.Errors[0].Type != "required" {
		t.Errorf("unexpected errors: %+v", body.Errors)
	}
}

func TestEntries_MissingContentType(t *testing.T) {
	srv := testServer(t)

	resp := doJSON(t, "POST", srv.URL+"/entries", map[string]any{"data": map[string]any{}})
	expectStatus(t, resp, http.StatusBadRequest, "missing contentTypeId")
	resp.Body.Close()
}

func TestEntries_Validate(t *testing.T) {
	srv := testServer(t)
	ctID := createArticleType(t, srv)

	resp := doJSON(t, "POST", srv.URL+"/entries/validate", map[string]any{
		"contentTypeId": ctID,
		"data":          map[string]any{"title": "this title is far longer than twenty characters"},
	})
	expectStatus(t, resp, http.StatusOK, "validate")

	var res struct {
		Valid  bool `json:"valid"`
		Errors []struct {
			Type string `json:"type"`
		} `json:"errors"`
	}
	decodeBody(t, resp, &res)
	if res.Valid {
		t.Fatal("expected invalid result")
	}
	if len(res.Errors) != 1 || res.Errors[0].Type != "max_length" {
		t.Errorf("unexpected errors: %+v", res.Errors)
	}
}

// --- Webhooks ---

func TestWebhooks_CRUD(t *testing.T) {
	srv := testServer(t)

	resp := doJSON(t, "POST", srv.URL+"/webhooks", map[string]any{
		"name":   "Deploy",
		"url":    "https://hooks.example.com/deploy",
		"events": []string{"entry.published"},
	})
	expectStatus(t, resp, http.StatusCreated, "create")
	var created map[string]any
	decodeBody(t, resp, &created)
	secret, _ := created["secret"].(string)
	if secret == "" {
		t.Fatal("expected secret in creation response")
	}
	whID := created["id"].(string)

	resp = doJSON(t, "GET", srv.URL+"/webhooks/"+whID, nil)
	expectStatus(t, resp, http.StatusOK, "get")
	var got map[string]any
	decodeBody(t, resp, &got)
	if s, ok := got["secret"].(string); ok && s == secret {
		t.Error("secret must not be returned after creation")
	}

	resp = doJSON(t, "POST", srv.URL+"/webhooks/"+whID+"/rotate-secret", nil)
	expectStatus(t, resp, http.StatusOK, "rotate")
	var rotated struct {
		Secret string `json:"secret"`
	}
	decodeBody(t, resp, &rotated)
	if rotated.Secret == "" || rotated.Secret == secret {
		t.Errorf("expected a new secret, got %q", rotated.Secret)
	}

	resp = doJSON(t, "GET", srv.URL+"/webhooks/"+whID+"/logs", nil)
	expectStatus(t, resp, http.StatusOK, "logs")
	var logs []map[string]any
	decodeBody(t, resp, &logs)
	if len(logs) != 0 {
		t.Errorf("expected no logs, got %d", len(logs))
	}

	resp = doJSON(t, "DELETE", srv.URL+"/webhooks/"+whID, nil)
	expectStatus(t, resp, http.StatusNoContent, "delete")
	resp.Body.Close()
}

func TestWebhooks_InvalidEvent(t *testing.T) {
	srv := testServer(t)

	resp := doJSON(t, "POST", srv.URL+"/webhooks", map[string]any{
		"name":   "Bad",
		"url":    "https://hooks.example.com/bad",
		"events": []string{"entry.exploded"},
	})
	expectStatus(t, resp, http.StatusUnprocessableEntity, "invalid event")
	resp.Body.Close()
}

func TestWebhooks_Test(t *testing.T) {
	received := make(chan *http.Request, 1)
	receiver := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- r
		w.WriteHeader(http.StatusOK)
	}))
	defer receiver.Close()

	srv := testServer(t)

	resp := doJSON(t, "POST", srv.URL+"/webhooks", map[string]any{
		"name":   "Local",
		"url":    receiver.URL,
		"events": []string{"entry.created"},
	})
	expectStatus(t, resp, http.StatusCreated, "create")
	var created map[string]any
	decodeBody(t, resp, &created)

	resp = doJSON(t, "POST", srv.URL+"/webhooks/"+created["id"].(string)+"/test", nil)
	expectStatus(t, resp, http.StatusOK, "test")
	var res struct {
		Success    bool `json:"success"`
		StatusCode int  `json:"statusCode"`
	}
	decodeBody(t, resp, &res)
	if !res.Success || res.StatusCode != http.StatusOK {
		t.Errorf("unexpected test result: %+v", res)
	}

	select {
	case r := <-received:
		if r.Header.Get("X-Webhook-Signature") == "" {
			t.Error("expected signature header")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("receiver was not called")
	}
}

// --- Sites and public API ---

func TestPublicAPI_Authentication(t *testing.T) {
	srv := testServer(t)
	key := createSite(t, srv, map[string]any{"name": "Blog", "domain": "blog.example.com"})
	createArticleType(t, srv)

	resp := doJSON(t, "GET", srv.URL+"/public/content-types", nil)
	expectStatus(t, resp, http.StatusUnauthorized, "no key")
	resp.Body.Close()

	resp = doJSONWithHeaders(t, "GET", srv.URL+"/public/content-types", nil,
		map[string]string{api.HeaderAPIKey: "folio_wrong"})
	expectStatus(t, resp, http.StatusUnauthorized, "wrong key")
	resp.Body.Close()

	resp = doJSONWithHeaders(t, "GET", srv.URL+"/public/content-types", nil,
		map[string]string{api.HeaderAPIKey: key})
	expectStatus(t, resp, http.StatusOK, "valid key")
	var types []map[string]any
	decodeBody(t, resp, &types)
	if len(types) != 1 {
		t.Errorf("expected 1 content type, got %d", len(types))
	}
}

func TestPublicAPI_Origins(t *testing.T) {
	srv := testServer(t)
	key := createSite(t, srv, map[string]any{
		"name":           "Blog",
		"domain":         "blog.example.com",
		"allowedOrigins": []string{"https://blog.example.com"},
	})

	resp := doJSONWithHeaders(t, "GET", srv.URL+"/public/content-types", nil, map[string]string{
		api.HeaderAPIKey: key,
		"Origin":         "https://evil.example.com",
	})
	expectStatus(t, resp, http.StatusForbidden, "bad origin")
	resp.Body.Close()

	resp = doJSONWithHeaders(t, "GET", srv.URL+"/public/content-types", nil, map[string]string{
		api.HeaderAPIKey: key,
		"Origin":         "https://blog.example.com",
	})
	expectStatus(t, resp, http.StatusOK, "allowed origin")
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://blog.example.com" {
		t.Errorf("expected CORS header, got %q", got)
	}
}

func TestPublicAPI_RateLimit(t *testing.T) {
	srv := testServer(t, folio.WithPublicRateLimit(ratelimit.Limit{Requests: 1, Window: time.Hour}))
	key := createSite(t, srv, map[string]any{"name": "Blog", "domain": "blog.example.com"})
	headers := map[string]string{api.HeaderAPIKey: key}

	resp := doJSONWithHeaders(t, "GET", srv.URL+"/public/content-types", nil, headers)
	expectStatus(t, resp, http.StatusOK, "first request")
	resp.Body.Close()

	resp = doJSONWithHeaders(t, "GET", srv.URL+"/public/content-types", nil, headers)
	expectStatus(t, resp, http.StatusTooManyRequests, "second request")
	resp.Body.Close()
	if resp.Header.Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

func TestPublicAPI_Content(t *testing.T) {
	srv := testServer(t)
	key := createSite(t, srv, map[string]any{"name": "Blog", "domain": "blog.example.com"})
	headers := map[string]string{api.HeaderAPIKey: key}
	ctID := createArticleType(t, srv)

	draftID := createEntry(t, srv, ctID, "Draft")
	publishedID := createEntry(t, srv, ctID, "Published")
	resp := doJSON(t, "POST", srv.URL+"/entries/"+publishedID+"/publish", nil)
	expectStatus(t, resp, http.StatusOK, "publish")
	resp.Body.Close()

	resp = doJSONWithHeaders(t, "GET", srv.URL+"/public/content/article", nil, headers)
	expectStatus(t, resp, http.StatusOK, "list")
	var page struct {
		Data       []map[string]any `json:"data"`
		Pagination api.Pagination   `json:"pagination"`
	}
	decodeBody(t, resp, &page)
	if len(page.Data) != 1 || page.Data[0]["id"] != publishedID {
		t.Fatalf("expected only the published entry, got %+v", page.Data)
	}
	if page.Pagination.Total != 1 || page.Pagination.Page != 1 || page.Pagination.TotalPages != 1 {
		t.Errorf("unexpected pagination: %+v", page.Pagination)
	}

	resp = doJSONWithHeaders(t, "GET", srv.URL+"/public/content/article/"+publishedID, nil, headers)
	expectStatus(t, resp, http.StatusOK, "get published")
	resp.Body.Close()

	resp = doJSONWithHeaders(t, "GET", srv.URL+"/public/content/article/"+draftID, nil, headers)
	expectStatus(t, resp, http.StatusNotFound, "get draft")
	resp.Body.Close()

	resp = doJSONWithHeaders(t, "GET", srv.URL+"/public/search?q=publ", nil, headers)
	expectStatus(t, resp, http.StatusOK, "search")
	decodeBody(t, resp, &page)
	if len(page.Data) != 1 {
		t.Errorf("expected 1 search hit, got %d", len(page.Data))
	}

	resp = doJSONWithHeaders(t, "GET", srv.URL+"/public/search", nil, headers)
	expectStatus(t, resp, http.StatusBadRequest, "search without q")
	resp.Body.Close()
}

// --- Forms ---

func TestForms_Submit(t *testing.T) {
	srv := testServer(t)
	key := createSite(t, srv, map[string]any{"name": "Blog", "domain": "blog.example.com"})
	headers := map[string]string{api.HeaderAPIKey: key}

	resp := doJSON(t, "POST", srv.URL+"/forms", map[string]any{
		"name":           "Contact",
		"slug":           "contact",
		"recipientEmail": "team@example.com",
		"fields": []map[string]any{
			{"name": "email", "type": "EMAIL", "label": "Email", "required": true},
			{"name": "message", "type": "TEXTAREA", "label": "Message"},
		},
	})
	expectStatus(t, resp, http.StatusCreated, "create form")
	var f map[string]any
	decodeBody(t, resp, &f)
	formID := f["id"].(string)

	resp = doJSONWithHeaders(t, "POST", srv.URL+"/public/forms/contact/submit",
		map[string]any{"message": "hi"}, headers)
	expectStatus(t, resp, http.StatusUnprocessableEntity, "missing email")
	resp.Body.Close()

	resp = doJSONWithHeaders(t, "POST", srv.URL+"/public/forms/contact/submit",
		map[string]any{"email": "reader@example.com", "message": "hi"}, headers)
	expectStatus(t, resp, http.StatusCreated, "submit")
	var sub struct {
		ID      string `json:"id"`
		Message string `json:"message"`
	}
	decodeBody(t, resp, &sub)
	if sub.ID == "" {
		t.Fatal("expected submission id")
	}

	resp = doJSON(t, "GET", srv.URL+"/forms/"+formID+"/submissions", nil)
	expectStatus(t, resp, http.StatusOK, "list submissions")
	var subs []map[string]any
	decodeBody(t, resp, &subs)
	if len(subs) != 1 || subs[0]["status"] != "UNREAD" {
		t.Fatalf("unexpected submissions: %+v", subs)
	}

	resp = doJSON(t, "PATCH", srv.URL+"/submissions/"+sub.ID, map[string]any{"status": "READ"})
	expectStatus(t, resp, http.StatusOK, "mark read")
	var updated map[string]any
	decodeBody(t, resp, &updated)
	if updated["status"] != "READ" {
		t.Errorf("expected READ, got %v", updated["status"])
	}

	resp = doJSON(t, "PATCH", srv.URL+"/submissions/"+sub.ID, map[string]any{"status": "SPAM"})
	expectStatus(t, resp, http.StatusBadRequest, "invalid status")
	resp.Body.Close()
}

// --- Media ---

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 3, 2))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestMedia_Upload(t *testing.T) {
	srv := testServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="logo.png"`)
	hdr.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(pngBytes(t)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.WriteField("altText", "Logo"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := mw.WriteField("tags", "brand, logo"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req, err := http.NewRequestWithContext(context.Background(), "POST", srv.URL+"/media", &body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	expectStatus(t, resp, http.StatusCreated, "upload")

	var m struct {
		ID       string   `json:"id"`
		MimeType string   `json:"mimeType"`
		Width    int      `json:"width"`
		Height   int      `json:"height"`
		AltText  string   `json:"altText"`
		Tags     []string `json:"tags"`
	}
	decodeBody(t, resp, &m)
	if m.MimeType != "image/png" || m.Width != 3 || m.Height != 2 {
		t.Errorf("unexpected media: %+v", m)
	}
	if m.AltText != "Logo" || len(m.Tags) != 2 {
		t.Errorf("expected metadata from form fields, got %+v", m)
	}

	resp = doJSON(t, "GET", srv.URL+"/media?category=image", nil)
	expectStatus(t, resp, http.StatusOK, "list")
	var list []map[string]any
	decodeBody(t, resp, &list)
	if len(list) != 1 {
		t.Errorf("expected 1 media item, got %d", len(list))
	}

	resp = doJSON(t, "DELETE", srv.URL+"/media/"+m.ID, nil)
	expectStatus(t, resp, http.StatusNoContent, "delete")
	resp.Body.Close()
}

func TestMedia_UploadWithoutFile(t *testing.T) {
	srv := testServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("altText", "nothing"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	mw.Close()

	req, err := http.NewRequestWithContext(context.Background(), "POST", srv.URL+"/media", &body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	expectStatus(t, resp, http.StatusBadRequest, "no file")
	resp.Body.Close()
}

// --- Stats ---

func TestStats(t *testing.T) {
	srv := testServer(t)

	resp := doJSON(t, "GET", srv.URL+"/stats", nil)
	expectStatus(t, resp, http.StatusOK, "stats")
	var stats map[string]int64
	decodeBody(t, resp, &stats)
	if stats["pendingDeliveries"] != 0 {
		t.Errorf("expected 0 pending deliveries, got %d", stats["pendingDeliveries"])
	}
}
