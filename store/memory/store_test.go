package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/xraph/folio"
	"github.com/xraph/folio/contenttype"
	"github.com/xraph/folio/delivery"
	"github.com/xraph/folio/entry"
	"github.com/xraph/folio/field"
	"github.com/xraph/folio/form"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/internal/entity"
	"github.com/xraph/folio/media"
	"github.com/xraph/folio/site"
	"github.com/xraph/folio/webhook"
)

func ctx() context.Context { return context.Background() }

// ──────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────

func TestLifecycle(t *testing.T) {
	s := New()

	if err := s.Migrate(ctx()); err != nil {
		t.Fatal(err)
	}
	if err := s.Ping(ctx()); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Ping(ctx()); !errors.Is(err, folio.ErrStoreClosed) {
		t.Fatalf("expected ErrStoreClosed, got %v", err)
	}
}

// ──────────────────────────────────────────────────
// contenttype.Store
// ──────────────────────────────────────────────────

func newContentType(slug string) *contenttype.ContentType {
	return &contenttype.ContentType{
		Entity: entity.New(),
		ID:     id.NewContentTypeID(),
		Name:   "Type " + slug,
		Slug:   slug,
		Fields: []field.Definition{{Name: "title", Label: "Title", Rules: field.TextRules{}}},
	}
}

func TestContentTypeCRUD(t *testing.T) {
	s := New()
	ct := newContentType("blog-post")

	if err := s.CreateContentType(ctx(), ct); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateContentType(ctx(), newContentType("blog-post")); !errors.Is(err, folio.ErrDuplicateSlug) {
		t.Fatalf("expected ErrDuplicateSlug, got %v", err)
	}

	got, err := s.GetContentTypeBySlug(ctx(), "blog-post")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID.String() != ct.ID.String() {
		t.Fatalf("wrong content type: %s", got.ID)
	}

	// Mutating a fetched copy must not leak into the store.
	got.Fields[0].Label = "Changed"
	again, _ := s.GetContentType(ctx(), ct.ID)
	if again.Fields[0].Label != "Title" {
		t.Fatalf("store shares field slice with caller")
	}

	got.Name = "Renamed"
	if err := s.UpdateContentType(ctx(), got); err != nil {
		t.Fatal(err)
	}
	list, err := s.ListContentTypes(ctx(), contenttype.ListOpts{Search: "renamed"})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 match, got %d", len(list))
	}

	if err := s.DeleteContentType(ctx(), ct.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetContentType(ctx(), ct.ID); !errors.Is(err, folio.ErrContentTypeNotFound) {
		t.Fatalf("expected ErrContentTypeNotFound, got %v", err)
	}
}

// ──────────────────────────────────────────────────
// entry.Store
// ──────────────────────────────────────────────────

func newEntry(ctID id.ID, title string, status entry.Status, created time.Time) *entry.Entry {
	data := field.NewData(1)
	data.Set("title", field.StringValue(title))
	return &entry.Entry{
		Entity:        entity.Entity{CreatedAt: created, UpdatedAt: created},
		ID:            id.NewEntryID(),
		ContentTypeID: ctID,
		Data:          data,
		Status:        status,
	}
}

func TestEntryListFilters(t *testing.T) {
	s := New()
	ctA, ctB := id.NewContentTypeID(), id.NewContentTypeID()
	base := time.Now().UTC()

	first := newEntry(ctA, "Hello World", entry.StatusDraft, base)
	second := newEntry(ctA, "Second post", entry.StatusPublished, base.Add(time.Minute))
	other := newEntry(ctB, "Hello again", entry.StatusDraft, base.Add(2*time.Minute))
	for _, e := range []*entry.Entry{first, second, other} {
		if err := s.CreateEntry(ctx(), e); err != nil {
			t.Fatal(err)
		}
	}

	byType, err := s.ListEntries(ctx(), entry.ListOpts{ContentTypeID: ctA})
	if err != nil {
		t.Fatal(err)
	}
	if len(byType) != 2 || byType[0].ID.String() != second.ID.String() {
		t.Fatalf("expected newest first within type, got %d entries", len(byType))
	}

	asc, _ := s.ListEntries(ctx(), entry.ListOpts{ContentTypeID: ctA, Ascending: true})
	if asc[0].ID.String() != first.ID.String() {
		t.Fatalf("ascending order not honoured")
	}

	published := entry.StatusPublished
	n, err := s.CountEntries(ctx(), entry.ListOpts{Status: &published})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 published entry, got %d", n)
	}

	hits, _ := s.ListEntries(ctx(), entry.ListOpts{Search: "hello"})
	if len(hits) != 2 {
		t.Fatalf("expected 2 search hits, got %d", len(hits))
	}

	paged, _ := s.ListEntries(ctx(), entry.ListOpts{Offset: 1, Limit: 1})
	if len(paged) != 1 {
		t.Fatalf("expected 1 entry in page, got %d", len(paged))
	}

	removed, err := s.DeleteEntriesByContentType(ctx(), ctA)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
}

func TestEntryGetEntriesSkipsMissing(t *testing.T) {
	s := New()
	e := newEntry(id.NewContentTypeID(), "x", entry.StatusDraft, time.Now())
	_ = s.CreateEntry(ctx(), e)

	got, err := s.GetEntries(ctx(), []id.ID{e.ID, id.NewEntryID()})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}

	if err := s.UpdateEntry(ctx(), newEntry(id.NewContentTypeID(), "y", entry.StatusDraft, time.Now())); !errors.Is(err, folio.ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
}

// ──────────────────────────────────────────────────
// webhook.Store
// ──────────────────────────────────────────────────

func newWebhook(events ...string) *webhook.Webhook {
	return &webhook.Webhook{
		Entity:     entity.New(),
		ID:         id.NewWebhookID(),
		Name:       "hook",
		URL:        "https://example.com/hook",
		Events:     events,
		Secret:     "whsec_test",
		IsActive:   true,
		MaxRetries: 3,
		RetryDelay: 1000,
	}
}

func TestWebhookRecordDeliveryTrimsLog(t *testing.T) {
	s := New()
	w := newWebhook("entry.created")
	if err := s.CreateWebhook(ctx(), w); err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 55; i++ {
		log := webhook.DeliveryLog{
			Timestamp:     time.Now().UTC(),
			Event:         "entry.created",
			Status:        webhook.StatusSuccess,
			StatusCode:    200,
			AttemptNumber: i,
		}
		if err := s.RecordDelivery(ctx(), w.ID, log, webhook.DeltaFor(webhook.StatusSuccess)); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.GetWebhook(ctx(), w.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.DeliveryLogs) != webhook.MaxDeliveryLogs {
		t.Fatalf("expected %d logs, got %d", webhook.MaxDeliveryLogs, len(got.DeliveryLogs))
	}
	if got.DeliveryLogs[0].AttemptNumber != 6 {
		t.Fatalf("expected oldest kept attempt 6, got %d", got.DeliveryLogs[0].AttemptNumber)
	}
	if got.Stats.TotalDeliveries != 55 || got.Stats.SuccessfulDeliveries != 55 {
		t.Fatalf("unexpected stats: %+v", got.Stats)
	}
	if got.LastDeliveryStatus != webhook.StatusSuccess || got.LastDeliveryAt == nil {
		t.Fatalf("last delivery fields not stamped")
	}

	// Configuration updates leave counters alone.
	got.Name = "renamed"
	got.Stats = webhook.Stats{}
	got.DeliveryLogs = nil
	if err := s.UpdateWebhook(ctx(), got); err != nil {
		t.Fatal(err)
	}
	after, _ := s.GetWebhook(ctx(), w.ID)
	if after.Name != "renamed" || after.Stats.TotalDeliveries != 55 || len(after.DeliveryLogs) != 50 {
		t.Fatalf("update clobbered delivery state: %+v", after.Stats)
	}
}

func TestWebhookRecordDeliveryConcurrent(t *testing.T) {
	s := New()
	w := newWebhook("entry.created")
	_ = s.CreateWebhook(ctx(), w)

	done := make(chan struct{})
	for i := 0; i < 20; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_ = s.RecordDelivery(ctx(), w.ID, webhook.DeliveryLog{Status: webhook.StatusFailed}, webhook.DeltaFor(webhook.StatusFailed))
		}()
	}
	for i := 0; i < 20; i++ {
		<-done
	}

	got, _ := s.GetWebhook(ctx(), w.ID)
	if got.Stats.FailedDeliveries != 20 || len(got.DeliveryLogs) != 20 {
		t.Fatalf("lost updates: %+v, %d logs", got.Stats, len(got.DeliveryLogs))
	}
}

func TestWebhookFindActiveForEvent(t *testing.T) {
	s := New()
	created := newWebhook("entry.created", "entry.updated")
	inactive := newWebhook("entry.created")
	inactive.IsActive = false
	scoped := newWebhook("entry.created")
	scoped.SiteID = "site_a"
	for _, w := range []*webhook.Webhook{created, inactive, scoped} {
		_ = s.CreateWebhook(ctx(), w)
	}

	tests := []struct {
		event, site string
		want        int
	}{
		{"entry.created", "", 2},
		{"entry.created", "site_a", 1},
		{"entry.updated", "", 1},
		{"media.uploaded", "", 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s", tt.event, tt.site), func(t *testing.T) {
			got, err := s.FindActiveForEvent(ctx(), tt.event, tt.site)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Fatalf("expected %d webhooks, got %d", tt.want, len(got))
			}
		})
	}
}

// ──────────────────────────────────────────────────
// delivery.Store
// ──────────────────────────────────────────────────

func TestDequeueClaimsOnce(t *testing.T) {
	s := New()
	now := time.Now()
	due := delivery.NewTask(id.NewWebhookID(), "entry.created", []byte(`{}`), "", now.Add(-time.Second))
	later := delivery.NewTask(id.NewWebhookID(), "entry.created", []byte(`{}`), "", now.Add(time.Hour))
	if err := s.EnqueueBatch(ctx(), []*delivery.Task{due, later}); err != nil {
		t.Fatal(err)
	}

	claimed, err := s.Dequeue(ctx(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(claimed) != 1 || claimed[0].ID.String() != due.ID.String() {
		t.Fatalf("expected only the due task, got %d", len(claimed))
	}

	again, _ := s.Dequeue(ctx(), 10)
	if len(again) != 0 {
		t.Fatalf("claimed task dequeued twice")
	}

	// Releasing a still-pending task makes it claimable again.
	if err := s.UpdateTask(ctx(), claimed[0]); err != nil {
		t.Fatal(err)
	}
	released, _ := s.Dequeue(ctx(), 10)
	if len(released) != 1 {
		t.Fatalf("expected released task to be claimable")
	}

	n, err := s.CountPending(ctx())
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 pending, got %d", n)
	}

	if _, err := s.GetTask(ctx(), id.NewTaskID()); !errors.Is(err, folio.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

// ──────────────────────────────────────────────────
// site.Store
// ──────────────────────────────────────────────────

func TestSiteRequestCounter(t *testing.T) {
	s := New()
	st := &site.Site{
		Entity:       entity.New(),
		ID:           id.NewSiteID(),
		Name:         "Blog",
		Domain:       "blog.example.com",
		APIKeyPrefix: "cms_abcdefgh",
		IsActive:     true,
	}
	if err := s.CreateSite(ctx(), st); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if err := s.RecordSiteRequest(ctx(), st.ID, time.Now()); err != nil {
			t.Fatal(err)
		}
	}

	found, err := s.FindSitesByKeyPrefix(ctx(), "cms_abcdefgh")
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 || found[0].RequestCount != 3 || found[0].LastRequestAt == nil {
		t.Fatalf("unexpected site lookup result: %+v", found)
	}

	found[0].Name = "Renamed"
	found[0].RequestCount = 0
	if err := s.UpdateSite(ctx(), found[0]); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetSite(ctx(), st.ID)
	if got.Name != "Renamed" || got.RequestCount != 3 {
		t.Fatalf("update clobbered request counter: %+v", got)
	}
}

// ──────────────────────────────────────────────────
// form.Store
// ──────────────────────────────────────────────────

func TestFormSubmissionsCascade(t *testing.T) {
	s := New()
	f := &form.Form{
		Entity:   entity.New(),
		ID:       id.NewFormID(),
		Name:     "Contact",
		Slug:     "contact",
		IsActive: true,
	}
	if err := s.CreateForm(ctx(), f); err != nil {
		t.Fatal(err)
	}

	var subID id.ID
	for i := 0; i < 2; i++ {
		sub := &form.Submission{
			Entity: entity.New(),
			ID:     id.NewSubmissionID(),
			FormID: f.ID,
			Data:   map[string]any{"name": "Ada"},
			Status: form.SubmissionUnread,
		}
		if err := s.CreateSubmission(ctx(), sub); err != nil {
			t.Fatal(err)
		}
		subID = sub.ID
	}

	got, _ := s.GetFormBySlug(ctx(), "contact")
	if got.SubmissionCount != 2 {
		t.Fatalf("expected 2 submissions counted, got %d", got.SubmissionCount)
	}

	unread := form.SubmissionUnread
	subs, err := s.ListSubmissions(ctx(), f.ID, form.SubmissionListOpts{Status: &unread})
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 2 {
		t.Fatalf("expected 2 unread submissions, got %d", len(subs))
	}

	if err := s.DeleteForm(ctx(), f.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetSubmission(ctx(), subID); !errors.Is(err, folio.ErrSubmissionNotFound) {
		t.Fatalf("expected submissions removed with form, got %v", err)
	}
}

// ──────────────────────────────────────────────────
// media.Store
// ──────────────────────────────────────────────────

func TestMediaListFilters(t *testing.T) {
	s := New()
	items := []*media.Media{
		{Entity: entity.New(), ID: id.NewMediaID(), OriginalName: "logo.png", MimeType: "image/png", Tags: []string{"brand"}},
		{Entity: entity.New(), ID: id.NewMediaID(), OriginalName: "intro.mp4", MimeType: "video/mp4"},
		{Entity: entity.New(), ID: id.NewMediaID(), OriginalName: "terms.pdf", MimeType: "application/pdf", AltText: "Terms"},
	}
	for _, m := range items {
		if err := s.CreateMedia(ctx(), m); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name string
		opts media.ListOpts
		want int
	}{
		{"all", media.ListOpts{}, 3},
		{"category", media.ListOpts{Category: media.CategoryImage}, 1},
		{"mime", media.ListOpts{MimeType: "video/mp4"}, 1},
		{"tag", media.ListOpts{Tag: "brand"}, 1},
		{"search alt text", media.ListOpts{Search: "terms"}, 1},
		{"limit", media.ListOpts{Limit: 2}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListMedia(ctx(), tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, len(got))
			}
		})
	}
}
