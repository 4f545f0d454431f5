package entry_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xraph/folio/contenttype"
	"github.com/xraph/folio/entry"
	"github.com/xraph/folio/event"
	"github.com/xraph/folio/field"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/internal/entity"
	"github.com/xraph/folio/store/memory"
	"github.com/xraph/folio/validate"
)

func ctx() context.Context { return context.Background() }

type mediaSet map[string]bool

func (m mediaSet) Exists(_ context.Context, mediaID id.ID) (bool, error) {
	return m[mediaID.String()], nil
}

type fixture struct {
	store  *memory.Store
	svc    *entry.Service
	events *event.Recorder
	ct     *contenttype.ContentType
}

func newFixture(t *testing.T, opts ...entry.Option) *fixture {
	t.Helper()
	store := memory.New()
	ct := &contenttype.ContentType{
		Entity: entity.New(),
		ID:     id.NewContentTypeID(),
		Name:   "Blog Post",
		Slug:   "blog-post",
		Fields: []field.Definition{
			{Name: "title", Label: "Title", Required: true, Rules: field.TextRules{MaxLength: field.IntPtr(50)}},
			{Name: "body", Label: "Body", Rules: field.RichTextRules{}},
			{Name: "views", Label: "Views", Rules: field.NumberRules{Integer: true}, DefaultValue: field.NumberValue(0)},
		},
	}
	if err := store.CreateContentType(ctx(), ct); err != nil {
		t.Fatal(err)
	}
	events := event.NewRecorder()
	svc := entry.NewService(store, store, events, nil, opts...)
	return &fixture{store: store, svc: svc, events: events, ct: ct}
}

func (f *fixture) create(t *testing.T, title string) *entry.Entry {
	t.Helper()
	data := field.NewData(1)
	data.Set("title", field.StringValue(title))
	e, err := f.svc.Create(ctx(), entry.CreateInput{ContentTypeID: f.ct.ID, Data: data})
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestCreateAppliesDefaultsAndEmits(t *testing.T) {
	f := newFixture(t)
	e := f.create(t, "Hello")

	if e.Status != entry.StatusDraft || e.PublishedAt != nil {
		t.Fatalf("expected unpublished draft, got %s", e.Status)
	}
	views, ok := e.Data.Get("views")
	if n, isNum := views.AsNumber(); !ok || !isNum || n != 0 {
		t.Fatal("expected default views applied")
	}

	evs := f.events.Events()
	if len(evs) != 1 || evs[0].Name != event.EntryCreated {
		t.Fatalf("unexpected events %v", f.events.Names())
	}
	payload, ok := evs[0].Data.(entry.EventPayload)
	if !ok {
		t.Fatalf("unexpected payload type %T", evs[0].Data)
	}
	if payload.Entry.ID.String() != e.ID.String() {
		t.Fatal("payload carries the wrong entry")
	}
	if payload.ContentType.Slug != "blog-post" || payload.ContentType.Name != "Blog Post" {
		t.Fatalf("unexpected descriptor %+v", payload.ContentType)
	}
}

func TestCreateRejectsInvalidData(t *testing.T) {
	f := newFixture(t)

	data := field.MustParseData(`{"extra":1,"title":5}`)
	_, err := f.svc.Create(ctx(), entry.CreateInput{ContentTypeID: f.ct.ID, Data: data})

	var vfe *entry.ValidationFailedError
	if !errors.As(err, &vfe) {
		t.Fatalf("expected ValidationFailedError, got %v", err)
	}
	if !vfe.Errors.Has("extra", validate.CodeUnknownField) || !vfe.Errors.Has("title", validate.CodeInvalidType) {
		t.Fatalf("unexpected errors %v", vfe.Errors)
	}
	if n, _ := f.store.CountEntries(ctx(), entry.ListOpts{}); n != 0 {
		t.Fatal("invalid entry was stored")
	}
	if len(f.events.Events()) != 0 {
		t.Fatal("no event may fire for a rejected write")
	}
}

func TestCreateRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(ctx(), entry.CreateInput{ContentTypeID: f.ct.ID, Status: "LIVE"})
	if !errors.Is(err, entry.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestCreateSanitizesRichText(t *testing.T) {
	f := newFixture(t)
	data := field.NewData(2)
	data.Set("title", field.StringValue("Post"))
	data.Set("body", field.StringValue(`<p>hi</p><script>alert(1)</script>`))

	e, err := f.svc.Create(ctx(), entry.CreateInput{ContentTypeID: f.ct.ID, Data: data})
	if err != nil {
		t.Fatal(err)
	}
	body, _ := e.Data.Get("body")
	s, _ := body.AsString()
	if strings.Contains(s, "script") || !strings.Contains(s, "<p>hi</p>") {
		t.Fatalf("unexpected sanitized body %q", s)
	}
}

func TestRichTextLengthCheckedBeforeSanitizing(t *testing.T) {
	f := newFixture(t)
	ct := &contenttype.ContentType{
		Entity: entity.New(),
		ID:     id.NewContentTypeID(),
		Name:   "Note",
		Slug:   "note",
		Fields: []field.Definition{
			{Name: "body", Label: "Body", Rules: field.RichTextRules{MaxLength: field.IntPtr(10)}},
		},
	}
	if err := f.store.CreateContentType(ctx(), ct); err != nil {
		t.Fatal(err)
	}

	// Sanitized this is "<p>hi</p>", nine characters.
	data := field.NewData(1)
	data.Set("body", field.StringValue(`<p>hi</p><script>alert(1)</script>`))

	_, err := f.svc.Create(ctx(), entry.CreateInput{ContentTypeID: ct.ID, Data: data})
	var vfe *entry.ValidationFailedError
	if !errors.As(err, &vfe) || !vfe.Errors.Has("body", validate.CodeMaxLength) {
		t.Fatalf("expected max_length on the submitted markup, got %v", err)
	}

	res, err := f.svc.Validate(ctx(), ct.ID, data)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Errors.Has("body", validate.CodeMaxLength) {
		t.Fatalf("dry-run validation disagrees with create: %+v", res.Errors)
	}

	short := field.NewData(1)
	short.Set("body", field.StringValue(`<b>ok</b>`))
	e, err := f.svc.Create(ctx(), entry.CreateInput{ContentTypeID: ct.ID, Data: short})
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.svc.Update(ctx(), e.ID, entry.UpdateInput{Data: &data})
	if !errors.As(err, &vfe) || !vfe.Errors.Has("body", validate.CodeMaxLength) {
		t.Fatalf("expected max_length on update, got %v", err)
	}
}

func TestPublishStampsOnce(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f := newFixture(t, entry.WithClock(func() time.Time { return clock }))
	e := f.create(t, "Hello")

	published, err := f.svc.Publish(ctx(), e.ID, "editor")
	if err != nil {
		t.Fatal(err)
	}
	if published.Status != entry.StatusPublished || published.PublishedAt == nil || !published.PublishedAt.Equal(clock) {
		t.Fatalf("unexpected publish state %s %v", published.Status, published.PublishedAt)
	}
	if published.UpdatedBy != "editor" {
		t.Fatalf("expected actor recorded, got %q", published.UpdatedBy)
	}

	clock = clock.Add(time.Hour)
	again, err := f.svc.Publish(ctx(), e.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	if !again.PublishedAt.Equal(published.PublishedAt.UTC()) {
		t.Fatal("republishing must keep the first publish time")
	}

	names := f.events.Names()
	if names[len(names)-1] != event.EntryPublished {
		t.Fatalf("unexpected events %v", names)
	}
}

func TestPublishGateUsesCurrentSchema(t *testing.T) {
	f := newFixture(t)
	e := f.create(t, "Hello")

	// Tighten the schema after the entry was written.
	ct, _ := f.store.GetContentType(ctx(), f.ct.ID)
	ct.Fields = append(ct.Fields, field.Definition{Name: "summary", Label: "Summary", Required: true, Rules: field.TextRules{}})
	if err := f.store.UpdateContentType(ctx(), ct); err != nil {
		t.Fatal(err)
	}
	f.events.Reset()

	_, err := f.svc.Publish(ctx(), e.ID, "")
	if !errors.Is(err, entry.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	var vfe *entry.ValidationFailedError
	if !errors.As(err, &vfe) || vfe.Errors[0].Message != "Summary is required" {
		t.Fatalf("unexpected validation errors %v", err)
	}

	stored, _ := f.svc.Get(ctx(), e.ID)
	if stored.Status != entry.StatusDraft || stored.PublishedAt != nil {
		t.Fatal("failed publish must leave the entry unchanged")
	}
	if len(f.events.Events()) != 0 {
		t.Fatal("failed publish must not emit")
	}
}

func TestUpdateToPublishedIsGated(t *testing.T) {
	f := newFixture(t)
	e := f.create(t, "Hello")

	bad := field.MustParseData(`{"title":null}`)
	published := entry.StatusPublished
	_, err := f.svc.Update(ctx(), e.ID, entry.UpdateInput{Data: &bad, Status: &published})
	if !errors.Is(err, entry.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	updated, err := f.svc.Update(ctx(), e.ID, entry.UpdateInput{Status: &published})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != entry.StatusPublished || updated.PublishedAt == nil {
		t.Fatal("expected update to publish")
	}

	draft := entry.StatusDraft
	back, err := f.svc.Update(ctx(), e.ID, entry.UpdateInput{Status: &draft})
	if err != nil {
		t.Fatal(err)
	}
	if back.PublishedAt != nil {
		t.Fatal("returning to draft must clear the publish time")
	}
}

func TestUnpublishOnlyFromPublished(t *testing.T) {
	f := newFixture(t)
	e := f.create(t, "Hello")

	_, err := f.svc.Unpublish(ctx(), e.ID, "")
	if !errors.Is(err, entry.ErrNotPublished) {
		t.Fatalf("expected ErrNotPublished, got %v", err)
	}
	if err.Error() != "only published entries can be unpublished" {
		t.Fatalf("unexpected message %q", err.Error())
	}

	if _, err := f.svc.Publish(ctx(), e.ID, ""); err != nil {
		t.Fatal(err)
	}
	draft, err := f.svc.Unpublish(ctx(), e.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	if draft.Status != entry.StatusDraft || draft.PublishedAt != nil {
		t.Fatalf("unexpected unpublished state %s", draft.Status)
	}
}

func TestArchiveKeepsPublishTime(t *testing.T) {
	f := newFixture(t)
	e := f.create(t, "Hello")

	published, _ := f.svc.Publish(ctx(), e.ID, "")
	archived, err := f.svc.Archive(ctx(), e.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	if archived.Status != entry.StatusArchived || archived.PublishedAt == nil ||
		!archived.PublishedAt.Equal(*published.PublishedAt) {
		t.Fatal("archive must keep the publish time")
	}

	names := f.events.Names()
	if names[len(names)-1] != event.EntryArchived {
		t.Fatalf("unexpected events %v", names)
	}
}

func TestDeleteEmitsSnapshot(t *testing.T) {
	f := newFixture(t)
	e := f.create(t, "Hello")

	if err := f.svc.Delete(ctx(), e.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Get(ctx(), e.ID); !errors.Is(err, entry.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	evs := f.events.Events()
	last := evs[len(evs)-1]
	if last.Name != event.EntryDeleted {
		t.Fatalf("expected entry.deleted, got %s", last.Name)
	}
	if p := last.Data.(entry.EventPayload); p.Entry.ID.String() != e.ID.String() {
		t.Fatal("deleted snapshot carries the wrong entry")
	}
}

func TestReferenceChecks(t *testing.T) {
	known := id.NewMediaID()
	f := newFixture(t, entry.WithMediaLookup(mediaSet{known.String(): true}))

	ct, _ := f.store.GetContentType(ctx(), f.ct.ID)
	ct.Fields = append(ct.Fields,
		field.Definition{Name: "cover", Label: "Cover", Rules: field.MediaRules{}},
		field.Definition{Name: "related", Label: "Related", Rules: field.RelationRules{Multiple: true, TargetContentType: "blog-post"}},
	)
	_ = f.store.UpdateContentType(ctx(), ct)

	target := f.create(t, "Target")
	missingMedia := id.NewMediaID()
	missingEntry := id.NewEntryID()

	data := field.NewData(3)
	data.Set("title", field.StringValue("Post"))
	data.Set("cover", field.StringValue(missingMedia.String()))
	data.Set("related", field.StringsValue(target.ID.String(), missingEntry.String()))

	res, err := f.svc.Validate(ctx(), f.ct.ID, data)
	if err != nil {
		t.Fatal(err)
	}
	if res.Valid || len(res.Errors) != 2 {
		t.Fatalf("expected 2 reference errors, got %v", res.Errors)
	}
	if res.Errors[0].Message != `Cover references unknown media ID "`+missingMedia.String()+`"` {
		t.Fatalf("unexpected media message %q", res.Errors[0].Message)
	}
	if res.Errors[1].Message != `Related references unknown content entry ID "`+missingEntry.String()+`"` {
		t.Fatalf("unexpected relation message %q", res.Errors[1].Message)
	}

	data.Set("cover", field.StringValue(known.String()))
	data.Set("related", field.StringsValue(target.ID.String()))
	if res, _ := f.svc.Validate(ctx(), f.ct.ID, data); !res.Valid {
		t.Fatalf("expected valid references, got %v", res.Errors)
	}

	// Without reference checks only the shape is validated.
	plain := entry.NewService(f.store, f.store, nil, nil, entry.WithReferenceChecks(false))
	data.Set("cover", field.StringValue(missingMedia.String()))
	if res, _ := plain.Validate(ctx(), f.ct.ID, data); !res.Valid {
		t.Fatalf("expected shape-only validation to pass, got %v", res.Errors)
	}
}

func TestListSearchCount(t *testing.T) {
	f := newFixture(t)
	f.create(t, "Go tips")
	f.create(t, "Rust notes")
	e := f.create(t, "More Go")
	if _, err := f.svc.Publish(ctx(), e.ID, ""); err != nil {
		t.Fatal(err)
	}

	hits, err := f.svc.Search(ctx(), "go", entry.ListOpts{ContentTypeID: f.ct.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}

	published := entry.StatusPublished
	n, err := f.svc.Count(ctx(), entry.ListOpts{Status: &published})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 published, got %d", n)
	}

	byIDs, _ := f.svc.GetByIDs(ctx(), []id.ID{e.ID, id.NewEntryID()})
	if len(byIDs) != 1 {
		t.Fatalf("expected 1 entry by ID, got %d", len(byIDs))
	}
}
