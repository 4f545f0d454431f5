package contenttype_test

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/folio"
	"github.com/xraph/folio/contenttype"
	"github.com/xraph/folio/entry"
	"github.com/xraph/folio/event"
	"github.com/xraph/folio/field"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/internal/entity"
	"github.com/xraph/folio/store/memory"
)

func ctx() context.Context { return context.Background() }

func titleField() []field.Definition {
	return []field.Definition{{Name: "title", Label: "Title", Required: true, Rules: field.TextRules{}}}
}

func newService() (*contenttype.Service, *memory.Store, *event.Recorder) {
	s := memory.New()
	rec := event.NewRecorder()
	return contenttype.NewService(s, entry.NewService(s, s, rec, nil), rec, nil), s, rec
}

func TestContentTypeServiceCreate(t *testing.T) {
	svc, _, rec := newService()

	ct, err := svc.Create(ctx(), contenttype.Input{Name: "Blog Post", Slug: "blog-post", Fields: titleField()})
	if err != nil {
		t.Fatal(err)
	}
	if ct.ID.Prefix() != id.PrefixContentType {
		t.Fatalf("unexpected ID prefix %s", ct.ID.Prefix())
	}
	if names := rec.Names(); len(names) != 1 || names[0] != event.ContentTypeCreated {
		t.Fatalf("unexpected events %v", names)
	}

	_, err = svc.Create(ctx(), contenttype.Input{Name: "Other", Slug: "blog-post", Fields: titleField()})
	if !errors.Is(err, folio.ErrDuplicateSlug) {
		t.Fatalf("expected ErrDuplicateSlug, got %v", err)
	}
}

func TestContentTypeServiceCreateValidation(t *testing.T) {
	svc, _, _ := newService()

	tests := []struct {
		name  string
		in    contenttype.Input
		field string
	}{
		{"short name", contenttype.Input{Name: "B", Slug: "b", Fields: titleField()}, "name"},
		{"bad slug", contenttype.Input{Name: "Blog", Slug: "Blog Post", Fields: titleField()}, "slug"},
		{"no fields", contenttype.Input{Name: "Blog", Slug: "blog"}, "fields"},
		{"duplicate field", contenttype.Input{Name: "Blog", Slug: "blog", Fields: append(titleField(), titleField()...)}, "fields"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx(), tt.in)
			var ve *contenttype.ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Fatalf("expected validation error on %q, got %v", tt.field, err)
			}
		})
	}
}

func TestContentTypeServiceUpdate(t *testing.T) {
	svc, _, _ := newService()
	ct, _ := svc.Create(ctx(), contenttype.Input{Name: "Blog Post", Slug: "blog-post", Fields: titleField()})
	_, _ = svc.Create(ctx(), contenttype.Input{Name: "Page", Slug: "page", Fields: titleField()})

	taken := "page"
	if _, err := svc.Update(ctx(), ct.ID, contenttype.UpdateInput{Slug: &taken}); !errors.Is(err, folio.ErrDuplicateSlug) {
		t.Fatalf("expected ErrDuplicateSlug, got %v", err)
	}

	name := "Article"
	slug := "article"
	updated, err := svc.Update(ctx(), ct.ID, contenttype.UpdateInput{Name: &name, Slug: &slug})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Name != "Article" || updated.Slug != "article" {
		t.Fatalf("update not applied: %+v", updated)
	}

	got, err := svc.GetBySlug(ctx(), "article")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID.String() != ct.ID.String() {
		t.Fatal("slug lookup returned the wrong type")
	}

	def, ok, err := svc.FieldDefinition(ctx(), ct.ID, "title")
	if err != nil || !ok || def.Label != "Title" {
		t.Fatalf("unexpected field lookup %v %v %v", def, ok, err)
	}
}

func TestContentTypeServiceDeleteCascades(t *testing.T) {
	svc, s, rec := newService()
	ct, _ := svc.Create(ctx(), contenttype.Input{Name: "Blog Post", Slug: "blog-post", Fields: titleField()})

	e := &entry.Entry{
		Entity:        entity.New(),
		ID:            id.NewEntryID(),
		ContentTypeID: ct.ID,
		Data:          field.MustParseData(`{"title":"x"}`),
		Status:        entry.StatusDraft,
	}
	if err := s.CreateEntry(ctx(), e); err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(ctx(), ct.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetEntry(ctx(), e.ID); !errors.Is(err, folio.ErrEntryNotFound) {
		t.Fatalf("expected entries removed with their type, got %v", err)
	}
	exists, err := svc.Exists(ctx(), ct.ID)
	if err != nil || exists {
		t.Fatalf("expected type gone, got %v %v", exists, err)
	}

	names := rec.Names()
	if len(names) < 2 || names[len(names)-2] != event.EntryDeleted || names[len(names)-1] != event.ContentTypeDeleted {
		t.Fatalf("unexpected events %v", names)
	}

	evs := rec.Events()
	payload, ok := evs[len(evs)-2].Data.(entry.EventPayload)
	if !ok {
		t.Fatalf("unexpected payload type %T", evs[len(evs)-2].Data)
	}
	if payload.Entry.ID.String() != e.ID.String() || payload.ContentType.Slug != "blog-post" {
		t.Fatalf("entry.deleted carries %s of %q", payload.Entry.ID, payload.ContentType.Slug)
	}
}

func TestDocumentValidator(t *testing.T) {
	v := contenttype.NewDocumentValidator()

	in, err := v.ParseInput([]byte(`{
		"name": "Blog Post",
		"slug": "blog-post",
		"fields": [
			{"name": "title", "type": "TEXT", "label": "Title", "required": true, "validation": {"maxLength": 80}},
			{"name": "cover", "type": "MEDIA", "label": "Cover"}
		]
	}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(in.Fields) != 2 || in.Fields[1].Type() != field.TypeMedia {
		t.Fatalf("unexpected decoded fields %+v", in.Fields)
	}

	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"unknown type", `{"name":"Blog","slug":"blog","fields":[{"name":"a","type":"JSON","label":"A"}]}`},
		{"missing label", `{"name":"Blog","slug":"blog","fields":[{"name":"a","type":"TEXT"}]}`},
		{"unknown rule", `{"name":"Blog","slug":"blog","fields":[{"name":"a","type":"TEXT","label":"A","validation":{"foo":1}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ve *contenttype.ValidationError
			if err := v.Validate([]byte(tt.doc)); !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}
