package media_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xraph/folio"
	"github.com/xraph/folio/event"
	"github.com/xraph/folio/media"
	"github.com/xraph/folio/store/memory"
)

func ctx() context.Context { return context.Background() }

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newService(t *testing.T, opts ...media.Option) (*media.Service, *event.Recorder, string) {
	t.Helper()
	dir := t.TempDir()
	rec := event.NewRecorder()
	storage := media.NewDiskStorage(dir, "https://cdn.example.com/uploads/")
	return media.NewService(memory.New(), storage, rec, nil, opts...), rec, dir
}

func TestMediaUploadImage(t *testing.T) {
	svc, rec, dir := newService(t)

	m, err := svc.Upload(ctx(), media.UploadInput{
		Name:         "../../logo.png",
		Content:      bytes.NewReader(pngBytes(t, 4, 3)),
		DeclaredType: "image/png",
		AltText:      "Logo",
		Tags:         []string{"brand"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if m.MimeType != "image/png" || m.Category() != media.CategoryImage {
		t.Fatalf("unexpected type %s", m.MimeType)
	}
	if m.Width != 4 || m.Height != 3 {
		t.Fatalf("unexpected dimensions %dx%d", m.Width, m.Height)
	}
	if m.OriginalName != "logo.png" {
		t.Fatalf("expected base name, got %q", m.OriginalName)
	}
	if !strings.HasSuffix(m.Filename, ".png") || m.URL != "https://cdn.example.com/uploads/"+m.Filename {
		t.Fatalf("unexpected storage key %q url %q", m.Filename, m.URL)
	}
	if _, err := os.Stat(filepath.Join(dir, m.Filename)); err != nil {
		t.Fatalf("file not written: %v", err)
	}

	if names := rec.Names(); len(names) != 1 || names[0] != event.MediaUploaded {
		t.Fatalf("unexpected events %v", names)
	}

	exists, err := svc.Exists(ctx(), m.ID)
	if err != nil || !exists {
		t.Fatalf("expected media to exist: %v", err)
	}
}

func TestMediaUploadRejections(t *testing.T) {
	svc, rec, _ := newService(t, media.WithMaxUploadSize(1024))

	tests := []struct {
		name     string
		content  []byte
		declared string
		want     error
	}{
		{"mime mismatch", pngBytes(t, 2, 2), "image/jpeg", media.ErrMimeMismatch},
		{"type not allowed", []byte("just some plain text"), "", media.ErrTypeNotAllowed},
		{"too large", bytes.Repeat([]byte{0}, 2048), "", media.ErrTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(ctx(), media.UploadInput{
				Name:         "file",
				Content:      bytes.NewReader(tt.content),
				DeclaredType: tt.declared,
			})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if len(rec.Events()) != 0 {
		t.Fatal("rejected uploads must not emit")
	}
}

func TestMediaAllowedTypesOption(t *testing.T) {
	svc, _, _ := newService(t, media.WithAllowedTypes("text/plain"))

	m, err := svc.Upload(ctx(), media.UploadInput{Name: "notes.txt", Content: strings.NewReader("hello world")})
	if err != nil {
		t.Fatal(err)
	}
	if m.MimeType != "text/plain" || m.Category() != media.CategoryDocument {
		t.Fatalf("unexpected media %+v", m)
	}
}

func TestMediaUpdateAndDelete(t *testing.T) {
	svc, rec, dir := newService(t)
	m, err := svc.Upload(ctx(), media.UploadInput{Name: "a.png", Content: bytes.NewReader(pngBytes(t, 1, 1))})
	if err != nil {
		t.Fatal(err)
	}

	alt := "A red pixel"
	updated, err := svc.Update(ctx(), m.ID, media.UpdateInput{AltText: &alt, Tags: []string{"demo"}})
	if err != nil {
		t.Fatal(err)
	}
	if updated.AltText != alt || !updated.HasTag("demo") {
		t.Fatalf("update not applied: %+v", updated)
	}

	list, _ := svc.List(ctx(), media.ListOpts{Tag: "demo"})
	if len(list) != 1 {
		t.Fatalf("expected 1 tagged file, got %d", len(list))
	}

	if err := svc.Delete(ctx(), m.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, m.Filename)); !os.IsNotExist(err) {
		t.Fatalf("file still on disk: %v", err)
	}
	if _, err := svc.Get(ctx(), m.ID); !errors.Is(err, folio.ErrMediaNotFound) {
		t.Fatalf("expected ErrMediaNotFound, got %v", err)
	}
	names := rec.Names()
	if names[len(names)-1] != event.MediaDeleted {
		t.Fatalf("unexpected events %v", names)
	}
}
