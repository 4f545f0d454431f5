package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register decoders for dimension sniffing
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/xraph/folio/event"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/internal/entity"
)

// UploadInput describes a file to upload.
type UploadInput struct {
	// Name is the client-side file name.
	Name string

	Content io.Reader

	// DeclaredType is the client-supplied content type. When set it must
	// agree with the detected type.
	DeclaredType string

	AltText     string
	Description string
	Tags        []string
	UploadedBy  string
}

// UpdateInput modifies media metadata. Nil fields are left unchanged.
type UpdateInput struct {
	AltText     *string  `json:"altText,omitempty"`
	Description *string  `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Option configures a Service.
type Option func(*Service)

// WithMaxUploadSize sets the upload limit in bytes.
func WithMaxUploadSize(n int64) Option {
	return func(s *Service) { s.maxSize = n }
}

// WithAllowedTypes sets the accepted MIME types. Entries may end in "/*".
func WithAllowedTypes(types ...string) Option {
	return func(s *Service) { s.allowed = types }
}

// Service provides media upload and management.
type Service struct {
	store     Store
	storage   Storage
	publisher event.Publisher
	maxSize   int64
	allowed   []string
	logger    *slog.Logger
}

// NewService creates a new media service.
func NewService(store Store, storage Storage, publisher event.Publisher, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = event.Nop
	}
	svc := &Service{
		store:     store,
		storage:   storage,
		publisher: publisher,
		maxSize:   DefaultMaxUploadSize,
		allowed:   DefaultAllowedTypes,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Upload detects the content type of a file, stores it and records it.
func (svc *Service) Upload(ctx context.Context, in UploadInput) (*Media, error) {
	buf, err := io.ReadAll(io.LimitReader(in.Content, svc.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(buf)) > svc.maxSize {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, svc.maxSize)
	}

	detected := mimetype.Detect(buf)
	if in.DeclaredType != "" && !consistent(detected, in.DeclaredType) {
		return nil, fmt.Errorf("%w: declared %s, detected %s", ErrMimeMismatch, in.DeclaredType, detected.String())
	}

	mimeType := baseType(detected.String())
	if !typeAllowed(svc.allowed, mimeType) {
		return nil, fmt.Errorf("%w: %s", ErrTypeNotAllowed, mimeType)
	}

	m := &Media{
		Entity:       entity.New(),
		ID:           id.NewMediaID(),
		OriginalName: filepath.Base(in.Name),
		MimeType:     mimeType,
		Size:         int64(len(buf)),
		AltText:      in.AltText,
		Description:  in.Description,
		Tags:         in.Tags,
		UploadedBy:   in.UploadedBy,
	}
	m.Filename = m.ID.String() + detected.Extension()

	if m.Category() == CategoryImage {
		if cfg, _, decErr := image.DecodeConfig(bytes.NewReader(buf)); decErr == nil {
			m.Width, m.Height = cfg.Width, cfg.Height
		}
	}

	if err := svc.storage.Put(ctx, m.Filename, bytes.NewReader(buf)); err != nil {
		return nil, err
	}
	m.URL = svc.storage.URL(m.Filename)

	if err := svc.store.CreateMedia(ctx, m); err != nil {
		if delErr := svc.storage.Delete(ctx, m.Filename); delErr != nil {
			svc.logger.WarnContext(ctx, "remove orphaned upload failed", "filename", m.Filename, "error", delErr)
		}
		return nil, err
	}

	svc.logger.InfoContext(ctx, "media uploaded", "media_id", m.ID, "mime_type", m.MimeType, "size", m.Size)
	svc.publisher.Publish(ctx, event.MediaUploaded, m.Clone(), "")
	return m, nil
}

// Get returns a media record by ID.
func (svc *Service) Get(ctx context.Context, mediaID id.ID) (*Media, error) {
	return svc.store.GetMedia(ctx, mediaID)
}

// Exists reports whether a media record exists.
func (svc *Service) Exists(ctx context.Context, mediaID id.ID) (bool, error) {
	if _, err := svc.store.GetMedia(ctx, mediaID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// List returns media records matching opts.
func (svc *Service) List(ctx context.Context, opts ListOpts) ([]*Media, error) {
	return svc.store.ListMedia(ctx, opts)
}

// Update modifies the descriptive metadata of a media record.
func (svc *Service) Update(ctx context.Context, mediaID id.ID, in UpdateInput) (*Media, error) {
	m, err := svc.store.GetMedia(ctx, mediaID)
	if err != nil {
		return nil, err
	}

	if in.AltText != nil {
		m.AltText = *in.AltText
	}
	if in.Description != nil {
		m.Description = *in.Description
	}
	if in.Tags != nil {
		m.Tags = in.Tags
	}
	m.UpdatedAt = time.Now().UTC()

	if err := svc.store.UpdateMedia(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Delete removes the stored file and its record.
func (svc *Service) Delete(ctx context.Context, mediaID id.ID) error {
	m, err := svc.store.GetMedia(ctx, mediaID)
	if err != nil {
		return err
	}

	if err := svc.storage.Delete(ctx, m.Filename); err != nil {
		return err
	}
	if err := svc.store.DeleteMedia(ctx, mediaID); err != nil {
		return err
	}

	svc.publisher.Publish(ctx, event.MediaDeleted, m, "")
	return nil
}

// consistent reports whether declared names the detected type or one of
// its ancestors.
func consistent(detected *mimetype.MIME, declared string) bool {
	declared = baseType(declared)
	for m := detected; m != nil; m = m.Parent() {
		if m.Is(declared) {
			return true
		}
	}
	return false
}

func baseType(t string) string {
	if mt, _, err := mime.ParseMediaType(t); err == nil {
		return mt
	}
	base, _, _ := strings.Cut(t, ";")
	return strings.ToLower(strings.TrimSpace(base))
}
