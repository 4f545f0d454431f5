package contenttype

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/folio/event"
	"github.com/xraph/folio/field"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/internal/entity"
)

// EntryPurger removes the entries of a deleted content type.
type EntryPurger interface {
	PurgeContentType(ctx context.Context, ct *ContentType) (int64, error)
}

// Service provides content type management operations.
type Service struct {
	store     Store
	entries   EntryPurger
	publisher event.Publisher
	logger    *slog.Logger
}

// NewService creates a new content type service. entries may be nil, in
// which case deleting a type leaves its entries in place.
func NewService(store Store, entries EntryPurger, publisher event.Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = event.Nop
	}
	return &Service{
		store:     store,
		entries:   entries,
		publisher: publisher,
		logger:    logger,
	}
}

// Create registers a new content type.
func (svc *Service) Create(ctx context.Context, in Input) (*ContentType, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	if err := svc.ensureSlugFree(ctx, in.Slug, id.Nil); err != nil {
		return nil, err
	}

	ct := &ContentType{
		Entity:      entity.New(),
		ID:          id.NewContentTypeID(),
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		Fields:      in.Fields,
		CreatedBy:   in.CreatedBy,
	}

	if err := svc.store.CreateContentType(ctx, ct); err != nil {
		return nil, err
	}

	svc.logger.InfoContext(ctx, "content type created", "content_type_id", ct.ID, "slug", ct.Slug)
	svc.publisher.Publish(ctx, event.ContentTypeCreated, ct, "")
	return ct, nil
}

// Get returns a content type by ID.
func (svc *Service) Get(ctx context.Context, ctID id.ID) (*ContentType, error) {
	return svc.store.GetContentType(ctx, ctID)
}

// GetBySlug returns a content type by slug.
func (svc *Service) GetBySlug(ctx context.Context, slug string) (*ContentType, error) {
	return svc.store.GetContentTypeBySlug(ctx, slug)
}

// List returns content types ordered by name.
func (svc *Service) List(ctx context.Context, opts ListOpts) ([]*ContentType, error) {
	return svc.store.ListContentTypes(ctx, opts)
}

// Exists reports whether a content type with the given ID exists.
func (svc *Service) Exists(ctx context.Context, ctID id.ID) (bool, error) {
	if _, err := svc.store.GetContentType(ctx, ctID); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// FieldDefinition returns a single field of a content type.
func (svc *Service) FieldDefinition(ctx context.Context, ctID id.ID, name string) (field.Definition, bool, error) {
	ct, err := svc.store.GetContentType(ctx, ctID)
	if err != nil {
		return field.Definition{}, false, err
	}
	def, ok := ct.Field(name)
	return def, ok, nil
}

// Update modifies an existing content type. Existing entries are not
// re-validated; they are checked against the new schema on their next
// write.
func (svc *Service) Update(ctx context.Context, ctID id.ID, in UpdateInput) (*ContentType, error) {
	ct, err := svc.store.GetContentType(ctx, ctID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if err := validateName(*in.Name); err != nil {
			return nil, err
		}
		ct.Name = *in.Name
	}
	if in.Slug != nil && *in.Slug != ct.Slug {
		if err := validateSlug(*in.Slug); err != nil {
			return nil, err
		}
		if err := svc.ensureSlugFree(ctx, *in.Slug, ct.ID); err != nil {
			return nil, err
		}
		ct.Slug = *in.Slug
	}
	if in.Description != nil {
		if err := validateDescription(*in.Description); err != nil {
			return nil, err
		}
		ct.Description = *in.Description
	}
	if in.Fields != nil {
		if err := validateFields(in.Fields); err != nil {
			return nil, err
		}
		ct.Fields = in.Fields
	}

	ct.UpdatedAt = time.Now().UTC()
	if err := svc.store.UpdateContentType(ctx, ct); err != nil {
		return nil, err
	}

	svc.publisher.Publish(ctx, event.ContentTypeUpdated, ct, "")
	return ct, nil
}

// Delete removes a content type together with its entries.
func (svc *Service) Delete(ctx context.Context, ctID id.ID) error {
	ct, err := svc.store.GetContentType(ctx, ctID)
	if err != nil {
		return err
	}

	if err := svc.store.DeleteContentType(ctx, ctID); err != nil {
		return err
	}

	if svc.entries != nil {
		n, purgeErr := svc.entries.PurgeContentType(ctx, ct)
		if purgeErr != nil {
			svc.logger.ErrorContext(ctx, "delete entries of content type failed",
				"content_type_id", ctID, "error", purgeErr)
		} else if n > 0 {
			svc.logger.InfoContext(ctx, "deleted entries of content type",
				"content_type_id", ctID, "count", n)
		}
	}

	svc.publisher.Publish(ctx, event.ContentTypeDeleted, ct, "")
	return nil
}

// ensureSlugFree fails with ErrDuplicateSlug when another content type
// already uses slug.
func (svc *Service) ensureSlugFree(ctx context.Context, slug string, self id.ID) error {
	existing, err := svc.store.GetContentTypeBySlug(ctx, slug)
	switch {
	case err == nil:
		if existing.ID.String() == self.String() {
			return nil
		}
		return fmt.Errorf("%w: content type with slug '%s' already exists", ErrDuplicateSlug, slug)
	case isNotFound(err):
		return nil
	default:
		return err
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
