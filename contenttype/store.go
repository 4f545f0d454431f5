package contenttype

import (
	"context"

	"github.com/xraph/folio/id"
)

// Store defines the persistence contract for content types.
type Store interface {
	// CreateContentType persists a new content type.
	CreateContentType(ctx context.Context, ct *ContentType) error

	// GetContentType returns a content type by ID.
	GetContentType(ctx context.Context, ctID id.ID) (*ContentType, error)

	// GetContentTypeBySlug returns a content type by slug.
	GetContentTypeBySlug(ctx context.Context, slug string) (*ContentType, error)

	// UpdateContentType modifies an existing content type.
	UpdateContentType(ctx context.Context, ct *ContentType) error

	// DeleteContentType removes a content type.
	DeleteContentType(ctx context.Context, ctID id.ID) error

	// ListContentTypes returns content types ordered by name.
	ListContentTypes(ctx context.Context, opts ListOpts) ([]*ContentType, error)
}
