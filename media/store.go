package media

import (
	"context"

	"github.com/xraph/folio/id"
)

// ListOpts configures filtering and pagination for media listing.
type ListOpts struct {
	Offset int
	Limit  int

	// MimeType matches exactly.
	MimeType string

	Category Category
	Tag      string

	// Search matches the file names and alt text, case-insensitively.
	Search string
}

// Store defines the persistence contract for media records.
type Store interface {
	// CreateMedia persists a new media record.
	CreateMedia(ctx context.Context, m *Media) error

	// GetMedia returns a media record by ID.
	GetMedia(ctx context.Context, mediaID id.ID) (*Media, error)

	// UpdateMedia modifies an existing media record.
	UpdateMedia(ctx context.Context, m *Media) error

	// DeleteMedia removes a media record.
	DeleteMedia(ctx context.Context, mediaID id.ID) error

	// ListMedia returns media records, newest first.
	ListMedia(ctx context.Context, opts ListOpts) ([]*Media, error)
}
