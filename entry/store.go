package entry

import (
	"context"

	"github.com/xraph/folio/id"
)

// Store defines the persistence contract for content entries.
type Store interface {
	// CreateEntry persists a new entry.
	CreateEntry(ctx context.Context, e *Entry) error

	// GetEntry returns an entry by ID.
	GetEntry(ctx context.Context, entryID id.ID) (*Entry, error)

	// GetEntries returns the entries with the given IDs. Missing IDs are
	// skipped.
	GetEntries(ctx context.Context, entryIDs []id.ID) ([]*Entry, error)

	// UpdateEntry replaces an existing entry (last write wins).
	UpdateEntry(ctx context.Context, e *Entry) error

	// DeleteEntry removes an entry.
	DeleteEntry(ctx context.Context, entryID id.ID) error

	// DeleteEntriesByContentType removes every entry of a content type.
	DeleteEntriesByContentType(ctx context.Context, ctID id.ID) (int64, error)

	// ListEntries returns entries matching opts.
	ListEntries(ctx context.Context, opts ListOpts) ([]*Entry, error)

	// CountEntries returns the number of entries matching opts, ignoring
	// pagination.
	CountEntries(ctx context.Context, opts ListOpts) (int64, error)
}
