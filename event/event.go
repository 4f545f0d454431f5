// Package event defines the webhook event vocabulary and the publisher
// contract used by the content services to announce mutations.
package event

import "context"

// Event names delivered to webhook receivers. Receivers match on these
// exact strings.
const (
	EntryCreated     = "entry.created"
	EntryUpdated     = "entry.updated"
	EntryDeleted     = "entry.deleted"
	EntryPublished   = "entry.published"
	EntryUnpublished = "entry.unpublished"
	EntryArchived    = "entry.archived"

	ContentTypeCreated = "content_type.created"
	ContentTypeUpdated = "content_type.updated"
	ContentTypeDeleted = "content_type.deleted"

	MediaUploaded = "media.uploaded"
	MediaDeleted  = "media.deleted"
)

// Names lists every event name in the vocabulary.
var Names = []string{
	EntryCreated,
	EntryUpdated,
	EntryDeleted,
	EntryPublished,
	EntryUnpublished,
	EntryArchived,
	ContentTypeCreated,
	ContentTypeUpdated,
	ContentTypeDeleted,
	MediaUploaded,
	MediaDeleted,
}

// Valid reports whether name is part of the vocabulary.
func Valid(name string) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}

// Publisher announces a committed mutation. Implementations must not
// block on delivery and must not report delivery failures to the caller:
// a mutation that has been persisted stays persisted.
type Publisher interface {
	Publish(ctx context.Context, name string, data any, siteID string)
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(ctx context.Context, name string, data any, siteID string)

// Publish calls f.
func (f PublisherFunc) Publish(ctx context.Context, name string, data any, siteID string) {
	f(ctx, name, data, siteID)
}

// Nop is a Publisher that drops every event.
var Nop Publisher = PublisherFunc(func(context.Context, string, any, string) {})
