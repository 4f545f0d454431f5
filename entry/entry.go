// Package entry manages content entries and their publication state
// machine.
package entry

import (
	"sort"
	"time"

	"github.com/xraph/folio/contenttype"
	"github.com/xraph/folio/field"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/internal/entity"
)

// Status is the publication state of an entry.
type Status string

const (
	// StatusDraft is the initial state.
	StatusDraft Status = "DRAFT"

	// StatusPublished marks an entry visible through the public API.
	StatusPublished Status = "PUBLISHED"

	// StatusArchived retires an entry. It keeps its publish timestamp.
	StatusArchived Status = "ARCHIVED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// Entry is one piece of content of a content type.
type Entry struct {
	entity.Entity

	// ID is the unique TypeID for this entry.
	ID id.ID `json:"id"`

	// ContentTypeID references the owning content type.
	ContentTypeID id.ID `json:"contentTypeId"`

	// Data holds the field values, governed by the content type schema.
	Data field.Data `json:"data"`

	// Status is the current publication state.
	Status Status `json:"status"`

	// PublishedAt is set on the first publish and cleared when the entry
	// returns to draft.
	PublishedAt *time.Time `json:"publishedAt,omitempty"`

	CreatedBy string `json:"createdBy,omitempty"`
	UpdatedBy string `json:"updatedBy,omitempty"`
}

// Clone returns a deep enough copy of e for independent mutation.
func (e *Entry) Clone() *Entry {
	cp := *e
	cp.Data = e.Data.Clone()
	if e.PublishedAt != nil {
		t := *e.PublishedAt
		cp.PublishedAt = &t
	}
	return &cp
}

// EventPayload is the data delivered with entry events.
type EventPayload struct {
	Entry       *Entry                 `json:"entry"`
	ContentType contenttype.Descriptor `json:"contentType"`
}

// SortField names the columns entries can be ordered by.
type SortField string

const (
	SortCreatedAt   SortField = "createdAt"
	SortUpdatedAt   SortField = "updatedAt"
	SortPublishedAt SortField = "publishedAt"
)

// ListOpts configures filtering and pagination for entry listing.
type ListOpts struct {
	Offset int
	Limit  int

	// ContentTypeID restricts results to one content type.
	ContentTypeID id.ID

	// Status restricts results to one status.
	Status *Status

	// Search matches any string value in the entry data, case-insensitively.
	Search string

	// SortBy defaults to createdAt. Results are newest first unless
	// Ascending is set.
	SortBy    SortField
	Ascending bool
}

// Match reports whether e satisfies the filters of opts. Pagination is
// ignored.
func (opts ListOpts) Match(e *Entry) bool {
	if !opts.ContentTypeID.IsNil() && e.ContentTypeID.String() != opts.ContentTypeID.String() {
		return false
	}
	if opts.Status != nil && e.Status != *opts.Status {
		return false
	}
	if opts.Search == "" {
		return true
	}
	found := false
	e.Data.Range(func(_ string, v field.Value) bool {
		found = v.Contains(opts.Search)
		return !found
	})
	return found
}

// Sort orders entries according to opts. Unpublished entries count as
// the oldest when ordering by publishedAt.
func (opts ListOpts) Sort(entries []*Entry) {
	key := func(e *Entry) time.Time {
		switch opts.SortBy {
		case SortUpdatedAt:
			return e.UpdatedAt
		case SortPublishedAt:
			if e.PublishedAt == nil {
				return time.Time{}
			}
			return *e.PublishedAt
		default:
			return e.CreatedAt
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := key(entries[i]), key(entries[j])
		if opts.Ascending {
			return a.Before(b)
		}
		return a.After(b)
	})
}

// Page applies the offset and limit of opts to entries that were already
// filtered and sorted.
func (opts ListOpts) Page(entries []*Entry) []*Entry {
	if opts.Offset > 0 {
		if opts.Offset >= len(entries) {
			return nil
		}
		entries = entries[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(entries) {
		entries = entries[:opts.Limit]
	}
	return entries
}
