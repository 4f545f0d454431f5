// Package contenttype manages content types: named, slugged field
// schemas that entries are validated against.
package contenttype

import (
	"github.com/xraph/folio/field"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/internal/entity"
)

// ContentType is a runtime-defined schema for a family of entries.
type ContentType struct {
	entity.Entity

	// ID is the unique TypeID for this content type.
	ID id.ID `json:"id"`

	// Name is the display name, 2 to 100 characters.
	Name string `json:"name"`

	// Slug is the unique URL key, lowercase kebab case. Changing it breaks
	// lookups by slug but is not prevented.
	Slug string `json:"slug"`

	// Description is an optional note of at most 500 characters.
	Description string `json:"description,omitempty"`

	// Fields is the ordered field schema. Never empty.
	Fields []field.Definition `json:"fields"`

	// CreatedBy is the opaque actor that created the type.
	CreatedBy string `json:"createdBy,omitempty"`
}

// Descriptor is the light content type snapshot carried by entry events.
type Descriptor struct {
	ID   id.ID  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Describe returns the descriptor of ct.
func (ct *ContentType) Describe() Descriptor {
	return Descriptor{ID: ct.ID, Name: ct.Name, Slug: ct.Slug}
}

// Field returns the definition named name.
func (ct *ContentType) Field(name string) (field.Definition, bool) {
	return field.Find(ct.Fields, name)
}

// ListOpts configures filtering and pagination for content type listing.
type ListOpts struct {
	Offset int
	Limit  int

	// Search matches name or slug, case-insensitively.
	Search string
}

// Clone returns a copy of ct with its own field slice.
func (ct *ContentType) Clone() *ContentType {
	cp := *ct
	cp.Fields = append([]field.Definition(nil), ct.Fields...)
	return &cp
}
