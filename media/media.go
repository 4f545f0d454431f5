// Package media manages uploaded files referenced by MEDIA fields.
package media

import (
	"strings"

	"github.com/xraph/folio/id"
	"github.com/xraph/folio/internal/entity"
)

// DefaultMaxUploadSize is the upload limit when none is configured.
const DefaultMaxUploadSize = 10 << 20

// DefaultAllowedTypes are accepted when no allow-list is configured.
// Entries ending in "/*" match a whole top-level type.
var DefaultAllowedTypes = []string{"image/*", "video/*", "audio/*", "application/pdf"}

// Category groups media by top-level type.
type Category string

const (
	CategoryImage    Category = "image"
	CategoryVideo    Category = "video"
	CategoryAudio    Category = "audio"
	CategoryDocument Category = "document"
)

// CategoryOf returns the category of a MIME type.
func CategoryOf(mimeType string) Category {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return CategoryImage
	case strings.HasPrefix(mimeType, "video/"):
		return CategoryVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return CategoryAudio
	}
	return CategoryDocument
}

// Media is an uploaded file.
type Media struct {
	entity.Entity

	// ID is the unique TypeID for this file.
	ID id.ID `json:"id"`

	// Filename is the storage key.
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`

	// MimeType is the detected content type, without parameters.
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
	URL      string `json:"url"`

	// Width and Height are set for decodable images.
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	AltText     string   `json:"altText,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	UploadedBy string `json:"uploadedBy,omitempty"`
}

// Category returns the category of m's MIME type.
func (m *Media) Category() Category {
	return CategoryOf(m.MimeType)
}

// Clone returns a copy of m that shares no slices with it.
func (m *Media) Clone() *Media {
	cp := *m
	cp.Tags = append([]string(nil), m.Tags...)
	return &cp
}

// HasTag reports whether m carries tag.
func (m *Media) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// typeAllowed reports whether mimeType matches an allow-list entry.
func typeAllowed(allowed []string, mimeType string) bool {
	for _, a := range allowed {
		if a == mimeType {
			return true
		}
		if prefix, ok := strings.CutSuffix(a, "/*"); ok && strings.HasPrefix(mimeType, prefix+"/") {
			return true
		}
	}
	return false
}
