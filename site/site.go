// Package site manages the sites that consume published content and the
// API keys they authenticate with.
package site

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
	"time"

	"github.com/xraph/folio/id"
	"github.com/xraph/folio/internal/entity"
)

// KeyPrefix starts every site API key.
const KeyPrefix = "cms_"

// PrefixLength is the number of leading key characters stored in clear
// for lookup.
const PrefixLength = 12

// Site is a consumer of the public content API.
type Site struct {
	entity.Entity

	// ID is the unique TypeID for this site.
	ID id.ID `json:"id"`

	Name        string `json:"name"`
	Domain      string `json:"domain"`
	Description string `json:"description,omitempty"`

	// APIKeyHash is the bcrypt hash of the API key. Never serialized.
	APIKeyHash string `json:"-"`

	// APIKeyPrefix holds the first PrefixLength characters of the key.
	APIKeyPrefix string `json:"apiKeyPrefix"`

	// AllowedOrigins restricts browser origins. Empty allows all.
	AllowedOrigins []string `json:"allowedOrigins,omitempty"`

	IsActive bool `json:"isActive"`

	RequestCount  int64      `json:"requestCount"`
	LastRequestAt *time.Time `json:"lastRequestAt,omitempty"`

	CreatedBy string `json:"createdBy,omitempty"`
}

// Clone returns a copy of s that shares no slices with it.
func (s *Site) Clone() *Site {
	cp := *s
	cp.AllowedOrigins = append([]string(nil), s.AllowedOrigins...)
	if s.LastRequestAt != nil {
		t := *s.LastRequestAt
		cp.LastRequestAt = &t
	}
	return &cp
}

// GenerateAPIKey creates a new random API key: KeyPrefix followed by 32
// random bytes in unpadded base64url.
func GenerateAPIKey() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("folio: failed to generate API key: " + err.Error())
	}
	return KeyPrefix + base64.RawURLEncoding.EncodeToString(b)
}

// ValidKeyFormat reports whether key could be a site API key.
func ValidKeyFormat(key string) bool {
	return strings.HasPrefix(key, KeyPrefix) && len(key) > 40
}

// KeyLookupPrefix returns the stored lookup prefix of key.
func KeyLookupPrefix(key string) string {
	if len(key) < PrefixLength {
		return key
	}
	return key[:PrefixLength]
}

// OriginAllowed reports whether a browser request from origin may use s.
// An empty allow-list, an empty origin and a "*" entry allow everything.
func OriginAllowed(s *Site, origin string) bool {
	if len(s.AllowedOrigins) == 0 || origin == "" {
		return true
	}
	for _, o := range s.AllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}
