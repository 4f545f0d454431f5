package site

import (
	"context"
	"time"

	"github.com/xraph/folio/id"
)

// Store defines the persistence contract for sites.
type Store interface {
	// CreateSite persists a new site.
	CreateSite(ctx context.Context, s *Site) error

	// GetSite returns a site by ID.
	GetSite(ctx context.Context, siteID id.ID) (*Site, error)

	// FindSitesByKeyPrefix returns the sites whose API key starts with
	// prefix.
	FindSitesByKeyPrefix(ctx context.Context, prefix string) ([]*Site, error)

	// UpdateSite modifies an existing site. Request counters are owned by
	// RecordSiteRequest and are left untouched.
	UpdateSite(ctx context.Context, s *Site) error

	// DeleteSite removes a site.
	DeleteSite(ctx context.Context, siteID id.ID) error

	// ListSites returns sites, optionally filtered.
	ListSites(ctx context.Context, opts ListOpts) ([]*Site, error)

	// RecordSiteRequest atomically increments the request counter and sets
	// the last request time.
	RecordSiteRequest(ctx context.Context, siteID id.ID, at time.Time) error
}
