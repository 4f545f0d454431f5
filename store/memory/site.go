package memory

import (
	"context"
	"strings"
	"time"

	"github.com/xraph/folio"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/site"
)

// CreateSite persists a new site.
func (s *Store) CreateSite(_ context.Context, st *site.Site) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sites[st.ID.String()] = st.Clone()
	return nil
}

// GetSite returns a site by ID.
func (s *Store) GetSite(_ context.Context, siteID id.ID) (*site.Site, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.sites[siteID.String()]
	if !ok {
		return nil, folio.ErrSiteNotFound
	}
	return st.Clone(), nil
}

// FindSitesByKeyPrefix returns the sites whose key prefix starts with prefix.
func (s *Store) FindSitesByKeyPrefix(_ context.Context, prefix string) ([]*site.Site, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*site.Site
	for _, st := range s.sites {
		if strings.HasPrefix(st.APIKeyPrefix, prefix) {
			result = append(result, st.Clone())
		}
	}
	return result, nil
}

// UpdateSite modifies an existing site. Request counters keep their stored
// values.
func (s *Store) UpdateSite(_ context.Context, st *site.Site) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := st.ID.String()
	existing, ok := s.sites[key]
	if !ok {
		return folio.ErrSiteNotFound
	}

	cp := st.Clone()
	cp.RequestCount = existing.RequestCount
	cp.LastRequestAt = existing.LastRequestAt
	s.sites[key] = cp
	return nil
}

// DeleteSite removes a site.
func (s *Store) DeleteSite(_ context.Context, siteID id.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sites[siteID.String()]; !ok {
		return folio.ErrSiteNotFound
	}
	delete(s.sites, siteID.String())
	return nil
}

// ListSites returns sites, newest first.
func (s *Store) ListSites(_ context.Context, opts site.ListOpts) ([]*site.Site, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*site.Site
	for _, st := range s.sites {
		if opts.IsActive != nil && st.IsActive != *opts.IsActive {
			continue
		}
		result = append(result, st.Clone())
	}

	sortNewestFirst(result, func(st *site.Site) int64 { return st.CreatedAt.UnixNano() })

	return applyPagination(result, opts.Offset, opts.Limit), nil
}

// RecordSiteRequest increments the request counter of a site.
func (s *Store) RecordSiteRequest(_ context.Context, siteID id.ID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sites[siteID.String()]
	if !ok {
		return folio.ErrSiteNotFound
	}
	at = at.UTC()
	st.RequestCount++
	st.LastRequestAt = &at
	return nil
}
