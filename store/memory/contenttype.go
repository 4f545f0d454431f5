package memory

import (
	"context"
	"sort"

	"github.com/xraph/folio"
	"github.com/xraph/folio/contenttype"
	"github.com/xraph/folio/id"
)

// CreateContentType persists a new content type. Slugs are unique.
func (s *Store) CreateContentType(_ context.Context, ct *contenttype.ContentType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.contentTypes {
		if existing.Slug == ct.Slug {
			return folio.ErrDuplicateSlug
		}
	}
	s.contentTypes[ct.ID.String()] = ct.Clone()
	return nil
}

// GetContentType returns a content type by ID.
func (s *Store) GetContentType(_ context.Context, ctID id.ID) (*contenttype.ContentType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ct, ok := s.contentTypes[ctID.String()]
	if !ok {
		return nil, folio.ErrContentTypeNotFound
	}
	return ct.Clone(), nil
}

// GetContentTypeBySlug returns a content type by slug.
func (s *Store) GetContentTypeBySlug(_ context.Context, slug string) (*contenttype.ContentType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ct := range s.contentTypes {
		if ct.Slug == slug {
			return ct.Clone(), nil
		}
	}
	return nil, folio.ErrContentTypeNotFound
}

// UpdateContentType modifies an existing content type.
func (s *Store) UpdateContentType(_ context.Context, ct *contenttype.ContentType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := ct.ID.String()
	if _, ok := s.contentTypes[key]; !ok {
		return folio.ErrContentTypeNotFound
	}
	for k, existing := range s.contentTypes {
		if k != key && existing.Slug == ct.Slug {
			return folio.ErrDuplicateSlug
		}
	}
	s.contentTypes[key] = ct.Clone()
	return nil
}

// DeleteContentType removes a content type.
func (s *Store) DeleteContentType(_ context.Context, ctID id.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contentTypes[ctID.String()]; !ok {
		return folio.ErrContentTypeNotFound
	}
	delete(s.contentTypes, ctID.String())
	return nil
}

// ListContentTypes returns content types ordered by name.
func (s *Store) ListContentTypes(_ context.Context, opts contenttype.ListOpts) ([]*contenttype.ContentType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*contenttype.ContentType, 0, len(s.contentTypes))
	for _, ct := range s.contentTypes {
		if opts.Search != "" && !containsFold(ct.Name, opts.Search) && !containsFold(ct.Slug, opts.Search) {
			continue
		}
		result = append(result, ct.Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return applyPagination(result, opts.Offset, opts.Limit), nil
}
