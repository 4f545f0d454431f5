package memory

import (
	"context"

	"github.com/xraph/folio"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/media"
)

// CreateMedia persists a new media record.
func (s *Store) CreateMedia(_ context.Context, m *media.Media) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.media[m.ID.String()] = m.Clone()
	return nil
}

// GetMedia returns a media record by ID.
func (s *Store) GetMedia(_ context.Context, mediaID id.ID) (*media.Media, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.media[mediaID.String()]
	if !ok {
		return nil, folio.ErrMediaNotFound
	}
	return m.Clone(), nil
}

// UpdateMedia modifies an existing media record.
func (s *Store) UpdateMedia(_ context.Context, m *media.Media) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := m.ID.String()
	if _, ok := s.media[key]; !ok {
		return folio.ErrMediaNotFound
	}
	s.media[key] = m.Clone()
	return nil
}

// DeleteMedia removes a media record.
func (s *Store) DeleteMedia(_ context.Context, mediaID id.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.media[mediaID.String()]; !ok {
		return folio.ErrMediaNotFound
	}
	delete(s.media, mediaID.String())
	return nil
}

// ListMedia returns media records matching opts, newest first.
func (s *Store) ListMedia(_ context.Context, opts media.ListOpts) ([]*media.Media, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*media.Media
	for _, m := range s.media {
		if opts.MimeType != "" && m.MimeType != opts.MimeType {
			continue
		}
		if opts.Category != "" && m.Category() != opts.Category {
			continue
		}
		if opts.Tag != "" && !m.HasTag(opts.Tag) {
			continue
		}
		if opts.Search != "" && !containsFold(m.OriginalName, opts.Search) &&
			!containsFold(m.Filename, opts.Search) && !containsFold(m.AltText, opts.Search) {
			continue
		}
		result = append(result, m.Clone())
	}

	sortNewestFirst(result, func(m *media.Media) int64 { return m.CreatedAt.UnixNano() })

	return applyPagination(result, opts.Offset, opts.Limit), nil
}
