package memory

import (
	"context"

	"github.com/xraph/folio"
	"github.com/xraph/folio/entry"
	"github.com/xraph/folio/id"
)

// CreateEntry persists a new entry.
func (s *Store) CreateEntry(_ context.Context, e *entry.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[e.ID.String()] = e.Clone()
	return nil
}

// GetEntry returns an entry by ID.
func (s *Store) GetEntry(_ context.Context, entryID id.ID) (*entry.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[entryID.String()]
	if !ok {
		return nil, folio.ErrEntryNotFound
	}
	return e.Clone(), nil
}

// GetEntries returns the entries with the given IDs, skipping missing ones.
func (s *Store) GetEntries(_ context.Context, entryIDs []id.ID) ([]*entry.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*entry.Entry, 0, len(entryIDs))
	for _, eid := range entryIDs {
		if e, ok := s.entries[eid.String()]; ok {
			result = append(result, e.Clone())
		}
	}
	return result, nil
}

// UpdateEntry replaces an existing entry.
func (s *Store) UpdateEntry(_ context.Context, e *entry.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := e.ID.String()
	if _, ok := s.entries[key]; !ok {
		return folio.ErrEntryNotFound
	}
	s.entries[key] = e.Clone()
	return nil
}

// DeleteEntry removes an entry.
func (s *Store) DeleteEntry(_ context.Context, entryID id.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[entryID.String()]; !ok {
		return folio.ErrEntryNotFound
	}
	delete(s.entries, entryID.String())
	return nil
}

// DeleteEntriesByContentType removes every entry of a content type.
func (s *Store) DeleteEntriesByContentType(_ context.Context, ctID id.ID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for k, e := range s.entries {
		if e.ContentTypeID.String() == ctID.String() {
			delete(s.entries, k)
			n++
		}
	}
	return n, nil
}

// ListEntries returns entries matching opts.
func (s *Store) ListEntries(_ context.Context, opts entry.ListOpts) ([]*entry.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*entry.Entry
	for _, e := range s.entries {
		if opts.Match(e) {
			result = append(result, e.Clone())
		}
	}
	opts.Sort(result)

	return opts.Page(result), nil
}

// CountEntries returns the number of entries matching opts.
func (s *Store) CountEntries(_ context.Context, opts entry.ListOpts) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, e := range s.entries {
		if opts.Match(e) {
			n++
		}
	}
	return n, nil
}
