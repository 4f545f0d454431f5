package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"

	folio "github.com/xraph/folio"
	"github.com/xraph/folio/entry"
	"github.com/xraph/folio/id"
)

// CreateEntry persists a new entry.
func (s *Store) CreateEntry(ctx context.Context, e *entry.Entry) error {
	m, err := toEntryModel(e)
	if err != nil {
		return err
	}

	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("folio/mongo: create entry: %w", err)
	}

	return nil
}

// GetEntry returns an entry by ID.
func (s *Store) GetEntry(ctx context.Context, entryID id.ID) (*entry.Entry, error) {
	var m entryModel

	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": entryID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, folio.ErrEntryNotFound
		}

		return nil, fmt.Errorf("folio/mongo: get entry: %w", err)
	}

	return fromEntryModel(&m)
}

// GetEntries returns the entries with the given IDs, skipping missing ones.
func (s *Store) GetEntries(ctx context.Context, entryIDs []id.ID) ([]*entry.Entry, error) {
	if len(entryIDs) == 0 {
		return nil, nil
	}

	ids := make(bson.A, len(entryIDs))
	for i, v := range entryIDs {
		ids[i] = v.String()
	}

	var models []entryModel
	if err := s.mdb.NewFind(&models).
		Filter(bson.M{"_id": bson.M{"$in": ids}}).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("folio/mongo: get entries: %w", err)
	}

	return fromModels(models, fromEntryModel)
}

// UpdateEntry replaces an existing entry.
func (s *Store) UpdateEntry(ctx context.Context, e *entry.Entry) error {
	m, err := toEntryModel(e)
	if err != nil {
		return err
	}

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("folio/mongo: update entry: %w", err)
	}

	if res.MatchedCount() == 0 {
		return folio.ErrEntryNotFound
	}

	return nil
}

// DeleteEntry removes an entry.
func (s *Store) DeleteEntry(ctx context.Context, entryID id.ID) error {
	res, err := s.mdb.NewDelete((*entryModel)(nil)).
		Filter(bson.M{"_id": entryID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("folio/mongo: delete entry: %w", err)
	}

	if res.DeletedCount() == 0 {
		return folio.ErrEntryNotFound
	}

	return nil
}

// DeleteEntriesByContentType removes every entry of a content type.
func (s *Store) DeleteEntriesByContentType(ctx context.Context, ctID id.ID) (int64, error) {
	res, err := s.mdb.Collection(colEntries).
		DeleteMany(ctx, bson.M{"content_type_id": ctID.String()})
	if err != nil {
		return 0, fmt.Errorf("folio/mongo: delete entries: %w", err)
	}

	return res.DeletedCount, nil
}

// ListEntries returns entries matching opts. Search terms are matched
// against the decoded values, so searching pages after matching.
func (s *Store) ListEntries(ctx context.Context, opts entry.ListOpts) ([]*entry.Entry, error) {
	var models []entryModel

	q := s.mdb.NewFind(&models).
		Filter(entryFilter(opts)).
		Sort(entrySort(opts))

	if opts.Search == "" {
		if opts.Limit > 0 {
			q = q.Limit(int64(opts.Limit))
		}

		if opts.Offset > 0 {
			q = q.Skip(int64(opts.Offset))
		}
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("folio/mongo: list entries: %w", err)
	}

	entries, err := fromModels(models, fromEntryModel)
	if err != nil || opts.Search == "" {
		return entries, err
	}

	matched := entries[:0]
	for _, e := range entries {
		if opts.Match(e) {
			matched = append(matched, e)
		}
	}

	return opts.Page(matched), nil
}

// CountEntries returns the number of entries matching opts.
func (s *Store) CountEntries(ctx context.Context, opts entry.ListOpts) (int64, error) {
	if opts.Search != "" {
		opts.Offset, opts.Limit = 0, 0

		entries, err := s.ListEntries(ctx, opts)
		if err != nil {
			return 0, err
		}

		return int64(len(entries)), nil
	}

	count, err := s.mdb.NewFind((*entryModel)(nil)).
		Filter(entryFilter(opts)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("folio/mongo: count entries: %w", err)
	}

	return count, nil
}

func entryFilter(opts entry.ListOpts) bson.M {
	filter := bson.M{}
	if !opts.ContentTypeID.IsNil() {
		filter["content_type_id"] = opts.ContentTypeID.String()
	}

	if opts.Status != nil {
		filter["status"] = string(*opts.Status)
	}

	return filter
}

// entrySort orders by the requested timestamp. MongoDB sorts null below
// any date, so unpublished entries come out as the oldest.
func entrySort(opts entry.ListOpts) bson.D {
	key := "created_at"
	switch opts.SortBy {
	case entry.SortUpdatedAt:
		key = "updated_at"
	case entry.SortPublishedAt:
		key = "published_at"
	}

	dir := -1
	if opts.Ascending {
		dir = 1
	}

	return bson.D{{Key: key, Value: dir}, {Key: "_id", Value: dir}}
}
