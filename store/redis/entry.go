package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	folio "github.com/xraph/folio"
	"github.com/xraph/folio/entry"
	"github.com/xraph/folio/id"
)

// CreateEntry persists a new entry and indexes it globally and by type.
func (s *Store) CreateEntry(ctx context.Context, e *entry.Entry) error {
	m := toEntryModel(e)

	if err := s.setEntity(ctx, entityKey(prefixEntry, m.ID), m); err != nil {
		return fmt.Errorf("folio/redis: create entry: %w", err)
	}

	score := scoreFromTime(m.CreatedAt)
	pipe := s.rdb.Pipeline()
	pipe.ZAdd(ctx, zEntryAll, goredis.Z{Score: score, Member: m.ID})
	pipe.ZAdd(ctx, zEntryType+m.ContentTypeID, goredis.Z{Score: score, Member: m.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("folio/redis: create entry indexes: %w", err)
	}
	return nil
}

// GetEntry returns an entry by ID.
func (s *Store) GetEntry(ctx context.Context, entryID id.ID) (*entry.Entry, error) {
	var m entryModel
	if err := s.getEntity(ctx, entityKey(prefixEntry, entryID.String()), &m); err != nil {
		if isNotFound(err) {
			return nil, folio.ErrEntryNotFound
		}
		return nil, fmt.Errorf("folio/redis: get entry: %w", err)
	}
	return fromEntryModel(&m)
}

// GetEntries returns the entries with the given IDs, skipping missing ones.
func (s *Store) GetEntries(ctx context.Context, entryIDs []id.ID) ([]*entry.Entry, error) {
	ids := make([]string, len(entryIDs))
	for i, eid := range entryIDs {
		ids[i] = eid.String()
	}

	models, err := loadAll[entryModel](ctx, s, prefixEntry, ids)
	if err != nil {
		return nil, fmt.Errorf("folio/redis: get entries: %w", err)
	}
	return fromModels(models, fromEntryModel)
}

// UpdateEntry replaces an existing entry.
func (s *Store) UpdateEntry(ctx context.Context, e *entry.Entry) error {
	key := entityKey(prefixEntry, e.ID.String())

	var existing entryModel
	if err := s.getEntity(ctx, key, &existing); err != nil {
		if isNotFound(err) {
			return folio.ErrEntryNotFound
		}
		return fmt.Errorf("folio/redis: update entry get: %w", err)
	}

	if err := s.setEntity(ctx, key, toEntryModel(e)); err != nil {
		return fmt.Errorf("folio/redis: update entry: %w", err)
	}
	return nil
}

// DeleteEntry removes an entry and its index memberships.
func (s *Store) DeleteEntry(ctx context.Context, entryID id.ID) error {
	key := entityKey(prefixEntry, entryID.String())

	var m entryModel
	if err := s.getEntity(ctx, key, &m); err != nil {
		if isNotFound(err) {
			return folio.ErrEntryNotFound
		}
		return fmt.Errorf("folio/redis: delete entry get: %w", err)
	}

	if err := s.kv.Delete(ctx, key); err != nil {
		return fmt.Errorf("folio/redis: delete entry: %w", err)
	}

	pipe := s.rdb.Pipeline()
	pipe.ZRem(ctx, zEntryAll, m.ID)
	pipe.ZRem(ctx, zEntryType+m.ContentTypeID, m.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("folio/redis: delete entry indexes: %w", err)
	}
	return nil
}

// DeleteEntriesByContentType removes every entry of a content type.
func (s *Store) DeleteEntriesByContentType(ctx context.Context, ctID id.ID) (int64, error) {
	typeKey := zEntryType + ctID.String()

	ids, err := s.rdb.ZRange(ctx, typeKey, 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("folio/redis: delete entries by content type: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, len(ids))
	members := make([]any, len(ids))
	for i, entryID := range ids {
		keys[i] = entityKey(prefixEntry, entryID)
		members[i] = entryID
	}

	pipe := s.rdb.TxPipeline()
	deleted := pipe.Del(ctx, keys...)
	pipe.ZRem(ctx, zEntryAll, members...)
	pipe.Del(ctx, typeKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("folio/redis: delete entries by content type: %w", err)
	}
	return deleted.Val(), nil
}

// ListEntries returns entries matching opts. Filtering and ordering reuse
// entry.ListOpts so every backend sorts the same way.
func (s *Store) ListEntries(ctx context.Context, opts entry.ListOpts) ([]*entry.Entry, error) {
	result, err := s.matchingEntries(ctx, opts)
	if err != nil {
		return nil, err
	}
	opts.Sort(result)
	return opts.Page(result), nil
}

// CountEntries returns the number of entries matching opts.
func (s *Store) CountEntries(ctx context.Context, opts entry.ListOpts) (int64, error) {
	if opts.Status == nil && opts.Search == "" {
		key := zEntryAll
		if !opts.ContentTypeID.IsNil() {
			key = zEntryType + opts.ContentTypeID.String()
		}
		n, err := s.rdb.ZCard(ctx, key).Result()
		if err != nil {
			return 0, fmt.Errorf("folio/redis: count entries: %w", err)
		}
		return n, nil
	}

	result, err := s.matchingEntries(ctx, opts)
	if err != nil {
		return 0, err
	}
	return int64(len(result)), nil
}

func (s *Store) matchingEntries(ctx context.Context, opts entry.ListOpts) ([]*entry.Entry, error) {
	key := zEntryAll
	if !opts.ContentTypeID.IsNil() {
		key = zEntryType + opts.ContentTypeID.String()
	}

	ids, err := s.rdb.ZRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("folio/redis: list entries: %w", err)
	}

	models, err := loadAll[entryModel](ctx, s, prefixEntry, ids)
	if err != nil {
		return nil, fmt.Errorf("folio/redis: list entries: %w", err)
	}

	result := make([]*entry.Entry, 0, len(models))
	for _, m := range models {
		e, err := fromEntryModel(m)
		if err != nil {
			return nil, err
		}
		if opts.Match(e) {
			result = append(result, e)
		}
	}
	return result, nil
}
