package redis

import (
	"context"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	folio "github.com/xraph/folio"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/media"
)

// CreateMedia persists a new media record.
func (s *Store) CreateMedia(ctx context.Context, md *media.Media) error {
	m := toMediaModel(md)

	if err := s.setEntity(ctx, entityKey(prefixMedia, m.ID), m); err != nil {
		return fmt.Errorf("folio/redis: create media: %w", err)
	}
	if err := s.rdb.ZAdd(ctx, zMediaAll, goredis.Z{Score: scoreFromTime(m.CreatedAt), Member: m.ID}).Err(); err != nil {
		return fmt.Errorf("folio/redis: create media index: %w", err)
	}
	return nil
}

// GetMedia returns a media record by ID.
func (s *Store) GetMedia(ctx context.Context, mediaID id.ID) (*media.Media, error) {
	var m mediaModel
	if err := s.getEntity(ctx, entityKey(prefixMedia, mediaID.String()), &m); err != nil {
		if isNotFound(err) {
			return nil, folio.ErrMediaNotFound
		}
		return nil, fmt.Errorf("folio/redis: get media: %w", err)
	}
	return fromMediaModel(&m)
}

// UpdateMedia modifies an existing media record.
func (s *Store) UpdateMedia(ctx context.Context, md *media.Media) error {
	key := entityKey(prefixMedia, md.ID.String())

	var existing mediaModel
	if err := s.getEntity(ctx, key, &existing); err != nil {
		if isNotFound(err) {
			return folio.ErrMediaNotFound
		}
		return fmt.Errorf("folio/redis: update media get: %w", err)
	}

	if err := s.setEntity(ctx, key, toMediaModel(md)); err != nil {
		return fmt.Errorf("folio/redis: update media: %w", err)
	}
	return nil
}

// DeleteMedia removes a media record.
func (s *Store) DeleteMedia(ctx context.Context, mediaID id.ID) error {
	key := entityKey(prefixMedia, mediaID.String())

	var m mediaModel
	if err := s.getEntity(ctx, key, &m); err != nil {
		if isNotFound(err) {
			return folio.ErrMediaNotFound
		}
		return fmt.Errorf("folio/redis: delete media get: %w", err)
	}

	if err := s.kv.Delete(ctx, key); err != nil {
		return fmt.Errorf("folio/redis: delete media: %w", err)
	}
	if err := s.rdb.ZRem(ctx, zMediaAll, m.ID).Err(); err != nil {
		return fmt.Errorf("folio/redis: delete media index: %w", err)
	}
	return nil
}

// ListMedia returns media records matching opts, newest first.
func (s *Store) ListMedia(ctx context.Context, opts media.ListOpts) ([]*media.Media, error) {
	ids, err := s.newestFirst(ctx, zMediaAll)
	if err != nil {
		return nil, fmt.Errorf("folio/redis: list media: %w", err)
	}

	models, err := loadAll[mediaModel](ctx, s, prefixMedia, ids)
	if err != nil {
		return nil, fmt.Errorf("folio/redis: list media: %w", err)
	}

	search := strings.ToLower(opts.Search)
	result := make([]*media.Media, 0, len(models))
	for _, m := range models {
		md, err := fromMediaModel(m)
		if err != nil {
			return nil, err
		}
		if opts.MimeType != "" && md.MimeType != opts.MimeType {
			continue
		}
		if opts.Category != "" && md.Category() != opts.Category {
			continue
		}
		if opts.Tag != "" && !md.HasTag(opts.Tag) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(md.OriginalName), search) &&
			!strings.Contains(strings.ToLower(md.Filename), search) &&
			!strings.Contains(strings.ToLower(md.AltText), search) {
			continue
		}
		result = append(result, md)
	}

	return applyPagination(result, opts.Offset, opts.Limit), nil
}
