package redis

import (
	"context"
	"fmt"
	"sort"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	folio "github.com/xraph/folio"
	"github.com/xraph/folio/contenttype"
	"github.com/xraph/folio/id"
)

// CreateContentType persists a new content type. The slug is claimed with
// SETNX before the document is written.
func (s *Store) CreateContentType(ctx context.Context, ct *contenttype.ContentType) error {
	m := toContentTypeModel(ct)

	ok, err := s.rdb.SetNX(ctx, uniqueContentTypeSlug+m.Slug, m.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("folio/redis: create content type slug: %w", err)
	}
	if !ok {
		return folio.ErrDuplicateSlug
	}

	if err := s.setEntity(ctx, entityKey(prefixContentType, m.ID), m); err != nil {
		s.rdb.Del(ctx, uniqueContentTypeSlug+m.Slug)
		return fmt.Errorf("folio/redis: create content type: %w", err)
	}

	if err := s.rdb.ZAdd(ctx, zContentTypeAll, goredis.Z{Score: scoreFromTime(m.CreatedAt), Member: m.ID}).Err(); err != nil {
		return fmt.Errorf("folio/redis: create content type index: %w", err)
	}
	return nil
}

// GetContentType returns a content type by ID.
func (s *Store) GetContentType(ctx context.Context, ctID id.ID) (*contenttype.ContentType, error) {
	var m contentTypeModel
	if err := s.getEntity(ctx, entityKey(prefixContentType, ctID.String()), &m); err != nil {
		if isNotFound(err) {
			return nil, folio.ErrContentTypeNotFound
		}
		return nil, fmt.Errorf("folio/redis: get content type: %w", err)
	}
	return fromContentTypeModel(&m)
}

// GetContentTypeBySlug returns a content type by slug.
func (s *Store) GetContentTypeBySlug(ctx context.Context, slug string) (*contenttype.ContentType, error) {
	ctID, err := s.rdb.Get(ctx, uniqueContentTypeSlug+slug).Result()
	if err != nil {
		if isRedisNil(err) {
			return nil, folio.ErrContentTypeNotFound
		}
		return nil, fmt.Errorf("folio/redis: get content type by slug: %w", err)
	}

	var m contentTypeModel
	if err := s.getEntity(ctx, entityKey(prefixContentType, ctID), &m); err != nil {
		if isNotFound(err) {
			return nil, folio.ErrContentTypeNotFound
		}
		return nil, fmt.Errorf("folio/redis: get content type by slug: %w", err)
	}
	return fromContentTypeModel(&m)
}

// UpdateContentType modifies an existing content type, moving the slug
// claim when the slug changes.
func (s *Store) UpdateContentType(ctx context.Context, ct *contenttype.ContentType) error {
	key := entityKey(prefixContentType, ct.ID.String())

	var existing contentTypeModel
	if err := s.getEntity(ctx, key, &existing); err != nil {
		if isNotFound(err) {
			return folio.ErrContentTypeNotFound
		}
		return fmt.Errorf("folio/redis: update content type get: %w", err)
	}

	m := toContentTypeModel(ct)
	if m.Slug != existing.Slug {
		ok, err := s.rdb.SetNX(ctx, uniqueContentTypeSlug+m.Slug, m.ID, 0).Result()
		if err != nil {
			return fmt.Errorf("folio/redis: update content type slug: %w", err)
		}
		if !ok {
			return folio.ErrDuplicateSlug
		}
	}

	if err := s.setEntity(ctx, key, m); err != nil {
		return fmt.Errorf("folio/redis: update content type: %w", err)
	}

	if m.Slug != existing.Slug {
		if err := s.rdb.Del(ctx, uniqueContentTypeSlug+existing.Slug).Err(); err != nil {
			return fmt.Errorf("folio/redis: release content type slug: %w", err)
		}
	}
	return nil
}

// DeleteContentType removes a content type and its slug claim.
func (s *Store) DeleteContentType(ctx context.Context, ctID id.ID) error {
	key := entityKey(prefixContentType, ctID.String())

	var m contentTypeModel
	if err := s.getEntity(ctx, key, &m); err != nil {
		if isNotFound(err) {
			return folio.ErrContentTypeNotFound
		}
		return fmt.Errorf("folio/redis: delete content type get: %w", err)
	}

	if err := s.kv.Delete(ctx, key); err != nil {
		return fmt.Errorf("folio/redis: delete content type: %w", err)
	}

	pipe := s.rdb.Pipeline()
	pipe.Del(ctx, uniqueContentTypeSlug+m.Slug)
	pipe.ZRem(ctx, zContentTypeAll, m.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("folio/redis: delete content type indexes: %w", err)
	}
	return nil
}

// ListContentTypes returns content types ordered by name.
func (s *Store) ListContentTypes(ctx context.Context, opts contenttype.ListOpts) ([]*contenttype.ContentType, error) {
	ids, err := s.rdb.ZRange(ctx, zContentTypeAll, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("folio/redis: list content types: %w", err)
	}

	models, err := loadAll[contentTypeModel](ctx, s, prefixContentType, ids)
	if err != nil {
		return nil, fmt.Errorf("folio/redis: list content types: %w", err)
	}

	search := strings.ToLower(opts.Search)
	result := make([]*contenttype.ContentType, 0, len(models))
	for _, m := range models {
		if search != "" &&
			!strings.Contains(strings.ToLower(m.Name), search) &&
			!strings.Contains(strings.ToLower(m.Slug), search) {
			continue
		}
		ct, err := fromContentTypeModel(m)
		if err != nil {
			return nil, err
		}
		result = append(result, ct)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return applyPagination(result, opts.Offset, opts.Limit), nil
}
