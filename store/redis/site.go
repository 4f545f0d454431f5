package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	folio "github.com/xraph/folio"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/site"
)

// Site stats hash fields.
const (
	siteRequests = "requests"
	siteLastAt   = "last_at"
)

// recordRequestScript bumps a site's request counter.
// KEYS[1] = folio:z:site:all
// KEYS[2] = stats hash
// ARGV[1] = site ID
// ARGV[2] = request time (RFC 3339)
var recordRequestScript = goredis.NewScript(`
if not redis.call('ZSCORE', KEYS[1], ARGV[1]) then return 0 end
redis.call('HINCRBY', KEYS[2], 'requests', 1)
redis.call('HSET', KEYS[2], 'last_at', ARGV[2])
return 1
`)

// CreateSite persists a new site and indexes its key prefix.
func (s *Store) CreateSite(ctx context.Context, st *site.Site) error {
	m := toSiteModel(st)

	if err := s.setEntity(ctx, entityKey(prefixSite, m.ID), m); err != nil {
		return fmt.Errorf("folio/redis: create site: %w", err)
	}

	pipe := s.rdb.Pipeline()
	pipe.ZAdd(ctx, zSiteAll, goredis.Z{Score: scoreFromTime(m.CreatedAt), Member: m.ID})
	pipe.SAdd(ctx, sSiteKeyPrefix+m.APIKeyPrefix, m.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("folio/redis: create site indexes: %w", err)
	}
	return nil
}

// GetSite returns a site by ID.
func (s *Store) GetSite(ctx context.Context, siteID id.ID) (*site.Site, error) {
	var m siteModel
	if err := s.getEntity(ctx, entityKey(prefixSite, siteID.String()), &m); err != nil {
		if isNotFound(err) {
			return nil, folio.ErrSiteNotFound
		}
		return nil, fmt.Errorf("folio/redis: get site: %w", err)
	}
	return s.hydrateSite(ctx, &m)
}

// FindSitesByKeyPrefix returns the sites whose key prefix starts with
// prefix. A full-length prefix is an exact set lookup.
func (s *Store) FindSitesByKeyPrefix(ctx context.Context, prefix string) ([]*site.Site, error) {
	var (
		ids []string
		err error
	)
	if len(prefix) >= site.PrefixLength {
		ids, err = s.rdb.SMembers(ctx, sSiteKeyPrefix+prefix).Result()
	} else {
		ids, err = s.rdb.ZRange(ctx, zSiteAll, 0, -1).Result()
	}
	if err != nil {
		return nil, fmt.Errorf("folio/redis: find sites by key prefix: %w", err)
	}

	models, err := loadAll[siteModel](ctx, s, prefixSite, ids)
	if err != nil {
		return nil, fmt.Errorf("folio/redis: find sites by key prefix: %w", err)
	}

	var result []*site.Site
	for _, m := range models {
		if !strings.HasPrefix(m.APIKeyPrefix, prefix) {
			continue
		}
		st, err := s.hydrateSite(ctx, m)
		if err != nil {
			return nil, err
		}
		result = append(result, st)
	}
	return result, nil
}

// UpdateSite modifies an existing site. Request counters live in a
// separate hash and keep their values.
func (s *Store) UpdateSite(ctx context.Context, st *site.Site) error {
	key := entityKey(prefixSite, st.ID.String())

	var existing siteModel
	if err := s.getEntity(ctx, key, &existing); err != nil {
		if isNotFound(err) {
			return folio.ErrSiteNotFound
		}
		return fmt.Errorf("folio/redis: update site get: %w", err)
	}

	m := toSiteModel(st)
	if err := s.setEntity(ctx, key, m); err != nil {
		return fmt.Errorf("folio/redis: update site: %w", err)
	}

	if m.APIKeyPrefix != existing.APIKeyPrefix {
		pipe := s.rdb.Pipeline()
		pipe.SRem(ctx, sSiteKeyPrefix+existing.APIKeyPrefix, m.ID)
		pipe.SAdd(ctx, sSiteKeyPrefix+m.APIKeyPrefix, m.ID)
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("folio/redis: update site indexes: %w", err)
		}
	}
	return nil
}

// DeleteSite removes a site.
func (s *Store) DeleteSite(ctx context.Context, siteID id.ID) error {
	key := entityKey(prefixSite, siteID.String())

	var m siteModel
	if err := s.getEntity(ctx, key, &m); err != nil {
		if isNotFound(err) {
			return folio.ErrSiteNotFound
		}
		return fmt.Errorf("folio/redis: delete site get: %w", err)
	}

	if err := s.kv.Delete(ctx, key); err != nil {
		return fmt.Errorf("folio/redis: delete site: %w", err)
	}

	pipe := s.rdb.Pipeline()
	pipe.ZRem(ctx, zSiteAll, m.ID)
	pipe.SRem(ctx, sSiteKeyPrefix+m.APIKeyPrefix, m.ID)
	pipe.Del(ctx, hSiteStats+m.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("folio/redis: delete site indexes: %w", err)
	}
	return nil
}

// ListSites returns sites, newest first.
func (s *Store) ListSites(ctx context.Context, opts site.ListOpts) ([]*site.Site, error) {
	ids, err := s.newestFirst(ctx, zSiteAll)
	if err != nil {
		return nil, fmt.Errorf("folio/redis: list sites: %w", err)
	}

	models, err := loadAll[siteModel](ctx, s, prefixSite, ids)
	if err != nil {
		return nil, fmt.Errorf("folio/redis: list sites: %w", err)
	}

	result := make([]*site.Site, 0, len(models))
	for _, m := range models {
		if opts.IsActive != nil && m.IsActive != *opts.IsActive {
			continue
		}
		st, err := s.hydrateSite(ctx, m)
		if err != nil {
			return nil, err
		}
		result = append(result, st)
	}

	return applyPagination(result, opts.Offset, opts.Limit), nil
}

// RecordSiteRequest increments the request counter of a site.
func (s *Store) RecordSiteRequest(ctx context.Context, siteID id.ID, at time.Time) error {
	key := siteID.String()
	n, err := recordRequestScript.Run(ctx, s.rdb,
		[]string{zSiteAll, hSiteStats + key},
		key, at.UTC().Format(time.RFC3339Nano),
	).Int()
	if err != nil {
		return fmt.Errorf("folio/redis: record site request: %w", err)
	}
	if n == 0 {
		return folio.ErrSiteNotFound
	}
	return nil
}

func (s *Store) hydrateSite(ctx context.Context, m *siteModel) (*site.Site, error) {
	st, err := fromSiteModel(m)
	if err != nil {
		return nil, err
	}

	stats, err := s.rdb.HGetAll(ctx, hSiteStats+m.ID).Result()
	if err != nil && !isRedisNil(err) {
		return nil, fmt.Errorf("folio/redis: load site stats: %w", err)
	}
	st.RequestCount = parseCounter(stats[siteRequests])
	if at, err := time.Parse(time.RFC3339Nano, stats[siteLastAt]); err == nil {
		st.LastRequestAt = &at
	}
	return st, nil
}
