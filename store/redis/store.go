package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/xraph/grove/kv"
	"github.com/xraph/grove/kv/drivers/redisdriver"

	folistore "github.com/xraph/folio/store"
)

// claimLease is how long a dequeued task stays invisible to other workers.
const claimLease = 5 * time.Minute

// compile-time interface check
var _ folistore.Store = (*Store)(nil)

// Store implements store.Store using Redis via Grove KV.
type Store struct {
	kv  *kv.Store
	rdb goredis.UniversalClient
}

// New creates a new Redis store backed by Grove KV.
func New(store *kv.Store) *Store {
	return &Store{
		kv:  store,
		rdb: redisdriver.UnwrapClient(store),
	}
}

// Migrate is a no-op for Redis (no schema migrations needed).
func (s *Store) Migrate(_ context.Context) error {
	return nil
}

// Ping checks Redis connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.kv.Ping(ctx)
}

// Close closes the KV store.
func (s *Store) Close() error {
	return s.kv.Close()
}

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// scoreFromTime converts a time.Time to a sorted set score (unix seconds as float64).
func scoreFromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// isNotFound checks if an error is a KV not-found sentinel.
func isNotFound(err error) bool {
	return errors.Is(err, kv.ErrNotFound)
}

// isRedisNil checks if an error is a Redis nil (key not found).
func isRedisNil(err error) bool {
	return errors.Is(err, goredis.Nil)
}

// getEntity retrieves and decodes a JSON entity from a KV key.
func (s *Store) getEntity(ctx context.Context, key string, dest any) error {
	raw, err := s.kv.GetRaw(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// setEntity encodes and stores a JSON entity under a KV key.
func (s *Store) setEntity(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("folio/redis: marshal entity: %w", err)
	}
	return s.kv.SetRaw(ctx, key, raw)
}

// newestFirst returns all members of a sorted set scored by creation time,
// newest first.
func (s *Store) newestFirst(ctx context.Context, key string) ([]string, error) {
	return s.rdb.ZRevRange(ctx, key, 0, -1).Result()
}

// loadAll fetches the entities behind ids, skipping keys that vanished
// between the index read and the fetch.
func loadAll[M any](ctx context.Context, s *Store, prefix string, ids []string) ([]*M, error) {
	result := make([]*M, 0, len(ids))
	for _, entityID := range ids {
		m := new(M)
		if err := s.getEntity(ctx, entityKey(prefix, entityID), m); err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, err
		}
		result = append(result, m)
	}
	return result, nil
}

// applyPagination applies offset and limit to a slice.
func applyPagination[T any](items []*T, offset, limit int) []*T {
	if offset > 0 && offset < len(items) {
		items = items[offset:]
	} else if offset >= len(items) {
		return nil
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func fromModels[M, T any](models []*M, conv func(*M) (T, error)) ([]T, error) {
	result := make([]T, 0, len(models))
	for _, m := range models {
		v, err := conv(m)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, nil
}
