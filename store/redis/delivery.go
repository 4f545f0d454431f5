package redis

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	folio "github.com/xraph/folio"
	"github.com/xraph/folio/delivery"
	"github.com/xraph/folio/id"
)

// dequeueScript atomically claims due tasks. Claims whose lease ran out are
// first returned to the pending set.
// KEYS[1] = folio:z:task:pending
// KEYS[2] = folio:z:task:claimed
// ARGV[1] = current unix timestamp (score threshold)
// ARGV[2] = limit (-1 for all)
// ARGV[3] = claim lease in seconds
var dequeueScript = goredis.NewScript(`
local now = tonumber(ARGV[1])
local expired = redis.call('ZRANGEBYSCORE', KEYS[2], '-inf', now)
for _, id in ipairs(expired) do
    redis.call('ZREM', KEYS[2], id)
    redis.call('ZADD', KEYS[1], now, id)
end
local ids = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', now, 'LIMIT', 0, tonumber(ARGV[2]))
if #ids == 0 then return {} end
for _, id in ipairs(ids) do
    redis.call('ZREM', KEYS[1], id)
    redis.call('ZADD', KEYS[2], now + tonumber(ARGV[3]), id)
end
return ids
`)

// Enqueue creates a pending task.
func (s *Store) Enqueue(ctx context.Context, t *delivery.Task) error {
	m := toTaskModel(t)

	if err := s.setEntity(ctx, entityKey(prefixTask, m.ID), m); err != nil {
		return fmt.Errorf("folio/redis: enqueue task: %w", err)
	}

	if m.State == string(delivery.StatePending) {
		err := s.rdb.ZAdd(ctx, zTaskPending, goredis.Z{Score: scoreFromTime(m.NextAttemptAt), Member: m.ID}).Err()
		if err != nil {
			return fmt.Errorf("folio/redis: enqueue task index: %w", err)
		}
	}
	return nil
}

// EnqueueBatch creates multiple tasks in one transaction.
func (s *Store) EnqueueBatch(ctx context.Context, ts []*delivery.Task) error {
	if len(ts) == 0 {
		return nil
	}

	pipe := s.rdb.TxPipeline()
	for _, t := range ts {
		m := toTaskModel(t)

		raw, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("folio/redis: enqueue batch marshal: %w", err)
		}
		pipe.Set(ctx, entityKey(prefixTask, m.ID), raw, 0)
		if m.State == string(delivery.StatePending) {
			pipe.ZAdd(ctx, zTaskPending, goredis.Z{Score: scoreFromTime(m.NextAttemptAt), Member: m.ID})
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("folio/redis: enqueue batch: %w", err)
	}
	return nil
}

// Dequeue claims pending tasks that are due. A claimed task stays out of
// the pending set until UpdateTask or until its lease expires.
func (s *Store) Dequeue(ctx context.Context, limit int) ([]*delivery.Task, error) {
	if limit <= 0 {
		limit = -1
	}

	nowScore := fmt.Sprintf("%f", scoreFromTime(now()))
	result, err := dequeueScript.Run(ctx, s.rdb,
		[]string{zTaskPending, zTaskClaimed},
		nowScore, limit, int(claimLease.Seconds()),
	).StringSlice()
	if err != nil {
		if isRedisNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("folio/redis: dequeue script: %w", err)
	}
	if len(result) == 0 {
		return nil, nil
	}

	models, err := loadAll[taskModel](ctx, s, prefixTask, result)
	if err != nil {
		return nil, fmt.Errorf("folio/redis: dequeue get: %w", err)
	}
	return fromModels(models, fromTaskModel)
}

// UpdateTask persists a task and releases its claim. Tasks still pending go
// back into the pending set at their next attempt time.
func (s *Store) UpdateTask(ctx context.Context, t *delivery.Task) error {
	key := entityKey(prefixTask, t.ID.String())

	var existing taskModel
	if err := s.getEntity(ctx, key, &existing); err != nil {
		if isNotFound(err) {
			return folio.ErrTaskNotFound
		}
		return fmt.Errorf("folio/redis: update task get: %w", err)
	}

	m := toTaskModel(t)
	if err := s.setEntity(ctx, key, m); err != nil {
		return fmt.Errorf("folio/redis: update task: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.ZRem(ctx, zTaskClaimed, m.ID)
	if t.State == delivery.StatePending {
		pipe.ZAdd(ctx, zTaskPending, goredis.Z{Score: scoreFromTime(m.NextAttemptAt), Member: m.ID})
	} else {
		pipe.ZRem(ctx, zTaskPending, m.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("folio/redis: update task indexes: %w", err)
	}
	return nil
}

// GetTask returns a task by ID.
func (s *Store) GetTask(ctx context.Context, taskID id.ID) (*delivery.Task, error) {
	var m taskModel
	if err := s.getEntity(ctx, entityKey(prefixTask, taskID.String()), &m); err != nil {
		if isNotFound(err) {
			return nil, folio.ErrTaskNotFound
		}
		return nil, fmt.Errorf("folio/redis: get task: %w", err)
	}
	return fromTaskModel(&m)
}

// CountPending returns the number of pending tasks, claimed or not.
func (s *Store) CountPending(ctx context.Context) (int64, error) {
	pipe := s.rdb.Pipeline()
	pending := pipe.ZCard(ctx, zTaskPending)
	claimed := pipe.ZCard(ctx, zTaskClaimed)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("folio/redis: count pending: %w", err)
	}
	return pending.Val() + claimed.Val(), nil
}
