package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	folio "github.com/xraph/folio"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/webhook"
)

// Stats hash fields.
const (
	statTotal      = "total"
	statSuccessful = "successful"
	statFailed     = "failed"
	statLastAt     = "last_at"
	statLastStatus = "last_status"
)

// recordDeliveryScript appends a delivery log, trims the log to its cap and
// applies the counter delta in one step. It does nothing for a webhook that
// is no longer indexed.
// KEYS[1] = folio:z:wh:all
// KEYS[2] = stats hash
// KEYS[3] = log list
// ARGV[1] = webhook ID
// ARGV[2] = encoded log entry
// ARGV[3] = log cap
// ARGV[4..6] = total, successful, failed deltas
// ARGV[7] = delivery time (RFC 3339)
// ARGV[8] = delivery status
var recordDeliveryScript = goredis.NewScript(`
if not redis.call('ZSCORE', KEYS[1], ARGV[1]) then return 0 end
redis.call('RPUSH', KEYS[3], ARGV[2])
redis.call('LTRIM', KEYS[3], -tonumber(ARGV[3]), -1)
redis.call('HINCRBY', KEYS[2], 'total', ARGV[4])
redis.call('HINCRBY', KEYS[2], 'successful', ARGV[5])
redis.call('HINCRBY', KEYS[2], 'failed', ARGV[6])
redis.call('HSET', KEYS[2], 'last_at', ARGV[7], 'last_status', ARGV[8])
return 1
`)

// CreateWebhook persists a new webhook.
func (s *Store) CreateWebhook(ctx context.Context, w *webhook.Webhook) error {
	m := toWebhookModel(w)

	if err := s.setEntity(ctx, entityKey(prefixWebhook, m.ID), m); err != nil {
		return fmt.Errorf("folio/redis: create webhook: %w", err)
	}

	pipe := s.rdb.Pipeline()
	pipe.ZAdd(ctx, zWebhookAll, goredis.Z{Score: scoreFromTime(m.CreatedAt), Member: m.ID})
	if m.IsActive {
		pipe.SAdd(ctx, sWebhookActive, m.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("folio/redis: create webhook indexes: %w", err)
	}
	return nil
}

// GetWebhook returns a webhook by ID with its counters and delivery log.
func (s *Store) GetWebhook(ctx context.Context, whID id.ID) (*webhook.Webhook, error) {
	var m webhookModel
	if err := s.getEntity(ctx, entityKey(prefixWebhook, whID.String()), &m); err != nil {
		if isNotFound(err) {
			return nil, folio.ErrWebhookNotFound
		}
		return nil, fmt.Errorf("folio/redis: get webhook: %w", err)
	}
	return s.hydrateWebhook(ctx, &m)
}

// UpdateWebhook rewrites the configuration document. Counters and the
// delivery log are separate keys and stay untouched.
func (s *Store) UpdateWebhook(ctx context.Context, w *webhook.Webhook) error {
	key := entityKey(prefixWebhook, w.ID.String())

	var existing webhookModel
	if err := s.getEntity(ctx, key, &existing); err != nil {
		if isNotFound(err) {
			return folio.ErrWebhookNotFound
		}
		return fmt.Errorf("folio/redis: update webhook get: %w", err)
	}

	m := toWebhookModel(w)
	if err := s.setEntity(ctx, key, m); err != nil {
		return fmt.Errorf("folio/redis: update webhook: %w", err)
	}

	var err error
	if m.IsActive {
		err = s.rdb.SAdd(ctx, sWebhookActive, m.ID).Err()
	} else {
		err = s.rdb.SRem(ctx, sWebhookActive, m.ID).Err()
	}
	if err != nil {
		return fmt.Errorf("folio/redis: update webhook indexes: %w", err)
	}
	return nil
}

// DeleteWebhook removes a webhook with its counters and delivery log.
func (s *Store) DeleteWebhook(ctx context.Context, whID id.ID) error {
	key := entityKey(prefixWebhook, whID.String())

	var m webhookModel
	if err := s.getEntity(ctx, key, &m); err != nil {
		if isNotFound(err) {
			return folio.ErrWebhookNotFound
		}
		return fmt.Errorf("folio/redis: delete webhook get: %w", err)
	}

	if err := s.kv.Delete(ctx, key); err != nil {
		return fmt.Errorf("folio/redis: delete webhook: %w", err)
	}

	pipe := s.rdb.Pipeline()
	pipe.ZRem(ctx, zWebhookAll, m.ID)
	pipe.SRem(ctx, sWebhookActive, m.ID)
	pipe.Del(ctx, hWebhookStats+m.ID, lWebhookLogs+m.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("folio/redis: delete webhook indexes: %w", err)
	}
	return nil
}

// ListWebhooks returns webhooks, newest first.
func (s *Store) ListWebhooks(ctx context.Context, opts webhook.ListOpts) ([]*webhook.Webhook, error) {
	ids, err := s.newestFirst(ctx, zWebhookAll)
	if err != nil {
		return nil, fmt.Errorf("folio/redis: list webhooks: %w", err)
	}

	models, err := loadAll[webhookModel](ctx, s, prefixWebhook, ids)
	if err != nil {
		return nil, fmt.Errorf("folio/redis: list webhooks: %w", err)
	}

	result := make([]*webhook.Webhook, 0, len(models))
	for _, m := range models {
		if opts.SiteID != "" && m.SiteID != opts.SiteID {
			continue
		}
		if opts.IsActive != nil && m.IsActive != *opts.IsActive {
			continue
		}
		w, err := s.hydrateWebhook(ctx, m)
		if err != nil {
			return nil, err
		}
		result = append(result, w)
	}

	return applyPagination(result, opts.Offset, opts.Limit), nil
}

// FindActiveForEvent returns the active webhooks subscribed to name.
func (s *Store) FindActiveForEvent(ctx context.Context, name, siteID string) ([]*webhook.Webhook, error) {
	ids, err := s.rdb.SMembers(ctx, sWebhookActive).Result()
	if err != nil {
		return nil, fmt.Errorf("folio/redis: find active webhooks: %w", err)
	}

	models, err := loadAll[webhookModel](ctx, s, prefixWebhook, ids)
	if err != nil {
		return nil, fmt.Errorf("folio/redis: find active webhooks: %w", err)
	}

	var result []*webhook.Webhook
	for _, m := range models {
		w, err := fromWebhookModel(m)
		if err != nil {
			return nil, err
		}
		if w.Matches(name, siteID) {
			result = append(result, w)
		}
	}
	return result, nil
}

// RecordDelivery appends a log entry and applies the counter delta
// atomically via a Lua script.
func (s *Store) RecordDelivery(ctx context.Context, whID id.ID, log webhook.DeliveryLog, delta webhook.StatsDelta) error {
	if log.Timestamp.IsZero() {
		log.Timestamp = now()
	}
	raw, err := json.Marshal(toDeliveryLogModel(log))
	if err != nil {
		return fmt.Errorf("folio/redis: encode delivery log: %w", err)
	}

	key := whID.String()
	n, err := recordDeliveryScript.Run(ctx, s.rdb,
		[]string{zWebhookAll, hWebhookStats + key, lWebhookLogs + key},
		key, raw, webhook.MaxDeliveryLogs,
		delta.Total, delta.Successful, delta.Failed,
		log.Timestamp.UTC().Format(time.RFC3339Nano), string(log.Status),
	).Int()
	if err != nil {
		return fmt.Errorf("folio/redis: record delivery: %w", err)
	}
	if n == 0 {
		return folio.ErrWebhookNotFound
	}
	return nil
}

// hydrateWebhook attaches the counters and delivery log to a stored
// configuration document.
func (s *Store) hydrateWebhook(ctx context.Context, m *webhookModel) (*webhook.Webhook, error) {
	w, err := fromWebhookModel(m)
	if err != nil {
		return nil, err
	}

	pipe := s.rdb.Pipeline()
	statsCmd := pipe.HGetAll(ctx, hWebhookStats+m.ID)
	logsCmd := pipe.LRange(ctx, lWebhookLogs+m.ID, 0, -1)
	if _, err := pipe.Exec(ctx); err != nil && !isRedisNil(err) {
		return nil, fmt.Errorf("folio/redis: load webhook stats: %w", err)
	}

	stats := statsCmd.Val()
	w.Stats = webhook.Stats{
		TotalDeliveries:      parseCounter(stats[statTotal]),
		SuccessfulDeliveries: parseCounter(stats[statSuccessful]),
		FailedDeliveries:     parseCounter(stats[statFailed]),
	}
	if at, err := time.Parse(time.RFC3339Nano, stats[statLastAt]); err == nil {
		w.LastDeliveryAt = &at
	}
	w.LastDeliveryStatus = webhook.Status(stats[statLastStatus])

	for _, raw := range logsCmd.Val() {
		var lm deliveryLogModel
		if err := json.Unmarshal([]byte(raw), &lm); err != nil {
			return nil, fmt.Errorf("folio/redis: decode delivery log of %s: %w", m.ID, err)
		}
		w.DeliveryLogs = append(w.DeliveryLogs, lm.toLog())
	}
	return w, nil
}

func parseCounter(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
