package memory

import (
	"context"
	"time"

	"github.com/xraph/folio"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/webhook"
)

// CreateWebhook persists a new webhook.
func (s *Store) CreateWebhook(_ context.Context, w *webhook.Webhook) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.webhooks[w.ID.String()] = w.Clone()
	return nil
}

// GetWebhook returns a webhook by ID.
func (s *Store) GetWebhook(_ context.Context, whID id.ID) (*webhook.Webhook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.webhooks[whID.String()]
	if !ok {
		return nil, folio.ErrWebhookNotFound
	}
	return w.Clone(), nil
}

// UpdateWebhook modifies the configuration of an existing webhook. Counters
// and the delivery log keep their stored values.
func (s *Store) UpdateWebhook(_ context.Context, w *webhook.Webhook) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := w.ID.String()
	existing, ok := s.webhooks[key]
	if !ok {
		return folio.ErrWebhookNotFound
	}

	cp := w.Clone()
	cp.Stats = existing.Stats
	cp.DeliveryLogs = existing.DeliveryLogs
	cp.LastDeliveryAt = existing.LastDeliveryAt
	cp.LastDeliveryStatus = existing.LastDeliveryStatus
	s.webhooks[key] = cp
	return nil
}

// DeleteWebhook removes a webhook.
func (s *Store) DeleteWebhook(_ context.Context, whID id.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.webhooks[whID.String()]; !ok {
		return folio.ErrWebhookNotFound
	}
	delete(s.webhooks, whID.String())
	return nil
}

// ListWebhooks returns webhooks, newest first.
func (s *Store) ListWebhooks(_ context.Context, opts webhook.ListOpts) ([]*webhook.Webhook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*webhook.Webhook
	for _, w := range s.webhooks {
		if opts.SiteID != "" && w.SiteID != opts.SiteID {
			continue
		}
		if opts.IsActive != nil && w.IsActive != *opts.IsActive {
			continue
		}
		result = append(result, w.Clone())
	}

	sortNewestFirst(result, func(w *webhook.Webhook) int64 { return w.CreatedAt.UnixNano() })

	return applyPagination(result, opts.Offset, opts.Limit), nil
}

// FindActiveForEvent returns the active webhooks subscribed to name.
func (s *Store) FindActiveForEvent(_ context.Context, name, siteID string) ([]*webhook.Webhook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*webhook.Webhook
	for _, w := range s.webhooks {
		if w.Matches(name, siteID) {
			result = append(result, w.Clone())
		}
	}
	return result, nil
}

// RecordDelivery appends a log entry and applies the counter delta under
// the store lock.
func (s *Store) RecordDelivery(_ context.Context, whID id.ID, log webhook.DeliveryLog, delta webhook.StatsDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.webhooks[whID.String()]
	if !ok {
		return folio.ErrWebhookNotFound
	}

	at := log.Timestamp
	if at.IsZero() {
		at = time.Now().UTC()
	}
	w.DeliveryLogs = webhook.AppendLog(w.DeliveryLogs, log)
	w.Stats.Apply(delta)
	w.LastDeliveryAt = &at
	w.LastDeliveryStatus = log.Status
	return nil
}
