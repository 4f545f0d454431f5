package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"

	folio "github.com/xraph/folio"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/webhook"
)

// CreateWebhook persists a new webhook.
func (s *Store) CreateWebhook(ctx context.Context, w *webhook.Webhook) error {
	m := toWebhookModel(w)

	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("folio/mongo: create webhook: %w", err)
	}

	return nil
}

// GetWebhook returns a webhook by ID.
func (s *Store) GetWebhook(ctx context.Context, whID id.ID) (*webhook.Webhook, error) {
	var m webhookModel

	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": whID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, folio.ErrWebhookNotFound
		}

		return nil, fmt.Errorf("folio/mongo: get webhook: %w", err)
	}

	return fromWebhookModel(&m)
}

// UpdateWebhook sets the configuration fields only. Counters and the
// delivery log belong to RecordDelivery.
func (s *Store) UpdateWebhook(ctx context.Context, w *webhook.Webhook) error {
	res, err := s.mdb.NewUpdate((*webhookModel)(nil)).
		Filter(bson.M{"_id": w.ID.String()}).
		Set("name", w.Name).
		Set("url", w.URL).
		Set("description", w.Description).
		Set("events", w.Events).
		Set("secret", w.Secret).
		Set("is_active", w.IsActive).
		Set("site_id", w.SiteID).
		Set("max_retries", w.MaxRetries).
		Set("retry_delay", w.RetryDelay).
		Set("updated_at", w.UpdatedAt).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("folio/mongo: update webhook: %w", err)
	}

	if res.MatchedCount() == 0 {
		return folio.ErrWebhookNotFound
	}

	return nil
}

// DeleteWebhook removes a webhook.
func (s *Store) DeleteWebhook(ctx context.Context, whID id.ID) error {
	res, err := s.mdb.NewDelete((*webhookModel)(nil)).
		Filter(bson.M{"_id": whID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("folio/mongo: delete webhook: %w", err)
	}

	if res.DeletedCount() == 0 {
		return folio.ErrWebhookNotFound
	}

	return nil
}

// ListWebhooks returns webhooks, newest first.
func (s *Store) ListWebhooks(ctx context.Context, opts webhook.ListOpts) ([]*webhook.Webhook, error) {
	var models []webhookModel

	filter := bson.M{}
	if opts.SiteID != "" {
		filter["site_id"] = opts.SiteID
	}

	if opts.IsActive != nil {
		filter["is_active"] = *opts.IsActive
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "created_at", Value: -1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}

	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("folio/mongo: list webhooks: %w", err)
	}

	return fromModels(models, fromWebhookModel)
}

// FindActiveForEvent returns the active webhooks subscribed to event.
func (s *Store) FindActiveForEvent(ctx context.Context, event, siteID string) ([]*webhook.Webhook, error) {
	var models []webhookModel

	filter := bson.M{
		"is_active": true,
		"events":    event,
	}
	if siteID != "" {
		filter["site_id"] = siteID
	}

	if err := s.mdb.NewFind(&models).
		Filter(filter).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("folio/mongo: find webhooks for %s: %w", event, err)
	}

	return fromModels(models, fromWebhookModel)
}

// RecordDelivery applies the log append, trim and counter update in one
// single-document update, which MongoDB applies atomically.
func (s *Store) RecordDelivery(ctx context.Context, whID id.ID, log webhook.DeliveryLog, delta webhook.StatsDelta) error {
	at := log.Timestamp
	if at.IsZero() {
		at = now()
	}

	update := bson.M{
		"$push": bson.M{
			"delivery_logs": bson.M{
				"$each":  bson.A{toDeliveryLogModel(log)},
				"$slice": -webhook.MaxDeliveryLogs,
			},
		},
		"$inc": bson.M{
			"total_deliveries":      delta.Total,
			"successful_deliveries": delta.Successful,
			"failed_deliveries":     delta.Failed,
		},
		"$set": bson.M{
			"last_delivery_at":     at,
			"last_delivery_status": string(log.Status),
		},
	}

	res, err := s.mdb.Collection(colWebhooks).
		UpdateOne(ctx, bson.M{"_id": whID.String()}, update)
	if err != nil {
		return fmt.Errorf("folio/mongo: record delivery: %w", err)
	}

	if res.MatchedCount == 0 {
		return folio.ErrWebhookNotFound
	}

	return nil
}
