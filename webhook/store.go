package webhook

import (
	"context"

	"github.com/xraph/folio/id"
)

// Store defines the persistence contract for webhooks.
type Store interface {
	// CreateWebhook persists a new webhook.
	CreateWebhook(ctx context.Context, w *Webhook) error

	// GetWebhook returns a webhook by ID.
	GetWebhook(ctx context.Context, whID id.ID) (*Webhook, error)

	// UpdateWebhook modifies the configuration of an existing webhook.
	// Counters and the delivery log are owned by RecordDelivery and are
	// left untouched.
	UpdateWebhook(ctx context.Context, w *Webhook) error

	// DeleteWebhook removes a webhook.
	DeleteWebhook(ctx context.Context, whID id.ID) error

	// ListWebhooks returns webhooks, optionally filtered.
	ListWebhooks(ctx context.Context, opts ListOpts) ([]*Webhook, error)

	// FindActiveForEvent returns the active webhooks subscribed to event.
	// A non-empty siteID also requires a matching webhook SiteID.
	// This is the hot path, called for every mutation.
	FindActiveForEvent(ctx context.Context, event, siteID string) ([]*Webhook, error)

	// RecordDelivery appends log to the webhook's delivery log, trims it to
	// MaxDeliveryLogs, applies delta to the counters and stamps the last
	// delivery fields. The whole update is a single atomic operation.
	RecordDelivery(ctx context.Context, whID id.ID, log DeliveryLog, delta StatsDelta) error
}
