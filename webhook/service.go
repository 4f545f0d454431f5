package webhook

import (
	"context"
	"log/slog"
	"time"

	"github.com/xraph/folio/id"
	"github.com/xraph/folio/internal/entity"
	"github.com/xraph/folio/signature"
)

// Service provides webhook management operations.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates a new webhook service.
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		logger: logger,
	}
}

// Create registers a new webhook.
func (svc *Service) Create(ctx context.Context, in Input) (*Webhook, error) {
	if err := check(in); err != nil {
		return nil, err
	}

	secret := in.Secret
	if secret == "" {
		secret = signature.GenerateSecret()
	}

	w := &Webhook{
		Entity:      entity.New(),
		ID:          id.NewWebhookID(),
		Name:        in.Name,
		URL:         in.URL,
		Description: in.Description,
		Events:      dedupe(in.Events),
		Secret:      secret,
		IsActive:    true,
		SiteID:      in.SiteID,
		MaxRetries:  DefaultMaxRetries,
		RetryDelay:  DefaultRetryDelay,
		CreatedBy:   in.CreatedBy,
	}
	if in.IsActive != nil {
		w.IsActive = *in.IsActive
	}
	if in.MaxRetries != nil {
		w.MaxRetries = *in.MaxRetries
	}
	if in.RetryDelay != nil {
		w.RetryDelay = *in.RetryDelay
	}

	if err := svc.store.CreateWebhook(ctx, w); err != nil {
		return nil, err
	}

	svc.logger.InfoContext(ctx, "webhook created", "webhook_id", w.ID, "events", w.Events)
	return w, nil
}

// Get returns a webhook by ID.
func (svc *Service) Get(ctx context.Context, whID id.ID) (*Webhook, error) {
	return svc.store.GetWebhook(ctx, whID)
}

// List returns webhooks matching opts.
func (svc *Service) List(ctx context.Context, opts ListOpts) ([]*Webhook, error) {
	return svc.store.ListWebhooks(ctx, opts)
}

// Update modifies an existing webhook.
func (svc *Service) Update(ctx context.Context, whID id.ID, in UpdateInput) (*Webhook, error) {
	if err := check(in); err != nil {
		return nil, err
	}

	w, err := svc.store.GetWebhook(ctx, whID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		w.Name = *in.Name
	}
	if in.URL != nil {
		w.URL = *in.URL
	}
	if in.Description != nil {
		w.Description = *in.Description
	}
	if in.Events != nil {
		w.Events = dedupe(in.Events)
	}
	if in.IsActive != nil {
		w.IsActive = *in.IsActive
	}
	if in.SiteID != nil {
		w.SiteID = *in.SiteID
	}
	if in.MaxRetries != nil {
		w.MaxRetries = *in.MaxRetries
	}
	if in.RetryDelay != nil {
		w.RetryDelay = *in.RetryDelay
	}
	w.UpdatedAt = time.Now().UTC()

	if err := svc.store.UpdateWebhook(ctx, w); err != nil {
		return nil, err
	}

	return w, nil
}

// Delete removes a webhook. Pending delivery tasks for it fail on their
// next attempt.
func (svc *Service) Delete(ctx context.Context, whID id.ID) error {
	return svc.store.DeleteWebhook(ctx, whID)
}

// RotateSecret generates a new signing secret for a webhook.
func (svc *Service) RotateSecret(ctx context.Context, whID id.ID) (string, error) {
	w, err := svc.store.GetWebhook(ctx, whID)
	if err != nil {
		return "", err
	}

	newSecret := signature.GenerateSecret()

	w.Secret = newSecret
	w.UpdatedAt = time.Now().UTC()
	if err := svc.store.UpdateWebhook(ctx, w); err != nil {
		return "", err
	}

	svc.logger.InfoContext(ctx, "webhook secret rotated", "webhook_id", whID)
	return newSecret, nil
}

// DeliveryLogs returns up to limit recent attempts, newest first. A limit
// outside 1..MaxDeliveryLogs returns the whole ring.
func (svc *Service) DeliveryLogs(ctx context.Context, whID id.ID, limit int) ([]DeliveryLog, error) {
	w, err := svc.store.GetWebhook(ctx, whID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > MaxDeliveryLogs {
		limit = MaxDeliveryLogs
	}

	n := len(w.DeliveryLogs)
	if limit > n {
		limit = n
	}
	out := make([]DeliveryLog, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, w.DeliveryLogs[i])
	}
	return out, nil
}

func dedupe(events []string) []string {
	seen := make(map[string]struct{}, len(events))
	out := make([]string, 0, len(events))
	for _, e := range events {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}
