package folio

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/folio/contenttype"
	"github.com/xraph/folio/delivery"
	"github.com/xraph/folio/entry"
	"github.com/xraph/folio/event"
	"github.com/xraph/folio/form"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/media"
	"github.com/xraph/folio/observability"
	"github.com/xraph/folio/site"
	"github.com/xraph/folio/store"
	"github.com/xraph/folio/webhook"
)

// wireServices initializes the internal services after options have been applied.
func (f *Folio) wireServices() {
	f.dispatcher = delivery.NewDispatcher(f.store, f.metrics, f.tracer, f.logger)
	pub := event.PublisherFunc(f.publish)

	if f.storage == nil {
		f.storage = media.NewDiskStorage(f.config.MediaDir, f.config.MediaBaseURL)
	}
	var mediaOpts []media.Option
	if f.config.MaxUploadSize > 0 {
		mediaOpts = append(mediaOpts, media.WithMaxUploadSize(f.config.MaxUploadSize))
	}
	if len(f.config.AllowedMediaTypes) > 0 {
		mediaOpts = append(mediaOpts, media.WithAllowedTypes(f.config.AllowedMediaTypes...))
	}
	f.media = media.NewService(f.store, f.storage, pub, f.logger, mediaOpts...)

	f.entries = entry.NewService(f.store, f.store, pub, f.logger,
		entry.WithMediaLookup(f.media),
		entry.WithReferenceChecks(f.config.CheckReferences),
	)

	f.contentTypes = contenttype.NewService(f.store, f.entries, pub, f.logger)

	f.webhooks = webhook.NewService(f.store, f.logger)

	f.sites = site.NewService(f.store, f.logger)

	var formOpts []form.Option
	if f.notifier != nil {
		formOpts = append(formOpts, form.WithNotifier(f.notifier))
	}
	f.forms = form.NewService(f.store, f.logger, formOpts...)

	f.engine = delivery.NewEngine(f.store, delivery.EngineConfig{
		Concurrency:    f.config.Concurrency,
		PollInterval:   f.config.PollInterval,
		BatchSize:      f.config.BatchSize,
		RequestTimeout: f.config.RequestTimeout,
		Metrics:        f.metrics,
		Tracer:         f.tracer,
	}, f.logger)

	f.tester = delivery.NewTester(f.config.RequestTimeout)
}

// publish fans an event out to the webhook dispatcher and any extra
// publishers. Nothing here reports back to the mutation that raised it.
func (f *Folio) publish(ctx context.Context, name string, data any, siteID string) {
	if name == event.EntryPublished {
		f.metrics.RecordPublish()
	}
	f.dispatcher.Publish(ctx, name, data, siteID)
	for _, p := range f.extra {
		p.Publish(ctx, name, data, siteID)
	}
}

// Start begins the delivery engine.
func (f *Folio) Start(ctx context.Context) {
	f.engine.Start(ctx)
}

// Stop gracefully shuts down the delivery engine, waiting at most
// Config.ShutdownTimeout for in-flight deliveries. Tasks cut off by the
// timeout stay claimed until their lease expires and are then retried.
func (f *Folio) Stop(ctx context.Context) error {
	if f.config.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.config.ShutdownTimeout)
		defer cancel()
	}

	done := make(chan struct{})
	go func() {
		f.engine.Stop(ctx)
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		f.logger.WarnContext(ctx, "delivery engine did not stop in time")
		return fmt.Errorf("folio: stop: %w", ctx.Err())
	}
}

// TriggerEvent enqueues one delivery task per active webhook subscribed to
// name. Unlike the publishers used by the services it reports failures.
func (f *Folio) TriggerEvent(ctx context.Context, name string, data any, siteID string) error {
	return f.dispatcher.TriggerEvent(ctx, name, data, siteID)
}

// DeliverDue runs one delivery cycle in the caller's goroutine and returns
// the number of tasks attempted. It is useful when the engine is not
// started, such as in tests or cron-driven deployments.
func (f *Folio) DeliverDue(ctx context.Context) (int, error) {
	return f.engine.ProcessDue(ctx)
}

// TestWebhook sends a single test delivery to a webhook.
func (f *Folio) TestWebhook(ctx context.Context, whID id.ID) (delivery.TestResult, error) {
	w, err := f.webhooks.Get(ctx, whID)
	if err != nil {
		return delivery.TestResult{}, err
	}
	res := f.tester.Test(ctx, w)
	f.logger.DebugContext(ctx, "webhook test sent",
		"webhook_id", w.ID.String(),
		"success", res.Success,
		"status_code", res.StatusCode,
	)
	return res, nil
}

// PendingDeliveries returns the number of delivery tasks not yet finished.
func (f *Folio) PendingDeliveries(ctx context.Context) (int64, error) {
	return f.store.CountPending(ctx)
}

// Ping checks store connectivity.
func (f *Folio) Ping(ctx context.Context) error {
	return f.store.Ping(ctx)
}

// ContentTypes returns the content type service.
func (f *Folio) ContentTypes() *contenttype.Service {
	return f.contentTypes
}

// Entries returns the entry service.
func (f *Folio) Entries() *entry.Service {
	return f.entries
}

// Webhooks returns the webhook management service.
func (f *Folio) Webhooks() *webhook.Service {
	return f.webhooks
}

// Sites returns the site and API key service.
func (f *Folio) Sites() *site.Service {
	return f.sites
}

// Forms returns the contact form service.
func (f *Folio) Forms() *form.Service {
	return f.forms
}

// Media returns the media service.
func (f *Folio) Media() *media.Service {
	return f.media
}

// Store returns the underlying store.
func (f *Folio) Store() store.Store {
	return f.store
}

// Config returns the effective configuration.
func (f *Folio) Config() Config {
	return f.config
}

// Logger returns the logger shared by all services.
func (f *Folio) Logger() *slog.Logger {
	return f.logger
}

// Metrics returns the metric instruments, or nil when metrics are off.
func (f *Folio) Metrics() *observability.Metrics {
	return f.metrics
}
