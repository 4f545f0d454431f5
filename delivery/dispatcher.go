package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/folio/event"
	"github.com/xraph/folio/observability"
	"github.com/xraph/folio/webhook"
)

// DispatchStore is the interface the dispatcher needs to fan events out.
type DispatchStore interface {
	FindActiveForEvent(ctx context.Context, event, siteID string) ([]*webhook.Webhook, error)
	EnqueueBatch(ctx context.Context, ts []*Task) error
}

// Dispatcher turns published events into persisted delivery tasks. It
// never performs HTTP itself.
type Dispatcher struct {
	store   DispatchStore
	metrics *observability.Metrics
	tracer  *observability.Tracer
	logger  *slog.Logger
}

var _ event.Publisher = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher. metrics and tracer may be nil.
func NewDispatcher(store DispatchStore, metrics *observability.Metrics, tracer *observability.Tracer, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		store:   store,
		metrics: metrics,
		tracer:  tracer,
		logger:  logger,
	}
}

// TriggerEvent enqueues one pending task per active webhook subscribed to
// name. A non-empty siteID restricts the fan-out to that site's webhooks.
func (d *Dispatcher) TriggerEvent(ctx context.Context, name string, data any, siteID string) error {
	if !event.Valid(name) {
		return fmt.Errorf("folio: unknown event %q", name)
	}

	if d.tracer != nil {
		var span trace.Span
		ctx, span = d.tracer.StartTriggerSpan(ctx, name, siteID)
		defer span.End()
	}

	raw, err := marshalData(data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	hooks, err := d.store.FindActiveForEvent(ctx, name, siteID)
	if err != nil {
		return fmt.Errorf("find webhooks: %w", err)
	}
	if len(hooks) == 0 {
		d.logger.DebugContext(ctx, "no active webhooks for event", "event", name)
		return nil
	}

	now := time.Now()
	tasks := make([]*Task, 0, len(hooks))
	for _, w := range hooks {
		tasks = append(tasks, NewTask(w.ID, name, raw, siteID, now))
	}

	if err := d.store.EnqueueBatch(ctx, tasks); err != nil {
		return fmt.Errorf("enqueue deliveries: %w", err)
	}

	d.metrics.RecordTrigger(name, len(tasks))
	d.logger.DebugContext(ctx, "event triggered", "event", name, "webhooks", len(tasks))
	return nil
}

// Publish implements event.Publisher. Failures are logged and never reach
// the mutation that raised the event.
func (d *Dispatcher) Publish(ctx context.Context, name string, data any, siteID string) {
	ctx = context.WithoutCancel(ctx)
	if err := d.TriggerEvent(ctx, name, data, siteID); err != nil {
		d.logger.ErrorContext(ctx, "trigger event failed", "event", name, "error", err)
	}
}

func marshalData(data any) (json.RawMessage, error) {
	if raw, ok := data.(json.RawMessage); ok {
		return raw, nil
	}
	return json.Marshal(data)
}
