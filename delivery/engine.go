package delivery

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/folio/id"
	"github.com/xraph/folio/observability"
	"github.com/xraph/folio/webhook"
)

// EngineStore is the interface the engine needs for delivery operations.
type EngineStore interface {
	Dequeue(ctx context.Context, limit int) ([]*Task, error)
	UpdateTask(ctx context.Context, t *Task) error
	GetWebhook(ctx context.Context, whID id.ID) (*webhook.Webhook, error)
	RecordDelivery(ctx context.Context, whID id.ID, log webhook.DeliveryLog, delta webhook.StatsDelta) error
}

// EngineConfig holds engine configuration.
type EngineConfig struct {
	Concurrency    int
	PollInterval   time.Duration
	BatchSize      int
	RequestTimeout time.Duration
	Metrics        *observability.Metrics
	Tracer         *observability.Tracer
}

// Engine is the delivery worker pool that dequeues and processes tasks.
type Engine struct {
	store   EngineStore
	sender  *Sender
	retrier *Retrier
	config  EngineConfig
	logger  *slog.Logger
	now     func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewEngine creates a delivery engine.
func NewEngine(store EngineStore, cfg EngineConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = cfg.Concurrency
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	return &Engine{
		store:   store,
		sender:  NewSender(cfg.RequestTimeout),
		retrier: NewRetrier(),
		config:  cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// Start begins the delivery workers and poll loop.
func (e *Engine) Start(ctx context.Context) {
	ctx, e.cancel = context.WithCancel(ctx)

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.pollLoop(ctx)
	}()
}

// Stop cancels the poll loop and waits for in-flight deliveries to complete.
func (e *Engine) Stop(_ context.Context) {
	if e.cancel != nil {
		e.cancel()
	}
	e.wg.Wait()
}

// ProcessDue claims one batch of due tasks and processes it before
// returning. It reports how many tasks were attempted.
func (e *Engine) ProcessDue(ctx context.Context) (int, error) {
	batch, err := e.store.Dequeue(ctx, e.config.BatchSize)
	if err != nil {
		return 0, err
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, e.config.Concurrency)
	for _, t := range batch {
		sem <- struct{}{}
		wg.Add(1)
		go func(task *Task) {
			defer wg.Done()
			defer func() { <-sem }()
			e.process(ctx, task)
		}(t)
	}
	wg.Wait()
	return len(batch), nil
}

// pollLoop periodically dequeues due tasks and dispatches them to workers.
func (e *Engine) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(e.config.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, e.config.Concurrency)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			batch, err := e.store.Dequeue(ctx, e.config.BatchSize)
			if err != nil {
				e.logger.ErrorContext(ctx, "dequeue failed", "error", err)
				continue
			}

			for _, t := range batch {
				select {
				case <-ctx.Done():
					e.release(t)
					continue
				case sem <- struct{}{}:
				}

				e.wg.Add(1)
				go func(task *Task) {
					defer e.wg.Done()
					defer func() { <-sem }()
					e.process(ctx, task)
				}(t)
			}
		}
	}
}

// release returns a claimed but unattempted task to the queue.
func (e *Engine) release(t *Task) {
	ctx := context.Background()
	if err := e.store.UpdateTask(ctx, t); err != nil {
		e.logger.ErrorContext(ctx, "release task failed", "task_id", t.ID, "error", err)
	}
}

// process performs one attempt of a task: load the webhook, build and
// sign the envelope, send, record, then reschedule or complete.
func (e *Engine) process(ctx context.Context, t *Task) {
	// Bookkeeping outlives a shutdown that interrupts the HTTP call.
	persistCtx := context.WithoutCancel(ctx)

	var span trace.Span
	if e.config.Tracer != nil {
		ctx, span = e.config.Tracer.StartDeliverySpan(ctx, t.ID.String(), t.Event, t.WebhookID.String(), t.Attempt)
	}

	w, err := e.store.GetWebhook(ctx, t.WebhookID)
	switch {
	case errors.Is(err, webhook.ErrNotFound):
		e.abandon(persistCtx, t, span, "webhook not found")
		return
	case err != nil:
		e.logger.ErrorContext(ctx, "get webhook failed",
			"task_id", t.ID, "webhook_id", t.WebhookID, "error", err)
		if span != nil {
			e.config.Tracer.EndDeliverySpan(span, 0, 0, err.Error())
		}
		e.release(t)
		return
	case !w.IsActive:
		e.abandon(persistCtx, t, span, "webhook inactive")
		return
	}

	now := e.now()
	deliveryID := DeliveryID(w.ID.String(), now, t.Attempt)
	body, err := NewEnvelope(t.Event, t.Data, w.ID.String(), deliveryID, now).Marshal()
	if err != nil {
		e.abandon(persistCtx, t, span, "marshal envelope: "+err.Error())
		return
	}

	result := e.sender.Send(ctx, Request{
		URL:        w.URL,
		Secret:     w.Secret,
		Event:      t.Event,
		DeliveryID: deliveryID,
		Body:       body,
	})

	attempt := t.Attempt
	decision := e.retrier.Decide(result, attempt, w.MaxRetries)
	status := logStatus(decision)

	entry := webhook.DeliveryLog{
		Timestamp:     e.now().UTC(),
		Event:         t.Event,
		Status:        status,
		StatusCode:    result.StatusCode,
		ResponseTime:  result.LatencyMs,
		AttemptNumber: attempt,
		ErrorMessage:  result.Error,
		Payload:       webhook.LogPayload(body),
	}
	if recErr := e.store.RecordDelivery(persistCtx, w.ID, entry, webhook.DeltaFor(status)); recErr != nil {
		e.logger.ErrorContext(ctx, "record delivery failed",
			"task_id", t.ID, "webhook_id", w.ID, "error", recErr)
	}

	t.LastStatusCode = result.StatusCode
	t.LastError = result.Error

	switch decision {
	case Delivered:
		t.complete(StateDelivered, e.now())
		e.config.Metrics.TaskCompleted()
		e.logger.DebugContext(ctx, "delivered",
			"task_id", t.ID, "webhook_id", w.ID, "status", result.StatusCode, "latency_ms", result.LatencyMs)

	case Retry:
		t.NextAttemptAt = e.retrier.ComputeNextAttempt(e.now(), w.RetryDelay, attempt)
		t.Attempt++
		t.UpdatedAt = e.now().UTC()
		e.logger.DebugContext(ctx, "retry scheduled",
			"task_id", t.ID, "webhook_id", w.ID, "attempt", t.Attempt, "max_retries", w.MaxRetries, "next_at", t.NextAttemptAt)

	case Failed:
		t.complete(StateFailed, e.now())
		e.config.Metrics.TaskCompleted()
		e.logger.WarnContext(ctx, "delivery failed permanently",
			"task_id", t.ID, "webhook_id", w.ID, "attempts", attempt, "status", result.StatusCode, "error", result.Error)
	}

	e.config.Metrics.RecordDelivery(decision.String(), float64(result.LatencyMs)/1000.0)

	if span != nil {
		e.config.Tracer.EndDeliverySpan(span, result.StatusCode, result.LatencyMs, result.Error)
	}

	if updateErr := e.store.UpdateTask(persistCtx, t); updateErr != nil {
		e.logger.ErrorContext(ctx, "update task failed",
			"task_id", t.ID, "error", updateErr)
	}
}

// abandon fails a task without an HTTP call.
func (e *Engine) abandon(ctx context.Context, t *Task, span trace.Span, reason string) {
	e.logger.WarnContext(ctx, "delivery task abandoned",
		"task_id", t.ID, "webhook_id", t.WebhookID, "reason", reason)

	t.LastError = reason
	t.complete(StateFailed, e.now())
	e.config.Metrics.TaskCompleted()

	if span != nil {
		e.config.Tracer.EndDeliverySpan(span, 0, 0, reason)
	}
	if err := e.store.UpdateTask(ctx, t); err != nil {
		e.logger.ErrorContext(ctx, "update task failed", "task_id", t.ID, "error", err)
	}
}

func logStatus(d Decision) webhook.Status {
	switch d {
	case Delivered:
		return webhook.StatusSuccess
	case Retry:
		return webhook.StatusRetrying
	default:
		return webhook.StatusFailed
	}
}
