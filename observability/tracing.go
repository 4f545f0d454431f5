package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/xraph/folio"

// Tracer provides OpenTelemetry tracing for Folio.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a new Folio tracer using the global provider.
func NewTracer() *Tracer {
	return NewTracerFrom(otel.GetTracerProvider())
}

// NewTracerFrom creates a tracer from an explicit provider.
func NewTracerFrom(tp trace.TracerProvider) *Tracer {
	return &Tracer{
		tracer: tp.Tracer(tracerName),
	}
}

// StartDeliverySpan starts a new span for a webhook delivery attempt.
func (t *Tracer) StartDeliverySpan(ctx context.Context, taskID, event, webhookID string, attempt int) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "folio.webhook.delivery",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("folio.task_id", taskID),
			attribute.String("folio.event", event),
			attribute.String("folio.webhook_id", webhookID),
			attribute.Int("folio.attempt", attempt),
		),
	)
}

// EndDeliverySpan ends a delivery span with result attributes.
func (t *Tracer) EndDeliverySpan(span trace.Span, statusCode int, latencyMs int64, err string) {
	span.SetAttributes(
		attribute.Int("http.status_code", statusCode),
		attribute.Int64("folio.latency_ms", latencyMs),
	)
	if err != "" {
		span.SetAttributes(attribute.String("folio.error", err))
		span.SetStatus(codes.Error, err)
	}
	span.End()
}

// StartTriggerSpan starts a span covering the fan-out of one event.
func (t *Tracer) StartTriggerSpan(ctx context.Context, event, siteID string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "folio.event.trigger",
		trace.WithAttributes(
			attribute.String("folio.event", event),
			attribute.String("folio.site_id", siteID),
		),
	)
}
