package observability

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/trace/noop"
)

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics

	m.RecordDelivery("delivered", 0.5)
	m.RecordTrigger("entry.created", 3)
	m.TaskCompleted()
	m.RecordPublish()
}

func TestTracerSpans(t *testing.T) {
	tr := NewTracerFrom(noop.NewTracerProvider())

	ctx, span := tr.StartDeliverySpan(context.Background(), "whdel_1", "entry.created", "wh_1", 1)
	if ctx == nil || span == nil {
		t.Fatal("expected span and context")
	}
	tr.EndDeliverySpan(span, 500, 12, "Internal Server Error")

	_, span = tr.StartTriggerSpan(context.Background(), "entry.created", "")
	span.End()
}
