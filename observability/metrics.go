package observability

import (
	gu "github.com/xraph/go-utils/metrics"
)

// Metrics holds metric instruments for Folio, backed by any go-utils MetricFactory
// (e.g. the forge-managed metrics system via fapp.Metrics()).
type Metrics struct {
	EventsTriggeredTotal gu.Counter
	DeliveriesTotal      gu.Counter
	DeliveryLatency      gu.Histogram
	PendingDeliveries    gu.Gauge
	EntriesPublished     gu.Counter
}

// NewMetrics creates Folio metric instruments using the supplied factory.
// Pass fapp.Metrics() from a forge extension, or metrics.NewMetricsCollector()
// for standalone usage.
func NewMetrics(factory gu.MetricFactory) *Metrics {
	return &Metrics{
		EventsTriggeredTotal: factory.Counter("folio_events_triggered_total"),
		DeliveriesTotal:      factory.Counter("folio_webhook_deliveries_total"),
		DeliveryLatency:      factory.Histogram("folio_webhook_delivery_latency_seconds"),
		PendingDeliveries:    factory.Gauge("folio_webhook_pending_deliveries"),
		EntriesPublished:     factory.Counter("folio_entries_published_total"),
	}
}

// RecordDelivery records a delivery attempt with the given outcome and
// latency. A nil receiver is a no-op.
func (m *Metrics) RecordDelivery(status string, latencySeconds float64) {
	if m == nil {
		return
	}
	m.DeliveriesTotal.WithLabels(map[string]string{"status": status}).Inc()
	m.DeliveryLatency.Observe(latencySeconds)
}

// RecordTrigger records an event fanned out to n webhooks.
func (m *Metrics) RecordTrigger(event string, n int) {
	if m == nil {
		return
	}
	m.EventsTriggeredTotal.WithLabels(map[string]string{"event": event}).Inc()
	m.PendingDeliveries.Add(float64(n))
}

// TaskCompleted marks one pending delivery chain as finished.
func (m *Metrics) TaskCompleted() {
	if m == nil {
		return
	}
	m.PendingDeliveries.Dec()
}

// RecordPublish counts an entry reaching PUBLISHED.
func (m *Metrics) RecordPublish() {
	if m == nil {
		return
	}
	m.EntriesPublished.Inc()
}
