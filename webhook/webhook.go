// Package webhook manages webhook subscriptions, their delivery log and
// delivery counters.
package webhook

import (
	"time"

	"github.com/xraph/folio/event"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/internal/entity"
)

// MaxDeliveryLogs is the capacity of a webhook's delivery log ring.
const MaxDeliveryLogs = 50

// MaxLoggedPayload is the longest serialized envelope kept in a log entry.
const MaxLoggedPayload = 1000

// PayloadTooLarge replaces envelopes longer than MaxLoggedPayload.
const PayloadTooLarge = "[Payload too large]"

// Default retry settings.
const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = 5000
)

// Status is the outcome recorded for one delivery attempt.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusSuccess  Status = "SUCCESS"
	StatusFailed   Status = "FAILED"
	StatusRetrying Status = "RETRYING"
)

// Webhook is a subscription delivering events to an external URL.
type Webhook struct {
	entity.Entity

	// ID is the unique TypeID for this webhook.
	ID id.ID `json:"id"`

	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`

	// Events lists the subscribed event names.
	Events []string `json:"events"`

	// Secret is the HMAC signing secret. Never serialized.
	Secret string `json:"-"`

	// IsActive gates all deliveries.
	IsActive bool `json:"isActive"`

	// SiteID scopes the webhook to events raised for one site.
	SiteID string `json:"siteId,omitempty"`

	// MaxRetries bounds the number of attempts per delivery chain.
	MaxRetries int `json:"maxRetries"`

	// RetryDelay is the base backoff in milliseconds. The n-th retry waits
	// RetryDelay·2^(n-1).
	RetryDelay int `json:"retryDelay"`

	Stats Stats `json:"stats"`

	LastDeliveryAt     *time.Time `json:"lastDeliveryAt,omitempty"`
	LastDeliveryStatus Status     `json:"lastDeliveryStatus,omitempty"`

	// DeliveryLogs holds the most recent attempts, oldest first.
	DeliveryLogs []DeliveryLog `json:"deliveryLogs,omitempty"`

	CreatedBy string `json:"createdBy,omitempty"`
}

// Stats are the delivery counters of a webhook.
type Stats struct {
	TotalDeliveries      int64 `json:"totalDeliveries"`
	SuccessfulDeliveries int64 `json:"successfulDeliveries"`
	FailedDeliveries     int64 `json:"failedDeliveries"`
}

// StatsDelta is the counter increment applied with one log entry.
type StatsDelta struct {
	Total      int64
	Successful int64
	Failed     int64
}

// Apply adds d to s.
func (s *Stats) Apply(d StatsDelta) {
	s.TotalDeliveries += d.Total
	s.SuccessfulDeliveries += d.Successful
	s.FailedDeliveries += d.Failed
}

// DeltaFor returns the counter increment for an attempt with status st.
func DeltaFor(st Status) StatsDelta {
	switch st {
	case StatusSuccess:
		return StatsDelta{Total: 1, Successful: 1}
	case StatusFailed:
		return StatsDelta{Total: 1, Failed: 1}
	case StatusRetrying:
		return StatsDelta{Total: 1}
	}
	return StatsDelta{}
}

// DeliveryLog records one delivery attempt.
type DeliveryLog struct {
	Timestamp     time.Time `json:"timestamp"`
	Event         string    `json:"event"`
	Status        Status    `json:"status"`
	StatusCode    int       `json:"statusCode,omitempty"`
	ResponseTime  int64     `json:"responseTime"`
	AttemptNumber int       `json:"attemptNumber"`
	ErrorMessage  string    `json:"errorMessage,omitempty"`
	Payload       string    `json:"payload,omitempty"`
}

// LogPayload returns the payload text stored in a delivery log.
func LogPayload(body []byte) string {
	if len(body) > MaxLoggedPayload {
		return PayloadTooLarge
	}
	return string(body)
}

// AppendLog appends l to logs and drops the oldest entries beyond
// MaxDeliveryLogs.
func AppendLog(logs []DeliveryLog, l DeliveryLog) []DeliveryLog {
	logs = append(logs, l)
	if n := len(logs); n > MaxDeliveryLogs {
		logs = append([]DeliveryLog(nil), logs[n-MaxDeliveryLogs:]...)
	}
	return logs
}

// Subscribed reports whether w receives the named event.
func (w *Webhook) Subscribed(name string) bool {
	for _, e := range w.Events {
		if e == name {
			return true
		}
	}
	return false
}

// Matches reports whether an event raised for siteID reaches w.
func (w *Webhook) Matches(name, siteID string) bool {
	if !w.IsActive || !w.Subscribed(name) {
		return false
	}
	return siteID == "" || w.SiteID == siteID
}

// Clone returns a copy of w that shares no slices with it.
func (w *Webhook) Clone() *Webhook {
	cp := *w
	cp.Events = append([]string(nil), w.Events...)
	cp.DeliveryLogs = append([]DeliveryLog(nil), w.DeliveryLogs...)
	if w.LastDeliveryAt != nil {
		t := *w.LastDeliveryAt
		cp.LastDeliveryAt = &t
	}
	return &cp
}

// ValidEvent reports whether name is a deliverable event.
func ValidEvent(name string) bool {
	return event.Valid(name)
}

// View is the admin representation of a webhook. The secret is masked.
type View struct {
	*Webhook
	SecretPreview string `json:"secretPreview"`
}

// NewView masks w's secret for display.
func NewView(w *Webhook) View {
	return View{Webhook: w, SecretPreview: SecretPreview(w.Secret)}
}

// SecretPreview returns the first eight characters of secret followed by
// an ellipsis.
func SecretPreview(secret string) string {
	if len(secret) > 8 {
		secret = secret[:8]
	}
	return secret + "..."
}
