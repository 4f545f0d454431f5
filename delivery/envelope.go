package delivery

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xraph/folio/field"
)

// Envelope is the JSON body posted to webhook receivers.
type Envelope struct {
	Event     string          `json:"event"`
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
	Metadata  Metadata        `json:"metadata"`
}

// Metadata identifies one delivery attempt.
type Metadata struct {
	WebhookID  string `json:"webhookId"`
	DeliveryID string `json:"deliveryId"`
}

// DeliveryID returns the identifier of attempt n of a delivery to
// webhookID, generated at now.
func DeliveryID(webhookID string, now time.Time, attempt int) string {
	return fmt.Sprintf("%s_%d_%d", webhookID, now.UnixMilli(), attempt)
}

// NewEnvelope builds the envelope for one attempt.
func NewEnvelope(event string, data json.RawMessage, webhookID, deliveryID string, now time.Time) Envelope {
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	return Envelope{
		Event:     event,
		Timestamp: field.FormatISO(now),
		Data:      data,
		Metadata: Metadata{
			WebhookID:  webhookID,
			DeliveryID: deliveryID,
		},
	}
}

// Marshal serializes the envelope. The returned bytes are what gets
// signed and sent.
func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}
