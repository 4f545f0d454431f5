package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xraph/folio/event"
	"github.com/xraph/folio/webhook"
)

// TestMessage is the message carried by test deliveries.
const TestMessage = "This is a test webhook delivery"

// TestResult is the outcome of a test delivery.
type TestResult struct {
	Success      bool   `json:"success"`
	StatusCode   int    `json:"statusCode,omitempty"`
	ResponseTime int64  `json:"responseTime"`
	Error        string `json:"error,omitempty"`
}

// Tester sends one-off test deliveries. Nothing it does is retried or
// recorded.
type Tester struct {
	sender *Sender
	now    func() time.Time
}

// NewTester creates a tester with the given HTTP timeout.
func NewTester(timeout time.Duration) *Tester {
	return &Tester{sender: NewSender(timeout), now: time.Now}
}

// Test makes exactly one attempt to deliver a sample entry.created event
// to w, with X-Webhook-Event set to "test".
func (tr *Tester) Test(ctx context.Context, w *webhook.Webhook) TestResult {
	now := tr.now()
	data, _ := json.Marshal(map[string]any{ //nolint:errchkjson // static map
		"test":    true,
		"message": TestMessage,
	})

	deliveryID := fmt.Sprintf("test_%d", now.UnixMilli())
	body, err := NewEnvelope(event.EntryCreated, data, w.ID.String(), deliveryID, now).Marshal()
	if err != nil {
		return TestResult{Error: err.Error()}
	}

	res := tr.sender.Send(ctx, Request{
		URL:        w.URL,
		Secret:     w.Secret,
		Event:      "test",
		DeliveryID: deliveryID,
		Body:       body,
	})

	return TestResult{
		Success:      res.Success(),
		StatusCode:   res.StatusCode,
		ResponseTime: res.LatencyMs,
		Error:        res.Error,
	}
}
