package delivery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/xraph/folio/signature"
)

// UserAgent identifies Folio on outgoing webhook requests.
const UserAgent = "Folio-Webhooks/1.0"

// Header names set on every delivery.
const (
	HeaderEvent      = "X-Webhook-Event"
	HeaderDeliveryID = "X-Webhook-Delivery-Id"
)

const maxResponseBody = 1024 // 1KB cap on response body storage

// Request is one signed POST to a webhook receiver.
type Request struct {
	URL        string
	Secret     string
	Event      string // value of X-Webhook-Event
	DeliveryID string
	Body       []byte
}

// Sender performs HTTP webhook delivery.
type Sender struct {
	client *http.Client
}

// NewSender creates a sender with the given HTTP timeout.
func NewSender(timeout time.Duration) *Sender {
	return &Sender{
		client: &http.Client{Timeout: timeout},
	}
}

// Send posts req.Body and returns the result. Body is signed exactly as
// sent. Only 2xx responses succeed.
func (s *Sender) Send(ctx context.Context, req Request) Result {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return Result{Error: fmt.Sprintf("create request: %v", err)}
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", UserAgent)
	httpReq.Header.Set(signature.Header, signature.Sign(req.Body, req.Secret))
	httpReq.Header.Set(HeaderEvent, req.Event)
	httpReq.Header.Set(HeaderDeliveryID, req.DeliveryID)

	start := time.Now()
	resp, err := s.client.Do(httpReq) //nolint:gosec // G704: URL is a user-configured webhook destination; SSRF is by design.
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return Result{
			Error:     err.Error(),
			LatencyMs: latency,
		}
	}
	defer resp.Body.Close()

	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))

	res := Result{
		StatusCode: resp.StatusCode,
		Response:   string(respBody),
		LatencyMs:  latency,
	}
	if !res.Success() {
		res.Error = statusText(resp.StatusCode)
	} else if readErr != nil {
		res.Response = ""
	}
	return res
}

func statusText(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", code)
}
