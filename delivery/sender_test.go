package delivery_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/xraph/folio/delivery"
	"github.com/xraph/folio/signature"
)

func newRequest(url string) delivery.Request {
	return delivery.Request{
		URL:        url,
		Secret:     "whsec_test_secret",
		Event:      "entry.published",
		DeliveryID: "wh_1_1700000000000_1",
		Body:       []byte(`{"event":"entry.published"}`),
	}
}

func TestSenderSuccess(t *testing.T) {
	var (
		gotBody []byte
		gotHdr  http.Header
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotHdr = r.Header.Clone()
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	req := newRequest(srv.URL)
	res := delivery.NewSender(5*time.Second).Send(context.Background(), req)

	if !res.Success() || res.StatusCode != http.StatusAccepted {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.Error != "" {
		t.Fatalf("unexpected error %q", res.Error)
	}
	if res.Response != "ok" {
		t.Fatalf("unexpected response %q", res.Response)
	}
	if string(gotBody) != string(req.Body) {
		t.Fatalf("body altered in transit: %s", gotBody)
	}

	headers := map[string]string{
		"Content-Type":            "application/json",
		"User-Agent":              delivery.UserAgent,
		delivery.HeaderEvent:      "entry.published",
		delivery.HeaderDeliveryID: req.DeliveryID,
		signature.Header:          signature.Sign(req.Body, req.Secret),
	}
	for k, want := range headers {
		if got := gotHdr.Get(k); got != want {
			t.Fatalf("header %s = %q, want %q", k, got, want)
		}
	}
}

func TestSenderNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	res := delivery.NewSender(5*time.Second).Send(context.Background(), newRequest(srv.URL))
	if res.Success() {
		t.Fatal("503 must not succeed")
	}
	if res.StatusCode != http.StatusServiceUnavailable || res.Error != "Service Unavailable" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestSenderTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	defer close(release)

	res := delivery.NewSender(50*time.Millisecond).Send(context.Background(), newRequest(srv.URL))
	if res.StatusCode != 0 {
		t.Fatalf("expected no status on timeout, got %d", res.StatusCode)
	}
	if res.Error == "" {
		t.Fatal("expected a timeout error")
	}
}

func TestSenderConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	res := delivery.NewSender(time.Second).Send(context.Background(), newRequest(url))
	if res.StatusCode != 0 || res.Error == "" {
		t.Fatalf("expected connection error, got %+v", res)
	}
}

func TestSenderInvalidURL(t *testing.T) {
	res := delivery.NewSender(time.Second).Send(context.Background(), newRequest("://bad"))
	if !strings.HasPrefix(res.Error, "create request") {
		t.Fatalf("unexpected error %q", res.Error)
	}
}
