package delivery_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/xraph/folio/delivery"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/signature"
	"github.com/xraph/folio/webhook"
)

func TestTesterSingleAttempt(t *testing.T) {
	var (
		calls   atomic.Int32
		gotBody []byte
		gotHdr  http.Header
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		gotBody, _ = io.ReadAll(r.Body)
		gotHdr = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	w := &webhook.Webhook{ID: id.NewWebhookID(), URL: srv.URL, Secret: "whsec_x", IsActive: true}
	res := delivery.NewTester(5 * time.Second).Test(ctx(), w)

	if !res.Success || res.StatusCode != http.StatusOK {
		t.Fatalf("unexpected result %+v", res)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one call, got %d", calls.Load())
	}
	if gotHdr.Get(delivery.HeaderEvent) != "test" {
		t.Fatalf("expected test event header, got %q", gotHdr.Get(delivery.HeaderEvent))
	}
	if !strings.HasPrefix(gotHdr.Get(delivery.HeaderDeliveryID), "test_") {
		t.Fatalf("unexpected delivery ID %q", gotHdr.Get(delivery.HeaderDeliveryID))
	}
	if !signature.Verify(gotBody, w.Secret, gotHdr.Get(signature.Header)) {
		t.Fatal("test delivery not signed")
	}

	var env struct {
		Event string `json:"event"`
		Data  struct {
			Test    bool   `json:"test"`
			Message string `json:"message"`
		} `json:"data"`
	}
	if err := json.Unmarshal(gotBody, &env); err != nil {
		t.Fatal(err)
	}
	if env.Event != "entry.created" || !env.Data.Test || env.Data.Message != delivery.TestMessage {
		t.Fatalf("unexpected test envelope %s", gotBody)
	}
}

func TestTesterDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	w := &webhook.Webhook{ID: id.NewWebhookID(), URL: srv.URL, Secret: "s", MaxRetries: 5}
	res := delivery.NewTester(time.Second).Test(ctx(), w)

	if res.Success || res.StatusCode != http.StatusBadGateway || res.Error == "" {
		t.Fatalf("unexpected result %+v", res)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one call, got %d", calls.Load())
	}
}
