package delivery_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/xraph/folio/delivery"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/internal/entity"
	"github.com/xraph/folio/signature"
	"github.com/xraph/folio/store/memory"
	"github.com/xraph/folio/webhook"
)

func ctx() context.Context { return context.Background() }

func setupEngine(t *testing.T, handler http.Handler) (*memory.Store, *delivery.Engine, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := memory.New()
	cfg := delivery.EngineConfig{
		Concurrency:    2,
		PollInterval:   20 * time.Millisecond,
		BatchSize:      10,
		RequestTimeout: 5 * time.Second,
	}

	return store, delivery.NewEngine(store, cfg, nil), srv
}

func createTestData(t *testing.T, store *memory.Store, url string, maxRetries int) (*webhook.Webhook, *delivery.Task) {
	t.Helper()

	w := &webhook.Webhook{
		Entity:     entity.New(),
		ID:         id.NewWebhookID(),
		Name:       "test",
		URL:        url,
		Events:     []string{"entry.created"},
		Secret:     "whsec_test_secret_1234567890abcdef1234567890abcdef",
		IsActive:   true,
		MaxRetries: maxRetries,
		RetryDelay: 1,
	}
	if err := store.CreateWebhook(ctx(), w); err != nil {
		t.Fatal(err)
	}

	task := delivery.NewTask(w.ID, "entry.created", json.RawMessage(`{"hello":"world"}`), "", time.Now())
	if err := store.Enqueue(ctx(), task); err != nil {
		t.Fatal(err)
	}
	return w, task
}

// runUntilDone processes due tasks until the task leaves the pending state.
func runUntilDone(t *testing.T, store *memory.Store, engine *delivery.Engine, taskID id.ID) *delivery.Task {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := engine.ProcessDue(ctx()); err != nil {
			t.Fatal(err)
		}
		task, err := store.GetTask(ctx(), taskID)
		if err != nil {
			t.Fatal(err)
		}
		if task.State != delivery.StatePending {
			return task
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("task did not complete in time")
	return nil
}

func TestEngineDeliversAndSigns(t *testing.T) {
	var (
		gotBody    []byte
		gotHeaders http.Header
	)
	store, engine, srv := setupEngine(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotHeaders = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	wh, task := createTestData(t, store, srv.URL, 3)

	done := runUntilDone(t, store, engine, task.ID)
	if done.State != delivery.StateDelivered {
		t.Fatalf("expected delivered, got %s", done.State)
	}
	if done.CompletedAt == nil {
		t.Fatal("expected completion time")
	}

	if !signature.Verify(gotBody, wh.Secret, gotHeaders.Get(signature.Header)) {
		t.Fatal("signature does not match the body sent")
	}
	if gotHeaders.Get("Content-Type") != "application/json" {
		t.Fatalf("unexpected content type %q", gotHeaders.Get("Content-Type"))
	}
	if gotHeaders.Get(delivery.HeaderEvent) != "entry.created" {
		t.Fatalf("unexpected event header %q", gotHeaders.Get(delivery.HeaderEvent))
	}
	if gotHeaders.Get("User-Agent") != delivery.UserAgent {
		t.Fatalf("unexpected user agent %q", gotHeaders.Get("User-Agent"))
	}

	var env delivery.Envelope
	if err := json.Unmarshal(gotBody, &env); err != nil {
		t.Fatal(err)
	}
	if env.Event != "entry.created" || env.Metadata.WebhookID != wh.ID.String() {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if env.Metadata.DeliveryID != gotHeaders.Get(delivery.HeaderDeliveryID) {
		t.Fatal("delivery ID header and envelope disagree")
	}
	if string(env.Data) != `{"hello":"world"}` {
		t.Fatalf("unexpected data %s", env.Data)
	}

	got, _ := store.GetWebhook(ctx(), wh.ID)
	if got.Stats.TotalDeliveries != 1 || got.Stats.SuccessfulDeliveries != 1 {
		t.Fatalf("unexpected stats: %+v", got.Stats)
	}
	if len(got.DeliveryLogs) != 1 || got.DeliveryLogs[0].Status != webhook.StatusSuccess {
		t.Fatalf("unexpected logs: %+v", got.DeliveryLogs)
	}
	if got.DeliveryLogs[0].Payload != string(gotBody) {
		t.Fatal("logged payload differs from the body sent")
	}
}

func TestEngineRetriesThenFails(t *testing.T) {
	var calls atomic.Int32
	store, engine, srv := setupEngine(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	wh, task := createTestData(t, store, srv.URL, 3)

	done := runUntilDone(t, store, engine, task.ID)
	if done.State != delivery.StateFailed {
		t.Fatalf("expected failed, got %s", done.State)
	}
	if n := calls.Load(); n != 3 {
		t.Fatalf("expected 3 attempts, got %d", n)
	}
	if done.LastStatusCode != http.StatusInternalServerError {
		t.Fatalf("expected last status 500, got %d", done.LastStatusCode)
	}

	got, _ := store.GetWebhook(ctx(), wh.ID)
	want := []webhook.Status{webhook.StatusRetrying, webhook.StatusRetrying, webhook.StatusFailed}
	if len(got.DeliveryLogs) != len(want) {
		t.Fatalf("expected %d logs, got %d", len(want), len(got.DeliveryLogs))
	}
	for i, st := range want {
		l := got.DeliveryLogs[i]
		if l.Status != st || l.AttemptNumber != i+1 || l.StatusCode != 500 {
			t.Fatalf("log %d: unexpected %+v", i, l)
		}
		if l.ErrorMessage != "Internal Server Error" {
			t.Fatalf("log %d: unexpected error message %q", i, l.ErrorMessage)
		}
	}
	if got.Stats != (webhook.Stats{TotalDeliveries: 3, FailedDeliveries: 1}) {
		t.Fatalf("unexpected stats: %+v", got.Stats)
	}
	if got.LastDeliveryStatus != webhook.StatusFailed {
		t.Fatalf("unexpected last status %s", got.LastDeliveryStatus)
	}
}

func TestEngineRecoversAfterRetry(t *testing.T) {
	var calls atomic.Int32
	store, engine, srv := setupEngine(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	wh, task := createTestData(t, store, srv.URL, 3)

	done := runUntilDone(t, store, engine, task.ID)
	if done.State != delivery.StateDelivered {
		t.Fatalf("expected delivered, got %s", done.State)
	}

	got, _ := store.GetWebhook(ctx(), wh.ID)
	if got.Stats != (webhook.Stats{TotalDeliveries: 2, SuccessfulDeliveries: 1}) {
		t.Fatalf("unexpected stats: %+v", got.Stats)
	}
	if got.DeliveryLogs[1].AttemptNumber != 2 || got.DeliveryLogs[1].Status != webhook.StatusSuccess {
		t.Fatalf("unexpected second log: %+v", got.DeliveryLogs[1])
	}
}

func TestEngineClientErrorIsFinal(t *testing.T) {
	var calls atomic.Int32
	store, engine, srv := setupEngine(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	_, task := createTestData(t, store, srv.URL, 5)

	done := runUntilDone(t, store, engine, task.ID)
	if done.State != delivery.StateFailed {
		t.Fatalf("expected failed, got %s", done.State)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected a single attempt, got %d", n)
	}
}

func TestEngineAbandonsInactiveWebhook(t *testing.T) {
	var calls atomic.Int32
	store, engine, srv := setupEngine(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	wh, task := createTestData(t, store, srv.URL, 3)

	wh.IsActive = false
	if err := store.UpdateWebhook(ctx(), wh); err != nil {
		t.Fatal(err)
	}

	done := runUntilDone(t, store, engine, task.ID)
	if done.State != delivery.StateFailed || done.LastError != "webhook inactive" {
		t.Fatalf("unexpected task: %s %q", done.State, done.LastError)
	}
	if calls.Load() != 0 {
		t.Fatal("inactive webhook must not be called")
	}
}

func TestEngineAbandonsDeletedWebhook(t *testing.T) {
	store, engine, srv := setupEngine(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	wh, task := createTestData(t, store, srv.URL, 3)

	if err := store.DeleteWebhook(ctx(), wh.ID); err != nil {
		t.Fatal(err)
	}

	done := runUntilDone(t, store, engine, task.ID)
	if done.State != delivery.StateFailed {
		t.Fatalf("expected failed, got %s", done.State)
	}
}

func TestEngineStartStop(t *testing.T) {
	var calls atomic.Int32
	store, engine, srv := setupEngine(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	_, task := createTestData(t, store, srv.URL, 3)

	engine.Start(ctx())
	defer engine.Stop(ctx())

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		got, err := store.GetTask(ctx(), task.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.State == delivery.StateDelivered {
			if calls.Load() != 1 {
				t.Fatalf("expected one call, got %d", calls.Load())
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("poll loop did not deliver the task")
}
