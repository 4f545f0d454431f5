package folio_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/xraph/folio"
	"github.com/xraph/folio/contenttype"
	"github.com/xraph/folio/delivery"
	"github.com/xraph/folio/entry"
	"github.com/xraph/folio/event"
	"github.com/xraph/folio/field"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/signature"
	"github.com/xraph/folio/store/memory"
	"github.com/xraph/folio/webhook"
)

func ctx() context.Context { return context.Background() }

type receiver struct {
	mu      sync.Mutex
	bodies  [][]byte
	headers []http.Header
	status  int
}

func (r *receiver) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	body, _ := io.ReadAll(req.Body)
	r.mu.Lock()
	r.bodies = append(r.bodies, body)
	r.headers = append(r.headers, req.Header.Clone())
	status := r.status
	r.mu.Unlock()
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
}

func (r *receiver) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bodies)
}

func newFolio(t *testing.T, opts ...folio.Option) *folio.Folio {
	t.Helper()
	opts = append([]folio.Option{
		folio.WithStore(memory.New()),
		folio.WithMediaDir(t.TempDir(), "/uploads"),
		folio.WithPollInterval(10 * time.Millisecond),
	}, opts...)
	f, err := folio.New(opts...)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func createPost(t *testing.T, f *folio.Folio) *entry.Entry {
	t.Helper()
	ct, err := f.ContentTypes().Create(ctx(), contenttype.Input{
		Name: "Blog Post",
		Slug: "blog-post",
		Fields: []field.Definition{
			{Name: "title", Label: "Title", Required: true, Rules: field.TextRules{}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	e, err := f.Entries().Create(ctx(), entry.CreateInput{
		ContentTypeID: ct.ID,
		Data:          field.MustParseData(`{"title":"Hello"}`),
	})
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestNewRequiresStore(t *testing.T) {
	_, err := folio.New()
	if !errors.Is(err, folio.ErrNoStore) {
		t.Fatalf("expected ErrNoStore, got %v", err)
	}
}

func TestNewOptionError(t *testing.T) {
	boom := errors.New("boom")
	_, err := folio.New(
		folio.WithStore(memory.New()),
		func(*folio.Folio) error { return boom },
	)
	if !errors.Is(err, boom) {
		t.Fatalf("expected option error, got %v", err)
	}
}

func TestConfigOptionsApply(t *testing.T) {
	f := newFolio(t,
		folio.WithConcurrency(3),
		folio.WithBatchSize(7),
		folio.WithRequestTimeout(2*time.Second),
		folio.WithReferenceChecks(false),
	)
	cfg := f.Config()
	if cfg.Concurrency != 3 || cfg.BatchSize != 7 || cfg.RequestTimeout != 2*time.Second {
		t.Fatalf("options not applied: %+v", cfg)
	}
	if cfg.CheckReferences {
		t.Fatal("reference checks should be disabled")
	}
	if cfg.ShutdownTimeout != folio.DefaultConfig().ShutdownTimeout {
		t.Fatal("unset options should keep defaults")
	}
}

func TestPublishDeliversSignedWebhook(t *testing.T) {
	rcv := &receiver{}
	srv := httptest.NewServer(rcv)
	t.Cleanup(srv.Close)

	f := newFolio(t)
	wh, err := f.Webhooks().Create(ctx(), webhook.Input{
		Name:   "Rebuild",
		URL:    srv.URL,
		Events: []string{event.EntryPublished},
	})
	if err != nil {
		t.Fatal(err)
	}

	e := createPost(t, f)
	if n, _ := f.PendingDeliveries(ctx()); n != 0 {
		t.Fatalf("entry.created has no subscriber, got %d pending", n)
	}

	if _, err := f.Entries().Publish(ctx(), e.ID, "editor"); err != nil {
		t.Fatal(err)
	}
	if n, _ := f.PendingDeliveries(ctx()); n != 1 {
		t.Fatalf("expected 1 pending delivery, got %d", n)
	}

	if n, err := f.DeliverDue(ctx()); err != nil || n != 1 {
		t.Fatalf("expected 1 attempted delivery, got %d (%v)", n, err)
	}
	if rcv.count() != 1 {
		t.Fatalf("expected 1 request at receiver, got %d", rcv.count())
	}

	body, headers := rcv.bodies[0], rcv.headers[0]
	if !signature.Verify(body, wh.Secret, headers.Get(signature.Header)) {
		t.Fatal("signature does not verify")
	}
	var env delivery.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatal(err)
	}
	if env.Event != event.EntryPublished || env.Metadata.WebhookID != wh.ID.String() {
		t.Fatalf("unexpected envelope %+v", env)
	}

	got, err := f.Webhooks().Get(ctx(), wh.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Stats.TotalDeliveries != 1 || got.Stats.SuccessfulDeliveries != 1 {
		t.Fatalf("unexpected stats %+v", got.Stats)
	}
	if got.LastDeliveryStatus != webhook.StatusSuccess {
		t.Fatalf("expected SUCCESS, got %s", got.LastDeliveryStatus)
	}
	if n, _ := f.PendingDeliveries(ctx()); n != 0 {
		t.Fatalf("expected no pending deliveries, got %d", n)
	}
}

func TestExtraPublishersReceiveEvents(t *testing.T) {
	rec := event.NewRecorder()
	f := newFolio(t, folio.WithPublisher(rec))

	e := createPost(t, f)
	if _, err := f.Entries().Publish(ctx(), e.ID, "editor"); err != nil {
		t.Fatal(err)
	}

	names := rec.Names()
	want := []string{event.ContentTypeCreated, event.EntryCreated, event.EntryPublished}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
}

func TestTriggerEventFansOutToSubscribers(t *testing.T) {
	f := newFolio(t)
	for _, events := range [][]string{
		{event.EntryCreated},
		{event.EntryCreated, event.EntryDeleted},
		{event.EntryDeleted},
	} {
		if _, err := f.Webhooks().Create(ctx(), webhook.Input{
			Name:   "hook",
			URL:    "https://example.com/hook",
			Events: events,
		}); err != nil {
			t.Fatal(err)
		}
	}

	if err := f.TriggerEvent(ctx(), event.EntryCreated, map[string]string{"id": "x"}, ""); err != nil {
		t.Fatal(err)
	}
	if n, _ := f.PendingDeliveries(ctx()); n != 2 {
		t.Fatalf("expected 2 pending deliveries, got %d", n)
	}
}

func TestEngineStartStop(t *testing.T) {
	rcv := &receiver{}
	srv := httptest.NewServer(rcv)
	t.Cleanup(srv.Close)

	f := newFolio(t)
	if _, err := f.Webhooks().Create(ctx(), webhook.Input{
		Name:   "hook",
		URL:    srv.URL,
		Events: []string{event.EntryCreated},
	}); err != nil {
		t.Fatal(err)
	}

	runCtx, cancel := context.WithCancel(ctx())
	defer cancel()
	f.Start(runCtx)

	createPost(t, f)

	deadline := time.Now().Add(3 * time.Second)
	for rcv.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if rcv.count() != 1 {
		t.Fatalf("expected the running engine to deliver, got %d requests", rcv.count())
	}

	if err := f.Stop(ctx()); err != nil {
		t.Fatal(err)
	}
}

func TestTestWebhook(t *testing.T) {
	rcv := &receiver{status: http.StatusInternalServerError}
	srv := httptest.NewServer(rcv)
	t.Cleanup(srv.Close)

	f := newFolio(t)
	wh, err := f.Webhooks().Create(ctx(), webhook.Input{
		Name:   "hook",
		URL:    srv.URL,
		Events: []string{event.EntryCreated},
	})
	if err != nil {
		t.Fatal(err)
	}

	res, err := f.TestWebhook(ctx(), wh.ID)
	if err != nil {
		t.Fatal(err)
	}
	if res.Success || res.StatusCode != http.StatusInternalServerError {
		t.Fatalf("unexpected result %+v", res)
	}
	if rcv.count() != 1 {
		t.Fatalf("test delivery must not retry, got %d requests", rcv.count())
	}

	got, _ := f.Webhooks().Get(ctx(), wh.ID)
	if got.Stats.TotalDeliveries != 0 || len(got.DeliveryLogs) != 0 {
		t.Fatal("test delivery must not be recorded")
	}

	if _, err := f.TestWebhook(ctx(), id.NewWebhookID()); !errors.Is(err, folio.ErrWebhookNotFound) {
		t.Fatalf("expected ErrWebhookNotFound, got %v", err)
	}
}
