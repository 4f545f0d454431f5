package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"

	"github.com/xraph/folio"
	"github.com/xraph/folio/delivery"
	"github.com/xraph/folio/form"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/internal/entity"
	"github.com/xraph/folio/store/sqlite"
	"github.com/xraph/folio/webhook"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	ctx := context.Background()

	drv := sqlitedriver.New()
	if err := drv.Open(ctx, filepath.Join(t.TempDir(), "folio.db")); err != nil {
		t.Fatalf("open: %v", err)
	}
	db, err := grove.Open(drv)
	if err != nil {
		t.Fatalf("grove open: %v", err)
	}

	s := sqlite.New(db)
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newWebhook() *webhook.Webhook {
	return &webhook.Webhook{
		Entity:     entity.New(),
		ID:         id.NewWebhookID(),
		Name:       "hook",
		URL:        "https://example.com/hook",
		Events:     []string{"entry.created"},
		Secret:     "whsec_test",
		IsActive:   true,
		MaxRetries: 3,
		RetryDelay: 1000,
	}
}

func TestMigrateTwice(t *testing.T) {
	s := newStore(t)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestWebhookTimesRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	w := newWebhook()
	if err := s.CreateWebhook(ctx, w); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetWebhook(ctx, w.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.CreatedAt.Equal(w.CreatedAt) || !got.UpdatedAt.Equal(w.UpdatedAt) {
		t.Fatalf("timestamps changed: created %v -> %v", w.CreatedAt, got.CreatedAt)
	}
	if got.LastDeliveryAt != nil {
		t.Fatalf("expected no last delivery, got %v", got.LastDeliveryAt)
	}

	active, err := s.FindActiveForEvent(ctx, "entry.created", "")
	if err != nil {
		t.Fatalf("find active: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected 1 active webhook, got %d", len(active))
	}
}

func TestRecordDeliveryKeepsNewestFifty(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	w := newWebhook()
	if err := s.CreateWebhook(ctx, w); err != nil {
		t.Fatal(err)
	}

	var last time.Time
	for i := 1; i <= 60; i++ {
		last = time.Now().UTC()
		log := webhook.DeliveryLog{
			Timestamp:     last,
			Event:         "entry.created",
			Status:        webhook.StatusSuccess,
			StatusCode:    200,
			AttemptNumber: i,
		}
		if err := s.RecordDelivery(ctx, w.ID, log, webhook.DeltaFor(webhook.StatusSuccess)); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	got, err := s.GetWebhook(ctx, w.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.DeliveryLogs) != webhook.MaxDeliveryLogs {
		t.Fatalf("expected %d logs, got %d", webhook.MaxDeliveryLogs, len(got.DeliveryLogs))
	}
	if first := got.DeliveryLogs[0].AttemptNumber; first != 11 {
		t.Fatalf("expected oldest kept attempt 11, got %d", first)
	}
	if newest := got.DeliveryLogs[len(got.DeliveryLogs)-1].AttemptNumber; newest != 60 {
		t.Fatalf("expected newest attempt 60, got %d", newest)
	}
	if got.LastDeliveryAt == nil || !got.LastDeliveryAt.Equal(last) {
		t.Fatalf("expected last delivery at %v, got %v", last, got.LastDeliveryAt)
	}
	if got.LastDeliveryStatus != webhook.StatusSuccess {
		t.Fatalf("unexpected last status %q", got.LastDeliveryStatus)
	}
}

func TestRecordDeliveryCounters(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	w := newWebhook()
	if err := s.CreateWebhook(ctx, w); err != nil {
		t.Fatal(err)
	}

	for _, st := range []webhook.Status{webhook.StatusRetrying, webhook.StatusRetrying, webhook.StatusFailed, webhook.StatusSuccess} {
		log := webhook.DeliveryLog{Timestamp: time.Now().UTC(), Event: "entry.created", Status: st}
		if err := s.RecordDelivery(ctx, w.ID, log, webhook.DeltaFor(st)); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.GetWebhook(ctx, w.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := webhook.Stats{TotalDeliveries: 4, SuccessfulDeliveries: 1, FailedDeliveries: 1}
	if got.Stats != want {
		t.Fatalf("expected stats %+v, got %+v", want, got.Stats)
	}

	err = s.RecordDelivery(ctx, id.NewWebhookID(), webhook.DeliveryLog{}, webhook.StatsDelta{Total: 1})
	if !errors.Is(err, folio.ErrWebhookNotFound) {
		t.Fatalf("expected ErrWebhookNotFound, got %v", err)
	}
}

func TestDequeueClaimsOnce(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	now := time.Now().UTC()
	due := delivery.NewTask(id.NewWebhookID(), "entry.created", []byte(`{"id":"1"}`), "", now.Add(-time.Second))
	later := delivery.NewTask(id.NewWebhookID(), "entry.created", []byte(`{}`), "", now.Add(time.Hour))
	if err := s.EnqueueBatch(ctx, []*delivery.Task{due, later}); err != nil {
		t.Fatal(err)
	}

	stored, err := s.GetTask(ctx, later.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if !stored.NextAttemptAt.Equal(later.NextAttemptAt) {
		t.Fatalf("next attempt changed: %v -> %v", later.NextAttemptAt, stored.NextAttemptAt)
	}

	claimed, err := s.Dequeue(ctx, 10)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if len(claimed) != 1 || claimed[0].ID.String() != due.ID.String() {
		t.Fatalf("expected only the due task, got %d", len(claimed))
	}
	if string(claimed[0].Data) != `{"id":"1"}` {
		t.Fatalf("unexpected data %s", claimed[0].Data)
	}

	again, err := s.Dequeue(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != 0 {
		t.Fatalf("claimed task dequeued twice")
	}

	// Writing a still-pending task back releases its claim.
	if err := s.UpdateTask(ctx, claimed[0]); err != nil {
		t.Fatalf("update task: %v", err)
	}
	released, err := s.Dequeue(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(released) != 1 {
		t.Fatalf("expected released task to be claimable, got %d", len(released))
	}

	n, err := s.CountPending(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 pending, got %d", n)
	}

	if _, err := s.GetTask(ctx, id.NewTaskID()); !errors.Is(err, folio.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestFormFieldsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	f := &form.Form{
		Entity:         entity.New(),
		ID:             id.NewFormID(),
		Name:           "Contact",
		Slug:           "contact",
		RecipientEmail: "team@example.com",
		IsActive:       true,
		Fields: []form.Field{
			{Name: "email", Type: form.FieldEmail, Label: "Email", Required: true},
			{Name: "topic", Type: form.FieldSelect, Label: "Topic", Options: []string{"sales", "support"}},
		},
	}
	if err := s.CreateForm(ctx, f); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetFormBySlug(ctx, "contact")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Fields) != 2 || got.Fields[1].Type != form.FieldSelect || len(got.Fields[1].Options) != 2 {
		t.Fatalf("fields not preserved: %+v", got.Fields)
	}
}
