package delivery_test

import (
	"encoding/json"
	"testing"

	"github.com/xraph/folio/delivery"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/internal/entity"
	"github.com/xraph/folio/store/memory"
	"github.com/xraph/folio/webhook"
)

func addWebhook(t *testing.T, store *memory.Store, siteID string, active bool, events ...string) *webhook.Webhook {
	t.Helper()
	w := &webhook.Webhook{
		Entity:     entity.New(),
		ID:         id.NewWebhookID(),
		Name:       "hook",
		URL:        "https://example.com/hook",
		Events:     events,
		Secret:     "s",
		IsActive:   active,
		SiteID:     siteID,
		MaxRetries: 3,
		RetryDelay: 1000,
	}
	if err := store.CreateWebhook(ctx(), w); err != nil {
		t.Fatal(err)
	}
	return w
}

func TestDispatcherFansOut(t *testing.T) {
	store := memory.New()
	addWebhook(t, store, "", true, "entry.published")
	addWebhook(t, store, "", true, "entry.published", "entry.archived")
	addWebhook(t, store, "", false, "entry.published")
	addWebhook(t, store, "", true, "media.uploaded")

	d := delivery.NewDispatcher(store, nil, nil, nil)
	if err := d.TriggerEvent(ctx(), "entry.published", map[string]any{"id": "e1"}, ""); err != nil {
		t.Fatal(err)
	}

	n, err := store.CountPending(ctx())
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 tasks, got %d", n)
	}

	tasks, _ := store.Dequeue(ctx(), 10)
	for _, task := range tasks {
		if task.Attempt != 1 || task.State != delivery.StatePending {
			t.Fatalf("unexpected task %+v", task)
		}
		var data map[string]any
		if err := json.Unmarshal(task.Data, &data); err != nil {
			t.Fatal(err)
		}
		if data["id"] != "e1" {
			t.Fatalf("unexpected task data %s", task.Data)
		}
	}
}

func TestDispatcherSiteScope(t *testing.T) {
	store := memory.New()
	addWebhook(t, store, "site_a", true, "entry.created")
	addWebhook(t, store, "site_b", true, "entry.created")

	d := delivery.NewDispatcher(store, nil, nil, nil)
	if err := d.TriggerEvent(ctx(), "entry.created", nil, "site_a"); err != nil {
		t.Fatal(err)
	}

	n, _ := store.CountPending(ctx())
	if n != 1 {
		t.Fatalf("expected 1 task for site_a, got %d", n)
	}
}

func TestDispatcherRejectsUnknownEvent(t *testing.T) {
	d := delivery.NewDispatcher(memory.New(), nil, nil, nil)
	if err := d.TriggerEvent(ctx(), "invoice.paid", nil, ""); err == nil {
		t.Fatal("expected error for unknown event")
	}
}

func TestDispatcherPublishSwallowsErrors(t *testing.T) {
	store := memory.New()
	addWebhook(t, store, "", true, "entry.deleted")

	d := delivery.NewDispatcher(store, nil, nil, nil)
	d.Publish(ctx(), "not.an.event", nil, "")
	d.Publish(ctx(), "entry.deleted", json.RawMessage(`{"id":"e1"}`), "")

	n, _ := store.CountPending(ctx())
	if n != 1 {
		t.Fatalf("expected 1 task, got %d", n)
	}
}
