package delivery

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDeliveryID(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	if got := DeliveryID("wh_abc", now, 2); got != "wh_abc_1700000000123_2" {
		t.Fatalf("unexpected delivery ID %q", got)
	}
}

func TestEnvelopeShape(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	body, err := NewEnvelope("entry.published", json.RawMessage(`{"a":1}`), "wh_1", "wh_1_1_1", now).Marshal()
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["event"] != "entry.published" {
		t.Fatalf("unexpected event %v", decoded["event"])
	}
	if decoded["timestamp"] != "2024-03-01T12:30:00.000Z" {
		t.Fatalf("unexpected timestamp %v", decoded["timestamp"])
	}
	meta, ok := decoded["metadata"].(map[string]any)
	if !ok || meta["webhookId"] != "wh_1" || meta["deliveryId"] != "wh_1_1_1" {
		t.Fatalf("unexpected metadata %v", decoded["metadata"])
	}
}

func TestEnvelopeNilData(t *testing.T) {
	body, err := NewEnvelope("media.deleted", nil, "wh_1", "d", time.Now()).Marshal()
	if err != nil {
		t.Fatal(err)
	}
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatal(err)
	}
	if string(env.Data) != "null" {
		t.Fatalf("expected null data, got %s", env.Data)
	}
}
