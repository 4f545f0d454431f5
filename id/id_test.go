package id_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/xraph/folio/id"
)

func TestTypedParserRejectsOtherKinds(t *testing.T) {
	wh := id.NewWebhookID()

	got, err := id.ParseWebhookID(wh.String())
	if err != nil || got.String() != wh.String() {
		t.Fatalf("round trip failed: %v %v", got, err)
	}
	if !strings.HasPrefix(wh.String(), "wh_") || wh.Prefix() != id.PrefixWebhook {
		t.Fatalf("unexpected webhook ID %s", wh)
	}

	if _, err := id.ParseEntryID(wh.String()); err == nil {
		t.Fatal("expected a webhook ID to be rejected as an entry ID")
	}
	if _, err := id.ParseEntryID(""); err == nil {
		t.Fatal("expected empty string to be rejected")
	}
	if _, err := id.Parse("not an id"); err == nil {
		t.Fatal("expected malformed ID to be rejected")
	}
}

func TestNilEncodesEmpty(t *testing.T) {
	if !id.Nil.IsNil() || id.Nil.String() != "" || id.Nil.Prefix() != "" {
		t.Fatal("zero ID must be nil and print empty")
	}

	var v struct {
		A id.ID `json:"a"`
		B id.ID `json:"b"`
	}
	v.A = id.NewEntryID()

	out, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `"b":""`) {
		t.Fatalf("expected nil ID as empty string, got %s", out)
	}

	var back struct {
		A id.ID `json:"a"`
		B id.ID `json:"b"`
	}
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatal(err)
	}
	if back.A.String() != v.A.String() || !back.B.IsNil() {
		t.Fatalf("unexpected decode %+v", back)
	}
}
