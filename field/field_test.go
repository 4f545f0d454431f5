package field_test

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/xraph/folio/field"
)

func TestDataPreservesKeyOrder(t *testing.T) {
	d := field.MustParseData(`{"zeta":1,"alpha":"a","mid":[true,null],"obj":{"k":"v"}}`)

	keys := d.Keys()
	want := []string{"zeta", "alpha", "mid", "obj"}
	if strings.Join(keys, ",") != strings.Join(want, ",") {
		t.Fatalf("expected keys %v, got %v", want, keys)
	}

	out, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(out), `{"zeta":1,"alpha":"a","mid":[true,null],"obj":`) {
		t.Fatalf("unexpected encoding %s", out)
	}

	v, _ := d.Get("obj")
	if v.Kind() != field.KindObject {
		t.Fatalf("expected object kind, got %s", v.Kind())
	}
}

func TestDataSetKeepsPosition(t *testing.T) {
	var d field.Data
	d.Set("a", field.NumberValue(1))
	d.Set("b", field.NumberValue(2))
	d.Set("a", field.NumberValue(3))

	if got := strings.Join(d.Keys(), ","); got != "a,b" {
		t.Fatalf("expected a,b got %s", got)
	}
	v, _ := d.Get("a")
	if n, _ := v.AsNumber(); n != 3 {
		t.Fatalf("expected 3, got %v", n)
	}

	d.Delete("a")
	if d.Len() != 1 || d.Has("a") {
		t.Fatalf("expected a deleted, keys %v", d.Keys())
	}
}

func TestDataRejectsNonObject(t *testing.T) {
	if _, err := field.ParseData([]byte(`[1,2]`)); err == nil {
		t.Fatal("expected error for array data")
	}
}

func TestValueDecodesNumbers(t *testing.T) {
	d := field.MustParseData(`{"n":9007199254740993,"f":1.5}`)
	f, _ := d.Get("f")
	if n, ok := f.AsNumber(); !ok || n != 1.5 {
		t.Fatalf("expected 1.5, got %v %v", n, ok)
	}
}

func TestValueKeepsOverflowingNumber(t *testing.T) {
	d := field.MustParseData(`{"big":1e400,"neg":-1e400}`)
	for _, key := range []string{"big", "neg"} {
		v, _ := d.Get(key)
		if v.Kind() != field.KindNumber {
			t.Fatalf("%s: expected number kind, got %s", key, v.Kind())
		}
		if n, _ := v.AsNumber(); !math.IsInf(n, 0) {
			t.Fatalf("%s: expected infinity, got %v", key, n)
		}
	}
}

func TestDefinitionJSONRoundTrip(t *testing.T) {
	raw := `[
		{"name":"title","type":"TEXT","label":"Title","required":true,"validation":{"maxLength":10,"pattern":"^[a-z ]+$"}},
		{"name":"price","type":"NUMBER","label":"Price","validation":{"min":0,"integer":true}},
		{"name":"launch","type":"DATE","label":"Launch","validation":{"minDate":"2024-01-01"}},
		{"name":"flag","type":"BOOLEAN","label":"Flag"},
		{"name":"gallery","type":"MEDIA","label":"Gallery","validation":{"multiple":true}}
	]`

	var defs []field.Definition
	if err := json.Unmarshal([]byte(raw), &defs); err != nil {
		t.Fatal(err)
	}
	if len(defs) != 5 {
		t.Fatalf("expected 5 defs, got %d", len(defs))
	}

	text, ok := defs[0].Rules.(field.TextRules)
	if !ok {
		t.Fatalf("expected TextRules, got %T", defs[0].Rules)
	}
	if text.MaxLength == nil || *text.MaxLength != 10 {
		t.Fatalf("expected maxLength 10, got %v", text.MaxLength)
	}

	date := defs[2].Rules.(field.DateRules)
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if date.MinDate == nil || !date.MinDate.Equal(want) {
		t.Fatalf("expected minDate %v, got %v", want, date.MinDate)
	}

	if defs[3].Type() != field.TypeBoolean {
		t.Fatalf("expected BOOLEAN, got %s", defs[3].Type())
	}

	out, err := json.Marshal(defs)
	if err != nil {
		t.Fatal(err)
	}
	var again []field.Definition
	if err := json.Unmarshal(out, &again); err != nil {
		t.Fatal(err)
	}
	if !again[2].Rules.(field.DateRules).MinDate.Equal(want) {
		t.Fatal("date bound lost in round trip")
	}
	if !again[4].Rules.(field.MediaRules).Multiple {
		t.Fatal("multiple flag lost in round trip")
	}
}

func TestDefinitionUnknownType(t *testing.T) {
	var d field.Definition
	err := json.Unmarshal([]byte(`{"name":"x","type":"COLOR","label":"X"}`), &d)
	if err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestValidateDefinitions(t *testing.T) {
	ok := field.Definition{Name: "title", Label: "Title", Rules: field.TextRules{}}

	tests := []struct {
		name string
		defs []field.Definition
		ok   bool
	}{
		{"valid", []field.Definition{ok}, true},
		{"empty", nil, false},
		{"duplicate", []field.Definition{ok, ok}, false},
		{"bad name", []field.Definition{{Name: "my-title", Label: "T", Rules: field.TextRules{}}}, false},
		{"missing label", []field.Definition{{Name: "t", Rules: field.TextRules{}}}, false},
		{"missing rules", []field.Definition{{Name: "t", Label: "T"}}, false},
		{"bad pattern", []field.Definition{{Name: "t", Label: "T", Rules: field.TextRules{Pattern: "("}}}, false},
		{"inverted lengths", []field.Definition{{Name: "t", Label: "T", Rules: field.RichTextRules{MinLength: field.IntPtr(5), MaxLength: field.IntPtr(1)}}}, false},
		{"inverted numbers", []field.Definition{{Name: "n", Label: "N", Rules: field.NumberRules{Min: field.FloatPtr(5), Max: field.FloatPtr(1)}}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := field.ValidateDefinitions(tt.defs)
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok {
				var defErr *field.DefinitionError
				if !errors.As(err, &defErr) {
					t.Fatalf("expected DefinitionError, got %v", err)
				}
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	for _, s := range []string{"2024-03-01", "2024-03-01T10:00", "2024-03-01T10:00:00", "2024-03-01T10:00:00.123Z", "2024-03-01T10:00:00+02:00"} {
		if _, err := field.ParseDate(s); err != nil {
			t.Fatalf("expected %q to parse: %v", s, err)
		}
	}
	if _, err := field.ParseDate("not a date"); err == nil {
		t.Fatal("expected error")
	}
	ts, _ := field.ParseDate("2024-03-01T10:00:00+02:00")
	if got := field.FormatISO(ts); got != "2024-03-01T08:00:00.000Z" {
		t.Fatalf("unexpected ISO %s", got)
	}
}
