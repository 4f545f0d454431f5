package validate_test

import (
	"testing"
	"time"

	"github.com/xraph/folio/field"
	"github.com/xraph/folio/validate"
)

func articleFields() []field.Definition {
	minDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []field.Definition{
		{Name: "title", Label: "Title", Required: true, Rules: field.TextRules{MaxLength: field.IntPtr(10)}},
		{Name: "slug", Label: "Slug", Rules: field.TextRules{Pattern: `^[a-z-]+$`}},
		{Name: "body", Label: "Body", Rules: field.RichTextRules{MinLength: field.IntPtr(3)}},
		{Name: "rating", Label: "Rating", Rules: field.NumberRules{Min: field.FloatPtr(1), Max: field.FloatPtr(5), Integer: true}},
		{Name: "published", Label: "Published", Rules: field.DateRules{MinDate: &minDate}},
		{Name: "featured", Label: "Featured", Rules: field.BooleanRules{}},
		{Name: "cover", Label: "Cover", Rules: field.MediaRules{}},
		{Name: "related", Label: "Related", Rules: field.RelationRules{Multiple: true}},
		{Name: "summary", Label: "Summary", Required: true, Rules: field.TextRules{}},
	}
}

func TestEntryScenarioMaxLength(t *testing.T) {
	fields := []field.Definition{
		{Name: "title", Label: "Title", Required: true, Rules: field.TextRules{MaxLength: field.IntPtr(10)}},
	}

	res := validate.Entry(field.MustParseData(`{"title":"this title is too long"}`), fields)
	if res.Valid {
		t.Fatal("expected invalid")
	}
	if len(res.Errors) != 1 || res.Errors[0].Code != validate.CodeMaxLength || res.Errors[0].Field != "title" {
		t.Fatalf("expected one max_length error on title, got %+v", res.Errors)
	}
	if res.Errors[0].Message != "Title must be at most 10 characters" {
		t.Fatalf("unexpected message %q", res.Errors[0].Message)
	}

	res = validate.Entry(field.MustParseData(`{"title":"ok"}`), fields)
	if !res.Valid || res.Err() != nil {
		t.Fatalf("expected valid, got %+v", res.Errors)
	}
}

func TestEntryClosedSchema(t *testing.T) {
	data := field.MustParseData(`{"title":"ok","summary":"s","color":"red","size":3}`)
	res := validate.Entry(data, articleFields())

	if res.Valid {
		t.Fatal("expected unknown keys to fail validation")
	}
	if len(res.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %+v", res.Errors)
	}
	for i, key := range []string{"color", "size"} {
		e := res.Errors[i]
		if e.Field != key || e.Code != validate.CodeUnknownField {
			t.Fatalf("error %d: expected unknown_field on %s, got %+v", i, key, e)
		}
	}
	if res.Errors[0].Message != `Field "color" is not defined in content type` {
		t.Fatalf("unexpected message %q", res.Errors[0].Message)
	}
}

func TestEntryRequiredCompleteness(t *testing.T) {
	res := validate.Entry(field.MustParseData(`{}`), articleFields())
	if len(res.Errors) != 2 {
		t.Fatalf("expected 2 required errors, got %+v", res.Errors)
	}
	if res.Errors[0].Field != "title" || res.Errors[1].Field != "summary" {
		t.Fatalf("expected schema order, got %+v", res.Errors)
	}

	res = validate.Entry(field.MustParseData(`{"title":"x"}`), articleFields())
	if len(res.Errors) != 1 || !res.Errors.Has("summary", validate.CodeRequired) {
		t.Fatalf("expected summary required, got %+v", res.Errors)
	}
}

func TestEntryRequiredNullAlsoTypeChecked(t *testing.T) {
	res := validate.Entry(field.MustParseData(`{"title":null,"summary":"s"}`), articleFields())
	if len(res.Errors) != 2 {
		t.Fatalf("expected required + invalid_type, got %+v", res.Errors)
	}
	if res.Errors[0].Code != validate.CodeRequired || res.Errors[1].Code != validate.CodeInvalidType {
		t.Fatalf("unexpected order %+v", res.Errors)
	}
}

func TestEntryOverflowingNumberIsInvalid(t *testing.T) {
	data := field.MustParseData(`{"title":"ok","summary":"s","rating":1e400}`)
	res := validate.Entry(data, articleFields())
	if len(res.Errors) != 1 || !res.Errors.Has("rating", validate.CodeInvalidType) {
		t.Fatalf("expected invalid_type on rating, got %+v", res.Errors)
	}
}

func TestEntryOptionalNullSkipped(t *testing.T) {
	data := field.MustParseData(`{"title":"ok","summary":"s","rating":null,"cover":null,"featured":null}`)
	if res := validate.Entry(data, articleFields()); !res.Valid {
		t.Fatalf("expected valid, got %+v", res.Errors)
	}
}

func TestEntryAccumulatesAllErrors(t *testing.T) {
	data := field.MustParseData(`{
		"title": 42,
		"slug": "Not Valid",
		"body": "hi",
		"rating": 7.5,
		"published": "2023-06-01",
		"featured": "yes",
		"cover": ["m1"],
		"related": ["e1", 3, ""],
		"summary": "s",
		"extra": true
	}`)

	res := validate.Entry(data, articleFields())

	want := []struct {
		field string
		code  validate.Code
	}{
		{"title", validate.CodeInvalidType},
		{"slug", validate.CodePattern},
		{"body", validate.CodeMinLength},
		{"rating", validate.CodeInteger},
		{"rating", validate.CodeMaxValue},
		{"published", validate.CodeMinDate},
		{"featured", validate.CodeInvalidType},
		{"cover", validate.CodeInvalidType},
		{"related", validate.CodeInvalidID},
		{"related", validate.CodeInvalidID},
		{"extra", validate.CodeUnknownField},
	}

	if len(res.Errors) != len(want) {
		t.Fatalf("expected %d errors, got %d: %+v", len(want), len(res.Errors), res.Errors)
	}
	for i, w := range want {
		if res.Errors[i].Field != w.field || res.Errors[i].Code != w.code {
			t.Fatalf("error %d: expected %s/%s, got %+v", i, w.field, w.code, res.Errors[i])
		}
	}
	if res.Errors[8].Message != "Related[1] must be a valid content entry ID" {
		t.Fatalf("unexpected message %q", res.Errors[8].Message)
	}
	if res.Errors[5].Message != "Published must be on or after 2024-01-01T00:00:00.000Z" {
		t.Fatalf("unexpected message %q", res.Errors[5].Message)
	}
}

func TestNumberChecks(t *testing.T) {
	f := field.Definition{Name: "n", Label: "N", Rules: field.NumberRules{Min: field.FloatPtr(0.5), Max: field.FloatPtr(10)}}

	tests := []struct {
		name  string
		value field.Value
		code  validate.Code
	}{
		{"numeric string is not coerced", field.StringValue("42"), validate.CodeInvalidType},
		{"NaN", field.NumberValue(nanValue()), validate.CodeInvalidType},
		{"below min", field.NumberValue(0.25), validate.CodeMinValue},
		{"above max", field.NumberValue(11), validate.CodeMaxValue},
		{"in range", field.NumberValue(3), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validate.Field(f, tt.value)
			if tt.code == "" {
				if len(errs) != 0 {
					t.Fatalf("expected no errors, got %+v", errs)
				}
				return
			}
			if len(errs) != 1 || errs[0].Code != tt.code {
				t.Fatalf("expected %s, got %+v", tt.code, errs)
			}
		})
	}

	errs := validate.Field(f, field.NumberValue(0.25))
	if errs[0].Message != "N must be at least 0.5" {
		t.Fatalf("unexpected message %q", errs[0].Message)
	}
}

func TestDateChecks(t *testing.T) {
	lo := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	hi := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	f := field.Definition{Name: "d", Label: "D", Rules: field.DateRules{MinDate: &lo, MaxDate: &hi}}

	tests := []struct {
		name  string
		value field.Value
		code  validate.Code
	}{
		{"lower bound inclusive", field.StringValue("2024-01-01"), ""},
		{"upper bound inclusive", field.DateValue(hi), ""},
		{"after max", field.StringValue("2025-01-01T00:00:00Z"), validate.CodeMaxDate},
		{"unparseable", field.StringValue("yesterday"), validate.CodeInvalidDate},
		{"wrong kind", field.BoolValue(true), validate.CodeInvalidType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validate.Field(f, tt.value)
			if tt.code == "" {
				if len(errs) != 0 {
					t.Fatalf("expected no errors, got %+v", errs)
				}
				return
			}
			if len(errs) != 1 || errs[0].Code != tt.code {
				t.Fatalf("expected %s, got %+v", tt.code, errs)
			}
		})
	}
}

func TestReferenceShapes(t *testing.T) {
	single := field.Definition{Name: "m", Label: "Image", Rules: field.MediaRules{}}
	multi := field.Definition{Name: "m", Label: "Images", Rules: field.MediaRules{Multiple: true}}

	if errs := validate.Field(single, field.StringValue("media_1")); len(errs) != 0 {
		t.Fatalf("expected valid single id, got %+v", errs)
	}
	errs := validate.Field(single, field.NumberValue(1))
	if len(errs) != 1 || errs[0].Message != "Image must be a valid media ID" {
		t.Fatalf("unexpected %+v", errs)
	}
	errs = validate.Field(multi, field.StringValue("media_1"))
	if len(errs) != 1 || errs[0].Message != "Images must be an array of media IDs" {
		t.Fatalf("unexpected %+v", errs)
	}
	if errs := validate.Field(multi, field.StringsValue("a", "b")); len(errs) != 0 {
		t.Fatalf("expected valid list, got %+v", errs)
	}

	ids := validate.ReferenceIDs(field.ListValue(field.StringValue("a"), field.NumberValue(2), field.StringValue("b")))
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("unexpected ids %v", ids)
	}
}

func TestTextLengthCountsRunes(t *testing.T) {
	f := field.Definition{Name: "t", Label: "T", Rules: field.TextRules{MaxLength: field.IntPtr(3)}}
	if errs := validate.Field(f, field.StringValue("héé")); len(errs) != 0 {
		t.Fatalf("expected rune-based length, got %+v", errs)
	}
}

func TestResultMerge(t *testing.T) {
	res := validate.Entry(field.MustParseData(`{"title":"ok","summary":"s"}`), articleFields())
	if !res.Valid {
		t.Fatalf("expected valid, got %+v", res.Errors)
	}
	merged := res.Merge(validate.Errors{{Field: "cover", Code: validate.CodeInvalidID, Message: "x"}})
	if merged.Valid || merged.Err() == nil {
		t.Fatal("expected merged result to be invalid")
	}
}
