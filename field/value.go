package field

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindDate
	KindList
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// Value is a single entry data value. The zero Value is null.
//
// Objects are kept as raw JSON: no field type accepts them, so they only
// need to survive a round trip and be reported as the wrong type.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	t    time.Time
	list []Value
	raw  json.RawMessage
}

// NullValue returns the null Value.
func NullValue() Value { return Value{} }

// StringValue returns a string Value.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// NumberValue returns a number Value.
func NumberValue(f float64) Value { return Value{kind: KindNumber, num: f} }

// BoolValue returns a boolean Value.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// DateValue returns a date Value normalized to UTC.
func DateValue(t time.Time) Value { return Value{kind: KindDate, t: t.UTC()} }

// ListValue returns a list Value.
func ListValue(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindList, list: items}
}

// StringsValue returns a list Value of strings.
func StringsValue(items ...string) Value {
	list := make([]Value, len(items))
	for i, s := range items {
		list[i] = StringValue(s)
	}
	return Value{kind: KindList, list: list}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsNumber returns the number held by v.
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsDate returns the time held by v.
func (v Value) AsDate() (time.Time, bool) { return v.t, v.kind == KindDate }

// AsList returns the items held by v.
func (v Value) AsList() ([]Value, bool) { return v.list, v.kind == KindList }

// Interface converts v to plain Go values (string, float64, bool,
// time.Time, []any, map[string]any or nil).
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindDate:
		return v.t
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Interface()
		}
		return out
	case KindObject:
		var m map[string]any
		if err := json.Unmarshal(v.raw, &m); err != nil {
			return nil
		}
		return m
	default:
		return nil
	}
}

// Equal reports whether two values hold the same variant and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindDate:
		return v.t.Equal(o.t)
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	default:
		return bytes.Equal(v.raw, o.raw)
	}
}

// Contains reports whether any string inside v contains substr, ignoring case.
func (v Value) Contains(substr string) bool {
	switch v.kind {
	case KindString:
		return strings.Contains(strings.ToLower(v.str), strings.ToLower(substr))
	case KindList:
		for _, item := range v.list {
			if item.Contains(substr) {
				return true
			}
		}
	}
	return false
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindDate:
		return json.Marshal(v.t.Format(time.RFC3339Nano))
	case KindList:
		return json.Marshal(v.list)
	case KindObject:
		return v.raw, nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler. Dates arrive as strings and
// stay strings; the validator decides whether they parse.
func (v *Value) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	parsed, err := decodeValue(dec)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return decodeFromToken(dec, tok)
}

func decodeFromToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return NullValue(), nil
	case string:
		return StringValue(t), nil
	case bool:
		return BoolValue(t), nil
	case json.Number:
		// Overflow yields ±Inf, which stays a number so validation rejects it.
		f, err := t.Float64()
		if err != nil && !math.IsInf(f, 0) {
			return Value{}, fmt.Errorf("field: invalid number %s: %w", t, err)
		}
		return NumberValue(f), nil
	case float64:
		return NumberValue(t), nil
	case json.Delim:
		switch t {
		case '[':
			items := []Value{}
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Value{kind: KindList, list: items}, nil
		case '{':
			raw, err := captureObject(dec)
			if err != nil {
				return Value{}, err
			}
			return Value{kind: KindObject, raw: raw}, nil
		}
	}
	return Value{}, fmt.Errorf("field: unexpected JSON token %v", tok)
}

// captureObject re-encodes an object whose opening brace was already read.
func captureObject(dec *json.Decoder) (json.RawMessage, error) {
	m := map[string]json.RawMessage{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("field: object key %v is not a string", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		m[key] = raw
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return json.Marshal(m)
}

// FromInterface converts plain Go values into a Value. Unknown types
// become objects via their JSON encoding.
func FromInterface(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return NullValue(), nil
	case Value:
		return t, nil
	case string:
		return StringValue(t), nil
	case bool:
		return BoolValue(t), nil
	case float64:
		return NumberValue(t), nil
	case float32:
		return NumberValue(float64(t)), nil
	case int:
		return NumberValue(float64(t)), nil
	case int32:
		return NumberValue(float64(t)), nil
	case int64:
		return NumberValue(float64(t)), nil
	case time.Time:
		return DateValue(t), nil
	case []string:
		return StringsValue(t...), nil
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			v, err := FromInterface(item)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return ListValue(items...), nil
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return Value{}, fmt.Errorf("field: convert %T: %w", x, err)
		}
		var v Value
		if err := v.UnmarshalJSON(b); err != nil {
			return Value{}, err
		}
		return v, nil
	}
}
