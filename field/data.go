package field

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Data is the content of an entry: an insertion-ordered map of field
// names to values. Key order is preserved through JSON round trips so
// validation errors come out in a deterministic order.
//
// The zero Data is empty and ready to use.
type Data struct {
	keys   []string
	values map[string]Value
}

// NewData returns an empty Data with room for n keys.
func NewData(n int) Data {
	return Data{keys: make([]string, 0, n), values: make(map[string]Value, n)}
}

// Set stores v under key. A new key is appended; an existing key keeps
// its position.
func (d *Data) Set(key string, v Value) {
	if d.values == nil {
		d.values = make(map[string]Value)
	}
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = v
}

// Get returns the value stored under key.
func (d Data) Get(key string) (Value, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Has reports whether key is present, even with a null value.
func (d Data) Has(key string) bool {
	_, ok := d.values[key]
	return ok
}

// Delete removes key.
func (d *Data) Delete(key string) {
	if _, ok := d.values[key]; !ok {
		return
	}
	delete(d.values, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i:i], d.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (d Data) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Len returns the number of keys.
func (d Data) Len() int { return len(d.keys) }

// Range calls fn for each key in order until fn returns false.
func (d Data) Range(fn func(key string, v Value) bool) {
	for _, k := range d.keys {
		if !fn(k, d.values[k]) {
			return
		}
	}
}

// Clone returns a copy of d that shares no key slice with it.
func (d Data) Clone() Data {
	out := NewData(len(d.keys))
	for _, k := range d.keys {
		out.Set(k, d.values[k])
	}
	return out
}

// Map converts d into a plain map. Order is lost.
func (d Data) Map() map[string]any {
	out := make(map[string]any, len(d.keys))
	for _, k := range d.keys {
		out[k] = d.values[k].Interface()
	}
	return out
}

// MarshalJSON encodes d as a JSON object with keys in insertion order.
func (d Data) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := d.values[k].MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("field: encode %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping document key order. A
// repeated key keeps its first position and its last value.
func (d *Data) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*d = Data{}
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("field: data must be a JSON object")
	}

	out := NewData(8)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("field: object key %v is not a string", keyTok)
		}
		v, err := decodeValue(dec)
		if err != nil {
			return fmt.Errorf("field: decode %q: %w", key, err)
		}
		out.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*d = out
	return nil
}

// ParseData decodes a JSON object into Data.
func ParseData(b []byte) (Data, error) {
	var d Data
	if err := d.UnmarshalJSON(b); err != nil {
		return Data{}, err
	}
	return d, nil
}

// MustParseData is like ParseData but panics on error. Use for literals.
func MustParseData(s string) Data {
	d, err := ParseData([]byte(s))
	if err != nil {
		panic(fmt.Sprintf("field: must parse data: %v", err))
	}
	return d
}

// DataFromMap builds Data from a plain map. Keys follow the order given
// by keys; keys missing from m are skipped and keys of m not listed are
// appended in unspecified order.
func DataFromMap(m map[string]any, keys ...string) (Data, error) {
	out := NewData(len(m))
	seen := make(map[string]bool, len(keys))
	add := func(k string) error {
		x, ok := m[k]
		if !ok || seen[k] {
			return nil
		}
		seen[k] = true
		v, err := FromInterface(x)
		if err != nil {
			return err
		}
		out.Set(k, v)
		return nil
	}
	for _, k := range keys {
		if err := add(k); err != nil {
			return Data{}, err
		}
	}
	for k := range m {
		if err := add(k); err != nil {
			return Data{}, err
		}
	}
	return out, nil
}
