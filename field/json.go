package field

import (
	"encoding/json"
	"fmt"
)

// definitionJSON is the wire form of a Definition.
type definitionJSON struct {
	Name         string          `json:"name"`
	Type         Type            `json:"type"`
	Label        string          `json:"label"`
	Description  string          `json:"description,omitempty"`
	Required     bool            `json:"required"`
	Unique       bool            `json:"unique,omitempty"`
	DefaultValue *Value          `json:"defaultValue,omitempty"`
	Validation   json.RawMessage `json:"validation,omitempty"`
}

// dateRulesJSON carries date bounds as strings so date-only values work.
type dateRulesJSON struct {
	MinDate string `json:"minDate,omitempty"`
	MaxDate string `json:"maxDate,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (d Definition) MarshalJSON() ([]byte, error) {
	out := definitionJSON{
		Name:        d.Name,
		Type:        d.Type(),
		Label:       d.Label,
		Description: d.Description,
		Required:    d.Required,
		Unique:      d.Unique,
	}
	if !d.DefaultValue.IsNull() {
		v := d.DefaultValue
		out.DefaultValue = &v
	}

	var rules any = d.Rules
	if dr, ok := d.Rules.(DateRules); ok {
		w := dateRulesJSON{}
		if dr.MinDate != nil {
			w.MinDate = FormatISO(*dr.MinDate)
		}
		if dr.MaxDate != nil {
			w.MaxDate = FormatISO(*dr.MaxDate)
		}
		rules = w
	}
	if rules != nil {
		raw, err := json.Marshal(rules)
		if err != nil {
			return nil, err
		}
		if string(raw) != "{}" {
			out.Validation = raw
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler. The validation object is
// decoded into the rule variant selected by type.
func (d *Definition) UnmarshalJSON(b []byte) error {
	var in definitionJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}

	rules, err := decodeRules(in.Type, in.Validation)
	if err != nil {
		return fmt.Errorf("field %q: %w", in.Name, err)
	}

	*d = Definition{
		Name:        in.Name,
		Label:       in.Label,
		Description: in.Description,
		Required:    in.Required,
		Unique:      in.Unique,
		Rules:       rules,
	}
	if in.DefaultValue != nil {
		d.DefaultValue = *in.DefaultValue
	}
	return nil
}

func decodeRules(t Type, raw json.RawMessage) (Rules, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("unknown field type %q", t)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return ZeroRules(t), nil
	}

	switch t {
	case TypeText:
		var r TextRules
		err := json.Unmarshal(raw, &r)
		return r, err
	case TypeRichText:
		var r RichTextRules
		err := json.Unmarshal(raw, &r)
		return r, err
	case TypeNumber:
		var r NumberRules
		err := json.Unmarshal(raw, &r)
		return r, err
	case TypeDate:
		var w dateRulesJSON
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		var r DateRules
		if w.MinDate != "" {
			ts, err := ParseDate(w.MinDate)
			if err != nil {
				return nil, fmt.Errorf("minDate: %w", err)
			}
			r.MinDate = &ts
		}
		if w.MaxDate != "" {
			ts, err := ParseDate(w.MaxDate)
			if err != nil {
				return nil, fmt.Errorf("maxDate: %w", err)
			}
			r.MaxDate = &ts
		}
		return r, nil
	case TypeBoolean:
		return BooleanRules{}, nil
	case TypeMedia:
		var r MediaRules
		err := json.Unmarshal(raw, &r)
		return r, err
	case TypeRelation:
		var r RelationRules
		err := json.Unmarshal(raw, &r)
		return r, err
	}
	return nil, fmt.Errorf("unknown field type %q", t)
}
