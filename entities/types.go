package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Ref is a nullable foreign key. The backend sends it as a bare id, a numeric
// string, null, or the nested related object.
type Ref struct {
	ID  int64
	Set bool
}

func RefOf(id int64) Ref { return Ref{ID: id, Set: true} }

// ParseRef maps form values to a Ref; "" means no selection.
func ParseRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Ref{}, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Ref{}, fmt.Errorf("invalid reference %q: %w", s, err)
	}
	return RefOf(id), nil
}

func (r Ref) String() string {
	if !r.Set {
		return ""
	}
	return strconv.FormatInt(r.ID, 10)
}

func (r Ref) MarshalJSON() ([]byte, error) {
	if !r.Set {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(r.ID, 10)), nil
}

func (r *Ref) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*r = Ref{}
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	switch b[0] {
	case '{':
		var nested struct {
			ID *Ref `json:"id"`
		}
		if err := json.Unmarshal(b, &nested); err != nil {
			return err
		}
		if nested.ID != nil {
			*r = *nested.ID
		}
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		ref, err := ParseRef(s)
		if err != nil {
			return err
		}
		*r = ref
		return nil
	}
	id, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("ref: %w", err)
	}
	*r = RefOf(id)
	return nil
}

// Number is a nullable decimal. DRF serializes decimals as strings.
type Number struct {
	V   float64
	Set bool
}

func NumberOf(v float64) Number { return Number{V: v, Set: true} }

// ParseNumber maps form values to a Number; "" means empty.
func ParseNumber(s string) (Number, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Number{}, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Number{}, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return NumberOf(v), nil
}

func (n Number) String() string {
	if !n.Set {
		return ""
	}
	return strconv.FormatFloat(n.V, 'f', -1, 64)
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Set {
		return []byte("null"), nil
	}
	return json.Marshal(n.V)
}

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*n = Number{}
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		num, err := ParseNumber(s)
		if err != nil {
			return err
		}
		*n = num
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = NumberOf(v)
	return nil
}

// Option is one entry of a select control.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// UnmarshalJSON accepts the catalogue shapes served by the backend:
// {"valor","etiqueta"}, {"value","label"}, {"id","nombre"} or a
// [value, label] pair.
func (o *Option) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*o = Option{}
	if len(b) > 0 && b[0] == '[' {
		var pair []any
		if err := json.Unmarshal(b, &pair); err != nil {
			return err
		}
		if len(pair) > 0 {
			o.Value = fmt.Sprint(pair[0])
			o.Label = o.Value
		}
		if len(pair) > 1 {
			o.Label = fmt.Sprint(pair[1])
		}
		return nil
	}
	var v struct {
		Value    any    `json:"value"`
		Label    string `json:"label"`
		Valor    any    `json:"valor"`
		Etiqueta string `json:"etiqueta"`
		ID       any    `json:"id"`
		Nombre   string `json:"nombre"`
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch {
	case v.Valor != nil:
		o.Value, o.Label = fmt.Sprint(v.Valor), v.Etiqueta
	case v.Value != nil:
		o.Value, o.Label = fmt.Sprint(v.Value), v.Label
	case v.ID != nil:
		o.Value, o.Label = fmt.Sprint(v.ID), v.Nombre
	}
	if o.Label == "" {
		o.Label = o.Value
	}
	return nil
}
