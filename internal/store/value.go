package store

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

// Value is a snapshot of one node. An absent node is the zero Value.
type Value struct {
	raw any
}

func NewValue(raw any) Value {
	return Value{raw: raw}
}

func (v Value) Exists() bool {
	return v.raw != nil
}

func (v Value) Raw() any {
	return v.raw
}

// Child returns the named child node, or an absent Value.
func (v Value) Child(name string) Value {
	m, ok := v.raw.(map[string]any)
	if !ok {
		return Value{}
	}
	return Value{raw: m[name]}
}

func (v Value) HasChildren() bool {
	m, ok := v.raw.(map[string]any)
	return ok && len(m) > 0
}

// Keys returns the names of all child nodes in ascending order.
func (v Value) Keys() []string {
	m, ok := v.raw.(map[string]any)
	if !ok {
		return nil
	}
	ks := make([]string, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}

func (v Value) String() string {
	s, _ := v.raw.(string)
	return s
}

func (v Value) Bool() bool {
	b, _ := v.raw.(bool)
	return b
}

// Int returns the value as an integer, converting from any numeric
// representation a backend may hand back. Absent and non-numeric nodes are 0.
func (v Value) Int() int64 {
	switch n := v.raw.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	case float32:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	}
	return 0
}

func (v Value) Float() float64 {
	switch n := v.raw.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	case float32:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	}
	return 0
}

// Decode unmarshals the snapshot into dst.
func (v Value) Decode(dst any) error {
	b, err := json.Marshal(v.raw)
	if err != nil {
		return errors.Wrapf(err, "error marshalling value: %+v", v.raw)
	}
	return errors.Wrapf(json.Unmarshal(b, dst), "error decoding value: %s", b)
}
