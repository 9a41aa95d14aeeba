package object

import (
	"sort"
	"strings"
)

// Map wraps a string-keyed mapping of values and implements the Object
// interface. Key order is irrelevant. The constructor copies the supplied
// map so the wrapped mapping is immutable.
type Map struct {
	items map[string]Object
}

// NewMap creates a new Map with a copy of the given items.
func NewMap(items map[string]Object) *Map {
	c := make(map[string]Object, len(items))
	for k, v := range items {
		c[k] = v
	}
	return &Map{items: c}
}

// Get returns the value for the given key, if present.
func (m *Map) Get(key string) (Object, bool) {
	v, ok := m.items[key]
	return v, ok
}

// Size returns the number of entries.
func (m *Map) Size() int {
	return len(m.items)
}

// Keys returns the map keys in sorted order.
func (m *Map) Keys() []string {
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *Map) Type() Type {
	return MAP
}

func (m *Map) Inspect() string {
	var sb strings.Builder
	sb.WriteString("{")
	for i, k := range m.Keys() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(m.items[k].Inspect())
	}
	sb.WriteString("}")
	return sb.String()
}

func (m *Map) Interface() interface{} {
	result := make(map[string]interface{}, len(m.items))
	for k, v := range m.items {
		result[k] = v.Interface()
	}
	return result
}

func (m *Map) Equals(other Object) bool {
	o, ok := other.(*Map)
	if !ok || len(m.items) != len(o.items) {
		return false
	}
	for k, v := range m.items {
		ov, found := o.items[k]
		if !found || !v.Equals(ov) {
			return false
		}
	}
	return true
}
