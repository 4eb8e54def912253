package entities

import "fmt"

// PropertyMap is an insertion-ordered string map.
// Property files and test task system properties are order-sensitive when
// rendered, so iteration follows first-insertion order.
type PropertyMap struct {
	values map[string]string
	keys   []string
}

// NewPropertyMap creates an empty property map.
func NewPropertyMap() *PropertyMap {
	return &PropertyMap{values: make(map[string]string)}
}

// PropertyMapOf builds a map from alternating key/value pairs.
// It panics on an odd number of arguments.
func PropertyMapOf(pairs ...string) *PropertyMap {
	if len(pairs)%2 != 0 {
		panic(fmt.Sprintf("PropertyMapOf: expecting even number of values, got %d", len(pairs)))
	}
	m := NewPropertyMap()
	for i := 0; i < len(pairs); i += 2 {
		m.Set(pairs[i], pairs[i+1])
	}
	return m
}

// Set inserts or overwrites a key. It returns the previous value, if any.
func (m *PropertyMap) Set(key, value string) (string, bool) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	prev, existed := m.values[key]
	if !existed {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
	return prev, existed
}

// Get returns the value for key.
func (m *PropertyMap) Get(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.values[key]
	return v, ok
}

// Len returns the number of keys.
func (m *PropertyMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns a copy of the keys in insertion order.
func (m *PropertyMap) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Each calls fn for every entry in insertion order.
func (m *PropertyMap) Each(fn func(key, value string)) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		fn(k, m.values[k])
	}
}

// Clone returns an independent copy.
func (m *PropertyMap) Clone() *PropertyMap {
	out := NewPropertyMap()
	m.Each(func(k, v string) { out.Set(k, v) })
	return out
}

// Replace clears the map and copies every entry of src into it.
// Applying the same src twice yields the same map.
func (m *PropertyMap) Replace(src *PropertyMap) {
	if src == m {
		return
	}
	m.values = make(map[string]string, src.Len())
	m.keys = m.keys[:0]
	src.Each(func(k, v string) { m.Set(k, v) })
}
