package graph

// orderedMap is a string-keyed map that preserves insertion order on
// iteration. It backs both the graph store (path -> *Module) and each
// module's dependency list (name -> target path); for both, iteration
// order is a public, tested property, not an implementation detail.
type orderedMap[V any] struct {
	keys   []string
	values map[string]V
}

func newOrderedMap[V any]() *orderedMap[V] {
	return &orderedMap[V]{values: make(map[string]V)}
}

// Set inserts key at the end of the order if new, or updates its value
// in place (keeping its existing position) if key already exists.
func (m *orderedMap[V]) Set(key string, value V) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *orderedMap[V]) Get(key string) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *orderedMap[V]) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Delete removes key. Returns true if it was present.
func (m *orderedMap[V]) Delete(key string) bool {
	if _, ok := m.values[key]; !ok {
		return false
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	return true
}

func (m *orderedMap[V]) Len() int {
	return len(m.keys)
}

// Keys returns the keys in insertion order. Callers must not mutate it.
func (m *orderedMap[V]) Keys() []string {
	return m.keys
}

// Range calls fn for each entry in insertion order, stopping early if
// fn returns false.
func (m *orderedMap[V]) Range(fn func(key string, value V) bool) {
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// reset replaces the map's contents with a fresh empty map, discarding
// order and values.
func (m *orderedMap[V]) reset() {
	m.keys = nil
	m.values = make(map[string]V)
}

// clone returns a shallow copy preserving order.
func (m *orderedMap[V]) clone() *orderedMap[V] {
	c := newOrderedMap[V]()
	c.keys = append([]string(nil), m.keys...)
	for k, v := range m.values {
		c.values[k] = v
	}
	return c
}
