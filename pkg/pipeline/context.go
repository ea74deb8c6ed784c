package pipeline

import "sort"

// Context is the mutable state threaded through a pipeline run. It behaves
// like a string-keyed map of arbitrary values but preserves key insertion
// order, so ranging over Keys is deterministic across runs.
//
// A Context is owned by whichever step currently holds it; ownership moves
// with each Process return. It is not safe for concurrent use.
type Context struct {
	keys   []string
	values map[string]any
}

// NewContext creates an empty context.
func NewContext() *Context {
	return &Context{values: make(map[string]any)}
}

// ContextFrom creates a context holding the entries of m. Keys are inserted
// in sorted order so the result is deterministic.
func ContextFrom(m map[string]any) *Context {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	data := NewContext()
	for _, k := range keys {
		data.Set(k, m[k])
	}

	return data
}

// Set stores value under key. An existing key keeps its position; a new key
// is appended.
func (c *Context) Set(key string, value any) {
	if _, ok := c.values[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.values[key] = value
}

// Get returns the value stored under key, or nil when absent.
func (c *Context) Get(key string) any {
	return c.values[key]
}

// Lookup returns the value stored under key and whether the key exists.
func (c *Context) Lookup(key string) (any, bool) {
	v, ok := c.values[key]

	return v, ok
}

// Has reports whether key exists.
func (c *Context) Has(key string) bool {
	_, ok := c.values[key]

	return ok
}

// Delete removes key. Deleting an absent key is a no-op.
func (c *Context) Delete(key string) {
	if _, ok := c.values[key]; !ok {
		return
	}

	delete(c.values, key)

	for i, k := range c.keys {
		if k == key {
			c.keys = append(c.keys[:i], c.keys[i+1:]...)

			break
		}
	}
}

// Keys returns the keys in insertion order.
func (c *Context) Keys() []string {
	keys := make([]string, len(c.keys))
	copy(keys, c.keys)

	return keys
}

// Len returns the number of entries.
func (c *Context) Len() int {
	return len(c.values)
}

// Clone returns a shallow copy: the key order and the top-level entries are
// copied, nested values stay shared by reference.
func (c *Context) Clone() *Context {
	clone := &Context{
		keys:   make([]string, len(c.keys)),
		values: make(map[string]any, len(c.values)),
	}
	copy(clone.keys, c.keys)

	for k, v := range c.values {
		clone.values[k] = v
	}

	return clone
}

// ToMap returns the entries as a plain map.
func (c *Context) ToMap() map[string]any {
	m := make(map[string]any, len(c.values))
	for k, v := range c.values {
		m[k] = v
	}

	return m
}
