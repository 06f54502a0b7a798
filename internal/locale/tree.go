// Package locale provides the ordered key-value tree that a parsed
// localization file is loaded into.
package locale

import "fmt"

// Tree is a nested mapping from string keys to values. A value is either a
// scalar (string, number, bool, nil), an opaque list, or another *Tree.
// Keys iterate in insertion order, which is the order they appear in the
// source document.
type Tree struct {
	keys   []string
	values map[string]interface{}
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{values: make(map[string]interface{})}
}

// Set stores value under key. A new key is appended to the iteration
// order; setting an existing key keeps its original position.
func (t *Tree) Set(key string, value interface{}) {
	if t.values == nil {
		t.values = make(map[string]interface{})
	}
	if _, exists := t.values[key]; !exists {
		t.keys = append(t.keys, key)
	}
	t.values[key] = value
}

// Get returns the value stored under key and whether the key is present.
func (t *Tree) Get(key string) (interface{}, bool) {
	if t == nil {
		return nil, false
	}
	v, ok := t.values[key]
	return v, ok
}

// Has reports whether key is present.
func (t *Tree) Has(key string) bool {
	_, ok := t.Get(key)
	return ok
}

// Subtree returns the nested tree stored under key. ok is false when the
// key is absent or holds a non-mapping value.
func (t *Tree) Subtree(key string) (*Tree, bool) {
	v, ok := t.Get(key)
	if !ok {
		return nil, false
	}
	sub, ok := v.(*Tree)
	return sub, ok && sub != nil
}

// Keys returns the keys in insertion order. The returned slice is a copy.
func (t *Tree) Keys() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Len returns the number of keys at this level.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}

// Ensure returns the subtree under key, creating it when the key is absent.
// An existing non-mapping value is left alone and ok is false.
func (t *Tree) Ensure(key string) (sub *Tree, ok bool) {
	if v, exists := t.Get(key); exists {
		sub, ok = v.(*Tree)
		return sub, ok
	}
	sub = New()
	t.Set(key, sub)
	return sub, true
}

// LeafCount returns the number of non-mapping values in the tree,
// counted recursively.
func (t *Tree) LeafCount() int {
	count := 0
	for _, k := range t.Keys() {
		if sub, ok := t.Subtree(k); ok {
			count += sub.LeafCount()
			continue
		}
		count++
	}
	return count
}

// Of builds a tree from alternating key, value arguments, keeping the
// argument order. It panics if a key is not a string or a value is
// missing, so it is meant for literals in tests and examples.
//
//	locale.Of("home", locale.Of("title", "Welcome"), "version", 2)
func Of(pairs ...interface{}) *Tree {
	if len(pairs)%2 != 0 {
		panic("locale.Of: odd number of arguments")
	}
	t := New()
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("locale.Of: key at position %d is %T, not string", i, pairs[i]))
		}
		t.Set(key, pairs[i+1])
	}
	return t
}
