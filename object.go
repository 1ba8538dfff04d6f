package parjson

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// Object is an ordered sequence of key/value pairs stored as two parallel
// slices. Keys are not hashed: lookup is a linear scan and duplicates are
// kept, see HasDuplicateKeys.
type Object struct {
	keys    []Value
	values  []Value
	parent  container
	virtual bool
}

// NewObject creates an empty object with room for capacity pairs
func NewObject(capacity int) *Object {
	if capacity < 0 {
		capacity = 0
	}
	return &Object{
		keys:   make([]Value, 0, capacity),
		values: make([]Value, 0, capacity),
	}
}

// Len returns the number of pairs
func (o *Object) Len() int {
	return len(o.values)
}

// Keys returns the keys in insertion order. The slice is owned by the object.
func (o *Object) Keys() []Value {
	return o.keys
}

// Values returns the values in insertion order. The slice is owned by the object.
func (o *Object) Values() []Value {
	return o.values
}

// Get returns the value of the first pair whose key equals key, or an
// invalid Value
func (o *Object) Get(key string) *Value {
	for i := range o.keys {
		if string(o.keys[i].strBytes()) == key {
			return &o.values[i]
		}
	}
	v := Invalid()
	return &v
}

// Append adds a pair. Duplicate keys are not rejected.
func (o *Object) Append(key string, v Value) {
	o.AppendPair(NewString(key), v)
}

// AppendPair adds a pair with a string Value key
func (o *Object) AppendPair(key, v Value) {
	o.keys = append(o.keys, key)
	o.values = append(o.values, v)
}

// HasDuplicateKeys reports whether two pairs share a key. It sorts key
// indices by hash and bytes, O(n log n).
func (o *Object) HasDuplicateKeys() bool {
	if len(o.keys) < 2 {
		return false
	}

	type entry struct {
		hash uint64
		key  []byte
	}
	entries := make([]entry, len(o.keys))
	for i := range o.keys {
		k := o.keys[i].strBytes()
		entries[i] = entry{hash: xxhash.Sum64(k), key: k}
	}
	slices.SortFunc(entries, func(a, b entry) int {
		if c := cmp.Compare(a.hash, b.hash); c != 0 {
			return c
		}
		return bytes.Compare(a.key, b.key)
	})
	for i := 1; i < len(entries); i++ {
		if entries[i].hash == entries[i-1].hash && bytes.Equal(entries[i].key, entries[i-1].key) {
			return true
		}
	}
	return false
}

// IsVirtual reports whether the object was synthesized at a chunk boundary
func (o *Object) IsVirtual() bool {
	return o.virtual
}

// Clone returns a deep copy
func (o *Object) Clone() *Object {
	out := &Object{
		keys:    make([]Value, len(o.keys)),
		values:  make([]Value, len(o.values)),
		virtual: o.virtual,
	}
	for i := range o.values {
		out.keys[i] = o.keys[i].Clone()
		out.values[i] = o.values[i].Clone()
	}
	return out
}

func (o *Object) kind() Kind                   { return KindObject }
func (o *Object) size() int                    { return len(o.values) }
func (o *Object) isVirtual() bool              { return o.virtual }
func (o *Object) parentNode() container        { return o.parent }
func (o *Object) setParent(p container)        { o.parent = p }
func (o *Object) children() ([]Value, []Value) { return o.keys, o.values }

func (o *Object) reset() {
	o.keys = nil
	o.values = nil
}

func (o *Object) appendChildren(keys, values []Value) error {
	if len(keys) != len(values) {
		return fmt.Errorf("cannot append %d values with %d keys to an object", len(values), len(keys))
	}
	reparent(values, o)
	if len(o.values) == 0 && cap(o.values) < len(values) {
		o.keys, o.values = keys, values
		return nil
	}
	o.keys = append(o.keys, keys...)
	o.values = append(o.values, values...)
	return nil
}
