package parjson

import "fmt"

// Array is an ordered sequence of values. It owns every container among its
// elements.
type Array struct {
	values  []Value
	parent  container
	virtual bool
}

// NewArray creates an empty array with room for capacity elements
func NewArray(capacity int) *Array {
	if capacity < 0 {
		capacity = 0
	}
	return &Array{values: make([]Value, 0, capacity)}
}

// Len returns the number of elements
func (a *Array) Len() int {
	return len(a.values)
}

// At returns the element at i, or an invalid Value when i is out of range
func (a *Array) At(i int) *Value {
	if i < 0 || i >= len(a.values) {
		v := Invalid()
		return &v
	}
	return &a.values[i]
}

// Append moves v to the end of the array
func (a *Array) Append(v Value) {
	a.values = append(a.values, v)
}

// Values returns the elements. The slice is owned by the array.
func (a *Array) Values() []Value {
	return a.values
}

// IsVirtual reports whether the array was synthesized at a chunk boundary
func (a *Array) IsVirtual() bool {
	return a.virtual
}

// Clone returns a deep copy
func (a *Array) Clone() *Array {
	out := &Array{values: make([]Value, len(a.values)), virtual: a.virtual}
	for i := range a.values {
		out.values[i] = a.values[i].Clone()
	}
	return out
}

func (a *Array) kind() Kind                   { return KindArray }
func (a *Array) size() int                    { return len(a.values) }
func (a *Array) isVirtual() bool              { return a.virtual }
func (a *Array) parentNode() container        { return a.parent }
func (a *Array) setParent(p container)        { a.parent = p }
func (a *Array) children() ([]Value, []Value) { return nil, a.values }
func (a *Array) reset()                       { a.values = nil }

func (a *Array) appendChildren(keys, values []Value) error {
	if len(keys) > 0 {
		return fmt.Errorf("cannot append %d key/value pairs to an array", len(keys))
	}
	reparent(values, a)
	if len(a.values) == 0 && cap(a.values) < len(values) {
		a.values = values
		return nil
	}
	a.values = append(a.values, values...)
	return nil
}
