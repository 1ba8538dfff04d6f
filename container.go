package parjson

// container is implemented by Array, Object and PartialJSON. The chunk
// builder and the merge engine work against this interface only.
type container interface {
	kind() Kind
	size() int
	isVirtual() bool

	// parentNode is a non-owning upward link, valid only while a document is
	// being built and merged
	parentNode() container
	setParent(container)

	// children returns the direct children; keys is nil when the container
	// is array-shaped
	children() (keys, values []Value)
	// appendChildren takes ownership of keys and values and re-parents any
	// container among them
	appendChildren(keys, values []Value) error
	// reset forgets the children after they were moved to another container
	reset()
}

// containerOf returns the container referenced by v, or nil
func containerOf(v *Value) container {
	switch v.kind {
	case KindArray, KindObject, KindPartial:
		return v.ref
	}
	return nil
}

// reparent points every container among values at parent
func reparent(values []Value, parent container) {
	for i := range values {
		if c := containerOf(&values[i]); c != nil {
			c.setParent(parent)
		}
	}
}

// detachParents clears every parent link below v so that no upward
// traversal survives the merge
func detachParents(v *Value) {
	stack := []container{containerOf(v)}
	if stack[0] == nil {
		return
	}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		c.setParent(nil)
		_, values := c.children()
		for i := range values {
			if child := containerOf(&values[i]); child != nil {
				stack = append(stack, child)
			}
		}
	}
}

// newVirtual creates an empty virtual container of the given kind
func newVirtual(k Kind, capacity int) container {
	if k == KindObject {
		o := NewObject(capacity)
		o.virtual = true
		return o
	}
	a := NewArray(capacity)
	a.virtual = true
	return a
}

// valueOf wraps a container into an owning Value
func valueOf(c container) Value {
	switch t := c.(type) {
	case *Array:
		return NewArrayValue(t)
	case *Object:
		return NewObjectValue(t)
	case *PartialJSON:
		return newPartialValue(t)
	}
	return Invalid()
}
