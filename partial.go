package parjson

import "fmt"

// PartialJSON is the scratch root of one parse chunk. It holds at most one
// of: an array-shaped list, an object-shaped list, or a single virtualJSON
// child. The virtualJSON slot means the chunk's real content starts one
// level above what the chunk closed itself. A PartialJSON never appears in a
// finished document.
type PartialJSON struct {
	shape       Kind // KindNone until the first list item, then KindArray or KindObject
	keys        []Value
	values      []Value
	virtualJSON Value
}

func newPartialJSON(capacity int) *PartialJSON {
	return &PartialJSON{values: make([]Value, 0, capacity)}
}

// hasVirtual reports whether the virtualJSON slot is occupied
func (p *PartialJSON) hasVirtual() bool {
	return p.virtualJSON.kind != KindNone
}

// setVirtual stores w as the only content. The lists must be empty.
func (p *PartialJSON) setVirtual(w Value) {
	p.shape = KindNone
	p.keys, p.values = nil, nil
	p.virtualJSON = w
	if c := containerOf(&p.virtualJSON); c != nil {
		c.setParent(p)
	}
}

// materialize turns a pending virtualJSON child into the first list entry
// once a sibling arrives. For an object-shaped list the entry gets an
// invalid key: it is a continuation, not a pair.
func (p *PartialJSON) materialize(shape Kind) {
	p.shape = shape
	if !p.hasVirtual() {
		return
	}
	w := p.virtualJSON.Take()
	if shape == KindObject {
		p.keys = append(p.keys, Invalid())
	}
	p.values = append(p.values, w)
}

// addValue appends an array-shaped item
func (p *PartialJSON) addValue(v Value) error {
	if p.shape == KindObject {
		return fmt.Errorf("array element in object-shaped fragment")
	}
	if p.shape == KindNone {
		p.materialize(KindArray)
	}
	if c := containerOf(&v); c != nil {
		c.setParent(p)
	}
	p.values = append(p.values, v)
	return nil
}

// addPair appends an object-shaped item
func (p *PartialJSON) addPair(k, v Value) error {
	if p.shape == KindArray {
		return fmt.Errorf("key/value pair in array-shaped fragment")
	}
	if p.shape == KindNone {
		p.materialize(KindObject)
	}
	if c := containerOf(&v); c != nil {
		c.setParent(p)
	}
	p.keys = append(p.keys, k)
	p.values = append(p.values, v)
	return nil
}

// first returns the leading child, which is where a chain of virtual
// wrappers starts
func (p *PartialJSON) first() *Value {
	if p.hasVirtual() {
		return &p.virtualJSON
	}
	if len(p.values) > 0 {
		return &p.values[0]
	}
	return nil
}

func (p *PartialJSON) clone() *PartialJSON {
	out := &PartialJSON{shape: p.shape, virtualJSON: p.virtualJSON.Clone()}
	if p.keys != nil {
		out.keys = make([]Value, len(p.keys))
		for i := range p.keys {
			out.keys[i] = p.keys[i].Clone()
		}
	}
	out.values = make([]Value, len(p.values))
	for i := range p.values {
		out.values[i] = p.values[i].Clone()
	}
	return out
}

func (p *PartialJSON) kind() Kind {
	if p.shape == KindNone {
		return KindPartial
	}
	return p.shape
}

func (p *PartialJSON) size() int {
	if p.hasVirtual() {
		return 1
	}
	return len(p.values)
}

func (p *PartialJSON) isVirtual() bool       { return false }
func (p *PartialJSON) parentNode() container { return nil }
func (p *PartialJSON) setParent(container)   {}

func (p *PartialJSON) children() ([]Value, []Value) {
	if p.hasVirtual() {
		return nil, []Value{p.virtualJSON}
	}
	return p.keys, p.values
}

func (p *PartialJSON) reset() {
	p.shape = KindNone
	p.keys, p.values = nil, nil
	p.virtualJSON = Value{}
}

func (p *PartialJSON) appendChildren(keys, values []Value) error {
	if len(values) == 0 {
		return nil
	}
	shape := KindArray
	if len(keys) > 0 {
		shape = KindObject
	}
	if p.shape != KindNone && p.shape != shape {
		return fmt.Errorf("cannot append %s items to %s-shaped fragment", shape, p.shape)
	}
	p.materialize(shape)
	reparent(values, p)
	p.keys = append(p.keys, keys...)
	p.values = append(p.values, values...)
	return nil
}
