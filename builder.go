package parjson

import (
	"fmt"

	"github.com/cybergodev/parjson/internal"
)

// chunkTree is the builder output for one chunk
type chunkTree struct {
	root *PartialJSON
	// tail is the innermost container still open at the end of the chunk,
	// nil when the chunk left nothing open
	tail container
}

// chunkBuilder turns one validated chunk into a partial tree. A builder is
// used by one goroutine; its scratch buffer is reused across strings.
type chunkBuilder struct {
	tok     *internal.Tokens
	rng     chunkRange
	index   int
	hints   []int
	opened  int
	scratch []byte
}

func newChunkBuilder(tok *internal.Tokens, rng chunkRange, index int, report *chunkReport) *chunkBuilder {
	b := &chunkBuilder{tok: tok, rng: rng, index: index}
	if report != nil {
		b.hints = report.hints
	}
	return b
}

func (b *chunkBuilder) build() (*chunkTree, error) {
	root := newPartialJSON(4)
	var cur container = root
	var key Value
	hasKey := false

	for i := b.rng.start; i < b.rng.end; i++ {
		c := b.tok.Byte(i)
		switch c {
		case ',', ':':
			continue

		case '{', '[':
			child := b.open(c)
			if err := b.add(cur, root, &key, &hasKey, valueOf(child)); err != nil {
				return nil, newGrammarError(b.tok.Offset(i), b.index, err.Error())
			}
			cur = child

		case '}', ']':
			if hasKey {
				return nil, newGrammarError(b.tok.Offset(i), b.index, "object key without value")
			}
			kind := KindArray
			if c == '}' {
				kind = KindObject
			}
			if cur != container(root) {
				if cur.kind() != kind {
					return nil, newGrammarError(b.tok.Offset(i), b.index, fmt.Sprintf("%q closes %s", c, cur.kind()))
				}
				cur = cur.parentNode()
				continue
			}
			if err := wrapRoot(root, kind); err != nil {
				return nil, newGrammarError(b.tok.Offset(i), b.index, err.Error())
			}

		case '"':
			v, err := b.decodeString(i)
			if err != nil {
				return nil, err
			}
			if i+1 < b.rng.end && b.tok.Byte(i+1) == ':' {
				key, hasKey = v, true
				continue
			}
			if err := b.add(cur, root, &key, &hasKey, v); err != nil {
				return nil, newGrammarError(b.tok.Offset(i), b.index, err.Error())
			}

		default:
			v, err := b.decodeScalar(i)
			if err != nil {
				return nil, err
			}
			if err := b.add(cur, root, &key, &hasKey, v); err != nil {
				return nil, newGrammarError(b.tok.Offset(i), b.index, err.Error())
			}
		}
	}

	t := &chunkTree{root: root}
	if cur != container(root) {
		t.tail = cur
	}
	return t, nil
}

// open creates the container for an opening bracket, pre-sized from the
// validator's child count
func (b *chunkBuilder) open(c byte) container {
	capacity := 0
	if b.opened < len(b.hints) {
		capacity = b.hints[b.opened]
	}
	b.opened++
	if c == '{' {
		return NewObject(capacity)
	}
	return NewArray(capacity)
}

// add stores v in cur, pairing it with the pending key when there is one
func (b *chunkBuilder) add(cur container, root *PartialJSON, key *Value, hasKey *bool, v Value) error {
	child := containerOf(&v)
	if cur == container(root) {
		if *hasKey {
			*hasKey = false
			return root.addPair(key.Take(), v)
		}
		return root.addValue(v)
	}

	switch t := cur.(type) {
	case *Array:
		if *hasKey {
			return fmt.Errorf("key/value pair inside an array")
		}
		t.Append(v)
	case *Object:
		if !*hasKey {
			return fmt.Errorf("object value without a key")
		}
		*hasKey = false
		t.AppendPair(key.Take(), v)
	}
	if child != nil {
		child.setParent(cur)
	}
	return nil
}

// wrapRoot handles a closer whose bracket was opened in an earlier chunk:
// everything collected at the chunk root moves into a virtual container of
// the closer's kind, which becomes the root's only child
func wrapRoot(root *PartialJSON, kind Kind) error {
	var keys, values []Value
	switch {
	case root.hasVirtual():
		values = []Value{root.virtualJSON.Take()}
		if kind == KindObject {
			keys = []Value{Invalid()}
		}
	case root.shape == KindNone:
	case root.shape != kind:
		return fmt.Errorf("closing %s around %s content", kind, root.shape)
	default:
		keys, values = root.keys, root.values
	}

	w := newVirtual(kind, 0)
	if err := w.appendChildren(keys, values); err != nil {
		return err
	}
	root.reset()
	root.setVirtual(valueOf(w))
	return nil
}

func (b *chunkBuilder) decodeString(i int) (Value, error) {
	span := b.tok.Span(i)
	if cap(b.scratch) < len(span) {
		b.scratch = make([]byte, 0, 2*len(span))
	}
	s, err := internal.DecodeString(span, b.scratch)
	if err != nil {
		return Value{}, b.decodeError(i, err)
	}
	return newStringBytes(s), nil
}

func (b *chunkBuilder) decodeScalar(i int) (Value, error) {
	span := b.tok.Span(i)
	switch span[0] {
	case 't', 'f', 'n':
		lit, err := internal.DecodeLiteral(span)
		if err != nil {
			return Value{}, b.decodeError(i, err)
		}
		switch lit {
		case internal.LiteralTrue:
			return NewBool(true), nil
		case internal.LiteralFalse:
			return NewBool(false), nil
		}
		return NewNull(), nil
	}

	num, err := internal.DecodeNumber(span)
	if err != nil {
		return Value{}, b.decodeError(i, err)
	}
	switch num.Kind {
	case internal.NumberInt:
		return NewInt(num.Int), nil
	case internal.NumberUint:
		return NewUint(num.Uint), nil
	}
	return NewFloat(num.Float), nil
}

func (b *chunkBuilder) decodeError(i int, err error) error {
	return classifyInternal(&internal.SyntaxError{Offset: b.tok.Offset(i), Msg: err.Error(), Err: err}, b.index)
}
