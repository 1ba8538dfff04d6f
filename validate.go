package parjson

import (
	"fmt"

	"github.com/cybergodev/parjson/internal"
)

type validState uint8

const (
	stValue     validState = iota // a value must follow
	stFirstElem                   // container just opened: element or closer
	stElem                        // after a comma: element
	stColon                       // after a key: colon
	stAfter                       // after a value: comma or closer
	stDone                        // root value complete
)

type validFrame struct {
	kind  Kind // KindArray, KindObject or KindNone while a base level is unresolved
	state validState
	count int
	hint  int // index into chunkReport.hints, -1 for base levels and the root
	base  bool
	root  bool
}

// chunkReport is what the validator learns about one chunk. Levels below
// the chunk's first token are called base levels: the chunk can close them
// but cannot see their opening bracket.
type chunkReport struct {
	// closers holds the kinds of the base levels closed in the chunk,
	// innermost first
	closers []Kind
	// base is the kind of the base level the chunk ends in, KindNone when
	// it could not be told from the chunk alone
	base Kind
	// active is set when the chunk has tokens in base after its last
	// leading closer
	active bool
	// trailing holds the kinds of containers opened in the chunk and still
	// open at its end, outermost first
	trailing []Kind
	// hints holds the direct child count of each container opened in the
	// chunk, in opening order
	hints []int
	// items counts values and closers; a chunk with none is skipped by merge
	items    int
	complete bool
}

type chunkValidator struct {
	tok    *internal.Tokens
	rng    chunkRange
	index  int
	frames []validFrame
	report chunkReport
}

// validateChunk checks the grammar of one chunk. Chunk 0 starts at the
// document root. Any other chunk starts in a base level whose state follows
// from the token before the chunk; its kind is resolved by the first
// element when that token does not tell it.
func validateChunk(tok *internal.Tokens, rng chunkRange, index int) (*chunkReport, error) {
	v := &chunkValidator{tok: tok, rng: rng, index: index, frames: make([]validFrame, 0, 16)}
	if rng.start == 0 {
		v.frames = append(v.frames, validFrame{kind: KindNone, state: stValue, hint: -1, root: true})
	} else {
		base := validFrame{kind: KindNone, hint: -1, base: true}
		switch tok.Byte(rng.start - 1) {
		case ',':
			base.state = stElem
		case '[':
			base.kind, base.state = KindArray, stFirstElem
		case '{':
			base.kind, base.state = KindObject, stFirstElem
		case ':':
			return nil, newGrammarError(tok.Offset(rng.start), index, "chunk boundary inside an object member")
		default:
			base.state = stAfter
		}
		v.frames = append(v.frames, base)
		v.report.active = true
	}

	for i := rng.start; i < rng.end; i++ {
		if err := v.step(i); err != nil {
			return nil, err
		}
	}
	v.finish()
	return &v.report, nil
}

func (v *chunkValidator) fail(i int, format string, args ...any) error {
	return newGrammarError(v.tok.Offset(i), v.index, fmt.Sprintf(format, args...))
}

func (v *chunkValidator) step(i int) error {
	top := &v.frames[len(v.frames)-1]
	b := v.tok.Byte(i)

	switch top.state {
	case stFirstElem, stElem:
		if b == ']' || b == '}' {
			if top.state == stElem {
				return v.fail(i, "unexpected %q after comma", b)
			}
			return v.close(i, b)
		}
		if top.kind == KindNone {
			top.kind = v.lookahead(i)
		}
		top.count++
		if top.kind == KindObject {
			if b != '"' {
				return v.fail(i, "object key must be a string, got %q", b)
			}
			top.state = stColon
			return nil
		}
		return v.value(i, b, top)

	case stColon:
		if b != ':' {
			return v.fail(i, "expected ':' after object key, got %q", b)
		}
		top.state = stValue
		return nil

	case stValue:
		return v.value(i, b, top)

	case stAfter:
		switch b {
		case ',':
			top.state = stElem
			if top.base {
				v.report.active = true
			}
			return nil
		case ']', '}':
			return v.close(i, b)
		}
		return v.fail(i, "expected ',' or closing bracket, got %q", b)

	case stDone:
		if b == ']' || b == '}' {
			return v.fail(i, "unexpected %q at the document root", b)
		}
		return newParseError(v.tok.Offset(i), v.index,
			fmt.Sprintf("unexpected %q after the root value", b), ErrMultipleRoots)
	}
	return v.fail(i, "invalid validator state")
}

// lookahead resolves a base level at an element start: a string followed
// by a colon is a key, anything else is an array element
func (v *chunkValidator) lookahead(i int) Kind {
	if v.tok.Byte(i) == '"' && i+1 < v.rng.end && v.tok.Byte(i+1) == ':' {
		return KindObject
	}
	return KindArray
}

// value consumes a value token in parent
func (v *chunkValidator) value(i int, b byte, parent *validFrame) error {
	v.report.items++
	if parent.root {
		parent.state = stDone
	} else {
		parent.state = stAfter
	}

	switch b {
	case '{', '[':
		kind := KindArray
		if b == '{' {
			kind = KindObject
		}
		v.frames = append(v.frames, validFrame{kind: kind, state: stFirstElem, hint: len(v.report.hints)})
		v.report.hints = append(v.report.hints, 0)
		return nil
	case '"', '-', 't', 'f', 'n':
		return nil
	}
	if internal.IsDigit(b) {
		return nil
	}
	return v.fail(i, "unexpected %q where a value was expected", b)
}

// close pops the innermost frame. Popping a base level records it as a
// leading closer and moves to the enclosing base level.
func (v *chunkValidator) close(i int, b byte) error {
	kind := KindArray
	if b == '}' {
		kind = KindObject
	}
	top := v.frames[len(v.frames)-1]
	if top.root {
		return v.fail(i, "unexpected %q at the document root", b)
	}
	if top.kind != KindNone && top.kind != kind {
		return v.fail(i, "%q closes %s", b, top.kind)
	}

	v.frames = v.frames[:len(v.frames)-1]
	if top.hint >= 0 {
		v.report.hints[top.hint] = top.count
	}
	if top.base {
		v.report.items++
		v.report.closers = append(v.report.closers, kind)
		v.report.active = false
		v.frames = append(v.frames, validFrame{kind: KindNone, state: stAfter, hint: -1, base: true})
	}
	return nil
}

func (v *chunkValidator) finish() {
	first := 0
	if v.frames[0].base {
		v.report.base = v.frames[0].kind
		first = 1
	} else if v.frames[0].root {
		first = 1
	}
	for _, f := range v.frames[first:] {
		v.report.trailing = append(v.report.trailing, f.kind)
		if f.hint >= 0 {
			v.report.hints[f.hint] = f.count
		}
	}
	last := v.frames[len(v.frames)-1]
	v.report.complete = last.state == stDone || (last.state == stAfter && len(v.frames) == 1)
}

// checkBoundaries replays the reports in document order against a stack of
// open container kinds. Each chunk's leading closers must match, in reverse,
// what earlier chunks left open, and the whole document must end balanced.
func checkBoundaries(reports []*chunkReport, ranges []chunkRange, tok *internal.Tokens) error {
	stack := make([]Kind, 0, 16)
	for ci, r := range reports {
		offset := tok.Offset(ranges[ci].start)
		for _, k := range r.closers {
			if len(stack) == 0 {
				return newGrammarError(offset, ci, fmt.Sprintf("closing %s without an open container", k))
			}
			top := stack[len(stack)-1]
			if top != k {
				return newGrammarError(offset, ci, fmt.Sprintf("closing %s where %s is open", k, top))
			}
			stack = stack[:len(stack)-1]
		}

		if ci > 0 && r.active {
			if len(stack) == 0 {
				return newParseError(offset, ci, "value after the root value", ErrMultipleRoots)
			}
			if r.base != KindNone && stack[len(stack)-1] != r.base {
				return newGrammarError(offset, ci,
					fmt.Sprintf("chunk continues %s where %s is open", r.base, stack[len(stack)-1]))
			}
		}
		stack = append(stack, r.trailing...)
	}

	last := len(reports) - 1
	if len(stack) > 0 || !reports[last].complete {
		return newGrammarError(len(tok.Data), last, "unexpected end of input")
	}
	return nil
}
