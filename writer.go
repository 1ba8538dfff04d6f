package parjson

import (
	"fmt"
	"math"

	"github.com/cybergodev/parjson/internal"
)

type eventKind uint8

const (
	evArrayOpen eventKind = iota
	evObjectOpen
	evKey
	evValue
	evArrayClose
	evObjectClose
)

// event is one step of the flattened tree. v is set for keys and values.
type event struct {
	kind eventKind
	v    *Value
}

func (e *event) isOpen() bool {
	return e.kind == evArrayOpen || e.kind == evObjectOpen
}

func (e *event) isClose() bool {
	return e.kind == evArrayClose || e.kind == evObjectClose
}

type flattenFrame struct {
	keys   []Value
	values []Value
	next   int
	close  eventKind
}

// flatten linearises v into document-order events. Values that JSON cannot
// represent are rejected here, before any output is produced.
func flatten(v *Value, events []event) ([]event, error) {
	stack := make([]flattenFrame, 0, 16)

	emit := func(v *Value) error {
		switch v.kind {
		case KindArray:
			events = append(events, event{kind: evArrayOpen})
			stack = append(stack, flattenFrame{values: v.ref.(*Array).values, close: evArrayClose})
		case KindObject:
			o := v.ref.(*Object)
			events = append(events, event{kind: evObjectOpen})
			stack = append(stack, flattenFrame{keys: o.keys, values: o.values, close: evObjectClose})
		case KindFloat:
			if f := math.Float64frombits(v.bits); math.IsNaN(f) || math.IsInf(f, 0) {
				return newOperationError("serialize", fmt.Sprintf("cannot encode %v", f), ErrInvalidValue)
			}
			events = append(events, event{kind: evValue, v: v})
		case KindInt, KindUint, KindBool, KindNull, KindShortString, KindString:
			events = append(events, event{kind: evValue, v: v})
		default:
			return newOperationError("serialize", fmt.Sprintf("cannot encode %s value", v.kind), ErrInvalidValue)
		}
		return nil
	}

	if err := emit(v); err != nil {
		return nil, err
	}
	for len(stack) > 0 {
		top := len(stack) - 1
		f := &stack[top]
		if f.next == len(f.values) {
			events = append(events, event{kind: f.close})
			stack = stack[:top]
			continue
		}
		i := f.next
		f.next++
		if f.keys != nil {
			k := &f.keys[i]
			if !k.IsString() {
				return nil, newOperationError("serialize", fmt.Sprintf("object key of kind %s", k.kind), ErrInvalidValue)
			}
			events = append(events, event{kind: evKey, v: k})
		}
		if err := emit(&f.values[i]); err != nil {
			return nil, err
		}
	}
	return events, nil
}

// segmentRanges slices the event stream for threads writers.
// SegmentsByEvents cuts at near-equal positions; SegmentsByContainers cuts at
// the nodes chosen by planSegments and falls back to one segment when the
// planner cannot split the tree.
func segmentRanges(events []event, threads int, strategy SegmentStrategy) ([]chunkRange, bool) {
	n := len(events)
	if threads <= 1 || n < 2 {
		return []chunkRange{{0, n}}, false
	}

	var cuts []int
	if strategy == SegmentsByContainers {
		planned, ok := planSegments(events, threads)
		if !ok {
			return []chunkRange{{0, n}}, false
		}
		cuts = planned
	} else {
		cuts = make([]int, 0, threads-1)
		for k := 1; k < threads; k++ {
			cuts = append(cuts, k*n/threads)
		}
	}
	ranges := rangesFromCuts(n, cuts)
	return ranges, len(ranges) > 1
}

// renderSegment writes events[rng] to enc. Commas are decided by looking
// one event ahead in the whole stream, so segments need no shared state.
func renderSegment(enc *internal.Encoder, events []event, rng chunkRange, pretty bool) error {
	for j := rng.start; j < rng.end; j++ {
		e := &events[j]
		switch e.kind {
		case evArrayOpen, evObjectOpen:
			if e.kind == evArrayOpen {
				enc.WriteRaw("[")
			} else {
				enc.WriteRaw("{")
			}
			if pretty && j+1 < len(events) && !events[j+1].isClose() {
				enc.WriteRaw(" ")
			}
			continue

		case evKey:
			enc.EncodeString(e.v.strBytes())
			if pretty {
				enc.WriteRaw(" : ")
			} else {
				enc.WriteRaw(":")
			}
			continue

		case evValue:
			if err := encodeScalar(enc, e.v); err != nil {
				return err
			}

		case evArrayClose, evObjectClose:
			if pretty && j > 0 && !events[j-1].isOpen() {
				enc.WriteRaw(" ")
			}
			if e.kind == evArrayClose {
				enc.WriteRaw("]")
			} else {
				enc.WriteRaw("}")
			}
			if pretty {
				enc.WriteRaw("\n")
			}
		}

		if j+1 < len(events) && !events[j+1].isClose() {
			if pretty {
				enc.WriteRaw(", ")
			} else {
				enc.WriteRaw(",")
			}
		}
	}
	return nil
}

func encodeScalar(enc *internal.Encoder, v *Value) error {
	switch v.kind {
	case KindInt:
		enc.EncodeInt(int64(v.bits))
	case KindUint:
		enc.EncodeUint(v.bits)
	case KindFloat:
		if err := enc.EncodeFloat(math.Float64frombits(v.bits)); err != nil {
			return newOperationError("serialize", err.Error(), ErrInvalidValue)
		}
	case KindBool:
		enc.EncodeBool(v.bits == 1)
	case KindNull:
		enc.EncodeNull()
	case KindShortString, KindString:
		enc.EncodeString(v.strBytes())
	default:
		return newOperationError("serialize", fmt.Sprintf("cannot encode %s value", v.kind), ErrInvalidValue)
	}
	return nil
}
