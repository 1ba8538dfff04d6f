package parjson

import (
	"bytes"
	"cmp"
	"math"

	"github.com/cybergodev/parjson/internal"
)

// Kind is the type tag of a Value
type Kind uint8

const (
	KindNone        Kind = iota // typeless, the zero Value and the result of Clear
	KindInt                     // int64
	KindUint                    // uint64 that does not fit int64
	KindFloat                   // float64
	KindBool                    // true or false
	KindNull                    // null
	KindShortString             // string of at most 10 bytes stored inline
	KindString                  // heap string
	KindArray                   // owning reference to an *Array
	KindObject                  // owning reference to an *Object
	KindPartial                 // owning reference to a *PartialJSON, never in a finished tree
	KindInvalid                 // lookup or allocation failure, distinct from null
)

var kindNames = [...]string{
	KindNone:        "none",
	KindInt:         "int",
	KindUint:        "uint",
	KindFloat:       "float",
	KindBool:        "bool",
	KindNull:        "null",
	KindShortString: "short_string",
	KindString:      "string",
	KindArray:       "array",
	KindObject:      "object",
	KindPartial:     "partial",
	KindInvalid:     "invalid",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Value is a JSON value: a closed sum over the Kind constants.
//
// A Value owns the container it references. Values are meant to be moved,
// not copied: assigning a container Value to two places makes both share the
// same container. Use Take to move a value out of its slot and Clone to get
// an independent copy.
type Value struct {
	kind     Kind
	shortLen uint8
	short    [internal.MaxShortString]byte
	bits     uint64 // int64, uint64, float64 bits or bool
	str      []byte // heap string storage
	ref      container
}

// ============================================================================
// CONSTRUCTORS
// ============================================================================

// NewInt returns a signed integer Value
func NewInt(n int64) Value {
	return Value{kind: KindInt, bits: uint64(n)}
}

// NewUint returns an unsigned integer Value
func NewUint(n uint64) Value {
	return Value{kind: KindUint, bits: n}
}

// NewFloat returns a floating point Value
func NewFloat(f float64) Value {
	return Value{kind: KindFloat, bits: math.Float64bits(f)}
}

// NewBool returns a boolean Value
func NewBool(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.bits = 1
	}
	return v
}

// NewNull returns a null Value
func NewNull() Value {
	return Value{kind: KindNull}
}

// NewString returns a string Value. Strings up to 10 bytes are stored inline.
func NewString(s string) Value {
	var v Value
	v.SetString(s)
	return v
}

// newStringBytes copies b into a new string Value
func newStringBytes(b []byte) Value {
	var v Value
	v.setStringBytes(b)
	return v
}

// NewArrayValue returns a Value owning a; a nil a creates an empty array
func NewArrayValue(a *Array) Value {
	if a == nil {
		a = NewArray(0)
	}
	return Value{kind: KindArray, ref: a}
}

// NewObjectValue returns a Value owning o; a nil o creates an empty object
func NewObjectValue(o *Object) Value {
	if o == nil {
		o = NewObject(0)
	}
	return Value{kind: KindObject, ref: o}
}

func newPartialValue(p *PartialJSON) Value {
	return Value{kind: KindPartial, ref: p}
}

// Invalid returns the invalid marker Value
func Invalid() Value {
	return Value{kind: KindInvalid}
}

// ============================================================================
// TYPE PREDICATES
// ============================================================================

// Kind returns the type tag
func (v *Value) Kind() Kind { return v.kind }

func (v *Value) IsNone() bool    { return v.kind == KindNone }
func (v *Value) IsInt() bool     { return v.kind == KindInt }
func (v *Value) IsUint() bool    { return v.kind == KindUint }
func (v *Value) IsFloat() bool   { return v.kind == KindFloat }
func (v *Value) IsBool() bool    { return v.kind == KindBool }
func (v *Value) IsNull() bool    { return v.kind == KindNull }
func (v *Value) IsArray() bool   { return v.kind == KindArray }
func (v *Value) IsObject() bool  { return v.kind == KindObject }
func (v *Value) IsPartial() bool { return v.kind == KindPartial }
func (v *Value) IsInvalid() bool { return v.kind == KindInvalid }

// IsNumber reports whether v is an int, uint or float
func (v *Value) IsNumber() bool {
	return v.kind == KindInt || v.kind == KindUint || v.kind == KindFloat
}

// IsString reports whether v holds a string, inline or on the heap
func (v *Value) IsString() bool {
	return v.kind == KindShortString || v.kind == KindString
}

// IsShortString reports whether v holds an inline string
func (v *Value) IsShortString() bool { return v.kind == KindShortString }

// IsContainer reports whether v references an Array or Object
func (v *Value) IsContainer() bool {
	return v.kind == KindArray || v.kind == KindObject
}

// ============================================================================
// ACCESSORS
// ============================================================================

// AsArray returns the referenced array, or nil when v is not an array
func (v *Value) AsArray() *Array {
	if v.kind != KindArray {
		return nil
	}
	return v.ref.(*Array)
}

// AsObject returns the referenced object, or nil when v is not an object
func (v *Value) AsObject() *Object {
	if v.kind != KindObject {
		return nil
	}
	return v.ref.(*Object)
}

// Int returns the signed integer payload
func (v *Value) Int() (int64, bool) {
	return int64(v.bits), v.kind == KindInt
}

// Uint returns the unsigned integer payload
func (v *Value) Uint() (uint64, bool) {
	return v.bits, v.kind == KindUint
}

// Float returns the floating point payload
func (v *Value) Float() (float64, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return math.Float64frombits(v.bits), true
}

// Bool returns the boolean payload
func (v *Value) Bool() (bool, bool) {
	return v.bits == 1, v.kind == KindBool
}

// Str returns the string payload
func (v *Value) Str() (string, bool) {
	if !v.IsString() {
		return "", false
	}
	return string(v.strBytes()), true
}

// strBytes returns the string payload without copying. The slice aliases
// v and must not be retained past the next mutation.
func (v *Value) strBytes() []byte {
	switch v.kind {
	case KindShortString:
		return v.short[:v.shortLen]
	case KindString:
		return v.str
	}
	return nil
}

// Size returns the number of children of an array or object, 0 otherwise
func (v *Value) Size() int {
	if v.kind == KindArray || v.kind == KindObject || v.kind == KindPartial {
		return v.ref.size()
	}
	return 0
}

// ValueList returns the elements of an array or the values of an object
func (v *Value) ValueList() []Value {
	switch v.kind {
	case KindArray:
		return v.ref.(*Array).values
	case KindObject:
		return v.ref.(*Object).values
	}
	return nil
}

// KeyList returns the keys of an object, nil for anything else
func (v *Value) KeyList() []Value {
	if v.kind == KindObject {
		return v.ref.(*Object).keys
	}
	return nil
}

// ============================================================================
// MUTATORS
// ============================================================================

// Clear resets v to the typeless state. A referenced container is not
// touched; Take it first if it is still needed.
func (v *Value) Clear() {
	*v = Value{}
}

// Take moves the payload out of v and leaves v typeless
func (v *Value) Take() Value {
	out := *v
	*v = Value{}
	return out
}

func (v *Value) SetInt(n int64)     { *v = NewInt(n) }
func (v *Value) SetUint(n uint64)   { *v = NewUint(n) }
func (v *Value) SetFloat(f float64) { *v = NewFloat(f) }
func (v *Value) SetBool(b bool)     { *v = NewBool(b) }
func (v *Value) SetNull()           { *v = NewNull() }
func (v *Value) SetInvalid()        { *v = Invalid() }

// SetArray makes v own a
func (v *Value) SetArray(a *Array) { *v = NewArrayValue(a) }

// SetObject makes v own o
func (v *Value) SetObject(o *Object) { *v = NewObjectValue(o) }

// SetString stores s. When v already holds a heap string its storage is
// reused if large enough.
func (v *Value) SetString(s string) {
	if len(s) <= internal.MaxShortString {
		*v = Value{kind: KindShortString, shortLen: uint8(len(s))}
		copy(v.short[:], s)
		return
	}
	var buf []byte
	if v.kind == KindString {
		buf = v.str[:0]
	}
	*v = Value{kind: KindString, str: append(buf, s...)}
}

func (v *Value) setStringBytes(b []byte) {
	if len(b) <= internal.MaxShortString {
		*v = Value{kind: KindShortString, shortLen: uint8(len(b))}
		copy(v.short[:], b)
		return
	}
	var buf []byte
	if v.kind == KindString {
		buf = v.str[:0]
	}
	*v = Value{kind: KindString, str: append(buf, b...)}
}

// ============================================================================
// CLONE AND COMPARISON
// ============================================================================

// Clone returns a deep, fully independent copy of v
func (v *Value) Clone() Value {
	switch v.kind {
	case KindString:
		return Value{kind: KindString, str: bytes.Clone(v.str)}
	case KindArray:
		return NewArrayValue(v.ref.(*Array).Clone())
	case KindObject:
		return NewObjectValue(v.ref.(*Object).Clone())
	case KindPartial:
		return newPartialValue(v.ref.(*PartialJSON).clone())
	}
	return *v
}

// Equal reports structural equality. Values of different types are never
// equal; short and heap strings count as the same type.
func (v *Value) Equal(other *Value) bool {
	c, ok := v.Compare(other)
	return ok && c == 0
}

// Compare orders two values of the same type. ok is false when the types
// differ or the values are not comparable.
func (v *Value) Compare(other *Value) (int, bool) {
	if v.IsString() && other.IsString() {
		return bytes.Compare(v.strBytes(), other.strBytes()), true
	}
	if v.kind != other.kind {
		return 0, false
	}

	switch v.kind {
	case KindNone, KindNull, KindInvalid:
		return 0, true
	case KindInt:
		return cmp.Compare(int64(v.bits), int64(other.bits)), true
	case KindUint:
		return cmp.Compare(v.bits, other.bits), true
	case KindFloat:
		a, b := math.Float64frombits(v.bits), math.Float64frombits(other.bits)
		if math.IsNaN(a) || math.IsNaN(b) {
			return 0, false
		}
		return cmp.Compare(a, b), true
	case KindBool:
		return cmp.Compare(v.bits, other.bits), true
	case KindArray:
		return compareLists(nil, v.ref.(*Array).values, nil, other.ref.(*Array).values)
	case KindObject:
		a, b := v.ref.(*Object), other.ref.(*Object)
		return compareLists(a.keys, a.values, b.keys, b.values)
	case KindPartial:
		if v.ref == other.ref {
			return 0, true
		}
	}
	return 0, false
}

// compareLists compares element-wise, keys before values, then by length
func compareLists(ak, av, bk, bv []Value) (int, bool) {
	n := min(len(av), len(bv))
	for i := 0; i < n; i++ {
		if ak != nil {
			if c, ok := ak[i].Compare(&bk[i]); !ok || c != 0 {
				return c, ok
			}
		}
		if c, ok := av[i].Compare(&bv[i]); !ok || c != 0 {
			return c, ok
		}
	}
	return cmp.Compare(len(av), len(bv)), true
}

// String renders v as compact JSON; unserializable values render as their kind
func (v *Value) String() string {
	out, err := getDefaultParser().serialize(v, 1, false)
	if err != nil {
		return "<" + v.kind.String() + ">"
	}
	return string(out)
}
