package parjson

import (
	"math"
	"strings"
	"testing"
)

// ============================================================================
// CONSTRUCTORS AND ACCESSORS
// ============================================================================

func TestValue_Scalars(t *testing.T) {
	i, one := NewInt(-42), NewInt(1)
	if n, ok := i.Int(); !ok || n != -42 {
		t.Errorf("Int() = %d, %v", n, ok)
	}
	if _, ok := one.Uint(); ok {
		t.Error("int reported as uint")
	}
	u := NewUint(math.MaxUint64)
	if n, ok := u.Uint(); !ok || n != math.MaxUint64 {
		t.Errorf("Uint() = %d, %v", n, ok)
	}
	f := NewFloat(2.5)
	if x, ok := f.Float(); !ok || x != 2.5 {
		t.Errorf("Float() = %v, %v", x, ok)
	}
	b := NewBool(true)
	if x, ok := b.Bool(); !ok || !x {
		t.Errorf("Bool() = %v, %v", x, ok)
	}

	null := NewNull()
	if !null.IsNull() || null.IsInvalid() {
		t.Error("null is not null")
	}
	inv := Invalid()
	if !inv.IsInvalid() || inv.IsNull() {
		t.Error("invalid marker confused with null")
	}
	var zero Value
	if !zero.IsNone() {
		t.Errorf("zero value kind = %s", zero.Kind())
	}
}

func TestValue_ShortAndHeapStrings(t *testing.T) {
	tests := []struct {
		s     string
		short bool
	}{
		{"", true},
		{"a", true},
		{"0123456789", true},
		{"0123456789a", false},
		{strings.Repeat("x", 100), false},
	}
	for _, tt := range tests {
		v := NewString(tt.s)
		if v.IsShortString() != tt.short {
			t.Errorf("%q: short = %v, want %v", tt.s, v.IsShortString(), tt.short)
		}
		if !v.IsString() {
			t.Errorf("%q: not a string", tt.s)
		}
		if got, _ := v.Str(); got != tt.s {
			t.Errorf("Str() = %q, want %q", got, tt.s)
		}
	}

	short, heap := NewString("abc"), NewString(strings.Repeat("abc", 10))
	if short.Equal(&heap) {
		t.Error("different strings equal")
	}
	a, b := NewString("same"), NewString("same")
	if !a.Equal(&b) {
		t.Error("equal short strings differ")
	}
}

func TestValue_SetStringReusesStorage(t *testing.T) {
	v := NewString(strings.Repeat("a", 64))
	before := &v.str[:1][0]

	v.SetString(strings.Repeat("b", 32))
	if &v.str[:1][0] != before {
		t.Error("heap storage not reused for a shorter string")
	}
	if s, _ := v.Str(); s != strings.Repeat("b", 32) {
		t.Errorf("Str() = %q", s)
	}

	v.SetString("tiny")
	if !v.IsShortString() {
		t.Error("short string kept on the heap")
	}
}

func TestValue_Setters(t *testing.T) {
	v := NewString("x")
	v.SetInt(5)
	if !v.IsInt() {
		t.Errorf("kind = %s after SetInt", v.Kind())
	}
	v.SetNull()
	if !v.IsNull() {
		t.Errorf("kind = %s after SetNull", v.Kind())
	}
	v.SetArray(nil)
	if !v.IsArray() || v.Size() != 0 {
		t.Error("SetArray(nil) did not create an empty array")
	}
	v.SetObject(nil)
	if !v.IsObject() || v.Size() != 0 {
		t.Error("SetObject(nil) did not create an empty object")
	}
	v.SetInvalid()
	if !v.IsInvalid() {
		t.Error("SetInvalid")
	}
}

// ============================================================================
// OWNERSHIP
// ============================================================================

func TestValue_TakeAndClear(t *testing.T) {
	doc := mustParse(t, `[[1,2],3]`)
	root := doc.Root()

	inner := root.ValueList()[0].Take()
	if !root.ValueList()[0].IsNone() {
		t.Error("Take left the slot populated")
	}
	if inner.Size() != 2 {
		t.Errorf("taken array size = %d", inner.Size())
	}

	inner.Clear()
	if !inner.IsNone() || inner.Size() != 0 {
		t.Error("Clear did not reset the value")
	}
}

func TestValue_CloneIsIndependent(t *testing.T) {
	orig := mustParse(t, `{"a":[1,"a long string value"],"b":{"c":null}}`).Root()
	clone := orig.Clone()
	if !orig.Equal(&clone) {
		t.Fatal("clone differs")
	}

	a := clone.AsObject().Get("a").AsArray()
	a.Append(NewInt(9))
	a.At(1).SetString("changed")
	clone.AsObject().Get("b").AsObject().Append("d", NewBool(true))

	if orig.Equal(&clone) {
		t.Error("mutating the clone changed the original")
	}
	if orig.AsObject().Get("a").Size() != 2 {
		t.Error("original array grew")
	}
	if s, _ := orig.AsObject().Get("a").AsArray().At(1).Str(); s != "a long string value" {
		t.Errorf("original string = %q", s)
	}
}

// ============================================================================
// COMPARISON
// ============================================================================

func TestValue_Compare(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want int
		ok   bool
	}{
		{"ints", NewInt(1), NewInt(2), -1, true},
		{"uints", NewUint(math.MaxUint64), NewUint(math.MaxUint64 - 1), 1, true},
		{"floats", NewFloat(1.5), NewFloat(1.5), 0, true},
		{"nan", NewFloat(math.NaN()), NewFloat(1), 0, false},
		{"bools", NewBool(false), NewBool(true), -1, true},
		{"nulls", NewNull(), NewNull(), 0, true},
		{"strings", NewString("abc"), NewString("abd"), -1, true},
		{"short vs heap", NewString("b"), NewString("aaaaaaaaaaaaaaaa"), 1, true},
		{"int vs float", NewInt(1), NewFloat(1), 0, false},
		{"int vs uint", NewInt(1), NewUint(1), 0, false},
		{"null vs invalid", NewNull(), Invalid(), 0, false},
		{"arrays", arrayOf(NewInt(1), NewInt(2)), arrayOf(NewInt(1), NewInt(3)), -1, true},
		{"array prefix", arrayOf(NewInt(1)), arrayOf(NewInt(1), NewInt(0)), -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.a.Compare(&tt.b)
			if ok != tt.ok || (ok && got != tt.want) {
				t.Errorf("Compare = %d, %v; want %d, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestValue_EqualObjects(t *testing.T) {
	a := mustParse(t, `{"x":1,"y":[true]}`).Root()
	b := mustParse(t, `{ "x" : 1 , "y" : [ true ] }`).Root()
	c := mustParse(t, `{"y":[true],"x":1}`).Root()
	if !a.Equal(b) {
		t.Error("whitespace changed equality")
	}
	if a.Equal(c) {
		t.Error("pair order ignored")
	}
}

// ============================================================================
// CONTAINERS
// ============================================================================

func TestObject_Lookup(t *testing.T) {
	o := NewObject(0)
	o.Append("a", NewInt(1))
	o.Append("b", NewInt(2))

	if n, _ := o.Get("b").Int(); n != 2 {
		t.Errorf("Get(b) = %d", n)
	}
	if !o.Get("missing").IsInvalid() {
		t.Error("missing key not invalid")
	}
	if o.HasDuplicateKeys() {
		t.Error("false duplicate")
	}
	o.Append("a", NewInt(3))
	if !o.HasDuplicateKeys() {
		t.Error("duplicate not found")
	}
	if len(o.Keys()) != 3 || len(o.Values()) != 3 {
		t.Errorf("keys %d values %d", len(o.Keys()), len(o.Values()))
	}
}

func TestArray_At(t *testing.T) {
	a := NewArray(2)
	a.Append(NewInt(1))
	if !a.At(1).IsInvalid() || !a.At(-1).IsInvalid() {
		t.Error("out of range index not invalid")
	}
	if a.IsVirtual() {
		t.Error("user array marked virtual")
	}
}

func TestParsedTreeHasNoScratchNodes(t *testing.T) {
	p := newTestParser(t, 4)
	doc, err := p.parseWithCuts([]byte(`[[[1,2]],[[3]]]`), []int{3, 5, 10})
	if err != nil {
		t.Fatal(err)
	}

	stack := []*Value{doc.Root()}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if v.IsPartial() || v.IsNone() || v.IsInvalid() {
			t.Fatalf("scratch value of kind %s in finished tree", v.Kind())
		}
		if c := containerOf(v); c != nil && c.parentNode() != nil {
			t.Fatal("parent link survived the merge")
		}
		for i := range v.ValueList() {
			stack = append(stack, &v.ValueList()[i])
		}
	}
}

// ============================================================================
// PARTIAL FRAGMENTS
// ============================================================================

func TestPartialJSON_VirtualSlot(t *testing.T) {
	p := newPartialJSON(0)
	w := newVirtual(KindArray, 0)
	p.setVirtual(valueOf(w))

	if !p.hasVirtual() || p.size() != 1 {
		t.Fatalf("virtual slot: has=%v size=%d", p.hasVirtual(), p.size())
	}
	if p.kind() != KindPartial {
		t.Errorf("kind = %s, want partial", p.kind())
	}
	if w.parentNode() != p {
		t.Error("virtual child not linked to fragment")
	}

	if err := p.addValue(NewInt(1)); err != nil {
		t.Fatal(err)
	}
	if p.hasVirtual() || p.size() != 2 || p.kind() != KindArray {
		t.Errorf("after sibling: has=%v size=%d kind=%s", p.hasVirtual(), p.size(), p.kind())
	}
	if !p.first().IsArray() {
		t.Error("virtual child not first")
	}
	if err := p.addPair(NewString("k"), NewNull()); err == nil {
		t.Error("pair accepted in array-shaped fragment")
	}
}

func TestPartialJSON_ObjectShape(t *testing.T) {
	p := newPartialJSON(0)
	p.setVirtual(valueOf(newVirtual(KindObject, 0)))
	if err := p.addPair(NewString("k"), NewInt(1)); err != nil {
		t.Fatal(err)
	}
	keys, values := p.children()
	if len(keys) != 2 || len(values) != 2 {
		t.Fatalf("keys %d values %d", len(keys), len(values))
	}
	if !keys[0].IsInvalid() {
		t.Errorf("continuation key kind = %s, want invalid", keys[0].Kind())
	}
	if err := p.addValue(NewInt(2)); err == nil {
		t.Error("element accepted in object-shaped fragment")
	}

	c := p.clone()
	p.reset()
	if p.size() != 0 || c.size() != 2 {
		t.Errorf("reset/clone: original %d clone %d", p.size(), c.size())
	}
}
