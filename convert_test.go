package parjson

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	jsoniter "github.com/json-iterator/go"
)

func TestValue_Interface(t *testing.T) {
	doc := mustParse(t, `{"i":-3,"u":18446744073709551615,"f":0.5,"b":true,"n":null,"s":"str","a":[1,"x"],"o":{"k":[]},"i":4}`)
	want := map[string]any{
		"i": int64(4),
		"u": uint64(math.MaxUint64),
		"f": 0.5,
		"b": true,
		"n": nil,
		"s": "str",
		"a": []any{int64(1), "x"},
		"o": map[string]any{"k": []any{}},
	}
	if diff := cmp.Diff(want, doc.Root().Interface()); diff != "" {
		t.Errorf("Interface() mismatch (-want +got):\n%s", diff)
	}
}

func TestFromAny(t *testing.T) {
	type inner struct {
		Tags []string `json:"tags"`
	}
	type record struct {
		Name  string  `json:"name"`
		Score float64 `json:"score"`
		Inner *inner  `json:"inner,omitempty"`
	}

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, `null`},
		{"int", 7, `7`},
		{"uint8", uint8(200), `200`},
		{"big uint", uint64(math.MaxUint64), `18446744073709551615`},
		{"float", 1.25, `1.25`},
		{"bool", false, `false`},
		{"string", "hi", `"hi"`},
		{"json number int", json.Number("12"), `12`},
		{"json number float", json.Number("1.5e3"), `1500.0`},
		{"slice", []any{1, "a", nil}, `[1,"a",null]`},
		{"map sorted", map[string]any{"b": 1, "a": 2}, `{"a":2,"b":1}`},
		{"struct", record{Name: "n", Score: 2, Inner: &inner{Tags: []string{"t"}}}, `{"name":"n","score":2,"inner":{"tags":["t"]}}`},
		{"nil pointer", (*record)(nil), `null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := FromAny(tt.in)
			if err != nil {
				t.Fatalf("FromAny: %v", err)
			}
			if got := v.String(); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}

	for _, bad := range []any{math.NaN(), []any{math.Inf(1)}, json.Number("x"), make(chan int)} {
		if _, err := FromAny(bad); err == nil {
			t.Errorf("FromAny(%T) succeeded", bad)
		}
	}
	if _, err := FromAny(float32(math.Inf(-1))); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("error = %v, want invalid value", err)
	}
}

func TestValue_JSONInterop(t *testing.T) {
	type envelope struct {
		ID      int   `json:"id"`
		Payload Value `json:"payload"`
	}

	var env envelope
	if err := json.Unmarshal([]byte(`{"id":1,"payload":{"a":[1,2,{"b":null}]}}`), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.Payload.AsObject().Get("a").Size() != 3 {
		t.Fatalf("payload = %s", env.Payload.String())
	}

	out, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"id":1,"payload":{"a":[1,2,{"b":null}]}}` {
		t.Errorf("marshal = %s", out)
	}

	viaIter, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(env)
	if err != nil {
		t.Fatalf("jsoniter marshal: %v", err)
	}
	if string(viaIter) != string(out) {
		t.Errorf("jsoniter output %s differs from encoding/json %s", viaIter, out)
	}

	var bad Value
	if err := bad.UnmarshalJSON([]byte(`[1,`)); err == nil {
		t.Error("malformed input accepted")
	}
}
