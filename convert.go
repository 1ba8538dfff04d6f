package parjson

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

// Interface converts v to plain Go values: int64, uint64, float64, bool,
// nil, string, []any and map[string]any. Objects with duplicate keys keep
// the last value. Use the Value API when order or duplicates matter.
func (v *Value) Interface() any {
	switch v.kind {
	case KindInt:
		return int64(v.bits)
	case KindUint:
		return v.bits
	case KindFloat:
		return math.Float64frombits(v.bits)
	case KindBool:
		return v.bits == 1
	case KindShortString, KindString:
		return string(v.strBytes())
	case KindArray:
		values := v.ref.(*Array).values
		out := make([]any, len(values))
		for i := range values {
			out[i] = values[i].Interface()
		}
		return out
	case KindObject:
		o := v.ref.(*Object)
		out := make(map[string]any, len(o.values))
		for i := range o.values {
			out[string(o.keys[i].strBytes())] = o.values[i].Interface()
		}
		return out
	}
	return nil
}

// FromAny builds a Value from plain Go values. Maps are converted with their
// keys in sorted order; structs and other types are marshalled with
// encoding/json rules first.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return NewNull(), nil
	case Value:
		return t.Clone(), nil
	case *Value:
		return t.Clone(), nil
	case bool:
		return NewBool(t), nil
	case string:
		return NewString(t), nil
	case int:
		return NewInt(int64(t)), nil
	case int8:
		return NewInt(int64(t)), nil
	case int16:
		return NewInt(int64(t)), nil
	case int32:
		return NewInt(int64(t)), nil
	case int64:
		return NewInt(t), nil
	case uint:
		return fromUint(uint64(t)), nil
	case uint8:
		return fromUint(uint64(t)), nil
	case uint16:
		return fromUint(uint64(t)), nil
	case uint32:
		return fromUint(uint64(t)), nil
	case uint64:
		return fromUint(t), nil
	case float32:
		return fromFloat(float64(t))
	case float64:
		return fromFloat(t)
	case json.Number:
		return fromNumber(t)
	case []any:
		a := NewArray(len(t))
		for _, e := range t {
			v, err := FromAny(e)
			if err != nil {
				return Value{}, err
			}
			a.Append(v)
		}
		return NewArrayValue(a), nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		o := NewObject(len(t))
		for _, k := range keys {
			v, err := FromAny(t[k])
			if err != nil {
				return Value{}, err
			}
			o.Append(k, v)
		}
		return NewObjectValue(o), nil
	}

	rv := reflect.ValueOf(x)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return NewNull(), nil
	}
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(x)
	if err != nil {
		return Value{}, newOperationError("from_any", fmt.Sprintf("cannot convert %T", x), err)
	}
	doc, err := getDefaultParser().parse(data, 1, nil)
	if err != nil {
		return Value{}, err
	}
	return doc.root, nil
}

func fromUint(n uint64) Value {
	if n <= math.MaxInt64 {
		return NewInt(int64(n))
	}
	return NewUint(n)
}

func fromFloat(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, newOperationError("from_any", fmt.Sprintf("cannot represent %v", f), ErrInvalidValue)
	}
	return NewFloat(f), nil
}

// fromNumber keeps integers exact and everything else as float64
func fromNumber(n json.Number) (Value, error) {
	if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return NewInt(i), nil
	}
	if u, err := strconv.ParseUint(string(n), 10, 64); err == nil {
		return NewUint(u), nil
	}
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		return Value{}, newOperationError("from_any", fmt.Sprintf("invalid number %q", n), ErrInvalidValue)
	}
	return fromFloat(f)
}

// MarshalJSON renders v as compact JSON
func (v Value) MarshalJSON() ([]byte, error) {
	return getDefaultParser().serialize(&v, 1, false)
}

// UnmarshalJSON replaces v with the parsed document
func (v *Value) UnmarshalJSON(data []byte) error {
	doc, err := getDefaultParser().parse(data, 1, nil)
	if err != nil {
		return err
	}
	*v = doc.root
	return nil
}
