package table

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/vvka-141/dsdist/pkg/dsdist"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull   Kind = iota // missing cell
	KindString             // text
	KindNumber             // int64, uint64 or float64
	KindBool               // boolean
	KindOpaque             // anything that is not a JSON primitive
)

// String returns a human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindOpaque:
		return "opaque"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// numForm records which field of a Number holds it, so integers outside
// the float64 mantissa keep their exact value.
type numForm uint8

const (
	formFloat numForm = iota
	formInt
	formUint
)

// Value is a single table cell.
// The zero Value is Null.
type Value struct {
	kind Kind
	form numForm
	str  string
	num  float64
	i    int64
	u    uint64
	bit  bool
	raw  interface{}
}

// Null returns the missing-cell value.
func Null() Value { return Value{} }

// String returns a text value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, bit: b} }

// Number returns a numeric value. NaN becomes Null and infinities become
// Opaque, since neither has a JSON representation.
func Number(f float64) Value {
	switch {
	case math.IsNaN(f):
		return Null()
	case math.IsInf(f, 0):
		return Value{kind: KindOpaque, raw: f}
	}
	return Value{kind: KindNumber, num: f}
}

// Int returns an exact integer value.
func Int(i int64) Value { return Value{kind: KindNumber, form: formInt, i: i} }

// Uint returns an exact unsigned integer value.
func Uint(u uint64) Value {
	if u <= math.MaxInt64 {
		return Int(int64(u))
	}
	return Value{kind: KindNumber, form: formUint, u: u}
}

// ValueOf converts an arbitrary Go value into a Value.
//
// Integers of every width stay exact; floats, named types over numeric
// kinds and json.Number become Number; pointers are followed. Anything else
// (structs, maps, slices, channels, funcs) becomes Opaque.
func ValueOf(v interface{}) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case string:
		return String(x)
	case bool:
		return Bool(x)
	case float64:
		return Number(x)
	case int:
		return Int(int64(x))
	case int64:
		return Int(x)
	case json.Number:
		if n, ok := parseNumber(string(x)); ok {
			return n
		}
		return Value{kind: KindOpaque, raw: v}
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null()
		}
		return ValueOf(rv.Elem().Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Uint(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return Number(rv.Float())
	case reflect.Bool:
		return Bool(rv.Bool())
	case reflect.String:
		return String(rv.String())
	}
	return Value{kind: KindOpaque, raw: v}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the missing-cell value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Text returns the string held by v and whether v is a String.
func (v Value) Text() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// JSON returns v as a JSON primitive: nil, string, int64, uint64, float64
// or bool.
// Opaque values fail with an error wrapping dsdist.ErrInvalidType.
func (v Value) JSON() (interface{}, error) {
	switch v.kind {
	case KindNull:
		return nil, nil
	case KindString:
		return v.str, nil
	case KindNumber:
		switch v.form {
		case formInt:
			return v.i, nil
		case formUint:
			return v.u, nil
		}
		return v.num, nil
	case KindBool:
		return v.bit, nil
	}
	return nil, fmt.Errorf("object of type %T is not JSON serializable: %w", v.raw, dsdist.ErrInvalidType)
}

// Key returns a canonical identity for v. Two values have the same key
// exactly when they are equal after coercion, so 5, int8(5) and 5.0 share one.
func (v Value) Key() string {
	switch v.kind {
	case KindNull:
		return "z"
	case KindString:
		return "s:" + v.str
	case KindNumber:
		return "n:" + v.numberKey()
	case KindBool:
		return "b:" + strconv.FormatBool(v.bit)
	}
	return fmt.Sprintf("o:%T:%v", v.raw, v.raw)
}

// numberKey spells integral floats like integers, so 5 and 5.0 match and
// 2^63 matches whether it arrived as a float or a uint64.
func (v Value) numberKey() string {
	switch v.form {
	case formInt:
		return strconv.FormatInt(v.i, 10)
	case formUint:
		return strconv.FormatUint(v.u, 10)
	}
	f := v.num
	if f == math.Trunc(f) {
		switch {
		case f >= -(1<<63) && f < 1<<63:
			return strconv.FormatInt(int64(f), 10)
		case f >= 0 && f < 1<<64:
			return strconv.FormatUint(uint64(f), 10)
		}
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// String renders v the way it is written to a CSV snapshot.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindString:
		return v.str
	case KindNumber:
		switch v.form {
		case formInt:
			return strconv.FormatInt(v.i, 10)
		case formUint:
			return strconv.FormatUint(v.u, 10)
		}
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		if v.bit {
			return "True"
		}
		return "False"
	}
	return fmt.Sprint(v.raw)
}

// Interface returns the raw Go value behind v.
func (v Value) Interface() interface{} {
	if v.kind == KindOpaque {
		return v.raw
	}
	out, _ := v.JSON()
	return out
}
