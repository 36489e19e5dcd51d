package fsm

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/enetx/g"
)

const (
	KindBool Kind = iota + 1
	KindInt
	KindFloat
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "invalid"
	}
}

// ParseKind parses the textual kind used in definition documents.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "bool", "boolean":
		return KindBool, nil
	case "int", "integer":
		return KindInt, nil
	case "float", "number":
		return KindFloat, nil
	case "string":
		return KindString, nil
	}

	return 0, fmt.Errorf("fsm: unknown value type %q", s)
}

// Bool returns a boolean Value.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Int returns an integer Value.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Float returns a float Value.
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// Str returns a string Value.
func Str(v g.String) Value { return Value{kind: KindString, s: v} }

// Kind returns the kind of v. The zero Value has no valid kind.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether v was built by one of the constructors.
func (v Value) IsValid() bool { return v.kind >= KindBool && v.kind <= KindString }

func (v Value) Bool() bool { return v.b }
func (v Value) Int() int64 { return v.i }
func (v Value) Float() float64 { return v.f }
func (v Value) Str() g.String { return v.s }
func (v Value) Equal(o Value) bool { return v == o }

// Any returns the payload as a plain Go value.
func (v Value) Any() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s.Std()
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.s.Std())
	default:
		return "<invalid>"
	}
}

// MarshalJSON writes the bare payload; the kind travels next to it in documents.
func (v Value) MarshalJSON() ([]byte, error) { return json.Marshal(v.Any()) }

// ValueOf infers a Value from a plain Go value.
func ValueOf(raw any) (Value, error) {
	switch x := raw.(type) {
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return Value{}, fmt.Errorf("fsm: integer %d overflows int64", x)
		}
		return Int(int64(x)), nil
	case float32:
		return Float(float64(x)), nil
	case float64:
		return Float(x), nil
	case string:
		return Str(g.String(x)), nil
	case g.String:
		return Str(x), nil
	}

	return Value{}, fmt.Errorf("fsm: unsupported parameter value %v (%T)", raw, raw)
}

// valueAs converts a decoded document scalar into a Value of the given kind.
// JSON numbers arrive as float64, YAML integers as int.
func valueAs(kind Kind, raw any) (Value, error) {
	v, err := ValueOf(raw)
	if err != nil {
		return Value{}, err
	}

	switch {
	case v.kind == kind:
		return v, nil
	case kind == KindFloat && v.kind == KindInt:
		return Float(float64(v.i)), nil
	case kind == KindInt && v.kind == KindFloat:
		if v.f != math.Trunc(v.f) || math.IsInf(v.f, 0) {
			return Value{}, fmt.Errorf("fsm: %v is not an integer", v.f)
		}
		return Int(int64(v.f)), nil
	}

	return Value{}, fmt.Errorf("fsm: value %s is %s, want %s", v, v.kind, kind)
}

// ParseValue parses the textual form of a value of the named kind, as typed on
// a command line or in a query string.
func ParseValue(kind, text string) (Value, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return Value{}, err
	}

	switch k {
	case KindBool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return Value{}, fmt.Errorf("fsm: parse bool %q: %w", text, err)
		}
		return Bool(b), nil
	case KindInt:
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("fsm: parse int %q: %w", text, err)
		}
		return Int(i), nil
	case KindFloat:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Value{}, fmt.Errorf("fsm: parse float %q: %w", text, err)
		}
		return Float(f), nil
	}

	return Str(g.String(text)), nil
}
