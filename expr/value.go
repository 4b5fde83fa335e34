package expr

import (
	"math"
	"strconv"
)

// ---------------------------------------------------------------------------
// Value: tagged scalar
// ---------------------------------------------------------------------------

// Kind identifies the dynamic type of a Value.
type Kind uint8

const (
	KindInt Kind = iota
	KindFloat
	KindBool
	KindFunc
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindFunc:
		return "function"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a scalar: an integer, a float, a boolean or a callable.
// The zero Value is the integer 0.
type Value struct {
	kind Kind
	i    int64
	f    float64
	b    bool
	fn   Callable
}

// Int returns an integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a floating-point value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Func wraps a callable.
func Func(c Callable) Value { return Value{kind: KindFunc, fn: c} }

// Kind returns the dynamic type of v.
func (v Value) Kind() Kind { return v.kind }

// IsNumber reports whether v is an int or a float.
func (v Value) IsNumber() bool { return v.kind == KindInt || v.kind == KindFloat }

// Int64 returns the integer payload; floats are truncated.
func (v Value) Int64() int64 {
	if v.kind == KindFloat {
		return int64(v.f)
	}
	return v.i
}

// Float64 returns v as a float; ints are converted.
func (v Value) Float64() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}
	return v.f
}

// Bool returns the boolean payload.
func (v Value) Bool() bool { return v.b }

// Callable returns the function payload, or nil.
func (v Value) Callable() Callable { return v.fn }

// Truthy interprets v as a predicate: booleans as themselves, numbers as
// non-zero. Functions have no truth value.
func (v Value) Truthy() (bool, error) {
	switch v.kind {
	case KindBool:
		return v.b, nil
	case KindInt:
		return v.i != 0, nil
	case KindFloat:
		return v.f != 0, nil
	}
	return false, newEvalError(v.String(), ErrOperand, "a function is not a condition")
}

// Equal reports whether v and w are equal under the == operator.
func (v Value) Equal(w Value) bool {
	switch {
	case v.kind == KindInt && w.kind == KindInt:
		return v.i == w.i
	case v.IsNumber() && w.IsNumber():
		c, ok := compareNumbers(v, w)
		return ok && c == 0
	case v.kind == KindBool && w.kind == KindBool:
		return v.b == w.b
	case v.kind == KindFunc && w.kind == KindFunc:
		return v.fn == w.fn
	}
	return false
}

// String formats v the way the print instruction shows it.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	case KindBool:
		if v.b {
			return "True"
		}
		return "False"
	case KindFunc:
		if v.fn == nil {
			return "<nil function>"
		}
		return v.fn.String()
	}
	return "?"
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e16 {
		return strconv.FormatFloat(f, 'f', -1, 64) + ".0"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ParseNumber parses a numeric literal as written in a program line:
// integers stay integers, anything else accepted by strconv.ParseFloat
// becomes a float.
func ParseNumber(s string) (Value, bool) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i), true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Float(f), true
	}
	return Value{}, false
}
