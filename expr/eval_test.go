package expr

import (
	"errors"
	"math"
	"testing"
)

// mapResolver is a Resolver over a plain map.
type mapResolver map[string]Value

func (m mapResolver) Resolve(name string) (Value, bool) {
	v, ok := m[name]
	return v, ok
}

func TestEvaluateArithmetic(t *testing.T) {
	tests := []struct {
		input string
		want  Value
	}{
		{"1 + 2", Int(3)},
		{"7 - 10", Int(-3)},
		{"6 * 7", Int(42)},
		{"7 / 2", Float(3.5)},
		{"8 / 2", Float(4)},
		{"7 // 2", Int(3)},
		{"-7 // 2", Int(-4)},
		{"7 // -2", Int(-4)},
		{"-7 // -2", Int(3)},
		{"7 % 3", Int(1)},
		{"-7 % 3", Int(2)},
		{"7 % -2", Int(-1)},
		{"-7 % -2", Int(-1)},
		{"2 ** 10", Int(1024)},
		{"2 ** -1", Float(0.5)},
		{"-2 ** 2", Int(-4)},
		{"2 ** 3 ** 2", Int(512)},
		{"7.5 // 2", Float(3)},
		{"-7.5 // 2", Float(-4)},
		{"7.5 % -2", Float(-0.5)},
		{"1 + 2.5", Float(3.5)},
		{"4 ** 0.5", Float(2)},
		{"(1 + 2) * 3", Int(9)},
		{"+5", Int(5)},
		{"2 ** 62", Int(4611686018427387904)},
		{"2 ** 63", Float(9223372036854775808)},
		{"2 ** 64", Float(18446744073709551616)},
		{"10 ** 20", Float(1e20)},
		{"9223372036854775807 + 1", Float(9223372036854775808)},
		{"-9223372036854775807 - 2", Float(-9223372036854775809)},
		{"-9223372036854775807 - 1", Int(math.MinInt64)},
		{"3037000500 * 3037000500", Float(9223372037000250000)},
		{"3037000499 * -3037000499", Int(-9223372030926249001)},
		{"(-9223372036854775807 - 1) // -1", Float(9223372036854775808)},
		{"-(-9223372036854775807 - 1)", Float(9223372036854775808)},
	}

	for _, tc := range tests {
		got, err := Evaluate(tc.input, nil)
		if err != nil {
			t.Errorf("Evaluate(%q): %v", tc.input, err)
			continue
		}
		if got.Kind() != tc.want.Kind() || !got.Equal(tc.want) {
			t.Errorf("Evaluate(%q) = %s (%s), want %s (%s)", tc.input, got, got.Kind(), tc.want, tc.want.Kind())
		}
	}
}

func TestEvaluateComparisons(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"1 < 2", true},
		{"2 < 1", false},
		{"2 <= 2", true},
		{"3 >= 4", false},
		{"3 > 2.5", true},
		{"2 == 2.0", true},
		{"2 != 2", false},
		{"True == True", true},
		{"True == 1", false},
		{"1 + 1 == 2", true},
		{"nan == nan", false},
		{"9007199254740993 == 9007199254740992.0", false},
		{"9007199254740993 > 9007199254740992.0", true},
		{"9007199254740992.0 < 9007199254740993", true},
		{"9007199254740992 == 9007199254740992.0", true},
		{"9223372036854775807 < 9223372036854775808.0", true},
		{"-2 > -2.5", true},
		{"2 < 2.5", true},
	}

	for _, tc := range tests {
		got, err := Evaluate(tc.input, nil)
		if err != nil {
			t.Errorf("Evaluate(%q): %v", tc.input, err)
			continue
		}
		if got.Kind() != KindBool || got.Bool() != tc.want {
			t.Errorf("Evaluate(%q) = %s, want %v", tc.input, got, tc.want)
		}
	}
}

func TestValueEqualIntFloat(t *testing.T) {
	tests := []struct {
		a, b Value
		want bool
	}{
		{Int(3), Float(3), true},
		{Int(3), Float(3.5), false},
		{Int(9007199254740993), Float(9007199254740992), false},
		{Float(9007199254740992), Int(9007199254740993), false},
		{Int(math.MaxInt64), Float(9223372036854775808), false},
		{Int(math.MinInt64), Float(-9223372036854775808), true},
		{Int(0), Float(math.NaN()), false},
	}
	for _, tc := range tests {
		if got := tc.a.Equal(tc.b); got != tc.want {
			t.Errorf("%s (%s) == %s (%s): got %v, want %v", tc.a, tc.a.Kind(), tc.b, tc.b.Kind(), got, tc.want)
		}
	}
}

func TestEvaluateNames(t *testing.T) {
	r := mapResolver{
		"x":        Int(3),
		"y":        Int(4),
		"const_pi": Float(3.5),
	}

	got, err := Evaluate("x ** 2 + y ** 2", r)
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != "25" {
		t.Errorf("x ** 2 + y ** 2 = %s, want 25", got)
	}

	got, err = Evaluate("const_pi * 2", r)
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != "7.0" {
		t.Errorf("const_pi * 2 = %s, want 7.0", got)
	}

	got, err = Evaluate("inf > x", r)
	if err != nil {
		t.Fatalf("inf should fall back to a float literal: %v", err)
	}
	if !got.Bool() {
		t.Errorf("inf > x = %s, want True", got)
	}
}

func TestEvaluateErrors(t *testing.T) {
	r := mapResolver{
		"b": Bool(true),
		"f": Func(&HostFunc{Name: "f", Arity: 0}),
	}
	tests := []struct {
		input string
		kind  error
	}{
		{"missing + 1", ErrUnknownName},
		{"1 / 0", ErrDivisionByZero},
		{"1 // 0", ErrDivisionByZero},
		{"1 % 0", ErrDivisionByZero},
		{"1.0 / 0", ErrDivisionByZero},
		{"0 ** -1", ErrDivisionByZero},
		{"b + 1", ErrOperand},
		{"-b", ErrOperand},
		{"b < True", ErrOperand},
		{"f * 2", ErrOperand},
		{"(-8) ** 0.5", ErrOperand},
		{"1 +", ErrSyntax},
		{"1\x00 + nope", ErrSyntax},
	}

	for _, tc := range tests {
		_, err := Evaluate(tc.input, r)
		if err == nil {
			t.Errorf("Evaluate(%q): expected error", tc.input)
			continue
		}
		if !errors.Is(err, tc.kind) {
			t.Errorf("Evaluate(%q): error = %v, want %v", tc.input, err, tc.kind)
		}
		var evalErr *EvalError
		if !errors.As(err, &evalErr) {
			t.Errorf("Evaluate(%q): error is %T, want *EvalError", tc.input, err)
		}
	}
}

func TestEvaluateDoesNotMutate(t *testing.T) {
	r := mapResolver{"x": Int(1)}
	for i := 0; i < 3; i++ {
		if _, err := Evaluate("x + 1 > 0", r); err != nil {
			t.Fatal(err)
		}
	}
	if len(r) != 1 || r["x"].Int64() != 1 {
		t.Errorf("resolver changed: %v", r)
	}
}

func TestFloorDivMod(t *testing.T) {
	for a := int64(-9); a <= 9; a++ {
		for _, b := range []int64{-4, -3, -1, 1, 2, 5} {
			q, m := FloorDiv(a, b), FloorMod(a, b)
			if q*b+m != a {
				t.Errorf("FloorDiv/FloorMod(%d, %d) = %d, %d: q*b+m != a", a, b, q, m)
			}
			if want := int64(math.Floor(float64(a) / float64(b))); q != want {
				t.Errorf("FloorDiv(%d, %d) = %d, want %d", a, b, q, want)
			}
			if m != 0 && (m < 0) != (b < 0) {
				t.Errorf("FloorMod(%d, %d) = %d has the wrong sign", a, b, m)
			}
		}
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Int(25), "25"},
		{Int(-3), "-3"},
		{Float(5), "5.0"},
		{Float(2.5), "2.5"},
		{Float(-0.25), "-0.25"},
		{Float(1e20), "1e+20"},
		{Float(math.Inf(1)), "inf"},
		{Float(math.NaN()), "nan"},
		{Bool(true), "True"},
		{Bool(false), "False"},
	}
	for _, tc := range tests {
		if got := tc.v.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestValueTruthy(t *testing.T) {
	tests := []struct {
		v    Value
		want bool
	}{
		{Bool(true), true},
		{Bool(false), false},
		{Int(0), false},
		{Int(-1), true},
		{Float(0), false},
		{Float(0.1), true},
	}
	for _, tc := range tests {
		got, err := tc.v.Truthy()
		if err != nil {
			t.Errorf("Truthy(%s): %v", tc.v, err)
		}
		if got != tc.want {
			t.Errorf("Truthy(%s) = %v, want %v", tc.v, got, tc.want)
		}
	}
	if _, err := Func(&HostFunc{Name: "f"}).Truthy(); err == nil {
		t.Error("a function should have no truth value")
	}
}

func TestParseNumber(t *testing.T) {
	if v, ok := ParseNumber("12"); !ok || v.Kind() != KindInt || v.Int64() != 12 {
		t.Errorf("ParseNumber(12) = %v, %v", v, ok)
	}
	if v, ok := ParseNumber("1.5"); !ok || v.Kind() != KindFloat || v.Float64() != 1.5 {
		t.Errorf("ParseNumber(1.5) = %v, %v", v, ok)
	}
	if _, ok := ParseNumber("abc"); ok {
		t.Error("ParseNumber(abc) should fail")
	}
}
