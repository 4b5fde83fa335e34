package expr

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestParseLambda(t *testing.T) {
	l, err := ParseLambda("lambda x, y: x * y + k")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(l.Params, []string{"x", "y"}) {
		t.Errorf("params = %v, want [x y]", l.Params)
	}
	if l.Body != "x * y + k" {
		t.Errorf("body = %q", l.Body)
	}
	if l.String() != "<lambda x, y>" {
		t.Errorf("String() = %q", l.String())
	}

	got, err := l.Call([]Value{Int(3), Int(4)}, mapResolver{"k": Int(1), "x": Int(100)})
	if err != nil {
		t.Fatal(err)
	}
	if got.Int64() != 13 {
		t.Errorf("call = %s, want 13 (parameters shadow globals)", got)
	}

	if _, err := l.Call([]Value{Int(1)}, nil); !errors.Is(err, ErrArity) {
		t.Errorf("short call error = %v, want ErrArity", err)
	}
}

func TestParseLambdaNoParams(t *testing.T) {
	l, err := ParseLambda("lambda: 42")
	if err != nil {
		t.Fatal(err)
	}
	got, err := l.Call(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Int64() != 42 {
		t.Errorf("call = %s, want 42", got)
	}
}

func TestParseLambdaErrors(t *testing.T) {
	inputs := []string{
		"lambda x x",
		"lambda 1x: 2",
		"lambda x, x: x",
		"lambda x: x +",
		"lambdax: 1",
	}
	for _, in := range inputs {
		if _, err := ParseLambda(in); err == nil {
			t.Errorf("ParseLambda(%q): expected error", in)
		}
	}
}

func TestIsLambdaLiteral(t *testing.T) {
	tests := map[string]bool{
		"lambda x: x":  true,
		"lambda: 1":    true,
		"lambdax + 1":  false,
		"lambda x":     false,
		"x + lambda":   false,
		"lambda\tx: 1": true,
	}
	for in, want := range tests {
		if got := IsLambdaLiteral(in); got != want {
			t.Errorf("IsLambdaLiteral(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDefaultHostFuncs(t *testing.T) {
	funcs := make(map[string]*HostFunc)
	for _, h := range DefaultHostFuncs() {
		funcs[h.Name] = h
	}

	tests := []struct {
		name string
		args []Value
		want Value
	}{
		{"abs", []Value{Int(-4)}, Int(4)},
		{"abs", []Value{Float(-1.5)}, Float(1.5)},
		{"abs", []Value{Int(math.MinInt64)}, Float(9223372036854775808)},
		{"min", []Value{Int(3), Float(1.5), Int(2)}, Float(1.5)},
		{"max", []Value{Int(3), Int(9), Int(2)}, Int(9)},
		{"round", []Value{Float(2.5)}, Int(2)},
		{"round", []Value{Float(3.5)}, Int(4)},
		{"int", []Value{Float(-2.7)}, Int(-2)},
		{"int", []Value{Bool(true)}, Int(1)},
		{"float", []Value{Int(2)}, Float(2)},
	}
	for _, tc := range tests {
		h, ok := funcs[tc.name]
		if !ok {
			t.Fatalf("host function %s not installed", tc.name)
		}
		got, err := h.Call(tc.args, nil)
		if err != nil {
			t.Errorf("%s(%v): %v", tc.name, tc.args, err)
			continue
		}
		if got.Kind() != tc.want.Kind() || !got.Equal(tc.want) {
			t.Errorf("%s(%v) = %s, want %s", tc.name, tc.args, got, tc.want)
		}
	}

	if _, err := funcs["abs"].Call([]Value{Int(1), Int(2)}, nil); !errors.Is(err, ErrArity) {
		t.Errorf("abs with two args: error = %v, want ErrArity", err)
	}
	if _, err := funcs["max"].Call(nil, nil); !errors.Is(err, ErrArity) {
		t.Errorf("max with no args: error = %v, want ErrArity", err)
	}
	if _, err := funcs["abs"].Call([]Value{Bool(false)}, nil); !errors.Is(err, ErrOperand) {
		t.Errorf("abs(False): error = %v, want ErrOperand", err)
	}
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"  ", nil},
		{"a", []string{"a"}},
		{"a, b ,c", []string{"a", "b", "c"}},
		{"(a, b), c", []string{"(a, b)", "c"}},
		{"a,", []string{"a", ""}},
	}
	for _, tc := range tests {
		got := SplitArgs(tc.in)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("SplitArgs(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
