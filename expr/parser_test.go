package expr

import (
	"errors"
	"testing"
)

func TestParserPrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"1 - 2 - 3", "((1 - 2) - 3)"},
		{"8 / 4 / 2", "((8 / 4) / 2)"},
		{"7 // 2 % 3", "((7 // 2) % 3)"},
		{"2 ** 3 ** 2", "(2 ** (3 ** 2))"},
		{"-2 ** 2", "(-(2 ** 2))"},
		{"2 ** -1", "(2 ** (-1))"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"x ** 2 + y ** 2", "((x ** 2) + (y ** 2))"},
		{"a + 1 > b * 2", "((a + 1) > (b * 2))"},
		{"a == b != c", "((a == b) != c)"},
		{"--x", "(-(-x))"},
		{"True", "True"},
		{"2.5", "2.5"},
	}

	for _, tc := range tests {
		e, err := Parse(tc.input)
		if err != nil {
			t.Errorf("Parse(%q): %v", tc.input, err)
			continue
		}
		if got := e.String(); got != tc.want {
			t.Errorf("Parse(%q) = %s, want %s", tc.input, got, tc.want)
		}
	}
}

func TestParserErrors(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"1 +",
		"(1 + 2",
		"1 2",
		"f(3)",
		"x = 3",
		"* 2",
		"3 )",
		"'ciao'",
	}
	for _, input := range inputs {
		_, err := Parse(input)
		if err == nil {
			t.Errorf("Parse(%q): expected error", input)
			continue
		}
		if !errors.Is(err, ErrSyntax) {
			t.Errorf("Parse(%q): error %v is not ErrSyntax", input, err)
		}
		var evalErr *EvalError
		if !errors.As(err, &evalErr) || evalErr.Expr != input {
			t.Errorf("Parse(%q): error %v does not carry the expression text", input, err)
		}
	}
}

func TestParserLiterals(t *testing.T) {
	tests := []struct {
		input string
		check func(Expr) bool
		desc  string
	}{
		{"42", func(e Expr) bool { return e.(*IntLiteral).Value == 42 }, "integer"},
		{"3.14", func(e Expr) bool { return e.(*FloatLiteral).Value == 3.14 }, "float"},
		{"99999999999999999999", func(e Expr) bool { return e.(*FloatLiteral).Value == 1e20 }, "integer beyond int64"},
		{"falso", func(e Expr) bool { return !e.(*BoolLiteral).Value }, "boolean"},
		{"const_pi", func(e Expr) bool { return e.(*Ident).Name == "const_pi" }, "identifier"},
	}

	for _, tc := range tests {
		e, err := Parse(tc.input)
		if err != nil {
			t.Errorf("%s: parse error: %v", tc.desc, err)
			continue
		}
		if !tc.check(e) {
			t.Errorf("%s: check failed for %q (got %T)", tc.desc, tc.input, e)
		}
	}
}

func TestNames(t *testing.T) {
	e, err := Parse("a * (b - a) + 2")
	if err != nil {
		t.Fatal(err)
	}
	got := Names(e)
	want := []string{"a", "b", "a"}
	if len(got) != len(want) {
		t.Fatalf("Names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
