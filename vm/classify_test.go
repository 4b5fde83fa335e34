package vm

import (
	"reflect"
	"testing"
)

func TestClassify(t *testing.T) {
	isSub := func(name string) bool { return name == "greet" }

	tests := []struct {
		text string
		kind Kind
		name string
		arg  string
		args []string
	}{
		{"", KindNop, "", "", nil},
		{"# comment = 1", KindNop, "", "", nil},
		{"se x > 1 allora", KindIf, "", "x > 1", nil},
		{"se x == 1 allora", KindIf, "", "x == 1", nil},
		{"se allora", KindInvalid, "", "", nil},
		{"se x", KindInvalid, "", "", nil},
		{"includi math.mlib", KindInclude, "", "math.mlib", nil},
		{"var a, b", KindDeclare, "", "a, b", []string{"a", "b"}},
		{"var = 3", KindDeclare, "", "= 3", []string{"= 3"}},
		{"radice r, x + 1", KindBuiltin, "r", "x + 1", []string{"r", "x + 1"}},
		{"quadrato q, 3", KindBuiltin, "q", "3", []string{"q", "3"}},
		{"radice r", KindInvalid, "", "", nil},
		{"x = 1", KindAssign, "x", "1", nil},
		{"x=y**2", KindAssign, "x", "y**2", nil},
		{"def = 3", KindAssign, "def", "3", nil},
		{"f = lambda a: a = 1", KindAssign, "f", "lambda a: a = 1", nil},
		{"x == 1", KindInvalid, "", "", nil},
		{"x <= 1", KindInvalid, "", "", nil},
		{"elimina x", KindDelete, "x", "", nil},
		{"out z", KindPrint, "", "z", []string{"z"}},
		{"out a = b", KindPrint, "", "a = b", []string{"a = b"}},
		{"out def", KindPrint, "", "def", []string{"def"}},
		{"stampa x, ciao", KindPrint, "", "x, ciao", []string{"x", "ciao"}},
		{"out", KindPrint, "", "", nil},
		{"somma s, 1, x", KindReduce, "s", "s, 1, x", []string{"1", "x"}},
		{"moltiplica p", KindReduce, "p", "p", []string{}},
		{"def greet", KindDef, "greet", "", nil},
		{"def two words", KindInvalid, "", "", nil},
		{"greet", KindCall, "greet", "", nil},
		{"other", KindInvalid, "", "", nil},
		{"end", KindEnd, "", "", nil},
		{"altrimenti", KindElse, "", "", nil},
		{"info", KindInfo, "", "", nil},
		{"pausa", KindPause, "", "", nil},
		{"   x = 2   ", KindAssign, "x", "2", nil},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			in := Classify(tt.text, isSub)
			if in.Kind != tt.kind {
				t.Fatalf("Kind = %s, want %s", in.Kind, tt.kind)
			}
			if in.Name != tt.name {
				t.Errorf("Name = %q, want %q", in.Name, tt.name)
			}
			if in.Arg != tt.arg {
				t.Errorf("Arg = %q, want %q", in.Arg, tt.arg)
			}
			if tt.args != nil && !reflect.DeepEqual(in.Args, tt.args) {
				t.Errorf("Args = %q, want %q", in.Args, tt.args)
			}
		})
	}
}

func TestClassifyWithoutSubroutines(t *testing.T) {
	if in := Classify("greet", nil); in.Kind != KindInvalid {
		t.Errorf("Kind = %s, want invalid", in.Kind)
	}
}

func TestReservedNames(t *testing.T) {
	for _, name := range []string{"se", "end", "out", "lambda", "True", "falso"} {
		if !IsReservedName(name) {
			t.Errorf("IsReservedName(%q) = false", name)
		}
	}
	for _, name := range []string{"x", "ending", "const_se"} {
		if IsReservedName(name) {
			t.Errorf("IsReservedName(%q) = true", name)
		}
	}
}
