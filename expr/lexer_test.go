package expr

import (
	"testing"
)

func TestLexerOperators(t *testing.T) {
	input := `+ - * / // % ** == != < > <= >= ( ) ,`
	expected := []struct {
		typ TokenType
		lit string
	}{
		{TokenPlus, "+"},
		{TokenMinus, "-"},
		{TokenStar, "*"},
		{TokenSlash, "/"},
		{TokenSlashSlash, "//"},
		{TokenPercent, "%"},
		{TokenStarStar, "**"},
		{TokenEQ, "=="},
		{TokenNE, "!="},
		{TokenLT, "<"},
		{TokenGT, ">"},
		{TokenLE, "<="},
		{TokenGE, ">="},
		{TokenLParen, "("},
		{TokenRParen, ")"},
		{TokenComma, ","},
		{TokenEOF, ""},
	}

	l := NewLexer(input)
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp.typ {
			t.Errorf("token[%d] type = %v, want %v", i, tok.Type, exp.typ)
		}
		if tok.Literal != exp.lit {
			t.Errorf("token[%d] literal = %q, want %q", i, tok.Literal, exp.lit)
		}
	}
}

func TestLexerNumbers(t *testing.T) {
	tests := []struct {
		input string
		typ   TokenType
		want  string
	}{
		{"42", TokenInteger, "42"},
		{"0", TokenInteger, "0"},
		{"3.14", TokenFloat, "3.14"},
		{".5", TokenFloat, ".5"},
		{"1.", TokenFloat, "1."},
		{"1e10", TokenFloat, "1e10"},
		{"1.5e-3", TokenFloat, "1.5e-3"},
		{"2.0E+5", TokenFloat, "2.0E+5"},
	}

	for _, tc := range tests {
		tok := NewLexer(tc.input).NextToken()
		if tok.Type != tc.typ {
			t.Errorf("Lexer(%q): type = %v, want %v", tc.input, tok.Type, tc.typ)
		}
		if tok.Literal != tc.want {
			t.Errorf("Lexer(%q): literal = %q, want %q", tc.input, tok.Literal, tc.want)
		}
	}
}

func TestLexerNegativeIsOperator(t *testing.T) {
	toks := Tokenize("x-1")
	want := []TokenType{TokenIdentifier, TokenMinus, TokenInteger, TokenEOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens %v, want %d", len(toks), toks, len(want))
	}
	for i, typ := range want {
		if toks[i].Type != typ {
			t.Errorf("token[%d] = %v, want %v", i, toks[i].Type, typ)
		}
	}
}

func TestLexerIdentifiersAndReserved(t *testing.T) {
	tests := []struct {
		input string
		typ   TokenType
	}{
		{"x", TokenIdentifier},
		{"const_pi", TokenIdentifier},
		{"_tmp2", TokenIdentifier},
		{"perché", TokenIdentifier},
		{"True", TokenTrue},
		{"False", TokenFalse},
		{"vero", TokenTrue},
		{"falso", TokenFalse},
		{"true", TokenIdentifier},
	}

	for _, tc := range tests {
		tok := NewLexer(tc.input).NextToken()
		if tok.Type != tc.typ {
			t.Errorf("Lexer(%q): type = %v, want %v", tc.input, tok.Type, tc.typ)
		}
		if tok.Literal != tc.input {
			t.Errorf("Lexer(%q): literal = %q", tc.input, tok.Literal)
		}
	}
}

func TestLexerErrors(t *testing.T) {
	for _, input := range []string{"=", "!", "@", "'s'", "\x00", "\x00 + 1"} {
		tok := NewLexer(input).NextToken()
		if tok.Type != TokenError {
			t.Errorf("Lexer(%q): type = %v, want ERROR", input, tok.Type)
		}
	}
}

func TestLexerNulIsNotEOF(t *testing.T) {
	toks := Tokenize("1\x00 + 2")
	if len(toks) < 2 || toks[1].Type != TokenError {
		t.Fatalf("tokens = %v, want an error token after 1", toks)
	}
	if toks[len(toks)-1].Type != TokenEOF {
		t.Errorf("last token = %v, want EOF", toks[len(toks)-1])
	}
}

func TestLexerColumns(t *testing.T) {
	toks := Tokenize("a +  bb")
	cols := []int{1, 3, 6}
	for i, c := range cols {
		if toks[i].Pos.Column != c {
			t.Errorf("token[%d] column = %d, want %d", i, toks[i].Pos.Column, c)
		}
	}
}

func TestIsIdentifier(t *testing.T) {
	tests := map[string]bool{
		"x":       true,
		"x1":      true,
		"_":       true,
		"const_a": true,
		"1x":      false,
		"":        false,
		"a b":     false,
		"a-b":     false,
	}
	for in, want := range tests {
		if got := IsIdentifier(in); got != want {
			t.Errorf("IsIdentifier(%q) = %v, want %v", in, got, want)
		}
	}
}
