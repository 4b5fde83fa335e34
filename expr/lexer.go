package expr

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Lexer: Tokenizer for arithmetic/comparison expressions
// ---------------------------------------------------------------------------

// Lexer tokenizes a single expression.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      rune // current character
	col     int  // current column (1-based)
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// readChar reads the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // EOF
		l.pos = l.readPos
		l.col++
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += size
	l.col++
}

// peekChar returns the next character without consuming it.
func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

// atEOF reports whether the whole input has been read. A NUL rune inside
// the input is an ordinary character.
func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) position() Position {
	return Position{Offset: l.pos, Column: l.col}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		l.readChar()
	}

	pos := l.position()

	switch {
	case l.atEOF():
		return Token{Type: TokenEOF, Pos: pos}

	case l.ch == '(':
		l.readChar()
		return Token{Type: TokenLParen, Literal: "(", Pos: pos}

	case l.ch == ')':
		l.readChar()
		return Token{Type: TokenRParen, Literal: ")", Pos: pos}

	case l.ch == ',':
		l.readChar()
		return Token{Type: TokenComma, Literal: ",", Pos: pos}

	case l.ch == '+':
		l.readChar()
		return Token{Type: TokenPlus, Literal: "+", Pos: pos}

	case l.ch == '-':
		l.readChar()
		return Token{Type: TokenMinus, Literal: "-", Pos: pos}

	case l.ch == '%':
		l.readChar()
		return Token{Type: TokenPercent, Literal: "%", Pos: pos}

	case l.ch == '*':
		return l.readDoubled('*', TokenStar, TokenStarStar, pos)

	case l.ch == '/':
		return l.readDoubled('/', TokenSlash, TokenSlashSlash, pos)

	case l.ch == '=' || l.ch == '!' || l.ch == '<' || l.ch == '>':
		return l.readComparison(pos)

	case isDigit(l.ch), l.ch == '.' && isDigit(l.peekChar()):
		return l.readNumber(pos)

	case isLetter(l.ch) || l.ch == '_':
		return l.readIdentifier(pos)

	default:
		ch := l.ch
		l.readChar()
		return Token{Type: TokenError, Literal: fmt.Sprintf("unexpected character: %q", ch), Pos: pos}
	}
}

// readDoubled reads an operator that has a one- and a two-character form
// (* and **, / and //).
func (l *Lexer) readDoubled(ch rune, single, double TokenType, pos Position) Token {
	l.readChar()
	if l.ch == ch {
		l.readChar()
		return Token{Type: double, Literal: string([]rune{ch, ch}), Pos: pos}
	}
	return Token{Type: single, Literal: string(ch), Pos: pos}
}

// readComparison reads ==, !=, <, >, <= and >=. A lone = or ! is an error:
// assignment is never part of an expression.
func (l *Lexer) readComparison(pos Position) Token {
	first := l.ch
	l.readChar()
	if l.ch == '=' {
		l.readChar()
		switch first {
		case '=':
			return Token{Type: TokenEQ, Literal: "==", Pos: pos}
		case '!':
			return Token{Type: TokenNE, Literal: "!=", Pos: pos}
		case '<':
			return Token{Type: TokenLE, Literal: "<=", Pos: pos}
		default:
			return Token{Type: TokenGE, Literal: ">=", Pos: pos}
		}
	}
	switch first {
	case '<':
		return Token{Type: TokenLT, Literal: "<", Pos: pos}
	case '>':
		return Token{Type: TokenGT, Literal: ">", Pos: pos}
	}
	return Token{Type: TokenError, Literal: fmt.Sprintf("unexpected character: %q", first), Pos: pos}
}

// readNumber reads an integer or float literal.
func (l *Lexer) readNumber(pos Position) Token {
	start := l.pos
	isFloat := false

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' {
		isFloat = true
		l.readChar() // consume .
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	// Exponent only when digits follow, so "2e" stays an error in the parser
	// rather than silently swallowing an identifier.
	if (l.ch == 'e' || l.ch == 'E') && l.exponentFollows() {
		isFloat = true
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	if isFloat {
		return Token{Type: TokenFloat, Literal: l.input[start:l.pos], Pos: pos}
	}
	return Token{Type: TokenInteger, Literal: l.input[start:l.pos], Pos: pos}
}

func (l *Lexer) exponentFollows() bool {
	rest := l.input[l.readPos:]
	if len(rest) > 0 && (rest[0] == '+' || rest[0] == '-') {
		rest = rest[1:]
	}
	return len(rest) > 0 && rest[0] >= '0' && rest[0] <= '9'
}

// readIdentifier reads an identifier or reserved word.
func (l *Lexer) readIdentifier(pos Position) Token {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	literal := l.input[start:l.pos]
	if tokType, ok := reservedWords[literal]; ok {
		return Token{Type: tokType, Literal: literal, Pos: pos}
	}
	return Token{Type: TokenIdentifier, Literal: literal, Pos: pos}
}

// Tokenize returns every token of input up to and including EOF.
func Tokenize(input string) []Token {
	l := NewLexer(input)
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == TokenEOF {
			return toks
		}
	}
}

// Helper functions

func isLetter(r rune) bool {
	return unicode.IsLetter(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// IsIdentifier reports whether s is a well-formed name: a letter or
// underscore followed by letters, digits or underscores.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || isLetter(r) {
			continue
		}
		if i > 0 && isDigit(r) {
			continue
		}
		return false
	}
	return true
}
