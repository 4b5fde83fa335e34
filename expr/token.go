package expr

import "fmt"

// ---------------------------------------------------------------------------
// Token types for the expression lexer
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	// Literals
	TokenInteger    // 42
	TokenFloat      // 3.14, 1.5e10, .5
	TokenIdentifier // x, const_pi
	TokenTrue       // True, vero
	TokenFalse      // False, falso

	// Arithmetic operators
	TokenPlus       // +
	TokenMinus      // -
	TokenStar       // *
	TokenSlash      // /
	TokenSlashSlash // //
	TokenPercent    // %
	TokenStarStar   // **

	// Comparison operators
	TokenEQ // ==
	TokenNE // !=
	TokenLT // <
	TokenGT // >
	TokenLE // <=
	TokenGE // >=

	// Delimiters
	TokenLParen // (
	TokenRParen // )
	TokenComma  // ,
)

var tokenNames = map[TokenType]string{
	TokenEOF:        "EOF",
	TokenError:      "ERROR",
	TokenInteger:    "INTEGER",
	TokenFloat:      "FLOAT",
	TokenIdentifier: "IDENTIFIER",
	TokenTrue:       "True",
	TokenFalse:      "False",
	TokenPlus:       "+",
	TokenMinus:      "-",
	TokenStar:       "*",
	TokenSlash:      "/",
	TokenSlashSlash: "//",
	TokenPercent:    "%",
	TokenStarStar:   "**",
	TokenEQ:         "==",
	TokenNE:         "!=",
	TokenLT:         "<",
	TokenGT:         ">",
	TokenLE:         "<=",
	TokenGE:         ">=",
	TokenLParen:     "(",
	TokenRParen:     ")",
	TokenComma:      ",",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", t)
}

// IsComparison reports whether t is one of the comparison operators.
func (t TokenType) IsComparison() bool {
	switch t {
	case TokenEQ, TokenNE, TokenLT, TokenGT, TokenLE, TokenGE:
		return true
	}
	return false
}

// Position is a location inside a single expression.
type Position struct {
	Offset int // byte offset
	Column int // 1-based column
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string   // the raw text
	Pos     Position // start position
}

func (t Token) String() string {
	if t.Type == TokenEOF {
		return "EOF"
	}
	if t.Type == TokenError {
		return fmt.Sprintf("ERROR(%s)", t.Literal)
	}
	if len(t.Literal) > 20 {
		return fmt.Sprintf("%s(%q...)", t.Type, t.Literal[:20])
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
}

// Reserved words mapped to their token types.
var reservedWords = map[string]TokenType{
	"True":  TokenTrue,
	"False": TokenFalse,
	"vero":  TokenTrue,
	"falso": TokenFalse,
}

// IsReserved reports whether s is a boolean literal word and so cannot
// name a variable.
func IsReserved(s string) bool {
	_, ok := reservedWords[s]
	return ok
}
