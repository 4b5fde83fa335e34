package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Parser: Recursive descent parser for the expression grammar
//
//	comparison     := additive (("==" | "!=" | "<" | ">" | "<=" | ">=") additive)*
//	additive       := multiplicative (("+" | "-") multiplicative)*
//	multiplicative := unary (("*" | "/" | "//" | "%") unary)*
//	unary          := ("-" | "+") unary | power
//	power          := primary ("**" unary)?
//	primary        := INTEGER | FLOAT | True | False | IDENTIFIER | "(" comparison ")"
// ---------------------------------------------------------------------------

// Parser parses a single expression into an AST.
type Parser struct {
	lexer     *Lexer
	curToken  Token
	peekToken Token
	errors    []string
	input     string
}

// NewParser creates a new parser for the given input.
func NewParser(input string) *Parser {
	p := &Parser{
		lexer: NewLexer(input),
		input: input,
	}
	// Read two tokens to fill curToken and peekToken
	p.nextToken()
	p.nextToken()
	return p
}

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.lexer.NextToken()
}

func (p *Parser) curTokenIs(t TokenType) bool {
	return p.curToken.Type == t
}

// errorf records a parse error.
func (p *Parser) errorf(format string, args ...interface{}) {
	msg := fmt.Sprintf("column %d: %s", p.curToken.Pos.Column, fmt.Sprintf(format, args...))
	p.errors = append(p.errors, msg)
}

// Errors returns accumulated parse errors.
func (p *Parser) Errors() []string {
	return p.errors
}

// ParseExpression parses one expression. Trailing input is left unread;
// use Parse to require that the whole input is consumed.
func (p *Parser) ParseExpression() Expr {
	return p.parseComparison()
}

// Parse parses input as exactly one expression.
func Parse(input string) (Expr, error) {
	if strings.TrimSpace(input) == "" {
		return nil, newEvalError(input, ErrSyntax, "empty expression")
	}
	p := NewParser(input)
	e := p.ParseExpression()
	if len(p.errors) == 0 && !p.curTokenIs(TokenEOF) {
		p.errorf("unexpected %s after expression", p.curToken)
	}
	if len(p.errors) > 0 {
		return nil, newEvalError(input, ErrSyntax, strings.Join(p.errors, "; "))
	}
	return e, nil
}

func (p *Parser) parseComparison() Expr {
	left := p.parseAdditive()
	for left != nil && p.curToken.Type.IsComparison() {
		op := p.curToken
		p.nextToken()
		right := p.parseAdditive()
		if right == nil {
			return nil
		}
		left = &Binary{PosVal: op.Pos, Op: op.Type, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAdditive() Expr {
	left := p.parseMultiplicative()
	for left != nil && (p.curTokenIs(TokenPlus) || p.curTokenIs(TokenMinus)) {
		op := p.curToken
		p.nextToken()
		right := p.parseMultiplicative()
		if right == nil {
			return nil
		}
		left = &Binary{PosVal: op.Pos, Op: op.Type, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseMultiplicative() Expr {
	left := p.parseUnary()
	for left != nil {
		switch p.curToken.Type {
		case TokenStar, TokenSlash, TokenSlashSlash, TokenPercent:
		default:
			return left
		}
		op := p.curToken
		p.nextToken()
		right := p.parseUnary()
		if right == nil {
			return nil
		}
		left = &Binary{PosVal: op.Pos, Op: op.Type, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseUnary() Expr {
	if p.curTokenIs(TokenMinus) || p.curTokenIs(TokenPlus) {
		op := p.curToken
		p.nextToken()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return &Unary{PosVal: op.Pos, Op: op.Type, Operand: operand}
	}
	return p.parsePower()
}

// parsePower binds tighter than a unary minus on its left (-2 ** 2 is -4)
// and is right-associative through parseUnary (2 ** 3 ** 2 is 512).
func (p *Parser) parsePower() Expr {
	base := p.parsePrimary()
	if base == nil || !p.curTokenIs(TokenStarStar) {
		return base
	}
	op := p.curToken
	p.nextToken()
	exp := p.parseUnary()
	if exp == nil {
		return nil
	}
	return &Binary{PosVal: op.Pos, Op: TokenStarStar, Left: base, Right: exp}
}

// parsePrimary parses primary expressions.
func (p *Parser) parsePrimary() Expr {
	tok := p.curToken
	switch tok.Type {
	case TokenInteger:
		p.nextToken()
		v, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			// Out of int64 range: keep the magnitude as a float.
			f, ferr := strconv.ParseFloat(tok.Literal, 64)
			if ferr != nil {
				p.errorf("invalid integer: %s", tok.Literal)
				return nil
			}
			return &FloatLiteral{PosVal: tok.Pos, Value: f}
		}
		return &IntLiteral{PosVal: tok.Pos, Value: v}

	case TokenFloat:
		p.nextToken()
		v, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.errorf("invalid float: %s", tok.Literal)
			return nil
		}
		return &FloatLiteral{PosVal: tok.Pos, Value: v}

	case TokenTrue, TokenFalse:
		p.nextToken()
		return &BoolLiteral{PosVal: tok.Pos, Value: tok.Type == TokenTrue}

	case TokenIdentifier:
		p.nextToken()
		if p.curTokenIs(TokenLParen) {
			p.errorf("call syntax is not allowed inside expressions: %s(...)", tok.Literal)
			return nil
		}
		return &Ident{PosVal: tok.Pos, Name: tok.Literal}

	case TokenLParen:
		p.nextToken()
		inner := p.parseComparison()
		if inner == nil {
			return nil
		}
		if !p.curTokenIs(TokenRParen) {
			p.errorf("expected ), got %s", p.curToken.Type)
			return nil
		}
		p.nextToken()
		return inner

	case TokenError:
		p.errorf("%s", tok.Literal)
		return nil

	case TokenEOF:
		p.errorf("unexpected end of expression")
		return nil

	default:
		p.errorf("unexpected token: %s", tok.Type)
		return nil
	}
}
