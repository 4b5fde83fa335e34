package expr

import "strings"

// ---------------------------------------------------------------------------
// AST: expression tree
// ---------------------------------------------------------------------------

// Expr is the interface for expression nodes.
type Expr interface {
	Pos() Position
	String() string
	expr() // marker method
}

// IntLiteral represents an integer literal.
type IntLiteral struct {
	PosVal Position
	Value  int64
}

// FloatLiteral represents a floating-point literal.
type FloatLiteral struct {
	PosVal Position
	Value  float64
}

// BoolLiteral represents True/False.
type BoolLiteral struct {
	PosVal Position
	Value  bool
}

// Ident is a name resolved against the symbol table at evaluation time.
type Ident struct {
	PosVal Position
	Name   string
}

// Unary represents a prefix operator applied to an operand.
type Unary struct {
	PosVal  Position
	Op      TokenType
	Operand Expr
}

// Binary represents an infix operator.
type Binary struct {
	PosVal Position
	Op     TokenType
	Left   Expr
	Right  Expr
}

func (n *IntLiteral) Pos() Position   { return n.PosVal }
func (n *FloatLiteral) Pos() Position { return n.PosVal }
func (n *BoolLiteral) Pos() Position  { return n.PosVal }
func (n *Ident) Pos() Position        { return n.PosVal }
func (n *Unary) Pos() Position        { return n.PosVal }
func (n *Binary) Pos() Position       { return n.PosVal }

func (n *IntLiteral) expr()   {}
func (n *FloatLiteral) expr() {}
func (n *BoolLiteral) expr()  {}
func (n *Ident) expr()        {}
func (n *Unary) expr()        {}
func (n *Binary) expr()       {}

func (n *IntLiteral) String() string   { return Int(n.Value).String() }
func (n *FloatLiteral) String() string { return Float(n.Value).String() }
func (n *BoolLiteral) String() string  { return Bool(n.Value).String() }
func (n *Ident) String() string        { return n.Name }

func (n *Unary) String() string {
	return "(" + n.Op.String() + n.Operand.String() + ")"
}

func (n *Binary) String() string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(n.Left.String())
	b.WriteByte(' ')
	b.WriteString(n.Op.String())
	b.WriteByte(' ')
	b.WriteString(n.Right.String())
	b.WriteByte(')')
	return b.String()
}

// Names returns the identifiers referenced by e, in order of appearance.
func Names(e Expr) []string {
	var names []string
	var walk func(Expr)
	walk = func(e Expr) {
		switch n := e.(type) {
		case *Ident:
			names = append(names, n.Name)
		case *Unary:
			walk(n.Operand)
		case *Binary:
			walk(n.Left)
			walk(n.Right)
		}
	}
	walk(e)
	return names
}
