package expr

import (
	"math"
	"math/bits"
	"strconv"
)

// Resolver is the read side of a symbol table.
type Resolver interface {
	// Resolve returns the value bound to name, looking at variables
	// before constants.
	Resolve(name string) (Value, bool)
}

// Evaluate parses and evaluates text against r.
//
// A name that r cannot resolve is parsed as a floating-point literal
// (so "inf" and "nan" evaluate); failing that, evaluation fails with
// ErrUnknownName. Evaluation never mutates r.
func Evaluate(text string, r Resolver) (Value, error) {
	e, err := Parse(text)
	if err != nil {
		return Value{}, err
	}
	return Eval(e, text, r)
}

// Eval evaluates a parsed expression. text is used in error messages.
func Eval(e Expr, text string, r Resolver) (Value, error) {
	ev := evaluator{text: text, r: r}
	return ev.eval(e)
}

type evaluator struct {
	text string
	r    Resolver
}

func (ev *evaluator) fail(kind error, format string, args ...interface{}) error {
	return newEvalError(ev.text, kind, format, args...)
}

func (ev *evaluator) eval(e Expr) (Value, error) {
	switch n := e.(type) {
	case *IntLiteral:
		return Int(n.Value), nil
	case *FloatLiteral:
		return Float(n.Value), nil
	case *BoolLiteral:
		return Bool(n.Value), nil
	case *Ident:
		return ev.lookup(n.Name)
	case *Unary:
		v, err := ev.eval(n.Operand)
		if err != nil {
			return Value{}, err
		}
		return ev.unary(n.Op, v)
	case *Binary:
		left, err := ev.eval(n.Left)
		if err != nil {
			return Value{}, err
		}
		right, err := ev.eval(n.Right)
		if err != nil {
			return Value{}, err
		}
		return ev.binary(n.Op, left, right)
	}
	return Value{}, ev.fail(ErrSyntax, "unsupported node %T", e)
}

func (ev *evaluator) lookup(name string) (Value, error) {
	if ev.r != nil {
		if v, ok := ev.r.Resolve(name); ok {
			return v, nil
		}
	}
	if f, err := strconv.ParseFloat(name, 64); err == nil {
		return Float(f), nil
	}
	return Value{}, ev.fail(ErrUnknownName, "%s", name)
}

func (ev *evaluator) unary(op TokenType, v Value) (Value, error) {
	switch v.kind {
	case KindInt:
		if op == TokenMinus {
			return negate(v.i), nil
		}
		return v, nil
	case KindFloat:
		if op == TokenMinus {
			return Float(-v.f), nil
		}
		return v, nil
	}
	return Value{}, ev.fail(ErrOperand, "%s%s", op, v.kind)
}

func (ev *evaluator) binary(op TokenType, a, b Value) (Value, error) {
	if op.IsComparison() {
		return ev.compare(op, a, b)
	}
	if !a.IsNumber() || !b.IsNumber() {
		return Value{}, ev.fail(ErrOperand, "%s %s %s", a.kind, op, b.kind)
	}
	if a.kind == KindInt && b.kind == KindInt {
		return ev.intArith(op, a.i, b.i)
	}
	return ev.floatArith(op, a.Float64(), b.Float64())
}

func (ev *evaluator) intArith(op TokenType, a, b int64) (Value, error) {
	switch op {
	case TokenPlus:
		if r, ok := addInt(a, b); ok {
			return Int(r), nil
		}
		return Float(float64(a) + float64(b)), nil
	case TokenMinus:
		if r, ok := subInt(a, b); ok {
			return Int(r), nil
		}
		return Float(float64(a) - float64(b)), nil
	case TokenStar:
		if r, ok := mulInt(a, b); ok {
			return Int(r), nil
		}
		return Float(float64(a) * float64(b)), nil
	case TokenSlash:
		if b == 0 {
			return Value{}, ev.fail(ErrDivisionByZero, "")
		}
		return Float(float64(a) / float64(b)), nil
	case TokenSlashSlash:
		if b == 0 {
			return Value{}, ev.fail(ErrDivisionByZero, "")
		}
		if a == math.MinInt64 && b == -1 {
			return Float(-float64(a)), nil
		}
		return Int(FloorDiv(a, b)), nil
	case TokenPercent:
		if b == 0 {
			return Value{}, ev.fail(ErrDivisionByZero, "")
		}
		return Int(FloorMod(a, b)), nil
	case TokenStarStar:
		if b < 0 {
			return ev.floatArith(op, float64(a), float64(b))
		}
		if r, ok := ipow(a, b); ok {
			return Int(r), nil
		}
		return ev.floatArith(op, float64(a), float64(b))
	}
	return Value{}, ev.fail(ErrOperand, "int %s int", op)
}

func (ev *evaluator) floatArith(op TokenType, a, b float64) (Value, error) {
	switch op {
	case TokenPlus:
		return Float(a + b), nil
	case TokenMinus:
		return Float(a - b), nil
	case TokenStar:
		return Float(a * b), nil
	case TokenSlash:
		if b == 0 {
			return Value{}, ev.fail(ErrDivisionByZero, "")
		}
		return Float(a / b), nil
	case TokenSlashSlash:
		if b == 0 {
			return Value{}, ev.fail(ErrDivisionByZero, "")
		}
		return Float(math.Floor(a / b)), nil
	case TokenPercent:
		if b == 0 {
			return Value{}, ev.fail(ErrDivisionByZero, "")
		}
		r := math.Mod(a, b)
		if r != 0 && (r < 0) != (b < 0) {
			r += b
		}
		return Float(r), nil
	case TokenStarStar:
		if a == 0 && b < 0 {
			return Value{}, ev.fail(ErrDivisionByZero, "0 to a negative power")
		}
		r := math.Pow(a, b)
		if math.IsNaN(r) && !math.IsNaN(a) && !math.IsNaN(b) {
			return Value{}, ev.fail(ErrOperand, "%v ** %v has no real result", a, b)
		}
		return Float(r), nil
	}
	return Value{}, ev.fail(ErrOperand, "float %s float", op)
}

func (ev *evaluator) compare(op TokenType, a, b Value) (Value, error) {
	switch op {
	case TokenEQ:
		return Bool(a.Equal(b)), nil
	case TokenNE:
		return Bool(!a.Equal(b)), nil
	}
	if !a.IsNumber() || !b.IsNumber() {
		return Value{}, ev.fail(ErrOperand, "%s %s %s", a.kind, op, b.kind)
	}
	c, ok := compareNumbers(a, b)
	if !ok {
		return Bool(false), nil
	}
	switch op {
	case TokenLT:
		return Bool(c < 0), nil
	case TokenGT:
		return Bool(c > 0), nil
	case TokenLE:
		return Bool(c <= 0), nil
	default:
		return Bool(c >= 0), nil
	}
}

// Apply applies a binary operator outside of a parsed expression, with the
// same promotion and error rules as Evaluate.
func Apply(op TokenType, a, b Value) (Value, error) {
	ev := evaluator{text: a.String() + " " + op.String() + " " + b.String()}
	return ev.binary(op, a, b)
}

// FloorDiv divides rounding toward negative infinity. b must be non-zero.
func FloorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// FloorMod is the remainder matching FloorDiv: its sign follows b.
func FloorMod(a, b int64) int64 {
	r := a % b
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}

// ipow raises base to a non-negative exp. ok is false when the result
// does not fit in an int64.
func ipow(base, exp int64) (result int64, ok bool) {
	result = 1
	for exp > 0 {
		if exp&1 == 1 {
			if result, ok = mulInt(result, base); !ok {
				return 0, false
			}
		}
		exp >>= 1
		if exp > 0 {
			if base, ok = mulInt(base, base); !ok {
				return 0, false
			}
		}
	}
	return result, true
}

// ---------------------------------------------------------------------------
// Checked integer arithmetic. Results that leave the int64 range are
// computed in float64 by the callers.
// ---------------------------------------------------------------------------

func addInt(a, b int64) (int64, bool) {
	r := a + b
	return r, (r > a) == (b > 0)
}

func subInt(a, b int64) (int64, bool) {
	r := a - b
	return r, (r < a) == (b > 0)
}

func mulInt(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	hi, lo := bits.Mul64(absU64(a), absU64(b))
	if hi != 0 {
		return 0, false
	}
	if (a < 0) != (b < 0) {
		if lo > 1<<63 {
			return 0, false
		}
		return int64(-lo), true
	}
	if lo > math.MaxInt64 {
		return 0, false
	}
	return int64(lo), true
}

func absU64(a int64) uint64 {
	if a < 0 {
		return uint64(-a)
	}
	return uint64(a)
}

// negate returns -i, as a float when i is math.MinInt64.
func negate(i int64) Value {
	if i == math.MinInt64 {
		return Float(-float64(i))
	}
	return Int(-i)
}

// compareNumbers orders two numbers exactly, including an int against a
// float beyond 2^53. ok is false when either side is NaN.
func compareNumbers(a, b Value) (c int, ok bool) {
	switch {
	case a.kind == KindInt && b.kind == KindInt:
		return cmpInt(a.i, b.i), true
	case a.kind == KindInt:
		return cmpIntFloat(a.i, b.f)
	case b.kind == KindInt:
		c, ok = cmpIntFloat(b.i, a.f)
		return -c, ok
	}
	if math.IsNaN(a.f) || math.IsNaN(b.f) {
		return 0, false
	}
	switch {
	case a.f < b.f:
		return -1, true
	case a.f > b.f:
		return 1, true
	}
	return 0, true
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpIntFloat(i int64, f float64) (int, bool) {
	switch {
	case math.IsNaN(f):
		return 0, false
	case f >= 1<<63:
		return -1, true
	case f < -(1 << 63):
		return 1, true
	}
	t := math.Trunc(f)
	if c := cmpInt(i, int64(t)); c != 0 {
		return c, true
	}
	switch {
	case f > t:
		return -1, true
	case f < t:
		return 1, true
	}
	return 0, true
}
