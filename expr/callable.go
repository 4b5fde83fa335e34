package expr

import (
	"fmt"
	"math"
	"strings"
)

// Callable is a value that can be invoked through the assignment call
// form `name = f(args...)`.
type Callable interface {
	// Call invokes the callable. r resolves free names in a lambda body.
	Call(args []Value, r Resolver) (Value, error)
	String() string
}

// ---------------------------------------------------------------------------
// Lambda: user-defined single-expression function
// ---------------------------------------------------------------------------

// Lambda closes over its parameter names and body text. Free names in the
// body are resolved when the lambda is called, not when it is defined.
type Lambda struct {
	Params []string
	Body   string
	node   Expr
}

// LambdaPrefix introduces a lambda literal on the right of an assignment.
const LambdaPrefix = "lambda"

// IsLambdaLiteral reports whether rhs has the shape `lambda params: body`.
func IsLambdaLiteral(rhs string) bool {
	if !strings.HasPrefix(rhs, LambdaPrefix) {
		return false
	}
	rest := rhs[len(LambdaPrefix):]
	if rest == "" || !(rest[0] == ' ' || rest[0] == '\t' || rest[0] == ':') {
		return false
	}
	return strings.Contains(rest, ":")
}

// ParseLambda parses `lambda x, y: body`. The body is parsed eagerly so a
// malformed lambda is rejected at definition.
func ParseLambda(rhs string) (*Lambda, error) {
	if !IsLambdaLiteral(rhs) {
		return nil, newEvalError(rhs, ErrSyntax, "not a lambda literal")
	}
	rest := rhs[len(LambdaPrefix):]
	colon := strings.IndexByte(rest, ':')
	paramText := strings.TrimSpace(rest[:colon])
	body := strings.TrimSpace(rest[colon+1:])

	var params []string
	if paramText != "" {
		seen := make(map[string]bool)
		for _, p := range strings.Split(paramText, ",") {
			p = strings.TrimSpace(p)
			if !IsIdentifier(p) {
				return nil, newEvalError(rhs, ErrSyntax, "invalid parameter name %q", p)
			}
			if seen[p] {
				return nil, newEvalError(rhs, ErrSyntax, "duplicate parameter %q", p)
			}
			seen[p] = true
			params = append(params, p)
		}
	}

	node, err := Parse(body)
	if err != nil {
		return nil, err
	}
	return &Lambda{Params: params, Body: body, node: node}, nil
}

// Call binds args to the parameters and evaluates the body.
func (l *Lambda) Call(args []Value, r Resolver) (Value, error) {
	if len(args) != len(l.Params) {
		return Value{}, newEvalError(l.Body, ErrArity, "lambda takes %d, got %d", len(l.Params), len(args))
	}
	s := &scope{vars: make(map[string]Value, len(args)), parent: r}
	for i, p := range l.Params {
		s.vars[p] = args[i]
	}
	return Eval(l.node, l.Body, s)
}

func (l *Lambda) String() string {
	return fmt.Sprintf("<lambda %s>", strings.Join(l.Params, ", "))
}

// scope layers lambda parameters over the enclosing resolver.
type scope struct {
	vars   map[string]Value
	parent Resolver
}

func (s *scope) Resolve(name string) (Value, bool) {
	if v, ok := s.vars[name]; ok {
		return v, true
	}
	if s.parent == nil {
		return Value{}, false
	}
	return s.parent.Resolve(name)
}

// ---------------------------------------------------------------------------
// HostFunc: explicitly registered Go function
// ---------------------------------------------------------------------------

// HostFunc is a Go function exposed to programs by name. Arity -1 means
// variadic with at least one argument.
type HostFunc struct {
	Name  string
	Arity int
	Fn    func(args []Value) (Value, error)
}

func (h *HostFunc) Call(args []Value, _ Resolver) (Value, error) {
	if h.Arity >= 0 && len(args) != h.Arity {
		return Value{}, newEvalError(h.Name, ErrArity, "%s takes %d, got %d", h.Name, h.Arity, len(args))
	}
	if h.Arity < 0 && len(args) == 0 {
		return Value{}, newEvalError(h.Name, ErrArity, "%s needs at least one argument", h.Name)
	}
	return h.Fn(args)
}

func (h *HostFunc) String() string {
	return "<host " + h.Name + ">"
}

// DefaultHostFuncs returns the host function table installed in every
// interpreter: abs, min, max, round, int and float.
func DefaultHostFuncs() []*HostFunc {
	return []*HostFunc{
		{Name: "abs", Arity: 1, Fn: func(args []Value) (Value, error) {
			v, err := numberArg("abs", args[0])
			if err != nil {
				return Value{}, err
			}
			if v.kind == KindInt {
				if v.i < 0 {
					return negate(v.i), nil
				}
				return v, nil
			}
			return Float(math.Abs(v.f)), nil
		}},
		{Name: "min", Arity: -1, Fn: func(args []Value) (Value, error) {
			return extremum("min", args, func(c float64) bool { return c < 0 })
		}},
		{Name: "max", Arity: -1, Fn: func(args []Value) (Value, error) {
			return extremum("max", args, func(c float64) bool { return c > 0 })
		}},
		{Name: "round", Arity: 1, Fn: func(args []Value) (Value, error) {
			v, err := numberArg("round", args[0])
			if err != nil {
				return Value{}, err
			}
			if v.kind == KindInt {
				return v, nil
			}
			return Int(int64(math.RoundToEven(v.f))), nil
		}},
		{Name: "int", Arity: 1, Fn: func(args []Value) (Value, error) {
			if args[0].kind == KindBool {
				if args[0].b {
					return Int(1), nil
				}
				return Int(0), nil
			}
			v, err := numberArg("int", args[0])
			if err != nil {
				return Value{}, err
			}
			return Int(v.Int64()), nil
		}},
		{Name: "float", Arity: 1, Fn: func(args []Value) (Value, error) {
			v, err := numberArg("float", args[0])
			if err != nil {
				return Value{}, err
			}
			return Float(v.Float64()), nil
		}},
	}
}

func numberArg(fn string, v Value) (Value, error) {
	if !v.IsNumber() {
		return Value{}, newEvalError(fn, ErrOperand, "%s expects a number, got %s", fn, v.kind)
	}
	return v, nil
}

func extremum(fn string, args []Value, better func(float64) bool) (Value, error) {
	best, err := numberArg(fn, args[0])
	if err != nil {
		return Value{}, err
	}
	for _, a := range args[1:] {
		if _, err := numberArg(fn, a); err != nil {
			return Value{}, err
		}
		if better(a.Float64() - best.Float64()) {
			best = a
		}
	}
	return best, nil
}

// SplitArgs splits a comma-separated list at parenthesis depth zero and
// trims each item. An empty or blank list yields no items.
func SplitArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(parts, strings.TrimSpace(s[start:]))
}
