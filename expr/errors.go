package expr

import (
	"errors"
	"fmt"
)

// Error categories carried by EvalError. Test with errors.Is.
var (
	ErrSyntax         = errors.New("invalid syntax")
	ErrUnknownName    = errors.New("name not found")
	ErrOperand        = errors.New("unsupported operand")
	ErrDivisionByZero = errors.New("division by zero")
	ErrArity          = errors.New("wrong number of arguments")
)

// EvalError reports why an expression could not be evaluated.
type EvalError struct {
	Expr   string // expression text, as given
	Detail string
	Err    error // one of the categories above
}

func newEvalError(text string, kind error, format string, args ...interface{}) *EvalError {
	return &EvalError{Expr: text, Detail: fmt.Sprintf(format, args...), Err: kind}
}

func (e *EvalError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("expression %q: %v", e.Expr, e.Err)
	}
	return fmt.Sprintf("expression %q: %v: %s", e.Expr, e.Err, e.Detail)
}

func (e *EvalError) Unwrap() error { return e.Err }
