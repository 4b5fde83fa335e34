package vm

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/stacker-lang/stacker/expr"
)

// ---------------------------------------------------------------------------
// Dispatch: one handler per instruction kind
// ---------------------------------------------------------------------------

// dispatch executes in, the instruction at f.PC-1 of seq. Handlers that
// redirect control set f.PC.
func (i *Interpreter) dispatch(in Instruction, f *Frame, seq []Instruction) {
	ci := Classify(in.Text, i.syms.HasSubroutine)
	i.log.Debugf("run %s: %d %s: %s", i.id, in.Line, ci.Kind, ci.Text)

	var err error
	switch ci.Kind {
	case KindNop, KindEnd:
	case KindIf:
		err = i.execIf(ci, f, seq)
	case KindInclude:
		err = i.execInclude(ci)
	case KindDeclare:
		err = i.execDeclare(ci)
	case KindBuiltin:
		err = i.execBuiltin(ci)
	case KindAssign:
		err = i.execAssign(ci)
	case KindDelete:
		err = i.syms.Delete(ci.Name)
	case KindPrint:
		i.execPrint(ci)
	case KindReduce:
		err = i.execReduce(ci)
	case KindDef:
		err = i.execDef(ci, f, seq)
	case KindCall:
		i.execCall(in, ci)
	case KindElse:
		next, ok := i.scan.skipElse(seq, f.PC)
		f.PC = next
		if !ok {
			err = fmt.Errorf("%s: %w", KeywordElse, ErrUnterminatedBlock)
		}
	case KindInfo:
		err = i.Snapshot().WriteText(i.stdout)
	case KindPause:
		if werr := i.opts.Waiter.Wait(); werr != nil {
			err = fmt.Errorf("%w: %v", ErrPause, werr)
		}
	default:
		err = ErrInvalidInstruction
	}
	if err != nil {
		i.report(in, err)
	}
}

// execIf evaluates the predicate. A true predicate falls into the block; a
// false one skips to the matching altrimenti or end. A predicate that
// cannot be evaluated skips the whole conditional, else branch included.
func (i *Interpreter) execIf(ci Instr, f *Frame, seq []Instruction) error {
	taken, err := i.predicate(ci.Arg)
	if err != nil {
		next, _ := i.scan.skipTo(seq, f.PC)
		f.PC = next
		return err
	}
	if taken {
		return nil
	}
	next, ok := i.scan.skipConditional(seq, f.PC)
	f.PC = next
	if !ok {
		return fmt.Errorf("%s: %w", KeywordIf, ErrUnterminatedBlock)
	}
	return nil
}

func (i *Interpreter) predicate(text string) (bool, error) {
	v, err := expr.Evaluate(text, i.syms)
	if err != nil {
		return false, err
	}
	taken, err := v.Truthy()
	if err != nil {
		return false, fmt.Errorf("%s: %w", v, ErrCondition)
	}
	return taken, nil
}

// execInclude appends a library to the program. Each library is included
// at most once per run.
func (i *Interpreter) execInclude(ci Instr) error {
	name := ci.Arg
	if i.included[name] {
		i.log.Debugf("run %s: %s already included", i.id, name)
		return nil
	}
	if i.opts.Libraries == nil {
		return fmt.Errorf("%s: no library loader: %w", name, ErrLibrary)
	}
	lines, err := i.opts.Libraries.LoadLibrary(name)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", name, ErrLibrary, err)
	}
	if err := i.prog.Append(lines...); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	i.included[name] = true
	i.log.Infof("run %s: included %s (%d instructions)", i.id, name, len(lines))
	return nil
}

func (i *Interpreter) execDeclare(ci Instr) error {
	var errs []error
	for _, name := range ci.Args {
		if err := i.checkName(name); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := i.store(name, expr.Int(0)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (i *Interpreter) execBuiltin(ci Instr) error {
	if err := i.checkName(ci.Name); err != nil {
		return err
	}
	v, err := expr.Evaluate(ci.Arg, i.syms)
	if err != nil {
		return err
	}
	if !v.IsNumber() {
		return fmt.Errorf("%s of %s: %w", ci.Keyword, v.Kind(), expr.ErrOperand)
	}
	var result expr.Value
	switch ci.Keyword {
	case KeywordSqrt:
		if v.Float64() < 0 {
			return fmt.Errorf("%s of negative %s: %w", ci.Keyword, v, expr.ErrOperand)
		}
		result = expr.Float(math.Sqrt(v.Float64()))
	case KeywordSquare:
		if result, err = expr.Apply(expr.TokenStar, v, v); err != nil {
			return err
		}
	}
	return i.store(ci.Name, result)
}

// execAssign evaluates the right-hand side as a call, a lambda literal or
// an expression, in that order.
func (i *Interpreter) execAssign(ci Instr) error {
	if err := i.checkName(ci.Name); err != nil {
		return err
	}
	var (
		v   expr.Value
		err error
	)
	if callee, args, ok := CallShape(ci.Arg); ok {
		v, err = i.call(callee, args)
	} else if expr.IsLambdaLiteral(ci.Arg) {
		var l *expr.Lambda
		if l, err = expr.ParseLambda(ci.Arg); err == nil {
			v = expr.Func(l)
		}
	} else {
		v, err = expr.Evaluate(ci.Arg, i.syms)
	}
	if err != nil {
		return err
	}
	return i.store(ci.Name, v)
}

// call invokes a stored callable, or a host function if no variable or
// constant shadows the name.
func (i *Interpreter) call(callee string, argText []string) (expr.Value, error) {
	var fn expr.Callable
	if v, ok := i.syms.Resolve(callee); ok {
		if v.Kind() != expr.KindFunc {
			return expr.Value{}, fmt.Errorf("%s is %s: %w", callee, v.Kind(), ErrUnresolvedCallable)
		}
		fn = v.Callable()
	} else if h, ok := i.host[callee]; ok {
		fn = h
	} else {
		return expr.Value{}, fmt.Errorf("%s: %w", callee, ErrUnresolvedCallable)
	}

	args := make([]expr.Value, len(argText))
	for n, text := range argText {
		a, err := expr.Evaluate(text, i.syms)
		if err != nil {
			return expr.Value{}, err
		}
		args[n] = a
	}
	return fn.Call(args, i.syms)
}

// CallShape splits `name(a, b)` into its callee and argument texts. The
// parenthesis after name must close at the end of text.
func CallShape(text string) (callee string, args []string, ok bool) {
	open := strings.IndexByte(text, '(')
	if open <= 0 || !strings.HasSuffix(text, ")") {
		return "", nil, false
	}
	callee = strings.TrimSpace(text[:open])
	if !expr.IsIdentifier(callee) || expr.IsReserved(callee) {
		return "", nil, false
	}
	depth := 0
	for n := open; n < len(text); n++ {
		switch text[n] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && n != len(text)-1 {
				return "", nil, false
			}
		}
	}
	if depth != 0 {
		return "", nil, false
	}
	return callee, expr.SplitArgs(text[open+1 : len(text)-1]), true
}

// execPrint writes each operand on its own line: the value of a variable,
// else of a constant, else the operand text itself.
func (i *Interpreter) execPrint(ci Instr) {
	if len(ci.Args) == 0 {
		fmt.Fprintln(i.stdout)
		return
	}
	for _, operand := range ci.Args {
		if v, ok := i.syms.Resolve(operand); ok {
			fmt.Fprintln(i.stdout, v)
			continue
		}
		fmt.Fprintln(i.stdout, operand)
	}
}

// execReduce folds the operands with + (somma) or * (moltiplica) and
// stores the result in the target. No operands yield 0 and 1.
func (i *Interpreter) execReduce(ci Instr) error {
	if err := i.checkName(ci.Name); err != nil {
		return err
	}
	op, acc := expr.TokenPlus, expr.Int(0)
	if ci.Keyword == KeywordProduct {
		op, acc = expr.TokenStar, expr.Int(1)
	}
	for _, operand := range ci.Args {
		v, err := i.operand(operand)
		if err != nil {
			return err
		}
		if acc, err = expr.Apply(op, acc, v); err != nil {
			return err
		}
	}
	return i.store(ci.Name, acc)
}

// operand resolves a reduction operand as a name or a numeric literal.
func (i *Interpreter) operand(text string) (expr.Value, error) {
	v, err := i.syms.Get(text)
	if err == nil {
		return v, nil
	}
	if n, ok := expr.ParseNumber(text); ok {
		return n, nil
	}
	return expr.Value{}, err
}

// execDef captures the body up to the matching end. The body is consumed
// even when the definition is rejected.
func (i *Interpreter) execDef(ci Instr, f *Frame, seq []Instruction) error {
	body, next, ok := i.scan.captureBlock(seq, f.PC)
	f.PC = next
	if !ok {
		return fmt.Errorf("%s %s: %w", KeywordDef, ci.Name, ErrUnterminatedBlock)
	}
	if IsReservedName(ci.Name) {
		return fmt.Errorf("%s: %w", ci.Name, ErrReservedName)
	}
	i.syms.DefineSubroutine(ci.Name, body)
	i.log.Debugf("run %s: defined %s (%d instructions)", i.id, ci.Name, len(body))
	return nil
}

// execCall enters a subroutine. The caller's frame already points past
// the call, so returning resumes at the next instruction.
func (i *Interpreter) execCall(in Instruction, ci Instr) {
	body, _ := i.syms.LookupSubroutine(ci.Name)
	if err := i.calls.Push(&Frame{Name: ci.Name, Seq: body}); err != nil {
		i.abort(in, err)
	}
}

// store binds name as a constant or variable according to its prefix.
func (i *Interpreter) store(name string, v expr.Value) error {
	if IsConstantName(name) {
		return i.syms.SetConstant(name, v)
	}
	i.syms.SetVariable(name, v)
	return nil
}

func (i *Interpreter) checkName(name string) error {
	if !expr.IsIdentifier(name) {
		return fmt.Errorf("invalid name %q: %w", name, ErrInvalidInstruction)
	}
	if IsReservedName(name) {
		return fmt.Errorf("%s: %w", name, ErrReservedName)
	}
	return nil
}
