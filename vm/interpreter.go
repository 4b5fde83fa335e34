package vm

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/stacker-lang/stacker/expr"
)

// DefaultMaxCallDepth bounds nested subroutine calls when Options leaves
// MaxCallDepth at zero.
const DefaultMaxCallDepth = 10000

// LibraryLoader resolves the library named by an includi instruction to
// its non-blank lines.
type LibraryLoader interface {
	LoadLibrary(name string) ([]Instruction, error)
}

// Options configure an Interpreter. The zero value is usable.
type Options struct {
	Stdout io.Writer // print and info output; os.Stdout if nil
	Stderr io.Writer // error reports; os.Stderr if nil

	// Libraries resolves includi. With no loader every inclusion fails.
	Libraries LibraryLoader

	// Waiter backs pausa; a KeypressWaiter on os.Stdin if nil.
	Waiter Waiter

	// MaxCallDepth bounds nested subroutine calls. Zero means
	// DefaultMaxCallDepth; negative means unbounded.
	MaxCallDepth int

	// FlatBlocks ends every block at the first end or altrimenti found,
	// ignoring nested blocks.
	FlatBlocks bool
}

// ---------------------------------------------------------------------------
// Interpreter: line-by-line execution engine
// ---------------------------------------------------------------------------

// Interpreter executes one Program against its own Symbols. It is not safe
// for concurrent use; hosts inject values before Run and read them after.
type Interpreter struct {
	id    string
	prog  *Program
	syms  *Symbols
	host  map[string]*expr.HostFunc
	calls *CallStack
	scan  scanner
	opts  Options

	included map[string]bool
	diags    []*RunError
	running  bool
	halted   error

	stdout io.Writer
	stderr io.Writer
	log    commonlog.Logger
}

// New creates an interpreter for prog with an empty symbol table and the
// default host functions installed.
func New(prog *Program, opts Options) *Interpreter {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Waiter == nil {
		opts.Waiter = NewKeypressWaiter(os.Stdin, opts.Stdout)
	}
	switch {
	case opts.MaxCallDepth == 0:
		opts.MaxCallDepth = DefaultMaxCallDepth
	case opts.MaxCallDepth < 0:
		opts.MaxCallDepth = 0
	}

	i := &Interpreter{
		id:       uuid.NewString(),
		prog:     prog,
		syms:     NewSymbols(),
		host:     make(map[string]*expr.HostFunc),
		calls:    newCallStack(opts.MaxCallDepth),
		scan:     scanner{flat: opts.FlatBlocks},
		opts:     opts,
		included: make(map[string]bool),
		stdout:   opts.Stdout,
		stderr:   opts.Stderr,
		log:      commonlog.GetLogger("stacker.vm"),
	}
	for _, h := range expr.DefaultHostFuncs() {
		i.host[h.Name] = h
	}
	return i
}

// ID identifies this run in logs and snapshots.
func (i *Interpreter) ID() string { return i.id }

// Program returns the program being executed.
func (i *Interpreter) Program() *Program { return i.prog }

// Symbols returns the interpreter's symbol table.
func (i *Interpreter) Symbols() *Symbols { return i.syms }

// Inject binds name before a run. Names with the constant prefix become
// constants and obey the write-once rule.
func (i *Interpreter) Inject(name string, v expr.Value) error {
	if i.running {
		return ErrRunning
	}
	if !expr.IsIdentifier(name) {
		return fmt.Errorf("invalid name %q", name)
	}
	if IsReservedName(name) {
		return fmt.Errorf("%s: %w", name, ErrReservedName)
	}
	return i.store(name, v)
}

// RegisterFunc adds a host function callable through `x = name(args)`.
// Arity -1 accepts one or more arguments.
func (i *Interpreter) RegisterFunc(name string, arity int, fn func(args []expr.Value) (expr.Value, error)) error {
	if i.running {
		return ErrRunning
	}
	if !expr.IsIdentifier(name) {
		return fmt.Errorf("invalid name %q", name)
	}
	if IsReservedName(name) {
		return fmt.Errorf("%s: %w", name, ErrReservedName)
	}
	i.host[name] = &expr.HostFunc{Name: name, Arity: arity, Fn: fn}
	return nil
}

// Variable returns a variable's value.
func (i *Interpreter) Variable(name string) (expr.Value, bool) { return i.syms.Variable(name) }

// Constant returns a constant's value.
func (i *Interpreter) Constant(name string) (expr.Value, bool) { return i.syms.Constant(name) }

// Variables returns all variables in definition order.
func (i *Interpreter) Variables() []Binding { return i.syms.Variables() }

// Constants returns all constants in definition order.
func (i *Interpreter) Constants() []Binding { return i.syms.Constants() }

// Diagnostics returns the recoverable errors reported so far.
func (i *Interpreter) Diagnostics() []*RunError {
	out := make([]*RunError, len(i.diags))
	copy(out, i.diags)
	return out
}

// Run steps until the program ends. It returns ctx.Err() if ctx is done
// between two instructions, and a *RunError wrapping ErrCallDepth if
// subroutine calls nest too deeply. Recoverable errors do not stop the run
// and are available from Diagnostics.
func (i *Interpreter) Run(ctx context.Context) error {
	i.running = true
	defer func() { i.running = false }()

	i.log.Infof("run %s: %d instructions", i.id, i.prog.Len())
	for !i.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := i.Step(); err != nil {
			return err
		}
	}
	i.log.Infof("run %s: finished with %d errors", i.id, len(i.diags))
	return nil
}

// Done reports whether the program counter reached the end of the program
// with no subroutine call in progress, or the run was aborted.
func (i *Interpreter) Done() bool {
	if i.halted != nil {
		return true
	}
	i.unwind()
	return i.calls.Depth() == 0 && i.calls.Root().PC >= i.prog.Len()
}

// PC returns the program counter of the innermost frame.
func (i *Interpreter) PC() int { return i.calls.Top().PC }

// Step executes exactly one instruction. It returns an error only when the
// run is aborted; recoverable errors are reported and Step returns nil.
func (i *Interpreter) Step() error {
	if i.halted != nil {
		return i.halted
	}
	if i.Done() {
		return nil
	}
	f := i.calls.Top()
	seq := i.sequence(f)
	in := seq[f.PC]
	f.PC++
	i.dispatch(in, f, seq)
	i.unwind()
	return i.halted
}

// sequence returns the instructions a frame executes. The program frame
// reads the live program so appended library lines are seen.
func (i *Interpreter) sequence(f *Frame) []Instruction {
	if f.root {
		return i.prog.seq
	}
	return f.Seq
}

// unwind returns from every subroutine whose body has been executed to
// the end, resuming the caller where it left off.
func (i *Interpreter) unwind() {
	for i.calls.Depth() > 0 {
		f := i.calls.Top()
		if f.PC < len(f.Seq) {
			return
		}
		i.calls.Pop()
		i.log.Debugf("run %s: return from %s", i.id, f.Name)
	}
}

// Snapshot copies the current state.
func (i *Interpreter) Snapshot() *Snapshot {
	s := &Snapshot{
		RunID:     i.id,
		Capacity:  i.prog.Capacity(),
		PC:        i.calls.Root().PC,
		CallStack: i.calls.Names(),
	}
	for _, in := range i.prog.seq {
		s.Instructions = append(s.Instructions, in.Text)
	}
	for _, b := range i.syms.Variables() {
		s.Variables = append(s.Variables, snapshotBinding(b))
	}
	for _, b := range i.syms.Constants() {
		s.Constants = append(s.Constants, snapshotBinding(b))
	}
	for _, name := range i.syms.Subroutines() {
		body, _ := i.syms.LookupSubroutine(name)
		sb := SnapshotBody{Name: name}
		for _, in := range body {
			sb.Body = append(sb.Body, in.Text)
		}
		s.Subroutines = append(s.Subroutines, sb)
	}
	return s
}

// report records a recoverable error and writes it to the error writer.
func (i *Interpreter) report(in Instruction, err error) {
	re := &RunError{Line: in.Line, Instruction: in.Text, Err: err}
	i.diags = append(i.diags, re)
	fmt.Fprintf(i.stderr, "Errore: %v\n", re)
	i.log.Errorf("run %s: %s", i.id, re)
}

// abort stops the run.
func (i *Interpreter) abort(in Instruction, err error) {
	re := &RunError{Line: in.Line, Instruction: in.Text, Err: err}
	i.halted = re
	fmt.Fprintf(i.stderr, "Errore: %v\n", re)
	i.log.Criticalf("run %s: aborted: %s", i.id, re)
}
