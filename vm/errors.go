package vm

import (
	"errors"
	"fmt"
)

// Run-time error categories. Apart from ErrCallDepth every one of them is
// recoverable: the interpreter reports it and moves to the next line.
var (
	ErrCapacity           = errors.New("instruction capacity exceeded")
	ErrInvalidInstruction = errors.New("invalid instruction")
	ErrUndefined          = errors.New("name not defined")
	ErrConstantReassign   = errors.New("constant cannot be reassigned")
	ErrNotDeletable       = errors.New("only variables can be deleted")
	ErrUnresolvedCallable = errors.New("unresolved callable")
	ErrReservedName       = errors.New("reserved keyword used as a name")
	ErrUnterminatedBlock  = errors.New("block has no matching end")
	ErrCondition          = errors.New("condition is not a truth value")
	ErrLibrary            = errors.New("library inclusion failed")
	ErrPause              = errors.New("pause failed")
	ErrRunning            = errors.New("interpreter is running")

	// ErrCallDepth aborts the run: subroutine calls nested deeper than
	// Options.MaxCallDepth.
	ErrCallDepth = errors.New("subroutine call depth exceeded")
)

// RunError ties an error to the instruction that raised it.
type RunError struct {
	Line        int    // 1-based source line, 0 if unknown
	Instruction string // instruction text
	Err         error
}

func (e *RunError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %v", e.Line, e.Instruction, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Instruction, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }
