package vm

import "fmt"

// ---------------------------------------------------------------------------
// Instruction store
// ---------------------------------------------------------------------------

// Instruction is one loaded program line. Instructions are never modified
// after loading.
type Instruction struct {
	Text   string // trimmed line text
	Line   int    // 1-based line in Source, 0 if synthetic
	Source string // file or library the line came from
}

// Instructions builds unnumbered instructions from bare lines.
func Instructions(lines ...string) []Instruction {
	out := make([]Instruction, len(lines))
	for n, l := range lines {
		out[n] = Instruction{Text: l, Line: n + 1}
	}
	return out
}

// Program is the bounded top-level instruction sequence.
type Program struct {
	capacity int
	seq      []Instruction
}

// NewProgram creates a program holding instrs. It fails with ErrCapacity
// when instrs does not fit in capacity.
func NewProgram(capacity int, instrs []Instruction) (*Program, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("negative capacity %d", capacity)
	}
	if len(instrs) > capacity {
		return nil, fmt.Errorf("%d instructions, capacity %d: %w", len(instrs), capacity, ErrCapacity)
	}
	seq := make([]Instruction, len(instrs), capacity)
	copy(seq, instrs)
	return &Program{capacity: capacity, seq: seq}, nil
}

// Append adds instrs at the end of the program. Either all of them fit or
// none are added.
func (p *Program) Append(instrs ...Instruction) error {
	if len(p.seq)+len(instrs) > p.capacity {
		return fmt.Errorf("%d more instructions after %d, capacity %d: %w",
			len(instrs), len(p.seq), p.capacity, ErrCapacity)
	}
	p.seq = append(p.seq, instrs...)
	return nil
}

// Len returns the number of instructions.
func (p *Program) Len() int { return len(p.seq) }

// Capacity returns the maximum number of instructions.
func (p *Program) Capacity() int { return p.capacity }

// At returns the instruction at index n.
func (p *Program) At(n int) Instruction { return p.seq[n] }

// Instructions returns a copy of the sequence.
func (p *Program) Instructions() []Instruction {
	out := make([]Instruction, len(p.seq))
	copy(out, p.seq)
	return out
}

// ---------------------------------------------------------------------------
// Call stack
// ---------------------------------------------------------------------------

// Frame is a saved execution context: the sequence being executed and the
// index of its next instruction.
type Frame struct {
	Name string        // subroutine name, empty for the program
	Seq  []Instruction // subroutine body; nil for the program frame
	PC   int
	root bool
}

// CallStack holds the program frame at the bottom and one frame per
// active subroutine call above it.
type CallStack struct {
	frames []*Frame
	limit  int
}

func newCallStack(limit int) *CallStack {
	return &CallStack{frames: []*Frame{{root: true}}, limit: limit}
}

// Push enters a subroutine. It fails with ErrCallDepth when the limit of
// nested calls is reached.
func (s *CallStack) Push(f *Frame) error {
	if s.limit > 0 && s.Depth() >= s.limit {
		return fmt.Errorf("%s: depth %d: %w", f.Name, s.Depth(), ErrCallDepth)
	}
	s.frames = append(s.frames, f)
	return nil
}

// Pop leaves the innermost subroutine. The program frame is never popped.
func (s *CallStack) Pop() (*Frame, bool) {
	if len(s.frames) <= 1 {
		return nil, false
	}
	f := s.frames[len(s.frames)-1]
	s.frames[len(s.frames)-1] = nil
	s.frames = s.frames[:len(s.frames)-1]
	return f, true
}

// Top returns the innermost frame.
func (s *CallStack) Top() *Frame { return s.frames[len(s.frames)-1] }

// Root returns the program frame.
func (s *CallStack) Root() *Frame { return s.frames[0] }

// Depth returns the number of active subroutine calls.
func (s *CallStack) Depth() int { return len(s.frames) - 1 }

// Names returns the active subroutine names, outermost first.
func (s *CallStack) Names() []string {
	names := make([]string, 0, s.Depth())
	for _, f := range s.frames[1:] {
		names = append(names, f.Name)
	}
	return names
}
