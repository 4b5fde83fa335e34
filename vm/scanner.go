package vm

// ---------------------------------------------------------------------------
// Control-flow scanner: forward scans to a block's terminator
// ---------------------------------------------------------------------------

// scanner finds the end of conditional and subroutine blocks by scanning
// forward from a program counter. A nesting scanner counts the openers it
// passes (se, def) so that an inner end closes only the inner block. A
// flat scanner stops at the first end it meets whatever the nesting.
type scanner struct {
	flat bool
}

// opens reports whether in opens a block closed by end.
func (s scanner) opens(in Instr) bool {
	return !s.flat && (in.Kind == KindIf || in.Kind == KindDef)
}

// skipConditional is used after a false predicate; pc indexes the first
// instruction of the block. It returns the index at which execution
// resumes: just past the matching altrimenti, or just past the matching
// end. ok is false when the block is never closed, in which case the
// returned index is len(seq).
func (s scanner) skipConditional(seq []Instruction, pc int) (next int, ok bool) {
	depth := 0
	for j := pc; j < len(seq); j++ {
		in := Classify(seq[j].Text, nil)
		switch {
		case s.opens(in):
			depth++
		case in.Kind == KindEnd:
			if depth == 0 {
				return j + 1, true
			}
			depth--
		case in.Kind == KindElse && depth == 0:
			return j + 1, true
		}
	}
	return len(seq), false
}

// skipElse is used when altrimenti is reached by falling out of a taken
// branch; pc indexes the first instruction after altrimenti. It returns
// the index just past the matching end.
func (s scanner) skipElse(seq []Instruction, pc int) (next int, ok bool) {
	return s.skipTo(seq, pc)
}

// skipTo returns the index just past the end closing the block that
// starts at pc, ignoring any altrimenti on the way.
func (s scanner) skipTo(seq []Instruction, pc int) (next int, ok bool) {
	depth := 0
	for j := pc; j < len(seq); j++ {
		in := Classify(seq[j].Text, nil)
		switch {
		case s.opens(in):
			depth++
		case in.Kind == KindEnd:
			if depth == 0 {
				return j + 1, true
			}
			depth--
		}
	}
	return len(seq), false
}

// captureBlock collects a subroutine body; pc indexes the first
// instruction after def. The terminating end is consumed but not part of
// the body. The body is a copy and does not alias seq.
func (s scanner) captureBlock(seq []Instruction, pc int) (body []Instruction, next int, ok bool) {
	end, ok := s.skipTo(seq, pc)
	last := end
	if ok {
		last = end - 1
	}
	body = make([]Instruction, last-pc)
	copy(body, seq[pc:last])
	return body, end, ok
}
