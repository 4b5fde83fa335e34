package server

import (
	"fmt"
	"strings"

	"github.com/stacker-lang/stacker/expr"
	"github.com/stacker-lang/stacker/loader"
	"github.com/stacker-lang/stacker/vm"
)

// ---------------------------------------------------------------------------
// Static analysis of a program document
// ---------------------------------------------------------------------------

// Problem is a static diagnostic on one document line.
type Problem struct {
	Line    int // 0-based document line
	Start   int // byte column where the instruction starts
	End     int // byte column where it ends
	Message string
}

// Symbol is a name defined by the document.
type Symbol struct {
	Name string
	Kind vm.Kind // KindAssign, KindDeclare, KindBuiltin, KindReduce or KindDef
	Line int     // 0-based line of the first definition
}

// Analysis is the result of analyzing one document.
type Analysis struct {
	Problems []Problem
	Symbols  map[string]Symbol
	Lines    []string // document lines, unmodified
}

type openBlock struct {
	kind    vm.Kind
	line    int
	hasElse bool
}

// Analyze checks text without running it: invalid instructions,
// unbalanced blocks and malformed expressions are reported.
func Analyze(text string) *Analysis {
	a := &Analysis{
		Symbols: make(map[string]Symbol),
		Lines:   strings.Split(text, "\n"),
	}

	// First pass: subroutine names, so calls ahead of their definition
	// classify as calls.
	subs := make(map[string]bool)
	for _, raw := range a.Lines {
		if in := vm.Classify(raw, nil); in.Kind == vm.KindDef {
			subs[in.Name] = true
		}
	}
	isSub := func(name string) bool { return subs[name] }

	var blocks []openBlock
	for n, raw := range a.Lines {
		if _, ok := loader.Normalize(raw); !ok {
			continue
		}
		in := vm.Classify(raw, isSub)
		switch in.Kind {
		case vm.KindIf:
			a.checkExpr(n, in.Arg)
			blocks = append(blocks, openBlock{kind: in.Kind, line: n})
		case vm.KindDef:
			a.checkName(n, in.Name)
			a.define(in.Name, in.Kind, n)
			blocks = append(blocks, openBlock{kind: in.Kind, line: n})
		case vm.KindEnd:
			if len(blocks) == 0 {
				a.report(n, "end without a matching se or def")
				continue
			}
			blocks = blocks[:len(blocks)-1]
		case vm.KindElse:
			if len(blocks) == 0 || blocks[len(blocks)-1].kind != vm.KindIf {
				a.report(n, "altrimenti outside a se block")
				continue
			}
			if blocks[len(blocks)-1].hasElse {
				a.report(n, "second altrimenti in the same se block")
			}
			blocks[len(blocks)-1].hasElse = true
		case vm.KindAssign:
			a.checkName(n, in.Name)
			a.checkRHS(n, in.Arg)
			a.define(in.Name, in.Kind, n)
		case vm.KindBuiltin:
			a.checkName(n, in.Name)
			a.checkExpr(n, in.Arg)
			a.define(in.Name, in.Kind, n)
		case vm.KindDeclare:
			for _, name := range in.Args {
				a.checkName(n, name)
				a.define(name, in.Kind, n)
			}
		case vm.KindReduce:
			a.checkName(n, in.Name)
			a.define(in.Name, in.Kind, n)
		case vm.KindInclude:
			if !strings.HasSuffix(in.Arg, loader.DefaultLibrarySuffix) {
				a.report(n, fmt.Sprintf("library %s does not end in %s", in.Arg, loader.DefaultLibrarySuffix))
			}
		case vm.KindInvalid:
			a.report(n, "invalid instruction")
		}
	}
	for _, b := range blocks {
		a.report(b.line, fmt.Sprintf("%s block has no matching end", keywordOf(b.kind)))
	}
	return a
}

func keywordOf(k vm.Kind) string {
	if k == vm.KindDef {
		return vm.KeywordDef
	}
	return vm.KeywordIf
}

func (a *Analysis) define(name string, kind vm.Kind, line int) {
	if _, ok := a.Symbols[name]; ok || !expr.IsIdentifier(name) {
		return
	}
	a.Symbols[name] = Symbol{Name: name, Kind: kind, Line: line}
}

func (a *Analysis) checkName(line int, name string) {
	switch {
	case !expr.IsIdentifier(name):
		a.report(line, fmt.Sprintf("invalid name %q", name))
	case vm.IsReservedName(name):
		a.report(line, fmt.Sprintf("%s is a reserved word", name))
	}
}

func (a *Analysis) checkRHS(line int, rhs string) {
	if _, args, ok := vm.CallShape(rhs); ok {
		for _, arg := range args {
			a.checkExpr(line, arg)
		}
		return
	}
	if expr.IsLambdaLiteral(rhs) {
		if _, err := expr.ParseLambda(rhs); err != nil {
			a.report(line, err.Error())
		}
		return
	}
	a.checkExpr(line, rhs)
}

func (a *Analysis) checkExpr(line int, text string) {
	if _, err := expr.Parse(text); err != nil {
		a.report(line, err.Error())
	}
}

func (a *Analysis) report(line int, msg string) {
	raw := a.Lines[line]
	start := len(raw) - len(strings.TrimLeft(raw, " \t"))
	end := len(strings.TrimRight(raw, " \t\r"))
	if end < start {
		end = start
	}
	a.Problems = append(a.Problems, Problem{Line: line, Start: start, End: end, Message: msg})
}
