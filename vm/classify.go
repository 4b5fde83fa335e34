package vm

import (
	"sort"
	"strconv"
	"strings"

	"github.com/stacker-lang/stacker/expr"
)

// ---------------------------------------------------------------------------
// Classification: instruction text to a tagged instruction kind
// ---------------------------------------------------------------------------

// Kind is the classified shape of an instruction. The constants are listed
// in classification priority order: Classify returns the first kind whose
// shape matches.
type Kind uint8

const (
	KindNop     Kind = iota // empty line or comment
	KindIf                  // se <predicate> allora
	KindInclude             // includi <library>
	KindDeclare             // var a, b
	KindBuiltin             // radice|quadrato <name>, <expr>
	KindAssign              // <name> = <rhs>
	KindDelete              // elimina <name>
	KindPrint               // out|stampa <operand>, ...
	KindReduce              // somma|moltiplica <target>, <operand>, ...
	KindDef                 // def <name>
	KindCall                // <subroutine>
	KindEnd                 // end
	KindElse                // altrimenti
	KindInfo                // info
	KindPause               // pausa
	KindInvalid
)

var kindNames = [...]string{
	KindNop:     "nop",
	KindIf:      "if",
	KindInclude: "include",
	KindDeclare: "declare",
	KindBuiltin: "builtin",
	KindAssign:  "assign",
	KindDelete:  "delete",
	KindPrint:   "print",
	KindReduce:  "reduce",
	KindDef:     "def",
	KindCall:    "call",
	KindEnd:     "end",
	KindElse:    "else",
	KindInfo:    "info",
	KindPause:   "pause",
	KindInvalid: "invalid",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Keywords of the instruction language.
const (
	CommentMarker  = "#"
	KeywordIf      = "se"
	KeywordThen    = "allora"
	KeywordInclude = "includi"
	KeywordVar     = "var"
	KeywordSqrt    = "radice"
	KeywordSquare  = "quadrato"
	KeywordDelete  = "elimina"
	KeywordOut     = "out"
	KeywordPrint   = "stampa"
	KeywordSum     = "somma"
	KeywordProduct = "moltiplica"
	KeywordDef     = "def"
	KeywordEnd     = "end"
	KeywordElse    = "altrimenti"
	KeywordInfo    = "info"
	KeywordPause   = "pausa"
)

var keywords = map[string]bool{
	KeywordIf: true, KeywordThen: true, KeywordInclude: true, KeywordVar: true,
	KeywordSqrt: true, KeywordSquare: true, KeywordDelete: true, KeywordOut: true,
	KeywordPrint: true, KeywordSum: true, KeywordProduct: true, KeywordDef: true,
	KeywordEnd: true, KeywordElse: true, KeywordInfo: true, KeywordPause: true,
	expr.LambdaPrefix: true,
}

// Keywords returns every keyword, sorted.
func Keywords() []string {
	out := make([]string, 0, len(keywords))
	for k := range keywords {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// IsKeyword reports whether s is an instruction keyword.
func IsKeyword(s string) bool { return keywords[s] }

// IsReservedName reports whether s cannot be used to name a variable,
// constant or subroutine.
func IsReservedName(s string) bool {
	return keywords[s] || expr.IsReserved(s)
}

// Instr is a classified instruction.
type Instr struct {
	Kind    Kind
	Keyword string   // leading keyword, if any
	Name    string   // target, subroutine or deleted name
	Arg     string   // predicate, right-hand side, operand or library name
	Args    []string // comma-separated operands
	Text    string   // trimmed instruction text
}

// Classify tokenizes text once and returns its kind. isSub reports whether
// a bare name is a defined subroutine; it may be nil, in which case no
// instruction classifies as a call.
func Classify(text string, isSub func(string) bool) Instr {
	text = strings.TrimSpace(text)
	in := Instr{Kind: KindInvalid, Text: text}
	if text == "" || strings.HasPrefix(text, CommentMarker) {
		in.Kind = KindNop
		return in
	}
	head, rest := splitHead(text)

	// se <predicate> allora
	if head == KeywordIf {
		if f := strings.Fields(rest); len(f) >= 2 && f[len(f)-1] == KeywordThen {
			pred := strings.TrimSpace(rest[:len(rest)-len(KeywordThen)])
			return Instr{Kind: KindIf, Keyword: head, Arg: pred, Text: text}
		}
	}

	// includi <library>
	if head == KeywordInclude && rest != "" && !strings.ContainsAny(rest, " \t") {
		return Instr{Kind: KindInclude, Keyword: head, Arg: rest, Text: text}
	}

	// var a, b, c
	if head == KeywordVar && rest != "" {
		return Instr{Kind: KindDeclare, Keyword: head, Arg: rest, Args: expr.SplitArgs(rest), Text: text}
	}

	// radice|quadrato <name>, <operand>
	if head == KeywordSqrt || head == KeywordSquare {
		if args := expr.SplitArgs(rest); len(args) == 2 && args[0] != "" && args[1] != "" {
			return Instr{Kind: KindBuiltin, Keyword: head, Name: args[0], Arg: args[1], Args: args, Text: text}
		}
	}

	// <name> = <rhs>
	if n := assignIndex(text); n > 0 {
		if lhs := strings.TrimSpace(text[:n]); expr.IsIdentifier(lhs) {
			return Instr{Kind: KindAssign, Name: lhs, Arg: strings.TrimSpace(text[n+1:]), Text: text}
		}
	}

	switch head {
	case KeywordDelete:
		if rest != "" {
			return Instr{Kind: KindDelete, Keyword: head, Name: rest, Text: text}
		}
	case KeywordOut, KeywordPrint:
		return Instr{Kind: KindPrint, Keyword: head, Arg: rest, Args: expr.SplitArgs(rest), Text: text}
	case KeywordSum, KeywordProduct:
		if rest != "" {
			args := expr.SplitArgs(rest)
			return Instr{Kind: KindReduce, Keyword: head, Name: args[0], Args: args[1:], Arg: rest, Text: text}
		}
	case KeywordDef:
		if expr.IsIdentifier(rest) {
			return Instr{Kind: KindDef, Keyword: head, Name: rest, Text: text}
		}
	}

	if rest == "" && isSub != nil && isSub(head) {
		return Instr{Kind: KindCall, Name: head, Text: text}
	}

	switch text {
	case KeywordEnd:
		in.Kind = KindEnd
	case KeywordElse:
		in.Kind = KindElse
	case KeywordInfo:
		in.Kind = KindInfo
	case KeywordPause:
		in.Kind = KindPause
	default:
		return in
	}
	in.Keyword = text
	return in
}

// splitHead splits text at its first run of whitespace.
func splitHead(text string) (head, rest string) {
	n := strings.IndexAny(text, " \t")
	if n < 0 {
		return text, ""
	}
	return text[:n], strings.TrimSpace(text[n:])
}

// assignIndex returns the index of the first '=' in text when it is an
// assignment operator rather than part of a comparison, or -1.
func assignIndex(text string) int {
	n := strings.IndexByte(text, '=')
	if n <= 0 {
		return -1
	}
	if n+1 < len(text) && text[n+1] == '=' {
		return -1
	}
	switch text[n-1] {
	case '!', '<', '>':
		return -1
	}
	return n
}
