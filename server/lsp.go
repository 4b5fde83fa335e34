package server

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/stacker-lang/stacker/vm"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "stacker-lsp"

var log = commonlog.GetLogger("stacker.lsp")

// LspServer provides editor diagnostics, completion, hover and navigation
// for stacker programs.
type LspServer struct {
	mu   sync.Mutex
	docs map[string]*Analysis // URI → analysis of the full document

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

// NewLSP creates a new LSP server.
func NewLSP(version string) *LspServer {
	s := &LspServer{
		docs:    make(map[string]*Analysis),
		version: version,
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentHover:      s.textDocumentHover,
		TextDocumentDefinition: s.textDocumentDefinition,
		TextDocumentReferences: s.textDocumentReferences,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)

	return s
}

// Run starts the LSP server on stdio. Blocks until the client disconnects.
func (s *LspServer) Run() error {
	return s.server.RunStdio()
}

// --- LSP lifecycle handlers ---

func (s *LspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Info("stacker LSP initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{}
	capabilities.HoverProvider = true
	capabilities.DefinitionProvider = true
	capabilities.ReferencesProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	a := s.update(uri, params.TextDocument.Text)
	s.publishDiagnostics(ctx, uri, a)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			a := s.update(uri, whole.Text)
			s.publishDiagnostics(ctx, uri, a)
		}
	}
	return nil
}

func (s *LspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, string(uri))
	s.mu.Unlock()

	// Clear diagnostics for the closed document
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (s *LspServer) update(uri protocol.DocumentUri, text string) *Analysis {
	a := Analyze(text)
	s.mu.Lock()
	s.docs[string(uri)] = a
	s.mu.Unlock()
	log.Debugf("%s: %d problems", uri, len(a.Problems))
	return a
}

func (s *LspServer) document(uri protocol.DocumentUri) *Analysis {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[string(uri)]
}

// --- Language features ---

func (s *LspServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	a := s.document(params.TextDocument.URI)
	if a == nil {
		return nil, nil
	}
	prefix := extractPrefix(a.Lines, params.Position)
	if prefix == "" {
		return nil, nil
	}
	return complete(a, prefix), nil
}

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	a := s.document(params.TextDocument.URI)
	if a == nil {
		return nil, nil
	}
	word := extractWord(a.Lines, params.Position)
	if word == "" {
		return nil, nil
	}
	return hover(a, word), nil
}

func (s *LspServer) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	uri := params.TextDocument.URI
	a := s.document(uri)
	if a == nil {
		return nil, nil
	}
	word := extractWord(a.Lines, params.Position)
	sym, ok := a.Symbols[word]
	if word == "" || !ok {
		return nil, nil
	}
	return []protocol.Location{lineLocation(uri, a, sym.Line)}, nil
}

func (s *LspServer) textDocumentReferences(ctx *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	uri := params.TextDocument.URI
	a := s.document(uri)
	if a == nil {
		return nil, nil
	}
	word := extractWord(a.Lines, params.Position)
	if word == "" {
		return nil, nil
	}
	var locations []protocol.Location
	for _, line := range references(a, word) {
		locations = append(locations, lineLocation(uri, a, line))
	}
	return locations, nil
}

// --- Analysis-backed logic ---

// keywordDocs describes each instruction keyword for hover.
var keywordDocs = map[string]string{
	vm.KeywordIf:      "`se <predicate> allora` runs the block when the predicate is true.",
	vm.KeywordThen:    "Closes the predicate of `se`.",
	vm.KeywordInclude: "`includi <name>.mlib` appends a library to the end of the program.",
	vm.KeywordVar:     "`var a, b` binds each name to 0.",
	vm.KeywordSqrt:    "`radice <name>, <expr>` stores the square root of the expression.",
	vm.KeywordSquare:  "`quadrato <name>, <expr>` stores the square of the expression.",
	vm.KeywordDelete:  "`elimina <name>` removes a variable.",
	vm.KeywordOut:     "`out <operand>, ...` prints each operand on its own line.",
	vm.KeywordPrint:   "`stampa <operand>, ...` prints each operand on its own line.",
	vm.KeywordSum:     "`somma <target>, <operand>, ...` stores the sum of the operands.",
	vm.KeywordProduct: "`moltiplica <target>, <operand>, ...` stores the product of the operands.",
	vm.KeywordDef:     "`def <name>` ... `end` defines a subroutine, called by its bare name.",
	vm.KeywordEnd:     "Closes a `se` or `def` block.",
	vm.KeywordElse:    "Starts the branch of `se` taken when the predicate is false.",
	vm.KeywordInfo:    "Prints the program, variables, constants and subroutines.",
	vm.KeywordPause:   "Waits for a key press.",
	"lambda":          "`name = lambda x, y: <expr>` stores a function called as `r = name(a, b)`.",
}

func complete(a *Analysis, prefix string) []protocol.CompletionItem {
	var items []protocol.CompletionItem

	for _, kw := range vm.Keywords() {
		if !strings.HasPrefix(kw, prefix) {
			continue
		}
		kind := protocol.CompletionItemKindKeyword
		detail := "keyword"
		kwCopy := kw
		items = append(items, protocol.CompletionItem{
			Label:      kw,
			Kind:       &kind,
			Detail:     &detail,
			InsertText: &kwCopy,
		})
	}

	names := make([]string, 0, len(a.Symbols))
	for name := range a.Symbols {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		sym := a.Symbols[name]
		kind := protocol.CompletionItemKindVariable
		detail := "variable"
		switch {
		case sym.Kind == vm.KindDef:
			kind = protocol.CompletionItemKindFunction
			detail = "subroutine"
		case vm.IsConstantName(name):
			kind = protocol.CompletionItemKindConstant
			detail = "constant"
		}
		nameCopy := name
		items = append(items, protocol.CompletionItem{
			Label:      name,
			Kind:       &kind,
			Detail:     &detail,
			InsertText: &nameCopy,
		})
	}

	// Limit results
	const maxItems = 100
	if len(items) > maxItems {
		items = items[:maxItems]
	}
	return items
}

func hover(a *Analysis, word string) *protocol.Hover {
	var b strings.Builder
	if doc, ok := keywordDocs[word]; ok {
		fmt.Fprintf(&b, "**%s**\n\n%s", word, doc)
	} else if sym, ok := a.Symbols[word]; ok {
		what := "variable"
		switch {
		case sym.Kind == vm.KindDef:
			what = "subroutine"
		case vm.IsConstantName(word):
			what = "constant"
		}
		fmt.Fprintf(&b, "**%s** %s, defined on line %d\n\n`%s`", word, what, sym.Line+1, strings.TrimSpace(a.Lines[sym.Line]))
	} else {
		return nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: b.String(),
		},
	}
}

// references returns the 0-based lines that mention name as a whole word.
func references(a *Analysis, name string) []int {
	var lines []int
	for n, line := range a.Lines {
		if strings.HasPrefix(strings.TrimSpace(line), vm.CommentMarker) {
			continue
		}
		for _, w := range words(line) {
			if w == name {
				lines = append(lines, n)
				break
			}
		}
	}
	return lines
}

func words(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
	})
}

func lineLocation(uri protocol.DocumentUri, a *Analysis, line int) protocol.Location {
	return protocol.Location{
		URI: uri,
		Range: protocol.Range{
			Start: protocol.Position{Line: protocol.UInteger(line), Character: 0},
			End:   protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(len(a.Lines[line]))},
		},
	}
}

// --- Diagnostics ---

func (s *LspServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, a *Analysis) {
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics(a),
	})
}

func diagnostics(a *Analysis) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}
	severity := protocol.DiagnosticSeverityError
	source := lspName
	for _, p := range a.Problems {
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: protocol.UInteger(p.Line), Character: protocol.UInteger(p.Start)},
				End:   protocol.Position{Line: protocol.UInteger(p.Line), Character: protocol.UInteger(p.End)},
			},
			Severity: &severity,
			Source:   &source,
			Message:  p.Message,
		})
	}
	return diagnostics
}

// --- Text extraction helpers ---

// extractPrefix returns the word fragment before the cursor for completion.
func extractPrefix(lines []string, pos protocol.Position) string {
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	// Walk backwards from cursor to find the start of the identifier
	start := col
	for start > 0 && isWordByte(line[start-1]) {
		start--
	}

	if start == col {
		return ""
	}

	return line[start:col]
}

// extractWord returns the full identifier under the cursor.
func extractWord(lines []string, pos protocol.Position) string {
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	// Find start
	start := col
	for start > 0 && isWordByte(line[start-1]) {
		start--
	}

	// Find end
	end := col
	for end < len(line) && isWordByte(line[end]) {
		end++
	}

	if start == end {
		return ""
	}

	return line[start:end]
}

func isWordByte(c byte) bool {
	ch := rune(c)
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_'
}

func boolPtr(b bool) *bool {
	return &b
}
