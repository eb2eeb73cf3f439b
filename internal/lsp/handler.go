package lsp

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/eddie-c-davis/gt4py/grammar"
	"github.com/eddie-c-davis/gt4py/internal/ast"
	"github.com/eddie-c-davis/gt4py/internal/config"
	"github.com/eddie-c-davis/gt4py/internal/ir"
	"github.com/eddie-c-davis/gt4py/internal/semantic"
)

var log = commonlog.GetLogger("stencil.lsp")

// SemanticTokenTypes is the token type legend advertised to clients.
var SemanticTokenTypes = []string{
	"keyword",
	"type",
	"function",
	"variable",
	"parameter",
	"property",
	"number",
	"operator",
	"comment",
	"enumMember",
}

// SemanticTokenModifiers is the modifier legend advertised to clients.
var SemanticTokenModifiers = []string{
	"declaration",
	"readonly",
	"modification",
}

// document is the checked state of one open file.
type document struct {
	source      string
	defs        []*ast.StencilDefinition
	symbols     []*semantic.SymbolTable
	diagnostics []protocol.Diagnostic
}

// StencilHandler implements the LSP server handlers for stencil sources.
type StencilHandler struct {
	mu   sync.RWMutex
	opts config.Options
	docs map[string]*document
}

// NewStencilHandler creates a handler that lowers documents with opts.
func NewStencilHandler(opts config.Options) *StencilHandler {
	return &StencilHandler{
		opts: opts,
		docs: make(map[string]*document),
	}
}

// Initialize responds to the LSP client's initialize request and advertises the server's capabilities
func (h *StencilHandler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Info("initialize")

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
			CompletionProvider: &protocol.CompletionOptions{
				ResolveProvider: ptrBool(false),
			},
			SemanticTokensProvider: &protocol.SemanticTokensOptions{
				Legend: protocol.SemanticTokensLegend{
					TokenTypes:     SemanticTokenTypes,
					TokenModifiers: SemanticTokenModifiers,
				},
				Full: ptrBool(true),
			},
		},
	}, nil
}

func (h *StencilHandler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Info("initialized")
	return nil
}

func (h *StencilHandler) Shutdown(ctx *glsp.Context) error {
	log.Info("shutdown")
	return nil
}

func (h *StencilHandler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// TextDocumentDidOpen checks the opened document and publishes its diagnostics.
func (h *StencilHandler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	log.Infof("opened %s", params.TextDocument.URI)
	return h.update(ctx, params.TextDocument.URI, &params.TextDocument.Text)
}

// TextDocumentDidChange rechecks a document. Only full-text sync is advertised,
// so the last change holds the whole text.
func (h *StencilHandler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	var text *string
	if n := len(params.ContentChanges); n > 0 {
		switch change := params.ContentChanges[n-1].(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			text = &change.Text
		case protocol.TextDocumentContentChangeEvent:
			text = &change.Text
		}
	}
	return h.update(ctx, params.TextDocument.URI, text)
}

func (h *StencilHandler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.docs, path)
	return nil
}

// TextDocumentCompletion offers keywords, element types and the names
// declared in the document.
func (h *StencilHandler) TextDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	var items []protocol.CompletionItem
	add := func(label string, kind protocol.CompletionItemKind, detail string) {
		item := protocol.CompletionItem{Label: label, Kind: &kind}
		if detail != "" {
			item.Detail = ptrString(detail)
		}
		items = append(items, item)
	}

	for _, kw := range []string{"stencil", "computation", "interval", "external", "temp", "if", "else"} {
		add(kw, protocol.CompletionItemKindKeyword, "")
	}
	for _, m := range []string{"PARALLEL", "FORWARD", "BACKWARD", "START", "END"} {
		add(m, protocol.CompletionItemKindEnumMember, "")
	}
	for _, dt := range []ast.DataType{ast.FLOAT64, ast.FLOAT32, ast.INT64, ast.INT32, ast.INT16, ast.INT8, ast.BOOL} {
		add(dt.String(), protocol.CompletionItemKindTypeParameter, "")
	}

	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	h.mu.RLock()
	doc := h.docs[path]
	h.mu.RUnlock()

	if doc != nil {
		seen := make(map[string]bool)
		for _, symbols := range doc.symbols {
			kinds := []semantic.SymbolKind{semantic.SymbolField, semantic.SymbolTemporary, semantic.SymbolParameter, semantic.SymbolExternal}
			for _, name := range symbols.Names(kinds...) {
				if seen[name] {
					continue
				}
				seen[name] = true
				symbol := symbols.Lookup(name)
				kind := protocol.CompletionItemKindField
				switch symbol.Kind {
				case semantic.SymbolParameter:
					kind = protocol.CompletionItemKindVariable
				case semantic.SymbolExternal:
					kind = protocol.CompletionItemKindConstant
				}
				add(name, kind, symbol.Kind.String())
			}
		}
	}

	return &protocol.CompletionList{
		IsIncomplete: false,
		Items:        items,
	}, nil
}

// TextDocumentSemanticTokensFull handles semantic token requests for the entire document
func (h *StencilHandler) TextDocumentSemanticTokensFull(ctx *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	h.mu.RLock()
	doc, ok := h.docs[path]
	h.mu.RUnlock()
	if !ok {
		if err := h.update(ctx, params.TextDocument.URI, nil); err != nil {
			return nil, err
		}
		h.mu.RLock()
		doc = h.docs[path]
		h.mu.RUnlock()
	}

	tokens := collectSemanticTokens(path, doc.source, doc)
	return &protocol.SemanticTokens{
		Data: encodeSemanticTokens(tokens),
	}, nil
}

// Diagnostics returns the last diagnostics computed for a document.
func (h *StencilHandler) Diagnostics(uri protocol.DocumentUri) []protocol.Diagnostic {
	path, err := uriToPath(uri)
	if err != nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if doc := h.docs[path]; doc != nil {
		return doc.diagnostics
	}
	return nil
}

// update checks text, or the file on disk when text is nil, and publishes the
// resulting diagnostics. An empty list clears earlier ones.
func (h *StencilHandler) update(ctx *glsp.Context, uri protocol.DocumentUri, text *string) error {
	path, err := uriToPath(uri)
	if err != nil {
		return err
	}

	var source string
	if text != nil {
		source = *text
	} else {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", path, err)
		}
		source = string(content)
	}

	doc := h.check(path, source)

	h.mu.Lock()
	h.docs[path] = doc
	h.mu.Unlock()

	sendDiagnosticNotification(ctx, uri, doc.diagnostics)
	return nil
}

// check parses, analyzes and lowers every stencil of source.
func (h *StencilHandler) check(path, source string) *document {
	doc := &document{source: source, diagnostics: []protocol.Diagnostic{}}

	defs, err := grammar.Parse(path, source)
	if err != nil {
		doc.diagnostics = append(doc.diagnostics, ConvertErrors(err)...)
		return doc
	}
	doc.defs = defs

	for _, def := range defs {
		analysis := semantic.Analyze(def)
		doc.symbols = append(doc.symbols, analysis.Symbols)
		for _, d := range analysis.Diagnostics {
			doc.diagnostics = append(doc.diagnostics, ConvertError(d))
		}
		if analysis.Err() != nil {
			continue
		}
		if _, err := ir.BuildProgram(def, h.opts); err != nil {
			doc.diagnostics = append(doc.diagnostics, ConvertErrors(err)...)
		}
	}
	return doc
}

// Convert URI to platform-local file path
func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}

	path := u.Path

	// On Windows, remove leading slash (e.g., /C:/...) -> C:/...
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}

	return filepath.FromSlash(path), nil
}

func sendDiagnosticNotification(ctx *glsp.Context, uri protocol.DocumentUri, diagnostics []protocol.Diagnostic) {
	if ctx == nil || ctx.Notify == nil {
		return
	}
	log.Debugf("publishing %d diagnostic(s) for %s", len(diagnostics), uri)

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func ptrBool(b bool) *bool {
	return &b
}

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
