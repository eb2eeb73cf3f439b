package lsp

import (
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/eddie-c-davis/gt4py/grammar"
	"github.com/eddie-c-davis/gt4py/internal/ast"
	"github.com/eddie-c-davis/gt4py/internal/semantic"
)

// SemanticToken represents a single LSP semantic token entry
// Line and StartChar are 0-based positions
// TokenType is an index into SemanticTokenTypes
// TokenModifiers is a bitmask based on SemanticTokenModifiers
type SemanticToken struct {
	Line           uint32
	StartChar      uint32
	Length         uint32
	TokenType      int
	TokenModifiers int
}

var keywords = map[string]bool{
	"stencil":     true,
	"computation": true,
	"interval":    true,
	"external":    true,
	"temp":        true,
	"if":          true,
	"else":        true,
}

var markers = map[string]bool{
	"PARALLEL": true,
	"FORWARD":  true,
	"BACKWARD": true,
	"START":    true,
	"END":      true,
}

var assignOperators = map[string]bool{"=": true, "+=": true, "-=": true, "*=": true, "/=": true}

// tokenClassifier assigns token types from the lexical stream, using the
// symbol tables of the parsed stencils when there are any.
type tokenClassifier struct {
	names  map[lexer.TokenType]string
	tokens []lexer.Token
	doc    *document
}

func collectSemanticTokens(filename, source string, doc *document) []SemanticToken {
	lex, err := grammar.StencilLexer.LexString(filename, source)
	if err != nil {
		return nil
	}
	all, err := lexer.ConsumeAll(lex)
	if err != nil {
		log.Debugf("lexing %s: %s", filename, err)
	}

	c := &tokenClassifier{names: make(map[lexer.TokenType]string), doc: doc}
	for name, typ := range grammar.StencilLexer.Symbols() {
		c.names[typ] = name
	}
	for _, tok := range all {
		if tok.EOF() || c.names[tok.Type] == "Whitespace" {
			continue
		}
		c.tokens = append(c.tokens, tok)
	}

	var tokens []SemanticToken
	for i, tok := range c.tokens {
		typ, mods, ok := c.classify(i)
		if !ok {
			continue
		}
		tokens = append(tokens, makeToken(tok, typ, mods))
	}
	return tokens
}

func (c *tokenClassifier) classify(i int) (string, int, bool) {
	tok := c.tokens[i]
	switch c.names[tok.Type] {
	case "Comment":
		return "comment", 0, true
	case "Float", "Int":
		return "number", 0, true
	case "Operator":
		return "operator", 0, true
	case "Ident":
		return c.classifyIdent(i)
	}
	return "", 0, false
}

func (c *tokenClassifier) classifyIdent(i int) (string, int, bool) {
	value := c.tokens[i].Value
	prev, next := c.value(i-1), c.value(i+1)

	switch {
	case keywords[value]:
		return "keyword", 0, true
	case markers[value]:
		return "enumMember", 0, true
	case prev == "stencil":
		return "function", modifierMask("declaration"), true
	case prev == ":":
		if _, ok := ast.ParseDataType(value); ok {
			return "type", 0, true
		}
	case prev == "[" && c.value(i-3) == ":":
		// Axis spelling of a field declaration, e.g. IJK.
		return "type", 0, true
	}

	mods := 0
	if _, typed := ast.ParseDataType(c.value(i + 2)); (next == ":" && typed) || prev == "external" {
		mods |= modifierMask("declaration")
	} else if assignOperators[c.value(c.closingBracket(i+1)+1)] {
		mods |= modifierMask("modification")
	}

	symbol := c.lookup(c.tokens[i])
	if symbol == nil {
		return "variable", mods, true
	}
	switch symbol.Kind {
	case semantic.SymbolParameter:
		return "parameter", mods | modifierMask("readonly"), true
	case semantic.SymbolExternal:
		return "variable", mods | modifierMask("readonly"), true
	}
	return "property", mods, true
}

func (c *tokenClassifier) value(i int) string {
	if i < 0 || i >= len(c.tokens) {
		return ""
	}
	return c.tokens[i].Value
}

// closingBracket returns the index of the "]" matching a "[" at i, or i-1
// when there is no bracket at i.
func (c *tokenClassifier) closingBracket(i int) int {
	if c.value(i) != "[" {
		return i - 1
	}
	for j := i + 1; j < len(c.tokens); j++ {
		if c.tokens[j].Value == "]" {
			return j
		}
	}
	return i - 1
}

// lookup resolves a name in the stencil that encloses the token.
func (c *tokenClassifier) lookup(tok lexer.Token) *semantic.Symbol {
	if c.doc == nil {
		return nil
	}
	var symbols *semantic.SymbolTable
	for i, def := range c.doc.defs {
		if def.Pos.Line <= tok.Pos.Line {
			symbols = c.doc.symbols[i]
		}
	}
	if symbols == nil {
		return nil
	}
	return symbols.Lookup(tok.Value)
}

func makeToken(tok lexer.Token, tokenType string, modifiers int) SemanticToken {
	return SemanticToken{
		Line:           uint32(tok.Pos.Line - 1),
		StartChar:      uint32(tok.Pos.Column - 1),
		Length:         uint32(len(tok.Value)),
		TokenType:      tokenTypeIndex(tokenType),
		TokenModifiers: modifiers,
	}
}

func tokenTypeIndex(name string) int {
	for i, t := range SemanticTokenTypes {
		if t == name {
			return i
		}
	}
	return 0
}

func modifierMask(name string) int {
	for i, m := range SemanticTokenModifiers {
		if m == name {
			return 1 << i
		}
	}
	return 0
}

// encodeSemanticTokens packs tokens into the LSP relative encoding.
func encodeSemanticTokens(tokens []SemanticToken) []uint32 {
	var data []uint32
	var prevLine, prevStart uint32

	for _, token := range tokens {
		deltaLine := token.Line - prevLine
		var deltaStart uint32
		if deltaLine == 0 {
			deltaStart = token.StartChar - prevStart
		} else {
			deltaStart = token.StartChar
		}

		data = append(data, deltaLine, deltaStart, token.Length, uint32(token.TokenType), uint32(token.TokenModifiers))

		prevLine = token.Line
		prevStart = token.StartChar
	}
	return data
}
