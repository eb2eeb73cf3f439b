package grammar

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/eddie-c-davis/gt4py/internal/ast"
	"github.com/eddie-c-davis/gt4py/internal/errors"
)

var parser = participle.MustBuild[File](
	participle.Lexer(StencilLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(3),
)

// ParseFile reads and parses a stencil source file.
func ParseFile(path string) ([]*ast.StencilDefinition, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(path, string(source))
}

// Parse parses every stencil of a source text and converts it to stencil trees.
func Parse(filename, source string) ([]*ast.StencilDefinition, error) {
	file, err := ParseSyntax(filename, source)
	if err != nil {
		return nil, err
	}
	return Convert(file)
}

// ParseStencil parses a source text holding exactly one stencil.
func ParseStencil(filename, source string) (*ast.StencilDefinition, error) {
	defs, err := Parse(filename, source)
	if err != nil {
		return nil, err
	}
	if len(defs) != 1 {
		return nil, errors.SyntaxError(fmt.Sprintf("expected one stencil, found %d", len(defs)),
			ast.Position{Filename: filename, Line: 1, Column: 1})
	}
	return defs[0], nil
}

// ParseSyntax returns the raw syntax tree. Parse failures are reported as
// syntax errors carrying the failing position.
func ParseSyntax(filename, source string) (*File, error) {
	file, err := parser.ParseString(filename, source)
	if err != nil {
		return nil, syntaxError(err)
	}
	return file, nil
}

func syntaxError(err error) error {
	var pe participle.Error
	if !stderrors.As(err, &pe) {
		return errors.SyntaxError(err.Error(), ast.Position{})
	}
	ce := errors.SyntaxError(pe.Message(), position(pe.Position()))
	if ut, ok := err.(*participle.UnexpectedTokenError); ok && ut.Unexpected.Value != "" {
		ce.Length = len(ut.Unexpected.Value)
	}
	return ce
}

func position(pos lexer.Position) ast.Position {
	return ast.Position{
		Filename: pos.Filename,
		Offset:   pos.Offset,
		Line:     pos.Line,
		Column:   pos.Column,
	}
}
