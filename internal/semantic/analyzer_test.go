package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eddie-c-davis/gt4py/internal/ast"
	"github.com/eddie-c-davis/gt4py/internal/errors"
)

func codes(diags []*errors.CompilerError) []string {
	var out []string
	for _, d := range diags {
		out = append(out, d.Code)
	}
	return out
}

func TestAnalyzeClean(t *testing.T) {
	alpha := 0.5
	def := stencil([]*ast.FieldDecl{field("a", true), field("out", true)},
		assign("out", &ast.BinOpExpr{Op: ast.MUL, LHS: &ast.VarRef{Name: "alpha"}, RHS: ref("a")}),
	)
	def.Parameters = []*ast.VarDecl{{Name: "alpha", DataType: ast.FLOAT64, Init: &alpha}}

	analysis := Analyze(def)

	assert.Empty(t, analysis.Diagnostics)
	assert.NoError(t, analysis.Err())
	require.NotNil(t, analysis.Symbols.Lookup("alpha"))
	assert.Equal(t, 0.5, analysis.Symbols.Lookup("alpha").Value)
	assert.Equal(t, IN, analysis.Fields.Lookup("a").Intent)
}

func TestAnalyzeUnresolvedNames(t *testing.T) {
	def := stencil([]*ast.FieldDecl{field("in_f", true), field("out", true)},
		assign("out", add(ref("in_g"), &ast.VarRef{Name: "alpah"})),
	)
	def.Externals = map[string]float64{"alpha": 2}

	analysis := Analyze(def)

	assert.Equal(t, []string{errors.ErrorUnresolvedSymbol, errors.ErrorUnresolvedSymbol, errors.ErrorUnsetIntent}, codes(analysis.Diagnostics))
	assert.Contains(t, analysis.Diagnostics[0].Suggestions[0].Message, "in_f")
	assert.Contains(t, analysis.Diagnostics[1].Suggestions[0].Message, "alpha")
	assert.Error(t, analysis.Err())
}

func TestAnalyzeScalarUsedAsField(t *testing.T) {
	def := stencil([]*ast.FieldDecl{field("out", true)}, assign("out", ref("n")))
	def.Externals = map[string]float64{"n": 3}

	analysis := Analyze(def)
	require.Len(t, analysis.Diagnostics, 1)
	assert.Equal(t, errors.ErrorUnresolvedSymbol, analysis.Diagnostics[0].Code)
}

func TestAnalyzeDuplicates(t *testing.T) {
	def := stencil([]*ast.FieldDecl{field("a", true), field("a", false), field("out", true)},
		assign("out", ref("a")),
	)
	def.Parameters = []*ast.VarDecl{{Name: "out", DataType: ast.FLOAT64}}

	analysis := Analyze(def)
	assert.Equal(t, []string{errors.ErrorDuplicateDeclaration, errors.ErrorDuplicateDeclaration}, codes(analysis.Diagnostics))
}

func TestAnalyzeUpperBoundWarning(t *testing.T) {
	def := stencil([]*ast.FieldDecl{field("a", true), field("out", true)}, assign("out", ref("a")))
	def.Computations[0].Interval.End.Offset = -1

	analysis := Analyze(def)

	require.Len(t, analysis.Warnings(), 1)
	assert.Equal(t, errors.WarningUpperBoundIgnored, analysis.Warnings()[0].Code)
	assert.NoError(t, analysis.Err())
}

func TestSymbolTableNames(t *testing.T) {
	def := stencil([]*ast.FieldDecl{field("b", true), field("a", true), field("tmp", false)})
	def.Parameters = []*ast.VarDecl{{Name: "p", DataType: ast.INT32}}
	def.Externals = map[string]float64{"z": 1, "y": 2}

	st := BuildSymbolTable(def)

	assert.Equal(t, []string{"a", "b"}, st.Names(SymbolField))
	assert.Equal(t, []string{"p", "y", "z"}, st.Names(SymbolParameter, SymbolExternal))
	assert.Equal(t, SymbolTemporary, st.Lookup("tmp").Kind)
	assert.Equal(t, 0.0, st.Lookup("p").Value)
	assert.True(t, st.Lookup("y").IsScalar())
	assert.Equal(t, "external", st.Lookup("y").Kind.String())
}
