package grammar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eddie-c-davis/gt4py/grammar"
	"github.com/eddie-c-davis/gt4py/internal/ast"
	"github.com/eddie-c-davis/gt4py/internal/errors"
)

func TestLaplacian(t *testing.T) {
	defs, err := grammar.ParseFile(`../examples/laplacian.stencil`)
	require.NoError(t, err)
	require.Len(t, defs, 1)

	def := defs[0]
	assert.Equal(t, "laplacian", def.Name)
	require.Len(t, def.APIFields, 2)
	checkField(t, def.APIFields[0], "in_field", ast.FLOAT64, true)
	checkField(t, def.APIFields[1], "out_field", ast.FLOAT64, true)
	assert.Empty(t, def.Temporaries)
	assert.Empty(t, def.Parameters)

	require.Len(t, def.Computations, 1)
	comp := def.Computations[0]
	assert.Equal(t, ast.PARALLEL, comp.IterationOrder)
	assert.Equal(t, "interval(START, END)", comp.Interval.String())

	require.Len(t, comp.Body.Stmts, 1)
	assign, ok := comp.Body.Stmts[0].(*ast.Assign)
	require.True(t, ok, "expected assignment, got %T", comp.Body.Stmts[0])
	assert.Equal(t, "out_field", assign.Target.Name)
	assert.Equal(t,
		"(((((-4.0 * in_field[0, 0, 0]) + in_field[1, 0, 0]) + in_field[-1, 0, 0]) + in_field[0, 1, 0]) + in_field[0, -1, 0])",
		assign.Value.String())
	assert.Equal(t, 4, assign.Pos.Line)
}

func TestDiffusion(t *testing.T) {
	defs, err := grammar.ParseFile(`../examples/diffusion.stencil`)
	require.NoError(t, err)
	require.Len(t, defs, 1)

	def := defs[0]
	assert.Equal(t, "diffusion", def.Name)
	require.Len(t, def.APIFields, 3)
	require.Len(t, def.Temporaries, 2)
	checkField(t, def.Temporaries[0], "lap", ast.FLOAT64, false)
	checkField(t, def.Temporaries[1], "flx", ast.FLOAT64, false)

	require.Len(t, def.Parameters, 1)
	alpha := def.Parameters[0]
	assert.Equal(t, "alpha", alpha.Name)
	assert.Equal(t, ast.FLOAT64, alpha.DataType)
	require.NotNil(t, alpha.Init)
	assert.Equal(t, 0.5, *alpha.Init)

	assert.Equal(t, map[string]float64{"DAMPING": 0.025}, def.Externals)

	stmts := def.Computations[0].Body.Stmts
	require.Len(t, stmts, 4)

	limiter := stmts[2].(*ast.Assign)
	ternary, ok := limiter.Value.(*ast.TernaryOpExpr)
	require.True(t, ok, "expected conditional expression, got %T", limiter.Value)
	assert.Equal(t, "((flx[0, 0, 0] * (in_field[1, 0, 0] - in_field[0, 0, 0])) > 0.0)", ternary.Condition.String())
	assert.Equal(t, "0.0", ternary.ThenExpr.String())
	assert.Equal(t, "flx[0, 0, 0]", ternary.ElseExpr.String())

	update := stmts[3].(*ast.Assign)
	assert.Equal(t,
		"((in_field[0, 0, 0] - ((coeff[0, 0, 0] * alpha) * (flx[0, 0, 0] - flx[-1, 0, 0]))) - (DAMPING * (lap[0, 0, 0] ** 2)))",
		update.Value.String())
}

func TestIntervals(t *testing.T) {
	defs, err := grammar.ParseFile(`../examples/boundary.stencil`)
	require.NoError(t, err)
	require.Len(t, defs, 1)

	comps := defs[0].Computations
	require.Len(t, comps, 2)
	assert.Equal(t, ast.FORWARD, comps[0].IterationOrder)
	assert.Equal(t, "interval(START, START + 2)", comps[0].Interval.String())
	assert.Equal(t, "interval(START + 2, END)", comps[1].Interval.String())

	aug, ok := comps[1].Body.Stmts[0].(*ast.AugAssign)
	require.True(t, ok, "expected compound assignment, got %T", comps[1].Body.Stmts[0])
	assert.Equal(t, ast.ADD, aug.Op)
	assert.Equal(t, "(a[0, 0, 0] * 2.0)", aug.Value.String())
}

func TestNegativeBounds(t *testing.T) {
	def, err := grammar.ParseStencil("test.stencil", `
stencil top(a: f64[IJK]) {
  computation(BACKWARD) interval(END - 1, END) {
    a = a[0, 0, -1];
  }
}`)
	require.NoError(t, err)

	interval := def.Computations[0].Interval
	assert.Equal(t, ast.END, interval.Start.Level)
	assert.Equal(t, -1, interval.Start.Offset)
	assert.Equal(t, ast.BACKWARD, def.Computations[0].IterationOrder)
}

func TestBareNames(t *testing.T) {
	def, err := grammar.ParseStencil("test.stencil", `
stencil scale(a: f64[IJK], out: f64[IJK]; s: f64) {
  external C = 3;
  computation(PARALLEL) {
    out = a * s + C;
  }
}`)
	require.NoError(t, err)

	bin := def.Computations[0].Body.Stmts[0].(*ast.Assign).Value.(*ast.BinOpExpr)
	mul := bin.LHS.(*ast.BinOpExpr)
	assert.IsType(t, &ast.FieldRef{}, mul.LHS)
	assert.IsType(t, &ast.VarRef{}, mul.RHS)
	assert.IsType(t, &ast.VarRef{}, bin.RHS)
	assert.Nil(t, def.Parameters[0].Init)
	assert.Equal(t, 3.0, def.Externals["C"])
}

func TestOperators(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		expected string
	}{
		{"precedence", "a + b * c", "(a[0, 0, 0] + (b[0, 0, 0] * c[0, 0, 0]))"},
		{"left associative", "a - b - c", "((a[0, 0, 0] - b[0, 0, 0]) - c[0, 0, 0])"},
		{"parentheses", "(a + b) / c", "((a[0, 0, 0] + b[0, 0, 0]) / c[0, 0, 0])"},
		{"power binds tighter", "-a ** 2", "(-a[0, 0, 0] ** 2)"},
		{"comparison", "a <= b + 1", "(a[0, 0, 0] <= (b[0, 0, 0] + 1))"},
		{"logical", "a > b && b != c", "((a[0, 0, 0] > b[0, 0, 0]) and (b[0, 0, 0] != c[0, 0, 0]))"},
		{"not", "!a", "not a[0, 0, 0]"},
		{"modulo", "a % b", "(a[0, 0, 0] % b[0, 0, 0])"},
		{"exponent literal", "1.5e-3 * a", "(0.0015 * a[0, 0, 0])"},
		{"nested ternary", "a > 0.0 ? b : c < 0.0 ? c : a", "((a[0, 0, 0] > 0.0) ? b[0, 0, 0] : ((c[0, 0, 0] < 0.0) ? c[0, 0, 0] : a[0, 0, 0]))"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := "stencil ops(a: f64[IJK], b: f64[IJK], c: f64[IJK], out: f64[IJK]) {\n" +
				"  computation(PARALLEL) {\n    out = " + tt.expr + ";\n  }\n}"
			def, err := grammar.ParseStencil("ops.stencil", source)
			require.NoError(t, err)

			assign := def.Computations[0].Body.Stmts[0].(*ast.Assign)
			assert.Equal(t, tt.expected, assign.Value.String())
		})
	}
}

func TestIfStatement(t *testing.T) {
	def, err := grammar.ParseStencil("if.stencil", `
stencil branch(a: f64[IJK], out: f64[IJK]) {
  computation(PARALLEL) {
    if (a > 0.0) {
      out = a;
    } else {
      out = -a;
    }
  }
}`)
	require.NoError(t, err)

	stmt, ok := def.Computations[0].Body.Stmts[0].(*ast.If)
	require.True(t, ok)
	assert.Equal(t, "(a[0, 0, 0] > 0.0)", stmt.Condition.String())
	require.NotNil(t, stmt.ElseBody)
	assert.Len(t, stmt.MainBody.Stmts, 1)
	assert.Len(t, stmt.ElseBody.Stmts, 1)
}

func TestSyntaxError(t *testing.T) {
	_, err := grammar.Parse("broken.stencil", "stencil s(a: f64[IJK]) {\n  computation(PARALLEL) {\n    a = 1.0\n  }\n}")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrorSyntax))

	ce, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, "broken.stencil", ce.Position.Filename)
	assert.Equal(t, 4, ce.Position.Line)
}

func TestInvalidDeclarations(t *testing.T) {
	_, err := grammar.Parse("decl.stencil", `
stencil bad(a: f65[IJK], b: f64[IJX], c: f64[IIK]) {
  computation(PARALLEL) {
    a = b + c;
  }
}`)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrorInvalidDeclaration))

	joined, ok := err.(interface{ Unwrap() []error })
	require.True(t, ok, "expected every declaration error to be reported")
	assert.Len(t, joined.Unwrap(), 3)
}

func TestParseStencilCount(t *testing.T) {
	source := "stencil a(x: f64[IJK]) {}\nstencil b(x: f64[IJK]) {}"

	defs, err := grammar.Parse("two.stencil", source)
	require.NoError(t, err)
	assert.Len(t, defs, 2)

	_, err = grammar.ParseStencil("two.stencil", source)
	assert.True(t, errors.HasCode(err, errors.ErrorSyntax))
}

func TestParseFileMissing(t *testing.T) {
	_, err := grammar.ParseFile("testdata/does-not-exist.stencil")
	assert.ErrorContains(t, err, "failed to read file")
}

func checkField(t *testing.T, decl *ast.FieldDecl, name string, dt ast.DataType, api bool) {
	t.Helper()
	assert.Equal(t, name, decl.Name)
	assert.Equal(t, dt, decl.DataType)
	assert.Equal(t, []ast.Axis{ast.I, ast.J, ast.K}, decl.Axes)
	assert.Equal(t, api, decl.IsAPI)
}
