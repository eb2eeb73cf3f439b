package ir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eddie-c-davis/gt4py/internal/ast"
	"github.com/eddie-c-davis/gt4py/internal/errors"
)

func lines(l ...string) string {
	return strings.Join(l, "\n") + "\n"
}

func TestLowerAssignments(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
		stmt   ast.Stmt
		body   string
		args   map[string]int
		inputs []string
	}{
		{
			name:   "sum of two fields",
			fields: []string{"a", "b", "out"},
			stmt:   assign("out", bin(ast.ADD, ref("a"), ref("b"))),
			body: lines(
				"%acc1 = stencil.access %arg1[0, 0, 0] : (!stencil.temp<?x?x?xf64>) -> f64",
				"%acc2 = stencil.access %arg2[0, 0, 0] : (!stencil.temp<?x?x?xf64>) -> f64",
				"%exp0 = addf %acc1, %acc2 : f64",
				"stencil.return %exp0 : f64",
			),
			args:   map[string]int{"out": 0, "a": 1, "b": 2},
			inputs: []string{"a", "b"},
		},
		{
			name:   "literal",
			fields: []string{"out"},
			stmt:   assign("out", lit(2)),
			body: lines(
				"%cst0 = constant 2.000000e+00 : f64",
				"stencil.return %cst0 : f64",
			),
			args: map[string]int{"out": 0},
		},
		{
			name:   "repeated literal",
			fields: []string{"out"},
			stmt:   assign("out", bin(ast.MUL, lit(3), lit(3))),
			body: lines(
				"%cst0 = constant 3.000000e+00 : f64",
				"%exp0 = mulf %cst0, %cst0 : f64",
				"stencil.return %exp0 : f64",
			),
			args: map[string]int{"out": 0},
		},
		{
			name:   "square",
			fields: []string{"a", "out"},
			stmt:   assign("out", bin(ast.POW, ref("a"), lit(2))),
			body: lines(
				"%acc1 = stencil.access %arg1[0, 0, 0] : (!stencil.temp<?x?x?xf64>) -> f64",
				"%exp0 = mulf %acc1, %acc1 : f64",
				"stencil.return %exp0 : f64",
			),
			args:   map[string]int{"out": 0, "a": 1},
			inputs: []string{"a"},
		},
		{
			name:   "shifted reads of one field",
			fields: []string{"a", "out"},
			stmt:   assign("out", bin(ast.SUB, ast.NewFieldRef("a", 1, 0, 0), ast.NewFieldRef("a", -1, 0, 0))),
			body: lines(
				"%acc1 = stencil.access %arg1[1, 0, 0] : (!stencil.temp<?x?x?xf64>) -> f64",
				"%acc2 = stencil.access %arg1[-1, 0, 0] : (!stencil.temp<?x?x?xf64>) -> f64",
				"%exp0 = subf %acc1, %acc2 : f64",
				"stencil.return %exp0 : f64",
			),
			args:   map[string]int{"out": 0, "a": 1},
			inputs: []string{"a"},
		},
		{
			name:   "common subexpression",
			fields: []string{"a", "b", "out"},
			stmt: assign("out", bin(ast.DIV,
				bin(ast.ADD, ref("a"), ref("b")),
				bin(ast.ADD, ref("a"), ref("b")))),
			body: lines(
				"%acc1 = stencil.access %arg1[0, 0, 0] : (!stencil.temp<?x?x?xf64>) -> f64",
				"%acc2 = stencil.access %arg2[0, 0, 0] : (!stencil.temp<?x?x?xf64>) -> f64",
				"%exp0 = addf %acc1, %acc2 : f64",
				"%exp1 = divf %exp0, %exp0 : f64",
				"stencil.return %exp1 : f64",
			),
			args:   map[string]int{"out": 0, "a": 1, "b": 2},
			inputs: []string{"a", "b"},
		},
		{
			name:   "negation",
			fields: []string{"a", "out"},
			stmt:   assign("out", &ast.UnaryOpExpr{Op: ast.NEG, Arg: ref("a")}),
			body: lines(
				"%acc1 = stencil.access %arg1[0, 0, 0] : (!stencil.temp<?x?x?xf64>) -> f64",
				"%exp0 = negf %acc1 : f64",
				"stencil.return %exp0 : f64",
			),
			args:   map[string]int{"out": 0, "a": 1},
			inputs: []string{"a"},
		},
		{
			name:   "unary plus",
			fields: []string{"a", "out"},
			stmt:   assign("out", &ast.UnaryOpExpr{Op: ast.POS, Arg: ref("a")}),
			body: lines(
				"%acc1 = stencil.access %arg1[0, 0, 0] : (!stencil.temp<?x?x?xf64>) -> f64",
				"stencil.return %acc1 : f64",
			),
			args:   map[string]int{"out": 0, "a": 1},
			inputs: []string{"a"},
		},
		{
			name:   "relational value",
			fields: []string{"a", "b", "out"},
			stmt:   assign("out", bin(ast.GT, ref("a"), ref("b"))),
			body: lines(
				"%acc1 = stencil.access %arg1[0, 0, 0] : (!stencil.temp<?x?x?xf64>) -> f64",
				"%acc2 = stencil.access %arg2[0, 0, 0] : (!stencil.temp<?x?x?xf64>) -> f64",
				"%cst0 = constant 1.000000e+00 : f64",
				"%cst1 = constant 0.000000e+00 : f64",
				`%exp0 = cmpf "ogt", %acc1, %acc2 : f64`,
				"%sel0 = select %exp0, %cst0, %cst1 : f64",
				"stencil.return %sel0 : f64",
			),
			args:   map[string]int{"out": 0, "a": 1, "b": 2},
			inputs: []string{"a", "b"},
		},
		{
			name:   "conditional on a value",
			fields: []string{"a", "b", "c", "out"},
			stmt:   assign("out", &ast.TernaryOpExpr{Condition: ref("a"), ThenExpr: ref("b"), ElseExpr: ref("c")}),
			body: lines(
				"%acc1 = stencil.access %arg1[0, 0, 0] : (!stencil.temp<?x?x?xf64>) -> f64",
				"%cst0 = constant 0.000000e+00 : f64",
				"%acc2 = stencil.access %arg2[0, 0, 0] : (!stencil.temp<?x?x?xf64>) -> f64",
				"%acc3 = stencil.access %arg3[0, 0, 0] : (!stencil.temp<?x?x?xf64>) -> f64",
				`%exp0 = cmpf "one", %acc1, %cst0 : f64`,
				"%sel0 = select %exp0, %acc2, %acc3 : f64",
				"stencil.return %sel0 : f64",
			),
			args:   map[string]int{"out": 0, "a": 1, "b": 2, "c": 3},
			inputs: []string{"a", "b", "c"},
		},
		{
			name:   "compound assignment reads its target",
			fields: []string{"a", "out"},
			stmt:   &ast.AugAssign{Target: ref("out"), Op: ast.MUL, Value: ref("a")},
			body: lines(
				"%acc0 = stencil.access %arg0[0, 0, 0] : (!stencil.temp<?x?x?xf64>) -> f64",
				"%acc1 = stencil.access %arg1[0, 0, 0] : (!stencil.temp<?x?x?xf64>) -> f64",
				"%exp0 = mulf %acc0, %acc1 : f64",
				"stencil.return %exp0 : f64",
			),
			args:   map[string]int{"out": 0, "a": 1},
			inputs: []string{"out", "a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, s := lowerOne(t, stencil(tt.fields, tt.stmt))

			assert.Equal(t, tt.body, PrintInstructions(stmt.Body))
			assert.Equal(t, "out", stmt.Target)
			assert.Equal(t, tt.args, stmt.Args)
			assert.Equal(t, tt.inputs, stmt.Inputs)
			assert.Equal(t, 0, s.StackDepth())
		})
	}
}

func TestLowerScalars(t *testing.T) {
	init := 0.5
	def := stencil([]string{"a", "out"}, assign("out", bin(ast.ADD,
		bin(ast.MUL, ref("a"), &ast.VarRef{Name: "alpha"}),
		&ast.VarRef{Name: "BETA"})))
	def.Parameters = []*ast.VarDecl{{Name: "alpha", DataType: ast.FLOAT64, Init: &init}}
	def.Externals = map[string]float64{"BETA": 0.5}

	stmt, _ := lowerOne(t, def)
	assert.Equal(t, lines(
		"%acc1 = stencil.access %arg1[0, 0, 0] : (!stencil.temp<?x?x?xf64>) -> f64",
		"%cst0 = constant 5.000000e-01 : f64",
		"%exp0 = mulf %acc1, %cst0 : f64",
		"%exp1 = addf %exp0, %cst0 : f64",
		"stencil.return %exp1 : f64",
	), PrintInstructions(stmt.Body), "scalars with equal values share one constant")
}

func TestLowerGuardedInterval(t *testing.T) {
	def := stencil([]string{"a", "out"})
	def.Computations = []*ast.ComputationBlock{
		computation(interval(ast.START, 1, ast.END, 0), assign("out", bin(ast.ADD, ref("a"), lit(1)))),
	}

	stmt, s := lowerOne(t, def)
	assert.Equal(t, lines(
		"%ndx0 = stencil.index 2 [0, 0, 0] : index",
		"%cst0 = constant 1 : index",
		`%exp0 = cmpi "sge", %ndx0, %cst0 : index`,
		"%acc1 = stencil.access %arg1[0, 0, 0] : (!stencil.temp<?x?x?xf64>) -> f64",
		"%cst1 = constant 1.000000e+00 : f64",
		"%exp2 = scf.if %exp0 -> f64 {",
		"  %exp1 = addf %acc1, %cst1 : f64",
		"  scf.yield %exp1 : f64",
		"} else {",
		"  scf.yield %cst1 : f64",
		"}",
		"stencil.return %exp2 : f64",
	), PrintInstructions(stmt.Body))
	assert.Empty(t, s.UpperOffsets())
}

func TestLowerGuardFromEnd(t *testing.T) {
	def := stencil([]string{"out"})
	def.Computations = []*ast.ComputationBlock{
		computation(interval(ast.END, -2, ast.END, 0), assign("out", bin(ast.MUL, ref("out"), lit(0)))),
	}

	stmt, _ := lowerOne(t, def)
	require.GreaterOrEqual(t, len(stmt.Body), 2)
	assert.Equal(t, "%cst0 = constant 62 : index", FormatOperation("cst0", stmt.Body[1].(*OpInstruction).Op))
}

func TestGuardedFallbackTypeMismatch(t *testing.T) {
	tests := []struct {
		name  string
		value ast.Expr
	}{
		{name: "literal", value: lit(0)},
		{name: "field copy", value: ref("a")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := stencil([]string{"a", "out"})
			def.Computations = []*ast.ComputationBlock{
				computation(interval(ast.START, 1, ast.END, 0), assign("out", tt.value)),
			}

			statements, err := newTestSession(def).LowerComputation(def.Computations[0])
			require.Error(t, err)
			assert.Nil(t, statements)
			assert.True(t, errors.HasCode(err, errors.ErrorUnsupportedConstruct), "got %v", err)
		})
	}
}

func TestLowerGuardPerStatement(t *testing.T) {
	def := stencil([]string{"a", "out"})
	def.Computations = []*ast.ComputationBlock{
		computation(interval(ast.START, 1, ast.END, 0),
			assign("out", bin(ast.ADD, ref("a"), lit(1))),
			assign("a", bin(ast.SUB, ref("out"), lit(1)))),
	}

	s := newTestSession(def)
	statements, err := s.LowerComputation(def.Computations[0])
	require.NoError(t, err)
	require.Len(t, statements, 2)

	for _, stmt := range statements {
		require.NotEmpty(t, stmt.Body)
		first := stmt.Body[0].(*OpInstruction)
		assert.Equal(t, OpAxisIndex, first.Op.Kind(), "every statement of the interval recomputes its guard")

		n := len(stmt.Body)
		_, wrapped := stmt.Body[n-2].(*IfInstruction)
		assert.True(t, wrapped)
	}
	assert.Equal(t, "ndx1", statements[1].Body[0].Result(), "ids are never reused across statements")
}

func TestUpperOffsetRecorded(t *testing.T) {
	def := stencil([]string{"out"})
	def.Computations = []*ast.ComputationBlock{
		computation(interval(ast.START, 0, ast.END, -1), assign("out", lit(1))),
	}

	stmt, s := lowerOne(t, def)
	assert.Equal(t, []int{-1}, s.UpperOffsets())
	for _, inst := range stmt.Body {
		_, wrapped := inst.(*IfInstruction)
		assert.False(t, wrapped, "upper bounds never guard")
	}
}

func TestStatementsShareCounters(t *testing.T) {
	def := stencil([]string{"a", "b", "out"},
		assign("out", ref("a")),
		assign("b", ref("a")))

	s := newTestSession(def)
	statements, err := s.LowerComputation(def.Computations[0])
	require.NoError(t, err)
	require.Len(t, statements, 2)

	assert.Equal(t, "acc1", statements[0].Body[0].Result())
	assert.Equal(t, "acc3", statements[1].Body[0].Result())
	assert.Equal(t, map[string]int{"b": 0, "a": 1}, statements[1].Args)
}

func TestLowerErrors(t *testing.T) {
	tests := []struct {
		name string
		stmt ast.Stmt
		code string
	}{
		{
			name: "if statement",
			stmt: &ast.If{Condition: ref("a"), MainBody: &ast.BlockStmt{Stmts: []ast.Stmt{assign("out", ref("a"))}}},
			code: errors.ErrorUnsupportedConstruct,
		},
		{
			name: "modulo",
			stmt: assign("out", bin(ast.MOD, ref("a"), lit(2))),
			code: errors.ErrorUnsupportedConstruct,
		},
		{
			name: "cube",
			stmt: assign("out", bin(ast.POW, ref("a"), lit(3))),
			code: errors.ErrorUnsupportedConstruct,
		},
		{
			name: "field exponent",
			stmt: assign("out", bin(ast.POW, ref("a"), ref("a"))),
			code: errors.ErrorUnsupportedConstruct,
		},
		{
			name: "logical and",
			stmt: assign("out", bin(ast.AND, ref("a"), ref("a"))),
			code: errors.ErrorUnsupportedConstruct,
		},
		{
			name: "logical not",
			stmt: assign("out", &ast.UnaryOpExpr{Op: ast.NOT, Arg: ref("a")}),
			code: errors.ErrorUnsupportedConstruct,
		},
		{
			name: "unresolved variable",
			stmt: assign("out", bin(ast.ADD, ref("a"), &ast.VarRef{Name: "alpha"})),
			code: errors.ErrorUnresolvedSymbol,
		},
		{
			name: "field used as variable",
			stmt: assign("out", &ast.VarRef{Name: "a"}),
			code: errors.ErrorUnresolvedSymbol,
		},
		{
			name: "undeclared field",
			stmt: assign("out", ref("missing")),
			code: errors.ErrorUnresolvedSymbol,
		},
		{
			name: "undeclared target",
			stmt: assign("missing", ref("a")),
			code: errors.ErrorUnresolvedSymbol,
		},
		{
			name: "missing value",
			stmt: &ast.Assign{Target: ref("out")},
			code: errors.ErrorStructuralInvariant,
		},
		{
			name: "missing target",
			stmt: &ast.Assign{Value: ref("a")},
			code: errors.ErrorStructuralInvariant,
		},
		{
			name: "conditional without condition",
			stmt: assign("out", &ast.TernaryOpExpr{ThenExpr: ref("a"), ElseExpr: lit(0)}),
			code: errors.ErrorStructuralInvariant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := stencil([]string{"a", "out"}, tt.stmt)
			s := newTestSession(def)

			statements, err := s.LowerComputation(def.Computations[0])
			require.Error(t, err)
			assert.Nil(t, statements)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestHorizontalIntervalRejected(t *testing.T) {
	def := stencil([]string{"a", "out"}, assign("out", ref("a")))
	def.Computations[0].ParallelInterval = []*ast.AxisInterval{
		interval(ast.START, 1, ast.END, -1),
	}

	_, err := newTestSession(def).LowerComputation(def.Computations[0])
	assert.True(t, errors.HasCode(err, errors.ErrorUnsupportedConstruct))

	def.Computations[0].ParallelInterval = []*ast.AxisInterval{ast.FullInterval(), ast.FullInterval()}
	_, err = newTestSession(def).LowerComputation(def.Computations[0])
	assert.NoError(t, err)
}

func TestUnresolvedVariableSuggestion(t *testing.T) {
	init := 1.0
	def := stencil([]string{"a", "out"}, assign("out", &ast.VarRef{Name: "alpah"}))
	def.Parameters = []*ast.VarDecl{{Name: "alpha", DataType: ast.FLOAT64, Init: &init}}

	_, err := newTestSession(def).LowerComputation(def.Computations[0])
	ce, ok := errors.As(err)
	require.True(t, ok)
	require.Len(t, ce.Suggestions, 1)
	assert.Equal(t, "did you mean 'alpha'?", ce.Suggestions[0].Message)
}
