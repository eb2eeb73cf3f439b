package ir

import (
	"testing"

	"github.com/eddie-c-davis/gt4py/internal/ast"
	"github.com/eddie-c-davis/gt4py/internal/config"
	"github.com/eddie-c-davis/gt4py/internal/semantic"
)

func apiField(name string) *ast.FieldDecl {
	return &ast.FieldDecl{Name: name, DataType: ast.FLOAT64, Axes: []ast.Axis{ast.I, ast.J, ast.K}, IsAPI: true}
}

func tempField(name string) *ast.FieldDecl {
	return &ast.FieldDecl{Name: name, DataType: ast.FLOAT64, Axes: []ast.Axis{ast.I, ast.J, ast.K}}
}

// stencil declares api fields for every name and puts stmts in one
// full-interval computation.
func stencil(names []string, stmts ...ast.Stmt) *ast.StencilDefinition {
	def := &ast.StencilDefinition{Name: "test.stencil"}
	for _, name := range names {
		def.APIFields = append(def.APIFields, apiField(name))
	}
	def.Computations = []*ast.ComputationBlock{computation(ast.FullInterval(), stmts...)}
	return def
}

func computation(interval *ast.AxisInterval, stmts ...ast.Stmt) *ast.ComputationBlock {
	return &ast.ComputationBlock{
		IterationOrder: ast.PARALLEL,
		Interval:       interval,
		Body:           &ast.BlockStmt{Stmts: stmts},
	}
}

func interval(startLevel ast.LevelMarker, startOffset int, endLevel ast.LevelMarker, endOffset int) *ast.AxisInterval {
	return &ast.AxisInterval{
		Start: &ast.AxisBound{Level: startLevel, Offset: startOffset},
		End:   &ast.AxisBound{Level: endLevel, Offset: endOffset},
	}
}

func assign(target string, value ast.Expr) *ast.Assign {
	return &ast.Assign{Target: ast.NewFieldRef(target, 0, 0, 0), Value: value}
}

func ref(name string) *ast.FieldRef {
	return ast.NewFieldRef(name, 0, 0, 0)
}

func lit(value float64) *ast.ScalarLiteral {
	return ast.NewLiteral(value)
}

func bin(op ast.BinaryOperator, lhs, rhs ast.Expr) *ast.BinOpExpr {
	return &ast.BinOpExpr{Op: op, LHS: lhs, RHS: rhs}
}

func newTestSession(def *ast.StencilDefinition) *Session {
	return NewSession(semantic.CollectFields(def), semantic.BuildSymbolTable(def), config.DefaultFieldSize)
}

// lowerOne lowers the single statement of a one-statement stencil.
func lowerOne(t *testing.T, def *ast.StencilDefinition) (*Statement, *Session) {
	t.Helper()
	s := newTestSession(def)
	statements, err := s.LowerComputation(def.Computations[0])
	if err != nil {
		t.Fatalf("lowering failed: %v", err)
	}
	if len(statements) != 1 {
		t.Fatalf("expected one statement, got %d", len(statements))
	}
	return statements[0], s
}
