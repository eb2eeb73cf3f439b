package semantic

import (
	stderrors "errors"

	"github.com/eddie-c-davis/gt4py/internal/ast"
	"github.com/eddie-c-davis/gt4py/internal/errors"
)

// Analysis is the result of checking one stencil definition.
type Analysis struct {
	Fields      *FieldTable
	Symbols     *SymbolTable
	Diagnostics []*errors.CompilerError
}

// Err joins the error-level diagnostics, nil when there are none.
func (a *Analysis) Err() error {
	var errs []error
	for _, d := range a.Diagnostics {
		if d.Level == errors.Error {
			errs = append(errs, d)
		}
	}
	return stderrors.Join(errs...)
}

// Warnings returns the warning-level diagnostics.
func (a *Analysis) Warnings() []*errors.CompilerError {
	var warnings []*errors.CompilerError
	for _, d := range a.Diagnostics {
		if d.Level == errors.Warning {
			warnings = append(warnings, d)
		}
	}
	return warnings
}

type Analyzer struct {
	def         *ast.StencilDefinition
	symbols     *SymbolTable
	diagnostics []*errors.CompilerError
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze resolves every name of the stencil, infers field intents and
// collects diagnostics. It never stops at the first problem.
func (a *Analyzer) Analyze(def *ast.StencilDefinition) *Analysis {
	a.def = def
	a.diagnostics = nil
	a.symbols = BuildSymbolTable(def)

	a.checkDeclarations()
	for _, comp := range def.Computations {
		a.checkComputation(comp)
	}

	fields := CollectFields(def)
	if err := fields.Validate(); err != nil {
		for _, e := range unwrapAll(err) {
			if ce, ok := errors.As(e); ok {
				a.diagnostics = append(a.diagnostics, ce)
			}
		}
	}

	return &Analysis{
		Fields:      fields,
		Symbols:     a.symbols,
		Diagnostics: a.diagnostics,
	}
}

// Analyze is a shorthand for NewAnalyzer().Analyze(def).
func Analyze(def *ast.StencilDefinition) *Analysis {
	return NewAnalyzer().Analyze(def)
}

func (a *Analyzer) addCompilerError(err *errors.CompilerError) {
	a.diagnostics = append(a.diagnostics, err)
}

func (a *Analyzer) checkDeclarations() {
	seen := make(map[string]bool)
	for _, f := range a.def.Fields() {
		if seen[f.Name] {
			a.addCompilerError(errors.DuplicateDeclaration(f.Name, f.Pos))
		}
		seen[f.Name] = true
		if f.DataType == ast.INVALID {
			a.addCompilerError(errors.InvalidDeclaration("field '"+f.Name+"' has no valid element type", f.Pos))
		}
		if len(f.Axes) == 0 {
			a.addCompilerError(errors.InvalidDeclaration("field '"+f.Name+"' has no axes", f.Pos))
		}
	}
	for _, p := range a.def.Parameters {
		if seen[p.Name] {
			a.addCompilerError(errors.DuplicateDeclaration(p.Name, p.Pos))
		}
		seen[p.Name] = true
	}
	for _, name := range sortedNames(a.def.Externals) {
		if seen[name] {
			a.addCompilerError(errors.DuplicateDeclaration(name, a.def.Pos))
		}
	}
}

func (a *Analyzer) checkComputation(comp *ast.ComputationBlock) {
	if comp.Interval != nil && comp.Interval.End != nil && comp.Interval.End.Offset != 0 {
		a.addCompilerError(errors.UpperBoundIgnored(comp.Interval.End.Offset, comp.Interval.End.Pos))
	}
	if comp.Body != nil {
		a.checkStmt(comp.Body)
	}
}

func (a *Analyzer) checkStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Assign:
		a.checkFieldRef(s.Target)
		a.checkExpr(s.Value)
	case *ast.AugAssign:
		a.checkFieldRef(s.Target)
		a.checkExpr(s.Value)
	case *ast.If:
		a.checkExpr(s.Condition)
		a.checkStmt(s.MainBody)
		if s.ElseBody != nil {
			a.checkStmt(s.ElseBody)
		}
	case *ast.BlockStmt:
		for _, inner := range s.Stmts {
			a.checkStmt(inner)
		}
	}
}

func (a *Analyzer) checkExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.FieldRef:
		a.checkFieldRef(e)
	case *ast.VarRef:
		sym := a.symbols.Lookup(e.Name)
		if sym == nil || !sym.IsScalar() {
			a.addCompilerError(errors.UnresolvedSymbol("variable", e.Name, e.Pos,
				a.symbols.Names(SymbolParameter, SymbolExternal)))
		}
	case *ast.UnaryOpExpr:
		a.checkExpr(e.Arg)
	case *ast.BinOpExpr:
		a.checkExpr(e.LHS)
		a.checkExpr(e.RHS)
	case *ast.TernaryOpExpr:
		a.checkExpr(e.Condition)
		a.checkExpr(e.ThenExpr)
		a.checkExpr(e.ElseExpr)
	}
}

func (a *Analyzer) checkFieldRef(ref *ast.FieldRef) {
	if ref == nil {
		return
	}
	sym := a.symbols.Lookup(ref.Name)
	if sym == nil || sym.IsScalar() {
		a.addCompilerError(errors.UnresolvedSymbol("field", ref.Name, ref.Pos,
			a.symbols.Names(SymbolField, SymbolTemporary)))
	}
}

func unwrapAll(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
