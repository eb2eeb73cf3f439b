package ir

import (
	"fmt"

	"github.com/eddie-c-davis/gt4py/internal/ast"
	"github.com/eddie-c-davis/gt4py/internal/errors"
	"github.com/eddie-c-davis/gt4py/internal/semantic"
)

// Statement is the lowered form of one assignment.
type Statement struct {
	Target string
	Pos    ast.Position
	Body   []Instruction
	// Args maps every referenced field to its region argument index.
	Args map[string]int
	// Inputs lists the fields read by the value, in first-use order.
	Inputs []string
	// ReadPos is the first read position of every input.
	ReadPos map[string]ast.Position
}

var (
	binarySymbols = []string{"+", "-", "*", "/", "**", "==", "!=", "<", "<=", ">", ">="}
	unarySymbols  = []string{"+", "-"}
	symbolScalars = []semantic.SymbolKind{semantic.SymbolParameter, semantic.SymbolExternal}
)

// LowerComputation lowers every statement of a computation block in order.
func (s *Session) LowerComputation(comp *ast.ComputationBlock) ([]*Statement, error) {
	for _, pi := range comp.ParallelInterval {
		if pi == nil {
			continue
		}
		if !isFullInterval(pi) {
			return nil, errors.UnsupportedConstruct("horizontal interval "+pi.String(), pi.Pos)
		}
	}
	if end := boundOf(comp.Interval, false); end != nil && end.Offset != 0 {
		s.upperOffsets = append(s.upperOffsets, end.Offset)
		log.Warningf("upper interval offset %d at %s is not masked", end.Offset, end.Level)
	}
	if comp.Body == nil {
		return nil, nil
	}
	return s.lowerStmt(comp.Body, comp.Interval)
}

// LowerStatement lowers a single statement outside of any interval.
func (s *Session) LowerStatement(stmt ast.Stmt) ([]*Statement, error) {
	return s.lowerStmt(stmt, nil)
}

func (s *Session) lowerStmt(stmt ast.Stmt, interval *ast.AxisInterval) ([]*Statement, error) {
	switch st := stmt.(type) {
	case *ast.Assign:
		lowered, err := s.lowerAssign(st.Target, st.Value, interval, st.Pos)
		if err != nil {
			return nil, err
		}
		return []*Statement{lowered}, nil

	case *ast.AugAssign:
		value := &ast.BinOpExpr{Pos: st.Pos, Op: st.Op, LHS: st.Target, RHS: st.Value}
		lowered, err := s.lowerAssign(st.Target, value, interval, st.Pos)
		if err != nil {
			return nil, err
		}
		return []*Statement{lowered}, nil

	case *ast.BlockStmt:
		var out []*Statement
		for _, inner := range st.Stmts {
			lowered, err := s.lowerStmt(inner, interval)
			if err != nil {
				return nil, err
			}
			out = append(out, lowered...)
		}
		return out, nil

	case *ast.If:
		return nil, errors.UnsupportedConstruct("if statement", st.Pos)

	case nil:
		return nil, errors.InvariantViolation("missing statement")

	default:
		return nil, errors.UnsupportedConstruct(stmt.NodeType().String(), stmt.NodePos())
	}
}

func (s *Session) lowerAssign(target *ast.FieldRef, value ast.Expr, interval *ast.AxisInterval, pos ast.Position) (*Statement, error) {
	if target == nil {
		return nil, errors.InvariantViolation("assignment without target")
	}
	s.reset()

	if err := s.lowerInterval(interval); err != nil {
		return nil, err
	}

	if bin, ok := value.(*ast.BinOpExpr); ok && bin.Op.IsRelational() {
		value = &ast.TernaryOpExpr{
			Pos:       bin.Pos,
			Condition: bin,
			ThenExpr:  &ast.ScalarLiteral{Pos: bin.Pos, Value: 1.0, DataType: ast.FLOAT64},
			ElseExpr:  &ast.ScalarLiteral{Pos: bin.Pos, Value: 0.0, DataType: ast.FLOAT64},
		}
	}

	if err := s.lowerAccess(target, true); err != nil {
		return nil, err
	}
	if err := s.lowerExpr(value); err != nil {
		return nil, err
	}

	rhs, err := s.pop()
	if err != nil {
		return nil, err
	}
	if _, err := s.pop(); err != nil {
		return nil, err
	}
	if depth := s.StackDepth(); depth != 0 {
		return nil, errors.InvariantViolation("%d values left on the evaluation stack after assignment to '%s'", depth, target.Name)
	}

	op, err := s.emitOperation(rhs)
	if err != nil {
		return nil, err
	}
	returnID, returnType := rhs, op.ResultType()

	if s.startGuard != "" {
		returnID, err = s.wrapGuard(rhs, returnType, pos)
		if err != nil {
			return nil, err
		}
	}
	s.body = append(s.body, &ReturnInstruction{Value: returnID, Type: returnType})

	lowered := &Statement{
		Target:  target.Name,
		Pos:     pos,
		Body:    s.body,
		Args:    s.refs,
		ReadPos: s.reads,
	}
	for _, name := range s.refOrder {
		if _, read := s.reads[name]; read {
			lowered.Inputs = append(lowered.Inputs, name)
		}
	}
	return lowered, nil
}

// lowerInterval emits the start guard of a bounded interval into the
// current statement.
func (s *Session) lowerInterval(interval *ast.AxisInterval) error {
	start := boundOf(interval, true)
	if start == nil || start.Offset == 0 {
		return nil
	}

	index := s.addOperation(&AxisIndex{Axis: ast.K})
	if _, err := s.pop(); err != nil {
		return err
	}
	if _, err := s.emitOperation(index); err != nil {
		return err
	}

	bound := start.Offset
	if start.Level == ast.END {
		bound += s.fieldSize
	}
	limit := s.addOperation(&Constant{Value: float64(bound), Type: IndexType})
	if _, err := s.pop(); err != nil {
		return err
	}
	if _, err := s.emitOperation(limit); err != nil {
		return err
	}

	guard := s.addOperation(&Binary{Op: ast.GE, LHS: index, RHS: limit, Type: IndexType})
	if _, err := s.pop(); err != nil {
		return err
	}
	if _, err := s.emitOperation(guard); err != nil {
		return err
	}
	s.startGuard = guard
	return nil
}

// wrapGuard moves the instruction defining value into an scf.if on the start
// guard; the else branch falls back to the instruction before it, which must
// yield the same type.
func (s *Session) wrapGuard(value, typ string, pos ast.Position) (string, error) {
	n := len(s.body)
	if n == 0 || s.body[n-1].Result() != value {
		return "", errors.InvariantViolation("guarded value %%%s is not the last emitted instruction", value)
	}
	if n < 2 {
		return "", errors.InvariantViolation("guarded value %%%s has no fallback instruction", value)
	}
	last, prev := s.body[n-1], s.body[n-2]
	if elseType := resultType(prev); elseType != typ {
		return "", errors.UnsupportedConstruct(
			fmt.Sprintf("guarded assignment whose fallback %%%s is %s instead of %s", prev.Result(), elseType, typ), pos)
	}

	id := s.allocate(OpBinary.Prefix())
	s.body = append(s.body[:n-1], &IfInstruction{
		ID:        id,
		Cond:      s.startGuard,
		Type:      typ,
		Then:      []Instruction{last},
		ThenValue: value,
		ThenType:  typ,
		ElseValue: prev.Result(),
		ElseType:  resultType(prev),
	})
	return id, nil
}

func (s *Session) lowerExpr(expr ast.Expr) error {
	switch e := expr.(type) {
	case *ast.ScalarLiteral:
		s.literal(e.Value)
		return nil

	case *ast.VarRef:
		sym := s.symbols.Lookup(e.Name)
		if sym == nil || !sym.IsScalar() {
			return errors.UnresolvedSymbol("variable", e.Name, e.Pos, s.symbols.Names(symbolScalars...))
		}
		s.literal(sym.Value)
		return nil

	case *ast.FieldRef:
		return s.lowerAccess(e, false)

	case *ast.UnaryOpExpr:
		return s.lowerUnary(e)

	case *ast.BinOpExpr:
		return s.lowerBinary(e)

	case *ast.TernaryOpExpr:
		return s.lowerTernary(e)

	case nil:
		return errors.InvariantViolation("missing expression")

	default:
		return errors.UnsupportedConstruct(expr.NodeType().String(), expr.NodePos())
	}
}

func (s *Session) literal(value float64) string {
	return s.addOperation(&Constant{Value: value, Type: ast.FLOAT64.String()})
}

func (s *Session) lowerAccess(ref *ast.FieldRef, onTarget bool) error {
	field := s.fields.Lookup(ref.Name)
	if field == nil {
		return errors.UnresolvedSymbol("field", ref.Name, ref.Pos, s.fields.Names())
	}
	arg := s.reference(ref.Name)
	if !onTarget {
		if _, seen := s.reads[ref.Name]; !seen {
			s.reads[ref.Name] = ref.Pos
		}
	}
	s.addOperation(&Access{
		Field:    ref.Name,
		Offset:   [3]int{ref.OffsetOf(ast.I), ref.OffsetOf(ast.J), ref.OffsetOf(ast.K)},
		Arg:      arg,
		Type:     field.ElementType(),
		TempType: field.TempType(),
	})
	return nil
}

func (s *Session) lowerUnary(e *ast.UnaryOpExpr) error {
	switch e.Op {
	case ast.POS:
		if err := s.lowerExpr(e.Arg); err != nil {
			return err
		}
		_, err := s.top()
		return err

	case ast.NEG:
		if err := s.lowerExpr(e.Arg); err != nil {
			return err
		}
		operand, err := s.pop()
		if err != nil {
			return err
		}
		op, err := s.emitOperation(operand)
		if err != nil {
			return err
		}
		s.addOperation(&Unary{Op: ast.NEG, Operand: operand, Type: op.ResultType()})
		return nil
	}
	return errors.UnsupportedOperator("unary", e.Op.Symbol(), e.Pos, unarySymbols)
}

func (s *Session) lowerBinary(e *ast.BinOpExpr) error {
	op, lhs, rhs := e.Op, e.LHS, e.RHS
	if op == ast.POW {
		exponent, ok := rhs.(*ast.ScalarLiteral)
		if !ok || exponent.Value != 2 {
			return errors.NewDiagnostic(errors.ErrorUnsupportedConstruct, "unsupported exponent "+rhs.String(), rhs.NodePos()).
				WithNote("only '** 2' is lowered, as a multiplication").
				Build()
		}
		op, rhs = ast.MUL, lhs
	}
	if !supportedBinary(op) {
		return errors.UnsupportedOperator("binary", op.Symbol(), e.Pos, binarySymbols)
	}

	if err := s.lowerExpr(lhs); err != nil {
		return err
	}
	if err := s.lowerExpr(rhs); err != nil {
		return err
	}

	right, err := s.pop()
	if err != nil {
		return err
	}
	left, err := s.pop()
	if err != nil {
		return err
	}

	leftOp, err := s.emitOperation(left)
	if err != nil {
		return err
	}
	if _, err := s.emitOperation(right); err != nil {
		return err
	}

	s.addOperation(&Binary{Op: op, LHS: left, RHS: right, Type: leftOp.ResultType()})
	return nil
}

func (s *Session) lowerTernary(e *ast.TernaryOpExpr) error {
	cond := e.Condition
	if cond == nil {
		return errors.InvariantViolation("conditional expression without condition")
	}
	if bin, ok := cond.(*ast.BinOpExpr); !ok || !bin.Op.IsRelational() {
		cond = &ast.BinOpExpr{
			Pos: cond.NodePos(),
			Op:  ast.NE,
			LHS: cond,
			RHS: &ast.ScalarLiteral{Pos: cond.NodePos(), Value: 0.0, DataType: ast.FLOAT64},
		}
	}

	if err := s.lowerExpr(cond); err != nil {
		return err
	}
	if err := s.lowerExpr(e.ThenExpr); err != nil {
		return err
	}
	if err := s.lowerExpr(e.ElseExpr); err != nil {
		return err
	}

	elseID, err := s.pop()
	if err != nil {
		return err
	}
	thenID, err := s.pop()
	if err != nil {
		return err
	}
	condID, err := s.pop()
	if err != nil {
		return err
	}

	thenOp, err := s.emitOperation(thenID)
	if err != nil {
		return err
	}
	if _, err := s.emitOperation(elseID); err != nil {
		return err
	}
	if _, err := s.emitOperation(condID); err != nil {
		return err
	}

	s.addOperation(&Select{Cond: condID, Then: thenID, Else: elseID, Type: thenOp.ResultType()})
	return nil
}

func boundOf(interval *ast.AxisInterval, start bool) *ast.AxisBound {
	if interval == nil {
		return nil
	}
	if start {
		return interval.Start
	}
	return interval.End
}

func isFullInterval(interval *ast.AxisInterval) bool {
	return interval.Start != nil && interval.End != nil &&
		interval.Start.Level == ast.START && interval.Start.Offset == 0 &&
		interval.End.Level == ast.END && interval.End.Offset == 0
}
