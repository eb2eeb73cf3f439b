package grammar

import (
	stderrors "errors"
	"fmt"
	"strconv"

	"github.com/eddie-c-davis/gt4py/internal/ast"
	"github.com/eddie-c-davis/gt4py/internal/errors"
)

var iterationOrders = map[string]ast.IterationOrder{
	"PARALLEL": ast.PARALLEL,
	"FORWARD":  ast.FORWARD,
	"BACKWARD": ast.BACKWARD,
}

var augmentedOperators = map[string]ast.BinaryOperator{
	"+=": ast.ADD,
	"-=": ast.SUB,
	"*=": ast.MUL,
	"/=": ast.DIV,
}

var logicalOperators = map[string]ast.BinaryOperator{
	"&&": ast.AND,
	"||": ast.OR,
}

var unaryOperators = map[string]ast.UnaryOperator{
	"+": ast.POS,
	"-": ast.NEG,
	"!": ast.NOT,
}

// Convert turns a syntax tree into stencil trees. Every declaration error of
// a stencil is reported, not only the first.
func Convert(file *File) ([]*ast.StencilDefinition, error) {
	var defs []*ast.StencilDefinition
	var errs []error
	for _, s := range file.Stencils {
		def, declErrs := convertStencil(s)
		if len(declErrs) > 0 {
			errs = append(errs, declErrs...)
			continue
		}
		defs = append(defs, def)
	}
	if err := stderrors.Join(errs...); err != nil {
		return nil, err
	}
	return defs, nil
}

type converter struct {
	fields map[string]bool
	errs   []error
}

func convertStencil(s *Stencil) (*ast.StencilDefinition, []error) {
	c := &converter{fields: make(map[string]bool)}
	def := &ast.StencilDefinition{
		Pos:  position(s.Pos),
		Name: s.Name,
	}

	for _, f := range s.Fields {
		def.APIFields = append(def.APIFields, c.fieldDecl(f, true))
	}
	for _, t := range s.Temps {
		def.Temporaries = append(def.Temporaries, c.fieldDecl(t.Field, false))
	}
	for _, p := range s.Params {
		def.Parameters = append(def.Parameters, c.varDecl(p))
	}
	if len(s.Externals) > 0 {
		def.Externals = make(map[string]float64, len(s.Externals))
		for _, e := range s.Externals {
			if _, dup := def.Externals[e.Name]; dup {
				c.errs = append(c.errs, errors.DuplicateDeclaration(e.Name, position(e.Pos)))
				continue
			}
			value, _ := c.number(e.Value)
			def.Externals[e.Name] = value
		}
	}
	for _, comp := range s.Computations {
		def.Computations = append(def.Computations, c.computation(comp))
	}

	return def, c.errs
}

func (c *converter) fieldDecl(f *FieldParam, api bool) *ast.FieldDecl {
	decl := &ast.FieldDecl{
		Pos:   position(f.Pos),
		Name:  f.Name,
		IsAPI: api,
	}
	dt, ok := ast.ParseDataType(f.Type)
	if !ok {
		c.errs = append(c.errs, errors.InvalidDeclaration(fmt.Sprintf("unknown element type '%s'", f.Type), position(f.Pos)))
	}
	decl.DataType = dt

	seen := make(map[ast.Axis]bool)
	for _, r := range f.Axes {
		axis, ok := ast.ParseAxis(r)
		if !ok || seen[axis] {
			c.errs = append(c.errs, errors.InvalidDeclaration(fmt.Sprintf("invalid axes '%s'", f.Axes), position(f.Pos)))
			break
		}
		seen[axis] = true
		decl.Axes = append(decl.Axes, axis)
	}
	c.fields[f.Name] = true
	return decl
}

func (c *converter) varDecl(p *ScalarParam) *ast.VarDecl {
	decl := &ast.VarDecl{Pos: position(p.Pos), Name: p.Name}
	dt, ok := ast.ParseDataType(p.Type)
	if !ok {
		c.errs = append(c.errs, errors.InvalidDeclaration(fmt.Sprintf("unknown parameter type '%s'", p.Type), position(p.Pos)))
	}
	decl.DataType = dt
	if p.Default != nil {
		value, _ := c.number(p.Default)
		decl.Init = &value
	}
	return decl
}

func (c *converter) number(n *Number) (float64, ast.DataType) {
	text, dt := "", ast.FLOAT64
	switch {
	case n.Float != nil:
		text = *n.Float
	case n.Int != nil:
		text, dt = *n.Int, ast.INT64
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		c.errs = append(c.errs, errors.SyntaxError(fmt.Sprintf("invalid number '%s'", text), position(n.Pos)))
	}
	if n.Neg {
		value = -value
	}
	return value, dt
}

func (c *converter) computation(comp *Computation) *ast.ComputationBlock {
	block := &ast.ComputationBlock{
		Pos:            position(comp.Pos),
		IterationOrder: iterationOrders[comp.Order],
		Interval:       ast.FullInterval(),
		Body:           c.block(comp.Body),
	}
	if comp.Interval != nil {
		block.Interval = &ast.AxisInterval{
			Pos:   position(comp.Interval.Pos),
			Start: bound(comp.Interval.Start),
			End:   bound(comp.Interval.End),
		}
	}
	return block
}

func bound(b *Bound) *ast.AxisBound {
	out := &ast.AxisBound{Pos: position(b.Pos), Level: ast.START, Offset: b.Offset}
	if b.Level == "END" {
		out.Level = ast.END
	}
	if b.Sign == "-" {
		out.Offset = -out.Offset
	}
	return out
}

func (c *converter) block(b *Block) *ast.BlockStmt {
	if b == nil {
		return nil
	}
	out := &ast.BlockStmt{Pos: position(b.Pos)}
	for _, s := range b.Stmts {
		if stmt := c.statement(s); stmt != nil {
			out.Stmts = append(out.Stmts, stmt)
		}
	}
	return out
}

func (c *converter) statement(s *Statement) ast.Stmt {
	switch {
	case s.If != nil:
		return &ast.If{
			Pos:       position(s.If.Pos),
			Condition: c.expr(s.If.Cond),
			MainBody:  c.block(s.If.Then),
			ElseBody:  c.block(s.If.Else),
		}

	case s.Assign != nil:
		a := s.Assign
		target := c.fieldRef(a.Target)
		value := c.expr(a.Value)
		if a.Op == "=" {
			return &ast.Assign{Pos: position(a.Pos), Target: target, Value: value}
		}
		return &ast.AugAssign{Pos: position(a.Pos), Target: target, Op: augmentedOperators[a.Op], Value: value}
	}
	return nil
}

func (c *converter) fieldRef(f *FieldAccess) *ast.FieldRef {
	ref := &ast.FieldRef{Pos: position(f.Pos), Name: f.Name, Offset: make(map[ast.Axis]int, len(ast.DomainAxes))}
	if len(f.Offsets) > len(ast.DomainAxes) {
		c.errs = append(c.errs, errors.SyntaxError(fmt.Sprintf("'%s' has %d offsets, at most 3 are allowed", f.Name, len(f.Offsets)), position(f.Pos)))
		return ref
	}
	for i, off := range f.Offsets {
		value := off.Value
		if off.Neg {
			value = -value
		}
		ref.Offset[ast.DomainAxes[i]] = value
	}
	return ref
}

func (c *converter) expr(e *Expr) ast.Expr {
	cond := c.logical(e.Cond)
	if e.Then == nil {
		return cond
	}
	return &ast.TernaryOpExpr{
		Pos:       position(e.Pos),
		Condition: cond,
		ThenExpr:  c.expr(e.Then),
		ElseExpr:  c.expr(e.Else),
	}
}

func (c *converter) logical(l *Logical) ast.Expr {
	left := c.comparison(l.Left)
	for _, op := range l.Rest {
		left = &ast.BinOpExpr{Pos: position(op.Pos), Op: logicalOperators[op.Op], LHS: left, RHS: c.comparison(op.Right)}
	}
	return left
}

func (c *converter) comparison(cmp *Comparison) ast.Expr {
	left := c.additive(cmp.Left)
	if cmp.Op == "" {
		return left
	}
	op, _ := ast.ParseBinaryOperator(cmp.Op)
	return &ast.BinOpExpr{Pos: position(cmp.Pos), Op: op, LHS: left, RHS: c.additive(cmp.Right)}
}

func (c *converter) additive(a *Additive) ast.Expr {
	left := c.multiplicative(a.Left)
	for _, op := range a.Rest {
		bop, _ := ast.ParseBinaryOperator(op.Op)
		left = &ast.BinOpExpr{Pos: position(op.Pos), Op: bop, LHS: left, RHS: c.multiplicative(op.Right)}
	}
	return left
}

func (c *converter) multiplicative(m *Multiplicative) ast.Expr {
	left := c.power(m.Left)
	for _, op := range m.Rest {
		bop, _ := ast.ParseBinaryOperator(op.Op)
		left = &ast.BinOpExpr{Pos: position(op.Pos), Op: bop, LHS: left, RHS: c.power(op.Right)}
	}
	return left
}

func (c *converter) power(p *Power) ast.Expr {
	base := c.unary(p.Base)
	if p.Exponent == nil {
		return base
	}
	return &ast.BinOpExpr{Pos: position(p.Pos), Op: ast.POW, LHS: base, RHS: c.unary(p.Exponent)}
}

func (c *converter) unary(u *Unary) ast.Expr {
	if u.Value != nil {
		return c.primary(u.Value)
	}
	return &ast.UnaryOpExpr{Pos: position(u.Pos), Op: unaryOperators[u.Op], Arg: c.unary(u.Operand)}
}

func (c *converter) primary(p *Primary) ast.Expr {
	switch {
	case p.Float != nil, p.Int != nil:
		value, dt := c.number(&Number{Pos: p.Pos, Float: p.Float, Int: p.Int})
		return &ast.ScalarLiteral{Pos: position(p.Pos), Value: value, DataType: dt}

	case p.Parens != nil:
		return c.expr(p.Parens)

	case p.Access != nil:
		// A bare name is a field when one is declared under it, a scalar otherwise.
		if len(p.Access.Offsets) == 0 && !c.fields[p.Access.Name] {
			return &ast.VarRef{Pos: position(p.Access.Pos), Name: p.Access.Name}
		}
		return c.fieldRef(p.Access)
	}
	return nil
}
