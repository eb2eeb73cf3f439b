package ir

import (
	"fmt"
	"strconv"

	"github.com/eddie-c-davis/gt4py/internal/ast"
)

// OpKind tags the variants of Operation.
type OpKind int

const (
	OpConstant OpKind = iota
	OpAccess
	OpUnary
	OpBinary
	OpSelect
	OpAxisIndex
)

// Prefix is the id prefix of values of this kind.
func (k OpKind) Prefix() string {
	switch k {
	case OpConstant:
		return "cst"
	case OpAccess:
		return "acc"
	case OpSelect:
		return "sel"
	case OpAxisIndex:
		return "ndx"
	}
	return "exp"
}

func (k OpKind) String() string {
	switch k {
	case OpConstant:
		return "constant"
	case OpAccess:
		return "access"
	case OpUnary:
		return "unary"
	case OpBinary:
		return "binary"
	case OpSelect:
		return "select"
	case OpAxisIndex:
		return "index"
	}
	return fmt.Sprintf("OpKind(%d)", int(k))
}

// IndexType is the type of axis positions and interval bounds.
const IndexType = "index"

// Operation is one SSA value definition. Each variant carries only the
// fields its kind needs.
type Operation interface {
	Kind() OpKind
	// Key identifies the operation structurally: kind, operands and immediate.
	Key() string
	ResultType() string
	Operands() []string
}

// Constant is a literal value.
type Constant struct {
	Value float64
	Type  string
}

// Access reads a field at a relative offset through apply argument Arg.
type Access struct {
	Field    string
	Offset   [3]int
	Arg      int
	Type     string
	TempType string
}

// Unary applies a prefix operator. Only NEG has a lowering.
type Unary struct {
	Op      ast.UnaryOperator
	Operand string
	Type    string
}

// Binary applies an arithmetic or relational operator.
type Binary struct {
	Op  ast.BinaryOperator
	LHS string
	RHS string
	// Type is the operand type; relational results reuse it.
	Type string
}

// Select chooses Then when Cond holds and Else otherwise.
type Select struct {
	Cond string
	Then string
	Else string
	Type string
}

// AxisIndex fetches the current position along an axis.
type AxisIndex struct {
	Axis   ast.Axis
	Origin [3]int
}

func (*Constant) Kind() OpKind  { return OpConstant }
func (*Access) Kind() OpKind    { return OpAccess }
func (*Unary) Kind() OpKind     { return OpUnary }
func (*Binary) Kind() OpKind    { return OpBinary }
func (*Select) Kind() OpKind    { return OpSelect }
func (*AxisIndex) Kind() OpKind { return OpAxisIndex }

func (c *Constant) Key() string {
	return fmt.Sprintf("cst(%s:%s)", strconv.FormatFloat(c.Value, 'g', -1, 64), c.Type)
}

func (a *Access) Key() string {
	return fmt.Sprintf("acc(%s[%d,%d,%d]:%s)", a.Field, a.Offset[0], a.Offset[1], a.Offset[2], a.Type)
}

func (u *Unary) Key() string {
	return fmt.Sprintf("un(%s %s:%s)", u.Op.Symbol(), u.Operand, u.Type)
}

func (b *Binary) Key() string {
	return fmt.Sprintf("bin(%s %s %s:%s)", b.LHS, b.Op.Symbol(), b.RHS, b.Type)
}

func (s *Select) Key() string {
	return fmt.Sprintf("sel(%s ? %s : %s:%s)", s.Cond, s.Then, s.Else, s.Type)
}

func (x *AxisIndex) Key() string {
	return fmt.Sprintf("ndx(%s@%d,%d,%d)", x.Axis, x.Origin[0], x.Origin[1], x.Origin[2])
}

func (c *Constant) ResultType() string  { return c.Type }
func (a *Access) ResultType() string    { return a.Type }
func (u *Unary) ResultType() string     { return u.Type }
func (b *Binary) ResultType() string    { return b.Type }
func (s *Select) ResultType() string    { return s.Type }
func (x *AxisIndex) ResultType() string { return IndexType }

func (*Constant) Operands() []string  { return nil }
func (*Access) Operands() []string    { return nil }
func (u *Unary) Operands() []string   { return []string{u.Operand} }
func (b *Binary) Operands() []string  { return []string{b.LHS, b.RHS} }
func (s *Select) Operands() []string  { return []string{s.Cond, s.Then, s.Else} }
func (*AxisIndex) Operands() []string { return nil }

// typeTag is the one-letter suffix of arithmetic mnemonics: "f" for floats,
// "i" for integers and index values.
func typeTag(typ string) string {
	if typ == "" {
		return ""
	}
	return typ[:1]
}

func isIntegerType(typ string) bool {
	return typeTag(typ) == "i"
}

var arithmeticNames = map[ast.BinaryOperator]string{
	ast.ADD: "add",
	ast.SUB: "sub",
	ast.MUL: "mul",
	ast.DIV: "div",
}

var floatPredicates = map[ast.BinaryOperator]string{
	ast.EQ: "oeq",
	ast.NE: "one",
	ast.GT: "ogt",
	ast.LT: "olt",
	ast.GE: "oge",
	ast.LE: "ole",
}

var integerPredicates = map[ast.BinaryOperator]string{
	ast.EQ: "eq",
	ast.NE: "ne",
	ast.GT: "sgt",
	ast.LT: "slt",
	ast.GE: "sge",
	ast.LE: "sle",
}

// supportedBinary reports whether op has a lowering rule.
func supportedBinary(op ast.BinaryOperator) bool {
	if _, ok := arithmeticNames[op]; ok {
		return true
	}
	_, ok := floatPredicates[op]
	return ok
}

// predicate returns the comparator token for a relational operator on values of typ.
func predicate(op ast.BinaryOperator, typ string) (string, bool) {
	if isIntegerType(typ) {
		p, ok := integerPredicates[op]
		return p, ok
	}
	p, ok := floatPredicates[op]
	return p, ok
}

// formatImmediate renders integers and index values as decimals and floats
// in normalized scientific notation.
func formatImmediate(value float64, typ string) string {
	if isIntegerType(typ) {
		return strconv.FormatInt(int64(value), 10)
	}
	return fmt.Sprintf("%e", value)
}
