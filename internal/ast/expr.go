package ast

type Expr interface {
	Node
	isExpr()
}

func (*ScalarLiteral) isExpr() {}

func (*VarRef) isExpr() {}

func (*FieldRef) isExpr() {}

func (*UnaryOpExpr) isExpr() {}

func (*BinOpExpr) isExpr() {}

func (*TernaryOpExpr) isExpr() {}

// ScalarLiteral is a numeric constant.
// Example: "2", "0.5", "1e-3"
type ScalarLiteral struct {
	Pos      Position
	Value    float64
	DataType DataType
}

// VarRef names a scalar parameter or an external.
// Example: "alpha"
type VarRef struct {
	Pos  Position
	Name string
}

// FieldRef reads or writes a field at a relative offset. Axes missing from
// Offset are at offset zero.
// Example: "in_field[1, 0, -1]"
type FieldRef struct {
	Pos    Position
	Name   string
	Offset map[Axis]int
}

// OffsetOf returns the offset along axis, zero when absent.
func (f *FieldRef) OffsetOf(axis Axis) int {
	if f.Offset == nil {
		return 0
	}
	return f.Offset[axis]
}

// UnaryOpExpr applies a prefix operator.
// Example: "-a"
type UnaryOpExpr struct {
	Pos Position
	Op  UnaryOperator
	Arg Expr
}

// BinOpExpr applies an infix operator.
// Example: "a + b", "a > 0.0", "x ** 2"
type BinOpExpr struct {
	Pos Position
	Op  BinaryOperator
	LHS Expr
	RHS Expr
}

// TernaryOpExpr selects between two values.
// Example: "a > b ? a : b"
type TernaryOpExpr struct {
	Pos       Position
	Condition Expr
	ThenExpr  Expr
	ElseExpr  Expr
}

// NewFieldRef is a convenience constructor for an access at the given i, j, k offset.
func NewFieldRef(name string, i, j, k int) *FieldRef {
	return &FieldRef{Name: name, Offset: map[Axis]int{I: i, J: j, K: k}}
}

// NewLiteral returns a FLOAT64 literal.
func NewLiteral(value float64) *ScalarLiteral {
	return &ScalarLiteral{Value: value, DataType: FLOAT64}
}
