package ast

type Stmt interface {
	Node
	isStmt()
}

func (*Assign) isStmt()    {}
func (*AugAssign) isStmt() {}
func (*If) isStmt()        {}
func (*BlockStmt) isStmt() {}

// Assign writes the value of an expression to a field.
// Example: "out_field = a + b;"
type Assign struct {
	Pos    Position
	Target *FieldRef
	Value  Expr
}

// AugAssign is a compound assignment.
// Example: "out_field += a;"
type AugAssign struct {
	Pos    Position
	Target *FieldRef
	Op     BinaryOperator
	Value  Expr
}

// If is a conditional statement.
// Example: "if (a > 0.0) { b = a; } else { b = 0.0; }"
type If struct {
	Pos       Position
	Condition Expr
	MainBody  *BlockStmt
	ElseBody  *BlockStmt // nil without else
}

// BlockStmt is an ordered statement list.
type BlockStmt struct {
	Pos   Position
	Stmts []Stmt
}
