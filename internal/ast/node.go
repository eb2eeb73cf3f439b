package ast

// Node is implemented by every stencil tree node. The set of implementations is
// closed: the unexported marker methods keep other packages from adding kinds.
type Node interface {
	NodePos() Position
	NodeType() NodeType
	String() string
}

// Position tracks location information for error reporting and tooling
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

func (f *FieldDecl) NodePos() Position { return f.Pos }
func (*FieldDecl) NodeType() NodeType  { return FIELD_DECL }

func (v *VarDecl) NodePos() Position { return v.Pos }
func (*VarDecl) NodeType() NodeType  { return VAR_DECL }

func (s *ScalarLiteral) NodePos() Position { return s.Pos }
func (*ScalarLiteral) NodeType() NodeType  { return SCALAR_LITERAL }

func (v *VarRef) NodePos() Position { return v.Pos }
func (*VarRef) NodeType() NodeType  { return VAR_REF }

func (f *FieldRef) NodePos() Position { return f.Pos }
func (*FieldRef) NodeType() NodeType  { return FIELD_REF }

func (u *UnaryOpExpr) NodePos() Position { return u.Pos }
func (*UnaryOpExpr) NodeType() NodeType  { return UNARY_OP_EXPR }

func (b *BinOpExpr) NodePos() Position { return b.Pos }
func (*BinOpExpr) NodeType() NodeType  { return BIN_OP_EXPR }

func (t *TernaryOpExpr) NodePos() Position { return t.Pos }
func (*TernaryOpExpr) NodeType() NodeType  { return TERNARY_OP_EXPR }

func (a *Assign) NodePos() Position { return a.Pos }
func (*Assign) NodeType() NodeType  { return ASSIGN }

func (a *AugAssign) NodePos() Position { return a.Pos }
func (*AugAssign) NodeType() NodeType  { return AUG_ASSIGN }

func (i *If) NodePos() Position { return i.Pos }
func (*If) NodeType() NodeType  { return IF_STMT }

func (b *BlockStmt) NodePos() Position { return b.Pos }
func (*BlockStmt) NodeType() NodeType  { return BLOCK_STMT }

func (a *AxisBound) NodePos() Position { return a.Pos }
func (*AxisBound) NodeType() NodeType  { return AXIS_BOUND }

func (a *AxisInterval) NodePos() Position { return a.Pos }
func (*AxisInterval) NodeType() NodeType  { return AXIS_INTERVAL }

func (c *ComputationBlock) NodePos() Position { return c.Pos }
func (*ComputationBlock) NodeType() NodeType  { return COMPUTATION_BLOCK }

func (s *StencilDefinition) NodePos() Position { return s.Pos }
func (*StencilDefinition) NodeType() NodeType  { return STENCIL_DEFINITION }
