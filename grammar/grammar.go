package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

type File struct {
	Pos      lexer.Position
	Stencils []*Stencil `parser:"@@*"`
}

type Stencil struct {
	Pos          lexer.Position
	EndPos       lexer.Position
	Name         string         `parser:"\"stencil\" @Ident \"(\""`
	Fields       []*FieldParam  `parser:"[ @@ { \",\" @@ } ]"`
	Params       []*ScalarParam `parser:"[ \";\" @@ { \",\" @@ } ] \")\" \"{\""`
	Externals    []*External    `parser:"@@*"`
	Temps        []*Temp        `parser:"@@*"`
	Computations []*Computation `parser:"@@* \"}\""`
}

type FieldParam struct {
	Pos  lexer.Position
	Name string `parser:"@Ident \":\""`
	Type string `parser:"@Ident"`
	Axes string `parser:"\"[\" @Ident \"]\""`
}

type ScalarParam struct {
	Pos     lexer.Position
	Name    string  `parser:"@Ident \":\""`
	Type    string  `parser:"@Ident"`
	Default *Number `parser:"[ \"=\" @@ ]"`
}

type Number struct {
	Pos   lexer.Position
	Neg   bool    `parser:"@\"-\"?"`
	Float *string `parser:"(  @Float"`
	Int   *string `parser:"| @Int )"`
}

type External struct {
	Pos   lexer.Position
	Name  string  `parser:"\"external\" @Ident \"=\""`
	Value *Number `parser:"@@ \";\""`
}

type Temp struct {
	Pos   lexer.Position
	Field *FieldParam `parser:"\"temp\" @@ \";\""`
}

type Computation struct {
	Pos      lexer.Position
	Order    string    `parser:"\"computation\" \"(\" @(\"PARALLEL\" | \"FORWARD\" | \"BACKWARD\") \")\""`
	Interval *Interval `parser:"@@?"`
	Body     *Block    `parser:"@@"`
}

type Interval struct {
	Pos   lexer.Position
	Start *Bound `parser:"\"interval\" \"(\" @@ \",\""`
	End   *Bound `parser:"@@ \")\""`
}

type Bound struct {
	Pos    lexer.Position
	Level  string `parser:"@(\"START\" | \"END\")"`
	Sign   string `parser:"[ @(\"+\" | \"-\")"`
	Offset int    `parser:"  @Int ]"`
}

type Block struct {
	Pos   lexer.Position
	Stmts []*Statement `parser:"\"{\" @@* \"}\""`
}

type Statement struct {
	Pos    lexer.Position
	If     *IfStmt     `parser:"  @@"`
	Assign *AssignStmt `parser:"| @@"`
}

type IfStmt struct {
	Pos  lexer.Position
	Cond *Expr  `parser:"\"if\" \"(\" @@ \")\""`
	Then *Block `parser:"@@"`
	Else *Block `parser:"[ \"else\" @@ ]"`
}

type AssignStmt struct {
	Pos    lexer.Position
	Target *FieldAccess `parser:"@@"`
	Op     string       `parser:"@(\"=\" | \"+=\" | \"-=\" | \"*=\" | \"/=\")"`
	Value  *Expr        `parser:"@@ \";\""`
}

type FieldAccess struct {
	Pos     lexer.Position
	Name    string    `parser:"@Ident"`
	Offsets []*Offset `parser:"[ \"[\" @@ { \",\" @@ } \"]\" ]"`
}

type Offset struct {
	Neg   bool `parser:"@\"-\"?"`
	Value int  `parser:"@Int"`
}

// Expression precedence, loosest first: ternary, logical, comparison,
// additive, multiplicative, power, unary.

type Expr struct {
	Pos  lexer.Position
	Cond *Logical `parser:"@@"`
	Then *Expr    `parser:"[ \"?\" @@"`
	Else *Expr    `parser:"  \":\" @@ ]"`
}

type Logical struct {
	Left *Comparison `parser:"@@"`
	Rest []*LogicOp  `parser:"@@*"`
}

type LogicOp struct {
	Pos   lexer.Position
	Op    string      `parser:"@(\"&&\" | \"||\")"`
	Right *Comparison `parser:"@@"`
}

type Comparison struct {
	Pos   lexer.Position
	Left  *Additive `parser:"@@"`
	Op    string    `parser:"[ @(\"==\" | \"!=\" | \"<=\" | \">=\" | \"<\" | \">\")"`
	Right *Additive `parser:"  @@ ]"`
}

type Additive struct {
	Left *Multiplicative `parser:"@@"`
	Rest []*AddOp        `parser:"@@*"`
}

type AddOp struct {
	Pos   lexer.Position
	Op    string          `parser:"@(\"+\" | \"-\")"`
	Right *Multiplicative `parser:"@@"`
}

type Multiplicative struct {
	Left *Power   `parser:"@@"`
	Rest []*MulOp `parser:"@@*"`
}

type MulOp struct {
	Pos   lexer.Position
	Op    string `parser:"@(\"*\" | \"/\" | \"%\")"`
	Right *Power `parser:"@@"`
}

type Power struct {
	Pos      lexer.Position
	Base     *Unary `parser:"@@"`
	Exponent *Unary `parser:"[ \"**\" @@ ]"`
}

type Unary struct {
	Pos     lexer.Position
	Op      string   `parser:"(  @(\"-\" | \"+\" | \"!\")"`
	Operand *Unary   `parser:"   @@ )"`
	Value   *Primary `parser:"| @@"`
}

type Primary struct {
	Pos    lexer.Position
	Float  *string      `parser:"  @Float"`
	Int    *string      `parser:"| @Int"`
	Access *FieldAccess `parser:"| @@"`
	Parens *Expr        `parser:"| \"(\" @@ \")\""`
}
