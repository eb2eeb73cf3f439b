package ast

import "fmt"

type NodeType int

const (
	// Special / error
	ILLEGAL NodeType = iota

	// Declarations
	FIELD_DECL
	VAR_DECL

	// Expressions
	SCALAR_LITERAL
	VAR_REF
	FIELD_REF
	UNARY_OP_EXPR
	BIN_OP_EXPR
	TERNARY_OP_EXPR

	// Statements
	ASSIGN
	AUG_ASSIGN
	IF_STMT
	BLOCK_STMT

	// Intervals and computations
	AXIS_BOUND
	AXIS_INTERVAL
	COMPUTATION_BLOCK
	STENCIL_DEFINITION
)

var nodeTypeNames = [...]string{
	ILLEGAL:            "ILLEGAL",
	FIELD_DECL:         "FieldDecl",
	VAR_DECL:           "VarDecl",
	SCALAR_LITERAL:     "ScalarLiteral",
	VAR_REF:            "VarRef",
	FIELD_REF:          "FieldRef",
	UNARY_OP_EXPR:      "UnaryOpExpr",
	BIN_OP_EXPR:        "BinOpExpr",
	TERNARY_OP_EXPR:    "TernaryOpExpr",
	ASSIGN:             "Assign",
	AUG_ASSIGN:         "AugAssign",
	IF_STMT:            "If",
	BLOCK_STMT:         "BlockStmt",
	AXIS_BOUND:         "AxisBound",
	AXIS_INTERVAL:      "AxisInterval",
	COMPUTATION_BLOCK:  "ComputationBlock",
	STENCIL_DEFINITION: "StencilDefinition",
}

func (t NodeType) String() string {
	if t >= 0 && int(t) < len(nodeTypeNames) && nodeTypeNames[t] != "" {
		return nodeTypeNames[t]
	}
	return fmt.Sprintf("NodeType(%d)", int(t))
}

// DataType is the element type of fields, parameters and literals.
type DataType int

const (
	INVALID DataType = iota
	AUTO
	BOOL
	INT8
	INT16
	INT32
	INT64
	FLOAT32
	FLOAT64
)

var dataTypeNames = map[DataType]string{
	INVALID: "invalid",
	AUTO:    "auto",
	BOOL:    "bool",
	INT8:    "i8",
	INT16:   "i16",
	INT32:   "i32",
	INT64:   "i64",
	FLOAT32: "f32",
	FLOAT64: "f64",
}

func (d DataType) String() string {
	if name, ok := dataTypeNames[d]; ok {
		return name
	}
	return fmt.Sprintf("DataType(%d)", int(d))
}

// ParseDataType maps the DSL spelling of an element type to a DataType.
func ParseDataType(name string) (DataType, bool) {
	for dt, n := range dataTypeNames {
		if n == name && dt != INVALID {
			return dt, true
		}
	}
	return INVALID, false
}

func (d DataType) IsFloat() bool { return d == FLOAT32 || d == FLOAT64 }

func (d DataType) IsInteger() bool { return d >= INT8 && d <= INT64 }

// Axis names one dimension of the cartesian domain.
type Axis int

const (
	I Axis = iota
	J
	K
)

// DomainAxes lists the cartesian axes in index order.
var DomainAxes = []Axis{I, J, K}

func (a Axis) String() string {
	switch a {
	case I:
		return "I"
	case J:
		return "J"
	case K:
		return "K"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// ParseAxis accepts a single axis letter.
func ParseAxis(r rune) (Axis, bool) {
	switch r {
	case 'I', 'i':
		return I, true
	case 'J', 'j':
		return J, true
	case 'K', 'k':
		return K, true
	}
	return 0, false
}

// LevelMarker anchors an AxisBound at the start or the end of the sequential axis.
type LevelMarker int

const (
	START LevelMarker = iota
	END
)

func (l LevelMarker) String() string {
	if l == END {
		return "END"
	}
	return "START"
}

type IterationOrder int

const (
	PARALLEL IterationOrder = iota
	FORWARD
	BACKWARD
)

func (o IterationOrder) String() string {
	switch o {
	case FORWARD:
		return "FORWARD"
	case BACKWARD:
		return "BACKWARD"
	}
	return "PARALLEL"
}

type UnaryOperator int

const (
	POS UnaryOperator = iota
	NEG
	NOT
)

func (op UnaryOperator) Symbol() string {
	switch op {
	case POS:
		return "+"
	case NEG:
		return "-"
	case NOT:
		return "not"
	}
	return "?"
}

type BinaryOperator int

const (
	ADD BinaryOperator = iota
	SUB
	MUL
	DIV
	MOD
	POW
	AND
	OR
	EQ
	NE
	LT
	LE
	GT
	GE
)

var binaryOperatorSymbols = map[BinaryOperator]string{
	ADD: "+",
	SUB: "-",
	MUL: "*",
	DIV: "/",
	MOD: "%",
	POW: "**",
	AND: "and",
	OR:  "or",
	EQ:  "==",
	NE:  "!=",
	LT:  "<",
	LE:  "<=",
	GT:  ">",
	GE:  ">=",
}

func (op BinaryOperator) Symbol() string {
	if s, ok := binaryOperatorSymbols[op]; ok {
		return s
	}
	return "?"
}

// ParseBinaryOperator maps an operator symbol to its BinaryOperator.
func ParseBinaryOperator(symbol string) (BinaryOperator, bool) {
	for op, s := range binaryOperatorSymbols {
		if s == symbol {
			return op, true
		}
	}
	return 0, false
}

// IsRelational reports whether op compares its operands.
func (op BinaryOperator) IsRelational() bool {
	switch op {
	case EQ, NE, LT, LE, GT, GE:
		return true
	}
	return false
}
