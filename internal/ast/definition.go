package ast

// StencilDefinition is the root of a stencil tree.
// Example: "stencil lap(in_f: f64[IJK], out_f: f64[IJK]) { ... }"
type StencilDefinition struct {
	Pos          Position
	Name         string
	APIFields    []*FieldDecl // fields in the signature, in declaration order
	Temporaries  []*FieldDecl // fields local to the stencil
	Parameters   []*VarDecl
	Externals    map[string]float64
	Computations []*ComputationBlock
}

// Fields returns api fields followed by temporaries.
func (s *StencilDefinition) Fields() []*FieldDecl {
	fields := make([]*FieldDecl, 0, len(s.APIFields)+len(s.Temporaries))
	fields = append(fields, s.APIFields...)
	fields = append(fields, s.Temporaries...)
	return fields
}

// ShortName strips any qualifying prefix ("pkg.module.name" -> "name").
func (s *StencilDefinition) ShortName() string {
	for i := len(s.Name) - 1; i >= 0; i-- {
		if s.Name[i] == '.' {
			return s.Name[i+1:]
		}
	}
	return s.Name
}

// FieldDecl declares a field.
// Example: "in_field: f64[IJK]"
type FieldDecl struct {
	Pos      Position
	Name     string
	DataType DataType
	Axes     []Axis
	IsAPI    bool
}

// VarDecl declares a scalar parameter. Init is the default value, nil when absent.
// Example: "alpha: f64 = 0.5"
type VarDecl struct {
	Pos      Position
	Name     string
	DataType DataType
	Init     *float64
}

// AxisBound is a position on the sequential axis relative to START or END.
// Example: "START + 1", "END - 2"
type AxisBound struct {
	Pos    Position
	Level  LevelMarker
	Offset int
}

// AxisInterval is a half-open range along the sequential axis.
// Example: "interval(START + 1, END)"
type AxisInterval struct {
	Pos   Position
	Start *AxisBound
	End   *AxisBound
}

// FullInterval covers the whole sequential axis.
func FullInterval() *AxisInterval {
	return &AxisInterval{
		Start: &AxisBound{Level: START},
		End:   &AxisBound{Level: END},
	}
}

// ComputationBlock is one vertical region of the stencil.
// Example: "computation(FORWARD) interval(START, END) { ... }"
type ComputationBlock struct {
	Pos              Position
	IterationOrder   IterationOrder
	Interval         *AxisInterval
	ParallelInterval []*AxisInterval // optional horizontal restriction along I and J
	Body             *BlockStmt
}
