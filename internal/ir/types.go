package ir

// Program is one lowered stencil: a function over its api fields made of
// asserts, loads, one apply region per assignment and stores.
type Program struct {
	Name      string
	Signature []*FieldArg
	Asserts   []*Assert
	Loads     []*Load
	Applies   []*Apply
	Stores    []*Store
}

// FieldArg is a function argument bound to an api field.
type FieldArg struct {
	Field string
	Type  string // !stencil.field<...>
}

// Name is the SSA name of the argument, "<field>_fd".
func (a *FieldArg) Name() string { return a.Field + "_fd" }

// Assert declares the index bounds of an api field including its halo.
type Assert struct {
	Field string
	Lower [3]int
	Upper [3]int
	Type  string
}

// Load reads an api field into a temporary value.
type Load struct {
	Result    string
	Field     string
	FieldType string
	TempType  string
}

// ApplyArg binds a temporary value to a region argument.
type ApplyArg struct {
	Index int
	Value string
	Type  string
}

// Apply is the region computing one assignment.
type Apply struct {
	Result   string
	Target   string
	Args     []*ApplyArg
	TempType string
	Body     []Instruction
}

// Store writes a temporary value back to an api field.
type Store struct {
	Value     string
	Field     string
	Origin    [3]int
	Extent    [3]int
	TempType  string
	FieldType string
}

// Instruction is one line (or nested block) of an apply region.
type Instruction interface {
	// Result is the defined id, empty for terminators.
	Result() string
	Uses() []string
	isInstruction()
}

// OpInstruction defines ID as the value of Op.
type OpInstruction struct {
	ID string
	Op Operation
}

// IfInstruction masks a value with a guard:
// then yields the value computed by Then, else yields ElseValue.
type IfInstruction struct {
	ID        string
	Cond      string
	Type      string
	Then      []Instruction
	ThenValue string
	ThenType  string
	ElseValue string
	ElseType  string
}

// ReturnInstruction terminates an apply region.
type ReturnInstruction struct {
	Value string
	Type  string
}

func (i *OpInstruction) Result() string     { return i.ID }
func (i *IfInstruction) Result() string     { return i.ID }
func (i *ReturnInstruction) Result() string { return "" }

func (i *OpInstruction) Uses() []string { return i.Op.Operands() }
func (i *IfInstruction) Uses() []string {
	return []string{i.Cond, i.ThenValue, i.ElseValue}
}
func (i *ReturnInstruction) Uses() []string { return []string{i.Value} }

func (*OpInstruction) isInstruction()     {}
func (*IfInstruction) isInstruction()     {}
func (*ReturnInstruction) isInstruction() {}

// resultType returns the type of the value an instruction defines.
func resultType(inst Instruction) string {
	switch i := inst.(type) {
	case *OpInstruction:
		return i.Op.ResultType()
	case *IfInstruction:
		return i.Type
	}
	return ""
}
