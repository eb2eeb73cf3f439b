package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eddie-c-davis/gt4py/internal/ast"
	"github.com/eddie-c-davis/gt4py/internal/errors"
)

func constant(id string, value float64) Instruction {
	return &OpInstruction{ID: id, Op: &Constant{Value: value, Type: "f64"}}
}

func add(id, lhs, rhs string) Instruction {
	return &OpInstruction{ID: id, Op: &Binary{Op: ast.ADD, LHS: lhs, RHS: rhs, Type: "f64"}}
}

func ret(value string) Instruction {
	return &ReturnInstruction{Value: value, Type: "f64"}
}

func programWith(applies ...*Apply) *Program {
	return &Program{
		Name:      "verify",
		Signature: []*FieldArg{{Field: "a"}, {Field: "out"}},
		Loads:     []*Load{{Result: "a", Field: "a"}},
		Applies:   applies,
		Stores:    []*Store{{Value: applies[len(applies)-1].Result, Field: "out"}},
	}
}

func TestVerificationPasses(t *testing.T) {
	tests := []struct {
		name    string
		pass    VerificationPass
		program *Program
		valid   bool
	}{
		{
			name:    "single definition",
			pass:    &SingleDefinition{},
			program: programWith(&Apply{Result: "out", Body: []Instruction{constant("cst0", 1), ret("cst0")}}),
			valid:   true,
		},
		{
			name: "redefined region value",
			pass: &SingleDefinition{},
			program: programWith(&Apply{Result: "out", Body: []Instruction{
				constant("cst0", 1), constant("cst0", 2), ret("cst0"),
			}}),
		},
		{
			name: "redefined apply result",
			pass: &SingleDefinition{},
			program: programWith(
				&Apply{Result: "a", Body: []Instruction{constant("cst0", 1), ret("cst0")}},
			),
		},
		{
			name: "ids may repeat across regions",
			pass: &SingleDefinition{},
			program: programWith(
				&Apply{Result: "out", Body: []Instruction{constant("cst0", 1), ret("cst0")}},
				&Apply{Result: "out_0", Body: []Instruction{constant("cst0", 1), ret("cst0")}},
			),
			valid: true,
		},
		{
			name: "use before definition",
			pass: &DefinedBeforeUse{},
			program: programWith(&Apply{Result: "out", Body: []Instruction{
				add("exp0", "cst0", "cst0"), constant("cst0", 1), ret("exp0"),
			}}),
		},
		{
			name: "unbound argument",
			pass: &DefinedBeforeUse{},
			program: programWith(&Apply{
				Result: "out",
				Args:   []*ApplyArg{{Index: 1, Value: "b"}},
				Body:   []Instruction{constant("cst0", 1), ret("cst0")},
			}),
		},
		{
			name: "guarded value",
			pass: &DefinedBeforeUse{},
			program: programWith(&Apply{Result: "out", Body: []Instruction{
				&OpInstruction{ID: "ndx0", Op: &AxisIndex{Axis: ast.K}},
				&OpInstruction{ID: "cst0", Op: &Constant{Value: 1, Type: IndexType}},
				&OpInstruction{ID: "exp0", Op: &Binary{Op: ast.GE, LHS: "ndx0", RHS: "cst0", Type: IndexType}},
				constant("cst1", 2),
				&IfInstruction{
					ID: "exp2", Cond: "exp0", Type: "f64",
					Then:      []Instruction{add("exp1", "cst1", "cst1")},
					ThenValue: "exp1", ThenType: "f64",
					ElseValue: "cst1", ElseType: "f64",
				},
				ret("exp2"),
			}}),
			valid: true,
		},
		{
			name: "then value escapes its region",
			pass: &DefinedBeforeUse{},
			program: programWith(&Apply{Result: "out", Body: []Instruction{
				constant("cst0", 1),
				&IfInstruction{
					ID: "exp1", Cond: "cst0", Type: "f64",
					Then:      []Instruction{add("exp0", "cst0", "cst0")},
					ThenValue: "exp0", ThenType: "f64",
					ElseValue: "cst0", ElseType: "f64",
				},
				ret("exp0"),
			}}),
		},
		{
			name: "else branch yields another type",
			pass: &YieldTypes{},
			program: programWith(&Apply{Result: "out", Body: []Instruction{
				&OpInstruction{ID: "ndx0", Op: &AxisIndex{Axis: ast.K}},
				&OpInstruction{ID: "cst0", Op: &Constant{Value: 1, Type: IndexType}},
				&IfInstruction{
					ID: "exp1", Cond: "ndx0", Type: "f64",
					Then:      []Instruction{constant("cst1", 2)},
					ThenValue: "cst1", ThenType: "f64",
					ElseValue: "cst0", ElseType: IndexType,
				},
				ret("exp1"),
			}}),
		},
		{
			name: "matching branch types",
			pass: &YieldTypes{},
			program: programWith(&Apply{Result: "out", Body: []Instruction{
				constant("cst0", 1),
				&IfInstruction{
					ID: "exp1", Cond: "cst0", Type: "f64",
					Then:      []Instruction{add("exp0", "cst0", "cst0")},
					ThenValue: "exp0", ThenType: "f64",
					ElseValue: "cst0", ElseType: "f64",
				},
				ret("exp1"),
			}}),
			valid: true,
		},
		{
			name:    "missing terminator",
			pass:    &RegionTerminators{},
			program: programWith(&Apply{Result: "out", Body: []Instruction{constant("cst0", 1)}}),
		},
		{
			name: "terminator not last",
			pass: &RegionTerminators{},
			program: programWith(&Apply{Result: "out", Body: []Instruction{
				ret("cst0"), constant("cst0", 1),
			}}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.pass.Check(tt.program)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrorStructuralInvariant))
		})
	}
}

func TestVerificationPipeline(t *testing.T) {
	pipeline := NewVerificationPipeline()
	require.Len(t, pipeline.passes, 4)

	valid := programWith(&Apply{Result: "out", Body: []Instruction{constant("cst0", 1), ret("cst0")}})
	assert.NoError(t, pipeline.Run(valid))

	broken := programWith(&Apply{Result: "out", Body: []Instruction{add("exp0", "cst0", "cst0")}})
	err := pipeline.Run(broken)
	require.Error(t, err)

	joined, ok := err.(interface{ Unwrap() []error })
	require.True(t, ok)
	assert.Len(t, joined.Unwrap(), 2, "every failing pass is reported")
}
