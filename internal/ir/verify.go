package ir

import (
	stderrors "errors"

	"github.com/eddie-c-davis/gt4py/internal/errors"
)

// VerificationPass checks one structural property of a lowered program.
type VerificationPass interface {
	Name() string
	Check(program *Program) error
	Description() string
}

// VerificationPipeline manages the sequence of verification passes
type VerificationPipeline struct {
	passes []VerificationPass
}

// NewVerificationPipeline creates a pipeline with the default passes
func NewVerificationPipeline() *VerificationPipeline {
	pipeline := &VerificationPipeline{}

	pipeline.AddPass(&SingleDefinition{})
	pipeline.AddPass(&DefinedBeforeUse{})
	pipeline.AddPass(&RegionTerminators{})
	pipeline.AddPass(&YieldTypes{})

	return pipeline
}

// AddPass adds a verification pass to the pipeline
func (p *VerificationPipeline) AddPass(pass VerificationPass) {
	p.passes = append(p.passes, pass)
}

// Run executes every pass and joins their failures.
func (p *VerificationPipeline) Run(program *Program) error {
	var errs []error
	for _, pass := range p.passes {
		log.Debugf("verify %s: %s", pass.Name(), pass.Description())
		if err := pass.Check(program); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// SingleDefinition checks that every SSA name is defined at most once per
// function and once per region.
type SingleDefinition struct{}

func (sd *SingleDefinition) Name() string {
	return "single-definition"
}

func (sd *SingleDefinition) Description() string {
	return "every value is defined at most once"
}

func (sd *SingleDefinition) Check(program *Program) error {
	defined := make(map[string]bool)
	define := func(name string) error {
		if defined[name] {
			return errors.InvariantViolation("%%%s is defined more than once", name)
		}
		defined[name] = true
		return nil
	}

	for _, arg := range program.Signature {
		if err := define(arg.Name()); err != nil {
			return err
		}
	}
	for _, l := range program.Loads {
		if err := define(l.Result); err != nil {
			return err
		}
	}
	for _, apply := range program.Applies {
		if err := define(apply.Result); err != nil {
			return err
		}
		local := make(map[string]bool)
		var walk func(body []Instruction) error
		walk = func(body []Instruction) error {
			for _, inst := range body {
				if id := inst.Result(); id != "" {
					if local[id] {
						return errors.InvariantViolation("%%%s is defined more than once in %%%s", id, apply.Result)
					}
					local[id] = true
				}
				if i, ok := inst.(*IfInstruction); ok {
					if err := walk(i.Then); err != nil {
						return err
					}
				}
			}
			return nil
		}
		if err := walk(apply.Body); err != nil {
			return err
		}
	}
	return nil
}

// DefinedBeforeUse checks that operands are defined by an earlier
// instruction of the same region and that apply arguments name live values.
type DefinedBeforeUse struct{}

func (d *DefinedBeforeUse) Name() string {
	return "defined-before-use"
}

func (d *DefinedBeforeUse) Description() string {
	return "every operand is defined before it is used"
}

func (d *DefinedBeforeUse) Check(program *Program) error {
	live := make(map[string]bool)
	for _, l := range program.Loads {
		live[l.Result] = true
	}

	for _, apply := range program.Applies {
		for _, arg := range apply.Args {
			if !live[arg.Value] {
				return errors.InvariantViolation("%%%s binds undefined value %%%s", apply.Result, arg.Value)
			}
		}
		if err := checkRegion(apply.Body, make(map[string]bool)); err != nil {
			return err
		}
		live[apply.Result] = true
	}

	for _, s := range program.Stores {
		if !live[s.Value] {
			return errors.InvariantViolation("store to %%%s_fd reads undefined value %%%s", s.Field, s.Value)
		}
	}
	return nil
}

func checkRegion(body []Instruction, defined map[string]bool) error {
	for _, inst := range body {
		if i, ok := inst.(*IfInstruction); ok {
			inner := make(map[string]bool, len(defined))
			for k := range defined {
				inner[k] = true
			}
			if err := checkRegion(i.Then, inner); err != nil {
				return err
			}
			if !defined[i.Cond] {
				return errors.InvariantViolation("%%%s is used before it is defined", i.Cond)
			}
			if !inner[i.ThenValue] {
				return errors.InvariantViolation("%%%s is yielded before it is defined", i.ThenValue)
			}
			if !defined[i.ElseValue] {
				return errors.InvariantViolation("%%%s is yielded before it is defined", i.ElseValue)
			}
		} else {
			for _, use := range inst.Uses() {
				if !defined[use] {
					return errors.InvariantViolation("%%%s is used before it is defined", use)
				}
			}
		}
		if id := inst.Result(); id != "" {
			defined[id] = true
		}
	}
	return nil
}

// RegionTerminators checks that every apply region ends with exactly one return.
type RegionTerminators struct{}

func (r *RegionTerminators) Name() string {
	return "region-terminators"
}

func (r *RegionTerminators) Description() string {
	return "every apply region ends with stencil.return"
}

func (r *RegionTerminators) Check(program *Program) error {
	for _, apply := range program.Applies {
		returns := 0
		for _, inst := range apply.Body {
			if _, ok := inst.(*ReturnInstruction); ok {
				returns++
			}
		}
		n := len(apply.Body)
		if n == 0 || returns != 1 {
			return errors.InvariantViolation("%%%s must end with exactly one stencil.return", apply.Result)
		}
		if _, ok := apply.Body[n-1].(*ReturnInstruction); !ok {
			return errors.InvariantViolation("%%%s must end with exactly one stencil.return", apply.Result)
		}
	}
	return nil
}

// YieldTypes checks that both branches of a guard yield the guard's type.
type YieldTypes struct{}

func (y *YieldTypes) Name() string {
	return "yield-types"
}

func (y *YieldTypes) Description() string {
	return "scf.if branches yield the result type"
}

func (y *YieldTypes) Check(program *Program) error {
	for _, apply := range program.Applies {
		for _, inst := range apply.Body {
			i, ok := inst.(*IfInstruction)
			if !ok {
				continue
			}
			if i.ThenType != i.Type || i.ElseType != i.Type {
				return errors.InvariantViolation("%%%s in %%%s yields %s and %s for result type %s",
					i.ID, apply.Result, i.ThenType, i.ElseType, i.Type)
			}
		}
	}
	return nil
}
