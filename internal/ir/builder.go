package ir

import (
	stderrors "errors"
	"fmt"

	"github.com/eddie-c-davis/gt4py/internal/ast"
	"github.com/eddie-c-davis/gt4py/internal/config"
	"github.com/eddie-c-davis/gt4py/internal/errors"
	"github.com/eddie-c-davis/gt4py/internal/semantic"
)

// Builder converts a stencil definition into a Program. A Builder carries
// the state of one build; use a fresh Builder per stencil.
type Builder struct {
	opts    config.Options
	program *Program
	session *Session
	fields  *semantic.FieldTable

	// latest is the SSA name holding the current value of each field.
	latest map[string]string
	// writes counts suffixed writes per field.
	writes map[string]int
}

// NewBuilder creates a new IR builder
func NewBuilder(opts config.Options) *Builder {
	return &Builder{
		opts:   opts,
		latest: make(map[string]string),
		writes: make(map[string]int),
	}
}

// Build lowers a stencil definition. Any error aborts the whole build and no
// partial program is returned.
func (b *Builder) Build(def *ast.StencilDefinition) (*Program, error) {
	if def == nil {
		return nil, errors.InvariantViolation("no stencil definition")
	}
	if err := b.opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	fields := semantic.CollectFields(def)
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	b.fields = fields
	b.session = NewSession(fields, semantic.BuildSymbolTable(def), b.opts.FieldSize)
	b.program = &Program{Name: def.ShortName()}

	b.buildSignature()
	b.buildLoads()

	for _, comp := range def.Computations {
		statements, err := b.session.LowerComputation(comp)
		if err != nil {
			return nil, err
		}
		for _, stmt := range statements {
			apply, err := b.buildApply(stmt)
			if err != nil {
				return nil, err
			}
			b.program.Applies = append(b.program.Applies, apply)
		}
	}

	if err := b.buildStores(); err != nil {
		return nil, err
	}

	log.Infof("lowered stencil %s: %d apply regions", b.program.Name, len(b.program.Applies))
	return b.program, nil
}

// Session exposes the lowering session of the last build.
func (b *Builder) Session() *Session {
	return b.session
}

// Fields exposes the field table of the last build.
func (b *Builder) Fields() *semantic.FieldTable {
	return b.fields
}

func (b *Builder) buildSignature() {
	h, extent := b.opts.HaloSize, b.opts.Extent()
	for _, f := range b.fields.APIFields() {
		b.program.Signature = append(b.program.Signature, &FieldArg{Field: f.Name, Type: f.FieldType()})
		b.program.Asserts = append(b.program.Asserts, &Assert{
			Field: f.Name,
			Lower: [3]int{-h, -h, -h},
			Upper: [3]int{extent, extent, extent},
			Type:  f.FieldType(),
		})
	}
}

func (b *Builder) buildLoads() {
	for _, f := range b.fields.APIFields() {
		if !f.Intent.Reads() {
			continue
		}
		b.program.Loads = append(b.program.Loads, &Load{
			Result:    f.Name,
			Field:     f.Name,
			FieldType: f.FieldType(),
			TempType:  f.TempType(),
		})
		b.latest[f.Name] = f.Name
	}
}

// buildApply binds the statement inputs to their current values and names
// the result after the target field.
func (b *Builder) buildApply(stmt *Statement) (*Apply, error) {
	target := b.fields.Lookup(stmt.Target)
	if target == nil {
		return nil, errors.UnresolvedSymbol("field", stmt.Target, stmt.Pos, b.fields.Names())
	}

	apply := &Apply{
		Target:   stmt.Target,
		TempType: target.TempType(),
		Body:     stmt.Body,
	}

	var errs []error
	for _, name := range stmt.Inputs {
		value, ok := b.latest[name]
		if !ok {
			errs = append(errs, errors.UndefinedValue(name, stmt.ReadPos[name]))
			continue
		}
		apply.Args = append(apply.Args, &ApplyArg{
			Index: stmt.Args[name],
			Value: value,
			Type:  b.fields.Lookup(name).TempType(),
		})
	}
	if err := stderrors.Join(errs...); err != nil {
		return nil, err
	}

	apply.Result = b.nextName(stmt.Target)
	b.latest[stmt.Target] = apply.Result
	return apply, nil
}

// nextName returns the SSA name of a new write to field: the bare name for
// the first value, "<field>_<n>" afterwards. Suffixed names that spell a
// declared field are skipped.
func (b *Builder) nextName(field string) string {
	if _, defined := b.latest[field]; !defined {
		return field
	}
	for {
		n := b.writes[field]
		b.writes[field]++
		name := fmt.Sprintf("%s_%d", field, n)
		if b.fields.Lookup(name) == nil {
			return name
		}
	}
}

func (b *Builder) buildStores() error {
	size := b.opts.FieldSize
	for _, f := range b.fields.APIFields() {
		if !f.Intent.Writes() {
			continue
		}
		value, ok := b.latest[f.Name]
		if !ok {
			return errors.InvariantViolation("output field '%s' has no value to store", f.Name)
		}
		b.program.Stores = append(b.program.Stores, &Store{
			Value:     value,
			Field:     f.Name,
			Extent:    [3]int{size, size, size},
			TempType:  f.TempType(),
			FieldType: f.FieldType(),
		})
	}
	return nil
}
