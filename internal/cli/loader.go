package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/eddie-c-davis/gt4py/grammar"
	"github.com/eddie-c-davis/gt4py/internal/ast"
	"github.com/eddie-c-davis/gt4py/internal/config"
	"github.com/eddie-c-davis/gt4py/internal/errors"
	"github.com/eddie-c-davis/gt4py/internal/ir"
	"github.com/eddie-c-davis/gt4py/internal/semantic"
)

// Unit is one checked stencil of a source file.
type Unit struct {
	Def      *ast.StencilDefinition
	Analysis *semantic.Analysis
}

// Loader parses and checks stencil files, printing diagnostics as it goes.
type Loader struct {
	ErrWriter io.Writer
	// Stencil restricts loading to one stencil by full or short name.
	Stencil string

	reporter *errors.ErrorReporter
}

// Load parses path and analyzes every selected stencil. Every stencil is
// checked before the first failure is returned.
func (l *Loader) Load(path string) ([]*Unit, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "reading source", err)
	}
	l.reporter = errors.NewErrorReporter(path, string(source))

	defs, err := grammar.Parse(path, string(source))
	if err != nil {
		fmt.Fprint(l.ErrWriter, l.reporter.FormatAll(err))
		return nil, NewExitError(ExitFailure, fmt.Sprintf("cannot parse %s", path))
	}

	var units []*Unit
	failed := false
	for _, def := range defs {
		if l.Stencil != "" && def.Name != l.Stencil && def.ShortName() != l.Stencil {
			continue
		}

		analysis := semantic.Analyze(def)
		for _, w := range analysis.Warnings() {
			fmt.Fprint(l.ErrWriter, l.reporter.FormatError(w))
		}
		if err := analysis.Err(); err != nil {
			fmt.Fprint(l.ErrWriter, l.reporter.FormatAll(err))
			failed = true
			continue
		}
		units = append(units, &Unit{Def: def, Analysis: analysis})
	}

	if failed {
		return nil, NewExitError(ExitFailure, fmt.Sprintf("%s has errors", path))
	}
	if len(units) == 0 {
		if l.Stencil != "" {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("no stencil named %q in %s", l.Stencil, path))
		}
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("no stencil in %s", path))
	}
	return units, nil
}

// Emit lowers a loaded unit, reporting lowering errors against its source.
func (l *Loader) Emit(unit *Unit, opts config.Options) (string, error) {
	text, err := ir.Emit(unit.Def, opts)
	if err != nil {
		fmt.Fprint(l.ErrWriter, l.reporter.FormatAll(err))
		return "", NewExitError(ExitFailure, fmt.Sprintf("cannot lower stencil %s", unit.Def.ShortName()))
	}
	return text, nil
}
