package ir

// This file provides the main entry points for lowering a stencil to
// stencil dialect text.

import (
	"github.com/eddie-c-davis/gt4py/internal/ast"
	"github.com/eddie-c-davis/gt4py/internal/config"
)

// BuildProgram lowers a stencil definition and verifies the result.
func BuildProgram(def *ast.StencilDefinition, opts config.Options) (*Program, error) {
	builder := NewBuilder(opts)
	program, err := builder.Build(def)
	if err != nil {
		return nil, err
	}

	if err := NewVerificationPipeline().Run(program); err != nil {
		return nil, err
	}
	return program, nil
}

// PrintProgram returns the stencil dialect text of a program.
func PrintProgram(program *Program, opts config.Options) string {
	return PrintIndented(program, opts.Indent)
}

// Emit lowers and prints a stencil in one step.
func Emit(def *ast.StencilDefinition, opts config.Options) (string, error) {
	program, err := BuildProgram(def, opts)
	if err != nil {
		return "", err
	}
	return PrintProgram(program, opts), nil
}
