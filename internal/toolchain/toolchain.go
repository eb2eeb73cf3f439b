// Package toolchain drives the external compilers that turn stencil dialect
// text into a native binary.
package toolchain

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/tliron/commonlog"

	"github.com/eddie-c-davis/gt4py/internal/config"
	"github.com/eddie-c-davis/gt4py/internal/errors"
	"github.com/eddie-c-davis/gt4py/internal/sink"
)

var log = commonlog.GetLogger("stencil.toolchain")

// Stage is one step of the build.
type Stage struct {
	// Label prefixes failures of the stage, e.g. "OEC-ERROR".
	Label   string
	Command Command
	// Capture receives the standard output of the command when set.
	Capture string
	Output  string
}

// StageRecord is the manifest entry of a completed stage.
type StageRecord struct {
	Tool    string `yaml:"tool"`
	Command string `yaml:"command"`
	Output  string `yaml:"output"`
}

// Result describes the files of one build.
type Result struct {
	Stencil string
	Dir     string
	Source  string
	Stages  []StageRecord
	Binary  string
}

// Toolchain runs the build stages of one configuration.
type Toolchain struct {
	opts   config.Options
	runner Runner
}

// New returns a toolchain running commands through runner, or as child
// processes when runner is nil.
func New(opts config.Options, runner Runner) *Toolchain {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Toolchain{opts: opts, runner: runner}
}

// Stages lays out the build of stencil name inside dir. The emitted text is
// read from <dir>/<name>.mlir.
func (tc *Toolchain) Stages(name, dir string) []Stage {
	tools := tc.opts.Tools
	level := tc.opts.OptLevel()

	source := filepath.Join(dir, name+".mlir")
	lowered := filepath.Join(dir, name+"_lower.mlir")
	translated := filepath.Join(dir, name+"_llvm.mlir")
	assembly := filepath.Join(dir, name+"_llvm.s")
	object := filepath.Join(dir, name+"_llvm.o")
	binary := filepath.Join(dir, name)

	link := []string{level, object, tools.Wrapper, "-o", binary}
	if tc.opts.Pipeline.CUDA {
		if path := tc.opts.Pipeline.CUDAPath; path != "" {
			link = append(link, "-I"+filepath.Join(path, "include"), "-L"+filepath.Join(path, "lib"))
		}
		link = append(link, "-lcudart", "-lcuda")
	}

	return []Stage{
		{
			Label:   "OEC-ERROR",
			Command: Command{Name: tools.Opt, Args: append(OptPasses(tc.opts.Pipeline), source), Dir: dir},
			Capture: lowered,
			Output:  lowered,
		},
		{
			Label:   "MLIR-ERROR",
			Command: Command{Name: tools.Translate, Args: []string{"--mlir-to-llvmir", lowered}, Dir: dir},
			Capture: translated,
			Output:  translated,
		},
		{
			Label:   "LLVM-ERROR",
			Command: Command{Name: tools.Compile, Args: []string{level, translated, "-o", assembly}, Dir: dir},
			Output:  assembly,
		},
		{
			Label:   "CLANG-ERROR",
			Command: Command{Name: tools.Clang, Args: []string{"-c", level, assembly, "-o", object}, Dir: dir},
			Output:  object,
		},
		{
			Label:   "CLANG-ERROR",
			Command: Command{Name: tools.Clang, Args: link, Dir: dir},
			Output:  binary,
		},
	}
}

// Compile writes text to dir and runs every stage in order. The first stage
// that fails stops the build.
func (tc *Toolchain) Compile(ctx context.Context, name, text, dir string) (*Result, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.ResourceFailure("create", dir, err)
	}

	result := &Result{Stencil: name, Dir: dir, Source: filepath.Join(dir, name+".mlir")}
	if err := sink.WriteFile(result.Source, []byte(text)); err != nil {
		return nil, err
	}

	for _, stage := range tc.Stages(name, dir) {
		if err := tc.runStage(ctx, stage); err != nil {
			return nil, err
		}
		result.Stages = append(result.Stages, StageRecord{
			Tool:    stage.Command.Name,
			Command: stage.Command.String(),
			Output:  filepath.Base(stage.Output),
		})
		result.Binary = stage.Output
	}

	log.Infof("built %s in %s", name, dir)
	return result, nil
}

func (tc *Toolchain) runStage(ctx context.Context, stage Stage) error {
	log.Infof("%s", stage.Command)

	stdout, stderr, err := tc.runner.Run(ctx, stage.Command)
	tool := fmt.Sprintf("%s: %s", stage.Label, stage.Command.Name)
	switch {
	case len(stderr) > 0:
		return errors.ExternalToolFailure(tool, string(stderr))

	case err != nil && ctx.Err() != nil:
		return fmt.Errorf("%s interrupted: %w", stage.Command.Name, ctx.Err())

	case err != nil && isNotFound(err):
		return errors.ToolNotFound(stage.Command.Name, err)

	case err != nil:
		return errors.ExternalToolFailure(tool, err.Error())
	}

	if stage.Capture != "" {
		return sink.WriteFile(stage.Capture, stdout)
	}
	return nil
}

func isNotFound(err error) bool {
	var execErr *exec.Error
	return stderrors.As(err, &execErr) || stderrors.Is(err, os.ErrNotExist)
}
