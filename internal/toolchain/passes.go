package toolchain

import (
	"fmt"

	"github.com/eddie-c-davis/gt4py/internal/config"
)

// OptPasses returns the oec-opt pass list for a pipeline configuration.
func OptPasses(p config.Pipeline) []string {
	passes := []string{
		"--canonicalize",
		"--stencil-inlining",
		"--cse",
		fmt.Sprintf("--pass-pipeline=stencil-unrolling{unroll-factor=%d unroll-index=%d}", p.UnrollFactor, p.UnrollIndex),
		"--stencil-shape-inference",
		"--cse",
		"--convert-stencil-to-std",
		"--cse",
	}

	if p.CUDA {
		passes = append(passes,
			fmt.Sprintf("--stencil-loop-mapping=block-sizes=%d,%d,%d", p.BlockSizes[0], p.BlockSizes[1], p.BlockSizes[2]),
			"--convert-parallel-loops-to-gpu")
	}
	passes = append(passes, "--lower-affine", "--convert-scf-to-std")

	if p.CUDA {
		passes = append(passes, "--gpu-kernel-outlining")
	}
	passes = append(passes, "--cse", "--canonicalize")

	if p.CUDA {
		passes = append(passes, "--stencil-gpu-to-cubin", "--stencil-gpu-to-cuda", "--cse", "--canonicalize")
	} else {
		passes = append(passes, "--convert-std-to-llvm=emit-c-wrappers")
	}
	return passes
}
