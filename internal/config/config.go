package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultFieldSize = 64
	DefaultHaloSize  = 4
	DefaultIndent    = "  "
)

// Options controls stencil emission and the external build.
type Options struct {
	// FieldSize is the interior extent of every field along each axis.
	FieldSize int `yaml:"field_size"`

	// HaloSize pads the asserted bounds on both sides of every axis.
	HaloSize int `yaml:"halo_size"`

	// Indent is the indentation unit of the emitted text.
	Indent string `yaml:"indent"`

	// DebugMode compiles with -O0 instead of -O3.
	DebugMode bool `yaml:"debug_mode"`

	Verbose bool `yaml:"verbose"`

	// CacheDir holds build outputs keyed by a hash of the emitted text.
	CacheDir string `yaml:"cache_dir,omitempty"`

	Tools    Tools    `yaml:"tools"`
	Pipeline Pipeline `yaml:"pipeline"`
}

// Tools names the external executables of the build.
type Tools struct {
	Opt       string `yaml:"opt"`
	Translate string `yaml:"translate"`
	Compile   string `yaml:"compile"`
	Clang     string `yaml:"clang"`
	// Wrapper is the runtime source linked into the final binary.
	Wrapper string `yaml:"wrapper"`
}

// Pipeline configures the stencil optimization passes.
type Pipeline struct {
	UnrollFactor int    `yaml:"unroll_factor"`
	UnrollIndex  int    `yaml:"unroll_index"`
	CUDA         bool   `yaml:"cuda"`
	BlockSizes   [3]int `yaml:"block_sizes,flow"`
	// CUDAPath adds include and library directories when set.
	CUDAPath string `yaml:"cuda_path,omitempty"`
}

// Default returns the options used when nothing is configured.
func Default() Options {
	return Options{
		FieldSize: DefaultFieldSize,
		HaloSize:  DefaultHaloSize,
		Indent:    DefaultIndent,
		Tools: Tools{
			Opt:       "oec-opt",
			Translate: "mlir-translate",
			Compile:   "llc",
			Clang:     "clang++-9",
			Wrapper:   "../open-earth-compiler/runtime/oec-runtime.cpp",
		},
		Pipeline: Pipeline{
			UnrollFactor: 2,
			UnrollIndex:  1,
			CUDA:         true,
			BlockSizes:   [3]int{128, 1, 1},
			CUDAPath:     os.Getenv("CUDA_SRC"),
		},
	}
}

// Load reads a YAML options file on top of the defaults. Unknown keys are
// rejected.
func Load(path string) (Options, error) {
	opts := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("failed to read options file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&opts); err != nil {
		return opts, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := opts.Validate(); err != nil {
		return opts, fmt.Errorf("invalid options: %w", err)
	}
	return opts, nil
}

// Validate checks that sizes are usable.
func (o Options) Validate() error {
	if o.FieldSize <= 0 {
		return fmt.Errorf("field_size must be positive, got %d", o.FieldSize)
	}
	if o.HaloSize < 0 {
		return fmt.Errorf("halo_size must not be negative, got %d", o.HaloSize)
	}
	if o.Indent == "" {
		return fmt.Errorf("indent must not be empty")
	}
	if o.Pipeline.UnrollFactor <= 0 {
		return fmt.Errorf("unroll_factor must be positive, got %d", o.Pipeline.UnrollFactor)
	}
	if o.Pipeline.UnrollIndex < 0 || o.Pipeline.UnrollIndex > 2 {
		return fmt.Errorf("unroll_index must name an axis (0-2), got %d", o.Pipeline.UnrollIndex)
	}
	for _, size := range o.Pipeline.BlockSizes {
		if o.Pipeline.CUDA && size <= 0 {
			return fmt.Errorf("block_sizes must be positive, got %v", o.Pipeline.BlockSizes)
		}
	}
	return nil
}

// Extent is the upper asserted bound: field size plus halo.
func (o Options) Extent() int {
	return o.FieldSize + o.HaloSize
}

// OptLevel returns the optimization flag for llc and clang.
func (o Options) OptLevel() string {
	if o.DebugMode {
		return "-O0"
	}
	return "-O3"
}
