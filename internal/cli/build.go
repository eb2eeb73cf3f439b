package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/eddie-c-davis/gt4py/internal/toolchain"
)

// BuildOptions holds flags for the build command.
type BuildOptions struct {
	*RootOptions
	Stencil  string
	CacheDir string
	Debug    bool
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "build <file.stencil>",
		Short: "Compile each stencil to a native binary",
		Long: `Lower every stencil and run the external toolchain (oec-opt,
mlir-translate, llc, clang) on the result. Builds are cached by a hash
of the emitted text and the build options.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Stencil, "stencil", "s", "", "build only the named stencil")
	cmd.Flags().StringVar(&opts.CacheDir, "cache-dir", "", "build cache directory")
	cmd.Flags().BoolVarP(&opts.Debug, "debug", "g", false, "compile with -O0")

	return cmd
}

func runBuild(opts *BuildOptions, path string, cmd *cobra.Command) error {
	start := time.Now()

	buildOpts, err := opts.Options()
	if err != nil {
		return err
	}
	if opts.CacheDir != "" {
		buildOpts.CacheDir = opts.CacheDir
	}
	if opts.Debug {
		buildOpts.DebugMode = true
	}

	loader := &Loader{ErrWriter: cmd.ErrOrStderr(), Stencil: opts.Stencil}
	units, err := loader.Load(path)
	if err != nil {
		return err
	}

	tc := toolchain.New(buildOpts, opts.runner)
	for _, unit := range units {
		text, err := loader.Emit(unit, buildOpts)
		if err != nil {
			return err
		}

		manifest, err := tc.Build(cmd.Context(), unit.Def.ShortName(), text)
		if err != nil {
			fmt.Fprint(cmd.ErrOrStderr(), loader.reporter.FormatAll(err))
			return WrapExitError(ExitFailure, fmt.Sprintf("building %s", unit.Def.ShortName()), err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), manifest.Summary())
	}

	fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("Built %d stencil(s) in %s", len(units), FormatDuration(time.Since(start))))
	return nil
}

// NewCleanCommand creates the clean command, which empties the build cache.
func NewCleanCommand(rootOpts *RootOptions) *cobra.Command {
	var cacheDir string

	cmd := &cobra.Command{
		Use:           "clean",
		Short:         "Remove cached builds",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			buildOpts, err := rootOpts.Options()
			if err != nil {
				return err
			}
			root := cacheDir
			if root == "" {
				root = buildOpts.CacheDir
			}
			if root == "" {
				root = toolchain.DefaultCacheDir()
			}

			removed, err := toolchain.Clean(root)
			if err != nil {
				return WrapExitError(ExitCommandError, "cleaning cache", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d build(s) from %s\n", removed, root)
			return nil
		},
	}

	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "build cache directory")

	return cmd
}
