package cli

import (
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/eddie-c-davis/gt4py/internal/config"
	"github.com/eddie-c-davis/gt4py/internal/toolchain"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool

	// runner replaces the external processes of the build, nil in production.
	runner toolchain.Runner
}

// Options loads the build options named by --config, or the defaults.
func (o *RootOptions) Options() (config.Options, error) {
	opts := config.Default()
	if o.ConfigPath != "" {
		loaded, err := config.Load(o.ConfigPath)
		if err != nil {
			return opts, WrapExitError(ExitCommandError, "loading options", err)
		}
		opts = loaded
	}
	if o.Verbose {
		opts.Verbose = true
	}
	return opts, nil
}

// NewRootCommand creates the root command of stencilc.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stencilc",
		Short: "Stencil dialect compiler",
		Long: `Compile stencil definitions to the stencil dialect of the
open-earth-compiler and drive the external build of native binaries.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Verbose {
				commonlog.Configure(2, nil)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "build options file (YAML)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewEmitCommand(opts))
	cmd.AddCommand(NewBuildCommand(opts))
	cmd.AddCommand(NewFieldsCommand(opts))
	cmd.AddCommand(NewCleanCommand(opts))

	return cmd
}
