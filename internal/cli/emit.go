package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eddie-c-davis/gt4py/internal/sink"
)

// EmitOptions holds flags for the emit command.
type EmitOptions struct {
	*RootOptions
	Output  string
	Stencil string
}

// NewEmitCommand creates the emit command.
func NewEmitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EmitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "emit <file.stencil>",
		Short: "Print the stencil dialect text of each stencil",
		Long: `Parse a stencil source file, check it and lower every stencil
to a stencil dialect module. Modules are printed in source order.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmit(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().StringVarP(&opts.Stencil, "stencil", "s", "", "emit only the named stencil")

	return cmd
}

func runEmit(opts *EmitOptions, path string, cmd *cobra.Command) error {
	buildOpts, err := opts.Options()
	if err != nil {
		return err
	}

	loader := &Loader{ErrWriter: cmd.ErrOrStderr(), Stencil: opts.Stencil}
	units, err := loader.Load(path)
	if err != nil {
		return err
	}

	modules := make([]string, 0, len(units))
	for _, unit := range units {
		text, err := loader.Emit(unit, buildOpts)
		if err != nil {
			return err
		}
		modules = append(modules, text)
	}
	text := strings.Join(modules, "\n")

	if opts.Output == "" {
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	}
	if err := sink.WriteFile(opts.Output, []byte(text)); err != nil {
		return WrapExitError(ExitCommandError, "writing output file", err)
	}
	if opts.Verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d stencil(s) to %s\n", len(units), opts.Output)
	}
	return nil
}
