package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewFieldsCommand creates the fields command, which prints the inferred
// field table of every stencil.
func NewFieldsCommand(rootOpts *RootOptions) *cobra.Command {
	var stencil string

	cmd := &cobra.Command{
		Use:           "fields <file.stencil>",
		Short:         "Show the fields of each stencil with their inferred intent",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := &Loader{ErrWriter: cmd.ErrOrStderr(), Stencil: stencil}
			units, err := loader.Load(args[0])
			if err != nil {
				return err
			}
			for i, unit := range units {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s:\n%s", unit.Def.ShortName(), unit.Analysis.Fields.String())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&stencil, "stencil", "s", "", "show only the named stencil")

	return cmd
}
