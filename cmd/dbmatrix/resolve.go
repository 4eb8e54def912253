package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newResolveCmd())
}

func newResolveCmd() *cobra.Command {
	opts := DefaultCommonOptions()

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Show which profile a test run would use and why",
		Long: `Resolve the database profile for this project and report where the
choice came from: a property, the remembered selection, the project default
or the built-in "h2". The resolved name is remembered for the next run.`,
		Example: `  dbmatrix resolve
  dbmatrix resolve -P database_profile_name=mysql
  DBMATRIX_DB=postgresql dbmatrix resolve --format json`,
		Args: cobra.NoArgs,
		RunE: withContainer(func(cc *CommandContext, _ *cobra.Command, _ []string) error {
			if err := opts.ValidateFlags(); err != nil {
				return err
			}
			ctx, cancel := opts.ApplyToContext(cc.Context)
			defer cancel()

			resp, err := cc.Container.ProfileUseCase().Resolve(ctx)
			if err != nil {
				return err
			}
			formatter, err := cc.Formatter(opts)
			if err != nil {
				return err
			}
			return formatter.FormatResolve(resp)
		}),
	}

	opts.RegisterFlags(cmd)
	return cmd
}
