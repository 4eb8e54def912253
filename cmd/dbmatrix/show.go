package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newShowCmd())
}

func newShowCmd() *cobra.Command {
	opts := DefaultCommonOptions()

	cmd := &cobra.Command{
		Use:   "show [profile]",
		Short: "Describe a database profile",
		Long: `Show the settings of a profile: its properties, driver dependencies,
hooks and output directory. Without an argument the selected profile is
shown. Passwords and other sensitive values are redacted.`,
		Example: `  dbmatrix show
  dbmatrix show mysql --format yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: withContainer(func(cc *CommandContext, _ *cobra.Command, args []string) error {
			if err := opts.ValidateFlags(); err != nil {
				return err
			}
			ctx, cancel := opts.ApplyToContext(cc.Context)
			defer cancel()

			var name string
			if len(args) == 1 {
				name = args[0]
			}
			info, err := cc.Container.ProfileUseCase().Show(ctx, name)
			if err != nil {
				return err
			}
			formatter, err := cc.Formatter(opts)
			if err != nil {
				return err
			}
			return formatter.FormatProfile(info)
		}),
	}

	opts.RegisterFlags(cmd)
	return cmd
}
