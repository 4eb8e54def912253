package main

import (
	"github.com/spf13/cobra"

	"github.com/reglet-dev/dbmatrix/internal/application/dto"
)

func init() {
	rootCmd.AddCommand(newAugmentCmd())
}

func newAugmentCmd() *cobra.Command {
	opts := DefaultCommonOptions()

	cmd := &cobra.Command{
		Use:   "augment [file]",
		Short: "Write the selected profile's properties into a properties file",
		Long: `Merge the selected profile's properties into a .properties file,
overwriting keys the profile defines and keeping every other line. Without
an argument the build's resources/test/hibernate.properties is augmented.
The file is left untouched when nothing would change.`,
		Example: `  dbmatrix augment
  dbmatrix augment build/resources/test/hibernate.properties -P db=mysql`,
		Args: cobra.MaximumNArgs(1),
		RunE: withContainer(func(cc *CommandContext, _ *cobra.Command, args []string) error {
			if err := opts.ValidateFlags(); err != nil {
				return err
			}
			ctx, cancel := opts.ApplyToContext(cc.Context)
			defer cancel()

			var req dto.AugmentRequest
			if len(args) == 1 {
				req.Path = args[0]
			}
			resp, err := cc.Container.ProfileUseCase().Augment(ctx, req)
			if err != nil {
				return err
			}
			formatter, err := cc.Formatter(opts)
			if err != nil {
				return err
			}
			return formatter.FormatAugment(resp)
		}),
	}

	opts.RegisterFlags(cmd)
	return cmd
}
