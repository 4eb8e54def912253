package main

import (
	"errors"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newValidateCmd())
}

func newValidateCmd() *cobra.Command {
	opts := DefaultCommonOptions()

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check every discovered profile definition",
		Long: `Parse and validate every profile definition visible to the project,
reporting all problems at once. Exits with status 5 when any definition is
malformed.`,
		Args: cobra.NoArgs,
		RunE: withContainer(func(cc *CommandContext, _ *cobra.Command, _ []string) error {
			if err := opts.ValidateFlags(); err != nil {
				return err
			}
			ctx, cancel := opts.ApplyToContext(cc.Context)
			defer cancel()

			resp, validateErr := cc.Container.ProfileUseCase().Validate(ctx)
			if resp == nil {
				return validateErr
			}
			formatter, err := cc.Formatter(opts)
			if err != nil {
				return errors.Join(validateErr, err)
			}
			if err := formatter.FormatValidate(resp); err != nil {
				return errors.Join(validateErr, err)
			}
			return validateErr
		}),
	}

	opts.RegisterFlags(cmd)
	return cmd
}
