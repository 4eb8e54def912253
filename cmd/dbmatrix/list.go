package main

import (
	"github.com/spf13/cobra"

	"github.com/reglet-dev/dbmatrix/internal/application/dto"
)

func init() {
	rootCmd.AddCommand(newListCmd())
}

func newListCmd() *cobra.Command {
	opts := DefaultCommonOptions()
	var req dto.ListRequest

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered database profiles",
		Long: `List the database profiles visible to the project.

Profiles are shown in lookup order: the project's own databases directory,
custom directories, then enclosing projects. A profile hidden by a nearer
one with the same name is only shown with --all.`,
		Example: `  # List all visible profiles
  dbmatrix list

  # Only profiles defined by enclosing projects
  dbmatrix list --scope ancestor

  # Filter with an expression
  dbmatrix list --filter 'kind == "directory" && name startsWith "my"'`,
		Args: cobra.NoArgs,
		RunE: withContainer(func(cc *CommandContext, _ *cobra.Command, _ []string) error {
			if err := opts.ValidateFlags(); err != nil {
				return err
			}
			ctx, cancel := opts.ApplyToContext(cc.Context)
			defer cancel()

			resp, err := cc.Container.ProfileUseCase().List(ctx, req)
			if err != nil {
				return err
			}
			formatter, err := cc.Formatter(opts)
			if err != nil {
				return err
			}
			return formatter.FormatList(resp)
		}),
	}

	opts.RegisterFlags(cmd)
	cmd.Flags().StringVar(&req.FilterExpression, "filter", "", "expression selecting profiles (fields: name, kind, scope, scope_label, directory)")
	cmd.Flags().StringSliceVar(&req.ScopeKinds, "scope", nil, "only show profiles from these scopes: local, custom, ancestor")
	cmd.Flags().BoolVar(&req.IncludeShadowed, "all", false, "include profiles shadowed by a nearer scope")
	return cmd
}
