package main

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/reglet-dev/dbmatrix/internal/application/dto"
)

func init() {
	rootCmd.AddCommand(newSelectCmd())
}

func newSelectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select [profile]",
		Short: "Remember a database profile for later runs",
		Long: `Store a profile name as the remembered selection. Later runs use it when
no property names a profile. Without an argument an interactive picker
lists the visible profiles.`,
		Example: `  dbmatrix select mysql
  dbmatrix select`,
		Args: cobra.MaximumNArgs(1),
		RunE: withContainer(func(cc *CommandContext, cmd *cobra.Command, args []string) error {
			uc := cc.Container.ProfileUseCase()

			var name string
			if len(args) == 1 {
				name = args[0]
			} else {
				list, err := uc.List(cc.Context, dto.ListRequest{})
				if err != nil {
					return err
				}
				if len(list.Profiles) == 0 {
					return fmt.Errorf("no database profiles found")
				}

				options := make([]huh.Option[string], 0, len(list.Profiles))
				for _, p := range list.Profiles {
					label := fmt.Sprintf("%s (%s)", p.Name, p.Scope)
					options = append(options, huh.NewOption(label, p.Name).Selected(p.Selected))
				}
				if err := huh.NewSelect[string]().
					Title("Database profile").
					Options(options...).
					Value(&name).
					Run(); err != nil {
					return err
				}
			}

			if err := uc.Select(cc.Context, name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Selected database profile %s\n", name)
			return nil
		}),
	}
	return cmd
}
