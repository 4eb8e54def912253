package main

import (
	"github.com/spf13/cobra"

	"github.com/reglet-dev/dbmatrix/internal/application/dto"
)

func init() {
	rootCmd.AddCommand(newPlanCmd())
}

func newPlanCmd() *cobra.Command {
	opts := DefaultCommonOptions()
	var req dto.PlanRequest

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the test tasks configured for the project's profiles",
		Long: `Show how test tasks are wired: the main "test" task bound to the selected
profile, one "test_<profile>" task per profile and the aggregate
"testAllDbProfiles" task. Each task lists its classpath, system properties
and hook actions.`,
		Example: `  dbmatrix plan
  dbmatrix plan --task test_mysql --format json`,
		Args: cobra.NoArgs,
		RunE: withContainer(func(cc *CommandContext, _ *cobra.Command, _ []string) error {
			if err := opts.ValidateFlags(); err != nil {
				return err
			}
			ctx, cancel := opts.ApplyToContext(cc.Context)
			defer cancel()

			resp, err := cc.Container.ProfileUseCase().Plan(ctx, req)
			if err != nil {
				return err
			}
			formatter, err := cc.Formatter(opts)
			if err != nil {
				return err
			}
			return formatter.FormatPlan(resp)
		}),
	}

	opts.RegisterFlags(cmd)
	cmd.Flags().StringVar(&req.Task, "task", "", "only plan this task")
	return cmd
}
