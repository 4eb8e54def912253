package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/dbmatrix/internal/application/dto"
	"github.com/reglet-dev/dbmatrix/internal/domain/entities"
)

func init() {
	rootCmd.AddCommand(newHooksCmd())
}

func newHooksCmd() *cobra.Command {
	var (
		req  dto.HookRequest
		test string
	)

	phases := make([]string, 0, len(entities.HookPhases))
	for _, p := range entities.HookPhases {
		phases = append(phases, string(p))
	}

	cmd := &cobra.Command{
		Use:   "hooks <phase>",
		Short: "Run the hook actions of one test phase",
		Long: fmt.Sprintf(`Run the hook actions the selected profile and the project register for a
test phase. Before a phase the profile's actions run first; after a phase the
project's actions run first.

Phases: %s`, strings.Join(phases, ", ")),
		Example: `  dbmatrix hooks before-test-task
  dbmatrix hooks after-each-test --test 'com.acme.OrderTest#saves' --outcome failed
  dbmatrix hooks before-test-task --dry-run`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: phases,
		RunE: withContainer(func(cc *CommandContext, _ *cobra.Command, args []string) error {
			req.Phase = args[0]
			if test != "" {
				class, name, err := parseTestRef(test)
				if err != nil {
					return err
				}
				req.TestClass, req.TestName = class, name
			}
			return cc.Container.ProfileUseCase().RunHooks(cc.Context, req)
		}),
	}

	cmd.Flags().StringVar(&test, "test", "", "test case as class#name")
	cmd.Flags().StringVar(&req.TestID, "test-id", "", "unique test identifier (default class#name)")
	cmd.Flags().StringVar(&req.Outcome, "outcome", "", "test outcome for after-each-test: passed, failed, skipped")
	cmd.Flags().Bool("dry-run", false, "print actions instead of running them")
	return cmd
}

// parseTestRef splits "class#name". The class part is required.
func parseTestRef(ref string) (class, name string, err error) {
	class, name, _ = strings.Cut(ref, "#")
	if strings.TrimSpace(class) == "" {
		return "", "", fmt.Errorf("invalid --test value %q: expected class#name", ref)
	}
	return class, name, nil
}
