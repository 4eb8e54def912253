package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/reglet-dev/dbmatrix/internal/application/ports"
	"github.com/reglet-dev/dbmatrix/internal/infrastructure/container"
	"github.com/reglet-dev/dbmatrix/internal/infrastructure/redaction"
)

// CommandContext provides common command dependencies.
// Eliminates repetitive container initialization across CLI commands.
type CommandContext struct {
	Container *container.Container
	Logger    *slog.Logger
	Context   context.Context
	Out       io.Writer
}

// Formatter returns the output formatter selected by opts.
func (c *CommandContext) Formatter(opts CommonOptions) (ports.OutputFormatter, error) {
	return c.Container.Formatters().Create(opts.Format, c.Out, formatterOptions(opts))
}

func formatterOptions(opts CommonOptions) ports.FormatterOptions {
	return ports.FormatterOptions{
		Indent: true,
		Color:  opts.Color,
	}
}

// CommandHandler is a function that executes with initialized dependencies.
// Commands focus on business logic, not infrastructure setup.
type CommandHandler func(*CommandContext, *cobra.Command, []string) error

// containerOptions collects the global flags into container options.
func containerOptions(cmd *cobra.Command) (container.Options, error) {
	projectProps, err := parseKeyValues("-P", projectArgs)
	if err != nil {
		return container.Options{}, err
	}
	systemProps, err := parseKeyValues("-D", systemArgs)
	if err != nil {
		return container.Options{}, err
	}
	// Only the hooks command defines --dry-run
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	return container.Options{
		Logger:            slog.Default(),
		SystemConfigPath:  viper.ConfigFileUsed(),
		ProjectDir:        projectDir,
		ProjectProperties: projectProps,
		SystemOverrides:   systemProps,
		Stdout:            cmd.OutOrStdout(),
		Stderr:            cmd.ErrOrStderr(),
		DryRun:            dryRun,
	}, nil
}

// withContainer wraps a command handler with container initialization.
// Handles common setup: config loading, project loading, profile discovery.
// Errors returned by the handler are scrubbed of credentials.
func withContainer(handler CommandHandler) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		opts, err := containerOptions(cmd)
		if err != nil {
			return err
		}

		// Initialize container with dependencies
		c, err := container.New(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer func() {
			if err := c.Close(); err != nil {
				c.Logger().Warn("failed to release resources", "error", err)
			}
		}()

		// Create command context
		ctx := &CommandContext{
			Container: c,
			Logger:    c.Logger(),
			Context:   cmd.Context(),
			Out:       cmd.OutOrStdout(),
		}

		// Execute handler
		return redaction.SafeError(handler(ctx, cmd, args), c.Redactor())
	}
}
