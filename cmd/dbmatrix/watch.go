package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/dbmatrix/internal/application/dto"
	"github.com/reglet-dev/dbmatrix/internal/infrastructure/container"
	"github.com/reglet-dev/dbmatrix/internal/infrastructure/watch"
)

func init() {
	rootCmd.AddCommand(newWatchCmd())
}

func newWatchCmd() *cobra.Command {
	opts := DefaultCommonOptions()
	opts.Timeout = 0
	debounce := watch.DefaultDebounce

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-discover profiles whenever profile directories change",
		Long: `Watch the project's profile directories and print the refreshed profile
list after every change. Runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: withContainer(func(cc *CommandContext, _ *cobra.Command, _ []string) error {
			if err := opts.ValidateFlags(); err != nil {
				return err
			}
			ctx, cancel := opts.ApplyToContext(cc.Context)
			defer cancel()

			w, err := watch.New(debounce, cc.Logger)
			if err != nil {
				return err
			}
			defer w.Close()

			if err := w.Add(cc.Container.SearchRoots()...); err != nil {
				return err
			}
			cc.Logger.Info("watching profile directories",
				"directories", w.Watched(),
				"awaiting", w.Pending())

			live := newLiveContainer(cc.Container, cc.Logger)
			defer live.Close()
			if err := printList(ctx, cc, opts, cc.Container); err != nil {
				return err
			}

			return w.Run(ctx, func(ctx context.Context, changed []string) error {
				cc.Logger.Debug("profile directories changed", "paths", changed)
				next, err := live.Reload(ctx)
				if err != nil {
					// Keep watching; the next edit may fix the definition.
					cc.Logger.Error("failed to reload profiles", "error", err)
					return nil
				}
				if err := w.Add(next.SearchRoots()...); err != nil {
					return err
				}
				return printList(ctx, cc, opts, next)
			})
		}),
	}

	opts.RegisterFlags(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", debounce, "quiet period before re-discovering")
	return cmd
}

// liveContainer follows reloads while watching. The first container belongs
// to withContainer; every later one is closed here.
type liveContainer struct {
	first   *container.Container
	current *container.Container
	logger  *slog.Logger
	close   func(*container.Container) error
}

func newLiveContainer(c *container.Container, logger *slog.Logger) *liveContainer {
	return &liveContainer{
		first:   c,
		current: c,
		logger:  logger,
		close:   (*container.Container).Close,
	}
}

// Reload builds a fresh container and releases the one it replaces.
func (l *liveContainer) Reload(ctx context.Context) (*container.Container, error) {
	next, err := l.current.Reload(ctx)
	if err != nil {
		return nil, err
	}
	l.release()
	l.current = next
	return next, nil
}

// Close releases the newest container unless it is the first.
func (l *liveContainer) Close() {
	l.release()
	l.current = l.first
}

func (l *liveContainer) release() {
	if l.current == l.first {
		return
	}
	if err := l.close(l.current); err != nil {
		l.logger.Warn("failed to release resources", "error", err)
	}
}

func printList(ctx context.Context, cc *CommandContext, opts CommonOptions, c *container.Container) error {
	resp, err := c.ProfileUseCase().List(ctx, dto.ListRequest{})
	if err != nil {
		return err
	}
	formatter, err := c.Formatters().Create(opts.Format, cc.Out, formatterOptions(opts))
	if err != nil {
		return err
	}
	return formatter.FormatList(resp)
}
