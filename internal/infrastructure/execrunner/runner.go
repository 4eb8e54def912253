// Package execrunner runs hook commands on the host.
package execrunner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/reglet-dev/dbmatrix/internal/application/ports"
	"github.com/reglet-dev/dbmatrix/internal/domain/entities"
	"github.com/reglet-dev/dbmatrix/internal/infrastructure/redaction"
)

var _ ports.CommandRunner = (*Runner)(nil)

// ExitError reports a hook command that ran and exited non-zero.
type ExitError struct {
	Err      error
	Command  string
	ExitCode int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command %q exited with code %d", e.Command, e.ExitCode)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Options configures a Runner.
type Options struct {
	Stdout   io.Writer
	Stderr   io.Writer
	Redactor *redaction.Redactor
	Logger   *slog.Logger
	// Environ returns the base environment. Defaults to os.Environ.
	Environ func() []string
	// DryRun prints commands instead of running them.
	DryRun bool
}

// Runner executes actions with os/exec. Command output is streamed through
// the redactor before it reaches the configured writers.
type Runner struct {
	stdout  io.Writer
	stderr  io.Writer
	logger  *slog.Logger
	environ func() []string
	dryRun  bool
}

// New creates a Runner.
func New(opts Options) *Runner {
	r := &Runner{
		stdout:  opts.Stdout,
		stderr:  opts.Stderr,
		logger:  opts.Logger,
		environ: opts.Environ,
		dryRun:  opts.DryRun,
	}
	if r.stdout == nil {
		r.stdout = os.Stdout
	}
	if r.stderr == nil {
		r.stderr = os.Stderr
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.environ == nil {
		r.environ = os.Environ
	}
	r.stdout = redaction.NewWriter(r.stdout, opts.Redactor)
	r.stderr = redaction.NewWriter(r.stderr, opts.Redactor)
	return r
}

// Run executes action. env is layered over the base environment and the
// action's own env, in that order of increasing precedence.
func (r *Runner) Run(ctx context.Context, action entities.Action, env map[string]string) error {
	if len(action.Command) == 0 {
		return fmt.Errorf("action %s has no command", action.Name)
	}
	display := strings.Join(action.Command, " ")

	if r.dryRun {
		_, err := fmt.Fprintf(r.stdout, "would run [%s]: %s\n", action.Name, display)
		return err
	}

	//nolint:gosec // G204: hook commands come from the project's own profile definitions
	cmd := exec.CommandContext(ctx, action.Command[0], action.Command[1:]...)
	cmd.Dir = action.Dir
	cmd.Env = mergeEnv(r.environ(), action.Env, env)
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	r.logger.Debug("executed hook command",
		"action", action.Name,
		"command", action.Command[0],
		"dir", action.Dir,
		"duration", duration,
		"error", err)

	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return fmt.Errorf("command %q cancelled: %w", display, ctx.Err())
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Command: display, ExitCode: exitErr.ExitCode(), Err: err}
	}
	return fmt.Errorf("failed to run %q: %w", display, err)
}

// mergeEnv layers the given maps over base. Later layers win; keys are
// appended in sorted order so the result is stable.
func mergeEnv(base []string, layers ...map[string]string) []string {
	index := make(map[string]int, len(base))
	out := make([]string, 0, len(base))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if i, ok := index[key]; ok {
			out[i] = kv
			continue
		}
		index[key] = len(out)
		out = append(out, kv)
	}

	for _, layer := range layers {
		keys := make([]string, 0, len(layer))
		for k := range layer {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			kv := k + "=" + layer[k]
			if i, ok := index[k]; ok {
				out[i] = kv
				continue
			}
			index[k] = len(out)
			out = append(out, kv)
		}
	}
	return out
}
