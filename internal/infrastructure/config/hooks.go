package config

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/reglet-dev/dbmatrix/internal/domain/entities"
)

// ActionSpec is the YAML form of one lifecycle hook.
type ActionSpec struct {
	Env     map[string]string `yaml:"env,omitempty"`
	Name    string            `yaml:"name,omitempty"`
	Dir     string            `yaml:"dir,omitempty"`
	Command []string          `yaml:"command"`
}

// HooksSpec maps a phase name to its actions, in declaration order.
type HooksSpec map[string][]ActionSpec

// Expander rewrites a string before it is stored in an action.
type Expander func(string) (string, error)

// Apply converts the hook definitions into actions and hands each to add, phase by phase.
// Relative and empty working directories are anchored at baseDir.
func (h HooksSpec) Apply(baseDir string, expand Expander, add func(entities.HookPhase, entities.Action) error) error {
	if expand == nil {
		expand = func(s string) (string, error) { return s, nil }
	}

	var unknown []string
	for name := range h {
		if _, err := entities.ParseHookPhase(name); err != nil {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown hook phases %v (valid: %v)", unknown, entities.HookPhases)
	}

	for _, phase := range entities.HookPhases {
		for i, spec := range h[string(phase)] {
			action, err := spec.toAction(baseDir, expand)
			if err != nil {
				return fmt.Errorf("%s hook %d: %w", phase, i, err)
			}
			if action.Name == "" {
				action.Name = fmt.Sprintf("%s-%d", phase, i+1)
			}
			if err := add(phase, action); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s ActionSpec) toAction(baseDir string, expand Expander) (entities.Action, error) {
	if len(s.Command) == 0 {
		return entities.Action{}, fmt.Errorf("command is required")
	}

	action := entities.Action{
		Name:    s.Name,
		Command: make([]string, len(s.Command)),
	}
	for i, arg := range s.Command {
		expanded, err := expand(arg)
		if err != nil {
			return entities.Action{}, fmt.Errorf("command argument %d: %w", i, err)
		}
		action.Command[i] = expanded
	}

	if len(s.Env) > 0 {
		action.Env = make(map[string]string, len(s.Env))
		for k, v := range s.Env {
			expanded, err := expand(v)
			if err != nil {
				return entities.Action{}, fmt.Errorf("env %s: %w", k, err)
			}
			action.Env[k] = expanded
		}
	}

	dir, err := expand(s.Dir)
	if err != nil {
		return entities.Action{}, fmt.Errorf("dir: %w", err)
	}
	switch {
	case dir == "":
		action.Dir = baseDir
	case filepath.IsAbs(dir):
		action.Dir = filepath.Clean(dir)
	default:
		action.Dir = filepath.Join(baseDir, dir)
	}
	return action, nil
}
