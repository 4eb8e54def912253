package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/reglet-dev/dbmatrix/internal/application/ports"
	"github.com/reglet-dev/dbmatrix/internal/domain/entities"
)

// Variable pattern: {{ .vars.key }}
var varPattern = regexp.MustCompile(`\{\{\s*\.vars\.([a-zA-Z0-9_.]+)\s*\}\}`)

// Environment pattern: {{ env "NAME" }}
var envPattern = regexp.MustCompile(`\{\{\s*env\s+"([a-zA-Z0-9_.-]+)"\s*\}\}`)

// EnvLookup reads an environment variable.
type EnvLookup func(key string) (string, bool)

// VariableSubstitutor expands template references in definition values.
// Values read from the environment are tracked as sensitive so that
// credentials injected this way are redacted on output.
type VariableSubstitutor struct {
	env     EnvLookup
	tracker ports.SensitiveValueProvider
}

// NewVariableSubstitutor creates a new variable substitutor.
// A nil env reads the process environment; a nil tracker disables tracking.
func NewVariableSubstitutor(env EnvLookup, tracker ports.SensitiveValueProvider) *VariableSubstitutor {
	if env == nil {
		env = os.LookupEnv
	}
	return &VariableSubstitutor{
		env:     env,
		tracker: tracker,
	}
}

// ProfileVars builds the variables visible to a profile definition:
// project.{dir,name,path}, build.dir and profile.{name,dir,output_dir}.
func ProfileVars(project *entities.Project, name, dir string) map[string]interface{} {
	vars := map[string]interface{}{
		"profile": map[string]interface{}{
			"name": name,
			"dir":  dir,
		},
	}
	if project != nil {
		buildDir := project.BuildDirectory()
		vars["project"] = map[string]interface{}{
			"dir":  project.Dir,
			"name": project.Name,
			"path": project.Path(),
		}
		vars["build"] = map[string]interface{}{"dir": buildDir}
		vars["profile"].(map[string]interface{})["output_dir"] = entities.ProfileOutputPath(buildDir, name)
	}
	return vars
}

// Substitute expands every value of props in place.
// Returns an error naming the key if a referenced variable is not found.
func (s *VariableSubstitutor) Substitute(props *entities.PropertyMap, vars map[string]interface{}) error {
	for _, key := range props.Keys() {
		value, _ := props.Get(key)
		substituted, err := s.SubstituteString(value, vars)
		if err != nil {
			return fmt.Errorf("property %s: %w", key, err)
		}
		if substituted != value {
			props.Set(key, substituted)
		}
	}
	return nil
}

// SubstituteString replaces patterns with values.
func (s *VariableSubstitutor) SubstituteString(str string, vars map[string]interface{}) (string, error) {
	if !strings.Contains(str, "{{") {
		return str, nil
	}

	var lastErr error

	// 1. Substitute variables: {{ .vars.key }}
	result := varPattern.ReplaceAllStringFunc(str, func(match string) string {
		submatches := varPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			lastErr = fmt.Errorf("invalid variable pattern: %s", match)
			return match
		}

		value, err := lookupVar(vars, submatches[1])
		if err != nil {
			lastErr = err
			return match
		}
		return fmt.Sprintf("%v", value)
	})
	if lastErr != nil {
		return "", lastErr
	}

	// 2. Substitute environment: {{ env "NAME" }}
	result = envPattern.ReplaceAllStringFunc(result, func(match string) string {
		submatches := envPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			lastErr = fmt.Errorf("invalid env pattern: %s", match)
			return match
		}

		value, ok := s.env(submatches[1])
		if !ok {
			lastErr = fmt.Errorf("environment variable not set: %s", submatches[1])
			return match
		}
		if s.tracker != nil && value != "" {
			s.tracker.Track(value)
		}
		return value
	})
	if lastErr != nil {
		return "", lastErr
	}

	return result, nil
}

// lookupVar looks up a variable value by path (e.g., "project.dir").
func lookupVar(vars map[string]interface{}, path string) (interface{}, error) {
	parts := strings.Split(path, ".")
	current := interface{}(vars)

	for i, part := range parts {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("variable path %s: cannot access %s (not a map)", path, strings.Join(parts[:i+1], "."))
		}

		value, exists := m[part]
		if !exists {
			return nil, fmt.Errorf("variable not found: %s", path)
		}
		current = value
	}

	if _, ok := current.(map[string]interface{}); ok {
		return nil, fmt.Errorf("variable %s is a group, not a value", path)
	}
	return current, nil
}
