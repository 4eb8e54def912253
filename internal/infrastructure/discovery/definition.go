// Package discovery finds profile definitions on disk and materializes them.
package discovery

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/Masterminds/semver/v3"
	"github.com/goccy/go-yaml"

	"github.com/reglet-dev/dbmatrix/internal/domain/entities"
	"github.com/reglet-dev/dbmatrix/internal/infrastructure/config"
	"github.com/reglet-dev/dbmatrix/internal/infrastructure/validation"
	"github.com/reglet-dev/dbmatrix/internal/version"
)

// Definition is the YAML structure of a rich profile definition.
// Properties keep their declaration order.
type Definition struct {
	Connection   *ConnectionSpec  `yaml:"connection,omitempty"`
	Hooks        config.HooksSpec `yaml:"hooks,omitempty"`
	ToolVersion  string           `yaml:"tool_version,omitempty"`
	Properties   yaml.MapSlice    `yaml:"properties,omitempty"`
	Dependencies []string         `yaml:"dependencies,omitempty"`
	Files        []string         `yaml:"files,omitempty"`
}

// ConnectionSpec holds the well-known connection properties.
type ConnectionSpec struct {
	Dialect  string `yaml:"dialect,omitempty"`
	Driver   string `yaml:"driver,omitempty"`
	URL      string `yaml:"url,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// Fragment is the YAML structure of a *.profiles.yaml file.
type Fragment struct {
	Profiles    map[string]Definition `yaml:"profiles"`
	ToolVersion string                `yaml:"tool_version,omitempty"`
}

// Names returns the fragment's profile names, sorted.
func (f *Fragment) Names() []string {
	names := make([]string, 0, len(f.Profiles))
	for name := range f.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PropertyMap returns the connection block followed by the properties block.
func (d *Definition) PropertyMap() *entities.PropertyMap {
	out := entities.NewPropertyMap()
	if c := d.Connection; c != nil {
		setIfPresent(out, entities.DialectKey, c.Dialect)
		setIfPresent(out, entities.DriverKey, c.Driver)
		setIfPresent(out, entities.URLKey, c.URL)
		setIfPresent(out, entities.UsernameKey, c.Username)
		setIfPresent(out, entities.PasswordKey, c.Password)
	}
	for _, item := range d.Properties {
		out.Set(fmt.Sprintf("%v", item.Key), scalarString(item.Value))
	}
	return out
}

func setIfPresent(m *entities.PropertyMap, key, value string) {
	if value != "" {
		m.Set(key, value)
	}
}

func scalarString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// DefinitionLoader reads, validates and decodes definition files.
type DefinitionLoader struct {
	validator   *validation.DefinitionValidator
	toolVersion *semver.Version
}

// NewDefinitionLoader creates a loader. toolVersion is the running version;
// development builds do not check tool_version constraints.
func NewDefinitionLoader(validator *validation.DefinitionValidator, toolVersion string) *DefinitionLoader {
	if validator == nil {
		validator = validation.NewDefinitionValidator()
	}
	l := &DefinitionLoader{validator: validator}
	if tool := (version.Info{Version: toolVersion}); tool.IsRelease() {
		l.toolVersion = tool.Semantic()
	}
	return l
}

// LoadDefinition reads a profile.yaml file.
func (l *DefinitionLoader) LoadDefinition(path string) (*Definition, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return l.ParseDefinition(data)
}

// ParseDefinition validates and decodes a profile.yaml document.
func (l *DefinitionLoader) ParseDefinition(data []byte) (*Definition, error) {
	if err := l.validator.ValidateDefinition(data); err != nil {
		return nil, err
	}

	var def Definition
	if err := yaml.UnmarshalWithOptions(data, &def, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("failed to decode profile definition: %w", err)
	}
	if err := l.checkToolVersion(def.ToolVersion); err != nil {
		return nil, err
	}
	return &def, nil
}

// LoadFragment reads a *.profiles.yaml file.
func (l *DefinitionLoader) LoadFragment(path string) (*Fragment, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return l.ParseFragment(data)
}

// ParseFragment validates and decodes a *.profiles.yaml document.
// A version constraint on an entry overrides the file-level one.
func (l *DefinitionLoader) ParseFragment(data []byte) (*Fragment, error) {
	if err := l.validator.ValidateFragment(data); err != nil {
		return nil, err
	}

	var frag Fragment
	if err := yaml.UnmarshalWithOptions(data, &frag, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("failed to decode profile fragment: %w", err)
	}
	if err := l.checkToolVersion(frag.ToolVersion); err != nil {
		return nil, err
	}
	for _, name := range frag.Names() {
		if err := l.checkToolVersion(frag.Profiles[name].ToolVersion); err != nil {
			return nil, fmt.Errorf("profile %s: %w", name, err)
		}
	}
	return &frag, nil
}

func (l *DefinitionLoader) checkToolVersion(constraint string) error {
	if constraint == "" {
		return nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid tool_version constraint %q: %w", constraint, err)
	}
	if l.toolVersion == nil {
		return nil
	}
	if ok, errs := c.Validate(l.toolVersion); !ok {
		if len(errs) > 0 {
			return fmt.Errorf("tool_version %q not satisfied by dbmatrix %s: %w", constraint, l.toolVersion, errs[0])
		}
		return fmt.Errorf("tool_version %q not satisfied by dbmatrix %s", constraint, l.toolVersion)
	}
	return nil
}

func readFile(path string) ([]byte, error) {
	// Security: Use os.OpenRoot to prevent path traversal attacks
	root, err := os.OpenRoot(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open definition directory: %w", err)
	}
	defer func() {
		_ = root.Close() // Best-effort cleanup
	}()

	file, err := root.Open(filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open definition: %w", err)
	}
	defer func() {
		_ = file.Close() // Best-effort cleanup
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition: %w", err)
	}
	return data, nil
}
