// Package config loads project descriptors and expands definition templates.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/goccy/go-yaml"

	"github.com/reglet-dev/dbmatrix/internal/domain/entities"
)

// ProjectDescriptor is the YAML structure of dbmatrix.yaml.
type ProjectDescriptor struct {
	Properties        map[string]interface{} `yaml:"properties,omitempty"`
	Hooks             HooksSpec              `yaml:"hooks,omitempty"`
	Name              string                 `yaml:"name,omitempty"`
	BuildDir          string                 `yaml:"build_dir,omitempty"`
	DefaultProfile    string                 `yaml:"default_profile,omitempty"`
	SearchDirectories []string               `yaml:"search_directories,omitempty"`
	Root              bool                   `yaml:"root,omitempty"`
}

// ProjectLoader builds the project hierarchy from dbmatrix.yaml descriptors.
//
// Hierarchy Resolution:
//   - The requested directory is always a project, with or without a descriptor
//   - Parents are the nearest enclosing directories holding a descriptor
//   - The walk stops after a descriptor with `root: true`, or at the filesystem root
type ProjectLoader struct {
	logger *slog.Logger
}

// NewProjectLoader creates a new project loader.
func NewProjectLoader(logger *slog.Logger) *ProjectLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProjectLoader{logger: logger}
}

// Load returns the project at dir with its Parent chain filled in.
func (l *ProjectLoader) Load(ctx context.Context, dir string) (*entities.Project, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving project directory %q: %w", dir, err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return nil, fmt.Errorf("project directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project directory %s is not a directory", absDir)
	}

	desc, _, err := l.LoadDescriptor(absDir)
	if err != nil {
		return nil, err
	}
	leaf, err := toProject(absDir, desc)
	if err != nil {
		return nil, err
	}

	child := leaf
	for cur := absDir; !child.Root; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		parentDir := filepath.Dir(cur)
		if parentDir == cur {
			break
		}
		cur = parentDir

		desc, found, err := l.LoadDescriptor(cur)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		parent, err := toProject(cur, desc)
		if err != nil {
			return nil, err
		}
		child.Parent = parent
		child = parent
	}

	if leaf.Parent == nil {
		leaf.Root = true
	}
	l.logger.Debug("project loaded",
		"project", leaf.Path(),
		"dir", leaf.Dir,
		"ancestors", len(leaf.Ancestors()))
	return leaf, nil
}

// LoadDescriptor reads dir/dbmatrix.yaml.
// Returns an empty descriptor and false if the file does not exist.
func (l *ProjectLoader) LoadDescriptor(dir string) (*ProjectDescriptor, bool, error) {
	// Security: Use os.OpenRoot to prevent path traversal attacks
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open project directory: %w", err)
	}
	defer func() {
		_ = root.Close() // Best-effort cleanup
	}()

	file, err := root.Open(entities.DescriptorFile)
	if errors.Is(err, os.ErrNotExist) {
		return &ProjectDescriptor{}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to open project descriptor: %w", err)
	}
	defer func() {
		_ = file.Close() // Best-effort cleanup
	}()

	desc, err := DecodeDescriptor(file)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", filepath.Join(dir, entities.DescriptorFile), err)
	}
	return desc, true, nil
}

// DecodeDescriptor parses a descriptor. Unknown keys are rejected.
func DecodeDescriptor(r io.Reader) (*ProjectDescriptor, error) {
	var desc ProjectDescriptor

	decoder := yaml.NewDecoder(r, yaml.DisallowUnknownField())
	if err := decoder.Decode(&desc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode project descriptor: %w", err)
	}
	return &desc, nil
}

func toProject(dir string, desc *ProjectDescriptor) (*entities.Project, error) {
	p := &entities.Project{
		Name:              desc.Name,
		Dir:               dir,
		BuildDir:          desc.BuildDir,
		DefaultProfile:    desc.DefaultProfile,
		SearchDirectories: desc.SearchDirectories,
		Root:              desc.Root,
		Properties:        make(map[string]string, len(desc.Properties)),
		Hooks:             entities.NewActionContainer(),
	}
	if p.Name == "" {
		p.Name = filepath.Base(dir)
	}

	keys := make([]string, 0, len(desc.Properties))
	for k := range desc.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch v := desc.Properties[k].(type) {
		case nil:
			p.Properties[k] = ""
		case map[string]interface{}, []interface{}:
			return nil, fmt.Errorf("project %s: property %s must be a scalar", dir, k)
		default:
			p.Properties[k] = fmt.Sprintf("%v", v)
		}
	}

	if err := desc.Hooks.Apply(dir, nil, p.Hooks.Add); err != nil {
		return nil, fmt.Errorf("project %s hooks: %w", dir, err)
	}
	return p, nil
}
