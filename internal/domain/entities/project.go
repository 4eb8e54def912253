package entities

import (
	"path/filepath"
)

// Fixed layout names.
const (
	// StandardDirectory is the profile directory searched in every project.
	StandardDirectory = "databases"
	// DescriptorFile marks a project directory.
	DescriptorFile = "dbmatrix.yaml"
	// DefaultBuildDirectory is used when the descriptor names none.
	DefaultBuildDirectory = "build"
	// DefaultProfileName is the last fallback of name selection.
	DefaultProfileName = "h2"
)

// Project is one node of the project hierarchy.
type Project struct {
	Properties        map[string]string
	Hooks             *ActionContainer
	Parent            *Project
	Name              string
	Dir               string
	BuildDir          string
	DefaultProfile    string
	SearchDirectories []string
	Root              bool
}

// Path returns a gradle-like project path (":parent:child").
func (p *Project) Path() string {
	if p.Parent == nil {
		return ":"
	}
	parent := p.Parent.Path()
	if parent == ":" {
		return ":" + p.Name
	}
	return parent + ":" + p.Name
}

// DatabasesDir returns the project's standard profile directory.
func (p *Project) DatabasesDir() string {
	return filepath.Join(p.Dir, StandardDirectory)
}

// BuildDirectory returns the absolute build directory.
func (p *Project) BuildDirectory() string {
	dir := p.BuildDir
	if dir == "" {
		dir = DefaultBuildDirectory
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(p.Dir, dir)
}

// StashPath returns the location of the project's selection memo.
func (p *Project) StashPath() string {
	return filepath.Join(p.BuildDirectory(), StashDirectory, StashFile)
}

// Ancestors returns the parent chain, nearest first.
func (p *Project) Ancestors() []*Project {
	var out []*Project
	for cur := p.Parent; cur != nil; cur = cur.Parent {
		out = append(out, cur)
	}
	return out
}

// Property returns a project property.
func (p *Project) Property(key string) (string, bool) {
	v, ok := p.Properties[key]
	return v, ok
}
