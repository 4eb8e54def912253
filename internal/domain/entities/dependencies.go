package entities

import "github.com/reglet-dev/dbmatrix/internal/domain/values"

// DependencySet is the opaque handle for a profile's extra test dependencies.
// Files are artifacts found next to a flat profile's properties file.
// Notations are coordinates declared in a rich definition; resolving them is
// the build tool's job.
type DependencySet struct {
	name      string
	files     []string
	notations []string
}

// NewDependencySet creates the dependency set for a profile,
// named "profileDependencies<Name>".
func NewDependencySet(profile values.ProfileName) *DependencySet {
	return &DependencySet{name: "profileDependencies" + profile.Capitalized()}
}

// Name returns the dependency configuration name.
func (d *DependencySet) Name() string {
	return d.name
}

// Files returns the file artifacts.
func (d *DependencySet) Files() []string {
	return append([]string(nil), d.files...)
}

// Notations returns the declared coordinates.
func (d *DependencySet) Notations() []string {
	return append([]string(nil), d.notations...)
}

// Len returns the number of dependencies of both sorts.
func (d *DependencySet) Len() int {
	if d == nil {
		return 0
	}
	return len(d.files) + len(d.notations)
}

func (d *DependencySet) addFile(path string) {
	for _, f := range d.files {
		if f == path {
			return
		}
	}
	d.files = append(d.files, path)
}

func (d *DependencySet) addNotation(notation string) {
	for _, n := range d.notations {
		if n == notation {
			return
		}
	}
	d.notations = append(d.notations, notation)
}
