// Package entities contains domain entities for the dbmatrix domain model.
// These are pure domain types with NO infrastructure dependencies.
package entities

import (
	"fmt"
	"path/filepath"

	"github.com/reglet-dev/dbmatrix/internal/domain/values"
)

// Well-known connection property keys.
const (
	DialectKey  = "hibernate.dialect"
	DriverKey   = "hibernate.connection.driver_class"
	URLKey      = "hibernate.connection.url"
	UsernameKey = "hibernate.connection.username"
	PasswordKey = "hibernate.connection.password"
)

// ProfileOutputDirectory is the per-profile directory under the build directory.
const ProfileOutputDirectory = "dbProfile"

// Origin records where a profile was defined.
type Origin struct {
	Directory      string
	DefinitionPath string
	Scope          ScopeRef
}

// Profile is a named bundle of connection properties, extra dependencies and
// lifecycle hooks that targets one database backend.
//
// Invariants:
//   - Name is non-empty and unique within its scope
//   - Dependencies and hooks are fixed once the profile is frozen
//   - Property mutation stays allowed, and ApplyProperties is idempotent
type Profile struct {
	properties   *PropertyMap
	dependencies *DependencySet
	hooks        *ActionContainer
	origin       Origin
	name         values.ProfileName
	kind         values.ProfileKind
	frozen       bool
}

// NewProfile creates an empty, unfrozen profile.
func NewProfile(name values.ProfileName, kind values.ProfileKind, origin Origin) *Profile {
	return &Profile{
		name:         name,
		kind:         kind,
		origin:       origin,
		properties:   NewPropertyMap(),
		dependencies: NewDependencySet(name),
		hooks:        NewActionContainer(),
	}
}

// Name returns the profile name.
func (p *Profile) Name() values.ProfileName {
	return p.name
}

// Kind returns how the profile was defined.
func (p *Profile) Kind() values.ProfileKind {
	return p.kind
}

// Origin returns where the profile was defined.
func (p *Profile) Origin() Origin {
	return p.origin
}

// Directory returns the defining directory.
func (p *Profile) Directory() string {
	return p.origin.Directory
}

// String returns the profile name.
func (p *Profile) String() string {
	return p.name.String()
}

// ===== PROPERTIES =====

// Properties returns the live property map.
func (p *Profile) Properties() *PropertyMap {
	return p.properties
}

// Property returns a single property value.
func (p *Profile) Property(key string) (string, bool) {
	return p.properties.Get(key)
}

// SetProperty inserts or overwrites a property.
func (p *Profile) SetProperty(key, value string) {
	p.properties.Set(key, value)
}

// ApplyProperties replaces all properties with src.
func (p *Profile) ApplyProperties(src *PropertyMap) {
	p.properties.Replace(src)
}

// SetDialect sets the Hibernate dialect.
func (p *Profile) SetDialect(dialect string) { p.SetProperty(DialectKey, dialect) }

// SetDriver sets the JDBC driver class.
func (p *Profile) SetDriver(driverClassName string) { p.SetProperty(DriverKey, driverClassName) }

// SetURL sets the JDBC connection URL.
func (p *Profile) SetURL(url string) { p.SetProperty(URLKey, url) }

// SetUsername sets the connection user.
func (p *Profile) SetUsername(username string) { p.SetProperty(UsernameKey, username) }

// SetPassword sets the connection password.
func (p *Profile) SetPassword(password string) { p.SetProperty(PasswordKey, password) }

// ===== DEPENDENCIES =====

// Dependencies returns the opaque dependency handle.
func (p *Profile) Dependencies() *DependencySet {
	return p.dependencies
}

// AddFileDependency adds a file artifact to the profile's dependencies.
func (p *Profile) AddFileDependency(path string) error {
	if p.frozen {
		return fmt.Errorf("profile %s is frozen: cannot add dependency %s", p.name, path)
	}
	p.dependencies.addFile(path)
	return nil
}

// AddDependency adds a dependency notation to the profile's dependencies.
func (p *Profile) AddDependency(notation string) error {
	if p.frozen {
		return fmt.Errorf("profile %s is frozen: cannot add dependency %s", p.name, notation)
	}
	p.dependencies.addNotation(notation)
	return nil
}

// ===== HOOKS =====

// Hooks returns the profile's lifecycle hooks.
func (p *Profile) Hooks() *ActionContainer {
	return p.hooks
}

// AddHook registers a lifecycle hook.
func (p *Profile) AddHook(phase HookPhase, action Action) error {
	if p.frozen {
		return fmt.Errorf("profile %s is frozen: cannot add %s hook", p.name, phase)
	}
	return p.hooks.Add(phase, action)
}

// VisitBeforeTestTask visits the before-test-task hooks.
func (p *Profile) VisitBeforeTestTask(fn func(Action)) { p.hooks.VisitBeforeTestTask(fn) }

// VisitAfterTestTask visits the after-test-task hooks.
func (p *Profile) VisitAfterTestTask(fn func(Action)) { p.hooks.VisitAfterTestTask(fn) }

// VisitBeforeEachTest visits the before-each-test hooks.
func (p *Profile) VisitBeforeEachTest(fn func(Action)) { p.hooks.VisitBeforeEachTest(fn) }

// VisitAfterEachTest visits the after-each-test hooks.
func (p *Profile) VisitAfterEachTest(fn func(Action)) { p.hooks.VisitAfterEachTest(fn) }

// ===== LIFECYCLE =====

// Freeze ends the definition phase.
func (p *Profile) Freeze() {
	p.frozen = true
}

// OutputDirectory returns <buildDir>/dbProfile/<name>.
func (p *Profile) OutputDirectory(buildDir string) string {
	return ProfileOutputPath(buildDir, p.name.String())
}

// ProfileOutputPath returns the output directory of the named profile.
func ProfileOutputPath(buildDir, name string) string {
	return filepath.Join(buildDir, ProfileOutputDirectory, name)
}
