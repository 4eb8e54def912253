package entities

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/dbmatrix/internal/domain/values"
)

func newTestProfile(name string) *Profile {
	return NewProfile(values.MustNewProfileName(name), values.KindDirectory, Origin{
		Directory: filepath.Join("databases", name),
		Scope:     ScopeRef{Kind: values.ScopeLocal, Label: ":"},
	})
}

func TestProfile_ShorthandSetters(t *testing.T) {
	p := newTestProfile("pgsql")
	p.SetDialect("PostgreSQLDialect")
	p.SetDriver("org.postgresql.Driver")
	p.SetURL("jdbc:postgresql://localhost/test")
	p.SetUsername("test")
	p.SetPassword("secret")

	assert.Equal(t, []string{DialectKey, DriverKey, URLKey, UsernameKey, PasswordKey}, p.Properties().Keys())
	v, ok := p.Property(URLKey)
	require.True(t, ok)
	assert.Equal(t, "jdbc:postgresql://localhost/test", v)
}

func TestProfile_FreezeLocksDependenciesAndHooks(t *testing.T) {
	p := newTestProfile("mysql")
	require.NoError(t, p.AddDependency("mysql:mysql-connector-java:8.0.33"))
	require.NoError(t, p.AddFileDependency("/tmp/driver.jar"))
	require.NoError(t, p.AddHook(PhaseBeforeTestTask, Action{Name: "start", Command: []string{"docker", "start", "mysql"}}))

	p.Freeze()

	assert.Error(t, p.AddDependency("other:dep:1.0"))
	assert.Error(t, p.AddFileDependency("/tmp/other.jar"))
	assert.Error(t, p.AddHook(PhaseAfterTestTask, Action{Command: []string{"true"}}))

	// properties stay mutable
	p.SetProperty("extra", "1")
	v, _ := p.Property("extra")
	assert.Equal(t, "1", v)

	assert.Equal(t, 2, p.Dependencies().Len())
	assert.Equal(t, 1, p.Hooks().Len())
}

func TestProfile_ApplyPropertiesIsIdempotent(t *testing.T) {
	p := newTestProfile("h2")
	src := PropertyMapOf(DialectKey, "H2Dialect", URLKey, "jdbc:h2:mem:db1")

	p.ApplyProperties(src)
	first := p.Properties().Clone()
	p.ApplyProperties(src)

	assert.Equal(t, first, p.Properties())
	assert.Equal(t, 2, p.Properties().Len())
}

func TestProfile_DependencySetNameAndDedup(t *testing.T) {
	p := newTestProfile("h2")
	require.NoError(t, p.AddFileDependency("a.jar"))
	require.NoError(t, p.AddFileDependency("a.jar"))
	require.NoError(t, p.AddDependency("com.h2database:h2:2.2.224"))
	require.NoError(t, p.AddDependency("com.h2database:h2:2.2.224"))

	deps := p.Dependencies()
	assert.Equal(t, "profileDependenciesH2", deps.Name())
	assert.Equal(t, []string{"a.jar"}, deps.Files())
	assert.Equal(t, []string{"com.h2database:h2:2.2.224"}, deps.Notations())
}

func TestProfile_VisitorsOnEmptyHooks(t *testing.T) {
	p := newTestProfile("h2")
	called := false
	fn := func(Action) { called = true }

	p.VisitBeforeTestTask(fn)
	p.VisitAfterTestTask(fn)
	p.VisitBeforeEachTest(fn)
	p.VisitAfterEachTest(fn)

	assert.False(t, called)
}

func TestProfile_OutputDirectory(t *testing.T) {
	p := newTestProfile("derby")
	assert.Equal(t, filepath.Join("/work/build", "dbProfile", "derby"), p.OutputDirectory("/work/build"))
}

func TestActionContainer_AddAndVisitInOrder(t *testing.T) {
	c := NewActionContainer()
	require.NoError(t, c.Add(PhaseBeforeEachTest, Action{Name: "one", Command: []string{"echo", "1"}}))
	require.NoError(t, c.Add(PhaseBeforeEachTest, Action{Name: "two", Command: []string{"echo", "2"}}))

	var names []string
	c.VisitBeforeEachTest(func(a Action) { names = append(names, a.Name) })
	assert.Equal(t, []string{"one", "two"}, names)
	assert.True(t, c.HasPerTestActions())

	assert.Error(t, c.Add("during-test", Action{Command: []string{"x"}}))
	assert.Error(t, c.Add(PhaseAfterEachTest, Action{Name: "empty"}))
}

func TestParseHookPhase(t *testing.T) {
	p, err := ParseHookPhase("after-each-test")
	require.NoError(t, err)
	assert.Equal(t, PhaseAfterEachTest, p)
	assert.True(t, p.IsPerTest())
	assert.False(t, PhaseBeforeTestTask.IsPerTest())

	_, err = ParseHookPhase("whenever")
	assert.Error(t, err)
}

func TestSelector_MaterializeDispatchesOnKind(t *testing.T) {
	m := &recordingMaterializer{}
	for _, kind := range []values.ProfileKind{values.KindMarkerFile, values.KindDirectory, values.KindFragment} {
		sel := Selector{Name: values.MustNewProfileName("h2"), Kind: kind}
		_, err := sel.Materialize(m)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"marker", "directory", "fragment"}, m.calls)

	_, err := Selector{Name: values.MustNewProfileName("h2"), Kind: "gradle"}.Materialize(m)
	assert.Error(t, err)
}

type recordingMaterializer struct {
	calls []string
}

func (r *recordingMaterializer) MaterializeMarkerFile(sel Selector) (*Profile, error) {
	r.calls = append(r.calls, "marker")
	return NewProfile(sel.Name, sel.Kind, sel.Origin()), nil
}

func (r *recordingMaterializer) MaterializeDirectory(sel Selector) (*Profile, error) {
	r.calls = append(r.calls, "directory")
	return NewProfile(sel.Name, sel.Kind, sel.Origin()), nil
}

func (r *recordingMaterializer) MaterializeFragment(sel Selector) (*Profile, error) {
	r.calls = append(r.calls, "fragment")
	return NewProfile(sel.Name, sel.Kind, sel.Origin()), nil
}

func TestUnresolvedProfileError_Message(t *testing.T) {
	err := NewUnresolvedProfileError("mongodb", []string{"h2", "mysql"})
	assert.Equal(t, "unable to resolve database profile - mongodb [available : h2,mysql]", err.Error())
}

func TestMalformedDefinitionError_Unwrap(t *testing.T) {
	cause := errors.New("bad yaml")
	err := NewMalformedDefinitionError("databases/h2/profile.yaml", "h2", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "h2")
}

func TestDuplicateProfileError_NamesBothLocations(t *testing.T) {
	scope := ScopeRef{Kind: values.ScopeCustom, Label: "/extra"}
	first := Selector{Name: values.MustNewProfileName("h2"), Directory: "/extra/a/h2", Scope: scope}
	second := Selector{Name: values.MustNewProfileName("h2"), Directory: "/extra/b/h2", Scope: scope}

	err := NewDuplicateProfileError(first, second)
	assert.Contains(t, err.Error(), "/extra/a/h2")
	assert.Contains(t, err.Error(), "/extra/b/h2")
	assert.Contains(t, err.Error(), "custom:/extra")
}

func TestProject_Layout(t *testing.T) {
	root := &Project{Name: "root", Dir: "/work"}
	child := &Project{Name: "core", Dir: "/work/core", Parent: root, BuildDir: "out"}
	leaf := &Project{Name: "it", Dir: "/work/core/it", Parent: child}

	assert.Equal(t, ":", root.Path())
	assert.Equal(t, ":core", child.Path())
	assert.Equal(t, ":core:it", leaf.Path())

	assert.Equal(t, []*Project{child, root}, leaf.Ancestors())
	assert.Equal(t, filepath.Join("/work/core", "databases"), child.DatabasesDir())
	assert.Equal(t, filepath.Join("/work/core", "out", "profile-testing", "stash.properties"), child.StashPath())
	assert.Equal(t, filepath.Join("/work", "build"), root.BuildDirectory())
}

func TestStashRecord(t *testing.T) {
	name := values.MustNewProfileName("mysql")
	rec := NewStashRecord(name, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC))

	assert.True(t, rec.Matches(name))
	assert.False(t, rec.Matches(values.MustNewProfileName("h2")))
	assert.Equal(t, "Database profile stash (mysql) - 2026-03-04", rec.Comment())

	var none *StashRecord
	assert.False(t, none.Matches(name))
}
