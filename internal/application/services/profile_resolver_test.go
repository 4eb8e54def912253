package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/dbmatrix/internal/domain/entities"
	"github.com/reglet-dev/dbmatrix/internal/domain/resolution"
	"github.com/reglet-dev/dbmatrix/internal/domain/values"
)

var (
	childProject  = &entities.Project{Name: "child", Dir: "/work/child", Parent: rootProject}
	rootProject   = &entities.Project{Name: "root", Dir: "/work"}
	localScopeRef = entities.ScopeRef{Kind: values.ScopeLocal, Label: ":child", Root: "/work/child/databases"}
	parentScope   = entities.ScopeRef{Kind: values.ScopeAncestor, Label: ":", Root: "/work/databases"}
	fixedNow      = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
)

func newResolver(t *testing.T, stash *memoryStash, m *fakeMaterializer, project, system MapPropertySource, scopes ...scopeNames) *ProfileResolver {
	t.Helper()
	return NewProfileResolver(
		chainOf(t, scopes...),
		m,
		stash,
		childProject,
		project,
		system,
		WithClock(func() time.Time { return fixedNow }),
	)
}

func TestProfileResolver_MemoizesSelectedProfile(t *testing.T) {
	m := newFakeMaterializer()
	r := newResolver(t, newMemoryStash(), m, MapPropertySource{ProfileNameKey: "mysql"}, nil,
		scopeNames{localScopeRef, []string{"h2", "mysql"}})

	first, err := r.SelectedProfile(context.Background())
	require.NoError(t, err)
	second, err := r.SelectedProfile(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, m.calls["mysql"], "materialized once")
	assert.Equal(t, "mysql", first.Name().String())

	snap := r.Snapshot()
	assert.Equal(t, resolution.Resolved, snap.Phase)
	assert.Equal(t, values.SourceProjectProperty, snap.Source)
	assert.Equal(t, []string{"h2", "mysql"}, snap.Available)
}

func TestProfileResolver_DefaultAndStashFallback(t *testing.T) {
	t.Run("no stash uses default", func(t *testing.T) {
		stash := newMemoryStash()
		r := newResolver(t, stash, newFakeMaterializer(), nil, nil,
			scopeNames{localScopeRef, []string{"h2", "mysql"}})

		p, err := r.SelectedProfile(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "h2", p.Name().String())
		assert.Equal(t, values.SourceDefault, r.Snapshot().Source)

		rec := stash.records[childProject.StashPath()]
		require.NotNil(t, rec)
		assert.Equal(t, "h2", rec.ProfileName.String())
		assert.Equal(t, fixedNow, rec.Written)
	})

	t.Run("stash wins over default", func(t *testing.T) {
		stash := newMemoryStash()
		stash.records[childProject.StashPath()] = entities.NewStashRecord(values.MustNewProfileName("mysql"), fixedNow)
		r := newResolver(t, stash, newFakeMaterializer(), nil, nil,
			scopeNames{localScopeRef, []string{"h2", "mysql"}})

		p, err := r.SelectedProfile(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "mysql", p.Name().String())
		assert.Equal(t, values.SourceStash, r.Snapshot().Source)
		assert.Equal(t, 0, stash.saves, "unchanged name is not re-saved")
	})

	t.Run("stale stash falls back to default", func(t *testing.T) {
		stash := newMemoryStash()
		stash.records[childProject.StashPath()] = entities.NewStashRecord(values.MustNewProfileName("oracle"), fixedNow)
		r := newResolver(t, stash, newFakeMaterializer(), nil, nil,
			scopeNames{localScopeRef, []string{"h2"}})

		p, err := r.SelectedProfile(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "h2", p.Name().String())
		assert.Equal(t, 1, stash.saves)
	})
}

func TestProfileResolver_NameSourcePrecedence(t *testing.T) {
	tests := []struct {
		name    string
		project MapPropertySource
		system  MapPropertySource
		want    string
		source  values.ResolutionSource
	}{
		{
			name:    "project property beats system property",
			project: MapPropertySource{ProfileNameKey: "mysql"},
			system:  MapPropertySource{ProfileNameKey: "pgsql"},
			want:    "mysql",
			source:  values.SourceProjectProperty,
		},
		{
			name:    "system property beats legacy key",
			project: MapPropertySource{LegacyProfileNameKey: "mysql"},
			system:  MapPropertySource{ProfileNameKey: "pgsql"},
			want:    "pgsql",
			source:  values.SourceSystemProperty,
		},
		{
			name:    "legacy project key",
			project: MapPropertySource{LegacyProfileNameKey: "mysql"},
			want:    "mysql",
			source:  values.SourceLegacyProjectProperty,
		},
		{
			name:   "legacy system key",
			system: MapPropertySource{LegacyProfileNameKey: "pgsql"},
			want:   "pgsql",
			source: values.SourceLegacySystemProperty,
		},
		{
			name:    "blank values are ignored",
			project: MapPropertySource{ProfileNameKey: "  "},
			want:    "h2",
			source:  values.SourceDefault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newResolver(t, newMemoryStash(), newFakeMaterializer(), tt.project, tt.system,
				scopeNames{localScopeRef, []string{"h2", "mysql", "pgsql"}})

			p, err := r.SelectedProfile(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Name().String())
			assert.Equal(t, tt.source, r.Snapshot().Source)
		})
	}
}

func TestProfileResolver_ProjectDefault(t *testing.T) {
	project := &entities.Project{Name: "app", Dir: "/app", DefaultProfile: "derby"}
	r := NewProfileResolver(
		chainOf(t, scopeNames{localScopeRef, []string{"h2", "derby"}}),
		newFakeMaterializer(), newMemoryStash(), project, nil, nil)

	p, err := r.SelectedProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "derby", p.Name().String())
	assert.Equal(t, values.SourceProjectDefault, r.Snapshot().Source)
}

func TestProfileResolver_UnresolvedIsTerminal(t *testing.T) {
	m := newFakeMaterializer()
	stash := newMemoryStash()
	r := newResolver(t, stash, m, MapPropertySource{ProfileNameKey: "mongodb"}, nil,
		scopeNames{localScopeRef, []string{"h2"}},
		scopeNames{parentScope, []string{"mysql", "h2"}})

	_, err := r.SelectedProfile(context.Background())
	var unresolved *entities.UnresolvedProfileError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "mongodb", unresolved.Requested)
	assert.Equal(t, []string{"h2", "mysql"}, unresolved.Available)

	_, again := r.SelectedProfile(context.Background())
	assert.Same(t, err, again, "failure is remembered")
	assert.Equal(t, resolution.Failed, r.Snapshot().Phase)
	assert.Equal(t, 0, stash.saves)
}

func TestProfileResolver_MaterializeFailure(t *testing.T) {
	m := newFakeMaterializer()
	m.fail["h2"] = entities.NewMalformedDefinitionError("/work/child/databases/h2/profile.yaml", "h2", errors.New("bad"))
	r := newResolver(t, newMemoryStash(), m, nil, nil, scopeNames{localScopeRef, []string{"h2"}})

	_, err := r.SelectedProfile(context.Background())
	var malformed *entities.MalformedDefinitionError
	require.ErrorAs(t, err, &malformed)

	_, err = r.SelectedProfile(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, m.calls["h2"], "no retry after failure")
}

func TestProfileResolver_HigherScopeShadowsAncestor(t *testing.T) {
	r := newResolver(t, newMemoryStash(), newFakeMaterializer(), MapPropertySource{ProfileNameKey: "h2"}, nil,
		scopeNames{localScopeRef, []string{"h2"}},
		scopeNames{parentScope, []string{"h2", "mysql"}})

	p, err := r.SelectedProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, values.ScopeLocal, p.Origin().Scope.Kind)
}

func TestProfileResolver_StashSavedOnlyOnChange(t *testing.T) {
	stash := new(MockStash)
	path := childProject.StashPath()
	stash.On("Load", mock.Anything, path).Return(entities.NewStashRecord(values.MustNewProfileName("h2"), fixedNow), nil)
	stash.On("Save", mock.Anything, path, mock.MatchedBy(func(r *entities.StashRecord) bool {
		return r.ProfileName.String() == "mysql"
	})).Return(nil).Once()

	r := NewProfileResolver(
		chainOf(t, scopeNames{localScopeRef, []string{"h2", "mysql"}}),
		newFakeMaterializer(), stash, childProject,
		MapPropertySource{ProfileNameKey: "mysql"}, nil)
	_, err := r.SelectedProfile(context.Background())
	require.NoError(t, err)

	unchanged := new(MockStash)
	unchanged.On("Load", mock.Anything, path).Return(entities.NewStashRecord(values.MustNewProfileName("h2"), fixedNow), nil)
	r2 := NewProfileResolver(
		chainOf(t, scopeNames{localScopeRef, []string{"h2", "mysql"}}),
		newFakeMaterializer(), unchanged, childProject,
		MapPropertySource{ProfileNameKey: "h2"}, nil)
	_, err = r2.SelectedProfile(context.Background())
	require.NoError(t, err)

	stash.AssertExpectations(t)
	unchanged.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestProfileResolver_CorruptStashIsIgnored(t *testing.T) {
	corrupt := errors.New(`invalid profile stash: profile name "my db" must not contain whitespace`)

	t.Run("explicit name wins and overwrites", func(t *testing.T) {
		var logs bytes.Buffer
		stash := new(MockStash)
		path := childProject.StashPath()
		stash.On("Load", mock.Anything, path).Return(nil, corrupt)
		stash.On("Save", mock.Anything, path, mock.MatchedBy(func(r *entities.StashRecord) bool {
			return r.ProfileName.String() == "h2"
		})).Return(nil).Once()

		r := NewProfileResolver(
			chainOf(t, scopeNames{localScopeRef, []string{"h2", "mysql"}}),
			newFakeMaterializer(), stash, childProject,
			MapPropertySource{ProfileNameKey: "h2"}, nil,
			WithResolverLogger(slog.New(slog.NewTextHandler(&logs, nil))))

		p, err := r.SelectedProfile(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "h2", p.Name().String())
		assert.Equal(t, values.SourceProjectProperty, r.Snapshot().Source)
		assert.Contains(t, logs.String(), "ignoring unreadable profile stash")
		stash.AssertExpectations(t)
	})

	t.Run("no explicit name falls back to default", func(t *testing.T) {
		stash := new(MockStash)
		stash.On("Load", mock.Anything, mock.Anything).Return(nil, corrupt)
		stash.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

		r := NewProfileResolver(
			chainOf(t, scopeNames{localScopeRef, []string{"h2", "mysql"}}),
			newFakeMaterializer(), stash, childProject, nil, nil)

		p, err := r.SelectedProfile(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "h2", p.Name().String())
		assert.Equal(t, values.SourceDefault, r.Snapshot().Source)
	})

	t.Run("remember overwrites", func(t *testing.T) {
		stash := new(MockStash)
		stash.On("Load", mock.Anything, mock.Anything).Return(nil, corrupt)
		stash.On("Save", mock.Anything, mock.Anything, mock.MatchedBy(func(r *entities.StashRecord) bool {
			return r.ProfileName.String() == "mysql"
		})).Return(nil).Once()

		r := NewProfileResolver(
			chainOf(t, scopeNames{localScopeRef, []string{"h2", "mysql"}}),
			newFakeMaterializer(), stash, childProject, nil, nil)

		require.NoError(t, r.Remember(context.Background(), "mysql"))
		stash.AssertExpectations(t)
	})
}

func TestProfileResolver_StashSaveErrorFails(t *testing.T) {
	stash := new(MockStash)
	stash.On("Load", mock.Anything, mock.Anything).Return(nil, nil)
	stash.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full"))

	r := NewProfileResolver(
		chainOf(t, scopeNames{localScopeRef, []string{"h2"}}),
		newFakeMaterializer(), stash, childProject, nil, nil)

	_, err := r.SelectedProfile(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestProfileResolver_InjectReplacesAndWarns(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	r := NewProfileResolver(
		chainOf(t, scopeNames{localScopeRef, []string{"h2", "mysql"}}),
		newFakeMaterializer(), newMemoryStash(), childProject, nil, nil,
		WithResolverLogger(logger))

	h2, err := r.SelectedProfile(context.Background())
	require.NoError(t, err)

	mysql, err := r.InjectByName(context.Background(), "mysql")
	require.NoError(t, err)

	got, err := r.SelectedProfile(context.Background())
	require.NoError(t, err)
	assert.Same(t, mysql, got)
	assert.NotSame(t, h2, got)

	snap := r.Snapshot()
	assert.Equal(t, 1, snap.Replacements)
	assert.Equal(t, values.SourceInjected, snap.Source)
	assert.Contains(t, logs.String(), "replacing selected profile")
	assert.Contains(t, logs.String(), "previous=h2")
}

func TestProfileResolver_InjectBeforeResolutionSkipsSearch(t *testing.T) {
	stash := newMemoryStash()
	m := newFakeMaterializer()
	r := newResolver(t, stash, m, nil, nil, scopeNames{localScopeRef, []string{"h2", "mysql"}})

	injected, err := r.InjectByName(context.Background(), "mysql")
	require.NoError(t, err)
	got, err := r.SelectedProfile(context.Background())
	require.NoError(t, err)

	assert.Same(t, injected, got)
	assert.Equal(t, 0, r.Snapshot().Replacements)
	assert.Equal(t, 0, m.calls["h2"])
	assert.Equal(t, 0, stash.saves)

	_, err = r.InjectByName(context.Background(), "mongodb")
	var unresolved *entities.UnresolvedProfileError
	assert.ErrorAs(t, err, &unresolved)
}

func TestProfileResolver_ProfileSharesInstancesWithSelection(t *testing.T) {
	m := newFakeMaterializer()
	r := newResolver(t, newMemoryStash(), m, nil, nil, scopeNames{localScopeRef, []string{"h2", "mysql"}})

	selected, err := r.SelectedProfile(context.Background())
	require.NoError(t, err)
	byName, err := r.Profile(context.Background(), "h2")
	require.NoError(t, err)

	assert.Same(t, selected, byName)
	assert.Equal(t, 1, m.calls["h2"])
}

func TestProfileResolver_Remember(t *testing.T) {
	stash := newMemoryStash()
	r := newResolver(t, stash, newFakeMaterializer(), nil, nil, scopeNames{localScopeRef, []string{"h2", "mysql"}})

	require.NoError(t, r.Remember(context.Background(), "mysql"))
	require.NoError(t, r.Remember(context.Background(), "mysql"))
	assert.Equal(t, 1, stash.saves)
	assert.Equal(t, "mysql", stash.records[childProject.StashPath()].ProfileName.String())

	var unresolved *entities.UnresolvedProfileError
	assert.ErrorAs(t, r.Remember(context.Background(), "oracle"), &unresolved)
}
