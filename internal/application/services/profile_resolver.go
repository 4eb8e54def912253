package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/reglet-dev/dbmatrix/internal/application/ports"
	"github.com/reglet-dev/dbmatrix/internal/domain/entities"
	"github.com/reglet-dev/dbmatrix/internal/domain/resolution"
	"github.com/reglet-dev/dbmatrix/internal/domain/services"
	"github.com/reglet-dev/dbmatrix/internal/domain/values"
)

// ResolutionSnapshot is a read-only copy of the resolver state.
type ResolutionSnapshot struct {
	Err          error
	Profile      *entities.Profile
	Source       values.ResolutionSource
	Requested    string
	Available    []string
	Phase        resolution.Phase
	Replacements int
}

// ProfileResolver selects exactly one profile per invocation and remembers it.
//
// The first call to SelectedProfile runs the search; every later call returns
// the same *entities.Profile, or the same error, without searching again.
type ProfileResolver struct {
	projectProps ports.PropertySource
	systemProps  ports.PropertySource
	materializer ports.ProfileMaterializer
	stash        ports.StashRepository
	chain        *services.ScopeChain
	project      *entities.Project
	logger       *slog.Logger
	now          func() time.Time
	profiles     map[string]*entities.Profile
	state        resolution.State
	mu           sync.Mutex
}

// ResolverOption configures a ProfileResolver.
type ResolverOption func(*ProfileResolver)

// WithResolverLogger sets the logger.
func WithResolverLogger(l *slog.Logger) ResolverOption {
	return func(r *ProfileResolver) { r.logger = l }
}

// WithClock sets the time source used to stamp the stash.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *ProfileResolver) { r.now = now }
}

// NewProfileResolver creates a resolver over an already built scope chain.
func NewProfileResolver(
	chain *services.ScopeChain,
	materializer ports.ProfileMaterializer,
	stash ports.StashRepository,
	project *entities.Project,
	projectProps, systemProps ports.PropertySource,
	opts ...ResolverOption,
) *ProfileResolver {
	r := &ProfileResolver{
		chain:        chain,
		materializer: materializer,
		stash:        stash,
		project:      project,
		projectProps: projectProps,
		systemProps:  systemProps,
		logger:       slog.Default(),
		now:          time.Now,
		profiles:     make(map[string]*entities.Profile),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Chain returns the scope chain the resolver searches.
func (r *ProfileResolver) Chain() *services.ScopeChain {
	return r.chain
}

// Project returns the project being resolved for.
func (r *ProfileResolver) Project() *entities.Project {
	return r.project
}

// SelectedProfile returns the profile selected for this invocation,
// running the search on first use.
func (r *ProfileResolver) SelectedProfile(ctx context.Context) (*entities.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state.Phase() {
	case resolution.Resolved:
		return r.state.Profile(), nil
	case resolution.Failed:
		return nil, r.state.Err()
	}

	available := r.chain.Available()
	profile, sel, err := r.resolve(ctx)
	if err != nil {
		r.state.Fail(err, sel.Name, available)
		return nil, err
	}
	r.state.Resolve(profile, sel.Source, sel.Name, available)
	r.logger.Debug("selected database profile",
		"profile", sel.Name,
		"source", string(sel.Source),
		"scope", profile.Origin().Scope.String())
	return profile, nil
}

func (r *ProfileResolver) resolve(ctx context.Context) (*entities.Profile, NameSelection, error) {
	stashPath := r.project.StashPath()
	stashed := r.loadStash(ctx, stashPath)

	sel := SelectProfileName(r.projectProps, r.systemProps, stashed, r.project.DefaultProfile)
	found, _, ok := r.chain.Find(sel.Name)
	if !ok && sel.Source == values.SourceStash {
		// a stashed profile may have been removed since the last run
		r.logger.Warn("stashed database profile no longer exists, using default",
			"profile", sel.Name)
		sel = fallbackName(r.project.DefaultProfile)
		found, _, ok = r.chain.Find(sel.Name)
	}
	if !ok {
		return nil, sel, entities.NewUnresolvedProfileError(sel.Name, r.chain.Available())
	}

	profile, err := r.materializeLocked(found)
	if err != nil {
		return nil, sel, err
	}

	if !stashed.Matches(found.Name) {
		record := entities.NewStashRecord(found.Name, r.now())
		if err := r.stash.Save(ctx, stashPath, record); err != nil {
			return nil, sel, fmt.Errorf("saving profile stash: %w", err)
		}
		r.logger.Debug("profile stash updated", "profile", sel.Name, "path", stashPath)
	}
	return profile, sel, nil
}

// loadStash reads the stash. A stash that cannot be read or holds an invalid
// name counts as absent; the next save overwrites it.
func (r *ProfileResolver) loadStash(ctx context.Context, path string) *entities.StashRecord {
	stashed, err := r.stash.Load(ctx, path)
	if err != nil {
		r.logger.Warn("ignoring unreadable profile stash", "path", path, "error", err)
		return nil
	}
	return stashed
}

// Profile returns the materialized profile for name without changing the
// selection. Each name is materialized at most once per resolver.
func (r *ProfileResolver) Profile(_ context.Context, name string) (*entities.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sel, _, ok := r.chain.Find(name)
	if !ok {
		return nil, entities.NewUnresolvedProfileError(name, r.chain.Available())
	}
	return r.materializeLocked(sel)
}

func (r *ProfileResolver) materializeLocked(sel entities.Selector) (*entities.Profile, error) {
	key := sel.Name.String()
	if p, ok := r.profiles[key]; ok {
		return p, nil
	}
	p, err := sel.Materialize(r.materializer)
	if err != nil {
		return nil, err
	}
	r.profiles[key] = p
	return p, nil
}

// Inject forces the selected profile, bypassing the search. Injecting over an
// existing selection replaces it and is reported as a warning.
func (r *ProfileResolver) Inject(p *entities.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if replaced := r.state.Inject(p); replaced != nil {
		r.logger.Warn("replacing selected profile",
			"previous", replaced.Name().String(),
			"profile", p.Name().String(),
			"replacements", r.state.Replacements())
	}
}

// InjectByName materializes name and injects it.
func (r *ProfileResolver) InjectByName(ctx context.Context, name string) (*entities.Profile, error) {
	p, err := r.Profile(ctx, name)
	if err != nil {
		return nil, err
	}
	r.Inject(p)
	return p, nil
}

// Remember writes name to the stash so later runs without an explicit
// request select it. The name must be available.
func (r *ProfileResolver) Remember(ctx context.Context, name string) error {
	sel, _, ok := r.chain.Find(name)
	if !ok {
		return entities.NewUnresolvedProfileError(name, r.chain.Available())
	}

	path := r.project.StashPath()
	stashed := r.loadStash(ctx, path)
	if stashed.Matches(sel.Name) {
		return nil
	}
	if err := r.stash.Save(ctx, path, entities.NewStashRecord(sel.Name, r.now())); err != nil {
		return fmt.Errorf("saving profile stash: %w", err)
	}
	return nil
}

// Snapshot returns a copy of the current state.
func (r *ProfileResolver) Snapshot() ResolutionSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	return ResolutionSnapshot{
		Phase:        r.state.Phase(),
		Profile:      r.state.Profile(),
		Source:       r.state.Source(),
		Requested:    r.state.Requested(),
		Available:    r.state.Available(),
		Err:          r.state.Err(),
		Replacements: r.state.Replacements(),
	}
}
