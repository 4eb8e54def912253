// Package alloc provides database allocations for profiles and the registry
// that releases them when the build finishes.
package alloc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/reglet-dev/dbmatrix/internal/application/ports"
	"github.com/reglet-dev/dbmatrix/internal/domain/entities"
)

// Ensure interface compliance
var (
	_ ports.DatabaseAllocation = NoAllocation{}
	_ ports.AllocationProvider = StandardProvider{}
	_ ports.AllocationRegistry = (*Registry)(nil)
)

// NoAllocation hands out no database: the profile's own connection
// settings are used as-is.
type NoAllocation struct{}

// BeforeAllTests does nothing.
func (NoAllocation) BeforeAllTests(context.Context, ports.TestTask) error { return nil }

// BeforeEachTest does nothing.
func (NoAllocation) BeforeEachTest(context.Context, entities.TestDescriptor) error { return nil }

// Release does nothing.
func (NoAllocation) Release(context.Context) error { return nil }

// StandardProvider is the default allocation provider.
// Every profile currently gets NoAllocation.
type StandardProvider struct{}

// CreateAllocation returns the allocation for profile.
func (StandardProvider) CreateAllocation(context.Context, *entities.Profile, *entities.Project) (ports.DatabaseAllocation, error) {
	return NoAllocation{}, nil
}

// Registry tracks allocations by profile name.
type Registry struct {
	allocations map[string]ports.DatabaseAllocation
	logger      *slog.Logger
	mu          sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		allocations: make(map[string]ports.DatabaseAllocation),
		logger:      logger,
	}
}

// Register stores allocation for profile, replacing any previous one.
func (r *Registry) Register(profile string, allocation ports.DatabaseAllocation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.allocations[profile] = allocation
}

// Find returns the allocation registered for profile.
func (r *Registry) Find(profile string) (ports.DatabaseAllocation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.allocations[profile]
	return a, ok
}

// Len returns the number of live allocations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.allocations)
}

// ReleaseAll releases every allocation in profile name order and empties the
// registry. Every allocation is released even if some fail.
func (r *Registry) ReleaseAll(ctx context.Context) error {
	r.mu.Lock()
	allocations := r.allocations
	r.allocations = make(map[string]ports.DatabaseAllocation)
	r.mu.Unlock()

	names := make([]string, 0, len(allocations))
	for name := range allocations {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		if err := allocations[name].Release(ctx); err != nil {
			r.logger.Warn("failed to release database allocation", "profile", name, "error", err)
			errs = append(errs, fmt.Errorf("releasing allocation for profile %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Close releases every allocation.
func (r *Registry) Close() error {
	return r.ReleaseAll(context.Background())
}
