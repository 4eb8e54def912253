// Package services contains domain services for the dbmatrix domain model.
package services

import (
	"sort"

	"github.com/reglet-dev/dbmatrix/internal/domain/entities"
)

// Registry holds the selectors found by one scan pass, keyed by unique name.
//
// A name registered twice is a DuplicateProfileError. Shadowing between
// passes is the ScopeChain's concern, never the registry's.
type Registry struct {
	byName map[string]entities.Selector
	order  []string
	scope  entities.ScopeRef
}

// NewRegistry creates an empty registry for one scope.
func NewRegistry(scope entities.ScopeRef) *Registry {
	return &Registry{
		byName: make(map[string]entities.Selector),
		scope:  scope,
	}
}

// Scope returns the scope this registry was filled from.
func (r *Registry) Scope() entities.ScopeRef {
	return r.scope
}

// Register adds a selector.
func (r *Registry) Register(sel entities.Selector) error {
	name := sel.Name.String()
	if existing, ok := r.byName[name]; ok {
		return entities.NewDuplicateProfileError(existing, sel)
	}
	r.byName[name] = sel
	r.order = append(r.order, name)
	return nil
}

// RegisterAll adds selectors in order, stopping at the first duplicate.
func (r *Registry) RegisterAll(sels []entities.Selector) error {
	for _, sel := range sels {
		if err := r.Register(sel); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the selector for name.
func (r *Registry) Get(name string) (entities.Selector, error) {
	sel, ok := r.byName[name]
	if !ok {
		return entities.Selector{}, &entities.ProfileNotFoundError{Name: name}
	}
	return sel, nil
}

// Contains reports whether name is registered.
func (r *Registry) Contains(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	sort.Strings(names)
	return names
}

// Selectors returns the selectors in registration order.
func (r *Registry) Selectors() []entities.Selector {
	out := make([]entities.Selector, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Len returns the number of registered selectors.
func (r *Registry) Len() int {
	return len(r.order)
}
