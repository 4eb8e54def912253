package services

import (
	"sort"

	"github.com/reglet-dev/dbmatrix/internal/domain/entities"
)

// ScopeChain is the ordered list of registries searched during resolution.
//
// Order is pinned: the local databases directory, then custom directories in
// declaration order, then ancestor projects nearest first. The first registry
// holding a name wins; later copies are shadowed.
type ScopeChain struct {
	registries []*Registry
}

// NewScopeChain creates a chain from registries already in precedence order.
func NewScopeChain(registries ...*Registry) *ScopeChain {
	return &ScopeChain{registries: registries}
}

// Append adds a registry at the lowest precedence.
func (c *ScopeChain) Append(r *Registry) {
	c.registries = append(c.registries, r)
}

// Registries returns the registries in precedence order.
func (c *ScopeChain) Registries() []*Registry {
	return append([]*Registry(nil), c.registries...)
}

// Find returns the highest-precedence selector for name.
func (c *ScopeChain) Find(name string) (entities.Selector, *Registry, bool) {
	for _, r := range c.registries {
		if sel, err := r.Get(name); err == nil {
			return sel, r, true
		}
	}
	return entities.Selector{}, nil, false
}

// Available returns every name across all scopes, sorted and de-duplicated.
func (c *ScopeChain) Available() []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range c.registries {
		for _, n := range r.Names() {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	sort.Strings(names)
	return names
}

// Effective returns one selector per available name, the one that wins
// precedence, in name order.
func (c *ScopeChain) Effective() []entities.Selector {
	names := c.Available()
	out := make([]entities.Selector, 0, len(names))
	for _, n := range names {
		if sel, _, ok := c.Find(n); ok {
			out = append(out, sel)
		}
	}
	return out
}

// Shadowed returns selectors hidden by a higher-precedence copy.
func (c *ScopeChain) Shadowed() []entities.Selector {
	seen := make(map[string]bool)
	var out []entities.Selector
	for _, r := range c.registries {
		for _, sel := range r.Selectors() {
			n := sel.Name.String()
			if seen[n] {
				out = append(out, sel)
				continue
			}
			seen[n] = true
		}
	}
	return out
}
