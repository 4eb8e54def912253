package values

import "fmt"

// ScopeKind is one precedence level searched during resolution.
type ScopeKind string

const (
	// ScopeLocal is the current project's standard databases directory
	ScopeLocal ScopeKind = "local"
	// ScopeCustom is an explicitly configured search directory
	ScopeCustom ScopeKind = "custom"
	// ScopeAncestor is a parent project's standard databases directory
	ScopeAncestor ScopeKind = "ancestor"
)

// Precedence returns the rank of this kind in the search order.
// Lower values are searched first.
//
// Precedence: Local (0) > Custom (1) > Ancestor (2)
func (k ScopeKind) Precedence() int {
	switch k {
	case ScopeLocal:
		return 0
	case ScopeCustom:
		return 1
	case ScopeAncestor:
		return 2
	default:
		return -1
	}
}

// Validate returns an error if the scope kind is invalid
func (k ScopeKind) Validate() error {
	switch k {
	case ScopeLocal, ScopeCustom, ScopeAncestor:
		return nil
	default:
		return fmt.Errorf("invalid scope kind: %q", k)
	}
}
