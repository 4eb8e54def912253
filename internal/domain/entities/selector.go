package entities

import (
	"fmt"

	"github.com/reglet-dev/dbmatrix/internal/domain/values"
)

// ScopeRef identifies the search scope a selector was found in.
type ScopeRef struct {
	Kind  values.ScopeKind
	Label string
	Root  string
}

// String returns "kind:label".
func (s ScopeRef) String() string {
	if s.Label == "" {
		return string(s.Kind)
	}
	return string(s.Kind) + ":" + s.Label
}

// Selector is a lazy handle on a profile definition.
// It carries only what the scanner saw; parsing the definition is deferred
// until Materialize so that unchosen profiles cost nothing.
type Selector struct {
	Scope          ScopeRef
	Name           values.ProfileName
	Kind           values.ProfileKind
	Directory      string
	DefinitionPath string
}

// Materializer builds a full profile from a selector, one method per kind.
type Materializer interface {
	MaterializeMarkerFile(sel Selector) (*Profile, error)
	MaterializeDirectory(sel Selector) (*Profile, error)
	MaterializeFragment(sel Selector) (*Profile, error)
}

// Materialize builds the profile this selector points at.
func (s Selector) Materialize(m Materializer) (*Profile, error) {
	switch s.Kind {
	case values.KindMarkerFile:
		return m.MaterializeMarkerFile(s)
	case values.KindDirectory:
		return m.MaterializeDirectory(s)
	case values.KindFragment:
		return m.MaterializeFragment(s)
	default:
		return nil, fmt.Errorf("selector %s: unsupported profile kind %q", s.Name, s.Kind)
	}
}

// Origin returns the origin a materialized profile will carry.
func (s Selector) Origin() Origin {
	return Origin{
		Directory:      s.Directory,
		DefinitionPath: s.DefinitionPath,
		Scope:          s.Scope,
	}
}
