// Package resolution models the resolve-once lifecycle of the selected profile.
package resolution

import (
	"github.com/reglet-dev/dbmatrix/internal/domain/entities"
	"github.com/reglet-dev/dbmatrix/internal/domain/values"
)

// Phase is the tag of a State.
type Phase int

const (
	// Unresolved means no query has run yet
	Unresolved Phase = iota
	// Resolved means a profile was selected
	Resolved
	// Failed means the search ran and failed; it is terminal
	Failed
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case Unresolved:
		return "unresolved"
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is the sum type Unresolved | Resolved{Profile, Source} | Failed{Err}.
// The zero value is Unresolved. Callers guard it with their own lock.
type State struct {
	profile      *entities.Profile
	err          error
	source       values.ResolutionSource
	requested    string
	available    []string
	phase        Phase
	replacements int
}

// Phase returns the current tag.
func (s *State) Phase() Phase {
	return s.phase
}

// IsResolved reports whether a profile is held.
func (s *State) IsResolved() bool {
	return s.phase == Resolved
}

// Profile returns the held profile, nil unless Resolved.
func (s *State) Profile() *entities.Profile {
	return s.profile
}

// Source returns where the selected name came from.
func (s *State) Source() values.ResolutionSource {
	return s.source
}

// Requested returns the name the search looked for.
func (s *State) Requested() string {
	return s.requested
}

// Err returns the failure, nil unless Failed.
func (s *State) Err() error {
	return s.err
}

// Available returns the names known to the search.
func (s *State) Available() []string {
	return append([]string(nil), s.available...)
}

// Replacements counts how many times an injection replaced a resolved profile.
func (s *State) Replacements() int {
	return s.replacements
}

// Resolve moves Unresolved to Resolved. It reports false when the state has
// already left Unresolved.
func (s *State) Resolve(p *entities.Profile, source values.ResolutionSource, requested string, available []string) bool {
	if s.phase != Unresolved {
		return false
	}
	s.phase = Resolved
	s.profile = p
	s.source = source
	s.requested = requested
	s.available = append([]string(nil), available...)
	return true
}

// Fail moves Unresolved to Failed. It reports false when the state has
// already left Unresolved.
func (s *State) Fail(err error, requested string, available []string) bool {
	if s.phase != Unresolved {
		return false
	}
	s.phase = Failed
	s.err = err
	s.requested = requested
	s.available = append([]string(nil), available...)
	return true
}

// Inject forces the held profile. It returns the profile it replaced, if any.
// Injection over a failure clears the failure.
func (s *State) Inject(p *entities.Profile) (replaced *entities.Profile) {
	if s.phase == Resolved && s.profile != nil {
		replaced = s.profile
		s.replacements++
	}
	s.phase = Resolved
	s.profile = p
	s.err = nil
	s.source = values.SourceInjected
	s.requested = p.Name().String()
	return replaced
}
