package entities

import (
	"fmt"
	"strings"

	"github.com/reglet-dev/dbmatrix/internal/domain/values"
)

// DuplicateProfileError indicates two definitions with the same name in one scan pass.
type DuplicateProfileError struct {
	Name   values.ProfileName
	Scope  ScopeRef
	First  string
	Second string
}

func (e *DuplicateProfileError) Error() string {
	return fmt.Sprintf(
		"duplicate database profile %q in %s scope: defined by %s and %s",
		e.Name.String(), e.Scope.String(), e.First, e.Second,
	)
}

// NewDuplicateProfileError creates a new duplicate profile error.
func NewDuplicateProfileError(first, second Selector) *DuplicateProfileError {
	return &DuplicateProfileError{
		Name:   second.Name,
		Scope:  second.Scope,
		First:  selectorLocation(first),
		Second: selectorLocation(second),
	}
}

// UnresolvedProfileError indicates the requested name exists in no scope.
type UnresolvedProfileError struct {
	Requested string
	Available []string
}

func (e *UnresolvedProfileError) Error() string {
	return fmt.Sprintf(
		"unable to resolve database profile - %s [available : %s]",
		e.Requested, strings.Join(e.Available, ","),
	)
}

// NewUnresolvedProfileError creates a new unresolved profile error.
func NewUnresolvedProfileError(requested string, available []string) *UnresolvedProfileError {
	return &UnresolvedProfileError{
		Requested: requested,
		Available: available,
	}
}

// MalformedDefinitionError indicates a recognized definition file could not be parsed.
type MalformedDefinitionError struct {
	Cause   error
	Path    string
	Profile string
}

func (e *MalformedDefinitionError) Error() string {
	if e.Profile == "" {
		return fmt.Sprintf("malformed profile definition %s: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("malformed definition for database profile %s (%s): %v", e.Profile, e.Path, e.Cause)
}

func (e *MalformedDefinitionError) Unwrap() error {
	return e.Cause
}

// NewMalformedDefinitionError creates a new malformed definition error.
func NewMalformedDefinitionError(path, profile string, cause error) *MalformedDefinitionError {
	return &MalformedDefinitionError{
		Path:    path,
		Profile: profile,
		Cause:   cause,
	}
}

// ProfileNotFoundError indicates a registry lookup miss.
type ProfileNotFoundError struct {
	Name string
}

func (e *ProfileNotFoundError) Error() string {
	return fmt.Sprintf("database profile not found: %s", e.Name)
}

func selectorLocation(s Selector) string {
	if s.DefinitionPath != "" {
		return s.DefinitionPath
	}
	return s.Directory
}
