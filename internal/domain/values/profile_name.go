// Package values contains immutable value objects for the dbmatrix domain.
package values

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ProfileName identifies a database profile.
// Names come from directory names or fragment keys, so they must be usable as
// a single path element and as a task name suffix.
type ProfileName struct {
	value string
}

// NewProfileName creates a ProfileName with validation.
func NewProfileName(name string) (ProfileName, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ProfileName{}, fmt.Errorf("profile name cannot be empty")
	}
	if name == "." || name == ".." {
		return ProfileName{}, fmt.Errorf("profile name %q is reserved", name)
	}
	if strings.ContainsAny(name, `/\`) {
		return ProfileName{}, fmt.Errorf("profile name %q must not contain path separators", name)
	}
	if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return ProfileName{}, fmt.Errorf("profile name %q must not contain whitespace", name)
	}
	return ProfileName{value: name}, nil
}

// MustNewProfileName creates a ProfileName or panics
func MustNewProfileName(name string) ProfileName {
	pn, err := NewProfileName(name)
	if err != nil {
		panic(err)
	}
	return pn
}

// String returns the string representation
func (p ProfileName) String() string {
	return p.value
}

// IsEmpty returns true if this is the zero value
func (p ProfileName) IsEmpty() bool {
	return p.value == ""
}

// Equals checks if two profile names are equal
func (p ProfileName) Equals(other ProfileName) bool {
	return p.value == other.value
}

// Capitalized returns the name with its first rune upper-cased ("h2" -> "H2").
func (p ProfileName) Capitalized() string {
	if p.value == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(p.value)
	return string(unicode.ToUpper(r)) + p.value[size:]
}

// MarshalText implements encoding.TextMarshaler
func (p ProfileName) MarshalText() ([]byte, error) {
	return []byte(p.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *ProfileName) UnmarshalText(data []byte) error {
	name, err := NewProfileName(string(data))
	if err != nil {
		return err
	}
	*p = name
	return nil
}
