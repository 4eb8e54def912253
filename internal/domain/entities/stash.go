package entities

import (
	"fmt"
	"time"

	"github.com/reglet-dev/dbmatrix/internal/domain/values"
)

// Stash file layout.
const (
	StashDirectory = "profile-testing"
	StashFile      = "stash.properties"
	StashKey       = "profileName"
)

// StashRecord is the persisted name of the last resolved profile.
type StashRecord struct {
	Written     time.Time
	ProfileName values.ProfileName
}

// NewStashRecord creates a record stamped with the given time.
func NewStashRecord(name values.ProfileName, written time.Time) *StashRecord {
	return &StashRecord{ProfileName: name, Written: written}
}

// Matches reports whether the record already holds name.
// A nil record matches nothing.
func (r *StashRecord) Matches(name values.ProfileName) bool {
	if r == nil {
		return false
	}
	return r.ProfileName.Equals(name)
}

// Comment returns the header line written above the key.
func (r *StashRecord) Comment() string {
	return fmt.Sprintf("Database profile stash (%s) - %s", r.ProfileName, r.Written.Format(time.DateOnly))
}
