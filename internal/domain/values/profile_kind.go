package values

import "fmt"

// ProfileKind tells how a profile is defined on disk.
type ProfileKind string

const (
	// KindMarkerFile is a directory holding a profile.yaml definition
	KindMarkerFile ProfileKind = "marker"
	// KindDirectory is a directory holding driver artifacts and a properties file
	KindDirectory ProfileKind = "directory"
	// KindFragment is one entry of a *.profiles.yaml file
	KindFragment ProfileKind = "fragment"
)

// Validate returns an error if the kind is invalid
func (k ProfileKind) Validate() error {
	switch k {
	case KindMarkerFile, KindDirectory, KindFragment:
		return nil
	default:
		return fmt.Errorf("invalid profile kind: %q", k)
	}
}
