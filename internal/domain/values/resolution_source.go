package values

// ResolutionSource records where the selected profile name came from.
type ResolutionSource string

const (
	// SourceProjectProperty is the database_profile_name project property
	SourceProjectProperty ResolutionSource = "project-property"
	// SourceSystemProperty is the database_profile_name system property
	SourceSystemProperty ResolutionSource = "system-property"
	// SourceLegacyProjectProperty is the legacy db project property
	SourceLegacyProjectProperty ResolutionSource = "legacy-project-property"
	// SourceLegacySystemProperty is the legacy db system property
	SourceLegacySystemProperty ResolutionSource = "legacy-system-property"
	// SourceStash is the name remembered from the previous run
	SourceStash ResolutionSource = "stash"
	// SourceProjectDefault is the default_profile of the project descriptor
	SourceProjectDefault ResolutionSource = "project-default"
	// SourceDefault is the built-in default name
	SourceDefault ResolutionSource = "default"
	// SourceInjected means a consumer forced the profile
	SourceInjected ResolutionSource = "injected"
)

// IsExplicit returns true if the name was requested by the user for this run.
func (s ResolutionSource) IsExplicit() bool {
	switch s {
	case SourceProjectProperty, SourceSystemProperty,
		SourceLegacyProjectProperty, SourceLegacySystemProperty:
		return true
	default:
		return false
	}
}
