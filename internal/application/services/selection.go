package services

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/reglet-dev/dbmatrix/internal/application/ports"
	"github.com/reglet-dev/dbmatrix/internal/domain/entities"
	"github.com/reglet-dev/dbmatrix/internal/domain/values"
)

// Property keys honored during selection.
const (
	ProfileNameKey       = "database_profile_name"
	LegacyProfileNameKey = "db"
	CustomDirectoriesKey = "custom_profiles_dir"
)

// NameSelection is the profile name chosen before the search, with its origin.
type NameSelection struct {
	Name   string
	Source values.ResolutionSource
}

// SelectProfileName picks the requested name from the first source that has one:
// project property, system property, legacy project property, legacy system
// property, the stash, the project default, then "h2".
func SelectProfileName(
	project, system ports.PropertySource,
	stashed *entities.StashRecord,
	projectDefault string,
) NameSelection {
	if sel, ok := explicitName(project, system); ok {
		return sel
	}
	if stashed != nil && !stashed.ProfileName.IsEmpty() {
		return NameSelection{Name: stashed.ProfileName.String(), Source: values.SourceStash}
	}
	return fallbackName(projectDefault)
}

func explicitName(project, system ports.PropertySource) (NameSelection, bool) {
	candidates := []struct {
		src    ports.PropertySource
		key    string
		origin values.ResolutionSource
	}{
		{project, ProfileNameKey, values.SourceProjectProperty},
		{system, ProfileNameKey, values.SourceSystemProperty},
		{project, LegacyProfileNameKey, values.SourceLegacyProjectProperty},
		{system, LegacyProfileNameKey, values.SourceLegacySystemProperty},
	}
	for _, c := range candidates {
		if v, ok := lookup(c.src, c.key); ok {
			return NameSelection{Name: v, Source: c.origin}, true
		}
	}
	return NameSelection{}, false
}

func fallbackName(projectDefault string) NameSelection {
	if d := strings.TrimSpace(projectDefault); d != "" {
		return NameSelection{Name: d, Source: values.SourceProjectDefault}
	}
	return NameSelection{Name: entities.DefaultProfileName, Source: values.SourceDefault}
}

// CustomDirectories returns the configured custom search directories.
// The system property is read first and the project property overrides it.
// A value may list several directories, separated by the OS path list
// separator or commas. Relative entries are taken from baseDir.
func CustomDirectories(project, system ports.PropertySource, baseDir string) []string {
	raw, ok := lookup(system, CustomDirectoriesKey)
	if v, pok := lookup(project, CustomDirectoriesKey); pok {
		raw, ok = v, true
	}
	if !ok {
		return nil
	}
	return SplitDirectories(raw, baseDir)
}

// SplitDirectories splits a directory list and anchors relative entries at baseDir.
func SplitDirectories(raw, baseDir string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == os.PathListSeparator || r == ','
	})
	seen := make(map[string]bool)
	var dirs []string
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if !filepath.IsAbs(f) && baseDir != "" {
			f = filepath.Join(baseDir, f)
		}
		f = filepath.Clean(f)
		if seen[f] {
			continue
		}
		seen[f] = true
		dirs = append(dirs, f)
	}
	return dirs
}

func lookup(src ports.PropertySource, key string) (string, bool) {
	if src == nil {
		return "", false
	}
	v, ok := src.Lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// MapPropertySource is a PropertySource over a plain map.
type MapPropertySource map[string]string

// Lookup implements ports.PropertySource.
func (m MapPropertySource) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}
