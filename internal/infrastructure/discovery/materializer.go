package discovery

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/reglet-dev/dbmatrix/internal/domain/entities"
	"github.com/reglet-dev/dbmatrix/internal/infrastructure/config"
	"github.com/reglet-dev/dbmatrix/internal/infrastructure/filesystem"
)

// Materializer builds full profiles from selectors. Every failure is reported
// as a MalformedDefinitionError naming the definition file and the profile.
type Materializer struct {
	loader      *DefinitionLoader
	substitutor *config.VariableSubstitutor
	project     *entities.Project
	logger      *slog.Logger
}

// NewMaterializer creates a materializer. project supplies the template
// variables (project dir, build dir); it may be nil.
func NewMaterializer(
	loader *DefinitionLoader,
	substitutor *config.VariableSubstitutor,
	project *entities.Project,
	logger *slog.Logger,
) *Materializer {
	if logger == nil {
		logger = slog.Default()
	}
	if substitutor == nil {
		substitutor = config.NewVariableSubstitutor(nil, nil)
	}
	return &Materializer{
		loader:      loader,
		substitutor: substitutor,
		project:     project,
		logger:      logger,
	}
}

// MaterializeMarkerFile builds a profile from a profile.yaml definition.
// A hibernate.properties file next to it (or under resources/) provides
// base properties that the definition overrides.
func (m *Materializer) MaterializeMarkerFile(sel entities.Selector) (*entities.Profile, error) {
	def, err := m.loader.LoadDefinition(sel.DefinitionPath)
	if err != nil {
		return nil, malformed(sel, err)
	}

	base := entities.NewPropertyMap()
	for _, path := range []string{
		filepath.Join(sel.Directory, PropertiesFile),
		filepath.Join(sel.Directory, ResourcesDirectory, PropertiesFile),
	} {
		if !isRegularFile(path) {
			continue
		}
		props, err := readProperties(path)
		if err != nil {
			return nil, malformed(sel, err)
		}
		base = props
		break
	}
	return m.build(sel, def, base)
}

// MaterializeDirectory builds a profile from a flat directory layout: every
// file of the artifact directory other than the properties file becomes a
// file dependency.
func (m *Materializer) MaterializeDirectory(sel entities.Selector) (*entities.Profile, error) {
	profile := entities.NewProfile(sel.Name, sel.Kind, sel.Origin())

	if sel.DefinitionPath != "" {
		props, err := readProperties(sel.DefinitionPath)
		if err != nil {
			return nil, malformed(sel, err)
		}
		if err := m.substitutor.Substitute(props, m.vars(sel)); err != nil {
			return nil, malformed(sel, err)
		}
		profile.ApplyProperties(props)
	}

	artifactDir := sel.Directory
	if isDir(filepath.Join(sel.Directory, DriverDirectory)) {
		artifactDir = filepath.Join(sel.Directory, DriverDirectory)
	}
	entries, err := os.ReadDir(artifactDir)
	if err != nil {
		return nil, malformed(sel, fmt.Errorf("reading artifact directory: %w", err))
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() || entry.Name() == PropertiesFile {
			continue
		}
		if err := profile.AddFileDependency(filepath.Join(artifactDir, entry.Name())); err != nil {
			return nil, err
		}
	}

	profile.Freeze()
	m.logger.Debug("profile materialized",
		"profile", sel.Name.String(),
		"kind", string(sel.Kind),
		"properties", profile.Properties().Len(),
		"dependencies", profile.Dependencies().Len())
	return profile, nil
}

// MaterializeFragment builds a profile from its entry in a *.profiles.yaml file.
func (m *Materializer) MaterializeFragment(sel entities.Selector) (*entities.Profile, error) {
	frag, err := m.loader.LoadFragment(sel.DefinitionPath)
	if err != nil {
		return nil, malformed(sel, err)
	}
	def, ok := frag.Profiles[sel.Name.String()]
	if !ok {
		return nil, malformed(sel, fmt.Errorf("profile %s is no longer defined", sel.Name))
	}
	return m.build(sel, &def, entities.NewPropertyMap())
}

func (m *Materializer) build(sel entities.Selector, def *Definition, base *entities.PropertyMap) (*entities.Profile, error) {
	profile := entities.NewProfile(sel.Name, sel.Kind, sel.Origin())
	vars := m.vars(sel)

	props := base.Clone()
	def.PropertyMap().Each(func(k, v string) { props.Set(k, v) })
	if err := m.substitutor.Substitute(props, vars); err != nil {
		return nil, malformed(sel, err)
	}
	profile.ApplyProperties(props)

	for _, notation := range def.Dependencies {
		if err := profile.AddDependency(notation); err != nil {
			return nil, err
		}
	}
	for _, file := range def.Files {
		path := file
		if !filepath.IsAbs(path) {
			path = filepath.Join(sel.Directory, path)
		}
		if !isRegularFile(path) {
			return nil, malformed(sel, fmt.Errorf("dependency file %s does not exist", file))
		}
		if err := profile.AddFileDependency(path); err != nil {
			return nil, err
		}
	}

	expand := func(s string) (string, error) { return m.substitutor.SubstituteString(s, vars) }
	if err := def.Hooks.Apply(sel.Directory, expand, profile.AddHook); err != nil {
		return nil, malformed(sel, err)
	}

	profile.Freeze()
	m.logger.Debug("profile materialized",
		"profile", sel.Name.String(),
		"kind", string(sel.Kind),
		"properties", profile.Properties().Len(),
		"dependencies", profile.Dependencies().Len())
	return profile, nil
}

func (m *Materializer) vars(sel entities.Selector) map[string]interface{} {
	return config.ProfileVars(m.project, sel.Name.String(), sel.Directory)
}

func readProperties(path string) (*entities.PropertyMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read properties file: %w", err)
	}
	return filesystem.DecodeProperties(data, path)
}

func malformed(sel entities.Selector, err error) error {
	path := sel.DefinitionPath
	if path == "" {
		path = sel.Directory
	}
	return entities.NewMalformedDefinitionError(path, sel.Name.String(), err)
}
