// Package container provides dependency injection for the application.
package container

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/reglet-dev/dbmatrix/internal/application/errors"
	"github.com/reglet-dev/dbmatrix/internal/application/services"
	"github.com/reglet-dev/dbmatrix/internal/domain/entities"
	"github.com/reglet-dev/dbmatrix/internal/infrastructure/alloc"
	"github.com/reglet-dev/dbmatrix/internal/infrastructure/config"
	"github.com/reglet-dev/dbmatrix/internal/infrastructure/discovery"
	"github.com/reglet-dev/dbmatrix/internal/infrastructure/execrunner"
	"github.com/reglet-dev/dbmatrix/internal/infrastructure/filesystem"
	"github.com/reglet-dev/dbmatrix/internal/infrastructure/output"
	"github.com/reglet-dev/dbmatrix/internal/infrastructure/redaction"
	"github.com/reglet-dev/dbmatrix/internal/infrastructure/system"
	"github.com/reglet-dev/dbmatrix/internal/infrastructure/testtask"
	"github.com/reglet-dev/dbmatrix/internal/infrastructure/validation"
	"github.com/reglet-dev/dbmatrix/internal/version"
)

// Container holds all application dependencies for one invocation.
// Building it loads the project and scans every search scope; profile
// resolution is deferred to the first use-case call.
type Container struct {
	useCase     *services.ProfileUseCase
	project     *entities.Project
	systemCfg   *system.Config
	systemProps *system.PropertySource
	redactor    *redaction.Redactor
	formatters  *output.FormatterFactory
	allocations *alloc.Registry
	logger      *slog.Logger
	opts        Options
	buildID     string
	searchRoots []string
}

// Options configure the container.
type Options struct {
	Logger *slog.Logger
	// Stdout and Stderr receive hook command output. Default to the
	// process streams.
	Stdout io.Writer
	Stderr io.Writer
	// Now stamps stash and augmented files. Defaults to time.Now.
	Now func() time.Time
	// ProjectProperties are -P overrides, layered over the descriptor's
	// properties.
	ProjectProperties map[string]string
	// SystemOverrides are -D overrides, layered over the environment and
	// the tool config.
	SystemOverrides  map[string]string
	SystemConfigPath string
	ProjectDir       string
	// ToolVersion is checked against tool_version in profile definitions.
	// Defaults to the build version.
	ToolVersion string
	// DryRun prints hook commands instead of running them.
	DryRun bool
}

// New creates a new dependency injection container.
func New(ctx context.Context, opts Options) (*Container, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ProjectDir == "" {
		opts.ProjectDir = "."
	}
	if opts.ToolVersion == "" {
		opts.ToolVersion = version.Version
	}

	buildID := uuid.NewString()
	logger := opts.Logger.With("build_id", buildID)

	// Load system config
	systemCfg, err := system.NewConfigLoader().Load(opts.SystemConfigPath)
	if err != nil {
		return nil, apperrors.NewConfigurationError("system config", "failed to load "+opts.SystemConfigPath, err)
	}

	// Initialize redactor; env values read by definitions are tracked
	tracked := redaction.NewProvider()
	redactor, err := redaction.New(redaction.Config{
		Tracked:         tracked,
		Patterns:        systemCfg.Redaction.Patterns,
		Paths:           systemCfg.Redaction.Paths,
		HashMode:        systemCfg.Redaction.HashMode.Enabled,
		Salt:            systemCfg.Redaction.HashMode.Salt,
		DisableGitleaks: systemCfg.Redaction.DisableGitleaks,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redactor: %w", err)
	}

	project, err := config.NewProjectLoader(logger).Load(ctx, opts.ProjectDir)
	if err != nil {
		return nil, err
	}
	projectProps := ProjectProperties(project, opts.ProjectProperties)
	systemProps := system.NewPropertySource(systemCfg, opts.SystemOverrides)

	// Discovery: scan every scope now, materialize lazily
	loader := discovery.NewDefinitionLoader(validation.NewDefinitionValidator(), opts.ToolVersion)
	scanner := discovery.NewScanner(loader, discovery.ScanOptions{
		MarkerFiles:    systemCfg.Discovery.MarkerFiles,
		FragmentSuffix: systemCfg.Discovery.FragmentSuffix,
		Resilient:      systemCfg.Discovery.Resilient,
	}, logger)
	catalog := services.NewCatalogService(scanner, logger)

	customDirs := services.CustomDirectories(projectProps, systemProps, project.Dir)
	chain, err := catalog.Build(ctx, project, customDirs)
	if err != nil {
		return nil, err
	}
	var searchRoots []string
	for _, scope := range services.SearchScopes(project, customDirs) {
		searchRoots = append(searchRoots, scope.Root)
	}

	substitutor := config.NewVariableSubstitutor(nil, tracked)
	materializer := discovery.NewMaterializer(loader, substitutor, project, logger)

	codec := filesystem.NewPropertiesCodec()
	resolver := services.NewProfileResolver(
		chain,
		materializer,
		filesystem.NewStashRepository(codec),
		project,
		projectProps,
		systemProps,
		services.WithResolverLogger(logger),
		services.WithClock(opts.Now),
	)

	runner := execrunner.New(execrunner.Options{
		Stdout:   opts.Stdout,
		Stderr:   opts.Stderr,
		Redactor: redactor,
		Logger:   logger,
		DryRun:   opts.DryRun,
	})
	hooks := services.NewHookService(runner, logger)

	allocations := alloc.NewRegistry(logger)
	plan := services.NewPlanService(testtask.Factory{}, hooks, alloc.StandardProvider{}, allocations, logger)

	useCase := services.NewProfileUseCase(
		resolver,
		catalog,
		hooks,
		plan,
		services.NewAugmentService(codec, logger, opts.Now),
		services.NewValidateService(materializer, logger),
		redactor,
		buildID,
		logger,
	)

	logger.Debug("container ready",
		"project", project.Path(),
		"dir", project.Dir,
		"scopes", len(chain.Registries()),
		"profiles", len(chain.Available()))

	return &Container{
		useCase:     useCase,
		project:     project,
		systemCfg:   systemCfg,
		systemProps: systemProps,
		redactor:    redactor,
		formatters:  output.NewFormatterFactory(),
		allocations: allocations,
		logger:      logger,
		opts:        opts,
		buildID:     buildID,
		searchRoots: searchRoots,
	}, nil
}

// ProjectProperties layers project properties: ancestors farthest first,
// then the project's own descriptor, then overrides.
func ProjectProperties(project *entities.Project, overrides map[string]string) services.MapPropertySource {
	props := services.MapPropertySource{}
	ancestors := project.Ancestors()
	for i := len(ancestors) - 1; i >= 0; i-- {
		for k, v := range ancestors[i].Properties {
			props[k] = v
		}
	}
	for k, v := range project.Properties {
		props[k] = v
	}
	for k, v := range overrides {
		props[k] = v
	}
	return props
}

// Reload builds a fresh container with the same options, re-scanning every
// search directory. The receiver is not modified.
func (c *Container) Reload(ctx context.Context) (*Container, error) {
	return New(ctx, c.opts)
}

// ProfileUseCase returns the profile use case.
func (c *Container) ProfileUseCase() *services.ProfileUseCase {
	return c.useCase
}

// Project returns the loaded project.
func (c *Container) Project() *entities.Project {
	return c.project
}

// SearchRoots returns the root directory of every search scope in
// precedence order. Roots may not exist.
func (c *Container) SearchRoots() []string {
	return append([]string(nil), c.searchRoots...)
}

// SystemConfig returns the system configuration.
func (c *Container) SystemConfig() *system.Config {
	return c.systemCfg
}

// SystemProperties returns the layered system properties.
func (c *Container) SystemProperties() *system.PropertySource {
	return c.systemProps
}

// Redactor returns the output redactor.
func (c *Container) Redactor() *redaction.Redactor {
	return c.redactor
}

// Formatters returns the output formatter factory.
func (c *Container) Formatters() *output.FormatterFactory {
	return c.formatters
}

// BuildID returns the invocation's unique id.
func (c *Container) BuildID() string {
	return c.buildID
}

// Logger returns the configured logger.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}

// Close releases every database allocation handed out during the invocation.
func (c *Container) Close() error {
	return c.allocations.ReleaseAll(context.Background())
}
