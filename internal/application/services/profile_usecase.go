package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/reglet-dev/dbmatrix/internal/application/dto"
	apperrors "github.com/reglet-dev/dbmatrix/internal/application/errors"
	"github.com/reglet-dev/dbmatrix/internal/application/ports"
	"github.com/reglet-dev/dbmatrix/internal/domain/entities"
)

// DefaultAugmentTarget is the properties file augmented when none is named,
// relative to the build directory.
var DefaultAugmentTarget = filepath.Join("resources", "test", "hibernate.properties")

// ProfileUseCase runs the per-invocation profile operations against one
// resolver. Every response is tagged with the invocation's build id.
type ProfileUseCase struct {
	resolver *ProfileResolver
	catalog  *CatalogService
	hooks    *HookService
	plan     *PlanService
	augment  *AugmentService
	validate *ValidateService
	redactor ports.PropertyRedactor
	logger   *slog.Logger
	buildID  string
}

// NewProfileUseCase creates a new profile use case.
func NewProfileUseCase(
	resolver *ProfileResolver,
	catalog *CatalogService,
	hooks *HookService,
	plan *PlanService,
	augment *AugmentService,
	validate *ValidateService,
	redactor ports.PropertyRedactor,
	buildID string,
	logger *slog.Logger,
) *ProfileUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileUseCase{
		resolver: resolver,
		catalog:  catalog,
		hooks:    hooks,
		plan:     plan,
		augment:  augment,
		validate: validate,
		redactor: redactor,
		buildID:  buildID,
		logger:   logger,
	}
}

// Resolver returns the resolver the use case runs against.
func (uc *ProfileUseCase) Resolver() *ProfileResolver {
	return uc.resolver
}

func (uc *ProfileUseCase) metadata(start time.Time) dto.ResponseMetadata {
	return dto.ResponseMetadata{ProcessedAt: start, BuildID: uc.buildID, Duration: time.Since(start)}
}

func (uc *ProfileUseCase) redact(props []dto.Property) []dto.Property {
	if uc.redactor == nil {
		return props
	}
	return uc.redactor.RedactProperties(props)
}

// List summarizes discovered profiles. A selection that cannot be resolved
// leaves the listing without a selected profile.
func (uc *ProfileUseCase) List(ctx context.Context, req dto.ListRequest) (*dto.ListResponse, error) {
	start := time.Now()

	var selected string
	if p, err := uc.resolver.SelectedProfile(ctx); err == nil {
		selected = p.Name().String()
	} else {
		uc.logger.Debug("listing without a selected profile", "error", err)
	}

	resp, err := uc.catalog.List(uc.resolver.Chain(), selected, req)
	if err != nil {
		return nil, err
	}
	resp.Metadata = uc.metadata(start)
	return resp, nil
}

// Resolve runs profile selection and reports where the profile came from.
func (uc *ProfileUseCase) Resolve(ctx context.Context) (*dto.ResolveResponse, error) {
	start := time.Now()
	profile, err := uc.resolver.SelectedProfile(ctx)
	if err != nil {
		return nil, err
	}

	snap := uc.resolver.Snapshot()
	return &dto.ResolveResponse{
		Name:         profile.Name().String(),
		Source:       string(snap.Source),
		Requested:    snap.Requested,
		Scope:        profile.Origin().Scope.String(),
		Directory:    profile.Directory(),
		Available:    snap.Available,
		Replacements: snap.Replacements,
		Metadata:     uc.metadata(start),
	}, nil
}

// Show describes a profile. An empty name shows the selected profile.
// Sensitive property values are redacted.
func (uc *ProfileUseCase) Show(ctx context.Context, name string) (*dto.ProfileInfo, error) {
	start := time.Now()

	var (
		profile *entities.Profile
		source  string
		err     error
	)
	if name == "" {
		profile, err = uc.resolver.SelectedProfile(ctx)
		source = string(uc.resolver.Snapshot().Source)
	} else {
		profile, err = uc.resolver.Profile(ctx, name)
	}
	if err != nil {
		return nil, err
	}

	info := DescribeProfile(profile, uc.resolver.Project())
	info.Source = source
	info.Properties = uc.redact(info.Properties)
	info.Metadata = uc.metadata(start)
	return &info, nil
}

// Select makes name the remembered selection for later invocations.
func (uc *ProfileUseCase) Select(ctx context.Context, name string) error {
	if err := uc.resolver.Remember(ctx, name); err != nil {
		return err
	}
	uc.logger.Info("database profile selected", "profile", name, "build_id", uc.buildID)
	return nil
}

// Augment projects the selected profile's properties into a properties file.
func (uc *ProfileUseCase) Augment(ctx context.Context, req dto.AugmentRequest) (*dto.AugmentResponse, error) {
	profile, err := uc.resolver.SelectedProfile(ctx)
	if err != nil {
		return nil, err
	}
	path := req.Path
	if path == "" {
		path = filepath.Join(uc.resolver.Project().BuildDirectory(), DefaultAugmentTarget)
	}
	return uc.augment.AugmentFile(ctx, path, profile)
}

// Plan builds the test task plan. System properties are redacted.
func (uc *ProfileUseCase) Plan(ctx context.Context, req dto.PlanRequest) (*dto.PlanResponse, error) {
	start := time.Now()
	resp, err := uc.plan.Plan(ctx, uc.resolver, req)
	if err != nil {
		return nil, err
	}
	for i := range resp.Tasks {
		resp.Tasks[i].SystemProperties = uc.redact(resp.Tasks[i].SystemProperties)
	}
	resp.Metadata = uc.metadata(start)
	return resp, nil
}

// RunHooks runs one hook phase of the selected profile and the project.
func (uc *ProfileUseCase) RunHooks(ctx context.Context, req dto.HookRequest) error {
	phase, err := entities.ParseHookPhase(req.Phase)
	if err != nil {
		return apperrors.NewValidationError("phase", err.Error())
	}
	profile, err := uc.resolver.SelectedProfile(ctx)
	if err != nil {
		return err
	}

	var (
		test   *entities.TestDescriptor
		result *entities.TestResult
	)
	if req.TestClass != "" || req.TestName != "" || req.TestID != "" {
		id := req.TestID
		if id == "" {
			id = req.TestClass + "#" + req.TestName
		}
		test = &entities.TestDescriptor{ID: id, ClassName: req.TestClass, Name: req.TestName}
	}
	if phase == entities.PhaseAfterEachTest && req.Outcome != "" {
		result = &entities.TestResult{Outcome: req.Outcome}
	}

	uc.logger.Debug("running hook phase",
		"phase", string(phase),
		"profile", profile.Name().String(),
		"build_id", uc.buildID)
	return uc.hooks.RunPhase(ctx, phase, profile, uc.resolver.Project().Hooks, test, result)
}

// Validate materializes every discovered definition.
func (uc *ProfileUseCase) Validate(ctx context.Context) (*dto.ValidateResponse, error) {
	start := time.Now()
	resp, err := uc.validate.Validate(ctx, uc.resolver.Chain())
	if resp != nil {
		resp.Metadata = uc.metadata(start)
	}
	if err != nil {
		return resp, fmt.Errorf("validating profile definitions: %w", err)
	}
	return resp, nil
}
