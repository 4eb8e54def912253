package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/reglet-dev/dbmatrix/internal/application/errors"
	"github.com/reglet-dev/dbmatrix/internal/application/dto"
	"github.com/reglet-dev/dbmatrix/internal/application/ports"
	"github.com/reglet-dev/dbmatrix/internal/domain/entities"
)

// Task names and keys used when profiles are applied to test tasks.
const (
	MainTestTask         = "test"
	VariantTaskPrefix    = "test_"
	TestAllProfilesTask  = "testAllDbProfiles"
	TestTaskProfileInput = "db-profile"
	DatabaseTaskGroup    = "database"
)

// VariantTaskName returns the per-profile test task name.
func VariantTaskName(profile string) string {
	return VariantTaskPrefix + profile
}

// PlanService derives the test tasks of a project from its profiles: the main
// test task with the selected profile, one variant task per available profile
// and a grouping task that depends on every variant.
type PlanService struct {
	factory     ports.TestTaskFactory
	hooks       *HookService
	provider    ports.AllocationProvider
	allocations ports.AllocationRegistry
	logger      *slog.Logger
}

// NewPlanService creates a new PlanService.
func NewPlanService(
	factory ports.TestTaskFactory,
	hooks *HookService,
	provider ports.AllocationProvider,
	allocations ports.AllocationRegistry,
	logger *slog.Logger,
) *PlanService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlanService{
		factory:     factory,
		hooks:       hooks,
		provider:    provider,
		allocations: allocations,
		logger:      logger,
	}
}

// Plan builds the task plan. A request for "test_<name>" injects that profile
// as the selection before planning.
func (s *PlanService) Plan(ctx context.Context, resolver *ProfileResolver, req dto.PlanRequest) (*dto.PlanResponse, error) {
	start := time.Now()
	project := resolver.Project()

	if name, ok := strings.CutPrefix(req.Task, VariantTaskPrefix); ok {
		if _, err := resolver.InjectByName(ctx, name); err != nil {
			return nil, err
		}
	} else if req.Task != "" && req.Task != MainTestTask && req.Task != TestAllProfilesTask {
		return nil, apperrors.NewValidationError("task", fmt.Sprintf("unknown task %q", req.Task))
	}

	selected, err := resolver.SelectedProfile(ctx)
	if err != nil {
		return nil, err
	}

	mainTask := s.factory.NewTask(MainTestTask, "verification", "Runs the tests against the selected database profile")
	grouping := s.factory.NewTask(TestAllProfilesTask, DatabaseTaskGroup, "Runs tests against all discovered database profiles")

	var variants []ports.TestTask
	for _, name := range resolver.Chain().Available() {
		profile, err := resolver.Profile(ctx, name)
		if err != nil {
			return nil, err
		}
		variant := s.factory.CopyTask(mainTask, VariantTaskName(name),
			fmt.Sprintf("Runs the tests against the %s database profile", name))
		if err := s.applyProfile(ctx, variant, profile, project); err != nil {
			return nil, err
		}
		grouping.DependsOn(variant.Name())
		variants = append(variants, variant)
	}

	if err := s.applyProfile(ctx, mainTask, selected, project); err != nil {
		return nil, err
	}

	resp := &dto.PlanResponse{Selected: selected.Name().String()}
	for _, task := range append([]ports.TestTask{mainTask, grouping}, variants...) {
		if req.Task != "" && task.Name() != req.Task {
			continue
		}
		resp.Tasks = append(resp.Tasks, task.Info())
	}
	resp.Metadata = dto.ResponseMetadata{ProcessedAt: start, Duration: time.Since(start)}
	return resp, nil
}

// applyProfile configures task for profile: the profile input property, the
// properties as system properties, the dependencies on the classpath, the
// hooks and the database allocation.
func (s *PlanService) applyProfile(ctx context.Context, task ports.TestTask, profile *entities.Profile, project *entities.Project) error {
	name := profile.Name().String()
	task.SetInputProperty(TestTaskProfileInput, name)
	profile.Properties().Each(task.SetSystemProperty)
	task.AddClasspath(profile.Dependencies())
	s.hooks.Apply(task, profile, project.Hooks)

	allocation, ok := s.allocations.Find(name)
	if !ok {
		var err error
		allocation, err = s.provider.CreateAllocation(ctx, profile, project)
		if err != nil {
			return fmt.Errorf("allocating database for profile %s: %w", name, err)
		}
		s.allocations.Register(name, allocation)
	}
	task.AddTestListener(&allocationListener{allocation: allocation})

	s.logger.Debug("applied database profile to test task", "task", task.Name(), "profile", name)
	return nil
}

type allocationListener struct {
	allocation ports.DatabaseAllocation
}

func (l *allocationListener) BeforeTest(ctx context.Context, test entities.TestDescriptor) error {
	return l.allocation.BeforeEachTest(ctx, test)
}

func (l *allocationListener) AfterTest(context.Context, entities.TestDescriptor, entities.TestResult) error {
	return nil
}
