package services

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "github.com/reglet-dev/dbmatrix/internal/application/errors"
	"github.com/reglet-dev/dbmatrix/internal/application/ports"
	"github.com/reglet-dev/dbmatrix/internal/domain/entities"
)

// GlobalOwner marks project-level hooks.
const GlobalOwner = "global"

// Environment passed to hook commands.
const (
	EnvProfile     = "DBMATRIX_PROFILE"
	EnvPhase       = "DBMATRIX_HOOK_PHASE"
	EnvTestID      = "DBMATRIX_TEST_ID"
	EnvTestClass   = "DBMATRIX_TEST_CLASS"
	EnvTestName    = "DBMATRIX_TEST_NAME"
	EnvTestOutcome = "DBMATRIX_TEST_OUTCOME"
)

// HookService orders and runs lifecycle hooks of a profile and the project.
type HookService struct {
	runner ports.CommandRunner
	logger *slog.Logger
}

// NewHookService creates a new HookService.
func NewHookService(runner ports.CommandRunner, logger *slog.Logger) *HookService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HookService{runner: runner, logger: logger}
}

// OrderedActions returns the actions of phase in execution order.
// Before the test task profile hooks run first; after it global hooks run
// first; per-test hooks run profile first.
func OrderedActions(phase entities.HookPhase, profile *entities.Profile, global *entities.ActionContainer) []ports.TaskAction {
	var profileActions, globalActions []ports.TaskAction
	owner := profile.Name().String()
	profile.Hooks().Visit(phase, func(a entities.Action) {
		profileActions = append(profileActions, ports.TaskAction{Action: a, Owner: owner})
	})
	global.Visit(phase, func(a entities.Action) {
		globalActions = append(globalActions, ports.TaskAction{Action: a, Owner: GlobalOwner})
	})

	if phase == entities.PhaseAfterTestTask {
		return append(globalActions, profileActions...)
	}
	return append(profileActions, globalActions...)
}

// RunPhase runs every action of phase. test and result may be nil for
// task-level phases.
func (s *HookService) RunPhase(
	ctx context.Context,
	phase entities.HookPhase,
	profile *entities.Profile,
	global *entities.ActionContainer,
	test *entities.TestDescriptor,
	result *entities.TestResult,
) error {
	if phase.IsPerTest() && test == nil {
		return apperrors.NewValidationError("test", fmt.Sprintf("%s hooks need a test descriptor", phase))
	}

	env := map[string]string{
		EnvProfile: profile.Name().String(),
		EnvPhase:   string(phase),
	}
	if test != nil {
		env[EnvTestID] = test.ID
		env[EnvTestClass] = test.ClassName
		env[EnvTestName] = test.Name
	}
	if result != nil {
		env[EnvTestOutcome] = result.Outcome
	}

	for _, ta := range OrderedActions(phase, profile, global) {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.logger.Debug("running hook",
			"phase", string(phase),
			"owner", ta.Owner,
			"action", ta.Action.Name)
		if err := s.runner.Run(ctx, ta.Action, env); err != nil {
			return apperrors.NewHookError(string(phase), profile.Name().String(), actionLabel(ta.Action), err)
		}
	}
	return nil
}

// Apply attaches the hooks of profile and the project to task.
// A test listener is added only when some per-test hook exists.
func (s *HookService) Apply(task ports.TestTask, profile *entities.Profile, global *entities.ActionContainer) {
	for _, ta := range OrderedActions(entities.PhaseBeforeTestTask, profile, global) {
		task.AddBeforeAction(ta)
	}
	for _, ta := range OrderedActions(entities.PhaseAfterTestTask, profile, global) {
		task.AddAfterAction(ta)
	}
	if profile.Hooks().HasPerTestActions() || global.HasPerTestActions() {
		task.AddTestListener(&hookListener{hooks: s, profile: profile, global: global})
	}
}

type hookListener struct {
	hooks   *HookService
	profile *entities.Profile
	global  *entities.ActionContainer
}

func (l *hookListener) BeforeTest(ctx context.Context, test entities.TestDescriptor) error {
	return l.hooks.RunPhase(ctx, entities.PhaseBeforeEachTest, l.profile, l.global, &test, nil)
}

func (l *hookListener) AfterTest(ctx context.Context, test entities.TestDescriptor, result entities.TestResult) error {
	return l.hooks.RunPhase(ctx, entities.PhaseAfterEachTest, l.profile, l.global, &test, &result)
}

func actionLabel(a entities.Action) string {
	if a.Name != "" {
		return a.Name
	}
	if len(a.Command) > 0 {
		return a.Command[0]
	}
	return "?"
}
