// Package ports defines interfaces for infrastructure dependencies.
// These are the "ports" in hexagonal architecture - abstractions that
// the application layer depends on but doesn't implement.
package ports

import (
	"context"
	"io"

	"github.com/reglet-dev/dbmatrix/internal/application/dto"
	"github.com/reglet-dev/dbmatrix/internal/domain/entities"
)

// PropertySource answers key lookups for one property layer
// (project properties or system properties).
type PropertySource interface {
	Lookup(key string) (string, bool)
}

// ProfileScanner walks root directories and yields profile selectors.
// Missing roots are skipped. Selectors are tagged with scope.
type ProfileScanner interface {
	Scan(ctx context.Context, scope entities.ScopeRef, roots ...string) ([]entities.Selector, error)
}

// ProfileMaterializer turns selectors into full profiles.
type ProfileMaterializer interface {
	entities.Materializer
}

// StashRepository handles selection memo persistence.
// This is a PORT - abstracts file system or other storage.
type StashRepository interface {
	// Load reads the stash at path.
	// Returns nil, nil if the file or the key doesn't exist.
	Load(ctx context.Context, path string) (*entities.StashRecord, error)

	// Save writes the stash to path, replacing it atomically.
	Save(ctx context.Context, path string, record *entities.StashRecord) error
}

// PropertiesCodec reads and writes key/value properties files.
type PropertiesCodec interface {
	// Load reads the file at path.
	// Returns nil, nil if the file doesn't exist.
	Load(ctx context.Context, path string) (*entities.PropertyMap, error)

	// Save writes props to path with a header comment, creating parent directories.
	Save(ctx context.Context, path string, props *entities.PropertyMap, comment string) error
}

// ProjectLoader loads the project hierarchy around a directory.
type ProjectLoader interface {
	// Load returns the project at dir with its Parent chain filled in.
	Load(ctx context.Context, dir string) (*entities.Project, error)
}

// CommandRunner executes hook actions.
type CommandRunner interface {
	Run(ctx context.Context, action entities.Action, env map[string]string) error
}

// TestListener receives per-test events from the host test task.
type TestListener interface {
	BeforeTest(ctx context.Context, test entities.TestDescriptor) error
	AfterTest(ctx context.Context, test entities.TestDescriptor, result entities.TestResult) error
}

// TaskAction is one action attached to a test task.
type TaskAction struct {
	Action entities.Action
	// Owner is the profile name, or "global" for project-level hooks.
	Owner string
}

// TestTask is the host build tool's test task, seen through the operations
// profile application needs.
type TestTask interface {
	Name() string
	SetInputProperty(key, value string)
	SetSystemProperty(key, value string)
	AddClasspath(deps *entities.DependencySet)
	AddBeforeAction(action TaskAction)
	AddAfterAction(action TaskAction)
	AddTestListener(listener TestListener)
	DependsOn(task string)

	// Info describes the task as configured so far.
	Info() dto.TaskInfo
}

// TestTaskFactory creates test tasks.
type TestTaskFactory interface {
	// NewTask creates an empty task.
	NewTask(name, group, description string) TestTask

	// CopyTask creates a task configured like base, under a new name.
	CopyTask(base TestTask, name, description string) TestTask
}

// DatabaseAllocation is a database instance handed to one profile's tests.
type DatabaseAllocation interface {
	BeforeAllTests(ctx context.Context, task TestTask) error
	BeforeEachTest(ctx context.Context, test entities.TestDescriptor) error
	Release(ctx context.Context) error
}

// AllocationProvider creates allocations for profiles.
type AllocationProvider interface {
	CreateAllocation(ctx context.Context, profile *entities.Profile, project *entities.Project) (DatabaseAllocation, error)
}

// AllocationRegistry tracks live allocations so they can be released together.
type AllocationRegistry interface {
	Register(profile string, allocation DatabaseAllocation)
	Find(profile string) (DatabaseAllocation, bool)
}

// Closer is a common interface for resources that need cleanup.
type Closer interface {
	io.Closer
}

// OutputFormatter renders command responses.
type OutputFormatter interface {
	FormatList(resp *dto.ListResponse) error
	FormatResolve(resp *dto.ResolveResponse) error
	FormatProfile(info *dto.ProfileInfo) error
	FormatPlan(resp *dto.PlanResponse) error
	FormatValidate(resp *dto.ValidateResponse) error
	FormatAugment(resp *dto.AugmentResponse) error
}

// FormatterOptions tunes formatter output.
type FormatterOptions struct {
	Indent bool
	Color  bool
}
