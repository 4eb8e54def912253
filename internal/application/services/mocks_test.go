package services

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/reglet-dev/dbmatrix/internal/application/dto"
	"github.com/reglet-dev/dbmatrix/internal/application/ports"
	"github.com/reglet-dev/dbmatrix/internal/domain/entities"
	"github.com/reglet-dev/dbmatrix/internal/domain/services"
	"github.com/reglet-dev/dbmatrix/internal/domain/values"
)

// MockStash is a testify mock of ports.StashRepository.
type MockStash struct {
	mock.Mock
}

func (m *MockStash) Load(ctx context.Context, path string) (*entities.StashRecord, error) {
	args := m.Called(ctx, path)
	rec, _ := args.Get(0).(*entities.StashRecord)
	return rec, args.Error(1)
}

func (m *MockStash) Save(ctx context.Context, path string, record *entities.StashRecord) error {
	args := m.Called(ctx, path, record)
	return args.Error(0)
}

// memoryStash is an in-memory ports.StashRepository.
type memoryStash struct {
	records map[string]*entities.StashRecord
	saves   int
}

func newMemoryStash() *memoryStash {
	return &memoryStash{records: make(map[string]*entities.StashRecord)}
}

func (s *memoryStash) Load(_ context.Context, path string) (*entities.StashRecord, error) {
	return s.records[path], nil
}

func (s *memoryStash) Save(_ context.Context, path string, record *entities.StashRecord) error {
	s.saves++
	s.records[path] = record
	return nil
}

// fakeMaterializer builds profiles from canned properties and counts calls.
type fakeMaterializer struct {
	props map[string]map[string]string
	fail  map[string]error
	calls map[string]int
	mu    sync.Mutex
}

func newFakeMaterializer() *fakeMaterializer {
	return &fakeMaterializer{
		props: make(map[string]map[string]string),
		fail:  make(map[string]error),
		calls: make(map[string]int),
	}
}

func (f *fakeMaterializer) build(sel entities.Selector) (*entities.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := sel.Name.String()
	f.calls[name]++
	if err := f.fail[name]; err != nil {
		return nil, err
	}
	p := entities.NewProfile(sel.Name, sel.Kind, sel.Origin())
	for k, v := range f.props[name] {
		p.SetProperty(k, v)
	}
	p.Freeze()
	return p, nil
}

func (f *fakeMaterializer) MaterializeMarkerFile(sel entities.Selector) (*entities.Profile, error) {
	return f.build(sel)
}

func (f *fakeMaterializer) MaterializeDirectory(sel entities.Selector) (*entities.Profile, error) {
	return f.build(sel)
}

func (f *fakeMaterializer) MaterializeFragment(sel entities.Selector) (*entities.Profile, error) {
	return f.build(sel)
}

// fakeScanner returns canned selectors per scope root.
type fakeScanner struct {
	byRoot map[string][]string
	err    map[string]error
}

func (f *fakeScanner) Scan(_ context.Context, scope entities.ScopeRef, roots ...string) ([]entities.Selector, error) {
	var out []entities.Selector
	for _, root := range roots {
		if err := f.err[root]; err != nil {
			return nil, err
		}
		for _, name := range f.byRoot[root] {
			out = append(out, entities.Selector{
				Name:      values.MustNewProfileName(name),
				Kind:      values.KindDirectory,
				Directory: root + "/" + name,
				Scope:     scope,
			})
		}
	}
	return out, nil
}

// recordingRunner records the actions it runs.
type recordingRunner struct {
	ran  []string
	envs []map[string]string
	err  error
}

func (r *recordingRunner) Run(_ context.Context, action entities.Action, env map[string]string) error {
	r.ran = append(r.ran, action.Name)
	r.envs = append(r.envs, env)
	return r.err
}

// recordingTask is a ports.TestTask that keeps what was applied.
type recordingTask struct {
	listeners []ports.TestListener
	info      dto.TaskInfo
}

func (t *recordingTask) Name() string { return t.info.Name }

func (t *recordingTask) SetInputProperty(key, value string) {
	t.info.InputProperties = append(t.info.InputProperties, dto.Property{Key: key, Value: value})
}

func (t *recordingTask) SetSystemProperty(key, value string) {
	t.info.SystemProperties = append(t.info.SystemProperties, dto.Property{Key: key, Value: value})
}

func (t *recordingTask) AddClasspath(deps *entities.DependencySet) {
	t.info.Classpath = append(t.info.Classpath, deps.Name())
}

func (t *recordingTask) AddBeforeAction(a ports.TaskAction) {
	t.info.BeforeActions = append(t.info.BeforeActions, dto.HookInfo{Owner: a.Owner, Name: a.Action.Name})
}

func (t *recordingTask) AddAfterAction(a ports.TaskAction) {
	t.info.AfterActions = append(t.info.AfterActions, dto.HookInfo{Owner: a.Owner, Name: a.Action.Name})
}

func (t *recordingTask) AddTestListener(l ports.TestListener) {
	t.listeners = append(t.listeners, l)
	t.info.Listeners++
}

func (t *recordingTask) DependsOn(task string) {
	t.info.DependsOn = append(t.info.DependsOn, task)
}

func (t *recordingTask) Info() dto.TaskInfo { return t.info }

type recordingTaskFactory struct{}

func (recordingTaskFactory) NewTask(name, group, description string) ports.TestTask {
	return &recordingTask{info: dto.TaskInfo{Name: name, Group: group, Description: description}}
}

func (recordingTaskFactory) CopyTask(base ports.TestTask, name, description string) ports.TestTask {
	info := base.Info()
	info.Name = name
	info.Description = description
	return &recordingTask{info: info}
}

type noopAllocation struct{}

func (noopAllocation) BeforeAllTests(context.Context, ports.TestTask) error          { return nil }
func (noopAllocation) BeforeEachTest(context.Context, entities.TestDescriptor) error { return nil }
func (noopAllocation) Release(context.Context) error                                 { return nil }

type countingProvider struct {
	created int
}

func (p *countingProvider) CreateAllocation(context.Context, *entities.Profile, *entities.Project) (ports.DatabaseAllocation, error) {
	p.created++
	return noopAllocation{}, nil
}

type mapAllocations map[string]ports.DatabaseAllocation

func (m mapAllocations) Register(profile string, a ports.DatabaseAllocation) { m[profile] = a }

func (m mapAllocations) Find(profile string) (ports.DatabaseAllocation, bool) {
	a, ok := m[profile]
	return a, ok
}

// chainOf builds a scope chain; each scope maps to the names it holds.
func chainOf(t interface{ Fatalf(string, ...any) }, scopes ...scopeNames) *services.ScopeChain {
	chain := services.NewScopeChain()
	for _, sn := range scopes {
		r := services.NewRegistry(sn.scope)
		for _, name := range sn.names {
			err := r.Register(entities.Selector{
				Name:      values.MustNewProfileName(name),
				Kind:      values.KindDirectory,
				Directory: sn.scope.Root + "/" + name,
				Scope:     sn.scope,
			})
			if err != nil {
				t.Fatalf("register %s: %v", name, err)
			}
		}
		chain.Append(r)
	}
	return chain
}

type scopeNames struct {
	scope entities.ScopeRef
	names []string
}
