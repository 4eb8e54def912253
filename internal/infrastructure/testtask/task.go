// Package testtask provides the in-process model of a host test task that
// database profiles are applied to.
package testtask

import (
	"sync"

	"github.com/reglet-dev/dbmatrix/internal/application/dto"
	"github.com/reglet-dev/dbmatrix/internal/application/ports"
	"github.com/reglet-dev/dbmatrix/internal/application/services"
	"github.com/reglet-dev/dbmatrix/internal/domain/entities"
)

var (
	_ ports.TestTask        = (*Spec)(nil)
	_ ports.TestTaskFactory = Factory{}
)

type property struct {
	key, value string
}

// Spec is a test task configuration. Setting a property that already exists
// replaces its value in place.
type Spec struct {
	name        string
	group       string
	description string

	inputs    []property
	system    []property
	classpath []*entities.DependencySet
	before    []ports.TaskAction
	after     []ports.TaskAction
	listeners []ports.TestListener
	dependsOn []string

	mu sync.RWMutex
}

// NewSpec creates an empty task.
func NewSpec(name, group, description string) *Spec {
	return &Spec{name: name, group: group, description: description}
}

// Name returns the task name.
func (s *Spec) Name() string { return s.name }

// SetInputProperty sets an up-to-date input of the task.
func (s *Spec) SetInputProperty(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = setProperty(s.inputs, key, value)
}

// SetSystemProperty sets a system property passed to the test runtime.
func (s *Spec) SetSystemProperty(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.system = setProperty(s.system, key, value)
}

// AddClasspath adds deps to the test runtime classpath once.
func (s *Spec) AddClasspath(deps *entities.DependencySet) {
	if deps == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.classpath {
		if existing.Name() == deps.Name() {
			return
		}
	}
	s.classpath = append(s.classpath, deps)
}

// AddBeforeAction appends an action run before the task.
func (s *Spec) AddBeforeAction(action ports.TaskAction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.before = append(s.before, action)
}

// AddAfterAction appends an action run after the task.
func (s *Spec) AddAfterAction(action ports.TaskAction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.after = append(s.after, action)
}

// AddTestListener registers a per-test listener.
func (s *Spec) AddTestListener(listener ports.TestListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, listener)
}

// DependsOn adds a task dependency.
func (s *Spec) DependsOn(task string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.dependsOn {
		if d == task {
			return
		}
	}
	s.dependsOn = append(s.dependsOn, task)
}

// BeforeActions returns the before-task actions in order.
func (s *Spec) BeforeActions() []ports.TaskAction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ports.TaskAction(nil), s.before...)
}

// AfterActions returns the after-task actions in order.
func (s *Spec) AfterActions() []ports.TaskAction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ports.TaskAction(nil), s.after...)
}

// Listeners returns the registered per-test listeners.
func (s *Spec) Listeners() []ports.TestListener {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ports.TestListener(nil), s.listeners...)
}

// Info describes the task as configured so far.
func (s *Spec) Info() dto.TaskInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := dto.TaskInfo{
		Name:             s.name,
		Group:            s.group,
		Description:      s.description,
		InputProperties:  toDTO(s.inputs),
		SystemProperties: toDTO(s.system),
		BeforeActions:    hookInfos(s.before),
		AfterActions:     hookInfos(s.after),
		DependsOn:        append([]string(nil), s.dependsOn...),
		Listeners:        len(s.listeners),
	}
	for _, p := range s.inputs {
		if p.key == services.TestTaskProfileInput {
			info.Profile = p.value
		}
	}
	for _, deps := range s.classpath {
		info.Classpath = append(info.Classpath, deps.Name())
	}
	return info
}

// clone copies the configuration of s under a new name.
func (s *Spec) clone(name, description string) *Spec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &Spec{
		name:        name,
		group:       s.group,
		description: description,
		inputs:      append([]property(nil), s.inputs...),
		system:      append([]property(nil), s.system...),
		classpath:   append([]*entities.DependencySet(nil), s.classpath...),
		before:      append([]ports.TaskAction(nil), s.before...),
		after:       append([]ports.TaskAction(nil), s.after...),
		listeners:   append([]ports.TestListener(nil), s.listeners...),
		dependsOn:   append([]string(nil), s.dependsOn...),
	}
}

func setProperty(props []property, key, value string) []property {
	for i := range props {
		if props[i].key == key {
			props[i].value = value
			return props
		}
	}
	return append(props, property{key: key, value: value})
}

func toDTO(props []property) []dto.Property {
	if len(props) == 0 {
		return nil
	}
	out := make([]dto.Property, len(props))
	for i, p := range props {
		out[i] = dto.Property{Key: p.key, Value: p.value}
	}
	return out
}

func hookInfos(actions []ports.TaskAction) []dto.HookInfo {
	if len(actions) == 0 {
		return nil
	}
	out := make([]dto.HookInfo, len(actions))
	for i, a := range actions {
		out[i] = dto.HookInfo{
			Owner:   a.Owner,
			Name:    a.Action.Name,
			Command: append([]string(nil), a.Action.Command...),
		}
	}
	return out
}

// Factory creates Spec tasks.
type Factory struct{}

// NewTask creates an empty task.
func (Factory) NewTask(name, group, description string) ports.TestTask {
	return NewSpec(name, group, description)
}

// CopyTask creates a task configured like base. A base that is not a Spec
// is rebuilt from its Info.
func (Factory) CopyTask(base ports.TestTask, name, description string) ports.TestTask {
	if spec, ok := base.(*Spec); ok {
		return spec.clone(name, description)
	}
	info := base.Info()
	spec := NewSpec(name, info.Group, description)
	for _, p := range info.InputProperties {
		spec.SetInputProperty(p.Key, p.Value)
	}
	for _, p := range info.SystemProperties {
		spec.SetSystemProperty(p.Key, p.Value)
	}
	for _, d := range info.DependsOn {
		spec.DependsOn(d)
	}
	return spec
}
