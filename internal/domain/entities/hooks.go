package entities

import (
	"fmt"
	"time"
)

// HookPhase names the point in a test run where an action executes.
type HookPhase string

const (
	// PhaseBeforeTestTask runs once before the whole test task
	PhaseBeforeTestTask HookPhase = "before-test-task"
	// PhaseAfterTestTask runs once after the whole test task
	PhaseAfterTestTask HookPhase = "after-test-task"
	// PhaseBeforeEachTest runs before every test case
	PhaseBeforeEachTest HookPhase = "before-each-test"
	// PhaseAfterEachTest runs after every test case
	PhaseAfterEachTest HookPhase = "after-each-test"
)

// HookPhases lists every phase in execution order.
var HookPhases = []HookPhase{
	PhaseBeforeTestTask,
	PhaseBeforeEachTest,
	PhaseAfterEachTest,
	PhaseAfterTestTask,
}

// ParseHookPhase converts a phase name into a HookPhase.
func ParseHookPhase(s string) (HookPhase, error) {
	for _, p := range HookPhases {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown hook phase %q (valid: %v)", s, HookPhases)
}

// IsPerTest returns true for phases that run once per test case.
func (p HookPhase) IsPerTest() bool {
	return p == PhaseBeforeEachTest || p == PhaseAfterEachTest
}

// Action is a lifecycle hook: a command run at a given phase.
type Action struct {
	Env     map[string]string
	Name    string
	Dir     string
	Command []string
}

// TestDescriptor identifies a single test case handed to per-test hooks.
type TestDescriptor struct {
	ID        string
	ClassName string
	Name      string
}

// TestResult is the outcome handed to after-each-test hooks.
type TestResult struct {
	Outcome  string
	Duration time.Duration
}

// ActionContainer holds lifecycle hooks grouped by phase.
// Profiles and projects both carry one.
type ActionContainer struct {
	actions map[HookPhase][]Action
}

// NewActionContainer creates an empty container.
func NewActionContainer() *ActionContainer {
	return &ActionContainer{actions: make(map[HookPhase][]Action)}
}

// Add appends an action to the given phase.
func (c *ActionContainer) Add(phase HookPhase, action Action) error {
	if _, err := ParseHookPhase(string(phase)); err != nil {
		return err
	}
	if len(action.Command) == 0 {
		return fmt.Errorf("%s hook %q has no command", phase, action.Name)
	}
	if c.actions == nil {
		c.actions = make(map[HookPhase][]Action)
	}
	c.actions[phase] = append(c.actions[phase], action)
	return nil
}

// Actions returns a copy of the actions registered for phase.
func (c *ActionContainer) Actions(phase HookPhase) []Action {
	if c == nil {
		return nil
	}
	src := c.actions[phase]
	if len(src) == 0 {
		return nil
	}
	out := make([]Action, len(src))
	copy(out, src)
	return out
}

// Visit calls fn for each action of phase. It is a no-op when there are none.
func (c *ActionContainer) Visit(phase HookPhase, fn func(Action)) {
	if c == nil {
		return
	}
	for _, a := range c.actions[phase] {
		fn(a)
	}
}

// VisitBeforeTestTask visits the before-test-task actions.
func (c *ActionContainer) VisitBeforeTestTask(fn func(Action)) {
	c.Visit(PhaseBeforeTestTask, fn)
}

// VisitAfterTestTask visits the after-test-task actions.
func (c *ActionContainer) VisitAfterTestTask(fn func(Action)) {
	c.Visit(PhaseAfterTestTask, fn)
}

// VisitBeforeEachTest visits the before-each-test actions.
func (c *ActionContainer) VisitBeforeEachTest(fn func(Action)) {
	c.Visit(PhaseBeforeEachTest, fn)
}

// VisitAfterEachTest visits the after-each-test actions.
func (c *ActionContainer) VisitAfterEachTest(fn func(Action)) {
	c.Visit(PhaseAfterEachTest, fn)
}

// HasPerTestActions reports whether any per-test hook is registered.
func (c *ActionContainer) HasPerTestActions() bool {
	if c == nil {
		return false
	}
	return len(c.actions[PhaseBeforeEachTest]) > 0 || len(c.actions[PhaseAfterEachTest]) > 0
}

// Len returns the total number of actions across phases.
func (c *ActionContainer) Len() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, list := range c.actions {
		n += len(list)
	}
	return n
}
