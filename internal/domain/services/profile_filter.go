package services

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/reglet-dev/dbmatrix/internal/domain/entities"
)

// SelectorEnv defines the variables available during filter expression evaluation.
type SelectorEnv struct {
	Name       string `expr:"name"`
	Kind       string `expr:"kind"`
	Scope      string `expr:"scope"`
	ScopeLabel string `expr:"scope_label"`
	Directory  string `expr:"directory"`
}

// SelectorSpecification defines a condition that a selector must meet.
type SelectorSpecification interface {
	// IsSatisfiedBy returns true if satisfied, along with a reason if not.
	IsSatisfiedBy(sel entities.Selector) (bool, string)
}

// AndSpecification combines multiple specifications with logical AND.
type AndSpecification struct {
	specs []SelectorSpecification
}

// NewAndSpecification creates a new AndSpecification.
func NewAndSpecification(specs ...SelectorSpecification) *AndSpecification {
	return &AndSpecification{specs: specs}
}

// IsSatisfiedBy checks if all specifications are satisfied.
func (s *AndSpecification) IsSatisfiedBy(sel entities.Selector) (bool, string) {
	for _, spec := range s.specs {
		if ok, reason := spec.IsSatisfiedBy(sel); !ok {
			return false, reason
		}
	}
	return true, ""
}

// ScopeKindSpecification includes only selectors from the given scope kinds.
type ScopeKindSpecification struct {
	kinds map[string]bool
}

// NewScopeKindSpecification creates a new ScopeKindSpecification.
func NewScopeKindSpecification(kinds map[string]bool) *ScopeKindSpecification {
	return &ScopeKindSpecification{kinds: kinds}
}

// IsSatisfiedBy checks the selector's scope kind.
func (s *ScopeKindSpecification) IsSatisfiedBy(sel entities.Selector) (bool, string) {
	if len(s.kinds) == 0 {
		return true, ""
	}
	if !s.kinds[string(sel.Scope.Kind)] {
		return false, "excluded by --scope filter"
	}
	return true, ""
}

// ExpressionSpecification evaluates an expr program against the selector.
type ExpressionSpecification struct {
	program *vm.Program
}

// NewExpressionSpecification creates a new ExpressionSpecification.
func NewExpressionSpecification(program *vm.Program) *ExpressionSpecification {
	return &ExpressionSpecification{program: program}
}

// IsSatisfiedBy evaluates the expr program against the selector.
func (s *ExpressionSpecification) IsSatisfiedBy(sel entities.Selector) (bool, string) {
	if s.program == nil {
		return true, ""
	}

	output, err := expr.Run(s.program, NewSelectorEnv(sel))
	if err != nil {
		return false, fmt.Sprintf("filter expression error: %v", err)
	}

	result, ok := output.(bool)
	if !ok {
		return false, fmt.Sprintf("filter expression did not return boolean: %v", output)
	}
	if !result {
		return false, "excluded by --filter expression"
	}
	return true, ""
}

// NewSelectorEnv builds the evaluation environment for sel.
func NewSelectorEnv(sel entities.Selector) SelectorEnv {
	return SelectorEnv{
		Name:       sel.Name.String(),
		Kind:       string(sel.Kind),
		Scope:      string(sel.Scope.Kind),
		ScopeLabel: sel.Scope.Label,
		Directory:  sel.Directory,
	}
}

// CompileFilter compiles a boolean filter expression over SelectorEnv.
func CompileFilter(expression string) (*vm.Program, error) {
	program, err := expr.Compile(expression, expr.Env(SelectorEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression %q: %w", expression, err)
	}
	return program, nil
}

// ProfileFilter selects which discovered profiles are listed.
type ProfileFilter struct {
	scopeKinds    map[string]bool
	filterProgram *vm.Program
}

// NewProfileFilter initializes a new empty filter.
func NewProfileFilter() *ProfileFilter {
	return &ProfileFilter{scopeKinds: make(map[string]bool)}
}

// WithScopeKinds restricts to the given scope kinds.
func (f *ProfileFilter) WithScopeKinds(kinds []string) *ProfileFilter {
	f.scopeKinds = toSet(kinds)
	return f
}

// WithFilterExpression applies a compiled expr program.
func (f *ProfileFilter) WithFilterExpression(program *vm.Program) *ProfileFilter {
	f.filterProgram = program
	return f
}

// Matches evaluates whether a selector passes the filter, with a reason if not.
func (f *ProfileFilter) Matches(sel entities.Selector) (bool, string) {
	var specs []SelectorSpecification
	if len(f.scopeKinds) > 0 {
		specs = append(specs, NewScopeKindSpecification(f.scopeKinds))
	}
	if f.filterProgram != nil {
		specs = append(specs, NewExpressionSpecification(f.filterProgram))
	}
	return NewAndSpecification(specs...).IsSatisfiedBy(sel)
}

// Apply returns the selectors that pass the filter.
func (f *ProfileFilter) Apply(sels []entities.Selector) []entities.Selector {
	out := make([]entities.Selector, 0, len(sels))
	for _, sel := range sels {
		if ok, _ := f.Matches(sel); ok {
			out = append(out, sel)
		}
	}
	return out
}

// toSet converts a slice to a map (set)
func toSet(slice []string) map[string]bool {
	s := make(map[string]bool, len(slice))
	for _, item := range slice {
		s[item] = true
	}
	return s
}
