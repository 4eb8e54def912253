package dto

import (
	"time"
)

// ResponseMetadata contains metadata about the response.
type ResponseMetadata struct {
	// ProcessedAt is when the request was processed
	ProcessedAt time.Time `json:"processed_at" yaml:"processed_at"`

	// BuildID from the invocation
	BuildID string `json:"build_id" yaml:"build_id"`

	// Duration is how long the request took
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// ProfileSummary describes one discovered profile without materializing it.
type ProfileSummary struct {
	Name           string `json:"name" yaml:"name"`
	Kind           string `json:"kind" yaml:"kind"`
	Scope          string `json:"scope" yaml:"scope"`
	ScopeLabel     string `json:"scope_label" yaml:"scope_label"`
	Directory      string `json:"directory" yaml:"directory"`
	DefinitionPath string `json:"definition_path,omitempty" yaml:"definition_path,omitempty"`
	Selected       bool   `json:"selected" yaml:"selected"`
	Shadowed       bool   `json:"shadowed,omitempty" yaml:"shadowed,omitempty"`
}

// ListResponse contains the discovered profiles.
type ListResponse struct {
	Selected string           `json:"selected,omitempty" yaml:"selected,omitempty"`
	Profiles []ProfileSummary `json:"profiles" yaml:"profiles"`
	Metadata ResponseMetadata `json:"metadata" yaml:"metadata"`
}

// ResolveResponse contains the outcome of profile selection.
type ResolveResponse struct {
	Name         string           `json:"name" yaml:"name"`
	Source       string           `json:"source" yaml:"source"`
	Requested    string           `json:"requested" yaml:"requested"`
	Scope        string           `json:"scope" yaml:"scope"`
	Directory    string           `json:"directory" yaml:"directory"`
	Available    []string         `json:"available" yaml:"available"`
	Replacements int              `json:"replacements,omitempty" yaml:"replacements,omitempty"`
	Metadata     ResponseMetadata `json:"metadata" yaml:"metadata"`
}

// Property is one key/value pair, kept in order.
type Property struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// DependencyInfo describes a profile's extra dependencies.
type DependencyInfo struct {
	Name      string   `json:"name" yaml:"name"`
	Files     []string `json:"files,omitempty" yaml:"files,omitempty"`
	Notations []string `json:"notations,omitempty" yaml:"notations,omitempty"`
}

// HookInfo describes one lifecycle hook.
type HookInfo struct {
	Phase   string   `json:"phase" yaml:"phase"`
	Owner   string   `json:"owner" yaml:"owner"`
	Name    string   `json:"name,omitempty" yaml:"name,omitempty"`
	Command []string `json:"command,omitempty" yaml:"command,omitempty"`
}

// ProfileInfo is the full description of a materialized profile.
type ProfileInfo struct {
	Name            string           `json:"name" yaml:"name"`
	Kind            string           `json:"kind" yaml:"kind"`
	Scope           string           `json:"scope" yaml:"scope"`
	Directory       string           `json:"directory" yaml:"directory"`
	OutputDirectory string           `json:"output_directory" yaml:"output_directory"`
	Source          string           `json:"source,omitempty" yaml:"source,omitempty"`
	Properties      []Property       `json:"properties" yaml:"properties"`
	Hooks           []HookInfo       `json:"hooks,omitempty" yaml:"hooks,omitempty"`
	Dependencies    DependencyInfo   `json:"dependencies" yaml:"dependencies"`
	Metadata        ResponseMetadata `json:"metadata" yaml:"metadata"`
}

// TaskInfo describes one planned test task.
type TaskInfo struct {
	Name             string     `json:"name" yaml:"name"`
	Group            string     `json:"group,omitempty" yaml:"group,omitempty"`
	Description      string     `json:"description,omitempty" yaml:"description,omitempty"`
	Profile          string     `json:"profile,omitempty" yaml:"profile,omitempty"`
	InputProperties  []Property `json:"input_properties,omitempty" yaml:"input_properties,omitempty"`
	SystemProperties []Property `json:"system_properties,omitempty" yaml:"system_properties,omitempty"`
	Classpath        []string   `json:"classpath,omitempty" yaml:"classpath,omitempty"`
	BeforeActions    []HookInfo `json:"before_actions,omitempty" yaml:"before_actions,omitempty"`
	AfterActions     []HookInfo `json:"after_actions,omitempty" yaml:"after_actions,omitempty"`
	DependsOn        []string   `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
	Listeners        int        `json:"listeners,omitempty" yaml:"listeners,omitempty"`
}

// PlanResponse contains the planned test tasks.
type PlanResponse struct {
	Selected string           `json:"selected" yaml:"selected"`
	Tasks    []TaskInfo       `json:"tasks" yaml:"tasks"`
	Metadata ResponseMetadata `json:"metadata" yaml:"metadata"`
}

// ValidationProblem is one definition that failed to materialize.
type ValidationProblem struct {
	Profile string `json:"profile" yaml:"profile"`
	Scope   string `json:"scope" yaml:"scope"`
	Path    string `json:"path" yaml:"path"`
	Message string `json:"message" yaml:"message"`
}

// ValidateResponse contains the outcome of validating every definition.
type ValidateResponse struct {
	Problems []ValidationProblem `json:"problems,omitempty" yaml:"problems,omitempty"`
	Checked  int                 `json:"checked" yaml:"checked"`
	Metadata ResponseMetadata    `json:"metadata" yaml:"metadata"`
}

// AugmentResponse contains the outcome of a properties file augmentation.
type AugmentResponse struct {
	Path    string `json:"path" yaml:"path"`
	Profile string `json:"profile" yaml:"profile"`
	Changed bool   `json:"changed" yaml:"changed"`
}
