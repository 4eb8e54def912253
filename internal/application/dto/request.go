// Package dto contains data transfer objects for application layer use cases.
package dto

// ListRequest encapsulates the inputs of a profile listing.
type ListRequest struct {
	FilterExpression string
	ScopeKinds       []string
	IncludeShadowed  bool
}

// PlanRequest encapsulates the inputs of a test task plan.
type PlanRequest struct {
	// Task restricts the plan to one task ("test", "test_<profile>" or
	// "testAllDbProfiles"). Empty means every task.
	Task string
}

// HookRequest encapsulates the inputs of a hook phase run.
type HookRequest struct {
	Phase     string
	TestID    string
	TestClass string
	TestName  string
	Outcome   string
}

// AugmentRequest encapsulates the inputs of a properties file augmentation.
type AugmentRequest struct {
	// Path is the target file. Empty means the default test resources file.
	Path string
}

// RequestMetadata contains metadata for request tracking.
type RequestMetadata struct {
	// BuildID uniquely identifies one invocation
	BuildID string
}
