// Package apperrors defines application-level error types.
package apperrors

import (
	"fmt"
)

// ValidationError indicates profile or filter validation failed.
type ValidationError struct {
	Field   string   // Field that failed validation
	Message string   // Error message
	Details []string // Additional details
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s: %s (%d issues)", e.Field, e.Message, len(e.Details))
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string, details ...string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Details: details,
	}
}

// HookError indicates a lifecycle hook command failed.
type HookError struct {
	Cause   error
	Phase   string
	Profile string
	Action  string
}

func (e *HookError) Error() string {
	return fmt.Sprintf("unable to perform %s actions [profile = %s, action = %s]: %v", e.Phase, e.Profile, e.Action, e.Cause)
}

func (e *HookError) Unwrap() error {
	return e.Cause
}

// NewHookError creates a new hook error.
func NewHookError(phase, profile, action string, cause error) *HookError {
	return &HookError{
		Phase:   phase,
		Profile: profile,
		Action:  action,
		Cause:   cause,
	}
}

// ConfigurationError indicates system config or setup issue.
type ConfigurationError struct {
	Cause   error
	Aspect  string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error (%s): %s: %v", e.Aspect, e.Message, e.Cause)
	}
	return fmt.Sprintf("configuration error (%s): %s", e.Aspect, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// NewConfigurationError creates a new configuration error.
func NewConfigurationError(aspect, message string, cause error) *ConfigurationError {
	return &ConfigurationError{
		Aspect:  aspect,
		Message: message,
		Cause:   cause,
	}
}
