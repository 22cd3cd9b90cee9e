// Package apperrors defines the error taxonomy for a training run.
package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for classification via errors.Is().
var (
	// ErrConfiguration covers invalid or incomplete input configuration:
	// missing corpus files, unresolvable tools, malformed model names.
	// Detected before any process is spawned and always fatal.
	ErrConfiguration = errors.New("configuration error")

	// ErrExecution covers an external tool that ran and failed: non-zero
	// exit, or a clean exit without the declared output file.
	ErrExecution = errors.New("step execution error")

	// ErrEnvironment covers host-level failures where the process could not
	// even be spawned: binary not found, permission denied, disk full.
	// Reported like an execution failure, but logged separately since it is
	// rarely fixable by changing training parameters.
	ErrEnvironment = errors.New("environment error")
)

// Error is a structured error carrying the failing step or tool alongside
// its sentinel.
type Error struct {
	Sentinel error  // wrapped sentinel for errors.Is() classification
	Message  string // human-readable message
	Step     string // logical node name, when the failure is tied to one
	Tool     string // external binary involved, when known
	Cause    error  // underlying error
}

// Error returns the human-readable error message.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the sentinel so errors.Is() can classify the error.
func (e *Error) Unwrap() error {
	return e.Sentinel
}

// Configuration creates a configuration error from a format string.
func Configuration(format string, args ...any) error {
	return &Error{
		Sentinel: ErrConfiguration,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Execution creates an execution error for a failed step.
func Execution(step string, cause error) error {
	return &Error{
		Sentinel: ErrExecution,
		Message:  fmt.Sprintf("step %s: %v", step, cause),
		Step:     step,
		Cause:    cause,
	}
}

// Environment creates an environment error for a tool that could not run.
func Environment(tool string, cause error) error {
	return &Error{
		Sentinel: ErrEnvironment,
		Message:  fmt.Sprintf("%s: %v", tool, cause),
		Tool:     tool,
		Cause:    cause,
	}
}
