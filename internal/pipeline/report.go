package pipeline

import (
	"time"

	"github.com/ocrforge/tesstrain/internal/runner"
)

// Report aggregates the outcome of one training run. It is the terminal
// output of the driver and is never persisted by the core.
type Report struct {
	// Model is the logical name of the trained model.
	Model string

	// Target is the name of the requested artifact node.
	Target string

	// Steps holds the results of every step that was executed, in plan
	// order. Under fail-fast, steps after the first failure never appear.
	Steps []runner.StepResult

	Success bool

	// ArtifactPath is the final artifact location, set only on success.
	ArtifactPath string

	Duration time.Duration
}

// FirstFailure returns the first failed step result in plan order, or nil.
func (r *Report) FirstFailure() *runner.StepResult {
	for i := range r.Steps {
		if !r.Steps[i].Success {
			return &r.Steps[i]
		}
	}
	return nil
}
