// Package pipeline sequences a build plan through the process runner and
// aggregates the results into a training report. Execution is fail-fast: the
// first failed step stops the run, and the report carries the partial
// results collected so far.
package pipeline

import (
	"context"
	"time"

	"github.com/ocrforge/tesstrain/internal/artifact"
	"github.com/ocrforge/tesstrain/internal/ctxlog"
	"github.com/ocrforge/tesstrain/internal/plan"
	"github.com/ocrforge/tesstrain/internal/runner"
)

// Executor runs a single node. The production implementation is
// *runner.Runner; tests substitute mocks.
type Executor interface {
	Execute(ctx context.Context, node *artifact.Node) runner.StepResult
}

// Driver executes build plans. The graph and plan are read-only inputs; the
// driver never mutates either.
type Driver struct {
	// Exec runs individual steps.
	Exec Executor

	// Workers bounds concurrent execution of independent plan steps.
	// Values <= 1 select strictly sequential execution.
	Workers int
}

// NewDriver creates a sequential driver around exec. Callers wanting
// parallel sibling execution raise Workers afterwards.
func NewDriver(exec Executor) *Driver {
	return &Driver{Exec: exec, Workers: 1}
}

// Run executes the plan against the target node and reports the outcome. An
// empty plan is a successful no-op: the target is already up to date.
func (d *Driver) Run(ctx context.Context, g *artifact.Graph, p plan.BuildPlan, target *artifact.Node) *Report {
	logger := ctxlog.FromContext(ctx)
	start := time.Now()

	report := &Report{Target: target.Name}
	if d.Workers > 1 && len(p) > 1 {
		d.runParallel(ctx, p, report)
	} else {
		d.runSequential(ctx, p, report)
	}

	if report.Success && len(target.Outputs) > 0 {
		report.ArtifactPath = target.Outputs[0]
	}
	report.Duration = time.Since(start)

	logger.Info("Run finished.",
		"target", target.Name,
		"steps_executed", len(report.Steps),
		"success", report.Success,
		"duration", report.Duration,
	)
	return report
}

// runSequential executes plan steps one at a time, stopping at the first
// failure.
func (d *Driver) runSequential(ctx context.Context, p plan.BuildPlan, report *Report) {
	logger := ctxlog.FromContext(ctx)
	for i, node := range p {
		if err := ctx.Err(); err != nil {
			logger.Warn("Context canceled, remaining steps skipped.", "remaining", len(p)-i)
			return
		}

		logger.Info("Executing step.", "step", i+1, "of", len(p), "node", node.Name)
		result := d.Exec.Execute(ctx, node)
		report.Steps = append(report.Steps, result)
		if !result.Success {
			return
		}
	}
	report.Success = true
}
