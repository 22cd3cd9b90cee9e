// Package runner executes one artifact node at a time: it spawns the node's
// external command (or runs its builtin), captures combined output, and
// classifies the outcome. A step only counts as successful when the process
// exited zero AND every declared output file exists afterwards. Tools
// occasionally exit cleanly without writing output on degenerate input, and
// that must not pass silently downstream.
package runner

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/ocrforge/tesstrain/internal/apperrors"
	"github.com/ocrforge/tesstrain/internal/artifact"
	"github.com/ocrforge/tesstrain/internal/ctxlog"
)

// StepResult is the outcome of running one node.
type StepResult struct {
	Node string
	Kind artifact.Kind

	// Cmd is the rendered command line; empty for builtin steps.
	Cmd string

	// ExitCode is the process exit code, or -1 when no process ran.
	ExitCode int

	// Output is the combined stdout/stderr of the process.
	Output []byte

	Duration time.Duration
	Success  bool

	// MissingOutputs lists declared outputs absent after a clean exit.
	MissingOutputs []string

	// Err carries spawn or builtin failures. Spawn failures satisfy
	// errors.Is(err, apperrors.ErrEnvironment).
	Err error
}

// Runner executes nodes with a fixed working directory. It never retries; a
// retry policy, if wanted, belongs to the caller.
type Runner struct {
	// WorkDir is the working directory for every spawned process.
	WorkDir string
}

// New creates a Runner rooted at workDir.
func New(workDir string) *Runner {
	return &Runner{WorkDir: workDir}
}

// Execute runs one node to completion and classifies the result. It blocks
// for the lifetime of the spawned process; callers needing bounded runtime
// impose a deadline on ctx, which forcibly terminates the process and
// records the step as failed.
func (r *Runner) Execute(ctx context.Context, node *artifact.Node) StepResult {
	logger := ctxlog.FromContext(ctx).With("node", node.Name, "kind", node.Kind.String())

	result := StepResult{
		Node:     node.Name,
		Kind:     node.Kind,
		Cmd:      node.Command.String(),
		ExitCode: -1,
	}

	start := time.Now()
	if node.IsBuiltin() {
		r.runBuiltin(ctx, node, &result)
	} else {
		r.runCommand(ctx, node, &result)
	}
	result.Duration = time.Since(start)

	if result.Success {
		r.checkOutputs(node, &result)
	}

	if result.Success {
		logger.Debug("Step succeeded.", "duration", result.Duration)
	} else {
		logger.Error("Step failed.",
			"exit_code", result.ExitCode,
			"missing_outputs", result.MissingOutputs,
			"error", result.Err,
			"duration", result.Duration,
		)
	}
	return result
}

// runCommand spawns the node's external tool and waits for completion.
func (r *Runner) runCommand(ctx context.Context, node *artifact.Node, result *StepResult) {
	cmd := exec.CommandContext(ctx, node.Command.Tool, node.Command.Args...)
	cmd.Dir = r.WorkDir
	if len(node.Command.Env) > 0 {
		cmd.Env = append(os.Environ(), node.Command.Env...)
	}

	output, err := cmd.CombinedOutput()
	result.Output = output

	switch {
	case err == nil:
		result.ExitCode = 0
		result.Success = true
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// The tool ran and failed.
			result.ExitCode = exitErr.ExitCode()
			result.Err = apperrors.Execution(node.Name, err)
		} else {
			// The tool could not even be spawned.
			result.Err = apperrors.Environment(node.Command.Tool, err)
		}
		if ctx.Err() != nil {
			result.Err = apperrors.Execution(node.Name, ctx.Err())
		}
	}
}

// runBuiltin executes an in-process step under the same success rules.
func (r *Runner) runBuiltin(ctx context.Context, node *artifact.Node, result *StepResult) {
	if err := ctx.Err(); err != nil {
		result.Err = apperrors.Execution(node.Name, err)
		return
	}
	if err := node.Builtin(ctx); err != nil {
		result.Err = apperrors.Execution(node.Name, err)
		return
	}
	result.ExitCode = 0
	result.Success = true
}

// checkOutputs downgrades a clean exit to failure when a declared output was
// not produced.
func (r *Runner) checkOutputs(node *artifact.Node, result *StepResult) {
	for _, output := range node.Outputs {
		if _, err := os.Stat(output); err != nil {
			result.MissingOutputs = append(result.MissingOutputs, output)
		}
	}
	if len(result.MissingOutputs) > 0 {
		result.Success = false
		result.Err = apperrors.Execution(node.Name, errors.New("declared outputs were not produced"))
	}
}
