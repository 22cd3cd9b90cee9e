package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ocrforge/tesstrain/internal/apperrors"
	"github.com/ocrforge/tesstrain/internal/artifact"
	"github.com/ocrforge/tesstrain/internal/ctxlog"
	"github.com/ocrforge/tesstrain/internal/fsutil"
	"github.com/ocrforge/tesstrain/internal/pipeline"
	"github.com/ocrforge/tesstrain/internal/plan"
	"github.com/ocrforge/tesstrain/internal/runner"
)

// Run executes the training pipeline and returns the report. A non-nil
// error means the run could not start (a configuration problem); step
// failures are not errors, they are recorded in the report so the caller
// can inspect the partial results.
func (a *App) Run(ctx context.Context) (*pipeline.Report, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if err := a.prepareDirs(); err != nil {
		return nil, err
	}

	graph, err := artifact.Build(ctx, a.training, a.toolchain)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("Artifact graph built.", "node_count", graph.Len())

	target := a.config.Target
	if target == "" {
		target = graph.Target()
	}
	targetNode, ok := graph.Node(target)
	if !ok {
		return nil, apperrors.Configuration("unknown target %q", target)
	}

	planner := plan.New()
	planner.Force = a.config.Force
	buildPlan, err := planner.Plan(graph, target)
	if err != nil {
		return nil, apperrors.Configuration("planning %q: %v", target, err)
	}
	a.logger.Info("Build plan computed.", "target", target, "stale_steps", len(buildPlan))

	driver := &pipeline.Driver{
		Exec:    runner.New(a.training.WorkDir),
		Workers: a.config.Workers,
	}
	report := driver.Run(ctx, graph, buildPlan, targetNode)
	report.Model = a.training.Model

	if len(buildPlan) == 0 {
		a.logger.Info("Target is up to date, nothing to do.", "target", target)
		return report, nil
	}

	if report.Success {
		if err := a.finishRun(ctx); err != nil {
			a.logger.Warn("Post-run housekeeping failed.", "error", err)
		}
	}
	return report, nil
}

// prepareDirs creates the output, work and fontconfig cache directories.
func (a *App) prepareDirs() error {
	for _, dir := range []string{
		a.training.OutputDir,
		filepath.Join(a.training.OutputDir, a.training.Lang),
		a.training.WorkDir,
		artifact.FontConfigCache(a.training.WorkDir),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperrors.Configuration("creating directory %q: %v", dir, err)
		}
	}
	return nil
}

// finishRun applies the post-success housekeeping: optionally saving the
// box/tiff pairs next to the final artifacts, and optionally removing the
// intermediate work directory.
func (a *App) finishRun(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	if a.training.SaveBoxTiff {
		logger.Info("Saving box/tiff pairs for training data.")
		for _, ext := range []string{".box", ".tif"} {
			files, err := fsutil.FindByExt(a.training.WorkDir, ext)
			if err != nil {
				return err
			}
			for _, file := range files {
				dst := filepath.Join(a.training.OutputDir, filepath.Base(file))
				if err := copyFile(file, dst); err != nil {
					return err
				}
			}
		}
	}

	if a.config.Clean {
		logger.Info("Removing intermediate work directory.", "workdir", a.training.WorkDir)
		if err := os.RemoveAll(a.training.WorkDir); err != nil {
			return fmt.Errorf("removing workdir: %w", err)
		}
	}
	return nil
}

// copyFile copies src to dst, truncating dst if it exists.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
