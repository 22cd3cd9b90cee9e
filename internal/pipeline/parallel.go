package pipeline

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/ocrforge/tesstrain/internal/artifact"
	"github.com/ocrforge/tesstrain/internal/ctxlog"
	"github.com/ocrforge/tesstrain/internal/plan"
	"github.com/ocrforge/tesstrain/internal/runner"
)

// step is the mutable execution state wrapped around one plan node.
type step struct {
	node       *artifact.Node
	index      int
	depCount   atomic.Int32
	dependents []*step
	skipOnce   sync.Once
}

// runParallel executes independent plan steps concurrently on a bounded
// worker pool. Dependencies still execute before their dependents; a failure
// cancels steps that have not started, while already-running steps finish
// and report. Results are aggregated into the report in plan order.
func (d *Driver) runParallel(ctx context.Context, p plan.BuildPlan, report *Report) {
	logger := ctxlog.FromContext(ctx)

	steps := wireSteps(p)
	results := make([]*runner.StepResult, len(steps))

	readyChan := make(chan *step, len(steps))
	var wg sync.WaitGroup
	wg.Add(len(steps))
	var failed atomic.Bool

	for _, s := range steps {
		if s.depCount.Load() == 0 {
			readyChan <- s
		}
	}
	go func() {
		wg.Wait()
		close(readyChan)
	}()

	// runCtx gates step starts only; executing steps keep the caller's
	// context so an in-flight process can finish and report its result.
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := d.Workers
	if workers > len(steps) {
		workers = len(steps)
	}
	logger.Debug("Starting worker pool.", "workers", workers, "steps", len(steps))

	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for s := range readyChan {
				// A step pulled from the ready channel had every
				// dependency succeed, so it can only be skipped here.
				if runCtx.Err() != nil || failed.Load() {
					s.skip(ctx, &wg)
					continue
				}

				result := d.Exec.Execute(ctx, s.node)
				results[s.index] = &result

				if !result.Success {
					failed.Store(true)
					cancel()
					for _, dependent := range s.dependents {
						dependent.skip(ctx, &wg)
					}
					wg.Done()
					continue
				}

				for _, dependent := range s.dependents {
					if dependent.depCount.Add(-1) == 0 {
						readyChan <- dependent
					}
				}
				wg.Done()
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, result := range results {
		if result != nil {
			report.Steps = append(report.Steps, *result)
		}
	}
	report.Success = !failed.Load() && len(report.Steps) == len(steps)
}

// wireSteps links plan nodes into steps with dependency counters restricted
// to in-plan edges; dependencies outside the plan are already fresh.
func wireSteps(p plan.BuildPlan) []*step {
	byName := make(map[string]*step, len(p))
	steps := make([]*step, len(p))
	for i, node := range p {
		s := &step{node: node, index: i}
		steps[i] = s
		byName[node.Name] = s
	}
	for _, s := range steps {
		for _, dep := range s.node.Deps {
			if depStep, ok := byName[dep]; ok {
				s.depCount.Add(1)
				depStep.dependents = append(depStep.dependents, s)
			}
		}
	}
	return steps
}

// skip marks a step as never-started exactly once and cascades to its
// dependents, so the wait group drains even though none of them execute.
func (s *step) skip(ctx context.Context, wg *sync.WaitGroup) {
	s.skipOnce.Do(func() {
		ctxlog.FromContext(ctx).Warn("Skipping step due to upstream failure or cancellation.", "node", s.node.Name)
		wg.Done()
		for _, dependent := range s.dependents {
			dependent.skip(ctx, wg)
		}
	})
}
