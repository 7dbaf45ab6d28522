// Package executor runs a synthesized step graph. Steps without an
// ancestor/descendant relationship run in parallel up to a job limit; the
// first failure cancels everything still pending.
package executor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/LegacyCodeHQ/quire/internal/buildlog"
	"github.com/LegacyCodeHQ/quire/taskgraph"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Handler performs the work of one step.
type Handler interface {
	Execute(ctx context.Context, step *taskgraph.Step) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, step *taskgraph.Step) error

// Execute calls f.
func (f HandlerFunc) Execute(ctx context.Context, step *taskgraph.Step) error {
	return f(ctx, step)
}

// StepError reports the step whose handler failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Result records one finished step.
type Result struct {
	Step     string
	Kind     taskgraph.Kind
	Duration time.Duration
	Err      error
}

// Report lists the steps of one run in completion order.
type Report struct {
	RunID   string
	Results []Result
}

// Failed returns the results that carry an error.
func (r *Report) Failed() []Result {
	var failed []Result
	for _, result := range r.Results {
		if result.Err != nil {
			failed = append(failed, result)
		}
	}
	return failed
}

// Executor runs steps of a graph through a handler.
type Executor struct {
	graph   *taskgraph.Graph
	handler Handler
	jobs    int
}

// New creates an executor running at most jobs steps at once. jobs below one
// means one.
func New(graph *taskgraph.Graph, handler Handler, jobs int) *Executor {
	if jobs < 1 {
		jobs = 1
	}
	return &Executor{graph: graph, handler: handler, jobs: jobs}
}

// Run executes the targets and everything they transitively need. A step
// starts only after all of its predecessors succeeded.
func (e *Executor) Run(ctx context.Context, targets ...string) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}
	logger := buildlog.FromContext(ctx).With("run", report.RunID)

	names, err := e.graph.Reachable(targets...)
	if err != nil {
		return report, err
	}

	pending := make(map[string]int, len(names))
	dependents := make(map[string][]string, len(names))
	var ready []string
	for _, name := range names {
		preds, err := e.graph.Predecessors(name)
		if err != nil {
			return report, err
		}
		pending[name] = len(preds)
		for _, pred := range preds {
			dependents[pred] = append(dependents[pred], name)
		}
		if len(preds) == 0 {
			ready = append(ready, name)
		}
	}
	logger.Info("starting build", "targets", targets, "steps", len(names), "jobs", e.jobs)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.jobs)

	var mu sync.Mutex
	done := make(chan string, len(names))
	remaining := len(names)
	inflight := 0

	for remaining > 0 {
		for len(ready) > 0 && gctx.Err() == nil {
			name := ready[0]
			ready = ready[1:]
			step, ok := e.graph.Step(name)
			if !ok {
				return report, fmt.Errorf("%s: %w", name, taskgraph.ErrStepNotFound)
			}

			inflight++
			g.Go(func() error {
				start := time.Now()
				logger.Debug("running step", "step", step.Name, "kind", step.Kind.String())
				err := e.handler.Execute(gctx, step)

				mu.Lock()
				report.Results = append(report.Results, Result{Step: step.Name, Kind: step.Kind, Duration: time.Since(start), Err: err})
				mu.Unlock()

				if err != nil {
					logger.Error("step failed", "step", step.Name, "error", err)
					return &StepError{Step: step.Name, Err: err}
				}
				logger.Info("step finished", "step", step.Name, "duration", time.Since(start))
				done <- step.Name
				return nil
			})
		}

		if inflight == 0 {
			break
		}

		select {
		case name := <-done:
			inflight--
			remaining--
			var unlocked []string
			for _, dependent := range dependents[name] {
				pending[dependent]--
				if pending[dependent] == 0 {
					unlocked = append(unlocked, dependent)
				}
			}
			sort.Strings(unlocked)
			ready = append(ready, unlocked...)
		case <-gctx.Done():
			inflight = 0
		}

		if gctx.Err() != nil {
			break
		}
	}

	if err := g.Wait(); err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	if remaining > 0 {
		return report, errors.New("build stopped before every step ran")
	}

	logger.Info("build finished", "steps", len(report.Results))
	return report, nil
}
