package executor_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/LegacyCodeHQ/quire/executor"
	"github.com/LegacyCodeHQ/quire/taskgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	order []string
}

func (r *recorder) record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, name)
}

func (r *recorder) ran() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

func chain(t *testing.T, names ...string) *taskgraph.Graph {
	t.Helper()
	g := taskgraph.New()
	var previous *taskgraph.Step
	for _, name := range names {
		step, err := g.Register(name, taskgraph.KindCompile)
		require.NoError(t, err)
		if previous != nil {
			require.NoError(t, g.AddPredecessor(previous, step))
		}
		previous = step
	}
	return g
}

func TestRun_PredecessorsFirst(t *testing.T) {
	g := chain(t, "a", "b", "c")
	rec := &recorder{}
	handler := executor.HandlerFunc(func(_ context.Context, step *taskgraph.Step) error {
		rec.record(step.Name)
		return nil
	})

	report, err := executor.New(g, handler, 4).Run(context.Background(), "a")

	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, rec.ran())
	assert.Len(t, report.Results, 3)
	assert.Empty(t, report.Failed())
	assert.NotEmpty(t, report.RunID)
}

func TestRun_OnlyReachableSteps(t *testing.T) {
	g := chain(t, "a", "b", "c")
	rec := &recorder{}
	handler := executor.HandlerFunc(func(_ context.Context, step *taskgraph.Step) error {
		rec.record(step.Name)
		return nil
	})

	_, err := executor.New(g, handler, 1).Run(context.Background(), "b")

	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, rec.ran())
}

func TestRun_FailureStopsDependents(t *testing.T) {
	g := chain(t, "a", "b", "c")
	rec := &recorder{}
	boom := errors.New("boom")
	handler := executor.HandlerFunc(func(_ context.Context, step *taskgraph.Step) error {
		rec.record(step.Name)
		if step.Name == "b" {
			return boom
		}
		return nil
	})

	report, err := executor.New(g, handler, 2).Run(context.Background(), "a")

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	var stepErr *executor.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "b", stepErr.Step)
	assert.Equal(t, []string{"c", "b"}, rec.ran())

	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "b", failed[0].Step)
}

func TestRun_RespectsJobLimit(t *testing.T) {
	g := taskgraph.New()
	root, err := g.Register("root", taskgraph.KindAggregateCompile)
	require.NoError(t, err)
	for _, name := range []string{"one", "two", "three", "four", "five", "six"} {
		step, err := g.Register(name, taskgraph.KindCompile)
		require.NoError(t, err)
		require.NoError(t, g.AddPredecessor(root, step))
	}

	var running, peak atomic.Int32
	handler := executor.HandlerFunc(func(_ context.Context, step *taskgraph.Step) error {
		current := running.Add(1)
		for {
			observed := peak.Load()
			if current <= observed || peak.CompareAndSwap(observed, current) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		running.Add(-1)
		return nil
	})

	report, err := executor.New(g, handler, 2).Run(context.Background(), "root")

	require.NoError(t, err)
	assert.Len(t, report.Results, 7)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRun_RootRunsLast(t *testing.T) {
	g := taskgraph.New()
	root, err := g.Register("root", taskgraph.KindAggregateCompile)
	require.NoError(t, err)
	for _, name := range []string{"x", "y", "z"} {
		step, err := g.Register(name, taskgraph.KindCompile)
		require.NoError(t, err)
		require.NoError(t, g.AddPredecessor(root, step))
	}
	rec := &recorder{}
	handler := executor.HandlerFunc(func(_ context.Context, step *taskgraph.Step) error {
		rec.record(step.Name)
		return nil
	})

	_, err = executor.New(g, handler, 3).Run(context.Background(), "root")

	require.NoError(t, err)
	ran := rec.ran()
	require.Len(t, ran, 4)
	assert.Equal(t, "root", ran[3])
	assert.ElementsMatch(t, []string{"x", "y", "z"}, ran[:3])
}

func TestRun_UnknownTarget(t *testing.T) {
	g := chain(t, "a")
	handler := executor.HandlerFunc(func(context.Context, *taskgraph.Step) error { return nil })

	_, err := executor.New(g, handler, 1).Run(context.Background(), "missing")

	assert.ErrorIs(t, err, taskgraph.ErrStepNotFound)
}

func TestRun_CancelledContext(t *testing.T) {
	g := chain(t, "a", "b")
	rec := &recorder{}
	handler := executor.HandlerFunc(func(_ context.Context, step *taskgraph.Step) error {
		rec.record(step.Name)
		return nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := executor.New(g, handler, 1).Run(ctx, "a")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.ran())
}
