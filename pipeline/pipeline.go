// Package pipeline turns artifact declarations into a wired step graph.
//
// Each declaration is handled in phases: the artifact registry validates the
// record (dependencies included), the synthesizer derives the artifact's
// steps and their predecessor edges and attaches them to the compile-all /
// clean-all aggregates, and only then is the record stored. A declaration
// whose synthesis fails leaves the registry as it was and restores the steps
// of any earlier declaration of the same name.
//
// Task registries that also implement Remove(name string) error get stale
// steps removed; with any other registry those steps stay registered and
// only stop being reported by StepsFor and Owner.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/LegacyCodeHQ/quire/artifact"
	"github.com/LegacyCodeHQ/quire/internal/buildlog"
	"github.com/LegacyCodeHQ/quire/taskgraph"
)

// Steps are the step handles synthesized for one artifact. Bibliography and
// ImageConvert are nil when the artifact does not need them.
type Steps struct {
	Compile      *taskgraph.Step
	Clean        *taskgraph.Step
	Bibliography *taskgraph.Step
	ImageConvert *taskgraph.Step
}

// All returns the non-nil steps.
func (s Steps) All() []*taskgraph.Step {
	var all []*taskgraph.Step
	for _, step := range []*taskgraph.Step{s.Compile, s.Clean, s.Bibliography, s.ImageConvert} {
		if step != nil {
			all = append(all, step)
		}
	}
	return all
}

// Pipeline owns the artifact registry and drives step synthesis against a
// task registry. It is single-threaded by contract.
type Pipeline struct {
	artifacts  *artifact.Registry
	tasks      taskgraph.Registry
	aggregates map[taskgraph.Kind]*taskgraph.Step
	steps      map[string]Steps
	owners     map[string]string
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for graph construction messages.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates an empty pipeline. Paths are resolved through resolver and
// steps are registered with tasks.
func New(resolver artifact.FileResolver, tasks taskgraph.Registry, opts ...Option) *Pipeline {
	p := &Pipeline{
		artifacts:  artifact.NewRegistry(resolver),
		tasks:      tasks,
		aggregates: make(map[taskgraph.Kind]*taskgraph.Step),
		steps:      make(map[string]Steps),
		owners:     make(map[string]string),
		logger:     buildlog.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Declare registers spec and synthesizes its steps.
func (p *Pipeline) Declare(spec artifact.Spec) (*artifact.Artifact, error) {
	a, err := p.artifacts.Prepare(spec)
	if err != nil {
		return nil, err
	}

	if _, err := p.Synthesize(a); err != nil {
		err = fmt.Errorf("failed to synthesize steps for %s: %w", a.Name, err)
		if restoreErr := p.restore(a.Name); restoreErr != nil {
			return nil, errors.Join(err, restoreErr)
		}
		return nil, err
	}
	p.artifacts.Commit(a)

	p.logger.Debug("declared artifact", "artifact", a.Name, "dependsOn", a.DependencyNames())
	return a, nil
}

// Get returns the named artifact.
func (p *Pipeline) Get(name string) (*artifact.Artifact, error) {
	return p.artifacts.Get(name)
}

// All returns every artifact in declaration order.
func (p *Pipeline) All() []*artifact.Artifact {
	return p.artifacts.All()
}

// Traverse applies op to name's dependencies and then to name itself.
func (p *Pipeline) Traverse(name string, op artifact.Operation) error {
	return p.artifacts.Traverse(name, op)
}

// CompileAll returns the aggregate step that depends on every compile step.
func (p *Pipeline) CompileAll() (*taskgraph.Step, error) {
	return p.aggregate(taskgraph.KindAggregateCompile)
}

// CleanAll returns the aggregate step that depends on every clean step.
func (p *Pipeline) CleanAll() (*taskgraph.Step, error) {
	return p.aggregate(taskgraph.KindAggregateClean)
}

// StepsFor returns the current step handles of the named artifact.
func (p *Pipeline) StepsFor(name string) (Steps, error) {
	a, err := p.artifacts.Get(name)
	if err != nil {
		return Steps{}, err
	}
	return p.steps[a.Name], nil
}

// Owner returns the artifact a step belongs to. Aggregates have no owner.
func (p *Pipeline) Owner(stepName string) (*artifact.Artifact, bool) {
	name, ok := p.owners[stepName]
	if !ok {
		return nil, false
	}
	a, err := p.artifacts.Get(name)
	if err != nil {
		return nil, false
	}
	return a, true
}

// StepName is the task registry identifier of an artifact's step of kind.
func StepName(artifactName string, kind taskgraph.Kind) string {
	return artifactName + ":" + kind.String()
}
