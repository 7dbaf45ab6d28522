package pipeline

import (
	"errors"
	"fmt"

	"github.com/LegacyCodeHQ/quire/artifact"
	"github.com/LegacyCodeHQ/quire/taskgraph"
)

// remover is implemented by task registries that can forget a step. Without
// it stale steps stay in the task registry.
type remover interface {
	Remove(name string) error
}

// Synthesize registers the steps of a and wires their edges:
//   - compile waits on the compile step of every dependency;
//   - compile waits on the artifact's own bibliography and image steps;
//   - clean, bibliography and image steps have no predecessors.
//
// Compile and clean are attached to their aggregates. Auxiliary steps left
// over from an earlier declaration of the same name are removed.
func (p *Pipeline) Synthesize(a *artifact.Artifact) (Steps, error) {
	for _, dep := range a.DependsOn {
		if dep == a || dep.Name == a.Name {
			return Steps{}, &artifact.DependencyError{Artifact: a.Name, Dependency: dep.Name, Err: artifact.ErrCyclicDependency}
		}
	}

	previous := p.steps[a.Name]

	compile, err := p.register(a, taskgraph.KindCompile)
	if err != nil {
		return Steps{}, err
	}
	clean, err := p.register(a, taskgraph.KindClean)
	if err != nil {
		return Steps{}, err
	}
	steps := Steps{Compile: compile, Clean: clean}

	for _, dep := range a.DependsOn {
		depSteps, ok := p.steps[dep.Name]
		if !ok || depSteps.Compile == nil {
			return Steps{}, &artifact.DependencyError{Artifact: a.Name, Dependency: dep.Name, Err: artifact.ErrUnknownDependency}
		}
		if err := p.tasks.AddPredecessor(compile, depSteps.Compile); err != nil {
			if errors.Is(err, taskgraph.ErrCycle) {
				return Steps{}, &artifact.DependencyError{Artifact: a.Name, Dependency: dep.Name, Err: artifact.ErrCyclicDependency}
			}
			return Steps{}, err
		}
	}

	if a.HasBibliography() {
		steps.Bibliography, err = p.prerequisite(a, compile, taskgraph.KindBibliography)
		if err != nil {
			return Steps{}, err
		}
	} else if err := p.remove(previous.Bibliography); err != nil {
		return Steps{}, err
	}

	if a.HasImages() {
		steps.ImageConvert, err = p.prerequisite(a, compile, taskgraph.KindImageConvert)
		if err != nil {
			return Steps{}, err
		}
	} else if err := p.remove(previous.ImageConvert); err != nil {
		return Steps{}, err
	}

	p.steps[a.Name] = steps

	if err := p.attach(compile); err != nil {
		return Steps{}, err
	}
	if err := p.attach(clean); err != nil {
		return Steps{}, err
	}

	p.logger.Debug("synthesized steps", "artifact", a.Name, "count", len(steps.All()))
	return steps, nil
}

func (p *Pipeline) register(a *artifact.Artifact, kind taskgraph.Kind) (*taskgraph.Step, error) {
	name := StepName(a.Name, kind)
	step, err := p.tasks.Register(name, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", name, err)
	}
	p.owners[name] = a.Name
	return step, nil
}

// prerequisite registers a step of kind and makes compile wait on it.
func (p *Pipeline) prerequisite(a *artifact.Artifact, compile *taskgraph.Step, kind taskgraph.Kind) (*taskgraph.Step, error) {
	step, err := p.register(a, kind)
	if err != nil {
		return nil, err
	}
	if err := p.tasks.AddPredecessor(compile, step); err != nil {
		return nil, err
	}
	return step, nil
}

func (p *Pipeline) remove(step *taskgraph.Step) error {
	if step == nil {
		return nil
	}
	delete(p.owners, step.Name)

	r, ok := p.tasks.(remover)
	if !ok {
		return nil
	}
	if err := r.Remove(step.Name); err != nil && !errors.Is(err, taskgraph.ErrStepNotFound) {
		return fmt.Errorf("failed to remove stale step %s: %w", step.Name, err)
	}
	return nil
}

// restore undoes a failed synthesis for name. A stored artifact of that name
// gets its steps synthesized again; otherwise the steps registered for name
// are dropped.
func (p *Pipeline) restore(name string) error {
	if previous, err := p.artifacts.Get(name); err == nil {
		if _, err := p.Synthesize(previous); err != nil {
			return fmt.Errorf("failed to restore steps for %s: %w", name, err)
		}
		return nil
	}

	delete(p.steps, name)
	for _, kind := range []taskgraph.Kind{taskgraph.KindCompile, taskgraph.KindClean, taskgraph.KindBibliography, taskgraph.KindImageConvert} {
		if err := p.remove(&taskgraph.Step{Name: StepName(name, kind), Kind: kind}); err != nil {
			return err
		}
	}
	return nil
}
