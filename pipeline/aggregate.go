package pipeline

import (
	"fmt"

	"github.com/LegacyCodeHQ/quire/taskgraph"
)

// aggregate returns the singleton aggregate step of kind, creating it on
// first use.
func (p *Pipeline) aggregate(kind taskgraph.Kind) (*taskgraph.Step, error) {
	if step, ok := p.aggregates[kind]; ok {
		return step, nil
	}
	if !kind.IsAggregate() {
		return nil, fmt.Errorf("%s is not an aggregate kind", kind)
	}

	step, err := p.tasks.Register(kind.String(), kind)
	if err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", kind, err)
	}
	p.aggregates[kind] = step
	return step, nil
}

// attach makes the aggregate matching step's kind wait on step.
func (p *Pipeline) attach(step *taskgraph.Step) error {
	var kind taskgraph.Kind
	switch step.Kind {
	case taskgraph.KindCompile:
		kind = taskgraph.KindAggregateCompile
	case taskgraph.KindClean:
		kind = taskgraph.KindAggregateClean
	default:
		return fmt.Errorf("%s steps are not aggregated", step.Kind)
	}

	aggregate, err := p.aggregate(kind)
	if err != nil {
		return err
	}
	if err := p.tasks.AddPredecessor(aggregate, step); err != nil {
		return fmt.Errorf("failed to attach %s to %s: %w", step.Name, aggregate.Name, err)
	}
	return nil
}
