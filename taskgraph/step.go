// Package taskgraph stores orchestrated steps and the predecessor edges between
// them. Steps are identified by name; registering a name again replaces the
// step in place.
package taskgraph

import "errors"

// Kind is the closed set of step kinds the orchestrator creates.
type Kind int

const (
	KindCompile Kind = iota
	KindClean
	KindBibliography
	KindImageConvert
	KindAggregateCompile
	KindAggregateClean
)

// String returns the name used in step identifiers and rendered graphs.
func (k Kind) String() string {
	switch k {
	case KindCompile:
		return "compile"
	case KindClean:
		return "clean"
	case KindBibliography:
		return "bibliography"
	case KindImageConvert:
		return "images"
	case KindAggregateCompile:
		return "compile-all"
	case KindAggregateClean:
		return "clean-all"
	default:
		return "unknown"
	}
}

// IsAggregate reports whether steps of this kind belong to no artifact.
func (k Kind) IsAggregate() bool {
	return k == KindAggregateCompile || k == KindAggregateClean
}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindCompile,
		KindClean,
		KindBibliography,
		KindImageConvert,
		KindAggregateCompile,
		KindAggregateClean,
	}
}

var (
	ErrStepNotFound = errors.New("step not found")
	// ErrStaleStep is returned when a handle superseded by a later Register is used.
	ErrStaleStep = errors.New("step handle is stale")
	ErrCycle     = errors.New("edge would create a cycle")
)

// Step is the handle returned by Register.
type Step struct {
	Name string
	Kind Kind
}

// Registry is the capability the orchestrator needs from a task store.
type Registry interface {
	// Register creates the step called name, replacing any step of that name.
	Register(name string, kind Kind) (*Step, error)
	// AddPredecessor declares that predecessor must complete before step.
	AddPredecessor(step, predecessor *Step) error
}
