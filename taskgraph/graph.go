package taskgraph

import (
	"errors"
	"fmt"
	"sort"

	graphlib "github.com/dominikbraun/graph"
)

// Graph is the in-memory Registry. An edge step → predecessor means the
// predecessor has to finish before step starts. Graph is not safe for
// concurrent mutation; reads after construction may run concurrently.
type Graph struct {
	g     graphlib.Graph[string, string]
	steps map[string]*Step
}

// New returns an empty graph that rejects edges closing a cycle.
func New() *Graph {
	return &Graph{
		g:     graphlib.New(graphlib.StringHash, graphlib.Directed(), graphlib.PreventCycles()),
		steps: make(map[string]*Step),
	}
}

// Register creates the step called name. Registering an existing name
// supersedes the old handle: the old step's own predecessor edges are dropped
// while edges pointing at the name stay, so dependents follow the new step.
func (g *Graph) Register(name string, kind Kind) (*Step, error) {
	if name == "" {
		return nil, fmt.Errorf("step name is required")
	}

	if _, exists := g.steps[name]; exists {
		if err := g.dropPredecessorEdges(name); err != nil {
			return nil, err
		}
	} else if err := g.g.AddVertex(name); err != nil {
		return nil, fmt.Errorf("failed to add step %s: %w", name, err)
	}

	step := &Step{Name: name, Kind: kind}
	g.steps[name] = step
	return step, nil
}

// AddPredecessor records that predecessor must complete before step. Adding
// an edge that already exists is a no-op.
func (g *Graph) AddPredecessor(step, predecessor *Step) error {
	if err := g.current(step); err != nil {
		return err
	}
	if err := g.current(predecessor); err != nil {
		return err
	}
	if step.Name == predecessor.Name {
		return fmt.Errorf("%s -> %s: %w", step.Name, predecessor.Name, ErrCycle)
	}

	err := g.g.AddEdge(step.Name, predecessor.Name)
	switch {
	case err == nil, errors.Is(err, graphlib.ErrEdgeAlreadyExists):
		return nil
	case errors.Is(err, graphlib.ErrEdgeCreatesCycle):
		return fmt.Errorf("%s -> %s: %w", step.Name, predecessor.Name, ErrCycle)
	default:
		return fmt.Errorf("failed to add edge %s -> %s: %w", step.Name, predecessor.Name, err)
	}
}

// Remove deletes the named step and every edge touching it.
func (g *Graph) Remove(name string) error {
	if _, ok := g.steps[name]; !ok {
		return fmt.Errorf("%s: %w", name, ErrStepNotFound)
	}

	if err := g.dropPredecessorEdges(name); err != nil {
		return err
	}
	incoming, err := g.g.PredecessorMap()
	if err != nil {
		return err
	}
	for source := range incoming[name] {
		if err := g.g.RemoveEdge(source, name); err != nil {
			return fmt.Errorf("failed to remove edge %s -> %s: %w", source, name, err)
		}
	}
	if err := g.g.RemoveVertex(name); err != nil {
		return fmt.Errorf("failed to remove step %s: %w", name, err)
	}

	delete(g.steps, name)
	return nil
}

// Step returns the current handle registered under name.
func (g *Graph) Step(name string) (*Step, bool) {
	step, ok := g.steps[name]
	return step, ok
}

// Steps returns every registered step sorted by name.
func (g *Graph) Steps() []*Step {
	steps := make([]*Step, 0, len(g.steps))
	for _, step := range g.steps {
		steps = append(steps, step)
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i].Name < steps[j].Name })
	return steps
}

// Len returns the number of registered steps.
func (g *Graph) Len() int {
	return len(g.steps)
}

// Predecessors returns the sorted names of the steps that must finish before name.
func (g *Graph) Predecessors(name string) ([]string, error) {
	if _, ok := g.steps[name]; !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrStepNotFound)
	}
	adjacency, err := g.g.AdjacencyMap()
	if err != nil {
		return nil, err
	}
	return sortedKeys(adjacency[name]), nil
}

// Dependents returns the sorted names of the steps waiting on name.
func (g *Graph) Dependents(name string) ([]string, error) {
	if _, ok := g.steps[name]; !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrStepNotFound)
	}
	incoming, err := g.g.PredecessorMap()
	if err != nil {
		return nil, err
	}
	return sortedKeys(incoming[name]), nil
}

// Order returns every step name so that predecessors come before the steps
// that need them. The order is deterministic for a given graph.
func (g *Graph) Order() ([]string, error) {
	order, err := graphlib.StableTopologicalSort(g.g, func(a, b string) bool { return a < b })
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order, nil
}

func (g *Graph) current(step *Step) error {
	if step == nil {
		return fmt.Errorf("nil step: %w", ErrStepNotFound)
	}
	registered, ok := g.steps[step.Name]
	if !ok {
		return fmt.Errorf("%s: %w", step.Name, ErrStepNotFound)
	}
	if registered != step {
		return fmt.Errorf("%s: %w", step.Name, ErrStaleStep)
	}
	return nil
}

func (g *Graph) dropPredecessorEdges(name string) error {
	adjacency, err := g.g.AdjacencyMap()
	if err != nil {
		return err
	}
	for target := range adjacency[name] {
		if err := g.g.RemoveEdge(name, target); err != nil {
			return fmt.Errorf("failed to remove edge %s -> %s: %w", name, target, err)
		}
	}
	return nil
}

func sortedKeys(edges map[string]graphlib.Edge[string]) []string {
	keys := make([]string, 0, len(edges))
	for key := range edges {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
