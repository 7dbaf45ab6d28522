package taskgraph

import (
	"fmt"
	"sort"

	graphlib "github.com/dominikbraun/graph"
)

// Reachable returns every step the given targets need, targets included,
// following predecessor edges. Names are sorted.
func (g *Graph) Reachable(targets ...string) ([]string, error) {
	reachable := make(map[string]bool)
	for _, target := range targets {
		if _, ok := g.steps[target]; !ok {
			return nil, fmt.Errorf("%s: %w", target, ErrStepNotFound)
		}
		if reachable[target] {
			continue
		}
		err := graphlib.DFS(g.g, target, func(name string) bool {
			reachable[name] = true
			return false
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk from %s: %w", target, err)
		}
	}

	names := make([]string, 0, len(reachable))
	for name := range reachable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Subgraph returns a new graph holding the steps the targets need and the
// edges between them.
func (g *Graph) Subgraph(targets ...string) (*Graph, error) {
	names, err := g.Reachable(targets...)
	if err != nil {
		return nil, err
	}
	return g.extract(names)
}

// extract copies the named steps; edges survive only when both ends are kept.
func (g *Graph) extract(names []string) (*Graph, error) {
	keep := make(map[string]bool, len(names))
	for _, name := range names {
		keep[name] = true
	}

	sub := New()
	copies := make(map[string]*Step, len(names))
	for _, name := range names {
		step, err := sub.Register(name, g.steps[name].Kind)
		if err != nil {
			return nil, err
		}
		copies[name] = step
	}

	adjacency, err := g.g.AdjacencyMap()
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		for _, predecessor := range sortedKeys(adjacency[name]) {
			if !keep[predecessor] {
				continue
			}
			if err := sub.AddPredecessor(copies[name], copies[predecessor]); err != nil {
				return nil, err
			}
		}
	}

	return sub, nil
}
