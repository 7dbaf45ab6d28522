package dot

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/LegacyCodeHQ/quire/cmd/graph/formatters"
	"github.com/LegacyCodeHQ/quire/taskgraph"
)

// Formatter formats step graphs as Graphviz DOT.
type Formatter struct{}

// Format converts the step graph to Graphviz DOT format. Edges point from a
// step to the steps it waits on.
func (f *Formatter) Format(g *taskgraph.Graph, opts formatters.RenderOptions) (string, error) {
	var sb strings.Builder
	sb.WriteString("digraph steps {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=box];\n")

	if opts.Label != "" {
		sb.WriteString(fmt.Sprintf("  label=%q;\n", opts.Label))
		sb.WriteString("  labelloc=t;\n")
		sb.WriteString("  labeljust=l;\n")
		sb.WriteString("  fontsize=10;\n")
		sb.WriteString("  fontname=Courier;\n")
	}
	sb.WriteString("\n")

	steps := g.Steps()
	for _, step := range steps {
		color := "white"
		if style, ok := formatters.StyleFor(step.Kind); ok {
			color = style.DotColor
		}
		if step.Kind.IsAggregate() {
			sb.WriteString(fmt.Sprintf("  %q [shape=doubleoctagon, style=filled, fillcolor=%s];\n", step.Name, color))
		} else {
			sb.WriteString(fmt.Sprintf("  %q [style=filled, fillcolor=%s];\n", step.Name, color))
		}
	}
	if len(steps) > 0 {
		sb.WriteString("\n")
	}

	for _, step := range steps {
		predecessors, err := g.Predecessors(step.Name)
		if err != nil {
			return "", err
		}
		for _, predecessor := range predecessors {
			sb.WriteString(fmt.Sprintf("  %q -> %q;\n", step.Name, predecessor))
		}
	}

	sb.WriteString("}")
	return sb.String(), nil
}

// GenerateURL creates a GraphvizOnline URL with the DOT graph embedded.
func (f *Formatter) GenerateURL(output string) (string, bool) {
	encoded := url.PathEscape(output)
	return fmt.Sprintf("https://dreampuf.github.io/GraphvizOnline/?engine=dot#%s", encoded), true
}
