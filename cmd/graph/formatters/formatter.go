// Package formatters renders a step graph for humans and tools.
package formatters

import "github.com/LegacyCodeHQ/quire/taskgraph"

// RenderOptions contains optional parameters for rendering step graphs.
type RenderOptions struct {
	// Label is an optional title or label for the graph
	Label string
}

// Formatter is the interface that all graph formatters must implement.
type Formatter interface {
	// Format converts a step graph to a formatted string representation.
	Format(g *taskgraph.Graph, opts RenderOptions) (string, error)
	// GenerateURL returns a link that opens output in an online viewer.
	GenerateURL(output string) (string, bool)
}
