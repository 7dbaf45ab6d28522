package formatters

import (
	"encoding/json"

	"github.com/LegacyCodeHQ/quire/taskgraph"
)

type jsonGraph struct {
	Label string     `json:"label,omitempty"`
	Steps []jsonStep `json:"steps"`
}

type jsonStep struct {
	Name         string   `json:"name"`
	Kind         string   `json:"kind"`
	Predecessors []string `json:"predecessors"`
}

// JSONFormatter formats step graphs as JSON.
type JSONFormatter struct{}

// Format lists every step with its kind and predecessors, sorted by name.
func (f *JSONFormatter) Format(g *taskgraph.Graph, opts RenderOptions) (string, error) {
	out := jsonGraph{Label: opts.Label, Steps: make([]jsonStep, 0, g.Len())}
	for _, step := range g.Steps() {
		predecessors, err := g.Predecessors(step.Name)
		if err != nil {
			return "", err
		}
		out.Steps = append(out.Steps, jsonStep{
			Name:         step.Name,
			Kind:         step.Kind.String(),
			Predecessors: predecessors,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// GenerateURL returns false as JSON format does not support URL generation.
func (f *JSONFormatter) GenerateURL(output string) (string, bool) {
	return "", false
}
