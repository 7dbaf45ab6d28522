package mermaid

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/LegacyCodeHQ/quire/cmd/graph/formatters"
	"github.com/LegacyCodeHQ/quire/taskgraph"
)

// Formatter formats step graphs as Mermaid.js flowcharts.
type Formatter struct{}

// Format converts the step graph to Mermaid.js flowchart format.
func (f *Formatter) Format(g *taskgraph.Graph, opts formatters.RenderOptions) (string, error) {
	var sb strings.Builder

	if opts.Label != "" {
		sb.WriteString("---\n")
		sb.WriteString(fmt.Sprintf("title: %s\n", opts.Label))
		sb.WriteString("---\n")
	}

	sb.WriteString("flowchart LR\n")

	// Mermaid node IDs can't contain ':' so steps are numbered in name order.
	steps := g.Steps()
	nodeIDs := make(map[string]string, len(steps))
	classMembers := make(map[string][]string)
	for i, step := range steps {
		nodeID := fmt.Sprintf("n%d", i)
		nodeIDs[step.Name] = nodeID

		label := strings.ReplaceAll(step.Name, "\"", "#quot;")
		if step.Kind.IsAggregate() {
			sb.WriteString(fmt.Sprintf("    %s([\"%s\"])\n", nodeID, label))
		} else {
			sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", nodeID, label))
		}

		if style, ok := formatters.StyleFor(step.Kind); ok {
			classMembers[style.Class] = append(classMembers[style.Class], nodeID)
		}
	}

	var edgesSB strings.Builder
	for _, step := range steps {
		predecessors, err := g.Predecessors(step.Name)
		if err != nil {
			return "", err
		}
		for _, predecessor := range predecessors {
			edgesSB.WriteString(fmt.Sprintf("    %s --> %s\n", nodeIDs[step.Name], nodeIDs[predecessor]))
		}
	}
	if edgesSB.Len() > 0 {
		sb.WriteString("\n")
		sb.WriteString(edgesSB.String())
	}

	var defsSB, classSB strings.Builder
	for _, style := range formatters.StyledKinds() {
		members := classMembers[style.Class]
		if len(members) == 0 {
			continue
		}
		defsSB.WriteString(fmt.Sprintf("    classDef %s %s\n", style.Class, style.Mermaid))
		classSB.WriteString(fmt.Sprintf("    class %s %s\n", strings.Join(members, ","), style.Class))
	}
	if defsSB.Len() > 0 {
		sb.WriteString("\n")
		sb.WriteString(defsSB.String())
		sb.WriteString(classSB.String())
	}

	return strings.TrimSuffix(sb.String(), "\n"), nil
}

// GenerateURL creates a mermaid.live URL with the diagram embedded.
func (f *Formatter) GenerateURL(output string) (string, bool) {
	payload := map[string]interface{}{
		"code": output,
		"mermaid": map[string]interface{}{
			"theme": "default",
		},
		"autoSync":      true,
		"updateDiagram": true,
	}

	jsonBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("https://mermaid.live/edit#%s", url.PathEscape(output)), true
	}

	encoded := base64.URLEncoding.EncodeToString(jsonBytes)
	return fmt.Sprintf("https://mermaid.live/edit#base64:%s", encoded), true
}
