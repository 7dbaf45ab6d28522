package mermaid_test

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/LegacyCodeHQ/quire/cmd/graph/formatters"
	"github.com/LegacyCodeHQ/quire/cmd/graph/formatters/mermaid"
	"github.com/LegacyCodeHQ/quire/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat_BookGraph(t *testing.T) {
	formatter := &mermaid.Formatter{}
	output, err := formatter.Format(testhelpers.BookGraph(t), formatters.RenderOptions{})
	require.NoError(t, err)

	g := testhelpers.MermaidGoldie(t)
	g.Assert(t, t.Name(), []byte(output))
}

func TestFormat_WithLabel(t *testing.T) {
	formatter := &mermaid.Formatter{}
	output, err := formatter.Format(testhelpers.ImageGraph(t), formatters.RenderOptions{Label: "thesis • 1a2b3c4 • 5 steps"})
	require.NoError(t, err)

	g := testhelpers.MermaidGoldie(t)
	g.Assert(t, t.Name(), []byte(output))
}

func TestGenerateURL_EmbedsDiagram(t *testing.T) {
	formatter := &mermaid.Formatter{}
	diagram := "flowchart LR\n    n0[\"main:compile\"]"

	url, ok := formatter.GenerateURL(diagram)
	require.True(t, ok)

	const prefix = "https://mermaid.live/edit#base64:"
	require.True(t, strings.HasPrefix(url, prefix))
	decoded, err := base64.URLEncoding.DecodeString(strings.TrimPrefix(url, prefix))
	require.NoError(t, err)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(decoded, &payload))
	assert.Equal(t, diagram, payload["code"])
}
