package dot_test

import (
	"strings"
	"testing"

	"github.com/LegacyCodeHQ/quire/cmd/graph/formatters"
	"github.com/LegacyCodeHQ/quire/cmd/graph/formatters/dot"
	"github.com/LegacyCodeHQ/quire/internal/testhelpers"
	"github.com/LegacyCodeHQ/quire/taskgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat_BookGraph(t *testing.T) {
	formatter := &dot.Formatter{}
	output, err := formatter.Format(testhelpers.BookGraph(t), formatters.RenderOptions{})
	require.NoError(t, err)

	g := testhelpers.DotGoldie(t)
	g.Assert(t, t.Name(), []byte(output))
}

func TestFormat_WithLabel(t *testing.T) {
	formatter := &dot.Formatter{}
	output, err := formatter.Format(testhelpers.ImageGraph(t), formatters.RenderOptions{Label: "thesis • 1a2b3c4 • 5 steps"})
	require.NoError(t, err)

	g := testhelpers.DotGoldie(t)
	g.Assert(t, t.Name(), []byte(output))
}

func TestFormat_EmptyGraph(t *testing.T) {
	formatter := &dot.Formatter{}
	output, err := formatter.Format(taskgraph.New(), formatters.RenderOptions{})
	require.NoError(t, err)

	assert.Equal(t, "digraph steps {\n  rankdir=LR;\n  node [shape=box];\n\n}", output)
}

func TestGenerateURL(t *testing.T) {
	formatter := &dot.Formatter{}

	url, ok := formatter.GenerateURL("digraph steps {}")

	assert.True(t, ok)
	assert.True(t, strings.HasPrefix(url, "https://dreampuf.github.io/GraphvizOnline/?engine=dot#"))
	assert.Contains(t, url, "digraph%20steps%20%7B%7D")
}
