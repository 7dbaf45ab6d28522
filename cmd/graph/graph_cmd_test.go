package graph

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LegacyCodeHQ/quire/cmd/cmdutil"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifest = `artifacts:
  - source: lib.tex
  - source: main.tex
    images: [figures]
    depends_on: [lib]
  - source: notes.tex
`

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quire.yaml")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))

	var manifestPath string
	root := &cobra.Command{Use: "quire", SilenceUsage: true, SilenceErrors: true}
	cmdutil.AddManifestFlag(root, &manifestPath)
	root.AddCommand(NewCommand())

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"graph", "-m", path, "--no-label"}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestGraph_DOTContainsEveryStep(t *testing.T) {
	out, _, err := execute(t)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "digraph steps {"))
	for _, step := range []string{"compile-all", "clean-all", "lib:compile", "main:images", "notes:clean"} {
		assert.Contains(t, out, `"`+step+`"`)
	}
	assert.Contains(t, out, `"main:compile" -> "lib:compile";`)
	assert.Contains(t, out, `"main:compile" -> "main:images";`)
}

func TestGraph_ArtifactSubgraph(t *testing.T) {
	out, _, err := execute(t, "main", "-f", "json")
	require.NoError(t, err)

	var decoded struct {
		Steps []struct {
			Name string `json:"name"`
		} `json:"steps"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	var names []string
	for _, step := range decoded.Steps {
		names = append(names, step.Name)
	}
	assert.Equal(t, []string{"lib:compile", "main:compile", "main:images"}, names)
}

func TestGraph_CleanSubgraph(t *testing.T) {
	out, _, err := execute(t, "notes", "--clean", "-f", "mermaid")

	require.NoError(t, err)
	assert.Contains(t, out, `n0["notes:clean"]`)
	assert.NotContains(t, out, "compile")
}

func TestGraph_URL(t *testing.T) {
	out, _, err := execute(t, "-u")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "https://dreampuf.github.io/GraphvizOnline/?engine=dot#"))
}

func TestGraph_URLUnsupportedForJSON(t *testing.T) {
	out, stderr, err := execute(t, "-u", "-f", "json")

	require.NoError(t, err)
	assert.Contains(t, stderr, "URL generation is not supported for json format")
	assert.True(t, strings.HasPrefix(out, "{"))
}

func TestGraph_UnknownFormat(t *testing.T) {
	_, _, err := execute(t, "-f", "svg")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format: svg")
}
