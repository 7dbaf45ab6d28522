package order

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LegacyCodeHQ/quire/artifact"
	"github.com/LegacyCodeHQ/quire/cmd/cmdutil"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bookManifest = `artifacts:
  - source: preface.tex
  - source: chapters/one.tex
  - source: chapters/two.tex
    depends_on: [chapters/one]
  - source: book.tex
    bibliography: refs.bib
    depends_on: [preface, chapters/two, chapters/one]
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quire.yaml")
	require.NoError(t, os.WriteFile(path, []byte(bookManifest), 0o644))

	var manifest string
	root := &cobra.Command{Use: "quire", SilenceUsage: true, SilenceErrors: true}
	cmdutil.AddManifestFlag(root, &manifest)
	root.AddCommand(NewCommand())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs(append([]string{"order", "-m", path}, args...))

	err := root.Execute()
	return out.String(), err
}

func TestOrder_SingleArtifact(t *testing.T) {
	out, err := run(t, "chapters/two")

	require.NoError(t, err)
	assert.Equal(t, "chapters/one\nchapters/two\n", out)
}

func TestOrder_DiamondVisitsEachOnce(t *testing.T) {
	out, err := run(t, "book")

	require.NoError(t, err)
	assert.Equal(t, "preface\nchapters/one\nchapters/two\nbook\n", out)
}

func TestOrder_AllArtifacts(t *testing.T) {
	out, err := run(t)

	require.NoError(t, err)
	assert.Equal(t, "preface\nchapters/one\nchapters/two\nbook\n", out)
}

func TestOrder_UnknownArtifact(t *testing.T) {
	_, err := run(t, "appendix")

	assert.ErrorIs(t, err, artifact.ErrUnknownArtifact)
}

func TestOrder_Steps(t *testing.T) {
	out, err := run(t, "--steps", "chapters/two")

	require.NoError(t, err)
	assert.Equal(t, []string{"chapters/one:compile", "chapters/two:compile"}, strings.Fields(out))
}

func TestOrder_StepsPredecessorsFirst(t *testing.T) {
	out, err := run(t, "--steps")

	require.NoError(t, err)
	steps := strings.Fields(out)
	position := make(map[string]int, len(steps))
	for i, step := range steps {
		position[step] = i
	}
	assert.Less(t, position["book:bibliography"], position["book:compile"])
	assert.Less(t, position["chapters/one:compile"], position["chapters/two:compile"])
	assert.Less(t, position["book:compile"], position["compile-all"])
	assert.NotContains(t, position, "book:clean")
}
