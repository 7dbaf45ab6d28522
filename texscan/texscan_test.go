package texscan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReferences(t *testing.T) {
	source := []byte(`
\documentclass{article}
\input{preamble}
\include{chapters/intro}
% \input{commented}
\includegraphics[width=0.5\textwidth]{figures/plot}
\bibliography{refs,extra}
\addbibresource{more.bib}
50\% done \input{after-escaped-percent}
`)

	refs := ParseReferences(source)

	assert.Equal(t, []Reference{
		{Path: "preamble", Kind: ReferenceInput},
		{Path: "chapters/intro", Kind: ReferenceInput},
		{Path: "figures/plot", Kind: ReferenceGraphics},
		{Path: "refs", Kind: ReferenceBibliography},
		{Path: "extra", Kind: ReferenceBibliography},
		{Path: "more.bib", Kind: ReferenceBibliography},
		{Path: "after-escaped-percent", Kind: ReferenceInput},
	}, refs)
}

func TestScan_FollowsInputsRecursively(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	main := write("main.tex", `\input{chapters/one}\bibliography{refs}\input{missing}`)
	one := write("chapters/one.tex", `\includegraphics{figures/plot}\input{chapters/two.tex}`)
	two := write("chapters/two.tex", `\input{main}`)
	plot := write("figures/plot.png", "png")
	refs := write("refs.bib", "@book{}")

	files, err := Scan(main, FilesystemContentReader())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{one, two, plot, refs}, files)
	assert.IsNonDecreasing(t, files)
}

func TestScan_MissingRoot(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "nope.tex"), FilesystemContentReader())
	assert.Error(t, err)
}
