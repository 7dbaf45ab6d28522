// Package testhelpers holds fixtures shared by tests across packages.
package testhelpers

import (
	"testing"

	"github.com/LegacyCodeHQ/quire/artifact"
	"github.com/LegacyCodeHQ/quire/pipeline"
	"github.com/LegacyCodeHQ/quire/taskgraph"
	"github.com/stretchr/testify/require"
)

// BookGraph synthesizes a library chapter and a book that depends on it and
// carries a bibliography.
func BookGraph(t *testing.T) *taskgraph.Graph {
	t.Helper()
	g := taskgraph.New()
	p := pipeline.New(nil, g)

	_, err := p.Declare(artifact.Spec{SourceFile: "lib.tex"})
	require.NoError(t, err)
	_, err = p.Declare(artifact.Spec{
		SourceFile:       "main.tex",
		BibliographyFile: "refs.bib",
		DependsOn:        []string{"lib"},
	})
	require.NoError(t, err)

	return g
}

// ImageGraph synthesizes a single artifact with an image conversion step.
func ImageGraph(t *testing.T) *taskgraph.Graph {
	t.Helper()
	g := taskgraph.New()
	p := pipeline.New(nil, g)

	_, err := p.Declare(artifact.Spec{SourceFile: "slides.tex", ImageSources: []string{"figures"}})
	require.NoError(t, err)

	return g
}
