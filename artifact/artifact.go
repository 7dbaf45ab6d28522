// Package artifact holds the declared compilation units of a document build and
// the registry that resolves them by name.
package artifact

import (
	"path"
	"path/filepath"
	"strings"
)

// DefaultOutputKind is the output extension used when a Spec names none.
const DefaultOutputKind = "pdf"

// Spec is the caller-facing declaration of one artifact.
type Spec struct {
	// SourceFile is the main document. Required.
	SourceFile string
	// OutputFile defaults to SourceFile with its extension swapped to OutputKind.
	OutputFile string
	// OutputKind is the output extension without the dot, "pdf" when empty.
	OutputKind string
	// BibliographyFile enables the bibliography step when set.
	BibliographyFile string
	// ImageSources are directories, glob patterns or files; they enable the image step.
	ImageSources []string
	// AuxiliaryFiles are watched inputs that never produce steps of their own.
	AuxiliaryFiles []string
	// DependsOn names artifacts that must already be declared.
	DependsOn []string
	// ExtraArgs is passed through to the compiler untouched.
	ExtraArgs string
}

// Artifact is a resolved, registered compilation unit.
type Artifact struct {
	Name             string
	SourcePath       string
	OutputPath       string
	BibliographyPath string
	ImageSources     []string
	AuxiliaryInputs  []string
	// DependsOn references other registered artifacts. They are shared, not owned.
	DependsOn []*Artifact
	ExtraArgs string
}

// HasBibliography reports whether the artifact needs a bibliography pass.
func (a *Artifact) HasBibliography() bool {
	return a.BibliographyPath != ""
}

// HasImages reports whether the artifact needs an image conversion pass.
func (a *Artifact) HasImages() bool {
	return len(a.ImageSources) > 0
}

// DependencyNames returns the names of the direct dependencies, in declaration order.
func (a *Artifact) DependencyNames() []string {
	names := make([]string, 0, len(a.DependsOn))
	for _, dep := range a.DependsOn {
		names = append(names, dep.Name)
	}
	return names
}

// NameFor derives the registry name of a source file by stripping its last extension.
func NameFor(sourceFile string) string {
	normalized := filepath.ToSlash(filepath.Clean(sourceFile))
	return strings.TrimSuffix(normalized, path.Ext(normalized))
}

// defaultOutputFile swaps the source extension for the output kind.
func defaultOutputFile(sourceFile, kind string) string {
	if kind == "" {
		kind = DefaultOutputKind
	}
	kind = strings.TrimPrefix(kind, ".")
	return strings.TrimSuffix(sourceFile, filepath.Ext(sourceFile)) + "." + kind
}
