package artifact

import (
	"fmt"
	"path/filepath"
)

// FileResolver turns declared paths into absolute locations.
type FileResolver interface {
	Resolve(path string) (string, error)
	FindFiles(patternOrDir string) ([]string, error)
}

// Registry stores declared artifacts by name. It is not safe for concurrent
// use; declarations are sequential and their order is meaningful.
type Registry struct {
	resolver  FileResolver
	artifacts map[string]*Artifact
	order     []string
}

// NewRegistry creates an empty registry that resolves paths through resolver.
func NewRegistry(resolver FileResolver) *Registry {
	return &Registry{
		resolver:  resolver,
		artifacts: make(map[string]*Artifact),
	}
}

// Declare validates spec, resolves its dependencies against previously declared
// artifacts and stores the result under its derived name. A name that already
// exists is replaced and every artifact referencing the old record is rebound
// to the new one. On error the registry is left untouched.
func (r *Registry) Declare(spec Spec) (*Artifact, error) {
	a, err := r.Prepare(spec)
	if err != nil {
		return nil, err
	}
	r.Commit(a)
	return a, nil
}

// Prepare validates spec and resolves it into an artifact without storing
// it. The result is only valid for a Commit before any other declaration.
func (r *Registry) Prepare(spec Spec) (*Artifact, error) {
	if spec.SourceFile == "" {
		return nil, ErrMissingSource
	}
	name := NameFor(spec.SourceFile)

	deps, err := r.resolveDependencies(name, spec.DependsOn)
	if err != nil {
		return nil, err
	}

	return r.build(name, spec, deps)
}

// Commit stores a prepared artifact, replacing and rebinding any artifact
// of the same name.
func (r *Registry) Commit(a *Artifact) {
	previous, exists := r.artifacts[a.Name]
	if !exists {
		r.order = append(r.order, a.Name)
	}
	r.artifacts[a.Name] = a
	if exists {
		r.rebind(previous, a)
	}
}

// Get returns the artifact registered under name.
func (r *Registry) Get(name string) (*Artifact, error) {
	a, ok := r.artifacts[normalizeName(name)]
	if !ok {
		return nil, &ArtifactError{Name: name, Err: ErrUnknownArtifact}
	}
	return a, nil
}

// All returns every artifact in first-declaration order.
func (r *Registry) All() []*Artifact {
	all := make([]*Artifact, 0, len(r.order))
	for _, name := range r.order {
		all = append(all, r.artifacts[name])
	}
	return all
}

// Len returns the number of registered artifacts.
func (r *Registry) Len() int {
	return len(r.order)
}

func (r *Registry) resolveDependencies(name string, names []string) ([]*Artifact, error) {
	deps := make([]*Artifact, 0, len(names))
	seen := make(map[string]bool, len(names))

	for _, depName := range names {
		depName = normalizeName(depName)
		if depName == name {
			return nil, &DependencyError{Artifact: name, Dependency: depName, Err: ErrCyclicDependency}
		}
		if seen[depName] {
			continue
		}
		seen[depName] = true

		dep, ok := r.artifacts[depName]
		if !ok {
			return nil, &DependencyError{Artifact: name, Dependency: depName, Err: ErrUnknownDependency}
		}
		deps = append(deps, dep)
	}

	// A redeclared name may already be depended on; any dependency that reaches
	// the name would close a loop once dependents are rebound.
	if _, exists := r.artifacts[name]; exists {
		for _, dep := range deps {
			if reaches(dep, name, make(map[*Artifact]bool)) {
				return nil, &DependencyError{Artifact: name, Dependency: dep.Name, Err: ErrCyclicDependency}
			}
		}
	}

	return deps, nil
}

func (r *Registry) build(name string, spec Spec, deps []*Artifact) (*Artifact, error) {
	outputFile := spec.OutputFile
	if outputFile == "" {
		outputFile = defaultOutputFile(spec.SourceFile, spec.OutputKind)
	}

	sourcePath, err := r.resolve(spec.SourceFile)
	if err != nil {
		return nil, err
	}
	outputPath, err := r.resolve(outputFile)
	if err != nil {
		return nil, err
	}

	var bibliographyPath string
	if spec.BibliographyFile != "" {
		bibliographyPath, err = r.resolve(spec.BibliographyFile)
		if err != nil {
			return nil, err
		}
	}

	imageSources, err := r.resolveAll(spec.ImageSources)
	if err != nil {
		return nil, err
	}
	auxiliaryInputs, err := r.resolveAll(spec.AuxiliaryFiles)
	if err != nil {
		return nil, err
	}

	return &Artifact{
		Name:             name,
		SourcePath:       sourcePath,
		OutputPath:       outputPath,
		BibliographyPath: bibliographyPath,
		ImageSources:     imageSources,
		AuxiliaryInputs:  auxiliaryInputs,
		DependsOn:        deps,
		ExtraArgs:        spec.ExtraArgs,
	}, nil
}

func (r *Registry) resolve(p string) (string, error) {
	if r.resolver == nil {
		return filepath.Clean(p), nil
	}
	resolved, err := r.resolver.Resolve(p)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", p, err)
	}
	return resolved, nil
}

func (r *Registry) resolveAll(paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	resolved := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := r.resolve(p)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, abs)
	}
	return resolved, nil
}

// rebind points every reference to previous at current.
func (r *Registry) rebind(previous, current *Artifact) {
	for _, name := range r.order {
		a := r.artifacts[name]
		for i, dep := range a.DependsOn {
			if dep == previous {
				a.DependsOn[i] = current
			}
		}
	}
}

func reaches(a *Artifact, name string, visited map[*Artifact]bool) bool {
	if a.Name == name {
		return true
	}
	if visited[a] {
		return false
	}
	visited[a] = true
	for _, dep := range a.DependsOn {
		if reaches(dep, name, visited) {
			return true
		}
	}
	return false
}

func normalizeName(name string) string {
	return filepath.ToSlash(filepath.Clean(name))
}
