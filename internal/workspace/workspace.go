// Package workspace wires a loaded manifest to the pipeline, the step graph
// and the executor the commands share.
package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/LegacyCodeHQ/quire/executor"
	"github.com/LegacyCodeHQ/quire/fsresolve"
	"github.com/LegacyCodeHQ/quire/internal/buildlog"
	"github.com/LegacyCodeHQ/quire/manifest"
	"github.com/LegacyCodeHQ/quire/pipeline"
	"github.com/LegacyCodeHQ/quire/taskgraph"
	"github.com/LegacyCodeHQ/quire/texscan"
)

// Workspace is a manifest with its artifacts declared.
type Workspace struct {
	ManifestPath string
	Manifest     *manifest.Manifest
	Resolver     *fsresolve.Resolver
	Graph        *taskgraph.Graph
	Pipeline     *pipeline.Pipeline
}

// Open loads the manifest at manifestPath, or the one discovered in the
// working directory when manifestPath is empty, and declares its artifacts.
func Open(ctx context.Context, manifestPath string) (*Workspace, error) {
	if manifestPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		manifestPath, err = manifest.Discover(wd)
		if err != nil {
			return nil, err
		}
	}

	manifestPath, err := filepath.Abs(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve manifest path: %w", err)
	}
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}

	resolver, err := fsresolve.New(m.Dir)
	if err != nil {
		return nil, err
	}

	logger := buildlog.FromContext(ctx)
	g := taskgraph.New()
	p := pipeline.New(resolver, g, pipeline.WithLogger(logger))
	if err := manifest.Apply(m, p); err != nil {
		return nil, err
	}
	logger.Debug("opened workspace", "manifest", manifestPath, "artifacts", len(m.Artifacts), "steps", g.Len())

	return &Workspace{
		ManifestPath: manifestPath,
		Manifest:     m,
		Resolver:     resolver,
		Graph:        g,
		Pipeline:     p,
	}, nil
}

// Jobs picks the parallelism: the flag when positive, then the manifest, then
// the CPU count.
func (w *Workspace) Jobs(flag int) int {
	switch {
	case flag > 0:
		return flag
	case w.Manifest.Jobs > 0:
		return w.Manifest.Jobs
	default:
		return runtime.NumCPU()
	}
}

// Executor returns an executor that runs document steps through runner.
func (w *Workspace) Executor(runner executor.CommandRunner, jobs int) *executor.Executor {
	actions := &executor.Actions{
		Owners:    w.Pipeline,
		Files:     w.Resolver,
		Runner:    runner,
		Toolchain: w.Manifest.ExecutorToolchain(),
	}
	return executor.New(w.Graph, actions, w.Jobs(jobs))
}

// CompileTargets returns the compile steps of the named artifacts, or the
// compile-all aggregate when none are named.
func (w *Workspace) CompileTargets(names ...string) ([]string, error) {
	return w.targets(names, w.Pipeline.CompileAll, func(s pipeline.Steps) *taskgraph.Step { return s.Compile })
}

// CleanTargets returns the clean steps of the named artifacts, or the
// clean-all aggregate when none are named.
func (w *Workspace) CleanTargets(names ...string) ([]string, error) {
	return w.targets(names, w.Pipeline.CleanAll, func(s pipeline.Steps) *taskgraph.Step { return s.Clean })
}

func (w *Workspace) targets(names []string, all func() (*taskgraph.Step, error), pick func(pipeline.Steps) *taskgraph.Step) ([]string, error) {
	if len(names) == 0 {
		step, err := all()
		if err != nil {
			return nil, err
		}
		return []string{step.Name}, nil
	}

	targets := make([]string, 0, len(names))
	for _, name := range names {
		steps, err := w.Pipeline.StepsFor(name)
		if err != nil {
			return nil, err
		}
		targets = append(targets, pick(steps).Name)
	}
	return targets, nil
}

// WatchedFiles lists every input a rebuild depends on: the manifest, declared
// sources, bibliographies, auxiliary files, images and files the sources pull
// in through input commands. Files the build writes itself are left out, even
// when a document includes them.
func (w *Workspace) WatchedFiles() ([]string, error) {
	toolchain := w.Manifest.ExecutorToolchain()
	seen := map[string]bool{w.ManifestPath: true}
	var produced []string
	add := func(paths ...string) {
		for _, p := range paths {
			if p != "" {
				seen[p] = true
			}
		}
	}

	for _, a := range w.Pipeline.All() {
		add(a.SourcePath, a.BibliographyPath)
		add(a.AuxiliaryInputs...)

		var images []string
		if a.HasImages() {
			var err error
			images, err = w.Resolver.FindAll(a.ImageSources)
			if err != nil {
				return nil, fmt.Errorf("failed to list images of %s: %w", a.Name, err)
			}
			add(images...)
		}
		produced = append(produced, toolchain.Outputs(a, images)...)

		// Sources that do not exist yet have nothing to scan.
		if implicit, err := texscan.Scan(a.SourcePath, texscan.FilesystemContentReader()); err == nil {
			add(implicit...)
		}
	}

	for _, f := range produced {
		delete(seen, f)
	}

	files := make([]string, 0, len(seen))
	for f := range seen {
		files = append(files, f)
	}
	sort.Strings(files)
	return files, nil
}
