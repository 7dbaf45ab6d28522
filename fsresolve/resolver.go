// Package fsresolve resolves declared paths against a project directory and
// discovers image files for conversion.
package fsresolve

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ImageExtensions are the file types picked up when an image source is a directory.
var ImageExtensions = map[string]bool{
	".svg": true,
	".eps": true,
}

var skippedDirs = map[string]bool{
	".git":  true,
	".svn":  true,
	".idea": true,
}

// Resolver resolves relative paths against Base.
type Resolver struct {
	Base string
}

// New returns a resolver rooted at base, which is made absolute.
func New(base string) (*Resolver, error) {
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory %s: %w", base, err)
	}
	return &Resolver{Base: abs}, nil
}

// Resolve returns the absolute, cleaned form of path.
func (r *Resolver) Resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty path")
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	return filepath.Join(r.Base, path), nil
}

// FindFiles expands patternOrDir into a sorted set of absolute file paths.
// A directory is walked recursively for image files, a glob pattern is
// matched as is, and anything else must name an existing file.
func (r *Resolver) FindFiles(patternOrDir string) ([]string, error) {
	resolved, err := r.Resolve(patternOrDir)
	if err != nil {
		return nil, err
	}

	if hasGlobMeta(resolved) {
		matches, err := filepath.Glob(resolved)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", patternOrDir, err)
		}
		return onlyFiles(matches), nil
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to access %s: %w", patternOrDir, err)
	}
	if !info.IsDir() {
		return []string{resolved}, nil
	}

	var files []string
	err = filepath.WalkDir(resolved, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != resolved && skippedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if ImageExtensions[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", patternOrDir, err)
	}

	sort.Strings(files)
	return files, nil
}

// FindAll expands several sources into one sorted, duplicate-free set.
func (r *Resolver) FindAll(sources []string) ([]string, error) {
	return FindAll(r, sources)
}

// Finder is the discovery half of a file resolver.
type Finder interface {
	FindFiles(patternOrDir string) ([]string, error)
}

// FindAll expands every source through finder and merges the results.
func FindAll(finder Finder, sources []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, source := range sources {
		found, err := finder.FindFiles(source)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func hasGlobMeta(path string) bool {
	return strings.ContainsAny(path, "*?[")
}

func onlyFiles(paths []string) []string {
	files := make([]string, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, p)
	}
	sort.Strings(files)
	return files
}
