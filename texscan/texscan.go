// Package texscan finds the files a TeX document pulls in implicitly so they
// can be watched alongside the declared inputs.
package texscan

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// ReferenceKind classifies a command that names another file.
type ReferenceKind int

const (
	ReferenceInput ReferenceKind = iota
	ReferenceGraphics
	ReferenceBibliography
)

// Reference is one file named by a document command.
type Reference struct {
	Path string
	Kind ReferenceKind
}

// ContentReader reads a file's content.
type ContentReader func(filePath string) ([]byte, error)

// FilesystemContentReader reads from disk.
func FilesystemContentReader() ContentReader {
	return os.ReadFile
}

var commandPattern = regexp.MustCompile(`\\(input|include|subfile|includegraphics|bibliography|addbibresource)\*?\s*(?:\[[^\]]*\])?\s*\{([^}]*)\}`)

// graphicsExtensions are probed in order when \includegraphics omits one.
var graphicsExtensions = []string{".pdf", ".png", ".jpg", ".jpeg", ".eps"}

// ParseReferences extracts file references from TeX source. Commented-out
// text is ignored.
func ParseReferences(source []byte) []Reference {
	var refs []Reference
	for _, line := range bytes.Split(source, []byte("\n")) {
		line = stripComment(line)
		for _, match := range commandPattern.FindAllSubmatch(line, -1) {
			command := string(match[1])
			for _, arg := range strings.Split(string(match[2]), ",") {
				arg = strings.TrimSpace(arg)
				if arg == "" {
					continue
				}
				refs = append(refs, Reference{Path: arg, Kind: kindOf(command)})
			}
		}
	}
	return refs
}

// Scan returns every existing file reachable from the document at path
// through input, graphics and bibliography commands, excluding path itself.
// Inputs are followed recursively. The result is sorted.
func Scan(path string, reader ContentReader) ([]string, error) {
	root, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}
	baseDir := filepath.Dir(root)

	found := make(map[string]bool)
	visited := map[string]bool{root: true}
	queue := []string{root}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		content, err := reader(current)
		if err != nil {
			if current == root {
				return nil, fmt.Errorf("failed to read %s: %w", current, err)
			}
			continue
		}

		for _, ref := range ParseReferences(content) {
			resolved, ok := resolveReference(baseDir, ref)
			if !ok {
				continue
			}
			found[resolved] = true
			if ref.Kind == ReferenceInput && !visited[resolved] {
				visited[resolved] = true
				queue = append(queue, resolved)
			}
		}
	}

	delete(found, root)
	files := make([]string, 0, len(found))
	for f := range found {
		files = append(files, f)
	}
	sort.Strings(files)
	return files, nil
}

// resolveReference locates ref on disk. TeX resolves relative names against
// the directory of the main document, not the including file.
func resolveReference(baseDir string, ref Reference) (string, bool) {
	candidate := ref.Path
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(baseDir, candidate)
	}

	var candidates []string
	if filepath.Ext(candidate) != "" {
		candidates = append(candidates, candidate)
	}
	switch ref.Kind {
	case ReferenceInput:
		candidates = append(candidates, candidate+".tex")
	case ReferenceBibliography:
		candidates = append(candidates, candidate+".bib")
	case ReferenceGraphics:
		for _, ext := range graphicsExtensions {
			candidates = append(candidates, candidate+ext)
		}
	}

	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, true
		}
	}
	return "", false
}

func kindOf(command string) ReferenceKind {
	switch command {
	case "includegraphics":
		return ReferenceGraphics
	case "bibliography", "addbibresource":
		return ReferenceBibliography
	default:
		return ReferenceInput
	}
}

// stripComment drops everything after the first unescaped %.
func stripComment(line []byte) []byte {
	for i := 0; i < len(line); i++ {
		if line[i] != '%' {
			continue
		}
		backslashes := 0
		for j := i - 1; j >= 0 && line[j] == '\\'; j-- {
			backslashes++
		}
		if backslashes%2 == 0 {
			return line[:i]
		}
	}
	return line
}
