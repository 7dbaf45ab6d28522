// Package vcs builds the repository caption shown on rendered graphs.
package vcs

import (
	"fmt"
	"path/filepath"

	"github.com/LegacyCodeHQ/quire/vcs/git"
)

// Label returns "<project> • <short-hash>[-dirty] • <n> steps" for a
// directory inside a git work tree, or "" when dir is not in one.
func Label(dir string, stepCount int) string {
	if dir == "" {
		dir = "."
	}

	root, err := git.GetRepositoryRoot(dir)
	if err != nil {
		return ""
	}
	hash, err := git.GetCurrentCommitHash(dir)
	if err != nil {
		return ""
	}

	label := fmt.Sprintf("%s • %s", projectName(root), hash)
	if dirty, err := git.HasUncommittedChanges(dir); err == nil && dirty {
		label += "-dirty"
	}

	if stepCount == 1 {
		label += " • 1 step"
	} else {
		label += fmt.Sprintf(" • %d steps", stepCount)
	}
	return label
}

func projectName(repoPath string) string {
	name := filepath.Base(filepath.Clean(repoPath))
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "repo"
	}
	return name
}
