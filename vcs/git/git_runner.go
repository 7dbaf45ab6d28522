package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const gitCommandTimeout = 10 * time.Second

// ErrNotRepository is returned when a directory is outside any git work tree.
var ErrNotRepository = errors.New("not a git repository")

func runGitCommand(repoPath string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), gitCommandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = repoPath

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrText := strings.TrimSpace(stderr.String())
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return "", fmt.Errorf("git command timed out after %s", gitCommandTimeout)
		case strings.Contains(strings.ToLower(stderrText), "not a git repository"):
			return "", fmt.Errorf("%s: %w", repoPath, ErrNotRepository)
		case stderrText != "":
			return "", fmt.Errorf("git command failed: %s", stderrText)
		default:
			return "", err
		}
	}

	return strings.TrimSpace(stdout.String()), nil
}
