package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// CommandRunner runs one external command in dir.
type CommandRunner interface {
	Run(ctx context.Context, dir string, argv []string) error
}

// CommandError carries the captured stderr of a failed command.
type CommandError struct {
	Argv   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s failed: %s", e.Argv[0], e.Stderr)
	}
	return fmt.Sprintf("%s failed: %v", e.Argv[0], e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExecRunner runs commands with os/exec. A zero Timeout means no limit.
type ExecRunner struct {
	Timeout time.Duration
}

// Run executes argv, capturing stdout and stderr. Only the tail of stderr is
// kept on failure; TeX engines log to stdout and the .log file.
func (r ExecRunner) Run(ctx context.Context, dir string, argv []string) error {
	if len(argv) == 0 {
		return errors.New("empty command")
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrText := tail(strings.TrimSpace(stderr.String()), 20)
		if stderrText == "" {
			stderrText = tail(strings.TrimSpace(stdout.String()), 20)
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &CommandError{Argv: argv, Stderr: stderrText, Err: fmt.Errorf("timed out after %s: %w", r.Timeout, ctx.Err())}
		}
		return &CommandError{Argv: argv, Stderr: stderrText, Err: err}
	}

	return nil
}

func tail(text string, lines int) string {
	parts := strings.Split(text, "\n")
	if len(parts) <= lines {
		return text
	}
	return strings.Join(parts[len(parts)-lines:], "\n")
}
