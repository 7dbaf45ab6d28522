package build

import (
	"fmt"
	"time"

	"github.com/LegacyCodeHQ/quire/cmd/cmdutil"
	"github.com/LegacyCodeHQ/quire/executor"
	"github.com/LegacyCodeHQ/quire/internal/buildlog"
	"github.com/spf13/cobra"
)

type buildOptions struct {
	jobs    int
	timeout time.Duration
	runner  executor.CommandRunner
}

// NewCommand returns a new build command instance.
func NewCommand() *cobra.Command {
	return newCommand(nil)
}

func newCommand(runner executor.CommandRunner) *cobra.Command {
	opts := &buildOptions{runner: runner}

	cmd := &cobra.Command{
		Use:   "build [artifact...]",
		Short: "Compile artifacts and everything they depend on",
		Long: `Compile the named artifacts, or every declared artifact when none are named.

Dependencies are compiled first. Steps that do not depend on each other run in
parallel; the first failure stops the build.`,
		Example: `  quire build
  quire build main -j 4
  quire -m book/quire.toml build`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, opts, args)
		},
	}

	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 0, "Maximum number of steps run at once (default: manifest jobs or CPU count)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Time limit for each external command (0 means none)")

	return cmd
}

func runBuild(cmd *cobra.Command, opts *buildOptions, args []string) error {
	ws, err := cmdutil.OpenWorkspace(cmd)
	if err != nil {
		return err
	}

	targets, err := ws.CompileTargets(args...)
	if err != nil {
		return err
	}

	ctx, cancel := cmdutil.SignalContext(cmd)
	defer cancel()

	runner := opts.runner
	if runner == nil {
		runner = executor.ExecRunner{Timeout: opts.timeout}
	}

	start := time.Now()
	report, runErr := ws.Executor(runner, opts.jobs).Run(ctx, targets...)
	cmdutil.WriteSummary(cmd.OutOrStdout(), "Built", report, time.Since(start))

	if runErr != nil {
		buildlog.FromContext(ctx).Debug("build failed", "targets", targets, "error", runErr)
		return fmt.Errorf("build failed: %w", runErr)
	}
	return nil
}
