package watch

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/LegacyCodeHQ/quire/cmd/cmdutil"
	"github.com/LegacyCodeHQ/quire/executor"
	"github.com/LegacyCodeHQ/quire/internal/buildlog"
	"github.com/spf13/cobra"
)

type watchOptions struct {
	jobs     int
	port     int
	debounce time.Duration
	timeout  time.Duration
	runner   executor.CommandRunner
}

// NewCommand returns a new watch command instance.
func NewCommand() *cobra.Command {
	return newCommand(nil)
}

func newCommand(runner executor.CommandRunner) *cobra.Command {
	opts := &watchOptions{
		port:     4900,
		debounce: defaultDebounce,
		runner:   runner,
	}

	cmd := &cobra.Command{
		Use:   "watch [artifact...]",
		Short: "Rebuild artifacts whenever their inputs change",
		Long: `Build the named artifacts, or every declared artifact, then rebuild whenever
the manifest or a file the artifacts read changes.

The latest build status is served at localhost; --port 0 turns the page off.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, opts, args)
		},
	}

	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 0, "Maximum number of steps run at once (default: manifest jobs or CPU count)")
	cmd.Flags().IntVarP(&opts.port, "port", "P", opts.port, "HTTP server port (0 disables the status page)")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", opts.debounce, "Quiet period before a change triggers a rebuild")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Time limit for each external command (0 means none)")

	return cmd
}

func runWatch(cmd *cobra.Command, opts *watchOptions, args []string) error {
	ctx, cancel := cmdutil.SignalContext(cmd)
	defer cancel()

	b := newBroker()
	if opts.port > 0 {
		ln, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", opts.port))
		if err != nil {
			return fmt.Errorf("failed to listen on port %d: %w", opts.port, err)
		}
		srv := newServer(b)
		go func() { _ = srv.Serve(ln) }()
		defer srv.Close()
		fmt.Fprintf(cmd.OutOrStdout(), "Serving at http://localhost:%d\n", opts.port)
	}

	r := &rebuilder{cmd: cmd, opts: opts, targets: args, broker: b, out: cmd.OutOrStdout()}
	files, err := r.run(ctx)
	if files == nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %d files\n", len(files))
	fmt.Fprintf(cmd.OutOrStdout(), "Press Ctrl+C to stop\n")

	return watchAndRebuild(ctx, files, opts.debounce, func(ctx context.Context) []string {
		files, _ := r.run(ctx)
		return files
	})
}

type rebuilder struct {
	cmd     *cobra.Command
	opts    *watchOptions
	targets []string
	broker  *broker
	out     io.Writer
}

// run reloads the manifest, builds the targets and publishes the outcome. It
// returns the files the next rebuild depends on, or nil when the manifest
// could not be loaded.
func (r *rebuilder) run(ctx context.Context) ([]string, error) {
	logger := buildlog.FromContext(ctx)
	start := time.Now()

	ws, err := cmdutil.OpenWorkspace(r.cmd)
	if err != nil {
		r.publish(ctx, nil, err, time.Since(start))
		fmt.Fprintf(r.out, "Failed to load manifest: %v\n", err)
		return nil, err
	}

	files, err := ws.WatchedFiles()
	if err != nil {
		logger.Warn("failed to list watched files", "error", err)
		files = []string{ws.ManifestPath}
	}

	targets, err := ws.CompileTargets(r.targets...)
	if err != nil {
		r.publish(ctx, nil, err, time.Since(start))
		fmt.Fprintf(r.out, "%v\n", err)
		return files, err
	}

	runner := r.opts.runner
	if runner == nil {
		runner = executor.ExecRunner{Timeout: r.opts.timeout}
	}

	report, runErr := ws.Executor(runner, r.opts.jobs).Run(ctx, targets...)
	elapsed := time.Since(start)
	cmdutil.WriteSummary(r.out, "Built", report, elapsed)
	r.publish(ctx, report, runErr, elapsed)

	return files, runErr
}

func (r *rebuilder) publish(ctx context.Context, report *executor.Report, err error, elapsed time.Duration) {
	payload, encodeErr := newBuildStatus(report, err, elapsed).encode()
	if encodeErr != nil {
		buildlog.FromContext(ctx).Error("failed to encode build status", "error", encodeErr)
		return
	}
	r.broker.publish(payload)
}
