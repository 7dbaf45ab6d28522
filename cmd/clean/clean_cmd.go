package clean

import (
	"fmt"
	"time"

	"github.com/LegacyCodeHQ/quire/cmd/cmdutil"
	"github.com/LegacyCodeHQ/quire/executor"
	"github.com/spf13/cobra"
)

// NewCommand returns a new clean command instance.
func NewCommand() *cobra.Command {
	var jobs int

	cmd := &cobra.Command{
		Use:   "clean [artifact...]",
		Short: "Remove outputs and auxiliary files",
		Long: `Remove the output and the engine's auxiliary files of the named artifacts,
or of every declared artifact when none are named. Converted images are
removed too.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := cmdutil.OpenWorkspace(cmd)
			if err != nil {
				return err
			}

			targets, err := ws.CleanTargets(args...)
			if err != nil {
				return err
			}

			ctx, cancel := cmdutil.SignalContext(cmd)
			defer cancel()

			start := time.Now()
			report, err := ws.Executor(executor.ExecRunner{}, jobs).Run(ctx, targets...)
			cmdutil.WriteSummary(cmd.OutOrStdout(), "Cleaned", report, time.Since(start))
			if err != nil {
				return fmt.Errorf("clean failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "Maximum number of steps run at once")

	return cmd
}
