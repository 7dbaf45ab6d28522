package order

import (
	"fmt"

	"github.com/LegacyCodeHQ/quire/artifact"
	"github.com/LegacyCodeHQ/quire/cmd/cmdutil"
	"github.com/LegacyCodeHQ/quire/taskgraph"
	"github.com/spf13/cobra"
)

type orderOptions struct {
	steps bool
}

// NewCommand returns a new order command instance.
func NewCommand() *cobra.Command {
	opts := &orderOptions{}

	cmd := &cobra.Command{
		Use:   "order [artifact]",
		Short: "Print artifacts in the order they are compiled",
		Long: `Print the named artifact's dependencies followed by the artifact itself,
each artifact once. Without an argument every declared artifact is listed.

With --steps the individual steps are listed instead, predecessors first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrder(cmd, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.steps, "steps", false, "List steps instead of artifacts")

	return cmd
}

func runOrder(cmd *cobra.Command, opts *orderOptions, args []string) error {
	ws, err := cmdutil.OpenWorkspace(cmd)
	if err != nil {
		return err
	}

	if opts.steps {
		targets, err := ws.CompileTargets(args...)
		if err != nil {
			return err
		}
		return printSteps(cmd, ws.Graph, targets)
	}

	var roots []string
	if len(args) == 1 {
		roots = args
	} else {
		for _, a := range ws.Pipeline.All() {
			roots = append(roots, a.Name)
		}
	}

	printed := make(map[*artifact.Artifact]bool)
	for _, root := range roots {
		err := ws.Pipeline.Traverse(root, func(a *artifact.Artifact) error {
			if printed[a] {
				return nil
			}
			printed[a] = true
			_, err := fmt.Fprintln(cmd.OutOrStdout(), a.Name)
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func printSteps(cmd *cobra.Command, g *taskgraph.Graph, targets []string) error {
	sub, err := g.Subgraph(targets...)
	if err != nil {
		return err
	}
	names, err := sub.Order()
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}
