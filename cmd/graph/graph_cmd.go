package graph

import (
	"fmt"

	"github.com/LegacyCodeHQ/quire/cmd/cmdutil"
	"github.com/LegacyCodeHQ/quire/cmd/graph/formatters"
	"github.com/LegacyCodeHQ/quire/cmd/graph/formatters/dot"
	"github.com/LegacyCodeHQ/quire/cmd/graph/formatters/mermaid"
	"github.com/LegacyCodeHQ/quire/vcs"
	"github.com/spf13/cobra"
)

type graphOptions struct {
	outputFormat string
	generateURL  bool
	clean        bool
	noLabel      bool
}

// NewCommand returns a new graph command instance.
func NewCommand() *cobra.Command {
	opts := &graphOptions{
		outputFormat: formatters.OutputFormatDOT.String(),
	}

	cmd := &cobra.Command{
		Use:   "graph [artifact]",
		Short: "Render the step graph",
		Long: `Render the synthesized step graph. Edges point from a step to the steps it
waits on.

With an artifact only the steps its compile step needs are shown; --clean
shows its clean step instead.`,
		Example: `  quire graph
  quire graph main -f mermaid
  quire graph -u`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.outputFormat, "format", "f", opts.outputFormat, fmt.Sprintf("Output format (%s)", formatters.SupportedFormats()))
	cmd.Flags().BoolVarP(&opts.generateURL, "url", "u", false, "Generate visualization URL (dot and mermaid formats only)")
	cmd.Flags().BoolVar(&opts.clean, "clean", false, "Graph clean steps instead of compile steps")
	cmd.Flags().BoolVar(&opts.noLabel, "no-label", false, "Omit the repository label")

	return cmd
}

func runGraph(cmd *cobra.Command, opts *graphOptions, args []string) error {
	format, ok := formatters.ParseOutputFormat(opts.outputFormat)
	if !ok {
		return fmt.Errorf("unknown format: %s (valid options: %s)", opts.outputFormat, formatters.SupportedFormats())
	}
	formatter, err := NewFormatter(format)
	if err != nil {
		return err
	}

	ws, err := cmdutil.OpenWorkspace(cmd)
	if err != nil {
		return err
	}

	g := ws.Graph
	if len(args) == 1 {
		pick := ws.CompileTargets
		if opts.clean {
			pick = ws.CleanTargets
		}
		targets, err := pick(args...)
		if err != nil {
			return err
		}
		g, err = ws.Graph.Subgraph(targets...)
		if err != nil {
			return err
		}
	}

	label := ""
	if !opts.noLabel && format != formatters.OutputFormatJSON {
		label = vcs.Label(ws.Manifest.Dir, g.Len())
	}

	output, err := formatter.Format(g, formatters.RenderOptions{Label: label})
	if err != nil {
		return fmt.Errorf("failed to format graph: %w", err)
	}

	return emitOutput(cmd, opts, format, formatter, output)
}

// NewFormatter creates a Formatter for the specified format type.
func NewFormatter(format formatters.OutputFormat) (formatters.Formatter, error) {
	switch format {
	case formatters.OutputFormatDOT:
		return &dot.Formatter{}, nil
	case formatters.OutputFormatMermaid:
		return &mermaid.Formatter{}, nil
	case formatters.OutputFormatJSON:
		return &formatters.JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s (valid options: %s)", format, formatters.SupportedFormats())
	}
}

func emitOutput(cmd *cobra.Command, opts *graphOptions, format formatters.OutputFormat, formatter formatters.Formatter, output string) error {
	if opts.generateURL {
		if urlStr, ok := formatter.GenerateURL(output); ok {
			fmt.Fprintln(cmd.OutOrStdout(), urlStr)
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: URL generation is not supported for %s format\n\n", format)
			fmt.Fprintln(cmd.OutOrStdout(), output)
		}
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), output)
	}

	return nil
}
