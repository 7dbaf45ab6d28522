package cmd

import (
	"os"

	"github.com/LegacyCodeHQ/quire/cmd/build"
	"github.com/LegacyCodeHQ/quire/cmd/clean"
	"github.com/LegacyCodeHQ/quire/cmd/cmdutil"
	"github.com/LegacyCodeHQ/quire/cmd/graph"
	initcmd "github.com/LegacyCodeHQ/quire/cmd/init"
	"github.com/LegacyCodeHQ/quire/cmd/order"
	"github.com/LegacyCodeHQ/quire/cmd/watch"
	"github.com/LegacyCodeHQ/quire/internal/buildlog"
	"github.com/spf13/cobra"
)

// version is set via build-time ldflags
var version = "dev"

// buildDate is set via build-time ldflags
var buildDate = "unknown"

// commit is set via build-time ldflags
var commit = "unknown"

type rootOptions struct {
	manifestPath string
	logLevel     string
	logFormat    string
}

// NewRootCommand assembles the quire command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{logLevel: "warn", logFormat: "text"}

	rootCmd := &cobra.Command{
		Use:   "quire",
		Short: "Build LaTeX documents in dependency order",
		Long: `Quire compiles LaTeX documents declared in a manifest. Each document becomes
a set of build steps (compile, clean, bibliography and image conversion) that
run in dependency order, in parallel where possible.

Use 'quire --help' to see all available commands, or 'quire <command> --help'
for detailed information about a specific command.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := buildlog.New(opts.logLevel, opts.logFormat, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			cmd.SetContext(buildlog.WithLogger(cmdutil.Context(cmd), logger))
			return nil
		},
	}

	rootCmd.AddCommand(
		build.NewCommand(),
		clean.NewCommand(),
		graph.NewCommand(),
		order.NewCommand(),
		watch.NewCommand(),
		initcmd.NewCommand(),
	)

	// Initialize annotations for version template
	rootCmd.Annotations = map[string]string{
		"buildDate": buildDate,
		"commit":    commit,
	}

	// Customize version template to show additional build info
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
Build date: {{printf "%s" (index .Annotations "buildDate")}}
Commit: {{printf "%s" (index .Annotations "commit")}}
`)

	cmdutil.AddManifestFlag(rootCmd, &opts.manifestPath)
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", opts.logLevel, "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", opts.logFormat, "Log format (text, json)")

	return rootCmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		rootCmd.PrintErrln("Error:", err)
		os.Exit(1)
	}
}
