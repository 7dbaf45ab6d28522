package init

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/LegacyCodeHQ/quire/manifest"
	"github.com/spf13/cobra"
)

const fallbackSource = "main.tex"

type initOptions struct {
	force bool
	quiet bool
}

// NewCommand returns a new init command instance.
func NewCommand() *cobra.Command {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a starter quire.yaml",
		Long: `Write a starter quire.yaml into dir, or the current directory.

Every .tex file at the top of the directory that contains \documentclass is
declared as an artifact. When none is found the manifest declares main.tex.

With --force: Overwrites an existing quire.yaml.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(cmd, opts, dir)
		},
	}

	cmd.Flags().BoolVar(&opts.force, "force", false, "Overwrite an existing manifest")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress output")

	return cmd
}

func runInit(cmd *cobra.Command, opts *initOptions, dir string) error {
	path, err := filepath.Abs(filepath.Join(dir, manifest.DefaultNames[0]))
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	_, err = os.Stat(path)
	fileExists := !os.IsNotExist(err)
	if fileExists && !opts.force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	sources, err := findDocuments(dir)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		sources = []string{fallbackSource}
	}

	var buf bytes.Buffer
	if err := manifest.WriteYAML(&buf, manifest.Starter(sources...)); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if !opts.quiet {
		out := cmd.OutOrStdout()
		if fileExists {
			fmt.Fprintf(out, "Overwrote %s\n", path)
		} else {
			fmt.Fprintf(out, "Created %s\n", path)
		}
		fmt.Fprintln(out, "")
		fmt.Fprintln(out, "Artifacts:")
		for _, source := range sources {
			fmt.Fprintf(out, "  - %s\n", source)
		}
		fmt.Fprintln(out, "")
		fmt.Fprintln(out, "Next steps:")
		fmt.Fprintln(out, "  - Add depends_on, bibliography and images entries as needed")
		fmt.Fprintln(out, "  - Run 'quire build' to compile everything")
	}

	return nil
}

// findDocuments returns the top-level .tex files in dir that declare a
// document class, sorted by name.
func findDocuments(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.tex"))
	if err != nil {
		return nil, err
	}

	var documents []string
	for _, match := range matches {
		content, err := os.ReadFile(match)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", match, err)
		}
		if bytes.Contains(content, []byte(`\documentclass`)) {
			documents = append(documents, filepath.Base(match))
		}
	}
	sort.Strings(documents)
	return documents, nil
}
