package executor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/LegacyCodeHQ/quire/artifact"
	"github.com/LegacyCodeHQ/quire/fsresolve"
	"github.com/LegacyCodeHQ/quire/internal/buildlog"
	"github.com/LegacyCodeHQ/quire/taskgraph"
)

// ErrImageCollision reports a converted image that would overwrite another
// converted image or the document output.
var ErrImageCollision = errors.New("converted image collides")

// AuxiliaryExtensions are the engine by-products removed by clean steps.
var AuxiliaryExtensions = []string{
	".aux", ".log", ".bbl", ".blg", ".toc", ".out", ".lof", ".lot",
	".fls", ".fdb_latexmk", ".synctex.gz", ".bcf", ".run.xml", ".nav", ".snm",
}

// Toolchain holds the argv templates run for each step kind. Each kind runs
// its commands in order. Placeholders: {source} {output} {outdir} {name}
// {stem} {bibliography} {input} {args}. An argument that is exactly {args}
// expands to the artifact's extra arguments split on whitespace. A program
// prefixed with "-" may exit non-zero without failing the step.
type Toolchain struct {
	Compile      [][]string
	Bibliography [][]string
	ImageConvert [][]string
	// ImageFormat is the extension converted images are written with.
	ImageFormat string
}

// DefaultToolchain compiles with pdflatex, resolves citations with bibtex and
// converts images with inkscape.
//
// The bibliography step does not wait for image conversion, so its draft pass
// may meet graphics that do not exist yet. That pass only has to write the
// .aux file bibtex reads; its errors are ignored.
func DefaultToolchain() Toolchain {
	latex := func(program string, extra ...string) []string {
		argv := append([]string{program}, extra...)
		return append(argv, "-interaction=nonstopmode", "-output-directory={outdir}", "-jobname={stem}", "{args}", "{source}")
	}
	return Toolchain{
		Compile: [][]string{
			latex("pdflatex", "-halt-on-error"),
			latex("pdflatex", "-halt-on-error"),
		},
		Bibliography: [][]string{
			latex("-pdflatex", "-draftmode"),
			{"bibtex", "{outdir}/{stem}"},
		},
		ImageConvert: [][]string{
			{"inkscape", "{input}", "--export-type=pdf", "--export-filename={output}"},
		},
		ImageFormat: "pdf",
	}
}

// Merge returns t with empty fields taken from fallback.
func (t Toolchain) Merge(fallback Toolchain) Toolchain {
	if len(t.Compile) == 0 {
		t.Compile = fallback.Compile
	}
	if len(t.Bibliography) == 0 {
		t.Bibliography = fallback.Bibliography
	}
	if len(t.ImageConvert) == 0 {
		t.ImageConvert = fallback.ImageConvert
	}
	if t.ImageFormat == "" {
		t.ImageFormat = fallback.ImageFormat
	}
	return t
}

// ConvertedPath is the file image is converted to for a: its stem with the
// image format, next to the document output.
func (t Toolchain) ConvertedPath(a *artifact.Artifact, image string) string {
	format := strings.TrimPrefix(t.ImageFormat, ".")
	if format == "" {
		format = "pdf"
	}
	return filepath.Join(filepath.Dir(a.OutputPath), stemOf(image)+"."+format)
}

// Conversions maps each image to its converted path. Two images sharing a
// stem, or an image sharing the document's output name, are rejected.
func (t Toolchain) Conversions(a *artifact.Artifact, images []string) (map[string]string, error) {
	claimed := map[string]string{a.OutputPath: a.SourcePath}
	conversions := make(map[string]string, len(images))
	for _, image := range images {
		target := t.ConvertedPath(a, image)
		if other, ok := claimed[target]; ok {
			return nil, fmt.Errorf("%s and %s both write %s: %w", other, image, target, ErrImageCollision)
		}
		claimed[target] = image
		conversions[image] = target
	}
	return conversions, nil
}

// Outputs lists the files the steps of a write given its images: the
// document output, the engine by-products next to it and converted images.
func (t Toolchain) Outputs(a *artifact.Artifact, images []string) []string {
	outDir := filepath.Dir(a.OutputPath)
	stem := stemOf(a.OutputPath)

	files := make([]string, 0, 1+len(AuxiliaryExtensions)+len(images))
	files = append(files, a.OutputPath)
	for _, ext := range AuxiliaryExtensions {
		files = append(files, filepath.Join(outDir, stem+ext))
	}
	for _, image := range images {
		files = append(files, t.ConvertedPath(a, image))
	}
	return files
}

// Owners maps a step name to the artifact it belongs to.
type Owners interface {
	Owner(stepName string) (*artifact.Artifact, bool)
}

// Actions is the Handler that performs document steps.
type Actions struct {
	Owners    Owners
	Files     fsresolve.Finder
	Runner    CommandRunner
	Toolchain Toolchain
}

// Execute runs the commands for step. Aggregate steps do nothing.
func (a *Actions) Execute(ctx context.Context, step *taskgraph.Step) error {
	if step.Kind.IsAggregate() {
		return nil
	}

	owner, ok := a.Owners.Owner(step.Name)
	if !ok {
		return fmt.Errorf("step %s has no artifact", step.Name)
	}

	switch step.Kind {
	case taskgraph.KindCompile:
		return a.runAll(ctx, owner, a.Toolchain.Compile, placeholders(owner))
	case taskgraph.KindBibliography:
		return a.runAll(ctx, owner, a.Toolchain.Bibliography, placeholders(owner))
	case taskgraph.KindImageConvert:
		return a.convertImages(ctx, owner)
	case taskgraph.KindClean:
		return a.clean(ctx, owner)
	default:
		return fmt.Errorf("step %s has unsupported kind %s", step.Name, step.Kind)
	}
}

func (a *Actions) convertImages(ctx context.Context, owner *artifact.Artifact) error {
	images, err := fsresolve.FindAll(a.Files, owner.ImageSources)
	if err != nil {
		return err
	}
	conversions, err := a.Toolchain.Conversions(owner, images)
	if err != nil {
		return err
	}

	for _, image := range images {
		vars := placeholders(owner)
		vars["{input}"] = image
		vars["{output}"] = conversions[image]
		if err := a.runAll(ctx, owner, a.Toolchain.ImageConvert, vars); err != nil {
			return fmt.Errorf("failed to convert %s: %w", image, err)
		}
	}
	return nil
}

func (a *Actions) clean(ctx context.Context, owner *artifact.Artifact) error {
	var images []string
	if owner.HasImages() {
		found, err := fsresolve.FindAll(a.Files, owner.ImageSources)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		images = found
	}
	targets := a.Toolchain.Outputs(owner, images)

	removed := 0
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := os.Remove(target)
		switch {
		case err == nil:
			removed++
		case errors.Is(err, fs.ErrNotExist):
		default:
			return fmt.Errorf("failed to remove %s: %w", target, err)
		}
	}

	buildlog.FromContext(ctx).Debug("cleaned artifact", "artifact", owner.Name, "removed", removed)
	return nil
}

func (a *Actions) runAll(ctx context.Context, owner *artifact.Artifact, commands [][]string, vars map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(owner.OutputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	dir := filepath.Dir(owner.SourcePath)
	for _, template := range commands {
		argv := Expand(template, vars)
		if len(argv) == 0 {
			continue
		}

		tolerant := strings.HasPrefix(argv[0], "-")
		if tolerant {
			argv[0] = strings.TrimPrefix(argv[0], "-")
		}

		err := a.Runner.Run(ctx, dir, argv)
		switch {
		case err == nil:
		case tolerant && ctx.Err() == nil:
			buildlog.FromContext(ctx).Debug("ignoring command failure", "artifact", owner.Name, "command", argv[0], "error", err)
		default:
			return err
		}
	}
	return nil
}

// Expand fills the placeholders of one argv template. Arguments that expand
// to nothing are dropped.
func Expand(template []string, vars map[string]string) []string {
	pairs := make([]string, 0, len(vars)*2)
	for placeholder, value := range vars {
		pairs = append(pairs, placeholder, value)
	}
	replacer := strings.NewReplacer(pairs...)

	argv := make([]string, 0, len(template))
	for _, arg := range template {
		if arg == "{args}" {
			argv = append(argv, strings.Fields(vars["{args}"])...)
			continue
		}
		if expanded := replacer.Replace(arg); expanded != "" {
			argv = append(argv, expanded)
		}
	}
	return argv
}

func placeholders(a *artifact.Artifact) map[string]string {
	return map[string]string{
		"{source}":       a.SourcePath,
		"{output}":       a.OutputPath,
		"{outdir}":       filepath.Dir(a.OutputPath),
		"{name}":         a.Name,
		"{stem}":         stemOf(a.OutputPath),
		"{bibliography}": a.BibliographyPath,
		"{input}":        "",
		"{args}":         a.ExtraArgs,
	}
}

func stemOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
