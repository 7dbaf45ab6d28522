// Package manifest loads artifact declarations from a project file and feeds
// them to a pipeline in declaration order.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/LegacyCodeHQ/quire/artifact"
	"github.com/LegacyCodeHQ/quire/executor"
)

// DefaultNames are the file names Discover looks for, in order of preference.
var DefaultNames = []string{"quire.yaml", "quire.yml", "quire.toml", "quire.hcl"}

var (
	ErrNotFound          = errors.New("no manifest found")
	ErrUnsupportedFormat = errors.New("unsupported manifest format")
	ErrInvalid           = errors.New("invalid manifest")
)

// Manifest is the decoded project file.
type Manifest struct {
	Output    string     `yaml:"output,omitempty" toml:"output,omitempty" hcl:"output,optional"`
	OutDir    string     `yaml:"outdir,omitempty" toml:"outdir,omitempty" hcl:"outdir,optional"`
	Jobs      int        `yaml:"jobs,omitempty" toml:"jobs,omitempty" hcl:"jobs,optional"`
	Toolchain *Toolchain `yaml:"toolchain,omitempty" toml:"toolchain,omitempty" hcl:"toolchain,block"`
	Artifacts []Entry    `yaml:"artifacts" toml:"artifacts" hcl:"artifact,block"`

	// Dir is the absolute directory the manifest was loaded from.
	Dir string `yaml:"-" toml:"-"`
}

// Toolchain overrides the command templates. Empty fields keep the defaults.
type Toolchain struct {
	Compile      [][]string `yaml:"compile,omitempty" toml:"compile,omitempty" hcl:"compile,optional"`
	Bibliography [][]string `yaml:"bibliography,omitempty" toml:"bibliography,omitempty" hcl:"bibliography,optional"`
	Images       [][]string `yaml:"images,omitempty" toml:"images,omitempty" hcl:"images,optional"`
	ImageFormat  string     `yaml:"image_format,omitempty" toml:"image_format,omitempty" hcl:"image_format,optional"`
}

// Entry declares one artifact.
type Entry struct {
	Source       string   `yaml:"source" toml:"source" hcl:"source,label"`
	Output       string   `yaml:"output,omitempty" toml:"output,omitempty" hcl:"output,optional"`
	Kind         string   `yaml:"kind,omitempty" toml:"kind,omitempty" hcl:"kind,optional"`
	Bibliography string   `yaml:"bibliography,omitempty" toml:"bibliography,omitempty" hcl:"bibliography,optional"`
	Images       []string `yaml:"images,omitempty" toml:"images,omitempty" hcl:"images,optional"`
	Auxiliary    []string `yaml:"auxiliary,omitempty" toml:"auxiliary,omitempty" hcl:"auxiliary,optional"`
	DependsOn    []string `yaml:"depends_on,omitempty" toml:"depends_on,omitempty" hcl:"depends_on,optional"`
	Args         string   `yaml:"args,omitempty" toml:"args,omitempty" hcl:"args,optional"`
}

// Declarer accepts artifact declarations.
type Declarer interface {
	Declare(spec artifact.Spec) (*artifact.Artifact, error)
}

// Load reads and decodes the manifest at path. The format follows the file
// extension.
func Load(path string) (*Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve manifest path %s: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	return Decode(data, abs)
}

// Decode parses data as the manifest stored at filename.
func Decode(data []byte, filename string) (*Manifest, error) {
	dir := filepath.Dir(filename)

	var (
		m   *Manifest
		err error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		m, err = decodeYAML(data)
	case ".toml":
		m, err = decodeTOML(data)
	case ".hcl":
		m, err = decodeHCL(data, filename, dir)
	default:
		return nil, fmt.Errorf("%s: %w", filename, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", filename, err)
	}

	m.Dir = dir
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Discover returns the path of the first default manifest found in dir.
func Discover(dir string) (string, error) {
	for _, name := range DefaultNames {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("looked for %s in %s: %w", strings.Join(DefaultNames, ", "), dir, ErrNotFound)
}

// Validate checks the fields the decoders cannot.
func (m *Manifest) Validate() error {
	if m.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got %d: %w", m.Jobs, ErrInvalid)
	}
	for i, entry := range m.Artifacts {
		if strings.TrimSpace(entry.Source) == "" {
			return fmt.Errorf("artifact %d has no source: %w", i+1, ErrInvalid)
		}
	}
	return nil
}

// Specs converts the entries to artifact declarations. Outputs left unset are
// placed in OutDir when one is configured.
func (m *Manifest) Specs() []artifact.Spec {
	specs := make([]artifact.Spec, 0, len(m.Artifacts))
	for _, entry := range m.Artifacts {
		kind := entry.Kind
		if kind == "" {
			kind = m.Output
		}

		output := entry.Output
		if output == "" && m.OutDir != "" {
			ext := kind
			if ext == "" {
				ext = artifact.DefaultOutputKind
			}
			base := filepath.Base(entry.Source)
			output = filepath.Join(m.OutDir, strings.TrimSuffix(base, filepath.Ext(base))+"."+strings.TrimPrefix(ext, "."))
		}

		specs = append(specs, artifact.Spec{
			SourceFile:       entry.Source,
			OutputFile:       output,
			OutputKind:       kind,
			BibliographyFile: entry.Bibliography,
			ImageSources:     entry.Images,
			AuxiliaryFiles:   entry.Auxiliary,
			DependsOn:        entry.DependsOn,
			ExtraArgs:        entry.Args,
		})
	}
	return specs
}

// Apply declares every artifact of m in order. The first failing declaration
// stops the walk.
func Apply(m *Manifest, d Declarer) error {
	for _, spec := range m.Specs() {
		if _, err := d.Declare(spec); err != nil {
			return fmt.Errorf("failed to declare %s: %w", spec.SourceFile, err)
		}
	}
	return nil
}

// ExecutorToolchain returns the configured toolchain with unset commands
// taken from the defaults.
func (m *Manifest) ExecutorToolchain() executor.Toolchain {
	defaults := executor.DefaultToolchain()
	if m.Toolchain == nil {
		return defaults
	}
	return executor.Toolchain{
		Compile:      m.Toolchain.Compile,
		Bibliography: m.Toolchain.Bibliography,
		ImageConvert: m.Toolchain.Images,
		ImageFormat:  m.Toolchain.ImageFormat,
	}.Merge(defaults)
}
