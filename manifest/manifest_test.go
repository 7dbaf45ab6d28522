package manifest_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/LegacyCodeHQ/quire/artifact"
	"github.com/LegacyCodeHQ/quire/fsresolve"
	"github.com/LegacyCodeHQ/quire/manifest"
	"github.com/LegacyCodeHQ/quire/pipeline"
	"github.com/LegacyCodeHQ/quire/taskgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlManifest = `output: pdf
outdir: build
jobs: 3
toolchain:
  compile:
    - [latexmk, -pdf, "{source}"]
artifacts:
  - source: chapters/intro.tex
  - source: main.tex
    bibliography: refs.bib
    images: [figures]
    depends_on: [chapters/intro]
    args: -shell-escape
`

const tomlManifest = `output = "pdf"
outdir = "build"
jobs = 3

[toolchain]
compile = [["latexmk", "-pdf", "{source}"]]

[[artifacts]]
source = "chapters/intro.tex"

[[artifacts]]
source = "main.tex"
bibliography = "refs.bib"
images = ["figures"]
depends_on = ["chapters/intro"]
args = "-shell-escape"
`

const hclManifest = `output = "pdf"
outdir = "build"
jobs   = 3

toolchain {
  compile = [["latexmk", "-pdf", "{source}"]]
}

artifact "chapters/intro.tex" {}

artifact "main.tex" {
  bibliography = "refs.bib"
  images       = ["figures"]
  depends_on   = ["chapters/intro"]
  args         = "-shell-escape"
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func expectedManifest(dir string) *manifest.Manifest {
	return &manifest.Manifest{
		Output: "pdf",
		OutDir: "build",
		Jobs:   3,
		Toolchain: &manifest.Toolchain{
			Compile: [][]string{{"latexmk", "-pdf", "{source}"}},
		},
		Artifacts: []manifest.Entry{
			{Source: "chapters/intro.tex"},
			{
				Source:       "main.tex",
				Bibliography: "refs.bib",
				Images:       []string{"figures"},
				DependsOn:    []string{"chapters/intro"},
				Args:         "-shell-escape",
			},
		},
		Dir: dir,
	}
}

func TestLoad_AllFormatsAgree(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "yaml", file: "quire.yaml", content: yamlManifest},
		{name: "yml", file: "quire.yml", content: yamlManifest},
		{name: "toml", file: "quire.toml", content: tomlManifest},
		{name: "hcl", file: "quire.hcl", content: hclManifest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, tt.file, tt.content)

			m, err := manifest.Load(path)

			require.NoError(t, err)
			assert.Equal(t, expectedManifest(dir), m)
		})
	}
}

func TestLoad_HCLRootVariableAndEnv(t *testing.T) {
	t.Setenv("QUIRE_TEST_ARGS", "-8bit")
	dir := t.TempDir()
	path := writeFile(t, dir, "quire.hcl", `
outdir = "${root}/out"

artifact "main.tex" {
  args = env("QUIRE_TEST_ARGS")
}
`)

	m, err := manifest.Load(path)

	require.NoError(t, err)
	assert.Equal(t, dir+"/out", m.OutDir)
	require.Len(t, m.Artifacts, 1)
	assert.Equal(t, "-8bit", m.Artifacts[0].Args)
	assert.Nil(t, m.Toolchain)
}

func TestLoad_HCLSyntaxError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "quire.hcl", `artifact "main.tex" {`)

	_, err := manifest.Load(path)

	assert.Error(t, err)
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	tests := []struct {
		file    string
		content string
	}{
		{file: "quire.yaml", content: "artifacts: []\ncolour: blue\n"},
		{file: "quire.toml", content: "colour = \"blue\"\n"},
		{file: "quire.hcl", content: "colour = \"blue\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tt.file, tt.content)

			_, err := manifest.Load(path)

			assert.Error(t, err)
		})
	}
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	path := writeFile(t, t.TempDir(), "quire.json", "{}")

	_, err := manifest.Load(path)

	assert.ErrorIs(t, err, manifest.ErrUnsupportedFormat)
}

func TestLoad_Missing(t *testing.T) {
	_, err := manifest.Load(filepath.Join(t.TempDir(), "quire.yaml"))

	assert.ErrorIs(t, err, manifest.ErrNotFound)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "negative jobs", content: "jobs: -1\nartifacts: []\n"},
		{name: "empty source", content: "artifacts:\n  - source: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "quire.yaml", tt.content)

			_, err := manifest.Load(path)

			assert.ErrorIs(t, err, manifest.ErrInvalid)
		})
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()

	_, err := manifest.Discover(dir)
	assert.ErrorIs(t, err, manifest.ErrNotFound)

	writeFile(t, dir, "quire.toml", tomlManifest)
	found, err := manifest.Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "quire.toml"), found)

	writeFile(t, dir, "quire.yaml", yamlManifest)
	found, err = manifest.Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "quire.yaml"), found)
}

func TestSpecs_OutputPlacement(t *testing.T) {
	m := &manifest.Manifest{
		Output: "dvi",
		OutDir: "build",
		Artifacts: []manifest.Entry{
			{Source: "chapters/intro.tex"},
			{Source: "slides.tex", Kind: "ps"},
			{Source: "main.tex", Output: "final/thesis.pdf"},
		},
	}

	specs := m.Specs()

	require.Len(t, specs, 3)
	assert.Equal(t, filepath.Join("build", "intro.dvi"), specs[0].OutputFile)
	assert.Equal(t, "dvi", specs[0].OutputKind)
	assert.Equal(t, filepath.Join("build", "slides.ps"), specs[1].OutputFile)
	assert.Equal(t, "ps", specs[1].OutputKind)
	assert.Equal(t, "final/thesis.pdf", specs[2].OutputFile)
}

func TestSpecs_NoOutDirKeepsDefaults(t *testing.T) {
	m := &manifest.Manifest{Artifacts: []manifest.Entry{{Source: "main.tex"}}}

	specs := m.Specs()

	require.Len(t, specs, 1)
	assert.Empty(t, specs[0].OutputFile)
	assert.Empty(t, specs[0].OutputKind)
}

func TestApply_DeclaresInOrder(t *testing.T) {
	dir := t.TempDir()
	m, err := manifest.Load(writeFile(t, dir, "quire.yaml", yamlManifest))
	require.NoError(t, err)
	resolver, err := fsresolve.New(m.Dir)
	require.NoError(t, err)
	p := pipeline.New(resolver, taskgraph.New())

	require.NoError(t, manifest.Apply(m, p))

	names := make([]string, 0)
	for _, a := range p.All() {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"chapters/intro", "main"}, names)

	main, err := p.Get("main")
	require.NoError(t, err)
	assert.Equal(t, []string{"chapters/intro"}, main.DependencyNames())
	assert.Equal(t, filepath.Join(dir, "build", "main.pdf"), main.OutputPath)
	assert.Equal(t, filepath.Join(dir, "refs.bib"), main.BibliographyPath)
	assert.Equal(t, "-shell-escape", main.ExtraArgs)
}

func TestApply_StopsAtFirstFailure(t *testing.T) {
	m := &manifest.Manifest{
		Artifacts: []manifest.Entry{
			{Source: "main.tex", DependsOn: []string{"appendix"}},
			{Source: "appendix.tex"},
		},
	}
	p := pipeline.New(nil, taskgraph.New())

	err := manifest.Apply(m, p)

	assert.ErrorIs(t, err, artifact.ErrUnknownDependency)
	assert.Empty(t, p.All())
}

func TestExecutorToolchain(t *testing.T) {
	m := &manifest.Manifest{
		Toolchain: &manifest.Toolchain{
			Compile: [][]string{{"latexmk", "-pdf", "{source}"}},
		},
	}

	toolchain := m.ExecutorToolchain()

	assert.Equal(t, [][]string{{"latexmk", "-pdf", "{source}"}}, toolchain.Compile)
	assert.NotEmpty(t, toolchain.Bibliography)
	assert.NotEmpty(t, toolchain.ImageConvert)
	assert.Equal(t, "pdf", toolchain.ImageFormat)
}

func TestWriteYAML_Starter(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, manifest.WriteYAML(&buf, manifest.Starter("main.tex")))

	assert.Contains(t, buf.String(), "source: main.tex")
	assert.NotContains(t, buf.String(), "toolchain")

	dir := t.TempDir()
	m, err := manifest.Load(writeFile(t, dir, "quire.yaml", buf.String()))
	require.NoError(t, err)
	assert.Equal(t, "build", m.OutDir)
	assert.Equal(t, []manifest.Entry{{Source: "main.tex"}}, m.Artifacts)
}
