package manifest

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Starter returns a manifest declaring one artifact per source, each
// depending on nothing, with outputs collected under build/.
func Starter(sources ...string) *Manifest {
	m := &Manifest{Output: "pdf", OutDir: "build"}
	for _, source := range sources {
		m.Artifacts = append(m.Artifacts, Entry{Source: source})
	}
	return m
}

// WriteYAML encodes m as YAML.
func WriteYAML(w io.Writer, m *Manifest) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(m); err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	return encoder.Close()
}
