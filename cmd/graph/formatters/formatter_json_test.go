package formatters_test

import (
	"encoding/json"
	"testing"

	"github.com/LegacyCodeHQ/quire/cmd/graph/formatters"
	"github.com/LegacyCodeHQ/quire/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFormatter_BookGraph(t *testing.T) {
	formatter := &formatters.JSONFormatter{}
	output, err := formatter.Format(testhelpers.BookGraph(t), formatters.RenderOptions{})
	require.NoError(t, err)

	g := testhelpers.JSONGoldie(t)
	g.Assert(t, t.Name(), []byte(output))
}

func TestJSONFormatter_IncludesLabel(t *testing.T) {
	formatter := &formatters.JSONFormatter{}
	output, err := formatter.Format(testhelpers.ImageGraph(t), formatters.RenderOptions{Label: "thesis"})
	require.NoError(t, err)

	var decoded struct {
		Label string `json:"label"`
		Steps []struct {
			Name string `json:"name"`
		} `json:"steps"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &decoded))
	assert.Equal(t, "thesis", decoded.Label)
	assert.Len(t, decoded.Steps, 5)
}

func TestJSONFormatter_NoURL(t *testing.T) {
	_, ok := (&formatters.JSONFormatter{}).GenerateURL("{}")

	assert.False(t, ok)
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		value    string
		expected formatters.OutputFormat
		ok       bool
	}{
		{value: "dot", expected: formatters.OutputFormatDOT, ok: true},
		{value: "Mermaid", expected: formatters.OutputFormatMermaid, ok: true},
		{value: "json", expected: formatters.OutputFormatJSON, ok: true},
		{value: "svg", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			format, ok := formatters.ParseOutputFormat(tt.value)

			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, format)
		})
	}
}

func TestSupportedFormats(t *testing.T) {
	assert.Equal(t, "dot, json, mermaid", formatters.SupportedFormats())
}
