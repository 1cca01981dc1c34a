package extract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "already clean",
			input: `{"a": 1}`,
			want:  `{"a": 1}`,
		},
		{
			name:  "line comment removed",
			input: "{\n  // explanation\n  \"a\": 1\n}",
			want:  "{\n\n  \"a\": 1\n}",
		},
		{
			name:  "trailing comment removed",
			input: "{\"a\": 1 // inline\n}",
			want:  "{\"a\": 1\n}",
		},
		{
			name:  "url in string survives",
			input: `{"url": "http://example.com/x"}`,
			want:  `{"url": "http://example.com/x"}`,
		},
		{
			name:  "trailing comma in object",
			input: `{"a": 1,}`,
			want:  `{"a": 1}`,
		},
		{
			name:  "trailing comma in array",
			input: `{"a": [1, 2,]}`,
			want:  `{"a": [1, 2]}`,
		},
		{
			name:  "trailing comma across newline",
			input: "{\"a\": 1,\n}",
			want:  "{\"a\": 1\n}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanJSON(tt.input))
		})
	}
}

func TestCleanJSONProducesValidJSON(t *testing.T) {
	dirty := "{\n" +
		"  // the tool to call\n" +
		"  \"tool_name\": \"file_read\",\n" +
		"  \"parameters\": {\n" +
		"    \"path\": \"https://example.com//weird\", // note the slashes\n" +
		"  },\n" +
		"}"

	cleaned := cleanJSON(dirty)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(cleaned), &decoded))
	assert.Equal(t, "file_read", decoded["tool_name"])

	params, ok := decoded["parameters"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "https://example.com//weird", params["path"])
}
