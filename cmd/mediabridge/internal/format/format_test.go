package format

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediabridge/mediabridge/pkg/compressor"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input    string
		expected OutputMode
	}{
		{"json", ModeJSON},
		{"JSON", ModeJSON},
		{"yaml", ModeYAML},
		{"yml", ModeYAML},
		{"text", ModeText},
		{"", ModeText},
		{"bogus", ModeText},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseMode(tt.input))
		})
	}
}

func TestValidateMode(t *testing.T) {
	require.NoError(t, ValidateMode("yaml"))
	require.Error(t, ValidateMode("table"))
}

func TestPrintData_JSONAndYAML(t *testing.T) {
	data := map[string]any{"size": 42, "format": "mp4"}

	var out bytes.Buffer
	require.NoError(t, New(&out, &out, ModeJSON, false, false).PrintData(data))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "mp4", decoded["format"])

	out.Reset()
	require.NoError(t, New(&out, &out, ModeYAML, false, false).PrintData(data))
	assert.Contains(t, out.String(), "format: mp4")
	assert.Contains(t, out.String(), "size: 42")
}

func TestPrintTable_Text(t *testing.T) {
	var out bytes.Buffer
	f := New(&out, &out, ModeText, false, false)
	require.NoError(t, f.PrintTable([]string{"id", "status"}, [][]string{{"abc", "running"}}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "ID")
	assert.Contains(t, lines[1], "running")
}

func TestPrintSummary_QuietAndStructured(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, New(&stdout, &stderr, ModeText, true, false).PrintSummary("done"))
	assert.Empty(t, stdout.String())

	require.NoError(t, New(&stdout, &stderr, ModeJSON, false, false).PrintSummary("done"))
	assert.Empty(t, stdout.String())
	assert.Equal(t, "done\n", stderr.String())
}

func TestPrintError_IncludesSuggestions(t *testing.T) {
	var stdout, stderr bytes.Buffer
	f := New(&stdout, &stderr, ModeText, false, false)
	require.NoError(t, f.PrintError(compressor.ErrEmptyURL))

	assert.Contains(t, stderr.String(), "Error: compression url is empty")
	assert.Contains(t, stderr.String(), "Suggestions:")
	assert.Contains(t, stderr.String(), "mediabridge compress")
}

func TestPrintError_JSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, New(&out, &out, ModeJSON, false, false).PrintError(errors.New("boom")))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, false, decoded["success"])
	assert.Equal(t, "boom", decoded["error"])
	assert.Equal(t, "ENGINE_FAILURE", decoded["code"])
}

func TestProgress_DropsRepeatsAndClamps(t *testing.T) {
	var out bytes.Buffer
	p := NewProgress(&out, "compress", false)
	p.Update(0.5)
	p.Update(0.501)
	p.Update(3)
	p.Done()

	s := out.String()
	assert.Equal(t, 2, strings.Count(s, "\r"))
	assert.Contains(t, s, " 50%")
	assert.Contains(t, s, "100%")
	assert.True(t, strings.HasSuffix(s, "\n"))
}

func TestProgress_BytesIgnoresUnknownTotal(t *testing.T) {
	var out bytes.Buffer
	p := NewProgress(&out, "upload", false)
	p.Bytes(10, 0)
	p.Done()
	assert.Empty(t, out.String())
}
