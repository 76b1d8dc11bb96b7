package output

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.md")

	require.NoError(t, Write("prompt text\n", path, false))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "prompt text\n", string(content))
}

func TestWrite_FileCreateFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "prompt.md")
	assert.Error(t, Write("text", path, false))
}

func TestPrintSummary(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	PrintSummary(&buf, Summary{
		Files:       12,
		Elements:    34,
		PromptBytes: 2048,
		TokenCount:  1500,
		TokenFormat: "human",
		Encoding:    "cl100k_base",
		OutputFile:  "out.md",
	})

	out := buf.String()
	assert.Contains(t, out, "packed: 12 files, 34 elements")
	assert.Contains(t, out, "tokens: 1,500 (cl100k_base)")
	assert.Contains(t, out, "output: out.md")
}

func TestPrintSummary_NoTokenLineWhenDisabled(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	PrintSummary(&buf, Summary{Files: 1, Elements: 1, PromptBytes: 10, TokenCount: -1})

	assert.NotContains(t, buf.String(), "tokens:")
}
