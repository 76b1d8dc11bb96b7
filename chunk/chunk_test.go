package chunk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptpack/promptpack/deptrace/langsupport"
)

func chunkSource(t *testing.T, strategy, relPath, source string) []Element {
	t.Helper()
	root := t.TempDir()
	path := filepath.Join(root, filepath.FromSlash(relPath))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))

	chunker := NewChunker(root, strategy, langsupport.NewParsers())
	elements, err := chunker.ChunkFile(path)
	require.NoError(t, err)
	return elements
}

func TestChunkFile_WholeFile(t *testing.T) {
	elements := chunkSource(t, StrategyWholeFile, "notes.md", "# Title\n\nBody text.\n")

	require.Len(t, elements, 1)
	el := elements[0]
	assert.Equal(t, TypeFile, el.Type)
	assert.Equal(t, "notes.md", el.RelPath)
	assert.Equal(t, "markdown", el.Language)
	assert.Equal(t, 1, el.StartLine)
	assert.Equal(t, 3, el.EndLine)
	assert.Equal(t, "# Title\n\nBody text.\n", el.Content)
}

func TestChunkFile_EmptyFileSkipped(t *testing.T) {
	elements := chunkSource(t, StrategyWholeFile, "empty.py", "   \n\n")
	assert.Empty(t, elements)
}

func TestChunkFile_BinaryFileSkipped(t *testing.T) {
	elements := chunkSource(t, StrategyWholeFile, "blob.bin", "\x00\xff\xfe\x01")
	assert.Empty(t, elements)
}

func TestChunkFile_StripsBOM(t *testing.T) {
	elements := chunkSource(t, StrategyWholeFile, "bom.txt", "\xEF\xBB\xBFhello\n")

	require.Len(t, elements, 1)
	assert.Equal(t, "hello\n", elements[0].Content)
}

func TestChunkFile_PythonStructure(t *testing.T) {
	source := `"""Module docstring."""

import os


def top(a, b=1):
    """Adds things."""
    return a + b


class Greeter:
    """Says hello."""

    def hello(self):
        return "hi"
`
	elements := chunkSource(t, StrategyStructure, "pkg/greet.py", source)

	require.Len(t, elements, 2)

	fn := elements[0]
	assert.Equal(t, TypeFunction, fn.Type)
	assert.Equal(t, "top", fn.Name)
	assert.Equal(t, "pkg.greet.top", fn.QualifiedName)
	assert.Equal(t, "Adds things.", fn.Docstring)
	assert.Equal(t, 6, fn.StartLine)
	assert.Contains(t, fn.Content, "def top(a, b=1):")

	cls := elements[1]
	assert.Equal(t, TypeClass, cls.Type)
	assert.Equal(t, "Greeter", cls.Name)
	assert.Equal(t, "pkg.greet.Greeter", cls.QualifiedName)
	assert.Equal(t, "Says hello.", cls.Docstring)
	// Methods stay inside the class element.
	assert.Contains(t, cls.Content, "def hello(self):")
}

func TestChunkFile_PythonDecoratedFunctionKeepsDecorator(t *testing.T) {
	source := `@app.route("/")
def index():
    return "ok"
`
	elements := chunkSource(t, StrategyStructure, "app.py", source)

	require.Len(t, elements, 1)
	assert.Equal(t, "index", elements[0].Name)
	assert.Equal(t, 1, elements[0].StartLine)
	assert.Contains(t, elements[0].Content, `@app.route("/")`)
}

func TestChunkFile_PythonInitQualifiedName(t *testing.T) {
	source := "def make():\n    return 1\n"
	elements := chunkSource(t, StrategyStructure, "pkg/__init__.py", source)

	require.Len(t, elements, 1)
	assert.Equal(t, "pkg.make", elements[0].QualifiedName)
}

func TestChunkFile_StructureFallsBackForScripts(t *testing.T) {
	// No functions or classes at module level: keep the whole file.
	elements := chunkSource(t, StrategyStructure, "script.py", "print('hello')\n")

	require.Len(t, elements, 1)
	assert.Equal(t, TypeFile, elements[0].Type)
}

func TestChunkFile_StructureIgnoresNonPython(t *testing.T) {
	elements := chunkSource(t, StrategyStructure, "main.go", "package main\n")

	require.Len(t, elements, 1)
	assert.Equal(t, TypeFile, elements[0].Type)
}

func TestChunkFile_SyntaxErrorFallsBackToWholeFile(t *testing.T) {
	elements := chunkSource(t, StrategyStructure, "broken.py", "def broken(:\n")

	require.Len(t, elements, 1)
	assert.Equal(t, TypeFile, elements[0].Type)
}

func TestStripStringQuotes(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`"""triple"""`, "triple"},
		{`'''triple'''`, "triple"},
		{`"single"`, "single"},
		{`'single'`, "single"},
		{`r"""raw"""`, "raw"},
		{`f"formatted"`, "formatted"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, stripStringQuotes(tc.in), "input %s", tc.in)
	}
}
