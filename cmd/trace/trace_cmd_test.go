package trace

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func runTraceCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.Execute()
	return out.String(), err
}

func TestTraceCommand_TextOutput(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"main.py":   "import helper\nimport os\n\nhelper.run()\n",
		"helper.py": "def run():\n    pass\n",
	})

	out, err := runTraceCommand(t, "-C", dir, "main.py")
	require.NoError(t, err)

	assert.Contains(t, out, "files (2):")
	assert.Contains(t, out, "helper.py")
	assert.Contains(t, out, "main.py:1 -> helper.py (helper)")
	assert.Contains(t, out, "external dependencies:")
	assert.Contains(t, out, "main.py: os")
}

func TestTraceCommand_JSONOutput(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"main.py":   "import helper\n",
		"helper.py": "import main\n",
	})

	out, err := runTraceCommand(t, "-C", dir, "main.py", "--json")
	require.NoError(t, err)

	var report struct {
		Files  []string            `json:"files"`
		Edges  []map[string]any    `json:"edges"`
		Cycles [][]string          `json:"cycles"`
		Extern map[string][]string `json:"externals"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))

	assert.Equal(t, []string{"helper.py", "main.py"}, report.Files)
	assert.Len(t, report.Edges, 2)
	require.Len(t, report.Cycles, 1)
	assert.ElementsMatch(t, []string{"helper.py", "main.py"}, report.Cycles[0])
}

func TestTraceCommand_NoSeedsFails(t *testing.T) {
	_, err := runTraceCommand(t, "-C", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no seed files")
}

func TestTraceCommand_UnresolvedImportIsSilent(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"main.py": "import no_such_module\n",
	})

	out, err := runTraceCommand(t, "-C", dir, "main.py")
	require.NoError(t, err)

	assert.Contains(t, out, "files (1):")
	assert.NotContains(t, out, "imports (")
	assert.NotContains(t, out, "errors (")
}

func TestTraceCommand_ReportsMissingSeed(t *testing.T) {
	dir := setupProject(t, map[string]string{})

	out, err := runTraceCommand(t, "-C", dir, "missing.py")
	require.NoError(t, err)

	assert.Contains(t, out, "errors (1):")
	assert.Contains(t, out, "missing.py")
}
