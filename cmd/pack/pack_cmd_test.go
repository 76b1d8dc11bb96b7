package pack

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProject(t *testing.T, files map[string]string) string {
	t.Helper()
	// Keep the developer's own config out of the run.
	confDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", confDir)
	t.Setenv("HOME", confDir)

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func runPackCommand(t *testing.T, args ...string) error {
	t.Helper()
	cmd := NewCommand()
	cmd.SetArgs(append(args, "-q"))
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return cmd.Execute()
}

func TestPackCommand_WritesPromptFile(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"main.py":   "print('hello')\n",
		"README.md": "# demo\n",
	})
	outFile := filepath.Join(t.TempDir(), "prompt.md")

	require.NoError(t, runPackCommand(t, "-C", dir, "-o", outFile))

	prompt, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(prompt), "main.py")
	assert.Contains(t, string(prompt), "README.md")
	assert.Contains(t, string(prompt), "print('hello')")
}

func TestPackCommand_XMLFormat(t *testing.T) {
	dir := setupProject(t, map[string]string{"main.py": "print('hello')\n"})
	outFile := filepath.Join(t.TempDir(), "prompt.xml")

	require.NoError(t, runPackCommand(t, "-C", dir, "-f", "xml", "-o", outFile))

	prompt, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(prompt), "<promptpack")
	assert.Contains(t, string(prompt), "<![CDATA[")
}

func TestPackCommand_IncludeFlagNarrowsFiles(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"main.py":   "print('hello')\n",
		"README.md": "# demo\n",
	})
	outFile := filepath.Join(t.TempDir(), "prompt.md")

	require.NoError(t, runPackCommand(t, "-C", dir, "-i", "*.py", "-o", outFile))

	prompt, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(prompt), "main.py")
	assert.NotContains(t, string(prompt), "README.md")
}

func TestPackCommand_FlagOverridesConfig(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"main.py":         "print('hello')\n",
		"promptpack.toml": "output_format = \"xml\"\n",
	})
	outFile := filepath.Join(t.TempDir(), "prompt.md")

	require.NoError(t, runPackCommand(t, "-C", dir, "-f", "markdown", "-o", outFile))

	prompt, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.NotContains(t, string(prompt), "<promptpack")
	assert.Contains(t, string(prompt), "main.py")
}

func TestPackCommand_ProfileApplies(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"main.py":         "print('hello')\n",
		"README.md":       "# demo\n",
		"promptpack.toml": "[profiles.code]\ninclude = [\"*.py\"]\n",
	})
	outFile := filepath.Join(t.TempDir(), "prompt.md")

	require.NoError(t, runPackCommand(t, "-C", dir, "--profile", "code", "-o", outFile))

	prompt, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(prompt), "main.py")
	assert.NotContains(t, string(prompt), "README.md")
}

func TestPackCommand_InvalidFormatFails(t *testing.T) {
	dir := setupProject(t, map[string]string{"main.py": "print('hello')\n"})

	err := runPackCommand(t, "-C", dir, "-f", "yaml", "-o", filepath.Join(t.TempDir(), "out"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output format")
}
