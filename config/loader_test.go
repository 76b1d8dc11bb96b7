package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

// isolateUserConfig points the user config dir at an empty temp dir so the
// developer's own promptpack.toml cannot leak into test results.
func isolateUserConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	return dir
}

func TestLoad_DefaultsWithoutConfigFiles(t *testing.T) {
	isolateUserConfig(t)
	projectDir := t.TempDir()

	settings, err := Load(projectDir, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"."}, settings.InputPaths)
	assert.Equal(t, ChunkWholeFile, settings.ChunkStrategy)
	assert.Equal(t, FormatMarkdown, settings.OutputFormat)
	assert.Equal(t, DefaultEncoding, settings.Encoding)
	assert.Equal(t, SortNameAsc, settings.SortMethod)
	assert.True(t, filepath.IsAbs(settings.BaseDir))
}

func TestLoad_ProjectConfigOverridesDefaults(t *testing.T) {
	isolateUserConfig(t)
	projectDir := t.TempDir()
	writeConfig(t, projectDir, "promptpack.toml", `
output_format = "xml"
chunk_strategy = "structure"
include = ["**/*.py"]
line_numbers = true
`)

	settings, err := Load(projectDir, "")
	require.NoError(t, err)

	assert.Equal(t, FormatXML, settings.OutputFormat)
	assert.Equal(t, ChunkStructure, settings.ChunkStrategy)
	assert.Equal(t, []string{"**/*.py"}, settings.IncludePatterns)
	assert.True(t, settings.LineNumbers)
	assert.Equal(t, SortNameAsc, settings.SortMethod, "untouched fields keep defaults")
}

func TestLoad_DottedConfigOverridesPlain(t *testing.T) {
	isolateUserConfig(t)
	projectDir := t.TempDir()
	writeConfig(t, projectDir, "promptpack.toml", `output_format = "xml"`)
	writeConfig(t, projectDir, ".promptpack.toml", `output_format = "markdown"`)

	settings, err := Load(projectDir, "")
	require.NoError(t, err)

	assert.Equal(t, FormatMarkdown, settings.OutputFormat)
}

func TestLoad_UserConfigBelowProjectConfig(t *testing.T) {
	userDir := isolateUserConfig(t)
	require.NoError(t, os.MkdirAll(filepath.Join(userDir, "promptpack"), 0o755))
	writeConfig(t, filepath.Join(userDir, "promptpack"), "promptpack.toml", `
encoding = "o200k_base"
output_format = "xml"
`)

	projectDir := t.TempDir()
	writeConfig(t, projectDir, "promptpack.toml", `output_format = "markdown"`)

	settings, err := Load(projectDir, "")
	require.NoError(t, err)

	assert.Equal(t, "o200k_base", settings.Encoding, "user config fills unset fields")
	assert.Equal(t, FormatMarkdown, settings.OutputFormat, "project config wins")
}

func TestLoad_ProfileOverridesBase(t *testing.T) {
	isolateUserConfig(t)
	projectDir := t.TempDir()
	writeConfig(t, projectDir, "promptpack.toml", `
include = ["**/*.py"]
line_numbers = false

[profiles.review]
line_numbers = true
show_deps = true
`)

	settings, err := Load(projectDir, "review")
	require.NoError(t, err)

	assert.True(t, settings.LineNumbers)
	assert.True(t, settings.ShowDeps)
	assert.Equal(t, []string{"**/*.py"}, settings.IncludePatterns, "base settings survive")
}

func TestLoad_UnknownProfileFails(t *testing.T) {
	isolateUserConfig(t)
	projectDir := t.TempDir()
	writeConfig(t, projectDir, "promptpack.toml", `[profiles.review]
line_numbers = true
`)

	_, err := Load(projectDir, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestLoad_InvalidEnumFails(t *testing.T) {
	isolateUserConfig(t)
	projectDir := t.TempDir()
	writeConfig(t, projectDir, "promptpack.toml", `sort = "size_asc"`)

	_, err := Load(projectDir, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sort")
}

func TestLoad_MalformedConfigIsSkipped(t *testing.T) {
	isolateUserConfig(t)
	projectDir := t.TempDir()
	writeConfig(t, projectDir, "promptpack.toml", `this is not toml [[[`)

	settings, err := Load(projectDir, "")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, settings.OutputFormat)
}

func TestProfiles(t *testing.T) {
	isolateUserConfig(t)
	projectDir := t.TempDir()
	writeConfig(t, projectDir, "promptpack.toml", `
[profiles.review]
show_deps = true

[profiles.docs]
chunk_strategy = "structure"
`)

	names, err := Profiles(projectDir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"review", "docs"}, names)
}

func TestProfiles_NoneDefined(t *testing.T) {
	isolateUserConfig(t)

	names, err := Profiles(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestSaveProfile_RoundTrips(t *testing.T) {
	isolateUserConfig(t)
	projectDir := t.TempDir()

	settings := Default()
	settings.IncludePatterns = []string{"**/*.py"}
	settings.ChunkStrategy = ChunkStructure
	settings.ShowDeps = true
	require.NoError(t, SaveProfile(projectDir, "review", settings))

	names, err := Profiles(projectDir)
	require.NoError(t, err)
	assert.Contains(t, names, "review")

	loaded, err := Load(projectDir, "review")
	require.NoError(t, err)
	assert.Equal(t, []string{"**/*.py"}, loaded.IncludePatterns)
	assert.Equal(t, ChunkStructure, loaded.ChunkStrategy)
	assert.True(t, loaded.ShowDeps)
}

func TestSaveProfile_KeepsExistingContent(t *testing.T) {
	isolateUserConfig(t)
	projectDir := t.TempDir()
	writeConfig(t, projectDir, "promptpack.toml", `output_format = "xml"`)

	require.NoError(t, SaveProfile(projectDir, "review", Default()))

	settings, err := Load(projectDir, "")
	require.NoError(t, err)
	assert.Equal(t, FormatXML, settings.OutputFormat)
}

func TestValidate_BranchPairs(t *testing.T) {
	settings := Default()
	settings.DiffBranches = []string{"main"}
	require.Error(t, settings.Validate())

	settings = Default()
	settings.DiffBranches = []string{"main", "dev"}
	settings.LogBranches = []string{"main", "dev"}
	require.NoError(t, settings.Validate())

	settings = Default()
	settings.LogBranches = []string{"a", "b", "c"}
	require.Error(t, settings.Validate())
}

func TestValidate_TokenFormat(t *testing.T) {
	settings := Default()
	settings.TokenFormat = "fancy"
	require.Error(t, settings.Validate())

	settings.TokenFormat = TokenFormatHuman
	require.NoError(t, settings.Validate())
}
