package deptrace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadExternalPackages_FromRequirements(t *testing.T) {
	root := t.TempDir()
	requirements := `# comment line
requests>=2.31
Flask==3.0.0
typing-extensions~=4.9
uvicorn[standard]>=0.27
-r other-requirements.txt

structlog ; python_version >= "3.8"
`
	require.NoError(t, os.WriteFile(filepath.Join(root, "requirements.txt"), []byte(requirements), 0o644))

	externals := LoadExternalPackages(root, []string{"NumPy"})

	assert.True(t, externals["requests"])
	assert.True(t, externals["flask"])
	assert.True(t, externals["typing_extensions"])
	assert.True(t, externals["uvicorn"])
	assert.True(t, externals["structlog"])
	assert.True(t, externals["numpy"])
	assert.False(t, externals["-r"])
	assert.False(t, externals[""])
}

func TestLoadExternalPackages_MissingRequirements(t *testing.T) {
	externals := LoadExternalPackages(t.TempDir(), []string{"pydantic"})

	assert.Equal(t, map[string]bool{"pydantic": true}, externals)
}
