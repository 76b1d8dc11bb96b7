package deptrace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProjectFile(t *testing.T, root, relPath, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(relPath))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewResolver_InvalidRoot(t *testing.T) {
	_, err := NewResolver(filepath.Join(t.TempDir(), "missing"), nil)
	assert.Error(t, err)
}

func TestResolve_Stdlib(t *testing.T) {
	resolver, err := NewResolver(t.TempDir(), nil)
	require.NoError(t, err)

	res := resolver.Resolve("os.path")

	assert.Equal(t, ResolutionStdlib, res.Kind)
	assert.Equal(t, "os.path", res.Name)
}

func TestResolve_KnownExternal(t *testing.T) {
	root := t.TempDir()
	resolver, err := NewResolver(root, map[string]bool{"requests": true})
	require.NoError(t, err)

	res := resolver.Resolve("requests.sessions")

	assert.Equal(t, ResolutionExternal, res.Kind)
	assert.Equal(t, "requests.sessions", res.Name)
}

func TestResolve_StdlibWinsOverProjectFile(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "os.py", "")

	resolver, err := NewResolver(root, nil)
	require.NoError(t, err)

	res := resolver.Resolve("os")

	assert.Equal(t, ResolutionStdlib, res.Kind)
}

func TestResolve_InternalPackageBeforeFile(t *testing.T) {
	root := t.TempDir()
	initPath := writeProjectFile(t, root, "pkg/__init__.py", "")
	writeProjectFile(t, root, "pkg.py", "")

	resolver, err := NewResolver(root, nil)
	require.NoError(t, err)

	res := resolver.Resolve("pkg")

	require.Equal(t, ResolutionInternal, res.Kind)
	assert.Equal(t, initPath, res.Path)
}

func TestResolve_InternalPlainFile(t *testing.T) {
	root := t.TempDir()
	modulePath := writeProjectFile(t, root, "app/core/utils.py", "")

	resolver, err := NewResolver(root, nil)
	require.NoError(t, err)

	res := resolver.Resolve("app.core.utils")

	require.Equal(t, ResolutionInternal, res.Kind)
	assert.Equal(t, modulePath, res.Path)
}

func TestResolve_SrcLayout(t *testing.T) {
	root := t.TempDir()
	modulePath := writeProjectFile(t, root, "src/mypkg/api.py", "")

	resolver, err := NewResolver(root, nil)
	require.NoError(t, err)

	res := resolver.Resolve("mypkg.api")

	require.Equal(t, ResolutionInternal, res.Kind)
	assert.Equal(t, modulePath, res.Path)
}

func TestResolve_ProjectRootBeforeSourceRoots(t *testing.T) {
	root := t.TempDir()
	rootModule := writeProjectFile(t, root, "mypkg.py", "")
	writeProjectFile(t, root, "src/mypkg.py", "")

	resolver, err := NewResolver(root, nil)
	require.NoError(t, err)

	res := resolver.Resolve("mypkg")

	require.Equal(t, ResolutionInternal, res.Kind)
	assert.Equal(t, rootModule, res.Path)
}

func TestResolve_Unresolved(t *testing.T) {
	resolver, err := NewResolver(t.TempDir(), nil)
	require.NoError(t, err)

	res := resolver.Resolve("nonexistent_package.thing")

	assert.Equal(t, ResolutionUnresolved, res.Kind)
}

func TestResolve_EmptyModule(t *testing.T) {
	resolver, err := NewResolver(t.TempDir(), nil)
	require.NoError(t, err)

	assert.Equal(t, ResolutionUnresolved, resolver.Resolve("").Kind)
}
