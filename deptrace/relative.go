package deptrace

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/promptpack/promptpack/deptrace/langsupport"
)

// NormalizeRelative converts a relative import declaration into an absolute
// module name using the importing file's position in the project tree.
// Declarations with level 0 pass through unchanged.
//
// Level 1 means the current package, level 2 the parent package, and so on. A
// package's __init__.py is the package itself, so the file's directory is
// already the right starting point. Normalization fails when the level climbs
// past the file's package depth.
func NormalizeRelative(decl langsupport.ImportDeclaration, filePath, projectRoot string) (string, error) {
	if decl.Level == 0 {
		return decl.Module, nil
	}

	rel, err := filepath.Rel(projectRoot, filePath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("file %s is outside project root %s", filePath, projectRoot)
	}

	var segments []string
	if dir := filepath.Dir(rel); dir != "." {
		segments = strings.Split(filepath.ToSlash(dir), "/")
	}

	levelsUp := decl.Level - 1
	if levelsUp > len(segments) {
		return "", fmt.Errorf("relative level %d exceeds package depth %d of %s",
			decl.Level, len(segments), rel)
	}
	segments = segments[:len(segments)-levelsUp]

	if decl.Module != "" {
		segments = append(segments, strings.Split(decl.Module, ".")...)
	}
	if len(segments) == 0 {
		return "", fmt.Errorf("relative import at %s:%d resolves to an empty module name",
			rel, decl.Line)
	}

	return strings.Join(segments, "."), nil
}
