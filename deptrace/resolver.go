package deptrace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// conventionalSourceDirs are subdirectories probed under the project root for
// src-layout and similar package arrangements.
var conventionalSourceDirs = []string{"src", "lib", "source"}

// Resolver maps absolute module names to one of four classifications:
// internal file, standard-library name, external package name, or unresolved.
type Resolver struct {
	projectRoot string
	sourceRoots []string
	externals   map[string]bool
}

// NewResolver creates a resolver rooted at projectRoot. The root must be an
// existing directory; this is the only fatal condition in the subsystem.
// externals is the set of known externally-installed top-level package names.
func NewResolver(projectRoot string, externals map[string]bool) (*Resolver, error) {
	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root %s: %w", projectRoot, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("invalid project root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", root)
	}

	if externals == nil {
		externals = make(map[string]bool)
	}

	return &Resolver{
		projectRoot: root,
		sourceRoots: detectSourceRoots(root),
		externals:   externals,
	}, nil
}

// ProjectRoot returns the resolver's absolute project root.
func (r *Resolver) ProjectRoot() string {
	return r.projectRoot
}

// Resolve classifies an absolute module name. Standard-library and known
// external names are cheap, unambiguous checks and short-circuit before any
// filesystem probing; the filesystem is then probed in the project root and
// each conventional source root in turn.
func (r *Resolver) Resolve(module string) Resolution {
	if module == "" {
		return Resolution{Kind: ResolutionUnresolved}
	}

	top := topSegment(module)
	if pythonStdlibModules[top] {
		return Resolution{Kind: ResolutionStdlib, Name: module}
	}
	if r.externals[top] {
		return Resolution{Kind: ResolutionExternal, Name: module}
	}

	parts := strings.Split(module, ".")
	roots := append([]string{r.projectRoot}, r.sourceRoots...)
	for _, base := range roots {
		modulePath := filepath.Join(append([]string{base}, parts...)...)

		initCandidate := filepath.Join(modulePath, "__init__.py")
		if isFile(initCandidate) {
			return Resolution{Kind: ResolutionInternal, Path: initCandidate, Name: module}
		}

		fileCandidate := modulePath + ".py"
		if isFile(fileCandidate) {
			return Resolution{Kind: ResolutionInternal, Path: fileCandidate, Name: module}
		}
	}

	log.Debug("module unresolved", "module", module)
	return Resolution{Kind: ResolutionUnresolved, Name: module}
}

// detectSourceRoots finds conventional source subdirectories that exist under
// the project root.
func detectSourceRoots(root string) []string {
	var sourceRoots []string
	for _, subdir := range conventionalSourceDirs {
		candidate := filepath.Join(root, subdir)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			sourceRoots = append(sourceRoots, candidate)
			log.Debug("detected source root", "path", candidate)
		}
	}
	return sourceRoots
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func topSegment(module string) string {
	if idx := strings.Index(module, "."); idx >= 0 {
		return module[:idx]
	}
	return module
}
