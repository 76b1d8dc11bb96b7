package deptrace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/promptpack/promptpack/deptrace/langsupport"
	"github.com/promptpack/promptpack/deptrace/registry"
	"github.com/promptpack/promptpack/vcs"
)

// excludedDirs are directory names that mark a path as outside the traceable
// project even when it sits under the project root (virtual environments,
// caches, version control internals).
var excludedDirs = map[string]bool{
	".venv": true, "venv": true, ".env": true, "env": true,
	"__pycache__": true, ".git": true, ".hg": true,
	"node_modules": true, ".tox": true, ".nox": true,
	"site-packages": true, "dist-packages": true,
}

// Edge records one internal import relationship discovered during traversal.
type Edge struct {
	FromFile string
	FromLine int
	ToFile   string
	Module   string
}

// FileError records a per-file read or parse failure. Failed files contribute
// no edges; the traversal continues past them.
type FileError struct {
	File    string
	Message string
}

// SkippedImport records an import dropped by unused-import filtering.
type SkippedImport struct {
	File   string
	Module string
	Line   int
}

// Result is the outcome of a completed traversal.
type Result struct {
	// Files is the sorted, de-duplicated set of project files reachable from
	// the seeds, seeds included.
	Files []string
	// Edges lists every internal import relationship, one per resolution.
	Edges []Edge
	// Graph maps each processed file to the internal files it imports.
	Graph map[string][]string
	// Ledger maps each file to the sorted external and stdlib module names it
	// references.
	Ledger map[string][]string
	// Errors lists per-file read and parse failures.
	Errors []FileError
	// Skipped lists imports dropped by unused-import filtering.
	Skipped []SkippedImport
}

// Options configures a Tracer.
type Options struct {
	// FilterUnused drops imports whose bound names are never referenced in
	// the importing file. Wildcard imports are never dropped.
	FilterUnused bool
	// ExternalPackages names externally-installed top-level packages beyond
	// those found in requirements.txt.
	ExternalPackages []string
	// ContentReader reads file contents; defaults to os.ReadFile.
	ContentReader vcs.ContentReader
}

// Tracer performs a worklist traversal over a project's import graph. All
// traversal state lives on this struct; one Tracer serves one traversal and
// is not safe for concurrent use.
type Tracer struct {
	projectRoot  string
	filterUnused bool
	resolver     *Resolver
	parsers      *langsupport.Parsers
	readFile     vcs.ContentReader

	visited     map[string]bool
	graph       map[string][]string
	edges       []Edge
	ledger      map[string]map[string]bool
	parseErrors []FileError
	skipped     []SkippedImport
}

// NewTracer creates a Tracer for the project rooted at projectRoot. The root
// must exist; everything else is recoverable during traversal.
func NewTracer(projectRoot string, opts Options) (*Tracer, error) {
	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root %s: %w", projectRoot, err)
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	externals := LoadExternalPackages(root, opts.ExternalPackages)
	resolver, err := NewResolver(root, externals)
	if err != nil {
		return nil, err
	}

	readFile := opts.ContentReader
	if readFile == nil {
		readFile = os.ReadFile
	}

	return &Tracer{
		projectRoot:  resolver.ProjectRoot(),
		filterUnused: opts.FilterUnused,
		resolver:     resolver,
		parsers:      langsupport.NewParsers(),
		readFile:     readFile,
		visited:      make(map[string]bool),
		graph:        make(map[string][]string),
		ledger:       make(map[string]map[string]bool),
	}, nil
}

// Trace runs the worklist traversal from the given seed files and returns the
// dependency closure. Every seed appears in the result, even seeds that fail
// to read or parse. Termination is guaranteed: the visited set only grows and
// each file is processed at most once, so cycles cannot loop.
func (t *Tracer) Trace(seeds []string) (*Result, error) {
	worklist := make([]string, 0, len(seeds))
	for _, seed := range seeds {
		abs, err := filepath.Abs(seed)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve seed path %s: %w", seed, err)
		}
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			abs = resolved
		}
		worklist = append(worklist, abs)
	}

	log.Debug("starting dependency trace", "seeds", len(worklist))

	for len(worklist) > 0 {
		current := worklist[0]
		worklist = worklist[1:]

		for _, discovered := range t.traceFile(current) {
			if !t.visited[discovered] {
				worklist = append(worklist, discovered)
			}
		}
	}

	result := t.buildResult()
	log.Debug("dependency trace complete", "files", len(result.Files), "edges", len(result.Edges))
	return result, nil
}

// traceFile processes a single file through read, parse, optional filtering,
// and resolution, returning newly discovered internal files. Each distinct
// path runs through here exactly once.
func (t *Tracer) traceFile(filePath string) []string {
	if t.visited[filePath] {
		return nil
	}
	t.visited[filePath] = true
	if _, ok := t.graph[filePath]; !ok {
		t.graph[filePath] = []string{}
	}

	module, ok := registry.ModuleForExtension(filepath.Ext(filePath))
	if !ok {
		log.Debug("skipping file with unsupported extension", "file", filePath)
		return nil
	}

	content, err := t.readFile(filePath)
	if err != nil {
		log.Warn("failed to read file", "file", filePath, "error", err)
		t.parseErrors = append(t.parseErrors, FileError{File: filePath, Message: err.Error()})
		return nil
	}

	decls, err := module.NewExtractor(t.parsers).ExtractImports(content)
	if err != nil {
		log.Warn("failed to parse file", "file", filePath, "error", err)
		t.parseErrors = append(t.parseErrors, FileError{File: filePath, Message: err.Error()})
		return nil
	}

	if t.filterUnused {
		decls = t.filterUnusedImports(module, filePath, content, decls)
	}

	var discovered []string
	seen := make(map[string]bool)

	for _, decl := range decls {
		moduleName, err := NormalizeRelative(decl, filePath, t.projectRoot)
		if err != nil {
			log.Debug("relative import not normalized", "file", filePath, "line", decl.Line, "error", err)
			continue
		}

		resolution := t.resolver.Resolve(moduleName)
		switch resolution.Kind {
		case ResolutionInternal:
			target := resolution.Path
			if resolved, err := filepath.EvalSymlinks(target); err == nil {
				target = resolved
			}
			if !t.inProject(target) {
				log.Debug("import outside project boundary", "module", moduleName, "path", target)
				continue
			}
			if target == filePath {
				continue
			}

			t.edges = append(t.edges, Edge{
				FromFile: filePath,
				FromLine: decl.Line,
				ToFile:   target,
				Module:   moduleName,
			})
			if !seen[target] {
				seen[target] = true
				t.graph[filePath] = append(t.graph[filePath], target)
				discovered = append(discovered, target)
			}

		case ResolutionStdlib, ResolutionExternal:
			if t.ledger[filePath] == nil {
				t.ledger[filePath] = make(map[string]bool)
			}
			t.ledger[filePath][resolution.Name] = true

		case ResolutionUnresolved:
			log.Debug("import unresolved", "file", filePath, "module", moduleName, "line", decl.Line)
		}
	}

	return discovered
}

// filterUnusedImports drops declarations whose bound names are all unused.
// Wildcard imports always survive: their bound names cannot be enumerated, so
// pruning them could discard a necessary edge. If usage analysis itself fails
// the declarations are kept untouched.
func (t *Tracer) filterUnusedImports(
	module langsupport.Module,
	filePath string,
	content []byte,
	decls []langsupport.ImportDeclaration,
) []langsupport.ImportDeclaration {
	usage, err := module.NewUsageAnalyzer(t.parsers).AnalyzeUsage(content)
	if err != nil {
		log.Debug("usage analysis failed, keeping all imports", "file", filePath, "error", err)
		return decls
	}

	kept := decls[:0]
	for _, decl := range decls {
		if decl.Wildcard || len(decl.Names) == 0 || anyNameReferenced(usage, decl.Names) {
			kept = append(kept, decl)
			continue
		}
		log.Debug("skipping unused import", "file", filePath, "module", displayModule(decl), "line", decl.Line)
		t.skipped = append(t.skipped, SkippedImport{
			File:   filePath,
			Module: displayModule(decl),
			Line:   decl.Line,
		})
	}
	return kept
}

// inProject reports whether a path lies inside the project boundary. Applied
// before enqueuing so symlinked or parent-relative paths cannot escape the
// project.
func (t *Tracer) inProject(path string) bool {
	rel, err := filepath.Rel(t.projectRoot, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}

	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if excludedDirs[part] {
			return false
		}
	}
	return true
}

func (t *Tracer) buildResult() *Result {
	files := make([]string, 0, len(t.visited))
	for file := range t.visited {
		files = append(files, file)
	}
	sort.Strings(files)

	ledger := make(map[string][]string, len(t.ledger))
	for file, modules := range t.ledger {
		names := make([]string, 0, len(modules))
		for name := range modules {
			names = append(names, name)
		}
		sort.Strings(names)
		ledger[file] = names
	}

	return &Result{
		Files:   files,
		Edges:   t.edges,
		Graph:   t.graph,
		Ledger:  ledger,
		Errors:  t.parseErrors,
		Skipped: t.skipped,
	}
}

func anyNameReferenced(usage langsupport.UsageReport, names []string) bool {
	for _, name := range names {
		if usage.References(name) {
			return true
		}
	}
	return false
}

// displayModule renders a declaration's module reference the way it appears
// in source, dots included for relative imports.
func displayModule(decl langsupport.ImportDeclaration) string {
	return strings.Repeat(".", decl.Level) + decl.Module
}
