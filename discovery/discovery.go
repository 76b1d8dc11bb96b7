// Package discovery walks input paths and produces the sorted set of files
// that pass the configured filters: include/exclude globs, pattern files,
// .gitignore chains, hidden-file rules, and optional content search.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

// Options configures a discovery walk. BaseDir anchors relative paths and
// filter decisions; InputPaths are the files or directories to walk.
type Options struct {
	BaseDir    string
	InputPaths []string

	IncludePatterns []string
	ExcludePatterns []string
	IncludePriority bool

	NoIgnore       bool
	Hidden         bool
	FollowSymlinks bool

	// Grep keeps only files whose content matches this regular expression.
	Grep string
}

type walker struct {
	opts    Options
	rules   *globRules
	ignores *ignoreChain
	grep    *regexp.Regexp

	found       map[string]bool
	visitedDirs map[string]bool
}

// Discover resolves the input paths and walks them, returning the sorted,
// de-duplicated absolute file paths that pass every filter.
func Discover(opts Options) ([]string, error) {
	baseDir, err := filepath.Abs(opts.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory %s: %w", opts.BaseDir, err)
	}
	opts.BaseDir = baseDir

	rules, err := newGlobRules(opts.IncludePatterns, opts.ExcludePatterns, opts.IncludePriority)
	if err != nil {
		return nil, err
	}

	var grep *regexp.Regexp
	if opts.Grep != "" {
		grep, err = regexp.Compile(opts.Grep)
		if err != nil {
			return nil, fmt.Errorf("invalid grep pattern %q: %w", opts.Grep, err)
		}
	}

	w := &walker{
		opts:        opts,
		rules:       rules,
		ignores:     newIgnoreChain(baseDir, opts.NoIgnore),
		grep:        grep,
		found:       make(map[string]bool),
		visitedDirs: make(map[string]bool),
	}

	inputs := opts.InputPaths
	if len(inputs) == 0 {
		inputs = []string{baseDir}
	}

	log.Debug("starting discovery walk", "base", baseDir, "inputs", len(inputs))
	for _, input := range inputs {
		abs := input
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(baseDir, input)
		}
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			abs = resolved
		}

		info, err := os.Stat(abs)
		if err != nil {
			log.Warn("input path not found, skipped", "path", input)
			continue
		}

		if info.IsDir() {
			w.walkDir(abs)
		} else {
			w.considerFile(abs)
		}
	}

	files := make([]string, 0, len(w.found))
	for file := range w.found {
		files = append(files, file)
	}
	sort.Strings(files)
	log.Debug("discovery walk finished", "files", len(files))
	return files, nil
}

func (w *walker) walkDir(root string) {
	if w.visitedDirs[root] {
		return
	}
	w.visitedDirs[root] = true

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn("walk error", "path", path, "error", err)
			return nil
		}

		if d.IsDir() {
			if path != root && !w.keepDir(path) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			w.followSymlink(path)
			return nil
		}

		w.considerFile(path)
		return nil
	})
	if err != nil {
		log.Warn("directory walk aborted", "root", root, "error", err)
	}
}

// followSymlink resolves a symlink entry and, when symlink following is on,
// feeds the target back through the walk. Targets are resolved once so link
// cycles cannot recurse.
func (w *walker) followSymlink(path string) {
	if !w.opts.FollowSymlinks {
		return
	}

	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		log.Warn("broken symlink skipped", "path", path)
		return
	}

	info, err := os.Stat(target)
	if err != nil {
		return
	}
	if info.IsDir() {
		w.walkDir(target)
		return
	}
	w.considerFile(target)
}

func (w *walker) keepDir(path string) bool {
	rel := w.relPath(path)
	if w.isHidden(rel) {
		return false
	}
	if w.ignores.Ignored(path, true) {
		return false
	}
	return w.rules.keep(rel, true)
}

func (w *walker) considerFile(path string) {
	if w.found[path] {
		return
	}

	rel := w.relPath(path)
	if w.isHidden(rel) {
		return
	}
	if w.ignores.Ignored(path, false) {
		return
	}
	if !w.rules.keep(rel, false) {
		return
	}
	if w.grep != nil && !w.contentMatches(path) {
		return
	}

	w.found[path] = true
}

func (w *walker) contentMatches(path string) bool {
	content, err := os.ReadFile(path)
	if err != nil {
		log.Warn("failed to read file for content search", "path", path, "error", err)
		return false
	}
	return w.grep.Match(content)
}

// relPath returns the slash-separated path relative to the base directory,
// falling back to the base name for paths outside it.
func (w *walker) relPath(path string) string {
	rel, err := filepath.Rel(w.opts.BaseDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}

// isHidden reports whether any path segment starts with a dot. The --hidden
// flag turns this rule off entirely.
func (w *walker) isHidden(relPath string) bool {
	if w.opts.Hidden {
		return false
	}
	for _, part := range strings.Split(relPath, "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}
