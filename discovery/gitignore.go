package discovery

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// ignoreChain matches paths against the .gitignore files between the walk
// base and the path's own directory. Pattern lists are cached per directory.
type ignoreChain struct {
	baseDir  string
	disabled bool

	patterns map[string][]gitignore.Pattern
}

func newIgnoreChain(baseDir string, disabled bool) *ignoreChain {
	return &ignoreChain{
		baseDir:  baseDir,
		disabled: disabled,
		patterns: make(map[string][]gitignore.Pattern),
	}
}

// Ignored reports whether the absolute path is excluded by any .gitignore
// file on the way down from the base directory. Paths outside the base are
// never considered ignored.
func (c *ignoreChain) Ignored(absPath string, isDir bool) bool {
	if c.disabled {
		return false
	}

	rel, err := filepath.Rel(c.baseDir, absPath)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return false
	}
	segments := strings.Split(filepath.ToSlash(rel), "/")

	var chain []gitignore.Pattern
	chain = append(chain, c.load(c.baseDir, nil)...)

	dir := c.baseDir
	for i := range segments[:len(segments)-1] {
		dir = filepath.Join(dir, segments[i])
		chain = append(chain, c.load(dir, segments[:i+1])...)
	}

	if len(chain) == 0 {
		return false
	}
	return gitignore.NewMatcher(chain).Match(segments, isDir)
}

// load parses the .gitignore file in dir, if any, caching the result. The
// domain anchors each pattern to the directory that declared it.
func (c *ignoreChain) load(dir string, domain []string) []gitignore.Pattern {
	if cached, ok := c.patterns[dir]; ok {
		return cached
	}

	var patterns []gitignore.Pattern
	f, err := os.Open(filepath.Join(dir, ".gitignore"))
	if err == nil {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			patterns = append(patterns, gitignore.ParsePattern(line, domain))
		}
		if err := scanner.Err(); err != nil {
			log.Warn("failed to read gitignore", "dir", dir, "error", err)
		}
		if len(patterns) > 0 {
			log.Debug("loaded gitignore patterns", "dir", dir, "count", len(patterns))
		}
	}

	c.patterns[dir] = patterns
	return patterns
}
