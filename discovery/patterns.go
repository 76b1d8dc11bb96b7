package discovery

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
)

// globRules applies include and exclude glob patterns to slash-separated
// paths relative to the walk base.
type globRules struct {
	includes        []string
	excludes        []string
	includePriority bool
}

func newGlobRules(includes, excludes []string, includePriority bool) (*globRules, error) {
	for _, pattern := range append(append([]string{}, includes...), excludes...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid glob pattern %q", pattern)
		}
	}
	return &globRules{
		includes:        includes,
		excludes:        excludes,
		includePriority: includePriority,
	}, nil
}

// keep decides whether a path survives the glob rules. Directories that match
// no include pattern stay traversable since files beneath them may match.
func (r *globRules) keep(relPath string, isDir bool) bool {
	excluded := matchesAny(r.excludes, relPath)
	included := matchesAny(r.includes, relPath)

	if excluded {
		if r.includePriority && included {
			return true
		}
		return false
	}

	if len(r.includes) > 0 && !included && !isDir {
		return false
	}
	return true
}

// matchesAny reports whether any pattern matches the path itself or its base
// name. Matching the base name lets a bare "*.py" work at any depth.
func matchesAny(patterns []string, relPath string) bool {
	base := path.Base(relPath)
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			return true
		}
		if !strings.Contains(pattern, "/") {
			if ok, _ := doublestar.Match(pattern, base); ok {
				return true
			}
		}
	}
	return false
}

// LoadPatternFile reads glob patterns from a file, one per line. Blank lines
// and lines starting with # are skipped. A missing file yields no patterns
// and a warning, matching how ignore files behave.
func LoadPatternFile(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		log.Warn("pattern file not readable", "path", path, "error", err)
		return nil
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := scanner.Err(); err != nil {
		log.Warn("failed to read pattern file", "path", path, "error", err)
	}
	return patterns
}
