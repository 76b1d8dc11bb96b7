// Package chunk turns discovered files into content elements: either one
// element per file, or structural elements (functions and classes) for
// languages with tree-sitter support.
package chunk

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/promptpack/promptpack/deptrace/langsupport"
)

// Element types.
const (
	TypeFile     = "file"
	TypeFunction = "function"
	TypeClass    = "class"
)

// Strategies for splitting file content.
const (
	StrategyWholeFile = "file"
	StrategyStructure = "structure"
)

// Element is one unit of content destined for the rendered prompt.
type Element struct {
	FilePath      string
	RelPath       string
	Type          string
	Name          string
	QualifiedName string
	Language      string
	StartLine     int
	EndLine       int
	Docstring     string
	Content       string
	ModTime       time.Time
}

// Chunker reads files and splits them into elements according to a strategy.
type Chunker struct {
	baseDir  string
	strategy string
	parsers  *langsupport.Parsers
}

// NewChunker creates a chunker rooted at baseDir. The parser registry is
// shared with the caller so parsers are built once per run.
func NewChunker(baseDir, strategy string, parsers *langsupport.Parsers) *Chunker {
	return &Chunker{baseDir: baseDir, strategy: strategy, parsers: parsers}
}

// ChunkFile reads one file and returns its elements. Binary and empty files
// yield no elements and no error; they are logged and skipped.
func (c *Chunker) ChunkFile(path string) ([]Element, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	content = stripBOM(content)
	if !utf8.Valid(content) {
		log.Debug("skipping binary file", "path", path)
		return nil, nil
	}
	if len(bytes.TrimSpace(content)) == 0 {
		log.Debug("skipping empty file", "path", path)
		return nil, nil
	}

	relPath := c.relPath(path)
	modTime := time.Time{}
	if info, err := os.Stat(path); err == nil {
		modTime = info.ModTime()
	}

	if c.strategy == StrategyStructure && filepath.Ext(path) == ".py" {
		elements, err := c.pythonElements(path, relPath, content, modTime)
		if err != nil {
			log.Warn("structural chunking failed, falling back to whole file", "path", path, "error", err)
		} else if len(elements) > 0 {
			return elements, nil
		}
	}

	return []Element{c.wholeFileElement(path, relPath, content, modTime)}, nil
}

func (c *Chunker) wholeFileElement(path, relPath string, content []byte, modTime time.Time) Element {
	text := string(content)
	return Element{
		FilePath:  path,
		RelPath:   relPath,
		Type:      TypeFile,
		Language:  languageHint(path),
		StartLine: 1,
		EndLine:   len(strings.Split(strings.TrimRight(text, "\n"), "\n")),
		Content:   text,
		ModTime:   modTime,
	}
}

func (c *Chunker) relPath(path string) string {
	rel, err := filepath.Rel(c.baseDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}

func stripBOM(content []byte) []byte {
	return bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})
}

// languageHint maps a file extension to the fence label used in code blocks.
func languageHint(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "py":
		return "python"
	case "js", "mjs", "jsx":
		return "javascript"
	case "ts", "tsx":
		return "typescript"
	case "md":
		return "markdown"
	case "yml":
		return "yaml"
	case "rs":
		return "rust"
	case "rb":
		return "ruby"
	case "kt":
		return "kotlin"
	case "sh", "bash":
		return "shell"
	default:
		return ext
	}
}
