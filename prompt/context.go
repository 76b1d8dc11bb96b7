// Package prompt assembles the template context from processed content and
// renders the final prompt text.
package prompt

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/promptpack/promptpack/chunk"
)

// GitInfo carries the git material that templates may include.
type GitInfo struct {
	StagedDiff        string
	BranchDiff        string
	BranchDiffBase    string
	BranchDiffCompare string
	BranchLog         string
	BranchLogBase     string
	BranchLogCompare  string
}

// ContextOptions controls how the template context is built.
type ContextOptions struct {
	ProjectName         string
	AbsoluteProjectPath string
	ShowAbsolutePath    bool
	LineNumbers         bool
	NoCodeblock         bool
	// Dependencies maps a file's relative path to the external module names
	// it references, shown alongside the file when present.
	Dependencies map[string][]string
	UserVars     map[string]string
}

// RenderedElement is a content element plus its display-ready form.
type RenderedElement struct {
	chunk.Element
	ExternalDeps     []string
	FormattedContent string
}

// Context is the data handed to prompt templates.
type Context struct {
	ProjectName         string
	ProjectPathHeader   string
	AbsoluteProjectPath string
	ShowAbsolutePath    bool
	SourceTree          string
	Elements            []RenderedElement
	Git                 GitInfo
	UserVars            map[string]string
}

// BuildContext shapes elements and git data into a template context. The
// source tree covers every distinct file the elements came from.
func BuildContext(opts ContextOptions, elements []chunk.Element, git GitInfo) Context {
	log.Debug("building template context", "elements", len(elements))

	header := opts.ProjectName
	if opts.ShowAbsolutePath {
		header = opts.AbsoluteProjectPath
	}

	rendered := make([]RenderedElement, 0, len(elements))
	seenPaths := make(map[string]bool)
	var relPaths []string
	for _, el := range elements {
		if !seenPaths[el.RelPath] {
			seenPaths[el.RelPath] = true
			relPaths = append(relPaths, el.RelPath)
		}
		rendered = append(rendered, RenderedElement{
			Element:          el,
			ExternalDeps:     opts.Dependencies[el.RelPath],
			FormattedContent: formatContent(el, opts.LineNumbers, opts.NoCodeblock),
		})
	}

	return Context{
		ProjectName:         opts.ProjectName,
		ProjectPathHeader:   header,
		AbsoluteProjectPath: opts.AbsoluteProjectPath,
		ShowAbsolutePath:    opts.ShowAbsolutePath,
		SourceTree:          BuildSourceTree(opts.ProjectName, relPaths),
		Elements:            rendered,
		Git:                 git,
		UserVars:            opts.UserVars,
	}
}

// formatContent applies line numbering and code fencing to an element's raw
// content. The fence grows until it cannot collide with the content.
func formatContent(el chunk.Element, lineNumbers, noCodeblock bool) string {
	content := strings.TrimRight(el.Content, "\n")

	if lineNumbers {
		lines := strings.Split(content, "\n")
		width := len(fmt.Sprint(el.StartLine + len(lines) - 1))
		for i, line := range lines {
			lines[i] = fmt.Sprintf("%*d | %s", width, el.StartLine+i, line)
		}
		content = strings.Join(lines, "\n")
	}

	if noCodeblock {
		return content
	}

	fence := "```"
	for strings.Contains(content, fence) {
		fence += "`"
	}
	return fence + el.Language + "\n" + content + "\n" + fence
}
