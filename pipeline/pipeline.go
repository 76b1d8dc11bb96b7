// Package pipeline runs the prompt assembly stages end to end: discovery,
// optional dependency tracing, chunking, sorting, git collection, rendering,
// and token counting.
package pipeline

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/promptpack/promptpack/chunk"
	"github.com/promptpack/promptpack/config"
	"github.com/promptpack/promptpack/deptrace"
	"github.com/promptpack/promptpack/deptrace/langsupport"
	"github.com/promptpack/promptpack/discovery"
	"github.com/promptpack/promptpack/prompt"
	"github.com/promptpack/promptpack/tokens"
	"github.com/promptpack/promptpack/vcs"
)

// Result is the outcome of one pipeline run.
type Result struct {
	Prompt   string
	Files    int
	Elements int

	// TokenCount is negative when counting was not requested.
	TokenCount int

	// Trace holds the dependency trace when tracing was enabled.
	Trace *deptrace.Result
}

// Run executes the full pipeline for the given settings.
func Run(settings config.Settings) (*Result, error) {
	files, err := discoverFiles(settings)
	if err != nil {
		return nil, err
	}

	result := &Result{TokenCount: -1}

	if settings.Trace {
		traceResult, err := traceClosure(settings, files)
		if err != nil {
			return nil, err
		}
		result.Trace = traceResult
		files = traceResult.Files
	}

	elements, err := chunkFiles(settings, files)
	if err != nil {
		return nil, err
	}
	sortElements(elements, settings.SortMethod)

	git := collectGitInfo(settings)

	deps := map[string][]string(nil)
	if settings.ShowDeps && result.Trace != nil {
		deps = relativeLedger(settings.BaseDir, result.Trace)
	}

	ctx := prompt.BuildContext(prompt.ContextOptions{
		ProjectName:         filepath.Base(settings.BaseDir),
		AbsoluteProjectPath: settings.BaseDir,
		ShowAbsolutePath:    settings.AbsolutePaths,
		LineNumbers:         settings.LineNumbers,
		NoCodeblock:         settings.NoCodeblock,
		Dependencies:        deps,
		UserVars:            settings.UserVars,
	}, elements, git)

	renderer, err := prompt.NewRenderer(settings.OutputFormat, settings.TemplatePath)
	if err != nil {
		return nil, err
	}
	rendered, err := renderer.Render(ctx)
	if err != nil {
		return nil, err
	}

	result.Prompt = rendered
	result.Files = len(files)
	result.Elements = len(elements)

	if settings.TokenFormat != "" {
		counter, err := tokens.NewCounter(settings.Encoding)
		if err != nil {
			return nil, err
		}
		count, err := counter.Count(rendered)
		if err != nil {
			return nil, err
		}
		result.TokenCount = count
	}

	return result, nil
}

func discoverFiles(settings config.Settings) ([]string, error) {
	includes := append([]string{}, settings.IncludePatterns...)
	for _, path := range settings.IncludeFromFiles {
		includes = append(includes, discovery.LoadPatternFile(resolvePath(settings.BaseDir, path))...)
	}
	excludes := append([]string{}, settings.ExcludePatterns...)
	for _, path := range settings.ExcludeFromFiles {
		excludes = append(excludes, discovery.LoadPatternFile(resolvePath(settings.BaseDir, path))...)
	}

	files, err := discovery.Discover(discovery.Options{
		BaseDir:         settings.BaseDir,
		InputPaths:      settings.InputPaths,
		IncludePatterns: includes,
		ExcludePatterns: excludes,
		IncludePriority: settings.IncludePriority,
		NoIgnore:        settings.NoIgnore,
		Hidden:          settings.Hidden,
		FollowSymlinks:  settings.FollowSymlinks,
		Grep:            settings.Grep,
	})
	if err != nil {
		return nil, err
	}
	log.Info("discovered files", "count", len(files))
	return files, nil
}

// traceClosure expands the discovered files to their import dependency
// closure.
func traceClosure(settings config.Settings, seeds []string) (*deptrace.Result, error) {
	tracer, err := deptrace.NewTracer(settings.BaseDir, deptrace.Options{
		FilterUnused:     settings.TraceFilterUnused,
		ExternalPackages: settings.ExternalPackages,
	})
	if err != nil {
		return nil, err
	}

	result, err := tracer.Trace(seeds)
	if err != nil {
		return nil, err
	}
	log.Info("traced dependency closure",
		"seeds", len(seeds), "files", len(result.Files), "edges", len(result.Edges))
	return result, nil
}

func chunkFiles(settings config.Settings, files []string) ([]chunk.Element, error) {
	chunker := chunk.NewChunker(settings.BaseDir, chunkStrategy(settings), langsupport.NewParsers())

	var elements []chunk.Element
	skipped := 0
	for _, file := range files {
		fileElements, err := chunker.ChunkFile(file)
		if err != nil {
			log.Warn("failed to process file", "path", file, "error", err)
			skipped++
			continue
		}
		if len(fileElements) == 0 {
			skipped++
			continue
		}
		elements = append(elements, fileElements...)
	}
	log.Info("processed content elements", "elements", len(elements), "skipped_files", skipped)
	return elements, nil
}

func chunkStrategy(settings config.Settings) string {
	if settings.ChunkStrategy == config.ChunkStructure {
		return chunk.StrategyStructure
	}
	return chunk.StrategyWholeFile
}

// sortElements orders elements for rendering. Name sorts are by relative
// path; date sorts use file modification time. Elements of one file always
// stay in source order within their sort group.
func sortElements(elements []chunk.Element, method string) {
	switch method {
	case config.SortNameDesc:
		sort.SliceStable(elements, func(i, j int) bool {
			if elements[i].RelPath != elements[j].RelPath {
				return elements[i].RelPath > elements[j].RelPath
			}
			return elements[i].StartLine < elements[j].StartLine
		})
	case config.SortDateAsc:
		sort.SliceStable(elements, func(i, j int) bool {
			if !elements[i].ModTime.Equal(elements[j].ModTime) {
				return elements[i].ModTime.Before(elements[j].ModTime)
			}
			return lessByPathLine(elements[i], elements[j])
		})
	case config.SortDateDesc:
		sort.SliceStable(elements, func(i, j int) bool {
			if !elements[i].ModTime.Equal(elements[j].ModTime) {
				return elements[i].ModTime.After(elements[j].ModTime)
			}
			return lessByPathLine(elements[i], elements[j])
		})
	default:
		sort.SliceStable(elements, func(i, j int) bool {
			return lessByPathLine(elements[i], elements[j])
		})
	}
}

func lessByPathLine(a, b chunk.Element) bool {
	if a.RelPath != b.RelPath {
		return a.RelPath < b.RelPath
	}
	return a.StartLine < b.StartLine
}

// collectGitInfo gathers the requested git material. A missing repository
// downgrades every git flag to a warning.
func collectGitInfo(settings config.Settings) prompt.GitInfo {
	var info prompt.GitInfo

	wantsGit := settings.Diff || len(settings.DiffBranches) == 2 || len(settings.LogBranches) == 2
	if !wantsGit {
		return info
	}
	if !vcs.IsRepository(settings.BaseDir) {
		log.Warn("git flags ignored, not a git repository", "path", settings.BaseDir)
		return info
	}

	if settings.Diff {
		diff, err := vcs.StagedDiff(settings.BaseDir)
		if err != nil {
			log.Warn("failed to get staged diff", "error", err)
		} else {
			info.StagedDiff = diff
		}
	}

	if len(settings.DiffBranches) == 2 {
		base, compare := settings.DiffBranches[0], settings.DiffBranches[1]
		diff, err := vcs.DiffBranches(settings.BaseDir, base, compare)
		if err != nil {
			log.Warn("failed to diff branches", "base", base, "compare", compare, "error", err)
		} else {
			info.BranchDiff = diff
			info.BranchDiffBase = base
			info.BranchDiffCompare = compare
		}
	}

	if len(settings.LogBranches) == 2 {
		base, compare := settings.LogBranches[0], settings.LogBranches[1]
		logOut, err := vcs.LogBranches(settings.BaseDir, base, compare)
		if err != nil {
			log.Warn("failed to log branches", "base", base, "compare", compare, "error", err)
		} else {
			info.BranchLog = logOut
			info.BranchLogBase = base
			info.BranchLogCompare = compare
		}
	}

	return info
}

// relativeLedger rebases the trace ledger onto base-relative paths for
// display.
func relativeLedger(baseDir string, trace *deptrace.Result) map[string][]string {
	deps := make(map[string][]string, len(trace.Ledger))
	for file, modules := range trace.Ledger {
		rel, err := filepath.Rel(baseDir, file)
		if err != nil {
			rel = filepath.Base(file)
		}
		deps[filepath.ToSlash(rel)] = modules
	}
	return deps
}

func resolvePath(baseDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// Describe returns a short human-readable label for the run, used by the
// watch loop's status line.
func Describe(result *Result) string {
	return fmt.Sprintf("%d files, %d elements", result.Files, result.Elements)
}
