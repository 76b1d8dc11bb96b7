// Package trace implements the trace subcommand: run the import dependency
// tracer alone and report its findings.
package trace

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/promptpack/promptpack/deptrace"
	"github.com/promptpack/promptpack/discovery"
)

type traceOptions struct {
	projectDir       string
	filterUnused     bool
	externalPackages []string
	stdin            bool
	nulSeparated     bool
	jsonOutput       bool
}

// NewCommand returns a new trace command instance.
func NewCommand() *cobra.Command {
	opts := &traceOptions{}

	cmd := &cobra.Command{
		Use:   "trace [files...]",
		Short: "Trace the Python import dependency closure of files",
		Long: `Trace the import dependency closure of the given Python files and print
the reachable files, internal import edges, external dependencies, parse
failures, and import cycles.

Example usage:
  promptpack trace main.py
  promptpack trace src/app.py --filter-unused
  find . -name '*.py' -print0 | promptpack trace --stdin -0 --json`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.projectDir, "dir", "C", ".", "Project directory")
	cmd.Flags().BoolVar(&opts.filterUnused, "filter-unused", false, "Skip imports whose names are never used")
	cmd.Flags().StringSliceVar(&opts.externalPackages, "external-package", nil, "Extra package names to treat as external")
	cmd.Flags().BoolVar(&opts.stdin, "stdin", false, "Read seed files from stdin")
	cmd.Flags().BoolVarP(&opts.nulSeparated, "null", "0", false, "Stdin paths are NUL-separated (find -print0)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Emit JSON instead of text")

	return cmd
}

func runTrace(cmd *cobra.Command, args []string, opts *traceOptions) error {
	projectDir, err := filepath.Abs(opts.projectDir)
	if err != nil {
		return fmt.Errorf("failed to resolve project directory: %w", err)
	}

	seeds := args
	if opts.stdin {
		seeds, err = discovery.ReadSeedPaths(os.Stdin, opts.nulSeparated)
		if err != nil {
			return err
		}
	}
	if len(seeds) == 0 {
		return fmt.Errorf("no seed files given")
	}
	for i, seed := range seeds {
		if !filepath.IsAbs(seed) {
			seeds[i] = filepath.Join(projectDir, seed)
		}
	}

	tracer, err := deptrace.NewTracer(projectDir, deptrace.Options{
		FilterUnused:     opts.filterUnused,
		ExternalPackages: opts.externalPackages,
	})
	if err != nil {
		return err
	}

	result, err := tracer.Trace(seeds)
	if err != nil {
		return err
	}

	cycles, err := deptrace.Cycles(result)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		return printJSON(out, projectDir, result, cycles)
	}
	printText(out, projectDir, result, cycles)
	return nil
}

type jsonEdge struct {
	From   string `json:"from"`
	Line   int    `json:"line"`
	To     string `json:"to"`
	Module string `json:"module"`
}

type jsonError struct {
	File    string `json:"file"`
	Message string `json:"message"`
}

type jsonSkipped struct {
	File   string `json:"file"`
	Module string `json:"module"`
	Line   int    `json:"line"`
}

type jsonReport struct {
	Files     []string            `json:"files"`
	Edges     []jsonEdge          `json:"edges"`
	Externals map[string][]string `json:"externals,omitempty"`
	Errors    []jsonError         `json:"errors,omitempty"`
	Skipped   []jsonSkipped       `json:"skipped_imports,omitempty"`
	Cycles    [][]string          `json:"cycles,omitempty"`
}

func printJSON(w io.Writer, projectDir string, result *deptrace.Result, cycles [][]string) error {
	report := jsonReport{Files: relAll(projectDir, result.Files)}

	for _, edge := range result.Edges {
		report.Edges = append(report.Edges, jsonEdge{
			From:   rel(projectDir, edge.FromFile),
			Line:   edge.FromLine,
			To:     rel(projectDir, edge.ToFile),
			Module: edge.Module,
		})
	}
	if len(result.Ledger) > 0 {
		report.Externals = make(map[string][]string, len(result.Ledger))
		for file, modules := range result.Ledger {
			report.Externals[rel(projectDir, file)] = modules
		}
	}
	for _, failure := range result.Errors {
		report.Errors = append(report.Errors, jsonError{File: rel(projectDir, failure.File), Message: failure.Message})
	}
	for _, skip := range result.Skipped {
		report.Skipped = append(report.Skipped, jsonSkipped{File: rel(projectDir, skip.File), Module: skip.Module, Line: skip.Line})
	}
	for _, cycle := range cycles {
		report.Cycles = append(report.Cycles, relAll(projectDir, cycle))
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func printText(w io.Writer, projectDir string, result *deptrace.Result, cycles [][]string) {
	fmt.Fprintf(w, "files (%d):\n", len(result.Files))
	for _, file := range result.Files {
		fmt.Fprintf(w, "  %s\n", rel(projectDir, file))
	}

	if len(result.Edges) > 0 {
		fmt.Fprintf(w, "\nimports (%d):\n", len(result.Edges))
		for _, edge := range result.Edges {
			fmt.Fprintf(w, "  %s:%d -> %s (%s)\n",
				rel(projectDir, edge.FromFile), edge.FromLine, rel(projectDir, edge.ToFile), edge.Module)
		}
	}

	if len(result.Ledger) > 0 {
		fmt.Fprintf(w, "\nexternal dependencies:\n")
		files := make([]string, 0, len(result.Ledger))
		for file := range result.Ledger {
			files = append(files, file)
		}
		sort.Strings(files)
		for _, file := range files {
			fmt.Fprintf(w, "  %s: %s\n", rel(projectDir, file), strings.Join(result.Ledger[file], ", "))
		}
	}

	if len(result.Skipped) > 0 {
		fmt.Fprintf(w, "\nskipped unused imports (%d):\n", len(result.Skipped))
		for _, skip := range result.Skipped {
			fmt.Fprintf(w, "  %s:%d %s\n", rel(projectDir, skip.File), skip.Line, skip.Module)
		}
	}

	if len(result.Errors) > 0 {
		fmt.Fprintf(w, "\nerrors (%d):\n", len(result.Errors))
		for _, failure := range result.Errors {
			fmt.Fprintf(w, "  %s: %s\n", rel(projectDir, failure.File), failure.Message)
		}
	}

	if len(cycles) > 0 {
		fmt.Fprintf(w, "\nimport cycles (%d):\n", len(cycles))
		for _, cycle := range cycles {
			fmt.Fprintf(w, "  %s\n", strings.Join(relAll(projectDir, cycle), " <-> "))
		}
	}
}

func rel(projectDir, path string) string {
	r, err := filepath.Rel(projectDir, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(r)
}

func relAll(projectDir string, paths []string) []string {
	out := make([]string, len(paths))
	for i, path := range paths {
		out[i] = rel(projectDir, path)
	}
	return out
}
