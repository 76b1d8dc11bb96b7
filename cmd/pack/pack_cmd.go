// Package pack implements the pack subcommand: the full prompt assembly
// pipeline from discovery to delivered output.
package pack

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/promptpack/promptpack/config"
	"github.com/promptpack/promptpack/discovery"
	"github.com/promptpack/promptpack/output"
	"github.com/promptpack/promptpack/pipeline"
)

type packOptions struct {
	projectDir string
	profile    string
	quiet      bool

	stdin        bool
	nulSeparated bool

	includes         []string
	excludes         []string
	includeFromFiles []string
	excludeFromFiles []string
	includePriority  bool
	noIgnore         bool
	hidden           bool
	followSymlinks   bool
	grep             string

	trace             bool
	traceFilterUnused bool
	showDeps          bool
	externalPackages  []string

	chunkStrategy string
	lineNumbers   bool
	noCodeblock   bool
	absolutePaths bool

	templatePath string
	format       string
	userVars     map[string]string

	diff         bool
	diffBranches []string
	logBranches  []string

	encoding    string
	tokenFormat string

	outputFile string
	clipboard  bool
	sortMethod string
}

// NewCommand returns a new pack command instance.
func NewCommand() *cobra.Command {
	opts := &packOptions{}

	cmd := &cobra.Command{
		Use:   "pack [paths...]",
		Short: "Assemble a prompt from files and their dependencies",
		Long: `Assemble a prompt from the given files and directories (default: the
current directory). Filters, chunking, templating, and output behavior come
from config files and flags; --trace expands the inputs to their Python
import dependency closure first.

Example usage:
  promptpack pack
  promptpack pack src/ -i '*.py' -o prompt.md
  promptpack pack main.py --trace --show-deps
  find . -name '*.py' -print0 | promptpack pack --stdin -0
  promptpack pack --profile review --clipboard`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPack(cmd, args, opts)
		},
	}

	registerFlags(cmd, opts)
	return cmd
}

func registerFlags(cmd *cobra.Command, opts *packOptions) {
	flags := cmd.Flags()

	flags.StringVarP(&opts.projectDir, "dir", "C", ".", "Project directory")
	flags.StringVar(&opts.profile, "profile", "", "Named config profile to apply")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress the run summary")

	flags.BoolVar(&opts.stdin, "stdin", false, "Read input paths from stdin")
	flags.BoolVarP(&opts.nulSeparated, "null", "0", false, "Stdin paths are NUL-separated (find -print0)")

	flags.StringSliceVarP(&opts.includes, "include", "i", nil, "Include glob patterns")
	flags.StringSliceVarP(&opts.excludes, "exclude", "e", nil, "Exclude glob patterns")
	flags.StringSliceVar(&opts.includeFromFiles, "include-from-file", nil, "Files with include patterns, one per line")
	flags.StringSliceVar(&opts.excludeFromFiles, "exclude-from-file", nil, "Files with exclude patterns, one per line")
	flags.BoolVar(&opts.includePriority, "include-priority", false, "Include patterns win over exclude patterns")
	flags.BoolVar(&opts.noIgnore, "no-ignore", false, "Ignore .gitignore files")
	flags.BoolVar(&opts.hidden, "hidden", false, "Include hidden files and directories")
	flags.BoolVar(&opts.followSymlinks, "follow-symlinks", false, "Follow directory symlinks during discovery")
	flags.StringVar(&opts.grep, "grep", "", "Keep only files whose content matches this regexp")

	flags.BoolVar(&opts.trace, "trace", false, "Expand inputs to their import dependency closure")
	flags.BoolVar(&opts.traceFilterUnused, "trace-filter-unused", false, "Skip imports whose names are never used")
	flags.BoolVar(&opts.showDeps, "show-deps", false, "Annotate files with their external dependencies")
	flags.StringSliceVar(&opts.externalPackages, "external-package", nil, "Extra package names to treat as external")

	flags.StringVar(&opts.chunkStrategy, "chunk-strategy", "", "Content strategy: file or structure")
	flags.BoolVarP(&opts.lineNumbers, "line-numbers", "n", false, "Prefix content lines with line numbers")
	flags.BoolVar(&opts.noCodeblock, "no-codeblock", false, "Do not wrap content in code fences")
	flags.BoolVar(&opts.absolutePaths, "absolute-paths", false, "Show the absolute project path in the header")

	flags.StringVarP(&opts.templatePath, "template", "t", "", "Custom template file")
	flags.StringVarP(&opts.format, "format", "f", "", "Output format: markdown or xml")
	flags.StringToStringVar(&opts.userVars, "var", nil, "Template variables (key=value)")

	flags.BoolVarP(&opts.diff, "diff", "d", false, "Include the staged git diff")
	flags.StringSliceVar(&opts.diffBranches, "diff-branches", nil, "Include the diff between two branches (base,compare)")
	flags.StringSliceVar(&opts.logBranches, "log-branches", nil, "Include the log between two branches (base,compare)")

	flags.StringVar(&opts.encoding, "encoding", "", "Tokenizer encoding (cl100k_base, o200k_base)")
	flags.StringVar(&opts.tokenFormat, "tokens", "", "Show token count: human or raw")

	flags.StringVarP(&opts.outputFile, "output", "o", "", "Write the prompt to this file")
	flags.BoolVarP(&opts.clipboard, "clipboard", "b", false, "Copy the prompt to the clipboard")
	flags.StringVar(&opts.sortMethod, "sort", "", "Element order: name_asc, name_desc, date_asc, date_desc")
}

func runPack(cmd *cobra.Command, args []string, opts *packOptions) error {
	settings, err := loadSettings(cmd, args, opts)
	if err != nil {
		return err
	}

	result, err := pipeline.Run(settings)
	if err != nil {
		return err
	}

	if err := output.Write(result.Prompt, settings.OutputFile, settings.Clipboard); err != nil {
		return err
	}

	if !opts.quiet {
		output.PrintSummary(os.Stderr, output.Summary{
			Files:       result.Files,
			Elements:    result.Elements,
			PromptBytes: len(result.Prompt),
			TokenCount:  result.TokenCount,
			TokenFormat: settings.TokenFormat,
			Encoding:    settings.Encoding,
			OutputFile:  settings.OutputFile,
			Clipboard:   settings.Clipboard,
		})
	}
	return nil
}

// loadSettings layers config files, the chosen profile, and explicit flags,
// then resolves the input paths.
func loadSettings(cmd *cobra.Command, args []string, opts *packOptions) (config.Settings, error) {
	projectDir, err := filepath.Abs(opts.projectDir)
	if err != nil {
		return config.Settings{}, fmt.Errorf("failed to resolve project directory: %w", err)
	}

	settings, err := config.Load(projectDir, opts.profile)
	if err != nil {
		return config.Settings{}, err
	}

	applyFlags(cmd, opts, &settings)

	settings.ReadFromStdin = opts.stdin
	settings.NulSeparated = opts.nulSeparated

	switch {
	case opts.stdin:
		paths, err := discovery.ReadSeedPaths(os.Stdin, opts.nulSeparated)
		if err != nil {
			return config.Settings{}, err
		}
		settings.InputPaths = paths
	case len(args) > 0:
		settings.InputPaths = args
	}

	if err := settings.Validate(); err != nil {
		return config.Settings{}, err
	}
	return settings, nil
}

// applyFlags overrides loaded settings with every flag the user set
// explicitly. Unset flags leave config file values alone.
func applyFlags(cmd *cobra.Command, opts *packOptions, settings *config.Settings) {
	flags := cmd.Flags()

	if flags.Changed("include") {
		settings.IncludePatterns = opts.includes
	}
	if flags.Changed("exclude") {
		settings.ExcludePatterns = opts.excludes
	}
	if flags.Changed("include-from-file") {
		settings.IncludeFromFiles = opts.includeFromFiles
	}
	if flags.Changed("exclude-from-file") {
		settings.ExcludeFromFiles = opts.excludeFromFiles
	}
	if flags.Changed("include-priority") {
		settings.IncludePriority = opts.includePriority
	}
	if flags.Changed("no-ignore") {
		settings.NoIgnore = opts.noIgnore
	}
	if flags.Changed("hidden") {
		settings.Hidden = opts.hidden
	}
	if flags.Changed("follow-symlinks") {
		settings.FollowSymlinks = opts.followSymlinks
	}
	if flags.Changed("grep") {
		settings.Grep = opts.grep
	}

	if flags.Changed("trace") {
		settings.Trace = opts.trace
	}
	if flags.Changed("trace-filter-unused") {
		settings.TraceFilterUnused = opts.traceFilterUnused
	}
	if flags.Changed("show-deps") {
		settings.ShowDeps = opts.showDeps
	}
	if flags.Changed("external-package") {
		settings.ExternalPackages = opts.externalPackages
	}

	if flags.Changed("chunk-strategy") {
		settings.ChunkStrategy = opts.chunkStrategy
	}
	if flags.Changed("line-numbers") {
		settings.LineNumbers = opts.lineNumbers
	}
	if flags.Changed("no-codeblock") {
		settings.NoCodeblock = opts.noCodeblock
	}
	if flags.Changed("absolute-paths") {
		settings.AbsolutePaths = opts.absolutePaths
	}

	if flags.Changed("template") {
		settings.TemplatePath = opts.templatePath
	}
	if flags.Changed("format") {
		settings.OutputFormat = opts.format
	}
	if flags.Changed("var") {
		settings.UserVars = opts.userVars
	}

	if flags.Changed("diff") {
		settings.Diff = opts.diff
	}
	if flags.Changed("diff-branches") {
		settings.DiffBranches = opts.diffBranches
	}
	if flags.Changed("log-branches") {
		settings.LogBranches = opts.logBranches
	}

	if flags.Changed("encoding") {
		settings.Encoding = opts.encoding
	}
	if flags.Changed("tokens") {
		settings.TokenFormat = opts.tokenFormat
	}

	if flags.Changed("output") {
		settings.OutputFile = opts.outputFile
	}
	if flags.Changed("clipboard") {
		settings.Clipboard = opts.clipboard
	}
	if flags.Changed("sort") {
		settings.SortMethod = opts.sortMethod
	}
}
