// Package config defines the settings that drive prompt assembly and their
// loading order: built-in defaults, then the user config file, then the
// project config file, then a named profile, then command-line flags.
package config

import (
	"fmt"
	"path/filepath"
)

// Sort orders for content elements.
const (
	SortNameAsc  = "name_asc"
	SortNameDesc = "name_desc"
	SortDateAsc  = "date_asc"
	SortDateDesc = "date_desc"
)

// Output formats for the rendered prompt.
const (
	FormatMarkdown = "markdown"
	FormatXML      = "xml"
)

// Token count display formats.
const (
	TokenFormatHuman = "human"
	TokenFormatRaw   = "raw"
)

// Chunk strategies.
const (
	ChunkWholeFile = "file"
	ChunkStructure = "structure"
)

// DefaultEncoding is the tokenizer encoding used when none is configured.
const DefaultEncoding = "cl100k_base"

// Settings holds every knob of the prompt assembly pipeline.
type Settings struct {
	// Input sources
	InputPaths    []string `mapstructure:"input_paths"`
	ReadFromStdin bool     `mapstructure:"-"`
	NulSeparated  bool     `mapstructure:"-"`

	// Filtering
	IncludePatterns  []string `mapstructure:"include"`
	ExcludePatterns  []string `mapstructure:"exclude"`
	IncludeFromFiles []string `mapstructure:"include_from_files"`
	ExcludeFromFiles []string `mapstructure:"exclude_from_files"`
	IncludePriority  bool     `mapstructure:"include_priority"`
	NoIgnore         bool     `mapstructure:"no_ignore"`
	Hidden           bool     `mapstructure:"hidden"`
	FollowSymlinks   bool     `mapstructure:"follow_symlinks"`
	Grep             string   `mapstructure:"grep"`

	// Dependency tracing
	Trace             bool     `mapstructure:"trace"`
	TraceFilterUnused bool     `mapstructure:"trace_filter_unused"`
	ShowDeps          bool     `mapstructure:"show_deps"`
	ExternalPackages  []string `mapstructure:"external_packages"`

	// Chunking and content formatting
	ChunkStrategy string `mapstructure:"chunk_strategy"`
	LineNumbers   bool   `mapstructure:"line_numbers"`
	NoCodeblock   bool   `mapstructure:"no_codeblock"`
	AbsolutePaths bool   `mapstructure:"absolute_paths"`

	// Templating
	TemplatePath string            `mapstructure:"template"`
	OutputFormat string            `mapstructure:"output_format"`
	UserVars     map[string]string `mapstructure:"user_vars"`

	// Git integration
	Diff         bool     `mapstructure:"diff"`
	DiffBranches []string `mapstructure:"diff_branches"`
	LogBranches  []string `mapstructure:"log_branches"`

	// Token counting
	Encoding    string `mapstructure:"encoding"`
	TokenFormat string `mapstructure:"token_format"`

	// Output destinations
	OutputFile string `mapstructure:"output_file"`
	Clipboard  bool   `mapstructure:"clipboard"`
	SortMethod string `mapstructure:"sort"`

	// BaseDir is the project root all relative paths are resolved against.
	// Set during loading, never read from config files.
	BaseDir string `mapstructure:"-"`
}

// Default returns the settings used when nothing is configured.
func Default() Settings {
	return Settings{
		InputPaths:    []string{"."},
		ChunkStrategy: ChunkWholeFile,
		OutputFormat:  FormatMarkdown,
		Encoding:      DefaultEncoding,
		SortMethod:    SortNameAsc,
	}
}

// Validate checks enum-valued fields and resolves BaseDir to an absolute
// path.
func (s *Settings) Validate() error {
	switch s.SortMethod {
	case SortNameAsc, SortNameDesc, SortDateAsc, SortDateDesc:
	default:
		return fmt.Errorf("invalid sort method %q", s.SortMethod)
	}

	switch s.OutputFormat {
	case FormatMarkdown, FormatXML:
	default:
		return fmt.Errorf("invalid output format %q", s.OutputFormat)
	}

	switch s.ChunkStrategy {
	case ChunkWholeFile, ChunkStructure:
	default:
		return fmt.Errorf("invalid chunk strategy %q", s.ChunkStrategy)
	}

	if s.TokenFormat != "" && s.TokenFormat != TokenFormatHuman && s.TokenFormat != TokenFormatRaw {
		return fmt.Errorf("invalid token count format %q", s.TokenFormat)
	}

	if len(s.DiffBranches) != 0 && len(s.DiffBranches) != 2 {
		return fmt.Errorf("diff branches need exactly two names, got %d", len(s.DiffBranches))
	}
	if len(s.LogBranches) != 0 && len(s.LogBranches) != 2 {
		return fmt.Errorf("log branches need exactly two names, got %d", len(s.LogBranches))
	}

	abs, err := filepath.Abs(s.BaseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base directory %s: %w", s.BaseDir, err)
	}
	s.BaseDir = abs
	return nil
}
