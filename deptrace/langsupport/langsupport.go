package langsupport

// ImportDeclaration is one import statement extracted from a source file.
// Declarations are immutable once produced and belong to the file that
// declared them.
type ImportDeclaration struct {
	// Module is the dotted module name. It may be empty for pure relative
	// imports such as "from . import x".
	Module string
	// Line is the 1-based source line of the statement.
	Line int
	// Level is the relative import level: 0 for absolute imports, 1 for the
	// current package, 2 for the parent package, and so on.
	Level int
	// Names are the local names bound by this import, in source order.
	Names []string
	// Wildcard marks "from X import *" style imports.
	Wildcard bool
}

// UsageReport captures which local names a file references outside its own
// import statements. Wildcard imports are tracked separately because their
// bound names cannot be enumerated without executing the module.
type UsageReport struct {
	Referenced      map[string]bool
	WildcardModules map[string]bool
}

// References reports whether the given local name appears as a bare name
// reference, an attribute-access base, or inside a string literal.
func (r UsageReport) References(name string) bool {
	return r.Referenced[name]
}

// Extractor parses one file's text into its import declarations. Extraction
// is pure: same text yields the same declarations, with no filesystem or
// network access.
type Extractor interface {
	ExtractImports(src []byte) ([]ImportDeclaration, error)
}

// UsageAnalyzer scans one file's syntax tree for name references. It never
// inspects other files and carries no cross-file state.
type UsageAnalyzer interface {
	AnalyzeUsage(src []byte) (UsageReport, error)
}

// Module describes pluggable language support for dependency tracing.
type Module interface {
	Name() string
	Extensions() []string
	NewExtractor(parsers *Parsers) Extractor
	NewUsageAnalyzer(parsers *Parsers) UsageAnalyzer
}
