package python

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/promptpack/promptpack/deptrace/langsupport"
)

// identifierPattern matches name-like tokens inside string literals. Any
// string literal is treated as a potential forward-reference type annotation,
// so every name-like token in it counts as a reference. This deliberately
// over-approximates: pruning an import that is actually used would silently
// drop required files from the traversal result.
var identifierPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// UsageAnalyzer determines which imported names a Python file actually
// references. It only ever looks at the file under analysis.
type UsageAnalyzer struct {
	parsers *langsupport.Parsers
}

// NewUsageAnalyzer creates a Python symbol usage analyzer backed by the given
// parser registry.
func NewUsageAnalyzer(parsers *langsupport.Parsers) *UsageAnalyzer {
	return &UsageAnalyzer{parsers: parsers}
}

// AnalyzeUsage parses Python source and reports every name referenced outside
// import statements, plus the modules pulled in through wildcard imports.
func (a *UsageAnalyzer) AnalyzeUsage(src []byte) (langsupport.UsageReport, error) {
	report := langsupport.UsageReport{
		Referenced:      make(map[string]bool),
		WildcardModules: make(map[string]bool),
	}

	parser := a.parsers.Acquire(languageName, python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return report, fmt.Errorf("failed to parse Python source: %w", err)
	}
	defer tree.Close()

	collectReferences(tree.RootNode(), src, report)
	return report, nil
}

// collectReferences walks the tree gathering referenced names. Identifiers
// inside import statements are binding sites, not references, so import
// subtrees are only inspected for wildcard modules.
func collectReferences(root *sitter.Node, src []byte, report langsupport.UsageReport) {
	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}

		switch n.Type() {
		case "import_statement", "future_import_statement":
			return
		case "import_from_statement":
			if module, ok := wildcardModule(n, src); ok {
				report.WildcardModules[module] = true
			}
			return
		case "identifier":
			report.Referenced[n.Content(src)] = true
			return
		case "attribute":
			// Only the access base is a reference; "attr" in "name.attr"
			// resolves inside the object, not in this file's namespace.
			walk(n.ChildByFieldName("object"))
			return
		case "string":
			for _, name := range identifierPattern.FindAllString(n.Content(src), -1) {
				report.Referenced[name] = true
			}
			return
		}

		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}

	walk(root)
}

// wildcardModule returns the source module of a "from X import *" statement.
func wildcardModule(n *sitter.Node, src []byte) (string, bool) {
	wildcard := false
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if n.NamedChild(i).Type() == "wildcard_import" {
			wildcard = true
			break
		}
	}
	if !wildcard {
		return "", false
	}

	moduleNode := n.ChildByFieldName("module_name")
	if moduleNode == nil {
		return "", false
	}
	return strings.TrimSpace(moduleNode.Content(src)), true
}
