package python

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/promptpack/promptpack/deptrace/langsupport"
)

// Extractor extracts import declarations from Python source using
// tree-sitter. It finds imports at any nesting depth, including lazy imports
// inside function bodies.
type Extractor struct {
	parsers *langsupport.Parsers
}

// NewExtractor creates a Python import extractor backed by the given parser
// registry.
func NewExtractor(parsers *langsupport.Parsers) *Extractor {
	return &Extractor{parsers: parsers}
}

// ExtractImports parses Python source and returns its import declarations in
// source order. A file that fails to parse yields no declarations and a non-nil
// error; the caller records the failure and treats the file as a dead end.
func (e *Extractor) ExtractImports(src []byte) ([]langsupport.ImportDeclaration, error) {
	parser := e.parsers.Acquire(languageName, python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Python source: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("syntax error in Python source")
	}

	return collectImports(root, src), nil
}

// collectImports walks the syntax tree and extracts declarations from every
// import statement it finds, regardless of nesting.
func collectImports(root *sitter.Node, src []byte) []langsupport.ImportDeclaration {
	var decls []langsupport.ImportDeclaration

	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}

		switch n.Type() {
		case "import_statement":
			decls = append(decls, importStatementDecls(n, src)...)
		case "import_from_statement", "future_import_statement":
			if decl, ok := importFromDecl(n, src); ok {
				decls = append(decls, decl)
			}
		}

		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}

	walk(root)
	return decls
}

// importStatementDecls handles "import a.b, c as d". Each listed module is its
// own declaration; the bound name is the module's top-level segment, or the
// alias when one is given.
func importStatementDecls(n *sitter.Node, src []byte) []langsupport.ImportDeclaration {
	line := int(n.StartPoint().Row) + 1
	var decls []langsupport.ImportDeclaration

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "dotted_name":
			module := strings.TrimSpace(child.Content(src))
			if module == "" {
				continue
			}
			decls = append(decls, langsupport.ImportDeclaration{
				Module: module,
				Line:   line,
				Names:  []string{topLevelSegment(module)},
			})
		case "aliased_import":
			module, alias := aliasedImportParts(child, src)
			if module == "" {
				continue
			}
			bound := alias
			if bound == "" {
				bound = topLevelSegment(module)
			}
			decls = append(decls, langsupport.ImportDeclaration{
				Module: module,
				Line:   line,
				Names:  []string{bound},
			})
		}
	}

	return decls
}

// importFromDecl handles "from X import a, b as c" and "from . import x".
func importFromDecl(n *sitter.Node, src []byte) (langsupport.ImportDeclaration, bool) {
	decl := langsupport.ImportDeclaration{Line: int(n.StartPoint().Row) + 1}

	moduleNode := n.ChildByFieldName("module_name")
	if moduleNode == nil && n.Type() == "future_import_statement" {
		decl.Module = "__future__"
	}

	if moduleNode != nil {
		switch moduleNode.Type() {
		case "relative_import":
			decl.Level, decl.Module = relativeImportParts(moduleNode, src)
		default:
			decl.Module = strings.TrimSpace(moduleNode.Content(src))
		}
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if moduleNode != nil && child.StartByte() == moduleNode.StartByte() {
			continue
		}

		switch child.Type() {
		case "wildcard_import":
			decl.Wildcard = true
		case "dotted_name", "identifier":
			name := strings.TrimSpace(child.Content(src))
			if name != "" {
				decl.Names = append(decl.Names, name)
			}
		case "aliased_import":
			_, alias := aliasedImportParts(child, src)
			if alias != "" {
				decl.Names = append(decl.Names, alias)
			}
		}
	}

	if decl.Module == "" && decl.Level == 0 && !decl.Wildcard && len(decl.Names) == 0 {
		return decl, false
	}

	return decl, true
}

// relativeImportParts splits a relative_import node into its dot count and
// trailing module name. "from .. import x" yields (2, ""); "from ..utils
// import x" yields (2, "utils").
func relativeImportParts(n *sitter.Node, src []byte) (int, string) {
	level := 0
	module := ""

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "import_prefix":
			level = strings.Count(child.Content(src), ".")
		case "dotted_name":
			module = strings.TrimSpace(child.Content(src))
		}
	}

	return level, module
}

// aliasedImportParts returns the module path and alias of an aliased_import
// node ("x as y").
func aliasedImportParts(n *sitter.Node, src []byte) (module, alias string) {
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		module = strings.TrimSpace(nameNode.Content(src))
	}
	if aliasNode := n.ChildByFieldName("alias"); aliasNode != nil {
		alias = strings.TrimSpace(aliasNode.Content(src))
	}
	return module, alias
}

func topLevelSegment(module string) string {
	if idx := strings.Index(module, "."); idx >= 0 {
		return module[:idx]
	}
	return module
}
