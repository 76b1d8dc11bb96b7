package chunk

import (
	"context"
	"fmt"
	"strings"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// pythonElements splits a Python file into function and class elements.
// Methods stay inside their class element. Module-level code outside any
// definition is not emitted; the whole-file strategy covers that need.
func (c *Chunker) pythonElements(path, relPath string, content []byte, modTime time.Time) ([]Element, error) {
	parser := c.parsers.Acquire("python", python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("syntax error in %s", path)
	}

	modulePath := pythonModulePath(relPath)
	var elements []Element

	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)

		// Decorators belong to the element they decorate, so a decorated
		// definition keeps the decorator lines in its span.
		span := node
		if node.Type() == "decorated_definition" {
			def := node.ChildByFieldName("definition")
			if def == nil {
				continue
			}
			node = def
		}

		var elementType string
		switch node.Type() {
		case "function_definition":
			elementType = TypeFunction
		case "class_definition":
			elementType = TypeClass
		default:
			continue
		}

		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := nameNode.Content(content)

		elements = append(elements, Element{
			FilePath:      path,
			RelPath:       relPath,
			Type:          elementType,
			Name:          name,
			QualifiedName: qualifiedName(modulePath, name),
			Language:      "python",
			StartLine:     int(span.StartPoint().Row) + 1,
			EndLine:       int(span.EndPoint().Row) + 1,
			Docstring:     pythonDocstring(node, content),
			Content:       span.Content(content),
			ModTime:       modTime,
		})
	}

	return elements, nil
}

// pythonDocstring returns the docstring of a function or class definition,
// quotes stripped, or the empty string.
func pythonDocstring(def *sitter.Node, content []byte) string {
	body := def.ChildByFieldName("body")
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}

	first := body.NamedChild(0)
	if first.Type() != "expression_statement" || first.NamedChildCount() == 0 {
		return ""
	}

	str := first.NamedChild(0)
	if str.Type() != "string" {
		return ""
	}

	return strings.TrimSpace(stripStringQuotes(str.Content(content)))
}

// stripStringQuotes removes Python string prefixes and the surrounding quote
// characters from a string literal's source text.
func stripStringQuotes(literal string) string {
	s := strings.TrimLeft(literal, "rRbBuUfF")
	for _, quote := range []string{`"""`, "'''", `"`, "'"} {
		if strings.HasPrefix(s, quote) && strings.HasSuffix(s, quote) && len(s) >= 2*len(quote) {
			return s[len(quote) : len(s)-len(quote)]
		}
	}
	return s
}

// pythonModulePath converts a relative file path into a dotted module path.
// "pkg/sub/mod.py" becomes "pkg.sub.mod"; a package's __init__.py maps to
// the package itself.
func pythonModulePath(relPath string) string {
	p := strings.TrimSuffix(relPath, ".py")
	parts := strings.Split(p, "/")
	if len(parts) > 0 && parts[len(parts)-1] == "__init__" {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, ".")
}

func qualifiedName(modulePath, name string) string {
	if modulePath == "" {
		return name
	}
	return modulePath + "." + name
}
