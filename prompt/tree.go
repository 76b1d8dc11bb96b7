package prompt

import (
	"sort"
	"strings"
)

// treeNode is one directory or file in the rendered source tree.
type treeNode struct {
	children map[string]*treeNode
	isFile   bool
}

// BuildSourceTree renders a text tree of the given slash-separated relative
// paths, rooted at rootName. Entries sort case-insensitively per level.
func BuildSourceTree(rootName string, relPaths []string) string {
	if len(relPaths) == 0 {
		return ""
	}

	root := &treeNode{children: make(map[string]*treeNode)}
	for _, relPath := range relPaths {
		node := root
		parts := strings.Split(relPath, "/")
		for i, part := range parts {
			child, ok := node.children[part]
			if !ok {
				child = &treeNode{children: make(map[string]*treeNode)}
				node.children[part] = child
			}
			if i == len(parts)-1 {
				child.isFile = true
			}
			node = child
		}
	}

	lines := []string{rootName + "/"}
	lines = append(lines, renderTreeLevel(root, "")...)
	return strings.Join(lines, "\n")
}

func renderTreeLevel(node *treeNode, indent string) []string {
	names := make([]string, 0, len(node.children))
	for name := range node.children {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})

	var lines []string
	for i, name := range names {
		last := i == len(names)-1
		connector := "├── "
		childIndent := indent + "│   "
		if last {
			connector = "└── "
			childIndent = indent + "    "
		}
		lines = append(lines, indent+connector+name)

		child := node.children[name]
		if len(child.children) > 0 {
			lines = append(lines, renderTreeLevel(child, childIndent)...)
		}
	}
	return lines
}
