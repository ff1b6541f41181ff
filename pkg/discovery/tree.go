package discovery

import (
	"sort"
	"strings"
)

// treeNode is one directory or file in the rendered inventory tree.
type treeNode struct {
	name     string
	children map[string]*treeNode
	isDir    bool
}

// RenderTree renders the discovered files as an indented tree rooted at
// rootName. Only discovered files appear; excluded and unsupported paths
// were already filtered out. Directories sort before files, both
// case-insensitively alphabetical.
func RenderTree(rootName string, files []FileRecord) string {
	root := &treeNode{name: rootName, children: make(map[string]*treeNode), isDir: true}

	for _, f := range files {
		node := root
		parts := strings.Split(f.RelativePath, "/")
		for i, part := range parts {
			child, ok := node.children[part]
			if !ok {
				child = &treeNode{
					name:     part,
					children: make(map[string]*treeNode),
					isDir:    i < len(parts)-1,
				}
				node.children[part] = child
			}
			node = child
		}
	}

	var b strings.Builder
	b.WriteString(rootName + "/\n")
	renderChildren(&b, root, "")
	return b.String()
}

func renderChildren(b *strings.Builder, node *treeNode, prefix string) {
	children := make([]*treeNode, 0, len(node.children))
	for _, child := range node.children {
		children = append(children, child)
	}
	sort.Slice(children, func(i, j int) bool {
		if children[i].isDir != children[j].isDir {
			return children[i].isDir
		}
		return strings.ToLower(children[i].name) < strings.ToLower(children[j].name)
	})

	for i, child := range children {
		connector := "├── "
		extension := "│   "
		if i == len(children)-1 {
			connector = "└── "
			extension = "    "
		}

		if child.isDir {
			b.WriteString(prefix + connector + child.name + "/\n")
			renderChildren(b, child, prefix+extension)
		} else {
			b.WriteString(prefix + connector + child.name + "\n")
		}
	}
}
