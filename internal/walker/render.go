package walker

import "strings"

// Render draws the tree as the familiar box-drawing listing:
//
//	project
//	├── cmd
//	│   └── main.go
//	└── go.mod
func Render(root *Node) string {
	var b strings.Builder
	b.WriteString(root.Name)
	b.WriteByte('\n')
	renderChildren(&b, root, "")
	return b.String()
}

func renderChildren(b *strings.Builder, node *Node, prefix string) {
	for i, child := range node.Children {
		last := i == len(node.Children)-1

		connector, childPrefix := "├── ", prefix+"│   "
		if last {
			connector, childPrefix = "└── ", prefix+"    "
		}

		b.WriteString(prefix)
		b.WriteString(connector)
		b.WriteString(child.Name)
		b.WriteByte('\n')

		if child.Dir {
			renderChildren(b, child, childPrefix)
		}
	}
}
