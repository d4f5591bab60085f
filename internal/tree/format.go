package tree

import (
	"path/filepath"
	"strings"

	"github.com/temirov/repoctx/internal/types"
)

const (
	branchConnector = "├── "
	lastConnector   = "└── "
	branchPadding   = "│   "
	lastPadding     = "    "
	directoryMarker = "/"
	lineTerminator  = "\n"
)

// Format renders a tree as text: the root name on the first line, then one
// connector-prefixed line per node. Directory names end with a slash.
func Format(rootNode *types.TreeNode) string {
	if rootNode == nil {
		return ""
	}
	var builder strings.Builder
	builder.WriteString(nodeLabel(rootNode))
	builder.WriteString(lineTerminator)
	formatChildren(&builder, rootNode.Children, "")
	return builder.String()
}

func formatChildren(builder *strings.Builder, children []*types.TreeNode, prefix string) {
	for index, childNode := range children {
		connector := branchConnector
		childPrefix := prefix + branchPadding
		if index == len(children)-1 {
			connector = lastConnector
			childPrefix = prefix + lastPadding
		}
		builder.WriteString(prefix)
		builder.WriteString(connector)
		builder.WriteString(nodeLabel(childNode))
		builder.WriteString(lineTerminator)
		if childNode.IsDirectory && len(childNode.Children) > 0 {
			formatChildren(builder, childNode.Children, childPrefix)
		}
	}
}

// nodeLabel marks directories with a trailing slash unless the name already
// ends in a separator, as the filesystem root does.
func nodeLabel(node *types.TreeNode) string {
	if node.IsDirectory && !strings.HasSuffix(node.Name, directoryMarker) && !strings.HasSuffix(node.Name, string(filepath.Separator)) {
		return node.Name + directoryMarker
	}
	return node.Name
}
