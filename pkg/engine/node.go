package engine

import (
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/treeq/pkg/query"
)

// Node is a handle into a Tree, translating the binding's byte-based
// positions to character indices on the way out. The zero Node is null.
type Node struct {
	raw  sitter.Node
	tree *Tree
}

// IsNull reports whether the handle references no node.
func (n Node) IsNull() bool {
	return n.tree == nil || n.raw.IsNull()
}

// Kind returns the node's type name.
func (n Node) Kind() string {
	return n.raw.Type()
}

// GrammarKind returns the grammar-level type name, which differs from
// Kind for aliased nodes.
func (n Node) GrammarKind() string {
	return n.raw.GrammarType()
}

// StartIndex returns the character index where the node starts.
func (n Node) StartIndex() uint {
	return n.tree.conv.RuneIndex(n.raw.StartByte())
}

// EndIndex returns the character index just past the node.
func (n Node) EndIndex() uint {
	return n.tree.conv.RuneIndex(n.raw.EndByte())
}

// StartPosition returns the node's starting row and character column.
func (n Node) StartPosition() query.Point {
	return query.Point{
		Row:    n.raw.StartPoint().Row,
		Column: n.tree.conv.Column(n.raw.StartByte()),
	}
}

// EndPosition returns the node's ending row and character column.
func (n Node) EndPosition() query.Point {
	return query.Point{
		Row:    n.raw.EndPoint().Row,
		Column: n.tree.conv.Column(n.raw.EndByte()),
	}
}

// FieldName returns the field name of this node relative to its parent,
// or "" when it is not a field child. The binding only exposes field
// names from the parent side, so this scans the parent's children.
func (n Node) FieldName() string {
	parent := n.raw.Parent()
	if parent.IsNull() {
		return ""
	}

	for i := range parent.ChildCount() {
		if parent.Child(i) == n.raw {
			return parent.FieldNameForChild(int(i))
		}
	}

	return ""
}

// IsError reports whether the node is a parse error.
func (n Node) IsError() bool {
	return n.raw.IsError()
}

// IsMissing reports whether the node was inserted by error recovery.
func (n Node) IsMissing() bool {
	return n.raw.IsMissing()
}

// IsExtra reports whether the node is an extra (such as a comment).
func (n Node) IsExtra() bool {
	return n.raw.IsExtra()
}

// IsNamed reports whether the node is named rather than anonymous syntax.
func (n Node) IsNamed() bool {
	return n.raw.IsNamed()
}

// Text returns the node's source text.
func (n Node) Text() string {
	return n.raw.Content(n.tree.source)
}

// Equal reports whether both handles reference the same node in the same
// tree.
func (n Node) Equal(other query.Node) bool {
	otherNode, ok := other.(Node)

	return ok && otherNode.tree == n.tree && otherNode.raw == n.raw
}

// Parent returns the node's parent, or a null node for the root.
func (n Node) Parent() Node {
	return Node{raw: n.raw.Parent(), tree: n.tree}
}

// ChildCount returns the number of children, named and anonymous.
func (n Node) ChildCount() uint {
	return uint(n.raw.ChildCount())
}

// Child returns the child at the given index.
func (n Node) Child(idx uint) Node {
	return Node{raw: n.raw.Child(uint32(idx)), tree: n.tree}
}

// NamedChildCount returns the number of named children.
func (n Node) NamedChildCount() uint {
	return uint(n.raw.NamedChildCount())
}

// NamedChild returns the named child at the given index.
func (n Node) NamedChild(idx uint) Node {
	return Node{raw: n.raw.NamedChild(uint32(idx)), tree: n.tree}
}

// ChildByFieldName returns the first child under the given field, or a
// null node.
func (n Node) ChildByFieldName(name string) Node {
	return Node{raw: n.raw.ChildByFieldName(name), tree: n.tree}
}
