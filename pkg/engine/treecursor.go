package engine

import (
	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// TreeCursor walks a tree without re-deriving parent chains on every
// step. It is cheaper than Node navigation for full traversals and is
// not safe for concurrent use.
type TreeCursor struct {
	raw  *sitter.TreeCursor
	tree *Tree
}

// Walk starts a cursor at this node.
func (n Node) Walk() *TreeCursor {
	return &TreeCursor{raw: sitter.NewTreeCursor(n.raw), tree: n.tree}
}

// CurrentNode returns the node the cursor sits on.
func (c *TreeCursor) CurrentNode() Node {
	return Node{raw: c.raw.CurrentNode(), tree: c.tree}
}

// CurrentFieldName returns the field name of the current node relative to
// its parent, or "".
func (c *TreeCursor) CurrentFieldName() string {
	return c.raw.CurrentFieldName()
}

// GoToFirstChild moves to the first child, reporting whether one exists.
func (c *TreeCursor) GoToFirstChild() bool {
	return c.raw.GoToFirstChild()
}

// GoToNextSibling moves to the next sibling, reporting whether one
// exists.
func (c *TreeCursor) GoToNextSibling() bool {
	return c.raw.GoToNextSibling()
}

// GoToPreviousSibling moves to the previous sibling, reporting whether
// one exists.
func (c *TreeCursor) GoToPreviousSibling() bool {
	return c.raw.GotoPreviousSibling()
}

// GoToParent moves to the parent, reporting whether the cursor was not
// already at its starting node's root.
func (c *TreeCursor) GoToParent() bool {
	return c.raw.GoToParent()
}

// GoToFirstChildForIndex descends to the first child extending beyond the
// given character index, returning false when there is none.
func (c *TreeCursor) GoToFirstChildForIndex(index uint) bool {
	return c.raw.GoToFirstChildForByte(uint32(c.tree.conv.ByteOffset(index))) >= 0
}
