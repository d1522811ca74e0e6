package engine

import (
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/treeq/pkg/query"
	"github.com/Sumatoshi-tech/treeq/pkg/runeidx"
)

// Tree is a parsed syntax tree together with the source it was parsed
// from and that source's byte-to-character converter. Nodes handed out by
// a tree borrow all three and must not outlive it.
type Tree struct {
	tree     *sitter.Tree
	source   []byte
	conv     *runeidx.Converter
	language Language
}

func newTree(tree *sitter.Tree, source []byte, lang Language) *Tree {
	return &Tree{
		tree:     tree,
		source:   source,
		conv:     runeidx.New(source),
		language: lang,
	}
}

// RootNode returns the root of the tree.
func (t *Tree) RootNode() Node {
	return Node{raw: t.tree.RootNode(), tree: t}
}

// Source returns the source text this tree was parsed from.
func (t *Tree) Source() []byte {
	return t.source
}

// Language returns the grammar the tree was parsed with.
func (t *Tree) Language() Language {
	return t.language
}

// Close releases the native tree. The tree and every node derived from it
// are invalid afterwards.
func (t *Tree) Close() {
	t.tree.Close()
}

// Edit is one source replacement, expressed in character indices relative
// to the text the tree was last parsed from. NewEndIndex refers to the
// post-edit text and may exceed the old source length.
type Edit struct {
	StartIndex  uint
	OldEndIndex uint
	NewEndIndex uint
	StartPoint  query.Point
	OldEndPoint query.Point
	NewEndPoint query.Point
}

// Edit tells the tree about a source change so a subsequent incremental
// reparse can reuse unchanged subtrees. StartIndex and OldEndIndex are
// converted against the tree's current source; NewEndIndex points into
// newSource, the text the caller is about to reparse.
func (t *Tree) Edit(edit Edit, newSource []byte) {
	newConv := runeidx.New(newSource)

	t.tree.Edit(sitter.InputEdit{
		StartIndex:  t.conv.ByteOffset(edit.StartIndex),
		OldEndIndex: t.conv.ByteOffset(edit.OldEndIndex),
		NewEndIndex: newConv.ByteOffset(edit.NewEndIndex),
		StartPoint:  sitterPoint(t.conv, edit.StartPoint),
		OldEndPoint: sitterPoint(t.conv, edit.OldEndPoint),
		NewEndPoint: sitterPoint(newConv, edit.NewEndPoint),
	})
}

// sitterPoint converts a character-column point into the byte-column
// point the binding expects.
func sitterPoint(conv *runeidx.Converter, p query.Point) sitter.Point {
	return sitter.Point{Row: p.Row, Column: conv.ByteColumn(p.Row, p.Column)}
}
