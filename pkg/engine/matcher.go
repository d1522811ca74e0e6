package engine

import (
	"fmt"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/treeq/pkg/query"
)

// Matcher starts raw query executions through the binding's query
// cursor. Each execution allocates a fresh cursor, so one Matcher may
// serve any number of query.Cursor instances.
type Matcher struct{}

// NewMatcher creates a matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Exec runs a compiled query over a node and returns the raw candidate
// stream. Both arguments must have come from this package: the native
// handle from CompileQuery and the node from one of its trees.
func (m *Matcher) Exec(native query.Native, node query.Node, opts query.ExecOptions) query.CandidateStream {
	nq, ok := native.(*nativeQuery)
	if !ok {
		panic(fmt.Sprintf("engine: foreign native query %T", native))
	}

	engineNode, ok := node.(Node)
	if !ok {
		panic(fmt.Sprintf("engine: foreign node %T", node))
	}

	cursor := sitter.NewQueryCursor()

	if opts.MatchLimit > 0 {
		cursor.SetMatchLimit(opts.MatchLimit)
	}

	conv := engineNode.tree.conv

	if opts.Range != nil {
		cursor.SetByteRange(uint32(conv.ByteOffset(opts.Range.Start)), uint32(conv.ByteOffset(opts.Range.End)))
	}

	if opts.Points != nil {
		cursor.SetPointRange(sitterPoint(conv, opts.Points.Start), sitterPoint(conv, opts.Points.End))
	}

	return &candidateStream{
		cursor:  cursor,
		matches: cursor.Matches(nq.q, engineNode.raw, engineNode.tree.source),
		tree:    engineNode.tree,
	}
}

// candidateStream pulls raw matches off a live query cursor.
type candidateStream struct {
	cursor  *sitter.QueryCursor
	matches sitter.QueryMatches
	tree    *Tree
}

func (s *candidateStream) Next() (query.Candidate, bool) {
	match := s.matches.Next()
	if match == nil {
		return query.Candidate{}, false
	}

	captures := make([]query.RawCapture, 0, len(match.Captures))

	for _, capture := range match.Captures {
		captures = append(captures, query.RawCapture{
			Node:  Node{raw: capture.Node, tree: s.tree},
			Index: capture.Index,
		})
	}

	return query.Candidate{
		Captures: captures,
		Pattern:  int(match.PatternIndex),
	}, true
}

func (s *candidateStream) DidExceedMatchLimit() bool {
	return s.cursor.DidExceedMatchLimit()
}
