package query

// This file defines the contract consumed from the external parsing
// engine. The engine compiles query source against a grammar, walks the
// syntax tree, and yields raw match candidates; everything here is an
// interface so the predicate core stays independent of the binding.

// Point is a row/column position. Columns count runes, not bytes; the
// boundary adapter performs the translation.
type Point struct {
	Row    uint
	Column uint
}

// Node is a read-only handle into a syntax tree. It owns no data: the tree
// it was derived from must outlive it, and text is materialized lazily
// from the tree's stored source.
type Node interface {
	// Kind returns the node's type name.
	Kind() string
	// GrammarKind returns the grammar-level type name, which differs from
	// Kind for aliased nodes.
	GrammarKind() string
	// StartIndex and EndIndex bound the node's span in character indices,
	// with StartIndex <= EndIndex.
	StartIndex() uint
	EndIndex() uint
	StartPosition() Point
	EndPosition() Point
	// FieldName returns the field name of this node relative to its
	// parent, or "" when it is not a field child.
	FieldName() string
	IsError() bool
	IsMissing() bool
	IsExtra() bool
	// Text returns the node's source text.
	Text() string
	// Equal reports whether both handles reference the same position in
	// the same tree. Nodes with equal text are not necessarily equal.
	Equal(other Node) bool
}

// StepType tags one raw predicate step from the external engine.
type StepType int

// Raw predicate step types. A Done step is a sentinel terminating one
// predicate invocation; a pattern with two predicates carries two Done
// steps in its flat sequence.
const (
	StepTypeDone StepType = iota
	StepTypeCapture
	StepTypeString
)

// Step is one raw predicate step. ValueID resolves through the query's
// capture-name table for capture steps and the string-literal table for
// string steps.
type Step struct {
	Type    StepType
	ValueID uint32
}

// Native is the compiled query handle exposed by the external engine.
// Offsets it reports are engine-native byte offsets; Query translates
// them to character indices once on top.
type Native interface {
	PatternCount() int
	// CaptureNames returns the capture-name table, indexed by value ID.
	CaptureNames() []string
	// StringValues returns the string-literal table, indexed by value ID.
	StringValues() []string
	// PredicateSteps returns the flat, Done-terminated step sequence for
	// one pattern.
	PredicateSteps(pattern int) []Step
	// PatternStartByte returns the byte offset where the pattern starts
	// in the query source.
	PatternStartByte(pattern int) uint
	// DisablePattern removes a pattern from native matching. One-way.
	DisablePattern(pattern int)
}

// IndexRange restricts execution to a character-index window of the tree.
type IndexRange struct {
	Start uint
	End   uint
}

// PointRange restricts execution to a row/column window of the tree.
type PointRange struct {
	Start Point
	End   Point
}

// ExecOptions carries the per-execution knobs forwarded to the engine.
type ExecOptions struct {
	// MatchLimit caps the number of simultaneously in-flight partial
	// matches the engine tracks. Zero means unlimited; only a configured
	// cap can ever trip the exceeded flag.
	MatchLimit uint32
	Range      *IndexRange
	Points     *PointRange
}

// RawCapture is one (capture index, node) pair of a raw candidate.
type RawCapture struct {
	Node  Node
	Index uint32
}

// Candidate is one raw match pulled from the engine, prior to predicate
// filtering. It does not outlive the execution that produced it.
type Candidate struct {
	Captures []RawCapture
	Pattern  int
}

// CandidateStream yields raw candidates one at a time. Consumers may stop
// pulling at any point.
type CandidateStream interface {
	Next() (Candidate, bool)
	// DidExceedMatchLimit reports whether the configured match limit was
	// insufficient at any point during this execution.
	DidExceedMatchLimit() bool
}

// Matcher starts raw executions of a compiled query against a node.
type Matcher interface {
	Exec(native Native, node Node, opts ExecOptions) CandidateStream
}
