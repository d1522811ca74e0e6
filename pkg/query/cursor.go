package query

import (
	"fmt"
	"iter"
)

// Capture is one named binding surfaced by a match. The zero Name/Node
// pair never occurs in surfaced captures.
type Capture struct {
	Node  Node
	Name  string
	match *Match
}

// Match returns the owning match, or nil for captures that were built
// transiently during predicate evaluation.
func (c Capture) Match() *Match {
	return c.match
}

// PatternIndex returns the index of the pattern that produced this
// capture.
func (c Capture) PatternIndex() int {
	return c.match.PatternIndex
}

// Match is one raw candidate that passed all of its pattern's gating
// predicates, annotated with the pattern's directive metadata. The tree
// and query it was derived from must outlive it.
type Match struct {
	pattern *Pattern

	// PatternIndex identifies the pattern within the query.
	PatternIndex int
	// Captures lists the surviving named bindings in capture order, with
	// disabled capture names already removed.
	Captures []Capture
}

// AssertedProperties returns the is? directive outputs of the producing
// pattern. Shared map, read-only.
func (m *Match) AssertedProperties() map[string]string {
	return m.pattern.AssertedProperties()
}

// RefutedProperties returns the is-not? directive outputs of the producing
// pattern. Shared map, read-only.
func (m *Match) RefutedProperties() map[string]string {
	return m.pattern.RefutedProperties()
}

// SetProperties returns the set! directive outputs of the producing
// pattern. Shared map, read-only.
func (m *Match) SetProperties() map[string]string {
	return m.pattern.SetProperties()
}

// UserPredicates returns the pattern's unrecognized predicates, verbatim.
func (m *Match) UserPredicates() [][]PredicateStep {
	return m.pattern.UserPredicates()
}

// NodesForCapture returns the nodes bound under one capture name, in
// capture order.
func (m *Match) NodesForCapture(name string) []Node {
	var nodes []Node

	for _, capture := range m.Captures {
		if capture.Name == name {
			nodes = append(nodes, capture.Node)
		}
	}

	return nodes
}

// Cursor pulls raw candidates from the external matcher, filters them
// through the query's pattern registry, and exposes the survivors as two
// lazy views. Iteration is synchronous and single-threaded; partial
// consumption is fine, and a fresh Exec fully resets filtering state.
type Cursor struct {
	matcher Matcher
	query   *Query
	stream  CandidateStream

	// exceeded is sticky for the current execution: once the engine
	// reports that the configured match limit was insufficient, the flag
	// stays readable after iteration completes.
	exceeded bool
}

// NewCursor creates a cursor bound to a matcher. The cursor is reusable:
// each Exec starts a new execution regardless of whether the previous one
// was drained.
func NewCursor(matcher Matcher) *Cursor {
	return &Cursor{matcher: matcher}
}

// Exec starts running a query against a node. Any previous execution is
// discarded along with its sticky match-limit flag.
func (c *Cursor) Exec(q *Query, node Node, opts ExecOptions) {
	c.query = q
	c.stream = c.matcher.Exec(q.native, node, opts)
	c.exceeded = false
}

// DidExceedMatchLimit reports whether the configured match limit was
// insufficient to track all simultaneously in-flight partial matches at
// any point during the current execution. Never set when no limit was
// configured.
func (c *Cursor) DidExceedMatchLimit() bool {
	if c.stream != nil && c.stream.DidExceedMatchLimit() {
		c.exceeded = true
	}

	return c.exceeded
}

// nextFiltered is the single predicate-application site shared by both
// views: it pulls candidates until one survives its pattern's gating
// predicates, then dresses it up as a Match.
func (c *Cursor) nextFiltered() (*Match, bool) {
	if c.stream == nil {
		return nil, false
	}

	for {
		candidate, ok := c.stream.Next()
		if !ok {
			c.DidExceedMatchLimit()

			return nil, false
		}

		if candidate.Pattern < 0 || candidate.Pattern >= len(c.query.patterns) {
			panic(fmt.Sprintf(
				"query: matcher produced pattern index %d, registry has %d patterns",
				candidate.Pattern, len(c.query.patterns)))
		}

		pattern := c.query.patterns[candidate.Pattern]
		if pattern.disabled {
			continue
		}

		captures := c.resolveCaptures(candidate)

		if !pattern.MatchesPredicates(captures) {
			continue
		}

		return c.buildMatch(candidate.Pattern, pattern, captures), true
	}
}

// resolveCaptures names every raw capture of a candidate. Disabled
// capture names are kept at this stage so predicates still see them.
func (c *Cursor) resolveCaptures(candidate Candidate) []Capture {
	captures := make([]Capture, 0, len(candidate.Captures))

	for _, raw := range candidate.Captures {
		captures = append(captures, Capture{
			Name: c.query.captureNames[raw.Index],
			Node: raw.Node,
		})
	}

	return captures
}

// buildMatch assembles the surfaced match, dropping disabled capture
// names and back-linking each capture to its match.
func (c *Cursor) buildMatch(index int, pattern *Pattern, captures []Capture) *Match {
	match := &Match{
		PatternIndex: index,
		pattern:      pattern,
	}

	surfaced := make([]Capture, 0, len(captures))

	for _, capture := range captures {
		if c.query.captureDisabled(capture.Name) {
			continue
		}

		capture.match = match
		surfaced = append(surfaced, capture)
	}

	match.Captures = surfaced

	return match
}

// Matches returns the grouped view: surviving matches in the order the
// underlying matcher produced them.
func (c *Cursor) Matches() iter.Seq[*Match] {
	return func(yield func(*Match) bool) {
		for {
			match, ok := c.nextFiltered()
			if !ok {
				return
			}

			if !yield(match) {
				return
			}
		}
	}
}

// Captures returns the flattened view: for each surviving match in
// matcher order, every surfaced capture in its in-match order. Both views
// share nextFiltered, so they cannot disagree about which candidates
// survive.
func (c *Cursor) Captures() iter.Seq[Capture] {
	return func(yield func(Capture) bool) {
		for {
			match, ok := c.nextFiltered()
			if !ok {
				return
			}

			for _, capture := range match.Captures {
				if !yield(capture) {
					return
				}
			}
		}
	}
}
