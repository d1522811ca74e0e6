// Package query filters raw structural match candidates through the
// predicate language attached to compiled tree queries: text equality,
// regex matching, set membership, property directives, and user-defined
// pass-through predicates, with any/all quantifier semantics. The
// underlying parser and raw matcher are consumed through the interfaces
// in engine.go and never reimplemented here.
package query

import (
	"unicode"

	"github.com/Sumatoshi-tech/treeq/pkg/runeidx"
)

// Query is a compiled query plus its parsed predicate registry: one
// Pattern per pattern index, a capture-name table, and a string-literal
// table shared by all patterns. A Query is immutable after Compile except
// for per-pattern and per-capture-name disabling.
type Query struct {
	native           Native
	conv             *runeidx.Converter
	source           string
	patterns         []*Pattern
	captureNames     []string
	stringValues     []string
	disabledCaptures map[string]bool
}

// Compile parses the predicate steps of every pattern in an
// already-compiled native query. Any malformed predicate fails the whole
// compilation; no partial query is produced.
func Compile(source string, native Native) (*Query, error) {
	q := &Query{
		native:           native,
		conv:             runeidx.New([]byte(source)),
		source:           source,
		captureNames:     native.CaptureNames(),
		stringValues:     native.StringValues(),
		disabledCaptures: make(map[string]bool),
	}

	count := native.PatternCount()
	q.patterns = make([]*Pattern, 0, count)

	for i := range count {
		pattern := &Pattern{
			query:              q,
			index:              i,
			startByte:          native.PatternStartByte(i),
			assertedProperties: make(map[string]string),
			refutedProperties:  make(map[string]string),
			setProperties:      make(map[string]string),
		}

		err := pattern.parsePredicates(native.PredicateSteps(i), q.captureNames, q.stringValues)
		if err != nil {
			return nil, err
		}

		q.patterns = append(q.patterns, pattern)
	}

	q.computePatternSpans()

	return q, nil
}

// computePatternSpans derives each pattern's end byte: the start of the
// next pattern, or the end of the source, trimmed of trailing whitespace.
func (q *Query) computePatternSpans() {
	for i, pattern := range q.patterns {
		end := uint(len(q.source))
		if i+1 < len(q.patterns) {
			end = q.patterns[i+1].startByte
		}

		for end > pattern.startByte && isASCIISpace(q.source[end-1]) {
			end--
		}

		pattern.endByte = end
	}
}

func isASCIISpace(b byte) bool {
	return b < unicode.MaxASCII && unicode.IsSpace(rune(b))
}

// Source returns the query source text.
func (q *Query) Source() string {
	return q.source
}

// Patterns returns the query's patterns in index order. The slice is
// shared; callers only interact with it through Pattern methods.
func (q *Query) Patterns() []*Pattern {
	return q.patterns
}

// Pattern returns the pattern at the given index.
func (q *Query) Pattern(index int) *Pattern {
	return q.patterns[index]
}

// CaptureNames returns the capture-name table shared by all patterns.
func (q *Query) CaptureNames() []string {
	return q.captureNames
}

// StringValues returns the string-literal table shared by all patterns.
func (q *Query) StringValues() []string {
	return q.stringValues
}

// DisableCapture suppresses a named capture from all future match output.
// Predicates still see the capture; only the surfaced capture lists
// shrink. This is deliberately not forwarded to the engine: dropping the
// capture at the source would also hide it from predicate evaluation.
// One-way, idempotent.
func (q *Query) DisableCapture(name string) {
	q.disabledCaptures[name] = true
}

// captureDisabled reports whether a capture name has been disabled.
func (q *Query) captureDisabled(name string) bool {
	return q.disabledCaptures[name]
}
