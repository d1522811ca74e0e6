// Package engine binds the predicate core in pkg/query to the
// go-tree-sitter-bare runtime. It owns every call into the binding:
// parsing, tree lifetime, node access, query compilation, and raw match
// execution. Byte offsets stop at this boundary; everything the adapter
// hands upward speaks character indices, translated through the source
// converter each tree carries.
package engine

import (
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/treeq/pkg/query"
	"github.com/Sumatoshi-tech/treeq/pkg/runeidx"
	"github.com/Sumatoshi-tech/treeq/pkg/safeconv"
)

// Language is a grammar handle, typically obtained from go-sitter-forest.
type Language = *sitter.Language

// CompileQuery compiles query source against a grammar and wraps the
// result in the predicate registry. Both the native compilation and the
// predicate parsing must succeed; either failure yields no query.
func CompileQuery(lang Language, source string) (*query.Query, error) {
	native, err := sitter.NewQuery(lang, []byte(source))
	if err != nil {
		return nil, translateQueryError(err, source)
	}

	return query.Compile(source, &nativeQuery{q: native})
}

// translateQueryError converts the binding's compile error into the
// core's taxonomy, with the offset moved from bytes to characters.
func translateQueryError(err error, source string) error {
	queryErr, ok := err.(*sitter.QueryError)
	if !ok {
		return err
	}

	conv := runeidx.New([]byte(source))
	offset := uint(queryErr.Offset)

	if offset > uint(len(source)) {
		offset = uint(len(source))
	}

	return &query.CompileError{
		Message: queryErr.Message,
		Kind:    errorKind(queryErr.Kind),
		Offset:  conv.RuneIndex(offset),
	}
}

func errorKind(t sitter.QueryErrorKind) query.ErrorKind {
	switch t {
	case sitter.QueryErrorNodeType:
		return query.KindUnknownNodeType
	case sitter.QueryErrorField:
		return query.KindUnknownField
	case sitter.QueryErrorCapture:
		return query.KindUnknownCapture
	case sitter.QueryErrorStructure:
		return query.KindBadStructure
	case sitter.QueryErrorLanguage:
		return query.KindIncompatibleLanguage
	default:
		return query.KindSyntax
	}
}

// nativeQuery adapts a compiled sitter query to the query.Native
// contract. Offsets it reports stay byte-based; the core translates them.
type nativeQuery struct {
	q *sitter.Query
}

func (n *nativeQuery) PatternCount() int {
	return int(n.q.PatternCount())
}

func (n *nativeQuery) CaptureNames() []string {
	count := n.q.CaptureCount()
	names := make([]string, 0, count)

	for i := range count {
		names = append(names, n.q.CaptureNameForID(i))
	}

	return names
}

func (n *nativeQuery) StringValues() []string {
	count := n.q.StringCount()
	values := make([]string, 0, count)

	for i := range count {
		values = append(values, n.q.StringValueForID(i))
	}

	return values
}

// PredicateSteps re-flattens the binding's per-invocation slices into the
// Done-terminated sequence the core parses.
func (n *nativeQuery) PredicateSteps(pattern int) []query.Step {
	invocations := n.q.PredicatesForPattern(uint32(safeconv.MustIntToUint(pattern)))

	var steps []query.Step

	for _, invocation := range invocations {
		for _, step := range invocation {
			steps = append(steps, query.Step{
				Type:    stepType(step.Type),
				ValueID: step.ValueID,
			})
		}

		steps = append(steps, query.Step{Type: query.StepTypeDone})
	}

	return steps
}

func stepType(t sitter.QueryPredicateStepType) query.StepType {
	switch t {
	case sitter.QueryPredicateStepTypeCapture:
		return query.StepTypeCapture
	case sitter.QueryPredicateStepTypeString:
		return query.StepTypeString
	default:
		return query.StepTypeDone
	}
}

func (n *nativeQuery) PatternStartByte(pattern int) uint {
	return uint(n.q.StartByteForPattern(int(safeconv.MustIntToUint(pattern))))
}

func (n *nativeQuery) DisablePattern(pattern int) {
	n.q.DisablePattern(uint32(safeconv.MustIntToUint(pattern)))
}
