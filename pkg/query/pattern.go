package query

// Pattern is one top-level rule of a compiled query, identified by a
// stable index. It owns the gating text predicates parsed from its step
// sequence, the directive metadata attached by is?/is-not?/set!, and its
// span in the query source. Patterns are created once at compile time and
// are immutable afterwards except for the one-way disabled flag.
type Pattern struct {
	query *Query

	textPredicates     []textPredicate
	assertedProperties map[string]string
	refutedProperties  map[string]string
	setProperties      map[string]string
	userPredicates     [][]PredicateStep

	index     int
	startByte uint
	endByte   uint
	disabled  bool
}

// Index returns the pattern's index within its query.
func (p *Pattern) Index() int {
	return p.index
}

// StartIndex returns the character index where this pattern starts in the
// query source.
func (p *Pattern) StartIndex() uint {
	return p.query.conv.RuneIndex(p.startByte)
}

// EndIndex returns the character index just past this pattern in the
// query source, with trailing whitespace trimmed.
func (p *Pattern) EndIndex() uint {
	return p.query.conv.RuneIndex(p.endByte)
}

// Disable removes this pattern from consideration entirely: the engine is
// told to stop producing candidates for it, and any candidates already in
// flight are skipped. The transition is one-way and idempotent.
func (p *Pattern) Disable() {
	if p.disabled {
		return
	}

	p.disabled = true
	p.query.native.DisablePattern(p.index)
}

// IsDisabled reports whether Disable has been called.
func (p *Pattern) IsDisabled() bool {
	return p.disabled
}

// MatchesPredicates reports whether a candidate's captures satisfy every
// gating predicate of this pattern. A pattern with no gating predicates
// matches vacuously. Directive predicates never participate.
func (p *Pattern) MatchesPredicates(captures []Capture) bool {
	for _, pred := range p.textPredicates {
		if !pred.satisfies(captures) {
			return false
		}
	}

	return true
}

// AssertedProperties returns the key/value pairs recorded by is?
// directives. The returned map is shared and must not be mutated.
func (p *Pattern) AssertedProperties() map[string]string {
	return p.assertedProperties
}

// RefutedProperties returns the key/value pairs recorded by is-not?
// directives. The returned map is shared and must not be mutated.
func (p *Pattern) RefutedProperties() map[string]string {
	return p.refutedProperties
}

// SetProperties returns the key/value pairs recorded by set! directives.
// The returned map is shared and must not be mutated.
func (p *Pattern) SetProperties() map[string]string {
	return p.setProperties
}

// UserPredicates returns the unrecognized predicate invocations of this
// pattern, verbatim, operator first. They never gate matching; callers
// interpret them.
func (p *Pattern) UserPredicates() [][]PredicateStep {
	return p.userPredicates
}
