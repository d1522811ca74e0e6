package query

import "regexp"

// textPredicate is the uniform contract of every gating predicate: does
// this candidate's capture set satisfy me. Implementations close over
// their static arguments at construction and are total functions; "no
// match" is a false return, never an error.
type textPredicate interface {
	satisfies(captures []Capture) bool
}

// textsFor collects the source text of every node captured under a name,
// preserving capture order.
func textsFor(captures []Capture, name string) []string {
	var texts []string

	for _, capture := range captures {
		if capture.Name == name {
			texts = append(texts, capture.Node.Text())
		}
	}

	return texts
}

// equalityPredicate implements the eq? family. The right-hand side is
// either another capture or a literal string. Universal quantification
// over an empty capture set succeeds vacuously; existential fails.
type equalityPredicate struct {
	captureName    string
	otherCapture   string
	literal        string
	againstCapture bool
	isPositive     bool
	matchAll       bool
}

func (p *equalityPredicate) satisfies(captures []Capture) bool {
	left := textsFor(captures, p.captureName)

	if p.againstCapture {
		return p.satisfiesPairs(left, textsFor(captures, p.otherCapture))
	}

	return p.satisfiesLiteral(left)
}

// satisfiesPairs quantifies over the cross product of both capture sets.
func (p *equalityPredicate) satisfiesPairs(left, right []string) bool {
	if p.matchAll {
		for _, l := range left {
			for _, r := range right {
				if (l == r) != p.isPositive {
					return false
				}
			}
		}

		return true
	}

	for _, l := range left {
		for _, r := range right {
			if (l == r) == p.isPositive {
				return true
			}
		}
	}

	return false
}

// satisfiesLiteral quantifies over the left capture set against the fixed
// literal.
func (p *equalityPredicate) satisfiesLiteral(left []string) bool {
	if p.matchAll {
		for _, l := range left {
			if (l == p.literal) != p.isPositive {
				return false
			}
		}

		return true
	}

	for _, l := range left {
		if (l == p.literal) == p.isPositive {
			return true
		}
	}

	return false
}

// regexPredicate implements the match? family. The pattern is compiled
// once at construction; evaluation is a substring search, not an anchored
// full match.
type regexPredicate struct {
	captureName string
	re          *regexp.Regexp
	isPositive  bool
	matchAll    bool
}

func (p *regexPredicate) satisfies(captures []Capture) bool {
	texts := textsFor(captures, p.captureName)

	if p.matchAll {
		for _, text := range texts {
			if p.re.MatchString(text) != p.isPositive {
				return false
			}
		}

		return true
	}

	for _, text := range texts {
		if p.re.MatchString(text) == p.isPositive {
			return true
		}
	}

	return false
}

// membershipPredicate implements any-of?/not-any-of?. Every bound text
// must be in (any-of?) or out of (not-any-of?) the literal set. Zero bound
// nodes fails any-of? and satisfies not-any-of?.
type membershipPredicate struct {
	captureName string
	values      map[string]struct{}
	isPositive  bool
}

func (p *membershipPredicate) satisfies(captures []Capture) bool {
	texts := textsFor(captures, p.captureName)
	if len(texts) == 0 {
		return !p.isPositive
	}

	for _, text := range texts {
		_, present := p.values[text]

		if present != p.isPositive {
			return false
		}
	}

	return true
}
