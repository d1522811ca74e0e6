package query

import "testing"

// capturesOf pairs names and nodes into a candidate capture list.
func capturesOf(pairs ...any) []Capture {
	captures := make([]Capture, 0, len(pairs)/2)

	for i := 0; i < len(pairs); i += 2 {
		captures = append(captures, Capture{
			Name: pairs[i].(string),
			Node: pairs[i+1].(Node),
		})
	}

	return captures
}

// compilePredicate compiles a single-pattern query holding exactly one
// predicate invocation and returns its pattern.
func compilePredicate(t *testing.T, captureNames, stringValues []string, steps []Step) *Pattern {
	t.Helper()

	q, err := compileSingle(captureNames, stringValues, append(steps, doneStep()))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	return q.Pattern(0)
}

func TestEqualityAgainstCaptureQuantifiers(t *testing.T) {
	foo1 := ident(1, "foo", 0)
	foo2 := ident(2, "foo", 10)
	bar := ident(3, "bar", 20)

	cases := []struct {
		name     string
		operator string
		captures []Capture
		want     bool
	}{
		{"eq all pairs equal", "eq?", capturesOf("a", foo1, "b", foo2), true},
		{"eq one pair differs", "eq?", capturesOf("a", foo1, "b", foo2, "b", bar), false},
		{"eq vacuous over empty right side", "eq?", capturesOf("a", foo1), true},
		{"any-eq fails over empty right side", "any-eq?", capturesOf("a", foo1), false},
		{"any-eq one equal pair suffices", "any-eq?", capturesOf("a", foo1, "b", bar, "b", foo2), true},
		{"not-eq all pairs differ", "not-eq?", capturesOf("a", foo1, "b", bar), true},
		{"not-eq equal pair fails", "not-eq?", capturesOf("a", foo1, "b", foo2), false},
		{"not-eq vacuous over empty right side", "not-eq?", capturesOf("a", foo1), true},
		{"any-not-eq needs one differing pair", "any-not-eq?", capturesOf("a", foo1, "b", foo2, "b", bar), true},
		{"any-not-eq fails when all pairs equal", "any-not-eq?", capturesOf("a", foo1, "b", foo2), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pattern := compilePredicate(t,
				[]string{"a", "b"},
				[]string{tc.operator},
				[]Step{strStep(0), capStep(0), capStep(1)},
			)

			if got := pattern.MatchesPredicates(tc.captures); got != tc.want {
				t.Errorf("MatchesPredicates = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEqualityAgainstLiteral(t *testing.T) {
	foo1 := ident(1, "foo", 0)
	foo2 := ident(2, "foo", 10)
	bar := ident(3, "bar", 20)

	cases := []struct {
		name     string
		operator string
		captures []Capture
		want     bool
	}{
		{"eq all bound texts equal literal", "eq?", capturesOf("a", foo1, "a", foo2), true},
		{"eq one text differs", "eq?", capturesOf("a", foo1, "a", bar), false},
		{"eq vacuous with no bound nodes", "eq?", nil, true},
		{"any-eq fails with no bound nodes", "any-eq?", nil, false},
		{"any-eq one match suffices", "any-eq?", capturesOf("a", bar, "a", foo1), true},
		{"not-eq no text equals literal", "not-eq?", capturesOf("a", bar), true},
		{"any-not-eq one differing text suffices", "any-not-eq?", capturesOf("a", foo1, "a", bar), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pattern := compilePredicate(t,
				[]string{"a"},
				[]string{tc.operator, "foo"},
				[]Step{strStep(0), capStep(0), strStep(1)},
			)

			if got := pattern.MatchesPredicates(tc.captures); got != tc.want {
				t.Errorf("MatchesPredicates = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRegexQuantifiers(t *testing.T) {
	lower := ident(1, "ab", 0)
	capitalized := ident(2, "Cd", 10)
	upper := ident(3, "EF", 20)

	cases := []struct {
		name     string
		operator string
		captures []Capture
		want     bool
	}{
		{"match all uppercase-initial", "match?", capturesOf("v", capitalized, "v", upper), true},
		{"match one lowercase fails", "match?", capturesOf("v", capitalized, "v", lower), false},
		{"match vacuous with no bound nodes", "match?", nil, true},
		{"any-match fails with no bound nodes", "any-match?", nil, false},
		{"any-match one hit suffices", "any-match?", capturesOf("v", lower, "v", upper), true},
		{"not-match none may match", "not-match?", capturesOf("v", lower), true},
		{"not-match a hit fails", "not-match?", capturesOf("v", lower, "v", upper), false},
		{"any-not-match one miss suffices", "any-not-match?", capturesOf("v", lower, "v", upper), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pattern := compilePredicate(t,
				[]string{"v"},
				[]string{tc.operator, "^[A-Z]"},
				[]Step{strStep(0), capStep(0), strStep(1)},
			)

			if got := pattern.MatchesPredicates(tc.captures); got != tc.want {
				t.Errorf("MatchesPredicates = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRegexIsSearchNotFullMatch(t *testing.T) {
	pattern := compilePredicate(t,
		[]string{"v"},
		[]string{"match?", "bc"},
		[]Step{strStep(0), capStep(0), strStep(1)},
	)

	node := ident(1, "abcd", 0)

	if !pattern.MatchesPredicates(capturesOf("v", node)) {
		t.Error("match? must search within the text, not require a full match")
	}
}

func TestMembership(t *testing.T) {
	def := ident(1, "def", 0)
	lambda := ident(2, "lambda", 10)
	foo := ident(3, "foo", 20)

	cases := []struct {
		name     string
		operator string
		captures []Capture
		want     bool
	}{
		{"any-of all texts in set", "any-of?", capturesOf("k", def, "k", lambda), true},
		{"any-of one text outside set", "any-of?", capturesOf("k", def, "k", foo), false},
		{"any-of zero bound nodes fails", "any-of?", nil, false},
		{"not-any-of zero bound nodes satisfies", "not-any-of?", nil, true},
		{"not-any-of all texts outside set", "not-any-of?", capturesOf("k", foo), true},
		{"not-any-of one text in set fails", "not-any-of?", capturesOf("k", foo, "k", def), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pattern := compilePredicate(t,
				[]string{"k"},
				[]string{tc.operator, "def", "lambda"},
				[]Step{strStep(0), capStep(0), strStep(1), strStep(2)},
			)

			if got := pattern.MatchesPredicates(tc.captures); got != tc.want {
				t.Errorf("MatchesPredicates = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDirectivesNeverGate(t *testing.T) {
	pattern := compilePredicate(t,
		[]string{"c"},
		[]string{"set!", "foo", "bar"},
		[]Step{strStep(0), strStep(1), strStep(2)},
	)

	if !pattern.MatchesPredicates(nil) {
		t.Error("a pattern with only directives must match vacuously")
	}

	if !pattern.MatchesPredicates(capturesOf("c", ident(1, "anything", 0))) {
		t.Error("set! must never exclude a match")
	}
}

func TestPredicatesAndTogether(t *testing.T) {
	// (#eq? @a "foo") (#match? @a "^f")
	q, err := compileSingle(
		[]string{"a"},
		[]string{"eq?", "foo", "match?", "^f"},
		[]Step{
			strStep(0), capStep(0), strStep(1), doneStep(),
			strStep(2), capStep(0), strStep(3), doneStep(),
		},
	)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	pattern := q.Pattern(0)

	if !pattern.MatchesPredicates(capturesOf("a", ident(1, "foo", 0))) {
		t.Error("both predicates hold, candidate must pass")
	}

	if pattern.MatchesPredicates(capturesOf("a", ident(2, "fox", 0))) {
		t.Error("eq? fails, the conjunction must fail")
	}
}
