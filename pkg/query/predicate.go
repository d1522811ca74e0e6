package query

import (
	"fmt"
	"regexp"
	"strings"
)

// Predicate operator names recognized by the core. Anything else is kept
// as a user-defined predicate and passed through uninterpreted.
const (
	opEq       = "eq?"
	opNotEq    = "not-eq?"
	opAnyEq    = "any-eq?"
	opAnyNotEq = "any-not-eq?"

	opMatch       = "match?"
	opNotMatch    = "not-match?"
	opAnyMatch    = "any-match?"
	opAnyNotMatch = "any-not-match?"

	opAnyOf    = "any-of?"
	opNotAnyOf = "not-any-of?"

	opIs    = "is?"
	opIsNot = "is-not?"
	opSet   = "set!"
)

// errPredicateNotString is the fixed construction failure for an
// invocation whose first step is not a string literal.
var errPredicateNotString = &ConstructionError{
	Message: "predicates must begin with a string literal",
}

// parsePredicates validates and attaches every predicate invocation of a
// pattern. All failures here are construction-time errors; once a pattern
// parses, its predicates are total functions over any candidate.
func (p *Pattern) parsePredicates(raw []Step, captureNames, stringValues []string) error {
	for _, invocation := range splitInvocations(raw) {
		if invocation[0].Type != StepTypeString {
			return errPredicateNotString
		}

		steps := resolveSteps(invocation, captureNames, stringValues)

		err := p.addPredicate(steps[0].Value, steps[1:])
		if err != nil {
			return err
		}
	}

	return nil
}

// addPredicate dispatches one invocation by operator name. Dispatch happens
// once at compile time; evaluation re-checks nothing.
func (p *Pattern) addPredicate(operator string, args []PredicateStep) error {
	switch operator {
	case opEq, opNotEq, opAnyEq, opAnyNotEq:
		return p.addEquality(operator, args)
	case opMatch, opNotMatch, opAnyMatch, opAnyNotMatch:
		return p.addRegex(operator, args)
	case opAnyOf, opNotAnyOf:
		return p.addMembership(operator, args)
	case opIs, opIsNot:
		return p.addAssertion(operator, args)
	case opSet:
		return p.addSetDirective(operator, args)
	default:
		p.userPredicates = append(p.userPredicates, append(
			[]PredicateStep{{Type: PredicateString, Value: operator}}, args...,
		))

		return nil
	}
}

// addEquality parses the eq?/not-eq?/any-eq?/any-not-eq? family. The
// second argument may be either a capture or a string literal.
func (p *Pattern) addEquality(operator string, args []PredicateStep) error {
	const expectedArgs = 2

	if len(args) != expectedArgs {
		return arityError(operator, "2", len(args))
	}

	if args[0].Type != PredicateCapture {
		return argKindError(operator, "first", "capture", describeStep(args[0]))
	}

	pred := &equalityPredicate{
		captureName: args[0].Value,
		isPositive:  isPositiveOperator(operator),
		matchAll:    isMatchAllOperator(operator),
	}

	if args[1].Type == PredicateCapture {
		pred.againstCapture = true
		pred.otherCapture = args[1].Value
	} else {
		pred.literal = args[1].Value
	}

	p.textPredicates = append(p.textPredicates, pred)

	return nil
}

// addRegex parses the match? family. The regular expression is compiled
// here, once per pattern, never per evaluation.
func (p *Pattern) addRegex(operator string, args []PredicateStep) error {
	const expectedArgs = 2

	if len(args) != expectedArgs {
		return arityError(operator, "2", len(args))
	}

	if args[0].Type != PredicateCapture {
		return argKindError(operator, "first", "capture", describeStep(args[0]))
	}

	if args[1].Type != PredicateString {
		return argKindError(operator, "second", "string", describeStep(args[1]))
	}

	re, err := regexp.Compile(args[1].Value)
	if err != nil {
		return &ConstructionError{
			Operator: operator,
			Message:  fmt.Sprintf("invalid regex in `#%s` predicate: %v", operator, err),
		}
	}

	p.textPredicates = append(p.textPredicates, &regexPredicate{
		captureName: args[0].Value,
		re:          re,
		isPositive:  isPositiveOperator(operator),
		matchAll:    isMatchAllOperator(operator),
	})

	return nil
}

// addMembership parses any-of?/not-any-of?: one capture followed by one or
// more string literals forming the candidate set.
func (p *Pattern) addMembership(operator string, args []PredicateStep) error {
	const minArgs = 2

	if len(args) < minArgs {
		return arityError(operator, "at least 2", len(args))
	}

	if args[0].Type != PredicateCapture {
		return argKindError(operator, "first", "capture", describeStep(args[0]))
	}

	values := make(map[string]struct{}, len(args)-1)

	for _, arg := range args[1:] {
		if arg.Type != PredicateString {
			return argKindError(operator, "every remaining", "string", describeStep(arg))
		}

		values[arg.Value] = struct{}{}
	}

	p.textPredicates = append(p.textPredicates, &membershipPredicate{
		captureName: args[0].Value,
		values:      values,
		isPositive:  operator == opAnyOf,
	})

	return nil
}

// addAssertion parses is?/is-not?. These are directives: they record a
// property and never gate matching.
func (p *Pattern) addAssertion(operator string, args []PredicateStep) error {
	key, value, err := parseProperty(operator, args)
	if err != nil {
		return err
	}

	if operator == opIs {
		p.assertedProperties[key] = value
	} else {
		p.refutedProperties[key] = value
	}

	return nil
}

// addSetDirective parses set!, identical mechanics to is? but recorded in
// the set-properties map.
func (p *Pattern) addSetDirective(operator string, args []PredicateStep) error {
	key, value, err := parseProperty(operator, args)
	if err != nil {
		return err
	}

	p.setProperties[key] = value

	return nil
}

// parseProperty validates the shared shape of is?/is-not?/set!: one or two
// string arguments, the value defaulting to empty.
func parseProperty(operator string, args []PredicateStep) (key, value string, err error) {
	const (
		minArgs = 1
		maxArgs = 2
	)

	if len(args) < minArgs || len(args) > maxArgs {
		return "", "", arityError(operator, "1 or 2", len(args))
	}

	if args[0].Type != PredicateString {
		return "", "", argKindError(operator, "first", "string", describeStep(args[0]))
	}

	key = args[0].Value

	if len(args) == maxArgs {
		if args[1].Type != PredicateString {
			return "", "", argKindError(operator, "second", "string", describeStep(args[1]))
		}

		value = args[1].Value
	}

	return key, value, nil
}

// isPositiveOperator reports whether the operator asserts (rather than
// negates) its condition.
func isPositiveOperator(operator string) bool {
	return !strings.Contains(operator, "not-")
}

// isMatchAllOperator reports whether the operator quantifies universally
// ("all", the default) instead of existentially ("any-" prefix).
func isMatchAllOperator(operator string) bool {
	return !strings.HasPrefix(operator, "any-")
}

// describeStep renders a predicate argument for error messages.
func describeStep(step PredicateStep) string {
	if step.Type == PredicateCapture {
		return "@" + step.Value
	}

	return fmt.Sprintf("%q", step.Value)
}
