package query

// PredicateStepType tags one resolved predicate step.
type PredicateStepType int

// Resolved predicate step types.
const (
	PredicateString PredicateStepType = iota
	PredicateCapture
)

// PredicateStep is one resolved step of a predicate invocation: either a
// string literal or a capture reference, with value IDs already resolved
// through the query's tables.
type PredicateStep struct {
	Value string
	Type  PredicateStepType
}

// splitInvocations splits a pattern's flat, Done-terminated step sequence
// into per-invocation slices with the Done sentinels removed. Empty
// invocations (a Done with no preceding steps) are skipped rather than
// rejected.
func splitInvocations(steps []Step) [][]Step {
	var (
		invocations [][]Step
		current     []Step
	)

	for _, step := range steps {
		if step.Type == StepTypeDone {
			if len(current) > 0 {
				invocations = append(invocations, current)
				current = nil
			}

			continue
		}

		current = append(current, step)
	}

	// A trailing run without a Done sentinel would indicate an engine bug;
	// treat it as one more invocation rather than dropping it.
	if len(current) > 0 {
		invocations = append(invocations, current)
	}

	return invocations
}

// resolveSteps maps raw steps onto resolved PredicateSteps using the
// query's capture-name and string-literal tables.
func resolveSteps(steps []Step, captureNames, stringValues []string) []PredicateStep {
	resolved := make([]PredicateStep, 0, len(steps))

	for _, step := range steps {
		switch step.Type {
		case StepTypeCapture:
			resolved = append(resolved, PredicateStep{
				Type:  PredicateCapture,
				Value: captureNames[step.ValueID],
			})
		case StepTypeString:
			resolved = append(resolved, PredicateStep{
				Type:  PredicateString,
				Value: stringValues[step.ValueID],
			})
		case StepTypeDone:
			// Done sentinels never reach resolveSteps.
		}
	}

	return resolved
}
