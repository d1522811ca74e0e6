package query

import "fmt"

// ErrorKind classifies a query compilation failure.
type ErrorKind int

// Compile error kinds, mirroring the external engine's taxonomy.
const (
	KindSyntax ErrorKind = iota
	KindUnknownNodeType
	KindUnknownField
	KindUnknownCapture
	KindBadStructure
	KindIncompatibleLanguage
)

// String returns the human-readable name of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindSyntax:
		return "syntax"
	case KindUnknownNodeType:
		return "node type"
	case KindUnknownField:
		return "field"
	case KindUnknownCapture:
		return "capture"
	case KindBadStructure:
		return "structure"
	case KindIncompatibleLanguage:
		return "language"
	default:
		return "unknown"
	}
}

// CompileError reports a failure to compile a query. Offset is the
// character index into the query source where the problem was detected.
// No partial query is produced alongside a CompileError.
type CompileError struct {
	Message string
	Kind    ErrorKind
	Offset  uint
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	return fmt.Sprintf("invalid %s at offset %d", e.Kind, e.Offset)
}

// ConstructionError reports a predicate that failed validation while
// parsing its step sequence: wrong first step, wrong arity, or wrong
// argument kind. It is raised once at compile time; predicate evaluation
// itself never fails.
type ConstructionError struct {
	Operator string
	Message  string
}

// Error implements the error interface.
func (e *ConstructionError) Error() string {
	return e.Message
}

// arityError builds a ConstructionError for a predicate invoked with the
// wrong number of arguments.
func arityError(operator, expected string, got int) *ConstructionError {
	return &ConstructionError{
		Operator: operator,
		Message: fmt.Sprintf("wrong number of arguments to `#%s` predicate. Expected %s, got %d",
			operator, expected, got),
	}
}

// argKindError builds a ConstructionError for a predicate argument of the
// wrong kind (capture where a string was required, or vice versa).
func argKindError(operator, position, expected, got string) *ConstructionError {
	return &ConstructionError{
		Operator: operator,
		Message: fmt.Sprintf("%s argument of `#%s` predicate must be a %s. Got %s",
			position, operator, expected, got),
	}
}
