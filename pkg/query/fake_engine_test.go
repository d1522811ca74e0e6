package query

// Fakes standing in for the external engine, so the predicate core is
// testable without a grammar. The fake matcher replays a fixed candidate
// list and simulates the match-limit contract: the exceeded flag can only
// trip when a limit was configured.

type fakeNode struct {
	kind  string
	text  string
	start uint
	end   uint
	id    int
}

func (n *fakeNode) Kind() string         { return n.kind }
func (n *fakeNode) GrammarKind() string  { return n.kind }
func (n *fakeNode) StartIndex() uint     { return n.start }
func (n *fakeNode) EndIndex() uint       { return n.end }
func (n *fakeNode) StartPosition() Point { return Point{Row: 0, Column: n.start} }
func (n *fakeNode) EndPosition() Point   { return Point{Row: 0, Column: n.end} }
func (n *fakeNode) FieldName() string    { return "" }
func (n *fakeNode) IsError() bool        { return false }
func (n *fakeNode) IsMissing() bool      { return false }
func (n *fakeNode) IsExtra() bool        { return false }
func (n *fakeNode) Text() string         { return n.text }

func (n *fakeNode) Equal(other Node) bool {
	otherFake, ok := other.(*fakeNode)

	return ok && otherFake.id == n.id
}

// ident builds a leaf node for a source identifier.
func ident(id int, text string, start uint) *fakeNode {
	return &fakeNode{
		kind:  "identifier",
		text:  text,
		start: start,
		end:   start + uint(len(text)),
		id:    id,
	}
}

type fakeNative struct {
	captureNames []string
	stringValues []string
	steps        [][]Step
	startBytes   []uint
	disabled     map[int]int // pattern index -> DisablePattern call count
}

func (n *fakeNative) PatternCount() int               { return len(n.steps) }
func (n *fakeNative) CaptureNames() []string          { return n.captureNames }
func (n *fakeNative) StringValues() []string          { return n.stringValues }
func (n *fakeNative) PredicateSteps(pattern int) []Step { return n.steps[pattern] }

func (n *fakeNative) PatternStartByte(pattern int) uint {
	if pattern < len(n.startBytes) {
		return n.startBytes[pattern]
	}

	return 0
}

func (n *fakeNative) DisablePattern(pattern int) {
	if n.disabled == nil {
		n.disabled = make(map[int]int)
	}

	n.disabled[pattern]++
}

// Step constructors for readable test tables.
func capStep(id uint32) Step { return Step{Type: StepTypeCapture, ValueID: id} }
func strStep(id uint32) Step { return Step{Type: StepTypeString, ValueID: id} }
func doneStep() Step         { return Step{Type: StepTypeDone} }

type fakeMatcher struct {
	candidates []Candidate
	// inflight simulates the engine's peak number of simultaneous
	// in-progress matches for the node being queried.
	inflight uint32

	lastOpts ExecOptions
	execs    int
}

func (m *fakeMatcher) Exec(_ Native, _ Node, opts ExecOptions) CandidateStream {
	m.lastOpts = opts
	m.execs++

	return &fakeStream{
		candidates: m.candidates,
		exceeded:   opts.MatchLimit > 0 && m.inflight > opts.MatchLimit,
	}
}

type fakeStream struct {
	candidates []Candidate
	pos        int
	exceeded   bool
}

func (s *fakeStream) Next() (Candidate, bool) {
	if s.pos >= len(s.candidates) {
		return Candidate{}, false
	}

	candidate := s.candidates[s.pos]
	s.pos++

	return candidate, true
}

func (s *fakeStream) DidExceedMatchLimit() bool {
	return s.exceeded
}
