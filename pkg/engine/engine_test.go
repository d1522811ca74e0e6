package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	forest "github.com/alexaandru/go-sitter-forest"

	"github.com/Sumatoshi-tech/treeq/pkg/query"
)

func goParser(t *testing.T) *Parser {
	t.Helper()

	lang := forest.GetLanguage("go")
	if lang == nil {
		t.Fatal("go grammar not available")
	}

	return NewParser(lang)
}

func parseGo(t *testing.T, source string) *Tree {
	t.Helper()

	tree, err := goParser(t).Parse(context.Background(), []byte(source))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	t.Cleanup(tree.Close)

	return tree
}

func compileGo(t *testing.T, source string) *query.Query {
	t.Helper()

	q, err := CompileQuery(forest.GetLanguage("go"), source)
	if err != nil {
		t.Fatalf("compile query: %v", err)
	}

	return q
}

// captureTexts runs a query over a tree and collects the text of every
// surfaced capture, in match order.
func captureTexts(t *testing.T, q *query.Query, tree *Tree) []string {
	t.Helper()

	cursor := query.NewCursor(NewMatcher())
	cursor.Exec(q, tree.RootNode(), query.ExecOptions{})

	var texts []string

	for capture := range cursor.Captures() {
		texts = append(texts, capture.Node.Text())
	}

	return texts
}

func TestNodePositionsAreCharacterBased(t *testing.T) {
	// α is two bytes; everything after it shifts by one byte vs chars.
	tree := parseGo(t, "package main\n\nvar α = 1\n")

	root := tree.RootNode()
	if root.Kind() != "source_file" {
		t.Fatalf("root kind = %q, want source_file", root.Kind())
	}

	q := compileGo(t, "(var_spec name: (identifier) @name)")

	cursor := query.NewCursor(NewMatcher())
	cursor.Exec(q, root, query.ExecOptions{})

	for capture := range cursor.Captures() {
		if capture.Node.Text() != "α" {
			t.Fatalf("captured %q, want α", capture.Node.Text())
		}

		if got := capture.Node.StartIndex(); got != 18 {
			t.Errorf("StartIndex = %d, want 18", got)
		}

		if got := capture.Node.EndIndex(); got != 19 {
			t.Errorf("EndIndex = %d, want 19 (one char, not two bytes)", got)
		}

		pos := capture.Node.StartPosition()
		if pos.Row != 2 || pos.Column != 4 {
			t.Errorf("StartPosition = %+v, want row 2 col 4", pos)
		}

		if capture.Node.FieldName() != "name" {
			t.Errorf("FieldName = %q, want name", capture.Node.FieldName())
		}

		return
	}

	t.Fatal("query produced no captures")
}

func TestCompileErrorCarriesKindAndOffset(t *testing.T) {
	_, err := CompileQuery(forest.GetLanguage("go"), "(identifier) @x (")
	if err == nil {
		t.Fatal("expected compile error")
	}

	var compileErr *query.CompileError
	if !errors.As(err, &compileErr) {
		t.Fatalf("error type %T, want *query.CompileError", err)
	}

	if compileErr.Offset > uint(len("(identifier) @x (")) {
		t.Errorf("offset %d beyond source", compileErr.Offset)
	}
}

func TestCompileErrorUnknownNodeType(t *testing.T) {
	_, err := CompileQuery(forest.GetLanguage("go"), "(no_such_node) @x")

	var compileErr *query.CompileError
	if !errors.As(err, &compileErr) {
		t.Fatalf("error = %v, want *query.CompileError", err)
	}

	if compileErr.Kind != query.KindUnknownNodeType {
		t.Errorf("kind = %v, want %v", compileErr.Kind, query.KindUnknownNodeType)
	}
}

func TestRegexUsesSearchSemantics(t *testing.T) {
	tree := parseGo(t, "package main\n\nvar ab, Cd, EF int\n")

	q := compileGo(t, `((identifier) @id (#match? @id "^[A-Z]"))`)

	got := captureTexts(t, q, tree)
	want := []string{"Cd", "EF"}

	if len(got) != len(want) {
		t.Fatalf("captured %v, want %v", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("captured %v, want %v", got, want)
		}
	}
}

func TestEqualityAcrossCaptures(t *testing.T) {
	tree := parseGo(t, "package main\n\nvar x = a + a\nvar y = a + b\n")

	q := compileGo(t, `((binary_expression
  left: (identifier) @l
  right: (identifier) @r)
 (#eq? @l @r))`)

	cursor := query.NewCursor(NewMatcher())
	cursor.Exec(q, tree.RootNode(), query.ExecOptions{})

	count := 0

	for match := range cursor.Matches() {
		count++

		for _, capture := range match.Captures {
			if capture.Node.Text() != "a" {
				t.Errorf("capture %q, want a", capture.Node.Text())
			}
		}
	}

	if count != 1 {
		t.Errorf("got %d matches, want 1", count)
	}
}

func TestMembershipPredicate(t *testing.T) {
	tree := parseGo(t, "package main\n\nvar ab, Cd, EF int\n")

	q := compileGo(t, `((identifier) @id (#any-of? @id "ab" "EF"))`)

	got := captureTexts(t, q, tree)
	if len(got) != 2 || got[0] != "ab" || got[1] != "EF" {
		t.Errorf("captured %v, want [ab EF]", got)
	}
}

func TestRangeRestrictsExecution(t *testing.T) {
	source := "package main\n\nvar ab int\nvar cd int\n"
	tree := parseGo(t, source)

	q := compileGo(t, "(var_spec name: (identifier) @name)")

	cursor := query.NewCursor(NewMatcher())
	cursor.Exec(q, tree.RootNode(), query.ExecOptions{
		Range: &query.IndexRange{
			Start: uint(strings.Index(source, "var cd")),
			End:   uint(len(source)),
		},
	})

	var texts []string

	for capture := range cursor.Captures() {
		texts = append(texts, capture.Node.Text())
	}

	if len(texts) != 1 || texts[0] != "cd" {
		t.Errorf("captured %v, want [cd]", texts)
	}
}

func TestPointRangeRestrictsExecution(t *testing.T) {
	// αx ends at character column 6 of row 2 but at byte column 7.
	// Starting the window at {2, 6} must exclude it, which only holds
	// when the column survives the char-to-byte conversion.
	source := "package main\n\nvar αx int\nvar cd int\n"
	tree := parseGo(t, source)

	q := compileGo(t, "(var_spec name: (identifier) @name)")

	cursor := query.NewCursor(NewMatcher())
	cursor.Exec(q, tree.RootNode(), query.ExecOptions{
		Points: &query.PointRange{
			Start: query.Point{Row: 2, Column: 6},
			End:   query.Point{Row: 3, Column: 10},
		},
	})

	var texts []string

	for capture := range cursor.Captures() {
		texts = append(texts, capture.Node.Text())
	}

	if len(texts) != 1 || texts[0] != "cd" {
		t.Errorf("captured %v, want [cd]", texts)
	}
}

func TestIncrementalReparse(t *testing.T) {
	parser := goParser(t)

	oldSource := []byte("package main\n\nvar ab int\n")
	newSource := []byte("package main\n\nvar abXY int\n")

	tree, err := parser.Parse(context.Background(), oldSource)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	defer tree.Close()

	// "ab" grows to "abXY": chars 18..20 replaced by 18..22.
	tree.Edit(Edit{
		StartIndex:  18,
		OldEndIndex: 20,
		NewEndIndex: 22,
		StartPoint:  query.Point{Row: 2, Column: 4},
		OldEndPoint: query.Point{Row: 2, Column: 6},
		NewEndPoint: query.Point{Row: 2, Column: 8},
	}, newSource)

	fresh, err := parser.ParseIncremental(context.Background(), tree, newSource)
	if err != nil {
		t.Fatalf("incremental parse: %v", err)
	}
	defer fresh.Close()

	q := compileGo(t, "(var_spec name: (identifier) @name)")

	got := captureTexts(t, q, fresh)
	if len(got) != 1 || got[0] != "abXY" {
		t.Errorf("captured %v, want [abXY]", got)
	}
}

func TestUserPredicatePassesThrough(t *testing.T) {
	tree := parseGo(t, "package main\n\nvar ab int\n")

	q := compileGo(t, `((identifier) @id (#lua-match? @id "%a+"))`)

	cursor := query.NewCursor(NewMatcher())
	cursor.Exec(q, tree.RootNode(), query.ExecOptions{})

	for match := range cursor.Matches() {
		preds := match.UserPredicates()
		if len(preds) != 1 {
			t.Fatalf("got %d user predicates, want 1", len(preds))
		}

		if preds[0][0].Value != "lua-match?" {
			t.Errorf("operator = %q, want lua-match?", preds[0][0].Value)
		}

		return
	}

	t.Fatal("unknown predicate must not gate matching")
}
