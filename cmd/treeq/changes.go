package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/treeq/pkg/engine"
	"github.com/Sumatoshi-tech/treeq/pkg/query"
)

// changedNodeLimit caps the syntax summary so huge edits stay readable.
const changedNodeLimit = 25

// errFileTooLarge indicates an input exceeded the configured size cap.
var errFileTooLarge = errors.New("file exceeds the configured size cap")

func changesCmd() *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "changes <old-file> <new-file>",
		Short: "Diff two versions of a file and reparse incrementally",
		Long: `Parse the old version, apply the textual difference as a tree edit and
reparse incrementally, then report the changed regions and the syntax
nodes they touch.

Examples:
  treeq changes main.go.orig main.go
  treeq changes -l go before.txt after.txt`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChanges(cmd.Context(), args[0], args[1], lang, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&lang, "language", "l", "", "force a grammar instead of detection")

	return cmd
}

func runChanges(ctx context.Context, oldFile, newFile, lang string, writer io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if lang == "" {
		lang = cfg.Query.Language
	}

	oldSource, ok, err := readSource(oldFile, cfg.Query.MaxFileSize)
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("%w: %s", errFileTooLarge, oldFile)
	}

	newSource, ok, err := readSource(newFile, cfg.Query.MaxFileSize)
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("%w: %s", errFileTooLarge, newFile)
	}

	name, language, err := detectLanguage(lang, oldFile, oldSource)
	if err != nil {
		return err
	}

	edit, changed := deriveEdit(oldSource, newSource)
	if !changed {
		fmt.Fprintln(writer, "files are identical")

		return nil
	}

	parser := engine.NewParser(language)

	oldTree, err := parser.Parse(ctx, oldSource)
	if err != nil {
		return fmt.Errorf("parse %s: %w", oldFile, err)
	}
	defer oldTree.Close()

	oldTree.Edit(edit, newSource)

	newTree, err := parser.ParseIncremental(ctx, oldTree, newSource)
	if err != nil {
		return fmt.Errorf("reparse %s: %w", newFile, err)
	}
	defer newTree.Close()

	renderDiffRegions(writer, string(oldSource), string(newSource))

	fmt.Fprintf(writer, "\nedited span: chars %d..%d (%s)\n", edit.StartIndex, edit.NewEndIndex, name)

	renderChangedNodes(writer, newTree.RootNode(), edit.StartIndex, edit.NewEndIndex)

	return nil
}

// deriveEdit reduces the textual difference between two versions to the
// single span from the first differing character to the last. Tree-sitter
// applies edits sequentially in post-edit coordinates, so one covering
// span sidesteps coordinate drift across multiple regions.
func deriveEdit(oldSource, newSource []byte) (engine.Edit, bool) {
	oldRunes := []rune(string(oldSource))
	newRunes := []rune(string(newSource))

	prefix := 0
	for prefix < len(oldRunes) && prefix < len(newRunes) && oldRunes[prefix] == newRunes[prefix] {
		prefix++
	}

	if prefix == len(oldRunes) && prefix == len(newRunes) {
		return engine.Edit{}, false
	}

	suffix := 0
	for suffix < len(oldRunes)-prefix && suffix < len(newRunes)-prefix &&
		oldRunes[len(oldRunes)-1-suffix] == newRunes[len(newRunes)-1-suffix] {
		suffix++
	}

	oldEnd := len(oldRunes) - suffix
	newEnd := len(newRunes) - suffix

	edit := engine.Edit{
		StartIndex:  uint(prefix),
		OldEndIndex: uint(oldEnd),
		NewEndIndex: uint(newEnd),
		StartPoint:  pointAt(oldRunes, prefix),
		OldEndPoint: pointAt(oldRunes, oldEnd),
		NewEndPoint: pointAt(newRunes, newEnd),
	}

	return edit, true
}

// pointAt locates a character index as a row and character column.
func pointAt(runes []rune, index int) query.Point {
	var point query.Point

	for i := 0; i < index; i++ {
		if runes[i] == '\n' {
			point.Row++
			point.Column = 0
		} else {
			point.Column++
		}
	}

	return point
}

// renderDiffRegions prints the granular changed regions between the two
// versions, finer than the single covering span fed to the parser.
func renderDiffRegions(writer io.Writer, oldText, newText string) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(oldText, newText, false))

	tbl := table.NewWriter()
	tbl.SetOutputMirror(writer)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"OP", "AT", "TEXT"})

	oldPos, newPos := 0, 0

	for _, diff := range diffs {
		length := len([]rune(diff.Text))

		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			tbl.AppendRow(table.Row{"delete", oldPos, snippet(diff.Text)})

			oldPos += length
		case diffmatchpatch.DiffInsert:
			tbl.AppendRow(table.Row{"insert", newPos, snippet(diff.Text)})

			newPos += length
		case diffmatchpatch.DiffEqual:
			oldPos += length
			newPos += length
		}
	}

	tbl.Render()
}

// renderChangedNodes walks the fresh tree and lists the named nodes that
// overlap the edited span.
func renderChangedNodes(writer io.Writer, root engine.Node, start, end uint) {
	kinds := collectOverlapping(root, start, end, changedNodeLimit)
	if len(kinds) == 0 {
		fmt.Fprintln(writer, "no named nodes in the edited span")

		return
	}

	fmt.Fprintf(writer, "touched nodes: %s\n", strings.Join(kinds, ", "))
}

// collectOverlapping gathers the kinds of named nodes intersecting the
// character window, depth first in source order.
func collectOverlapping(root engine.Node, start, end uint, limit int) []string {
	cursor := root.Walk()

	var kinds []string

	for {
		node := cursor.CurrentNode()
		overlaps := node.StartIndex() < end && node.EndIndex() > start

		if overlaps && node.IsNamed() && len(kinds) < limit {
			kind := node.Kind()
			if field := cursor.CurrentFieldName(); field != "" {
				kind = field + ":" + kind
			}

			kinds = append(kinds, kind)
		}

		if overlaps && len(kinds) < limit && cursor.GoToFirstChild() {
			continue
		}

		for {
			if cursor.GoToNextSibling() {
				break
			}

			if !cursor.GoToParent() {
				return kinds
			}
		}
	}
}
