package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Sumatoshi-tech/treeq/pkg/engine"
	"github.com/Sumatoshi-tech/treeq/pkg/query"
)

// fileMatch is one surviving match in one file, flattened for output.
type fileMatch struct {
	File     string            `json:"file"`
	Pattern  int               `json:"pattern"`
	Captures []fileCapture     `json:"captures"`
	Props    map[string]string `json:"props,omitempty"`
}

// fileCapture is one surfaced capture of a match.
type fileCapture struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Text  string `json:"text"`
	Start uint   `json:"start"`
	End   uint   `json:"end"`
	Row   uint   `json:"row"`
	Col   uint   `json:"col"`
}

// runResult aggregates one query execution over one file.
type runResult struct {
	Matches       []fileMatch
	CaptureCount  int
	LimitExceeded bool
}

// execOverFile parses one file and runs a compiled query over its root.
// Queries are compiled per language by the caller; the same compiled
// query is reused across files of that language.
func execOverFile(ctx context.Context, parser *engine.Parser, q *query.Query, file string, source []byte, opts query.ExecOptions) (*runResult, error) {
	tree, err := parser.Parse(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", file, err)
	}
	defer tree.Close()

	cursor := query.NewCursor(engine.NewMatcher())
	cursor.Exec(q, tree.RootNode(), opts)

	result := &runResult{}

	for match := range cursor.Matches() {
		fm := fileMatch{
			File:     file,
			Pattern:  match.PatternIndex,
			Captures: make([]fileCapture, 0, len(match.Captures)),
		}

		if props := match.SetProperties(); len(props) > 0 {
			fm.Props = props
		}

		for _, capture := range match.Captures {
			pos := capture.Node.StartPosition()

			fm.Captures = append(fm.Captures, fileCapture{
				Name:  capture.Name,
				Kind:  capture.Node.Kind(),
				Text:  capture.Node.Text(),
				Start: capture.Node.StartIndex(),
				End:   capture.Node.EndIndex(),
				Row:   pos.Row,
				Col:   pos.Column,
			})

			result.CaptureCount++
		}

		result.Matches = append(result.Matches, fm)
	}

	result.LimitExceeded = cursor.DidExceedMatchLimit()

	return result, nil
}

// readSource loads a file, enforcing the configured size cap. Oversized
// files are skipped with ok=false rather than failing the run.
func readSource(file string, maxSize int64) ([]byte, bool, error) {
	info, err := os.Stat(file)
	if err != nil {
		return nil, false, fmt.Errorf("stat %s: %w", file, err)
	}

	if maxSize > 0 && info.Size() > maxSize {
		return nil, false, nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", file, err)
	}

	return data, true, nil
}
