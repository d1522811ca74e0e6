package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Output format names.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatCount = "count"
)

// ErrUnsupportedFormat indicates an unknown output format flag value.
var ErrUnsupportedFormat = errors.New("unsupported format")

// snippetLimit truncates long capture texts in table output.
const snippetLimit = 60

// renderMatches writes matches in the requested format.
func renderMatches(writer io.Writer, format string, matches []fileMatch, useColor bool) error {
	switch format {
	case formatTable:
		renderTable(writer, matches, useColor)

		return nil
	case formatJSON:
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", "  ")

		return encoder.Encode(matches)
	case formatCount:
		captures := 0
		for _, match := range matches {
			captures += len(match.Captures)
		}

		fmt.Fprintf(writer, "%d matches, %d captures\n", len(matches), captures)

		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func renderTable(writer io.Writer, matches []fileMatch, useColor bool) {
	if len(matches) == 0 {
		fmt.Fprintln(writer, "no matches")

		return
	}

	captureName := func(name string) string { return "@" + name }
	if useColor {
		cyan := color.New(color.FgCyan)
		captureName = func(name string) string { return cyan.Sprint("@" + name) }
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(writer)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false

	tbl.AppendHeader(table.Row{"FILE", "POS", "CAPTURE", "KIND", "TEXT"})

	for _, match := range matches {
		for _, capture := range match.Captures {
			tbl.AppendRow(table.Row{
				match.File,
				fmt.Sprintf("%d:%d", capture.Row+1, capture.Col+1),
				captureName(capture.Name),
				capture.Kind,
				snippet(capture.Text),
			})
		}
	}

	tbl.Render()
}

// snippet shortens text to one displayable line.
func snippet(text string) string {
	runes := []rune(text)
	for i, r := range runes {
		if r == '\n' {
			runes = runes[:i]

			break
		}
	}

	if len(runes) > snippetLimit {
		runes = append(runes[:snippetLimit], '…')
	}

	return string(runes)
}
