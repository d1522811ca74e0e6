package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/treeq/pkg/engine"
	"github.com/Sumatoshi-tech/treeq/pkg/query"
)

// ErrNoFiles indicates the query command was given nothing to search.
var ErrNoFiles = errors.New("no input files")

// errBadRange indicates a malformed --range flag value.
var errBadRange = errors.New("range must be start:end in character indices")

func queryCmd() *cobra.Command {
	var lang, format, rangeSpec string

	var limit uint32

	cmd := &cobra.Command{
		Use:   "query <pattern> [files...]",
		Short: "Run a tree-sitter query over source files",
		Long: `Compile an S-expression query and run it over one or more source files.
Languages are detected per file unless forced with --language.

Examples:
  treeq query '(function_declaration name: (identifier) @name)' main.go
  treeq query '((identifier) @id (#match? @id "^[A-Z]"))' pkg/*.go
  treeq query -l go '((comment) @c (#match? @c "TODO"))' main.txt
  treeq query -f json '(import_spec) @imp' main.go
  treeq query --range 120:480 '(call_expression) @call' main.go`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), args[0], args[1:], lang, format, rangeSpec, limit, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&lang, "language", "l", "", "force a grammar instead of per-file detection")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format (table, json, count)")
	cmd.Flags().StringVar(&rangeSpec, "range", "", "restrict execution to start:end character indices")
	cmd.Flags().Uint32Var(&limit, "limit", 0, "cap on in-flight partial matches (0 = unlimited)")

	return cmd
}

func runQuery(ctx context.Context, pattern string, files []string, lang, format, rangeSpec string, limit uint32, writer io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if lang == "" {
		lang = cfg.Query.Language
	}

	if format == "" {
		format = cfg.Output.Format
	}

	if limit == 0 {
		limit = cfg.Query.MatchLimit
	}

	if len(files) == 0 {
		return ErrNoFiles
	}

	opts := query.ExecOptions{MatchLimit: limit}

	if rangeSpec != "" {
		indexRange, parseErr := parseRange(rangeSpec)
		if parseErr != nil {
			return parseErr
		}

		opts.Range = indexRange
	}

	session := newSession()

	var all []fileMatch

	exceeded := false

	for _, file := range files {
		source, ok, readErr := readSource(file, cfg.Query.MaxFileSize)
		if readErr != nil {
			return readErr
		}

		if !ok {
			continue
		}

		result, execErr := session.run(ctx, pattern, lang, file, source, opts)
		if execErr != nil {
			return execErr
		}

		all = append(all, result.Matches...)
		exceeded = exceeded || result.LimitExceeded
	}

	renderErr := renderMatches(writer, format, all, cfg.Output.Color)
	if renderErr != nil {
		return renderErr
	}

	if exceeded {
		fmt.Fprintln(writer, "warning: match limit exceeded; results may be incomplete")
	}

	return nil
}

// session caches compiled queries and parsers per grammar so multi-file
// runs compile each (language, pattern) pair once.
type session struct {
	queries map[string]*query.Query
	parsers map[string]*engine.Parser
}

func newSession() *session {
	return &session{
		queries: make(map[string]*query.Query),
		parsers: make(map[string]*engine.Parser),
	}
}

// run executes one pattern over one file, resolving the file's grammar
// and reusing cached state for its language.
func (s *session) run(ctx context.Context, pattern, forced, file string, source []byte, opts query.ExecOptions) (*runResult, error) {
	name, lang, err := detectLanguage(forced, file, source)
	if err != nil {
		return nil, err
	}

	q, ok := s.queries[name]
	if !ok {
		q, err = engine.CompileQuery(lang, pattern)
		if err != nil {
			return nil, fmt.Errorf("compile query for %s: %w", name, err)
		}

		s.queries[name] = q
		s.parsers[name] = engine.NewParser(lang)
	}

	return execOverFile(ctx, s.parsers[name], q, file, source, opts)
}

// parseRange parses a start:end character-index window.
func parseRange(spec string) (*query.IndexRange, error) {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		return nil, errBadRange
	}

	start, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRange, err)
	}

	end, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRange, err)
	}

	if end < start {
		return nil, errBadRange
	}

	return &query.IndexRange{Start: uint(start), End: uint(end)}, nil
}
