package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Sumatoshi-tech/treeq/internal/config"
)

const sampleManifest = `name: audit
packs:
  - name: functions
    language: go
    query: "(function_declaration name: (identifier) @name)"
  - name: short-idents
    query: "((identifier) @id (#match? @id \"^[a-z]$\"))"
`

func TestPacksCommand_EndToEnd(t *testing.T) {
	t.Parallel()

	manifest := writeTempSource(t, "audit.yaml", sampleManifest)
	file := writeTempSource(t, "main.go", sampleGoSource)

	output, err := execCLI(t, "packs", manifest, file)
	if err != nil {
		t.Fatalf("packs: %v", err)
	}

	for _, want := range []string{"functions", "short-idents", "audit:", "PACK", "MATCHES"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q\ngot: %s", want, output)
		}
	}
}

func TestPacksCommand_NoFiles(t *testing.T) {
	t.Parallel()

	manifest := writeTempSource(t, "audit.yaml", sampleManifest)

	_, err := execCLI(t, "packs", manifest)
	if !errors.Is(err, ErrNoPackFiles) {
		t.Errorf("err = %v, want ErrNoPackFiles", err)
	}
}

func TestSetupTracingDisabledWithoutEndpoint(t *testing.T) {
	t.Parallel()

	stop, err := setupTracing(context.Background(), &config.Config{}, "")
	if err != nil {
		t.Fatalf("setupTracing: %v", err)
	}

	// The no-op flush must be safe to call.
	stop()
}

func TestRunPackCountsCompileFailure(t *testing.T) {
	t.Parallel()

	file := writeTempSource(t, "main.go", sampleGoSource)

	cfg := &config.Config{
		Query: config.QueryConfig{MaxFileSize: config.DefaultQueryMaxFileSize},
	}

	pack := config.PackEntry{Name: "broken", Language: "go", Query: "(function_declaration"}

	summary := runPack(context.Background(), cfg, nil, pack, []string{file})

	if summary.Errors != 1 || summary.Files != 0 {
		t.Errorf("summary = %+v, want one error and no files", summary)
	}
}

func TestRunPackSkipsMissingFiles(t *testing.T) {
	t.Parallel()

	file := writeTempSource(t, "main.go", sampleGoSource)

	cfg := &config.Config{
		Query: config.QueryConfig{MaxFileSize: config.DefaultQueryMaxFileSize},
	}

	pack := config.PackEntry{Name: "functions", Language: "go", Query: "(function_declaration name: (identifier) @name)"}

	summary := runPack(context.Background(), cfg, nil, pack, []string{file, "does-not-exist.go"})

	if summary.Errors != 1 {
		t.Errorf("errors = %d, want 1", summary.Errors)
	}

	if summary.Files != 1 || summary.Matches != 1 {
		t.Errorf("summary = %+v, want one file with one match", summary)
	}
}

func TestLanguageLabel(t *testing.T) {
	t.Parallel()

	if got := languageLabel(""); got != "auto" {
		t.Errorf("languageLabel(\"\") = %q, want auto", got)
	}

	if got := languageLabel("go"); got != "go" {
		t.Errorf("languageLabel(go) = %q, want go", got)
	}
}

func TestRenderPackSummariesTotals(t *testing.T) {
	t.Parallel()

	buf := new(bytes.Buffer)

	summaries := []packSummary{
		{Name: "a", Files: 2, Matches: 1200, Captures: 3400},
		{Name: "b", Files: 1, Matches: 1, Captures: 2},
	}

	renderPackSummaries(buf, "audit", summaries, 1500*time.Millisecond)

	output := buf.String()

	for _, want := range []string{"1,200", "3,400", "audit: 1,201 matches, 3,402 captures", "1.5s"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q\ngot: %s", want, output)
		}
	}
}
