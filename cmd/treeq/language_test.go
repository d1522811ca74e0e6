package main

import (
	"errors"
	"testing"
)

func TestNormalizeLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		detected string
		want     string
	}{
		{"Go", "go"},
		{"C++", "cpp"},
		{"C#", "c_sharp"},
		{"Shell", "bash"},
		{"Protocol Buffer", "proto"},
		{"Emacs Lisp", "emacs_lisp"},
	}

	for _, currentTest := range tests {
		got := normalizeLanguage(currentTest.detected)
		if got != currentTest.want {
			t.Errorf("normalizeLanguage(%q) = %q, want %q", currentTest.detected, got, currentTest.want)
		}
	}
}

func TestDetectLanguageFromContent(t *testing.T) {
	t.Parallel()

	name, lang, err := detectLanguage("", "main.go", []byte("package main\n\nfunc main() {}\n"))
	if err != nil {
		t.Fatalf("detectLanguage: %v", err)
	}

	if name != "go" {
		t.Errorf("name = %q, want %q", name, "go")
	}

	if lang == nil {
		t.Error("expected a grammar, got nil")
	}
}

func TestDetectLanguageForcedWinsOverFilename(t *testing.T) {
	t.Parallel()

	name, _, err := detectLanguage("go", "notes.txt", []byte("package main\n"))
	if err != nil {
		t.Fatalf("detectLanguage: %v", err)
	}

	if name != "go" {
		t.Errorf("name = %q, want %q", name, "go")
	}
}

func TestDetectLanguageUnknownGrammar(t *testing.T) {
	t.Parallel()

	_, _, err := detectLanguage("no_such_grammar", "main.go", nil)
	if !errors.Is(err, errUnknownLanguage) {
		t.Errorf("err = %v, want errUnknownLanguage", err)
	}
}
