package main

import (
	"errors"
	"fmt"
	"path"
	"strings"

	forest "github.com/alexaandru/go-sitter-forest"
	enry "github.com/src-d/enry/v2"

	"github.com/Sumatoshi-tech/treeq/pkg/engine"
)

// errUnknownLanguage indicates no grammar could be resolved for a file.
var errUnknownLanguage = errors.New("could not detect a language")

// forestNames maps enry language names to go-sitter-forest grammar names
// where the lowercased name does not line up.
var forestNames = map[string]string{
	"c++":             "cpp",
	"c#":              "c_sharp",
	"objective-c":     "objc",
	"protocol buffer": "proto",
	"shell":           "bash",
	"vim script":      "vim",
}

// detectLanguage resolves the grammar for a file, preferring the forced
// name when given, otherwise detecting from the file name and content via
// enry.
func detectLanguage(forced, filename string, content []byte) (string, engine.Language, error) {
	name := forced

	if name == "" {
		detected := enry.GetLanguage(path.Base(filename), content)
		if detected == "" {
			return "", nil, fmt.Errorf("%w for %s", errUnknownLanguage, filename)
		}

		name = normalizeLanguage(detected)
	}

	lang := grammarFor(name)
	if lang == nil {
		return "", nil, fmt.Errorf("%w: no grammar for %q (%s)", errUnknownLanguage, name, filename)
	}

	return name, lang, nil
}

// grammarFor looks up a grammar by its forest name. The lookup panics on
// unknown names, so it runs behind a recover.
func grammarFor(name string) (lang engine.Language) {
	defer func() {
		_ = recover() //nolint:errcheck // unknown grammars surface as nil
	}()

	lang = forest.GetLanguage(name)

	return lang
}

// normalizeLanguage converts an enry language name to its forest grammar
// name.
func normalizeLanguage(detected string) string {
	lower := strings.ToLower(detected)

	if mapped, ok := forestNames[lower]; ok {
		return mapped
	}

	return strings.ReplaceAll(lower, " ", "_")
}
