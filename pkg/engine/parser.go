package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// errPoolType indicates a parser pool corruption (should never happen).
var errPoolType = errors.New("engine: unexpected type in parser pool")

// errNoRootNode indicates parsing produced a tree without a root.
var errNoRootNode = errors.New("engine: parse produced no root node")

// Parser turns source text into syntax trees for one fixed language. The
// underlying sitter parsers are pooled: a parser instance is not safe for
// concurrent use, but Parser is.
type Parser struct {
	language Language
	pool     sync.Pool
}

// NewParser creates a parser for the given grammar.
func NewParser(lang Language) *Parser {
	p := &Parser{language: lang}

	p.pool = sync.Pool{
		New: func() any {
			tsParser := sitter.NewParser()
			tsParser.SetLanguage(lang)

			return tsParser
		},
	}

	return p
}

// Language returns the grammar this parser was built for.
func (p *Parser) Language() Language {
	return p.language
}

// Parse parses source from scratch.
func (p *Parser) Parse(ctx context.Context, source []byte) (*Tree, error) {
	return p.parse(ctx, nil, source)
}

// ParseIncremental reparses source reusing an earlier tree. The old tree
// must have been told about every edit through Tree.Edit, or node spans
// in the result will be wrong.
func (p *Parser) ParseIncremental(ctx context.Context, old *Tree, source []byte) (*Tree, error) {
	var oldTree *sitter.Tree

	if old != nil {
		oldTree = old.tree
	}

	return p.parse(ctx, oldTree, source)
}

func (p *Parser) parse(ctx context.Context, old *sitter.Tree, source []byte) (*Tree, error) {
	tsParser, ok := p.pool.Get().(*sitter.Parser)
	if !ok {
		return nil, errPoolType
	}

	defer p.pool.Put(tsParser)

	tree, err := tsParser.ParseString(ctx, old, source)
	if err != nil {
		return nil, fmt.Errorf("engine: parse failed: %w", err)
	}

	if tree.RootNode().IsNull() {
		return nil, errNoRootNode
	}

	return newTree(tree, source, p.language), nil
}
