// Package java extracts class models from Java source files using
// tree-sitter queries.
package java

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jdg-tools/jdg/internal/parser"
)

// MemberScope controls which field and method declarations are attributed
// to the extracted model.
type MemberScope string

const (
	// ScopeDeclaration collects only the members declared directly in the
	// body of the classified declaration.
	ScopeDeclaration MemberScope = "declaration"
	// ScopeFile collects every member declared anywhere in the file,
	// including those of other top-level and nested declarations.
	ScopeFile MemberScope = "file"
)

// Valid reports whether s is a known scope.
func (s MemberScope) Valid() bool {
	return s == ScopeDeclaration || s == ScopeFile
}

// Options configures a JavaParser.
type Options struct {
	MemberScope MemberScope
}

// Fingerprint identifies the options in cache keys.
func (o Options) Fingerprint() string {
	return "java:scope=" + string(o.scope())
}

func (o Options) scope() MemberScope {
	if o.MemberScope == "" {
		return ScopeDeclaration
	}
	return o.MemberScope
}

// JavaParser extracts a ClassModel from the first top-level declaration of a
// Java source file.
type JavaParser struct {
	opts Options
}

// NewParser creates a new Java parser.
func NewParser(opts Options) *JavaParser {
	return &JavaParser{opts: opts}
}

func (p *JavaParser) Extensions() []string {
	return []string{parser.JavaExtension}
}

// Options returns the options the parser was built with.
func (p *JavaParser) Options() Options {
	return p.opts
}

// Fingerprint identifies the parser configuration in cache keys.
func (p *JavaParser) Fingerprint() string {
	return p.opts.Fingerprint()
}

func (p *JavaParser) ParseFile(ctx context.Context, filePath string, content []byte) (*parser.ClassModel, error) {
	q, err := loadQueries()
	if err != nil {
		return nil, err
	}

	tree, err := parseSource(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filePath, err)
	}
	root := tree.RootNode()

	decl, err := classify(root)
	if err != nil {
		return nil, err
	}

	extract, err := extractorFor(decl.Type())
	if err != nil {
		return nil, err
	}

	e := &extraction{
		q:     q,
		src:   content,
		root:  root,
		decl:  decl,
		scope: p.opts.scope(),
	}
	model, err := extract(e)
	if err != nil {
		return nil, err
	}
	if model.Name == "" {
		return nil, fmt.Errorf("%w: %s has no name", parser.ErrNoDeclarationFound, decl.Type())
	}
	model.FilePath = filePath
	return model, nil
}

// extraction carries the inputs shared by the four extractors.
type extraction struct {
	q     *queries
	src   []byte
	root  *sitter.Node
	decl  *sitter.Node
	scope MemberScope
}

// newModel starts a model of the given kind with its package resolved.
func (e *extraction) newModel(kind parser.Kind) (*parser.ClassModel, error) {
	pkg, err := resolvePackage(e.q, e.root, e.src)
	if err != nil {
		return nil, err
	}
	return &parser.ClassModel{
		Kind:       kind,
		Package:    pkg,
		Fields:     []parser.Field{},
		Methods:    []parser.Method{},
		Implements: []string{},
	}, nil
}
