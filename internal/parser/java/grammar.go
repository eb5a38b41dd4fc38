package java

import (
	"context"
	"fmt"
	"sync"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"github.com/jdg-tools/jdg/internal/parser"
)

// Declaration patterns. Each pattern captures the declaration itself as @decl
// so matches can be tied back to the node picked by the classifier.
const (
	classPattern = `
(class_declaration
	name: (identifier) @name
	(superclass (_) @extends)?
	(super_interfaces (type_list) @implements)?) @decl`

	interfacePattern = `
(interface_declaration
	name: (identifier) @name
	(extends_interfaces (type_list) @supers)?) @decl`

	enumPattern = `
(enum_declaration
	name: (identifier) @name
	(enum_body) @body) @decl`

	enumConstantPattern = `
(enum_constant
	name: (identifier) @constant) @member`

	recordPattern = `
(record_declaration
	name: (identifier) @name
	(formal_parameters) @components) @decl`

	fieldPattern = `
(field_declaration
	type: (_) @type
	declarator: (variable_declarator
		name: (identifier) @name)) @member
(constant_declaration
	type: (_) @type
	declarator: (variable_declarator
		name: (identifier) @name)) @member`

	methodPattern = `
(method_declaration
	type: (_) @return_type
	name: (identifier) @name
	parameters: (formal_parameters) @params) @member`

	packagePattern = `
(package_declaration
	[(scoped_identifier) (identifier)] @package)`
)

// queries holds the compiled patterns. Compiled queries are immutable and
// shared; every execution gets its own cursor.
type queries struct {
	class        *sitter.Query
	iface        *sitter.Query
	enum         *sitter.Query
	enumConstant *sitter.Query
	record       *sitter.Query
	field        *sitter.Query
	method       *sitter.Query
	pkg          *sitter.Query
}

var (
	compileOnce sync.Once
	compiled    *queries
	compileErr  error
)

// loadQueries compiles every pattern against the Java grammar on first use.
func loadQueries() (*queries, error) {
	compileOnce.Do(func() {
		lang := java.GetLanguage()
		q := &queries{}
		for _, c := range []struct {
			name    string
			pattern string
			dst     **sitter.Query
		}{
			{"class", classPattern, &q.class},
			{"interface", interfacePattern, &q.iface},
			{"enum", enumPattern, &q.enum},
			{"enum constant", enumConstantPattern, &q.enumConstant},
			{"record", recordPattern, &q.record},
			{"field", fieldPattern, &q.field},
			{"method", methodPattern, &q.method},
			{"package", packagePattern, &q.pkg},
		} {
			compiledQuery, err := sitter.NewQuery([]byte(c.pattern), lang)
			if err != nil {
				compileErr = fmt.Errorf("%w: %s query: %v", parser.ErrGrammarInit, c.name, err)
				return
			}
			*c.dst = compiledQuery
		}
		compiled = q
	})
	return compiled, compileErr
}

// parseSource runs the error-tolerant Java parser over src. A tree is
// returned for any input; malformed regions show up as ERROR nodes.
func parseSource(ctx context.Context, src []byte) (*sitter.Tree, error) {
	p := sitter.NewParser()
	p.SetLanguage(java.GetLanguage())
	tree, err := p.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, err
	}
	return tree, nil
}

// captures maps capture names to the first node captured under that name in
// one match.
type captures map[string]*sitter.Node

// eachMatch executes q against node and calls fn for every match in the
// order the cursor yields them.
func eachMatch(q *sitter.Query, node *sitter.Node, fn func(captures) error) error {
	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, node)

	for {
		m, ok := qc.NextMatch()
		if !ok {
			return nil
		}
		caps := make(captures, len(m.Captures))
		for _, c := range m.Captures {
			name := q.CaptureNameForId(c.Index)
			if _, seen := caps[name]; !seen {
				caps[name] = c.Node
			}
		}
		if err := fn(caps); err != nil {
			return err
		}
	}
}

// text returns the source text of n, failing when it is not valid UTF-8.
func text(n *sitter.Node, src []byte) (string, error) {
	s := n.Content(src)
	if !utf8.ValidString(s) {
		return "", fmt.Errorf("%w: %s at byte %d", parser.ErrDecode, n.Type(), n.StartByte())
	}
	return s, nil
}

// sameNode reports whether a and b refer to the same syntax node.
func sameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}
