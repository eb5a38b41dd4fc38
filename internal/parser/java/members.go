package java

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jdg-tools/jdg/internal/parser"
)

// collectMembers fills the fields and methods of a class or interface model.
// With ScopeFile the patterns run over the whole file and every match is
// kept; with ScopeDeclaration only members of the declaration body count.
func (e *extraction) collectMembers(model *parser.ClassModel) error {
	target := e.root
	var body *sitter.Node
	if e.scope == ScopeDeclaration {
		target = e.decl
		body = e.decl.ChildByFieldName("body")
		if body == nil {
			return nil
		}
	}

	fields, err := e.fields(target, body)
	if err != nil {
		return err
	}
	methods, err := e.methods(target, body)
	if err != nil {
		return err
	}
	model.Fields = append(model.Fields, fields...)
	model.Methods = append(model.Methods, methods...)
	return nil
}

// inScope reports whether member belongs to body. A nil body admits every
// member.
func inScope(member, body *sitter.Node) bool {
	return body == nil || sameNode(member.Parent(), body)
}

// fields returns one entry per variable declarator, so `int a, b;` yields
// two fields.
func (e *extraction) fields(target, body *sitter.Node) ([]parser.Field, error) {
	var out []parser.Field
	seen := make(map[uint32]bool)
	err := eachMatch(e.q.field, target, func(c captures) error {
		member, nameNode, typeNode := c["member"], c["name"], c["type"]
		if member == nil || nameNode == nil || !inScope(member, body) {
			return nil
		}
		if seen[nameNode.StartByte()] {
			return nil
		}
		seen[nameNode.StartByte()] = true

		name, err := text(nameNode, e.src)
		if err != nil {
			return err
		}
		typ := ""
		if typeNode != nil {
			if typ, err = text(typeNode, e.src); err != nil {
				return err
			}
		}
		out = append(out, parser.Field{
			Name:       name,
			Type:       typ,
			Visibility: visibilityOf(member),
		})
		return nil
	})
	return out, err
}

func (e *extraction) methods(target, body *sitter.Node) ([]parser.Method, error) {
	var out []parser.Method
	seen := make(map[uint32]bool)
	err := eachMatch(e.q.method, target, func(c captures) error {
		member, nameNode := c["member"], c["name"]
		if member == nil || nameNode == nil || !inScope(member, body) {
			return nil
		}
		if seen[member.StartByte()] {
			return nil
		}
		seen[member.StartByte()] = true

		name, err := text(nameNode, e.src)
		if err != nil {
			return err
		}
		m := parser.Method{
			Name:       name,
			Visibility: visibilityOf(member),
			Parameters: []parser.Parameter{},
		}
		if n := c["return_type"]; n != nil {
			if m.ReturnType, err = text(n, e.src); err != nil {
				return err
			}
		}
		if n := c["params"]; n != nil {
			if m.Parameters, err = e.parameters(n); err != nil {
				return err
			}
		}
		out = append(out, m)
		return nil
	})
	return out, err
}

// parameters pairs each parameter name with its declared type. A parameter
// whose type cannot be resolved gets an empty type instead of failing.
func (e *extraction) parameters(list *sitter.Node) ([]parser.Parameter, error) {
	out := []parser.Parameter{}
	for i := 0; i < int(list.NamedChildCount()); i++ {
		param := list.NamedChild(i)
		var nameNode, typeNode *sitter.Node
		suffix := ""

		switch param.Type() {
		case "formal_parameter":
			nameNode = param.ChildByFieldName("name")
			typeNode = param.ChildByFieldName("type")
		case "spread_parameter":
			// modifiers? type ... variable_declarator
			suffix = "..."
			for j := 0; j < int(param.NamedChildCount()); j++ {
				child := param.NamedChild(j)
				switch child.Type() {
				case "modifiers":
				case "variable_declarator":
					nameNode = child.ChildByFieldName("name")
				case "identifier":
					nameNode = child
				default:
					if typeNode == nil {
						typeNode = child
					}
				}
			}
		default:
			continue
		}
		if nameNode == nil {
			continue
		}

		name, err := text(nameNode, e.src)
		if err != nil {
			return nil, err
		}
		typ := ""
		if typeNode != nil {
			if typ, err = text(typeNode, e.src); err != nil {
				return nil, err
			}
			typ += suffix
		}
		out = append(out, parser.Parameter{Name: name, Type: typ})
	}
	return out, nil
}
