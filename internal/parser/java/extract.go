package java

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jdg-tools/jdg/internal/parser"
)

// eachDeclMatch runs q over the classified declaration and calls fn only for
// matches rooted at that declaration, skipping nested ones.
func (e *extraction) eachDeclMatch(q *sitter.Query, fn func(captures) error) error {
	return eachMatch(q, e.decl, func(c captures) error {
		if !sameNode(c["decl"], e.decl) {
			return nil
		}
		return fn(c)
	})
}

func extractClass(e *extraction) (*parser.ClassModel, error) {
	kind := parser.KindClass
	if hasModifier(e.decl, "abstract") {
		kind = parser.KindAbstractClass
	}
	model, err := e.newModel(kind)
	if err != nil {
		return nil, err
	}

	err = e.eachDeclMatch(e.q.class, func(c captures) error {
		if n := c["name"]; n != nil {
			s, err := text(n, e.src)
			if err != nil {
				return err
			}
			model.Name = s
		}
		if n := c["extends"]; n != nil {
			s, err := typeName(n, e.src)
			if err != nil {
				return err
			}
			model.Extends = s
		}
		if n := c["implements"]; n != nil {
			names, err := supertypeNames(n, e.src)
			if err != nil {
				return err
			}
			model.Implements = names
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := e.collectMembers(model); err != nil {
		return nil, err
	}
	return model, nil
}

// extractInterface records the first extended interface in Extends and any
// further ones in Implements.
func extractInterface(e *extraction) (*parser.ClassModel, error) {
	model, err := e.newModel(parser.KindInterface)
	if err != nil {
		return nil, err
	}

	err = e.eachDeclMatch(e.q.iface, func(c captures) error {
		if n := c["name"]; n != nil {
			s, err := text(n, e.src)
			if err != nil {
				return err
			}
			model.Name = s
		}
		if n := c["supers"]; n != nil {
			names, err := supertypeNames(n, e.src)
			if err != nil {
				return err
			}
			if len(names) > 0 {
				model.Extends = names[0]
				model.Implements = names[1:]
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := e.collectMembers(model); err != nil {
		return nil, err
	}
	return model, nil
}

// extractEnum records each constant as a field without type or visibility.
func extractEnum(e *extraction) (*parser.ClassModel, error) {
	model, err := e.newModel(parser.KindEnum)
	if err != nil {
		return nil, err
	}

	var body *sitter.Node
	err = e.eachDeclMatch(e.q.enum, func(c captures) error {
		if n := c["name"]; n != nil {
			s, err := text(n, e.src)
			if err != nil {
				return err
			}
			model.Name = s
		}
		if n := c["body"]; n != nil {
			body = n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if body == nil {
		return model, nil
	}

	seen := make(map[uint32]bool)
	err = eachMatch(e.q.enumConstant, body, func(c captures) error {
		member, n := c["member"], c["constant"]
		if n == nil || !sameNode(member.Parent(), body) || seen[n.StartByte()] {
			return nil
		}
		seen[n.StartByte()] = true
		s, err := text(n, e.src)
		if err != nil {
			return err
		}
		model.Fields = append(model.Fields, parser.Field{Name: s})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return model, nil
}

// extractRecord records each component as a field with its declared type.
// A record without components yields no fields.
func extractRecord(e *extraction) (*parser.ClassModel, error) {
	model, err := e.newModel(parser.KindRecord)
	if err != nil {
		return nil, err
	}

	var components *sitter.Node
	err = e.eachDeclMatch(e.q.record, func(c captures) error {
		if n := c["name"]; n != nil {
			s, err := text(n, e.src)
			if err != nil {
				return err
			}
			model.Name = s
		}
		if n := c["components"]; n != nil {
			components = n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if components == nil {
		return model, nil
	}

	params, err := e.parameters(components)
	if err != nil {
		return nil, err
	}
	for _, p := range params {
		model.Fields = append(model.Fields, parser.Field{Name: p.Name, Type: p.Type})
	}
	return model, nil
}

// modifiersOf returns the modifiers child of a declaration, if any.
func modifiersOf(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "modifiers" {
			return child
		}
	}
	return nil
}

func hasModifier(n *sitter.Node, keyword string) bool {
	mods := modifiersOf(n)
	if mods == nil {
		return false
	}
	// Keywords are anonymous children of the modifiers node.
	for i := 0; i < int(mods.ChildCount()); i++ {
		if mods.Child(i).Type() == keyword {
			return true
		}
	}
	return false
}

func visibilityOf(n *sitter.Node) parser.Visibility {
	mods := modifiersOf(n)
	if mods == nil {
		return parser.VisibilityPackage
	}
	for i := 0; i < int(mods.ChildCount()); i++ {
		if v := parser.ParseVisibility(mods.Child(i).Type()); v != parser.VisibilityPackage {
			return v
		}
	}
	return parser.VisibilityPackage
}

// typeName returns the name of a supertype reference. Type arguments are
// dropped so `Base<String>` names the class Base; scoped names keep their
// qualifier.
func typeName(n *sitter.Node, src []byte) (string, error) {
	if n.Type() == "generic_type" && n.NamedChildCount() > 0 {
		n = n.NamedChild(0)
	}
	return text(n, src)
}

// supertypeNames returns the name of every type in a type_list, in order.
func supertypeNames(n *sitter.Node, src []byte) ([]string, error) {
	out := make([]string, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		s, err := typeName(n.NamedChild(i), src)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
