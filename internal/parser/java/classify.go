package java

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jdg-tools/jdg/internal/parser"
)

// declarationTypes are the top-level node types the classifier accepts.
var declarationTypes = map[string]bool{
	"class_declaration":     true,
	"interface_declaration": true,
	"enum_declaration":      true,
	"record_declaration":    true,
}

// classify returns the first top-level type declaration of the file.
// Nested declarations are not considered.
func classify(root *sitter.Node) (*sitter.Node, error) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if declarationTypes[child.Type()] {
			return child, nil
		}
	}
	return nil, parser.ErrNoDeclarationFound
}

type extractFunc func(*extraction) (*parser.ClassModel, error)

func extractorFor(nodeType string) (extractFunc, error) {
	switch nodeType {
	case "class_declaration":
		return extractClass, nil
	case "interface_declaration":
		return extractInterface, nil
	case "enum_declaration":
		return extractEnum, nil
	case "record_declaration":
		return extractRecord, nil
	}
	return nil, fmt.Errorf("%w: %s", parser.ErrUnsupportedDeclaration, nodeType)
}
