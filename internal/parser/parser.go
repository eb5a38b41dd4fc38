// Package parser defines the normalized class model produced by the source
// parsers and consumed by relationship inference and diagram rendering.
package parser

import (
	"context"
	"errors"
	"slices"
)

// JavaExtension is the file extension of Java source files.
const JavaExtension = ".java"

// Kind is the closed set of declaration kinds a ClassModel can describe.
type Kind string

const (
	KindClass         Kind = "Class"
	KindAbstractClass Kind = "AbstractClass"
	KindInterface     Kind = "Interface"
	KindEnum          Kind = "Enum"
	KindRecord        Kind = "Record"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindClass, KindAbstractClass, KindInterface, KindEnum, KindRecord:
		return true
	}
	return false
}

// Visibility is a Java access modifier. The zero value is package-private.
type Visibility string

const (
	VisibilityPackage   Visibility = ""
	VisibilityPublic    Visibility = "public"
	VisibilityPrivate   Visibility = "private"
	VisibilityProtected Visibility = "protected"
)

// ParseVisibility maps a modifier keyword to a Visibility. Anything else is
// package-private.
func ParseVisibility(keyword string) Visibility {
	switch keyword {
	case "public":
		return VisibilityPublic
	case "private":
		return VisibilityPrivate
	case "protected":
		return VisibilityProtected
	}
	return VisibilityPackage
}

// Field is a field, enum constant or record component.
type Field struct {
	Name       string     `json:"name"`
	Type       string     `json:"type_name"`
	Visibility Visibility `json:"visibility"`
}

// Parameter is one formal parameter of a method.
type Parameter struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Method is a method declaration.
type Method struct {
	Name       string      `json:"name"`
	ReturnType string      `json:"return_type"`
	Visibility Visibility  `json:"visibility"`
	Parameters []Parameter `json:"parameters"`
}

// ClassModel is the structural record for one top-level type declaration.
type ClassModel struct {
	Name       string   `json:"name"`
	Package    string   `json:"package"`
	Kind       Kind     `json:"kind"`
	Fields     []Field  `json:"fields"`
	Methods    []Method `json:"methods"`
	Extends    string   `json:"extends,omitempty"`
	Implements []string `json:"implements"`
	FilePath   string   `json:"file_path,omitempty"`
}

// QualifiedName returns the package-qualified name of the class.
func (c *ClassModel) QualifiedName() string {
	if c.Package == "" {
		return c.Name
	}
	return c.Package + "." + c.Name
}

// Clone returns a deep copy of the model.
func (c *ClassModel) Clone() *ClassModel {
	if c == nil {
		return nil
	}
	out := *c
	out.Fields = slices.Clone(c.Fields)
	out.Implements = slices.Clone(c.Implements)
	out.Methods = slices.Clone(c.Methods)
	for i := range out.Methods {
		out.Methods[i].Parameters = slices.Clone(out.Methods[i].Parameters)
	}
	return &out
}

// Error kinds returned by parsers. Callers match them with errors.Is.
var (
	ErrIO                     = errors.New("read source")
	ErrDecode                 = errors.New("source text is not valid UTF-8")
	ErrNoDeclarationFound     = errors.New("no top-level type declaration found")
	ErrUnsupportedDeclaration = errors.New("unsupported declaration kind")
	ErrGrammarInit            = errors.New("grammar initialization failed")
)

// Parser turns the content of one source file into a ClassModel.
type Parser interface {
	// Extensions returns the file extensions this parser can handle.
	Extensions() []string

	// ParseFile extracts the first top-level declaration of content.
	ParseFile(ctx context.Context, filePath string, content []byte) (*ClassModel, error)
}
