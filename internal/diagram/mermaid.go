// Package diagram renders class models and their relationships.
package diagram

import (
	"fmt"
	"strings"

	"github.com/jdg-tools/jdg/internal/graph"
	"github.com/jdg-tools/jdg/internal/parser"
)

// Options controls rendering.
type Options struct {
	// Vertical adds the `direction LR` directive after the header.
	Vertical bool
	// Stereotypes marks abstract classes, enums and records in addition to
	// interfaces.
	Stereotypes bool
}

// Render produces a Mermaid classDiagram. Classes appear in model order and
// relationships in the order given. Render is a pure function of its inputs.
func Render(models []*parser.ClassModel, rels []graph.Relationship, opts Options) string {
	var sb strings.Builder
	sb.WriteString("classDiagram\n")
	if opts.Vertical {
		sb.WriteString("    direction LR\n")
	}

	for _, m := range models {
		writeClass(&sb, m, opts)
	}

	for _, r := range rels {
		fmt.Fprintf(&sb, "    %s %s %s\n", r.From, Arrow(r.Kind), r.To)
	}

	return sb.String()
}

func writeClass(sb *strings.Builder, m *parser.ClassModel, opts Options) {
	fmt.Fprintf(sb, "class %s {\n", m.Name)
	fmt.Fprintf(sb, "    %s\n", stereotype(m.Kind, opts.Stereotypes))

	for _, f := range m.Fields {
		fmt.Fprintf(sb, "        %s %s: %s\n", Glyph(f.Visibility), f.Name, f.Type)
	}

	for _, meth := range m.Methods {
		params := make([]string, len(meth.Parameters))
		for i, p := range meth.Parameters {
			params[i] = p.Name + ": " + p.Type
		}
		fmt.Fprintf(sb, "        %s %s: %s(%s)\n",
			Glyph(meth.Visibility), meth.Name, meth.ReturnType, strings.Join(params, ", "))
	}

	sb.WriteString("    }\n")
}

// stereotype returns the marker text for the line following the class
// header. Kinds without a marker leave the line blank.
func stereotype(kind parser.Kind, all bool) string {
	if kind == parser.KindInterface {
		return "<<interface>>"
	}
	if !all {
		return ""
	}
	switch kind {
	case parser.KindAbstractClass:
		return "<<abstract>>"
	case parser.KindEnum:
		return "<<enumeration>>"
	case parser.KindRecord:
		return "<<record>>"
	}
	return ""
}

// Glyph returns the Mermaid visibility marker.
func Glyph(v parser.Visibility) string {
	switch v {
	case parser.VisibilityPublic:
		return "+"
	case parser.VisibilityPrivate:
		return "-"
	case parser.VisibilityProtected:
		return "#"
	}
	return ""
}

// Arrow returns the Mermaid edge notation for a relationship kind.
func Arrow(kind graph.RelationKind) string {
	switch kind {
	case graph.RelExtends, graph.RelImplements:
		return "<|--"
	case graph.RelAssociation:
		return "-->"
	case graph.RelComposition:
		return "*--"
	case graph.RelAggregation:
		return "o--"
	}
	return "--"
}
