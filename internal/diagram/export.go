package diagram

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jdg-tools/jdg/internal/graph"
	"github.com/jdg-tools/jdg/internal/parser"
)

// Format selects the output representation of a diagram.
type Format string

const (
	FormatMermaid Format = "mermaid"
	FormatJSON    Format = "json"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatMermaid, "":
		return FormatMermaid, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown diagram format %q (want mermaid or json)", s)
}

// Document is the serializable diagram model.
type Document struct {
	Classes       []*parser.ClassModel `json:"classes"`
	Relationships []graph.Relationship `json:"relationships"`
}

// NewDocument builds a Document with non-nil slices.
func NewDocument(models []*parser.ClassModel, rels []graph.Relationship) *Document {
	d := &Document{Classes: models, Relationships: rels}
	if d.Classes == nil {
		d.Classes = []*parser.ClassModel{}
	}
	if d.Relationships == nil {
		d.Relationships = []graph.Relationship{}
	}
	return d
}

// WriteJSON writes the diagram model as indented JSON.
func WriteJSON(w io.Writer, models []*parser.ClassModel, rels []graph.Relationship) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(models, rels)); err != nil {
		return fmt.Errorf("encode diagram: %w", err)
	}
	return nil
}

// Write renders the diagram in the requested format.
func Write(w io.Writer, format Format, models []*parser.ClassModel, rels []graph.Relationship, opts Options) error {
	if format == FormatJSON {
		return WriteJSON(w, models, rels)
	}
	_, err := io.WriteString(w, Render(models, rels, opts))
	return err
}
