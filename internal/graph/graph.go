// Package graph infers the relationships drawn between classes of one batch.
package graph

import "github.com/jdg-tools/jdg/internal/parser"

// Infer derives relationships from models in three passes: every extends,
// then every implements, then associations. A field whose declared type is
// exactly the name of a model in the batch yields an association, including
// a field referring to its own class. Duplicates are kept.
func Infer(models []*parser.ClassModel) []Relationship {
	var rels []Relationship

	for _, m := range models {
		if m.Extends != "" {
			rels = append(rels, Relationship{From: m.Name, To: m.Extends, Kind: RelExtends})
		}
	}

	for _, m := range models {
		for _, iface := range m.Implements {
			rels = append(rels, Relationship{From: m.Name, To: iface, Kind: RelImplements})
		}
	}

	names := make(map[string]bool, len(models))
	for _, m := range models {
		names[m.Name] = true
	}
	for _, m := range models {
		for _, f := range m.Fields {
			if f.Type != "" && names[f.Type] {
				rels = append(rels, Relationship{From: m.Name, To: f.Type, Kind: RelAssociation})
			}
		}
	}

	return rels
}
