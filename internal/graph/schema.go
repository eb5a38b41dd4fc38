package graph

import "github.com/jdg-tools/jdg/internal/parser"

// RelationKind is the kind of edge between two classes in the diagram.
type RelationKind string

const (
	RelExtends     RelationKind = "extends"
	RelImplements  RelationKind = "implements"
	RelAssociation RelationKind = "association"
	RelComposition RelationKind = "composition"
	RelAggregation RelationKind = "aggregation"
)

// Relationship is a directed edge between two class names. To may name a
// type outside the batch.
type Relationship struct {
	From string       `json:"from"`
	To   string       `json:"to"`
	Kind RelationKind `json:"kind"`
}

// Stats holds aggregate counts for one batch.
type Stats struct {
	ClassCount          int                  `json:"class_count"`
	RelationshipCount   int                  `json:"relationship_count"`
	ClassesByKind       map[parser.Kind]int  `json:"classes_by_kind"`
	RelationshipsByKind map[RelationKind]int `json:"relationships_by_kind"`
	ExternalTargets     []string             `json:"external_targets,omitempty"`
}

// ComputeStats summarizes models and the relationships inferred from them.
// External targets are listed once each, in first-seen order.
func ComputeStats(models []*parser.ClassModel, rels []Relationship) *Stats {
	s := &Stats{
		ClassCount:          len(models),
		RelationshipCount:   len(rels),
		ClassesByKind:       make(map[parser.Kind]int),
		RelationshipsByKind: make(map[RelationKind]int),
	}
	known := make(map[string]bool, len(models))
	for _, m := range models {
		s.ClassesByKind[m.Kind]++
		known[m.Name] = true
	}
	seen := make(map[string]bool)
	for _, r := range rels {
		s.RelationshipsByKind[r.Kind]++
		if !known[r.To] && !seen[r.To] {
			seen[r.To] = true
			s.ExternalTargets = append(s.ExternalTargets, r.To)
		}
	}
	return s
}
