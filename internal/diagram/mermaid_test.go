package diagram

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdg-tools/jdg/internal/graph"
	"github.com/jdg-tools/jdg/internal/parser"
)

func sampleBatch() ([]*parser.ClassModel, []graph.Relationship) {
	shape := &parser.ClassModel{
		Name: "Shape",
		Kind: parser.KindInterface,
		Methods: []parser.Method{
			{Name: "area", ReturnType: "double", Parameters: []parser.Parameter{}},
		},
	}
	circle := &parser.ClassModel{
		Name:       "Circle",
		Kind:       parser.KindClass,
		Extends:    "Figure",
		Implements: []string{"Shape"},
		Fields: []parser.Field{
			{Name: "radius", Type: "double", Visibility: parser.VisibilityPrivate},
		},
		Methods: []parser.Method{
			{
				Name:       "scale",
				ReturnType: "Circle",
				Visibility: parser.VisibilityPublic,
				Parameters: []parser.Parameter{{Name: "factor", Type: "double"}, {Name: "round", Type: "boolean"}},
			},
		},
	}
	models := []*parser.ClassModel{shape, circle}
	return models, graph.Infer(models)
}

func TestRender(t *testing.T) {
	models, rels := sampleBatch()

	want := "classDiagram\n" +
		"class Shape {\n" +
		"    <<interface>>\n" +
		"         area: double()\n" +
		"    }\n" +
		"class Circle {\n" +
		"    \n" +
		"        - radius: double\n" +
		"        + scale: Circle(factor: double, round: boolean)\n" +
		"    }\n" +
		"    Circle <|-- Figure\n" +
		"    Circle <|-- Shape\n"

	assert.Equal(t, want, Render(models, rels, Options{}))
}

func TestRenderDirectionOnlyChangesDirective(t *testing.T) {
	models, rels := sampleBatch()

	horizontal := Render(models, rels, Options{})
	vertical := Render(models, rels, Options{Vertical: true})

	require.True(t, strings.HasPrefix(vertical, "classDiagram\n    direction LR\n"))
	assert.NotContains(t, horizontal, "direction")
	assert.Equal(t, horizontal, strings.Replace(vertical, "    direction LR\n", "", 1))
}

func TestRenderVisibilityGlyphs(t *testing.T) {
	m := &parser.ClassModel{
		Name: "Account",
		Kind: parser.KindClass,
		Fields: []parser.Field{
			{Name: "id", Type: "long", Visibility: parser.VisibilityPublic},
			{Name: "secret", Type: "String", Visibility: parser.VisibilityPrivate},
			{Name: "owner", Type: "User", Visibility: parser.VisibilityProtected},
			{Name: "notes", Type: "String"},
		},
	}

	out := Render([]*parser.ClassModel{m}, nil, Options{})

	assert.Contains(t, out,
		"        + id: long\n"+
			"        - secret: String\n"+
			"        # owner: User\n"+
			"         notes: String\n")
}

func TestRenderEmptyRecord(t *testing.T) {
	m := &parser.ClassModel{Name: "Empty", Kind: parser.KindRecord, Fields: []parser.Field{}}
	assert.Equal(t, "classDiagram\nclass Empty {\n    \n    }\n",
		Render([]*parser.ClassModel{m}, nil, Options{}))
}

func TestRenderExternalTarget(t *testing.T) {
	foo := &parser.ClassModel{Name: "Foo", Kind: parser.KindClass, Extends: "Bar"}
	models := []*parser.ClassModel{foo}

	out := Render(models, graph.Infer(models), Options{})

	assert.Contains(t, out, "    Foo <|-- Bar\n")
	assert.NotContains(t, out, "class Bar")
}

func TestRenderSelfAssociation(t *testing.T) {
	node := &parser.ClassModel{
		Name:   "Node",
		Kind:   parser.KindClass,
		Fields: []parser.Field{{Name: "next", Type: "Node", Visibility: parser.VisibilityPrivate}},
	}
	models := []*parser.ClassModel{node}

	out := Render(models, graph.Infer(models), Options{})

	assert.Equal(t, 1, strings.Count(out, "Node --> Node"))
}

func TestRenderStereotypes(t *testing.T) {
	models := []*parser.ClassModel{
		{Name: "Base", Kind: parser.KindAbstractClass},
		{Name: "Color", Kind: parser.KindEnum},
		{Name: "Point", Kind: parser.KindRecord},
		{Name: "Plain", Kind: parser.KindClass},
	}

	plain := Render(models, nil, Options{})
	assert.NotContains(t, plain, "<<abstract>>")
	assert.NotContains(t, plain, "<<enumeration>>")

	marked := Render(models, nil, Options{Stereotypes: true})
	assert.Contains(t, marked, "class Base {\n    <<abstract>>\n")
	assert.Contains(t, marked, "class Color {\n    <<enumeration>>\n")
	assert.Contains(t, marked, "class Point {\n    <<record>>\n")
	assert.Contains(t, marked, "class Plain {\n    \n")
}

func TestArrow(t *testing.T) {
	tests := map[graph.RelationKind]string{
		graph.RelExtends:     "<|--",
		graph.RelImplements:  "<|--",
		graph.RelAssociation: "-->",
		graph.RelComposition: "*--",
		graph.RelAggregation: "o--",
		"dependency":         "--",
	}
	for kind, want := range tests {
		assert.Equal(t, want, Arrow(kind), "kind %s", kind)
	}
}

func TestRenderDeterministic(t *testing.T) {
	models, rels := sampleBatch()
	assert.Equal(t, Render(models, rels, Options{}), Render(models, rels, Options{}))
}

func TestWriteJSON(t *testing.T) {
	models, rels := sampleBatch()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, models, rels, Options{}))

	var doc Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Classes, 2)
	assert.Equal(t, "Circle", doc.Classes[1].Name)
	assert.Equal(t, rels, doc.Relationships)
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil, nil))
	assert.JSONEq(t, `{"classes": [], "relationships": []}`, buf.String())
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatMermaid, f)

	f, err = ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("svg")
	assert.Error(t, err)
}
