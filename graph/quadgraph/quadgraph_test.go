package quadgraph

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoknoesis/rdfbind/graph"
	"github.com/geoknoesis/rdfbind/graph/graphtest"
	"github.com/geoknoesis/rdfbind/rdf"
)

func TestConformance(t *testing.T) {
	graphtest.Run(t, New())
}

func TestValuesUseCayleyTypes(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Add(rdf.IRI{Value: "http://example.org/a"}, rdf.IRI{Value: "http://example.org/n"}, rdf.NewTypedLiteral("1", rdf.XSDInt)))
	quads := g.Quads()
	require.Len(t, quads, 1)
	assert.Equal(t, quad.IRI("http://example.org/a"), quads[0].Subject)
	assert.Equal(t, quad.TypedString{Value: "1", Type: quad.IRI(rdf.XSDInt.Value)}, quads[0].Object)
}

func TestEncodeWithLabel(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Add(rdf.IRI{Value: "http://example.org/a"}, rdf.RDFType, rdf.IRI{Value: "http://example.org/T"}))
	var buf bytes.Buffer
	require.NoError(t, Backend{Label: "http://example.org/g"}.Encode(&buf, g, rdf.FormatNQuads))
	assert.Contains(t, buf.String(), "<http://example.org/g>")

	back, err := New().Decode(context.Background(), strings.NewReader(buf.String()), rdf.FormatNQuads)
	require.NoError(t, err)
	assert.Equal(t, 1, back.Len())
	assert.True(t, graph.IsURI(back.Subjects()[0]))
}
