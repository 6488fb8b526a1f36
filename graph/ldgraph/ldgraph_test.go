package ldgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoknoesis/rdfbind/graph"
	"github.com/geoknoesis/rdfbind/graph/graphtest"
	"github.com/geoknoesis/rdfbind/graph/memgraph"
	"github.com/geoknoesis/rdfbind/rdf"
)

func TestConformance(t *testing.T) {
	graphtest.Run(t, New())
}

func TestDatasetMirrorsGraph(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Add(rdf.IRI{Value: "http://example.org/a"}, rdf.IRI{Value: "http://example.org/p"}, rdf.NewLangLiteral("x", "en")))
	quads := g.Dataset().Graphs["@default"]
	require.Len(t, quads, 1)
	assert.Equal(t, "x", quads[0].Object.GetValue())
}

func TestDecodeJSONLDKeepsContextPrefixes(t *testing.T) {
	doc := `{
  "@context": {"ex": "http://example.org/"},
  "@id": "ex:a",
  "@type": "ex:T",
  "ex:name": "A"
}`
	g, err := New().Decode(context.Background(), strings.NewReader(doc), rdf.FormatJSONLD)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())
	prefix, ok := g.Prefix("http://example.org/")
	require.True(t, ok)
	assert.Equal(t, "ex", prefix)
	name, ok := g.Object(rdf.IRI{Value: "http://example.org/a"}, rdf.IRI{Value: "http://example.org/name"})
	require.True(t, ok)
	assert.Equal(t, graph.Node(rdf.NewPlainLiteral("A")), name)
}

func TestEncodeForeignGraph(t *testing.T) {
	g := memgraph.NewGraph()
	g.SetPrefix("ex", "http://example.org/")
	require.NoError(t, g.Add(rdf.IRI{Value: "http://example.org/a"}, rdf.IRI{Value: "http://example.org/name"}, rdf.NewPlainLiteral("A")))
	var buf bytes.Buffer
	require.NoError(t, New().Encode(&buf, g, rdf.FormatJSONLD))
	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "ex:a", doc["@id"])
	assert.Equal(t, "A", doc["ex:name"])
}
