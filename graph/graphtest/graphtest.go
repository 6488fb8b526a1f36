// Package graphtest holds the conformance suite every graph backend runs.
package graphtest

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoknoesis/rdfbind/graph"
	"github.com/geoknoesis/rdfbind/rdf"
)

const ex = "http://example.org/ns#"

func iri(local string) rdf.IRI { return rdf.IRI{Value: ex + local} }

// Run exercises b against the graph capability contract.
func Run(t *testing.T, b graph.Backend) {
	t.Helper()
	t.Run("AddIsSetLike", func(t *testing.T) { testAddIsSetLike(t, b) })
	t.Run("RejectsLiteralSubject", func(t *testing.T) { testRejectsLiteralSubject(t, b) })
	t.Run("MatchPatterns", func(t *testing.T) { testMatchPatterns(t, b) })
	t.Run("RemoveAll", func(t *testing.T) { testRemoveAll(t, b) })
	t.Run("BlankNodesAreFresh", func(t *testing.T) { testBlankNodesAreFresh(t, b) })
	t.Run("ListContainer", func(t *testing.T) { testListContainer(t, b) })
	t.Run("SeqContainer", func(t *testing.T) { testSeqContainer(t, b) })
	t.Run("Reification", func(t *testing.T) { testReification(t, b) })
	t.Run("Prefixes", func(t *testing.T) { testPrefixes(t, b) })
	t.Run("Skolemize", func(t *testing.T) { testSkolemize(t, b) })
	t.Run("Roots", func(t *testing.T) { testRoots(t, b) })
	t.Run("SubjectsOfType", func(t *testing.T) { testSubjectsOfType(t, b) })
	if s, ok := b.(graph.Serializer); ok {
		t.Run("SerializerRoundTrip", func(t *testing.T) { testSerializerRoundTrip(t, b, s) })
	}
}

func testAddIsSetLike(t *testing.T, b graph.Backend) {
	g := b.NewGraph()
	require.NoError(t, g.Add(iri("a"), iri("p"), g.Literal("x")))
	require.NoError(t, g.Add(iri("a"), iri("p"), g.Literal("x")))
	require.NoError(t, g.Add(iri("a"), iri("p"), g.TypedLiteral("x", rdf.XSDInt)))
	assert.Equal(t, 2, g.Len())
}

func testRejectsLiteralSubject(t *testing.T, b graph.Backend) {
	g := b.NewGraph()
	err := g.Add(g.Literal("s"), iri("p"), iri("o"))
	assert.ErrorIs(t, err, graph.ErrInvalidTriple)
	assert.ErrorIs(t, g.Add(iri("s"), rdf.IRI{}, iri("o")), graph.ErrInvalidTriple)
}

func testMatchPatterns(t *testing.T, b graph.Backend) {
	g := b.NewGraph()
	a, c := iri("a"), iri("c")
	p, q := iri("p"), iri("q")
	require.NoError(t, g.Add(a, p, g.Literal("1")))
	require.NoError(t, g.Add(a, p, g.Literal("2")))
	require.NoError(t, g.Add(a, q, c))
	require.NoError(t, g.Add(c, p, a))

	assert.Equal(t, []graph.Node{g.Literal("1"), g.Literal("2")}, g.Objects(a, p))
	first, ok := g.Object(a, p)
	require.True(t, ok)
	assert.Equal(t, graph.Node(g.Literal("1")), first)
	_, ok = g.Object(c, q)
	assert.False(t, ok)

	assert.Len(t, g.Match(nil, &p, nil), 3)
	assert.Len(t, g.Match(nil, nil, c), 1)
	assert.Len(t, g.Match(a, nil, nil), 3)
	assert.Len(t, g.Match(nil, nil, nil), 4)
	assert.Equal(t, []graph.Node{a, c}, g.Subjects())
	assert.True(t, graph.IsURI(a))
	assert.True(t, graph.IsLiteral(g.Literal("1")))
	assert.False(t, graph.IsResource(g.Literal("1")))
}

func testRemoveAll(t *testing.T, b graph.Backend) {
	g := b.NewGraph()
	a, c := iri("a"), iri("c")
	require.NoError(t, g.Add(a, iri("p"), g.Literal("1")))
	require.NoError(t, g.Add(a, iri("q"), c))
	require.NoError(t, g.Add(c, iri("p"), a))
	g.RemoveAll(a)
	assert.Equal(t, 1, g.Len())
	assert.Empty(t, g.Match(a, nil, nil))
	assert.Equal(t, []graph.Node{c}, g.Subjects())
	g.Remove(rdf.Triple{S: c, P: iri("p"), O: a})
	assert.Equal(t, 0, g.Len())
}

func testBlankNodesAreFresh(t *testing.T, b graph.Backend) {
	g := b.NewGraph()
	seen := map[rdf.BlankNode]bool{}
	for range 20 {
		n := g.NewNode()
		assert.False(t, seen[n], "duplicate blank node %v", n)
		seen[n] = true
		require.NoError(t, g.Add(n, iri("p"), g.Literal("v")))
	}
}

func testListContainer(t *testing.T, b graph.Backend) {
	g := b.NewGraph()
	members := []graph.Node{g.Literal("x"), g.Literal("y"), g.Literal("z")}
	head := g.Container(members, rdf.RDFList)
	got, ok := graph.ListMembers(g, head)
	require.True(t, ok)
	assert.Equal(t, members, got)

	empty := g.Container(nil, rdf.RDFList)
	assert.Equal(t, graph.Node(rdf.RDFNil), empty)
	got, ok = graph.ListMembers(g, empty)
	require.True(t, ok)
	assert.Empty(t, got)
}

func testSeqContainer(t *testing.T, b graph.Backend) {
	g := b.NewGraph()
	members := []graph.Node{g.Literal("x"), g.Literal("y"), g.Literal("z")}
	for _, kind := range []rdf.IRI{rdf.RDFSeq, rdf.RDFBag, rdf.RDFAlt} {
		node := g.Container(members, kind)
		got, gotKind, ok := graph.ContainerMembers(g, node)
		require.True(t, ok)
		assert.Equal(t, kind, gotKind)
		assert.Equal(t, members, got)
	}
	_, _, ok := graph.ContainerMembers(g, iri("nothing"))
	assert.False(t, ok)
}

func testReification(t *testing.T, b graph.Backend) {
	g := b.NewGraph()
	s, p, o := iri("s"), iri("p"), g.Literal("o")
	require.NoError(t, g.Add(s, p, o))
	r := g.Reify(s, p, o)
	assert.Len(t, g.Match(r, nil, nil), 4)
	assert.Equal(t, []graph.Node{r}, g.Reifications(s, p, o))
	assert.Empty(t, g.Reifications(s, p, g.Literal("other")))
	g.RemoveAll(r)
	assert.Empty(t, g.Reifications(s, p, o))
	assert.Equal(t, 1, g.Len())
}

func testPrefixes(t *testing.T, b graph.Backend) {
	g := b.NewGraph()
	g.SetPrefix("ex", ex)
	prefix, ok := g.Prefix(ex)
	require.True(t, ok)
	assert.Equal(t, "ex", prefix)
	_, ok = g.Prefix("http://unbound/")
	assert.False(t, ok)
	prefixes := g.Prefixes()
	prefixes["other"] = "http://other/"
	assert.Len(t, g.Prefixes(), 1, "Prefixes must return a copy")
	assert.Equal(t, rdf.IRI{Value: ex + "local"}, g.Predicate(ex, "local"))
}

func testSkolemize(t *testing.T, b graph.Backend) {
	g := b.NewGraph()
	n := g.NewNode()
	require.NoError(t, g.Add(iri("a"), iri("p"), n))
	require.NoError(t, g.Add(n, iri("q"), g.Literal("v")))
	count, err := graph.Skolemize(g, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 2, g.Len())
	for _, tr := range g.Match(nil, nil, nil) {
		assert.False(t, graph.IsBlank(tr.S))
		assert.False(t, graph.IsBlank(tr.O))
	}
	obj, ok := g.Object(iri("a"), iri("p"))
	require.True(t, ok)
	assert.Equal(t, graph.Node(rdf.IRI{Value: graph.DefaultSkolemPrefix + n.ID}), obj)
}

func testRoots(t *testing.T, b graph.Backend) {
	g := b.NewGraph()
	child := g.NewNode()
	require.NoError(t, g.Add(iri("root"), iri("p"), child))
	require.NoError(t, g.Add(child, iri("p"), g.Literal("v")))
	assert.Equal(t, []graph.Node{iri("root")}, graph.Roots(g))
}

func testSubjectsOfType(t *testing.T, b graph.Backend) {
	g := b.NewGraph()
	require.NoError(t, g.Add(iri("a"), rdf.RDFType, iri("T")))
	require.NoError(t, g.Add(iri("b"), rdf.RDFType, iri("U")))
	require.NoError(t, g.Add(iri("c"), rdf.RDFType, iri("V")))
	require.NoError(t, g.Add(iri("a"), rdf.RDFType, iri("U")))

	assert.Equal(t, []graph.Node{iri("a"), iri("b")}, graph.SubjectsOfType(g, ex+"U", ex+"T"))
	assert.Empty(t, graph.SubjectsOfType(g, ex+"W"))
	assert.Empty(t, graph.SubjectsOfType(g))
}

func testSerializerRoundTrip(t *testing.T, b graph.Backend, s graph.Serializer) {
	for _, format := range s.Formats() {
		t.Run(string(format), func(t *testing.T) {
			g := b.NewGraph()
			g.SetPrefix("ex", ex)
			n := g.NewNode()
			require.NoError(t, g.Add(iri("a"), rdf.RDFType, iri("Thing")))
			require.NoError(t, g.Add(iri("a"), iri("name"), g.Literal("A \"quoted\"")))
			require.NoError(t, g.Add(iri("a"), iri("count"), g.TypedLiteral("3", rdf.XSDInt)))
			require.NoError(t, g.Add(iri("a"), iri("label"), rdf.NewLangLiteral("hallo", "de")))
			require.NoError(t, g.Add(iri("a"), iri("child"), n))
			require.NoError(t, g.Add(n, iri("name"), g.Literal("child")))

			var buf bytes.Buffer
			require.NoError(t, s.Encode(&buf, g, format))
			back, err := s.Decode(context.Background(), &buf, format)
			require.NoError(t, err)
			assert.Equal(t, g.Len(), back.Len())

			for _, tr := range g.Match(nil, nil, nil) {
				if graph.IsBlank(tr.S) || graph.IsBlank(tr.O) {
					continue
				}
				assert.NotEmpty(t, back.Match(tr.S, &tr.P, tr.O), "missing %v", tr)
			}
			child, ok := back.Object(iri("a"), iri("child"))
			require.True(t, ok)
			assert.True(t, graph.IsBlank(child))
			name, ok := back.Object(child, iri("name"))
			require.True(t, ok)
			assert.Equal(t, graph.Node(rdf.NewPlainLiteral("child")), name)
		})
	}
}
