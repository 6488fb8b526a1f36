// Package memgraph is an in-memory, indexed graph backend.
package memgraph

import (
	"context"
	"fmt"
	"io"
	"maps"

	"github.com/geoknoesis/rdfbind/graph"
	"github.com/geoknoesis/rdfbind/rdf"
)

// Backend creates in-memory graphs.
type Backend struct{}

// New returns the in-memory backend.
func New() Backend { return Backend{} }

// Name returns "mem".
func (Backend) Name() string { return "mem" }

// NewGraph returns an empty graph.
func (Backend) NewGraph() graph.Graph { return NewGraph() }

// Graph stores triples in insertion order with subject and object indexes.
type Graph struct {
	triples   []rdf.Triple
	live      []bool
	index     map[rdf.Triple]int
	bySubject map[rdf.Term][]int
	byObject  map[rdf.Term][]int
	subjects  []rdf.Term
	size      int
	prefixes  map[string]string
	blanks    int
}

// NewGraph returns an empty in-memory graph.
func NewGraph() *Graph {
	return &Graph{
		index:     map[rdf.Triple]int{},
		bySubject: map[rdf.Term][]int{},
		byObject:  map[rdf.Term][]int{},
		prefixes:  map[string]string{},
	}
}

// NewNode returns a blank node whose label is not yet used in the graph.
func (g *Graph) NewNode() rdf.BlankNode {
	for {
		g.blanks++
		b := rdf.BlankNode{ID: fmt.Sprintf("b%d", g.blanks)}
		if !g.mentions(b) {
			return b
		}
	}
}

func (g *Graph) mentions(n rdf.Term) bool {
	_, asSubject := g.bySubject[n]
	_, asObject := g.byObject[n]
	return asSubject || asObject
}

// NamedNode returns the IRI node for uri.
func (g *Graph) NamedNode(uri string) rdf.IRI { return rdf.IRI{Value: uri} }

// Predicate joins namespace and local into a predicate IRI.
func (g *Graph) Predicate(namespace, local string) rdf.IRI {
	return rdf.IRI{Value: namespace + local}
}

// Literal returns a plain string literal.
func (g *Graph) Literal(value string) rdf.Literal { return rdf.NewPlainLiteral(value) }

// TypedLiteral returns a literal with an explicit datatype.
func (g *Graph) TypedLiteral(value string, datatype rdf.IRI) rdf.Literal {
	return rdf.NewTypedLiteral(value, datatype)
}

// Add inserts a triple. Adding a triple already present is a no-op.
func (g *Graph) Add(s graph.Node, p rdf.IRI, o graph.Node) error {
	if err := graph.CheckTriple(s, p, o); err != nil {
		return err
	}
	t := rdf.Triple{S: s, P: p, O: o}
	if _, ok := g.index[t]; ok {
		return nil
	}
	pos := len(g.triples)
	g.triples = append(g.triples, t)
	g.live = append(g.live, true)
	g.index[t] = pos
	if _, seen := g.bySubject[s]; !seen {
		g.subjects = append(g.subjects, s)
	}
	g.bySubject[s] = append(g.bySubject[s], pos)
	g.byObject[o] = append(g.byObject[o], pos)
	g.size++
	return nil
}

// Remove deletes one triple if present.
func (g *Graph) Remove(t rdf.Triple) {
	pos, ok := g.index[t]
	if !ok {
		return
	}
	delete(g.index, t)
	g.live[pos] = false
	g.size--
	g.bySubject[t.S] = without(g.bySubject[t.S], pos)
	if len(g.bySubject[t.S]) == 0 {
		delete(g.bySubject, t.S)
		g.subjects = withoutTerm(g.subjects, t.S)
	}
	g.byObject[t.O] = without(g.byObject[t.O], pos)
	if len(g.byObject[t.O]) == 0 {
		delete(g.byObject, t.O)
	}
}

// RemoveAll deletes every triple with n as subject.
func (g *Graph) RemoveAll(n graph.Node) {
	for _, t := range g.Match(n, nil, nil) {
		g.Remove(t)
	}
}

// Match returns the triples matching the pattern; nil terms are wildcards.
func (g *Graph) Match(s graph.Node, p *rdf.IRI, o graph.Node) []rdf.Triple {
	var candidates []int
	switch {
	case s != nil:
		candidates = g.bySubject[s]
	case o != nil:
		candidates = g.byObject[o]
	default:
		out := make([]rdf.Triple, 0, g.size)
		for i, t := range g.triples {
			if g.live[i] && (p == nil || t.P == *p) {
				out = append(out, t)
			}
		}
		return out
	}
	var out []rdf.Triple
	for _, i := range candidates {
		t := g.triples[i]
		if p != nil && t.P != *p {
			continue
		}
		if o != nil && t.O != o {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Objects returns the objects of s under p in insertion order.
func (g *Graph) Objects(s graph.Node, p rdf.IRI) []graph.Node {
	var out []graph.Node
	for _, i := range g.bySubject[s] {
		if t := g.triples[i]; t.P == p {
			out = append(out, t.O)
		}
	}
	return out
}

// Object returns the first object of s under p.
func (g *Graph) Object(s graph.Node, p rdf.IRI) (graph.Node, bool) {
	for _, i := range g.bySubject[s] {
		if t := g.triples[i]; t.P == p {
			return t.O, true
		}
	}
	return nil, false
}

// Subjects returns every subject in first-seen order.
func (g *Graph) Subjects() []graph.Node {
	out := make([]graph.Node, len(g.subjects))
	copy(out, g.subjects)
	return out
}

// Len returns the number of triples.
func (g *Graph) Len() int { return g.size }

// Container builds an RDF list or Bag/Seq/Alt holding members.
func (g *Graph) Container(members []graph.Node, kind rdf.IRI) graph.Node {
	return graph.BuildContainer(g, members, kind)
}

// Reify adds an rdf:Statement node describing the triple.
func (g *Graph) Reify(s graph.Node, p rdf.IRI, o graph.Node) graph.Node {
	return graph.BuildReification(g, s, p, o)
}

// Reifications returns the statement nodes describing the triple.
func (g *Graph) Reifications(s graph.Node, p rdf.IRI, o graph.Node) []graph.Node {
	return graph.FindReifications(g, s, p, o)
}

// SetPrefix binds prefix to namespace, replacing any earlier binding.
func (g *Graph) SetPrefix(prefix, namespace string) { g.prefixes[prefix] = namespace }

// Prefix returns a prefix bound to namespace.
func (g *Graph) Prefix(namespace string) (string, bool) {
	for prefix, ns := range g.prefixes {
		if ns == namespace {
			return prefix, true
		}
	}
	return "", false
}

// Prefixes returns a copy of the prefix table.
func (g *Graph) Prefixes() map[string]string { return maps.Clone(g.prefixes) }

// Formats lists the syntaxes the backend reads.
func (Backend) Formats() []rdf.Format {
	return []rdf.Format{rdf.FormatNTriples, rdf.FormatNQuads}
}

// Encode writes any graph as N-Triples, N-Quads or Turtle.
func (Backend) Encode(w io.Writer, g graph.Graph, format rdf.Format) error {
	return rdf.WriteAll(w, format, g.Match(nil, nil, nil), rdf.OptPrefixes(g.Prefixes()))
}

// Decode reads N-Triples or N-Quads into a new graph.
func (Backend) Decode(ctx context.Context, r io.Reader, format rdf.Format) (graph.Graph, error) {
	triples, err := rdf.ReadAll(ctx, r, format)
	if err != nil {
		return nil, err
	}
	g := NewGraph()
	for _, t := range triples {
		if err := g.Add(t.S, t.P, t.O); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func without(positions []int, pos int) []int {
	for i, p := range positions {
		if p == pos {
			return append(positions[:i:i], positions[i+1:]...)
		}
	}
	return positions
}

func withoutTerm(terms []rdf.Term, term rdf.Term) []rdf.Term {
	for i, t := range terms {
		if t == term {
			return append(terms[:i:i], terms[i+1:]...)
		}
	}
	return terms
}

var (
	_ graph.Backend    = Backend{}
	_ graph.Serializer = Backend{}
	_ graph.Graph      = (*Graph)(nil)
)
