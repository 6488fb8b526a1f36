// Package quadgraph is a graph backend storing cayley quad values. Blank
// nodes get random labels so graphs can be merged without relabelling.
package quadgraph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"strings"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/nquads"
	"github.com/google/uuid"

	"github.com/geoknoesis/rdfbind/graph"
	"github.com/geoknoesis/rdfbind/rdf"
)

// Backend creates quad-value graphs.
type Backend struct {
	// Label, when set, is written as the graph label of every quad.
	Label string
}

// New returns the quad backend.
func New() Backend { return Backend{} }

// Name returns "quad".
func (Backend) Name() string { return "quad" }

// NewGraph returns an empty graph.
func (Backend) NewGraph() graph.Graph { return NewGraph() }

// Graph holds quads in the default graph.
type Graph struct {
	quads     []quad.Quad
	index     map[quad.Quad]int
	bySubject map[quad.Value][]int
	subjects  []quad.Value
	prefixes  map[string]string
}

// NewGraph returns an empty quad graph.
func NewGraph() *Graph {
	return &Graph{
		index:     map[quad.Quad]int{},
		bySubject: map[quad.Value][]int{},
		prefixes:  map[string]string{},
	}
}

// Quads returns the stored quads in insertion order.
func (g *Graph) Quads() []quad.Quad {
	out := make([]quad.Quad, len(g.quads))
	copy(out, g.quads)
	return out
}

// NewNode returns a blank node labelled with a random UUID.
func (g *Graph) NewNode() rdf.BlankNode {
	return rdf.BlankNode{ID: "u" + strings.ReplaceAll(uuid.NewString(), "-", "")}
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
	q := quad.Quad{Subject: toValue(s), Predicate: quad.IRI(p.Value), Object: toValue(o)}
	if _, ok := g.index[q]; ok {
		return nil
	}
	pos := len(g.quads)
	g.quads = append(g.quads, q)
	g.index[q] = pos
	if _, seen := g.bySubject[q.Subject]; !seen {
		g.subjects = append(g.subjects, q.Subject)
	}
	g.bySubject[q.Subject] = append(g.bySubject[q.Subject], pos)
	return nil
}

// Remove deletes one triple if present.
func (g *Graph) Remove(t rdf.Triple) {
	if !rdf.IsResource(t.S) || t.O == nil {
		return
	}
	q := quad.Quad{Subject: toValue(t.S), Predicate: quad.IRI(t.P.Value), Object: toValue(t.O)}
	pos, ok := g.index[q]
	if !ok {
		return
	}
	g.quads = append(g.quads[:pos:pos], g.quads[pos+1:]...)
	g.index = make(map[quad.Quad]int, len(g.quads))
	g.bySubject = map[quad.Value][]int{}
	g.subjects = g.subjects[:0]
	for i, q := range g.quads {
		g.index[q] = i
		if _, seen := g.bySubject[q.Subject]; !seen {
			g.subjects = append(g.subjects, q.Subject)
		}
		g.bySubject[q.Subject] = append(g.bySubject[q.Subject], i)
	}
}

// RemoveAll deletes every triple with n as subject.
func (g *Graph) RemoveAll(n graph.Node) {
	for _, t := range g.Match(n, nil, nil) {
		g.Remove(t)
	}
}

// Match scans the quads for the pattern; nil terms are wildcards.
func (g *Graph) Match(s graph.Node, p *rdf.IRI, o graph.Node) []rdf.Triple {
	var pv, ov quad.Value
	if p != nil {
		pv = quad.IRI(p.Value)
	}
	if o != nil {
		ov = toValue(o)
	}
	var out []rdf.Triple
	visit := func(q quad.Quad) {
		if pv != nil && q.Predicate != pv {
			return
		}
		if ov != nil && q.Object != ov {
			return
		}
		out = append(out, toTriple(q))
	}
	if s != nil {
		for _, i := range g.bySubject[toValue(s)] {
			visit(g.quads[i])
		}
		return out
	}
	for _, q := range g.quads {
		visit(q)
	}
	return out
}

// Objects returns the objects of s under p in insertion order.
func (g *Graph) Objects(s graph.Node, p rdf.IRI) []graph.Node {
	var out []graph.Node
	for _, t := range g.Match(s, &p, nil) {
		out = append(out, t.O)
	}
	return out
}

// Object returns the first object of s under p.
func (g *Graph) Object(s graph.Node, p rdf.IRI) (graph.Node, bool) {
	pv := quad.IRI(p.Value)
	for _, i := range g.bySubject[toValue(s)] {
		if q := g.quads[i]; q.Predicate == pv {
			return fromValue(q.Object), true
		}
	}
	return nil, false
}

// Subjects returns every subject in first-seen order.
func (g *Graph) Subjects() []graph.Node {
	out := make([]graph.Node, len(g.subjects))
	for i, v := range g.subjects {
		out[i] = fromValue(v)
	}
	return out
}

// Len returns the number of triples.
func (g *Graph) Len() int { return len(g.quads) }

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
	return []rdf.Format{rdf.FormatNQuads, rdf.FormatNTriples}
}

// Encode writes g as N-Quads.
func (b Backend) Encode(w io.Writer, g graph.Graph, format rdf.Format) error {
	if format != rdf.FormatNQuads && format != rdf.FormatNTriples {
		return fmt.Errorf("%w: quadgraph cannot write %q", graph.ErrUnsupportedFormat, format)
	}
	qw := nquads.NewWriter(w)
	for _, t := range g.Match(nil, nil, nil) {
		q := quad.Quad{Subject: toValue(t.S), Predicate: quad.IRI(t.P.Value), Object: toValue(t.O)}
		if b.Label != "" && format == rdf.FormatNQuads {
			q.Label = quad.IRI(b.Label)
		}
		if err := qw.WriteQuad(q); err != nil {
			return err
		}
	}
	return qw.Close()
}

// Decode reads N-Quads; labels are dropped.
func (Backend) Decode(ctx context.Context, r io.Reader, format rdf.Format) (graph.Graph, error) {
	if format != rdf.FormatNQuads && format != rdf.FormatNTriples {
		return nil, fmt.Errorf("%w: quadgraph cannot read %q", graph.ErrUnsupportedFormat, format)
	}
	g := NewGraph()
	qr := nquads.NewReader(r, true)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		q, err := qr.ReadQuad()
		if errors.Is(err, io.EOF) {
			return g, nil
		}
		if err != nil {
			return nil, fmt.Errorf("quadgraph: %w", err)
		}
		t := toTriple(q)
		if err := g.Add(t.S, t.P, t.O); err != nil {
			return nil, err
		}
	}
}

func toValue(term rdf.Term) quad.Value {
	switch v := term.(type) {
	case rdf.IRI:
		return quad.IRI(v.Value)
	case rdf.BlankNode:
		return quad.BNode(v.ID)
	case rdf.Literal:
		switch {
		case v.Lang != "":
			return quad.LangString{Value: quad.String(v.Lexical), Lang: v.Lang}
		case v.Datatype.Value == "" || v.Datatype == rdf.XSDString:
			return quad.String(v.Lexical)
		default:
			return quad.TypedString{Value: quad.String(v.Lexical), Type: quad.IRI(v.Datatype.Value)}
		}
	default:
		return nil
	}
}

func fromValue(v quad.Value) rdf.Term {
	switch x := v.(type) {
	case quad.IRI:
		return rdf.IRI{Value: string(x)}
	case quad.BNode:
		return rdf.BlankNode{ID: string(x)}
	case quad.String:
		return rdf.NewPlainLiteral(string(x))
	case quad.LangString:
		return rdf.NewLangLiteral(string(x.Value), x.Lang)
	case quad.TypedString:
		if string(x.Type) == rdf.XSDString.Value {
			return rdf.NewPlainLiteral(string(x.Value))
		}
		return rdf.NewTypedLiteral(string(x.Value), rdf.IRI{Value: string(x.Type)})
	case nil:
		return nil
	default:
		return rdf.NewPlainLiteral(v.String())
	}
}

func toTriple(q quad.Quad) rdf.Triple {
	p, _ := q.Predicate.(quad.IRI)
	return rdf.Triple{S: fromValue(q.Subject), P: rdf.IRI{Value: string(p)}, O: fromValue(q.Object)}
}

var (
	_ graph.Backend    = Backend{}
	_ graph.Serializer = Backend{}
	_ graph.Graph      = (*Graph)(nil)
)
