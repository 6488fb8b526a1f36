// Package ldgraph is a graph backend over a JSON-LD RDF dataset. It reads and
// writes JSON-LD and N-Quads through the json-gold processor.
package ldgraph

import (
	"fmt"
	"maps"
	"strings"

	"github.com/piprate/json-gold/ld"

	"github.com/geoknoesis/rdfbind/graph"
	"github.com/geoknoesis/rdfbind/rdf"
)

const defaultGraph = "@default"

// Backend creates dataset-backed graphs.
type Backend struct {
	// Base is the base IRI passed to the JSON-LD processor.
	Base string
}

// New returns the JSON-LD dataset backend.
func New() Backend { return Backend{} }

// Name returns "jsonld".
func (Backend) Name() string { return "jsonld" }

// NewGraph returns an empty graph.
func (Backend) NewGraph() graph.Graph { return NewGraph() }

// Graph keeps its triples as json-gold quads in the default graph of a dataset.
type Graph struct {
	dataset   *ld.RDFDataset
	index     map[string]int
	bySubject map[string][]int
	subjects  []rdf.Term
	prefixes  map[string]string
	labels    map[string]struct{}
	blanks    int
}

// NewGraph returns an empty dataset graph.
func NewGraph() *Graph {
	ds := ld.NewRDFDataset()
	ds.Graphs[defaultGraph] = []*ld.Quad{}
	return &Graph{
		dataset:   ds,
		index:     map[string]int{},
		bySubject: map[string][]int{},
		prefixes:  map[string]string{},
		labels:    map[string]struct{}{},
	}
}

// FromDataset loads every graph of ds into a single graph.
func FromDataset(ds *ld.RDFDataset) (*Graph, error) {
	g := NewGraph()
	for _, name := range datasetGraphNames(ds) {
		for _, q := range ds.Graphs[name] {
			if q == nil {
				continue
			}
			s, err := fromLD(q.Subject)
			if err != nil {
				return nil, err
			}
			p, err := fromLD(q.Predicate)
			if err != nil {
				return nil, err
			}
			o, err := fromLD(q.Object)
			if err != nil {
				return nil, err
			}
			pred, ok := p.(rdf.IRI)
			if !ok {
				return nil, fmt.Errorf("%w: predicate %v is not an IRI", graph.ErrInvalidTriple, p)
			}
			if err := g.Add(s, pred, o); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// Dataset exposes the underlying json-gold dataset.
func (g *Graph) Dataset() *ld.RDFDataset { return g.dataset }

func (g *Graph) quads() []*ld.Quad { return g.dataset.Graphs[defaultGraph] }

// NewNode returns a blank node whose label is not yet used in the graph.
func (g *Graph) NewNode() rdf.BlankNode {
	for {
		g.blanks++
		id := fmt.Sprintf("b%d", g.blanks)
		if _, taken := g.labels[id]; !taken {
			g.labels[id] = struct{}{}
			return rdf.BlankNode{ID: id}
		}
	}
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
	q := ld.NewQuad(toLD(s), toLD(p), toLD(o), defaultGraph)
	key := quadKey(q)
	if _, ok := g.index[key]; ok {
		return nil
	}
	g.noteLabels(s, o)
	pos := len(g.quads())
	g.dataset.Graphs[defaultGraph] = append(g.quads(), q)
	g.index[key] = pos
	sk := nodeKey(q.Subject)
	if _, seen := g.bySubject[sk]; !seen {
		g.subjects = append(g.subjects, s)
	}
	g.bySubject[sk] = append(g.bySubject[sk], pos)
	return nil
}

func (g *Graph) noteLabels(nodes ...graph.Node) {
	for _, n := range nodes {
		if b, ok := n.(rdf.BlankNode); ok {
			g.labels[b.ID] = struct{}{}
		}
	}
}

// Remove rebuilds the indexes; removal is rare compared to insertion.
func (g *Graph) Remove(t rdf.Triple) {
	if !rdf.IsResource(t.S) || t.O == nil {
		return
	}
	key := quadKey(ld.NewQuad(toLD(t.S), toLD(t.P), toLD(t.O), defaultGraph))
	pos, ok := g.index[key]
	if !ok {
		return
	}
	quads := g.quads()
	g.dataset.Graphs[defaultGraph] = append(quads[:pos:pos], quads[pos+1:]...)
	g.reindex()
}

func (g *Graph) reindex() {
	g.index = map[string]int{}
	g.bySubject = map[string][]int{}
	g.subjects = g.subjects[:0]
	for i, q := range g.quads() {
		g.index[quadKey(q)] = i
		sk := nodeKey(q.Subject)
		if _, seen := g.bySubject[sk]; !seen {
			s, _ := fromLD(q.Subject)
			g.subjects = append(g.subjects, s)
		}
		g.bySubject[sk] = append(g.bySubject[sk], i)
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
	var out []rdf.Triple
	visit := func(q *ld.Quad) {
		t, err := toTriple(q)
		if err != nil {
			return
		}
		if p != nil && t.P != *p {
			return
		}
		if o != nil && t.O != o {
			return
		}
		if s != nil && t.S != s {
			return
		}
		out = append(out, t)
	}
	if s != nil {
		if !rdf.IsResource(s) {
			return nil
		}
		for _, i := range g.bySubject[nodeKey(toLD(s))] {
			visit(g.quads()[i])
		}
		return out
	}
	for _, q := range g.quads() {
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
	matches := g.Match(s, &p, nil)
	if len(matches) == 0 {
		return nil, false
	}
	return matches[0].O, true
}

// Subjects returns every subject in first-seen order.
func (g *Graph) Subjects() []graph.Node {
	out := make([]graph.Node, len(g.subjects))
	copy(out, g.subjects)
	return out
}

// Len returns the number of quads in the default graph.
func (g *Graph) Len() int { return len(g.quads()) }

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

func toLD(term rdf.Term) ld.Node {
	switch v := term.(type) {
	case rdf.IRI:
		return ld.NewIRI(v.Value)
	case rdf.BlankNode:
		return ld.NewBlankNode("_:" + v.ID)
	case rdf.Literal:
		switch {
		case v.Lang != "":
			return ld.NewLiteral(v.Lexical, rdf.RDFLangString.Value, v.Lang)
		case v.Datatype.Value == "":
			return ld.NewLiteral(v.Lexical, rdf.XSDString.Value, "")
		default:
			return ld.NewLiteral(v.Lexical, v.Datatype.Value, "")
		}
	default:
		return nil
	}
}

func fromLD(node ld.Node) (rdf.Term, error) {
	switch v := node.(type) {
	case *ld.IRI:
		return rdf.IRI{Value: v.Value}, nil
	case ld.IRI:
		return rdf.IRI{Value: v.Value}, nil
	case *ld.BlankNode:
		return rdf.BlankNode{ID: strings.TrimPrefix(v.Attribute, "_:")}, nil
	case ld.BlankNode:
		return rdf.BlankNode{ID: strings.TrimPrefix(v.Attribute, "_:")}, nil
	case *ld.Literal:
		return literalFromLD(v.Value, v.Datatype, v.Language), nil
	case ld.Literal:
		return literalFromLD(v.Value, v.Datatype, v.Language), nil
	default:
		return nil, fmt.Errorf("ldgraph: unsupported node %T", node)
	}
}

func literalFromLD(value, datatype, language string) rdf.Literal {
	switch {
	case language != "":
		return rdf.NewLangLiteral(value, language)
	case datatype == "" || datatype == rdf.XSDString.Value:
		return rdf.NewPlainLiteral(value)
	default:
		return rdf.NewTypedLiteral(value, rdf.IRI{Value: datatype})
	}
}

func toTriple(q *ld.Quad) (rdf.Triple, error) {
	s, err := fromLD(q.Subject)
	if err != nil {
		return rdf.Triple{}, err
	}
	p, err := fromLD(q.Predicate)
	if err != nil {
		return rdf.Triple{}, err
	}
	o, err := fromLD(q.Object)
	if err != nil {
		return rdf.Triple{}, err
	}
	pred, _ := p.(rdf.IRI)
	return rdf.Triple{S: s, P: pred, O: o}, nil
}

func quadKey(q *ld.Quad) string {
	return strings.Join([]string{nodeKey(q.Subject), nodeKey(q.Predicate), nodeKey(q.Object)}, "|")
}

// nodeKey distinguishes node kinds so that an IRI and a literal with the same
// text never collide.
func nodeKey(node ld.Node) string {
	switch v := node.(type) {
	case *ld.Literal:
		return "L" + strings.Join([]string{v.Value, v.Datatype, v.Language}, "::")
	case ld.Literal:
		return "L" + strings.Join([]string{v.Value, v.Datatype, v.Language}, "::")
	case *ld.BlankNode:
		return "B" + v.Attribute
	case ld.BlankNode:
		return "B" + v.Attribute
	case nil:
		return ""
	default:
		return "I" + node.GetValue()
	}
}

func datasetGraphNames(ds *ld.RDFDataset) []string {
	names := make([]string, 0, len(ds.Graphs))
	if _, ok := ds.Graphs[defaultGraph]; ok {
		names = append(names, defaultGraph)
	}
	for name := range ds.Graphs {
		if name != defaultGraph {
			names = append(names, name)
		}
	}
	return names
}

var (
	_ graph.Backend = Backend{}
	_ graph.Graph   = (*Graph)(nil)
)
