package graph

import "github.com/geoknoesis/rdfbind/rdf"

// DefaultSkolemPrefix is used when Skolemize is given no naming function.
const DefaultSkolemPrefix = "urn:skolem:"

// Copy adds every triple and prefix of src to dst. Blank nodes are
// relabelled with nodes minted by dst.
func Copy(dst, src Graph) error {
	blanks := map[rdf.BlankNode]rdf.BlankNode{}
	mapNode := func(n Node) Node {
		b, ok := n.(rdf.BlankNode)
		if !ok {
			return n
		}
		if mapped, ok := blanks[b]; ok {
			return mapped
		}
		mapped := dst.NewNode()
		blanks[b] = mapped
		return mapped
	}
	for _, t := range src.Match(nil, nil, nil) {
		if err := dst.Add(mapNode(t.S), t.P, mapNode(t.O)); err != nil {
			return err
		}
	}
	for prefix, ns := range src.Prefixes() {
		dst.SetPrefix(prefix, ns)
	}
	return nil
}

// Skolemize replaces every blank node in g with a named node. name maps a
// blank label to an IRI; nil uses DefaultSkolemPrefix+label.
func Skolemize(g Graph, name func(label string) string) (int, error) {
	if name == nil {
		name = func(label string) string { return DefaultSkolemPrefix + label }
	}
	renamed := map[rdf.BlankNode]rdf.IRI{}
	rename := func(n Node) (Node, bool) {
		b, ok := n.(rdf.BlankNode)
		if !ok {
			return n, false
		}
		iri, ok := renamed[b]
		if !ok {
			iri = g.NamedNode(name(b.ID))
			renamed[b] = iri
		}
		return iri, true
	}
	for _, t := range g.Match(nil, nil, nil) {
		s, sChanged := rename(t.S)
		o, oChanged := rename(t.O)
		if !sChanged && !oChanged {
			continue
		}
		g.Remove(t)
		if err := g.Add(s, t.P, o); err != nil {
			return len(renamed), err
		}
	}
	return len(renamed), nil
}
