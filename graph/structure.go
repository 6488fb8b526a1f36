package graph

import (
	"sort"

	"github.com/geoknoesis/rdfbind/rdf"
)

// BuildContainer writes the triples of a container or list into g.
// Backends use it to implement Graph.Container.
func BuildContainer(g Graph, members []Node, kind rdf.IRI) Node {
	if kind == rdf.RDFList {
		if len(members) == 0 {
			return rdf.RDFNil
		}
		cells := make([]rdf.BlankNode, len(members))
		for i := range cells {
			cells[i] = g.NewNode()
		}
		for i, m := range members {
			var rest Node = rdf.RDFNil
			if i+1 < len(cells) {
				rest = cells[i+1]
			}
			_ = g.Add(cells[i], rdf.RDFFirst, m)
			_ = g.Add(cells[i], rdf.RDFRest, rest)
		}
		return cells[0]
	}
	node := g.NewNode()
	_ = g.Add(node, rdf.RDFType, kind)
	for i, m := range members {
		_ = g.Add(node, rdf.ContainerMembership(i+1), m)
	}
	return node
}

// BuildReification writes the four statement triples for (s, p, o).
func BuildReification(g Graph, s Node, p rdf.IRI, o Node) Node {
	node := g.NewNode()
	_ = g.Add(node, rdf.RDFType, rdf.RDFStatement)
	_ = g.Add(node, rdf.RDFSubject, s)
	_ = g.Add(node, rdf.RDFPredicate, p)
	_ = g.Add(node, rdf.RDFObject, o)
	return node
}

// FindReifications returns nodes that state (s, p, o).
func FindReifications(g Graph, s Node, p rdf.IRI, o Node) []Node {
	subj := rdf.RDFSubject
	var out []Node
	for _, t := range g.Match(nil, &subj, s) {
		if pred, ok := g.Object(t.S, rdf.RDFPredicate); !ok || pred != p {
			continue
		}
		if obj, ok := g.Object(t.S, rdf.RDFObject); !ok || obj != o {
			continue
		}
		out = append(out, t.S)
	}
	return out
}

// ListMembers walks an rdf:first/rdf:rest chain starting at head. It reports
// false when head is not a well-formed, nil-terminated list.
func ListMembers(g Graph, head Node) ([]Node, bool) {
	if head == rdf.RDFNil {
		return []Node{}, true
	}
	var members []Node
	seen := map[Node]bool{}
	for cur := head; cur != rdf.RDFNil; {
		if !IsResource(cur) || seen[cur] {
			return nil, false
		}
		seen[cur] = true
		first, ok := g.Object(cur, rdf.RDFFirst)
		if !ok {
			return nil, false
		}
		rest, ok := g.Object(cur, rdf.RDFRest)
		if !ok {
			return nil, false
		}
		members = append(members, first)
		cur = rest
	}
	return members, true
}

// ContainerMembers returns the rdf:_n members of a node typed rdf:Bag,
// rdf:Seq or rdf:Alt, ordered by index, together with the container type.
func ContainerMembers(g Graph, node Node) ([]Node, rdf.IRI, bool) {
	if !IsResource(node) {
		return nil, rdf.IRI{}, false
	}
	var kind rdf.IRI
	for _, t := range g.Objects(node, rdf.RDFType) {
		if iri, ok := t.(rdf.IRI); ok && rdf.IsContainerType(iri) {
			kind = iri
			break
		}
	}
	if kind.Value == "" {
		return nil, rdf.IRI{}, false
	}
	type member struct {
		idx  int
		node Node
	}
	var found []member
	for _, t := range g.Match(node, nil, nil) {
		if n, ok := rdf.MembershipIndex(t.P); ok {
			found = append(found, member{idx: n, node: t.O})
		}
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].idx < found[j].idx })
	out := make([]Node, len(found))
	for i, m := range found {
		out[i] = m.node
	}
	return out, kind, true
}

// Roots returns subjects that never occur as the object of a triple.
func Roots(g Graph) []Node {
	var out []Node
	for _, s := range g.Subjects() {
		if len(g.Match(nil, nil, s)) == 0 {
			out = append(out, s)
		}
	}
	return out
}

// SubjectsOfType returns, in first-seen subject order, the subjects with an
// rdf:type among typeURIs. Each subject appears once.
func SubjectsOfType(g Graph, typeURIs ...string) []Node {
	if len(typeURIs) == 0 {
		return nil
	}
	want := make(map[string]bool, len(typeURIs))
	for _, uri := range typeURIs {
		want[uri] = true
	}
	var out []Node
	for _, s := range g.Subjects() {
		for _, typ := range g.Objects(s, rdf.RDFType) {
			if iri, ok := typ.(rdf.IRI); ok && want[iri.Value] {
				out = append(out, s)
				break
			}
		}
	}
	return out
}
