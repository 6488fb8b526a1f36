// Package bind maps shaped Go objects to RDF graphs and back.
//
// A Marshaller walks an object graph and writes it into a fresh graph
// created by a graph.Backend: one node per object instance, an rdf:type
// triple from the object's shape, one triple (or RDF list or container) per
// property value, reification nodes for annotated values and the object's
// extended properties. Cycles terminate through a per-call visited map.
//
// An Unmarshaller does the reverse: it picks candidate subjects by type (or,
// in loose mode, every typed root), resolves the most concrete registered
// type for each from its rdf:type values and populates it, recording
// undeclared predicates in the object's extended property bag.
//
//	m := bind.NewMarshaller(memgraph.New(), reg)
//	g, err := m.Marshal([]any{alice}, nil)
//	...
//	people, err := bind.UnmarshalAll[*Person](bind.NewUnmarshaller(reg), g)
//
// Failures are reported as *Error values classified by ErrorCode; values the
// marshaller cannot dispatch are logged and skipped.
package bind
