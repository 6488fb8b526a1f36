// Package graph defines the capability interface the binding engine needs
// from a triple store, plus store-independent helpers built on it.
//
// A backend stores terms in its own native representation and hands out
// rdf terms as node handles. Handles are only meaningful for the graph that
// produced them.
package graph

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/geoknoesis/rdfbind/rdf"
)

// Node is a graph node handle: rdf.IRI, rdf.BlankNode or rdf.Literal.
type Node = rdf.Term

var (
	// ErrInvalidTriple is returned when a triple cannot be stored.
	ErrInvalidTriple = errors.New("graph: invalid triple")
	// ErrUnsupportedFormat is returned by serializers for formats they do not handle.
	ErrUnsupportedFormat = rdf.ErrUnsupportedFormat
)

// Backend creates graphs for one concrete store.
type Backend interface {
	Name() string
	NewGraph() Graph
}

// Graph is the set of primitive operations the engine runs against.
// Implementations keep set semantics and return triples in insertion order.
// A Graph is not safe for concurrent mutation.
type Graph interface {
	// NewNode creates a fresh blank node unique within the graph.
	NewNode() rdf.BlankNode
	// NamedNode returns the node for uri.
	NamedNode(uri string) rdf.IRI
	// Predicate returns the predicate namespace+local.
	Predicate(namespace, local string) rdf.IRI
	// Literal returns a plain literal.
	Literal(value string) rdf.Literal
	// TypedLiteral returns a literal with a datatype.
	TypedLiteral(value string, datatype rdf.IRI) rdf.Literal

	// Add stores (s, p, o). Adding an existing triple is a no-op.
	Add(s Node, p rdf.IRI, o Node) error
	// Remove deletes a triple if present.
	Remove(t rdf.Triple)
	// RemoveAll deletes every triple whose subject is n.
	RemoveAll(n Node)
	// Match returns triples matching the pattern; nil parts are wildcards.
	Match(s Node, p *rdf.IRI, o Node) []rdf.Triple
	// Objects lists the objects of (s, p).
	Objects(s Node, p rdf.IRI) []Node
	// Object returns the first object of (s, p).
	Object(s Node, p rdf.IRI) (Node, bool)
	// Subjects lists distinct subjects in first-seen order.
	Subjects() []Node
	// Len reports the number of triples.
	Len() int

	// Container encodes members as an rdf:List, rdf:Bag, rdf:Seq or rdf:Alt
	// and returns its head node.
	Container(members []Node, kind rdf.IRI) Node
	// Reify creates a statement node describing (s, p, o).
	Reify(s Node, p rdf.IRI, o Node) Node
	// Reifications lists statement nodes describing (s, p, o).
	Reifications(s Node, p rdf.IRI, o Node) []Node

	SetPrefix(prefix, namespace string)
	// Prefix returns the prefix bound to namespace.
	Prefix(namespace string) (string, bool)
	// Prefixes returns a copy of the prefix table.
	Prefixes() map[string]string
}

// Serializer is implemented by backends that can move graphs through a syntax.
type Serializer interface {
	// Formats lists the syntaxes Decode accepts. Encode accepts at least these.
	Formats() []rdf.Format
	Encode(w io.Writer, g Graph, format rdf.Format) error
	Decode(ctx context.Context, r io.Reader, format rdf.Format) (Graph, error)
}

// IsResource reports whether n is a named or blank node.
func IsResource(n Node) bool { return rdf.IsResource(n) }

// IsLiteral reports whether n is a literal.
func IsLiteral(n Node) bool {
	return n != nil && n.Kind() == rdf.TermLiteral
}

// IsURI reports whether n is a named node.
func IsURI(n Node) bool {
	return n != nil && n.Kind() == rdf.TermIRI
}

// IsBlank reports whether n is a blank node.
func IsBlank(n Node) bool {
	return n != nil && n.Kind() == rdf.TermBlankNode
}

// CheckTriple validates the shape of a triple before it is stored.
func CheckTriple(s Node, p rdf.IRI, o Node) error {
	if !IsResource(s) {
		return fmt.Errorf("%w: subject must be an IRI or blank node, got %v", ErrInvalidTriple, s)
	}
	if p.Value == "" {
		return fmt.Errorf("%w: empty predicate", ErrInvalidTriple)
	}
	if o == nil {
		return fmt.Errorf("%w: nil object", ErrInvalidTriple)
	}
	return nil
}

// SupportsFormat reports whether s decodes format.
func SupportsFormat(s Serializer, format rdf.Format) bool {
	for _, f := range s.Formats() {
		if f == format {
			return true
		}
	}
	return false
}
