// Package resource holds the capability types a bound object can carry:
// an identifying URI, declared rdf:types and properties the shape does not
// declare.
package resource

import (
	"github.com/geoknoesis/rdfbind/rdf"
)

// URI is a reference to a named graph node. Properties of this type are
// emitted as links, never recursed into.
type URI string

// String returns the URI text.
func (u URI) String() string { return string(u) }

// IsAbsolute reports whether u carries a scheme.
func (u URI) IsAbsolute() bool { return rdf.IsAbsoluteIRI(string(u)) }

// XMLLiteral is a string emitted with the rdf:XMLLiteral datatype.
type XMLLiteral string

// Unparseable preserves a literal whose lexical form is invalid for its
// datatype. Marshalling it re-emits the raw form unchanged.
type Unparseable struct {
	Lexical  string
	Datatype string
}

func (u Unparseable) String() string { return u.Lexical }

// QName names an extended property. Prefix is informational; equality of
// properties is by Namespace+Local.
type QName struct {
	Namespace string
	Local     string
	Prefix    string
}

// NewQName splits uri into namespace and local name.
func NewQName(uri string) QName {
	ns, local := rdf.SplitIRI(uri)
	return QName{Namespace: ns, Local: local}
}

// URI returns the full predicate IRI.
func (q QName) URI() string { return q.Namespace + q.Local }

func (q QName) String() string {
	if q.Prefix != "" {
		return q.Prefix + ":" + q.Local
	}
	return "<" + q.URI() + ">"
}

// Identifiable is implemented by objects that expose an identifying URI.
// An empty URI marks an anonymous resource.
type Identifiable interface {
	ResourceURI() URI
	SetResourceURI(URI)
}

// Extensible is implemented by objects that keep undeclared properties and
// declared types.
type Extensible interface {
	Extensions() *Extended
}

// Base is a convenient embeddable implementing Identifiable and Extensible.
type Base struct {
	About URI
	Extended
}

// ResourceURI returns the subject URI; empty means a blank node.
func (b *Base) ResourceURI() URI { return b.About }

// SetResourceURI records the subject URI.
func (b *Base) SetResourceURI(u URI) { b.About = u }

// Reified carries a value together with statements made about the triple
// that carries it.
type Reified[T any] struct {
	Value T
	Extended
}

// NewReified wraps v with no annotations.
func NewReified[T any](v T) Reified[T] { return Reified[T]{Value: v} }

// Any is a resource of unknown shape. It is produced for nested nodes that
// no declared property covers, and marshalled like any extensible resource.
type Any struct {
	Base
}

// NewAny returns an Any named uri with the given types.
func NewAny(uri URI, types ...URI) *Any {
	a := &Any{}
	a.About = uri
	for _, t := range types {
		a.AddType(t)
	}
	return a
}

// Link is a reference to another resource with an optional label.
type Link struct {
	Target URI
	Label  string
}

var (
	_ Identifiable = (*Base)(nil)
	_ Extensible   = (*Base)(nil)
	_ Extensible   = (*Any)(nil)
)
