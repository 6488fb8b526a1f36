package rdf

import "fmt"

// TermKind identifies RDF term types.
type TermKind uint8

const (
	// TermIRI represents an IRI term.
	TermIRI TermKind = iota
	// TermBlankNode represents a blank node term.
	TermBlankNode
	// TermLiteral represents a literal term.
	TermLiteral
)

func (k TermKind) String() string {
	switch k {
	case TermIRI:
		return "iri"
	case TermBlankNode:
		return "blank"
	case TermLiteral:
		return "literal"
	default:
		return fmt.Sprintf("TermKind(%d)", uint8(k))
	}
}

// Term is a value that can appear in RDF statements.
type Term interface {
	Kind() TermKind
	String() string
}

// IRI represents an RDF IRI.
type IRI struct {
	// Value is the IRI string value.
	Value string
}

// Kind returns TermIRI.
func (i IRI) Kind() TermKind { return TermIRI }

// String returns the IRI value.
func (i IRI) String() string { return i.Value }

// BlankNode represents an RDF blank node.
type BlankNode struct {
	// ID is the blank node identifier.
	ID string
}

// Kind returns TermBlankNode.
func (b BlankNode) Kind() TermKind { return TermBlankNode }

// String returns the blank node identifier prefixed with "_:".
func (b BlankNode) String() string { return "_:" + b.ID }

// Literal represents an RDF literal.
type Literal struct {
	// Lexical is the lexical form of the literal.
	Lexical string
	// Datatype is the datatype IRI, if any.
	Datatype IRI
	// Lang is the language tag, if any.
	Lang string
}

// Kind returns TermLiteral.
func (l Literal) Kind() TermKind { return TermLiteral }

// String returns a string representation of the literal.
func (l Literal) String() string {
	if l.Lang != "" {
		return fmt.Sprintf("%q@%s", l.Lexical, l.Lang)
	}
	if l.Datatype.Value != "" {
		return fmt.Sprintf("%q^^<%s>", l.Lexical, l.Datatype.Value)
	}
	return fmt.Sprintf("%q", l.Lexical)
}

// IsPlain reports whether the literal has neither a language tag nor a
// datatype other than xsd:string.
func (l Literal) IsPlain() bool {
	return l.Lang == "" && (l.Datatype.Value == "" || l.Datatype == XSDString)
}

// Triple is an RDF triple.
type Triple struct {
	// S is the subject.
	S Term
	// P is the predicate.
	P IRI
	// O is the object.
	O Term
}

// String renders the triple in N-Triples form without the trailing dot.
func (t Triple) String() string {
	return renderTerm(t.S) + " " + renderIRI(t.P) + " " + renderTerm(t.O)
}

// IsResource reports whether term is an IRI or a blank node.
func IsResource(term Term) bool {
	if term == nil {
		return false
	}
	k := term.Kind()
	return k == TermIRI || k == TermBlankNode
}

// NewPlainLiteral returns an untyped literal.
func NewPlainLiteral(value string) Literal {
	return Literal{Lexical: value}
}

// NewTypedLiteral returns a literal typed with datatype.
func NewTypedLiteral(value string, datatype IRI) Literal {
	return Literal{Lexical: value, Datatype: datatype}
}

// NewLangLiteral returns a language-tagged literal.
func NewLangLiteral(value, lang string) Literal {
	return Literal{Lexical: value, Lang: lang}
}
