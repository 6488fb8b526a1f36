package rdf

import (
	"strconv"
	"strings"
)

// Namespaces of the fixed vocabularies produced and consumed by the engine.
const (
	RDFNamespace  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace = "http://www.w3.org/2000/01/rdf-schema#"
	XSDNamespace  = "http://www.w3.org/2001/XMLSchema#"
	OSLCNamespace = "http://open-services.net/ns/core#"
)

// RDF vocabulary.
var (
	RDFType       = IRI{Value: RDFNamespace + "type"}
	RDFFirst      = IRI{Value: RDFNamespace + "first"}
	RDFRest       = IRI{Value: RDFNamespace + "rest"}
	RDFNil        = IRI{Value: RDFNamespace + "nil"}
	RDFList       = IRI{Value: RDFNamespace + "List"}
	RDFBag        = IRI{Value: RDFNamespace + "Bag"}
	RDFSeq        = IRI{Value: RDFNamespace + "Seq"}
	RDFAlt        = IRI{Value: RDFNamespace + "Alt"}
	RDFStatement  = IRI{Value: RDFNamespace + "Statement"}
	RDFSubject    = IRI{Value: RDFNamespace + "subject"}
	RDFPredicate  = IRI{Value: RDFNamespace + "predicate"}
	RDFObject     = IRI{Value: RDFNamespace + "object"}
	RDFXMLLiteral = IRI{Value: RDFNamespace + "XMLLiteral"}
	RDFLangString = IRI{Value: RDFNamespace + "langString"}
)

// RDFS vocabulary.
var (
	RDFSContainer = IRI{Value: RDFSNamespace + "Container"}
	RDFSMember    = IRI{Value: RDFSNamespace + "member"}
)

// XML Schema datatypes.
var (
	XSDString             = IRI{Value: XSDNamespace + "string"}
	XSDBoolean            = IRI{Value: XSDNamespace + "boolean"}
	XSDInteger            = IRI{Value: XSDNamespace + "integer"}
	XSDLong               = IRI{Value: XSDNamespace + "long"}
	XSDInt                = IRI{Value: XSDNamespace + "int"}
	XSDShort              = IRI{Value: XSDNamespace + "short"}
	XSDByte               = IRI{Value: XSDNamespace + "byte"}
	XSDNonNegativeInteger = IRI{Value: XSDNamespace + "nonNegativeInteger"}
	XSDUnsignedLong       = IRI{Value: XSDNamespace + "unsignedLong"}
	XSDUnsignedInt        = IRI{Value: XSDNamespace + "unsignedInt"}
	XSDUnsignedShort      = IRI{Value: XSDNamespace + "unsignedShort"}
	XSDUnsignedByte       = IRI{Value: XSDNamespace + "unsignedByte"}
	XSDDecimal            = IRI{Value: XSDNamespace + "decimal"}
	XSDFloat              = IRI{Value: XSDNamespace + "float"}
	XSDDouble             = IRI{Value: XSDNamespace + "double"}
	XSDDateTime           = IRI{Value: XSDNamespace + "dateTime"}
	XSDDate               = IRI{Value: XSDNamespace + "date"}
)

// OSLC core vocabulary used for result containers.
var (
	OSLCResponseInfo = IRI{Value: OSLCNamespace + "ResponseInfo"}
	OSLCTotalCount   = IRI{Value: OSLCNamespace + "totalCount"}
	OSLCNextPage     = IRI{Value: OSLCNamespace + "nextPage"}
)

const containerMembershipPrefix = RDFNamespace + "_"

// ContainerMembership returns the rdf:_n predicate for a 1-based index.
func ContainerMembership(n int) IRI {
	return IRI{Value: containerMembershipPrefix + strconv.Itoa(n)}
}

// MembershipIndex reports the index of an rdf:_n predicate.
func MembershipIndex(p IRI) (int, bool) {
	rest, ok := strings.CutPrefix(p.Value, containerMembershipPrefix)
	if !ok || rest == "" {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// IsContainerType reports whether t is rdf:Bag, rdf:Seq or rdf:Alt.
func IsContainerType(t IRI) bool {
	return t == RDFBag || t == RDFSeq || t == RDFAlt
}
