package rdf

import "testing"

func TestTermsAreComparable(t *testing.T) {
	a := Triple{S: IRI{Value: "http://a"}, P: RDFType, O: NewTypedLiteral("1", XSDInt)}
	b := Triple{S: IRI{Value: "http://a"}, P: RDFType, O: NewTypedLiteral("1", XSDInt)}
	if a != b {
		t.Fatalf("expected equal triples")
	}
	seen := map[Term]bool{a.S: true}
	if !seen[IRI{Value: "http://a"}] {
		t.Fatalf("expected IRI usable as map key")
	}
	if (BlankNode{ID: "x"}).String() != "_:x" {
		t.Fatalf("unexpected blank rendering")
	}
}

func TestLiteralIsPlain(t *testing.T) {
	if !NewPlainLiteral("x").IsPlain() || !NewTypedLiteral("x", XSDString).IsPlain() {
		t.Fatalf("expected plain literals")
	}
	if NewLangLiteral("x", "en").IsPlain() || NewTypedLiteral("1", XSDInt).IsPlain() {
		t.Fatalf("expected non-plain literals")
	}
}

func TestIsResource(t *testing.T) {
	if !IsResource(IRI{Value: "http://a"}) || !IsResource(BlankNode{ID: "b"}) {
		t.Fatalf("expected resources")
	}
	if IsResource(NewPlainLiteral("x")) || IsResource(nil) {
		t.Fatalf("expected non-resources")
	}
}

func TestContainerMembership(t *testing.T) {
	p := ContainerMembership(3)
	if p.Value != RDFNamespace+"_3" {
		t.Fatalf("unexpected predicate %s", p)
	}
	if n, ok := MembershipIndex(p); !ok || n != 3 {
		t.Fatalf("index = %d %v", n, ok)
	}
	if _, ok := MembershipIndex(RDFType); ok {
		t.Fatalf("rdf:type is not a membership predicate")
	}
	if _, ok := MembershipIndex(IRI{Value: RDFNamespace + "_0"}); ok {
		t.Fatalf("rdf:_0 is not a membership predicate")
	}
}
