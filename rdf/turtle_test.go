package rdf

import (
	"bytes"
	"strings"
	"testing"
)

func TestTurtleWriterPrefixesAndGrouping(t *testing.T) {
	ex := "http://example.org/ns#"
	triples := []Triple{
		{S: IRI{Value: ex + "a"}, P: RDFType, O: IRI{Value: ex + "Thing"}},
		{S: IRI{Value: ex + "a"}, P: IRI{Value: ex + "name"}, O: NewPlainLiteral("A")},
		{S: BlankNode{ID: "b1"}, P: IRI{Value: ex + "count"}, O: NewTypedLiteral("3", XSDInt)},
	}
	var buf bytes.Buffer
	err := WriteAll(&buf, FormatTurtle, triples, OptPrefixes(map[string]string{
		"ex":  ex,
		"xsd": XSDNamespace,
	}))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"@prefix ex: <http://example.org/ns#> .",
		"@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .",
		"ex:a a ex:Thing ;\n    ex:name \"A\" .",
		"_:b1 ex:count \"3\"^^xsd:int .",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestAbbreviateQNameLongestMatch(t *testing.T) {
	prefixes := map[string]string{"a": "http://x/", "b": "http://x/y/"}
	got, ok := abbreviateQName("http://x/y/z", prefixes)
	if !ok || got != "b:z" {
		t.Fatalf("got %q %v", got, ok)
	}
	if _, ok := abbreviateQName("http://x/1bad", prefixes); ok {
		t.Fatalf("expected no abbreviation for invalid local name")
	}
}
