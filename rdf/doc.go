// Package rdf provides the compact RDF term model shared by the graph backends
// and the binding engine, together with line-oriented syntaxes used to move
// graphs in and out of memory.
//
// Copyright 2026 Geoknoesis LLC (www.geoknoesis.com)
//
// Author: Stephane Fellah (stephanef@geoknoesis.com)
// Geosemantic-AI expert with 30 years of experience
//
// Terms are small comparable values:
//   - IRI: a named resource.
//   - BlankNode: an anonymous resource scoped to one graph.
//   - Literal: a lexical value with an optional datatype or language tag.
//
// Because every term is a comparable struct, terms and triples can be used
// directly as map keys and compared with ==.
//
// Supported syntaxes:
//   - Read: N-Triples, N-Quads (graph labels are dropped).
//   - Write: N-Triples, N-Quads, Turtle (with @prefix header).
//
// Example (reading triples):
//
//	r, err := rdf.NewReader(strings.NewReader(input), rdf.FormatNTriples)
//	if err != nil {
//	    // handle error
//	}
//	defer r.Close()
//
//	for {
//	    triple, err := r.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        // handle error
//	    }
//	    // process triple.S, triple.P, triple.O
//	}
package rdf
