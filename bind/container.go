package bind

import (
	"github.com/geoknoesis/rdfbind/graph"
	"github.com/geoknoesis/rdfbind/rdf"
	"github.com/geoknoesis/rdfbind/resource"
)

// Container describes the node that lists marshalled objects as rdfs:member.
type Container struct {
	// About names the container node; empty makes it a blank node.
	About        resource.URI
	ResponseInfo *ResponseInfo
	resource.Extended
}

// ResponseInfo carries paging metadata for a result container.
type ResponseInfo struct {
	// About names a separate oslc:ResponseInfo node; empty attaches the
	// metadata to the container node.
	About resource.URI
	// TotalCount defaults to the number of marshalled objects.
	TotalCount *int
	NextPage   resource.URI
	resource.Extended
}

// Members returns the URIs listed as rdfs:member in g, in insertion order.
func Members(g graph.Graph) []resource.URI {
	p := rdf.RDFSMember
	var out []resource.URI
	for _, t := range g.Match(nil, &p, nil) {
		if iri, ok := t.O.(rdf.IRI); ok {
			out = append(out, resource.URI(iri.Value))
		}
	}
	return out
}
