package bind

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/geoknoesis/rdfbind/graph"
	"github.com/geoknoesis/rdfbind/graph/ldgraph"
	"github.com/geoknoesis/rdfbind/graph/memgraph"
	"github.com/geoknoesis/rdfbind/graph/quadgraph"
	"github.com/geoknoesis/rdfbind/rdf"
	"github.com/geoknoesis/rdfbind/resource"
	"github.com/geoknoesis/rdfbind/shape"
)

const (
	ex    = "http://example.org/ns#"
	other = "http://other.example/vocab#"
)

type Person struct {
	resource.Base
	Name      string
	Age       int
	Height    float64
	Rating    float32
	Born      time.Time
	Homepage  resource.URI
	Friend    *Person
	Knows     []*Person
	Tags      []string
	Nicknames []string
	Labels    []string
	Title     resource.Reified[string]
	Extra     any
}

type Employee struct {
	Person
	Employer string
}

type Note struct {
	resource.Base
	Text string
}

type abstractThing interface{ thing() }

func testRegistry() *shape.Registry {
	return shape.NewRegistry().MustRegister(
		shape.Describe[Person](ex, "Person",
			shape.Prefix("ex", ex),
			shape.Props(
				shape.One("Name", ex+"name", func(p *Person) *string { return &p.Name }),
				shape.One("Age", ex+"age", func(p *Person) *int { return &p.Age }),
				shape.One("Height", ex+"height", func(p *Person) *float64 { return &p.Height }),
				shape.One("Rating", ex+"rating", func(p *Person) *float32 { return &p.Rating }),
				shape.One("Born", ex+"born", func(p *Person) *time.Time { return &p.Born }, shape.Datatype(rdf.XSDDate.Value)),
				shape.One("Homepage", ex+"homepage", func(p *Person) *resource.URI { return &p.Homepage }),
				shape.One("Friend", ex+"friend", func(p *Person) **Person { return &p.Friend }),
				shape.Many("Knows", ex+"knows", func(p *Person) *[]*Person { return &p.Knows }),
				shape.Many("Tags", ex+"tags", func(p *Person) *[]string { return &p.Tags }, shape.Container(shape.List)),
				shape.Many("Nicknames", ex+"nicknames", func(p *Person) *[]string { return &p.Nicknames }, shape.Container(shape.Seq)),
				shape.Many("Labels", ex+"labels", func(p *Person) *[]string { return &p.Labels }, shape.Container(shape.Bag)),
				shape.ReifiedOne("Title", ex+"title", func(p *Person) *resource.Reified[string] { return &p.Title }),
				shape.One("Extra", ex+"extra", func(p *Person) *any { return &p.Extra }),
			),
		),
		shape.Describe[Employee](ex, "Employee",
			shape.Extends[Person](func(e *Employee) *Person { return &e.Person }),
			shape.Props(
				shape.One("Employer", ex+"employer", func(e *Employee) *string { return &e.Employer }),
			),
		),
		shape.Describe[Note](ex, "Note",
			shape.Props(shape.One("Text", ex+"text", func(n *Note) *string { return &n.Text })),
		),
		shape.Abstract[abstractThing](ex, "Thing"),
	)
}

type backendCase struct {
	name    string
	backend graph.Backend
}

func backends() []backendCase {
	return []backendCase{
		{"memgraph", memgraph.New()},
		{"ldgraph", ldgraph.New()},
		{"quadgraph", quadgraph.New()},
	}
}

func quiet() Option { return OptLogger(log.New(io.Discard)) }

func captured() (Option, *bytes.Buffer) {
	var buf bytes.Buffer
	return OptLogger(log.New(&buf)), &buf
}

func iri(local string) rdf.IRI { return rdf.IRI{Value: ex + local} }

func person(uri, name string) *Person {
	p := &Person{Name: name}
	p.About = resource.URI(uri)
	return p
}

func has(g graph.Graph, s graph.Node, p rdf.IRI, o graph.Node) bool {
	return len(g.Match(s, &p, o)) > 0
}

func marshal(t *testing.T, b graph.Backend, sel *Selection, objects ...any) graph.Graph {
	t.Helper()
	g, err := NewMarshaller(b, testRegistry(), quiet()).Marshal(objects, sel)
	require.NoError(t, err)
	return g
}

func find(people []*Person, uri string) *Person {
	for _, p := range people {
		if string(p.About) == uri {
			return p
		}
	}
	return nil
}
