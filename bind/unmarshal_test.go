package bind

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoknoesis/rdfbind/graph"
	"github.com/geoknoesis/rdfbind/graph/memgraph"
	"github.com/geoknoesis/rdfbind/rdf"
	"github.com/geoknoesis/rdfbind/resource"
)

func build(t *testing.T, b graph.Backend, triples ...rdf.Triple) graph.Graph {
	t.Helper()
	g := b.NewGraph()
	for _, tr := range triples {
		require.NoError(t, g.Add(tr.S, tr.P, tr.O))
	}
	return g
}

func triple(s rdf.Term, p rdf.IRI, o rdf.Term) rdf.Triple { return rdf.Triple{S: s, P: p, O: o} }

func unmarshaller(opts ...Option) *Unmarshaller {
	return NewUnmarshaller(testRegistry(), append([]Option{quiet()}, opts...)...)
}

func TestRoundTrip(t *testing.T) {
	source := resource.QName{Namespace: ex, Local: "source", Prefix: "ex"}
	born := time.Date(1990, 6, 1, 8, 30, 0, 0, time.UTC)
	for _, bc := range backends() {
		t.Run(bc.name, func(t *testing.T) {
			bob := person(ex+"bob", "Bob")
			alice := person(ex+"alice", "Alice")
			alice.Age = 42
			alice.Height = 1.75
			alice.Rating = 4.5
			alice.Born = born
			alice.Homepage = "http://alice.example/"
			alice.Friend = bob
			alice.Knows = []*Person{bob}
			alice.Tags = []string{"b", "a", "c"}
			alice.Nicknames = []string{"Al", "Ally"}
			alice.Labels = []string{"x", "y"}
			alice.Title = resource.NewReified("Dr")
			alice.Title.Set(source, "registry")
			alice.Extra = 7

			g := marshal(t, bc.backend, nil, alice)
			people, err := UnmarshalAll[*Person](unmarshaller(), g)
			require.NoError(t, err)
			require.Len(t, people, 2)

			got := find(people, ex+"alice")
			require.NotNil(t, got)
			assert.Equal(t, "Alice", got.Name)
			assert.Equal(t, 42, got.Age)
			assert.Equal(t, 1.75, got.Height)
			assert.Equal(t, float32(4.5), got.Rating)
			assert.True(t, born.Equal(got.Born))
			assert.Equal(t, resource.URI("http://alice.example/"), got.Homepage)
			assert.Equal(t, []string{"b", "a", "c"}, got.Tags)
			assert.Equal(t, []string{"Al", "Ally"}, got.Nicknames)
			assert.ElementsMatch(t, []string{"x", "y"}, got.Labels)
			assert.Equal(t, 7, got.Extra)

			assert.Equal(t, "Dr", got.Title.Value)
			v, ok := got.Title.Get(source)
			require.True(t, ok)
			assert.Equal(t, "registry", v)

			gotBob := find(people, ex+"bob")
			require.NotNil(t, gotBob)
			assert.Same(t, gotBob, got.Friend)
			require.Len(t, got.Knows, 1)
			assert.Same(t, gotBob, got.Knows[0])

			assert.Empty(t, got.Types(), "the declared type is not an extended type")
			assert.Zero(t, got.Len())
		})
	}
}

func TestRoundTripCycles(t *testing.T) {
	for _, bc := range backends() {
		t.Run(bc.name, func(t *testing.T) {
			self := person(ex+"self", "Self")
			self.Friend = self
			people, err := UnmarshalAll[*Person](unmarshaller(), marshal(t, bc.backend, nil, self))
			require.NoError(t, err)
			require.Len(t, people, 1)
			assert.Same(t, people[0], people[0].Friend)

			a, b := person(ex+"a", "A"), person(ex+"b", "B")
			a.Friend, b.Friend = b, a
			people, err = UnmarshalAll[*Person](unmarshaller(), marshal(t, bc.backend, nil, a))
			require.NoError(t, err)
			require.Len(t, people, 2)
			ga, gb := find(people, ex+"a"), find(people, ex+"b")
			require.NotNil(t, ga)
			require.NotNil(t, gb)
			assert.Same(t, gb, ga.Friend)
			assert.Same(t, ga, gb.Friend)
		})
	}
}

func TestRoundTripInfinity(t *testing.T) {
	for _, bc := range backends() {
		t.Run(bc.name, func(t *testing.T) {
			p := person(ex+"p", "P")
			p.Height = math.Inf(-1)
			p.Rating = float32(math.Inf(1))
			got, err := UnmarshalSingle[*Person](unmarshaller(), marshal(t, bc.backend, nil, p))
			require.NoError(t, err)
			assert.True(t, math.IsInf(got.Height, -1))
			assert.True(t, math.IsInf(float64(got.Rating), 1))
		})
	}
}

func TestRoundTripReificationAnnotationsOnly(t *testing.T) {
	p := person(ex+"p", "P")
	p.Title = resource.NewReified("Prof")
	g := marshal(t, memgraph.New(), nil, p)
	got, err := UnmarshalSingle[*Person](unmarshaller(), g)
	require.NoError(t, err)
	assert.Equal(t, "Prof", got.Title.Value)
	assert.True(t, got.Title.IsEmpty())
}

func TestUnmarshalPolymorphic(t *testing.T) {
	for _, bc := range backends() {
		t.Run(bc.name, func(t *testing.T) {
			e := &Employee{Employer: "ACME"}
			e.About = ex + "eve"
			e.Name = "Eve"
			g := marshal(t, bc.backend, nil, e)

			vals, err := unmarshaller().Unmarshal(g, reflect.TypeFor[*Person]())
			require.NoError(t, err)
			require.Len(t, vals, 1)
			emp, ok := vals[0].(*Employee)
			require.True(t, ok, "got %T", vals[0])
			assert.Equal(t, "ACME", emp.Employer)
			assert.Equal(t, "Eve", emp.Name)

			people, err := UnmarshalAll[*Person](unmarshaller(), g)
			require.NoError(t, err)
			require.Len(t, people, 1)
			assert.Equal(t, "Eve", people[0].Name)
			assert.Equal(t, resource.URI(ex+"eve"), people[0].About)
		})
	}
}

func TestUnmarshalNestedSubtype(t *testing.T) {
	g := build(t, memgraph.New(),
		triple(iri("p"), rdf.RDFType, iri("Person")),
		triple(iri("p"), iri("friend"), iri("eve")),
		triple(iri("eve"), rdf.RDFType, iri("Employee")),
		triple(iri("eve"), rdf.RDFType, iri("Person")),
		triple(iri("eve"), iri("name"), rdf.NewPlainLiteral("Eve")),
		triple(iri("eve"), iri("employer"), rdf.NewPlainLiteral("ACME")),
	)
	vals, err := unmarshaller().Unmarshal(g, reflect.TypeFor[*Person]())
	require.NoError(t, err)
	require.Len(t, vals, 2)

	p := vals[0].(*Person)
	emp, ok := vals[1].(*Employee)
	require.True(t, ok, "got %T", vals[1])
	assert.Same(t, &emp.Person, p.Friend)
	assert.Equal(t, []resource.URI{ex + "Person"}, emp.Types())
}

func TestUnmarshalNode(t *testing.T) {
	e := &Employee{Employer: "ACME"}
	e.About = ex + "eve"
	g := marshal(t, memgraph.New(), nil, e)

	v, err := unmarshaller().UnmarshalNode(g, iri("eve"), reflect.TypeFor[*Person]())
	require.NoError(t, err)
	assert.IsType(t, &Employee{}, v)

	v, err = unmarshaller().UnmarshalNode(g, iri("eve"), reflect.TypeFor[*resource.Any]())
	require.NoError(t, err)
	a := v.(*resource.Any)
	assert.True(t, a.HasType(resource.URI(ex+"Employee")))
}

func TestUnmarshalCardinality(t *testing.T) {
	for _, bc := range backends() {
		t.Run(bc.name, func(t *testing.T) {
			g := build(t, bc.backend,
				triple(iri("p"), rdf.RDFType, iri("Person")),
				triple(iri("p"), iri("name"), rdf.NewPlainLiteral("A")),
				triple(iri("p"), iri("name"), rdf.NewPlainLiteral("B")),
			)
			_, err := UnmarshalAll[*Person](unmarshaller(), g)
			require.ErrorIs(t, err, ErrCardinality)
			var be *Error
			require.ErrorAs(t, err, &be)
			assert.Equal(t, "Name", be.Accessor)
		})
	}
}

func TestUnmarshalSingle(t *testing.T) {
	one := marshal(t, memgraph.New(), nil, person(ex+"a", "A"))
	p, err := UnmarshalSingle[*Person](unmarshaller(), one)
	require.NoError(t, err)
	assert.Equal(t, "A", p.Name)

	two := marshal(t, memgraph.New(), nil, person(ex+"a", "A"), person(ex+"b", "B"))
	_, err = UnmarshalSingle[*Person](unmarshaller(), two)
	require.ErrorIs(t, err, ErrCardinality)

	_, err = UnmarshalSingle[*Note](unmarshaller(), one)
	require.ErrorIs(t, err, ErrCardinality)
}

func TestUnmarshalAbstractType(t *testing.T) {
	g := build(t, memgraph.New(), triple(iri("t1"), rdf.RDFType, iri("Thing")))

	vals, err := unmarshaller().Unmarshal(g, reflect.TypeFor[abstractThing]())
	require.NoError(t, err)
	assert.Empty(t, vals)

	_, err = UnmarshalSingle[abstractThing](unmarshaller(), g)
	require.ErrorIs(t, err, ErrInstantiation)
}

func TestUnmarshalUnregisteredTarget(t *testing.T) {
	type stranger struct{}
	_, err := unmarshaller().Unmarshal(memgraph.New().NewGraph(), reflect.TypeFor[*stranger]())
	require.ErrorIs(t, err, ErrShape)
}

func TestUnmarshalExtended(t *testing.T) {
	for _, bc := range backends() {
		t.Run(bc.name, func(t *testing.T) {
			addr := rdf.BlankNode{ID: "addr"}
			g := build(t, bc.backend,
				triple(iri("p"), rdf.RDFType, iri("Person")),
				triple(iri("p"), rdf.RDFType, rdf.IRI{Value: other + "Agent"}),
				triple(iri("p"), rdf.IRI{Value: other + "nick"}, rdf.NewPlainLiteral("a")),
				triple(iri("p"), rdf.IRI{Value: other + "nick"}, rdf.NewPlainLiteral("b")),
				triple(iri("p"), rdf.IRI{Value: other + "home"}, rdf.IRI{Value: "http://home.example/"}),
				triple(iri("p"), rdf.IRI{Value: other + "address"}, addr),
				triple(addr, rdf.IRI{Value: other + "street"}, rdf.NewPlainLiteral("Main St")),
			)
			p, err := UnmarshalSingle[*Person](unmarshaller(), g)
			require.NoError(t, err)

			assert.Equal(t, []resource.URI{other + "Agent"}, p.Types())
			nick, ok := p.Get(resource.QName{Namespace: other, Local: "nick"})
			require.True(t, ok)
			assert.Equal(t, []any{"a", "b"}, nick)

			home, _ := p.Get(resource.QName{Namespace: other, Local: "home"})
			assert.Equal(t, resource.URI("http://home.example/"), home)

			v, _ := p.Get(resource.QName{Namespace: other, Local: "address"})
			a, ok := v.(*resource.Any)
			require.True(t, ok, "got %T", v)
			street, _ := a.Get(resource.QName{Namespace: other, Local: "street"})
			assert.Equal(t, "Main St", street)

			names := p.Names()
			require.NotEmpty(t, names)
			assert.Equal(t, "j.0", names[0].Prefix)
			assert.Equal(t, other, g.Prefixes()["j.0"])
		})
	}
}

func TestUnmarshalGeneratedPrefixSkipsTaken(t *testing.T) {
	g := build(t, memgraph.New(),
		triple(iri("p"), rdf.RDFType, iri("Person")),
		triple(iri("p"), rdf.IRI{Value: other + "nick"}, rdf.NewPlainLiteral("a")),
	)
	g.SetPrefix("j.0", "http://taken.example/")
	p, err := UnmarshalSingle[*Person](unmarshaller(), g)
	require.NoError(t, err)
	assert.Equal(t, "j.1", p.Names()[0].Prefix)
}

func TestUnmarshalLenientLiterals(t *testing.T) {
	g := build(t, memgraph.New(),
		triple(iri("p"), rdf.RDFType, iri("Person")),
		triple(iri("p"), iri("age"), rdf.NewTypedLiteral("abc", rdf.XSDInteger)),
		triple(iri("p"), rdf.IRI{Value: other + "size"}, rdf.NewTypedLiteral("big", rdf.XSDInt)),
	)
	_, err := UnmarshalAll[*Person](unmarshaller(), g)
	require.ErrorIs(t, err, ErrLiteral)

	p, err := UnmarshalSingle[*Person](unmarshaller(OptLenientLiterals()), g)
	require.NoError(t, err)
	assert.Zero(t, p.Age)
	age, ok := p.Get(resource.QName{Namespace: ex, Local: "age"})
	require.True(t, ok)
	assert.Equal(t, resource.Unparseable{Lexical: "abc", Datatype: rdf.XSDInteger.Value}, age)
	size, _ := p.Get(resource.QName{Namespace: other, Local: "size"})
	assert.Equal(t, resource.Unparseable{Lexical: "big", Datatype: rdf.XSDInt.Value}, size)

	out := marshal(t, memgraph.New(), nil, p)
	assert.True(t, has(out, iri("p"), iri("age"), out.TypedLiteral("abc", rdf.XSDInteger)))
	assert.True(t, has(out, iri("p"), rdf.IRI{Value: other + "size"}, out.TypedLiteral("big", rdf.XSDInt)))
}

func TestUnmarshalRelativeURI(t *testing.T) {
	g := build(t, memgraph.New(),
		triple(iri("p"), rdf.RDFType, iri("Person")),
		triple(iri("p"), iri("homepage"), rdf.IRI{Value: "home/page"}),
	)
	_, err := UnmarshalAll[*Person](unmarshaller(), g)
	require.ErrorIs(t, err, ErrRelativeURI)

	p, err := UnmarshalSingle[*Person](unmarshaller(OptAllowRelativeURIs()), g)
	require.NoError(t, err)
	assert.Equal(t, resource.URI("home/page"), p.Homepage)
}

func TestUnmarshalMismatchedValuesAreSkipped(t *testing.T) {
	logOpt, buf := captured()
	g := build(t, memgraph.New(),
		triple(iri("p"), rdf.RDFType, iri("Person")),
		triple(iri("p"), iri("friend"), rdf.NewPlainLiteral("not a node")),
		triple(iri("p"), iri("name"), iri("not-a-literal")),
	)
	p, err := UnmarshalSingle[*Person](NewUnmarshaller(testRegistry(), logOpt), g)
	require.NoError(t, err)
	assert.Nil(t, p.Friend)
	assert.Empty(t, p.Name)
	assert.Contains(t, buf.String(), "literal for a resource property")
}

func TestUnmarshalDynamicProperty(t *testing.T) {
	n := &Note{Text: "hi"}
	n.About = ex + "note"
	p := person(ex+"p", "P")
	p.Extra = n
	g := marshal(t, memgraph.New(), nil, p)

	got, err := UnmarshalSingle[*Person](unmarshaller(), g)
	require.NoError(t, err)
	note, ok := got.Extra.(*Note)
	require.True(t, ok, "got %T", got.Extra)
	assert.Equal(t, "hi", note.Text)

	untyped := build(t, memgraph.New(),
		triple(iri("p"), rdf.RDFType, iri("Person")),
		triple(iri("p"), iri("extra"), iri("elsewhere")),
	)
	got, err = UnmarshalSingle[*Person](unmarshaller(), untyped)
	require.NoError(t, err)
	assert.Equal(t, resource.URI(ex+"elsewhere"), got.Extra)
}

func TestUnmarshalDepthCeiling(t *testing.T) {
	root := person(ex+"p0", "p0")
	cur := root
	for i := 1; i < 6; i++ {
		next := &Person{Name: "n"}
		cur.Friend = next
		cur = next
	}
	g := marshal(t, memgraph.New(), nil, root)
	_, err := UnmarshalAll[*Person](unmarshaller(OptMaxDepth(3)), g)
	require.ErrorIs(t, err, ErrDepthExceeded)
}

func TestUnmarshalLooseRoots(t *testing.T) {
	b := person(ex+"b", "B")
	a := person(ex+"a", "A")
	a.Friend = b
	n := &Note{Text: "hi"}
	n.About = ex + "n"
	g := marshal(t, memgraph.New(), nil, a, n)

	vals, err := unmarshaller(OptLooseRoots()).Unmarshal(g, reflect.TypeFor[*resource.Any]())
	require.NoError(t, err)
	require.Len(t, vals, 2)

	ra := vals[0].(*resource.Any)
	assert.Equal(t, resource.URI(ex+"a"), ra.About)
	assert.True(t, ra.HasType(resource.URI(ex+"Person")))
	friend, ok := ra.Get(resource.QName{Namespace: ex, Local: "friend"})
	require.True(t, ok)
	assert.IsType(t, &resource.Any{}, friend)

	rn := vals[1].(*resource.Any)
	assert.Equal(t, resource.URI(ex+"n"), rn.About)
	text, _ := rn.Get(resource.QName{Namespace: ex, Local: "text"})
	assert.Equal(t, "hi", text)
}

func TestMembersAndFollowLink(t *testing.T) {
	m := NewMarshaller(memgraph.New(), testRegistry(), quiet())
	g, err := m.MarshalContainer(&Container{About: ex + "all"}, []any{person(ex+"a", "A"), person(ex+"b", "B")}, nil)
	require.NoError(t, err)

	vals, err := unmarshaller().Unmarshal(g, reflect.TypeFor[resource.URI]())
	require.NoError(t, err)
	assert.Equal(t, []any{resource.URI(ex + "a"), resource.URI(ex + "b")}, vals)

	b, err := FollowLink[*Person](unmarshaller(), g, resource.Link{Target: ex + "b"})
	require.NoError(t, err)
	assert.Equal(t, "B", b.Name)

	_, err = FollowLink[*Person](unmarshaller(), g, resource.Link{Target: ex + "zz"})
	require.ErrorIs(t, err, ErrLookup)
}
