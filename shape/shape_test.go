package shape

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoknoesis/rdfbind/resource"
)

const (
	foaf = "http://xmlns.com/foaf/0.1/"
	ex   = "http://example.org/ns#"
	alt  = "http://example.org/alt#"
)

type named interface {
	DisplayName() string
}

type agent struct {
	resource.Base
	Name string
}

func (a *agent) DisplayName() string { return a.Name }

type person struct {
	agent
	Age     int
	Friends []*person
	Note    resource.Reified[string]
}

type robot struct {
	agent
	Serial string
}

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	Capability[named](reg, Pair{Prefix: "ex", Namespace: alt})
	require.NoError(t, reg.Register(
		Abstract[named](ex, "Named"),
		Describe[agent](foaf, "Agent",
			Prefix("foaf", foaf),
			Props(One("Name", foaf+"name", func(a *agent) *string { return &a.Name })),
		),
		Describe[person](foaf, "Person",
			Prefix("ex", ex),
			Extends[agent](func(p *person) *agent { return &p.agent }),
			Props(
				One("Age", foaf+"age", func(p *person) *int { return &p.Age }),
				Many("Friends", foaf+"knows", func(p *person) *[]*person { return &p.Friends }, Name("knows")),
				ReifiedOne("Note", ex+"note", func(p *person) *resource.Reified[string] { return &p.Note }),
			),
		),
		Describe[robot](ex, "Robot",
			Extends[agent](func(r *robot) *agent { return &r.agent }),
			Props(One("Serial", ex+"serial", func(r *robot) *string { return &r.Serial })),
		),
	))
	return reg
}

func TestResolveMergesInheritedProperties(t *testing.T) {
	reg := testRegistry(t)
	d, err := reg.Resolve(reflect.TypeFor[*person]())
	require.NoError(t, err)
	assert.Equal(t, foaf+"Person", d.TypeURI)
	assert.Equal(t, 1, d.Depth)

	var preds []string
	for _, p := range d.Properties {
		preds = append(preds, p.Predicate)
	}
	assert.Equal(t, []string{foaf + "age", foaf + "knows", ex + "note", foaf + "name"}, preds)

	knows, ok := d.Property(foaf + "knows")
	require.True(t, ok)
	assert.Equal(t, KindResource, knows.Kind)
	assert.Equal(t, Collection, knows.Cardinality)
	note, _ := d.Property(ex + "note")
	assert.True(t, note.Reified)
	assert.Equal(t, KindLiteral, note.Kind)

	name, _ := d.Property(foaf + "name")
	p := &person{}
	require.NoError(t, name.Assign(p, []Item{{Value: "Ann"}}))
	assert.Equal(t, "Ann", p.Name)
	assert.Equal(t, []Item{{Value: "Ann"}}, name.Values(p))
}

func TestResolveNamespaces(t *testing.T) {
	reg := testRegistry(t)
	d, err := reg.Resolve(reflect.TypeFor[person]())
	require.NoError(t, err)
	assert.Equal(t, []Pair{
		{Prefix: "ex", Namespace: ex},
		{Prefix: "foaf", Namespace: foaf},
		{Prefix: "ex1", Namespace: alt},
	}, d.Namespaces)
}

func TestResolveIsCached(t *testing.T) {
	reg := testRegistry(t)
	var wg sync.WaitGroup
	results := make([]*Descriptor, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := reg.Resolve(reflect.TypeFor[robot]())
			assert.NoError(t, err)
			results[i] = d
		}()
	}
	wg.Wait()
	for _, d := range results {
		assert.Same(t, results[0], d)
	}
}

func TestInvalidPredicate(t *testing.T) {
	type thing struct{ Title string }
	reg := NewRegistry()
	require.NoError(t, reg.Register(Describe[thing](ex, "Thing",
		Props(One("Title", ex+"heading", func(x *thing) *string { return &x.Title })),
	)))
	_, err := reg.Resolve(reflect.TypeFor[thing]())
	require.ErrorIs(t, err, ErrInvalidPredicate)
	var shapeErr *Error
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, "Title", shapeErr.Property)

	reg = NewRegistry()
	require.NoError(t, reg.Register(Describe[thing](ex, "Thing",
		Props(One("Title", ex+"heading", func(x *thing) *string { return &x.Title }, Name("heading"))),
	)))
	_, err = reg.Resolve(reflect.TypeFor[thing]())
	assert.NoError(t, err)
}

func TestUnregistered(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Resolve(reflect.TypeFor[struct{ X int }]())
	assert.ErrorIs(t, err, ErrUnregistered)
	require.NoError(t, reg.Register(Describe[agent](foaf, "Agent")))
	assert.ErrorIs(t, reg.Register(Describe[agent](foaf, "Agent")), ErrDuplicate)
}

func TestMostConcrete(t *testing.T) {
	reg := testRegistry(t)
	d, err := reg.MostConcrete([]string{foaf + "Agent", foaf + "Person"}, reflect.TypeFor[agent]())
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeFor[person](), d.Type)

	d, err = reg.MostConcrete([]string{ex + "Robot"}, reflect.TypeFor[named]())
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeFor[robot](), d.Type)

	d, err = reg.MostConcrete([]string{ex + "Robot"}, reflect.TypeFor[person]())
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeFor[robot](), d.Type, "unrelated match is reported so callers can skip it")

	d, err = reg.MostConcrete([]string{"http://unknown/T"}, reflect.TypeFor[agent]())
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeFor[agent](), d.Type)
}

func TestSubtypes(t *testing.T) {
	reg := testRegistry(t)
	assert.True(t, reg.IsSubtype(reflect.TypeFor[person](), reflect.TypeFor[agent]()))
	assert.True(t, reg.IsSubtype(reflect.TypeFor[*robot](), reflect.TypeFor[named]()))
	assert.False(t, reg.IsSubtype(reflect.TypeFor[agent](), reflect.TypeFor[person]()))
	assert.Equal(t, []string{foaf + "Agent", foaf + "Person", ex + "Robot"}, reg.SubtypeURIs(reflect.TypeFor[agent]()))
	assert.Equal(t, []string{ex + "Named", foaf + "Agent", foaf + "Person", ex + "Robot"}, reg.SubtypeURIs(reflect.TypeFor[named]()))
}

func TestAbstractCannotBeInstantiated(t *testing.T) {
	reg := testRegistry(t)
	d, err := reg.Resolve(reflect.TypeFor[named]())
	require.NoError(t, err)
	assert.True(t, d.Abstract())
	_, err = d.New()
	assert.ErrorIs(t, err, ErrAbstract)
}

func TestZeroValuesAreAbsent(t *testing.T) {
	type box struct {
		Count *int
		Tags  []string
	}
	count := One("Count", ex+"count", func(b *box) **int { return &b.Count })
	tags := Many("Tags", ex+"tags", func(b *box) *[]string { return &b.Tags }, Container(Seq))
	b := &box{}
	assert.Empty(t, count.Values(b))
	assert.Empty(t, tags.Values(b))
	zero := 0
	b.Count = &zero
	assert.Len(t, count.Values(b), 1)
	assert.Equal(t, KindLiteral, count.Kind)
	assert.Equal(t, Seq, tags.Container)

	require.NoError(t, tags.Assign(b, []Item{{Value: "a"}, {Value: resource.URI("b")}}))
	assert.Equal(t, []string{"a", "b"}, b.Tags)
	assert.ErrorIs(t, tags.Assign(b, []Item{{Value: 3}}), ErrInvalidValue)
}

func TestNamespacesSuffix(t *testing.T) {
	ns := NewNamespaces(Pair{"ex", "http://a/"})
	assert.Equal(t, "ex", ns.Ensure("other", "http://a/"))
	assert.Equal(t, "ex1", ns.Ensure("ex", "http://b/"))
	assert.Equal(t, "ex2", ns.Ensure("ex", "http://c/"))
	assert.Equal(t, map[string]string{"ex": "http://a/", "ex1": "http://b/", "ex2": "http://c/"}, ns.Map())
	p, ok := ns.Prefix("http://c/")
	assert.True(t, ok)
	assert.Equal(t, "ex2", p)
}

func TestCardinality(t *testing.T) {
	type box struct {
		Title string
		Sizes []int
	}
	sizes := Many("Sizes", ex+"sizes", func(b *box) *[]int { return &b.Sizes }, AsArray())
	assert.Equal(t, Array, sizes.Cardinality)
	assert.True(t, sizes.Multi())
	assert.Equal(t, "array", sizes.Cardinality.String())

	reg := NewRegistry()
	require.NoError(t, reg.Register(Describe[box](ex, "Box",
		Props(One("Title", ex+"title", func(b *box) *string { return &b.Title }, Container(List))),
	)))
	_, err := reg.Resolve(reflect.TypeFor[box]())
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func firstLocal() (*Definition, reflect.Type) {
	type item struct{ First string }
	return Describe[item](ex, "First",
		Props(One("First", ex+"first", func(i *item) *string { return &i.First })),
	), reflect.TypeFor[item]()
}

func secondLocal() (*Definition, reflect.Type) {
	type item struct{ Second string }
	return Describe[item](ex, "Second",
		Props(One("Second", ex+"second", func(i *item) *string { return &i.Second })),
	), reflect.TypeFor[item]()
}

func TestResolveSameNamedLocalTypes(t *testing.T) {
	first, firstType := firstLocal()
	second, secondType := secondLocal()
	require.Equal(t, firstType.String(), secondType.String())
	assert.NotEqual(t, flightKey(firstType), flightKey(secondType))

	reg := NewRegistry()
	require.NoError(t, reg.Register(first, second))
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		typ := firstType
		if i%2 == 1 {
			typ = secondType
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := reg.Resolve(typ)
			if assert.NoError(t, err) {
				assert.Equal(t, typ, d.Type)
			}
		}()
	}
	wg.Wait()
}
