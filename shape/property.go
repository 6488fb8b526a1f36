package shape

import (
	"fmt"
	"math/big"
	"reflect"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/geoknoesis/rdfbind/rdf"
	"github.com/geoknoesis/rdfbind/resource"
)

// Cardinality is the multiplicity of a property.
type Cardinality uint8

const (
	Single Cardinality = iota
	Array
	Collection
)

func (c Cardinality) String() string {
	switch c {
	case Single:
		return "single"
	case Array:
		return "array"
	default:
		return "collection"
	}
}

// ValueKind says how a property value maps onto a graph node.
type ValueKind uint8

const (
	// KindLiteral values go through the literal codec.
	KindLiteral ValueKind = iota
	// KindURI values are links to named nodes.
	KindURI
	// KindResource values are nested resources with their own shape.
	KindResource
	// KindDynamic values are dispatched on their runtime type.
	KindDynamic
)

func (k ValueKind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindURI:
		return "uri"
	case KindResource:
		return "resource"
	default:
		return "dynamic"
	}
}

// ContainerKind selects the graph encoding of a multi-valued property.
type ContainerKind uint8

const (
	NoContainer ContainerKind = iota
	List
	Bag
	Seq
	Alt
)

// TypeIRI returns the rdf class of the container.
func (c ContainerKind) TypeIRI() rdf.IRI {
	switch c {
	case List:
		return rdf.RDFList
	case Bag:
		return rdf.RDFBag
	case Seq:
		return rdf.RDFSeq
	case Alt:
		return rdf.RDFAlt
	default:
		return rdf.IRI{}
	}
}

// Item is one property value. Ext carries the annotations of a reified
// value and is nil otherwise.
type Item struct {
	Value any
	Ext   *resource.Extended
}

// Property describes one mapped accessor.
type Property struct {
	Predicate   string
	Name        string
	Cardinality Cardinality
	Kind        ValueKind
	Container   ContainerKind
	XMLLiteral  bool
	Datatype    string
	Reified     bool
	// ElemType is the Go type of one value, unwrapped from slices and
	// reification.
	ElemType reflect.Type

	override string
	owner    reflect.Type
	get      func(obj any) []Item
	set      func(obj any, items []Item) error
}

// PropOption adjusts a property declaration.
type PropOption func(*Property)

// Name overrides the name the predicate must end with.
func Name(name string) PropOption {
	return func(p *Property) { p.override = name }
}

// Kind forces the value kind, e.g. KindURI for a string holding a link.
func Kind(k ValueKind) PropOption {
	return func(p *Property) { p.Kind = k }
}

// Container encodes a multi-valued property as an RDF list or container.
func Container(c ContainerKind) PropOption {
	return func(p *Property) { p.Container = c }
}

// AsArray marks a multi-valued property as a fixed array.
func AsArray() PropOption {
	return func(p *Property) { p.Cardinality = Array }
}

// XMLLiteral emits string values as rdf:XMLLiteral.
func XMLLiteral() PropOption {
	return func(p *Property) { p.XMLLiteral = true }
}

// Datatype records the datatype the shape declares for the property.
func Datatype(uri string) PropOption {
	return func(p *Property) { p.Datatype = uri }
}

// Multi reports whether the property holds more than one value.
func (p *Property) Multi() bool { return p.Cardinality != Single }

// Values returns the non-empty values of the property on obj.
func (p *Property) Values(obj any) []Item { return p.get(obj) }

// Assign stores items on obj. A single-valued property takes the first item.
func (p *Property) Assign(obj any, items []Item) error { return p.set(obj, items) }

// ExpectedName is the name the predicate must end with.
func (p *Property) ExpectedName() string {
	if p.override != "" {
		return p.override
	}
	return lowerFirst(p.Name)
}

func (p *Property) validate() error {
	if p.Predicate == "" || !strings.HasSuffix(p.Predicate, p.ExpectedName()) {
		return &Error{Type: p.owner, Property: p.Name, Err: fmt.Errorf("%w: %q does not end with %q", ErrInvalidPredicate, p.Predicate, p.ExpectedName())}
	}
	if p.Container != NoContainer && !p.Multi() {
		return &Error{Type: p.owner, Property: p.Name, Err: fmt.Errorf("%w: container on single-valued property", ErrInvalidValue)}
	}
	if p.Reified && p.Container != NoContainer {
		return &Error{Type: p.owner, Property: p.Name, Err: fmt.Errorf("%w: reified values cannot be held in a container", ErrInvalidValue)}
	}
	if p.Kind == KindURI && !isURIType(p.ElemType) {
		return &Error{Type: p.owner, Property: p.Name, Err: fmt.Errorf("%w: %s cannot hold a URI", ErrInvalidValue, p.ElemType)}
	}
	return nil
}

// inherit returns a copy of p reading through upcast.
func (p *Property) inherit(owner reflect.Type, upcast func(any) any) *Property {
	c := *p
	c.owner = owner
	get, set := p.get, p.set
	c.get = func(obj any) []Item { return get(upcast(obj)) }
	c.set = func(obj any, items []Item) error { return set(upcast(obj), items) }
	return &c
}

func newProperty[T, V any](name, predicate string, card Cardinality, opts []PropOption) *Property {
	p := &Property{
		Predicate:   predicate,
		Name:        name,
		Cardinality: card,
		ElemType:    reflect.TypeFor[V](),
		owner:       reflect.TypeFor[T](),
	}
	p.Kind = kindOf(p.ElemType)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// One declares a single-valued property. Zero values are treated as absent.
func One[T, V any](name, predicate string, field func(*T) *V, opts ...PropOption) *Property {
	p := newProperty[T, V](name, predicate, Single, opts)
	p.get = func(obj any) []Item {
		t, ok := obj.(*T)
		if !ok || t == nil {
			return nil
		}
		v := *field(t)
		if isZero(v) {
			return nil
		}
		return []Item{{Value: v}}
	}
	p.set = func(obj any, items []Item) error {
		t, ok := obj.(*T)
		if !ok {
			return mismatch(p, obj)
		}
		if len(items) == 0 {
			return nil
		}
		v, err := convert[V](p, items[0].Value)
		if err != nil {
			return err
		}
		*field(t) = v
		return nil
	}
	return p
}

// Many declares a multi-valued property backed by a slice.
func Many[T, V any](name, predicate string, field func(*T) *[]V, opts ...PropOption) *Property {
	p := newProperty[T, V](name, predicate, Collection, opts)
	p.get = func(obj any) []Item {
		t, ok := obj.(*T)
		if !ok || t == nil {
			return nil
		}
		values := *field(t)
		items := make([]Item, 0, len(values))
		for _, v := range values {
			if !isNil(v) {
				items = append(items, Item{Value: v})
			}
		}
		return items
	}
	p.set = func(obj any, items []Item) error {
		t, ok := obj.(*T)
		if !ok {
			return mismatch(p, obj)
		}
		values := make([]V, 0, len(items))
		for _, it := range items {
			v, err := convert[V](p, it.Value)
			if err != nil {
				return err
			}
			values = append(values, v)
		}
		*field(t) = values
		return nil
	}
	return p
}

// ReifiedOne declares a single-valued property whose triple may carry annotations.
func ReifiedOne[T, V any](name, predicate string, field func(*T) *resource.Reified[V], opts ...PropOption) *Property {
	p := newProperty[T, V](name, predicate, Single, opts)
	p.Reified = true
	p.get = func(obj any) []Item {
		t, ok := obj.(*T)
		if !ok || t == nil {
			return nil
		}
		r := field(t)
		if isZero(r.Value) {
			return nil
		}
		return []Item{{Value: r.Value, Ext: &r.Extended}}
	}
	p.set = func(obj any, items []Item) error {
		t, ok := obj.(*T)
		if !ok {
			return mismatch(p, obj)
		}
		if len(items) == 0 {
			return nil
		}
		r, err := reified[V](p, items[0])
		if err != nil {
			return err
		}
		*field(t) = r
		return nil
	}
	return p
}

// ReifiedMany declares a multi-valued property of annotated values.
func ReifiedMany[T, V any](name, predicate string, field func(*T) *[]resource.Reified[V], opts ...PropOption) *Property {
	p := newProperty[T, V](name, predicate, Collection, opts)
	p.Reified = true
	p.get = func(obj any) []Item {
		t, ok := obj.(*T)
		if !ok || t == nil {
			return nil
		}
		values := *field(t)
		items := make([]Item, 0, len(values))
		for i := range values {
			if !isNil(values[i].Value) {
				items = append(items, Item{Value: values[i].Value, Ext: &values[i].Extended})
			}
		}
		return items
	}
	p.set = func(obj any, items []Item) error {
		t, ok := obj.(*T)
		if !ok {
			return mismatch(p, obj)
		}
		values := make([]resource.Reified[V], 0, len(items))
		for _, it := range items {
			r, err := reified[V](p, it)
			if err != nil {
				return err
			}
			values = append(values, r)
		}
		*field(t) = values
		return nil
	}
	return p
}

func reified[V any](p *Property, it Item) (resource.Reified[V], error) {
	v, err := convert[V](p, it.Value)
	if err != nil {
		return resource.Reified[V]{}, err
	}
	r := resource.Reified[V]{Value: v}
	if it.Ext != nil {
		r.Extended = *it.Ext
	}
	return r, nil
}

func convert[V any](p *Property, value any) (V, error) {
	var zero V
	if value == nil {
		return zero, nil
	}
	if v, ok := value.(V); ok {
		return v, nil
	}
	rv := reflect.ValueOf(value)
	target := reflect.TypeFor[V]()
	if rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Type().AssignableTo(target) {
		return rv.Elem().Interface().(V), nil
	}
	if rv.Type().ConvertibleTo(target) && rv.Kind() == target.Kind() {
		return rv.Convert(target).Interface().(V), nil
	}
	return zero, &Error{Type: p.owner, Property: p.Name, Err: fmt.Errorf("%w: cannot assign %T to %s", ErrInvalidValue, value, reflect.TypeFor[V]())}
}

func mismatch(p *Property, obj any) error {
	return &Error{Type: p.owner, Property: p.Name, Err: fmt.Errorf("%w: accessor applied to %T", ErrInvalidValue, obj)}
}

func isZero[V any](v V) bool {
	return reflect.ValueOf(&v).Elem().IsZero()
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}

var (
	uriType         = reflect.TypeFor[resource.URI]()
	timeType        = reflect.TypeFor[time.Time]()
	bigIntType      = reflect.TypeFor[*big.Int]()
	bigFloatType    = reflect.TypeFor[*big.Float]()
	literalType     = reflect.TypeFor[rdf.Literal]()
	unparseableType = reflect.TypeFor[resource.Unparseable]()
	linkType        = reflect.TypeFor[resource.Link]()
)

// kindOf derives the value kind from the declared Go type.
func kindOf(t reflect.Type) ValueKind {
	switch t {
	case uriType, linkType:
		return KindURI
	case timeType, bigIntType, bigFloatType, literalType, unparseableType:
		return KindLiteral
	}
	switch t.Kind() {
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return KindDynamic
		}
		return KindResource
	case reflect.Pointer:
		return kindOf(t.Elem())
	case reflect.Struct:
		return KindResource
	default:
		return KindLiteral
	}
}

func isURIType(t reflect.Type) bool {
	return t == uriType || t == linkType || t.Kind() == reflect.String
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
