package bind

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/geoknoesis/rdfbind/graph"
	"github.com/geoknoesis/rdfbind/literal"
	"github.com/geoknoesis/rdfbind/rdf"
	"github.com/geoknoesis/rdfbind/resource"
	"github.com/geoknoesis/rdfbind/shape"
)

// Unmarshaller reads objects out of graphs. It is safe for concurrent use;
// each call keeps its own visited map.
type Unmarshaller struct {
	reg   *shape.Registry
	opts  Options
	codec literal.Codec
}

// NewUnmarshaller returns an Unmarshaller using the shapes in reg.
func NewUnmarshaller(reg *shape.Registry, opts ...Option) *Unmarshaller {
	o := buildOptions(opts)
	return &Unmarshaller{
		reg:   reg,
		opts:  o,
		codec: literal.Codec{Lenient: o.LenientLiterals},
	}
}

var (
	uriType      = reflect.TypeOf(resource.URI(""))
	linkType     = reflect.TypeOf(resource.Link{})
	reifiedOwner = reflect.TypeOf(resource.Extended{})
)

type unmarshalState struct {
	*Unmarshaller
	g        graph.Graph
	visited  map[graph.Node]any
	consumed map[graph.Node]bool
	depth    int
}

func (u *Unmarshaller) newState(g graph.Graph) *unmarshalState {
	return &unmarshalState{
		Unmarshaller: u,
		g:            g,
		visited:      map[graph.Node]any{},
		consumed:     map[graph.Node]bool{},
	}
}

// Unmarshal returns every resource in g that resolves to t or a registered
// subtype of t, in first-seen subject order. Candidates whose resolved type
// cannot be instantiated are skipped. Unmarshalling resource.URI returns the
// rdfs:member URIs of g.
func (u *Unmarshaller) Unmarshal(g graph.Graph, t reflect.Type) ([]any, error) {
	return u.unmarshal(g, t, false)
}

func (u *Unmarshaller) unmarshal(g graph.Graph, t reflect.Type, strict bool) ([]any, error) {
	start := time.Now()
	if baseType(t) == uriType {
		members := Members(g)
		out := make([]any, len(members))
		for i, m := range members {
			out[i] = m
		}
		return out, nil
	}

	s := u.newState(g)
	var d *shape.Descriptor
	if baseType(t) != anyType {
		var err error
		if d, err = u.reg.Resolve(t); err != nil {
			return nil, newError(ErrCodeShape, t, "", nil, err)
		}
	}
	out := []any{}
	candidates := s.candidates(t)
	for _, n := range candidates {
		obj, err := s.candidate(n, t, d)
		if err != nil {
			if !strict && Code(err) == ErrCodeInstantiation {
				u.opts.Logger.Warn("skipping resource", "node", n, "err", err)
				continue
			}
			return nil, err
		}
		if obj != nil {
			out = append(out, obj)
		}
	}
	u.opts.Logger.Debug("unmarshalled graph",
		"type", t, "candidates", len(candidates), "objects", len(out), "elapsed", time.Since(start))
	return out, nil
}

// UnmarshalNode unmarshals the resource n of g into t or the most concrete
// registered subtype named by its rdf:type values.
func (u *Unmarshaller) UnmarshalNode(g graph.Graph, n graph.Node, t reflect.Type) (any, error) {
	s := u.newState(g)
	if baseType(t) == anyType {
		return s.anyResource(n)
	}
	cd, err := u.reg.MostConcrete(s.types(n), t)
	if err != nil {
		return nil, newError(ErrCodeShape, t, "", n, err)
	}
	if !u.reg.IsSubtype(cd.Type, t) {
		if cd, err = u.reg.Resolve(t); err != nil {
			return nil, newError(ErrCodeShape, t, "", n, err)
		}
	}
	return s.instantiate(cd, n)
}

// candidates lists the subjects considered for t.
func (s *unmarshalState) candidates(t reflect.Type) []graph.Node {
	var out []graph.Node
	if s.opts.LooseRoots {
		for _, r := range graph.Roots(s.g) {
			if _, typed := s.g.Object(r, rdf.RDFType); typed {
				out = append(out, r)
			}
		}
		return out
	}
	return graph.SubjectsOfType(s.g, s.reg.SubtypeURIs(t)...)
}

func (s *unmarshalState) candidate(n graph.Node, t reflect.Type, d *shape.Descriptor) (any, error) {
	if obj, ok := s.visited[n]; ok {
		if d != nil && !s.reg.IsSubtype(reflect.TypeOf(obj), t) {
			return nil, nil
		}
		return obj, nil
	}
	if d == nil {
		return s.anyResource(n)
	}
	cd, err := s.reg.MostConcrete(s.types(n), t)
	if err != nil {
		return nil, newError(ErrCodeShape, t, "", n, err)
	}
	if !s.reg.IsSubtype(cd.Type, t) {
		s.opts.Logger.Debug("resource resolves to an unrelated type", "node", n, "type", cd.Type)
		return nil, nil
	}
	return s.instantiate(cd, n)
}

func (s *unmarshalState) instantiate(d *shape.Descriptor, n graph.Node) (any, error) {
	obj, err := d.New()
	if err != nil {
		return nil, newError(ErrCodeInstantiation, d.Type, "", n, err)
	}
	s.visited[n] = obj
	if err := s.populate(obj, d, n); err != nil {
		return nil, err
	}
	return obj, nil
}

func (s *unmarshalState) anyResource(n graph.Node) (*resource.Any, error) {
	a := &resource.Any{}
	s.visited[n] = a
	if err := s.populate(a, nil, n); err != nil {
		return nil, err
	}
	return a, nil
}

type pending struct {
	prop  *shape.Property
	items []shape.Item
}

// populate fills obj from the triples whose subject is n. d is nil for
// resources without a shape.
func (s *unmarshalState) populate(obj any, d *shape.Descriptor, n graph.Node) error {
	owner, ownType := anyType, ""
	if d != nil {
		owner, ownType = d.Type, d.TypeURI
	}
	if s.depth >= s.opts.MaxDepth {
		return newError(ErrCodeDepthExceeded, owner, "", n, fmt.Errorf("depth %d", s.depth))
	}
	s.depth++
	defer func() { s.depth-- }()

	if id, ok := obj.(resource.Identifiable); ok {
		if iri, ok := n.(rdf.IRI); ok {
			id.SetResourceURI(resource.URI(iri.Value))
		}
	}
	var ext *resource.Extended
	if e, ok := obj.(resource.Extensible); ok {
		ext = e.Extensions()
	}

	var multi []*pending
	byProp := map[*shape.Property]*pending{}
	assigned := map[*shape.Property]bool{}
	for _, t := range s.g.Match(n, nil, nil) {
		var prop *shape.Property
		if d != nil {
			prop, _ = d.Property(t.P.Value)
		}
		if prop == nil {
			if err := s.undeclared(ext, owner, ownType, t); err != nil {
				return err
			}
			continue
		}
		for _, o := range s.expand(prop, t.O) {
			v, ok, err := s.propertyValue(prop, o, owner)
			if err != nil {
				if s.opts.LenientLiterals && errors.Is(err, literal.ErrInvalidLexical) {
					s.keepUnparseable(ext, owner, t.P, o)
					continue
				}
				return err
			}
			if !ok {
				continue
			}
			item := shape.Item{Value: v}
			if prop.Reified {
				if item.Ext, err = s.reification(n, t.P, t.O); err != nil {
					return err
				}
			}
			if prop.Multi() {
				p, seen := byProp[prop]
				if !seen {
					p = &pending{prop: prop}
					byProp[prop] = p
					multi = append(multi, p)
				}
				p.items = append(p.items, item)
				continue
			}
			if assigned[prop] {
				return newError(ErrCodeCardinality, owner, prop.Name, o,
					fmt.Errorf("more than one value for single-valued %s", prop.Predicate))
			}
			if err := prop.Assign(obj, []shape.Item{item}); err != nil {
				return newError(ErrCodeShape, owner, prop.Name, v, err)
			}
			assigned[prop] = true
		}
	}
	for _, p := range multi {
		if err := p.prop.Assign(obj, p.items); err != nil {
			return newError(ErrCodeShape, owner, p.prop.Name, nil, err)
		}
	}
	return nil
}

// expand replaces an RDF list or container value of a multi-valued
// property by its members.
func (s *unmarshalState) expand(prop *shape.Property, o graph.Node) []graph.Node {
	if !prop.Multi() || !graph.IsResource(o) {
		return []graph.Node{o}
	}
	if o == graph.Node(rdf.RDFNil) {
		s.consumed[o] = true
		return nil
	}
	if _, hasFirst := s.g.Object(o, rdf.RDFFirst); hasFirst {
		if members, ok := graph.ListMembers(s.g, o); ok {
			s.consumed[o] = true
			return members
		}
	}
	if members, _, ok := graph.ContainerMembers(s.g, o); ok {
		s.consumed[o] = true
		return members
	}
	return []graph.Node{o}
}

// undeclared records a triple no property covers: rdf:type values become
// declared types, anything else an extended property.
func (s *unmarshalState) undeclared(ext *resource.Extended, owner reflect.Type, ownType string, t rdf.Triple) error {
	if t.P == rdf.RDFType {
		if iri, ok := t.O.(rdf.IRI); ok && ext != nil && iri.Value != ownType {
			ext.AddType(resource.URI(iri.Value))
		}
		return nil
	}
	if ext == nil {
		s.opts.Logger.Debug("no property for predicate", "type", owner, "predicate", t.P.Value)
		return nil
	}
	v, ok, err := s.extendedValue(t.O, owner)
	if err != nil || !ok {
		return err
	}
	ext.Add(s.qname(t.P), v)
	return nil
}

func (s *unmarshalState) extendedValue(o graph.Node, owner reflect.Type) (any, bool, error) {
	if lit, ok := o.(rdf.Literal); ok {
		v, err := s.codec.Natural(lit)
		if err != nil {
			if s.opts.LenientLiterals {
				return resource.Unparseable{Lexical: lit.Lexical, Datatype: lit.Datatype.Value}, true, nil
			}
			return nil, false, newError(ErrCodeLiteral, owner, "", lit, err)
		}
		return v, true, nil
	}
	if v, ok := s.visited[o]; ok {
		return v, true, nil
	}
	if s.consumed[o] {
		return nil, false, nil
	}
	return s.anyOrURI(o)
}

// anyOrURI turns a node into a bare URI when it is named and has no
// properties, and into a resource.Any otherwise.
func (s *unmarshalState) anyOrURI(o graph.Node) (any, bool, error) {
	if iri, ok := o.(rdf.IRI); ok && len(s.g.Match(o, nil, nil)) == 0 {
		return resource.URI(iri.Value), true, nil
	}
	a, err := s.anyResource(o)
	if err != nil {
		return nil, false, err
	}
	return a, true, nil
}

func (s *unmarshalState) propertyValue(prop *shape.Property, o graph.Node, owner reflect.Type) (any, bool, error) {
	elem := prop.ElemType
	if lit, ok := o.(rdf.Literal); ok {
		if prop.Kind == shape.KindURI || prop.Kind == shape.KindResource {
			s.opts.Logger.Warn("literal for a resource property", "type", owner, "accessor", prop.Name, "value", lit)
			return nil, false, nil
		}
		target := elem
		if prop.Kind == shape.KindDynamic {
			target = nil
		}
		v, err := s.codec.Decode(lit, target)
		if err != nil {
			return nil, false, newError(ErrCodeLiteral, owner, prop.Name, lit, err)
		}
		return v, true, nil
	}
	switch prop.Kind {
	case shape.KindURI:
		return s.uriValue(o, elem, owner, prop.Name)
	case shape.KindLiteral:
		s.opts.Logger.Warn("resource for a literal property", "type", owner, "accessor", prop.Name, "value", o)
		return nil, false, nil
	case shape.KindDynamic:
		return s.dynamic(o, elem)
	}
	return s.nested(o, elem, owner, prop.Name)
}

func (s *unmarshalState) uriValue(o graph.Node, elem, owner reflect.Type, accessor string) (any, bool, error) {
	iri, ok := o.(rdf.IRI)
	if !ok {
		s.opts.Logger.Debug("blank node for a URI property", "type", owner, "accessor", accessor)
		return nil, false, nil
	}
	if !s.opts.AllowRelativeURIs && !rdf.IsAbsoluteIRI(iri.Value) {
		return nil, false, newError(ErrCodeRelativeURI, owner, accessor, iri.Value, nil)
	}
	var v reflect.Value
	switch base := baseType(elem); {
	case base == uriType:
		v = reflect.ValueOf(resource.URI(iri.Value))
	case base == linkType:
		v = reflect.ValueOf(resource.Link{Target: resource.URI(iri.Value)})
	case base.Kind() == reflect.String:
		v = reflect.ValueOf(iri.Value).Convert(base)
	default:
		return nil, false, newError(ErrCodeShape, owner, accessor, iri.Value, fmt.Errorf("%s cannot hold a URI", elem))
	}
	if elem.Kind() == reflect.Pointer {
		p := reflect.New(v.Type())
		p.Elem().Set(v)
		v = p
	}
	return v.Interface(), true, nil
}

// nested resolves a resource node for a property of type elem.
func (s *unmarshalState) nested(o graph.Node, elem, owner reflect.Type, accessor string) (any, bool, error) {
	if v, ok := s.visited[o]; ok {
		return s.fit(v, elem, owner, accessor)
	}
	want := baseType(elem)
	cd, err := s.reg.MostConcrete(s.types(o), want)
	if err != nil {
		return nil, false, newError(ErrCodeShape, owner, accessor, o, err)
	}
	if !s.reg.IsSubtype(cd.Type, want) {
		if !s.reg.IsSubtype(want, cd.Type) {
			s.opts.Logger.Warn("nested resource is not assignable", "node", o, "resolved", cd.Type, "type", owner, "accessor", accessor)
			return nil, false, nil
		}
		if cd, err = s.reg.Resolve(want); err != nil {
			return nil, false, newError(ErrCodeShape, owner, accessor, o, err)
		}
	}
	obj, err := s.instantiate(cd, o)
	if err != nil {
		return nil, false, err
	}
	return s.fit(obj, elem, owner, accessor)
}

// dynamic resolves a resource node for an untyped property: a registered
// type named by its rdf:type, else a resource.Any or a bare URI.
func (s *unmarshalState) dynamic(o graph.Node, elem reflect.Type) (any, bool, error) {
	if v, ok := s.visited[o]; ok {
		return v, true, nil
	}
	if types := s.types(o); len(types) > 0 {
		cd, err := s.reg.MostConcrete(types, elem)
		if err != nil {
			return nil, false, newError(ErrCodeShape, elem, "", o, err)
		}
		if cd.Participates() && !cd.Abstract() {
			obj, err := s.instantiate(cd, o)
			return obj, err == nil, err
		}
	}
	return s.anyOrURI(o)
}

// fit adapts obj to elem, upcasting through Extends when needed.
func (s *unmarshalState) fit(obj any, elem, owner reflect.Type, accessor string) (any, bool, error) {
	if assignable(obj, elem) {
		return obj, true, nil
	}
	if d, err := s.reg.Lookup(obj); err == nil {
		if up, ok := d.Upcast(obj, baseType(elem), s.reg); ok && assignable(up, elem) {
			return up, true, nil
		}
	}
	s.opts.Logger.Warn("nested resource is not assignable", "value", fmt.Sprintf("%T", obj), "type", owner, "accessor", accessor)
	return nil, false, nil
}

func assignable(v any, elem reflect.Type) bool {
	t := reflect.TypeOf(v)
	return t.AssignableTo(elem) || (elem.Kind() != reflect.Pointer && t == reflect.PointerTo(elem))
}

// reification decodes the annotations attached to (subj, p, o).
func (s *unmarshalState) reification(subj graph.Node, p rdf.IRI, o graph.Node) (*resource.Extended, error) {
	ext := &resource.Extended{}
	for _, r := range s.g.Reifications(subj, p, o) {
		s.consumed[r] = true
		for _, t := range s.g.Match(r, nil, nil) {
			switch t.P {
			case rdf.RDFSubject, rdf.RDFPredicate, rdf.RDFObject:
				continue
			}
			if err := s.undeclared(ext, reifiedOwner, rdf.RDFStatement.Value, t); err != nil {
				return nil, err
			}
		}
	}
	return ext, nil
}

func (s *unmarshalState) keepUnparseable(ext *resource.Extended, owner reflect.Type, p rdf.IRI, o graph.Node) {
	lit := o.(rdf.Literal)
	if ext == nil {
		s.opts.Logger.Warn("dropping unparseable literal", "type", owner, "predicate", p.Value, "value", lit)
		return
	}
	ext.Add(s.qname(p), resource.Unparseable{Lexical: lit.Lexical, Datatype: lit.Datatype.Value})
}

// qname names p with the graph's prefix for its namespace, binding a
// generated j.N prefix when none exists.
func (s *unmarshalState) qname(p rdf.IRI) resource.QName {
	q := resource.NewQName(p.Value)
	if q.Namespace == "" {
		return q
	}
	if prefix, ok := s.g.Prefix(q.Namespace); ok {
		q.Prefix = prefix
		return q
	}
	taken := s.g.Prefixes()
	for i := 0; ; i++ {
		candidate := "j." + strconv.Itoa(i)
		if _, ok := taken[candidate]; !ok {
			s.g.SetPrefix(candidate, q.Namespace)
			q.Prefix = candidate
			return q
		}
	}
}

func (s *unmarshalState) types(n graph.Node) []string {
	var out []string
	for _, t := range s.g.Objects(n, rdf.RDFType) {
		if iri, ok := t.(rdf.IRI); ok {
			out = append(out, iri.Value)
		}
	}
	return out
}
