package bind

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/geoknoesis/rdfbind/graph"
	"github.com/geoknoesis/rdfbind/literal"
	"github.com/geoknoesis/rdfbind/rdf"
	"github.com/geoknoesis/rdfbind/resource"
	"github.com/geoknoesis/rdfbind/shape"
)

// Marshaller writes objects into fresh graphs created by a backend.
// A Marshaller is safe for concurrent use; each call builds its own graph.
type Marshaller struct {
	backend graph.Backend
	reg     *shape.Registry
	opts    Options
	codec   literal.Codec
}

// NewMarshaller returns a Marshaller over backend using the shapes in reg.
func NewMarshaller(backend graph.Backend, reg *shape.Registry, opts ...Option) *Marshaller {
	o := buildOptions(opts)
	return &Marshaller{
		backend: backend,
		reg:     reg,
		opts:    o,
		codec:   literal.Codec{InferFromShape: o.InferTypeFromShape},
	}
}

// Marshal writes objects into a new graph. sel restricts the emitted
// properties; nil emits everything.
func (m *Marshaller) Marshal(objects []any, sel *Selection) (graph.Graph, error) {
	return m.marshal(nil, objects, sel)
}

// MarshalContainer writes objects as members of the container c, adding
// paging triples when c carries a ResponseInfo.
func (m *Marshaller) MarshalContainer(c *Container, objects []any, sel *Selection) (graph.Graph, error) {
	if c == nil {
		c = &Container{}
	}
	return m.marshal(c, objects, sel)
}

type identity struct {
	typ reflect.Type
	ptr uintptr
}

// marshalState is the per-call context.
type marshalState struct {
	*Marshaller
	g       graph.Graph
	ns      *shape.Namespaces
	visited map[identity]graph.Node
	depth   int
}

// site locates the value being written, for diagnostics and the
// self-reference guard.
type site struct {
	owner    reflect.Type
	accessor string
	prop     *shape.Property
	parent   string
}

var (
	anyType       = reflect.TypeOf(resource.Any{})
	containerType = reflect.TypeOf(Container{})
	infoType      = reflect.TypeOf(ResponseInfo{})
)

func (m *Marshaller) marshal(c *Container, objects []any, sel *Selection) (graph.Graph, error) {
	start := time.Now()
	s := &marshalState{
		Marshaller: m,
		g:          m.backend.NewGraph(),
		ns:         shape.NewNamespaces(m.opts.Namespaces...),
		visited:    map[identity]graph.Node{},
	}

	var desc graph.Node
	if c != nil {
		var err error
		if desc, err = s.container(c, len(objects), sel); err != nil {
			return nil, err
		}
	}
	for _, obj := range objects {
		n, ok, err := s.top(obj, sel)
		if err != nil {
			return nil, err
		}
		if ok && desc != nil {
			if err := s.add(desc, rdf.RDFSMember, n); err != nil {
				return nil, err
			}
		}
	}
	if c != nil {
		s.ns.Ensure("rdf", rdf.RDFNamespace)
		s.ns.Ensure("rdfs", rdf.RDFSNamespace)
		if c.ResponseInfo != nil {
			s.ns.Ensure("oslc", rdf.OSLCNamespace)
		}
	}
	for _, p := range s.ns.Pairs() {
		s.g.SetPrefix(p.Prefix, p.Namespace)
	}
	m.opts.Logger.Debug("marshalled graph",
		"backend", m.backend.Name(), "objects", len(objects), "triples", s.g.Len(), "elapsed", time.Since(start))
	return s.g, nil
}

func (s *marshalState) container(c *Container, count int, sel *Selection) (graph.Node, error) {
	desc, err := s.subject(string(c.About), containerType)
	if err != nil {
		return nil, err
	}
	if s.opts.QueryResultAsContainer {
		if err := s.add(desc, rdf.RDFType, rdf.RDFSContainer); err != nil {
			return nil, err
		}
	}
	if err := s.extended(desc, &c.Extended, sel, site{owner: containerType, parent: string(c.About)}); err != nil {
		return nil, err
	}

	ri := c.ResponseInfo
	if ri == nil {
		return desc, nil
	}
	info := desc
	if ri.About != "" {
		if info, err = s.subject(string(ri.About), infoType); err != nil {
			return nil, err
		}
		if err := s.add(info, rdf.RDFType, rdf.OSLCResponseInfo); err != nil {
			return nil, err
		}
	}
	total := count
	if ri.TotalCount != nil {
		total = *ri.TotalCount
	}
	if total < math.MinInt32 || total > math.MaxInt32 {
		return nil, newError(ErrCodeLiteral, infoType, "TotalCount", total, fmt.Errorf("%w: out of xsd:int range", literal.ErrInvalidLexical))
	}
	lit, err := s.codec.Encode(int32(total), literal.Hint{})
	if err != nil {
		return nil, newError(ErrCodeLiteral, infoType, "TotalCount", total, err)
	}
	if err := s.add(info, rdf.OSLCTotalCount, lit); err != nil {
		return nil, err
	}
	if ri.NextPage != "" {
		next, err := s.uri(string(ri.NextPage), site{owner: infoType, accessor: "NextPage"})
		if err != nil {
			return nil, err
		}
		if err := s.add(info, rdf.OSLCNextPage, next); err != nil {
			return nil, err
		}
	}
	return desc, s.extended(info, &ri.Extended, sel, site{owner: infoType, parent: string(ri.About)})
}

// top writes one input object.
func (s *marshalState) top(obj any, sel *Selection) (graph.Node, bool, error) {
	switch v := obj.(type) {
	case nil:
		return nil, false, nil
	case resource.URI:
		n, err := s.uri(string(v), site{accessor: "member"})
		return n, err == nil, err
	case *resource.Any:
		if v == nil {
			return nil, false, nil
		}
		n, err := s.any(v, sel)
		return n, err == nil, err
	}
	if isNilPointer(obj) {
		return nil, false, nil
	}
	n, err := s.resource(obj, sel, "")
	return n, err == nil, err
}

// resource writes a shaped object and returns its node. parent is the URI
// of the referencing subject; a nested object with the same URI is linked
// without being written again.
func (s *marshalState) resource(obj any, sel *Selection, parent string) (graph.Node, error) {
	obj = addressable(obj)
	key, keyed := identityOf(obj)
	if keyed {
		if n, ok := s.visited[key]; ok {
			return n, nil
		}
	}
	d, err := s.reg.Lookup(obj)
	if err != nil {
		return nil, newError(ErrCodeShape, reflect.TypeOf(obj), "", nil, err)
	}
	uri := aboutOf(obj)
	n, err := s.subject(uri, d.Type)
	if err != nil {
		return nil, err
	}
	if parent != "" && uri != "" && strings.EqualFold(uri, parent) {
		return n, nil
	}
	if s.depth >= s.opts.MaxDepth {
		return nil, newError(ErrCodeDepthExceeded, d.Type, "", uri, fmt.Errorf("depth %d", s.depth))
	}
	s.depth++
	defer func() { s.depth-- }()
	if keyed {
		s.visited[key] = n
	}

	s.ns.Merge(d.Namespaces)
	s.ns.Merge(sortedPairs(d.CustomNamespaces()))
	if d.Participates() {
		if err := s.add(n, rdf.RDFType, s.g.NamedNode(d.TypeURI)); err != nil {
			return nil, err
		}
	}
	if sel.IsSingleton() {
		return n, nil
	}
	for _, p := range d.Properties {
		items := p.Values(obj)
		if len(items) == 0 {
			continue
		}
		child, onlyNested, ok := sel.child(p.Predicate)
		if !ok {
			continue
		}
		st := site{owner: d.Type, accessor: p.Name, prop: p, parent: uri}
		if err := s.property(n, p, items, child, onlyNested, st); err != nil {
			return nil, err
		}
	}
	if ext, ok := obj.(resource.Extensible); ok {
		if err := s.extended(n, ext.Extensions(), sel, site{owner: d.Type, parent: uri}); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (s *marshalState) property(n graph.Node, p *shape.Property, items []shape.Item, sel *Selection, onlyNested bool, st site) error {
	pred := s.g.NamedNode(p.Predicate)
	if p.Container != shape.NoContainer {
		members := make([]graph.Node, 0, len(items))
		for _, it := range items {
			m, ok, err := s.value(it.Value, sel, onlyNested, st)
			if err != nil {
				return err
			}
			if ok {
				members = append(members, m)
			}
		}
		if len(members) == 0 {
			return nil
		}
		return s.add(n, pred, s.g.Container(members, p.Container.TypeIRI()))
	}
	for _, it := range items {
		if p.Reified {
			if err := s.reified(n, pred, it, sel, onlyNested, st); err != nil {
				return err
			}
			continue
		}
		o, ok, err := s.value(it.Value, sel, onlyNested, st)
		if err != nil {
			return err
		}
		if ok {
			if err := s.add(n, pred, o); err != nil {
				return err
			}
		}
	}
	return nil
}

// reified writes the base triple, then a statement node carrying the
// annotations. A statement node left with only its four implicit triples
// is removed again.
func (s *marshalState) reified(n graph.Node, pred rdf.IRI, it shape.Item, sel *Selection, onlyNested bool, st site) error {
	o, ok, err := s.value(it.Value, sel, onlyNested, st)
	if err != nil || !ok {
		return err
	}
	if err := s.add(n, pred, o); err != nil {
		return err
	}
	if sel.IsSingleton() || it.Ext == nil {
		return nil
	}
	r := s.g.Reify(n, pred, o)
	if err := s.extended(r, it.Ext, sel, site{owner: st.owner, accessor: st.accessor, parent: st.parent}); err != nil {
		return err
	}
	if onlyImplicit(s.g, r) {
		s.g.RemoveAll(r)
		s.opts.Logger.Debug("stripped empty reification", "predicate", pred.Value)
	}
	return nil
}

func onlyImplicit(g graph.Graph, r graph.Node) bool {
	triples := g.Match(r, nil, nil)
	if len(triples) > 4 {
		return false
	}
	for _, t := range triples {
		switch t.P {
		case rdf.RDFSubject, rdf.RDFPredicate, rdf.RDFObject, rdf.RDFType:
		default:
			return false
		}
	}
	return true
}

// extended writes declared types and undeclared properties.
func (s *marshalState) extended(n graph.Node, ext *resource.Extended, sel *Selection, st site) error {
	if ext.IsEmpty() {
		return nil
	}
	for _, t := range ext.Types() {
		if !sel.allowsType(string(t)) {
			continue
		}
		if err := s.add(n, rdf.RDFType, s.g.NamedNode(string(t))); err != nil {
			return err
		}
	}
	var err error
	ext.Range(func(q resource.QName, v any) bool {
		child, onlyNested, ok := sel.child(q.URI())
		if !ok {
			return true
		}
		if q.Namespace != "" {
			s.ns.Ensure(s.prefixFor(q), q.Namespace)
		}
		pred := s.g.Predicate(q.Namespace, q.Local)
		est := site{owner: st.owner, accessor: q.String(), parent: st.parent}
		values := []any{v}
		if coll, ok := v.([]any); ok {
			values = coll
		}
		for _, x := range values {
			o, ok, e := s.value(x, child, onlyNested, est)
			if e != nil {
				err = e
				return false
			}
			if !ok {
				continue
			}
			if e := s.add(n, pred, o); e != nil {
				err = e
				return false
			}
		}
		return true
	})
	return err
}

// value dispatches one property value to a node. ok is false when the
// value is skipped.
func (s *marshalState) value(v any, sel *Selection, onlyNested bool, st site) (graph.Node, bool, error) {
	switch x := v.(type) {
	case nil:
		return nil, false, nil
	case resource.URI:
		if onlyNested {
			return nil, false, nil
		}
		n, err := s.uri(string(x), st)
		return n, err == nil, err
	case resource.Link:
		if onlyNested || x.Target == "" {
			return nil, false, nil
		}
		n, err := s.uri(string(x.Target), st)
		return n, err == nil, err
	case *resource.Any:
		if x == nil {
			return nil, false, nil
		}
		n, err := s.any(x, sel)
		return n, err == nil, err
	}
	if isNilPointer(v) {
		return nil, false, nil
	}
	t := reflect.TypeOf(v)
	if st.prop != nil && st.prop.Kind == shape.KindURI && t.Kind() == reflect.String {
		if onlyNested {
			return nil, false, nil
		}
		n, err := s.uri(reflect.ValueOf(v).String(), st)
		return n, err == nil, err
	}
	if literal.Supports(t) {
		if onlyNested {
			return nil, false, nil
		}
		var hint literal.Hint
		if st.prop != nil {
			hint = literal.Hint{XMLLiteral: st.prop.XMLLiteral, Datatype: st.prop.Datatype}
		}
		lit, err := s.codec.Encode(v, hint)
		switch {
		case errors.Is(err, literal.ErrUnsupportedType):
			s.skip(v, st)
			return nil, false, nil
		case err != nil:
			return nil, false, newError(ErrCodeLiteral, st.owner, st.accessor, v, err)
		}
		return lit, true, nil
	}
	if s.reg.Registered(t) {
		n, err := s.resource(v, sel, st.parent)
		return n, err == nil, err
	}
	s.skip(v, st)
	return nil, false, nil
}

// any writes a resource of unknown shape from its types and extended properties.
func (s *marshalState) any(a *resource.Any, sel *Selection) (graph.Node, error) {
	key, _ := identityOf(a)
	if n, ok := s.visited[key]; ok {
		return n, nil
	}
	uri := string(a.About)
	n, err := s.subject(uri, anyType)
	if err != nil {
		return nil, err
	}
	if s.depth >= s.opts.MaxDepth {
		return nil, newError(ErrCodeDepthExceeded, anyType, "", uri, fmt.Errorf("depth %d", s.depth))
	}
	s.depth++
	defer func() { s.depth-- }()
	s.visited[key] = n
	return n, s.extended(n, &a.Extended, sel, site{owner: anyType, parent: uri})
}

func (s *marshalState) skip(v any, st site) {
	accessor := st.accessor
	if accessor == "" {
		accessor = "extended property"
	}
	s.opts.Logger.Warn("could not serialize value", "type", fmt.Sprintf("%T", v), "owner", st.owner, "accessor", accessor)
}

// subject returns the node for an identifying URI; empty means anonymous.
func (s *marshalState) subject(uri string, owner reflect.Type) (graph.Node, error) {
	if uri == "" {
		return s.g.NewNode(), nil
	}
	return s.uri(uri, site{owner: owner, accessor: "About"})
}

func (s *marshalState) uri(uri string, st site) (graph.Node, error) {
	if !s.opts.AllowRelativeURIs && !rdf.IsAbsoluteIRI(uri) {
		return nil, newError(ErrCodeRelativeURI, st.owner, st.accessor, uri, nil)
	}
	return s.g.NamedNode(uri), nil
}

func (s *marshalState) add(subj graph.Node, p rdf.IRI, o graph.Node) error {
	if err := s.g.Add(subj, p, o); err != nil {
		return fmt.Errorf("bind: %w", err)
	}
	return nil
}

func sortedPairs(m map[string]string) []shape.Pair {
	if len(m) == 0 {
		return nil
	}
	out := make([]shape.Pair, 0, len(m))
	for prefix, ns := range m {
		out = append(out, shape.Pair{Prefix: prefix, Namespace: ns})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Prefix < out[j].Prefix })
	return out
}

func aboutOf(obj any) string {
	if id, ok := obj.(resource.Identifiable); ok {
		return string(id.ResourceURI())
	}
	return ""
}

// addressable returns a pointer to obj so shape accessors can read it.
func addressable(obj any) any {
	rv := reflect.ValueOf(obj)
	if rv.Kind() == reflect.Pointer {
		return obj
	}
	p := reflect.New(rv.Type())
	p.Elem().Set(rv)
	return p.Interface()
}

func identityOf(obj any) (identity, bool) {
	rv := reflect.ValueOf(obj)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return identity{}, false
	}
	return identity{typ: rv.Type(), ptr: rv.Pointer()}, true
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// baseType strips pointers.
func baseType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// prefixFor returns the prefix to bind for an extended property. QNames
// without one reuse a bound prefix or get the first free j.N.
func (s *marshalState) prefixFor(q resource.QName) string {
	if q.Prefix != "" {
		return q.Prefix
	}
	if p, ok := s.ns.Prefix(q.Namespace); ok {
		return p
	}
	taken := s.ns.Map()
	for i := 0; ; i++ {
		candidate := "j." + strconv.Itoa(i)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}
