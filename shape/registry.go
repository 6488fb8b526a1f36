package shape

import (
	"fmt"
	"reflect"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Registry maps Go types to shapes and type URIs to implementations.
// Registration happens at start-up; lookups are safe for concurrent use.
type Registry struct {
	mu           sync.RWMutex
	defs         map[reflect.Type]*Definition
	byURI        map[string][]*Definition
	order        []*Definition
	capabilities []capability

	cache sync.Map
	group singleflight.Group
}

type capability struct {
	iface    reflect.Type
	prefixes []Pair
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		defs:  map[reflect.Type]*Definition{},
		byURI: map[string][]*Definition{},
	}
}

// Register adds definitions. Registering the same Go type twice fails.
func (r *Registry) Register(defs ...*Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range defs {
		if _, dup := r.defs[d.typ]; dup {
			return &Error{Type: d.typ, Err: fmt.Errorf("%w: type registered twice", ErrDuplicate)}
		}
		r.defs[d.typ] = d
		r.order = append(r.order, d)
		if uri := d.TypeURI(); uri != "" {
			r.byURI[uri] = append(r.byURI[uri], d)
		}
	}
	r.cache.Clear()
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(defs ...*Definition) *Registry {
	if err := r.Register(defs...); err != nil {
		panic(err)
	}
	return r
}

// Capability declares prefixes contributed to every type implementing I.
func Capability[I any](r *Registry, prefixes ...Pair) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.capabilities = append(r.capabilities, capability{iface: reflect.TypeFor[I](), prefixes: prefixes})
	r.cache.Clear()
}

// Resolve returns the descriptor of t. Pointer types resolve to their
// element. Unregistered interfaces resolve to an abstract, anonymous
// descriptor so their registered implementations can be found.
func (r *Registry) Resolve(t reflect.Type) (*Descriptor, error) {
	t = baseType(t)
	if d, ok := r.cache.Load(t); ok {
		return d.(*Descriptor), nil
	}
	v, err, _ := r.group.Do(flightKey(t), func() (any, error) {
		if d, ok := r.cache.Load(t); ok {
			return d, nil
		}
		d, err := r.build(t, map[reflect.Type]bool{})
		if err != nil {
			return nil, err
		}
		actual, _ := r.cache.LoadOrStore(t, d)
		return actual, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Descriptor), nil
}

// flightKey identifies t by its runtime type descriptor; names collide for
// types declared inside different functions.
func flightKey(t reflect.Type) string { return fmt.Sprintf("%p", t) }

// Lookup resolves the shape of a value's dynamic type.
func (r *Registry) Lookup(v any) (*Descriptor, error) {
	if v == nil {
		return nil, &Error{Err: ErrUnregistered}
	}
	return r.Resolve(reflect.TypeOf(v))
}

// Registered reports whether t has a definition.
func (r *Registry) Registered(t reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.defs[baseType(t)]
	return ok
}

func (r *Registry) build(t reflect.Type, visiting map[reflect.Type]bool) (*Descriptor, error) {
	if visiting[t] {
		return nil, &Error{Type: t, Err: fmt.Errorf("%w: Extends cycle", ErrDuplicate)}
	}
	visiting[t] = true
	defer delete(visiting, t)

	r.mu.RLock()
	def, ok := r.defs[t]
	caps := r.capabilities
	r.mu.RUnlock()
	if !ok {
		if t.Kind() == reflect.Interface {
			return &Descriptor{Type: t, byPredicate: map[string]*Property{}}, nil
		}
		return nil, &Error{Type: t, Err: ErrUnregistered}
	}

	d := &Descriptor{
		Type:        t,
		TypeURI:     def.TypeURI(),
		byPredicate: map[string]*Property{},
		factory:     def.factory,
		custom:      def.custom,
		parents:     def.parents,
	}
	ns := NewNamespaces(def.prefixes...)
	for _, p := range def.props {
		if p.owner != t {
			return nil, &Error{Type: t, Property: p.Name, Err: fmt.Errorf("%w: declared for %s", ErrInvalidValue, p.owner)}
		}
		if err := d.addProperty(p); err != nil {
			return nil, err
		}
	}
	for _, link := range def.parents {
		pd, err := r.build(baseType(link.typ), visiting)
		if err != nil {
			return nil, err
		}
		d.Depth = max(d.Depth, pd.Depth+1)
		ns.Merge(pd.Namespaces)
		for _, p := range pd.Properties {
			if _, shadowed := d.byPredicate[p.Predicate]; shadowed {
				continue
			}
			if err := d.addProperty(p.inherit(t, link.upcast)); err != nil {
				return nil, err
			}
		}
	}
	for _, c := range caps {
		if implements(t, c.iface) {
			ns.Merge(c.prefixes)
		}
	}
	d.Namespaces = ns.Pairs()
	return d, nil
}

func (d *Descriptor) addProperty(p *Property) error {
	if err := p.validate(); err != nil {
		return err
	}
	if _, dup := d.byPredicate[p.Predicate]; dup {
		return &Error{Type: d.Type, Property: p.Name, Err: fmt.Errorf("%w: predicate %s", ErrDuplicate, p.Predicate)}
	}
	d.byPredicate[p.Predicate] = p
	d.Properties = append(d.Properties, p)
	return nil
}

// IsSubtype reports whether sub can stand in for super: the same type, an
// implementation of the interface super, or a type that Extends super.
func (r *Registry) IsSubtype(sub, super reflect.Type) bool {
	sub, super = baseType(sub), baseType(super)
	if sub == super || implements(sub, super) {
		return true
	}
	r.mu.RLock()
	def, ok := r.defs[sub]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	for _, p := range def.parents {
		if r.IsSubtype(p.typ, super) {
			return true
		}
	}
	return false
}

// MostConcrete picks the registered, instantiable type for a node whose
// rdf:types are typeURIs. Subtypes of requested win over unrelated types,
// deeper Extends chains win over shallower ones, and declaration order breaks
// ties. When no type URI is registered the requested type is returned.
func (r *Registry) MostConcrete(typeURIs []string, requested reflect.Type) (*Descriptor, error) {
	requested = baseType(requested)
	r.mu.RLock()
	var matches []*Definition
	for _, uri := range typeURIs {
		for _, d := range r.byURI[uri] {
			if d.factory != nil {
				matches = append(matches, d)
			}
		}
	}
	r.mu.RUnlock()

	var best, bestOther *Descriptor
	for _, def := range matches {
		d, err := r.Resolve(def.typ)
		if err != nil {
			return nil, err
		}
		if r.IsSubtype(d.Type, requested) {
			if best == nil || d.Depth > best.Depth {
				best = d
			}
		} else if bestOther == nil || d.Depth > bestOther.Depth {
			bestOther = d
		}
	}
	switch {
	case best != nil:
		return best, nil
	case bestOther != nil:
		return bestOther, nil
	default:
		return r.Resolve(requested)
	}
}

// SubtypeURIs lists the type URIs of t and of every registered subtype of t.
func (r *Registry) SubtypeURIs(t reflect.Type) []string {
	r.mu.RLock()
	order := r.order
	r.mu.RUnlock()
	seen := map[string]bool{}
	var out []string
	for _, d := range order {
		uri := d.TypeURI()
		if uri == "" || seen[uri] || !r.IsSubtype(d.typ, t) {
			continue
		}
		seen[uri] = true
		out = append(out, uri)
	}
	return out
}

// baseType strips pointers.
func baseType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// implements reports whether *t satisfies the interface iface.
func implements(t, iface reflect.Type) bool {
	if iface.Kind() != reflect.Interface || t == iface {
		return false
	}
	if t.Kind() == reflect.Interface {
		return t.Implements(iface)
	}
	return reflect.PointerTo(t).Implements(iface)
}
