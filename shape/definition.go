package shape

import (
	"reflect"
)

// Definition is the static declaration of one type's shape.
type Definition struct {
	typ       reflect.Type
	namespace string
	name      string
	prefixes  []Pair
	custom    func() map[string]string
	parents   []parent
	props     []*Property
	factory   func() any
}

type parent struct {
	typ    reflect.Type
	upcast func(any) any
}

// Option adjusts a Definition.
type Option func(*Definition)

// Describe declares the shape of struct type T. The type URI is
// namespace+name; an empty name declares a type that does not participate
// in the graph on its own.
func Describe[T any](namespace, name string, opts ...Option) *Definition {
	d := &Definition{
		typ:       reflect.TypeFor[T](),
		namespace: namespace,
		name:      name,
		factory:   func() any { return new(T) },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Abstract declares an interface type I with a type URI. Unmarshalling into
// I resolves a registered implementation; I itself is never instantiated.
func Abstract[I any](namespace, name string, opts ...Option) *Definition {
	d := &Definition{
		typ:       reflect.TypeFor[I](),
		namespace: namespace,
		name:      name,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.factory = nil
	return d
}

// Prefix binds a namespace prefix for the type.
func Prefix(prefix, namespace string) Option {
	return func(d *Definition) {
		d.prefixes = append(d.prefixes, Pair{Prefix: prefix, Namespace: namespace})
	}
}

// CustomNamespaces installs a hook consulted for extra prefixes each time
// an object of the type is marshalled.
func CustomNamespaces(fn func() map[string]string) Option {
	return func(d *Definition) { d.custom = fn }
}

// Extends declares P as a supertype of T. upcast returns the embedded P of
// a *T; P's properties and prefixes are inherited.
func Extends[P, T any](upcast func(*T) *P) Option {
	return func(d *Definition) {
		d.parents = append(d.parents, parent{
			typ: reflect.TypeFor[P](),
			upcast: func(obj any) any {
				t, ok := obj.(*T)
				if !ok {
					return obj
				}
				return upcast(t)
			},
		})
	}
}

// Props adds properties in declaration order.
func Props(props ...*Property) Option {
	return func(d *Definition) { d.props = append(d.props, props...) }
}

// NoFactory marks a struct type as not instantiable by the engine.
func NoFactory() Option {
	return func(d *Definition) { d.factory = nil }
}

// Type returns the declared Go type.
func (d *Definition) Type() reflect.Type { return d.typ }

// TypeURI returns namespace+name, or "" for non-participating types.
func (d *Definition) TypeURI() string {
	if d.name == "" {
		return ""
	}
	return d.namespace + d.name
}
