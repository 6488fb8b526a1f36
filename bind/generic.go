package bind

import (
	"fmt"
	"reflect"

	"github.com/geoknoesis/rdfbind/graph"
	"github.com/geoknoesis/rdfbind/resource"
	"github.com/geoknoesis/rdfbind/shape"
)

// UnmarshalAll unmarshals every resource of type T in g. Resolved subtypes
// that are not themselves a T are upcast through their Extends chain.
func UnmarshalAll[T any](u *Unmarshaller, g graph.Graph) ([]T, error) {
	vals, err := u.Unmarshal(g, reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	return collect[T](u.reg, vals), nil
}

// UnmarshalSingle unmarshals the only resource of type T in g. It fails
// with ErrCardinality unless exactly one resource matches.
func UnmarshalSingle[T any](u *Unmarshaller, g graph.Graph) (T, error) {
	var zero T
	t := reflect.TypeFor[T]()
	vals, err := u.unmarshal(g, t, true)
	if err != nil {
		return zero, err
	}
	out := collect[T](u.reg, vals)
	if len(out) != 1 {
		return zero, newError(ErrCodeCardinality, t, "", nil, fmt.Errorf("expected exactly one resource, found %d", len(out)))
	}
	return out[0], nil
}

// FollowLink returns the resource of type T in g whose URI is the link target.
func FollowLink[T any](u *Unmarshaller, g graph.Graph, link resource.Link) (T, error) {
	var zero T
	vals, err := UnmarshalAll[T](u, g)
	if err != nil {
		return zero, err
	}
	for _, v := range vals {
		if id, ok := any(v).(resource.Identifiable); ok && id.ResourceURI() == link.Target {
			return v, nil
		}
	}
	return zero, newError(ErrCodeLookup, reflect.TypeFor[T](), "", link.Target, nil)
}

func collect[T any](reg *shape.Registry, vals []any) []T {
	out := make([]T, 0, len(vals))
	for _, v := range vals {
		if t, ok := as[T](reg, v); ok {
			out = append(out, t)
		}
	}
	return out
}

func as[T any](reg *shape.Registry, v any) (T, bool) {
	if t, ok := v.(T); ok {
		return t, true
	}
	var zero T
	d, err := reg.Lookup(v)
	if err != nil {
		return zero, false
	}
	up, ok := d.Upcast(v, baseType(reflect.TypeFor[T]()), reg)
	if !ok {
		return zero, false
	}
	if t, ok := up.(T); ok {
		return t, true
	}
	if rv := reflect.ValueOf(up); rv.Kind() == reflect.Pointer && !rv.IsNil() {
		if t, ok := rv.Elem().Interface().(T); ok {
			return t, true
		}
	}
	return zero, false
}
