package shape

import (
	"fmt"
	"reflect"
)

// Descriptor is the resolved shape of a type.
type Descriptor struct {
	Type       reflect.Type
	TypeURI    string
	Namespaces []Pair
	Properties []*Property
	// Depth is the length of the longest Extends chain above the type.
	Depth int

	byPredicate map[string]*Property
	factory     func() any
	custom      func() map[string]string
	parents     []parent
}

// Participates reports whether the type has a type URI.
func (d *Descriptor) Participates() bool { return d.TypeURI != "" }

// Abstract reports whether the engine cannot create instances.
func (d *Descriptor) Abstract() bool { return d.factory == nil }

// New returns a fresh *T for the described type.
func (d *Descriptor) New() (any, error) {
	if d.factory == nil {
		return nil, &Error{Type: d.Type, Err: ErrAbstract}
	}
	return d.factory(), nil
}

// Property returns the property mapped to predicate.
func (d *Descriptor) Property(predicate string) (*Property, bool) {
	p, ok := d.byPredicate[predicate]
	return p, ok
}

// CustomNamespaces returns the prefixes contributed by the type's hook.
func (d *Descriptor) CustomNamespaces() map[string]string {
	if d.custom == nil {
		return nil
	}
	return d.custom()
}

// Upcast returns the embedded value of type target inside obj, following
// Extends declarations.
func (d *Descriptor) Upcast(obj any, target reflect.Type, reg *Registry) (any, bool) {
	if reflect.TypeOf(obj) == reflect.PointerTo(target) {
		return obj, true
	}
	for _, p := range d.parents {
		up := p.upcast(obj)
		pd, err := reg.Resolve(p.typ)
		if err != nil {
			continue
		}
		if v, ok := pd.Upcast(up, target, reg); ok {
			return v, true
		}
	}
	return nil, false
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("%s<%s>", d.Type, d.TypeURI)
}
