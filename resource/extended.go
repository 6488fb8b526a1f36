package resource

import "slices"

// Extended is the bag of undeclared properties and declared rdf:types of a
// resource. Properties keep insertion order. The zero value is ready to use.
type Extended struct {
	types []URI
	keys  []QName
	props map[string]any
}

// Extensions returns e itself so embedding types satisfy Extensible.
func (e *Extended) Extensions() *Extended { return e }

// Types returns the declared types in insertion order.
func (e *Extended) Types() []URI { return slices.Clone(e.types) }

// AddType records t once.
func (e *Extended) AddType(t URI) {
	if !slices.Contains(e.types, t) {
		e.types = append(e.types, t)
	}
}

// HasType reports whether t was recorded.
func (e *Extended) HasType(t URI) bool { return slices.Contains(e.types, t) }

// SetTypes replaces the declared types.
func (e *Extended) SetTypes(types []URI) {
	e.types = nil
	for _, t := range types {
		e.AddType(t)
	}
}

// Set stores v under q, replacing any previous value.
func (e *Extended) Set(q QName, v any) {
	if e.props == nil {
		e.props = map[string]any{}
	}
	key := q.URI()
	if _, ok := e.props[key]; !ok {
		e.keys = append(e.keys, q)
	}
	e.props[key] = v
}

// Add stores v under q. A second value turns the entry into a []any
// collection; later values are appended to it.
func (e *Extended) Add(q QName, v any) {
	existing, ok := e.Get(q)
	if !ok {
		e.Set(q, v)
		return
	}
	if coll, ok := existing.([]any); ok {
		e.props[q.URI()] = append(coll, v)
		return
	}
	e.props[q.URI()] = []any{existing, v}
}

// Get returns the value stored under q.
func (e *Extended) Get(q QName) (any, bool) {
	v, ok := e.props[q.URI()]
	return v, ok
}

// Delete removes q.
func (e *Extended) Delete(q QName) {
	key := q.URI()
	if _, ok := e.props[key]; !ok {
		return
	}
	delete(e.props, key)
	e.keys = slices.DeleteFunc(e.keys, func(k QName) bool { return k.URI() == key })
}

// Len reports the number of properties.
func (e *Extended) Len() int { return len(e.keys) }

// IsEmpty reports whether the bag holds neither types nor properties.
func (e *Extended) IsEmpty() bool { return e == nil || (len(e.types) == 0 && len(e.keys) == 0) }

// Range calls fn for each property in insertion order until fn returns false.
func (e *Extended) Range(fn func(QName, any) bool) {
	for _, k := range e.keys {
		if !fn(k, e.props[k.URI()]) {
			return
		}
	}
}

// Names returns the property names in insertion order.
func (e *Extended) Names() []QName { return slices.Clone(e.keys) }
