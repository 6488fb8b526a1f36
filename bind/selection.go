package bind

// Selection restricts which properties are emitted, keyed by predicate URI.
// A nil *Selection emits everything.
//
// Props selects a predicate together with the selection applied to the
// resources it references; a nil entry selects the predicate and emits its
// nested resources by reference only. All emits every property and
// unselected nested resources by reference only. Nested emits, for
// unselected properties, only nested resources using the Nested selection;
// combined with All every property is emitted and Nested applies to nested
// resources.
type Selection struct {
	Props  map[string]*Selection
	All    bool
	Nested *Selection

	singleton bool
}

var singleton = &Selection{singleton: true}

// Singleton returns the selection that emits only a node and its type.
func Singleton() *Selection { return singleton }

// Select returns a selection of the given predicates, each emitting its
// nested resources by reference only.
func Select(predicates ...string) *Selection {
	s := &Selection{Props: make(map[string]*Selection, len(predicates))}
	for _, p := range predicates {
		s.Props[p] = Singleton()
	}
	return s
}

// With selects predicate with a nested selection and returns s.
func (s *Selection) With(predicate string, nested *Selection) *Selection {
	if s.Props == nil {
		s.Props = map[string]*Selection{}
	}
	s.Props[predicate] = nested
	return s
}

// IsSingleton reports whether s emits only the node and its type.
func (s *Selection) IsSingleton() bool { return s != nil && s.singleton }

// child returns the selection for values of predicate. onlyNested reports
// that literal and URI values are skipped; ok is false when the predicate is
// not emitted at all.
func (s *Selection) child(predicate string) (next *Selection, onlyNested, ok bool) {
	if s == nil {
		return nil, false, true
	}
	if sub, found := s.Props[predicate]; found {
		if sub == nil {
			sub = Singleton()
		}
		return sub, false, true
	}
	if s.Nested != nil {
		return s.Nested, !s.All, true
	}
	if s.All {
		return Singleton(), false, true
	}
	return nil, false, false
}

// allowsType reports whether an extended rdf:type value is emitted.
func (s *Selection) allowsType(uri string) bool {
	if s == nil || s.All || s.Nested != nil {
		return true
	}
	_, ok := s.Props[uri]
	return ok
}
