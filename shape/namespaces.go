package shape

import "strconv"

// Namespaces is an ordered prefix table. A namespace is bound at most once;
// a prefix already bound to another namespace gets a numeric suffix.
type Namespaces struct {
	order    []string
	byPrefix map[string]string
	byNS     map[string]string
}

// NewNamespaces returns a table seeded with pairs in the given order.
func NewNamespaces(pairs ...Pair) *Namespaces {
	n := &Namespaces{byPrefix: map[string]string{}, byNS: map[string]string{}}
	for _, p := range pairs {
		n.Ensure(p.Prefix, p.Namespace)
	}
	return n
}

// Pair is one prefix declaration.
type Pair struct {
	Prefix    string
	Namespace string
}

// Ensure binds namespace, returning the prefix it ends up under.
func (n *Namespaces) Ensure(prefix, namespace string) string {
	if n.byPrefix == nil {
		n.byPrefix = map[string]string{}
		n.byNS = map[string]string{}
	}
	if bound, ok := n.byNS[namespace]; ok {
		return bound
	}
	candidate := prefix
	for i := 1; ; i++ {
		if _, taken := n.byPrefix[candidate]; !taken {
			break
		}
		candidate = prefix + strconv.Itoa(i)
	}
	n.byPrefix[candidate] = namespace
	n.byNS[namespace] = candidate
	n.order = append(n.order, candidate)
	return candidate
}

// Merge ensures every pair of other, in order.
func (n *Namespaces) Merge(other []Pair) {
	for _, p := range other {
		n.Ensure(p.Prefix, p.Namespace)
	}
}

// Prefix returns the prefix bound to namespace.
func (n *Namespaces) Prefix(namespace string) (string, bool) {
	p, ok := n.byNS[namespace]
	return p, ok
}

// Pairs returns the bindings in insertion order.
func (n *Namespaces) Pairs() []Pair {
	out := make([]Pair, len(n.order))
	for i, p := range n.order {
		out[i] = Pair{Prefix: p, Namespace: n.byPrefix[p]}
	}
	return out
}

// Map returns the bindings as prefix → namespace.
func (n *Namespaces) Map() map[string]string {
	out := make(map[string]string, len(n.order))
	for _, p := range n.order {
		out[p] = n.byPrefix[p]
	}
	return out
}

// Len reports the number of bindings.
func (n *Namespaces) Len() int { return len(n.order) }
