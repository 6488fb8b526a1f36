package bind

import (
	"sort"

	"github.com/charmbracelet/log"

	"github.com/geoknoesis/rdfbind/rdf"
	"github.com/geoknoesis/rdfbind/shape"
)

// DefaultMaxDepth bounds nested resource recursion.
const DefaultMaxDepth = 512

// Options configures a Marshaller or Unmarshaller.
type Options struct {
	// AllowRelativeURIs accepts identifying and referenced URIs without a scheme.
	AllowRelativeURIs bool
	// InferTypeFromShape narrows time values to xsd:date when the property declares it.
	InferTypeFromShape bool
	// LenientLiterals keeps invalid literals as resource.Unparseable instead of failing.
	LenientLiterals bool
	// LooseRoots makes every typed subject that is never an object a candidate.
	LooseRoots bool
	// QueryResultAsContainer types the result container node rdfs:Container.
	QueryResultAsContainer bool
	// MaxDepth is the recursion ceiling for nested resources.
	MaxDepth int
	// Namespaces are bound before any per-type prefixes.
	Namespaces []shape.Pair
	Logger     *log.Logger
}

// Option configures Options.
type Option func(*Options)

func defaultOptions() Options {
	return Options{
		QueryResultAsContainer: true,
		MaxDepth:               DefaultMaxDepth,
		Namespaces: []shape.Pair{
			{Prefix: "rdf", Namespace: rdf.RDFNamespace},
			{Prefix: "rdfs", Namespace: rdf.RDFSNamespace},
			{Prefix: "xsd", Namespace: rdf.XSDNamespace},
		},
		Logger: log.Default(),
	}
}

func buildOptions(opts []Option) Options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	return o
}

// OptAllowRelativeURIs accepts relative URIs.
func OptAllowRelativeURIs() Option {
	return func(o *Options) { o.AllowRelativeURIs = true }
}

// OptInferTypeFromShape enables date-only encoding for xsd:date properties.
func OptInferTypeFromShape() Option {
	return func(o *Options) { o.InferTypeFromShape = true }
}

// OptLenientLiterals preserves invalid literals instead of failing.
func OptLenientLiterals() Option {
	return func(o *Options) { o.LenientLiterals = true }
}

// OptLooseRoots selects candidates by graph shape instead of rdf:type.
func OptLooseRoots() Option {
	return func(o *Options) { o.LooseRoots = true }
}

// OptQueryResultAsContainer controls the rdfs:Container type on result containers.
func OptQueryResultAsContainer(enabled bool) Option {
	return func(o *Options) { o.QueryResultAsContainer = enabled }
}

// OptMaxDepth sets the recursion ceiling.
func OptMaxDepth(n int) Option {
	return func(o *Options) { o.MaxDepth = n }
}

// OptNamespaces adds default prefixes, applied in prefix order after the
// built-in rdf, rdfs and xsd bindings.
func OptNamespaces(prefixes map[string]string) Option {
	return func(o *Options) {
		keys := make([]string, 0, len(prefixes))
		for k := range prefixes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			o.Namespaces = append(o.Namespaces, shape.Pair{Prefix: k, Namespace: prefixes[k]})
		}
	}
}

// OptLogger sets the logger for diagnostics.
func OptLogger(l *log.Logger) Option {
	return func(o *Options) { o.Logger = l }
}
