// Package shape declares how Go types map onto graph resources.
//
// Shapes are declared once, statically, with Describe and the property
// constructors, and collected in a Registry:
//
//	reg := shape.NewRegistry()
//	reg.MustRegister(shape.Describe[Person](foafNS, "Person",
//	    shape.Prefix("foaf", foafNS),
//	    shape.Props(
//	        shape.One("Name", foafNS+"name", func(p *Person) *string { return &p.Name }),
//	        shape.Many("Knows", foafNS+"knows", func(p *Person) *[]*Person { return &p.Knows }),
//	    ),
//	))
//
// The registry resolves a type to its Descriptor: the type URI, the merged
// namespace prefixes and the ordered property list, including properties
// inherited through Extends. Descriptors are computed once per type.
package shape
