// Package source implements quad-pattern resolution: the bus of per-source
// actors (in-memory RDF/JS-style stores, hypermedia/TPF-QPF endpoints,
// remote SPARQL endpoints), hypermedia paging, and the dereference cache,
// per spec.md §4.5 and §6.
package source

// DescriptorType discriminates the kind of data source a Descriptor names.
type DescriptorType string

const (
	TypeRDFJS          DescriptorType = "rdfjs"
	TypeHypermedia     DescriptorType = "hypermedia"
	TypeSPARQLEndpoint DescriptorType = "sparql-endpoint"
)

// Descriptor is the data source descriptor of spec.md §3: it names one
// logical source that quad patterns can be resolved against.
type Descriptor struct {
	ID   string
	Type DescriptorType
	URL  string
	// SearchTemplate is the hypermedia search IRI template (e.g. a
	// Hydra IriTemplate) used to build a paged request URL from a pattern,
	// only meaningful when Type == TypeHypermedia.
	SearchTemplate string
	// AuthHeader, if non-empty, is sent as the Authorization header on
	// every request made for this source.
	AuthHeader string
}
