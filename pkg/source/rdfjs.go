package source

import (
	"context"

	"github.com/gitrdm/sparqlflow/pkg/bus"
	"github.com/gitrdm/sparqlflow/pkg/rdf"
	"github.com/gitrdm/sparqlflow/pkg/stream"
)

// ResolveTask is the task type published to the quad-pattern resolution
// bus: resolve Pattern against the source named by Source (matching a
// registered Descriptor.ID).
type ResolveTask struct {
	Ctx     context.Context
	Source  string
	Pattern rdf.Pattern
}

// RDFJSSource is the in-memory, Match-capable source actor: it holds a
// fixed slice of quads and answers a ResolveTask by linear-scanning them,
// modeled on the RDF/JS Source/Match contract used by the corpus's SPARQL
// executor examples.
type RDFJSSource struct {
	ID    string
	Quads []rdf.Quad
}

func (s *RDFJSSource) Name() string { return "rdfjs:" + s.ID }

func (s *RDFJSSource) Test(bctx *bus.Context, task any) bus.TestResult {
	t, ok := task.(ResolveTask)
	if !ok {
		return bus.Reject("not a source.ResolveTask")
	}
	if t.Source != "" && t.Source != s.ID {
		return bus.Reject("source id mismatch")
	}
	return bus.Accept(float64(len(s.Quads)))
}

func (s *RDFJSSource) Run(bctx *bus.Context, task any) (any, error) {
	t := task.(ResolveTask)
	quads := s.Quads
	total := int64(len(quads))

	out := stream.New(t.Ctx, nil, func() stream.Metadata { return stream.Metadata{TotalItems: total} },
		func(ctx context.Context, emit func(rdf.Quad) bool) error {
			for _, q := range quads {
				if t.Pattern.Matches(q) {
					if !emit(q) {
						return nil
					}
				}
			}
			return nil
		})
	return out, nil
}
