package source

import (
	"context"

	"github.com/gitrdm/sparqlflow/pkg/bus"
	"github.com/gitrdm/sparqlflow/pkg/rdf"
	"github.com/gitrdm/sparqlflow/pkg/stream"
)

// Resolver is the quad-pattern resolution bus: every registered source
// actor (RDFJSSource, HypermediaSource) competes to resolve a pattern, and
// the race-first-non-failing policy returns whichever matching source
// answers first without error. It implements pathengine.QuadResolver so
// the property-path engine can be handed a Resolver directly.
type Resolver struct {
	bus *bus.Bus
	med *bus.Mediator
}

// NewResolver constructs an empty Resolver.
func NewResolver() *Resolver {
	b := bus.NewBus()
	return &Resolver{
		bus: b,
		med: bus.NewMediator(b, bus.PolicyRaceFirstNonFailing, nil),
	}
}

// Register adds a source actor to the resolver's bus.
func (r *Resolver) Register(a bus.Actor) {
	r.bus.Register(a)
}

// Resolve dispatches pattern (scoped to the named source, or any source if
// source is empty) and returns the matching quads as a stream.
func (r *Resolver) Resolve(ctx context.Context, source string, pattern rdf.Pattern) (*stream.Stream[rdf.Quad], error) {
	bctx := bus.New(ctx)
	v, err := r.med.Dispatch(bctx, ResolveTask{Ctx: ctx, Source: source, Pattern: pattern})
	if err != nil {
		return nil, err
	}
	return v.(*stream.Stream[rdf.Quad]), nil
}
