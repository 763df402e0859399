package operators

import (
	"context"

	"github.com/gitrdm/sparqlflow/pkg/algebra"
	"github.com/gitrdm/sparqlflow/pkg/bindings"
	"github.com/gitrdm/sparqlflow/pkg/bus"
	"github.com/gitrdm/sparqlflow/pkg/join"
	"github.com/gitrdm/sparqlflow/pkg/pathengine"
	"github.com/gitrdm/sparqlflow/pkg/rdf"
	"github.com/gitrdm/sparqlflow/pkg/stream"
)

// bgpActor evaluates a basic graph pattern by resolving each pattern
// independently against the quad-pattern resolver and joining the results,
// letting the join sub-engine's cost-based mediator pick the strategy per
// pair (spec.md §4.3).
type bgpActor struct{}

func (bgpActor) Name() string { return "bgp" }

func (bgpActor) Test(bctx *bus.Context, task any) bus.TestResult {
	return acceptType(task, algebra.TypeBgp)
}

func (bgpActor) Run(bctx *bus.Context, task any) (any, error) {
	t := task.(Task)
	n := t.Node.(algebra.Bgp)

	if len(n.Patterns) == 0 {
		return stream.FromSlice(t.Ctx, nil, []bindings.Bindings{bindings.Empty()}), nil
	}

	streams := make([]*stream.Stream[bindings.Bindings], 0, len(n.Patterns))
	for _, p := range n.Patterns {
		s, err := resolvePatternBindings(t.Ctx, t.Resolver, n.Source, p)
		if err != nil {
			return nil, err
		}
		streams = append(streams, s)
	}
	return join.JoinAll(t.Ctx, streams)
}

// resolvePatternBindings resolves a single quad pattern and projects the
// matching quads into bindings over the pattern's variables.
func resolvePatternBindings(ctx context.Context, resolver pathengine.QuadResolver, sourceID string, p rdf.Pattern) (*stream.Stream[bindings.Bindings], error) {
	quads, err := resolver.Resolve(ctx, sourceID, p)
	if err != nil {
		return nil, err
	}
	vars := p.Variables()
	return stream.New(ctx, vars, func() stream.Metadata { return quads.Metadata() },
		func(ctx context.Context, emit func(bindings.Bindings) bool) error {
			for {
				q, ok, err := quads.Next()
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
				b := bindingsFromQuad(p, q)
				if !emit(b) {
					return nil
				}
			}
		}), nil
}

func bindingsFromQuad(p rdf.Pattern, q rdf.Quad) bindings.Bindings {
	b := bindings.Empty()
	if p.Subject.IsVariable() {
		b = b.Bind(p.Subject.Value, q.Subject)
	}
	if p.Predicate.IsVariable() {
		b = b.Bind(p.Predicate.Value, q.Predicate)
	}
	if p.Object.IsVariable() {
		b = b.Bind(p.Object.Value, q.Object)
	}
	if p.Graph.IsVariable() {
		b = b.Bind(p.Graph.Value, q.Graph)
	}
	return b
}
