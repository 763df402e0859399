package operators

import (
	"context"

	"github.com/gitrdm/sparqlflow/pkg/algebra"
	"github.com/gitrdm/sparqlflow/pkg/bindings"
	"github.com/gitrdm/sparqlflow/pkg/bus"
	"github.com/gitrdm/sparqlflow/pkg/rdf"
	"github.com/gitrdm/sparqlflow/pkg/stream"
)

// constructActor instantiates Template for every Input binding, skipping
// templates with an unbound variable and deduplicating the resulting
// quads, matching the reference SPARQL executor's instantiateTriplePattern.
//
// It is registered on the query-operation bus alongside the bindings-typed
// actors but its Run returns a *stream.Stream[rdf.Quad] rather than a
// bindings stream, since CONSTRUCT's result shape is quads, not solutions;
// pkg/engine type-switches on the value the Mediator returns to choose how
// to consume it (see pkg/engine/engine.go).
type constructActor struct{}

func (constructActor) Name() string { return "construct" }

func (constructActor) Test(bctx *bus.Context, task any) bus.TestResult {
	return acceptType(task, algebra.TypeConstruct)
}

func (constructActor) Run(bctx *bus.Context, task any) (any, error) {
	t := task.(Task)
	n := t.Node.(algebra.Construct)

	input, err := t.Eval(t.Ctx, n.Input)
	if err != nil {
		return nil, err
	}

	out := stream.New[rdf.Quad](t.Ctx, nil, func() stream.Metadata { return stream.Metadata{TotalItems: stream.UnknownTotal} },
		func(ctx context.Context, emit func(rdf.Quad) bool) error {
			seen := make(map[string]bool)
			for {
				b, ok, err := input.Next()
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
				for _, tmpl := range n.Template {
					q, complete := instantiate(tmpl, b)
					if !complete {
						continue
					}
					sig := q.Signature()
					if seen[sig] {
						continue
					}
					seen[sig] = true
					if !emit(q) {
						return nil
					}
				}
			}
		})
	return out, nil
}

func instantiate(tmpl rdf.Pattern, b bindings.Bindings) (rdf.Quad, bool) {
	s, ok1 := instantiateTerm(tmpl.Subject, b)
	p, ok2 := instantiateTerm(tmpl.Predicate, b)
	o, ok3 := instantiateTerm(tmpl.Object, b)
	g, ok4 := instantiateTerm(tmpl.Graph, b)
	if !ok1 || !ok2 || !ok3 {
		return rdf.Quad{}, false
	}
	if !ok4 {
		g = rdf.DefaultGraph
	}
	return rdf.Quad{Subject: s, Predicate: p, Object: o, Graph: g}, true
}

func instantiateTerm(t rdf.Term, b bindings.Bindings) (rdf.Term, bool) {
	if !t.IsVariable() {
		return t, true
	}
	return b.Get(t.Value)
}
