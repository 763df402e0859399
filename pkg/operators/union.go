package operators

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/gitrdm/sparqlflow/pkg/algebra"
	"github.com/gitrdm/sparqlflow/pkg/bindings"
	"github.com/gitrdm/sparqlflow/pkg/bus"
	"github.com/gitrdm/sparqlflow/pkg/stream"
)

// unionActor evaluates SPARQL UNION: Left and Right are resolved
// concurrently (their child subtrees may each involve independent network
// fetches) and their results concatenated.
type unionActor struct{}

func (unionActor) Name() string { return "union" }

func (unionActor) Test(bctx *bus.Context, task any) bus.TestResult {
	return acceptType(task, algebra.TypeUnion)
}

func (unionActor) Run(bctx *bus.Context, task any) (any, error) {
	t := task.(Task)
	n := t.Node.(algebra.Union)

	var left, right *stream.Stream[bindings.Bindings]
	g, gctx := errgroup.WithContext(t.Ctx)
	g.Go(func() error {
		s, err := t.Eval(gctx, n.Left)
		if err != nil {
			return err
		}
		left = s
		return nil
	})
	g.Go(func() error {
		s, err := t.Eval(gctx, n.Right)
		if err != nil {
			return err
		}
		right = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	outVars := unionVars(left.Variables(), right.Variables())
	out := stream.New(t.Ctx, outVars, func() stream.Metadata {
		return stream.Metadata{TotalItems: sumTotal(left.Metadata().TotalItems, right.Metadata().TotalItems)}
	},
		func(ctx context.Context, emit func(bindings.Bindings) bool) error {
			for _, s := range []*stream.Stream[bindings.Bindings]{left, right} {
				for {
					b, ok, err := s.Next()
					if err != nil {
						return err
					}
					if !ok {
						break
					}
					if !emit(b) {
						return nil
					}
				}
			}
			return nil
		})
	return out, nil
}
