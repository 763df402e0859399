package operators

import (
	"context"

	"github.com/gitrdm/sparqlflow/pkg/algebra"
	"github.com/gitrdm/sparqlflow/pkg/bindings"
	"github.com/gitrdm/sparqlflow/pkg/bus"
	"github.com/gitrdm/sparqlflow/pkg/expr"
	"github.com/gitrdm/sparqlflow/pkg/stream"
)

// filterActor keeps only Input bindings whose Expr effective boolean value
// is true; an evaluation error (e.g. an unbound variable) is treated as
// false, per SPARQL FILTER semantics, not propagated as a stream error.
type filterActor struct{}

func (filterActor) Name() string { return "filter" }

func (filterActor) Test(bctx *bus.Context, task any) bus.TestResult {
	return acceptType(task, algebra.TypeFilter)
}

func (filterActor) Run(bctx *bus.Context, task any) (any, error) {
	t := task.(Task)
	n := t.Node.(algebra.Filter)

	input, err := t.Eval(t.Ctx, n.Input)
	if err != nil {
		return nil, err
	}

	out := stream.New(t.Ctx, input.Variables(), func() stream.Metadata { return input.Metadata() },
		func(ctx context.Context, emit func(bindings.Bindings) bool) error {
			for {
				b, ok, err := input.Next()
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
				v, ferr := n.Expr.Eval(b)
				if ferr != nil {
					continue
				}
				keep, _ := expr.EffectiveBooleanValue(v)
				if !keep {
					continue
				}
				if !emit(b) {
					return nil
				}
			}
		})
	return out, nil
}
