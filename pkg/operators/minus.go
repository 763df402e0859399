package operators

import (
	"context"

	"github.com/gitrdm/sparqlflow/pkg/algebra"
	"github.com/gitrdm/sparqlflow/pkg/bindings"
	"github.com/gitrdm/sparqlflow/pkg/bus"
	"github.com/gitrdm/sparqlflow/pkg/stream"
)

// minusActor removes from Left every binding that is compatible with, and
// shares at least one variable with, some Right binding — SPARQL MINUS,
// which is deliberately not the same as "NOT EXISTS {Right}" when Left and
// Right share no variables (MINUS is then a no-op, unlike NOT EXISTS).
type minusActor struct{}

func (minusActor) Name() string { return "minus" }

func (minusActor) Test(bctx *bus.Context, task any) bus.TestResult {
	return acceptType(task, algebra.TypeMinus)
}

func (minusActor) Run(bctx *bus.Context, task any) (any, error) {
	t := task.(Task)
	n := t.Node.(algebra.Minus)

	left, err := t.Eval(t.Ctx, n.Left)
	if err != nil {
		return nil, err
	}
	right, err := t.Eval(t.Ctx, n.Right)
	if err != nil {
		return nil, err
	}
	rightRows, err := stream.Collect(right)
	if err != nil {
		return nil, err
	}

	out := stream.New(t.Ctx, left.Variables(), func() stream.Metadata { return stream.Metadata{TotalItems: stream.UnknownTotal} },
		func(ctx context.Context, emit func(bindings.Bindings) bool) error {
			for {
				lb, ok, err := left.Next()
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
				if !anyShareAndCompatible(lb, rightRows) {
					if !emit(lb) {
						return nil
					}
				}
			}
		})
	return out, nil
}

func anyShareAndCompatible(lb bindings.Bindings, rows []bindings.Bindings) bool {
	for _, rb := range rows {
		if sharesVariable(lb, rb) && lb.Compatible(rb) {
			return true
		}
	}
	return false
}

func sharesVariable(a, b bindings.Bindings) bool {
	for _, v := range a.Variables() {
		if _, ok := b.Get(v); ok {
			return true
		}
	}
	return false
}
