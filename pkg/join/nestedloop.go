package join

import (
	"context"

	"github.com/gitrdm/sparqlflow/pkg/bindings"
	"github.com/gitrdm/sparqlflow/pkg/bus"
	"github.com/gitrdm/sparqlflow/pkg/stream"
)

// NestedLoop is the binary join actor that fully buffers Right and probes it
// once per Left binding. It is the only strategy always applicable, so it
// always accepts; its estimated cost is the product of the two side totals,
// matching a true nested-loop iteration count.
type NestedLoop struct{}

func (NestedLoop) Name() string { return "nested-loop" }

func (NestedLoop) Test(bctx *bus.Context, task any) bus.TestResult {
	t, ok := task.(Task)
	if !ok {
		return bus.Reject("not a join.Task")
	}
	cost := float64(estimatedTotal(t.Left)) * float64(estimatedTotal(t.Right))
	return bus.Accept(cost)
}

func (NestedLoop) Run(bctx *bus.Context, task any) (any, error) {
	t := task.(Task)
	shared := sharedVariables(t.Left.Variables(), t.Right.Variables())
	outVars := unionVariables(t.Left.Variables(), t.Right.Variables())

	rightRows, err := stream.Collect(t.Right)
	if err != nil {
		return nil, err
	}

	out := stream.New(t.Ctx, outVars, func() stream.Metadata {
		return stream.Metadata{TotalItems: productTotal(t.Left, t.Right)}
	}, func(ctx context.Context, emit func(bindings.Bindings) bool) error {
		for {
			lb, ok, err := t.Left.Next()
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			for _, rb := range rightRows {
				if compatibleOn(lb, rb, shared) {
					if !emit(lb.Merge(rb)) {
						return nil
					}
				}
			}
		}
	})
	return out, nil
}

func compatibleOn(l, r bindings.Bindings, shared []string) bool {
	for _, v := range shared {
		lv, lok := l.Get(v)
		rv, rok := r.Get(v)
		if lok && rok && !lv.Equal(rv) {
			return false
		}
	}
	return true
}
