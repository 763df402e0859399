package operators

import (
	"context"

	"github.com/gitrdm/sparqlflow/pkg/algebra"
	"github.com/gitrdm/sparqlflow/pkg/bindings"
	"github.com/gitrdm/sparqlflow/pkg/bus"
	"github.com/gitrdm/sparqlflow/pkg/stream"
)

// distinctActor removes duplicate bindings by hashing their Signature,
// grounded on the reference SPARQL executor's applyDistinct
// (bindingSignature-keyed map).
type distinctActor struct{}

func (distinctActor) Name() string { return "distinct" }

func (distinctActor) Test(bctx *bus.Context, task any) bus.TestResult {
	return acceptType(task, algebra.TypeDistinct)
}

func (distinctActor) Run(bctx *bus.Context, task any) (any, error) {
	t := task.(Task)
	n := t.Node.(algebra.Distinct)

	input, err := t.Eval(t.Ctx, n.Input)
	if err != nil {
		return nil, err
	}

	out := stream.New(t.Ctx, input.Variables(), func() stream.Metadata { return stream.Metadata{TotalItems: stream.UnknownTotal} },
		func(ctx context.Context, emit func(bindings.Bindings) bool) error {
			seen := make(map[string]bool)
			for {
				b, ok, err := input.Next()
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
				sig := b.Signature()
				if seen[sig] {
					continue
				}
				seen[sig] = true
				if !emit(b) {
					return nil
				}
			}
		})
	return out, nil
}
