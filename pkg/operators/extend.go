package operators

import (
	"context"

	"github.com/gitrdm/sparqlflow/pkg/algebra"
	"github.com/gitrdm/sparqlflow/pkg/bindings"
	"github.com/gitrdm/sparqlflow/pkg/bus"
	"github.com/gitrdm/sparqlflow/pkg/stream"
)

// extendActor binds Var to Expr's evaluation for each Input binding; if
// Expr errors (e.g. references an unbound variable) the binding is passed
// through unchanged, per SPARQL BIND semantics (the variable stays
// unbound, the solution is not dropped).
type extendActor struct{}

func (extendActor) Name() string { return "extend" }

func (extendActor) Test(bctx *bus.Context, task any) bus.TestResult {
	return acceptType(task, algebra.TypeExtend)
}

func (extendActor) Run(bctx *bus.Context, task any) (any, error) {
	t := task.(Task)
	n := t.Node.(algebra.Extend)

	input, err := t.Eval(t.Ctx, n.Input)
	if err != nil {
		return nil, err
	}

	outVars := append(append([]string{}, input.Variables()...), n.Var)
	out := stream.New(t.Ctx, outVars, func() stream.Metadata { return input.Metadata() },
		func(ctx context.Context, emit func(bindings.Bindings) bool) error {
			for {
				b, ok, err := input.Next()
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
				if v, ferr := n.Expr.Eval(b); ferr == nil {
					b = b.Bind(n.Var, v)
				}
				if !emit(b) {
					return nil
				}
			}
		})
	return out, nil
}
