package operators

import (
	"context"

	"github.com/samber/lo"

	"github.com/gitrdm/sparqlflow/pkg/algebra"
	"github.com/gitrdm/sparqlflow/pkg/bindings"
	"github.com/gitrdm/sparqlflow/pkg/bus"
	"github.com/gitrdm/sparqlflow/pkg/stream"
)

// projectActor restricts each Input binding to the declared Vars.
type projectActor struct{}

func (projectActor) Name() string { return "project" }

func (projectActor) Test(bctx *bus.Context, task any) bus.TestResult {
	return acceptType(task, algebra.TypeProject)
}

func (projectActor) Run(bctx *bus.Context, task any) (any, error) {
	t := task.(Task)
	n := t.Node.(algebra.Project)

	input, err := t.Eval(t.Ctx, n.Input)
	if err != nil {
		return nil, err
	}

	vars := lo.Uniq(n.Vars)
	out := stream.New(t.Ctx, vars, func() stream.Metadata { return input.Metadata() },
		func(ctx context.Context, emit func(bindings.Bindings) bool) error {
			for {
				b, ok, err := input.Next()
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
				if !emit(b.Project(vars)) {
					return nil
				}
			}
		})
	return out, nil
}
