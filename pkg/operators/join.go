package operators

import (
	"github.com/gitrdm/sparqlflow/pkg/algebra"
	"github.com/gitrdm/sparqlflow/pkg/bus"
	"github.com/gitrdm/sparqlflow/pkg/join"
)

// joinActor evaluates a binary Join node by resolving both children and
// handing them to the join sub-engine's binary Mediator.
type joinActor struct{}

func (joinActor) Name() string { return "join" }

func (joinActor) Test(bctx *bus.Context, task any) bus.TestResult {
	return acceptType(task, algebra.TypeJoin)
}

func (joinActor) Run(bctx *bus.Context, task any) (any, error) {
	t := task.(Task)
	n := t.Node.(algebra.Join)

	left, err := t.Eval(t.Ctx, n.Left)
	if err != nil {
		return nil, err
	}
	right, err := t.Eval(t.Ctx, n.Right)
	if err != nil {
		return nil, err
	}
	return join.NewMediator().Join(t.Ctx, left, right)
}
