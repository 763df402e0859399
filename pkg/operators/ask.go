package operators

import (
	"github.com/gitrdm/sparqlflow/pkg/algebra"
	"github.com/gitrdm/sparqlflow/pkg/bus"
)

// askActor resolves Input and reports whether at least one binding exists,
// without materializing more than that one binding. Its Run returns a
// plain bool, not a stream: pkg/engine type-switches on the value the
// Mediator returns to decide how to consume it.
type askActor struct{}

func (askActor) Name() string { return "ask" }

func (askActor) Test(bctx *bus.Context, task any) bus.TestResult {
	return acceptType(task, algebra.TypeAsk)
}

func (askActor) Run(bctx *bus.Context, task any) (any, error) {
	t := task.(Task)
	n := t.Node.(algebra.Ask)

	input, err := t.Eval(t.Ctx, n.Input)
	if err != nil {
		return nil, err
	}
	defer input.Destroy()

	_, ok, err := input.Next()
	if err != nil {
		return nil, err
	}
	return ok, nil
}
