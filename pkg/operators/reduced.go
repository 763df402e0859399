package operators

import (
	"github.com/gitrdm/sparqlflow/pkg/algebra"
	"github.com/gitrdm/sparqlflow/pkg/bus"
)

// reducedActor implements SPARQL REDUCED. Per the SPARQL 1.1 recommendation
// a conformant engine may, but need not, eliminate duplicates under
// REDUCED; sparqlflow deliberately treats it as a pass-through, matching
// the reference SPARQL executor's applyReduced no-op.
type reducedActor struct{}

func (reducedActor) Name() string { return "reduced" }

func (reducedActor) Test(bctx *bus.Context, task any) bus.TestResult {
	return acceptType(task, algebra.TypeReduced)
}

func (reducedActor) Run(bctx *bus.Context, task any) (any, error) {
	t := task.(Task)
	n := t.Node.(algebra.Reduced)
	return t.Eval(t.Ctx, n.Input)
}
