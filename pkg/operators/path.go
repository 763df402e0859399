package operators

import (
	"github.com/gitrdm/sparqlflow/pkg/algebra"
	"github.com/gitrdm/sparqlflow/pkg/bus"
	"github.com/gitrdm/sparqlflow/pkg/pathengine"
)

// pathActor evaluates a property path node via pkg/pathengine, which itself
// recurses back into the quad-pattern resolver for Link/NPS leaves.
type pathActor struct{}

func (pathActor) Name() string { return "path" }

func (pathActor) Test(bctx *bus.Context, task any) bus.TestResult {
	return acceptType(task, algebra.TypePath)
}

func (pathActor) Run(bctx *bus.Context, task any) (any, error) {
	t := task.(Task)
	n := t.Node.(algebra.Path)
	return pathengine.Evaluate(t.Ctx, t.Resolver, n)
}
