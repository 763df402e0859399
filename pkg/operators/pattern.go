package operators

import (
	"github.com/gitrdm/sparqlflow/pkg/algebra"
	"github.com/gitrdm/sparqlflow/pkg/bus"
)

// patternActor evaluates a single quad pattern node; it is a one-pattern
// special case of bgpActor, kept distinct because spec.md §3 names Pattern
// as its own node kind.
type patternActor struct{}

func (patternActor) Name() string { return "pattern" }

func (patternActor) Test(bctx *bus.Context, task any) bus.TestResult {
	return acceptType(task, algebra.TypePattern)
}

func (patternActor) Run(bctx *bus.Context, task any) (any, error) {
	t := task.(Task)
	n := t.Node.(algebra.Pattern)
	return resolvePatternBindings(t.Ctx, t.Resolver, n.Source, n.Pattern)
}
