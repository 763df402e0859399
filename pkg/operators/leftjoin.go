package operators

import (
	"context"

	"github.com/gitrdm/sparqlflow/pkg/algebra"
	"github.com/gitrdm/sparqlflow/pkg/bindings"
	"github.com/gitrdm/sparqlflow/pkg/bus"
	"github.com/gitrdm/sparqlflow/pkg/expr"
	"github.com/gitrdm/sparqlflow/pkg/stream"
)

// leftJoinActor evaluates SPARQL OPTIONAL: every Left binding is kept,
// merged with each compatible (and Filter-passing) Right binding, or kept
// unmodified if no Right binding qualifies.
type leftJoinActor struct{}

func (leftJoinActor) Name() string { return "leftjoin" }

func (leftJoinActor) Test(bctx *bus.Context, task any) bus.TestResult {
	return acceptType(task, algebra.TypeLeftJoin)
}

func (leftJoinActor) Run(bctx *bus.Context, task any) (any, error) {
	t := task.(Task)
	n := t.Node.(algebra.LeftJoin)

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

	outVars := unionVars(left.Variables(), right.Variables())
	out := stream.New(t.Ctx, outVars, func() stream.Metadata {
		return stream.Metadata{TotalItems: productTotal(left.Metadata().TotalItems, right.Metadata().TotalItems)}
	},
		func(ctx context.Context, emit func(bindings.Bindings) bool) error {
			for {
				lb, ok, err := left.Next()
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
				matched := false
				for _, rb := range rightRows {
					if !lb.Compatible(rb) {
						continue
					}
					merged := lb.Merge(rb)
					if n.Filter != nil {
						v, ferr := n.Filter.Eval(merged)
						if ferr != nil {
							continue
						}
						ok, _ := expr.EffectiveBooleanValue(v)
						if !ok {
							continue
						}
					}
					matched = true
					if !emit(merged) {
						return nil
					}
				}
				if !matched {
					if !emit(lb) {
						return nil
					}
				}
			}
		})
	return out, nil
}

func unionVars(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, v := range a {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for _, v := range b {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
