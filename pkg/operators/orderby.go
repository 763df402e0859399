package operators

import (
	"sort"

	"github.com/gitrdm/sparqlflow/pkg/algebra"
	"github.com/gitrdm/sparqlflow/pkg/bus"
	"github.com/gitrdm/sparqlflow/pkg/expr"
	"github.com/gitrdm/sparqlflow/pkg/stream"
)

// orderByActor sorts Input by Conditions in order. It is blocking (must
// collect the whole input before emitting its first result) since a total
// order cannot be determined from a prefix.
type orderByActor struct{}

func (orderByActor) Name() string { return "orderby" }

func (orderByActor) Test(bctx *bus.Context, task any) bus.TestResult {
	return acceptType(task, algebra.TypeOrderBy)
}

func (orderByActor) Run(bctx *bus.Context, task any) (any, error) {
	t := task.(Task)
	n := t.Node.(algebra.OrderBy)

	input, err := t.Eval(t.Ctx, n.Input)
	if err != nil {
		return nil, err
	}
	rows, err := stream.Collect(input)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(rows, func(i, j int) bool {
		for _, cond := range n.Conditions {
			lv, lerr := cond.Expr.Eval(rows[i])
			rv, rerr := cond.Expr.Eval(rows[j])
			if lerr != nil || rerr != nil {
				continue
			}
			cmp := expr.Compare(lv, rv)
			if cmp == 0 {
				continue
			}
			if cond.Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})

	return stream.FromSlice(t.Ctx, input.Variables(), rows), nil
}
