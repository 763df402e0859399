package operators

import (
	"github.com/gitrdm/sparqlflow/pkg/algebra"
	"github.com/gitrdm/sparqlflow/pkg/bindings"
	"github.com/gitrdm/sparqlflow/pkg/bus"
	"github.com/gitrdm/sparqlflow/pkg/stream"
)

// valuesActor replays an inline VALUES table as a bindings stream, skipping
// the rdf.Undef sentinel positions (UNDEF rows leave that variable
// unbound, not bound to a term).
type valuesActor struct{}

func (valuesActor) Name() string { return "values" }

func (valuesActor) Test(bctx *bus.Context, task any) bus.TestResult {
	return acceptType(task, algebra.TypeValues)
}

func (valuesActor) Run(bctx *bus.Context, task any) (any, error) {
	t := task.(Task)
	n := t.Node.(algebra.Values)

	rows := make([]bindings.Bindings, 0, len(n.Vars.Rows))
	for _, row := range n.Vars.Rows {
		b := bindings.Empty()
		for i, term := range row {
			if i >= len(n.Vars.Variables) {
				break
			}
			if term.IsUndef() {
				continue
			}
			b = b.Bind(n.Vars.Variables[i], term)
		}
		rows = append(rows, b)
	}
	return stream.FromSlice(t.Ctx, n.Vars.Variables, rows), nil
}
