package serialize

import (
	"encoding/csv"

	"github.com/gitrdm/sparqlflow/pkg/bus"
)

// csvActor renders a bindings result as text/csv: a header row of variable
// names followed by one row per solution, unbound positions left empty.
type csvActor struct{}

func (csvActor) Name() string { return "csv" }

func (csvActor) Test(bctx *bus.Context, task any) bus.TestResult {
	return acceptMediaType(task, "text/csv")
}

func (csvActor) Run(bctx *bus.Context, task any) (any, error) {
	t := task.(Task)

	rows, err := rowsFromBindings(t.Result.Variables, t.Result.Bindings)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(t.Writer)
	if err := w.Write(t.Result.Variables); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return nil, w.Error()
}
