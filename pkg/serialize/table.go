package serialize

import (
	"fmt"
	"strings"

	"github.com/gitrdm/sparqlflow/pkg/bus"
)

// tableActor renders a bindings result as a human-readable, fixed-width
// column table. It is the default format for interactive CLI use.
type tableActor struct{}

func (tableActor) Name() string { return "table" }

func (tableActor) Test(bctx *bus.Context, task any) bus.TestResult {
	return acceptMediaType(task, "table")
}

func (tableActor) Run(bctx *bus.Context, task any) (any, error) {
	t := task.(Task)

	if t.Result.Ask != nil {
		_, err := fmt.Fprintln(t.Writer, *t.Result.Ask)
		return nil, err
	}

	rows, err := rowsFromBindings(t.Result.Variables, t.Result.Bindings)
	if err != nil {
		return nil, err
	}

	widths := make([]int, len(t.Result.Variables))
	for i, v := range t.Result.Variables {
		widths[i] = len(v)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	writeRow := func(cells []string) error {
		var b strings.Builder
		for i, cell := range cells {
			b.WriteString(fmt.Sprintf("%-*s", widths[i]+2, cell))
		}
		_, err := fmt.Fprintln(t.Writer, strings.TrimRight(b.String(), " "))
		return err
	}

	if err := writeRow(t.Result.Variables); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := writeRow(row); err != nil {
			return nil, err
		}
	}
	return nil, nil
}
