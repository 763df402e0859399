package operators

import (
	"context"

	"github.com/gitrdm/sparqlflow/pkg/algebra"
	"github.com/gitrdm/sparqlflow/pkg/bindings"
	"github.com/gitrdm/sparqlflow/pkg/bus"
	"github.com/gitrdm/sparqlflow/pkg/stream"
)

// sliceActor applies OFFSET/LIMIT, composing cleanly with an upstream
// sliceActor (spec.md §8 slice-composition testable property: two nested
// slices behave like one slice with the combined offset/limit) because it
// is implemented purely in terms of a running counter over Input, with no
// assumption about Input's own nature.
type sliceActor struct{}

func (sliceActor) Name() string { return "slice" }

func (sliceActor) Test(bctx *bus.Context, task any) bus.TestResult {
	return acceptType(task, algebra.TypeSlice)
}

func (sliceActor) Run(bctx *bus.Context, task any) (any, error) {
	t := task.(Task)
	n := t.Node.(algebra.Slice)

	input, err := t.Eval(t.Ctx, n.Input)
	if err != nil {
		return nil, err
	}

	out := stream.New(t.Ctx, input.Variables(), func() stream.Metadata {
		return stream.Metadata{TotalItems: sliceTotal(input.Metadata().TotalItems, n.Offset, n.Limit)}
	},
		func(ctx context.Context, emit func(bindings.Bindings) bool) error {
			var skipped, emitted int64
			for {
				if n.Limit >= 0 && emitted >= n.Limit {
					return nil
				}
				b, ok, err := input.Next()
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
				if skipped < n.Offset {
					skipped++
					continue
				}
				emitted++
				if !emit(b) {
					return nil
				}
			}
		})
	return out, nil
}

// sliceTotal is the §4.2 law: totalItems = max(0, min(limit, childTotal -
// offset)), or UnknownTotal if childTotal itself is unknown. limit < 0 means
// unbounded.
func sliceTotal(childTotal, offset, limit int64) int64 {
	if childTotal < 0 {
		return stream.UnknownTotal
	}
	remaining := childTotal - offset
	if remaining < 0 {
		remaining = 0
	}
	if limit >= 0 && limit < remaining {
		remaining = limit
	}
	return remaining
}
