package join

import (
	"context"
	"sort"

	"github.com/gitrdm/sparqlflow/pkg/bindings"
	"github.com/gitrdm/sparqlflow/pkg/bus"
	"github.com/gitrdm/sparqlflow/pkg/stream"
)

// MultiWay is the N-ary join actor. It only accepts MultiStreams tasks
// (three or more streams); for two streams the binary mediator already
// covers the decision. It sorts the input streams ascending by estimated
// totalItems and left-folds pairwise joins through the binary mediator,
// which tends to keep intermediate result sizes small.
type MultiWay struct {
	Binary *Mediator
}

// MultiStreams is the task type MultiWay accepts: join every stream in
// Streams pairwise, smallest estimated cardinality first, folding left.
type MultiStreams struct {
	Ctx     context.Context
	Streams []*stream.Stream[bindings.Bindings]
}

func (m *MultiWay) Name() string { return "multi-way" }

func (m *MultiWay) Test(bctx *bus.Context, task any) bus.TestResult {
	t, ok := task.(MultiStreams)
	if !ok {
		return bus.Reject("not a join.MultiStreams")
	}
	if len(t.Streams) < 3 {
		return bus.Reject("multi-way join requires at least three streams")
	}
	var total float64
	for _, s := range t.Streams {
		total += float64(estimatedTotal(s))
	}
	return bus.Accept(total)
}

func (m *MultiWay) Run(bctx *bus.Context, task any) (any, error) {
	t := task.(MultiStreams)
	streams := append([]*stream.Stream[bindings.Bindings](nil), t.Streams...)
	sort.SliceStable(streams, func(i, j int) bool {
		return estimatedTotal(streams[i]) < estimatedTotal(streams[j])
	})

	acc := streams[0]
	for _, next := range streams[1:] {
		result, err := m.Binary.Join(t.Ctx, acc, next)
		if err != nil {
			return nil, err
		}
		acc = result
	}
	return acc, nil
}
