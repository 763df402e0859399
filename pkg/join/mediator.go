package join

import (
	"context"

	"github.com/gitrdm/sparqlflow/pkg/bindings"
	"github.com/gitrdm/sparqlflow/pkg/bus"
	"github.com/gitrdm/sparqlflow/pkg/stream"
)

// Mediator is the binary join mediator of spec.md §4.3: it registers
// NestedLoop and SymmetricHash on a bus and dispatches under the
// minimum-estimated-iterations policy, so the cheaper strategy (by Test's
// Metric) always wins.
type Mediator struct {
	m *bus.Mediator
}

// NewMediator constructs the binary join mediator with both strategies
// registered.
func NewMediator() *Mediator {
	b := bus.NewBus()
	b.Register(NestedLoop{})
	b.Register(SymmetricHash{})
	return &Mediator{m: bus.NewMediator(b, bus.PolicyMinimumIterations, nil)}
}

// Join dispatches the binary join of left and right through the mediator's
// policy, returning the resulting stream.
func (md *Mediator) Join(ctx context.Context, left, right *stream.Stream[bindings.Bindings]) (*stream.Stream[bindings.Bindings], error) {
	bctx := bus.New(ctx)
	v, err := md.m.Dispatch(bctx, Task{Ctx: ctx, Left: left, Right: right})
	if err != nil {
		return nil, err
	}
	return v.(*stream.Stream[bindings.Bindings]), nil
}

// NewMultiWay constructs the N-ary join actor wired to a fresh binary
// Mediator for its pairwise folds.
func NewMultiWay() *MultiWay {
	return &MultiWay{Binary: NewMediator()}
}

// JoinAll dispatches an N-ary join across streams: two streams go straight
// to the binary Mediator; three or more go through MultiWay, which itself
// folds through a binary Mediator pairwise.
func JoinAll(ctx context.Context, streams []*stream.Stream[bindings.Bindings]) (*stream.Stream[bindings.Bindings], error) {
	if len(streams) == 0 {
		return stream.FromSlice(ctx, nil, []bindings.Bindings{bindings.Empty()}), nil
	}
	if len(streams) == 1 {
		return streams[0], nil
	}
	if len(streams) == 2 {
		return NewMediator().Join(ctx, streams[0], streams[1])
	}
	mw := NewMultiWay()
	v, err := mw.Run(bus.New(ctx), MultiStreams{Ctx: ctx, Streams: streams})
	if err != nil {
		return nil, err
	}
	return v.(*stream.Stream[bindings.Bindings]), nil
}
