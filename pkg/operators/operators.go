// Package operators implements the query-operation bus: one actor per
// SPARQL algebra node type (spec.md §4.2), dispatched by exact node-type
// match and wired together through a single recursive Mediator.Evaluate.
package operators

import (
	"context"

	"github.com/gitrdm/sparqlflow/pkg/algebra"
	"github.com/gitrdm/sparqlflow/pkg/bindings"
	"github.com/gitrdm/sparqlflow/pkg/bus"
	"github.com/gitrdm/sparqlflow/pkg/join"
	"github.com/gitrdm/sparqlflow/pkg/pathengine"
	"github.com/gitrdm/sparqlflow/pkg/source"
	"github.com/gitrdm/sparqlflow/pkg/stream"
)

// Task is published to the query-operation bus for every node evaluated.
// Eval lets an actor recursively resolve a child node through the same
// Mediator without the Mediator needing to own the actors directly.
type Task struct {
	Ctx      context.Context
	Node     algebra.Node
	Resolver pathengine.QuadResolver
	Remote   *source.SPARQLEndpointClient
	Eval     func(ctx context.Context, node algebra.Node) (*stream.Stream[bindings.Bindings], error)
}

// Mediator is the query-operation mediator: every node-type actor is
// registered on its bus and dispatch picks the single actor whose Test
// matches the task's node type exactly.
type Mediator struct {
	bus      *bus.Bus
	med      *bus.Mediator
	resolver pathengine.QuadResolver
	remote   *source.SPARQLEndpointClient
}

// NewMediator constructs the fully wired query-operation mediator. resolver
// is used by Bgp/Pattern/Path; remote is used by Service and may be nil if
// SERVICE is never queried.
func NewMediator(resolver pathengine.QuadResolver, remote *source.SPARQLEndpointClient) *Mediator {
	b := bus.NewBus()
	md := &Mediator{bus: b, resolver: resolver, remote: remote}
	md.med = bus.NewMediator(b, bus.PolicyMinimumIterations, nil)

	for _, a := range []bus.Actor{
		bgpActor{}, patternActor{}, pathActor{},
		joinActor{}, leftJoinActor{}, unionActor{},
		filterActor{}, extendActor{},
		projectActor{}, distinctActor{}, reducedActor{},
		sliceActor{}, orderByActor{}, groupActor{},
		minusActor{}, valuesActor{},
		constructActor{}, askActor{}, describeActor{}, serviceActor{},
	} {
		b.Register(a)
	}
	return md
}

// Evaluate recursively resolves node into a bindings stream by dispatching
// through the query-operation bus. It must only be called on a node whose
// result shape is bindings; the terminal result-form nodes (Construct,
// Ask, Describe) never appear as another operator's Input, so they are
// never reached through this path — pkg/engine calls Dispatch directly for
// those instead.
func (md *Mediator) Evaluate(ctx context.Context, node algebra.Node) (*stream.Stream[bindings.Bindings], error) {
	v, err := md.Dispatch(ctx, node)
	if err != nil {
		return nil, err
	}
	return v.(*stream.Stream[bindings.Bindings]), nil
}

// Dispatch resolves node through the query-operation bus and returns its
// raw result, whose concrete type depends on node's kind: a
// *stream.Stream[bindings.Bindings] for every ordinary algebra node, or a
// *stream.Stream[rdf.Quad] for Construct, or a bool for Ask, or
// *stream.Stream[rdf.Quad] for Describe.
func (md *Mediator) Dispatch(ctx context.Context, node algebra.Node) (any, error) {
	bctx := bus.New(ctx)
	return md.med.Dispatch(bctx, Task{
		Ctx:      ctx,
		Node:     node,
		Resolver: md.resolver,
		Remote:   md.remote,
		Eval:     md.Evaluate,
	})
}

// acceptType is the standard Test body shared by every operator actor: it
// accepts iff the task's node is of exactly the actor's declared type.
func acceptType(task any, want algebra.NodeType) bus.TestResult {
	t, ok := task.(Task)
	if !ok {
		return bus.Reject("not an operators.Task")
	}
	if t.Node.Type() != want {
		return bus.Reject("node type mismatch")
	}
	return bus.Accept(0)
}

// sumTotal is the §4.2 Union law: totalItems = Σ children, or UnknownTotal
// if either child's total is unknown.
func sumTotal(totals ...int64) int64 {
	var sum int64
	for _, t := range totals {
		if t < 0 {
			return stream.UnknownTotal
		}
		sum += t
	}
	return sum
}

// productTotal is the §4.3 Join law generalized to LeftJoin ("as Join,
// but..."): totalItems = product of inputs, or UnknownTotal if either
// input's total is unknown.
func productTotal(left, right int64) int64 {
	if left < 0 || right < 0 {
		return stream.UnknownTotal
	}
	return left * right
}
