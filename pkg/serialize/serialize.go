// Package serialize implements the serializer bus (spec.md §6): a thin set
// of media-type-selected actors that render a query result to bytes. Result
// rendering itself is explicitly out of scope for deep implementation, so
// these actors are intentionally minimal and use the standard library.
package serialize

import (
	"io"

	"github.com/gitrdm/sparqlflow/pkg/bindings"
	"github.com/gitrdm/sparqlflow/pkg/bus"
	"github.com/gitrdm/sparqlflow/pkg/rdf"
	"github.com/gitrdm/sparqlflow/pkg/stream"
)

// Result is the uniform payload every serializer actor consumes. Exactly
// one of Bindings, Quads, or Ask is set, mirroring the three result shapes
// query-operation Mediator.Dispatch can return (spec.md §3A).
type Result struct {
	Variables []string
	Bindings  *stream.Stream[bindings.Bindings]
	Quads     *stream.Stream[rdf.Quad]
	Ask       *bool
}

// Task is published to the serializer bus for every render request.
type Task struct {
	Result    Result
	MediaType string
	Writer    io.Writer
}

// Mediator picks the single registered actor whose MediaType it supports.
type Mediator struct {
	bus *bus.Bus
	med *bus.Mediator
}

// NewMediator constructs the serializer mediator with the four built-in
// media-type actors registered.
func NewMediator() *Mediator {
	b := bus.NewBus()
	md := &Mediator{bus: b}
	md.med = bus.NewMediator(b, bus.PolicyMinimumIterations, nil)
	for _, a := range []bus.Actor{
		sparqlResultsJSONActor{}, csvActor{}, treeActor{}, tableActor{},
	} {
		b.Register(a)
	}
	return md
}

// Serialize writes result to w in the requested media type.
func (md *Mediator) Serialize(bc *bus.Context, result Result, mediaType string, w io.Writer) error {
	_, err := md.med.Dispatch(bc, Task{Result: result, MediaType: mediaType, Writer: w})
	return err
}

func acceptMediaType(task any, supported ...string) bus.TestResult {
	t, ok := task.(Task)
	if !ok {
		return bus.Reject("not a serialize.Task")
	}
	for _, m := range supported {
		if t.MediaType == m {
			return bus.Accept(0)
		}
	}
	return bus.Reject("media type not supported")
}

// rowsFromBindings collects a bindings Result into ordered row slices using
// Variables for column order, substituting "" for unbound positions.
func rowsFromBindings(variables []string, s *stream.Stream[bindings.Bindings]) ([][]string, error) {
	var out [][]string
	for {
		b, ok, err := s.Next()
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		row := make([]string, len(variables))
		for i, v := range variables {
			if t, bound := b.Get(v); bound {
				row[i] = t.String()
			}
		}
		out = append(out, row)
	}
}
