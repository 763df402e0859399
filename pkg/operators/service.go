package operators

import (
	"github.com/gitrdm/sparqlflow/pkg/algebra"
	"github.com/gitrdm/sparqlflow/pkg/bindings"
	"github.com/gitrdm/sparqlflow/pkg/bus"
	"github.com/gitrdm/sparqlflow/pkg/stream"
)

// serviceActor delegates QueryText to a remote SPARQL endpoint via the
// SPARQLEndpointClient. When Silent is true, a remote failure is swallowed
// and an empty bindings stream is returned instead of propagating the
// error, per SPARQL SERVICE SILENT semantics.
type serviceActor struct{}

func (serviceActor) Name() string { return "service" }

func (serviceActor) Test(bctx *bus.Context, task any) bus.TestResult {
	return acceptType(task, algebra.TypeService)
}

func (serviceActor) Run(bctx *bus.Context, task any) (any, error) {
	t := task.(Task)
	n := t.Node.(algebra.Service)

	if t.Remote == nil {
		if n.Silent {
			return stream.FromSlice(t.Ctx, nil, []bindings.Bindings{}), nil
		}
		return nil, bus.NewError(bus.ErrSource, "no SPARQL endpoint client configured for SERVICE", nil)
	}

	s, err := t.Remote.Select(t.Ctx, n.Endpoint, n.QueryText)
	if err != nil {
		if n.Silent {
			return stream.FromSlice(t.Ctx, nil, []bindings.Bindings{}), nil
		}
		return nil, err
	}
	return s, nil
}
