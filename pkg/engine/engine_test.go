package engine_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/gitrdm/sparqlflow/pkg/algebra"
	"github.com/gitrdm/sparqlflow/pkg/bus"
	"github.com/gitrdm/sparqlflow/pkg/engine"
	"github.com/gitrdm/sparqlflow/pkg/rdf"
	"github.com/gitrdm/sparqlflow/pkg/source"
)

func testEngine(t *testing.T) (*engine.Engine, *engine.AlgebraParser) {
	t.Helper()
	resolver := source.NewResolver()
	resolver.Register(&source.RDFJSSource{ID: "default", Quads: []rdf.Quad{
		{Subject: rdf.IRI("http://example.org/alice"), Predicate: rdf.IRI("http://example.org/knows"), Object: rdf.IRI("http://example.org/bob"), Graph: rdf.DefaultGraph},
	}})
	parser := engine.NewAlgebraParser()
	eng := engine.New(resolver, nil, parser, nil)
	return eng, parser
}

func TestEngineQueryEndToEnd(t *testing.T) {
	eng, parser := testEngine(t)
	parser.Register("q1", algebra.Bgp{Patterns: []rdf.Pattern{
		{Subject: rdf.Variable("s"), Predicate: rdf.IRI("http://example.org/knows"), Object: rdf.Variable("o"), Graph: rdf.DefaultGraph},
	}})

	result, err := eng.Query(context.Background(), "q1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Bindings == nil {
		t.Fatal("expected a bindings result")
	}

	var buf bytes.Buffer
	if err := eng.Serialize(bus.New(context.Background()), result, "text/csv", &buf); err != nil {
		t.Fatalf("unexpected serialize error: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected non-empty CSV output")
	}
}

func TestEngineQueryPropagatesParseError(t *testing.T) {
	eng, _ := testEngine(t)
	_, err := eng.Query(context.Background(), "unregistered")
	if err != engine.ErrUnknownQuery {
		t.Fatalf("expected ErrUnknownQuery, got %v", err)
	}
}

func TestEngineQueryNodeAskResult(t *testing.T) {
	eng, _ := testEngine(t)
	ask := algebra.Ask{Input: algebra.Bgp{Patterns: []rdf.Pattern{
		{Subject: rdf.Variable("s"), Predicate: rdf.IRI("http://example.org/knows"), Object: rdf.Variable("o"), Graph: rdf.DefaultGraph},
	}}}
	result, err := eng.QueryNode(context.Background(), ask)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Ask == nil || !*result.Ask {
		t.Fatalf("expected ask=true, got %v", result.Ask)
	}
}

func TestEngineQueryNodeDeadlineCancelsEvaluation(t *testing.T) {
	eng, _ := testEngine(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	time.Sleep(5 * time.Millisecond)

	result, err := eng.QueryNode(ctx, algebra.Bgp{Patterns: []rdf.Pattern{
		{Subject: rdf.Variable("s"), Predicate: rdf.Variable("p"), Object: rdf.Variable("o"), Graph: rdf.DefaultGraph},
	}})
	if err != nil {
		// an already-expired deadline may surface synchronously as a
		// cancellation error from the resolver dispatch, which is also an
		// acceptable way to observe the deadline being enforced.
		return
	}
	if result.Bindings != nil {
		_, ok, _ := result.Bindings.Next()
		if ok {
			t.Fatal("expected no results to be produced once the deadline has already elapsed")
		}
	}
}
