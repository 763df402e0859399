package source_test

import (
	"context"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gitrdm/sparqlflow/pkg/bus"
	"github.com/gitrdm/sparqlflow/pkg/rdf"
	"github.com/gitrdm/sparqlflow/pkg/source"
	"github.com/gitrdm/sparqlflow/pkg/stream"
)

func iri(v string) rdf.Term { return rdf.IRI("http://example.org/" + v) }

func TestResolverDispatchesToMatchingRegisteredSource(t *testing.T) {
	r := source.NewResolver()
	r.Register(&source.RDFJSSource{ID: "people", Quads: []rdf.Quad{
		{Subject: iri("alice"), Predicate: iri("knows"), Object: iri("bob"), Graph: rdf.DefaultGraph},
	}})

	pattern := rdf.Pattern{Subject: rdf.Variable("s"), Predicate: iri("knows"), Object: rdf.Variable("o"), Graph: rdf.DefaultGraph}
	s, err := r.Resolve(context.Background(), "people", pattern)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	quads, err := stream.Collect(s)
	if err != nil {
		t.Fatalf("unexpected stream error: %v", err)
	}
	if len(quads) != 1 {
		t.Fatalf("expected one matching quad, got %d", len(quads))
	}
}

func TestResolverRejectsUnknownSourceID(t *testing.T) {
	r := source.NewResolver()
	r.Register(&source.RDFJSSource{ID: "people", Quads: nil})

	pattern := rdf.Pattern{Subject: rdf.Variable("s"), Predicate: rdf.Variable("p"), Object: rdf.Variable("o"), Graph: rdf.DefaultGraph}
	_, err := r.Resolve(context.Background(), "nonexistent", pattern)
	if err == nil {
		t.Fatal("expected dispatch to a source id nothing accepts to fail")
	}
}

type fakeFetcher struct {
	calls int32
	body  string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string, headers map[string]string) (*source.FetchResponse, error) {
	atomic.AddInt32(&f.calls, 1)
	return &source.FetchResponse{
		StatusCode:  200,
		ContentType: "application/n-quads",
		Body:        io.NopCloser(strings.NewReader(f.body)),
	}, nil
}

func TestNQuadsDereferencerParsesTriplesAndPagingControls(t *testing.T) {
	doc := `<http://example.org/alice> <http://example.org/knows> <http://example.org/bob> .
<http://example.org/alice> <http://example.org/name> "Alice"@en .
# next-page: http://example.org/page2
# total-items: 42
`
	resp := &source.FetchResponse{StatusCode: 200, ContentType: "application/n-quads", Body: io.NopCloser(strings.NewReader(doc))}
	out, err := (source.NQuadsDereferencer{}).Dereference(context.Background(), resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Quads) != 2 {
		t.Fatalf("expected 2 parsed quads, got %d", len(out.Quads))
	}
	if out.Page.NextPage != "http://example.org/page2" {
		t.Fatalf("expected next-page control to be parsed, got %q", out.Page.NextPage)
	}
	if !out.Page.HasTotal || out.Page.TotalItems != 42 {
		t.Fatalf("expected total-items=42, got %+v", out.Page)
	}
	langTerm := out.Quads[1].Object
	if langTerm.Lang != "en" || langTerm.Value != "Alice" {
		t.Fatalf("expected a language-tagged literal, got %+v", langTerm)
	}
}

func TestCacheGetOrFetchSingleFlightsConcurrentRequests(t *testing.T) {
	fetcher := &fakeFetcher{body: "<http://example.org/a> <http://example.org/b> <http://example.org/c> .\n"}
	cache := source.NewCache(8)
	defer cache.Close()

	const n = 10
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := cache.GetOrFetch(context.Background(), "http://example.org/doc", nil, fetcher, source.NQuadsDereferencer{})
			errs <- err
		}()
	}
	for i := 0; i < n; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if fetcher.calls >= n {
		t.Fatalf("expected singleflight to collapse at least some of %d concurrent requests for the same url, got %d fetches", n, fetcher.calls)
	}

	second, err := cache.GetOrFetch(context.Background(), "http://example.org/doc", nil, fetcher, source.NQuadsDereferencer{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(second.Quads) != 1 {
		t.Fatalf("expected cached document to still have its quad, got %d", len(second.Quads))
	}
}

func TestCacheInvalidateForcesRefetch(t *testing.T) {
	fetcher := &fakeFetcher{body: "<http://example.org/a> <http://example.org/b> <http://example.org/c> .\n"}
	cache := source.NewCache(8)
	defer cache.Close()

	if _, err := cache.GetOrFetch(context.Background(), "http://example.org/doc", nil, fetcher, source.NQuadsDereferencer{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cache.Invalidate("http://example.org/doc")

	// Invalidation is asynchronous; retry GetOrFetch until the eviction is
	// observed or give up. A single extra fetch call proves the cache
	// entry was dropped and re-fetched rather than served stale.
	for i := 0; i < 100; i++ {
		if atomic.LoadInt32(&fetcher.calls) >= 2 {
			break
		}
		if _, err := cache.GetOrFetch(context.Background(), "http://example.org/doc", nil, fetcher, source.NQuadsDereferencer{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		time.Sleep(time.Millisecond)
	}
	if got := atomic.LoadInt32(&fetcher.calls); got < 2 {
		t.Fatalf("expected Invalidate to force a second fetch, got %d fetches", got)
	}
}

type jsonFetcher struct{ body string }

func (f jsonFetcher) Fetch(ctx context.Context, url string, headers map[string]string) (*source.FetchResponse, error) {
	return &source.FetchResponse{StatusCode: 200, ContentType: "application/sparql-results+json", Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func TestSPARQLEndpointClientSelectParsesResultsJSON(t *testing.T) {
	body := `{
		"head": {"vars": ["s", "o"]},
		"results": {"bindings": [
			{"s": {"type": "uri", "value": "http://example.org/alice"}, "o": {"type": "literal", "value": "Alice"}}
		]}
	}`
	client := &source.SPARQLEndpointClient{Fetcher: jsonFetcher{body: body}}
	s, err := client.Select(context.Background(), "http://example.org/sparql", "SELECT * WHERE { ?s ?p ?o }")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows, err := stream.Collect(s)
	if err != nil {
		t.Fatalf("unexpected stream error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 binding row, got %d", len(rows))
	}
	sv, ok := rows[0].Get("s")
	if !ok || !sv.Equal(iri("alice")) {
		t.Fatalf("expected s=alice, got %v, %v", sv, ok)
	}
}

type erroringFetcher struct{}

func (erroringFetcher) Fetch(ctx context.Context, url string, headers map[string]string) (*source.FetchResponse, error) {
	return nil, bus.NewError(bus.ErrSource, "network unreachable", nil)
}

func TestSPARQLEndpointClientSelectWrapsFetchFailureAsSourceError(t *testing.T) {
	client := &source.SPARQLEndpointClient{Fetcher: erroringFetcher{}}
	_, err := client.Select(context.Background(), "http://example.org/sparql", "ASK { ?s ?p ?o }")
	if err == nil {
		t.Fatal("expected a fetch failure to propagate as an error")
	}
	if !bus.Is(err, bus.ErrSource) {
		t.Fatalf("expected ErrSource, got %v", err)
	}
}
