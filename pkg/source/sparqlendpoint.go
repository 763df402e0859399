package source

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/pkg/errors"

	"github.com/gitrdm/sparqlflow/pkg/bindings"
	"github.com/gitrdm/sparqlflow/pkg/bus"
	"github.com/gitrdm/sparqlflow/pkg/rdf"
	"github.com/gitrdm/sparqlflow/pkg/stream"
)

// SPARQLEndpointClient implements the remote half of the SPARQL Service
// operator: it sends a pre-serialized SPARQL SELECT query text to an
// endpoint and parses the standard sparql-results+json response back into
// a Bindings stream.
type SPARQLEndpointClient struct {
	Fetcher Fetcher
}

type sparqlResultsJSON struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results struct {
		Bindings []map[string]sparqlJSONTerm `json:"bindings"`
	} `json:"results"`
	Boolean *bool `json:"boolean"`
}

type sparqlJSONTerm struct {
	Type     string `json:"type"` // "uri", "literal", "bnode"
	Value    string `json:"value"`
	Lang     string `json:"xml:lang"`
	Datatype string `json:"datatype"`
}

func (t sparqlJSONTerm) toTerm() rdf.Term {
	switch t.Type {
	case "uri":
		return rdf.IRI(t.Value)
	case "bnode":
		return rdf.BlankNode(t.Value)
	default:
		if t.Lang != "" {
			return rdf.LangLiteral(t.Value, t.Lang)
		}
		if t.Datatype != "" {
			return rdf.TypedLiteral(t.Value, t.Datatype)
		}
		return rdf.PlainLiteral(t.Value)
	}
}

// Select sends queryText to endpoint and returns the parsed SELECT
// solutions as a Bindings stream. The boolean of an ASK response is not
// returned; the stream is then empty. Endpoint failures are
// wrapped as bus.ErrSource; callers implementing Service.Silent decide
// whether to surface or swallow the returned error.
func (c *SPARQLEndpointClient) Select(ctx context.Context, endpoint, queryText string) (*stream.Stream[bindings.Bindings], error) {
	u := endpoint + "?query=" + url.QueryEscape(queryText)
	resp, err := c.Fetcher.Fetch(ctx, u, map[string]string{"Accept": "application/sparql-results+json"})
	if err != nil {
		return nil, bus.NewError(bus.ErrSource, "query SPARQL endpoint "+endpoint, err)
	}
	defer resp.Body.Close()

	var parsed sparqlResultsJSON
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, bus.NewError(bus.ErrSource, "decode sparql-results+json from "+endpoint, errors.WithStack(err))
	}

	rows := make([]bindings.Bindings, 0, len(parsed.Results.Bindings))
	for _, row := range parsed.Results.Bindings {
		b := bindings.Empty()
		for k, v := range row {
			b = b.Bind(k, v.toTerm())
		}
		rows = append(rows, b)
	}
	return stream.FromSlice(ctx, parsed.Head.Vars, rows), nil
}
