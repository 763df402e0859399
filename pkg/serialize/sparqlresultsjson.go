package serialize

import (
	"encoding/json"

	"github.com/gitrdm/sparqlflow/pkg/bus"
	"github.com/gitrdm/sparqlflow/pkg/rdf"
)

// sparqlResultsJSONActor renders a bindings or ask result as the SPARQL 1.1
// Query Results JSON Format (https://www.w3.org/TR/sparql11-results-json/).
type sparqlResultsJSONActor struct{}

func (sparqlResultsJSONActor) Name() string { return "sparql-results-json" }

func (sparqlResultsJSONActor) Test(bctx *bus.Context, task any) bus.TestResult {
	return acceptMediaType(task, "application/sparql-results+json")
}

type resultsDoc struct {
	Head    headDoc  `json:"head"`
	Results *bodyDoc `json:"results,omitempty"`
	Boolean *bool    `json:"boolean,omitempty"`
}

type headDoc struct {
	Vars []string `json:"vars,omitempty"`
}

type bodyDoc struct {
	Bindings []map[string]termDoc `json:"bindings"`
}

type termDoc struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Lang     string `json:"xml:lang,omitempty"`
	Datatype string `json:"datatype,omitempty"`
}

func toTermDoc(t rdf.Term) termDoc {
	switch t.Kind {
	case rdf.KindIRI:
		return termDoc{Type: "uri", Value: t.Value}
	case rdf.KindBlankNode:
		return termDoc{Type: "bnode", Value: t.Value}
	default:
		return termDoc{Type: "literal", Value: t.Value, Lang: t.Lang, Datatype: t.Datatype}
	}
}

func (sparqlResultsJSONActor) Run(bctx *bus.Context, task any) (any, error) {
	t := task.(Task)

	if t.Result.Ask != nil {
		doc := resultsDoc{Boolean: t.Result.Ask}
		return nil, json.NewEncoder(t.Writer).Encode(doc)
	}

	doc := resultsDoc{Head: headDoc{Vars: t.Result.Variables}, Results: &bodyDoc{}}
	for {
		b, ok, err := t.Result.Bindings.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		row := make(map[string]termDoc, len(t.Result.Variables))
		for _, v := range t.Result.Variables {
			if term, bound := b.Get(v); bound {
				row[v] = toTermDoc(term)
			}
		}
		doc.Results.Bindings = append(doc.Results.Bindings, row)
	}
	return nil, json.NewEncoder(t.Writer).Encode(doc)
}
