package serialize

import (
	"encoding/json"

	"github.com/gitrdm/sparqlflow/pkg/bus"
	"github.com/gitrdm/sparqlflow/pkg/rdf"
)

// treeActor renders a bindings or quads result as a generic application/json
// tree dump: an array of objects for bindings, or an array of quad objects
// for a CONSTRUCT/DESCRIBE result.
type treeActor struct{}

func (treeActor) Name() string { return "tree" }

func (treeActor) Test(bctx *bus.Context, task any) bus.TestResult {
	return acceptMediaType(task, "application/json")
}

type quadDoc struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
	Graph     string `json:"graph,omitempty"`
}

func (treeActor) Run(bctx *bus.Context, task any) (any, error) {
	t := task.(Task)
	enc := json.NewEncoder(t.Writer)

	if t.Result.Quads != nil {
		var docs []quadDoc
		for {
			q, ok, err := t.Result.Quads.Next()
			if err != nil {
				return nil, err
			}
			if !ok {
				break
			}
			doc := quadDoc{Subject: q.Subject.String(), Predicate: q.Predicate.String(), Object: q.Object.String()}
			if q.Graph != rdf.DefaultGraph {
				doc.Graph = q.Graph.String()
			}
			docs = append(docs, doc)
		}
		return nil, enc.Encode(docs)
	}

	if t.Result.Ask != nil {
		return nil, enc.Encode(map[string]bool{"boolean": *t.Result.Ask})
	}

	var docs []map[string]string
	for {
		b, ok, err := t.Result.Bindings.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		row := make(map[string]string, len(t.Result.Variables))
		for _, v := range t.Result.Variables {
			if term, bound := b.Get(v); bound {
				row[v] = term.String()
			}
		}
		docs = append(docs, row)
	}
	return nil, enc.Encode(docs)
}
