package engine

import "github.com/gitrdm/sparqlflow/pkg/algebra"

// Parser turns serialized query text into an algebra.Node. SPARQL text
// parsing is out of scope (spec.md §6: "a serialized or in-memory algebra
// tree produced by the parser collaborator"); Parser is a consumed
// contract, supplied by the caller. sparqlflow ships two implementations:
// AlgebraParser below, which looks up an already-built algebra.Node rather
// than parsing SPARQL text, so Go callers (and tests) can construct queries
// directly without a text parser; and JSONParser (jsonparser.go), which
// decodes a JSON-encoded algebra tree.
type Parser interface {
	Parse(query string) (algebra.Node, error)
}

// AlgebraParser implements Parser by treating the query text as the key
// into a pre-registered table of algebra trees. It exists so tests and
// embedders can drive Engine.Query without writing a SPARQL text parser;
// production callers that already hold an algebra.Node should bypass Parser
// entirely via Engine.QueryNode.
type AlgebraParser struct {
	queries map[string]algebra.Node
}

// NewAlgebraParser constructs an AlgebraParser with no registered queries.
func NewAlgebraParser() *AlgebraParser {
	return &AlgebraParser{queries: make(map[string]algebra.Node)}
}

// Register associates a query key with a pre-built algebra tree.
func (p *AlgebraParser) Register(key string, node algebra.Node) {
	p.queries[key] = node
}

// Parse looks up query as a registered key. It returns ErrUnknownQuery if no
// algebra tree was registered under that key.
func (p *AlgebraParser) Parse(query string) (algebra.Node, error) {
	n, ok := p.queries[query]
	if !ok {
		return nil, ErrUnknownQuery
	}
	return n, nil
}
