package operators

import (
	"context"

	"github.com/gitrdm/sparqlflow/pkg/algebra"
	"github.com/gitrdm/sparqlflow/pkg/bus"
	"github.com/gitrdm/sparqlflow/pkg/rdf"
	"github.com/gitrdm/sparqlflow/pkg/stream"
)

// describeActor resolves Input's bindings (if any) for every variable term
// in Terms, plus any fixed IRIs/blank nodes in Terms directly, and emits a
// concise bounded description of each described term: every quad having
// that term as subject. Its Run returns a *stream.Stream[rdf.Quad].
type describeActor struct{}

func (describeActor) Name() string { return "describe" }

func (describeActor) Test(bctx *bus.Context, task any) bus.TestResult {
	return acceptType(task, algebra.TypeDescribe)
}

func (describeActor) Run(bctx *bus.Context, task any) (any, error) {
	t := task.(Task)
	n := t.Node.(algebra.Describe)

	var describedTerms []rdf.Term
	for _, term := range n.Terms {
		if !term.IsVariable() {
			describedTerms = append(describedTerms, term)
		}
	}

	if n.Input != nil {
		input, err := t.Eval(t.Ctx, n.Input)
		if err != nil {
			return nil, err
		}
		rows, err := stream.Collect(input)
		if err != nil {
			return nil, err
		}
		for _, term := range n.Terms {
			if !term.IsVariable() {
				continue
			}
			for _, row := range rows {
				if v, ok := row.Get(term.Value); ok {
					describedTerms = append(describedTerms, v)
				}
			}
		}
	}

	out := stream.New[rdf.Quad](t.Ctx, nil, func() stream.Metadata { return stream.Metadata{TotalItems: stream.UnknownTotal} },
		func(ctx context.Context, emit func(rdf.Quad) bool) error {
			seen := make(map[string]bool)
			for _, subj := range describedTerms {
				pat := rdf.Pattern{Subject: subj, Predicate: rdf.Variable("__describe_p"), Object: rdf.Variable("__describe_o"), Graph: rdf.Variable("__describe_g")}
				quads, err := t.Resolver.Resolve(ctx, "", pat)
				if err != nil {
					return err
				}
				for {
					q, ok, err := quads.Next()
					if err != nil {
						return err
					}
					if !ok {
						break
					}
					sig := q.Signature()
					if seen[sig] {
						continue
					}
					seen[sig] = true
					if !emit(q) {
						return nil
					}
				}
			}
			return nil
		})
	return out, nil
}
