package operators

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gitrdm/sparqlflow/pkg/algebra"
	"github.com/gitrdm/sparqlflow/pkg/bindings"
	"github.com/gitrdm/sparqlflow/pkg/bus"
	"github.com/gitrdm/sparqlflow/pkg/expr"
	"github.com/gitrdm/sparqlflow/pkg/rdf"
	"github.com/gitrdm/sparqlflow/pkg/stream"
)

// groupActor partitions Input by GroupVars and evaluates Aggregates per
// partition, optionally keeping only partitions for which Having's
// effective boolean value is true. Blocking, like orderByActor.
type groupActor struct{}

func (groupActor) Name() string { return "group" }

func (groupActor) Test(bctx *bus.Context, task any) bus.TestResult {
	return acceptType(task, algebra.TypeGroup)
}

func (groupActor) Run(bctx *bus.Context, task any) (any, error) {
	t := task.(Task)
	n := t.Node.(algebra.Group)

	input, err := t.Eval(t.Ctx, n.Input)
	if err != nil {
		return nil, err
	}
	rows, err := stream.Collect(input)
	if err != nil {
		return nil, err
	}

	type partition struct {
		key  bindings.Bindings
		rows []bindings.Bindings
	}
	order := []string{}
	partitions := map[string]*partition{}
	for _, row := range rows {
		key := row.Project(n.GroupVars)
		sig := key.Signature()
		p, ok := partitions[sig]
		if !ok {
			p = &partition{key: key}
			partitions[sig] = p
			order = append(order, sig)
		}
		p.rows = append(p.rows, row)
	}
	if len(rows) == 0 && len(n.GroupVars) == 0 {
		// SPARQL: aggregating with no GROUP BY over an empty input still
		// yields one group (e.g. COUNT(*) = 0).
		order = append(order, "")
		partitions[""] = &partition{key: bindings.Empty()}
	}

	outVars := append(append([]string{}, n.GroupVars...))
	for _, agg := range n.Aggregates {
		outVars = append(outVars, agg.Var)
	}

	var out []bindings.Bindings
	for _, sig := range order {
		p := partitions[sig]
		result := p.key
		for _, agg := range n.Aggregates {
			result = result.Bind(agg.Var, evalAggregate(agg, p.rows))
		}
		if n.Having != nil {
			v, err := n.Having.Eval(result)
			if err != nil {
				continue
			}
			ok, _ := expr.EffectiveBooleanValue(v)
			if !ok {
				continue
			}
		}
		out = append(out, result)
	}

	return stream.FromSlice(t.Ctx, outVars, out), nil
}

func evalAggregate(agg algebra.Aggregate, rows []bindings.Bindings) rdf.Term {
	switch strings.ToLower(agg.Func) {
	case "count":
		if agg.Expr == nil {
			return intTerm(int64(len(rows)))
		}
		n := 0
		seen := map[string]bool{}
		for _, r := range rows {
			v, err := agg.Expr.Eval(r)
			if err != nil {
				continue
			}
			if agg.Distinct {
				if seen[v.String()] {
					continue
				}
				seen[v.String()] = true
			}
			n++
		}
		return intTerm(int64(n))
	case "sum":
		var sum float64
		for _, r := range rows {
			sum += numericOrZero(agg.Expr, r)
		}
		return doubleTerm(sum)
	case "avg":
		if len(rows) == 0 {
			return doubleTerm(0)
		}
		var sum float64
		for _, r := range rows {
			sum += numericOrZero(agg.Expr, r)
		}
		return doubleTerm(sum / float64(len(rows)))
	case "min":
		return extremeTerm(agg, rows, true)
	case "max":
		return extremeTerm(agg, rows, false)
	case "sample":
		for _, r := range rows {
			if v, err := agg.Expr.Eval(r); err == nil {
				return v
			}
		}
		return rdf.Term{}
	case "group_concat":
		sep := agg.Separator
		if sep == "" {
			sep = " "
		}
		var parts []string
		for _, r := range rows {
			if v, err := agg.Expr.Eval(r); err == nil {
				parts = append(parts, v.Value)
			}
		}
		return rdf.PlainLiteral(strings.Join(parts, sep))
	default:
		return rdf.Term{}
	}
}

func numericOrZero(e expr.Expr, r bindings.Bindings) float64 {
	v, err := e.Eval(r)
	if err != nil {
		return 0
	}
	f, err := strconv.ParseFloat(v.Value, 64)
	if err != nil {
		return 0
	}
	return f
}

func extremeTerm(agg algebra.Aggregate, rows []bindings.Bindings, min bool) rdf.Term {
	var best rdf.Term
	have := false
	for _, r := range rows {
		v, err := agg.Expr.Eval(r)
		if err != nil {
			continue
		}
		if !have {
			best = v
			have = true
			continue
		}
		cmp := expr.Compare(v, best)
		if (min && cmp < 0) || (!min && cmp > 0) {
			best = v
		}
	}
	return best
}

func intTerm(n int64) rdf.Term {
	return rdf.TypedLiteral(fmt.Sprintf("%d", n), "http://www.w3.org/2001/XMLSchema#integer")
}

func doubleTerm(f float64) rdf.Term {
	return rdf.TypedLiteral(strconv.FormatFloat(f, 'g', -1, 64), "http://www.w3.org/2001/XMLSchema#double")
}
