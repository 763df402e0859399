// Package pathengine evaluates SPARQL 1.1 property path expressions by
// recursively reducing each path form to quad-pattern resolutions and BFS
// frontier expansion, following spec.md §4.4.
package pathengine

import (
	"context"
	"fmt"

	"github.com/gitrdm/sparqlflow/pkg/algebra"
	"github.com/gitrdm/sparqlflow/pkg/bindings"
	"github.com/gitrdm/sparqlflow/pkg/bus"
	"github.com/gitrdm/sparqlflow/pkg/rdf"
	"github.com/gitrdm/sparqlflow/pkg/stream"
)

// QuadResolver is the minimal collaborator pathengine needs from the
// quad-pattern resolution layer (pkg/source.Resolver satisfies it).
type QuadResolver interface {
	Resolve(ctx context.Context, source string, pattern rdf.Pattern) (*stream.Stream[rdf.Quad], error)
}

var freshCounter int

// freshVar returns a variable name guaranteed not to collide with
// user-visible query variables, preserving variable hygiene across nested
// Seq expansions within a single evaluation.
func freshVar(prefix string) rdf.Term {
	freshCounter++
	return rdf.Variable(fmt.Sprintf("__path_%s_%d", prefix, freshCounter))
}

// Evaluate resolves a Path algebra node into a bindings stream binding
// whichever of p.Subject/p.Object are variables.
func Evaluate(ctx context.Context, resolver QuadResolver, p algebra.Path) (*stream.Stream[bindings.Bindings], error) {
	quads, err := evalPath(ctx, resolver, p.Subject, p.Expr, p.Object, p.Graph, p.Source)
	if err != nil {
		return nil, err
	}
	return quadsToBindings(ctx, p.Subject, p.Object, quads), nil
}

func quadsToBindings(ctx context.Context, subj, obj rdf.Term, quads *stream.Stream[rdf.Quad]) *stream.Stream[bindings.Bindings] {
	var vars []string
	if subj.IsVariable() {
		vars = append(vars, subj.Value)
	}
	if obj.IsVariable() {
		vars = append(vars, obj.Value)
	}
	return stream.New(ctx, vars, func() stream.Metadata { return stream.Metadata{TotalItems: stream.UnknownTotal} },
		func(ctx context.Context, emit func(bindings.Bindings) bool) error {
			for {
				q, ok, err := quads.Next()
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
				b := bindings.Empty()
				if subj.IsVariable() {
					b = b.Bind(subj.Value, q.Subject)
				}
				if obj.IsVariable() {
					b = b.Bind(obj.Value, q.Object)
				}
				if !emit(b) {
					return nil
				}
			}
		})
}

// evalPath resolves expr between subj and obj, returning a quad stream
// whose Subject/Object carry the reachable term pairs (synthetic quads:
// Predicate/Graph are not meaningful on the result of composite paths, only
// on Link/NPS leaves).
func evalPath(ctx context.Context, resolver QuadResolver, subj rdf.Term, expr algebra.PathExpr, obj rdf.Term, graph rdf.Term, source string) (*stream.Stream[rdf.Quad], error) {
	switch e := expr.(type) {
	case algebra.Link:
		pat := rdf.Pattern{Subject: subj, Predicate: e.Predicate, Object: obj, Graph: graph}
		return resolver.Resolve(ctx, source, pat)

	case algebra.Inv:
		inner, err := evalPath(ctx, resolver, obj, e.Expr, subj, graph, source)
		if err != nil {
			return nil, err
		}
		return swapQuads(ctx, inner), nil

	case algebra.NPS:
		return resolveNPS(ctx, resolver, subj, e.Excluded, obj, graph, source)

	case algebra.Seq:
		mid := freshVar("mid")
		left, err := evalPath(ctx, resolver, subj, e.Left, mid, graph, source)
		if err != nil {
			return nil, err
		}
		right, err := evalPath(ctx, resolver, mid, e.Right, obj, graph, source)
		if err != nil {
			return nil, err
		}
		return joinQuadsOnMid(ctx, left, right)

	case algebra.Alt:
		left, err := evalPath(ctx, resolver, subj, e.Left, obj, graph, source)
		if err != nil {
			return nil, err
		}
		right, err := evalPath(ctx, resolver, subj, e.Right, obj, graph, source)
		if err != nil {
			return nil, err
		}
		return concatQuads(ctx, left, right), nil

	case algebra.ZeroOrOne:
		inner, err := evalPath(ctx, resolver, subj, e.Expr, obj, graph, source)
		if err != nil {
			return nil, err
		}
		zero, err := zeroLength(ctx, subj, obj)
		if err != nil {
			return nil, err
		}
		return concatQuads(ctx, zero, inner), nil

	case algebra.OneOrMore:
		return bfsExpand(ctx, resolver, subj, e.Expr, obj, graph, source, false)

	case algebra.ZeroOrMore:
		more, err := bfsExpand(ctx, resolver, subj, e.Expr, obj, graph, source, false)
		if err != nil {
			return nil, err
		}
		zero, err := zeroLength(ctx, subj, obj)
		if err != nil {
			return nil, err
		}
		return concatQuads(ctx, zero, more), nil

	default:
		return nil, bus.NewError(bus.ErrOperatorSemantic, fmt.Sprintf("unsupported path expression %T", expr), nil)
	}
}

// zeroLength yields the single pair (subj, subj) when at least one of
// subj/obj is bound (binding the other to the same value), representing
// the zero-length-path identity relation.
func zeroLength(ctx context.Context, subj, obj rdf.Term) (*stream.Stream[rdf.Quad], error) {
	if subj.IsVariable() && obj.IsVariable() {
		return nil, bus.NewError(bus.ErrOperatorSemantic, "zero-length path step requires at least one bound endpoint", nil)
	}
	if !subj.IsVariable() && !obj.IsVariable() && !subj.Equal(obj) {
		return stream.FromSlice[rdf.Quad](ctx, nil, nil), nil
	}
	anchor := subj
	if anchor.IsVariable() {
		anchor = obj
	}
	q := rdf.Quad{Subject: anchor, Object: anchor}
	return stream.FromSlice(ctx, nil, []rdf.Quad{q}), nil
}

// bfsExpand performs cycle-safe breadth-first expansion of expr one-or-more
// times, requiring at least one of subj/obj to be bound: the fully
// unanchored case (both variable) has no natural termination/ordering
// contract and is rejected per the Open Question decision in DESIGN.md.
func bfsExpand(ctx context.Context, resolver QuadResolver, subj rdf.Term, expr algebra.PathExpr, obj rdf.Term, graph rdf.Term, source string, _ bool) (*stream.Stream[rdf.Quad], error) {
	if subj.IsVariable() && obj.IsVariable() {
		return nil, bus.NewError(bus.ErrOperatorSemantic,
			"one-or-more/zero-or-more path with both endpoints unbound is implementation-defined and rejected", nil)
	}

	forward := !subj.IsVariable()
	var anchor rdf.Term
	if forward {
		anchor = subj
	} else {
		anchor = obj
	}

	var results []rdf.Quad
	visited := map[string]bool{anchor.String(): true}
	frontier := []rdf.Term{anchor}

	for len(frontier) > 0 {
		var next []rdf.Term
		for _, node := range frontier {
			freshEnd := freshVar("bfs")
			var step *stream.Stream[rdf.Quad]
			var err error
			if forward {
				step, err = evalPath(ctx, resolver, node, expr, freshEnd, graph, source)
			} else {
				step, err = evalPath(ctx, resolver, freshEnd, expr, node, graph, source)
			}
			if err != nil {
				return nil, err
			}
			for {
				q, ok, serr := step.Next()
				if serr != nil {
					return nil, serr
				}
				if !ok {
					break
				}
				var reached rdf.Term
				if forward {
					reached = q.Object
				} else {
					reached = q.Subject
				}
				if visited[reached.String()] {
					continue
				}
				visited[reached.String()] = true
				next = append(next, reached)
				if forward && !obj.IsVariable() && !reached.Equal(obj) {
					continue
				}
				var resultQuad rdf.Quad
				if forward {
					resultQuad = rdf.Quad{Subject: anchor, Object: reached}
				} else {
					resultQuad = rdf.Quad{Subject: reached, Object: anchor}
				}
				results = append(results, resultQuad)
			}
		}
		frontier = next
	}

	return stream.FromSlice(ctx, nil, results), nil
}

func resolveNPS(ctx context.Context, resolver QuadResolver, subj rdf.Term, excluded []rdf.Term, obj rdf.Term, graph rdf.Term, source string) (*stream.Stream[rdf.Quad], error) {
	predVar := freshVar("pred")
	pat := rdf.Pattern{Subject: subj, Predicate: predVar, Object: obj, Graph: graph}
	all, err := resolver.Resolve(ctx, source, pat)
	if err != nil {
		return nil, err
	}
	return stream.New(ctx, nil, func() stream.Metadata { return stream.Metadata{TotalItems: stream.UnknownTotal} },
		func(ctx context.Context, emit func(rdf.Quad) bool) error {
			for {
				q, ok, err := all.Next()
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
				if containsTerm(excluded, q.Predicate) {
					continue
				}
				if !emit(q) {
					return nil
				}
			}
		}), nil
}

func containsTerm(terms []rdf.Term, t rdf.Term) bool {
	for _, x := range terms {
		if x.Equal(t) {
			return true
		}
	}
	return false
}

func swapQuads(ctx context.Context, in *stream.Stream[rdf.Quad]) *stream.Stream[rdf.Quad] {
	return stream.New(ctx, nil, func() stream.Metadata { return stream.Metadata{TotalItems: stream.UnknownTotal} },
		func(ctx context.Context, emit func(rdf.Quad) bool) error {
			for {
				q, ok, err := in.Next()
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
				swapped := rdf.Quad{Subject: q.Object, Predicate: q.Predicate, Object: q.Subject, Graph: q.Graph}
				if !emit(swapped) {
					return nil
				}
			}
		})
}

func concatQuads(ctx context.Context, a, b *stream.Stream[rdf.Quad]) *stream.Stream[rdf.Quad] {
	return stream.New(ctx, nil, func() stream.Metadata { return stream.Metadata{TotalItems: stream.UnknownTotal} },
		func(ctx context.Context, emit func(rdf.Quad) bool) error {
			for _, s := range []*stream.Stream[rdf.Quad]{a, b} {
				for {
					q, ok, err := s.Next()
					if err != nil {
						return err
					}
					if !ok {
						break
					}
					if !emit(q) {
						return nil
					}
				}
			}
			return nil
		})
}

// joinQuadsOnMid joins left's Object with right's Subject, the intermediate
// variable introduced by Seq; left/right quad streams carry the reachable
// pair only, so the join here is a plain nested-loop over buffered rows
// (property paths are expected to touch a small frontier per step).
func joinQuadsOnMid(ctx context.Context, left, right *stream.Stream[rdf.Quad]) (*stream.Stream[rdf.Quad], error) {
	rightRows, err := stream.Collect(right)
	if err != nil {
		return nil, err
	}
	return stream.New(ctx, nil, func() stream.Metadata { return stream.Metadata{TotalItems: stream.UnknownTotal} },
		func(ctx context.Context, emit func(rdf.Quad) bool) error {
			for {
				lq, ok, err := left.Next()
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
				for _, rq := range rightRows {
					if lq.Object.Equal(rq.Subject) {
						if !emit(rdf.Quad{Subject: lq.Subject, Object: rq.Object}) {
							return nil
						}
					}
				}
			}
		}), nil
}
