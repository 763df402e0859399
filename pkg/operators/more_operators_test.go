package operators_test

import (
	"context"
	"testing"

	"github.com/gitrdm/sparqlflow/pkg/algebra"
	"github.com/gitrdm/sparqlflow/pkg/expr"
	"github.com/gitrdm/sparqlflow/pkg/operators"
	"github.com/gitrdm/sparqlflow/pkg/rdf"
	"github.com/gitrdm/sparqlflow/pkg/stream"
)

func TestLeftJoinKeepsUnmatchedLeftBindings(t *testing.T) {
	resolver := testResolver(t,
		rdf.Quad{Subject: alice(), Predicate: knows(), Object: bob(), Graph: rdf.DefaultGraph},
	)
	md := operators.NewMediator(resolver, nil)

	left := algebra.Values{Vars: algebra.Rows{Variables: []string{"s"}, Rows: [][]rdf.Term{{alice()}, {carol()}}}}
	leftJoin := algebra.LeftJoin{
		Left: left,
		Right: algebra.Pattern{Pattern: rdf.Pattern{Subject: rdf.Variable("s"), Predicate: knows(), Object: rdf.Variable("o"), Graph: rdf.DefaultGraph}},
	}

	s, err := md.Evaluate(context.Background(), leftJoin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows := collectBindings(t, s)
	if len(rows) != 2 {
		t.Fatalf("expected both left rows to survive (one matched, one kept unmatched), got %d", len(rows))
	}
	matchedUnbound := 0
	for _, r := range rows {
		if _, ok := r.Get("o"); !ok {
			matchedUnbound++
		}
	}
	if matchedUnbound != 1 {
		t.Fatalf("expected exactly one unmatched-left row with o unbound, got %d", matchedUnbound)
	}
}

func TestExtendBindsComputedVariable(t *testing.T) {
	resolver := testResolver(t)
	md := operators.NewMediator(resolver, nil)

	values := algebra.Values{Vars: algebra.Rows{Variables: []string{"x"}, Rows: [][]rdf.Term{{rdf.PlainLiteral("hi")}}}}
	extend := algebra.Extend{Input: values, Var: "y", Expr: expr.Call{Func: "ucase", Args: []expr.Expr{expr.VarRef{Name: "x"}}}}

	s, err := md.Evaluate(context.Background(), extend)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows := collectBindings(t, s)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	yv, ok := rows[0].Get("y")
	if !ok || yv.Value != "HI" {
		t.Fatalf("expected y=HI, got %v, %v", yv, ok)
	}
}

func TestExtendPassesThroughOnEvalError(t *testing.T) {
	resolver := testResolver(t)
	md := operators.NewMediator(resolver, nil)

	values := algebra.Values{Vars: algebra.Rows{Variables: []string{"x"}, Rows: [][]rdf.Term{{rdf.PlainLiteral("hi")}}}}
	extend := algebra.Extend{Input: values, Var: "y", Expr: expr.VarRef{Name: "unbound"}}

	s, err := md.Evaluate(context.Background(), extend)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows := collectBindings(t, s)
	if len(rows) != 1 {
		t.Fatalf("expected the binding to survive even though BIND's expression failed, got %d rows", len(rows))
	}
	if _, ok := rows[0].Get("y"); ok {
		t.Fatal("expected y to remain unbound when BIND's expression errors")
	}
}

func TestProjectDropsNonListedVariables(t *testing.T) {
	resolver := testResolver(t)
	md := operators.NewMediator(resolver, nil)

	values := algebra.Values{Vars: algebra.Rows{Variables: []string{"x", "y"}, Rows: [][]rdf.Term{{alice(), bob()}}}}
	project := algebra.Project{Input: values, Vars: []string{"x"}}

	s, err := md.Evaluate(context.Background(), project)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows := collectBindings(t, s)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if _, ok := rows[0].Get("y"); ok {
		t.Fatal("expected y to be dropped by Project")
	}
}

func TestOrderBySortsAscendingByDefault(t *testing.T) {
	resolver := testResolver(t)
	md := operators.NewMediator(resolver, nil)

	values := algebra.Values{Vars: algebra.Rows{Variables: []string{"n"}, Rows: [][]rdf.Term{
		{rdf.TypedLiteral("3", "http://www.w3.org/2001/XMLSchema#integer")},
		{rdf.TypedLiteral("1", "http://www.w3.org/2001/XMLSchema#integer")},
		{rdf.TypedLiteral("2", "http://www.w3.org/2001/XMLSchema#integer")},
	}}}
	orderBy := algebra.OrderBy{Input: values, Conditions: []algebra.SortCondition{{Expr: expr.VarRef{Name: "n"}}}}

	s, err := md.Evaluate(context.Background(), orderBy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows := collectBindings(t, s)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for i, want := range []string{"1", "2", "3"} {
		v, _ := rows[i].Get("n")
		if v.Value != want {
			t.Fatalf("expected ascending order [1,2,3], got position %d = %s", i, v.Value)
		}
	}
}

func TestGroupCountsPerPartition(t *testing.T) {
	resolver := testResolver(t)
	md := operators.NewMediator(resolver, nil)

	values := algebra.Values{Vars: algebra.Rows{Variables: []string{"g"}, Rows: [][]rdf.Term{
		{rdf.PlainLiteral("a")}, {rdf.PlainLiteral("a")}, {rdf.PlainLiteral("b")},
	}}}
	group := algebra.Group{
		Input:      values,
		GroupVars:  []string{"g"},
		Aggregates: []algebra.Aggregate{{Var: "c", Func: "count"}},
	}

	s, err := md.Evaluate(context.Background(), group)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows := collectBindings(t, s)
	if len(rows) != 2 {
		t.Fatalf("expected 2 partitions, got %d", len(rows))
	}
	counts := map[string]string{}
	for _, r := range rows {
		g, _ := r.Get("g")
		c, _ := r.Get("c")
		counts[g.Value] = c.Value
	}
	if counts["a"] != "2" || counts["b"] != "1" {
		t.Fatalf("expected a=2,b=1, got %v", counts)
	}
}

func TestGroupWithNoGroupByOverEmptyInputYieldsOnePartition(t *testing.T) {
	resolver := testResolver(t)
	md := operators.NewMediator(resolver, nil)

	empty := algebra.Values{Vars: algebra.Rows{Variables: nil, Rows: nil}}
	group := algebra.Group{Input: empty, Aggregates: []algebra.Aggregate{{Var: "c", Func: "count"}}}

	s, err := md.Evaluate(context.Background(), group)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows := collectBindings(t, s)
	if len(rows) != 1 {
		t.Fatalf("expected COUNT(*) over empty input to still yield one group, got %d", len(rows))
	}
	c, _ := rows[0].Get("c")
	if c.Value != "0" {
		t.Fatalf("expected count=0, got %s", c.Value)
	}
}

func TestMinusRemovesCompatibleSharedBindings(t *testing.T) {
	resolver := testResolver(t)
	md := operators.NewMediator(resolver, nil)

	left := algebra.Values{Vars: algebra.Rows{Variables: []string{"x"}, Rows: [][]rdf.Term{{alice()}, {bob()}}}}
	right := algebra.Values{Vars: algebra.Rows{Variables: []string{"x"}, Rows: [][]rdf.Term{{alice()}}}}
	minus := algebra.Minus{Left: left, Right: right}

	s, err := md.Evaluate(context.Background(), minus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows := collectBindings(t, s)
	if len(rows) != 1 {
		t.Fatalf("expected alice to be removed by MINUS, leaving 1 row, got %d", len(rows))
	}
	xv, _ := rows[0].Get("x")
	if !xv.Equal(bob()) {
		t.Fatalf("expected the surviving row to be bob, got %v", xv)
	}
}

func TestMinusIsNoOpWhenNoSharedVariables(t *testing.T) {
	resolver := testResolver(t)
	md := operators.NewMediator(resolver, nil)

	left := algebra.Values{Vars: algebra.Rows{Variables: []string{"x"}, Rows: [][]rdf.Term{{alice()}}}}
	right := algebra.Values{Vars: algebra.Rows{Variables: []string{"y"}, Rows: [][]rdf.Term{{bob()}}}}
	minus := algebra.Minus{Left: left, Right: right}

	s, err := md.Evaluate(context.Background(), minus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows := collectBindings(t, s)
	if len(rows) != 1 {
		t.Fatalf("expected MINUS with no shared variables to be a no-op, got %d rows", len(rows))
	}
}

func TestReducedIsPassThrough(t *testing.T) {
	resolver := testResolver(t)
	md := operators.NewMediator(resolver, nil)

	values := algebra.Values{Vars: algebra.Rows{Variables: []string{"x"}, Rows: [][]rdf.Term{{alice()}, {alice()}}}}
	reduced := algebra.Reduced{Input: values}

	s, err := md.Evaluate(context.Background(), reduced)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows := collectBindings(t, s)
	if len(rows) != 2 {
		t.Fatalf("expected REDUCED to be a pass-through (duplicates preserved), got %d rows", len(rows))
	}
}

func TestDescribeReturnsQuadsWithDescribedSubject(t *testing.T) {
	resolver := testResolver(t,
		rdf.Quad{Subject: alice(), Predicate: knows(), Object: bob(), Graph: rdf.DefaultGraph},
		rdf.Quad{Subject: alice(), Predicate: likesPred(), Object: carol(), Graph: rdf.DefaultGraph},
	)
	md := operators.NewMediator(resolver, nil)

	describe := algebra.Describe{Terms: []rdf.Term{alice()}}
	v, err := md.Dispatch(context.Background(), describe)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	quads, err := stream.Collect(v.(*stream.Stream[rdf.Quad]))
	if err != nil {
		t.Fatalf("unexpected stream error: %v", err)
	}
	if len(quads) != 2 {
		t.Fatalf("expected 2 quads describing alice, got %d", len(quads))
	}
}

func TestServiceSilentSwallowsMissingRemoteClient(t *testing.T) {
	resolver := testResolver(t)
	md := operators.NewMediator(resolver, nil)

	service := algebra.Service{Endpoint: "http://example.org/sparql", Silent: true, QueryText: "ASK {}"}
	s, err := md.Evaluate(context.Background(), service)
	if err != nil {
		t.Fatalf("expected SILENT to swallow the missing-remote-client error, got %v", err)
	}
	rows := collectBindings(t, s)
	if len(rows) != 0 {
		t.Fatalf("expected an empty bindings stream, got %d rows", len(rows))
	}
}

func TestServiceNonSilentPropagatesMissingRemoteClient(t *testing.T) {
	resolver := testResolver(t)
	md := operators.NewMediator(resolver, nil)

	service := algebra.Service{Endpoint: "http://example.org/sparql", Silent: false, QueryText: "ASK {}"}
	_, err := md.Evaluate(context.Background(), service)
	if err == nil {
		t.Fatal("expected a non-silent SERVICE with no remote client configured to fail")
	}
}

func TestBgpWithNoPatternsYieldsSingleEmptyBinding(t *testing.T) {
	resolver := testResolver(t)
	md := operators.NewMediator(resolver, nil)

	s, err := md.Evaluate(context.Background(), algebra.Bgp{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows := collectBindings(t, s)
	if len(rows) != 1 || rows[0].Len() != 0 {
		t.Fatalf("expected a single empty binding for an empty BGP, got %v", rows)
	}
}

func TestPatternActorResolvesSinglePattern(t *testing.T) {
	resolver := testResolver(t, rdf.Quad{Subject: alice(), Predicate: knows(), Object: bob(), Graph: rdf.DefaultGraph})
	md := operators.NewMediator(resolver, nil)

	pattern := algebra.Pattern{Pattern: rdf.Pattern{Subject: rdf.Variable("s"), Predicate: knows(), Object: rdf.Variable("o"), Graph: rdf.DefaultGraph}}
	s, err := md.Evaluate(context.Background(), pattern)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows := collectBindings(t, s)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
}

func TestPathActorDelegatesToPathEngine(t *testing.T) {
	resolver := testResolver(t, rdf.Quad{Subject: alice(), Predicate: knows(), Object: bob(), Graph: rdf.DefaultGraph})
	md := operators.NewMediator(resolver, nil)

	path := algebra.Path{Subject: rdf.Variable("s"), Expr: algebra.Link{Predicate: knows()}, Object: rdf.Variable("o"), Graph: rdf.DefaultGraph}
	s, err := md.Evaluate(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows := collectBindings(t, s)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row from the single-hop path, got %d", len(rows))
	}
}

func likesPred() rdf.Term { return rdf.IRI("http://example.org/likes") }
