package rdf_test

import (
	"reflect"
	"testing"

	"github.com/gitrdm/sparqlflow/pkg/rdf"
)

func TestPatternVariablesDistinctInOrder(t *testing.T) {
	p := rdf.Pattern{
		Subject:   rdf.Variable("s"),
		Predicate: rdf.IRI("http://example.org/p"),
		Object:    rdf.Variable("s"),
		Graph:     rdf.Variable("g"),
	}
	got := p.Variables()
	want := []string{"s", "g"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Variables() = %v, want %v", got, want)
	}
}

func TestPatternMatchesIgnoresVariablePositions(t *testing.T) {
	p := rdf.Pattern{
		Subject:   rdf.Variable("s"),
		Predicate: rdf.IRI("http://example.org/knows"),
		Object:    rdf.Variable("o"),
		Graph:     rdf.DefaultGraph,
	}
	q := rdf.Quad{
		Subject:   rdf.IRI("http://example.org/alice"),
		Predicate: rdf.IRI("http://example.org/knows"),
		Object:    rdf.IRI("http://example.org/bob"),
		Graph:     rdf.DefaultGraph,
	}
	if !p.Matches(q) {
		t.Fatal("expected pattern with matching bound predicate to match")
	}

	wrongPred := rdf.Pattern{
		Subject:   rdf.Variable("s"),
		Predicate: rdf.IRI("http://example.org/dislikes"),
		Object:    rdf.Variable("o"),
		Graph:     rdf.DefaultGraph,
	}
	if wrongPred.Matches(q) {
		t.Fatal("expected pattern with mismatched bound predicate not to match")
	}
}

func TestQuadSignatureDeterministicAndDistinguishesLiterals(t *testing.T) {
	q1 := rdf.Quad{
		Subject:   rdf.IRI("http://example.org/s"),
		Predicate: rdf.IRI("http://example.org/p"),
		Object:    rdf.LangLiteral("hi", "en"),
		Graph:     rdf.DefaultGraph,
	}
	q2 := q1
	if q1.Signature() != q2.Signature() {
		t.Fatal("expected identical quads to have identical signatures")
	}

	q3 := q1
	q3.Object = rdf.LangLiteral("hi", "fr")
	if q1.Signature() == q3.Signature() {
		t.Fatal("expected differing language tags to produce differing signatures")
	}
}
