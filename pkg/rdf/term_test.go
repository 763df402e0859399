package rdf_test

import (
	"testing"

	"github.com/gitrdm/sparqlflow/pkg/rdf"
)

func TestTermEqualComparesAllFields(t *testing.T) {
	a := rdf.LangLiteral("hello", "en")
	b := rdf.LangLiteral("hello", "en")
	c := rdf.LangLiteral("hello", "fr")

	if !a.Equal(b) {
		t.Fatal("expected identical lang literals to be equal")
	}
	if a.Equal(c) {
		t.Fatal("expected differing language tags to make terms unequal")
	}
}

func TestPlainLiteralDefaultsToXSDString(t *testing.T) {
	l := rdf.PlainLiteral("hi")
	if l.Datatype != "http://www.w3.org/2001/XMLSchema#string" {
		t.Fatalf("expected xsd:string datatype, got %q", l.Datatype)
	}
}

func TestIsVariableAndIsBound(t *testing.T) {
	v := rdf.Variable("x")
	if !v.IsVariable() || v.IsBound() {
		t.Fatal("expected variable term to report IsVariable true, IsBound false")
	}
	iri := rdf.IRI("http://example.org/s")
	if iri.IsVariable() || !iri.IsBound() {
		t.Fatal("expected IRI term to report IsVariable false, IsBound true")
	}
}

func TestUndefSentinelIsDistinctFromOrdinaryVariable(t *testing.T) {
	if !rdf.Undef.IsUndef() {
		t.Fatal("expected the Undef sentinel to report IsUndef true")
	}
	if rdf.Variable("x").IsUndef() {
		t.Fatal("an ordinary variable must not be mistaken for Undef")
	}
}

func TestTermStringRendersTurtleLikeForm(t *testing.T) {
	cases := []struct {
		term rdf.Term
		want string
	}{
		{rdf.IRI("http://example.org/s"), "<http://example.org/s>"},
		{rdf.BlankNode("b1"), "_:b1"},
		{rdf.PlainLiteral("hi"), `"hi"`},
		{rdf.LangLiteral("hi", "en"), `"hi"@en`},
		{rdf.Variable("x"), "?x"},
	}
	for _, c := range cases {
		if got := c.term.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}
