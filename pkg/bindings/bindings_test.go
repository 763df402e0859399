package bindings_test

import (
	"testing"

	"github.com/gitrdm/sparqlflow/pkg/bindings"
	"github.com/gitrdm/sparqlflow/pkg/rdf"
)

func TestBindIsImmutable(t *testing.T) {
	b0 := bindings.Empty()
	b1 := b0.Bind("x", rdf.IRI("http://example.org/a"))

	if _, ok := b0.Get("x"); ok {
		t.Fatal("Bind must not mutate the receiver")
	}
	v, ok := b1.Get("x")
	if !ok || !v.Equal(rdf.IRI("http://example.org/a")) {
		t.Fatalf("expected x bound on the derived Bindings, got %v, %v", v, ok)
	}
}

func TestCompatibleAgreesOnSharedVariables(t *testing.T) {
	a := bindings.Empty().Bind("x", rdf.IRI("http://example.org/a")).Bind("y", rdf.IRI("http://example.org/b"))
	same := bindings.Empty().Bind("y", rdf.IRI("http://example.org/b")).Bind("z", rdf.IRI("http://example.org/c"))
	diff := bindings.Empty().Bind("y", rdf.IRI("http://example.org/other"))

	if !a.Compatible(same) {
		t.Fatal("expected bindings agreeing on shared variable y to be compatible")
	}
	if a.Compatible(diff) {
		t.Fatal("expected bindings disagreeing on y to be incompatible")
	}
}

func TestMergeIsRightBiasedOnConflict(t *testing.T) {
	a := bindings.Empty().Bind("x", rdf.IRI("http://example.org/a"))
	b := bindings.Empty().Bind("x", rdf.IRI("http://example.org/b"))

	merged := a.Merge(b)
	v, _ := merged.Get("x")
	if !v.Equal(rdf.IRI("http://example.org/b")) {
		t.Fatalf("expected right-hand binding to win, got %v", v)
	}
}

func TestProjectKeepsOnlyNamedVariables(t *testing.T) {
	b := bindings.Empty().
		Bind("x", rdf.IRI("http://example.org/a")).
		Bind("y", rdf.IRI("http://example.org/b"))

	p := b.Project([]string{"x"})
	if p.Len() != 1 {
		t.Fatalf("expected projected Bindings to have one variable, got %d", p.Len())
	}
	if _, ok := p.Get("y"); ok {
		t.Fatal("expected y to be dropped by Project")
	}
}

func TestEqualIgnoresInsertionOrder(t *testing.T) {
	a := bindings.Empty().Bind("x", rdf.IRI("http://a")).Bind("y", rdf.IRI("http://b"))
	b := bindings.Empty().Bind("y", rdf.IRI("http://b")).Bind("x", rdf.IRI("http://a"))

	if !a.Equal(b) {
		t.Fatal("expected bindings with the same contents to be equal regardless of bind order")
	}
}

func TestSignatureStableAcrossInsertionOrder(t *testing.T) {
	a := bindings.Empty().Bind("x", rdf.IRI("http://a")).Bind("y", rdf.IRI("http://b"))
	b := bindings.Empty().Bind("y", rdf.IRI("http://b")).Bind("x", rdf.IRI("http://a"))

	if a.Signature() != b.Signature() {
		t.Fatal("expected Signature to be stable regardless of bind order")
	}
}

func TestSignatureDistinguishesDifferentValues(t *testing.T) {
	a := bindings.Empty().Bind("x", rdf.IRI("http://a"))
	b := bindings.Empty().Bind("x", rdf.IRI("http://b"))

	if a.Signature() == b.Signature() {
		t.Fatal("expected different bound values to produce different signatures")
	}
}

func TestFromMapCopiesInput(t *testing.T) {
	m := map[string]rdf.Term{"x": rdf.IRI("http://a")}
	b := bindings.FromMap(m)
	m["x"] = rdf.IRI("http://mutated")

	v, _ := b.Get("x")
	if !v.Equal(rdf.IRI("http://a")) {
		t.Fatal("expected FromMap to defensively copy its input map")
	}
}
