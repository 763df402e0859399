package rdf

import "strings"

// Quad is a subject/predicate/object/graph tuple. Graph is DefaultGraph for
// triples that belong to no named graph.
type Quad struct {
	Subject   Term
	Predicate Term
	Object    Term
	Graph     Term
}

// Equal reports structural equality between two quads.
func (q Quad) Equal(o Quad) bool {
	return q.Subject.Equal(o.Subject) &&
		q.Predicate.Equal(o.Predicate) &&
		q.Object.Equal(o.Object) &&
		q.Graph.Equal(o.Graph)
}

// String renders q in a Turtle-like debug form.
func (q Quad) String() string {
	var b strings.Builder
	b.WriteString(q.Subject.String())
	b.WriteByte(' ')
	b.WriteString(q.Predicate.String())
	b.WriteByte(' ')
	b.WriteString(q.Object.String())
	if q.Graph.Kind != KindDefaultGraph {
		b.WriteByte(' ')
		b.WriteString(q.Graph.String())
	}
	b.WriteByte('.')
	return b.String()
}

// Signature returns a string uniquely identifying q's value, used as a map
// key for deduplication (Construct template output, Describe).
func (q Quad) Signature() string {
	var b strings.Builder
	writeTermSig(&b, q.Subject)
	b.WriteByte('|')
	writeTermSig(&b, q.Predicate)
	b.WriteByte('|')
	writeTermSig(&b, q.Object)
	b.WriteByte('|')
	writeTermSig(&b, q.Graph)
	return b.String()
}

func writeTermSig(b *strings.Builder, t Term) {
	b.WriteByte(byte('0' + t.Kind))
	b.WriteByte(':')
	b.WriteString(t.Value)
	if t.Kind == KindLiteral {
		b.WriteByte('@')
		b.WriteString(t.Lang)
		b.WriteByte('^')
		b.WriteString(t.Datatype)
	}
}
