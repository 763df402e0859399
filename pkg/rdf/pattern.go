package rdf

// Pattern is a quad pattern: any of its four positions may be a variable,
// to be matched against concrete quads from a data source.
type Pattern struct {
	Subject   Term
	Predicate Term
	Object    Term
	Graph     Term
}

// Variables returns the distinct variable names appearing in p, in
// subject/predicate/object/graph order.
func (p Pattern) Variables() []string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range []Term{p.Subject, p.Predicate, p.Object, p.Graph} {
		if t.IsVariable() && !seen[t.Value] {
			seen[t.Value] = true
			out = append(out, t.Value)
		}
	}
	return out
}

// Matches reports whether concrete quad q satisfies the bound positions of
// p, ignoring its variable positions.
func (p Pattern) Matches(q Quad) bool {
	return matchPos(p.Subject, q.Subject) &&
		matchPos(p.Predicate, q.Predicate) &&
		matchPos(p.Object, q.Object) &&
		matchPos(p.Graph, q.Graph)
}

func matchPos(pat, val Term) bool {
	if pat.IsVariable() {
		return true
	}
	return pat.Equal(val)
}
