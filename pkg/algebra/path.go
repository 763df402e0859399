package algebra

import "github.com/gitrdm/sparqlflow/pkg/rdf"

// PathType discriminates the concrete kind of a PathExpr.
type PathType string

const (
	PathLink        PathType = "link"
	PathInv         PathType = "inv"
	PathSeq         PathType = "seq"
	PathAlt         PathType = "alt"
	PathZeroOrMore  PathType = "zero-or-more"
	PathOneOrMore   PathType = "one-or-more"
	PathZeroOrOne   PathType = "zero-or-one"
	PathNPS         PathType = "negated-property-set"
)

// PathExpr is a SPARQL 1.1 property path expression.
type PathExpr interface {
	Type() PathType
}

// Link is a single predicate IRI traversal.
type Link struct {
	Predicate rdf.Term
}

func (Link) Type() PathType { return PathLink }

// Inv traverses Expr in the reverse direction (object to subject).
type Inv struct {
	Expr PathExpr
}

func (Inv) Type() PathType { return PathInv }

// Seq traverses Left then Right, joining on an intermediate variable.
type Seq struct {
	Left  PathExpr
	Right PathExpr
}

func (Seq) Type() PathType { return PathSeq }

// Alt traverses Left or Right (union).
type Alt struct {
	Left  PathExpr
	Right PathExpr
}

func (Alt) Type() PathType { return PathAlt }

// ZeroOrMore is Expr* (Kleene star).
type ZeroOrMore struct {
	Expr PathExpr
}

func (ZeroOrMore) Type() PathType { return PathZeroOrMore }

// OneOrMore is Expr+ .
type OneOrMore struct {
	Expr PathExpr
}

func (OneOrMore) Type() PathType { return PathOneOrMore }

// ZeroOrOne is Expr? .
type ZeroOrOne struct {
	Expr PathExpr
}

func (ZeroOrOne) Type() PathType { return PathZeroOrOne }

// NPS is a negated property set: any predicate not in Excluded.
type NPS struct {
	Excluded []rdf.Term
}

func (NPS) Type() PathType { return PathNPS }
