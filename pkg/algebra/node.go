// Package algebra defines the SPARQL 1.1 algebra node taxonomy that the
// query-operation bus (pkg/operators) dispatches over.
package algebra

import (
	"github.com/gitrdm/sparqlflow/pkg/expr"
	"github.com/gitrdm/sparqlflow/pkg/rdf"
)

// NodeType discriminates the concrete kind of an algebra Node. Actors in
// pkg/operators register one per kind and accept a task iff the root
// node's Type() matches.
type NodeType string

const (
	TypeBgp      NodeType = "bgp"
	TypePattern  NodeType = "pattern"
	TypePath     NodeType = "path"
	TypeJoin     NodeType = "join"
	TypeLeftJoin NodeType = "leftjoin"
	TypeUnion    NodeType = "union"
	TypeFilter   NodeType = "filter"
	TypeExtend   NodeType = "extend"
	TypeProject  NodeType = "project"
	TypeDistinct NodeType = "distinct"
	TypeReduced  NodeType = "reduced"
	TypeSlice    NodeType = "slice"
	TypeOrderBy  NodeType = "orderby"
	TypeGroup    NodeType = "group"
	TypeMinus    NodeType = "minus"
	TypeValues   NodeType = "values"
	TypeConstruct NodeType = "construct"
	TypeAsk      NodeType = "ask"
	TypeDescribe NodeType = "describe"
	TypeService  NodeType = "service"
)

// Node is any SPARQL algebra node. Concrete node types embed nothing;
// each implements Type to identify itself to the dispatch bus.
type Node interface {
	Type() NodeType
}

// Bgp is a basic graph pattern: a conjunction of quad patterns evaluated
// against a single data source (no path expressions).
type Bgp struct {
	Patterns []rdf.Pattern
	Source   string // data source descriptor id; "" means the default source
}

func (Bgp) Type() NodeType { return TypeBgp }

// Pattern is a single quad pattern, the atomic unit the quad-pattern
// resolution bus (pkg/source) is queried with.
type Pattern struct {
	Pattern rdf.Pattern
	Source  string
}

func (Pattern) Type() NodeType { return TypePattern }

// Path is a property path applied between two (possibly variable)
// endpoints.
type Path struct {
	Subject rdf.Term
	Expr    PathExpr
	Object  rdf.Term
	Graph   rdf.Term
	Source  string
}

func (Path) Type() NodeType { return TypePath }

// Join is the natural join of Left and Right over their shared variables.
type Join struct {
	Left  Node
	Right Node
}

func (Join) Type() NodeType { return TypeJoin }

// LeftJoin is SPARQL OPTIONAL: Left joined with Right, keeping unmatched
// Left bindings, gated by an optional Filter expression.
type LeftJoin struct {
	Left   Node
	Right  Node
	Filter expr.Expr // may be nil
}

func (LeftJoin) Type() NodeType { return TypeLeftJoin }

// Union evaluates Left and Right independently and concatenates their
// results.
type Union struct {
	Left  Node
	Right Node
}

func (Union) Type() NodeType { return TypeUnion }

// Filter keeps only Input bindings for which Expr evaluates to an
// effective-boolean-value of true.
type Filter struct {
	Input Node
	Expr  expr.Expr
}

func (Filter) Type() NodeType { return TypeFilter }

// Extend binds Var to the evaluation of Expr for every Input binding.
type Extend struct {
	Input Node
	Var   string
	Expr  expr.Expr
}

func (Extend) Type() NodeType { return TypeExtend }

// Project restricts each Input binding to Vars.
type Project struct {
	Input Node
	Vars  []string
}

func (Project) Type() NodeType { return TypeProject }

// Distinct removes duplicate bindings from Input.
type Distinct struct {
	Input Node
}

func (Distinct) Type() NodeType { return TypeDistinct }

// Reduced is SPARQL REDUCED: permission, not obligation, to deduplicate.
// sparqlflow implements it as a pass-through (see pkg/operators/reduced.go).
type Reduced struct {
	Input Node
}

func (Reduced) Type() NodeType { return TypeReduced }

// Slice applies OFFSET/LIMIT to Input. Limit of -1 means unbounded.
type Slice struct {
	Input  Node
	Offset int64
	Limit  int64
}

func (Slice) Type() NodeType { return TypeSlice }

// SortCondition is one ORDER BY key.
type SortCondition struct {
	Expr       expr.Expr
	Descending bool
}

// OrderBy sorts Input by Conditions, in order. Blocking: must see the whole
// input before emitting the first result.
type OrderBy struct {
	Input      Node
	Conditions []SortCondition
}

func (OrderBy) Type() NodeType { return TypeOrderBy }

// Aggregate is one SPARQL aggregate expression bound to an output variable.
type Aggregate struct {
	Var  string
	Func string // "count", "sum", "min", "max", "avg", "sample", "group_concat"
	Expr expr.Expr // nil for count(*)
	Distinct bool
	Separator string // group_concat only; defaults to " "
}

// Group partitions Input by GroupVars and evaluates Aggregates per
// partition, optionally filtering partitions with Having.
type Group struct {
	Input      Node
	GroupVars  []string
	Aggregates []Aggregate
	Having     expr.Expr // may be nil
}

func (Group) Type() NodeType { return TypeGroup }

// Minus removes from Left every binding compatible with some Right binding
// sharing at least one variable.
type Minus struct {
	Left  Node
	Right Node
}

func (Minus) Type() NodeType { return TypeMinus }

// Values is an inline table of bindings (SPARQL VALUES clause).
type Values struct {
	Vars Rows
}

// Rows is a list of fixed binding rows; rdf.Term zero value (KindIRI, empty
// Value) is never produced by a parser for UNDEF, so Values uses a
// dedicated sentinel handled in pkg/operators/values.go.
type Rows struct {
	Variables []string
	Rows      [][]rdf.Term // an element may be the Undef sentinel term
}

func (Values) Type() NodeType { return TypeValues }

// TriplePattern is a CONSTRUCT/DESCRIBE template entry; any position may be
// a variable or a blank node used as a template-scoped fresh-node marker.
type TriplePattern = rdf.Pattern

// Construct resolves Input and instantiates Template for each binding.
type Construct struct {
	Input    Node
	Template []TriplePattern
}

func (Construct) Type() NodeType { return TypeConstruct }

// Ask resolves Input and reports whether at least one binding exists.
type Ask struct {
	Input Node
}

func (Ask) Type() NodeType { return TypeAsk }

// Describe resolves Input (optional) and/or a fixed Terms list, and
// produces a concise bounded description of each described term.
type Describe struct {
	Input Node // may be nil
	Terms []rdf.Term
}

func (Describe) Type() NodeType { return TypeDescribe }

// Service delegates Input's resolution to a remote SPARQL endpoint
// identified by Endpoint. QueryText is the already-serialized SPARQL query
// text to send for Input (SPARQL text synthesis from an algebra subtree is
// out of scope; callers building a Service node supply the text they
// already have, the same way the init actor's Parser collaborator supplies
// the root query text).
type Service struct {
	Endpoint  string
	Input     Node
	Silent    bool
	QueryText string
}

func (Service) Type() NodeType { return TypeService }
